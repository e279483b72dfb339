package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Message is a single OSC message: an address pattern plus zero or more
// typed arguments. Argument order is significant.
type Message struct {
	Address   string
	Arguments []interface{}
}

// NewMessage returns a new Message for the given address.
func NewMessage(addr string, args ...interface{}) *Message {
	return &Message{Address: addr, Arguments: args}
}

// Append appends arguments to the argument list. It fails if any value is
// of an unsupported type or outside the int32 range.
func (m *Message) Append(args ...interface{}) error {
	for _, a := range args {
		if ToTypeTag(a) == TypeInvalid {
			return fmt.Errorf("osc: unsupported argument type %T (%v)", a, a)
		}
	}
	m.Arguments = append(m.Arguments, args...)
	return nil
}

// TypeTags returns the wire type tag string, leading comma included.
func (m *Message) TypeTags() (string, error) {
	tags := make([]byte, 0, len(m.Arguments)+1)
	tags = append(tags, ',')
	for _, arg := range m.Arguments {
		t := ToTypeTag(arg)
		if t == TypeInvalid {
			return "", fmt.Errorf("osc: unsupported argument type %T (%v)", arg, arg)
		}
		tags = append(tags, byte(t))
	}
	return string(tags), nil
}

// Equal reports whether two messages carry the same address and the same
// argument sequence, comparing floats at float32 precision.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Address != other.Address || len(m.Arguments) != len(other.Arguments) {
		return false
	}
	for i := range m.Arguments {
		if normalizeArg(m.Arguments[i]) != normalizeArg(other.Arguments[i]) {
			return false
		}
	}
	return true
}

// normalizeArg maps every numeric kind onto its wire representation so that
// int(4), int32(4) and int64(4) compare equal, as do float32/float64.
func normalizeArg(arg interface{}) interface{} {
	switch t := arg.(type) {
	case int:
		return int32(t)
	case int64:
		return int32(t)
	case float64:
		return float32(t)
	default:
		return arg
	}
}

// String implements fmt.Stringer: the address followed by the tag string
// and the arguments, space separated.
func (m *Message) String() string {
	if m == nil {
		return ""
	}
	tags, err := m.TypeTags()
	if err != nil {
		tags = ",?"
	}
	var sb strings.Builder
	sb.WriteString(m.Address)
	if len(m.Arguments) == 0 {
		return sb.String()
	}
	sb.WriteByte(' ')
	sb.WriteString(tags)
	for _, arg := range m.Arguments {
		fmt.Fprintf(&sb, " %v", arg)
	}
	return sb.String()
}

// MarshalBinary implements encoding.BinaryMarshaler. The buffer layout is
// the padded address, the padded type tag string, then each argument's
// payload bytes in order; booleans contribute no payload.
func (m *Message) MarshalBinary() ([]byte, error) {
	if err := validateAddress(m.Address); err != nil {
		return nil, err
	}

	payload := new(bytes.Buffer)
	tags := make([]byte, 0, len(m.Arguments)+1)
	tags = append(tags, ',')

	for _, arg := range m.Arguments {
		switch t := arg.(type) {
		case bool:
			if t {
				tags = append(tags, byte(TypeTrue))
			} else {
				tags = append(tags, byte(TypeFalse))
			}

		case int, int32, int64:
			v, err := toInt32(t)
			if err != nil {
				return nil, err
			}
			tags = append(tags, byte(TypeInt32))
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], uint32(v))
			payload.Write(buf[:])

		case float32:
			tags = append(tags, byte(TypeFloat32))
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], math.Float32bits(t))
			payload.Write(buf[:])

		case float64:
			tags = append(tags, byte(TypeFloat32))
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], math.Float32bits(float32(t)))
			payload.Write(buf[:])

		case string:
			if strings.IndexByte(t, 0) != -1 {
				return nil, fmt.Errorf("osc: string argument contains NUL byte")
			}
			tags = append(tags, byte(TypeString))
			writePaddedString(t, payload)

		default:
			return nil, fmt.Errorf("osc: unsupported argument type %T (%v)", t, t)
		}
	}

	data := new(bytes.Buffer)
	writePaddedString(m.Address, data)
	writePaddedString(string(tags), data)
	data.Write(payload.Bytes())
	return data.Bytes(), nil
}

// ParseMessage decodes a single message from a datagram payload.
func ParseMessage(data []byte) (*Message, error) {
	m := &Message{}
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. A buffer without a
// type tag block decodes to an address-only message; any truncation or
// unknown tag past that point is an error.
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("osc: empty datagram")
	}
	if data[0] != '/' {
		return fmt.Errorf("osc: address does not start with '/'")
	}
	if len(data)%4 != 0 {
		return fmt.Errorf("osc: datagram length %d is not a multiple of 4", len(data))
	}

	addr, n, err := parsePaddedString(data)
	if err != nil {
		return fmt.Errorf("osc: reading address: %w", err)
	}
	m.Address = addr
	m.Arguments = nil
	data = data[n:]

	// No tag block at all is tolerated: some servers send bare addresses.
	if len(data) == 0 || data[0] != ',' {
		return nil
	}

	tags, n, err := parsePaddedString(data)
	if err != nil {
		return fmt.Errorf("osc: reading type tags: %w", err)
	}
	data = data[n:]

	m.Arguments = make([]interface{}, 0, len(tags)-1)
	for _, tag := range []byte(tags[1:]) {
		switch TypeTag(tag) {
		case TypeInt32:
			if len(data) < 4 {
				return fmt.Errorf("osc: truncated int32 argument")
			}
			m.Arguments = append(m.Arguments, int32(binary.BigEndian.Uint32(data[:4])))
			data = data[4:]

		case TypeFloat32:
			if len(data) < 4 {
				return fmt.Errorf("osc: truncated float32 argument")
			}
			m.Arguments = append(m.Arguments, math.Float32frombits(binary.BigEndian.Uint32(data[:4])))
			data = data[4:]

		case TypeString:
			s, n, err := parsePaddedString(data)
			if err != nil {
				return fmt.Errorf("osc: reading string argument: %w", err)
			}
			m.Arguments = append(m.Arguments, s)
			data = data[n:]

		case TypeTrue:
			m.Arguments = append(m.Arguments, true)

		case TypeFalse:
			m.Arguments = append(m.Arguments, false)

		default:
			return fmt.Errorf("osc: unsupported type tag %q", tag)
		}
	}

	return nil
}

func validateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("osc: empty address")
	}
	if addr[0] != '/' {
		return fmt.Errorf("osc: address %q does not start with '/'", addr)
	}
	if strings.IndexByte(addr, 0) != -1 {
		return fmt.Errorf("osc: address contains NUL byte")
	}
	return nil
}

func toInt32(arg interface{}) (int32, error) {
	switch t := arg.(type) {
	case int32:
		return t, nil
	case int:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return 0, fmt.Errorf("osc: integer argument %d outside int32 range", t)
		}
		return int32(t), nil
	case int64:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return 0, fmt.Errorf("osc: integer argument %d outside int32 range", t)
		}
		return int32(t), nil
	default:
		return 0, fmt.Errorf("osc: not an integer argument: %T", arg)
	}
}
