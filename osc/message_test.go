package osc_test

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/soundctl/liveosc/osc"
)

func mustMarshal(t *testing.T, m *osc.Message) []byte {
	t.Helper()
	data, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal %s: %v", m.Address, err)
	}
	return data
}

func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  *osc.Message
		want []interface{}
	}{
		{
			name: "no arguments",
			msg:  osc.NewMessage("/live/song/get/tempo"),
			want: []interface{}{},
		},
		{
			name: "single int",
			msg:  osc.NewMessage("/live/song/set/tempo", 120),
			want: []interface{}{int32(120)},
		},
		{
			name: "negative int32",
			msg:  osc.NewMessage("/live/track/set/send", int32(-8)),
			want: []interface{}{int32(-8)},
		},
		{
			name: "float",
			msg:  osc.NewMessage("/live/song/set/tempo", 128.5),
			want: []interface{}{float32(128.5)},
		},
		{
			name: "string",
			msg:  osc.NewMessage("/live/track/set/name", "Drums"),
			want: []interface{}{"Drums"},
		},
		{
			name: "empty string",
			msg:  osc.NewMessage("/live/track/set/name", ""),
			want: []interface{}{""},
		},
		{
			name: "utf-8 string",
			msg:  osc.NewMessage("/live/clip/set/name", "Pad éè ドラム"),
			want: []interface{}{"Pad éè ドラム"},
		},
		{
			name: "booleans",
			msg:  osc.NewMessage("/live/track/set/mute", true, false),
			want: []interface{}{true, false},
		},
		{
			name: "mixed",
			msg:  osc.NewMessage("/live/clip/fire", 2, 0.25, "loop", true),
			want: []interface{}{int32(2), float32(0.25), "loop", true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := mustMarshal(t, tt.msg)

			got, err := osc.ParseMessage(data)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got.Address != tt.msg.Address {
				t.Errorf("address = %q, want %q", got.Address, tt.msg.Address)
			}
			if len(got.Arguments) != len(tt.want) {
				t.Fatalf("got %d arguments, want %d", len(got.Arguments), len(tt.want))
			}
			for i, want := range tt.want {
				if got.Arguments[i] != want {
					t.Errorf("argument %d = %#v, want %#v", i, got.Arguments[i], want)
				}
			}
			if !got.Equal(tt.msg) {
				t.Errorf("round-tripped message not Equal to original: %s vs %s", got, tt.msg)
			}
		})
	}
}

func TestPaddingInvariant(t *testing.T) {
	msgs := []*osc.Message{
		osc.NewMessage("/a"),
		osc.NewMessage("/abc"),
		osc.NewMessage("/live/song/get/tempo"),
		osc.NewMessage("/x", "s"),
		osc.NewMessage("/x", "abc"),
		osc.NewMessage("/x", "abcd"),
		osc.NewMessage("/x", 1, 2.5, "padme", false),
	}

	for _, m := range msgs {
		data := mustMarshal(t, m)
		if len(data)%4 != 0 {
			t.Errorf("len(Encode(%s)) = %d, not a multiple of 4", m, len(data))
		}
	}
}

func TestNumericClassification(t *testing.T) {
	tests := []struct {
		arg  interface{}
		tags string
	}{
		{4, ",i"},
		{int32(4), ",i"},
		{int64(4), ",i"},
		{4.5, ",f"},
		{float32(4.5), ",f"},
		// Classification is type-directed: an integral float still
		// encodes as a float, and negative zero stays a float.
		{3.0, ",f"},
		{math.Copysign(0, -1), ",f"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%T(%v)", tt.arg, tt.arg), func(t *testing.T) {
			m := osc.NewMessage("/x", tt.arg)
			tags, err := m.TypeTags()
			if err != nil {
				t.Fatalf("TypeTags: %v", err)
			}
			if tags != tt.tags {
				t.Errorf("tags = %q, want %q", tags, tt.tags)
			}
		})
	}
}

func TestBooleanZeroPayload(t *testing.T) {
	data := mustMarshal(t, osc.NewMessage("/a", true, false))

	// Padded address (4 bytes) plus padded ",TF" tag block (4 bytes) and
	// nothing else: the tag characters alone carry both values.
	if len(data) != 8 {
		t.Fatalf("len = %d, want 8 (booleans must contribute no payload)", len(data))
	}

	got, err := osc.ParseMessage(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got.Arguments) != 2 || got.Arguments[0] != true || got.Arguments[1] != false {
		t.Errorf("arguments = %#v, want [true false]", got.Arguments)
	}
}

func TestDecodeAddressOnly(t *testing.T) {
	data := mustMarshal(t, osc.NewMessage("/live/song/get/tempo"))

	got, err := osc.ParseMessage(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Address != "/live/song/get/tempo" {
		t.Errorf("address = %q", got.Address)
	}
	if len(got.Arguments) != 0 {
		t.Errorf("arguments = %#v, want empty", got.Arguments)
	}
}

func TestDecodeMissingTagBlock(t *testing.T) {
	// A bare padded address with no tag block at all is tolerated and
	// yields an empty argument list.
	var buf bytes.Buffer
	buf.WriteString("/x/y")
	buf.Write([]byte{0, 0, 0, 0})

	got, err := osc.ParseMessage(buf.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Address != "/x/y" || len(got.Arguments) != 0 {
		t.Errorf("got %s with %d arguments, want /x/y with none", got.Address, len(got.Arguments))
	}
}

func TestDecodeErrors(t *testing.T) {
	addr := []byte("/x/y\x00\x00\x00\x00") // padded "/x/y"

	tests := []struct {
		name string
		data []byte
	}{
		{"empty datagram", nil},
		{"no leading slash", []byte("xyzw")},
		{"length not multiple of 4", []byte("/x\x00")},
		{"truncated int payload", append(append([]byte{}, addr...), ",i\x00\x00"...)},
		{"truncated string payload", append(append([]byte{}, addr...), ",s\x00\x00"...)},
		{"unsupported tag", append(append([]byte{}, addr...), ",b\x00\x00"...)},
		{"unterminated address", []byte("/abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := osc.ParseMessage(tt.data); err == nil {
				t.Errorf("ParseMessage(%q) succeeded, want error", tt.data)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  *osc.Message
	}{
		{"empty address", osc.NewMessage("")},
		{"no leading slash", osc.NewMessage("live/test")},
		{"NUL in address", osc.NewMessage("/li\x00ve")},
		{"NUL in string argument", osc.NewMessage("/x", "a\x00b")},
		{"unsupported type", osc.NewMessage("/x", []byte{1, 2})},
		{"int64 overflow", osc.NewMessage("/x", int64(math.MaxInt32)+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.msg.MarshalBinary(); err == nil {
				t.Errorf("MarshalBinary succeeded, want error")
			}
		})
	}
}

func TestFloatPrecision(t *testing.T) {
	// float64 inputs are carried at float32 precision on the wire.
	in := 120.3
	data := mustMarshal(t, osc.NewMessage("/live/song/set/tempo", in))

	got, err := osc.ParseMessage(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f, ok := got.Arguments[0].(float32)
	if !ok {
		t.Fatalf("argument type = %T, want float32", got.Arguments[0])
	}
	if f != float32(in) {
		t.Errorf("value = %v, want %v", f, float32(in))
	}
}

func TestAppendRejectsUnsupported(t *testing.T) {
	m := osc.NewMessage("/x")
	if err := m.Append(1, "ok", true); err != nil {
		t.Fatalf("Append valid args: %v", err)
	}
	if err := m.Append(struct{}{}); err == nil {
		t.Error("Append(struct{}{}) succeeded, want error")
	}
	if err := m.Append(int64(math.MinInt32) - 1); err == nil {
		t.Error("Append(out-of-range int64) succeeded, want error")
	}
}

func TestMessageString(t *testing.T) {
	m := osc.NewMessage("/live/clip/fire", 2, true)
	if got, want := m.String(), "/live/clip/fire ,iT 2 true"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := osc.NewMessage("/live/test").String(); got != "/live/test" {
		t.Errorf("String() = %q, want %q", got, "/live/test")
	}
}
