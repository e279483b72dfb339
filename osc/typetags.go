package osc

import "math"

// TypeTag identifies an argument's wire type.
type TypeTag byte

const (
	TypeInt32   TypeTag = 'i'
	TypeFloat32 TypeTag = 'f'
	TypeString  TypeTag = 's'
	TypeTrue    TypeTag = 'T'
	TypeFalse   TypeTag = 'F'
	TypeInvalid TypeTag = 0
)

// ToTypeTag returns the wire type tag for the given argument value.
// Classification is type-directed: Go integer kinds map to 'i' and float
// kinds map to 'f', so float64(3) is still encoded as a float. Integers
// outside the int32 range and unsupported types map to TypeInvalid.
func ToTypeTag(arg interface{}) TypeTag {
	switch t := arg.(type) {
	case bool:
		if t {
			return TypeTrue
		}
		return TypeFalse
	case int32:
		return TypeInt32
	case int:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return TypeInvalid
		}
		return TypeInt32
	case int64:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return TypeInvalid
		}
		return TypeInt32
	case float32, float64:
		return TypeFloat32
	case string:
		return TypeString
	default:
		return TypeInvalid
	}
}
