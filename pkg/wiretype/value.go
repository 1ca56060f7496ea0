package wiretype

import "fmt"

// Value is a tagged union holding exactly one decoded scalar of the type
// named by Type, in place of an untyped interface{} payload.
type Value struct {
	Type Type

	b  bool
	i  int32
	f  float32
	d  float64
	s  string
	l  int64
}

// Bool constructs a Boolean Value.
func Bool(v bool) Value { return Value{Type: Boolean, b: v} }

// Int constructs an Integer Value.
func Int(v int32) Value { return Value{Type: Integer, i: v} }

// Float32 constructs a Float Value.
func Float32(v float32) Value { return Value{Type: Float, f: v} }

// Float64 constructs a Double Value.
func Float64(v float64) Value { return Value{Type: Double, d: v} }

// Str constructs a String Value.
func Str(v string) Value { return Value{Type: String, s: v} }

// Int64 constructs a Long Value.
func Int64(v int64) Value { return Value{Type: Long, l: v} }

// ErrTypeMismatch is returned by the As* accessors when the Value's Type
// does not match the requested representation.
type ErrTypeMismatch struct {
	Want Type
	Got  Type
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("wiretype: value is %s, want %s", e.Got, e.Want)
}

// AsBool returns the boolean payload, or ErrTypeMismatch if Type != Boolean.
func (v Value) AsBool() (bool, error) {
	if v.Type != Boolean {
		return false, &ErrTypeMismatch{Want: Boolean, Got: v.Type}
	}
	return v.b, nil
}

// AsInt returns the int32 payload, or ErrTypeMismatch if Type != Integer.
func (v Value) AsInt() (int32, error) {
	if v.Type != Integer {
		return 0, &ErrTypeMismatch{Want: Integer, Got: v.Type}
	}
	return v.i, nil
}

// AsFloat32 returns the float32 payload, or ErrTypeMismatch if Type != Float.
func (v Value) AsFloat32() (float32, error) {
	if v.Type != Float {
		return 0, &ErrTypeMismatch{Want: Float, Got: v.Type}
	}
	return v.f, nil
}

// AsFloat64 returns the float64 payload, or ErrTypeMismatch if Type != Double.
func (v Value) AsFloat64() (float64, error) {
	if v.Type != Double {
		return 0, &ErrTypeMismatch{Want: Double, Got: v.Type}
	}
	return v.d, nil
}

// AsString returns the string payload, or ErrTypeMismatch if Type != String.
func (v Value) AsString() (string, error) {
	if v.Type != String {
		return "", &ErrTypeMismatch{Want: String, Got: v.Type}
	}
	return v.s, nil
}

// AsLong returns the int64 payload, or ErrTypeMismatch if Type != Long.
func (v Value) AsLong() (int64, error) {
	if v.Type != Long {
		return 0, &ErrTypeMismatch{Want: Long, Got: v.Type}
	}
	return v.l, nil
}

// String renders the Value for logging and CLI output.
func (v Value) String() string {
	switch v.Type {
	case Boolean:
		return fmt.Sprintf("%v", v.b)
	case Integer:
		return fmt.Sprintf("%d", v.i)
	case Float:
		return fmt.Sprintf("%g", v.f)
	case Double:
		return fmt.Sprintf("%g", v.d)
	case String:
		return v.s
	case Long:
		return fmt.Sprintf("%d", v.l)
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}
