package wiretype

import (
	"fmt"

	"github.com/skybound-dev/ifconnect/pkg/wirebuf"
)

// Encode writes v's payload to w using the wire layout for v.Type (spec
// §4.1's response payload table, reused for write-request payloads).
func Encode(w *wirebuf.Writer, v Value) error {
	switch v.Type {
	case Boolean:
		w.WriteBool(v.b)
	case Integer:
		w.WriteInt32(v.i)
	case Float:
		w.WriteFloat32(v.f)
	case Double:
		w.WriteFloat64(v.d)
	case String:
		w.WriteString(v.s)
	case Long:
		w.WriteInt64(v.l)
	default:
		return fmt.Errorf("wiretype: cannot encode a scalar payload for %s", v.Type)
	}
	return nil
}

// Decode reads a payload of wire type t from r and returns the decoded Value.
// It returns wirebuf.ErrShortBuffer if r does not yet hold enough bytes —
// callers must treat that as "wait for more data", not a fatal error.
func Decode(r *wirebuf.Reader, t Type) (Value, error) {
	switch t {
	case Boolean:
		b, err := r.ReadBool()
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case Integer:
		i, err := r.ReadInt32()
		if err != nil {
			return Value{}, err
		}
		return Int(i), nil
	case Float:
		f, err := r.ReadFloat32()
		if err != nil {
			return Value{}, err
		}
		return Float32(f), nil
	case Double:
		d, err := r.ReadFloat64()
		if err != nil {
			return Value{}, err
		}
		return Float64(d), nil
	case String:
		s, err := r.ReadString()
		if err != nil {
			return Value{}, err
		}
		return Str(s), nil
	case Long:
		l, err := r.ReadInt64()
		if err != nil {
			return Value{}, err
		}
		return Int64(l), nil
	default:
		return Value{}, fmt.Errorf("wiretype: cannot decode a scalar payload for %s", t)
	}
}

// EncodedSize returns the number of bytes Encode would write for a value of
// wire type t, or -1 if t is String (variable length, unknown in advance) or
// is not a scalar type at all (such as Command).
func EncodedSize(t Type) int {
	switch t {
	case Boolean:
		return 1
	case Integer, Float:
		return 4
	case Double, Long:
		return 8
	default:
		return -1
	}
}
