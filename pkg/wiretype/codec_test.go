package wiretype

import (
	"testing"

	"github.com/skybound-dev/ifconnect/pkg/wirebuf"
)

func TestScalarRoundTrip(t *testing.T) {
	cases := []Value{
		Bool(false),
		Bool(true),
		Int(1),
		Int(-1),
		Float32(1.0),
		Float64(3.14159),
		Str("aircraft/0/alt"),
		Str(""),
		Int64(1234567890123),
	}

	for _, want := range cases {
		w := wirebuf.NewWriter(16)
		if err := Encode(w, want); err != nil {
			t.Fatalf("Encode(%v): %v", want, err)
		}

		got, err := Decode(wirebuf.NewReader(w.Bytes()), want.Type)
		if err != nil {
			t.Fatalf("Decode(%v): %v", want, err)
		}
		if got.String() != want.String() || got.Type != want.Type {
			t.Errorf("round trip mismatch: got %v (%s), want %v (%s)", got, got.Type, want, want.Type)
		}
	}
}

func TestBooleanByteSemantics(t *testing.T) {
	for _, b := range []byte{0x00, 0x01, 0x02, 0xFF} {
		v, err := Decode(wirebuf.NewReader([]byte{b}), Boolean)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		want := b != 0
		got, err := v.AsBool()
		if err != nil {
			t.Fatalf("AsBool: %v", err)
		}
		if got != want {
			t.Errorf("byte 0x%02x decoded to %v, want %v", b, got, want)
		}
	}
}

func TestParseTypeCanonicalisesOutOfRangeToCommand(t *testing.T) {
	cases := []struct {
		raw  int32
		want Type
	}{
		{0, Boolean},
		{5, Long},
		{-1, Command},
		{6, Command},
		{-99, Command},
	}
	for _, c := range cases {
		if got := ParseType(c.raw); got != c.want {
			t.Errorf("ParseType(%d) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestAsAccessorsRejectWrongType(t *testing.T) {
	v := Int(42)
	if _, err := v.AsString(); err == nil {
		t.Fatal("AsString on an Integer Value should fail")
	}
	if _, err := v.AsBool(); err == nil {
		t.Fatal("AsBool on an Integer Value should fail")
	}
}

func TestDecodeShortBufferDoesNotPanic(t *testing.T) {
	for _, typ := range []Type{Boolean, Integer, Float, Double, String, Long} {
		if _, err := Decode(wirebuf.NewReader(nil), typ); err != wirebuf.ErrShortBuffer {
			t.Errorf("Decode(%s) on empty buffer = %v, want ErrShortBuffer", typ, err)
		}
	}
}
