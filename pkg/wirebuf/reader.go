package wirebuf

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned when the Reader has fewer bytes than required
// to satisfy a read. Callers decoding from a partly filled buffer (such as
// internal/simserver) treat this as "wait for more bytes to arrive" rather
// than a fatal decode error — the codec is pure and side-effect-free, so a
// short read never consumes partial data.
var ErrShortBuffer = errors.New("wirebuf: insufficient data in buffer")

// Reader provides sequential, zero-copy decoding of a byte slice.
type Reader struct {
	data   []byte
	offset int
}

// NewReader wraps an existing byte slice for decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// Offset returns the current read position.
func (r *Reader) Offset() int {
	return r.offset
}

// need checks that at least n bytes remain and advances the offset past them,
// returning the pre-advance offset.
func (r *Reader) need(n int) (int, error) {
	if r.offset+n > len(r.data) {
		return 0, ErrShortBuffer
	}
	off := r.offset
	r.offset += n
	return off, nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	off, err := r.need(1)
	if err != nil {
		return 0, err
	}
	return r.data[off], nil
}

// ReadInt32 reads a 32-bit signed integer in little-endian order.
func (r *Reader) ReadInt32() (int32, error) {
	off, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(r.data[off:])), nil
}

// ReadInt64 reads a 64-bit signed integer in little-endian order.
func (r *Reader) ReadInt64() (int64, error) {
	off, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(r.data[off:])), nil
}

// ReadFloat32 reads a 32-bit IEEE-754 float in little-endian order.
func (r *Reader) ReadFloat32() (float32, error) {
	off, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(r.data[off:])), nil
}

// ReadFloat64 reads a 64-bit IEEE-754 float in little-endian order.
func (r *Reader) ReadFloat64() (float64, error) {
	off, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.data[off:])), nil
}

// ReadBool reads a single byte: any nonzero byte decodes true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadString reads a length-prefixed UTF-8 string. The returned string holds
// its own copy of the bytes. On failure the offset is left where it was
// before the length prefix.
func (r *Reader) ReadString() (string, error) {
	start := r.offset
	length, err := r.ReadInt32()
	if err != nil {
		return "", err
	}
	if length < 0 {
		r.offset = start
		return "", ErrShortBuffer
	}
	off, err := r.need(int(length))
	if err != nil {
		r.offset = start
		return "", err
	}
	return string(r.data[off : off+int(length)]), nil
}

// ReadRaw reads n raw bytes with no length prefix. The returned slice is a
// sub-slice of the Reader's underlying buffer (zero-copy); callers that need
// to retain it beyond the Reader's lifetime must copy it.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	off, err := r.need(n)
	if err != nil {
		return nil, err
	}
	return r.data[off : off+n], nil
}
