// Package wirebuf provides the little-endian byte buffer primitives used to
// encode and decode Infinite Flight Connect wire frames. All multi-byte
// integers and floats are written and read in little-endian order.
package wirebuf

import (
	"encoding/binary"
	"math"
)

// Writer is a growable byte buffer used to encode a single request frame.
type Writer struct {
	data []byte
}

// NewWriter returns a Writer pre-allocated with the given capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{data: make([]byte, 0, capacity)}
}

// Bytes returns the accumulated encoded bytes.
func (w *Writer) Bytes() []byte {
	return w.data
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.data)
}

// grow ensures room for n additional bytes, returning the write offset.
func (w *Writer) grow(n int) int {
	off := len(w.data)
	need := off + n
	if need <= cap(w.data) {
		w.data = w.data[:need]
		return off
	}
	newCap := cap(w.data) * 2
	if newCap < need {
		newCap = need
	}
	tmp := make([]byte, need, newCap)
	copy(tmp, w.data)
	w.data = tmp
	return off
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	off := w.grow(1)
	w.data[off] = v
}

// WriteInt32 appends a 32-bit signed integer in little-endian order.
func (w *Writer) WriteInt32(v int32) {
	off := w.grow(4)
	binary.LittleEndian.PutUint32(w.data[off:], uint32(v))
}

// WriteInt64 appends a 64-bit signed integer in little-endian order.
func (w *Writer) WriteInt64(v int64) {
	off := w.grow(8)
	binary.LittleEndian.PutUint64(w.data[off:], uint64(v))
}

// WriteFloat32 appends a 32-bit IEEE-754 float in little-endian order.
func (w *Writer) WriteFloat32(v float32) {
	off := w.grow(4)
	binary.LittleEndian.PutUint32(w.data[off:], math.Float32bits(v))
}

// WriteFloat64 appends a 64-bit IEEE-754 float in little-endian order.
func (w *Writer) WriteFloat64(v float64) {
	off := w.grow(8)
	binary.LittleEndian.PutUint64(w.data[off:], math.Float64bits(v))
}

// WriteBool appends a single byte: 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteString appends a length-prefixed UTF-8 string: a little-endian int32
// byte length followed by the raw bytes.
func (w *Writer) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	off := w.grow(len(s))
	copy(w.data[off:], s)
}

// WriteRaw appends p verbatim with no length prefix.
func (w *Writer) WriteRaw(p []byte) {
	off := w.grow(len(p))
	copy(w.data[off:], p)
}
