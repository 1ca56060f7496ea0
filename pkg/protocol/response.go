package protocol

import (
	"github.com/skybound-dev/ifconnect/pkg/wirebuf"
)

// FrameHeaderSize is the fixed 8-byte header every response begins with:
// a 4-byte command id followed by a 4-byte payload length.
const FrameHeaderSize = 8

// FrameHeader is the decoded command id and payload length of one response
// frame, before the payload itself has been interpreted.
type FrameHeader struct {
	CommandID     CommandID
	PayloadLength int32
}

// DecodeFrameHeader reads the 8-byte response header from r. It returns
// wirebuf.ErrShortBuffer if fewer than 8 bytes are available.
func DecodeFrameHeader(r *wirebuf.Reader) (FrameHeader, error) {
	id, err := r.ReadInt32()
	if err != nil {
		return FrameHeader{}, err
	}
	length, err := r.ReadInt32()
	if err != nil {
		return FrameHeader{}, err
	}
	return FrameHeader{CommandID: CommandID(id), PayloadLength: length}, nil
}

// FrameComplete reports whether buf holds at least one complete frame: the
// 8-byte header plus its declared payload. A negative payload length is
// malformed and never completes, so callers treat it as discardable garbage
// rather than allocating a negative-length slice.
func FrameComplete(buf []byte) (complete bool, total int) {
	if len(buf) < FrameHeaderSize {
		return false, 0
	}
	r := wirebuf.NewReader(buf[:FrameHeaderSize])
	hdr, err := DecodeFrameHeader(r)
	if err != nil {
		return false, 0
	}
	if hdr.PayloadLength < 0 {
		return false, 0
	}
	total = FrameHeaderSize + int(hdr.PayloadLength)
	return len(buf) >= total, total
}
