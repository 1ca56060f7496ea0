package transport

import (
	"github.com/skybound-dev/ifconnect/pkg/protocol"
)

// Frame is one complete response: the decoded header plus its raw payload
// bytes, not yet interpreted against any wire type.
type Frame struct {
	Header  protocol.FrameHeader
	Payload []byte
}

// Demuxer accumulates raw byte chunks from a Session and splits them into
// complete frames. It holds no notion of command ids, wait lists, or the
// manifest — only the frame boundary itself — so it is a pure, reusable
// piece shared by both the command and poll session.
type Demuxer struct {
	buf []byte
}

// NewDemuxer returns an empty Demuxer.
func NewDemuxer() *Demuxer {
	return &Demuxer{buf: make([]byte, 0, 4096)}
}

// Feed appends a copy of chunk's bytes to the internal buffer; the caller
// may reuse chunk afterwards.
func (d *Demuxer) Feed(chunk []byte) {
	d.buf = append(d.buf, chunk...)
}

// Next pops the oldest complete frame off the buffer, if one is present.
// The returned Payload is a fresh slice independent of the internal buffer.
// A header declaring a negative payload length is malformed: everything
// buffered is discarded, since no frame boundary can be recovered after it.
func (d *Demuxer) Next() (Frame, bool) {
	if len(d.buf) >= protocol.FrameHeaderSize && le32(d.buf[4:8]) < 0 {
		d.buf = d.buf[:0]
		return Frame{}, false
	}
	complete, total := protocol.FrameComplete(d.buf)
	if !complete {
		return Frame{}, false
	}

	header := protocol.FrameHeader{
		CommandID:     protocol.CommandID(le32(d.buf[0:4])),
		PayloadLength: le32(d.buf[4:8]),
	}
	payload := make([]byte, header.PayloadLength)
	copy(payload, d.buf[protocol.FrameHeaderSize:total])

	remaining := make([]byte, len(d.buf)-total)
	copy(remaining, d.buf[total:])
	d.buf = remaining

	return Frame{Header: header, Payload: payload}, true
}

// Pending reports how many bytes are buffered and not yet returned by Next,
// including any complete frames still waiting to be popped.
func (d *Demuxer) Pending() int {
	return len(d.buf)
}

func le32(b []byte) int32 {
	return int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}
