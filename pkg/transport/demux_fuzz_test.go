package transport

import (
	"testing"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
)

// FuzzDemuxerFeed checks that Demuxer.Feed+Next never panics on arbitrary
// byte streams and that any frame it does emit is internally consistent:
// its payload length matches what the header declared, and feeding the
// exact same bytes back through a fresh Demuxer reproduces it.
func FuzzDemuxerFeed(f *testing.F) {
	f.Add(frameBytes(1, []byte("hello")))
	f.Add(frameBytes(int32(protocol.ManifestCommandID), []byte("0,1,x\n")))
	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add(frameBytes(1, nil))
	f.Add(append(frameBytes(1, []byte("ab")), 0x01, 0x02))          // trailing partial frame
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0x7F, 0xFF, 0xFF, 0xFF, 0x7F}) // huge declared length, no payload
	f.Add([]byte{0x01, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}) // negative declared length (high bit set)

	f.Fuzz(func(t *testing.T, data []byte) {
		d := NewDemuxer()
		d.Feed(data)

		var frames []Frame
		for {
			fr, ok := d.Next()
			if !ok {
				break
			}
			if len(fr.Payload) != int(fr.Header.PayloadLength) {
				t.Fatalf("payload len %d != declared %d", len(fr.Payload), fr.Header.PayloadLength)
			}
			frames = append(frames, fr)
		}

		d2 := NewDemuxer()
		d2.Feed(data)
		for _, want := range frames {
			got, ok := d2.Next()
			if !ok {
				t.Fatalf("second pass failed to reproduce frame id %d", want.Header.CommandID)
			}
			if got.Header != want.Header {
				t.Fatalf("second pass header = %+v, want %+v", got.Header, want.Header)
			}
		}
	})
}
