package manifest

import (
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
)

// serveManifestOnce accepts a single connection on l, reads the request (and
// discards it), then writes resp as the entire response.
func serveManifestOnce(t *testing.T, l net.Listener, resp []byte) {
	t.Helper()
	conn, err := l.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	req := make([]byte, 5)
	if _, err := conn.Read(req); err != nil {
		return
	}
	conn.Write(resp)
}

func encodeManifestResponse(text string) []byte {
	payload := make([]byte, 0, 4+len(text))
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(text)))
	payload = append(payload, lenBuf...)
	payload = append(payload, text...)

	header := make([]byte, protocol.FrameHeaderSize)
	manifestCommandID := protocol.ManifestCommandID
	binary.LittleEndian.PutUint32(header[0:4], uint32(manifestCommandID))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))

	return append(header, payload...)
}

func TestLoadParsesManifestResponse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	text := "0,1,aircraft/0/altitude\n1,4,aircraft/0/name\n2,-1,commands/quit\n"
	go serveManifestOnce(t, l, encodeManifestResponse(text))

	m, err := Load(l.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	e, ok := m.ByName("aircraft/0/name")
	if !ok {
		t.Fatal("aircraft/0/name not found")
	}
	if e.ID != 1 {
		t.Errorf("ID = %d, want 1", e.ID)
	}
	cmd, ok := m.ByName("commands/quit")
	if !ok {
		t.Fatal("commands/quit not found")
	}
	if !cmd.Invokable() {
		t.Error("commands/quit should be Invokable")
	}
}

func TestLoadSplitAcrossSegments(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	text := "5,3,aircraft/0/groundspeed\n"
	full := encodeManifestResponse(text)

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		req := make([]byte, 5)
		if _, err := conn.Read(req); err != nil {
			return
		}
		// Dribble the response out one byte at a time to exercise the
		// loader's accumulation loop.
		for _, b := range full {
			conn.Write([]byte{b})
			time.Sleep(time.Millisecond)
		}
	}()

	m, err := Load(l.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e, ok := m.ByName("aircraft/0/groundspeed")
	if !ok {
		t.Fatal("aircraft/0/groundspeed not found")
	}
	if e.ID != 5 {
		t.Errorf("ID = %d, want 5", e.ID)
	}
}

func TestLoadDialFailureIsManifestError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close() // nothing listening now

	_, err = Load(addr, 200*time.Millisecond)
	if !errors.Is(err, protocol.ErrManifestError) {
		t.Fatalf("err = %v, want it to wrap ErrManifestError", err)
	}
}

func TestLoadPeerClosesBeforeHeaderComplete(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		req := make([]byte, 5)
		conn.Read(req)
		conn.Write([]byte{0x00, 0x00}) // far short of the 12-byte minimum
		conn.Close()
	}()

	_, err = Load(l.Addr().String(), time.Second)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestLoadUsesDefaultTimeoutWhenNonPositive(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	text := "9,0,aircraft/0/onground\n"
	go serveManifestOnce(t, l, encodeManifestResponse(text))

	m, err := Load(l.Addr().String(), 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}
