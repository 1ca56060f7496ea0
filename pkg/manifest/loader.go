package manifest

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
)

// DefaultTimeout is the manifest loader's read timeout when the embedder
// does not configure one.
const DefaultTimeout = 1000 * time.Millisecond

// minHeaderAndLength is the number of bytes the loader must have buffered
// before it can read the text length field: the 8-byte response header plus
// the 4-byte text-length prefix inside the payload.
const minHeaderAndLength = protocol.FrameHeaderSize + 4

// Load opens a dedicated TCP connection to addr (host:port), issues the
// manifest request, and parses the response into a Manifest. The connection
// is closed before Load returns, successfully or not.
//
// Failure modes — dial failure, socket timeout, peer close before the full
// payload arrives, or a negative declared text length — all surface wrapped
// in ErrManifestError. Catalog lines that do not parse are skipped by Parse
// and do not fail the load.
func Load(addr string, timeout time.Duration) (*Manifest, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", protocol.ErrManifestError, addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("%w: set deadline: %v", protocol.ErrManifestError, err)
	}

	if _, err := conn.Write(protocol.EncodeManifestRequest()); err != nil {
		return nil, fmt.Errorf("%w: write request: %v", protocol.ErrManifestError, err)
	}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)

	// Accumulate until the 8-byte header and the 4-byte text-length prefix
	// are both present.
	for len(buf) < minHeaderAndLength {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read header: %v", protocol.ErrManifestError, err)
		}
	}

	textLength := int32(binary.LittleEndian.Uint32(buf[protocol.FrameHeaderSize:minHeaderAndLength]))
	if textLength < 0 {
		return nil, fmt.Errorf("%w: negative text length %d", protocol.ErrManifestError, textLength)
	}
	total := minHeaderAndLength + int(textLength)

	for len(buf) < total {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read payload (%d/%d bytes): %v", protocol.ErrManifestError, len(buf), total, err)
		}
	}

	text := string(buf[minHeaderAndLength:total])
	return New(Parse(text)), nil
}
