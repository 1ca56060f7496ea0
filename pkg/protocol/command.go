// Package protocol implements the Infinite Flight Connect request/response
// frame formats: it turns a command id, a flag, and a wiretype.Value into the
// bytes that cross the wire, and turns response bytes back into a command id
// and payload. It is pure and side-effect-free — see wirebuf.ErrShortBuffer.
package protocol

// CommandID identifies a manifest entry. Values >= 0 name a real entry;
// ManifestCommandID is the sentinel used only for the manifest-fetch request
// and its response.
type CommandID int32

// ManifestCommandID is the sentinel command id that requests (and tags the
// response of) the manifest catalog itself.
const ManifestCommandID CommandID = -1

// TCPPort is the fixed port the simulator listens on for the manifest
// loader and both long-lived sessions.
const TCPPort = 10112

// Flag distinguishes a read request from a write/invoke request in the
// 1-byte flag field that follows every request's command id.
type Flag uint8

const (
	FlagRead  Flag = 0
	FlagWrite Flag = 1
)
