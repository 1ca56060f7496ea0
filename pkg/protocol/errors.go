package protocol

import "errors"

// Error taxonomy. Transport-level errors are recovered locally by
// pkg/client when reconnect is enabled and never reach the caller directly;
// caller-facing errors are returned synchronously from Client methods.
var (
	// ErrDiscoveryTimeout is returned when no UDP discovery responder answers
	// within the configured deadline.
	ErrDiscoveryTimeout = errors.New("ifconnect: discovery timed out")

	// ErrManifestError wraps a manifest-socket failure: dial failure,
	// timeout, peer close before the full payload arrived, or a negative
	// declared text length.
	ErrManifestError = errors.New("ifconnect: manifest load failed")

	// ErrTransportError wraps a socket error on a long-lived session.
	ErrTransportError = errors.New("ifconnect: transport error")

	// ErrTimeout is a read timeout on a long-lived session.
	ErrTimeout = errors.New("ifconnect: read timeout")

	// ErrUnknownCommand is returned when the embedder names a manifest entry
	// that is not present in the loaded manifest.
	ErrUnknownCommand = errors.New("ifconnect: unknown command")

	// ErrTypeMismatch is returned when Set is called with a value
	// incompatible with the manifest's declared type for that name.
	ErrTypeMismatch = errors.New("ifconnect: type mismatch")

	// ErrNotConnected is returned when Get/Set/Run is called before Ready or
	// after Close.
	ErrNotConnected = errors.New("ifconnect: not connected")
)
