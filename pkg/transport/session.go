// Package transport manages the two long-lived TCP sessions (command and
// poll) a Client keeps open against the simulator: dialing, reconnecting,
// and turning a socket into a channel of raw byte chunks. It knows nothing
// about command ids, wait lists, or the manifest — that FIFO-matching logic
// lives one layer up, in pkg/client, which is the only place with enough
// context to know what a given frame is a response to.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
)

// ErrSessionClosed is returned by Send once Close has been called.
var ErrSessionClosed = errors.New("ifconnect: session is closed")

// Session is one long-lived TCP connection, which its owner can redial with
// Connect after a loss, and a channel-based read loop so the owning
// Client's single executor goroutine never blocks on socket I/O directly.
type Session struct {
	Name string // "command" or "poll"; used only for log lines.
	Addr string

	dialTimeout time.Duration
	readTimeout time.Duration
	reconnect   bool
	keepAlive   time.Duration

	mu     sync.Mutex
	conn   net.Conn
	closed bool
	epoch  int // bumped on every reconnect; readLoop checks it to exit stale loops

	chunks chan []byte
	lost   chan error
}

// Config holds the knobs a Session needs; pkg/client.Config is a superset
// that gets projected down to this per session.
type Config struct {
	DialTimeout time.Duration
	ReadTimeout time.Duration
	Reconnect   bool
	KeepAlive   time.Duration
}

// NewSession builds a Session that is not yet connected. Call Connect to
// dial.
func NewSession(name, addr string, cfg Config) *Session {
	return &Session{
		Name:        name,
		Addr:        addr,
		dialTimeout: cfg.DialTimeout,
		readTimeout: cfg.ReadTimeout,
		reconnect:   cfg.Reconnect,
		keepAlive:   cfg.KeepAlive,
		chunks:      make(chan []byte, 16),
		lost:        make(chan error, 1),
	}
}

// Connect dials Addr and starts the read loop. Calling Connect again after
// a connection loss re-dials and starts a fresh read loop; the previous
// loop's chunks are discarded by the epoch check.
func (s *Session) Connect(ctx context.Context) error {
	dialer := net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("ifconnect: dial %s session %s: %w", s.Name, s.Addr, err)
	}
	if s.keepAlive > 0 {
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetKeepAlive(true)
			tc.SetKeepAlivePeriod(s.keepAlive)
		}
	}

	s.mu.Lock()
	s.conn = conn
	s.closed = false
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	go s.readLoop(conn, epoch)
	return nil
}

// Send writes data to the session's current connection in full.
func (s *Session) Send(data []byte) error {
	s.mu.Lock()
	conn := s.conn
	closed := s.closed
	s.mu.Unlock()

	if closed || conn == nil {
		return ErrSessionClosed
	}
	_, err := conn.Write(data)
	if err != nil {
		return fmt.Errorf("ifconnect: write %s session: %w", s.Name, err)
	}
	return nil
}

// Chunks returns the channel of raw bytes read off the socket. Each value
// is a distinct slice; the caller owns it.
func (s *Session) Chunks() <-chan []byte {
	return s.chunks
}

// Lost signals that the current connection has failed. A Session with
// Reconnect enabled expects its owner to call Connect again after reading
// from this channel; one with Reconnect disabled treats it as terminal.
func (s *Session) Lost() <-chan error {
	return s.lost
}

// Reconnect reports whether this session is configured to redial on
// failure.
func (s *Session) Reconnect() bool {
	return s.reconnect
}

// Close shuts down the current connection. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.epoch++
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Session) readLoop(conn net.Conn, epoch int) {
	buf := make([]byte, 4096)
	for {
		if s.readTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			s.mu.Lock()
			stale := epoch != s.epoch
			s.mu.Unlock()
			if stale {
				return
			}
			s.chunks <- chunk
		}
		if err != nil {
			s.mu.Lock()
			stale := epoch != s.epoch
			s.mu.Unlock()
			if stale {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				err = fmt.Errorf("%w: %v", protocol.ErrTimeout, err)
				conn.Close()
			}
			select {
			case s.lost <- err:
			default:
			}
			return
		}
	}
}
