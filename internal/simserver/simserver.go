// Package simserver is a minimal stand-in for the simulator: it answers
// manifest requests, reads, writes, and invokes over TCP, and can announce
// itself over UDP the way discovery expects. It exists to back integration
// tests for pkg/client and cmd/ifconnectctl without a real simulator process,
// adapted from strandapi's accept-loop-with-semaphore server shape to this
// protocol's request/response framing instead of StrandAPI's opcodes.
package simserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
	"github.com/skybound-dev/ifconnect/pkg/wirebuf"
	"github.com/skybound-dev/ifconnect/pkg/wiretype"
)

// Entry is a manifest tuple, duplicated here rather than imported from
// pkg/manifest so this test double has no dependency on the client's own
// manifest parsing — it speaks only the wire format.
type Entry struct {
	ID   protocol.CommandID
	Type wiretype.Type
	Name string
}

// Invokable reports whether e is a command rather than a readable/writable
// state variable.
func (e Entry) Invokable() bool {
	return e.Type == wiretype.Command
}

// InvokeRecord is one received invoke request, retained for test
// assertions.
type InvokeRecord struct {
	ID   protocol.CommandID
	Args []protocol.InvokeArg
}

const maxConcurrentConns = 64

// Server is a fake simulator: a TCP listener serving manifest/read/write/
// invoke requests against an in-memory value table, plus an optional UDP
// discovery announcer.
type Server struct {
	mu      sync.Mutex
	entries []Entry
	values  map[protocol.CommandID]wiretype.Value
	invokes []InvokeRecord

	listener net.Listener
	addr     string
	conns    []net.Conn

	sem    chan struct{}
	wg     sync.WaitGroup
	closed chan struct{}
}

// New builds a Server serving the given manifest entries. No values are
// readable until SetValue populates them.
func New(entries []Entry) *Server {
	return &Server{
		entries: entries,
		values:  make(map[protocol.CommandID]wiretype.Value, len(entries)),
		sem:     make(chan struct{}, maxConcurrentConns),
		closed:  make(chan struct{}),
	}
}

// SetValue sets the value a subsequent read of id will return.
func (s *Server) SetValue(id protocol.CommandID, v wiretype.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = v
}

// Value returns the value currently stored for id, typically set by a
// prior Set from the client under test.
func (s *Server) Value(id protocol.CommandID) (wiretype.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[id]
	return v, ok
}

// Invokes returns a copy of every invoke request received so far.
func (s *Server) Invokes() []InvokeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]InvokeRecord, len(s.invokes))
	copy(out, s.invokes)
	return out
}

// Listen binds a TCP listener on a random loopback port and starts
// accepting connections. Call Addr to discover the bound address.
func (s *Server) Listen() error {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("simserver: listen: %w", err)
	}
	s.listener = l
	s.addr = l.Addr().String()
	go s.acceptLoop()
	return nil
}

// Addr returns the bound TCP address (host:port).
func (s *Server) Addr() string {
	return s.addr
}

// Close stops accepting new connections and waits for in-flight ones to
// finish. Safe to call more than once.
func (s *Server) Close() error {
	select {
	case <-s.closed:
		return nil
	default:
		close(s.closed)
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// AnnounceOnce sends a single UDP discovery datagram to broadcastAddr
// (typically "127.0.0.1:15000" in tests) carrying this server's own host.
func (s *Server) AnnounceOnce(broadcastAddr string) error {
	host, _, err := net.SplitHostPort(s.addr)
	if err != nil {
		return fmt.Errorf("simserver: split addr: %w", err)
	}
	payload, err := json.Marshal(struct {
		Addresses []string
	}{Addresses: []string{host}})
	if err != nil {
		return fmt.Errorf("simserver: marshal announcement: %w", err)
	}
	conn, err := net.Dial("udp", broadcastAddr)
	if err != nil {
		return fmt.Errorf("simserver: dial broadcast: %w", err)
	}
	defer conn.Close()
	_, err = conn.Write(payload)
	return err
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closed:
				return
			default:
				log.Printf("simserver: accept error: %v", err)
				return
			}
		}
		select {
		case s.sem <- struct{}{}:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer func() { <-s.sem }()
				s.handleConn(conn)
			}()
		default:
			log.Printf("simserver: overloaded, rejecting connection")
			conn.Close()
		}
	}
}

// DropConnections forcibly closes every currently open client connection,
// simulating the peer side of a network failure for reconnect tests.
func (s *Server) DropConnections() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		for i, c := range s.conns {
			if c == conn {
				s.conns = append(s.conns[:i], s.conns[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()

	defer conn.Close()
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)

	for {
		n, err := conn.Read(chunk)
		if err != nil {
			return
		}
		buf = append(buf, chunk[:n]...)

		for {
			consumed, ok := s.tryHandleRequest(conn, buf)
			if !ok {
				break
			}
			buf = buf[consumed:]
		}
	}
}

// tryHandleRequest decodes and services one request from the head of buf,
// if a complete one is present, and reports how many bytes it consumed.
func (s *Server) tryHandleRequest(conn net.Conn, buf []byte) (int, bool) {
	if len(buf) < 5 {
		return 0, false
	}
	r := wirebuf.NewReader(buf[:5])
	idRaw, _ := r.ReadInt32()
	flagRaw, _ := r.ReadUint8()
	id := protocol.CommandID(idRaw)
	flag := protocol.Flag(flagRaw)

	if flag == protocol.FlagRead {
		if id == protocol.ManifestCommandID {
			s.replyManifest(conn)
		} else {
			s.replyRead(conn, id)
		}
		return 5, true
	}

	entry, ok := s.entryByID(id)
	if !ok {
		// Unknown id on a write/invoke: the frame length depends on a
		// type we don't have, so drop everything buffered rather than
		// desyncing forever.
		return len(buf), true
	}
	if entry.Invokable() {
		return s.tryHandleInvoke(buf, id)
	}
	return s.tryHandleWrite(buf, id, entry.Type)
}

func (s *Server) entryByID(id protocol.CommandID) (Entry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (s *Server) tryHandleWrite(buf []byte, id protocol.CommandID, t wiretype.Type) (int, bool) {
	r := wirebuf.NewReader(buf[5:])
	v, err := wiretype.Decode(r, t)
	if err != nil {
		return 0, false
	}
	consumed := 5 + r.Offset()
	s.mu.Lock()
	s.values[id] = v
	s.mu.Unlock()
	return consumed, true
}

func (s *Server) tryHandleInvoke(buf []byte, id protocol.CommandID) (int, bool) {
	r := wirebuf.NewReader(buf[5:])
	n, err := r.ReadInt32()
	if err != nil {
		return 0, false
	}
	args := make([]protocol.InvokeArg, 0, n)
	for i := int32(0); i < n; i++ {
		name, err := r.ReadString()
		if err != nil {
			return 0, false
		}
		value, err := r.ReadString()
		if err != nil {
			return 0, false
		}
		args = append(args, protocol.InvokeArg{Name: name, Value: value})
	}
	consumed := 5 + r.Offset()
	s.mu.Lock()
	s.invokes = append(s.invokes, InvokeRecord{ID: id, Args: args})
	s.mu.Unlock()
	return consumed, true
}

func (s *Server) replyRead(conn net.Conn, id protocol.CommandID) {
	s.mu.Lock()
	v, ok := s.values[id]
	s.mu.Unlock()
	if !ok {
		log.Printf("simserver: read for id %d with no value set", id)
		return
	}
	w := wirebuf.NewWriter(16)
	if err := wiretype.Encode(w, v); err != nil {
		log.Printf("simserver: encode value for id %d: %v", id, err)
		return
	}
	writeFrame(conn, id, w.Bytes())
}

func (s *Server) replyManifest(conn net.Conn) {
	var sb strings.Builder
	s.mu.Lock()
	for _, e := range s.entries {
		fmt.Fprintf(&sb, "%d,%d,%s\n", e.ID, int32(e.Type), e.Name)
	}
	s.mu.Unlock()

	payload := wirebuf.NewWriter(4 + sb.Len())
	payload.WriteInt32(int32(sb.Len()))
	payload.WriteRaw([]byte(sb.String()))
	writeFrame(conn, protocol.ManifestCommandID, payload.Bytes())
}

func writeFrame(conn net.Conn, id protocol.CommandID, payload []byte) {
	header := wirebuf.NewWriter(8)
	header.WriteInt32(int32(id))
	header.WriteInt32(int32(len(payload)))
	conn.Write(header.Bytes())
	conn.Write(payload)
}
