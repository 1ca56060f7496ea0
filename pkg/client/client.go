// Package client is the public SDK surface: a Client dials (or discovers)
// the simulator, loads its manifest, opens the command and poll sessions,
// and exposes Get/Set/Run/PollRegister/PollDeregister/On over them. All
// protocol state — queues, wait lists, cursor, cache — is owned by a single
// goroutine (run) fed through a channel of closures; every public method
// hands its work to that goroutine and waits for the result, the idiomatic
// Go stand-in for "a dedicated worker" serialising access to shared state.
package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skybound-dev/ifconnect/pkg/discovery"
	"github.com/skybound-dev/ifconnect/pkg/manifest"
	"github.com/skybound-dev/ifconnect/pkg/protocol"
	"github.com/skybound-dev/ifconnect/pkg/transport"
	"github.com/skybound-dev/ifconnect/pkg/wirebuf"
	"github.com/skybound-dev/ifconnect/pkg/wiretype"
)

// Config holds every knob a Client can be constructed with. Zero value
// plus defaultConfig's overrides is a usable configuration: discovery on,
// reconnect on, no read timeout, a 1s manifest timeout, no poll throttle.
type Config struct {
	Host             string
	Port             int
	KeepAlive        bool
	Reconnect        bool
	Timeout          time.Duration
	ManifestTimeout  time.Duration
	DiscoveryTimeout time.Duration
	PollThrottle     time.Duration
	Logger           *log.Logger
}

func defaultConfig() Config {
	return Config{
		Port:             protocol.TCPPort,
		Reconnect:        true,
		ManifestTimeout:  manifest.DefaultTimeout,
		DiscoveryTimeout: discovery.DefaultTimeout,
		Logger:           log.New(os.Stderr, "ifconnect: ", log.LstdFlags),
	}
}

// Option configures a Client during construction.
type Option func(*Config)

// WithHostPort skips discovery and connects directly to host:port.
func WithHostPort(host string, port int) Option {
	return func(c *Config) {
		c.Host = host
		c.Port = port
	}
}

// WithKeepAlive enables TCP keepalive on both long-lived sessions.
func WithKeepAlive(enabled bool) Option {
	return func(c *Config) { c.KeepAlive = enabled }
}

// WithReconnect controls whether a session error is recovered locally
// (true, the default) or terminates the Client (false).
func WithReconnect(enabled bool) Option {
	return func(c *Config) { c.Reconnect = enabled }
}

// WithTimeout sets the read timeout on the command and poll sessions.
// Zero (the default) means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithManifestTimeout sets the read timeout on the manifest loader.
func WithManifestTimeout(d time.Duration) Option {
	return func(c *Config) { c.ManifestTimeout = d }
}

// WithDiscoveryTimeout sets how long Init waits for a UDP discovery
// announcement before giving up, when no explicit host was configured.
func WithDiscoveryTimeout(d time.Duration) Option {
	return func(c *Config) { c.DiscoveryTimeout = d }
}

// WithPollThrottle sets the delay between poll dispatch and write.
func WithPollThrottle(d time.Duration) Option {
	return func(c *Config) { c.PollThrottle = d }
}

// WithLogger overrides the diagnostic logger. Pass log.New(io.Discard, "",
// 0) to silence it.
func WithLogger(l *log.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

type sessionKind int

const (
	sessionCommand sessionKind = iota
	sessionPoll
)

func (k sessionKind) String() string {
	if k == sessionCommand {
		return "command"
	}
	return "poll"
}

// Client is one library instance. Multiple Clients may coexist in a
// process; there is no shared package-level state.
type Client struct {
	cfg Config

	ops       chan func()
	runExited chan struct{}
	running   atomic.Bool // set once Init has started run
	closeOnce sync.Once
	stopped   bool

	listenersMu sync.RWMutex
	listeners   map[EventKind][]Listener

	state    clientState
	manifest *manifest.Manifest
	cache    map[string]CacheEntry

	cmdSession  *transport.Session
	pollSession *transport.Session
	cmdDemux    *transport.Demuxer
	pollDemux   *transport.Demuxer

	cmdWait  []protocol.CommandID
	pollWait []protocol.CommandID

	queue *requestQueue
	poll  *pollEngine

	cmdReconnectPending  bool
	pollReconnectPending bool
}

// New builds a Client in the Idle state. Call Init to connect.
func New(opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		cfg:       cfg,
		ops:       make(chan func()),
		runExited: make(chan struct{}),
		listeners: make(map[EventKind][]Listener),
		manifest:  manifest.Empty(),
		cache:     make(map[string]CacheEntry),
		cmdDemux:  transport.NewDemuxer(),
		pollDemux: transport.NewDemuxer(),
		queue:     newRequestQueue(),
		poll:      newPollEngine(0),
	}
}

// Init runs discovery (unless a host was configured), loads the manifest,
// and opens both long-lived sessions, in that order — Idle, Discovering,
// ManifestLoading, Connecting(command), Connecting(poll), Ready. It
// returns once Ready, or on the first failure, at which point the state
// reverts to Idle.
func (c *Client) Init(ctx context.Context) error {
	host, port := c.cfg.Host, c.cfg.Port
	if host == "" {
		c.state = stateDiscovering
		ip, err := discovery.Discover(ctx, c.cfg.DiscoveryTimeout)
		if err != nil {
			c.state = stateIdle
			return err
		}
		host = ip
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	c.state = stateManifestLoading
	m, err := manifest.Load(addr, c.cfg.ManifestTimeout)
	if err != nil {
		c.state = stateIdle
		return err
	}
	c.manifest = m
	c.emit(Event{Kind: EventManifest})

	sessCfg := transport.Config{
		DialTimeout: defaultDialTimeout,
		ReadTimeout: c.cfg.Timeout,
		Reconnect:   c.cfg.Reconnect,
		KeepAlive:   keepAliveFor(c.cfg),
	}

	c.state = stateConnectingCommand
	c.cmdSession = transport.NewSession("command", addr, sessCfg)
	if err := c.cmdSession.Connect(ctx); err != nil {
		c.state = stateIdle
		return fmt.Errorf("%w: %v", protocol.ErrTransportError, err)
	}

	c.state = stateConnectingPoll
	c.pollSession = transport.NewSession("poll", addr, sessCfg)
	if err := c.pollSession.Connect(ctx); err != nil {
		c.state = stateIdle
		return fmt.Errorf("%w: %v", protocol.ErrTransportError, err)
	}

	c.poll.throttle = c.cfg.PollThrottle
	c.state = stateReady
	c.emit(Event{Kind: EventMsg, Message: "ready"})

	c.running.Store(true)
	go c.run()
	return nil
}

// defaultDialTimeout bounds the initial TCP handshake on each session. It is
// independent of cfg.Timeout, which governs the read deadline applied once a
// session is already connected.
const defaultDialTimeout = 10 * time.Second

func keepAliveFor(cfg Config) time.Duration {
	if !cfg.KeepAlive {
		return 0
	}
	return 30 * time.Second
}

// Get enqueues a one-shot read. The result is delivered to cb, or as an
// EventData to On listeners if cb is nil.
func (c *Client) Get(name string, cb Callback) error {
	return c.doSync(func() error {
		if c.state != stateReady {
			return protocol.ErrNotConnected
		}
		c.queue.enqueue(getRequest{name: name, callback: cb})
		c.pumpQueue()
		return nil
	})
}

// Set writes v to name. The manifest's declared type for name must match
// v's type exactly. No response is expected from the peer.
func (c *Client) Set(name string, v wiretype.Value) error {
	return c.doSync(func() error {
		if c.state != stateReady {
			return protocol.ErrNotConnected
		}
		entry, err := c.manifest.Resolve(name)
		if err != nil {
			return err
		}
		if entry.Type != v.Type {
			return fmt.Errorf("%w: %q wants %s, got %s", protocol.ErrTypeMismatch, name, entry.Type, v.Type)
		}
		data, err := protocol.EncodeWrite(entry.ID, v)
		if err != nil {
			return err
		}
		return c.cmdSession.Send(data)
	})
}

// Run invokes a command-type manifest entry with the given named args.
func (c *Client) Run(name string, args []protocol.InvokeArg) error {
	return c.doSync(func() error {
		if c.state != stateReady {
			return protocol.ErrNotConnected
		}
		entry, err := c.manifest.Resolve(name)
		if err != nil {
			return err
		}
		if !entry.Invokable() {
			return fmt.Errorf("%w: %q is not a command", protocol.ErrTypeMismatch, name)
		}
		return c.cmdSession.Send(protocol.EncodeInvoke(entry.ID, args))
	})
}

// PollRegister adds name to the round-robin subscription set. Registering
// an already-registered name only refreshes its callback and leaves the
// set otherwise unchanged.
func (c *Client) PollRegister(name string, cb Callback) error {
	return c.doSync(func() error {
		if c.state != stateReady {
			return protocol.ErrNotConnected
		}
		c.poll.register(name, cb)
		c.pumpPoll()
		return nil
	})
}

// PollDeregister removes name from the subscription set, if present.
func (c *Client) PollDeregister(name string) error {
	return c.doSync(func() error {
		if c.state != stateReady {
			return protocol.ErrNotConnected
		}
		c.poll.deregister(name)
		return nil
	})
}

// On subscribes listener to every future event of kind. It may be called
// before Init, to catch the EventManifest and "ready" EventMsg fired
// during Init itself.
func (c *Client) On(kind EventKind, listener Listener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners[kind] = append(c.listeners[kind], listener)
}

// State returns the cached value for name and whether it has ever been
// delivered.
func (c *Client) State(name string) (CacheEntry, bool, error) {
	var entry CacheEntry
	var ok bool
	err := c.doSync(func() error {
		entry, ok = c.cache[name]
		return nil
	})
	return entry, ok, err
}

// Manifest returns a copy of every entry in the loaded manifest.
func (c *Client) Manifest() ([]manifest.Entry, error) {
	var entries []manifest.Entry
	err := c.doSync(func() error {
		if c.manifest == nil || c.manifest.Len() == 0 {
			return nil
		}
		entries = c.manifest.Entries()
		return nil
	})
	return entries, err
}

// Close tears down both sessions and resets every in-memory structure:
// manifest indices, wait lists, queues, and the state cache. It is safe to
// call more than once.
func (c *Client) Close() error {
	err := c.doSync(func() error {
		if c.cmdSession != nil {
			c.cmdSession.Close()
		}
		if c.pollSession != nil {
			c.pollSession.Close()
		}
		c.manifest = manifest.Empty()
		c.cache = make(map[string]CacheEntry)
		c.cmdWait = nil
		c.pollWait = nil
		c.cmdDemux = transport.NewDemuxer()
		c.pollDemux = transport.NewDemuxer()
		c.queue.reset()
		c.poll.reset()
		c.state = stateIdle
		c.stopped = true
		c.emit(Event{Kind: EventMsg, Message: "closed"})
		return nil
	})
	if err == protocol.ErrNotConnected {
		return nil
	}
	return err
}

// doSync hands fn to the run goroutine and blocks for its result. It is
// the only way public methods touch protocol state, so that state is
// never mutated from more than one goroutine. Before Init has reached Ready
// there is no run goroutine, and doSync returns ErrNotConnected.
func (c *Client) doSync(fn func() error) error {
	if !c.running.Load() {
		return protocol.ErrNotConnected
	}
	errCh := make(chan error, 1)
	op := func() { errCh <- fn() }
	select {
	case c.ops <- op:
	case <-c.runExited:
		return protocol.ErrNotConnected
	}
	select {
	case err := <-errCh:
		return err
	case <-c.runExited:
		return protocol.ErrNotConnected
	}
}

func (c *Client) emit(evt Event) {
	c.listenersMu.RLock()
	ls := append([]Listener(nil), c.listeners[evt.Kind]...)
	c.listenersMu.RUnlock()
	for _, l := range ls {
		l(evt)
	}
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Printf(format, args...)
	}
}

// run is the single executor goroutine: every mutation of queues, wait
// lists, the cursor, and the cache happens here, and only here.
func (c *Client) run() {
	defer close(c.runExited)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case fn := <-c.ops:
			fn()
			if c.stopped {
				return
			}
		case chunk := <-c.cmdSession.Chunks():
			c.handleChunk(sessionCommand, chunk)
		case chunk := <-c.pollSession.Chunks():
			c.handleChunk(sessionPoll, chunk)
		case err := <-c.cmdSession.Lost():
			c.handleLost(sessionCommand, err)
		case err := <-c.pollSession.Lost():
			c.handleLost(sessionPoll, err)
		case <-ticker.C:
			c.pumpQueue()
			c.pumpPoll()
			c.retryReconnects()
		}
	}
}

func (c *Client) demuxFor(which sessionKind) *transport.Demuxer {
	if which == sessionCommand {
		return c.cmdDemux
	}
	return c.pollDemux
}

func (c *Client) waitListFor(which sessionKind) *[]protocol.CommandID {
	if which == sessionCommand {
		return &c.cmdWait
	}
	return &c.pollWait
}

func (c *Client) sessionFor(which sessionKind) *transport.Session {
	if which == sessionCommand {
		return c.cmdSession
	}
	return c.pollSession
}

func (c *Client) handleChunk(which sessionKind, chunk []byte) {
	demux := c.demuxFor(which)
	demux.Feed(chunk)
	for {
		frame, ok := demux.Next()
		if !ok {
			return
		}
		c.deliver(which, frame)
	}
}

// deliver implements the response demultiplexer's completion steps: lookup,
// wait-list match, decode, cache update, delivery, and pumping the next
// queued work once the wait list drains.
func (c *Client) deliver(which sessionKind, frame transport.Frame) {
	entry, ok := c.manifest.ByID(frame.Header.CommandID)
	if !ok {
		c.logf("%s: discarding frame for unknown command id %d", which, frame.Header.CommandID)
		return
	}

	wl := c.waitListFor(which)
	idx := indexOfCommandID(*wl, frame.Header.CommandID)
	if idx < 0 {
		c.logf("%s: discarding stale frame for %q (reconnect debris)", which, entry.Name)
		return
	}
	*wl = removeCommandIDAt(*wl, idx)

	r := wirebuf.NewReader(frame.Payload)
	value, err := wiretype.Decode(r, entry.Type)
	if err != nil {
		c.logf("%s: discarding undecodable frame for %q: %v", which, entry.Name, err)
		return
	}

	c.cache[entry.Name] = CacheEntry{Value: value, Timestamp: time.Now()}

	evt := Event{Kind: EventData, Command: entry.Name, Data: value}
	var cb Callback
	if which == sessionCommand {
		cb = c.queue.callbackFor(entry.Name)
	} else {
		cb = c.poll.callbackFor(entry.Name)
	}
	if cb != nil {
		cb(evt)
	} else {
		c.emit(evt)
	}

	if len(*wl) == 0 {
		switch which {
		case sessionCommand:
			c.queue.clearInFlight()
			c.pumpQueue()
		case sessionPoll:
			c.poll.setInFlight(false)
			c.pumpPoll()
		}
	}
}

// pumpQueue dispatches the next pending read, skipping (with an error
// delivered to its callback) any entry naming an unknown manifest entry.
func (c *Client) pumpQueue() {
	if c.state != stateReady {
		return
	}
	for {
		r, ok := c.queue.dispatch()
		if !ok {
			return
		}
		entry, err := c.manifest.Resolve(r.name)
		if err != nil {
			c.queue.clearInFlight()
			if r.callback != nil {
				r.callback(Event{Kind: EventMsg, Command: r.name, Err: err})
			} else {
				c.emit(Event{Kind: EventMsg, Command: r.name, Err: err})
			}
			continue
		}
		if err := c.cmdSession.Send(protocol.EncodeRead(entry.ID)); err != nil {
			c.queue.clearInFlight()
			c.logf("get %q: send failed: %v", r.name, err)
			continue
		}
		c.cmdWait = append(c.cmdWait, entry.ID)
		return
	}
}

// pumpPoll dispatches the next round-robin subscription read, honoring the
// configured throttle and the wait-list duplicate-suppression check.
func (c *Client) pumpPoll() {
	if c.state != stateReady || c.poll.isInFlight() || c.poll.empty() {
		return
	}
	name, ok := c.poll.current()
	if !ok {
		return
	}
	entry, err := c.manifest.Resolve(name)
	if err != nil {
		c.logf("poll %q: %v", name, err)
		return
	}
	if indexOfCommandID(c.pollWait, entry.ID) >= 0 {
		// Already outstanding; the next demultiplex completion will pump
		// the engine forward instead of this tick.
		return
	}

	if c.poll.throttle > 0 {
		c.poll.setInFlight(true)
		time.AfterFunc(c.poll.throttle, func() {
			select {
			case c.ops <- func() { c.dispatchPoll(entry) }:
			case <-c.runExited:
			}
		})
		return
	}
	c.dispatchPoll(entry)
}

func (c *Client) dispatchPoll(entry manifest.Entry) {
	if c.state != stateReady {
		return
	}
	if err := c.pollSession.Send(protocol.EncodeRead(entry.ID)); err != nil {
		c.poll.setInFlight(false)
		c.logf("poll %q: send failed: %v", entry.Name, err)
		return
	}
	c.pollWait = append(c.pollWait, entry.ID)
	c.poll.setInFlight(true)
}

// handleLost implements the reconnect policy: emit "timeout" first if the
// loss was a read deadline expiry, then emit "reconnecting", tear down the
// failing session's wait list and receive buffer, and — if reconnect is
// enabled — redial immediately, emitting "reconnected" on success or
// marking the session for retry on the next drain tick.
func (c *Client) handleLost(which sessionKind, lostErr error) {
	if errors.Is(lostErr, protocol.ErrTimeout) {
		c.emit(Event{Kind: EventMsg, Message: "timeout", Err: lostErr})
	}
	c.emit(Event{Kind: EventMsg, Message: "reconnecting", Err: lostErr})

	switch which {
	case sessionCommand:
		c.cmdWait = nil
		c.cmdDemux = transport.NewDemuxer()
		c.queue.abandon()
	case sessionPoll:
		c.pollWait = nil
		c.pollDemux = transport.NewDemuxer()
		c.poll.setInFlight(false)
	}

	sess := c.sessionFor(which)
	if !sess.Reconnect() {
		c.state = stateIdle
		c.emit(Event{Kind: EventMsg, Message: "error", Err: lostErr})
		return
	}

	if c.reconnectOnce(which) {
		return
	}
	c.setReconnectPending(which, true)
}

// reconnectOnce attempts a single redial and reports success. On success
// it clears any pending-retry flag and resumes queued/poll work.
func (c *Client) reconnectOnce(which sessionKind) bool {
	sess := c.sessionFor(which)
	if err := sess.Connect(context.Background()); err != nil {
		c.logf("%s session reconnect failed: %v", which, err)
		return false
	}
	c.setReconnectPending(which, false)
	c.emit(Event{Kind: EventMsg, Message: "reconnected"})
	switch which {
	case sessionCommand:
		c.pumpQueue()
	case sessionPoll:
		c.pumpPoll()
	}
	return true
}

func (c *Client) setReconnectPending(which sessionKind, v bool) {
	if which == sessionCommand {
		c.cmdReconnectPending = v
	} else {
		c.pollReconnectPending = v
	}
}

// retryReconnects is called on every drain tick; it retries any session
// whose immediate redial attempt in handleLost failed.
func (c *Client) retryReconnects() {
	if c.cmdReconnectPending {
		c.reconnectOnce(sessionCommand)
	}
	if c.pollReconnectPending {
		c.reconnectOnce(sessionPoll)
	}
}

func indexOfCommandID(ids []protocol.CommandID, target protocol.CommandID) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}

func removeCommandIDAt(ids []protocol.CommandID, i int) []protocol.CommandID {
	return append(ids[:i], ids[i+1:]...)
}
