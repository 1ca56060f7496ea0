package client

import "time"

// pollEngine is the poll session's round-robin subscription set: an
// insertion-ordered collection of names, a cursor, and an in-flight flag.
// It knows nothing about command ids or the manifest — the Client resolves
// a name to a command id at dispatch time.
type pollEngine struct {
	names     []string
	index     map[string]int
	callbacks map[string]Callback
	cursor    int
	inFlight  bool
	throttle  time.Duration
}

func newPollEngine(throttle time.Duration) *pollEngine {
	return &pollEngine{
		index:     make(map[string]int),
		callbacks: make(map[string]Callback),
		throttle:  throttle,
	}
}

// register appends name if absent and reports whether it was newly added.
// Idempotent by name: a second register for the same name only refreshes
// its callback.
func (p *pollEngine) register(name string, cb Callback) bool {
	if _, exists := p.index[name]; exists {
		if cb != nil {
			p.callbacks[name] = cb
		}
		return false
	}
	p.index[name] = len(p.names)
	p.names = append(p.names, name)
	if cb != nil {
		p.callbacks[name] = cb
	}
	return true
}

// deregister removes name if present and reports whether it was removed.
// If the cursor pointed past the removed entry it is shifted down; if it
// now points past the end it wraps to 0.
func (p *pollEngine) deregister(name string) bool {
	i, ok := p.index[name]
	if !ok {
		return false
	}
	p.names = append(p.names[:i], p.names[i+1:]...)
	delete(p.index, name)
	delete(p.callbacks, name)
	for n, idx := range p.index {
		if idx > i {
			p.index[n] = idx - 1
		}
	}
	if p.cursor > i {
		p.cursor--
	}
	switch {
	case len(p.names) == 0:
		p.cursor = 0
	case p.cursor >= len(p.names):
		p.cursor = 0
	}
	return true
}

// current returns the name at the cursor and advances the cursor, wrapping
// to the start of the set.
func (p *pollEngine) current() (string, bool) {
	if len(p.names) == 0 {
		return "", false
	}
	name := p.names[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.names)
	return name, true
}

func (p *pollEngine) callbackFor(name string) Callback {
	return p.callbacks[name]
}

func (p *pollEngine) setInFlight(v bool) {
	p.inFlight = v
}

func (p *pollEngine) isInFlight() bool {
	return p.inFlight
}

func (p *pollEngine) empty() bool {
	return len(p.names) == 0
}

func (p *pollEngine) reset() {
	p.names = nil
	p.index = make(map[string]int)
	p.callbacks = make(map[string]Callback)
	p.cursor = 0
	p.inFlight = false
}
