// Package manifest holds the typed command catalog fetched once per
// connection lifecycle: the Manifest type and its two consistent indices, and
// the short-lived loader that fetches and parses it.
package manifest

import (
	"fmt"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
	"github.com/skybound-dev/ifconnect/pkg/wiretype"
)

// Entry is one manifest tuple: a command id, its declared wire type, and its
// path-shaped name (e.g. "aircraft/0/name"). A Type of wiretype.Command marks
// an invokable command rather than a readable/writable state variable.
type Entry struct {
	ID   protocol.CommandID
	Type wiretype.Type
	Name string
}

// Invokable reports whether e is a command (zero or more named string
// arguments on write, no response) rather than a scalar state variable.
func (e Entry) Invokable() bool {
	return e.Type == wiretype.Command
}

// Manifest is an immutable snapshot of the catalog: both the by-name and
// by-id indices are built once, at construction, and never mutated
// afterwards. The set of names and the set of ids are each unique within a
// snapshot.
type Manifest struct {
	byName map[string]Entry
	byID   map[protocol.CommandID]Entry
}

// New builds a Manifest from a flat list of entries, skipping (but not
// failing on) duplicate names or ids — the first occurrence of each wins.
// Malformed catalog text is rejected earlier, by Parse; by the time entries
// reach New they are well-formed individually.
func New(entries []Entry) *Manifest {
	m := &Manifest{
		byName: make(map[string]Entry, len(entries)),
		byID:   make(map[protocol.CommandID]Entry, len(entries)),
	}
	for _, e := range entries {
		if _, exists := m.byName[e.Name]; exists {
			continue
		}
		if _, exists := m.byID[e.ID]; exists {
			continue
		}
		m.byName[e.Name] = e
		m.byID[e.ID] = e
	}
	return m
}

// Empty returns a Manifest with no entries, used as the post-Close state.
func Empty() *Manifest {
	return New(nil)
}

// ByName looks up an entry by its manifest name.
func (m *Manifest) ByName(name string) (Entry, bool) {
	e, ok := m.byName[name]
	return e, ok
}

// ByID looks up an entry by its command id.
func (m *Manifest) ByID(id protocol.CommandID) (Entry, bool) {
	e, ok := m.byID[id]
	return e, ok
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	return len(m.byName)
}

// Entries returns a copy of every entry, in no particular order. Safe to
// range over; mutating the returned slice does not affect the Manifest.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, 0, len(m.byName))
	for _, e := range m.byName {
		out = append(out, e)
	}
	return out
}

// Resolve looks up name and returns an error suitable for returning directly
// from a Client method if the name is unknown.
func (m *Manifest) Resolve(name string) (Entry, error) {
	e, ok := m.ByName(name)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", protocol.ErrUnknownCommand, name)
	}
	return e, nil
}
