package client

import "github.com/skybound-dev/ifconnect/pkg/wiretype"

// EventKind names one of the three event feeds a Client emits.
type EventKind string

const (
	// EventManifest fires once, after the manifest has loaded and before
	// EventMsg "ready".
	EventManifest EventKind = "manifest"
	// EventData fires for every delivered get/poll response that has no
	// per-call callback registered.
	EventData EventKind = "data"
	// EventMsg carries lifecycle notices: "ready", "reconnecting",
	// "reconnected", "closed", "error", "timeout".
	EventMsg EventKind = "msg"
)

// Event is delivered to a Listener or Callback. Data is set only for
// EventData; Message and Err are set only for EventMsg. Command is set for
// EventData, and also for the EventMsg that reports a failed get.
type Event struct {
	Kind    EventKind
	Command string
	Data    wiretype.Value
	Message string
	Err     error
}

// Listener receives every Event of the kind it was registered for via On.
type Listener func(Event)

// Callback is a per-call sink supplied to Get or PollRegister. When set, it
// receives the response in place of the EventData feed — one sink per
// registration, never both.
type Callback func(Event)
