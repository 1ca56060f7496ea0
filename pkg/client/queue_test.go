package client

import "testing"

func TestRequestQueueFIFOOrder(t *testing.T) {
	q := newRequestQueue()
	q.enqueue(getRequest{name: "a"})
	q.enqueue(getRequest{name: "b"})
	q.enqueue(getRequest{name: "c"})

	r, ok := q.dispatch()
	if !ok || r.name != "a" {
		t.Fatalf("dispatch() = %v, %v, want a, true", r, ok)
	}

	// A second dispatch while one is in flight must refuse.
	if _, ok := q.dispatch(); ok {
		t.Fatal("dispatch() should refuse while a request is in flight")
	}

	q.clearInFlight()
	r, ok = q.dispatch()
	if !ok || r.name != "b" {
		t.Fatalf("dispatch() = %v, %v, want b, true", r, ok)
	}
}

func TestRequestQueueNoDuplicateSuppression(t *testing.T) {
	q := newRequestQueue()
	q.enqueue(getRequest{name: "x"})
	q.enqueue(getRequest{name: "x"})

	if q.len() != 2 {
		t.Fatalf("len() = %d, want 2", q.len())
	}
}

func TestRequestQueueCallbackForMatchesInFlightName(t *testing.T) {
	q := newRequestQueue()
	called := false
	q.enqueue(getRequest{name: "y", callback: func(Event) { called = true }})
	q.dispatch()

	cb := q.callbackFor("y")
	if cb == nil {
		t.Fatal("expected a callback for the in-flight name")
	}
	cb(Event{})
	if !called {
		t.Error("callback was not invoked")
	}

	if q.callbackFor("z") != nil {
		t.Error("callbackFor should return nil for a name that is not in flight")
	}
}

func TestRequestQueueAbandonDropsInFlightSilently(t *testing.T) {
	q := newRequestQueue()
	q.enqueue(getRequest{name: "w"})
	q.enqueue(getRequest{name: "v"})
	q.dispatch()
	q.abandon()

	if q.callbackFor("w") != nil {
		t.Error("callbackFor should return nil after abandon")
	}
	if r, ok := q.dispatch(); !ok || r.name != "v" {
		t.Error("dispatch() should proceed to the next pending request once abandoned")
	}
}

func TestRequestQueueReset(t *testing.T) {
	q := newRequestQueue()
	q.enqueue(getRequest{name: "a"})
	q.dispatch()
	q.enqueue(getRequest{name: "b"})

	q.reset()
	if q.len() != 0 {
		t.Errorf("len() = %d, want 0", q.len())
	}
	if _, ok := q.dispatch(); ok {
		t.Error("dispatch() after reset should find nothing pending")
	}
}
