package client

// getRequest is one queued one-shot read: a name to resolve against the
// manifest, and the sink that will receive the eventual response.
type getRequest struct {
	name     string
	callback Callback
}

// requestQueue is the command session's append-only FIFO of one-shot read
// requests. At most one request is in flight at a time; writes and invokes
// bypass it entirely and are sent immediately by the Client.
//
// No duplicate suppression is applied here: requesting the same name twice
// enqueues two requests and the caller gets two deliveries.
type requestQueue struct {
	pending  []getRequest
	inFlight *getRequest
}

func newRequestQueue() *requestQueue {
	return &requestQueue{}
}

func (q *requestQueue) enqueue(r getRequest) {
	q.pending = append(q.pending, r)
}

func (q *requestQueue) len() int {
	return len(q.pending)
}

// dispatch pops the next pending request and marks it in flight. It
// returns ok=false when a request is already in flight or none are
// pending; the caller must not send anything in that case.
func (q *requestQueue) dispatch() (getRequest, bool) {
	if q.inFlight != nil || len(q.pending) == 0 {
		return getRequest{}, false
	}
	r := q.pending[0]
	q.pending = q.pending[1:]
	q.inFlight = &r
	return r, true
}

// clearInFlight marks the queue as having no outstanding request, letting
// dispatch proceed to the next pending entry.
func (q *requestQueue) clearInFlight() {
	q.inFlight = nil
}

// abandon drops the in-flight request without ever delivering a response —
// the reconnect path: the socket that was carrying it is gone.
func (q *requestQueue) abandon() {
	q.inFlight = nil
}

// callbackFor returns the in-flight request's callback if it was for name,
// else nil (meaning "emit a data event instead").
func (q *requestQueue) callbackFor(name string) Callback {
	if q.inFlight == nil || q.inFlight.name != name {
		return nil
	}
	return q.inFlight.callback
}

func (q *requestQueue) reset() {
	q.pending = nil
	q.inFlight = nil
}
