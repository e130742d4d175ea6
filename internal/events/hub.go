package events

import "slices"

// Observer receives published events.
type Observer func(Event)

// Publisher emits events. Implemented by Hub; held by the engine and the
// vehicle state machine.
type Publisher interface {
	Publish(e Event)
}

// Feed is the subscribe-only view of a Hub handed to pure observers such
// as the telemetry log and metrics collector.
type Feed interface {
	Subscribe(fn Observer) *Subscription
}

// Hub fans events out to observers in registration order.
//
// Hub is not safe for concurrent use; callers serialize access. This
// matches the single-threaded engine and vehicle.
type Hub struct {
	clock     *Clock
	observers []*Subscription
}

// Subscription is a scoped observer registration. Close removes the
// observer; closing twice is harmless.
type Subscription struct {
	hub *Hub
	fn  Observer
}

// NewHub creates a hub with its own logical clock.
func NewHub() *Hub {
	return &Hub{clock: NewClock()}
}

// Subscribe registers fn and returns its subscription.
func (h *Hub) Subscribe(fn Observer) *Subscription {
	s := &Subscription{hub: h, fn: fn}
	h.observers = append(h.observers, s)
	return s
}

// Publish stamps e with the next sequence number and delivers it to every
// observer registered at the time of the call.
func (h *Hub) Publish(e Event) {
	e.Seq = h.clock.Next()
	// Snapshot so an observer closing a subscription mid-delivery does not
	// shift the slice under the loop. A subscription closed before its turn
	// does not see e.
	for _, s := range slices.Clone(h.observers) {
		if s.hub == nil {
			continue
		}
		s.fn(e)
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	return len(h.observers)
}

// Close removes the observer from its hub.
func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	h := s.hub
	s.hub = nil
	h.observers = slices.DeleteFunc(h.observers, func(o *Subscription) bool { return o == s })
}

// Recorder is an observer that keeps every event it sees. Used by scenario
// traces and tests.
type Recorder struct {
	Events []Event
	sub    *Subscription
}

// Record subscribes a new Recorder to feed.
func Record(feed Feed) *Recorder {
	r := &Recorder{}
	r.sub = feed.Subscribe(func(e Event) { r.Events = append(r.Events, e) })
	return r
}

// OfKind returns the recorded events of the given kind.
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() { r.Events = nil }

// Close stops recording.
func (r *Recorder) Close() { r.sub.Close() }
