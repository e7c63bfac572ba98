// Package eventstest provides an in-memory events.Publisher for tests.
package eventstest

import (
	"sync"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
)

// Published is one captured Publish call.
type Published struct {
	MatchID string
	Event   events.Event
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu  sync.Mutex
	got []Published
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish appends the event.
func (r *Recorder) Publish(matchID string, evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, Published{MatchID: matchID, Event: evt})
}

// All returns a copy of everything recorded so far.
func (r *Recorder) All() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.got))
	copy(out, r.got)
	return out
}

// Kinds returns the kind of every recorded event, in order.
func (r *Recorder) Kinds() []string {
	all := r.All()
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = p.Event.Kind()
	}
	return out
}

// OfKind returns the recorded events with the given kind.
func (r *Recorder) OfKind(kind string) []events.Event {
	var out []events.Event
	for _, p := range r.All() {
		if p.Event.Kind() == kind {
			out = append(out, p.Event)
		}
	}
	return out
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = nil
}
