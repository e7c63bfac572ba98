package events

// Publisher delivers an event to every subscriber of a match channel.
// Implementations must not block on slow subscribers.
type Publisher interface {
	Publish(matchID string, evt Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(matchID string, evt Event)

// Publish calls f.
func (f PublisherFunc) Publish(matchID string, evt Event) { f(matchID, evt) }

// Fanout publishes to several publishers in order.
type Fanout []Publisher

// Publish forwards evt to every non-nil publisher.
func (f Fanout) Publish(matchID string, evt Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(matchID, evt)
		}
	}
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(string, Event) {})
