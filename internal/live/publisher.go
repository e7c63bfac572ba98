package live

import (
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
	ws "github.com/gokatarajesh/live-match-dashboard/pkg/http/ws"
)

// HubPublisher pushes simulation and poll broadcasts to the WebSocket
// subscribers of a match channel.
type HubPublisher struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

// NewHubPublisher creates a publisher backed by hub.
func NewHubPublisher(hub *ws.Hub, logger zerolog.Logger) *HubPublisher {
	return &HubPublisher{hub: hub, logger: logger.With().Str("component", "hub_publisher").Logger()}
}

// Publish implements events.Publisher. Delivery is best effort: a
// subscriber with a full queue misses the message.
func (p *HubPublisher) Publish(matchID string, evt events.Event) {
	msg, err := Encode(evt)
	if err != nil {
		p.logger.Error().Err(err).Str("match_id", matchID).Msg("encode broadcast failed")
		return
	}
	_ = p.hub.BroadcastToMatch(matchID, msg)
}

// Encode turns a broadcast into the WebSocket message clients expect.
func Encode(evt events.Event) (ws.Message, error) {
	channel, body, err := events.Wire(evt)
	if err != nil {
		return ws.Message{}, err
	}
	return ws.NewMessage(channel, body)
}
