package events

import (
	"fmt"
	"time"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

// Channel is the transport-level message type an event travels under.
const (
	ChannelSimulation = "simulation-event"
)

type matchStartWire struct {
	Type      string    `json:"type"`
	MatchID   string    `json:"matchId"`
	TeamA     string    `json:"teamA"`
	TeamB     string    `json:"teamB"`
	StartTime time.Time `json:"startTime"`
}

type timeUpdateWire struct {
	Type        string           `json:"type"`
	MatchID     string           `json:"matchId"`
	CurrentTime float64          `json:"currentTime"`
	Phase       model.MatchPhase `json:"phase"`
}

type scoreUpdateWire struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
	TeamA   int    `json:"teamA"`
	TeamB   int    `json:"teamB"`
	Scorer  string `json:"scorer,omitempty"`
	Minute  int    `json:"minute"`
}

type matchEventWire struct {
	Type    string           `json:"type"`
	MatchID string           `json:"matchId"`
	Event   model.MatchEvent `json:"event"`
}

type commentaryWire struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
	Text    string `json:"text"`
	Minute  int    `json:"minute"`
	Player  string `json:"player,omitempty"`
}

type matchStateWire struct {
	Type    string           `json:"type"`
	MatchID string           `json:"matchId"`
	State   model.MatchState `json:"state"`
}

// Wire returns the transport channel and JSON-ready body for evt.
// Simulation broadcasts travel on ChannelSimulation with their kind in a
// "type" field; poll broadcasts use their kind as the channel and carry
// the bare poll object.
func Wire(evt Event) (string, any, error) {
	switch e := evt.(type) {
	case MatchStart:
		return ChannelSimulation, matchStartWire{KindMatchStart, e.MatchID, e.TeamA, e.TeamB, e.StartTime}, nil
	case TimeUpdate:
		return ChannelSimulation, timeUpdateWire{KindTimeUpdate, e.MatchID, e.CurrentTime, e.Phase}, nil
	case ScoreUpdate:
		return ChannelSimulation, scoreUpdateWire{KindScoreUpdate, e.MatchID, e.TeamA, e.TeamB, e.Scorer, e.Minute}, nil
	case MatchEventBroadcast:
		return ChannelSimulation, matchEventWire{KindMatchEvent, e.MatchID, e.Event}, nil
	case NewCommentary:
		return ChannelSimulation, commentaryWire{KindNewCommentary, e.MatchID, e.Text, e.Minute, e.Player}, nil
	case MatchStateSnapshot:
		return ChannelSimulation, matchStateWire{KindMatchState, e.MatchID, e.State}, nil
	case PollCreated:
		return KindPollCreated, e.Poll, nil
	case PollUpdated:
		return KindPollUpdated, e.Poll, nil
	case PollEnded:
		return KindPollEnded, e.Poll, nil
	default:
		return "", nil, fmt.Errorf("events: unknown event %T", evt)
	}
}
