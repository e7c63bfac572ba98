// Package events defines the closed set of broadcasts emitted by match
// simulations and polls, and the Publisher seam that carries them out.
package events

import (
	"time"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

// Kind names as they appear on the wire.
const (
	KindMatchStart    = "match-start"
	KindTimeUpdate    = "time-update"
	KindScoreUpdate   = "score-update"
	KindMatchEvent    = "match-event"
	KindNewCommentary = "new-commentary"
	KindMatchState    = "match-state"
	KindPollCreated   = "poll-created"
	KindPollUpdated   = "poll-updated"
	KindPollEnded     = "poll-ended"
)

// Event is implemented only by the types in this package.
type Event interface {
	Kind() string
	sealed()
}

// MatchStart is emitted once when an engine starts.
type MatchStart struct {
	MatchID   string
	TeamA     string
	TeamB     string
	StartTime time.Time
}

// TimeUpdate is emitted on every tick and on stop.
type TimeUpdate struct {
	MatchID     string
	CurrentTime float64
	Phase       model.MatchPhase
}

// ScoreUpdate carries the full score after a goal.
type ScoreUpdate struct {
	MatchID string
	TeamA   int
	TeamB   int
	Scorer  string
	Minute  int
}

// MatchEventBroadcast forwards a processed timeline event.
type MatchEventBroadcast struct {
	MatchID string
	Event   model.MatchEvent
}

// NewCommentary is emitted instead of MatchEventBroadcast for commentary lines.
type NewCommentary struct {
	MatchID string
	Text    string
	Minute  int
	Player  string
}

// MatchStateSnapshot carries a full copy of the match state.
type MatchStateSnapshot struct {
	MatchID string
	State   model.MatchState
}

// PollCreated is emitted when a match poll is first created.
type PollCreated struct {
	Poll model.Poll
}

// PollUpdated is emitted after every accepted vote.
type PollUpdated struct {
	Poll model.Poll
}

// PollEnded is emitted when voting closes.
type PollEnded struct {
	Poll model.Poll
}

func (MatchStart) Kind() string          { return KindMatchStart }
func (TimeUpdate) Kind() string          { return KindTimeUpdate }
func (ScoreUpdate) Kind() string         { return KindScoreUpdate }
func (MatchEventBroadcast) Kind() string { return KindMatchEvent }
func (NewCommentary) Kind() string       { return KindNewCommentary }
func (MatchStateSnapshot) Kind() string  { return KindMatchState }
func (PollCreated) Kind() string         { return KindPollCreated }
func (PollUpdated) Kind() string         { return KindPollUpdated }
func (PollEnded) Kind() string           { return KindPollEnded }

func (MatchStart) sealed()          {}
func (TimeUpdate) sealed()          {}
func (ScoreUpdate) sealed()         {}
func (MatchEventBroadcast) sealed() {}
func (NewCommentary) sealed()       {}
func (MatchStateSnapshot) sealed()  {}
func (PollCreated) sealed()         {}
func (PollUpdated) sealed()         {}
func (PollEnded) sealed()           {}
