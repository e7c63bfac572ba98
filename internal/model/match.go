package model

import (
	"errors"
	"fmt"
	"time"
)

// MatchPhase is the coarse stage of a simulated match.
type MatchPhase string

// MatchPhase values.
const (
	PhasePreMatch   MatchPhase = "pre-match"
	PhaseFirstHalf  MatchPhase = "first-half"
	PhaseHalfTime   MatchPhase = "half-time"
	PhaseSecondHalf MatchPhase = "second-half"
	PhaseFullTime   MatchPhase = "full-time"
	PhaseExtraTime  MatchPhase = "extra-time"
	PhasePenalties  MatchPhase = "penalties"
)

// EventType enumerates the kinds of scripted timeline events.
type EventType string

// EventType values.
const (
	EventKickoff      EventType = "kickoff"
	EventGoal         EventType = "goal"
	EventYellowCard   EventType = "yellow-card"
	EventRedCard      EventType = "red-card"
	EventSubstitution EventType = "substitution"
	EventShot         EventType = "shot"
	EventSave         EventType = "save"
	EventCorner       EventType = "corner"
	EventFreeKick     EventType = "free-kick"
	EventPenalty      EventType = "penalty"
	EventPenalties    EventType = "penalties"
	EventHalfTime     EventType = "half-time"
	EventFullTime     EventType = "full-time"
	EventExtraTime    EventType = "extra-time"
	EventCommentary   EventType = "commentary"
)

// Team sides referenced by MatchEvent.Team.
const (
	SideTeamA = "teamA"
	SideTeamB = "teamB"
)

// MatchState is the live state of one simulated match.
type MatchState struct {
	MatchID     string     `json:"matchId"`
	TeamA       string     `json:"teamA"`
	TeamB       string     `json:"teamB"`
	ScoreA      int        `json:"scoreA"`
	ScoreB      int        `json:"scoreB"`
	CurrentTime float64    `json:"currentTime"`
	Phase       MatchPhase `json:"phase"`
	IsLive      bool       `json:"isLive"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s MatchState) Clone() MatchState {
	out := s
	if s.StartTime != nil {
		t := *s.StartTime
		out.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		out.EndTime = &t
	}
	return out
}

// MatchEvent is a single scripted occurrence at a given minute.
type MatchEvent struct {
	Minute      int            `json:"minute"`
	Type        EventType      `json:"type"`
	Team        string         `json:"team,omitempty"`
	Player      string         `json:"player,omitempty"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// MatchTimeline is the ordered script a simulation plays out.
type MatchTimeline struct {
	MatchID  string       `json:"matchId"`
	TeamA    string       `json:"teamA"`
	TeamB    string       `json:"teamB"`
	Events   []MatchEvent `json:"events"`
	Duration int          `json:"duration"`
}

// SimulationConfig tunes the speed and length of one engine.
type SimulationConfig struct {
	TimeMultiplier float64 `json:"timeMultiplier"`
	AutoStart      bool    `json:"autoStart"`
	MaxDuration    float64 `json:"maxDuration"`
}

// Default simulation settings.
const (
	DefaultTimeMultiplier = 60
	DefaultMaxDuration    = 90
	// MinTimeMultiplier is one simulated second per 100 wall-clock seconds.
	MinTimeMultiplier = 0.01
)

// DefaultSimulationConfig returns 1 simulated minute per wall-clock second over 90 minutes.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		TimeMultiplier: DefaultTimeMultiplier,
		AutoStart:      false,
		MaxDuration:    DefaultMaxDuration,
	}
}

// WithDefaults fills zero or negative fields from DefaultSimulationConfig.
func (c SimulationConfig) WithDefaults() SimulationConfig {
	def := DefaultSimulationConfig()
	if c.TimeMultiplier <= 0 {
		c.TimeMultiplier = def.TimeMultiplier
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = def.MaxDuration
	}
	return c
}

// Validate rejects negative values and multipliers below MinTimeMultiplier.
// Zero fields mean "use the default".
func (c SimulationConfig) Validate() error {
	if c.TimeMultiplier < 0 || c.MaxDuration < 0 {
		return errors.New("config values must not be negative")
	}
	if c.TimeMultiplier != 0 && c.TimeMultiplier < MinTimeMultiplier {
		return fmt.Errorf("timeMultiplier must be at least %g", MinTimeMultiplier)
	}
	return nil
}

// SimulationStatus reports whether a match has a tracked engine and if it is ticking.
type SimulationStatus string

// SimulationStatus values.
const (
	StatusNotFound SimulationStatus = "not_found"
	StatusRunning  SimulationStatus = "running"
	StatusStopped  SimulationStatus = "stopped"
)

// SimulationSummary pairs a match identifier with its current state.
type SimulationSummary struct {
	MatchID string     `json:"matchId"`
	State   MatchState `json:"state"`
}
