package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
	"github.com/gokatarajesh/live-match-dashboard/internal/timeline"
)

// manualClock never fires on its own; tests drive engines with tickOnce.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	return &manualTicker{ch: make(chan time.Time)}
}

type manualTicker struct {
	ch chan time.Time
}

func (t *manualTicker) Chan() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()                  {}

// tickOnce applies a tick for the engine's current clock generation.
func tickOnce(e *Engine) bool {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()
	return e.tick(gen)
}

func tickN(e *Engine, n int) {
	for i := 0; i < n; i++ {
		if !tickOnce(e) {
			return
		}
	}
}

type staticSource struct {
	tl  model.MatchTimeline
	src timeline.Source
}

func (s staticSource) Load(matchID, teamA, teamB string) (model.MatchTimeline, timeline.Source) {
	tl := s.tl
	tl.MatchID = matchID
	if tl.TeamA == "" {
		tl.TeamA, tl.TeamB = teamA, teamB
	}
	return tl, s.src
}

func scripted(evs ...model.MatchEvent) staticSource {
	return staticSource{tl: model.MatchTimeline{Events: evs, Duration: 90}, src: timeline.SourceMatch}
}

type memorySnapshots struct {
	mu     sync.Mutex
	states map[string]model.MatchState
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{states: make(map[string]model.MatchState)}
}

func (s *memorySnapshots) Save(_ context.Context, state model.MatchState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.MatchID] = state
	return nil
}

func (s *memorySnapshots) Load(_ context.Context, matchID string) (*model.MatchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[matchID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *memorySnapshots) Delete(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, matchID)
	return nil
}
