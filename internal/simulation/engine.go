package simulation

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
	"github.com/gokatarajesh/live-match-dashboard/internal/model"
	"github.com/gokatarajesh/live-match-dashboard/internal/timeline"
)

// TimelineSource resolves the script for a match.
type TimelineSource interface {
	Load(matchID, teamA, teamB string) (model.MatchTimeline, timeline.Source)
}

// EngineOption customises an Engine at construction.
type EngineOption func(*Engine)

// WithClock replaces the system clock.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithFinishHook registers fn to run, outside the engine lock, when the
// engine stops itself by reaching max duration or a full-time event.
func WithFinishHook(fn func(model.MatchState)) EngineOption {
	return func(e *Engine) { e.onFinish = fn }
}

// Engine simulates a single match. All state is guarded by mu and every
// broadcast is published while holding it, so subscribers see one match's
// events in the order they were produced.
type Engine struct {
	mu sync.Mutex

	cfg      model.SimulationConfig
	timeline model.MatchTimeline
	interval time.Duration
	run      runState

	running bool
	// gen changes on every clock start and cancel; a tick carrying a stale
	// generation is discarded even if its ticker already fired.
	gen    uint64
	ticker Ticker
	stopCh chan struct{}

	clock    Clock
	pub      events.Publisher
	onFinish func(model.MatchState)
	logger   zerolog.Logger
}

// NewEngine builds an engine in the pre-match phase. It never fails: a nil
// or failing source yields an empty 90 minute timeline.
func NewEngine(matchID, teamA, teamB string, cfg model.SimulationConfig, source TimelineSource, pub events.Publisher, logger zerolog.Logger, opts ...EngineOption) *Engine {
	cfg = cfg.WithDefaults()
	if pub == nil {
		pub = events.Discard
	}
	e := &Engine{
		cfg:      cfg,
		interval: tickInterval(cfg.TimeMultiplier),
		run:      newRunState(matchID, teamA, teamB),
		clock:    SystemClock{},
		pub:      pub,
		logger:   logger.With().Str("component", "simulation_engine").Str("match_id", matchID).Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	tl, src := timeline.Empty(matchID, teamA, teamB), timeline.SourceEmpty
	if source != nil {
		tl, src = source.Load(matchID, teamA, teamB)
	}
	if src == timeline.SourceDefault {
		e.run.state.TeamA = tl.TeamA
		e.run.state.TeamB = tl.TeamB
	}
	evs := make([]model.MatchEvent, len(tl.Events))
	copy(evs, tl.Events)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].Minute < evs[j].Minute })
	tl.Events = evs
	e.timeline = tl
	return e
}

// Start begins the match. It is a no-op while the clock is running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.logger.Debug().Msg("simulation already running")
		return
	}
	now := e.clock.Now()
	e.run.state.IsLive = true
	e.run.state.StartTime = &now
	e.run.state.Phase = model.PhaseFirstHalf
	e.run.processed = make(map[int]struct{})

	e.logger.Info().Str("team_a", e.run.state.TeamA).Str("team_b", e.run.state.TeamB).Msg("simulation started")
	e.publish(events.MatchStart{
		MatchID:   e.run.state.MatchID,
		TeamA:     e.run.state.TeamA,
		TeamB:     e.run.state.TeamB,
		StartTime: now,
	})
	e.startClock()
}

// Pause halts the clock and keeps currentTime.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		e.logger.Debug().Msg("simulation not running, pause ignored")
		return
	}
	e.cancelClock()
	e.run.state.IsLive = false
	e.logger.Info().Float64("current_time", e.run.state.CurrentTime).Msg("simulation paused")
	e.publishSnapshot()
}

// Resume restarts the clock from the stored currentTime. Time spent paused
// is not simulated.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.logger.Debug().Msg("simulation already running")
		return
	}
	e.run.state.IsLive = true
	e.logger.Info().Float64("current_time", e.run.state.CurrentTime).Msg("simulation resumed")
	e.publishSnapshot()
	e.startClock()
}

// Stop ends the match at full time.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		e.logger.Debug().Msg("simulation not running, stop ignored")
		return
	}
	e.cancelClock()
	e.logger.Info().Float64("current_time", e.run.state.CurrentTime).Msg("simulation stopped")
	e.publish(finish(&e.run, e.clock.Now()))
}

// Reset returns the match to kick-off. The timeline is not reloaded.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelClock()
	now := e.clock.Now()
	s := &e.run.state
	s.CurrentTime = 0
	s.ScoreA = 0
	s.ScoreB = 0
	s.Phase = model.PhasePreMatch
	s.IsLive = false
	s.StartTime = &now
	s.EndTime = nil
	e.run.ticks = 0
	e.run.processed = make(map[int]struct{})
	e.run.past = nil

	e.logger.Info().Msg("simulation reset")
	e.publishSnapshot()
}

// Destroy stops the engine and releases its ticker.
func (e *Engine) Destroy() {
	e.Stop()
}

// State returns a copy of the current match state.
func (e *Engine) State() model.MatchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run.state.Clone()
}

// PastEvents returns every timeline event dispatched in this run, in order.
func (e *Engine) PastEvents() []model.MatchEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.MatchEvent, len(e.run.past))
	copy(out, e.run.past)
	return out
}

// Timeline returns the script loaded at construction.
func (e *Engine) Timeline() model.MatchTimeline {
	tl := e.timeline
	tl.Events = make([]model.MatchEvent, len(e.timeline.Events))
	copy(tl.Events, e.timeline.Events)
	return tl
}

// Config returns the effective configuration.
func (e *Engine) Config() model.SimulationConfig {
	return e.cfg
}

// IsRunning reports whether the clock is ticking.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Observe calls fn with the current state and replay log while holding the
// engine lock, so nothing is published between the snapshot and whatever
// fn subscribes. fn must not call back into the engine.
func (e *Engine) Observe(fn func(state model.MatchState, past []model.MatchEvent)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	past := make([]model.MatchEvent, len(e.run.past))
	copy(past, e.run.past)
	fn(e.run.state.Clone(), past)
}

func (e *Engine) startClock() {
	e.gen++
	gen := e.gen
	ticker := e.clock.NewTicker(e.interval)
	stop := make(chan struct{})
	e.ticker, e.stopCh, e.running = ticker, stop, true
	go e.loop(gen, ticker, stop)
}

func (e *Engine) cancelClock() {
	if !e.running {
		return
	}
	e.running = false
	e.gen++
	e.ticker.Stop()
	close(e.stopCh)
	e.ticker, e.stopCh = nil, nil
}

func (e *Engine) loop(gen uint64, ticker Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if !e.tick(gen) {
				return
			}
		}
	}
}

// tick runs one step for the given clock generation and reports whether
// the loop should continue.
func (e *Engine) tick(gen uint64) bool {
	e.mu.Lock()
	if !e.running || e.gen != gen {
		e.mu.Unlock()
		return false
	}

	emitted, finished := step(&e.run, &e.timeline, e.cfg, e.clock.Now())
	ticksTotal.Inc()
	for _, evt := range emitted {
		switch ev := evt.(type) {
		case events.MatchEventBroadcast:
			timelineEventsTotal.WithLabelValues(string(ev.Event.Type)).Inc()
			e.logger.Debug().Int("minute", ev.Event.Minute).Str("event_type", string(ev.Event.Type)).Msg(ev.Event.Description)
		case events.NewCommentary:
			timelineEventsTotal.WithLabelValues(string(model.EventCommentary)).Inc()
		}
		e.publish(evt)
	}

	var (
		hook  func(model.MatchState)
		final model.MatchState
	)
	if finished {
		e.cancelClock()
		hook = e.onFinish
		final = e.run.state.Clone()
		e.logger.Info().Int("score_a", final.ScoreA).Int("score_b", final.ScoreB).Msg("simulation reached full time")
	}
	e.mu.Unlock()

	if hook != nil {
		hook(final)
	}
	return !finished
}

func (e *Engine) publish(evt events.Event) {
	e.pub.Publish(e.run.state.MatchID, evt)
}

func (e *Engine) publishSnapshot() {
	e.publish(events.MatchStateSnapshot{
		MatchID: e.run.state.MatchID,
		State:   e.run.state.Clone(),
	})
}
