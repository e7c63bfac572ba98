package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

var (
	// ErrSimulationExists is returned when a match already has an engine.
	ErrSimulationExists = errors.New("simulation already exists")
	// ErrSimulationNotFound is returned when a match has no engine.
	ErrSimulationNotFound = errors.New("simulation not found")
	// ErrInternal wraps a recovered panic inside a manager operation.
	ErrInternal = errors.New("simulation internal error")
)

// PollService is the part of the poll manager driven by simulation lifecycle.
type PollService interface {
	CreatePoll(matchID, teamA, teamB string) model.Poll
	EndPoll(matchID string) error
	DeletePoll(matchID string) bool
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Defaults applies to starts that omit a config or some of its fields.
	Defaults model.SimulationConfig
	// Snapshots is optional; when set, final states outlive their engines.
	Snapshots       SnapshotStore
	SnapshotTimeout time.Duration
	Clock           Clock
}

// Manager owns every engine, keyed by match id. At most one engine exists
// per match; inserts are check-and-set under mu.
type Manager struct {
	mu      sync.Mutex
	engines map[string]*Engine

	source    TimelineSource
	polls     PollService
	pub       events.Publisher
	snapshots SnapshotStore
	defaults  model.SimulationConfig
	timeout   time.Duration
	clock     Clock
	logger    zerolog.Logger
}

// NewManager creates an empty manager.
func NewManager(source TimelineSource, polls PollService, pub events.Publisher, opts ManagerOptions, logger zerolog.Logger) *Manager {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.SnapshotTimeout <= 0 {
		opts.SnapshotTimeout = 2 * time.Second
	}
	return &Manager{
		engines:   make(map[string]*Engine),
		source:    source,
		polls:     polls,
		pub:       pub,
		snapshots: opts.Snapshots,
		defaults:  opts.Defaults.WithDefaults(),
		timeout:   opts.SnapshotTimeout,
		clock:     opts.Clock,
		logger:    logger.With().Str("component", "simulation_manager").Logger(),
	}
}

// Start creates, registers and starts an engine for matchID, then opens its poll.
func (m *Manager) Start(matchID, teamA, teamB string, cfg *model.SimulationConfig) (err error) {
	defer m.guard("start", matchID, &err)

	var engine *Engine
	engine = NewEngine(matchID, teamA, teamB, m.resolveConfig(cfg), m.source, m.pub, m.logger,
		WithClock(m.clock),
		WithFinishHook(func(final model.MatchState) { m.finished(engine, final) }),
	)

	return m.register(matchID, teamA, teamB, engine)
}

// register clears any stale snapshot, then inserts, starts and opens the
// poll for engine in one critical section, so a concurrent Stop or Reset
// sees either nothing or a fully started match. The finish hook takes mu
// only after the engine lock is released.
func (m *Manager) register(matchID, teamA, teamB string, engine *Engine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.engines[matchID]; exists {
		m.logger.Info().Str("match_id", matchID).Msg("simulation already exists")
		return ErrSimulationExists
	}
	// Cleared before the engine is visible, so a racing Stop's snapshot survives.
	m.deleteSnapshot(matchID)
	m.engines[matchID] = engine
	simulationsActive.Set(float64(len(m.engines)))
	engine.Start()
	if m.polls != nil {
		m.polls.CreatePoll(matchID, teamA, teamB)
	}
	return nil
}

// Pause pauses a tracked engine.
func (m *Manager) Pause(matchID string) (err error) {
	defer m.guard("pause", matchID, &err)

	engine, ok := m.get(matchID)
	if !ok {
		return ErrSimulationNotFound
	}
	engine.Pause()
	return nil
}

// Resume resumes a tracked engine.
func (m *Manager) Resume(matchID string) (err error) {
	defer m.guard("resume", matchID, &err)

	engine, ok := m.get(matchID)
	if !ok {
		return ErrSimulationNotFound
	}
	engine.Resume()
	return nil
}

// Stop stops and forgets the engine. The poll is closed but kept.
func (m *Manager) Stop(matchID string) (err error) {
	defer m.guard("stop", matchID, &err)

	engine, ok := m.remove(matchID)
	if !ok {
		return ErrSimulationNotFound
	}
	engine.Stop()
	m.endPoll(matchID)
	m.saveSnapshot(engine.State())
	return nil
}

// Reset rewinds and forgets the engine so the match can start fresh. The
// poll and any snapshot are discarded.
func (m *Manager) Reset(matchID string) (err error) {
	defer m.guard("reset", matchID, &err)

	engine, ok := m.remove(matchID)
	if !ok {
		return ErrSimulationNotFound
	}
	engine.Reset()
	if m.polls != nil {
		m.polls.DeletePoll(matchID)
	}
	m.deleteSnapshot(matchID)
	return nil
}

// Status reports not_found, running or stopped.
func (m *Manager) Status(matchID string) model.SimulationStatus {
	engine, ok := m.get(matchID)
	if !ok {
		return model.StatusNotFound
	}
	if engine.IsRunning() {
		return model.StatusRunning
	}
	return model.StatusStopped
}

// MatchState returns a copy of the tracked state.
func (m *Manager) MatchState(matchID string) (model.MatchState, bool) {
	engine, ok := m.get(matchID)
	if !ok {
		return model.MatchState{}, false
	}
	return engine.State(), true
}

// PastEvents returns the replay log, empty when the match is not tracked.
func (m *Manager) PastEvents(matchID string) []model.MatchEvent {
	engine, ok := m.get(matchID)
	if !ok {
		return []model.MatchEvent{}
	}
	return engine.PastEvents()
}

// Observe runs fn against a consistent view of the match, see Engine.Observe.
// It reports false, without calling fn, when the match is not tracked.
func (m *Manager) Observe(matchID string, fn func(state model.MatchState, past []model.MatchEvent)) bool {
	engine, ok := m.get(matchID)
	if !ok {
		return false
	}
	engine.Observe(fn)
	return true
}

// Timeline returns the script the engine was built with.
func (m *Manager) Timeline(matchID string) (model.MatchTimeline, bool) {
	engine, ok := m.get(matchID)
	if !ok {
		return model.MatchTimeline{}, false
	}
	return engine.Timeline(), true
}

// All lists every tracked engine ordered by match id.
func (m *Manager) All() []model.SimulationSummary {
	m.mu.Lock()
	engines := make(map[string]*Engine, len(m.engines))
	for id, e := range m.engines {
		engines[id] = e
	}
	m.mu.Unlock()

	out := make([]model.SimulationSummary, 0, len(engines))
	for id, e := range engines {
		out = append(out, model.SimulationSummary{MatchID: id, State: e.State()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out
}

// StopAll stops every engine and clears the map. A failure in one match
// does not prevent the others from stopping.
func (m *Manager) StopAll() {
	m.mu.Lock()
	engines := m.engines
	m.engines = make(map[string]*Engine)
	simulationsActive.Set(0)
	m.mu.Unlock()

	m.logger.Info().Int("count", len(engines)).Msg("stopping all simulations")
	for id, engine := range engines {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error().Str("match_id", id).Interface("panic", r).Msg("error stopping simulation")
				}
			}()
			engine.Stop()
			m.endPoll(id)
			m.saveSnapshot(engine.State())
		}()
	}
}

// LastKnownState returns the live state, falling back to the snapshot
// store. source is "live" or "snapshot"; a nil state means unknown.
func (m *Manager) LastKnownState(ctx context.Context, matchID string) (*model.MatchState, string, error) {
	if state, ok := m.MatchState(matchID); ok {
		return &state, "live", nil
	}
	if m.snapshots == nil {
		return nil, "", nil
	}
	state, err := m.snapshots.Load(ctx, matchID)
	if err != nil {
		return nil, "", fmt.Errorf("load snapshot: %w", err)
	}
	if state == nil {
		return nil, "", nil
	}
	return state, "snapshot", nil
}

// finished runs after an engine stopped itself. Engines that were already
// replaced or removed are ignored.
func (m *Manager) finished(engine *Engine, final model.MatchState) {
	m.mu.Lock()
	current, ok := m.engines[final.MatchID]
	m.mu.Unlock()
	if !ok || current != engine {
		return
	}
	m.endPoll(final.MatchID)
	m.saveSnapshot(final)
}

func (m *Manager) resolveConfig(cfg *model.SimulationConfig) model.SimulationConfig {
	out := m.defaults
	if cfg == nil {
		return out
	}
	if cfg.TimeMultiplier > 0 {
		out.TimeMultiplier = cfg.TimeMultiplier
	}
	if cfg.MaxDuration > 0 {
		out.MaxDuration = cfg.MaxDuration
	}
	out.AutoStart = cfg.AutoStart
	return out
}

func (m *Manager) get(matchID string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	engine, ok := m.engines[matchID]
	return engine, ok
}

func (m *Manager) remove(matchID string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	engine, ok := m.engines[matchID]
	if ok {
		delete(m.engines, matchID)
		simulationsActive.Set(float64(len(m.engines)))
	}
	return engine, ok
}

func (m *Manager) endPoll(matchID string) {
	if m.polls == nil {
		return
	}
	if err := m.polls.EndPoll(matchID); err != nil {
		m.logger.Debug().Err(err).Str("match_id", matchID).Msg("end poll skipped")
	}
}

func (m *Manager) saveSnapshot(state model.MatchState) {
	if m.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.snapshots.Save(ctx, state); err != nil {
		m.logger.Warn().Err(err).Str("match_id", state.MatchID).Msg("failed to save simulation snapshot")
	}
}

func (m *Manager) deleteSnapshot(matchID string) {
	if m.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.snapshots.Delete(ctx, matchID); err != nil {
		m.logger.Warn().Err(err).Str("match_id", matchID).Msg("failed to delete simulation snapshot")
	}
}

// guard converts a panic in op into ErrInternal so one match cannot take
// down the process.
func (m *Manager) guard(op, matchID string, err *error) {
	if r := recover(); r != nil {
		m.logger.Error().Str("op", op).Str("match_id", matchID).Interface("panic", r).Msg("recovered panic in simulation manager")
		*err = fmt.Errorf("%w: %s %s: %v", ErrInternal, op, matchID, r)
	}
}
