// Package poll runs the one-per-match fan prediction polls.
package poll

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

type entry struct {
	poll model.Poll
	// userID -> vote; at most one per user for the poll's lifetime.
	votes map[string]model.UserVote
	// optionID -> vote times, used to render vote stubs.
	voteTimes map[string][]time.Time
}

// Manager owns every match poll. Broadcasts are published under mu so a
// match channel sees poll updates in vote order.
type Manager struct {
	mu     sync.Mutex
	polls  map[string]*entry
	pub    events.Publisher
	now    func() time.Time
	logger zerolog.Logger
}

// Option customises a Manager.
type Option func(*Manager)

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an empty poll manager.
func NewManager(pub events.Publisher, logger zerolog.Logger, opts ...Option) *Manager {
	if pub == nil {
		pub = events.Discard
	}
	m := &Manager{
		polls:  make(map[string]*entry),
		pub:    pub,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With().Str("component", "poll_manager").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreatePoll opens the poll for matchID. An existing poll is returned
// unchanged and no broadcast is made.
func (m *Manager) CreatePoll(matchID, teamA, teamB string) model.Poll {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.polls[matchID]; ok {
		m.logger.Debug().Str("match_id", matchID).Msg("poll already exists")
		return e.wire()
	}

	e := &entry{
		poll: model.Poll{
			ID:        fmt.Sprintf("poll-%s", matchID),
			MatchID:   matchID,
			Question:  model.PollQuestion,
			IsActive:  true,
			CreatedAt: m.now(),
			Options: []model.PollOption{
				{ID: optionID(matchID, 1), Text: teamA},
				{ID: optionID(matchID, 2), Text: teamB},
				{ID: optionID(matchID, 3), Text: model.DrawOptionText},
			},
		},
		votes:     make(map[string]model.UserVote),
		voteTimes: make(map[string][]time.Time),
	}
	m.polls[matchID] = e
	pollsActive.Inc()

	m.logger.Info().Str("match_id", matchID).Str("team_a", teamA).Str("team_b", teamB).Msg("poll created")
	out := e.wire()
	m.pub.Publish(matchID, events.PollCreated{Poll: out})
	return out
}

// Vote records userID's choice. Rejections are checked in order: missing
// poll, inactive poll, repeat voter, unknown option.
func (m *Manager) Vote(matchID, userID, optionID string) (model.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.polls[matchID]
	if !ok {
		return model.Poll{}, reject(ErrPollNotFound)
	}
	if !e.poll.IsActive {
		return model.Poll{}, reject(ErrPollInactive)
	}
	if _, voted := e.votes[userID]; voted {
		return model.Poll{}, reject(ErrAlreadyVoted)
	}
	idx := -1
	for i, opt := range e.poll.Options {
		if opt.ID == optionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Poll{}, reject(ErrInvalidOption)
	}

	now := m.now()
	e.votes[userID] = model.UserVote{UserID: userID, OptionID: optionID, VotedAt: now}
	e.voteTimes[optionID] = append(e.voteTimes[optionID], now)
	e.poll.Options[idx].VoteCount++
	e.poll.TotalVotes++
	votesTotal.WithLabelValues("accepted").Inc()

	m.logger.Info().
		Str("match_id", matchID).
		Str("user_id", userID).
		Str("option", e.poll.Options[idx].Text).
		Msg("vote recorded")
	out := e.wire()
	m.pub.Publish(matchID, events.PollUpdated{Poll: out})
	return out, nil
}

// GetPoll returns the wire shape of the poll.
func (m *Manager) GetPoll(matchID string) (model.Poll, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.polls[matchID]
	if !ok {
		return model.Poll{}, false
	}
	return e.wire(), true
}

// HasUserVoted reports whether userID already voted in matchID's poll.
func (m *Manager) HasUserVoted(matchID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.polls[matchID]
	if !ok {
		return false
	}
	_, voted := e.votes[userID]
	return voted
}

// GetUserVote returns the option id userID chose.
func (m *Manager) GetUserVote(matchID, userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.polls[matchID]
	if !ok {
		return "", false
	}
	v, ok := e.votes[userID]
	return v.OptionID, ok
}

// EndPoll closes voting. Poll and votes stay queryable. Ending a closed
// poll is a no-op.
func (m *Manager) EndPoll(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.polls[matchID]
	if !ok {
		return ErrPollNotFound
	}
	if !e.poll.IsActive {
		return nil
	}
	pollsActive.Dec()
	now := m.now()
	e.poll.IsActive = false
	e.poll.EndedAt = &now

	m.logger.Info().Str("match_id", matchID).Int("total_votes", e.poll.TotalVotes).Msg("poll ended")
	m.pub.Publish(matchID, events.PollEnded{Poll: e.wire()})
	return nil
}

// DeletePoll discards the poll and its votes.
func (m *Manager) DeletePoll(matchID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.polls[matchID]
	if !ok {
		return false
	}
	if e.poll.IsActive {
		pollsActive.Dec()
	}
	delete(m.polls, matchID)
	m.logger.Info().Str("match_id", matchID).Msg("poll deleted")
	return true
}

// ActivePolls lists polls still accepting votes, ordered by match id.
func (m *Manager) ActivePolls() []model.Poll {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Poll, 0, len(m.polls))
	for _, e := range m.polls {
		if e.poll.IsActive {
			out = append(out, e.wire())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out
}

func optionID(matchID string, n int) string {
	return fmt.Sprintf("option-%s-%d", matchID, n)
}

func reject(err *Error) error {
	votesTotal.WithLabelValues(err.Code).Inc()
	return err
}

// wire copies the poll and expands each vote count into vote stubs.
func (e *entry) wire() model.Poll {
	out := e.poll
	if e.poll.EndedAt != nil {
		t := *e.poll.EndedAt
		out.EndedAt = &t
	}
	out.Options = make([]model.PollOption, len(e.poll.Options))
	for i, opt := range e.poll.Options {
		times := e.voteTimes[opt.ID]
		opt.Votes = make([]model.VoteStub, len(times))
		for n, at := range times {
			opt.Votes[n] = model.VoteStub{ID: fmt.Sprintf("vote-%s-%d", opt.ID, n), CreatedAt: at}
		}
		out.Options[i] = opt
	}
	return out
}
