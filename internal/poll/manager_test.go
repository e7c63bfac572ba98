package poll

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
	"github.com/gokatarajesh/live-match-dashboard/internal/events/eventstest"
	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

var fixedNow = time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)

func newTestManager() (*Manager, *eventstest.Recorder) {
	rec := eventstest.NewRecorder()
	m := NewManager(rec, zerolog.New(io.Discard), WithNow(func() time.Time { return fixedNow }))
	return m, rec
}

func TestCreatePoll_Shape(t *testing.T) {
	m, rec := newTestManager()

	p := m.CreatePoll("m1", "Manchester United", "Liverpool")

	assert.Equal(t, "poll-m1", p.ID)
	assert.Equal(t, "m1", p.MatchID)
	assert.Equal(t, "Who will win this match?", p.Question)
	assert.True(t, p.IsActive)
	assert.Zero(t, p.TotalVotes)
	require.Len(t, p.Options, 3)
	assert.Equal(t, model.PollOption{ID: "option-m1-1", Text: "Manchester United", Votes: []model.VoteStub{}}, p.Options[0])
	assert.Equal(t, "option-m1-2", p.Options[1].ID)
	assert.Equal(t, "Draw", p.Options[2].Text)
	assert.Equal(t, []string{events.KindPollCreated}, rec.Kinds())
}

func TestCreatePoll_Idempotent(t *testing.T) {
	m, rec := newTestManager()

	first := m.CreatePoll("m1", "A", "B")
	second := m.CreatePoll("m1", "X", "Y")

	assert.Equal(t, first, second)
	assert.Len(t, rec.OfKind(events.KindPollCreated), 1)
}

func TestVote_RecordsAndBroadcasts(t *testing.T) {
	m, rec := newTestManager()
	m.CreatePoll("m1", "A", "B")

	p, err := m.Vote("m1", "u1", "option-m1-2")

	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalVotes)
	assert.Equal(t, 1, p.Options[1].VoteCount)
	require.Len(t, p.Options[1].Votes, 1)
	assert.Equal(t, model.VoteStub{ID: "vote-option-m1-2-0", CreatedAt: fixedNow}, p.Options[1].Votes[0])
	assert.True(t, m.HasUserVoted("m1", "u1"))
	choice, ok := m.GetUserVote("m1", "u1")
	assert.True(t, ok)
	assert.Equal(t, "option-m1-2", choice)

	updates := rec.OfKind(events.KindPollUpdated)
	require.Len(t, updates, 1)
	assert.Equal(t, p, updates[0].(events.PollUpdated).Poll)
}

func TestVote_SecondVoteRejectedRegardlessOfOption(t *testing.T) {
	m, _ := newTestManager()
	m.CreatePoll("m1", "A", "B")
	_, err := m.Vote("m1", "u1", "option-m1-1")
	require.NoError(t, err)

	for _, opt := range []string{"option-m1-1", "option-m1-3", "bogus"} {
		_, err := m.Vote("m1", "u1", opt)
		assert.ErrorIs(t, err, ErrAlreadyVoted)
	}
	p, _ := m.GetPoll("m1")
	assert.Equal(t, 1, p.TotalVotes)
}

func TestVote_RejectionPrecedence(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Vote("missing", "u1", "x")
	assert.ErrorIs(t, err, ErrPollNotFound)
	assert.EqualError(t, err, "Poll not found")

	m.CreatePoll("m1", "A", "B")
	_, err = m.Vote("m1", "u1", "bogus")
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.False(t, m.HasUserVoted("m1", "u1"))

	_, err = m.Vote("m1", "u1", "option-m1-1")
	require.NoError(t, err)
	require.NoError(t, m.EndPoll("m1"))

	_, err = m.Vote("m1", "u1", "bogus")
	assert.ErrorIs(t, err, ErrPollInactive)
	assert.EqualError(t, err, "Poll is no longer active")
}

func TestVote_TotalsStayConsistentUnderConcurrency(t *testing.T) {
	m, _ := newTestManager()
	m.CreatePoll("m1", "A", "B")

	var wg sync.WaitGroup
	for i := 0; i < 90; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i%60)
			_, _ = m.Vote("m1", user, fmt.Sprintf("option-m1-%d", i%3+1))
		}(i)
	}
	wg.Wait()

	p, ok := m.GetPoll("m1")
	require.True(t, ok)
	assert.Equal(t, 60, p.TotalVotes)
	sum := 0
	for _, opt := range p.Options {
		sum += opt.VoteCount
		assert.Len(t, opt.Votes, opt.VoteCount)
	}
	assert.Equal(t, p.TotalVotes, sum)
}

func TestEndPoll_RetainsData(t *testing.T) {
	m, rec := newTestManager()
	m.CreatePoll("m1", "A", "B")
	_, _ = m.Vote("m1", "u1", "option-m1-3")

	require.NoError(t, m.EndPoll("m1"))

	p, ok := m.GetPoll("m1")
	require.True(t, ok)
	assert.False(t, p.IsActive)
	require.NotNil(t, p.EndedAt)
	assert.Equal(t, 1, p.TotalVotes)
	assert.True(t, m.HasUserVoted("m1", "u1"))
	assert.Empty(t, m.ActivePolls())
	assert.Len(t, rec.OfKind(events.KindPollEnded), 1)

	assert.ErrorIs(t, m.EndPoll("missing"), ErrPollNotFound)
}

func TestEndPoll_SecondCallIsNoop(t *testing.T) {
	rec := eventstest.NewRecorder()
	now := fixedNow
	m := NewManager(rec, zerolog.New(io.Discard), WithNow(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))
	m.CreatePoll("m1", "A", "B")
	require.NoError(t, m.EndPoll("m1"))
	first, _ := m.GetPoll("m1")

	require.NoError(t, m.EndPoll("m1"))

	again, _ := m.GetPoll("m1")
	assert.Equal(t, first.EndedAt, again.EndedAt)
	assert.Len(t, rec.OfKind(events.KindPollEnded), 1)
}

func TestDeletePoll_DiscardsEverything(t *testing.T) {
	m, _ := newTestManager()
	m.CreatePoll("m1", "A", "B")
	_, _ = m.Vote("m1", "u1", "option-m1-1")

	assert.True(t, m.DeletePoll("m1"))
	assert.False(t, m.DeletePoll("m1"))

	_, ok := m.GetPoll("m1")
	assert.False(t, ok)
	assert.False(t, m.HasUserVoted("m1", "u1"))
	_, ok = m.GetUserVote("m1", "u1")
	assert.False(t, ok)

	fresh := m.CreatePoll("m1", "A", "B")
	assert.Zero(t, fresh.TotalVotes)
}

func TestActivePolls_Sorted(t *testing.T) {
	m, _ := newTestManager()
	m.CreatePoll("b", "A", "B")
	m.CreatePoll("a", "A", "B")
	m.CreatePoll("c", "A", "B")
	require.NoError(t, m.EndPoll("c"))

	active := m.ActivePolls()
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].MatchID)
	assert.Equal(t, "b", active[1].MatchID)
}
