package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gokatarajesh/live-match-dashboard/internal/db/repository"
	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

type mockSimulations struct {
	mock.Mock
}

func (m *mockSimulations) Start(matchID, teamA, teamB string, cfg *model.SimulationConfig) error {
	return m.Called(matchID, teamA, teamB, cfg).Error(0)
}

func (m *mockSimulations) Pause(matchID string) error  { return m.Called(matchID).Error(0) }
func (m *mockSimulations) Resume(matchID string) error { return m.Called(matchID).Error(0) }
func (m *mockSimulations) Reset(matchID string) error  { return m.Called(matchID).Error(0) }
func (m *mockSimulations) Stop(matchID string) error   { return m.Called(matchID).Error(0) }
func (m *mockSimulations) StopAll()                    { m.Called() }

func (m *mockSimulations) Status(matchID string) model.SimulationStatus {
	return m.Called(matchID).Get(0).(model.SimulationStatus)
}

func (m *mockSimulations) MatchState(matchID string) (model.MatchState, bool) {
	args := m.Called(matchID)
	return args.Get(0).(model.MatchState), args.Bool(1)
}

func (m *mockSimulations) PastEvents(matchID string) []model.MatchEvent {
	return m.Called(matchID).Get(0).([]model.MatchEvent)
}

func (m *mockSimulations) Timeline(matchID string) (model.MatchTimeline, bool) {
	args := m.Called(matchID)
	return args.Get(0).(model.MatchTimeline), args.Bool(1)
}

func (m *mockSimulations) All() []model.SimulationSummary {
	return m.Called().Get(0).([]model.SimulationSummary)
}

func (m *mockSimulations) LastKnownState(ctx context.Context, matchID string) (*model.MatchState, string, error) {
	args := m.Called(ctx, matchID)
	state, _ := args.Get(0).(*model.MatchState)
	return state, args.String(1), args.Error(2)
}

type mockMatchStore struct {
	mock.Mock
}

func (m *mockMatchStore) Create(ctx context.Context, params repository.CreateMatchParams) (repository.Match, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(repository.Match), args.Error(1)
}

func (m *mockMatchStore) Get(ctx context.Context, id string) (repository.Match, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.Match), args.Error(1)
}

func (m *mockMatchStore) List(ctx context.Context, status repository.MatchStatus, page repository.Page) ([]repository.Match, int, error) {
	args := m.Called(ctx, status, page)
	return args.Get(0).([]repository.Match), args.Int(1), args.Error(2)
}

func (m *mockMatchStore) Live(ctx context.Context) ([]repository.Match, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.Match), args.Error(1)
}

func (m *mockMatchStore) Update(ctx context.Context, id string, params repository.UpdateMatchParams) (repository.Match, error) {
	args := m.Called(ctx, id, params)
	return args.Get(0).(repository.Match), args.Error(1)
}

func (m *mockMatchStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockPollStore struct {
	mock.Mock
}

func (m *mockPollStore) Create(ctx context.Context, params repository.CreatePollParams) (repository.Poll, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(repository.Poll), args.Error(1)
}

func (m *mockPollStore) Get(ctx context.Context, id string) (repository.Poll, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.Poll), args.Error(1)
}

func (m *mockPollStore) List(ctx context.Context, filter repository.PollFilter) ([]repository.Poll, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]repository.Poll), args.Int(1), args.Error(2)
}

func (m *mockPollStore) Update(ctx context.Context, id string, question *string, isActive *bool) (repository.Poll, error) {
	args := m.Called(ctx, id, question, isActive)
	return args.Get(0).(repository.Poll), args.Error(1)
}

func (m *mockPollStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPollStore) Vote(ctx context.Context, pollID, optionID string, voterID *string) (repository.Vote, error) {
	args := m.Called(ctx, pollID, optionID, voterID)
	return args.Get(0).(repository.Vote), args.Error(1)
}

func (m *mockPollStore) Results(ctx context.Context, pollID string) (repository.PollResults, error) {
	args := m.Called(ctx, pollID)
	return args.Get(0).(repository.PollResults), args.Error(1)
}

type mockTimelineStore struct {
	mock.Mock
}

func (m *mockTimelineStore) Get(ctx context.Context, userID, matchID string) (repository.UserTimeline, error) {
	args := m.Called(ctx, userID, matchID)
	return args.Get(0).(repository.UserTimeline), args.Error(1)
}

func (m *mockTimelineStore) Save(ctx context.Context, userID, matchID string, data json.RawMessage) (repository.UserTimeline, error) {
	args := m.Called(ctx, userID, matchID, data)
	return args.Get(0).(repository.UserTimeline), args.Error(1)
}

func (m *mockTimelineStore) Delete(ctx context.Context, userID, matchID string) error {
	return m.Called(ctx, userID, matchID).Error(0)
}

var fixedTime = time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)

type mockCommentaryStore struct {
	mock.Mock
}

func (m *mockCommentaryStore) Create(ctx context.Context, matchID, text string, ts *time.Time) (repository.Commentary, error) {
	args := m.Called(ctx, matchID, text, ts)
	return args.Get(0).(repository.Commentary), args.Error(1)
}

func (m *mockCommentaryStore) Get(ctx context.Context, id string) (repository.Commentary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.Commentary), args.Error(1)
}

func (m *mockCommentaryStore) List(ctx context.Context, matchID string, page repository.Page) ([]repository.Commentary, int, error) {
	args := m.Called(ctx, matchID, page)
	return args.Get(0).([]repository.Commentary), args.Int(1), args.Error(2)
}

func (m *mockCommentaryStore) Update(ctx context.Context, id string, text *string, ts *time.Time) (repository.Commentary, error) {
	args := m.Called(ctx, id, text, ts)
	return args.Get(0).(repository.Commentary), args.Error(1)
}

func (m *mockCommentaryStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
