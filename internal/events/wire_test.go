package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

func wireJSON(t *testing.T, evt Event) (string, map[string]any) {
	t.Helper()
	channel, body, err := Wire(evt)
	require.NoError(t, err)
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return channel, out
}

func TestWire_SimulationEventsCarryType(t *testing.T) {
	channel, body := wireJSON(t, ScoreUpdate{MatchID: "m1", TeamA: 1, TeamB: 0, Scorer: "Rashford", Minute: 10})
	assert.Equal(t, ChannelSimulation, channel)
	assert.Equal(t, "score-update", body["type"])
	assert.Equal(t, "m1", body["matchId"])
	assert.EqualValues(t, 1, body["teamA"])
	assert.EqualValues(t, 0, body["teamB"])
	assert.EqualValues(t, 10, body["minute"])
	assert.Equal(t, "Rashford", body["scorer"])

	_, body = wireJSON(t, ScoreUpdate{MatchID: "m1", Minute: 3})
	assert.NotContains(t, body, "scorer")
}

func TestWire_TimeUpdateAndCommentary(t *testing.T) {
	_, body := wireJSON(t, TimeUpdate{MatchID: "m1", CurrentTime: 45.5, Phase: model.PhaseHalfTime})
	assert.Equal(t, "time-update", body["type"])
	assert.EqualValues(t, 45.5, body["currentTime"])
	assert.Equal(t, "half-time", body["phase"])

	_, body = wireJSON(t, NewCommentary{MatchID: "m1", Text: "What a save", Minute: 12})
	assert.Equal(t, "new-commentary", body["type"])
	assert.Equal(t, "What a save", body["text"])
	assert.NotContains(t, body, "player")
}

func TestWire_MatchEventNestsEvent(t *testing.T) {
	_, body := wireJSON(t, MatchEventBroadcast{MatchID: "m1", Event: model.MatchEvent{Minute: 5, Type: model.EventCorner, Team: model.SideTeamB}})
	assert.Equal(t, "match-event", body["type"])
	evt, ok := body["event"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "corner", evt["type"])
	assert.Equal(t, "teamB", evt["team"])
}

func TestWire_PollEventsAreBarePolls(t *testing.T) {
	poll := model.Poll{ID: "poll-m1", MatchID: "m1", IsActive: true, Options: []model.PollOption{}}
	for kind, evt := range map[string]Event{
		KindPollCreated: PollCreated{Poll: poll},
		KindPollUpdated: PollUpdated{Poll: poll},
		KindPollEnded:   PollEnded{Poll: poll},
	} {
		channel, body := wireJSON(t, evt)
		assert.Equal(t, kind, channel)
		assert.Equal(t, "poll-m1", body["id"])
		assert.NotContains(t, body, "type")
	}
}
