package eventstest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
)

func TestRecorder_OfKindAndReset(t *testing.T) {
	r := NewRecorder()
	r.Publish("m1", events.ScoreUpdate{MatchID: "m1", TeamA: 1})
	r.Publish("m2", events.TimeUpdate{MatchID: "m2"})
	r.Publish("m1", events.ScoreUpdate{MatchID: "m1", TeamA: 2})

	scores := r.OfKind(events.KindScoreUpdate)
	assert.Len(t, scores, 2)
	assert.Equal(t, 2, scores[1].(events.ScoreUpdate).TeamA)

	r.Reset()
	assert.Empty(t, r.All())
}
