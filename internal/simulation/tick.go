package simulation

import (
	"math"
	"time"

	"github.com/gokatarajesh/live-match-dashboard/internal/events"
	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

// runState is everything a tick reads and writes.
type runState struct {
	state model.MatchState
	// ticks since the last reset; currentTime is ticks/multiplier so that
	// phase boundaries are hit exactly instead of drifting.
	ticks int64
	// processed holds timeline indexes already dispatched in this run.
	processed map[int]struct{}
	past      []model.MatchEvent
}

func newRunState(matchID, teamA, teamB string) runState {
	return runState{
		state: model.MatchState{
			MatchID: matchID,
			TeamA:   teamA,
			TeamB:   teamB,
			Phase:   model.PhasePreMatch,
		},
		processed: make(map[int]struct{}),
	}
}

// step applies one tick to rs and returns the broadcasts it produced, in
// emission order. finished reports that the match ended on this tick.
func step(rs *runState, tl *model.MatchTimeline, cfg model.SimulationConfig, now time.Time) ([]events.Event, bool) {
	prev := rs.state.CurrentTime
	rs.ticks++
	t := float64(rs.ticks) / cfg.TimeMultiplier
	if t >= cfg.MaxDuration {
		rs.state.CurrentTime = cfg.MaxDuration
		return []events.Event{finish(rs, now)}, true
	}
	rs.state.CurrentTime = t
	rs.state.Phase = PhaseAt(t)

	var out []events.Event
	prevMinute := int(math.Floor(prev))
	minute := int(math.Floor(t))
	for i, ev := range tl.Events {
		if ev.Minute > minute {
			break
		}
		if _, done := rs.processed[i]; done {
			continue
		}
		// Minutes skipped by a coarse multiplier still fire once.
		if ev.Minute != minute && ev.Minute <= prevMinute {
			continue
		}
		rs.processed[i] = struct{}{}
		emitted, ended := dispatch(rs, ev, now)
		out = append(out, emitted...)
		if ended {
			return out, true
		}
	}

	out = append(out, events.TimeUpdate{
		MatchID:     rs.state.MatchID,
		CurrentTime: rs.state.CurrentTime,
		Phase:       rs.state.Phase,
	})
	return out, false
}

// dispatch applies one timeline event.
func dispatch(rs *runState, ev model.MatchEvent, now time.Time) ([]events.Event, bool) {
	rs.past = append(rs.past, ev)
	id := rs.state.MatchID
	forward := events.MatchEventBroadcast{MatchID: id, Event: ev}

	switch ev.Type {
	case model.EventGoal:
		switch ev.Team {
		case model.SideTeamA:
			rs.state.ScoreA++
		case model.SideTeamB:
			rs.state.ScoreB++
		}
		return []events.Event{
			events.ScoreUpdate{
				MatchID: id,
				TeamA:   rs.state.ScoreA,
				TeamB:   rs.state.ScoreB,
				Scorer:  ev.Player,
				Minute:  ev.Minute,
			},
			forward,
		}, false
	case model.EventHalfTime:
		rs.state.Phase = model.PhaseHalfTime
		return []events.Event{forward}, false
	case model.EventFullTime:
		return []events.Event{finish(rs, now), forward}, true
	case model.EventCommentary:
		return []events.Event{events.NewCommentary{
			MatchID: id,
			Text:    ev.Description,
			Minute:  ev.Minute,
			Player:  ev.Player,
		}}, false
	default:
		return []events.Event{forward}, false
	}
}

// finish moves the state to full time and returns the closing time update.
func finish(rs *runState, now time.Time) events.Event {
	rs.state.IsLive = false
	rs.state.EndTime = &now
	rs.state.Phase = model.PhaseFullTime
	return events.TimeUpdate{
		MatchID:     rs.state.MatchID,
		CurrentTime: rs.state.CurrentTime,
		Phase:       rs.state.Phase,
	}
}
