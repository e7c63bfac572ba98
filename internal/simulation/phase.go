package simulation

import "github.com/gokatarajesh/live-match-dashboard/internal/model"

// Phase boundaries in simulated minutes.
const (
	halfTimeStart   = 45
	secondHalfStart = 46
	fullTimeStart   = 90
)

// PhaseAt derives the match phase from elapsed simulated minutes.
// Extra time and penalties are never derived; they must be set explicitly.
func PhaseAt(t float64) model.MatchPhase {
	switch {
	case t < 0:
		return model.PhasePreMatch
	case t <= halfTimeStart:
		return model.PhaseFirstHalf
	case t < secondHalfStart:
		return model.PhaseHalfTime
	case t < fullTimeStart:
		return model.PhaseSecondHalf
	default:
		return model.PhaseFullTime
	}
}
