package simulation

import (
	"time"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

// Clock abstracts wall time and tickers so engines can be driven in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of *time.Ticker used by the engine.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// SystemClock uses the real time package.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// NewTicker wraps time.NewTicker.
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) Chan() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()                  { s.t.Stop() }

const minTickInterval = 100 * time.Microsecond

// tickInterval is one wall-clock second divided by the multiplier. The
// multiplier is floored at model.MinTimeMultiplier so the division cannot
// overflow a Duration.
func tickInterval(multiplier float64) time.Duration {
	if multiplier < model.MinTimeMultiplier {
		multiplier = model.MinTimeMultiplier
	}
	d := time.Duration(float64(time.Second) / multiplier)
	if d < minTickInterval {
		return minTickInterval
	}
	return d
}
