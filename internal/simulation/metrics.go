package simulation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	simulationsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "live_match",
		Name:      "simulations_active",
		Help:      "Engines currently tracked by the simulation manager.",
	})
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "live_match",
		Name:      "simulation_ticks_total",
		Help:      "Ticks applied across all engines.",
	})
	timelineEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "live_match",
		Name:      "simulation_timeline_events_total",
		Help:      "Timeline events dispatched, by event type.",
	}, []string{"type"})
)
