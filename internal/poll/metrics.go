package poll

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "live_match",
		Name:      "poll_votes_total",
		Help:      "Vote attempts by outcome code.",
	}, []string{"result"})
	pollsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "live_match",
		Name:      "polls_active",
		Help:      "Polls currently accepting votes.",
	})
)
