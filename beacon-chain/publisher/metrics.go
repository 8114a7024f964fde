package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publicationOutcomeCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "block_publication_total",
			Help: "Count of block submissions by broadcast validation level and outcome.",
		},
		[]string{"level", "outcome"},
	)
	publicationStateCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "block_publication_state_transitions_total",
			Help: "Count of block publication state transitions by target state.",
		},
		[]string{"state"},
	)
	publishFailedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "block_publish_failed_total",
			Help: "Count of blocks whose broadcast failed.",
		},
	)
	publishDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "block_publish_delay_milliseconds",
			Help:    "Time from block submission until it is handed to the broadcaster.",
			Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000, 2000, 4000},
		},
	)
)
