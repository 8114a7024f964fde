package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregateValidationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregate_validation_total",
			Help: "Count of aggregate and proof validations by result.",
		},
		[]string{"result"},
	)
	aggregateValidationErrorCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregate_validation_error_total",
			Help: "Count of aggregate and proof validations that failed with an internal error.",
		},
	)
	pendingAggregatesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_aggregates",
			Help: "Number of aggregates waiting for their state.",
		},
	)
	pendingAggregatesExpiredCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pending_aggregates_expired_total",
			Help: "Count of deferred aggregates dropped after the propagation window.",
		},
	)
	messageReceivedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "p2p_message_received_total",
			Help: "Count of messages received.",
		},
		[]string{"topic"},
	)
	messageFailedValidationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "p2p_message_failed_validation_total",
			Help: "Count of messages that failed validation.",
		},
		[]string{"topic"},
	)
	messageIgnoredValidationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "p2p_message_ignored_validation_total",
			Help: "Count of messages that were ignored in validation.",
		},
		[]string{"topic"},
	)
	attReceivedTooEarlyCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gossip_attestation_too_early_ignored_total",
		Help: "Increased when a gossip attestation is received for a slot that has not started",
	})
	attReceivedTooLateCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gossip_attestation_too_late_ignored_total",
		Help: "Increased when a gossip attestation is received past its propagation window",
	})
)
