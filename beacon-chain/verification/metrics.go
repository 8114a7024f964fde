package verification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signature_verification_batch_size",
		Help:    "Number of signature sets verified together.",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})
	batchFallbackCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signature_verification_batch_fallback_total",
		Help: "Count of joined batches that failed and were re-verified per caller.",
	})
)
