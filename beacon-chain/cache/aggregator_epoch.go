package cache

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregatorEpochHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aggregator_epoch_cache_hit",
		Help: "The number of aggregator/epoch lookups that found an accepted aggregate.",
	})
	aggregatorEpochMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aggregator_epoch_cache_miss",
		Help: "The number of aggregator/epoch lookups that found nothing.",
	})
	aggregatorEpochEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aggregator_epoch_cache_evicted_total",
		Help: "The number of aggregator/epoch entries evicted to stay within capacity.",
	})
)

// AggregatorIndexAndEpoch identifies one aggregation duty.
type AggregatorIndexAndEpoch struct {
	Index phase0.ValidatorIndex
	Epoch phase0.Epoch
}

// AggregatorEpochCache is a bounded set of aggregation duties that already
// produced an accepted aggregate. Lookups never refresh an entry, so the
// oldest accepted duty is evicted first.
type AggregatorEpochCache struct {
	lru *lru.Cache[AggregatorIndexAndEpoch, struct{}]
}

// NewAggregatorEpochCache creates a cache holding at most size duties.
func NewAggregatorEpochCache(size int) (*AggregatorEpochCache, error) {
	if size <= 0 {
		return nil, ErrInvalidCacheSize
	}
	c, err := lru.NewWithEvict[AggregatorIndexAndEpoch, struct{}](size, func(AggregatorIndexAndEpoch, struct{}) {
		aggregatorEpochEvicted.Inc()
	})
	if err != nil {
		return nil, ErrCacheCannotBeNil
	}
	return &AggregatorEpochCache{lru: c}, nil
}

// Contains reports whether the duty already has an accepted aggregate.
func (c *AggregatorEpochCache) Contains(key AggregatorIndexAndEpoch) bool {
	if c.lru.Contains(key) {
		aggregatorEpochHit.Inc()
		return true
	}
	aggregatorEpochMiss.Inc()
	return false
}

// Add records the duty. It returns false if the duty was already present.
func (c *AggregatorEpochCache) Add(key AggregatorIndexAndEpoch) bool {
	ok, _ := c.lru.ContainsOrAdd(key, struct{}{})
	return !ok
}

// Len is the number of tracked duties.
func (c *AggregatorEpochCache) Len() int {
	return c.lru.Len()
}
