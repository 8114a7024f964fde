package cache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prysmaticlabs/go-bitfield"
)

var (
	seenAggregatesHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seen_aggregates_cache_hit",
		Help: "The number of aggregation bit patterns already covered by an accepted aggregate.",
	})
	seenAggregatesMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seen_aggregates_cache_miss",
		Help: "The number of aggregation bit patterns carrying new information.",
	})
	seenAggregatesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seen_aggregates_cache_evicted_total",
		Help: "The number of attestation data roots evicted to stay within capacity.",
	})
)

// SeenAggregatesCache records, per attestation data root, the union of the
// aggregation bits of every accepted aggregate. Entries are never refreshed,
// so the oldest attestation data is evicted first.
type SeenAggregatesCache struct {
	lock sync.Mutex
	lru  *simplelru.LRU[[32]byte, bitfield.Bitlist]
}

// NewSeenAggregatesCache creates a cache tracking at most size attestation data roots.
func NewSeenAggregatesCache(size int) (*SeenAggregatesCache, error) {
	if size <= 0 {
		return nil, ErrInvalidCacheSize
	}
	l, err := simplelru.NewLRU[[32]byte, bitfield.Bitlist](size, func([32]byte, bitfield.Bitlist) {
		seenAggregatesEvicted.Inc()
	})
	if err != nil {
		return nil, ErrCacheCannotBeNil
	}
	return &SeenAggregatesCache{lru: l}, nil
}

// IsAlreadySeen reports whether bits are a subset of the recorded union for dataRoot.
// Bits of a different length than the union never match.
func (c *SeenAggregatesCache) IsAlreadySeen(dataRoot [32]byte, bits bitfield.Bitlist) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	seen := c.covered(dataRoot, bits)
	if seen {
		seenAggregatesHit.Inc()
	} else {
		seenAggregatesMiss.Inc()
	}
	return seen
}

// Add merges bits into the union recorded for dataRoot. It returns false if
// the bits were already fully covered.
func (c *SeenAggregatesCache) Add(dataRoot [32]byte, bits bitfield.Bitlist) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	union, ok := c.lru.Peek(dataRoot)
	if !ok {
		c.lru.Add(dataRoot, append(bitfield.Bitlist(nil), bits...))
		return true
	}
	if union.Len() != bits.Len() {
		// A length mismatch is a different committee shape; it cannot be merged.
		return true
	}
	if c.covered(dataRoot, bits) {
		return false
	}
	// Equal bit lengths share the byte layout and the length bit, so the
	// union is an in-place OR that keeps the entry's age.
	for i := range union {
		union[i] |= bits[i]
	}
	return true
}

// Len is the number of tracked attestation data roots.
func (c *SeenAggregatesCache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Len()
}

func (c *SeenAggregatesCache) covered(dataRoot [32]byte, bits bitfield.Bitlist) bool {
	union, ok := c.lru.Peek(dataRoot)
	if !ok || union.Len() != bits.Len() {
		return false
	}
	contains, err := union.Contains(bits)
	return err == nil && contains
}
