package sync

import (
	"context"
	"sync"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/time/slots"
	"go.opencensus.io/trace"
)

const defaultMaxPendingPerSlot = 1024

// PendingAggregateQueue holds aggregates that were saved for the future and
// retries them once per slot until they validate or fall out of the
// propagation window.
type PendingAggregateQueue struct {
	validator  *AggregateValidator
	clock      *slots.Clock
	maxPerSlot int
	onResult   func(*phase0.SignedAggregateAndProof, ValidationResult)

	lock   sync.Mutex
	bySlot map[phase0.Slot][]*phase0.SignedAggregateAndProof
	count  int
}

// NewPendingAggregateQueue creates a queue retrying through validator. onResult
// receives every retried aggregate that is no longer deferred.
func NewPendingAggregateQueue(
	validator *AggregateValidator,
	clock *slots.Clock,
	maxPerSlot int,
	onResult func(*phase0.SignedAggregateAndProof, ValidationResult),
) *PendingAggregateQueue {
	if maxPerSlot <= 0 {
		maxPerSlot = defaultMaxPendingPerSlot
	}
	if onResult == nil {
		onResult = func(*phase0.SignedAggregateAndProof, ValidationResult) {}
	}
	return &PendingAggregateQueue{
		validator:  validator,
		clock:      clock,
		maxPerSlot: maxPerSlot,
		onResult:   onResult,
		bySlot:     make(map[phase0.Slot][]*phase0.SignedAggregateAndProof),
	}
}

// Save defers an aggregate. It returns false if the slot's bucket is full.
func (q *PendingAggregateQueue) Save(agg *phase0.SignedAggregateAndProof) bool {
	if agg == nil || agg.Message == nil || agg.Message.Aggregate == nil || agg.Message.Aggregate.Data == nil {
		return false
	}
	slot := agg.Message.Aggregate.Data.Slot
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.bySlot[slot]) >= q.maxPerSlot {
		return false
	}
	q.bySlot[slot] = append(q.bySlot[slot], agg)
	q.count++
	pendingAggregatesGauge.Set(float64(q.count))
	return true
}

// Len is the number of deferred aggregates.
func (q *PendingAggregateQueue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.count
}

// Start retries the queue every slot until ctx is done.
func (q *PendingAggregateQueue) Start(ctx context.Context) {
	async.RunEvery(ctx, params.BeaconConfig().SlotDuration(), func() {
		q.ProcessPending(ctx)
	})
}

// ProcessPending drops expired aggregates and revalidates the rest. Aggregates
// still missing their state are saved again.
func (q *PendingAggregateQueue) ProcessPending(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "sync.processPendingAggregates")
	defer span.End()

	for _, agg := range q.takeLive(q.clock.CurrentSlot()) {
		agg := agg
		q.validator.Validate(ctx, agg).OnComplete(async.Immediate, func(res ValidationResult, err error) {
			if err != nil {
				log.WithError(err).Debug("Could not revalidate pending aggregate")
				return
			}
			if res.Action == SaveForFuture {
				if !q.Save(agg) {
					log.WithFields(aggregateFields(agg)).Debug("Pending aggregate queue full, dropping aggregate")
				}
				return
			}
			q.onResult(agg, res)
		})
	}
}

// takeLive empties the queue, returning the aggregates still within the
// propagation window of current.
func (q *PendingAggregateQueue) takeLive(current phase0.Slot) []*phase0.SignedAggregateAndProof {
	window := params.BeaconConfig().AttestationPropagationSlotRange
	q.lock.Lock()
	defer q.lock.Unlock()
	live := make([]*phase0.SignedAggregateAndProof, 0, q.count)
	for slot, aggs := range q.bySlot {
		if slot+window < current {
			pendingAggregatesExpiredCounter.Add(float64(len(aggs)))
			continue
		}
		live = append(live, aggs...)
	}
	q.bySlot = make(map[phase0.Slot][]*phase0.SignedAggregateAndProof)
	q.count = 0
	pendingAggregatesGauge.Set(0)
	return live
}
