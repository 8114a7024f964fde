package main

import (
	"context"
	"sort"
	"sync"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/beacon-chain/publisher"
	"github.com/eth2353/admission/consensus-types/blocks"
	"github.com/pkg/errors"
)

var errStateTransition = errors.New("state transition failed")

type slotProposer struct {
	slot     phase0.Slot
	proposer phase0.ValidatorIndex
}

// localChain imports blocks in memory. Every failEvery-th block fails its
// state transition, and a second block from the same proposer in a slot is an
// equivocation.
type localChain struct {
	scheduler async.Scheduler
	failEvery uint64

	lock     sync.Mutex
	received uint64
	known    map[phase0.Root]bool
	proposed map[slotProposer]phase0.Root
	imported blocks.ROBlockSlice
}

func newLocalChain(scheduler async.Scheduler, failEvery uint64, genesisRoot phase0.Root) *localChain {
	return &localChain{
		scheduler: scheduler,
		failEvery: failEvery,
		known:     map[phase0.Root]bool{genesisRoot: true},
		proposed:  make(map[slotProposer]phase0.Root),
	}
}

// ImportBlock implements publisher.ImportChannel.
func (c *localChain) ImportBlock(_ context.Context, blk *blocks.SignedBlock, level publisher.BroadcastValidationLevel) *async.Future[*publisher.ImportAndBroadcastValidationResults] {
	if blk == nil {
		return async.Failed[*publisher.ImportAndBroadcastValidationResults](blocks.ErrNilBeaconBlock)
	}
	root, err := blk.Root()
	if err != nil {
		return async.Failed[*publisher.ImportAndBroadcastValidationResults](err)
	}

	c.lock.Lock()
	c.received++
	failing := c.failEvery > 0 && c.received%c.failEvery == 0
	parentKnown := c.known[blk.ParentRoot()]
	key := slotProposer{slot: blk.Slot(), proposer: blk.ProposerIndex()}
	prev, seen := c.proposed[key]
	equivocating := seen && prev != root
	if !seen {
		c.proposed[key] = root
	}
	c.lock.Unlock()

	res := &publisher.ImportAndBroadcastValidationResults{
		ImportResult: async.Run(c.scheduler, func() (publisher.ImportResult, error) {
			switch {
			case !parentKnown:
				return publisher.ImportFailed(publisher.UnknownParent, nil), nil
			case failing:
				return publisher.ImportFailed(publisher.FailedStateTransition, errors.Wrapf(errStateTransition, "slot %d", blk.Slot())), nil
			}
			rob, err := blocks.NewROBlockWithRoot(blk, root)
			if err != nil {
				return publisher.ImportResult{}, err
			}
			c.lock.Lock()
			c.known[root] = true
			c.imported = append(c.imported, rob)
			c.lock.Unlock()
			return publisher.ImportSucceeded(blk), nil
		}),
	}
	if level.RequiresValidation() {
		res.BroadcastValidation = async.Run(c.scheduler, func() (publisher.BroadcastValidationResult, error) {
			switch {
			case !parentKnown:
				return publisher.GossipFailure, nil
			case failing && level >= publisher.Consensus:
				return publisher.ConsensusFailure, nil
			case equivocating && level >= publisher.ConsensusAndEquivocation:
				return publisher.EquivocationFailure, nil
			}
			return publisher.BroadcastValidationSuccess, nil
		})
	}
	return async.Completed(res)
}

// importedBlocks returns the imported blocks ordered by slot, then root.
func (c *localChain) importedBlocks() blocks.ROBlockSlice {
	c.lock.Lock()
	out := append(blocks.ROBlockSlice(nil), c.imported...)
	c.lock.Unlock()
	sort.Sort(out)
	return out
}

// localBroadcaster records every published block.
type localBroadcaster struct {
	lock      sync.Mutex
	published map[phase0.Root]int
}

func newLocalBroadcaster() *localBroadcaster {
	return &localBroadcaster{published: make(map[phase0.Root]int)}
}

// Publish implements publisher.Broadcaster.
func (b *localBroadcaster) Publish(_ context.Context, blk *blocks.SignedBlock) *async.Future[struct{}] {
	root, err := blk.Root()
	if err != nil {
		return async.Failed[struct{}](err)
	}
	b.lock.Lock()
	b.published[root]++
	b.lock.Unlock()
	return async.Completed(struct{}{})
}

func (b *localBroadcaster) count(root phase0.Root) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.published[root]
}

// payloadStore serves the execution payloads of blinded blocks by the root
// they commit to.
type payloadStore struct {
	lock     sync.RWMutex
	payloads map[phase0.Root][]byte
}

var errUnknownPayload = errors.New("unknown execution payload")

func newPayloadStore() *payloadStore {
	return &payloadStore{payloads: make(map[phase0.Root][]byte)}
}

func (p *payloadStore) put(root phase0.Root, payload []byte) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.payloads[root] = payload
}

// PayloadFor implements forks.PayloadProvider.
func (p *payloadStore) PayloadFor(_ context.Context, blk *blocks.SignedBlock) ([]byte, error) {
	root, err := blk.PayloadHeaderRoot()
	if err != nil {
		return nil, err
	}
	p.lock.RLock()
	defer p.lock.RUnlock()
	payload, ok := p.payloads[root]
	if !ok {
		return nil, errors.Wrapf(errUnknownPayload, "%#x", root)
	}
	return payload, nil
}
