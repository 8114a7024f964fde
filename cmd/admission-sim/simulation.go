package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/beacon-chain/core/forks"
	"github.com/eth2353/admission/beacon-chain/publisher"
	admsync "github.com/eth2353/admission/beacon-chain/sync"
	"github.com/eth2353/admission/beacon-chain/verification"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/consensus-types/blocks"
	"github.com/eth2353/admission/crypto/hash"
	"github.com/eth2353/admission/runtime/interop"
	"github.com/eth2353/admission/runtime/version"
	"github.com/eth2353/admission/testing/util"
	"github.com/eth2353/admission/time/slots"
	"github.com/libp2p/go-libp2p-core/peer"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	pb "github.com/libp2p/go-libp2p-pubsub/pb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const aggregateTopic = "/eth2/00000000/beacon_aggregate_and_proof/ssz_snappy"

type simConfig struct {
	validators      uint64
	slots           uint64
	duplicates      int
	level           publisher.BroadcastValidationLevel
	failImportEvery uint64
	workers         int
}

// tally counts outcomes by name.
type tally struct {
	lock   sync.Mutex
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) inc(name string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.counts[name]++
}

func (t *tally) get(name string) int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.counts[name]
}

func (t *tally) fields(prefix string) logrus.Fields {
	t.lock.Lock()
	defer t.lock.Unlock()
	names := make([]string, 0, len(t.counts))
	for n := range t.counts {
		names = append(names, n)
	}
	sort.Strings(names)
	f := make(logrus.Fields, len(names))
	for _, n := range names {
		f[prefix+n] = t.counts[n]
	}
	return f
}

// simulation drives signed aggregates and blocks of deterministic interop
// validators through the admission pipelines, one slot at a time.
type simulation struct {
	cfg         *simConfig
	genesis     time.Time
	slot        atomic.Uint64
	clock       *slots.Clock
	signer      *util.Signer
	resolver    *util.StateResolver
	schedule    *forks.Schedule
	scheduler   async.Scheduler
	sync        *admsync.Service
	publisher   *publisher.Publisher
	chain       *localChain
	broadcaster *localBroadcaster
	payloads    *payloadStore
	parent      phase0.Root

	aggregates *tally
	gossip     *tally
	blocks     *tally
	broadcast  *tally
}

func newSimulation(ctx context.Context, cfg *simConfig, verifier verification.SignatureVerifier) (*simulation, error) {
	keys, pubs, err := interop.DeterministicallyGenerateKeys(0, cfg.validators)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate interop keys")
	}
	st := util.NewState(0, pubs)
	s := &simulation{
		cfg:         cfg,
		genesis:     time.Now(),
		signer:      &util.Signer{State: st, Keys: keys},
		resolver:    util.NewStateResolver(st),
		schedule:    forks.NewSchedule(params.BeaconConfig()),
		scheduler:   async.NewPool(int64(cfg.workers)),
		broadcaster: newLocalBroadcaster(),
		payloads:    newPayloadStore(),
		aggregates:  newTally(),
		gossip:      newTally(),
		blocks:      newTally(),
		broadcast:   newTally(),
	}
	// Slots advance with the simulation rather than the wall clock.
	s.clock = slots.NewClock(s.genesis, slots.WithNower(func() time.Time {
		return slots.StartTime(s.genesis, phase0.Slot(s.slot.Load())).Add(time.Second)
	}))

	committees := util.RoundRobinCommittees{}
	s.sync, err = admsync.NewService(ctx, &admsync.ServiceConfig{
		Validator: &admsync.Config{
			Checker:    admsync.NewAttestationChecker(s.clock, s.resolver, committees, s.scheduler),
			Committees: committees,
			Verifier:   verifier,
			Schedule:   s.schedule,
			Scheduler:  s.scheduler,
		},
		Clock: s.clock,
		Self:  peer.ID("admission-sim"),
		OnRetried: func(_ *phase0.SignedAggregateAndProof, res admsync.ValidationResult) {
			s.aggregates.inc("retried_" + res.Action.String())
		},
	})
	if err != nil {
		return nil, err
	}

	s.chain = newLocalChain(s.scheduler, cfg.failImportEvery, s.parent)
	s.publisher, err = publisher.New(&publisher.Config{
		Unblinder:   publisher.NewForkUnblinder(s.schedule, s.payloads, s.scheduler),
		Importer:    s.chain,
		Broadcaster: s.broadcaster,
		Scheduler:   s.scheduler,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// run simulates every slot in turn and waits for all work of a slot before
// moving to the next.
func (s *simulation) run(ctx context.Context) error {
	for slot := phase0.Slot(1); uint64(slot) <= s.cfg.slots; slot++ {
		s.slot.Store(uint64(slot))
		g, gctx := errgroup.WithContext(ctx)
		if err := s.gossipAggregates(gctx, g, slot); err != nil {
			return err
		}
		if err := s.proposeBlocks(gctx, slot); err != nil {
			return err
		}
		if err := g.Wait(); err != nil {
			return errors.Wrapf(err, "slot %d", slot)
		}
		s.sync.Pending().ProcessPending(ctx)
		log.WithField("slot", slot).Debug("Simulated slot")
	}
	return nil
}

func (s *simulation) gossipAggregates(ctx context.Context, g *errgroup.Group, slot phase0.Slot) error {
	committees := s.signer.Committees
	cps := committees.CommitteesPerSlot(s.signer.State.NumValidators())
	for idx := phase0.CommitteeIndex(0); uint64(idx) < cps; idx++ {
		committee, err := committees.BeaconCommittee(s.signer.State, slot, idx)
		if err != nil {
			return err
		}
		if len(committee) == 0 {
			continue
		}
		participants := make([]int, 0, len(committee))
		for i := 0; i < len(committee); i += 2 {
			participants = append(participants, i)
		}
		spec := util.AggregateSpec{Slot: slot, CommitteeIndex: idx, Participants: participants}
		att, err := s.signer.Attestation(spec)
		if err != nil {
			return err
		}

		if aggregator, ok, err := s.signer.FindAggregator(spec); err != nil {
			return err
		} else if ok {
			signed, err := s.signer.SignAggregateAndProof(aggregator, att)
			if err != nil {
				return err
			}
			g.Go(func() error { return s.validate(ctx, signed) })
			data, err := signed.MarshalSSZ()
			if err != nil {
				return err
			}
			for i := 0; i < s.cfg.duplicates; i++ {
				pid := peer.ID(fmt.Sprintf("sim-peer-%d", i))
				g.Go(func() error {
					s.gossipMessage(ctx, pid, data)
					return nil
				})
			}
		}

		if other, ok, err := s.signer.FindNonAggregator(spec); err != nil {
			return err
		} else if ok {
			signed, err := s.signer.SignAggregateAndProof(other, att)
			if err != nil {
				return err
			}
			g.Go(func() error { return s.validate(ctx, signed) })
		}
	}
	return nil
}

func (s *simulation) validate(ctx context.Context, signed *phase0.SignedAggregateAndProof) error {
	res, err := s.sync.Validator().Validate(ctx, signed).Await(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.aggregates.inc("error")
		return nil
	}
	s.aggregates.inc(res.Action.String())
	if res.Action == admsync.SaveForFuture {
		s.sync.Pending().Save(signed)
	}
	return nil
}

func (s *simulation) gossipMessage(ctx context.Context, pid peer.ID, data []byte) {
	topic := aggregateTopic
	msg := &pubsub.Message{Message: &pb.Message{Topic: &topic, Data: data}}
	switch s.sync.Gossip().ValidateAggregateAndProof(ctx, pid, msg) {
	case pubsub.ValidationAccept:
		s.gossip.inc("accept")
	case pubsub.ValidationReject:
		s.gossip.inc("reject")
	default:
		s.gossip.inc("ignore")
	}
}

// proposeBlocks publishes the block of slot. Every fourth slot the proposer
// equivocates with a second block.
func (s *simulation) proposeBlocks(ctx context.Context, slot phase0.Slot) error {
	blk, err := s.buildBlock(slot, 0)
	if err != nil {
		return err
	}
	candidates := []*blocks.SignedBlock{blk}
	if slot%4 == 0 {
		twin, err := s.buildBlock(slot, 1)
		if err != nil {
			return err
		}
		candidates = append(candidates, twin)
	}
	for _, c := range candidates {
		res, status, err := s.publish(ctx, c)
		if err != nil {
			return err
		}
		if res.Classify() == publisher.Success && s.parent != *res.BlockRoot {
			s.parent = *res.BlockRoot
		}
		s.blocks.inc(res.Classify().String())
		s.broadcast.inc(status.String())
	}
	return nil
}

func (s *simulation) publish(ctx context.Context, blk *blocks.SignedBlock) (*publisher.SendSignedBlockResult, publisher.BroadcastStatus, error) {
	pub := s.publisher.Submit(ctx, blk, s.cfg.level)
	res, err := pub.Result().Await(ctx)
	if err != nil {
		return nil, publisher.NotBroadcast, err
	}
	status, err := pub.Done().Await(ctx)
	if err != nil {
		return nil, publisher.NotBroadcast, err
	}
	return res, status, nil
}

// buildBlock creates the block of slot on top of the current head. Blocks of
// even slots are blinded once the fork carries execution payloads.
func (s *simulation) buildBlock(slot phase0.Slot, variant uint64) (*blocks.SignedBlock, error) {
	fork := s.schedule.AtSlot(slot).Fork()
	enc := make([]byte, 16)
	binary.LittleEndian.PutUint64(enc, uint64(slot))
	binary.LittleEndian.PutUint64(enc[8:], variant)
	proposer := phase0.ValidatorIndex(uint64(slot) % s.cfg.validators)
	header := &phase0.BeaconBlockHeader{
		Slot:          slot,
		ProposerIndex: proposer,
		ParentRoot:    s.parent,
		StateRoot:     hash.Hash(enc),
		BodyRoot:      hash.Hash(append([]byte("body"), enc...)),
	}
	root, err := header.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	sig := s.signer.Keys[proposer].Sign(root[:]).Bytes()
	payload := append([]byte("payload"), enc...)
	full, err := blocks.NewSignedBlock(fork, header, sig, payload)
	if err != nil {
		return nil, err
	}
	if fork < version.Bellatrix || slot%2 != 0 {
		return full, nil
	}
	payloadRoot, err := full.PayloadHeaderRoot()
	if err != nil {
		return nil, err
	}
	s.payloads.put(payloadRoot, payload)
	return blocks.NewBlindedSignedBlock(fork, full.Header(), full.Signature(), payloadRoot)
}

func (s *simulation) logSummary() {
	imported := s.chain.importedBlocks()
	l := log.WithField("imported", len(imported))
	if len(imported) > 0 {
		last := imported[len(imported)-1]
		l = l.WithField("headSlot", last.Slot()).WithField("headRoot", fmt.Sprintf("%#x", last.Root()))
	}
	l.WithFields(s.aggregates.fields("aggregate_")).
		WithFields(s.gossip.fields("gossip_")).
		WithFields(s.blocks.fields("block_")).
		WithFields(s.broadcast.fields("broadcast_")).
		WithField("pending", s.sync.Pending().Len()).
		Info("Simulation complete")
}
