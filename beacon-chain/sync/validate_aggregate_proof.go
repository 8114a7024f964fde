package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/beacon-chain/cache"
	"github.com/eth2353/admission/beacon-chain/core/forks"
	"github.com/eth2353/admission/beacon-chain/core/helpers"
	"github.com/eth2353/admission/beacon-chain/state"
	"github.com/eth2353/admission/beacon-chain/verification"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/time/slots"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// Config holds the collaborators of an AggregateValidator.
type Config struct {
	Checker    SingleAttestationChecker
	Committees CommitteeProvider
	Verifier   verification.SignatureVerifier
	// Schedule defaults to the schedule of the active chain config.
	Schedule *forks.Schedule
	// Scheduler runs continuations; defaults to a goroutine per continuation.
	Scheduler async.Scheduler
	// Cache sizes default to the sizes derived from the active chain config.
	AggregatorCacheSize int
	SeenBitsCacheSize   int
}

// AggregateValidator validates signed aggregate and proof gossip messages.
// It is safe for concurrent use; at most one aggregate is accepted per
// aggregator and epoch.
type AggregateValidator struct {
	checker    SingleAttestationChecker
	committees CommitteeProvider
	verifier   verification.SignatureVerifier
	schedule   *forks.Schedule
	scheduler  async.Scheduler

	acceptLock      sync.Mutex
	seenAggregators *cache.AggregatorEpochCache
	seenBits        *cache.SeenAggregatesCache
}

// NewAggregateValidator creates a validator from cfg.
func NewAggregateValidator(cfg *Config) (*AggregateValidator, error) {
	if cfg == nil || cfg.Checker == nil || cfg.Committees == nil || cfg.Verifier == nil {
		return nil, ErrMissingDependency
	}
	beaconCfg := params.BeaconConfig()
	schedule := cfg.Schedule
	if schedule == nil {
		schedule = forks.NewSchedule(beaconCfg)
	}
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = async.GoScheduler
	}
	aggSize := cfg.AggregatorCacheSize
	if aggSize == 0 {
		aggSize = beaconCfg.ValidAggregateSetSize()
	}
	bitsSize := cfg.SeenBitsCacheSize
	if bitsSize == 0 {
		bitsSize = beaconCfg.ValidAttestationDataSetSize()
	}
	seenAggregators, err := cache.NewAggregatorEpochCache(aggSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create aggregator cache")
	}
	seenBits, err := cache.NewSeenAggregatesCache(bitsSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create aggregation bits cache")
	}
	return &AggregateValidator{
		checker:         cfg.Checker,
		committees:      cfg.Committees,
		verifier:        cfg.Verifier,
		schedule:        schedule,
		scheduler:       scheduler,
		seenAggregators: seenAggregators,
		seenBits:        seenBits,
	}, nil
}

// AddSeenAggregate records the aggregation bits of an attestation known to be
// valid from another source, without validating it.
func (v *AggregateValidator) AddSeenAggregate(att *phase0.Attestation) error {
	if err := helpers.ValidateNilAttestation(att); err != nil {
		return err
	}
	root, err := att.Data.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not hash attestation data")
	}
	v.acceptLock.Lock()
	defer v.acceptLock.Unlock()
	v.seenBits.Add(root, att.AggregationBits)
	return nil
}

// Validate runs the aggregate and proof checks. The returned future fails
// only on internal errors; every verdict on the message itself is a result.
//
// Validation
//   - The aggregate attestation defined by hash_tree_root(aggregate.data) has not already been seen with
//     aggregation bits that are a subset of previously seen ones.
//   - The aggregate is the first valid aggregate received for the aggregator with index
//     aggregate_and_proof.aggregator_index for the epoch aggregate.data.target.epoch.
//   - The attestation checks shared with unaggregated attestations pass.
//   - The aggregator's validator index is within the committee.
//   - aggregate_and_proof.selection_proof selects the validator as an aggregator for the slot.
//   - The aggregator signature, signed_aggregate_and_proof.signature, is valid.
//   - The signature of aggregate is valid.
func (v *AggregateValidator) Validate(ctx context.Context, signed *phase0.SignedAggregateAndProof) *async.Future[ValidationResult] {
	ctx, span := trace.StartSpan(ctx, "sync.validateAggregateAndProof")
	out := v.validate(ctx, signed)
	out.OnComplete(async.Immediate, func(res ValidationResult, err error) {
		defer span.End()
		if err != nil {
			aggregateValidationErrorCounter.Inc()
			span.SetStatus(trace.Status{Code: trace.StatusCodeInternal, Message: err.Error()})
			log.WithError(err).Debug("Could not validate aggregate")
			return
		}
		aggregateValidationCounter.WithLabelValues(res.Action.String()).Inc()
		span.AddAttributes(trace.StringAttribute("result", res.Action.String()))
		if res.Action == Reject {
			log.WithFields(aggregateFields(signed)).WithField("reason", res.Reason).Debug("Rejected aggregate")
		}
	})
	return out
}

func (v *AggregateValidator) validate(ctx context.Context, signed *phase0.SignedAggregateAndProof) *async.Future[ValidationResult] {
	if signed == nil || signed.Message == nil {
		return async.Completed(Rejected("nil aggregate and proof"))
	}
	aggregate := signed.Message.Aggregate
	if err := helpers.ValidateNilAttestation(aggregate); err != nil {
		return async.Completed(Rejected("malformed aggregate: %v", err))
	}
	data := aggregate.Data
	key := cache.AggregatorIndexAndEpoch{
		Index: signed.Message.AggregatorIndex,
		Epoch: slots.ToEpoch(data.Slot),
	}
	if v.seenAggregators.Contains(key) {
		return async.Completed(Ignored("duplicate aggregate"))
	}
	dataRoot, err := data.HashTreeRoot()
	if err != nil {
		return async.Completed(Rejected("could not hash attestation data: %v", err))
	}
	if v.seenBits.IsAlreadySeen(dataRoot, aggregate.AggregationBits) {
		return async.Completed(Ignored("duplicate aggregate based on aggregation bits"))
	}

	batch := verification.NewBatch(v.verifier)
	return async.Compose(v.scheduler, async.OrFailed(v.checker.Check(ctx, batch, aggregate)), func(check CheckResult) *async.Future[ValidationResult] {
		if check.Result.IsNotProcessable() {
			return async.Completed(check.Result)
		}
		if check.State == nil {
			// Reject and ignore conditions were handled above, so only the state is missing.
			return async.Completed(SavedForFuture())
		}
		res, err := v.validateWithState(check.State, signed, batch)
		if err != nil {
			return async.Failed[ValidationResult](err)
		}
		if res.Action != Accept {
			return async.Completed(res)
		}
		return async.Then(v.scheduler, batch.BatchVerify(ctx), func(valid bool) (ValidationResult, error) {
			if !valid {
				return Rejected("invalid batch signature"), nil
			}
			if res, ok := v.markAccepted(key, dataRoot, aggregate.AggregationBits); !ok {
				return res, nil
			}
			return check.Result, nil
		})
	})
}

// validateWithState runs the state dependent checks, queueing the selection
// proof and aggregator signature into batch.
func (v *AggregateValidator) validateWithState(
	st state.ReadOnlyBeaconState,
	signed *phase0.SignedAggregateAndProof,
	batch *verification.Batch,
) (ValidationResult, error) {
	msg := signed.Message
	data := msg.Aggregate.Data
	cfg := params.BeaconConfig()

	pubkey, ok := st.PubkeyAtIndex(msg.AggregatorIndex)
	if !ok {
		return Rejected("invalid index"), nil
	}

	epoch := slots.ToEpoch(data.Slot)
	selectionDomain, err := helpers.Domain(st.Fork(), epoch, cfg.DomainSelectionProof, st.GenesisValidatorsRoot())
	if err != nil {
		return ValidationResult{}, errors.Wrap(err, "could not get selection proof domain")
	}
	selectionRoot, err := helpers.SlotSigningRoot(data.Slot, selectionDomain)
	if err != nil {
		return ValidationResult{}, errors.Wrap(err, "could not compute selection proof signing root")
	}
	if !batch.Verify(pubkey, selectionRoot, msg.SelectionProof, "selection proof") {
		return Rejected("incorrect selection proof"), nil
	}

	committee, err := v.committees.BeaconCommittee(st, data.Slot, data.Index)
	if err != nil {
		return ValidationResult{}, errors.Wrapf(err, "could not get committee %d at slot %d", data.Index, data.Slot)
	}
	validators := v.schedule.AtSlot(data.Slot).Validators()
	if !validators.IsAggregator(len(committee), msg.SelectionProof) {
		return Rejected("not selected as aggregator"), nil
	}
	if !containsIndex(committee, msg.AggregatorIndex) {
		return Rejected("not in committee"), nil
	}

	aggDomain, err := helpers.Domain(st.Fork(), epoch, cfg.DomainAggregateAndProof, st.GenesisValidatorsRoot())
	if err != nil {
		return ValidationResult{}, errors.Wrap(err, "could not get aggregate and proof domain")
	}
	aggRoot, err := helpers.ComputeSigningRoot(msg, aggDomain)
	if err != nil {
		return ValidationResult{}, errors.Wrap(err, "could not compute aggregate and proof signing root")
	}
	if !batch.Verify(pubkey, aggRoot, signed.Signature, "aggregate and proof") {
		return Rejected("invalid signature"), nil
	}
	return Accepted(), nil
}

// markAccepted atomically checks both seen caches and records the aggregate.
// A concurrent validation that got there first turns this one into an ignore.
func (v *AggregateValidator) markAccepted(key cache.AggregatorIndexAndEpoch, dataRoot [32]byte, bits bitfield.Bitlist) (ValidationResult, bool) {
	v.acceptLock.Lock()
	defer v.acceptLock.Unlock()
	if v.seenAggregators.Contains(key) {
		return Ignored("duplicate aggregate"), false
	}
	if v.seenBits.IsAlreadySeen(dataRoot, bits) {
		return Ignored("duplicate aggregate based on aggregation bits"), false
	}
	v.seenAggregators.Add(key)
	v.seenBits.Add(dataRoot, bits)
	return ValidationResult{}, true
}

func containsIndex(committee []phase0.ValidatorIndex, idx phase0.ValidatorIndex) bool {
	for _, c := range committee {
		if c == idx {
			return true
		}
	}
	return false
}

func aggregateFields(signed *phase0.SignedAggregateAndProof) logrus.Fields {
	if signed == nil || signed.Message == nil || signed.Message.Aggregate == nil || signed.Message.Aggregate.Data == nil {
		return logrus.Fields{}
	}
	data := signed.Message.Aggregate.Data
	return logrus.Fields{
		"slot":            data.Slot,
		"committeeIndex":  data.Index,
		"aggregatorIndex": signed.Message.AggregatorIndex,
		"blockRoot":       fmt.Sprintf("%#x", data.BeaconBlockRoot),
	}
}
