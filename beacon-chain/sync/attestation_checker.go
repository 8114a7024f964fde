package sync

import (
	"context"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/beacon-chain/core/helpers"
	"github.com/eth2353/admission/beacon-chain/state"
	"github.com/eth2353/admission/beacon-chain/verification"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/time/slots"
	"github.com/pkg/errors"
)

// AttestationChecker is the default SingleAttestationChecker.
type AttestationChecker struct {
	clock      *slots.Clock
	states     StateResolver
	committees CommitteeProvider
	scheduler  async.Scheduler
}

var _ SingleAttestationChecker = (*AttestationChecker)(nil)

// NewAttestationChecker creates a checker resolving states through states.
func NewAttestationChecker(clock *slots.Clock, states StateResolver, committees CommitteeProvider, scheduler async.Scheduler) *AttestationChecker {
	if scheduler == nil {
		scheduler = async.GoScheduler
	}
	return &AttestationChecker{
		clock:      clock,
		states:     states,
		committees: committees,
		scheduler:  scheduler,
	}
}

// Check runs the checks shared by every attestation.
//
// Validation
//   - attestation.data.slot is within the last ATTESTATION_PROPAGATION_SLOT_RANGE slots
//     (with a MAXIMUM_GOSSIP_CLOCK_DISPARITY allowance).
//   - The attestation's epoch matches its target.
//   - The committee index is within the expected range.
//   - The aggregation bits have exactly the committee length and at least one bit set.
//   - The signature of the attestation is valid.
func (c *AttestationChecker) Check(ctx context.Context, batch *verification.Batch, att *phase0.Attestation) *async.Future[CheckResult] {
	if err := helpers.ValidateNilAttestation(att); err != nil {
		return async.Completed(CheckResult{Result: Rejected("malformed attestation: %v", err)})
	}
	data := att.Data
	// Do not process slot 0 attestations.
	if data.Slot == 0 {
		return async.Completed(CheckResult{Result: Ignored("attestation for slot 0")})
	}
	if err := c.clock.ValidatePropagationRange(data.Slot); err != nil {
		switch {
		case errors.Is(err, slots.ErrTooEarly):
			attReceivedTooEarlyCount.Inc()
		case errors.Is(err, slots.ErrTooLate):
			attReceivedTooLateCount.Inc()
		}
		return async.Completed(CheckResult{Result: Ignored("%v", err)})
	}
	if err := helpers.ValidateSlotTargetEpoch(data); err != nil {
		return async.Completed(CheckResult{Result: Rejected("%v", err)})
	}
	if uint64(data.Index) >= params.BeaconConfig().MaxCommitteesPerSlot {
		return async.Completed(CheckResult{Result: Rejected("committee index %d out of range", data.Index)})
	}
	if att.AggregationBits.Count() == 0 {
		return async.Completed(CheckResult{Result: Rejected("no aggregation bits set")})
	}

	return async.Then(c.scheduler, c.states.StateAtSlot(ctx, data.Slot), func(st state.ReadOnlyBeaconState) (CheckResult, error) {
		if st == nil {
			return CheckResult{Result: Accepted()}, nil
		}
		return c.checkWithState(st, batch, att)
	})
}

func (c *AttestationChecker) checkWithState(st state.ReadOnlyBeaconState, batch *verification.Batch, att *phase0.Attestation) (CheckResult, error) {
	data := att.Data
	committee, err := c.committees.BeaconCommittee(st, data.Slot, data.Index)
	if err != nil {
		return CheckResult{}, errors.Wrapf(err, "could not get committee %d at slot %d", data.Index, data.Slot)
	}
	if att.AggregationBits.Len() != uint64(len(committee)) {
		return CheckResult{Result: Rejected("aggregation bits length %d does not match committee size %d",
			att.AggregationBits.Len(), len(committee))}, nil
	}

	pubkeys := make([]phase0.BLSPubKey, 0, att.AggregationBits.Count())
	for i, idx := range committee {
		if !att.AggregationBits.BitAt(uint64(i)) {
			continue
		}
		pk, ok := st.PubkeyAtIndex(idx)
		if !ok {
			return CheckResult{Result: Rejected("committee member %d not in registry", idx)}, nil
		}
		pubkeys = append(pubkeys, pk)
	}

	domain, err := helpers.Domain(st.Fork(), data.Target.Epoch, params.BeaconConfig().DomainBeaconAttester, st.GenesisValidatorsRoot())
	if err != nil {
		return CheckResult{}, errors.Wrap(err, "could not get attester domain")
	}
	root, err := helpers.ComputeSigningRoot(data, domain)
	if err != nil {
		return CheckResult{}, errors.Wrap(err, "could not compute attestation signing root")
	}
	if !batch.VerifyAggregate(pubkeys, root, att.Signature, "aggregate attestation") {
		return CheckResult{Result: Rejected("invalid attestation signature")}, nil
	}
	return CheckResult{Result: Accepted(), State: st}, nil
}
