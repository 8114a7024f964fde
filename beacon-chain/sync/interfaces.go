package sync

import (
	"context"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/beacon-chain/state"
	"github.com/eth2353/admission/beacon-chain/verification"
)

// StateResolver provides the state to validate an attestation against. The
// future resolves to nil when the state is not available yet.
type StateResolver interface {
	StateAtSlot(ctx context.Context, slot phase0.Slot) *async.Future[state.ReadOnlyBeaconState]
}

// CommitteeProvider computes beacon committees.
type CommitteeProvider interface {
	BeaconCommittee(st state.ReadOnlyBeaconState, slot phase0.Slot, committeeIndex phase0.CommitteeIndex) ([]phase0.ValidatorIndex, error)
}

// CheckResult is the outcome of the checks shared by aggregated and
// unaggregated attestations. State is nil when it could not be resolved yet.
type CheckResult struct {
	Result ValidationResult
	State  state.ReadOnlyBeaconState
}

// SingleAttestationChecker runs the attestation checks, queueing any signature
// checks into batch.
type SingleAttestationChecker interface {
	Check(ctx context.Context, batch *verification.Batch, att *phase0.Attestation) *async.Future[CheckResult]
}
