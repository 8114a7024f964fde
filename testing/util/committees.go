package util

import (
	"fmt"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/beacon-chain/state"
	"github.com/eth2353/admission/config/params"
)

// RoundRobinCommittees assigns validators to committees without shuffling:
// validator v attests in the committee at position v mod (slots per epoch *
// committees per slot) of every epoch.
type RoundRobinCommittees struct{}

// CommitteesPerSlot mirrors get_committee_count_per_slot for the registry size.
func (RoundRobinCommittees) CommitteesPerSlot(numValidators int) uint64 {
	cfg := params.BeaconConfig()
	n := uint64(numValidators) / uint64(cfg.SlotsPerEpoch) / cfg.TargetCommitteeSize
	return max(1, min(cfg.MaxCommitteesPerSlot, n))
}

// BeaconCommittee returns the committee at slot and committeeIndex, in ascending validator order.
func (r RoundRobinCommittees) BeaconCommittee(st state.ReadOnlyBeaconState, slot phase0.Slot, committeeIndex phase0.CommitteeIndex) ([]phase0.ValidatorIndex, error) {
	cps := r.CommitteesPerSlot(st.NumValidators())
	if uint64(committeeIndex) >= cps {
		return nil, fmt.Errorf("committee index %d out of range, %d committees per slot", committeeIndex, cps)
	}
	spe := uint64(params.BeaconConfig().SlotsPerEpoch)
	stride := spe * cps
	position := (uint64(slot)%spe)*cps + uint64(committeeIndex)
	committee := make([]phase0.ValidatorIndex, 0, uint64(st.NumValidators())/stride+1)
	for v := position; v < uint64(st.NumValidators()); v += stride {
		committee = append(committee, phase0.ValidatorIndex(v))
	}
	return committee, nil
}
