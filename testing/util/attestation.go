package util

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/beacon-chain/core/forks"
	"github.com/eth2353/admission/beacon-chain/core/helpers"
	"github.com/eth2353/admission/beacon-chain/state"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/crypto/bls"
	"github.com/eth2353/admission/time/slots"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
)

// AggregateSpec describes an aggregate to build.
type AggregateSpec struct {
	Slot           phase0.Slot
	CommitteeIndex phase0.CommitteeIndex
	// Positions of the committee members that participate.
	Participants []int
	// BeaconBlockRoot voted for; differs between otherwise equal aggregates.
	BeaconBlockRoot phase0.Root
}

// Signer signs aggregates for a state whose validators' keys it holds.
type Signer struct {
	State      state.ReadOnlyBeaconState
	Keys       []*bls.SecretKey
	Committees RoundRobinCommittees
}

// AttestationData builds the attestation data of spec.
func (s *Signer) AttestationData(spec AggregateSpec) *phase0.AttestationData {
	return &phase0.AttestationData{
		Slot:            spec.Slot,
		Index:           spec.CommitteeIndex,
		BeaconBlockRoot: spec.BeaconBlockRoot,
		Source:          &phase0.Checkpoint{},
		Target:          &phase0.Checkpoint{Epoch: slots.ToEpoch(spec.Slot)},
	}
}

// Attestation builds a correctly signed aggregate attestation.
func (s *Signer) Attestation(spec AggregateSpec) (*phase0.Attestation, error) {
	committee, err := s.Committees.BeaconCommittee(s.State, spec.Slot, spec.CommitteeIndex)
	if err != nil {
		return nil, err
	}
	data := s.AttestationData(spec)
	domain, err := helpers.Domain(s.State.Fork(), data.Target.Epoch, params.BeaconConfig().DomainBeaconAttester, s.State.GenesisValidatorsRoot())
	if err != nil {
		return nil, err
	}
	root, err := helpers.ComputeSigningRoot(data, domain)
	if err != nil {
		return nil, err
	}
	bits := bitfield.NewBitlist(uint64(len(committee)))
	sigs := make([]*bls.Signature, 0, len(spec.Participants))
	for _, p := range spec.Participants {
		if p < 0 || p >= len(committee) {
			return nil, errors.Errorf("participant %d outside committee of %d", p, len(committee))
		}
		bits.SetBitAt(uint64(p), true)
		sigs = append(sigs, s.Keys[committee[p]].Sign(root[:]))
	}
	sig, err := bls.AggregateSignatures(sigs)
	if err != nil {
		return nil, err
	}
	return &phase0.Attestation{AggregationBits: bits, Data: data, Signature: sig}, nil
}

// SelectionProof signs the slot as aggregator.
func (s *Signer) SelectionProof(aggregator phase0.ValidatorIndex, slot phase0.Slot) (phase0.BLSSignature, error) {
	domain, err := helpers.Domain(s.State.Fork(), slots.ToEpoch(slot), params.BeaconConfig().DomainSelectionProof, s.State.GenesisValidatorsRoot())
	if err != nil {
		return phase0.BLSSignature{}, err
	}
	root, err := helpers.SlotSigningRoot(slot, domain)
	if err != nil {
		return phase0.BLSSignature{}, err
	}
	return s.Keys[aggregator].Sign(root[:]).Bytes(), nil
}

// SignAggregateAndProof wraps att into a signed aggregate and proof from aggregator.
func (s *Signer) SignAggregateAndProof(aggregator phase0.ValidatorIndex, att *phase0.Attestation) (*phase0.SignedAggregateAndProof, error) {
	proof, err := s.SelectionProof(aggregator, att.Data.Slot)
	if err != nil {
		return nil, err
	}
	msg := &phase0.AggregateAndProof{
		AggregatorIndex: aggregator,
		Aggregate:       att,
		SelectionProof:  proof,
	}
	return s.SignMessage(msg)
}

// SignMessage signs msg with the key of its aggregator.
func (s *Signer) SignMessage(msg *phase0.AggregateAndProof) (*phase0.SignedAggregateAndProof, error) {
	domain, err := helpers.Domain(s.State.Fork(), slots.ToEpoch(msg.Aggregate.Data.Slot), params.BeaconConfig().DomainAggregateAndProof, s.State.GenesisValidatorsRoot())
	if err != nil {
		return nil, err
	}
	root, err := helpers.ComputeSigningRoot(msg, domain)
	if err != nil {
		return nil, err
	}
	return &phase0.SignedAggregateAndProof{
		Message:   msg,
		Signature: s.Keys[msg.AggregatorIndex].Sign(root[:]).Bytes(),
	}, nil
}

// FindAggregator returns a committee member selected as aggregator at spec's
// slot and committee, or false if none is.
func (s *Signer) FindAggregator(spec AggregateSpec) (phase0.ValidatorIndex, bool, error) {
	committee, err := s.Committees.BeaconCommittee(s.State, spec.Slot, spec.CommitteeIndex)
	if err != nil {
		return 0, false, err
	}
	validators := forks.NewSchedule(params.BeaconConfig()).AtSlot(spec.Slot).Validators()
	for _, idx := range committee {
		proof, err := s.SelectionProof(idx, spec.Slot)
		if err != nil {
			return 0, false, err
		}
		if validators.IsAggregator(len(committee), proof) {
			return idx, true, nil
		}
	}
	return 0, false, nil
}

// FindNonAggregator returns a committee member not selected as aggregator.
func (s *Signer) FindNonAggregator(spec AggregateSpec) (phase0.ValidatorIndex, bool, error) {
	committee, err := s.Committees.BeaconCommittee(s.State, spec.Slot, spec.CommitteeIndex)
	if err != nil {
		return 0, false, err
	}
	validators := forks.NewSchedule(params.BeaconConfig()).AtSlot(spec.Slot).Validators()
	for _, idx := range committee {
		proof, err := s.SelectionProof(idx, spec.Slot)
		if err != nil {
			return 0, false, err
		}
		if !validators.IsAggregator(len(committee), proof) {
			return idx, true, nil
		}
	}
	return 0, false, nil
}
