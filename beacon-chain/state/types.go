package state

import (
	"sync"

	"github.com/attestantio/go-eth2-client/spec/phase0"
)

// BeaconState is an in-memory beacon state holding what validation reads.
type BeaconState struct {
	lock                  sync.RWMutex
	slot                  phase0.Slot
	fork                  *phase0.Fork
	genesisValidatorsRoot phase0.Root
	validators            []phase0.BLSPubKey
}

var _ ReadOnlyBeaconState = (*BeaconState)(nil)

// New creates a state at slot with the given registry of validator pubkeys.
func New(slot phase0.Slot, fork *phase0.Fork, gvr phase0.Root, validators []phase0.BLSPubKey) *BeaconState {
	f := phase0.Fork{}
	if fork != nil {
		f = *fork
	}
	return &BeaconState{
		slot:                  slot,
		fork:                  &f,
		genesisValidatorsRoot: gvr,
		validators:            append([]phase0.BLSPubKey(nil), validators...),
	}
}

// Slot of the state.
func (b *BeaconState) Slot() phase0.Slot {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.slot
}

// Fork returns a copy of the fork of the state.
func (b *BeaconState) Fork() *phase0.Fork {
	b.lock.RLock()
	defer b.lock.RUnlock()
	f := *b.fork
	return &f
}

// GenesisValidatorsRoot of the chain.
func (b *BeaconState) GenesisValidatorsRoot() phase0.Root {
	return b.genesisValidatorsRoot
}

// PubkeyAtIndex returns the pubkey of a validator, if the index is in the registry.
func (b *BeaconState) PubkeyAtIndex(idx phase0.ValidatorIndex) (phase0.BLSPubKey, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if uint64(idx) >= uint64(len(b.validators)) {
		return phase0.BLSPubKey{}, false
	}
	return b.validators[idx], true
}

// NumValidators is the size of the validator registry.
func (b *BeaconState) NumValidators() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.validators)
}

// Copy returns a deep copy of the state.
func (b *BeaconState) Copy() *BeaconState {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return New(b.slot, b.fork, b.genesisValidatorsRoot, b.validators)
}
