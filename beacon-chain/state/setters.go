package state

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
)

// SetSlot for the beacon state.
func (b *BeaconState) SetSlot(val phase0.Slot) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.slot = val
}

// SetFork version for the beacon chain.
func (b *BeaconState) SetFork(val *phase0.Fork) {
	b.lock.Lock()
	defer b.lock.Unlock()
	f := *val
	b.fork = &f
}

// AppendValidator adds a validator to the registry and returns its index.
func (b *BeaconState) AppendValidator(pubkey phase0.BLSPubKey) phase0.ValidatorIndex {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.validators = append(b.validators, pubkey)
	return phase0.ValidatorIndex(len(b.validators) - 1)
}
