// Package state defines the view of the beacon state that gossip validation
// reads, along with a lock-guarded in-memory implementation.
package state

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
)

// ReadOnlyBeaconState defines a struct which only has read access to beacon state methods.
type ReadOnlyBeaconState interface {
	Slot() phase0.Slot
	Fork() *phase0.Fork
	GenesisValidatorsRoot() phase0.Root
	PubkeyAtIndex(idx phase0.ValidatorIndex) (phase0.BLSPubKey, bool)
	NumValidators() int
}
