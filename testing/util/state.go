package util

import (
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/beacon-chain/state"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/crypto/bls"
	"github.com/eth2353/admission/runtime/interop"
)

// GenesisValidatorsRoot is the genesis validators root of test states.
var GenesisValidatorsRoot = phase0.Root{0x47, 0x56, 0x52}

// DeterministicGenesisState returns a state at slot with numValidators interop
// validators, together with their secret keys.
func DeterministicGenesisState(t testing.TB, numValidators uint64, slot phase0.Slot) (*state.BeaconState, []*bls.SecretKey) {
	privs, pubs, err := interop.DeterministicallyGenerateKeys(0, numValidators)
	if err != nil {
		t.Fatal(err)
	}
	return NewState(slot, pubs), privs
}

// NewState creates a state at slot holding pubs. The fork is the genesis fork
// of the active config.
func NewState(slot phase0.Slot, pubs []*bls.PublicKey) *state.BeaconState {
	cfg := params.BeaconConfig()
	registry := make([]phase0.BLSPubKey, len(pubs))
	for i, p := range pubs {
		registry[i] = p.Bytes()
	}
	fork := &phase0.Fork{
		PreviousVersion: cfg.GenesisForkVersion,
		CurrentVersion:  cfg.GenesisForkVersion,
	}
	return state.New(slot, fork, GenesisValidatorsRoot, registry)
}
