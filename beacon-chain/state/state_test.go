package state_test

import (
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/beacon-chain/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeaconState_Getters(t *testing.T) {
	fork := &phase0.Fork{CurrentVersion: phase0.Version{1}}
	st := state.New(5, fork, phase0.Root{7}, []phase0.BLSPubKey{{0xA1}, {0xA2}})

	assert.Equal(t, phase0.Slot(5), st.Slot())
	assert.Equal(t, phase0.Root{7}, st.GenesisValidatorsRoot())
	assert.Equal(t, 2, st.NumValidators())

	pk, ok := st.PubkeyAtIndex(1)
	require.True(t, ok)
	assert.Equal(t, phase0.BLSPubKey{0xA2}, pk)
	_, ok = st.PubkeyAtIndex(2)
	assert.False(t, ok)

	// Returned fork must not alias state internals.
	st.Fork().CurrentVersion = phase0.Version{9}
	assert.Equal(t, phase0.Version{1}, st.Fork().CurrentVersion)
	fork.CurrentVersion = phase0.Version{8}
	assert.Equal(t, phase0.Version{1}, st.Fork().CurrentVersion)
}

func TestBeaconState_SettersAndCopy(t *testing.T) {
	st := state.New(0, nil, phase0.Root{}, nil)
	idx := st.AppendValidator(phase0.BLSPubKey{0xB0})
	assert.Equal(t, phase0.ValidatorIndex(0), idx)
	st.SetSlot(42)
	st.SetFork(&phase0.Fork{Epoch: 3})

	cp := st.Copy()
	st.SetSlot(43)
	st.AppendValidator(phase0.BLSPubKey{0xB1})
	assert.Equal(t, phase0.Slot(42), cp.Slot())
	assert.Equal(t, 1, cp.NumValidators())
	assert.Equal(t, phase0.Epoch(3), cp.Fork().Epoch)
}
