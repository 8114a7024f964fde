package helpers_test

import (
	"encoding/binary"
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/beacon-chain/core/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDomain(t *testing.T) {
	tests := []struct {
		domainType phase0.DomainType
		domain     []byte
	}{
		{domainType: phase0.DomainType{4, 0, 0, 0}, domain: []byte{4, 0, 0, 0, 245, 165, 253, 66, 209, 106, 32, 48, 39, 152, 239, 110, 211, 9, 151, 155, 67, 0, 61, 35, 32, 217, 240, 232, 234, 152, 49, 169}},
		{domainType: phase0.DomainType{5, 0, 0, 0}, domain: []byte{5, 0, 0, 0, 245, 165, 253, 66, 209, 106, 32, 48, 39, 152, 239, 110, 211, 9, 151, 155, 67, 0, 61, 35, 32, 217, 240, 232, 234, 152, 49, 169}},
	}
	for _, tt := range tests {
		got, err := helpers.ComputeDomain(tt.domainType, phase0.Version{}, phase0.Root{})
		require.NoError(t, err)
		assert.Equal(t, tt.domain, got[:])
	}
}

func TestDomain_UsesPreviousVersionBeforeForkEpoch(t *testing.T) {
	fork := &phase0.Fork{
		PreviousVersion: phase0.Version{0, 0, 0, 0},
		CurrentVersion:  phase0.Version{1, 0, 0, 0},
		Epoch:           10,
	}
	gvr := phase0.Root{0x42}
	dt := phase0.DomainType{6, 0, 0, 0}

	before, err := helpers.Domain(fork, 9, dt, gvr)
	require.NoError(t, err)
	prev, err := helpers.ComputeDomain(dt, fork.PreviousVersion, gvr)
	require.NoError(t, err)
	assert.Equal(t, prev, before)

	after, err := helpers.Domain(fork, 10, dt, gvr)
	require.NoError(t, err)
	cur, err := helpers.ComputeDomain(dt, fork.CurrentVersion, gvr)
	require.NoError(t, err)
	assert.Equal(t, cur, after)
	assert.NotEqual(t, before, after)

	_, err = helpers.Domain(nil, 0, dt, gvr)
	require.ErrorIs(t, err, helpers.ErrNilFork)
}

type slotRoot phase0.Slot

func (s slotRoot) HashTreeRoot() ([32]byte, error) {
	var r [32]byte
	binary.LittleEndian.PutUint64(r[:8], uint64(s))
	return r, nil
}

func TestSlotSigningRoot_MatchesComputeSigningRoot(t *testing.T) {
	domain := phase0.Domain{5, 0, 0, 0, 1, 2, 3}
	want, err := helpers.ComputeSigningRoot(slotRoot(12345), domain)
	require.NoError(t, err)
	got, err := helpers.SlotSigningRoot(12345, domain)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := helpers.SlotSigningRoot(12346, domain)
	require.NoError(t, err)
	assert.NotEqual(t, got, other)
}

func TestComputeSigningRoot_Header(t *testing.T) {
	hdr := &phase0.BeaconBlockHeader{Slot: 3, ProposerIndex: 7}
	r1, err := helpers.ComputeSigningRoot(hdr, phase0.Domain{})
	require.NoError(t, err)
	r2, err := helpers.ComputeSigningRoot(hdr, phase0.Domain{1})
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2)
}

func TestIsAggregator(t *testing.T) {
	sig := phase0.BLSSignature{0xA0, 1, 2, 3}
	assert.True(t, helpers.IsAggregator(1, sig))
	assert.True(t, helpers.IsAggregator(0, sig))

	// Some modulo must exclude a fixed signature.
	excluded := false
	for m := uint64(2); m < 64; m++ {
		if !helpers.IsAggregator(m, sig) {
			excluded = true
			break
		}
	}
	assert.True(t, excluded)
}
