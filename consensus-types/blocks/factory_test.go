package blocks

import (
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/crypto/hash"
	"github.com/eth2353/admission/runtime/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader() *phase0.BeaconBlockHeader {
	return &phase0.BeaconBlockHeader{
		Slot:          77,
		ProposerIndex: 3,
		ParentRoot:    phase0.Root{1},
		StateRoot:     phase0.Root{2},
		BodyRoot:      phase0.Root{3},
	}
}

func TestBuildSignedBlockFromBlinded_KeepsRoot(t *testing.T) {
	payload := []byte("execution payload")
	blinded, err := NewBlindedSignedBlock(version.Capella, testHeader(), phase0.BLSSignature{0x80}, hash.Hash(payload))
	require.NoError(t, err)
	require.True(t, blinded.IsBlinded())
	_, err = blinded.Payload()
	require.Error(t, err)

	full, err := BuildSignedBlockFromBlinded(blinded, payload)
	require.NoError(t, err)
	assert.False(t, full.IsBlinded())
	assert.True(t, blinded.IsBlinded(), "source block must not be mutated")

	got, err := full.Payload()
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	r1, err := blinded.Root()
	require.NoError(t, err)
	r2, err := full.Root()
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestBuildSignedBlockFromBlinded_Errors(t *testing.T) {
	blinded, err := NewBlindedSignedBlock(version.Bellatrix, testHeader(), phase0.BLSSignature{}, phase0.Root{9})
	require.NoError(t, err)
	_, err = BuildSignedBlockFromBlinded(blinded, []byte("wrong"))
	require.ErrorIs(t, err, ErrPayloadMismatch)

	full, err := NewSignedBlock(version.Bellatrix, testHeader(), phase0.BLSSignature{}, []byte("p"))
	require.NoError(t, err)
	_, err = BuildSignedBlockFromBlinded(full, []byte("p"))
	require.ErrorIs(t, err, errNonBlindedSignedBeaconBlock)

	_, err = BuildSignedBlockFromBlinded(nil, nil)
	require.ErrorIs(t, err, ErrNilBeaconBlock)
}

func TestNewBlindedSignedBlock_PreBellatrix(t *testing.T) {
	_, err := NewBlindedSignedBlock(version.Altair, testHeader(), phase0.BLSSignature{}, phase0.Root{})
	require.ErrorContains(t, err, "not supported for altair")

	b, err := NewSignedBlock(version.Phase0, testHeader(), phase0.BLSSignature{}, nil)
	require.NoError(t, err)
	_, err = b.PayloadHeaderRoot()
	require.Error(t, err)
}

func TestSignedBlock_CopyIsDeep(t *testing.T) {
	b, err := NewSignedBlock(version.Deneb, testHeader(), phase0.BLSSignature{}, []byte{1, 2})
	require.NoError(t, err)
	cp := b.Copy()
	cp.header.Slot = 1
	cp.payload[0] = 9
	assert.Equal(t, phase0.Slot(77), b.Slot())
	p, err := b.Payload()
	require.NoError(t, err)
	assert.Equal(t, byte(1), p[0])
}
