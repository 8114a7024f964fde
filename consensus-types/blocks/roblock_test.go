package blocks

import (
	"sort"
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/runtime/version"
	"github.com/stretchr/testify/require"
)

func testROBlock(t *testing.T, slot phase0.Slot, root [32]byte) ROBlock {
	b, err := NewSignedBlock(version.Phase0, &phase0.BeaconBlockHeader{Slot: slot}, phase0.BLSSignature{}, nil)
	require.NoError(t, err)
	ro, err := NewROBlockWithRoot(b, root)
	require.NoError(t, err)
	return ro
}

func TestROBlockSorting(t *testing.T) {
	one := [32]byte{1}
	two := [32]byte{2}
	cases := []struct {
		name   string
		ros    []ROBlock
		sorted []ROBlock
	}{
		{
			name:   "1 item",
			ros:    []ROBlock{testROBlock(t, 1, [32]byte{})},
			sorted: []ROBlock{testROBlock(t, 1, [32]byte{})},
		},
		{
			name:   "2 items, reversed",
			ros:    []ROBlock{testROBlock(t, 2, [32]byte{}), testROBlock(t, 1, [32]byte{})},
			sorted: []ROBlock{testROBlock(t, 1, [32]byte{}), testROBlock(t, 2, [32]byte{})},
		},
		{
			name: "3 items, reversed, with tie breaker",
			ros: []ROBlock{
				testROBlock(t, 2, two),
				testROBlock(t, 2, one),
				testROBlock(t, 1, [32]byte{}),
			},
			sorted: []ROBlock{
				testROBlock(t, 1, [32]byte{}),
				testROBlock(t, 2, one),
				testROBlock(t, 2, two),
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sort.Sort(ROBlockSlice(c.ros))
			for i := 0; i < len(c.sorted); i++ {
				require.Equal(t, c.sorted[i].Slot(), c.ros[i].Slot())
				require.Equal(t, c.sorted[i].Root(), c.ros[i].Root())
			}
		})
	}
}

func TestNewROBlock_Nil(t *testing.T) {
	_, err := NewROBlock(nil)
	require.ErrorIs(t, err, ErrNilBeaconBlock)
}
