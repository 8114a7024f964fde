package slots_test

import (
	"testing"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/time/slots"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEpoch(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideBeaconConfig(params.MainnetConfig())
	tests := []struct {
		slot  phase0.Slot
		epoch phase0.Epoch
	}{
		{slot: 0, epoch: 0},
		{slot: 31, epoch: 0},
		{slot: 32, epoch: 1},
		{slot: 200, epoch: 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.epoch, slots.ToEpoch(tt.slot), "slot %d", tt.slot)
	}
}

func TestEpochStart(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideBeaconConfig(params.MainnetConfig())
	s, err := slots.EpochStart(3)
	require.NoError(t, err)
	assert.Equal(t, phase0.Slot(96), s)

	_, err = slots.EpochStart(phase0.Epoch(1 << 62))
	require.Error(t, err)
}

func TestClock_CurrentSlot(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideBeaconConfig(params.MainnetConfig())
	genesis := time.Unix(1_600_000_000, 0)
	now := genesis.Add(25 * time.Second)
	c := slots.NewClock(genesis, slots.WithNower(func() time.Time { return now }))
	assert.Equal(t, phase0.Slot(2), c.CurrentSlot())
	assert.Equal(t, phase0.Slot(0), c.SlotAt(genesis.Add(-time.Hour)))
}

func TestClock_ValidatePropagationRange(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideBeaconConfig(params.MainnetConfig())
	genesis := time.Unix(1_600_000_000, 0)
	now := slots.StartTime(genesis, 100)
	c := slots.NewClock(genesis, slots.WithNower(func() time.Time { return now }))

	require.NoError(t, c.ValidatePropagationRange(100))
	require.NoError(t, c.ValidatePropagationRange(68))
	assert.True(t, errors.Is(c.ValidatePropagationRange(101), slots.ErrTooEarly))
	assert.True(t, errors.Is(c.ValidatePropagationRange(60), slots.ErrTooLate))

	// Within clock disparity of the next slot.
	now = slots.StartTime(genesis, 101).Add(-100 * time.Millisecond)
	require.NoError(t, c.ValidatePropagationRange(101))
}
