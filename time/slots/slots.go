// Package slots includes ticker and timer-related functions for the beacon chain.
package slots

import (
	"fmt"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/config/params"
	"github.com/pkg/errors"
)

// ToEpoch returns the epoch number of the input slot.
//
// Spec pseudocode definition:
//
//	def compute_epoch_at_slot(slot: Slot) -> Epoch:
//	  """
//	  Return the epoch number at ``slot``.
//	  """
//	  return Epoch(slot // SLOTS_PER_EPOCH)
func ToEpoch(slot phase0.Slot) phase0.Epoch {
	return phase0.Epoch(slot / params.BeaconConfig().SlotsPerEpoch)
}

// EpochStart returns the first slot number of the current epoch.
func EpochStart(epoch phase0.Epoch) (phase0.Slot, error) {
	spe := uint64(params.BeaconConfig().SlotsPerEpoch)
	slot := uint64(epoch) * spe
	if spe != 0 && slot/spe != uint64(epoch) {
		return 0, fmt.Errorf("start slot calculation overflows: epoch %d", epoch)
	}
	return phase0.Slot(slot), nil
}

// StartTime returns the start time in terms of its unix epoch
// value.
func StartTime(genesis time.Time, slot phase0.Slot) time.Time {
	return genesis.Add(time.Duration(slot) * params.BeaconConfig().SlotDuration())
}

// Clock abstracts the wall clock relative to a genesis time.
type Clock struct {
	genesis time.Time
	now     func() time.Time
}

// ClockOpt is a functional option for Clock.
type ClockOpt func(*Clock)

// WithNower overrides the time source, for tests.
func WithNower(now func() time.Time) ClockOpt {
	return func(c *Clock) {
		c.now = now
	}
}

// NewClock creates a clock anchored at genesis.
func NewClock(genesis time.Time, opts ...ClockOpt) *Clock {
	c := &Clock{genesis: genesis, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GenesisTime returns the anchor of the clock.
func (c *Clock) GenesisTime() time.Time {
	return c.genesis
}

// Now returns the current time of the clock's time source.
func (c *Clock) Now() time.Time {
	return c.now()
}

// CurrentSlot returns the slot at the clock's current time. Before genesis it is 0.
func (c *Clock) CurrentSlot() phase0.Slot {
	return c.SlotAt(c.now())
}

// SlotAt returns the slot containing t.
func (c *Clock) SlotAt(t time.Time) phase0.Slot {
	if t.Before(c.genesis) {
		return 0
	}
	return phase0.Slot(t.Sub(c.genesis) / params.BeaconConfig().SlotDuration())
}

var (
	// ErrTooEarly is returned when a slot has not started yet, beyond tolerated clock disparity.
	ErrTooEarly = errors.New("slot is in the future")
	// ErrTooLate is returned when a slot is past the propagation window.
	ErrTooLate = errors.New("slot is past the propagation window")
)

// ValidatePropagationRange checks that slot is within the last
// ATTESTATION_PROPAGATION_SLOT_RANGE slots, with MAXIMUM_GOSSIP_CLOCK_DISPARITY tolerance:
// slot + ATTESTATION_PROPAGATION_SLOT_RANGE >= current_slot >= slot.
func (c *Clock) ValidatePropagationRange(slot phase0.Slot) error {
	cfg := params.BeaconConfig()
	now := c.now()
	disparity := cfg.MaximumGossipClockDisparity

	if StartTime(c.genesis, slot).After(now.Add(disparity)) {
		return errors.Wrapf(ErrTooEarly, "slot %d, current slot %d", slot, c.SlotAt(now))
	}
	latest := StartTime(c.genesis, slot+cfg.AttestationPropagationSlotRange+1)
	if now.Add(-disparity).After(latest) || now.Add(-disparity).Equal(latest) {
		return errors.Wrapf(ErrTooLate, "slot %d, current slot %d", slot, c.SlotAt(now))
	}
	return nil
}
