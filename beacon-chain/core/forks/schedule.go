// Package forks resolves fork-specific consensus logic through a lookup table
// built once from the chain config.
package forks

import (
	"sort"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/runtime/version"
	"github.com/eth2353/admission/time/slots"
)

// Schedule maps every configured fork to its logic.
type Schedule struct {
	byFork  map[version.Fork]*Logic
	ordered []*Logic
}

// NewSchedule builds the fork table for cfg. Forks scheduled at the far future
// epoch stay addressable by tag but never activate by epoch.
func NewSchedule(cfg *params.BeaconChainConfig) *Schedule {
	type entry struct {
		fork    version.Fork
		version phase0.Version
		epoch   phase0.Epoch
	}
	entries := []entry{
		{version.Phase0, cfg.GenesisForkVersion, 0},
		{version.Altair, cfg.AltairForkVersion, cfg.AltairForkEpoch},
		{version.Bellatrix, cfg.BellatrixForkVersion, cfg.BellatrixForkEpoch},
		{version.Capella, cfg.CapellaForkVersion, cfg.CapellaForkEpoch},
		{version.Deneb, cfg.DenebForkVersion, cfg.DenebForkEpoch},
	}
	s := &Schedule{byFork: make(map[version.Fork]*Logic, len(entries))}
	for _, e := range entries {
		l := newLogic(cfg, e.fork, e.version, e.epoch)
		s.byFork[e.fork] = l
		s.ordered = append(s.ordered, l)
	}
	sort.SliceStable(s.ordered, func(i, j int) bool {
		return s.ordered[i].epoch < s.ordered[j].epoch
	})
	return s
}

// Get returns the logic of a fork.
func (s *Schedule) Get(f version.Fork) (*Logic, bool) {
	l, ok := s.byFork[f]
	return l, ok
}

// AtEpoch returns the logic active at epoch.
func (s *Schedule) AtEpoch(epoch phase0.Epoch) *Logic {
	active := s.ordered[0]
	for _, l := range s.ordered[1:] {
		if l.epoch > epoch {
			break
		}
		active = l
	}
	return active
}

// AtSlot returns the logic active at slot.
func (s *Schedule) AtSlot(slot phase0.Slot) *Logic {
	return s.AtEpoch(slots.ToEpoch(slot))
}

// ForkAt returns the fork object in effect at epoch, for use in signing domains.
func (s *Schedule) ForkAt(epoch phase0.Epoch) *phase0.Fork {
	cur := s.AtEpoch(epoch)
	prev := cur
	for i, l := range s.ordered {
		if l == cur && i > 0 {
			prev = s.ordered[i-1]
			break
		}
	}
	return &phase0.Fork{
		PreviousVersion: prev.forkVersion,
		CurrentVersion:  cur.forkVersion,
		Epoch:           cur.epoch,
	}
}
