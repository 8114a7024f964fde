package util

import (
	"context"
	"sync"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/beacon-chain/state"
)

// StateResolver serves a single state once it is made available.
type StateResolver struct {
	lock  sync.RWMutex
	st    state.ReadOnlyBeaconState
	calls int
}

// NewStateResolver returns a resolver serving st; a nil st resolves to none.
func NewStateResolver(st state.ReadOnlyBeaconState) *StateResolver {
	return &StateResolver{st: st}
}

// SetState makes st available to later lookups.
func (r *StateResolver) SetState(st state.ReadOnlyBeaconState) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.st = st
}

// Calls is the number of lookups served.
func (r *StateResolver) Calls() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.calls
}

// StateAtSlot resolves to the configured state, or nil when none is set.
func (r *StateResolver) StateAtSlot(_ context.Context, _ phase0.Slot) *async.Future[state.ReadOnlyBeaconState] {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.calls++
	return async.Completed(r.st)
}
