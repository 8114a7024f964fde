package publisher

import (
	"context"

	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/beacon-chain/core/forks"
	"github.com/eth2353/admission/consensus-types/blocks"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

var errUnblindingNotSupported = errors.New("fork does not support blinded blocks")

// ForkUnblinder unblinds through the blinded block capability of the block's fork.
type ForkUnblinder struct {
	schedule  *forks.Schedule
	provider  forks.PayloadProvider
	scheduler async.Scheduler
}

var _ Unblinder = (*ForkUnblinder)(nil)

// NewForkUnblinder fetches payloads from provider. Payload retrieval runs on scheduler.
func NewForkUnblinder(schedule *forks.Schedule, provider forks.PayloadProvider, scheduler async.Scheduler) *ForkUnblinder {
	if scheduler == nil {
		scheduler = async.GoScheduler
	}
	return &ForkUnblinder{schedule: schedule, provider: provider, scheduler: scheduler}
}

// Unblind resolves to blk itself when it is not blinded.
func (u *ForkUnblinder) Unblind(ctx context.Context, blk *blocks.SignedBlock) *async.Future[*blocks.SignedBlock] {
	if blk == nil {
		return async.Failed[*blocks.SignedBlock](blocks.ErrNilBeaconBlock)
	}
	if !blk.IsBlinded() {
		return async.Completed(blk)
	}
	util, ok := u.schedule.AtSlot(blk.Slot()).BlindedBlockUtil()
	if !ok {
		return async.Failed[*blocks.SignedBlock](errors.Wrapf(errUnblindingNotSupported, "block version %s", blk.Version()))
	}
	return async.Run(u.scheduler, func() (*blocks.SignedBlock, error) {
		ctx, span := trace.StartSpan(ctx, "publisher.unblind")
		defer span.End()
		return util.Unblind(ctx, blk, u.provider)
	})
}
