package publisher

import (
	"context"

	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/consensus-types/blocks"
)

// ImportAndBroadcastValidationResults is what the import channel hands back
// for a block. BroadcastValidation is nil for NotRequired.
type ImportAndBroadcastValidationResults struct {
	ImportResult        *async.Future[ImportResult]
	BroadcastValidation *async.Future[BroadcastValidationResult]
}

// ImportChannel imports blocks into the local chain.
type ImportChannel interface {
	ImportBlock(ctx context.Context, blk *blocks.SignedBlock, level BroadcastValidationLevel) *async.Future[*ImportAndBroadcastValidationResults]
}

// Broadcaster relays blocks to the network.
type Broadcaster interface {
	Publish(ctx context.Context, blk *blocks.SignedBlock) *async.Future[struct{}]
}

// Unblinder replaces a blinded block by its full equivalent.
type Unblinder interface {
	Unblind(ctx context.Context, blk *blocks.SignedBlock) *async.Future[*blocks.SignedBlock]
}
