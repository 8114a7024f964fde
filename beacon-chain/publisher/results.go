package publisher

import (
	"fmt"
	"net/http"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/consensus-types/blocks"
)

// FailureReason is why the import channel did not import a block.
type FailureReason string

const (
	UnknownParent               FailureReason = "UNKNOWN_PARENT"
	FailedStateTransition       FailureReason = "FAILED_STATE_TRANSITION"
	BlockIsFromFuture           FailureReason = "BLOCK_IS_FROM_FUTURE"
	DescendantOfInvalidBlock    FailureReason = "DESCENDANT_OF_INVALID_BLOCK"
	FailedDataAvailabilityCheck FailureReason = "FAILED_DATA_AVAILABILITY_CHECK"
	FailedBroadcastValidation   FailureReason = "FAILED_BROADCAST_VALIDATION"
	InternalError               FailureReason = "INTERNAL_ERROR"
)

// ImportResult is the outcome of importing a block locally.
type ImportResult struct {
	Block         *blocks.SignedBlock
	FailureReason FailureReason
	Err           error
}

// ImportSucceeded is the result of a block that was imported.
func ImportSucceeded(blk *blocks.SignedBlock) ImportResult {
	return ImportResult{Block: blk}
}

// ImportFailed is the result of a block that was not imported.
func ImportFailed(reason FailureReason, err error) ImportResult {
	return ImportResult{FailureReason: reason, Err: err}
}

// IsSuccessful reports whether the block was imported.
func (r ImportResult) IsSuccessful() bool {
	return r.FailureReason == ""
}

// BroadcastValidationResult is the verdict of broadcast validation.
type BroadcastValidationResult int

const (
	BroadcastValidationSuccess BroadcastValidationResult = iota
	GossipFailure
	ConsensusFailure
	EquivocationFailure
)

func (r BroadcastValidationResult) String() string {
	switch r {
	case BroadcastValidationSuccess:
		return "SUCCESS"
	case GossipFailure:
		return "GOSSIP_FAILURE"
	case ConsensusFailure:
		return "CONSENSUS_FAILURE"
	case EquivocationFailure:
		return "EQUIVOCATION_FAILURE"
	default:
		return fmt.Sprintf("BroadcastValidationResult(%d)", int(r))
	}
}

// Outcome classifies a SendSignedBlockResult.
type Outcome int

const (
	// Success means the block was imported.
	Success Outcome = iota
	// NotImported means the block was handled but failed import validation.
	NotImported
	// Internal means the pipeline failed for reasons unrelated to the block.
	Internal
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case NotImported:
		return "not_imported"
	case Internal:
		return "internal_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// SendSignedBlockResult is returned to the caller submitting a block.
type SendSignedBlockResult struct {
	BlockRoot       *phase0.Root
	RejectionReason string
}

// SendSucceeded is the result of an imported block.
func SendSucceeded(root phase0.Root) *SendSignedBlockResult {
	return &SendSignedBlockResult{BlockRoot: &root}
}

// SendNotImported is the result of a block whose import failed with reason.
func SendNotImported(root phase0.Root, reason FailureReason) *SendSignedBlockResult {
	return &SendSignedBlockResult{BlockRoot: &root, RejectionReason: string(reason)}
}

// SendRejected is the result of a block that never reached import, root unknown.
func SendRejected(reason FailureReason) *SendSignedBlockResult {
	return &SendSignedBlockResult{RejectionReason: string(reason)}
}

// Classify maps the result onto the three outcome classes.
func (r *SendSignedBlockResult) Classify() Outcome {
	switch r.RejectionReason {
	case "":
		return Success
	case string(InternalError):
		return Internal
	default:
		return NotImported
	}
}

// HTTPStatus is the status code the beacon API answers a block submission with.
func (r *SendSignedBlockResult) HTTPStatus() int {
	switch r.Classify() {
	case Success:
		return http.StatusOK
	case Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusAccepted
	}
}

func (r *SendSignedBlockResult) String() string {
	root := "none"
	if r.BlockRoot != nil {
		root = fmt.Sprintf("%#x", *r.BlockRoot)
	}
	if r.RejectionReason == "" {
		return fmt.Sprintf("success(root=%s)", root)
	}
	return fmt.Sprintf("%s(root=%s)", r.RejectionReason, root)
}
