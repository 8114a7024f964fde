package forks

import (
	"context"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/beacon-chain/core/helpers"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/consensus-types/blocks"
	"github.com/eth2353/admission/runtime/version"
	"github.com/pkg/errors"
)

// Logic is the consensus logic of one fork. Capabilities that do not exist
// for the fork are resolved to nil at construction.
type Logic struct {
	fork        version.Fork
	forkVersion phase0.Version
	epoch       phase0.Epoch

	validators    ValidatorsUtil
	syncCommittee *SyncCommitteeUtil
	blinded       *BlindedBlockUtil
}

func newLogic(cfg *params.BeaconChainConfig, f version.Fork, v phase0.Version, epoch phase0.Epoch) *Logic {
	l := &Logic{
		fork:        f,
		forkVersion: v,
		epoch:       epoch,
		validators:  ValidatorsUtil{targetAggregators: cfg.TargetAggregatorsPerCommittee},
	}
	if f >= version.Altair {
		l.syncCommittee = &SyncCommitteeUtil{
			subcommitteeSize:  cfg.SyncCommitteeSize / max(cfg.SyncCommitteeSubnetCount, 1),
			targetAggregators: cfg.TargetAggregatorsPerSyncSubcommittee,
		}
	}
	if f >= version.Bellatrix {
		l.blinded = &BlindedBlockUtil{fork: f}
	}
	return l
}

// Fork tag of this logic.
func (l *Logic) Fork() version.Fork {
	return l.fork
}

// Version is the fork version mixed into signing domains.
func (l *Logic) Version() phase0.Version {
	return l.forkVersion
}

// ActivationEpoch of the fork.
func (l *Logic) ActivationEpoch() phase0.Epoch {
	return l.epoch
}

// Validators returns the validator helpers, present for every fork.
func (l *Logic) Validators() ValidatorsUtil {
	return l.validators
}

// SyncCommitteeUtil returns the sync committee helpers, absent before Altair.
func (l *Logic) SyncCommitteeUtil() (*SyncCommitteeUtil, bool) {
	return l.syncCommittee, l.syncCommittee != nil
}

// BlindedBlockUtil returns the blinded block helpers, absent before Bellatrix.
func (l *Logic) BlindedBlockUtil() (*BlindedBlockUtil, bool) {
	return l.blinded, l.blinded != nil
}

// ValidatorsUtil holds attestation aggregator selection.
type ValidatorsUtil struct {
	targetAggregators uint64
}

// AggregatorModulo returns max(1, committeeSize / TARGET_AGGREGATORS_PER_COMMITTEE).
func (u ValidatorsUtil) AggregatorModulo(committeeSize int) uint64 {
	if u.targetAggregators == 0 {
		return 1
	}
	return max(uint64(committeeSize)/u.targetAggregators, 1)
}

// IsAggregator reports whether a selection proof selects its signer in a committee of committeeSize.
func (u ValidatorsUtil) IsAggregator(committeeSize int, selectionProof phase0.BLSSignature) bool {
	return helpers.IsAggregator(u.AggregatorModulo(committeeSize), selectionProof)
}

// SyncCommitteeUtil holds sync committee aggregator selection.
type SyncCommitteeUtil struct {
	subcommitteeSize  uint64
	targetAggregators uint64
}

// AggregatorModulo returns max(1, SYNC_COMMITTEE_SIZE // SYNC_COMMITTEE_SUBNET_COUNT // TARGET_AGGREGATORS_PER_SYNC_SUBCOMMITTEE).
func (u *SyncCommitteeUtil) AggregatorModulo() uint64 {
	if u.targetAggregators == 0 {
		return 1
	}
	return max(u.subcommitteeSize/u.targetAggregators, 1)
}

// IsSyncCommitteeAggregator reports whether a sync committee selection proof selects its signer.
func (u *SyncCommitteeUtil) IsSyncCommitteeAggregator(selectionProof phase0.BLSSignature) bool {
	return helpers.IsAggregator(u.AggregatorModulo(), selectionProof)
}

// PayloadProvider returns the execution payload committed to by a blinded block.
type PayloadProvider interface {
	PayloadFor(ctx context.Context, blk *blocks.SignedBlock) ([]byte, error)
}

// BlindedBlockUtil unblinds blocks of forks that carry execution payloads.
type BlindedBlockUtil struct {
	fork version.Fork
}

var errForkMismatch = errors.New("block does not belong to this fork")

// Unblind fetches the payload of a blinded block and returns the full block.
// The full block keeps the root of the blinded one.
func (u *BlindedBlockUtil) Unblind(ctx context.Context, blk *blocks.SignedBlock, provider PayloadProvider) (*blocks.SignedBlock, error) {
	if blk == nil {
		return nil, blocks.ErrNilBeaconBlock
	}
	if blk.Version() != u.fork {
		return nil, errors.Wrapf(errForkMismatch, "block %s, util %s", blk.Version(), u.fork)
	}
	if !blk.IsBlinded() {
		return blk, nil
	}
	payload, err := provider.PayloadFor(ctx, blk)
	if err != nil {
		return nil, errors.Wrap(err, "could not get execution payload")
	}
	full, err := blocks.BuildSignedBlockFromBlinded(blk, payload)
	if err != nil {
		return nil, err
	}
	blindedRoot, err := blk.Root()
	if err != nil {
		return nil, err
	}
	fullRoot, err := full.Root()
	if err != nil {
		return nil, err
	}
	if blindedRoot != fullRoot {
		return nil, errors.Errorf("unblinded block root %#x does not match blinded root %#x", fullRoot, blindedRoot)
	}
	return full, nil
}
