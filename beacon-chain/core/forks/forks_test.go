package forks_test

import (
	"context"
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/beacon-chain/core/forks"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/consensus-types/blocks"
	"github.com/eth2353/admission/crypto/hash"
	"github.com/eth2353/admission/runtime/version"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_AtEpoch(t *testing.T) {
	cfg := params.MainnetConfig()
	s := forks.NewSchedule(cfg)

	tests := []struct {
		epoch phase0.Epoch
		fork  version.Fork
	}{
		{epoch: 0, fork: version.Phase0},
		{epoch: cfg.AltairForkEpoch - 1, fork: version.Phase0},
		{epoch: cfg.AltairForkEpoch, fork: version.Altair},
		{epoch: cfg.BellatrixForkEpoch + 5, fork: version.Bellatrix},
		{epoch: cfg.CapellaForkEpoch, fork: version.Capella},
		{epoch: cfg.DenebForkEpoch + 1000, fork: version.Deneb},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.fork, s.AtEpoch(tt.epoch).Fork(), "epoch %d", tt.epoch)
	}
}

func TestSchedule_ForkAt(t *testing.T) {
	cfg := params.MainnetConfig()
	s := forks.NewSchedule(cfg)

	f := s.ForkAt(cfg.CapellaForkEpoch + 1)
	assert.Equal(t, cfg.BellatrixForkVersion, f.PreviousVersion)
	assert.Equal(t, cfg.CapellaForkVersion, f.CurrentVersion)
	assert.Equal(t, cfg.CapellaForkEpoch, f.Epoch)

	genesis := s.ForkAt(0)
	assert.Equal(t, cfg.GenesisForkVersion, genesis.PreviousVersion)
	assert.Equal(t, cfg.GenesisForkVersion, genesis.CurrentVersion)
}

func TestSchedule_MinimalNeverForks(t *testing.T) {
	s := forks.NewSchedule(params.MinimalSpecConfig())
	assert.Equal(t, version.Phase0, s.AtEpoch(1<<40).Fork())
	l, ok := s.Get(version.Deneb)
	require.True(t, ok)
	assert.Equal(t, version.Deneb, l.Fork())
}

func TestLogic_Capabilities(t *testing.T) {
	s := forks.NewSchedule(params.MainnetConfig())
	for _, f := range version.All() {
		l, ok := s.Get(f)
		require.True(t, ok)
		_, hasSync := l.SyncCommitteeUtil()
		_, hasBlinded := l.BlindedBlockUtil()
		assert.Equal(t, f >= version.Altair, hasSync, f.String())
		assert.Equal(t, f >= version.Bellatrix, hasBlinded, f.String())
	}
}

func TestValidatorsUtil_AggregatorModulo(t *testing.T) {
	l := forks.NewSchedule(params.MainnetConfig()).AtEpoch(0)
	assert.Equal(t, uint64(8), l.Validators().AggregatorModulo(128))
	assert.Equal(t, uint64(1), l.Validators().AggregatorModulo(15))
	assert.True(t, l.Validators().IsAggregator(15, phase0.BLSSignature{0x81}))

	altair, _ := forks.NewSchedule(params.MainnetConfig()).Get(version.Altair)
	sc, ok := altair.SyncCommitteeUtil()
	require.True(t, ok)
	// 512 / 4 / 16
	assert.Equal(t, uint64(8), sc.AggregatorModulo())
}

type payloadFunc func(ctx context.Context, blk *blocks.SignedBlock) ([]byte, error)

func (f payloadFunc) PayloadFor(ctx context.Context, blk *blocks.SignedBlock) ([]byte, error) {
	return f(ctx, blk)
}

func TestBlindedBlockUtil_Unblind(t *testing.T) {
	l, _ := forks.NewSchedule(params.MainnetConfig()).Get(version.Capella)
	u, ok := l.BlindedBlockUtil()
	require.True(t, ok)

	payload := []byte("payload")
	hdr := &phase0.BeaconBlockHeader{Slot: 10, BodyRoot: phase0.Root{5}}
	blinded, err := blocks.NewBlindedSignedBlock(version.Capella, hdr, phase0.BLSSignature{}, hash.Hash(payload))
	require.NoError(t, err)

	full, err := u.Unblind(context.Background(), blinded, payloadFunc(func(context.Context, *blocks.SignedBlock) ([]byte, error) {
		return payload, nil
	}))
	require.NoError(t, err)
	assert.False(t, full.IsBlinded())

	_, err = u.Unblind(context.Background(), blinded, payloadFunc(func(context.Context, *blocks.SignedBlock) ([]byte, error) {
		return nil, errors.New("builder offline")
	}))
	require.ErrorContains(t, err, "builder offline")

	deneb, err := blocks.NewBlindedSignedBlock(version.Deneb, hdr, phase0.BLSSignature{}, hash.Hash(payload))
	require.NoError(t, err)
	_, err = u.Unblind(context.Background(), deneb, nil)
	require.ErrorContains(t, err, "does not belong to this fork")
}
