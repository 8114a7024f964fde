package main

import (
	"context"
	"flag"
	"testing"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/beacon-chain/core/forks"
	"github.com/eth2353/admission/beacon-chain/publisher"
	"github.com/eth2353/admission/beacon-chain/verification"
	"github.com/eth2353/admission/cmd/flags"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/runtime/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func denebConfig() *params.BeaconChainConfig {
	cfg := params.MinimalSpecConfig()
	cfg.AltairForkEpoch = 0
	cfg.BellatrixForkEpoch = 0
	cfg.CapellaForkEpoch = 0
	cfg.DenebForkEpoch = 0
	return cfg
}

func startVerifier(t *testing.T) *verification.Service {
	v := verification.NewService(context.Background(), verification.WithInterval(5*time.Millisecond))
	v.Start()
	t.Cleanup(func() { require.NoError(t, v.Stop()) })
	return v
}

func TestSimulation_AcceptsOneAggregatePerCommittee(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideBeaconConfig(denebConfig())

	cfg := &simConfig{
		validators:      64,
		slots:           4,
		duplicates:      2,
		level:           publisher.ConsensusAndEquivocation,
		failImportEvery: 3,
		workers:         8,
	}
	sim, err := newSimulation(context.Background(), cfg, startVerifier(t))
	require.NoError(t, err)
	require.NoError(t, sim.run(context.Background()))

	// 64 validators in the minimal preset give two committees per slot.
	committees := int(cfg.slots) * 2
	assert.Equal(t, committees, sim.aggregates.get("accept")+sim.gossip.get("accept"))
	assert.Equal(t, 0, sim.aggregates.get("reject"))
	assert.Equal(t, 0, sim.gossip.get("reject"))
	assert.Equal(t, 0, sim.aggregates.get("error"))

	// The third block fails import; the twin of slot 4 equivocates.
	assert.Equal(t, 4, sim.blocks.get(publisher.Success.String()))
	assert.Equal(t, 1, sim.blocks.get(publisher.NotImported.String()))
	assert.Equal(t, 3, sim.broadcast.get(publisher.Broadcast.String()))
	assert.Equal(t, 2, sim.broadcast.get(publisher.Suppressed.String()))
	assert.Equal(t, 0, sim.sync.Pending().Len())

	imported := sim.chain.importedBlocks()
	require.Equal(t, 4, len(imported))
	assert.Equal(t, phase0.Slot(1), imported[0].Slot())
	assert.Equal(t, phase0.Slot(4), imported[3].Slot())
	assert.Equal(t, phase0.Slot(4), imported[2].Slot())
	for _, b := range imported {
		assert.False(t, b.IsBlinded())
	}
	sim.logSummary()
}

func TestSimulation_NotRequiredBroadcastsEverything(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideBeaconConfig(params.MinimalSpecConfig())

	cfg := &simConfig{
		validators:      32,
		slots:           4,
		level:           publisher.NotRequired,
		failImportEvery: 2,
		workers:         4,
	}
	sim, err := newSimulation(context.Background(), cfg, startVerifier(t))
	require.NoError(t, err)
	require.NoError(t, sim.run(context.Background()))

	assert.Equal(t, 5, sim.broadcast.get(publisher.Broadcast.String()))
	assert.Equal(t, 0, sim.broadcast.get(publisher.Suppressed.String()))
	assert.Equal(t, 3, sim.blocks.get(publisher.Success.String()))
	assert.Equal(t, 2, sim.blocks.get(publisher.NotImported.String()))
}

func TestLocalChain_UnknownParent(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideBeaconConfig(params.MinimalSpecConfig())

	sim, err := newSimulation(context.Background(), &simConfig{validators: 16, slots: 1, workers: 1, level: publisher.Gossip}, startVerifier(t))
	require.NoError(t, err)
	sim.parent = [32]byte{0xff}
	blk, err := sim.buildBlock(1, 0)
	require.NoError(t, err)

	res, status, err := sim.publish(context.Background(), blk)
	require.NoError(t, err)
	assert.Equal(t, string(publisher.UnknownParent), res.RejectionReason)
	assert.Equal(t, publisher.Suppressed, status)
}

func TestConfigureChain_GenesisFork(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	for _, f := range []cli.Flag{flags.MinimalConfigFlag, flags.ChainConfigFileFlag, flags.GenesisForkFlag} {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Set(flags.MinimalConfigFlag.Name, "true"))
	require.NoError(t, set.Set(flags.GenesisForkFlag.Name, "Capella"))
	require.NoError(t, configureChain(cli.NewContext(&app, set, nil)))

	cfg := params.BeaconConfig()
	assert.Equal(t, "minimal", cfg.ConfigName)
	assert.Equal(t, phase0.Epoch(0), cfg.AltairForkEpoch)
	assert.Equal(t, phase0.Epoch(0), cfg.BellatrixForkEpoch)
	assert.Equal(t, phase0.Epoch(0), cfg.CapellaForkEpoch)
	assert.Equal(t, cfg.FarFutureEpoch, cfg.DenebForkEpoch)

	l := forks.NewSchedule(cfg).AtSlot(0)
	assert.Equal(t, version.Capella, l.Fork())
	_, ok := l.BlindedBlockUtil()
	assert.True(t, ok)

	require.NoError(t, set.Set(flags.GenesisForkFlag.Name, "phase0"))
	require.NoError(t, configureChain(cli.NewContext(&app, set, nil)))
	l = forks.NewSchedule(params.BeaconConfig()).AtSlot(0)
	assert.Equal(t, version.Phase0, l.Fork())
	_, ok = l.SyncCommitteeUtil()
	assert.False(t, ok)
}

func TestConfigureChain_UnknownGenesisFork(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	require.NoError(t, flags.GenesisForkFlag.Apply(set))
	// Bypasses the flag's own value check.
	require.NoError(t, set.Set(flags.GenesisForkFlag.Name, "electra"))
	err := configureChain(cli.NewContext(&app, set, nil))
	assert.ErrorIs(t, err, version.ErrUnknownFork)
}

func TestSimConfigFromCli(t *testing.T) {
	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	for _, f := range []cli.Flag{flags.BroadcastValidationFlag, flags.ValidatorCountFlag, flags.SlotsFlag} {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Set(flags.BroadcastValidationFlag.Name, "CONSENSUS"))
	require.NoError(t, set.Set(flags.SlotsFlag.Name, "3"))
	cfg, err := simConfigFromCli(cli.NewContext(&app, set, nil))
	require.NoError(t, err)
	assert.Equal(t, publisher.Consensus, cfg.level)
	assert.Equal(t, uint64(3), cfg.slots)
	assert.Equal(t, uint64(256), cfg.validators)

	require.NoError(t, set.Set(flags.ValidatorCountFlag.Name, "0"))
	_, err = simConfigFromCli(cli.NewContext(&app, set, nil))
	assert.ErrorContains(t, err, "at least one validator")

	require.NoError(t, set.Set(flags.BroadcastValidationFlag.Name, "paranoid"))
	_, err = simConfigFromCli(cli.NewContext(&app, set, nil))
	assert.ErrorIs(t, err, publisher.ErrUnknownLevel)
}
