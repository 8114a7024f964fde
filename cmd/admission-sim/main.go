// Package main runs the admission simulator: deterministic interop validators
// gossip signed aggregates and publish blocks through the aggregate validator
// and the block publisher, and the outcomes are summarized at the end.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/beacon-chain/publisher"
	"github.com/eth2353/admission/beacon-chain/verification"
	"github.com/eth2353/admission/cmd/flags"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/monitoring/prometheus"
	"github.com/eth2353/admission/runtime"
	"github.com/eth2353/admission/runtime/logging"
	"github.com/eth2353/admission/runtime/version"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "main")

func main() {
	app := cli.App{
		Name:   "admission-sim",
		Usage:  "drives gossip aggregates and block publication through the admission pipelines",
		Flags:  flags.AppFlags,
		Before: before,
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func before(cliCtx *cli.Context) error {
	if err := flags.LoadFlagsFromConfig(cliCtx, cliCtx.App.Flags); err != nil {
		return err
	}
	format := cliCtx.String(flags.LogFormatFlag.Name)
	if err := logging.Configure(cliCtx.String(flags.VerbosityFlag.Name), format); err != nil {
		return err
	}
	if logFile := cliCtx.String(flags.LogFileNameFlag.Name); logFile != "" {
		if err := logging.ConfigurePersistentLogging(logFile, format); err != nil {
			log.WithError(err).Error("Failed to configuring logging to disk.")
		}
	}
	if !cliCtx.Bool(flags.DisableMonitoringFlag.Name) {
		logrus.AddHook(prometheus.NewLogrusCollector())
	}
	return configureChain(cliCtx)
}

func configureChain(cliCtx *cli.Context) error {
	if cliCtx.Bool(flags.MinimalConfigFlag.Name) {
		log.Warn("Using minimal config")
		params.OverrideBeaconConfig(params.MinimalSpecConfig())
	}
	if file := cliCtx.String(flags.ChainConfigFileFlag.Name); file != "" {
		if err := params.LoadChainConfigFile(file); err != nil {
			return errors.Wrap(err, "could not load chain config file")
		}
	}
	if name := cliCtx.String(flags.GenesisForkFlag.Name); name != "" {
		f, err := version.FromString(strings.ToLower(name))
		if err != nil {
			return errors.Wrapf(err, "--%s", flags.GenesisForkFlag.Name)
		}
		cfg := params.BeaconConfig().Copy()
		activateAtGenesis(cfg, f)
		params.OverrideBeaconConfig(cfg)
		log.WithField("fork", f).Info("Overriding fork schedule")
	}
	return nil
}

// activateAtGenesis schedules f and every earlier fork at epoch 0 and every
// later fork at the far future epoch.
func activateAtGenesis(cfg *params.BeaconChainConfig, f version.Fork) {
	epochs := map[version.Fork]*phase0.Epoch{
		version.Altair:    &cfg.AltairForkEpoch,
		version.Bellatrix: &cfg.BellatrixForkEpoch,
		version.Capella:   &cfg.CapellaForkEpoch,
		version.Deneb:     &cfg.DenebForkEpoch,
	}
	for fork, epoch := range epochs {
		if fork <= f {
			*epoch = 0
		} else {
			*epoch = cfg.FarFutureEpoch
		}
	}
}

func simConfigFromCli(cliCtx *cli.Context) (*simConfig, error) {
	level, err := publisher.ParseBroadcastValidationLevel(cliCtx.String(flags.BroadcastValidationFlag.Name))
	if err != nil {
		return nil, err
	}
	cfg := &simConfig{
		validators:      cliCtx.Uint64(flags.ValidatorCountFlag.Name),
		slots:           cliCtx.Uint64(flags.SlotsFlag.Name),
		duplicates:      cliCtx.Int(flags.DuplicatesFlag.Name),
		level:           level,
		failImportEvery: cliCtx.Uint64(flags.FailImportEveryFlag.Name),
		workers:         cliCtx.Int(flags.WorkersFlag.Name),
	}
	if cfg.validators == 0 {
		return nil, errors.New("at least one validator is required")
	}
	return cfg, nil
}

func run(cliCtx *cli.Context) error {
	cfg, err := simConfigFromCli(cliCtx)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry := runtime.NewServiceRegistry()
	verifier := verification.NewService(ctx, verification.WithInterval(cliCtx.Duration(flags.VerifierIntervalFlag.Name)))
	if err := registry.RegisterService(verifier); err != nil {
		return err
	}
	sim, err := newSimulation(ctx, cfg, verifier)
	if err != nil {
		return errors.Wrap(err, "could not set up simulation")
	}
	if err := registry.RegisterService(sim.sync); err != nil {
		return err
	}
	if !cliCtx.Bool(flags.DisableMonitoringFlag.Name) {
		addr := fmt.Sprintf("%s:%d", cliCtx.String(flags.MonitoringHostFlag.Name), cliCtx.Int(flags.MonitoringPortFlag.Name))
		if err := registry.RegisterService(prometheus.NewService(addr, registry)); err != nil {
			return err
		}
	}

	registry.StartAll()
	defer func() {
		if err := registry.StopAll(); err != nil {
			log.WithError(err).Error("Could not stop services")
		}
	}()

	log.WithFields(logrus.Fields{
		"validators": cfg.validators,
		"slots":      cfg.slots,
		"level":      cfg.level,
	}).Info("Starting simulation")
	if err := sim.run(ctx); err != nil {
		return err
	}
	sim.logSummary()
	return nil
}

// Interface guards.
var (
	_ runtime.Service = (*verification.Service)(nil)
	_ runtime.Service = (*prometheus.Service)(nil)
)
