// Package flags contains all configuration runtime flags of the admission
// simulator. Every flag may also be set from the YAML file given by
// --config-file.
package flags

import (
	"time"

	"github.com/eth2353/admission/beacon-chain/publisher"
	"github.com/eth2353/admission/runtime/logging"
	"github.com/eth2353/admission/runtime/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

func levelNames() []string {
	names := make([]string, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		names = append(names, l.String())
	}
	return names
}

func forkNames() []string {
	names := make([]string, 0, len(version.All()))
	for _, f := range version.All() {
		names = append(names, f.String())
	}
	return names
}

var (
	// ConfigFileFlag specifies the filepath to load flag values.
	ConfigFileFlag = &cli.StringFlag{
		Name:  "config-file",
		Usage: "The filepath to a yaml file with flag values",
	}
	// ChainConfigFileFlag specifies the filepath of a chain config yaml.
	ChainConfigFileFlag = altsrc.NewStringFlag(&cli.StringFlag{
		Name:  "chain-config-file",
		Usage: "The path to a YAML file with chain config values",
	})
	// MinimalConfigFlag selects the minimal preset instead of mainnet.
	MinimalConfigFlag = altsrc.NewBoolFlag(&cli.BoolFlag{
		Name:  "minimal-config",
		Usage: "Use the minimal preset chain config.",
	})
	// GenesisFork is the fork active from genesis, overriding the chain config's fork epochs.
	GenesisFork = &EnumValue{
		Name:  "genesis-fork",
		Usage: "Activate this fork and every earlier one at genesis, leaving later forks unscheduled",
		Enum:  forkNames(),
	}
	// GenesisForkFlag selects the fork active from genesis.
	GenesisForkFlag = altsrc.NewStringFlag(GenesisFork.StringFlag())
	// Verbosity is the logging level.
	Verbosity = &EnumValue{
		Name:  "verbosity",
		Usage: "Logging verbosity",
		Enum:  levelNames(),
		Value: "info",
	}
	// VerbosityFlag defines the logrus configuration.
	VerbosityFlag = altsrc.NewStringFlag(Verbosity.StringFlag())
	// LogFormat is the format of log output.
	LogFormat = &EnumValue{
		Name:  "log-format",
		Usage: "Specify log formatting",
		Enum:  logging.Formats,
		Value: "text",
	}
	// LogFormatFlag specifies the log output format.
	LogFormatFlag = altsrc.NewStringFlag(LogFormat.StringFlag())
	// LogFileNameFlag specifies the log output file name.
	LogFileNameFlag = altsrc.NewStringFlag(&cli.StringFlag{
		Name:  "log-file",
		Usage: "Specify log file name, relative or absolute",
	})
	// DisableMonitoringFlag defines a flag to disable the metrics collection.
	DisableMonitoringFlag = altsrc.NewBoolFlag(&cli.BoolFlag{
		Name:  "disable-monitoring",
		Usage: "Disable monitoring service.",
	})
	// MonitoringHostFlag defines the host used to serve prometheus metrics.
	MonitoringHostFlag = altsrc.NewStringFlag(&cli.StringFlag{
		Name:  "monitoring-host",
		Usage: "Host used for listening and responding metrics for prometheus.",
		Value: "127.0.0.1",
	})
	// MonitoringPortFlag defines the http port used to serve prometheus metrics.
	MonitoringPortFlag = altsrc.NewIntFlag(&cli.IntFlag{
		Name:  "monitoring-port",
		Usage: "Port used to listening and respond metrics for prometheus.",
		Value: 8080,
	})
	// ValidatorCountFlag is the number of interop validators in the simulated state.
	ValidatorCountFlag = altsrc.NewUint64Flag(&cli.Uint64Flag{
		Name:  "validators",
		Usage: "Number of deterministic interop validators",
		Value: 256,
	})
	// SlotsFlag is the number of slots to simulate.
	SlotsFlag = altsrc.NewUint64Flag(&cli.Uint64Flag{
		Name:  "slots",
		Usage: "Number of slots to simulate",
		Value: 8,
	})
	// DuplicatesFlag is how many times every valid aggregate is resent.
	DuplicatesFlag = altsrc.NewIntFlag(&cli.IntFlag{
		Name:  "duplicates",
		Usage: "Number of times each valid aggregate is re-gossiped",
		Value: 2,
	})
	// BroadcastValidation is the broadcast validation level of published blocks.
	BroadcastValidation = &EnumValue{
		Name:  "broadcast-validation",
		Usage: "Validation required before a published block is broadcast",
		Enum:  publisher.LevelNames(),
		Value: publisher.Gossip.String(),
	}
	// BroadcastValidationFlag selects the broadcast validation level.
	BroadcastValidationFlag = altsrc.NewStringFlag(BroadcastValidation.StringFlag())
	// FailImportEveryFlag makes every nth simulated block fail its import.
	FailImportEveryFlag = altsrc.NewUint64Flag(&cli.Uint64Flag{
		Name:  "fail-import-every",
		Usage: "Make every nth block fail import, 0 disables",
		Value: 3,
	})
	// VerifierIntervalFlag is how long signature sets wait to be batched.
	VerifierIntervalFlag = altsrc.NewDurationFlag(&cli.DurationFlag{
		Name:  "verifier-interval",
		Usage: "Time a signature set waits for others to batch with",
		Value: 50 * time.Millisecond,
	})
	// WorkersFlag bounds the continuations running at once.
	WorkersFlag = altsrc.NewIntFlag(&cli.IntFlag{
		Name:  "workers",
		Usage: "Number of concurrent validation continuations",
		Value: 64,
	})
)

// AppFlags are the flags of the simulator.
var AppFlags = []cli.Flag{
	ConfigFileFlag,
	ChainConfigFileFlag,
	MinimalConfigFlag,
	GenesisForkFlag,
	VerbosityFlag,
	LogFormatFlag,
	LogFileNameFlag,
	DisableMonitoringFlag,
	MonitoringHostFlag,
	MonitoringPortFlag,
	ValidatorCountFlag,
	SlotsFlag,
	DuplicatesFlag,
	BroadcastValidationFlag,
	FailImportEveryFlag,
	VerifierIntervalFlag,
	WorkersFlag,
}

// LoadFlagsFromConfig sets flags from the yaml file named by --config-file.
func LoadFlagsFromConfig(cliCtx *cli.Context, flags []cli.Flag) error {
	if cliCtx.IsSet(ConfigFileFlag.Name) {
		if err := altsrc.InitInputSourceWithContext(flags, altsrc.NewYamlSourceFromFlagFunc(ConfigFileFlag.Name))(cliCtx); err != nil {
			return err
		}
	}
	return nil
}
