package params

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// LoadChainConfigFile load, convert hex values into valid param yaml format,
// unmarshal, and apply beacon chain config file.
func LoadChainConfigFile(chainConfigFileName string) error {
	yamlFile, err := os.ReadFile(chainConfigFileName) // #nosec G304
	if err != nil {
		return errors.Wrap(err, "failed to read chain config file")
	}
	conf, err := UnmarshalConfig(yamlFile)
	if err != nil {
		return err
	}
	log.Debugf("Config file values: %+v", conf)
	OverrideBeaconConfig(conf)
	return nil
}

// UnmarshalConfig parses a chain config yaml document on top of the preset it
// names, defaulting to mainnet.
func UnmarshalConfig(yamlFile []byte) (*BeaconChainConfig, error) {
	conf := MainnetConfig()
	hasConfigName := false
	lines := strings.Split(string(yamlFile), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "CONFIG_NAME") {
			hasConfigName = true
		}
		if strings.HasPrefix(line, "PRESET_BASE: 'minimal'") ||
			strings.HasPrefix(line, `PRESET_BASE: "minimal"`) ||
			strings.HasPrefix(line, "PRESET_BASE: minimal") {
			conf = MinimalSpecConfig()
		}
		if !strings.HasPrefix(line, "#") && strings.Contains(line, "0x") {
			parts, err := ReplaceHexStringWithYAMLFormat(line)
			if err != nil {
				return nil, err
			}
			lines[i] = strings.Join(parts, "\n")
		}
	}
	yamlFile = []byte(strings.Join(lines, "\n"))
	if err := yaml.Unmarshal(yamlFile, conf); err != nil {
		if _, ok := err.(*yaml.TypeError); !ok {
			return nil, errors.Wrap(err, "failed to parse chain config yaml file")
		}
		log.WithError(err).Error("There were some issues parsing the config from a yaml file")
	}
	if !hasConfigName {
		conf.ConfigName = "devnet"
	}
	return conf, nil
}

// ReplaceHexStringWithYAMLFormat will replace hex strings that the yaml parser will understand.
// Only fixed 4 and 32 byte values appear in the chain config fields the pipeline reads.
func ReplaceHexStringWithYAMLFormat(line string) ([]string, error) {
	parts := strings.Split(line, "0x")
	decoded, err := hex.DecodeString(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode hex string in %q", line)
	}
	var fixedByte []byte
	switch l := len(decoded); {
	case l <= 4:
		var arr [4]byte
		copy(arr[:], decoded)
		fixedByte, err = yaml.Marshal(arr)
	case l <= 32:
		var arr [32]byte
		copy(arr[:], decoded)
		fixedByte, err = yaml.Marshal(arr)
	default:
		return nil, fmt.Errorf("hex value of %d bytes is not supported", l)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config value")
	}
	parts[1] = string(fixedByte)
	return parts, nil
}

// ConfigToYaml takes a provided config and outputs its contents in yaml.
func ConfigToYaml(cfg *BeaconChainConfig) []byte {
	lines := []string{
		fmt.Sprintf("PRESET_BASE: '%s'", cfg.PresetBase),
		fmt.Sprintf("CONFIG_NAME: '%s'", cfg.ConfigName),
		fmt.Sprintf("SECONDS_PER_SLOT: %d", cfg.SecondsPerSlot),
		fmt.Sprintf("SLOTS_PER_EPOCH: %d", cfg.SlotsPerEpoch),
		fmt.Sprintf("ATTESTATION_PROPAGATION_SLOT_RANGE: %d", cfg.AttestationPropagationSlotRange),
		fmt.Sprintf("MAX_COMMITTEES_PER_SLOT: %d", cfg.MaxCommitteesPerSlot),
		fmt.Sprintf("TARGET_COMMITTEE_SIZE: %d", cfg.TargetCommitteeSize),
		fmt.Sprintf("MAX_VALIDATORS_PER_COMMITTEE: %d", cfg.MaxValidatorsPerCommittee),
		fmt.Sprintf("TARGET_AGGREGATORS_PER_COMMITTEE: %d", cfg.TargetAggregatorsPerCommittee),
		fmt.Sprintf("SYNC_COMMITTEE_SIZE: %d", cfg.SyncCommitteeSize),
		fmt.Sprintf("SYNC_COMMITTEE_SUBNET_COUNT: %d", cfg.SyncCommitteeSubnetCount),
		fmt.Sprintf("TARGET_AGGREGATORS_PER_SYNC_SUBCOMMITTEE: %d", cfg.TargetAggregatorsPerSyncSubcommittee),
		fmt.Sprintf("GENESIS_FORK_VERSION: %#x", cfg.GenesisForkVersion[:]),
		fmt.Sprintf("ALTAIR_FORK_VERSION: %#x", cfg.AltairForkVersion[:]),
		fmt.Sprintf("ALTAIR_FORK_EPOCH: %d", cfg.AltairForkEpoch),
		fmt.Sprintf("BELLATRIX_FORK_VERSION: %#x", cfg.BellatrixForkVersion[:]),
		fmt.Sprintf("BELLATRIX_FORK_EPOCH: %d", cfg.BellatrixForkEpoch),
		fmt.Sprintf("CAPELLA_FORK_VERSION: %#x", cfg.CapellaForkVersion[:]),
		fmt.Sprintf("CAPELLA_FORK_EPOCH: %d", cfg.CapellaForkEpoch),
		fmt.Sprintf("DENEB_FORK_VERSION: %#x", cfg.DenebForkVersion[:]),
		fmt.Sprintf("DENEB_FORK_EPOCH: %d", cfg.DenebForkEpoch),
	}
	return []byte(strings.Join(lines, "\n"))
}
