package params

import (
	"math"
)

// MinimalSpecConfig retrieves the minimal config used in spec tests.
func MinimalSpecConfig() *BeaconChainConfig {
	minimalConfig := mainnetBeaconConfig.Copy()
	minimalConfig.PresetBase = "minimal"
	minimalConfig.ConfigName = "minimal"

	minimalConfig.SecondsPerSlot = 6
	minimalConfig.SlotsPerEpoch = 8
	minimalConfig.MaxCommitteesPerSlot = 4
	minimalConfig.TargetCommitteeSize = 4
	minimalConfig.SyncCommitteeSize = 32

	minimalConfig.GenesisForkVersion = [4]byte{0x00, 0x00, 0x00, 0x01}
	minimalConfig.AltairForkVersion = [4]byte{0x01, 0x00, 0x00, 0x01}
	minimalConfig.AltairForkEpoch = math.MaxUint64
	minimalConfig.BellatrixForkVersion = [4]byte{0x02, 0x00, 0x00, 0x01}
	minimalConfig.BellatrixForkEpoch = math.MaxUint64
	minimalConfig.CapellaForkVersion = [4]byte{0x03, 0x00, 0x00, 0x01}
	minimalConfig.CapellaForkEpoch = math.MaxUint64
	minimalConfig.DenebForkVersion = [4]byte{0x04, 0x00, 0x00, 0x01}
	minimalConfig.DenebForkEpoch = math.MaxUint64

	return minimalConfig
}
