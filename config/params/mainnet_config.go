package params

import (
	"math"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
)

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *BeaconChainConfig {
	return mainnetBeaconConfig.Copy()
}

var mainnetBeaconConfig = &BeaconChainConfig{
	PresetBase: "mainnet",
	ConfigName: "mainnet",

	SecondsPerSlot:                  12,
	SlotsPerEpoch:                   32,
	AttestationPropagationSlotRange: 32,
	MaximumGossipClockDisparity:     500 * time.Millisecond,

	MaxCommitteesPerSlot:          64,
	TargetCommitteeSize:           128,
	MaxValidatorsPerCommittee:     2048,
	TargetAggregatorsPerCommittee: 16,

	SyncCommitteeSize:                    512,
	SyncCommitteeSubnetCount:             4,
	TargetAggregatorsPerSyncSubcommittee: 16,

	DomainBeaconProposer:              phase0.DomainType{0x00, 0x00, 0x00, 0x00},
	DomainBeaconAttester:              phase0.DomainType{0x01, 0x00, 0x00, 0x00},
	DomainSelectionProof:              phase0.DomainType{0x05, 0x00, 0x00, 0x00},
	DomainAggregateAndProof:           phase0.DomainType{0x06, 0x00, 0x00, 0x00},
	DomainSyncCommitteeSelectionProof: phase0.DomainType{0x08, 0x00, 0x00, 0x00},

	GenesisForkVersion:   phase0.Version{0x00, 0x00, 0x00, 0x00},
	AltairForkVersion:    phase0.Version{0x01, 0x00, 0x00, 0x00},
	AltairForkEpoch:      74240,
	BellatrixForkVersion: phase0.Version{0x02, 0x00, 0x00, 0x00},
	BellatrixForkEpoch:   144896,
	CapellaForkVersion:   phase0.Version{0x03, 0x00, 0x00, 0x00},
	CapellaForkEpoch:     194048,
	DenebForkVersion:     phase0.Version{0x04, 0x00, 0x00, 0x00},
	DenebForkEpoch:       269568,
	FarFutureEpoch:       math.MaxUint64,

	AggregateSetSizeMultiplier: 16,
	SeenCacheEpochWindow:       2,
}
