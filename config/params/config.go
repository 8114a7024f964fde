// Package params defines the chain constants the admission pipeline relies on.
package params

import (
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
)

// BeaconChainConfig contains constant configs for node to participate in beacon chain.
type BeaconChainConfig struct {
	PresetBase string `yaml:"PRESET_BASE" spec:"true"`
	ConfigName string `yaml:"CONFIG_NAME" spec:"true"`

	// Time parameters.
	SecondsPerSlot                  uint64        `yaml:"SECONDS_PER_SLOT" spec:"true"`
	SlotsPerEpoch                   phase0.Slot   `yaml:"SLOTS_PER_EPOCH" spec:"true"`
	AttestationPropagationSlotRange phase0.Slot   `yaml:"ATTESTATION_PROPAGATION_SLOT_RANGE" spec:"true"`
	MaximumGossipClockDisparity     time.Duration // MaximumGossipClockDisparity is the tolerated clock skew for gossip messages.

	// Committee parameters.
	MaxCommitteesPerSlot          uint64 `yaml:"MAX_COMMITTEES_PER_SLOT" spec:"true"`
	TargetCommitteeSize           uint64 `yaml:"TARGET_COMMITTEE_SIZE" spec:"true"`
	MaxValidatorsPerCommittee     uint64 `yaml:"MAX_VALIDATORS_PER_COMMITTEE" spec:"true"`
	TargetAggregatorsPerCommittee uint64 `yaml:"TARGET_AGGREGATORS_PER_COMMITTEE" spec:"true"`

	// Sync committee parameters.
	SyncCommitteeSize                    uint64 `yaml:"SYNC_COMMITTEE_SIZE" spec:"true"`
	SyncCommitteeSubnetCount             uint64 `yaml:"SYNC_COMMITTEE_SUBNET_COUNT" spec:"true"`
	TargetAggregatorsPerSyncSubcommittee uint64 `yaml:"TARGET_AGGREGATORS_PER_SYNC_SUBCOMMITTEE" spec:"true"`

	// Signature domains.
	DomainBeaconProposer              phase0.DomainType `yaml:"DOMAIN_BEACON_PROPOSER" spec:"true"`
	DomainBeaconAttester              phase0.DomainType `yaml:"DOMAIN_BEACON_ATTESTER" spec:"true"`
	DomainSelectionProof              phase0.DomainType `yaml:"DOMAIN_SELECTION_PROOF" spec:"true"`
	DomainAggregateAndProof           phase0.DomainType `yaml:"DOMAIN_AGGREGATE_AND_PROOF" spec:"true"`
	DomainSyncCommitteeSelectionProof phase0.DomainType `yaml:"DOMAIN_SYNC_COMMITTEE_SELECTION_PROOF" spec:"true"`

	// Fork schedule.
	GenesisForkVersion   phase0.Version `yaml:"GENESIS_FORK_VERSION" spec:"true"`
	AltairForkVersion    phase0.Version `yaml:"ALTAIR_FORK_VERSION" spec:"true"`
	AltairForkEpoch      phase0.Epoch   `yaml:"ALTAIR_FORK_EPOCH" spec:"true"`
	BellatrixForkVersion phase0.Version `yaml:"BELLATRIX_FORK_VERSION" spec:"true"`
	BellatrixForkEpoch   phase0.Epoch   `yaml:"BELLATRIX_FORK_EPOCH" spec:"true"`
	CapellaForkVersion   phase0.Version `yaml:"CAPELLA_FORK_VERSION" spec:"true"`
	CapellaForkEpoch     phase0.Epoch   `yaml:"CAPELLA_FORK_EPOCH" spec:"true"`
	DenebForkVersion     phase0.Version `yaml:"DENEB_FORK_VERSION" spec:"true"`
	DenebForkEpoch       phase0.Epoch   `yaml:"DENEB_FORK_EPOCH" spec:"true"`
	FarFutureEpoch       phase0.Epoch

	// Gossip seen-cache multipliers.
	AggregateSetSizeMultiplier uint64 // AggregateSetSizeMultiplier scales the aggregator dedup capacity per committee.
	SeenCacheEpochWindow       uint64 // SeenCacheEpochWindow is the number of epochs the seen caches are sized for.
}

// ValidAggregateSetSize is the capacity of the (aggregator index, epoch) dedup index.
func (b *BeaconChainConfig) ValidAggregateSetSize() int {
	return int(b.AggregateSetSizeMultiplier * b.MaxCommitteesPerSlot * uint64(b.SlotsPerEpoch) * b.SeenCacheEpochWindow)
}

// ValidAttestationDataSetSize is the number of distinct attestation data roots the
// seen aggregation bits cache tracks.
func (b *BeaconChainConfig) ValidAttestationDataSetSize() int {
	return int(b.MaxCommitteesPerSlot * uint64(b.SlotsPerEpoch) * b.SeenCacheEpochWindow)
}

// SlotDuration is SecondsPerSlot as a duration.
func (b *BeaconChainConfig) SlotDuration() time.Duration {
	return time.Duration(b.SecondsPerSlot) * time.Second
}

// Copy returns a copy of the config object.
func (b *BeaconChainConfig) Copy() *BeaconChainConfig {
	config := *b
	return &config
}
