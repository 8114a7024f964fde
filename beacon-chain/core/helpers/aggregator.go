package helpers

import (
	"encoding/binary"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/crypto/hash"
)

// IsAggregator returns true if the signature is from the input validator. The committee
// count is provided as an argument rather than imported implementation from spec. Having
// committee count as an argument allows cheaper computation at run time.
//
// Spec pseudocode definition:
//
//	def is_aggregator(state: BeaconState, slot: Slot, index: CommitteeIndex, slot_signature: BLSSignature) -> bool:
//	  committee = get_beacon_committee(state, slot, index)
//	  modulo = max(1, len(committee) // TARGET_AGGREGATORS_PER_COMMITTEE)
//	  return bytes_to_uint64(hash(slot_signature)[0:8]) % modulo == 0
func IsAggregator(modulo uint64, slotSig phase0.BLSSignature) bool {
	if modulo == 0 {
		modulo = 1
	}
	b := hash.Hash(slotSig[:])
	return binary.LittleEndian.Uint64(b[:8])%modulo == 0
}
