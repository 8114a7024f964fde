package helpers

import (
	"encoding/binary"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/time/slots"
	"github.com/pkg/errors"
)

// ErrNilFork is returned when a domain is requested without a fork.
var ErrNilFork = errors.New("nil fork")

// SSZRoot is any object with an SSZ hash tree root.
type SSZRoot interface {
	HashTreeRoot() ([32]byte, error)
}

// ComputeForkDataRoot returns the 32-byte fork data root for the current_version and genesis_validators_root.
// This is used primarily in signature domains to avoid collisions across forks/chains.
//
// Spec pseudocode definition:
//
//	def compute_fork_data_root(current_version: Version, genesis_validators_root: Root) -> Root:
//	  return hash_tree_root(ForkData(
//	      current_version=current_version,
//	      genesis_validators_root=genesis_validators_root,
//	  ))
func ComputeForkDataRoot(version phase0.Version, genesisValidatorsRoot phase0.Root) ([32]byte, error) {
	return (&phase0.ForkData{
		CurrentVersion:        version,
		GenesisValidatorsRoot: genesisValidatorsRoot,
	}).HashTreeRoot()
}

// ComputeDomain returns the domain version for BLS private key to sign and verify.
//
// Spec pseudocode definition:
//
//	def compute_domain(domain_type: DomainType, fork_version: Version=None, genesis_validators_root: Root=None) -> Domain:
//	  fork_data_root = compute_fork_data_root(fork_version, genesis_validators_root)
//	  return Domain(domain_type + fork_data_root[:28])
func ComputeDomain(domainType phase0.DomainType, forkVersion phase0.Version, genesisValidatorsRoot phase0.Root) (phase0.Domain, error) {
	var domain phase0.Domain
	forkDataRoot, err := ComputeForkDataRoot(forkVersion, genesisValidatorsRoot)
	if err != nil {
		return domain, err
	}
	copy(domain[:4], domainType[:])
	copy(domain[4:], forkDataRoot[:28])
	return domain, nil
}

// Domain returns the domain version for BLS private key to sign and verify with a fork data.
//
// Spec pseudocode definition:
//
//	def get_domain(state: BeaconState, domain_type: DomainType, epoch: Epoch=None) -> Domain:
//	  epoch = get_current_epoch(state) if epoch is None else epoch
//	  fork_version = state.fork.previous_version if epoch < state.fork.epoch else state.fork.current_version
//	  return compute_domain(domain_type, fork_version, state.genesis_validators_root)
func Domain(fork *phase0.Fork, epoch phase0.Epoch, domainType phase0.DomainType, genesisValidatorsRoot phase0.Root) (phase0.Domain, error) {
	if fork == nil {
		return phase0.Domain{}, ErrNilFork
	}
	forkVersion := fork.CurrentVersion
	if epoch < fork.Epoch {
		forkVersion = fork.PreviousVersion
	}
	return ComputeDomain(domainType, forkVersion, genesisValidatorsRoot)
}

// ComputeSigningRoot computes the root of the object by calculating the hash tree root of the signing data with the given domain.
//
// Spec pseudocode definition:
//
//	def compute_signing_root(ssz_object: SSZObject, domain: Domain) -> Root:
//	  return hash_tree_root(SigningData(
//	      object_root=hash_tree_root(ssz_object),
//	      domain=domain,
//	  ))
func ComputeSigningRoot(object SSZRoot, domain phase0.Domain) ([32]byte, error) {
	if object == nil {
		return [32]byte{}, errors.New("cannot compute signing root of nil")
	}
	objRoot, err := object.HashTreeRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute object root")
	}
	return signingDataRoot(objRoot, domain)
}

// SlotSigningRoot is the signing root of a bare slot, as signed by a selection proof.
func SlotSigningRoot(slot phase0.Slot, domain phase0.Domain) ([32]byte, error) {
	// The SSZ root of a uint64 is its little-endian encoding padded to 32 bytes.
	var objRoot [32]byte
	binary.LittleEndian.PutUint64(objRoot[:8], uint64(slot))
	return signingDataRoot(objRoot, domain)
}

func signingDataRoot(objRoot [32]byte, domain phase0.Domain) ([32]byte, error) {
	return (&phase0.SigningData{
		ObjectRoot: objRoot,
		Domain:     domain,
	}).HashTreeRoot()
}

// EpochDomain is Domain evaluated at the epoch of slot.
func EpochDomain(fork *phase0.Fork, slot phase0.Slot, domainType phase0.DomainType, genesisValidatorsRoot phase0.Root) (phase0.Domain, error) {
	return Domain(fork, slots.ToEpoch(slot), domainType, genesisValidatorsRoot)
}
