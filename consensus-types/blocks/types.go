// Package blocks holds the signed beacon block envelope handled by block
// publication. Only the header, signature and execution payload matter to
// publication; the body is committed to through the header body root.
package blocks

import (
	"fmt"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/runtime/version"
)

// SignedBlock is a signed beacon block, either full or blinded. A blinded
// block carries only the root of its execution payload.
type SignedBlock struct {
	version           version.Fork
	blinded           bool
	header            *phase0.BeaconBlockHeader
	signature         phase0.BLSSignature
	payloadHeaderRoot phase0.Root
	payload           []byte
}

func errNotSupported(funcName string, ver version.Fork) error {
	return fmt.Errorf("%s is not supported for %s", funcName, ver)
}

// Version of the fork the block belongs to.
func (b *SignedBlock) Version() version.Fork {
	return b.version
}

// IsBlinded reports whether the execution payload was omitted.
func (b *SignedBlock) IsBlinded() bool {
	return b.blinded
}

// Slot of the block.
func (b *SignedBlock) Slot() phase0.Slot {
	return b.header.Slot
}

// ProposerIndex of the block.
func (b *SignedBlock) ProposerIndex() phase0.ValidatorIndex {
	return b.header.ProposerIndex
}

// ParentRoot of the block.
func (b *SignedBlock) ParentRoot() phase0.Root {
	return b.header.ParentRoot
}

// Signature of the proposer over the block root.
func (b *SignedBlock) Signature() phase0.BLSSignature {
	return b.signature
}

// Header returns a copy of the block header.
func (b *SignedBlock) Header() *phase0.BeaconBlockHeader {
	h := *b.header
	return &h
}

// Root is the hash tree root of the block. Blinding does not change it.
func (b *SignedBlock) Root() ([32]byte, error) {
	return b.header.HashTreeRoot()
}

// PayloadHeaderRoot is the commitment to the execution payload.
func (b *SignedBlock) PayloadHeaderRoot() (phase0.Root, error) {
	if b.version < version.Bellatrix {
		return phase0.Root{}, errNotSupported("PayloadHeaderRoot", b.version)
	}
	return b.payloadHeaderRoot, nil
}

// Payload returns the execution payload of a full block.
func (b *SignedBlock) Payload() ([]byte, error) {
	if b.version < version.Bellatrix {
		return nil, errNotSupported("Payload", b.version)
	}
	if b.blinded {
		return nil, errBlindedPayload
	}
	return b.payload, nil
}

// Copy returns a deep copy of the block.
func (b *SignedBlock) Copy() *SignedBlock {
	cp := *b
	cp.header = b.Header()
	if b.payload != nil {
		cp.payload = append([]byte(nil), b.payload...)
	}
	return &cp
}
