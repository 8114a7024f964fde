package blocks

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/crypto/hash"
	"github.com/eth2353/admission/runtime/version"
	"github.com/pkg/errors"
)

var (
	// ErrNilBeaconBlock is returned when a nil beacon block is received.
	ErrNilBeaconBlock = errors.New("beacon block can't be nil")
	// ErrPayloadMismatch is returned when a payload does not match the committed payload header root.
	ErrPayloadMismatch             = errors.New("execution payload does not match payload header root")
	errNonBlindedSignedBeaconBlock = errors.New("can only build signed beacon block from blinded format")
	errBlindedPayload              = errors.New("blinded block has no execution payload")
)

// NewSignedBlock creates a full signed block. Blocks from Bellatrix on commit
// to the payload by its hash.
func NewSignedBlock(v version.Fork, header *phase0.BeaconBlockHeader, sig phase0.BLSSignature, payload []byte) (*SignedBlock, error) {
	if header == nil {
		return nil, ErrNilBeaconBlock
	}
	b := &SignedBlock{version: v, header: header, signature: sig}
	if v >= version.Bellatrix {
		b.payload = payload
		b.payloadHeaderRoot = hash.Hash(payload)
	}
	return b, nil
}

// NewBlindedSignedBlock creates a blinded signed block committing to payloadHeaderRoot.
func NewBlindedSignedBlock(v version.Fork, header *phase0.BeaconBlockHeader, sig phase0.BLSSignature, payloadHeaderRoot phase0.Root) (*SignedBlock, error) {
	if header == nil {
		return nil, ErrNilBeaconBlock
	}
	if v < version.Bellatrix {
		return nil, errNotSupported("NewBlindedSignedBlock", v)
	}
	return &SignedBlock{
		version:           v,
		blinded:           true,
		header:            header,
		signature:         sig,
		payloadHeaderRoot: payloadHeaderRoot,
	}, nil
}

// BuildSignedBlockFromBlinded fills in the execution payload of a blinded block.
func BuildSignedBlockFromBlinded(blk *SignedBlock, payload []byte) (*SignedBlock, error) {
	if blk == nil || blk.header == nil {
		return nil, ErrNilBeaconBlock
	}
	if !blk.blinded {
		return nil, errNonBlindedSignedBeaconBlock
	}
	if phase0.Root(hash.Hash(payload)) != blk.payloadHeaderRoot {
		return nil, ErrPayloadMismatch
	}
	full := blk.Copy()
	full.blinded = false
	full.payload = append([]byte(nil), payload...)
	return full, nil
}
