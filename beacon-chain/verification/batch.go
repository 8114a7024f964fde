package verification

import (
	"context"
	"sync"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/crypto/bls"
)

// Batch collects the signature checks of a single validation. A Batch must
// not be shared between validations, so a failed batch is attributable to
// exactly one message.
type Batch struct {
	verifier SignatureVerifier

	mu  sync.Mutex
	set *bls.SignatureSet
}

// NewBatch returns an empty batch that resolves through verifier.
func NewBatch(verifier SignatureVerifier) *Batch {
	return &Batch{verifier: verifier, set: bls.NewSet()}
}

// Verify queues a check of sig over msg by pubkey. It returns false only
// when an input is malformed; actual validity is known after BatchVerify.
func (b *Batch) Verify(pubkey phase0.BLSPubKey, msg [32]byte, sig phase0.BLSSignature, description string) bool {
	return b.VerifyAggregate([]phase0.BLSPubKey{pubkey}, msg, sig, description)
}

// VerifyAggregate queues a check of sig over msg against the aggregate of pubkeys.
func (b *Batch) VerifyAggregate(pubkeys []phase0.BLSPubKey, msg [32]byte, sig phase0.BLSSignature, description string) bool {
	if len(pubkeys) == 0 || !bls.HasCompressionFlag(sig[:]) {
		return false
	}
	for i := range pubkeys {
		if !bls.HasCompressionFlag(pubkeys[i][:]) {
			return false
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.set.Add(pubkeys, msg, sig, description)
	return true
}

// Len is the number of queued checks.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.set.Len()
}

// BatchVerify submits every queued check as one set. An empty batch is
// trivially valid.
func (b *Batch) BatchVerify(ctx context.Context) *async.Future[bool] {
	b.mu.Lock()
	set := b.set.Copy()
	b.mu.Unlock()
	if set.Len() == 0 {
		return async.Completed(true)
	}
	return async.OrFailed(b.verifier.VerifyBatch(ctx, set))
}
