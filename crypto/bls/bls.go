// Package bls wraps the blst BLS12-381 implementation with the minimal-pubkey-size
// ciphersuite used by the beacon chain.
package bls

import (
	"crypto/rand"
	"fmt"
	"runtime"
	"sync"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
	blst "github.com/supranational/blst/bindings/go"
)

type blstPublicKey = blst.P1Affine
type blstSignature = blst.P2Affine
type blstAggregatePublicKey = blst.P1Aggregate

var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

const (
	scalarBytes     = 32
	randBitsEntropy = 64
	// PublicKeyLength is the size of a compressed G1 point.
	PublicKeyLength = 48
	// SignatureLength is the size of a compressed G2 point.
	SignatureLength = 96
)

var (
	// ErrZeroKey describes an error due to a zero secret key.
	ErrZeroKey = errors.New("generated secret key is zero")
	// ErrInfinitePubKey describes an error due to an infinite public key.
	ErrInfinitePubKey = errors.New("received an infinite public key")
)

// InfinitePublicKey represents an infinite public key (G1 Point at Infinity).
var InfinitePublicKey = [PublicKeyLength]byte{0xC0}

// InfiniteSignature represents an infinite signature (G2 Point at Infinity).
var InfiniteSignature = [SignatureLength]byte{0xC0}

func init() {
	// Reserve 1 core for general application work
	maxProcs := runtime.GOMAXPROCS(0) - 1
	if maxProcs <= 0 {
		maxProcs = 1
	}
	blst.SetMaxProcs(maxProcs)
}

// SecretKey used in the BLS signature scheme.
type SecretKey struct {
	p *blst.SecretKey
}

// RandKey creates a new private key using a random input.
func RandKey() (*SecretKey, error) {
	var ikm [32]byte
	if _, err := rand.Read(ikm[:]); err != nil {
		return nil, err
	}
	return SecretKeyFromSeed(ikm[:])
}

// SecretKeyFromSeed derives a key deterministically from at least 32 bytes of
// input key material.
func SecretKeyFromSeed(ikm []byte) (*SecretKey, error) {
	if len(ikm) < 32 {
		return nil, fmt.Errorf("key material must be at least 32 bytes, got %d", len(ikm))
	}
	sk := blst.KeyGen(ikm)
	if sk == nil {
		return nil, ErrZeroKey
	}
	var zero [32]byte
	if [32]byte(sk.Serialize()) == zero {
		return nil, ErrZeroKey
	}
	return &SecretKey{p: sk}, nil
}

// PublicKey obtains the public key corresponding to the BLS secret key.
func (s *SecretKey) PublicKey() *PublicKey {
	return &PublicKey{p: new(blstPublicKey).From(s.p)}
}

// Sign a message using a secret key.
func (s *SecretKey) Sign(msg []byte) *Signature {
	return &Signature{s: new(blstSignature).Sign(s.p, msg, dst)}
}

// PublicKey used in the BLS signature scheme.
type PublicKey struct {
	p *blstPublicKey
}

// PublicKeyFromBytes creates a BLS public key from a compressed byte slice.
func PublicKeyFromBytes(pubKey []byte) (*PublicKey, error) {
	if len(pubKey) != PublicKeyLength {
		return nil, fmt.Errorf("public key must be %d bytes", PublicKeyLength)
	}
	if [PublicKeyLength]byte(pubKey) == InfinitePublicKey {
		return nil, ErrInfinitePubKey
	}
	p := new(blstPublicKey).Uncompress(pubKey)
	if p == nil {
		return nil, errors.New("could not unmarshal bytes into public key")
	}
	// Subgroup check NOT done when decompressing pubkey.
	if !p.KeyValidate() {
		return nil, errors.New("publickey not in group")
	}
	return &PublicKey{p: p}, nil
}

// Marshal a public key into a compressed byte slice.
func (p *PublicKey) Marshal() []byte {
	return p.p.Compress()
}

// Bytes returns the compressed key in its fixed-size form.
func (p *PublicKey) Bytes() phase0.BLSPubKey {
	var out phase0.BLSPubKey
	copy(out[:], p.Marshal())
	return out
}

// AggregatePublicKeys aggregates the provided raw public keys into a single key.
func AggregatePublicKeys(pubs []phase0.BLSPubKey) (*PublicKey, error) {
	if len(pubs) == 0 {
		return nil, errors.New("nil or empty public keys")
	}
	agg := new(blstAggregatePublicKey)
	mulP1 := make([]*blstPublicKey, 0, len(pubs))
	for _, pubkey := range pubs {
		pubKeyObj, err := PublicKeyFromBytes(pubkey[:])
		if err != nil {
			return nil, err
		}
		mulP1 = append(mulP1, pubKeyObj.p)
	}
	// No group check needed here since it is done in PublicKeyFromBytes.
	if !agg.Aggregate(mulP1, false) {
		return nil, errors.New("could not aggregate public keys")
	}
	return &PublicKey{p: agg.ToAffine()}, nil
}

// Signature used in the BLS signature scheme.
type Signature struct {
	s *blstSignature
}

// SignatureFromBytes creates a BLS signature from a compressed byte slice.
func SignatureFromBytes(sig []byte) (*Signature, error) {
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes", SignatureLength)
	}
	signature := new(blstSignature).Uncompress(sig)
	if signature == nil {
		return nil, errors.New("could not unmarshal bytes into signature")
	}
	// Group check signature. Do not check for infinity since an aggregated signature
	// could be infinite.
	if !signature.SigValidate(false) {
		return nil, errors.New("signature not in group")
	}
	return &Signature{s: signature}, nil
}

// Verify a bls signature given a public key and a message.
func (s *Signature) Verify(pubKey *PublicKey, msg []byte) bool {
	// Signature and PKs are assumed to have been validated upon decompression.
	return s.s.Verify(false, pubKey.p, false, msg, dst)
}

// Marshal a signature into a compressed byte slice.
func (s *Signature) Marshal() []byte {
	return s.s.Compress()
}

// Bytes returns the compressed signature in its fixed-size form.
func (s *Signature) Bytes() phase0.BLSSignature {
	var out phase0.BLSSignature
	copy(out[:], s.Marshal())
	return out
}

// VerifySignature checks a raw signature against a raw public key. Malformed
// inputs fail verification.
func VerifySignature(pub phase0.BLSPubKey, msg [32]byte, sig phase0.BLSSignature) bool {
	pk, err := PublicKeyFromBytes(pub[:])
	if err != nil {
		return false
	}
	s, err := SignatureFromBytes(sig[:])
	if err != nil {
		return false
	}
	return s.Verify(pk, msg[:])
}

// HasCompressionFlag reports whether the leading byte of a serialized point
// carries the compression bit that every valid compressed encoding has.
func HasCompressionFlag(b []byte) bool {
	return len(b) > 0 && b[0]&0x80 != 0
}

// VerifyMultipleSignatures verifies a non-singular set of signatures and its
// respective pubkeys and messages using a random linear combination, so a
// single pairing check covers the whole set.
func VerifyMultipleSignatures(sigs []phase0.BLSSignature, msgs [][32]byte, pubKeys []*PublicKey) (bool, error) {
	if len(sigs) == 0 || len(pubKeys) == 0 {
		return false, nil
	}
	length := len(sigs)
	if length != len(pubKeys) || length != len(msgs) {
		return false, errors.Errorf("provided signatures, pubkeys and messages have differing lengths. S: %d, P: %d,M %d",
			length, len(pubKeys), len(msgs))
	}
	rawSigs := make([][]byte, length)
	for i := range sigs {
		rawSigs[i] = sigs[i][:]
	}
	decompressed := new(blstSignature).BatchUncompress(rawSigs)
	if len(decompressed) != length {
		return false, errors.New("could not unmarshal bytes into signatures")
	}
	mulP1Aff := make([]*blstPublicKey, length)
	rawMsgs := make([]blst.Message, length)
	for i := 0; i < length; i++ {
		mulP1Aff[i] = pubKeys[i].p
		rawMsgs[i] = msgs[i][:]
	}
	randLock := new(sync.Mutex)
	randFunc := func(scalar *blst.Scalar) {
		var rbytes [scalarBytes]byte
		randLock.Lock()
		_, err := rand.Read(rbytes[:])
		randLock.Unlock()
		if err != nil {
			// crypto/rand failing leaves no safe way to continue.
			panic(err)
		}
		// Protect against the generator returning 0. Since the scalar value is
		// derived from a big endian byte slice, we take the last byte.
		if rbytes[len(rbytes)-1] == 0 {
			rbytes[len(rbytes)-1] = byte(1)
		}
		scalar.FromBEndian(rbytes[:])
	}
	dummySig := new(blstSignature)
	// Validate signatures since we uncompress them here. Public keys should already be validated.
	return dummySig.MultipleAggregateVerify(decompressed, true, mulP1Aff, false, rawMsgs, dst, randFunc, randBitsEntropy), nil
}

// AggregateSignatures combines signatures into one compressed aggregate.
func AggregateSignatures(sigs []*Signature) (phase0.BLSSignature, error) {
	if len(sigs) == 0 {
		return phase0.BLSSignature{}, errors.New("nil or empty signatures")
	}
	rawSigs := make([]*blstSignature, len(sigs))
	for i, s := range sigs {
		rawSigs[i] = s.s
	}
	// Signatures were group checked on creation or decompression.
	agg := new(blst.P2Aggregate)
	if !agg.Aggregate(rawSigs, false) {
		return phase0.BLSSignature{}, errors.New("could not aggregate signatures")
	}
	return (&Signature{s: agg.ToAffine()}).Bytes(), nil
}
