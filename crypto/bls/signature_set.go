package bls

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
)

// SignatureSet refers to the defined set of
// signatures and its respective public keys and
// messages required to verify it. An entry with more
// than one public key is checked against their aggregate.
type SignatureSet struct {
	Signatures   []phase0.BLSSignature
	PublicKeys   [][]phase0.BLSPubKey
	Messages     [][32]byte
	Descriptions []string
}

// NewSet constructs an empty signature set object.
func NewSet() *SignatureSet {
	return &SignatureSet{
		Signatures:   []phase0.BLSSignature{},
		PublicKeys:   [][]phase0.BLSPubKey{},
		Messages:     [][32]byte{},
		Descriptions: []string{},
	}
}

// Add appends one signature check to the set.
func (s *SignatureSet) Add(pubkeys []phase0.BLSPubKey, msg [32]byte, sig phase0.BLSSignature, description string) {
	s.Signatures = append(s.Signatures, sig)
	s.PublicKeys = append(s.PublicKeys, pubkeys)
	s.Messages = append(s.Messages, msg)
	s.Descriptions = append(s.Descriptions, description)
}

// Len is the number of signature checks in the set.
func (s *SignatureSet) Len() int {
	return len(s.Signatures)
}

// Join merges the provided signature set to out current one.
func (s *SignatureSet) Join(set *SignatureSet) *SignatureSet {
	s.Signatures = append(s.Signatures, set.Signatures...)
	s.PublicKeys = append(s.PublicKeys, set.PublicKeys...)
	s.Messages = append(s.Messages, set.Messages...)
	s.Descriptions = append(s.Descriptions, set.Descriptions...)
	return s
}

// Verify the current signature set using the batch verify algorithm.
func (s *SignatureSet) Verify() (bool, error) {
	if len(s.PublicKeys) != len(s.Signatures) || len(s.Messages) != len(s.Signatures) {
		return false, errors.New("signature set has differing lengths")
	}
	pubKeys := make([]*PublicKey, len(s.PublicKeys))
	for i, keys := range s.PublicKeys {
		var (
			pk  *PublicKey
			err error
		)
		if len(keys) == 1 {
			pk, err = PublicKeyFromBytes(keys[0][:])
		} else {
			pk, err = AggregatePublicKeys(keys)
		}
		if err != nil {
			return false, errors.Wrapf(err, "could not decode public keys for %q", s.description(i))
		}
		pubKeys[i] = pk
	}
	return VerifyMultipleSignatures(s.Signatures, s.Messages, pubKeys)
}

func (s *SignatureSet) description(i int) string {
	if i < len(s.Descriptions) {
		return s.Descriptions[i]
	}
	return "unknown"
}

// Copy the attached signature set and return it
// to the caller.
func (s *SignatureSet) Copy() *SignatureSet {
	signatures := make([]phase0.BLSSignature, len(s.Signatures))
	pubkeys := make([][]phase0.BLSPubKey, len(s.PublicKeys))
	messages := make([][32]byte, len(s.Messages))
	descriptions := make([]string, len(s.Descriptions))
	copy(signatures, s.Signatures)
	for i := range s.PublicKeys {
		pubkeys[i] = append([]phase0.BLSPubKey(nil), s.PublicKeys[i]...)
	}
	copy(messages, s.Messages)
	copy(descriptions, s.Descriptions)
	return &SignatureSet{
		Signatures:   signatures,
		PublicKeys:   pubkeys,
		Messages:     messages,
		Descriptions: descriptions,
	}
}
