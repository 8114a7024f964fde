// Package interop generates the deterministic validator keys used by local
// test networks and simulations.
package interop

import (
	"encoding/binary"

	"github.com/eth2353/admission/crypto/bls"
	"github.com/eth2353/admission/crypto/hash"
	"github.com/pkg/errors"
)

// DeterministicallyGenerateKeys creates BLS private keys using a fixed seed
// derived from each validator index.
func DeterministicallyGenerateKeys(startIndex, numKeys uint64) ([]*bls.SecretKey, []*bls.PublicKey, error) {
	privKeys := make([]*bls.SecretKey, numKeys)
	pubKeys := make([]*bls.PublicKey, numKeys)
	for i := startIndex; i < startIndex+numKeys; i++ {
		enc := make([]byte, 32)
		binary.LittleEndian.PutUint32(enc, uint32(i))
		seed := hash.Hash(enc)
		priv, err := bls.SecretKeyFromSeed(seed[:])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "could not create bls secret key at index %d", i)
		}
		privKeys[i-startIndex] = priv
		pubKeys[i-startIndex] = priv.PublicKey()
	}
	return privKeys, pubKeys, nil
}
