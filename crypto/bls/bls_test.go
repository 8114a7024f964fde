package bls_test

import (
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/crypto/bls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(i byte) []byte {
	ikm := make([]byte, 32)
	ikm[0] = i + 1
	return ikm
}

func TestSignAndVerify(t *testing.T) {
	sk, err := bls.SecretKeyFromSeed(seed(0))
	require.NoError(t, err)
	msg := [32]byte{'h', 'i'}
	sig := sk.Sign(msg[:])

	assert.True(t, bls.VerifySignature(sk.PublicKey().Bytes(), msg, sig.Bytes()))
	assert.False(t, bls.VerifySignature(sk.PublicKey().Bytes(), [32]byte{'n', 'o'}, sig.Bytes()))
}

func TestSecretKeyFromSeed_Deterministic(t *testing.T) {
	a, err := bls.SecretKeyFromSeed(seed(3))
	require.NoError(t, err)
	b, err := bls.SecretKeyFromSeed(seed(3))
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey().Bytes(), b.PublicKey().Bytes())

	_, err = bls.SecretKeyFromSeed([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestPublicKeyFromBytes_Invalid(t *testing.T) {
	_, err := bls.PublicKeyFromBytes([]byte{0x01})
	require.Error(t, err)
	_, err = bls.PublicKeyFromBytes(bls.InfinitePublicKey[:])
	require.ErrorIs(t, err, bls.ErrInfinitePubKey)
}

func TestSignatureFromBytes_Invalid(t *testing.T) {
	_, err := bls.SignatureFromBytes(make([]byte, 96))
	require.Error(t, err)
	assert.False(t, bls.VerifySignature(phase0.BLSPubKey{}, [32]byte{}, phase0.BLSSignature{}))
}

func TestHasCompressionFlag(t *testing.T) {
	sk, err := bls.SecretKeyFromSeed(seed(1))
	require.NoError(t, err)
	sig := sk.Sign([]byte("msg")).Bytes()
	assert.True(t, bls.HasCompressionFlag(sig[:]))
	assert.False(t, bls.HasCompressionFlag(make([]byte, 96)))
	assert.False(t, bls.HasCompressionFlag(nil))
}

func TestSignatureSet_VerifyBatch(t *testing.T) {
	set := bls.NewSet()
	var keys []*bls.SecretKey
	for i := byte(0); i < 3; i++ {
		sk, err := bls.SecretKeyFromSeed(seed(i))
		require.NoError(t, err)
		keys = append(keys, sk)
		msg := [32]byte{'m', i}
		set.Add([]phase0.BLSPubKey{sk.PublicKey().Bytes()}, msg, sk.Sign(msg[:]).Bytes(), "single")
	}

	// Fast aggregate entry: every key signs the same message.
	shared := [32]byte{'s', 'h', 'a', 'r', 'e', 'd'}
	sig0 := keys[0].Sign(shared[:])
	sig1 := keys[1].Sign(shared[:])
	agg, err := bls.AggregateSignatures([]*bls.Signature{sig0, sig1})
	require.NoError(t, err)
	set.Add([]phase0.BLSPubKey{keys[0].PublicKey().Bytes(), keys[1].PublicKey().Bytes()}, shared, agg, "aggregate")

	ok, err := set.Verify()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, set.Len())

	bad := set.Copy()
	bad.Messages[0] = [32]byte{'x'}
	ok, err = bad.Verify()
	require.NoError(t, err)
	assert.False(t, ok)

	// The copy is independent from the original.
	ok, err = set.Verify()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignatureSet_Join(t *testing.T) {
	a := bls.NewSet()
	a.Add([]phase0.BLSPubKey{{1}}, [32]byte{1}, phase0.BLSSignature{1}, "a")
	b := bls.NewSet()
	b.Add([]phase0.BLSPubKey{{2}}, [32]byte{2}, phase0.BLSSignature{2}, "b")
	a.Join(b)
	require.Equal(t, 2, a.Len())
	assert.Equal(t, []string{"a", "b"}, a.Descriptions)
}

func TestSignatureSet_EmptyDoesNotVerify(t *testing.T) {
	ok, err := bls.NewSet().Verify()
	require.NoError(t, err)
	assert.False(t, ok)
}
