package components_test

import (
	"testing"

	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/rand"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestCBORAndURRoundTrip(t *testing.T) {
	d := components.DigestOf([]byte("hello"))
	encoded, err := dcbor.Encode(d.ToCBOR())
	require.NoError(t, err)
	decodedVal, err := dcbor.Decode(encoded)
	require.NoError(t, err)
	decoded, err := components.DigestFromCBOR(decodedVal)
	require.NoError(t, err)
	assert.True(t, d.Equal(decoded))

	ur, err := d.UR()
	require.NoError(t, err)
	fromUR, err := components.DigestFromUR(ur)
	require.NoError(t, err)
	assert.True(t, d.Equal(fromUR))
}

func TestSymmetricKeySealOpenRoundTrip(t *testing.T) {
	key, err := components.NewSymmetricKey(rand.Secure)
	require.NoError(t, err)
	nonce, err := components.NewNonce(rand.Secure)
	require.NoError(t, err)

	msg, err := components.Seal(components.AEADChaCha20Poly1305, key, nonce, []byte("plaintext"), []byte("aad"))
	require.NoError(t, err)

	plaintext, err := components.Open(key, msg)
	require.NoError(t, err)
	assert.Equal(t, []byte("plaintext"), plaintext)

	encoded := msg.ToCBOR()
	bytes, err := dcbor.Encode(encoded)
	require.NoError(t, err)
	decodedVal, err := dcbor.Decode(bytes)
	require.NoError(t, err)
	decodedMsg, err := components.EncryptedMessageFromCBOR(decodedVal)
	require.NoError(t, err)

	plaintext2, err := components.Open(key, decodedMsg)
	require.NoError(t, err)
	assert.Equal(t, []byte("plaintext"), plaintext2)
}

func TestSymmetricKeyGCMSIVScheme(t *testing.T) {
	key, err := components.NewSymmetricKey(rand.Secure)
	require.NoError(t, err)
	nonce, err := components.NewNonce(rand.Secure)
	require.NoError(t, err)

	msg, err := components.Seal(components.AEADAESGCMSIV, key, nonce, []byte("gcm-siv payload"), nil)
	require.NoError(t, err)
	plaintext, err := components.Open(key, msg)
	require.NoError(t, err)
	assert.Equal(t, []byte("gcm-siv payload"), plaintext)
}

func TestSigningSchemesSignVerify(t *testing.T) {
	schemes := []components.SigningScheme{
		components.SchemeSchnorr,
		components.SchemeECDSA,
		components.SchemeEd25519,
	}
	msg := []byte("sign me")
	for _, scheme := range schemes {
		priv, pub, err := components.GenerateSigningKeyPair(rand.Secure, scheme)
		require.NoError(t, err)

		sig, err := priv.Sign(msg)
		require.NoError(t, err)

		ok, err := pub.Verify(msg, sig)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = pub.Verify([]byte("tampered"), sig)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestSigningPublicKeyCBORRoundTrip(t *testing.T) {
	priv, pub, err := components.GenerateSigningKeyPair(rand.Secure, components.SchemeEd25519)
	require.NoError(t, err)

	encoded, err := dcbor.Encode(pub.ToCBOR())
	require.NoError(t, err)
	decodedVal, err := dcbor.Decode(encoded)
	require.NoError(t, err)
	decoded, err := components.SigningPublicKeyFromCBOR(decodedVal)
	require.NoError(t, err)
	assert.Equal(t, pub, decoded)

	sig, err := priv.Sign([]byte("msg"))
	require.NoError(t, err)
	ok, err := decoded.Verify([]byte("msg"), sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKEMX25519EncapsulateDecapsulate(t *testing.T) {
	priv, pub, err := components.GenerateKEMKeyPair(rand.Secure, components.KEMX25519)
	require.NoError(t, err)

	ct, sharedA, err := components.Encapsulate(pub)
	require.NoError(t, err)

	sharedB, err := components.Decapsulate(priv, ct)
	require.NoError(t, err)
	assert.Equal(t, sharedA, sharedB)
}

func TestKEMMLKEM768EncapsulateDecapsulate(t *testing.T) {
	priv, pub, err := components.GenerateKEMKeyPair(rand.Secure, components.KEMMLKEM768)
	require.NoError(t, err)

	ct, sharedA, err := components.Encapsulate(pub)
	require.NoError(t, err)

	sharedB, err := components.Decapsulate(priv, ct)
	require.NoError(t, err)
	assert.Equal(t, sharedA, sharedB)
}

func TestKEMMLKEM512Unavailable(t *testing.T) {
	_, _, err := components.GenerateKEMKeyPair(rand.Secure, components.KEMMLKEM512)
	assert.ErrorIs(t, err, components.ErrSchemeUnavailable)
}

func TestSealedMessageRoundTrip(t *testing.T) {
	priv, pub, err := components.GenerateKEMKeyPair(rand.Secure, components.KEMX25519)
	require.NoError(t, err)

	contentKey, err := components.NewSymmetricKey(rand.Secure)
	require.NoError(t, err)

	sealed, err := components.SealKeyForRecipient(rand.Secure, pub, contentKey)
	require.NoError(t, err)

	recovered, err := components.OpenSealedMessage(priv, sealed)
	require.NoError(t, err)
	assert.Equal(t, contentKey, recovered)
}

func TestPrivateKeyBaseDerivationIsDeterministic(t *testing.T) {
	gen := rand.NewDeterministic(42)
	base, err := components.NewPrivateKeyBase(gen)
	require.NoError(t, err)

	priv1, pub1, err := base.DeriveSigningKey(components.SchemeEd25519)
	require.NoError(t, err)
	priv2, pub2, err := base.DeriveSigningKey(components.SchemeEd25519)
	require.NoError(t, err)
	assert.Equal(t, priv1, priv2)
	assert.Equal(t, pub1, pub2)

	kemPriv1, kemPub1, err := base.DeriveKEMKey(components.KEMX25519)
	require.NoError(t, err)
	kemPriv2, kemPub2, err := base.DeriveKEMKey(components.KEMX25519)
	require.NoError(t, err)
	assert.Equal(t, kemPriv1, kemPriv2)
	assert.Equal(t, kemPub1, kemPub2)
}

func TestPrivateKeyBaseMLDSAUnavailable(t *testing.T) {
	base, err := components.NewPrivateKeyBase(rand.Secure)
	require.NoError(t, err)
	_, _, err = base.DeriveSigningKey(components.SchemeMLDSA65)
	assert.ErrorIs(t, err, components.ErrSchemeUnavailable)
}
