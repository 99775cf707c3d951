package components

import (
	"crypto/sha256"

	gordianhkdf "github.com/gordian-core/gordian/crypto/hkdf"
	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/rand"
)

var wrappingKeyInfo = []byte("gordian-sealed-message-wrapping-key")

// SealedMessage is the hybrid-encryption container envelope.addRecipient
// attaches per recipient: a KEM ciphertext plus the content symmetric key,
// itself encrypted under a key derived from the KEM shared secret.
type SealedMessage struct {
	Ciphertext KEMCiphertext
	WrappedKey EncryptedMessage
}

// SealKeyForRecipient encapsulates a fresh shared secret to pub, derives a
// wrapping key from it via HKDF-SHA256, and seals contentKey under that
// wrapping key.
func SealKeyForRecipient(gen rand.Generator, pub KEMPublicKey, contentKey SymmetricKey) (SealedMessage, error) {
	ct, sharedSecret, err := Encapsulate(pub)
	if err != nil {
		return SealedMessage{}, err
	}
	var wrapKey [32]byte
	if _, err := gordianhkdf.KDF(sha256.New, sharedSecret, nil, wrappingKeyInfo, wrapKey[:]); err != nil {
		return SealedMessage{}, err
	}
	nonce, err := NewNonce(gen)
	if err != nil {
		return SealedMessage{}, err
	}
	wrapped, err := Seal(AEADChaCha20Poly1305, SymmetricKey(wrapKey), nonce, contentKey[:], nil)
	if err != nil {
		return SealedMessage{}, err
	}
	return SealedMessage{Ciphertext: ct, WrappedKey: wrapped}, nil
}

// OpenSealedMessage decapsulates the KEM ciphertext with priv, re-derives
// the wrapping key, and recovers the content symmetric key.
func OpenSealedMessage(priv KEMPrivateKey, msg SealedMessage) (SymmetricKey, error) {
	sharedSecret, err := Decapsulate(priv, msg.Ciphertext)
	if err != nil {
		return SymmetricKey{}, err
	}
	var wrapKey [32]byte
	if _, err := gordianhkdf.KDF(sha256.New, sharedSecret, nil, wrappingKeyInfo, wrapKey[:]); err != nil {
		return SymmetricKey{}, err
	}
	plaintext, err := Open(SymmetricKey(wrapKey), msg.WrappedKey)
	if err != nil {
		return SymmetricKey{}, err
	}
	if len(plaintext) != 32 {
		return SymmetricKey{}, ErrInvalidSize
	}
	var key SymmetricKey
	copy(key[:], plaintext)
	return key, nil
}

func (m SealedMessage) ToCBOR() dcbor.Value {
	return dcbor.NewArray(m.Ciphertext.ToCBOR(), m.WrappedKey.ToCBOR())
}

func SealedMessageFromCBOR(v dcbor.Value) (SealedMessage, error) {
	items, ok := v.AsArray()
	if !ok || len(items) != 2 {
		return SealedMessage{}, ErrInvalidFormat
	}
	ct, err := KEMCiphertextFromCBOR(items[0])
	if err != nil {
		return SealedMessage{}, err
	}
	wrapped, err := EncryptedMessageFromCBOR(items[1])
	if err != nil {
		return SealedMessage{}, err
	}
	return SealedMessage{Ciphertext: ct, WrappedKey: wrapped}, nil
}
