package tripleratchet

import (
	"bytes"
	"crypto/sha256"

	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/crypto/ed25519group"
	"github.com/gordian-core/gordian/crypto/hkdf"
	"github.com/gordian-core/gordian/crypto/schnorrinternal"
	"github.com/gordian-core/gordian/ratchet/doubleratchet"
)

var pqxdhInfo = []byte("WhisperText_X25519_SHA-256_CRYSTALS-KYBER-1024")

// kyberTypePrefix is the 1-byte type tag spec.md §4.3.2 prepends to a
// Kyber prekey before signing or MAC'ing it, matching the 0x05 DJB
// convention already used for classical identity keys. Spec.md states
// only the ML-KEM-1024 value (0x08); 0x07 for ML-KEM-768 follows the same
// one-below-1024 numbering it uses elsewhere for parallel scheme pairs.
func kyberTypePrefix(scheme components.KEMScheme) (byte, error) {
	switch scheme {
	case components.KEMMLKEM768:
		return 0x07, nil
	case components.KEMMLKEM1024:
		return 0x08, nil
	default:
		return 0, ErrUnsupportedLevel
	}
}

func prefixedKyberBytes(pub components.KEMPublicKey) ([]byte, error) {
	prefix, err := kyberTypePrefix(pub.Scheme)
	if err != nil {
		return nil, err
	}
	return append([]byte{prefix}, pub.Raw...), nil
}

// PreKeyBundle extends the classical X3DH bundle with a signed Kyber
// prekey for the ML-KEM lane (spec.md §4.3.2).
type PreKeyBundle struct {
	IdentityKey     ed25519group.PublicKey
	SignedPreKey    ed25519group.PublicKey
	SignedPreKeySig []byte
	SignedPreKeyID  uint32
	OneTimePreKey   *ed25519group.PublicKey
	OneTimePreKeyID uint32
	RegistrationID  uint32
	KyberPreKey     components.KEMPublicKey
	KyberPreKeySig  []byte
	KyberPreKeyID   uint32
}

// Verify checks both the classical signed-prekey signature and the
// Kyber-prekey signature against the bundle's identity key (spec.md
// §4.3.2 step 1).
func (b PreKeyBundle) Verify() error {
	if err := schnorrinternal.Verify(b.IdentityKey, b.SignedPreKey[:], b.SignedPreKeySig); err != nil {
		return ErrInvalidPreKeyBundle
	}
	prefixed, err := prefixedKyberBytes(b.KyberPreKey)
	if err != nil {
		return err
	}
	if err := schnorrinternal.Verify(b.IdentityKey, prefixed, b.KyberPreKeySig); err != nil {
		return ErrInvalidKyberPreKey
	}
	return nil
}

// PublishPreKeyBundle signs both the signed prekey and the (prefixed)
// Kyber prekey under identity.
func PublishPreKeyBundle(identity doubleratchet.IdentityKeyPair, signedPreKey ed25519group.PrivateKey, signedPreKeyID uint32, kyberPub components.KEMPublicKey, kyberPreKeyID uint32, registrationID uint32, oneTime *ed25519group.PublicKey, oneTimeID uint32) (PreKeyBundle, error) {
	pub, err := signedPreKey.Public()
	if err != nil {
		return PreKeyBundle{}, err
	}
	sig, err := schnorrinternal.Sign(identity.Priv, pub[:])
	if err != nil {
		return PreKeyBundle{}, err
	}
	prefixed, err := prefixedKyberBytes(kyberPub)
	if err != nil {
		return PreKeyBundle{}, err
	}
	kyberSig, err := schnorrinternal.Sign(identity.Priv, prefixed)
	if err != nil {
		return PreKeyBundle{}, err
	}
	return PreKeyBundle{
		IdentityKey:     identity.Pub,
		SignedPreKey:    *pub,
		SignedPreKeySig: sig,
		SignedPreKeyID:  signedPreKeyID,
		OneTimePreKey:   oneTime,
		OneTimePreKeyID: oneTimeID,
		RegistrationID:  registrationID,
		KyberPreKey:     kyberPub,
		KyberPreKeySig:  kyberSig,
		KyberPreKeyID:   kyberPreKeyID,
	}, nil
}

func deriveTriple(secretInput []byte) (rootKey, chainKey, pqrAuthKey [32]byte, err error) {
	buf := make([]byte, 96)
	if _, err = hkdf.KDF(sha256.New, secretInput, nil, pqxdhInfo, buf); err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, err
	}
	copy(rootKey[:], buf[:32])
	copy(chainKey[:], buf[32:64])
	copy(pqrAuthKey[:], buf[64:96])
	return rootKey, chainKey, pqrAuthKey, nil
}

// ProcessPreKeyBundle is Alice's PQXDH step: it verifies bob's bundle,
// generates a fresh classical ephemeral, encapsulates against bob's
// Kyber prekey, and derives (rootKey, chainKey, pqrAuthKey) from the
// combined classical+post-quantum secret (spec.md §4.3.2 steps 1-4).
func ProcessPreKeyBundle(identity doubleratchet.IdentityKeyPair, bob PreKeyBundle) (rootKey, chainKey, pqrAuthKey [32]byte, ephemeral ed25519group.PrivateKey, kyberCiphertext components.KEMCiphertext, err error) {
	if err = bob.Verify(); err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, ed25519group.PrivateKey{}, components.KEMCiphertext{}, err
	}
	ephPrivPtr, err := ed25519group.New()
	if err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, ed25519group.PrivateKey{}, components.KEMCiphertext{}, err
	}
	ephemeral = *ephPrivPtr

	dh1, err := doubleratchet.DH(identity.Priv, bob.SignedPreKey)
	if err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, ed25519group.PrivateKey{}, components.KEMCiphertext{}, err
	}
	dh2, err := doubleratchet.DH(ephemeral, bob.IdentityKey)
	if err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, ed25519group.PrivateKey{}, components.KEMCiphertext{}, err
	}
	dh3, err := doubleratchet.DH(ephemeral, bob.SignedPreKey)
	if err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, ed25519group.PrivateKey{}, components.KEMCiphertext{}, err
	}

	var secretInput []byte
	secretInput = append(secretInput, bytes.Repeat([]byte{0xFF}, 32)...)
	secretInput = append(secretInput, dh1...)
	secretInput = append(secretInput, dh2...)
	secretInput = append(secretInput, dh3...)
	if bob.OneTimePreKey != nil {
		dh4, err := doubleratchet.DH(ephemeral, *bob.OneTimePreKey)
		if err != nil {
			return [32]byte{}, [32]byte{}, [32]byte{}, ed25519group.PrivateKey{}, components.KEMCiphertext{}, err
		}
		secretInput = append(secretInput, dh4...)
	}

	kyberCiphertext, kyberSharedSecret, err := components.Encapsulate(bob.KyberPreKey)
	if err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, ed25519group.PrivateKey{}, components.KEMCiphertext{}, err
	}
	secretInput = append(secretInput, kyberSharedSecret...)

	rootKey, chainKey, pqrAuthKey, err = deriveTriple(secretInput)
	return rootKey, chainKey, pqrAuthKey, ephemeral, kyberCiphertext, err
}

// ProcessInitialMessage is Bob's PQXDH step, mirroring ProcessPreKeyBundle
// using the signed prekey, optional one-time prekey, and Kyber prekey
// private keys he holds.
func ProcessInitialMessage(identity doubleratchet.IdentityKeyPair, signedPreKey ed25519group.PrivateKey, oneTimePreKey *ed25519group.PrivateKey, kyberPreKeyPriv components.KEMPrivateKey, kyberCiphertext components.KEMCiphertext, aliceIdentityPub, aliceEphemeralPub ed25519group.PublicKey) (rootKey, chainKey, pqrAuthKey [32]byte, err error) {
	dh1, err := doubleratchet.DH(signedPreKey, aliceIdentityPub)
	if err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, err
	}
	dh2, err := doubleratchet.DH(identity.Priv, aliceEphemeralPub)
	if err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, err
	}
	dh3, err := doubleratchet.DH(signedPreKey, aliceEphemeralPub)
	if err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, err
	}

	var secretInput []byte
	secretInput = append(secretInput, bytes.Repeat([]byte{0xFF}, 32)...)
	secretInput = append(secretInput, dh1...)
	secretInput = append(secretInput, dh2...)
	secretInput = append(secretInput, dh3...)
	if oneTimePreKey != nil {
		dh4, err := doubleratchet.DH(*oneTimePreKey, aliceEphemeralPub)
		if err != nil {
			return [32]byte{}, [32]byte{}, [32]byte{}, err
		}
		secretInput = append(secretInput, dh4...)
	}

	kyberSharedSecret, err := components.Decapsulate(kyberPreKeyPriv, kyberCiphertext)
	if err != nil {
		return [32]byte{}, [32]byte{}, [32]byte{}, err
	}
	secretInput = append(secretInput, kyberSharedSecret...)

	return deriveTriple(secretInput)
}
