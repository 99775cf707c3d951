// Package x3dh implements the classical Extended Triple Diffie-Hellman key
// agreement (https://signal.org/docs/specifications/x3dh/) over the
// Edwards25519-as-DH group, used by ratchet/doubleratchet to bootstrap a
// session and reused as the classical lane inside ratchet/tripleratchet's
// PQXDH extension.
package x3dh

import (
	"crypto/sha256"

	"github.com/gordian-core/gordian/crypto/dh25519internal"
	"github.com/gordian-core/gordian/crypto/ed25519group"
	"github.com/gordian-core/gordian/crypto/hkdf"
	"github.com/gordian-core/gordian/crypto/schnorrinternal"
)

var kdfInfo = []byte("GordianX3DH_Ed25519_SHA-256")

// IdentityKeyPair is a participant's long-term identity key.
type IdentityKeyPair struct {
	Priv ed25519group.PrivateKey
	Pub  ed25519group.PublicKey
}

// GenerateIdentityKeyPair generates a fresh long-term identity key pair.
func GenerateIdentityKeyPair() (IdentityKeyPair, error) {
	priv, err := ed25519group.New()
	if err != nil {
		return IdentityKeyPair{}, err
	}
	pub, err := priv.Public()
	if err != nil {
		return IdentityKeyPair{}, err
	}
	return IdentityKeyPair{Priv: *priv, Pub: *pub}, nil
}

// PreKeyBundle is what a recipient (Bob) publishes: an identity key, a
// signed medium-term prekey, and an optional one-time prekey.
type PreKeyBundle struct {
	IdentityKey     ed25519group.PublicKey
	SignedPreKey    ed25519group.PublicKey
	SignedPreKeySig []byte
	OneTimePreKey   *ed25519group.PublicKey
	OneTimePreKeyID uint32
	SignedPreKeyID  uint32
	RegistrationID  uint32
}

// Verify checks the bundle's signed-prekey signature against its identity
// key.
func (b PreKeyBundle) Verify() error {
	return schnorrinternal.Verify(b.IdentityKey, b.SignedPreKey[:], b.SignedPreKeySig)
}

// PublishPreKeyBundle signs signedPreKey's public half under identity and
// assembles a publishable bundle.
func PublishPreKeyBundle(identity IdentityKeyPair, signedPreKey ed25519group.PrivateKey, signedPreKeyID, registrationID uint32, oneTime *ed25519group.PublicKey, oneTimeID uint32) (PreKeyBundle, error) {
	pub, err := signedPreKey.Public()
	if err != nil {
		return PreKeyBundle{}, err
	}
	sig, err := schnorrinternal.Sign(identity.Priv, pub[:])
	if err != nil {
		return PreKeyBundle{}, err
	}
	return PreKeyBundle{
		IdentityKey:     identity.Pub,
		SignedPreKey:    *pub,
		SignedPreKeySig: sig,
		OneTimePreKey:   oneTime,
		OneTimePreKeyID: oneTimeID,
		SignedPreKeyID:  signedPreKeyID,
		RegistrationID:  registrationID,
	}, nil
}

// DH computes the raw X25519-style Diffie-Hellman output between priv and
// pub over the Edwards25519-as-DH group.
func DH(priv ed25519group.PrivateKey, pub ed25519group.PublicKey) ([]byte, error) {
	secret, err := dh25519internal.GetSecret(&priv, &pub)
	if err != nil {
		return nil, err
	}
	if len(secret) != 32 {
		return nil, ErrInvalidSecretLength
	}
	return secret, nil
}

func deriveSharedKey(dhOutputs ...[]byte) ([32]byte, error) {
	var ikm []byte
	for _, d := range dhOutputs {
		ikm = append(ikm, d...)
	}
	var sk [32]byte
	if _, err := hkdf.KDF(sha256.New, ikm, nil, kdfInfo, sk[:]); err != nil {
		return [32]byte{}, err
	}
	return sk, nil
}

// ProcessPreKeyBundle is Alice's step: she verifies Bob's bundle, generates
// a fresh ephemeral key, and derives the shared secret from DH1..DH4.
func ProcessPreKeyBundle(identity IdentityKeyPair, bob PreKeyBundle) (sk [32]byte, ephemeral ed25519group.PrivateKey, err error) {
	if err = bob.Verify(); err != nil {
		return [32]byte{}, ed25519group.PrivateKey{}, ErrInvalidPreKeyBundle
	}
	ephPrivPtr, err := ed25519group.New()
	if err != nil {
		return [32]byte{}, ed25519group.PrivateKey{}, err
	}
	ephemeral = *ephPrivPtr

	dh1, err := DH(identity.Priv, bob.SignedPreKey)
	if err != nil {
		return [32]byte{}, ed25519group.PrivateKey{}, err
	}
	dh2, err := DH(ephemeral, bob.IdentityKey)
	if err != nil {
		return [32]byte{}, ed25519group.PrivateKey{}, err
	}
	dh3, err := DH(ephemeral, bob.SignedPreKey)
	if err != nil {
		return [32]byte{}, ed25519group.PrivateKey{}, err
	}
	outputs := [][]byte{dh1, dh2, dh3}
	if bob.OneTimePreKey != nil {
		dh4, err := DH(ephemeral, *bob.OneTimePreKey)
		if err != nil {
			return [32]byte{}, ed25519group.PrivateKey{}, err
		}
		outputs = append(outputs, dh4)
	}
	sk, err = deriveSharedKey(outputs...)
	return sk, ephemeral, err
}

// ProcessInitialMessage is Bob's step, mirroring ProcessPreKeyBundle from
// the identity/signed-prekey/one-time-prekey holder's side.
func ProcessInitialMessage(identity IdentityKeyPair, signedPreKey ed25519group.PrivateKey, oneTimePreKey *ed25519group.PrivateKey, aliceIdentityPub, aliceEphemeralPub ed25519group.PublicKey) (sk [32]byte, err error) {
	dh1, err := DH(signedPreKey, aliceIdentityPub)
	if err != nil {
		return [32]byte{}, err
	}
	dh2, err := DH(identity.Priv, aliceEphemeralPub)
	if err != nil {
		return [32]byte{}, err
	}
	dh3, err := DH(signedPreKey, aliceEphemeralPub)
	if err != nil {
		return [32]byte{}, err
	}
	outputs := [][]byte{dh1, dh2, dh3}
	if oneTimePreKey != nil {
		dh4, err := DH(*oneTimePreKey, aliceEphemeralPub)
		if err != nil {
			return [32]byte{}, err
		}
		outputs = append(outputs, dh4)
	}
	return deriveSharedKey(outputs...)
}
