package doubleratchet

import (
	"github.com/gordian-core/gordian/crypto/ed25519group"
	"github.com/gordian-core/gordian/x3dh"
)

// IdentityKeyPair, PreKeyBundle, DH, and the classical key-agreement steps
// below are thin aliases over package x3dh: the classical X3DH lane lives
// in one place and is shared verbatim by ratchet/tripleratchet's PQXDH
// extension rather than duplicated.
type IdentityKeyPair = x3dh.IdentityKeyPair

type PreKeyBundle = x3dh.PreKeyBundle

// GenerateIdentityKeyPair generates a fresh long-term identity key pair.
func GenerateIdentityKeyPair() (IdentityKeyPair, error) {
	return x3dh.GenerateIdentityKeyPair()
}

// PublishPreKeyBundle signs signedPreKey's public half under identity and
// assembles a publishable bundle.
func PublishPreKeyBundle(identity IdentityKeyPair, signedPreKey ed25519group.PrivateKey, signedPreKeyID, registrationID uint32, oneTime *ed25519group.PublicKey, oneTimeID uint32) (PreKeyBundle, error) {
	return x3dh.PublishPreKeyBundle(identity, signedPreKey, signedPreKeyID, registrationID, oneTime, oneTimeID)
}

// DH computes the raw X25519-style Diffie-Hellman output between priv and
// pub over the Edwards25519-as-DH group, exported so ratchet/tripleratchet
// can braid the same DH ratchet step with its ML-KEM lane.
func DH(priv ed25519group.PrivateKey, pub ed25519group.PublicKey) ([]byte, error) {
	secret, err := x3dh.DH(priv, pub)
	if err != nil {
		return nil, ErrInvalidSecretLength
	}
	return secret, nil
}

func dh(priv ed25519group.PrivateKey, pub ed25519group.PublicKey) ([]byte, error) {
	return DH(priv, pub)
}

// ProcessPreKeyBundle is Alice's X3DH step: she verifies Bob's bundle,
// generates a fresh ephemeral key, and derives the initial shared secret
// (spec.md's `Fresh --processPreKeyBundle--> PendingPreKey` transition).
func ProcessPreKeyBundle(identity IdentityKeyPair, bob PreKeyBundle) (sk [32]byte, ephemeral ed25519group.PrivateKey, err error) {
	sk, ephemeral, err = x3dh.ProcessPreKeyBundle(identity, bob)
	if err == x3dh.ErrInvalidPreKeyBundle {
		return [32]byte{}, ed25519group.PrivateKey{}, ErrInvalidPreKeyBundle
	}
	return sk, ephemeral, err
}

// ProcessInitialMessage is Bob's X3DH step, mirroring ProcessPreKeyBundle
// from the identity/signed-prekey/one-time-prekey holder's side (spec.md's
// `Fresh --decrypt(PreKeySignalMessage)--> Established` transition).
func ProcessInitialMessage(identity IdentityKeyPair, signedPreKey ed25519group.PrivateKey, oneTimePreKey *ed25519group.PrivateKey, aliceIdentityPub, aliceEphemeralPub ed25519group.PublicKey) (sk [32]byte, err error) {
	return x3dh.ProcessInitialMessage(identity, signedPreKey, oneTimePreKey, aliceIdentityPub, aliceEphemeralPub)
}
