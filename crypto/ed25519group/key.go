// Package ed25519group wraps kyber's Ed25519 group implementation with
// fixed-size key types, used wherever the ratchet and X3DH/PQXDH layers
// need a Diffie-Hellman or Schnorr-signature keypair.
package ed25519group

import (
	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/suites"

	"github.com/gordian-core/gordian/crypto"
)

type (
	// PrivateKey is a 32-byte private key
	PrivateKey [32]byte
	// PublicKey is a 32-byte public key
	PublicKey [32]byte
	Pair      struct {
		Priv PrivateKey
		Pub  PublicKey
	}
)

var (
	Suite = suites.MustFind("Ed25519") // Use the edwards25519-curve
)

func New() (*PrivateKey, error) {
	privK := Suite.Scalar().Pick(Suite.RandomStream())
	mutSlicePriv, err := privK.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var privB PrivateKey
	copy(privB[:], mutSlicePriv)
	return &privB, nil
}

func (privB *PrivateKey) Public() (*PublicKey, error) {
	privK, err := privB.ToScalar()
	if err != nil {
		return nil, err
	}
	pubK := Suite.Point().Mul(privK, nil)
	mutSlicePub, err := pubK.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var pubB PublicKey
	copy(pubB[:], mutSlicePub)
	return &pubB, nil
}

func (privB *PrivateKey) ToScalar() (kyber.Scalar, error) {
	privK := Suite.Scalar()
	if err := privK.UnmarshalBinary(privB[:]); err != nil {
		return nil, err
	}
	return privK, nil
}

func (pubB *PublicKey) ToPoint() (kyber.Point, error) {
	pubK := Suite.Point()
	if err := pubK.UnmarshalBinary(pubB[:]); err != nil {
		return nil, err
	}
	return pubK, nil
}

// Equals reports whether pubB and other hold the same key bytes, compared
// in constant time since public keys are exchanged alongside signatures
// whose verification timing shouldn't leak which candidate key matched.
func (pubB *PublicKey) Equals(other *PublicKey) bool {
	if pubB == nil || other == nil {
		return false
	}
	return crypto.ConstantTimeCompare(pubB[:], other[:])
}
