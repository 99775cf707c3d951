// Package ed25519 wraps the standard library's crypto/ed25519 for the
// "ed25519" signing scheme. Unlike crypto/schnorrinternal (Schnorr over
// the kyber edwards25519 group, backing the "schnorr" scheme), this is
// plain EdDSA. Go's own implementation is the canonical, audited one; no
// pack library offers a different EdDSA and reimplementing it would defeat
// the point of wrapping a trusted primitive.
package ed25519

import (
	"crypto/ed25519"
	"errors"
)

var ErrInvalidKeySize = errors.New("ed25519: invalid key size")

type PrivateKey [64]byte
type PublicKey [32]byte

func Generate() (PrivateKey, PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return PrivateKey{}, PublicKey{}, err
	}
	var privOut PrivateKey
	var pubOut PublicKey
	copy(privOut[:], priv)
	copy(pubOut[:], pub)
	return privOut, pubOut, nil
}

// GenerateFromSeed deterministically expands a 32-byte seed into a key
// pair, used by components.PrivateKeyBase to derive scheme-specific keys
// from a single root seed via HKDF.
func GenerateFromSeed(seed [32]byte) (PrivateKey, PublicKey, error) {
	priv := ed25519.NewKeyFromSeed(seed[:])
	var privOut PrivateKey
	copy(privOut[:], priv)
	return privOut, privOut.Public(), nil
}

func (priv PrivateKey) Public() PublicKey {
	var pub PublicKey
	copy(pub[:], ed25519.PrivateKey(priv[:]).Public().(ed25519.PublicKey))
	return pub
}

func Sign(priv PrivateKey, msg []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv[:]), msg)
}

func Verify(pub PublicKey, msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig)
}
