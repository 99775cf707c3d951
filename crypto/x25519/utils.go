// Package x25519 wraps golang.org/x/crypto/curve25519 for the "x25519" KEM
// scheme used by components.KEMPrivateKey/KEMPublicKey and envelope hybrid
// recipient encryption. This is distinct from crypto/dh25519internal,
// which performs the ratchets' internal DH on the kyber edwards25519
// group representation.
package x25519

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
)

var ErrLowOrderPoint = errors.New("x25519: low-order point rejected")

type PrivateKey [32]byte
type PublicKey [32]byte

func Generate() (PrivateKey, PublicKey, error) {
	var priv PrivateKey
	if _, err := io.ReadFull(rand.Reader, priv[:]); err != nil {
		return priv, PublicKey{}, err
	}
	pub, err := priv.Public()
	return priv, pub, err
}

func (priv PrivateKey) Public() (PublicKey, error) {
	var pub PublicKey
	out, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], out)
	return pub, nil
}

// SharedSecret performs X25519(priv, pub), rejecting the all-zero output
// that results from a low-order public key.
func SharedSecret(priv PrivateKey, pub PublicKey) ([]byte, error) {
	out, err := curve25519.X25519(priv[:], pub[:])
	if err != nil {
		return nil, err
	}
	var zero [32]byte
	if constantTimeEqual(out, zero[:]) {
		return nil, ErrLowOrderPoint
	}
	return out, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}

// Encapsulate generates an ephemeral keypair, performs DH against pub, and
// returns (ephemeral public key = ciphertext, shared secret).
func Encapsulate(pub PublicKey) (ciphertext PublicKey, sharedSecret []byte, err error) {
	ephPriv, ephPub, err := Generate()
	if err != nil {
		return PublicKey{}, nil, err
	}
	ss, err := SharedSecret(ephPriv, pub)
	if err != nil {
		return PublicKey{}, nil, err
	}
	return ephPub, ss, nil
}

// Decapsulate recovers the shared secret given the recipient's private key
// and the ciphertext (ephemeral public key) produced by Encapsulate.
func Decapsulate(priv PrivateKey, ciphertext PublicKey) ([]byte, error) {
	return SharedSecret(priv, ciphertext)
}
