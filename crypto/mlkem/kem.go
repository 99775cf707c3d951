// Package mlkem wraps github.com/cloudflare/circl's ML-KEM-768/1024
// implementations behind the generic circl/kem.Scheme interface, backing
// components.KEMPrivateKey/KEMPublicKey's "ml-kem-768"/"ml-kem-1024"
// variants and the triple-ratchet/SPQR post-quantum lane.
package mlkem

import (
	"errors"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// Level selects the ML-KEM parameter set.
type Level int

const (
	Level768 Level = iota
	Level1024
)

var ErrUnknownLevel = errors.New("mlkem: unknown parameter level")

func scheme(level Level) (kem.Scheme, error) {
	switch level {
	case Level768:
		return mlkem768.Scheme(), nil
	case Level1024:
		return mlkem1024.Scheme(), nil
	default:
		return nil, ErrUnknownLevel
	}
}

// GenerateKeyPair returns packed public/private key bytes for level.
func GenerateKeyPair(level Level) (pub, priv []byte, err error) {
	s, err := scheme(level)
	if err != nil {
		return nil, nil, err
	}
	pk, sk, err := s.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	pub, err = pk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	priv, err = sk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return pub, priv, nil
}

// Encapsulate derives a shared secret and ciphertext against a packed
// public key.
func Encapsulate(level Level, pubBytes []byte) (ciphertext, sharedSecret []byte, err error) {
	s, err := scheme(level)
	if err != nil {
		return nil, nil, err
	}
	pk, err := s.UnmarshalBinaryPublicKey(pubBytes)
	if err != nil {
		return nil, nil, err
	}
	ct, ss, err := s.Encapsulate(pk)
	if err != nil {
		return nil, nil, err
	}
	return ct, ss, nil
}

// Decapsulate recovers the shared secret from ciphertext using a packed
// private key.
func Decapsulate(level Level, privBytes, ciphertext []byte) ([]byte, error) {
	s, err := scheme(level)
	if err != nil {
		return nil, err
	}
	sk, err := s.UnmarshalBinaryPrivateKey(privBytes)
	if err != nil {
		return nil, err
	}
	return s.Decapsulate(sk, ciphertext)
}

// CiphertextSize returns the wire size of an encapsulation ciphertext for
// level (1088 bytes for ML-KEM-768, matching spec.md §4.3.3's chunked
// ct1/ct2 split).
func CiphertextSize(level Level) (int, error) {
	s, err := scheme(level)
	if err != nil {
		return 0, err
	}
	return s.CiphertextSize(), nil
}

// SharedKeySize returns the shared-secret size for level.
func SharedKeySize(level Level) (int, error) {
	s, err := scheme(level)
	if err != nil {
		return 0, err
	}
	return s.SharedKeySize(), nil
}
