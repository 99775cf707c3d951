// Package chacha20poly1305 wraps golang.org/x/crypto/chacha20poly1305, the
// AEAD used by envelope encryption-in-place and SealedMessage.
package chacha20poly1305

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrInvalidKeySize   = errors.New("chacha20poly1305: invalid key size")
	ErrInvalidNonceSize = errors.New("chacha20poly1305: invalid nonce size")
)

const (
	KeySize   = chacha20poly1305.KeySize
	NonceSize = chacha20poly1305.NonceSize
	TagSize   = 16
)

// NewKey returns a fresh random 32-byte key.
func NewKey() ([32]byte, error) {
	var key [32]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return key, err
	}
	return key, nil
}

// NewNonce returns a fresh random 12-byte nonce.
func NewNonce() ([12]byte, error) {
	var nonce [12]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nonce, err
	}
	return nonce, nil
}

// Seal encrypts plaintext and appends the 16-byte tag, authenticating aad.
func Seal(key [32]byte, nonce [12]byte, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce[:], plaintext, aad), nil
}

// Open decrypts a Seal output, verifying aad and the trailing tag.
func Open(key [32]byte, nonce [12]byte, ciphertext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce[:], ciphertext, aad)
}
