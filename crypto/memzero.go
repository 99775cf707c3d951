// Package crypto provides thin, typed wrappers over external crypto
// libraries: SHA-256, HMAC-SHA256, HKDF-SHA256, BLAKE2b, ChaCha20-Poly1305,
// AES-256-CBC, AES-256-GCM-SIV, X25519, Ed25519, secp256k1 Schnorr/ECDSA,
// Sr25519, ML-KEM, and ML-DSA, plus memzero and constant-time comparison
// helpers shared by every secret-carrying type in the repository.
package crypto

import "crypto/subtle"

// Zero overwrites buf with zero bytes. The Go compiler lowers this
// range-clear loop to a memclr call; nothing here stops it from eliding
// the stores when buf is never read again, so erasure is not guaranteed.
func Zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// ConstantTimeCompare reports whether a and b are equal using a
// constant-time comparison. Unequal lengths short-circuit to false; the
// short-circuit itself is not secret-dependent since lengths of key
// material are public in every scheme this package supports.
func ConstantTimeCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

const (
	HMACSHA256Size = 32
)
