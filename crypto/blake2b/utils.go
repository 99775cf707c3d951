// Package blake2b wraps golang.org/x/crypto/blake2b's 256-bit digest. No
// other package in this module imports it.
package blake2b

import "golang.org/x/crypto/blake2b"

// Sum256 returns the 32-byte BLAKE2b-256 digest of data.
func Sum256(data []byte) [32]byte {
	return blake2b.Sum256(data)
}
