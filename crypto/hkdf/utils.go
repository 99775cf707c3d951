// Package hkdf wraps golang.org/x/crypto/hkdf's Extract-and-Expand KDF for
// the root-key, chain-key, and message-key derivations the ratchet and SPQR
// packages build on.
package hkdf

import (
	"errors"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrShortBuffer is returned when KDF is asked to fill a zero-length
// buffer, which would silently succeed as a no-op rather than surfacing
// the caller's mistake.
var ErrShortBuffer = errors.New("hkdf: output buffer must not be empty")

// KDF expands keyMaterial under salt and info into buffer, using hash as
// the underlying HMAC. It returns the number of bytes written, which is
// always len(buffer) on success.
func KDF(hash func() hash.Hash, keyMaterial []byte, salt []byte, info []byte, buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, ErrShortBuffer
	}
	reader := hkdf.New(hash, keyMaterial, salt, info)
	return io.ReadFull(reader, buffer)
}
