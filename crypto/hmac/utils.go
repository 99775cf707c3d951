// Package hmac wraps crypto/hmac for the one-shot Hash call the ratchet and
// SPQR packages build their chain-key and MAC derivations on.
package hmac

import (
	"crypto/hmac"
	"errors"
	"hash"
)

// ErrEmptyKey is returned when Hash is asked to authenticate under a
// zero-length key, which would otherwise silently derive under no key
// material at all rather than surfacing a programmer error.
var ErrEmptyKey = errors.New("hmac: key must not be empty")

// Hash returns the HMAC-<hashFunc> of data under key.
func Hash(hashFunc func() hash.Hash, key, data []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	mac := hmac.New(hashFunc, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}
