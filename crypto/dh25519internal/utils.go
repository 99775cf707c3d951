// Package dh25519internal computes the raw Diffie-Hellman shared point
// over ed25519group's curve, the primitive X3DH and the double ratchet's
// DH-ratchet step build on.
package dh25519internal

import (
	"errors"

	"github.com/gordian-core/gordian/crypto/ed25519group"
)

// ErrNilKey is returned when GetSecret is given a nil private or public key.
var ErrNilKey = errors.New("dh25519internal: private or public key must not be nil")

// GetSecret computes the X25519-equivalent DH shared secret priv*pub,
// encoded as the curve's canonical marshaled point.
func GetSecret(APrivKey *ed25519group.PrivateKey, BPubKey *ed25519group.PublicKey) ([]byte, error) {
	if APrivKey == nil || BPubKey == nil {
		return nil, ErrNilKey
	}
	privScalar, err := APrivKey.ToScalar()
	if err != nil {
		return nil, err
	}
	pubPoint, err := BPubKey.ToPoint()
	if err != nil {
		return nil, err
	}
	secretPoint := ed25519group.Suite.Point().Mul(privScalar, pubPoint)
	return secretPoint.MarshalBinary()
}
