// Package schnorrinternal signs and verifies Schnorr signatures over
// ed25519group's curve, backing the components package's "schnorr"
// SigningPrivateKey/SigningPublicKey scheme.
package schnorrinternal

import (
	"go.dedis.ch/kyber/v4/sign/schnorr"

	"github.com/gordian-core/gordian/crypto/ed25519group"
)

// Sign produces a Schnorr signature over msg under privKey.
func Sign(privKey ed25519group.PrivateKey, msg []byte) ([]byte, error) {
	privScalar, err := privKey.ToScalar()
	if err != nil {
		return nil, err
	}
	return schnorr.Sign(ed25519group.Suite, privScalar, msg)
}

// Verify checks sig against msg under pubKey, returning a non-nil error if
// the signature doesn't validate.
func Verify(pubKey ed25519group.PublicKey, msg, sig []byte) error {
	pubPoint, err := pubKey.ToPoint()
	if err != nil {
		return err
	}
	return schnorr.Verify(ed25519group.Suite, pubPoint, msg, sig)
}
