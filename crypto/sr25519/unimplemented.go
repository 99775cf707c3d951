// Package sr25519 recognizes the "sr25519" signing scheme tag but does not
// implement it: sr25519 needs a Ristretto/Schnorrkel implementation, and
// neither the teacher's stack (kyber, x/crypto) nor any other example repo
// in the retrieval pack carries one (the pack's curve libraries are kyber's
// edwards25519 group, x/crypto, and circl/decred, none of which expose
// Ristretto225 or the Schnorrkel transcript construction). Per spec.md §9,
// schemes the source marks as not-yet-implemented stay unimplemented here
// rather than being backed by a hand-rolled primitive.
package sr25519

import "errors"

var ErrUnimplementedScheme = errors.New("sr25519: scheme recognized but not implemented")

type PrivateKey [32]byte
type PublicKey [32]byte

func Generate() (PrivateKey, PublicKey, error) {
	return PrivateKey{}, PublicKey{}, ErrUnimplementedScheme
}

func Sign(PrivateKey, []byte) ([]byte, error) {
	return nil, ErrUnimplementedScheme
}

func Verify(PublicKey, []byte, []byte) error {
	return ErrUnimplementedScheme
}
