// Package secp256k1 wraps github.com/decred/dcrd/dcrec/secp256k1/v4 for the
// "secp256k1" signing scheme, backing both the Schnorr (BIP-340-style) and
// ECDSA variants components.SigningPrivateKey exposes.
package secp256k1

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

var ErrInvalidKey = errors.New("secp256k1: invalid key")

type PrivateKey [32]byte
type PublicKey [33]byte

func Generate() (PrivateKey, PublicKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return PrivateKey{}, PublicKey{}, err
	}
	var priv PrivateKey
	copy(priv[:], key.Serialize())
	var pub PublicKey
	copy(pub[:], key.PubKey().SerializeCompressed())
	return priv, pub, nil
}

func (priv PrivateKey) toKey() *secp256k1.PrivateKey {
	return secp256k1.PrivKeyFromBytes(priv[:])
}

func (priv PrivateKey) Public() (PublicKey, error) {
	var pub PublicKey
	copy(pub[:], priv.toKey().PubKey().SerializeCompressed())
	return pub, nil
}

// SignSchnorr produces a BIP-340-style Schnorr signature over SHA-256(msg).
func SignSchnorr(priv PrivateKey, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	sig, err := schnorr.Sign(priv.toKey(), digest[:])
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

func VerifySchnorr(pub PublicKey, msg, sig []byte) bool {
	key, err := secp256k1.ParsePubKey(pub[:])
	if err != nil {
		return false
	}
	parsed, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return parsed.Verify(digest[:], key)
}

// SignECDSA produces a DER-encoded ECDSA signature over SHA-256(msg).
func SignECDSA(priv PrivateKey, msg []byte) []byte {
	digest := sha256.Sum256(msg)
	sig := ecdsa.Sign(priv.toKey(), digest[:])
	return sig.Serialize()
}

func VerifyECDSA(pub PublicKey, msg, sig []byte) bool {
	key, err := secp256k1.ParsePubKey(pub[:])
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return parsed.Verify(digest[:], key)
}
