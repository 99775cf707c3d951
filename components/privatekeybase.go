package components

import (
	"crypto/sha256"

	"github.com/gordian-core/gordian/crypto/ed25519"
	"github.com/gordian-core/gordian/crypto/ed25519group"
	gordianhkdf "github.com/gordian-core/gordian/crypto/hkdf"
	"github.com/gordian-core/gordian/crypto/secp256k1"
	"github.com/gordian-core/gordian/crypto/x25519"
	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/rand"
)

// PrivateKeyBase is a root seed from which scheme-specific keys are
// derived by HKDF with a scheme-specific info string, so one seed backs
// up every key an identity needs rather than one per scheme.
type PrivateKeyBase struct {
	Seed []byte
}

const privateKeyBaseSeedLen = 32

func NewPrivateKeyBase(gen rand.Generator) (PrivateKeyBase, error) {
	seed := make([]byte, privateKeyBaseSeedLen)
	if _, err := gen.Bytes(seed); err != nil {
		return PrivateKeyBase{}, err
	}
	return PrivateKeyBase{Seed: seed}, nil
}

func schemeInfo(scheme SigningScheme) []byte {
	return []byte("gordian-signing-key/" + schemeName(scheme))
}

func kemSchemeInfo(scheme KEMScheme) []byte {
	return []byte("gordian-kem-key/" + kemSchemeName(scheme))
}

func expand32(seed, info []byte) ([32]byte, error) {
	var out [32]byte
	if _, err := gordianhkdf.KDF(sha256.New, seed, nil, info, out[:]); err != nil {
		return out, err
	}
	return out, nil
}

// DeriveSigningKey expands the base into 32 bytes of key material for
// scheme via HKDF-SHA256 and builds the scheme's native key from it.
// ML-DSA derivation is not supported: circl's ML-DSA implementations only
// expose random key generation, not a seed-expansion entry point this
// wrapper can drive deterministically, so those schemes return
// ErrSchemeUnavailable here (see DESIGN.md).
func (b PrivateKeyBase) DeriveSigningKey(scheme SigningScheme) (SigningPrivateKey, SigningPublicKey, error) {
	material, err := expand32(b.Seed, schemeInfo(scheme))
	if err != nil {
		return SigningPrivateKey{}, SigningPublicKey{}, err
	}
	switch scheme {
	case SchemeSchnorr:
		var priv ed25519group.PrivateKey
		copy(priv[:], material[:])
		pub, err := priv.Public()
		if err != nil {
			return SigningPrivateKey{}, SigningPublicKey{}, err
		}
		return SigningPrivateKey{Scheme: scheme, Raw: priv[:]}, SigningPublicKey{Scheme: scheme, Raw: pub[:]}, nil
	case SchemeECDSA:
		var priv secp256k1.PrivateKey
		copy(priv[:], material[:])
		pub, err := priv.Public()
		if err != nil {
			return SigningPrivateKey{}, SigningPublicKey{}, err
		}
		return SigningPrivateKey{Scheme: scheme, Raw: priv[:]}, SigningPublicKey{Scheme: scheme, Raw: pub[:]}, nil
	case SchemeEd25519:
		priv, pub, err := ed25519.GenerateFromSeed(material)
		if err != nil {
			return SigningPrivateKey{}, SigningPublicKey{}, err
		}
		return SigningPrivateKey{Scheme: scheme, Raw: priv[:]}, SigningPublicKey{Scheme: scheme, Raw: pub[:]}, nil
	default:
		if _, ok := mldsaLevel(scheme); ok {
			return SigningPrivateKey{}, SigningPublicKey{}, ErrSchemeUnavailable
		}
		return SigningPrivateKey{}, SigningPublicKey{}, ErrUnknownScheme
	}
}

// DeriveKEMKey expands the base into KEM key material. Only x25519 is
// supported for the same reason ML-DSA is unsupported above: ML-KEM's
// circl backend has no deterministic-seed entry point this wrapper drives.
func (b PrivateKeyBase) DeriveKEMKey(scheme KEMScheme) (KEMPrivateKey, KEMPublicKey, error) {
	if scheme != KEMX25519 {
		return KEMPrivateKey{}, KEMPublicKey{}, ErrSchemeUnavailable
	}
	material, err := expand32(b.Seed, kemSchemeInfo(scheme))
	if err != nil {
		return KEMPrivateKey{}, KEMPublicKey{}, err
	}
	var priv x25519.PrivateKey
	copy(priv[:], material[:])
	pub, err := priv.Public()
	if err != nil {
		return KEMPrivateKey{}, KEMPublicKey{}, err
	}
	return KEMPrivateKey{Scheme: scheme, Raw: priv[:]}, KEMPublicKey{Scheme: scheme, Raw: pub[:]}, nil
}

func (b PrivateKeyBase) ToCBOR() dcbor.Value {
	return dcbor.NewBytes(b.Seed)
}

func PrivateKeyBaseFromCBOR(v dcbor.Value) (PrivateKeyBase, error) {
	b, ok := v.AsBytes()
	if !ok || len(b) != privateKeyBaseSeedLen {
		return PrivateKeyBase{}, ErrInvalidSize
	}
	return PrivateKeyBase{Seed: append([]byte(nil), b...)}, nil
}
