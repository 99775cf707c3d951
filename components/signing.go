package components

import (
	"github.com/gordian-core/gordian/crypto/ed25519"
	"github.com/gordian-core/gordian/crypto/ed25519group"
	"github.com/gordian-core/gordian/crypto/mldsa"
	"github.com/gordian-core/gordian/crypto/schnorrinternal"
	"github.com/gordian-core/gordian/crypto/secp256k1"
	"github.com/gordian-core/gordian/crypto/sr25519"
	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/rand"
)

// SigningScheme tags which backend a SigningPrivateKey/SigningPublicKey
// uses. The "ssh-*" schemes named in spec.md §3 are not represented here:
// OpenSSH key import/export is an external-collaborator concern, not a
// cryptographic scheme this package implements.
type SigningScheme int

const (
	SchemeSchnorr SigningScheme = iota
	SchemeECDSA
	SchemeEd25519
	SchemeSr25519
	SchemeMLDSA44
	SchemeMLDSA65
	SchemeMLDSA87
)

// SigningPrivateKey holds scheme-tagged private key material. Representation
// varies by scheme (32 bytes for schnorr/secp256k1, 64 for ed25519, a
// circl-packed blob for ML-DSA); Raw always carries the scheme's native
// packed encoding so the type can round-trip without scheme-specific
// accessors at the call site.
type SigningPrivateKey struct {
	Scheme SigningScheme
	Raw    []byte
}

type SigningPublicKey struct {
	Scheme SigningScheme
	Raw    []byte
}

func mldsaLevel(scheme SigningScheme) (mldsa.Level, bool) {
	switch scheme {
	case SchemeMLDSA44:
		return mldsa.Level44, true
	case SchemeMLDSA65:
		return mldsa.Level65, true
	case SchemeMLDSA87:
		return mldsa.Level87, true
	default:
		return 0, false
	}
}

// GenerateSigningKeyPair creates a fresh key pair for scheme.
func GenerateSigningKeyPair(gen rand.Generator, scheme SigningScheme) (SigningPrivateKey, SigningPublicKey, error) {
	switch scheme {
	case SchemeSchnorr:
		priv, err := ed25519group.New()
		if err != nil {
			return SigningPrivateKey{}, SigningPublicKey{}, err
		}
		pub, err := priv.Public()
		if err != nil {
			return SigningPrivateKey{}, SigningPublicKey{}, err
		}
		return SigningPrivateKey{Scheme: scheme, Raw: priv[:]}, SigningPublicKey{Scheme: scheme, Raw: pub[:]}, nil
	case SchemeECDSA:
		priv, pub, err := secp256k1.Generate()
		if err != nil {
			return SigningPrivateKey{}, SigningPublicKey{}, err
		}
		return SigningPrivateKey{Scheme: scheme, Raw: priv[:]}, SigningPublicKey{Scheme: scheme, Raw: pub[:]}, nil
	case SchemeEd25519:
		priv, pub, err := ed25519.Generate()
		if err != nil {
			return SigningPrivateKey{}, SigningPublicKey{}, err
		}
		return SigningPrivateKey{Scheme: scheme, Raw: priv[:]}, SigningPublicKey{Scheme: scheme, Raw: pub[:]}, nil
	case SchemeSr25519:
		priv, pub, err := sr25519.Generate()
		if err != nil {
			return SigningPrivateKey{}, SigningPublicKey{}, err
		}
		return SigningPrivateKey{Scheme: scheme, Raw: priv[:]}, SigningPublicKey{Scheme: scheme, Raw: pub[:]}, nil
	default:
		if level, ok := mldsaLevel(scheme); ok {
			pub, priv, err := mldsa.GenerateKeyPair(level)
			if err != nil {
				return SigningPrivateKey{}, SigningPublicKey{}, err
			}
			return SigningPrivateKey{Scheme: scheme, Raw: priv}, SigningPublicKey{Scheme: scheme, Raw: pub}, nil
		}
		return SigningPrivateKey{}, SigningPublicKey{}, ErrUnknownScheme
	}
}

// Sign produces a scheme-native signature over msg.
func (priv SigningPrivateKey) Sign(msg []byte) ([]byte, error) {
	switch priv.Scheme {
	case SchemeSchnorr:
		if len(priv.Raw) != 32 {
			return nil, ErrInvalidKey
		}
		var key ed25519group.PrivateKey
		copy(key[:], priv.Raw)
		return schnorrinternal.Sign(key, msg)
	case SchemeECDSA:
		if len(priv.Raw) != 32 {
			return nil, ErrInvalidKey
		}
		var k secp256k1.PrivateKey
		copy(k[:], priv.Raw)
		return secp256k1.SignECDSA(k, msg), nil
	case SchemeEd25519:
		if len(priv.Raw) != 64 {
			return nil, ErrInvalidKey
		}
		var k ed25519.PrivateKey
		copy(k[:], priv.Raw)
		return ed25519.Sign(k, msg), nil
	case SchemeSr25519:
		if len(priv.Raw) != 32 {
			return nil, ErrInvalidKey
		}
		var k sr25519.PrivateKey
		copy(k[:], priv.Raw)
		return sr25519.Sign(k, msg)
	default:
		if level, ok := mldsaLevel(priv.Scheme); ok {
			return mldsa.Sign(level, priv.Raw, msg)
		}
		return nil, ErrUnknownScheme
	}
}

// SignSchnorrSecp256k1 is a convenience for the BIP-340 variant of the
// secp256k1 scheme; plain Sign above uses ECDSA for SchemeECDSA.
func (priv SigningPrivateKey) SignSchnorrSecp256k1(msg []byte) ([]byte, error) {
	if priv.Scheme != SchemeECDSA || len(priv.Raw) != 32 {
		return nil, ErrInvalidKey
	}
	var k secp256k1.PrivateKey
	copy(k[:], priv.Raw)
	return secp256k1.SignSchnorr(k, msg)
}

// Verify checks sig against msg under pub.
func (pub SigningPublicKey) Verify(msg, sig []byte) (bool, error) {
	switch pub.Scheme {
	case SchemeSchnorr:
		if len(pub.Raw) != 32 {
			return false, ErrInvalidKey
		}
		var key ed25519group.PublicKey
		copy(key[:], pub.Raw)
		return schnorrinternal.Verify(key, msg, sig) == nil, nil
	case SchemeECDSA:
		if len(pub.Raw) != 33 {
			return false, ErrInvalidKey
		}
		var k secp256k1.PublicKey
		copy(k[:], pub.Raw)
		return secp256k1.VerifyECDSA(k, msg, sig), nil
	case SchemeEd25519:
		if len(pub.Raw) != 32 {
			return false, ErrInvalidKey
		}
		var k ed25519.PublicKey
		copy(k[:], pub.Raw)
		return ed25519.Verify(k, msg, sig), nil
	case SchemeSr25519:
		if len(pub.Raw) != 32 {
			return false, ErrInvalidKey
		}
		var k sr25519.PublicKey
		copy(k[:], pub.Raw)
		return sr25519.Verify(k, msg, sig) == nil, nil
	default:
		if level, ok := mldsaLevel(pub.Scheme); ok {
			return mldsa.Verify(level, pub.Raw, msg, sig)
		}
		return false, ErrUnknownScheme
	}
}

func schemeName(s SigningScheme) string {
	switch s {
	case SchemeSchnorr:
		return "schnorr"
	case SchemeECDSA:
		return "ecdsa"
	case SchemeEd25519:
		return "ed25519"
	case SchemeSr25519:
		return "sr25519"
	case SchemeMLDSA44:
		return "ml-dsa-44"
	case SchemeMLDSA65:
		return "ml-dsa-65"
	case SchemeMLDSA87:
		return "ml-dsa-87"
	default:
		return "unknown"
	}
}

func signingSchemeFromName(name string) (SigningScheme, bool) {
	for s := SchemeSchnorr; s <= SchemeMLDSA87; s++ {
		if schemeName(s) == name {
			return s, true
		}
	}
	return 0, false
}

// ToCBOR renders [schemeName, keyBytes].
func (pub SigningPublicKey) ToCBOR() dcbor.Value {
	return dcbor.NewArray(dcbor.NewText(schemeName(pub.Scheme)), dcbor.NewBytes(pub.Raw))
}

func SigningPublicKeyFromCBOR(v dcbor.Value) (SigningPublicKey, error) {
	items, ok := v.AsArray()
	if !ok || len(items) != 2 {
		return SigningPublicKey{}, ErrInvalidFormat
	}
	name, ok := items[0].AsText()
	if !ok {
		return SigningPublicKey{}, ErrInvalidFormat
	}
	scheme, ok := signingSchemeFromName(name)
	if !ok {
		return SigningPublicKey{}, ErrUnknownScheme
	}
	raw, ok := items[1].AsBytes()
	if !ok {
		return SigningPublicKey{}, ErrInvalidFormat
	}
	return SigningPublicKey{Scheme: scheme, Raw: append([]byte(nil), raw...)}, nil
}

func (priv SigningPrivateKey) ToCBOR() dcbor.Value {
	return dcbor.NewArray(dcbor.NewText(schemeName(priv.Scheme)), dcbor.NewBytes(priv.Raw))
}

func SigningPrivateKeyFromCBOR(v dcbor.Value) (SigningPrivateKey, error) {
	items, ok := v.AsArray()
	if !ok || len(items) != 2 {
		return SigningPrivateKey{}, ErrInvalidFormat
	}
	name, ok := items[0].AsText()
	if !ok {
		return SigningPrivateKey{}, ErrInvalidFormat
	}
	scheme, ok := signingSchemeFromName(name)
	if !ok {
		return SigningPrivateKey{}, ErrUnknownScheme
	}
	raw, ok := items[1].AsBytes()
	if !ok {
		return SigningPrivateKey{}, ErrInvalidFormat
	}
	return SigningPrivateKey{Scheme: scheme, Raw: append([]byte(nil), raw...)}, nil
}

// Signature is a scheme-tagged signature value, the object half of a
// 'signed' assertion.
type Signature struct {
	Scheme SigningScheme
	Raw    []byte
}

// SignDigest produces a Signature over msg using priv.
func (priv SigningPrivateKey) SignDigest(msg []byte) (Signature, error) {
	raw, err := priv.Sign(msg)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Scheme: priv.Scheme, Raw: raw}, nil
}

// VerifySignature reports whether sig is a valid signature over msg under pub.
func (pub SigningPublicKey) VerifySignature(msg []byte, sig Signature) (bool, error) {
	if sig.Scheme != pub.Scheme {
		return false, ErrUnknownScheme
	}
	return pub.Verify(msg, sig.Raw)
}

// ToCBOR renders [schemeName, sigBytes], tagged as TagSignature.
func (sig Signature) ToCBOR() dcbor.Value {
	return dcbor.NewTag(dcbor.TagSignature, dcbor.NewArray(dcbor.NewText(schemeName(sig.Scheme)), dcbor.NewBytes(sig.Raw)))
}

func SignatureFromCBOR(v dcbor.Value) (Signature, error) {
	num, content, ok := v.AsTag()
	if !ok || num != dcbor.TagSignature {
		return Signature{}, ErrInvalidTag
	}
	items, ok := content.AsArray()
	if !ok || len(items) != 2 {
		return Signature{}, ErrInvalidFormat
	}
	name, ok := items[0].AsText()
	if !ok {
		return Signature{}, ErrInvalidFormat
	}
	scheme, ok := signingSchemeFromName(name)
	if !ok {
		return Signature{}, ErrUnknownScheme
	}
	raw, ok := items[1].AsBytes()
	if !ok {
		return Signature{}, ErrInvalidFormat
	}
	return Signature{Scheme: scheme, Raw: append([]byte(nil), raw...)}, nil
}
