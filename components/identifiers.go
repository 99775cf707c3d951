package components

import (
	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/rand"
	"github.com/gordian-core/gordian/uniformresource"
)

// Nonce is a 12-byte AEAD nonce.
type Nonce [12]byte

func NewNonce(gen rand.Generator) (Nonce, error) {
	var n Nonce
	if _, err := gen.Bytes(n[:]); err != nil {
		return Nonce{}, err
	}
	return n, nil
}

func (n Nonce) ToCBOR() dcbor.Value {
	return dcbor.NewTag(dcbor.TagNonce, dcbor.NewBytes(n[:]))
}

func NonceFromCBOR(v dcbor.Value) (Nonce, error) {
	var n Nonce
	num, content, ok := v.AsTag()
	if !ok || num != dcbor.TagNonce {
		return n, ErrInvalidTag
	}
	b, ok := content.AsBytes()
	if !ok || len(b) != 12 {
		return n, ErrInvalidSize
	}
	copy(n[:], b)
	return n, nil
}

// Salt is an opaque byte string of at least 8 bytes, used as HKDF salt
// material for PrivateKeyBase derivation.
type Salt []byte

const MinSaltLen = 8

func NewSalt(gen rand.Generator, length int) (Salt, error) {
	if length < MinSaltLen {
		return nil, ErrInvalidSize
	}
	buf := make([]byte, length)
	if _, err := gen.Bytes(buf); err != nil {
		return nil, err
	}
	return Salt(buf), nil
}

func (s Salt) ToCBOR() dcbor.Value {
	return dcbor.NewTag(dcbor.TagSalt, dcbor.NewBytes(s))
}

func SaltFromCBOR(v dcbor.Value) (Salt, error) {
	num, content, ok := v.AsTag()
	if !ok || num != dcbor.TagSalt {
		return nil, ErrInvalidTag
	}
	b, ok := content.AsBytes()
	if !ok || len(b) < MinSaltLen {
		return nil, ErrInvalidSize
	}
	return Salt(append([]byte(nil), b...)), nil
}

// ARID is a 32-byte randomly generated reference identifier. Unlike
// Digest, it is not derived from content.
type ARID [32]byte

func NewARID(gen rand.Generator) (ARID, error) {
	var a ARID
	if _, err := gen.Bytes(a[:]); err != nil {
		return ARID{}, err
	}
	return a, nil
}

func (a ARID) ToCBOR() dcbor.Value {
	return dcbor.NewTag(dcbor.TagARID, dcbor.NewBytes(a[:]))
}

func ARIDFromCBOR(v dcbor.Value) (ARID, error) {
	var a ARID
	num, content, ok := v.AsTag()
	if !ok || num != dcbor.TagARID {
		return a, ErrInvalidTag
	}
	b, ok := content.AsBytes()
	if !ok || len(b) != 32 {
		return a, ErrInvalidSize
	}
	copy(a[:], b)
	return a, nil
}

func (a ARID) UR() (string, error) {
	encoded, err := dcbor.Encode(a.ToCBOR())
	if err != nil {
		return "", err
	}
	return uniformresource.Encode("arid", encoded)
}

// XID is a 32-byte randomly generated self-describing extensible
// identifier, structurally identical to ARID but tagged distinctly.
type XID [32]byte

func NewXID(gen rand.Generator) (XID, error) {
	var x XID
	if _, err := gen.Bytes(x[:]); err != nil {
		return XID{}, err
	}
	return x, nil
}

func (x XID) ToCBOR() dcbor.Value {
	return dcbor.NewTag(dcbor.TagXID, dcbor.NewBytes(x[:]))
}

func XIDFromCBOR(v dcbor.Value) (XID, error) {
	var x XID
	num, content, ok := v.AsTag()
	if !ok || num != dcbor.TagXID {
		return x, ErrInvalidTag
	}
	b, ok := content.AsBytes()
	if !ok || len(b) != 32 {
		return x, ErrInvalidSize
	}
	copy(x[:], b)
	return x, nil
}

func (x XID) UR() (string, error) {
	encoded, err := dcbor.Encode(x.ToCBOR())
	if err != nil {
		return "", err
	}
	return uniformresource.Encode("xid", encoded)
}
