// Package components provides the CBOR-tagged crypto value types that sit
// between crypto-primitives and envelope: content digests, opaque
// identifiers, symmetric keys, scheme-tagged asymmetric keys, and the
// sealed-message/private-key-base constructions hybrid encryption and key
// derivation build on. Digest, Nonce, Salt, ARID, XID, SymmetricKey and
// Signature encode as tagged dCBOR; the scheme-tagged key types,
// EncryptedMessage, SealedMessage and PrivateKeyBase encode as untagged
// dCBOR arrays or byte strings. Only Digest, ARID and XID render to a UR
// textual form, and only Digest parses back from one. No type here has a
// JSON form.
package components

import (
	"crypto/sha256"
	"errors"

	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/uniformresource"
)

var (
	ErrInvalidDigestSize = errors.New("components: digest must be 32 bytes")
)

// Digest is a 32-byte SHA-256 content hash. It is the unit of identity
// every envelope variant's digest computation builds on.
type Digest [32]byte

// DigestOf hashes data directly (the canonical dCBOR bytes of a leaf, the
// concatenation of child digests for a node, etc. — callers decide what
// bytes to hash; Digest itself is just the 32-byte result type).
func DigestOf(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

func (d Digest) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, d[:])
	return out
}

func DigestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != 32 {
		return d, ErrInvalidDigestSize
	}
	copy(d[:], b)
	return d, nil
}

func (d Digest) Equal(other Digest) bool {
	return d == other
}

// ToCBOR wraps the digest bytes in the registered digest tag.
func (d Digest) ToCBOR() dcbor.Value {
	return dcbor.NewTag(dcbor.TagDigest, dcbor.NewBytes(d[:]))
}

// DigestFromCBOR unwraps a tagged digest value.
func DigestFromCBOR(v dcbor.Value) (Digest, error) {
	num, content, ok := v.AsTag()
	if !ok || num != dcbor.TagDigest {
		return Digest{}, ErrInvalidTag
	}
	b, ok := content.AsBytes()
	if !ok {
		return Digest{}, ErrInvalidDigestSize
	}
	return DigestFromBytes(b)
}

// UR renders the digest as ur:digest/<bytewords>.
func (d Digest) UR() (string, error) {
	encoded, err := dcbor.Encode(d.ToCBOR())
	if err != nil {
		return "", err
	}
	return uniformresource.Encode("digest", encoded)
}

func DigestFromUR(s string) (Digest, error) {
	ur, err := uniformresource.Decode(s)
	if err != nil {
		return Digest{}, err
	}
	if ur.Type != "digest" {
		return Digest{}, ErrInvalidURType
	}
	v, err := dcbor.Decode(ur.CBOR)
	if err != nil {
		return Digest{}, err
	}
	return DigestFromCBOR(v)
}
