// Package envelope implements the Gordian Envelope: a content-addressed,
// Merkle-like semantic graph with assertions, elision, in-place
// encryption and compression, signing, and hybrid recipient encryption.
// Every variant is a sum type distinguished by an explicit Kind
// discriminator — there is no dynamic dispatch between variants, matching
// the "tagged unions over dynamic dispatch" shape the rest of this module
// uses for ratchet messages and dCBOR values.
package envelope

import (
	"crypto/sha256"
	"sort"

	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/dcbor"
)

type Kind int

const (
	KindLeaf Kind = iota
	KindNode
	KindAssertion
	KindWrapped
	KindKnownValue
	KindEncrypted
	KindCompressed
	KindElided
)

// Envelope is an immutable node in the content-addressed DAG. Every
// constructor computes and caches digest at build time so Digest() is
// O(1) after construction; mutating operations (AddAssertion, Elide, ...)
// always return a new Envelope rather than mutating in place.
type Envelope struct {
	kind   Kind
	digest components.Digest

	leafValue  dcbor.Value // KindLeaf
	subject    *Envelope   // KindNode
	assertions []*Envelope // KindNode, sorted and deduplicated by digest

	pred *Envelope // KindAssertion
	obj  *Envelope // KindAssertion

	inner *Envelope // KindWrapped

	knownValue uint64 // KindKnownValue

	encrypted components.EncryptedMessage // KindEncrypted; AAD carries the pre-encryption digest
	compressed []byte                     // KindCompressed: digest || DEFLATE(original cbor)
}

func (e *Envelope) Kind() Kind                 { return e.kind }
func (e *Envelope) Digest() components.Digest  { return e.digest }

// NewLeaf wraps a dCBOR value. digest = SHA-256(dCBOR bytes of value).
func NewLeaf(v dcbor.Value) (*Envelope, error) {
	b, err := dcbor.Encode(v)
	if err != nil {
		return nil, err
	}
	return &Envelope{kind: KindLeaf, leafValue: v, digest: components.DigestOf(b)}, nil
}

// NewAssertion builds a predicate/object pair. digest = SHA-256(pred.digest || obj.digest).
func NewAssertion(pred, obj *Envelope) *Envelope {
	h := sha256.New()
	h.Write(pred.digest[:])
	h.Write(obj.digest[:])
	var d components.Digest
	copy(d[:], h.Sum(nil))
	return &Envelope{kind: KindAssertion, pred: pred, obj: obj, digest: d}
}

// NewKnownValue wraps a registered 64-bit known-value token. digest =
// SHA-256 of its 8-byte big-endian encoding, so a known value has the
// same kind of stable content identity as a leaf.
func NewKnownValue(v KnownValue) *Envelope {
	var buf [8]byte
	n := uint64(v)
	for i := 7; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	return &Envelope{kind: KindKnownValue, knownValue: uint64(v), digest: components.DigestOf(buf[:])}
}

// NewElided constructs a placeholder carrying a digest that was computed
// elsewhere (by Elide, or by a peer communicating a proof).
func NewElided(d components.Digest) *Envelope {
	return &Envelope{kind: KindElided, digest: d}
}

// NewNode builds subject + assertions, deduplicating and sorting
// assertions by digest (assertions are a *set by digest*, per spec.md
// §3). digest = SHA-256(subject.digest || sort(assertion digests)...).
func NewNode(subject *Envelope, assertions ...*Envelope) *Envelope {
	deduped := dedupeAssertions(assertions)
	return buildNode(subject, deduped)
}

func buildNode(subject *Envelope, assertions []*Envelope) *Envelope {
	h := sha256.New()
	h.Write(subject.digest[:])
	for _, a := range assertions {
		h.Write(a.digest[:])
	}
	var d components.Digest
	copy(d[:], h.Sum(nil))
	return &Envelope{kind: KindNode, subject: subject, assertions: assertions, digest: d}
}

func dedupeAssertions(assertions []*Envelope) []*Envelope {
	sorted := append([]*Envelope(nil), assertions...)
	sort.Slice(sorted, func(i, j int) bool {
		return digestLess(sorted[i].digest, sorted[j].digest)
	})
	out := make([]*Envelope, 0, len(sorted))
	for i, a := range sorted {
		if i > 0 && a.digest == sorted[i-1].digest {
			continue
		}
		out = append(out, a)
	}
	return out
}

func digestLess(a, b components.Digest) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Subject returns the envelope's subject for Node, Assertion (its
// predicate is not a "subject" in this sense — use Predicate/Object), and
// Wrapped (its inner envelope). Leaf/KnownValue/Encrypted/Compressed/
// Elided have no substructure and return (nil, false).
func (e *Envelope) Subject() (*Envelope, bool) {
	switch e.kind {
	case KindNode:
		return e.subject, true
	case KindWrapped:
		return e.inner, true
	default:
		return nil, false
	}
}

func (e *Envelope) Assertions() []*Envelope {
	if e.kind != KindNode {
		return nil
	}
	return e.assertions
}

func (e *Envelope) Predicate() (*Envelope, bool) {
	if e.kind != KindAssertion {
		return nil, false
	}
	return e.pred, true
}

func (e *Envelope) Object() (*Envelope, bool) {
	if e.kind != KindAssertion {
		return nil, false
	}
	return e.obj, true
}

func (e *Envelope) LeafValue() (dcbor.Value, bool) {
	if e.kind != KindLeaf {
		return dcbor.Value{}, false
	}
	return e.leafValue, true
}

func (e *Envelope) KnownValue() (KnownValue, bool) {
	if e.kind != KindKnownValue {
		return 0, false
	}
	return KnownValue(e.knownValue), true
}
