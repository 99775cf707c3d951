package envelope

import (
	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/dcbor"
)

// These sub-tags distinguish the structural envelope cases from a Leaf
// once content has already been unwrapped from the outer TagEnvelope:
// a Leaf's wire form is exactly tag(200, value) (so E1's "tag 200 around
// uint 42" round-trips byte for byte), while every other case nests a
// second tag carrying a case discriminator plus payload. The numbers are
// chosen well outside the published tag registry range (spec.md §6) so
// they never collide with a registered tag a legitimate leaf value might
// itself carry.
const (
	caseNode       = 90001
	caseAssertion  = 90002
	caseWrapped    = 90003
	caseKnownValue = 90004
	caseElided     = 90005
	caseEncrypted  = 90006
	caseCompressed = 90007
)

var ErrInvalidEnvelopeCBOR = dcbor.ErrNotCanonical

// ToCBOR renders e in the wire form FromCBOR parses back.
func (e *Envelope) ToCBOR() dcbor.Value {
	switch e.kind {
	case KindLeaf:
		return dcbor.NewTag(dcbor.TagEnvelope, e.leafValue)
	case KindNode:
		items := make([]dcbor.Value, 0, len(e.assertions)+1)
		items = append(items, e.subject.ToCBOR())
		for _, a := range e.assertions {
			items = append(items, a.ToCBOR())
		}
		return dcbor.NewTag(dcbor.TagEnvelope, dcbor.NewTag(caseNode, dcbor.NewArray(items...)))
	case KindAssertion:
		return dcbor.NewTag(dcbor.TagEnvelope, dcbor.NewTag(caseAssertion, dcbor.NewArray(e.pred.ToCBOR(), e.obj.ToCBOR())))
	case KindWrapped:
		return dcbor.NewTag(dcbor.TagEnvelope, dcbor.NewTag(caseWrapped, e.inner.ToCBOR()))
	case KindKnownValue:
		return dcbor.NewTag(dcbor.TagEnvelope, dcbor.NewTag(caseKnownValue, dcbor.NewUint(e.knownValue)))
	case KindElided:
		return dcbor.NewTag(dcbor.TagEnvelope, dcbor.NewTag(caseElided, dcbor.NewBytes(e.digest[:])))
	case KindEncrypted:
		return dcbor.NewTag(dcbor.TagEnvelope, dcbor.NewTag(caseEncrypted, e.encrypted.ToCBOR()))
	case KindCompressed:
		return dcbor.NewTag(dcbor.TagEnvelope, dcbor.NewTag(caseCompressed, dcbor.NewBytes(e.compressed)))
	default:
		return dcbor.NewNull()
	}
}

// FromCBOR parses the wire form produced by ToCBOR, reconstructing the
// Envelope tree via the same constructors ToCBOR's producer used — digest
// recomputation is therefore purely structural, except for the Elided,
// Encrypted and Compressed cases, whose digest is read from the payload
// carried on the wire.
func FromCBOR(v dcbor.Value) (*Envelope, error) {
	num, content, ok := v.AsTag()
	if !ok || num != dcbor.TagEnvelope {
		return nil, ErrInvalidEnvelopeCBOR
	}
	caseNum, caseContent, isCase := content.AsTag()
	if !isCase {
		return NewLeaf(content)
	}
	switch caseNum {
	case caseNode:
		items, ok := caseContent.AsArray()
		if !ok || len(items) == 0 {
			return nil, ErrInvalidEnvelopeCBOR
		}
		subject, err := FromCBOR(items[0])
		if err != nil {
			return nil, err
		}
		assertions := make([]*Envelope, 0, len(items)-1)
		for _, item := range items[1:] {
			a, err := FromCBOR(item)
			if err != nil {
				return nil, err
			}
			assertions = append(assertions, a)
		}
		return NewNode(subject, assertions...), nil
	case caseAssertion:
		items, ok := caseContent.AsArray()
		if !ok || len(items) != 2 {
			return nil, ErrInvalidEnvelopeCBOR
		}
		pred, err := FromCBOR(items[0])
		if err != nil {
			return nil, err
		}
		obj, err := FromCBOR(items[1])
		if err != nil {
			return nil, err
		}
		return NewAssertion(pred, obj), nil
	case caseWrapped:
		inner, err := FromCBOR(caseContent)
		if err != nil {
			return nil, err
		}
		return Wrap(inner), nil
	case caseKnownValue:
		n, ok := caseContent.AsUint()
		if !ok {
			return nil, ErrInvalidEnvelopeCBOR
		}
		return NewKnownValue(KnownValue(n)), nil
	case caseElided:
		b, ok := caseContent.AsBytes()
		if !ok || len(b) != 32 {
			return nil, ErrInvalidEnvelopeCBOR
		}
		d, err := components.DigestFromBytes(b)
		if err != nil {
			return nil, err
		}
		return NewElided(d), nil
	case caseEncrypted:
		msg, err := components.EncryptedMessageFromCBOR(caseContent)
		if err != nil {
			return nil, err
		}
		d, err := components.DigestFromBytes(msg.AAD)
		if err != nil {
			return nil, err
		}
		return &Envelope{kind: KindEncrypted, encrypted: msg, digest: d}, nil
	case caseCompressed:
		b, ok := caseContent.AsBytes()
		if !ok || len(b) < 32 {
			return nil, ErrInvalidEnvelopeCBOR
		}
		d, err := components.DigestFromBytes(b[:32])
		if err != nil {
			return nil, err
		}
		return &Envelope{kind: KindCompressed, compressed: b, digest: d}, nil
	default:
		return NewLeaf(content)
	}
}

// Bytes encodes the envelope to its canonical dCBOR wire form.
func (e *Envelope) Bytes() ([]byte, error) {
	return dcbor.Encode(e.ToCBOR())
}

// FromBytes decodes an envelope previously produced by Bytes.
func FromBytes(b []byte) (*Envelope, error) {
	v, err := dcbor.Decode(b)
	if err != nil {
		return nil, err
	}
	return FromCBOR(v)
}
