package envelope

import "github.com/gordian-core/gordian/components"

// Elide replaces every subtree in e whose digest is in target with
// Elided(digest). The root digest is unchanged: an elided child carries
// exactly the digest of what it replaces, and every parent's digest is
// recomputed from its children's digests, so the substitution is
// invisible to anything checking only digests (spec.md §4.2's
// digest-preservation requirement). A digest not present anywhere in e is
// a no-op.
func (e *Envelope) Elide(target map[components.Digest]bool) *Envelope {
	if target[e.digest] {
		return NewElided(e.digest)
	}
	switch e.kind {
	case KindNode:
		newSubject := e.subject.Elide(target)
		newAssertions := make([]*Envelope, len(e.assertions))
		for i, a := range e.assertions {
			newAssertions[i] = a.Elide(target)
		}
		out := buildNode(newSubject, newAssertions)
		out.digest = e.digest
		return out
	case KindAssertion:
		newPred := e.pred.Elide(target)
		newObj := e.obj.Elide(target)
		out := NewAssertion(newPred, newObj)
		out.digest = e.digest
		return out
	case KindWrapped:
		newInner := e.inner.Elide(target)
		out := Wrap(newInner)
		out.digest = e.digest
		return out
	default:
		// Leaf, KnownValue, Encrypted, Compressed, Elided: opaque, no
		// substructure to recurse into unless the digest check above fired.
		return e
	}
}

// AllDigests collects every digest reachable from e, the set Elide
// accepts as its target.
func (e *Envelope) AllDigests() map[components.Digest]bool {
	out := map[components.Digest]bool{}
	e.collectDigests(out)
	return out
}

func (e *Envelope) collectDigests(out map[components.Digest]bool) {
	out[e.digest] = true
	switch e.kind {
	case KindNode:
		e.subject.collectDigests(out)
		for _, a := range e.assertions {
			a.collectDigests(out)
		}
	case KindAssertion:
		e.pred.collectDigests(out)
		e.obj.collectDigests(out)
	case KindWrapped:
		e.inner.collectDigests(out)
	}
}
