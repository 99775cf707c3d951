package envelope

import "github.com/gordian-core/gordian/components"

// AddAssertion returns a new envelope with assertion attached to e's
// subject set. If e is already a Node, assertion is merged into its
// existing (deduplicated) set; otherwise e itself becomes the subject of
// a fresh Node. Adding an assertion that already exists by digest is a
// no-op beyond reconstruction (the resulting digest is identical either
// way, per spec.md §4.2's "idempotent if the assertion already exists").
func (e *Envelope) AddAssertion(assertion *Envelope) *Envelope {
	if e.kind == KindNode {
		merged := append(append([]*Envelope(nil), e.assertions...), assertion)
		return buildNode(e.subject, dedupeAssertions(merged))
	}
	return buildNode(e, dedupeAssertions([]*Envelope{assertion}))
}

// AddAssertions attaches several assertions at once.
func (e *Envelope) AddAssertions(assertions ...*Envelope) *Envelope {
	out := e
	for _, a := range assertions {
		out = out.AddAssertion(a)
	}
	return out
}

// HasAssertion reports whether an assertion with the given digest is
// present directly on e (e must be a Node).
func (e *Envelope) HasAssertion(d components.Digest) bool {
	if e.kind != KindNode {
		return false
	}
	for _, a := range e.assertions {
		if a.digest == d {
			return true
		}
	}
	return false
}

// AssertionsWithPredicate returns every assertion on e whose predicate's
// digest matches pred's digest.
func (e *Envelope) AssertionsWithPredicate(pred *Envelope) []*Envelope {
	if e.kind != KindNode {
		return nil
	}
	var out []*Envelope
	for _, a := range e.assertions {
		if a.kind == KindAssertion && a.pred.digest == pred.digest {
			out = append(out, a)
		}
	}
	return out
}
