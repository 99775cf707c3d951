package envelope

import "github.com/gordian-core/gordian/components"

// Sign attaches a 'signed' assertion to e whose object is a Signature over
// e's subject's digest (not e's CBOR bytes, so the signature survives any
// re-encoding that preserves digests, e.g. re-ordering a map that dCBOR
// would already have canonicalized anyway). The subject's digest, not e's
// own digest, is what gets signed: AddAssertion never rewraps the subject
// as assertions accumulate, so every 'signed' assertion — the first one or
// the fifth — signs the same bare subject Verify checks against. Calling
// Sign twice with different key material or a different nonce produces two
// distinct 'signed' assertions, both valid; this is a Node's normal
// multi-assertion behavior, not special-cased here.
func (e *Envelope) Sign(priv components.SigningPrivateKey) (*Envelope, error) {
	subject, _ := splitSubject(e)
	sig, err := priv.SignDigest(subject.digest[:])
	if err != nil {
		return nil, err
	}
	obj, err := NewLeaf(sig.ToCBOR())
	if err != nil {
		return nil, err
	}
	pred := NewKnownValue(KnownSigned)
	return e.AddAssertion(NewAssertion(pred, obj)), nil
}

// Verify reports whether e carries at least one 'signed' assertion whose
// signature validates against pub and e's subject's digest (e's own digest
// if e is not itself a Node, since then e is its own subject) — the same
// digest Sign signs.
func (e *Envelope) Verify(pub components.SigningPublicKey) (bool, error) {
	subject, _ := splitSubject(e)
	sigs := e.Signatures()
	if len(sigs) == 0 {
		return false, ErrNoSignatures
	}
	for _, sig := range sigs {
		ok, err := pub.VerifySignature(subject.digest[:], sig)
		if err == nil && ok {
			return true, nil
		}
	}
	return false, nil
}

// VerifyAny reports whether e validates against any of the given public
// keys.
func (e *Envelope) VerifyAny(pubs []components.SigningPublicKey) (bool, error) {
	sigs := e.Signatures()
	if len(sigs) == 0 {
		return false, ErrNoSignatures
	}
	for _, pub := range pubs {
		if ok, err := e.Verify(pub); err == nil && ok {
			return true, nil
		}
	}
	return false, nil
}

// Signatures collects every Signature carried in a 'signed' assertion on
// e, skipping any assertion whose object isn't a well-formed Signature.
func (e *Envelope) Signatures() []components.Signature {
	pred := NewKnownValue(KnownSigned)
	var out []components.Signature
	for _, a := range e.AssertionsWithPredicate(pred) {
		v, ok := a.obj.LeafValue()
		if !ok {
			continue
		}
		sig, err := components.SignatureFromCBOR(v)
		if err != nil {
			continue
		}
		out = append(out, sig)
	}
	return out
}
