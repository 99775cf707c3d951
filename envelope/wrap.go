package envelope

import "crypto/sha256"

var wrapDomainTag = []byte("wrap")

// Wrap introduces a new digest boundary: digest = SHA-256("wrap" ||
// inner.digest). This lets a caller sign or encrypt an envelope's exact
// current digest without that digest changing as its own subject/
// assertions evolve later.
func Wrap(inner *Envelope) *Envelope {
	h := sha256.New()
	h.Write(wrapDomainTag)
	h.Write(inner.digest[:])
	var d [32]byte
	copy(d[:], h.Sum(nil))
	return &Envelope{kind: KindWrapped, inner: inner, digest: d}
}

// Unwrap removes a digest boundary previously introduced by Wrap.
func Unwrap(e *Envelope) (*Envelope, error) {
	if e.kind != KindWrapped {
		return nil, ErrNotWrapped
	}
	return e.inner, nil
}
