package envelope

import (
	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/rand"
)

// EncryptSubject replaces e's subject with an Encrypted node. The AAD
// carries the pre-encryption subject digest, which DecryptSubject
// verifies on the way back out. For a non-Node envelope, "subject" means
// e itself.
func EncryptSubject(gen rand.Generator, e *Envelope, key components.SymmetricKey) (*Envelope, error) {
	subject, assertions := splitSubject(e)
	plaintext, err := subject.Bytes()
	if err != nil {
		return nil, err
	}
	nonce, err := components.NewNonce(gen)
	if err != nil {
		return nil, err
	}
	msg, err := components.Seal(components.AEADChaCha20Poly1305, key, nonce, plaintext, subject.digest[:])
	if err != nil {
		return nil, err
	}
	encrypted := &Envelope{kind: KindEncrypted, encrypted: msg, digest: subject.digest}
	if assertions == nil {
		return encrypted, nil
	}
	return buildNode(encrypted, assertions), nil
}

// DecryptSubject reverses EncryptSubject, verifying that the recovered
// plaintext's digest matches the digest carried in the AAD.
func DecryptSubject(e *Envelope, key components.SymmetricKey) (*Envelope, error) {
	subject, assertions := splitSubject(e)
	if subject.kind != KindEncrypted {
		return nil, ErrNotEncrypted
	}
	plaintext, err := components.Open(key, subject.encrypted)
	if err != nil {
		return nil, err
	}
	restored, err := FromBytes(plaintext)
	if err != nil {
		return nil, err
	}
	if restored.digest != subject.digest {
		return nil, ErrDigestMismatch
	}
	if assertions == nil {
		return restored, nil
	}
	return buildNode(restored, assertions), nil
}

func splitSubject(e *Envelope) (*Envelope, []*Envelope) {
	if e.kind == KindNode {
		return e.subject, e.assertions
	}
	return e, nil
}
