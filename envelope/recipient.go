package envelope

import (
	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/rand"
)

// AddRecipient attaches a 'hasRecipient' assertion to e carrying a
// SealedMessage that lets pub's holder recover contentKey — the symmetric
// key e's subject was (or will be) encrypted under via EncryptSubject.
// Multiple recipients are added by calling AddRecipient once per public
// key; each produces its own 'hasRecipient' assertion.
func AddRecipient(gen rand.Generator, e *Envelope, pub components.KEMPublicKey, contentKey components.SymmetricKey) (*Envelope, error) {
	sealed, err := components.SealKeyForRecipient(gen, pub, contentKey)
	if err != nil {
		return nil, err
	}
	obj, err := NewLeaf(sealed.ToCBOR())
	if err != nil {
		return nil, err
	}
	pred := NewKnownValue(KnownHasRecipient)
	return e.AddAssertion(NewAssertion(pred, obj)), nil
}

// DecryptToRecipient scans e's 'hasRecipient' assertions for one that
// opens under priv, recovering the content symmetric key used to encrypt
// e's subject.
func DecryptToRecipient(e *Envelope, priv components.KEMPrivateKey) (components.SymmetricKey, error) {
	pred := NewKnownValue(KnownHasRecipient)
	for _, a := range e.AssertionsWithPredicate(pred) {
		v, ok := a.obj.LeafValue()
		if !ok {
			continue
		}
		sealed, err := components.SealedMessageFromCBOR(v)
		if err != nil {
			continue
		}
		key, err := components.OpenSealedMessage(priv, sealed)
		if err == nil {
			return key, nil
		}
	}
	return components.SymmetricKey{}, components.ErrInvalidKey
}
