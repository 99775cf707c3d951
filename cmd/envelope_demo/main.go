// Command envelope_demo builds, signs, and selectively encrypts a small
// envelope, then prints its content-addressed digest. It exists to give
// the envelope/components packages a runnable example the way the
// teacher's cmd/ binaries exercised its ratchet.
package main

import (
	"fmt"
	"log"

	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/envelope"
	"github.com/gordian-core/gordian/rand"
)

func main() {
	gen := rand.Secure

	priv, pub, err := components.GenerateSigningKeyPair(gen, components.SchemeSchnorr)
	if err != nil {
		log.Fatalf("generate signing key: %v", err)
	}

	subject, err := envelope.NewLeaf(dcbor.NewText("Know Thyself"))
	if err != nil {
		log.Fatalf("new leaf: %v", err)
	}
	note := envelope.NewNode(subject, envelope.NewAssertion(
		envelope.NewKnownValue(envelope.KnownIsA),
		mustLeaf(dcbor.NewText("maxim inscribed at the Temple of Apollo at Delphi")),
	))

	signed, err := note.Sign(priv)
	if err != nil {
		log.Fatalf("sign: %v", err)
	}

	ok, err := signed.Verify(pub)
	if err != nil {
		log.Fatalf("verify: %v", err)
	}
	if !ok {
		log.Fatalf("signature did not verify")
	}

	key, err := components.NewSymmetricKey(gen)
	if err != nil {
		log.Fatalf("new symmetric key: %v", err)
	}
	encrypted, err := envelope.EncryptSubject(gen, signed, key)
	if err != nil {
		log.Fatalf("encrypt subject: %v", err)
	}

	ur, err := encrypted.Digest().UR()
	if err != nil {
		log.Fatalf("digest ur: %v", err)
	}
	fmt.Printf("digest: %s\n", ur)

	decrypted, err := envelope.DecryptSubject(encrypted, key)
	if err != nil {
		log.Fatalf("decrypt subject: %v", err)
	}
	if decrypted.Digest() != signed.Digest() {
		log.Fatalf("decrypted envelope digest does not match the original")
	}
	fmt.Println("round-trip verified")
}

func mustLeaf(v dcbor.Value) *envelope.Envelope {
	e, err := envelope.NewLeaf(v)
	if err != nil {
		log.Fatalf("new leaf: %v", err)
	}
	return e
}
