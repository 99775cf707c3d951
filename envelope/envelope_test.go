package envelope_test

import (
	"bytes"
	"testing"

	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/envelope"
	"github.com/gordian-core/gordian/rand"
)

func TestLeafDigestAndWireForm(t *testing.T) {
	e, err := envelope.NewLeaf(dcbor.NewUint(42))
	if err != nil {
		t.Fatalf("NewLeaf: %v", err)
	}
	b, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := []byte{0xD8, 0xC8, 0x18, 0x2A}
	if !bytes.Equal(b, want) {
		t.Fatalf("wire form = % X, want % X", b, want)
	}
	back, err := envelope.FromBytes(b)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if back.Digest() != e.Digest() {
		t.Fatalf("digest mismatch after round trip")
	}
}

func TestNodeAssertionDigestIsOrderIndependent(t *testing.T) {
	subject, _ := envelope.NewLeaf(dcbor.NewText("Alice"))
	knows, _ := envelope.NewLeaf(dcbor.NewText("knows"))
	bob, _ := envelope.NewLeaf(dcbor.NewText("Bob"))
	carol, _ := envelope.NewLeaf(dcbor.NewText("Carol"))

	a1 := envelope.NewAssertion(knows, bob)
	a2 := envelope.NewAssertion(knows, carol)

	n1 := envelope.NewNode(subject, a1, a2)
	n2 := envelope.NewNode(subject, a2, a1)
	if n1.Digest() != n2.Digest() {
		t.Fatalf("node digest depends on assertion insertion order")
	}
}

func TestAddAssertionIsIdempotent(t *testing.T) {
	subject, _ := envelope.NewLeaf(dcbor.NewText("Alice"))
	pred, _ := envelope.NewLeaf(dcbor.NewText("knows"))
	obj, _ := envelope.NewLeaf(dcbor.NewText("Bob"))
	assertion := envelope.NewAssertion(pred, obj)

	once := subject.AddAssertion(assertion)
	twice := once.AddAssertion(assertion)
	if once.Digest() != twice.Digest() {
		t.Fatalf("re-adding an identical assertion changed the digest")
	}
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	inner, _ := envelope.NewLeaf(dcbor.NewUint(7))
	wrapped := envelope.Wrap(inner)
	if wrapped.Digest() == inner.Digest() {
		t.Fatalf("wrap did not introduce a new digest boundary")
	}
	back, err := envelope.Unwrap(wrapped)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if back.Digest() != inner.Digest() {
		t.Fatalf("unwrap did not recover the original digest")
	}
}

func TestElidePreservesRootDigest(t *testing.T) {
	subject, _ := envelope.NewLeaf(dcbor.NewText("Alice"))
	pred, _ := envelope.NewLeaf(dcbor.NewText("knows"))
	obj, _ := envelope.NewLeaf(dcbor.NewText("Bob"))
	node := subject.AddAssertion(envelope.NewAssertion(pred, obj))

	target := map[components.Digest]bool{obj.Digest(): true}
	elided := node.Elide(target)
	if elided.Digest() != node.Digest() {
		t.Fatalf("elision changed the root digest")
	}

	assertions := elided.AssertionsWithPredicate(pred)
	if len(assertions) != 1 {
		t.Fatalf("expected 1 assertion, got %d", len(assertions))
	}
	obj, ok := assertions[0].Object()
	if !ok || obj.Kind() != envelope.KindElided {
		t.Fatalf("target object was not elided")
	}
}

func TestEncryptDecryptSubjectRoundTrip(t *testing.T) {
	subject, _ := envelope.NewLeaf(dcbor.NewText("a secret"))
	pred, _ := envelope.NewLeaf(dcbor.NewText("note"))
	obj, _ := envelope.NewLeaf(dcbor.NewUint(1))
	e := subject.AddAssertion(envelope.NewAssertion(pred, obj))

	key, err := components.NewSymmetricKey(rand.Secure)
	if err != nil {
		t.Fatalf("NewSymmetricKey: %v", err)
	}
	encrypted, err := envelope.EncryptSubject(rand.Secure, e, key)
	if err != nil {
		t.Fatalf("EncryptSubject: %v", err)
	}
	if encrypted.Digest() != e.Digest() {
		t.Fatalf("encryption changed the envelope's digest")
	}

	decrypted, err := envelope.DecryptSubject(encrypted, key)
	if err != nil {
		t.Fatalf("DecryptSubject: %v", err)
	}
	if decrypted.Digest() != e.Digest() {
		t.Fatalf("decryption did not recover the original digest")
	}

	wrongKey, _ := components.NewSymmetricKey(rand.Secure)
	if _, err := envelope.DecryptSubject(encrypted, wrongKey); err == nil {
		t.Fatalf("expected decryption under the wrong key to fail")
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	subject, _ := envelope.NewLeaf(dcbor.NewText("compress me compress me compress me"))
	compressed, err := envelope.Compress(subject)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if compressed.Digest() != subject.Digest() {
		t.Fatalf("compression changed the digest")
	}
	restored, err := envelope.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if restored.Digest() != subject.Digest() {
		t.Fatalf("decompression did not recover the original digest")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, pub, err := components.GenerateSigningKeyPair(rand.Secure, components.SchemeEd25519)
	if err != nil {
		t.Fatalf("GenerateSigningKeyPair: %v", err)
	}
	subject, _ := envelope.NewLeaf(dcbor.NewText("Alice knows Bob"))
	signed, err := subject.Sign(priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	ok, err := signed.Verify(pub)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected signature to verify")
	}

	otherPriv, otherPub, _ := components.GenerateSigningKeyPair(rand.Secure, components.SchemeEd25519)
	_ = otherPriv
	if ok, _ := signed.Verify(otherPub); ok {
		t.Fatalf("expected signature to fail against an unrelated key")
	}
}

func TestSignTwiceProducesTwoIndependentSignatures(t *testing.T) {
	priv1, pub1, _ := components.GenerateSigningKeyPair(rand.Secure, components.SchemeEd25519)
	priv2, pub2, _ := components.GenerateSigningKeyPair(rand.Secure, components.SchemeEd25519)

	subject, _ := envelope.NewLeaf(dcbor.NewText("multi-signed"))
	signed, err := subject.Sign(priv1)
	if err != nil {
		t.Fatalf("Sign (first): %v", err)
	}
	signed, err = signed.Sign(priv2)
	if err != nil {
		t.Fatalf("Sign (second): %v", err)
	}
	if len(signed.Signatures()) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(signed.Signatures()))
	}
	if ok, _ := signed.Verify(pub1); !ok {
		t.Fatalf("expected first signer's key to verify")
	}
	if ok, _ := signed.Verify(pub2); !ok {
		t.Fatalf("expected second signer's key to verify")
	}
}

func TestRecipientRoundTrip(t *testing.T) {
	priv, pub, err := components.GenerateKEMKeyPair(rand.Secure, components.KEMX25519)
	if err != nil {
		t.Fatalf("GenerateKEMKeyPair: %v", err)
	}
	contentKey, err := components.NewSymmetricKey(rand.Secure)
	if err != nil {
		t.Fatalf("NewSymmetricKey: %v", err)
	}
	subject, _ := envelope.NewLeaf(dcbor.NewText("for your eyes only"))
	withRecipient, err := envelope.AddRecipient(rand.Secure, subject, pub, contentKey)
	if err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}
	recovered, err := envelope.DecryptToRecipient(withRecipient, priv)
	if err != nil {
		t.Fatalf("DecryptToRecipient: %v", err)
	}
	if recovered != contentKey {
		t.Fatalf("recovered content key does not match original")
	}
}

func TestAttachmentRoundTrip(t *testing.T) {
	subject, _ := envelope.NewLeaf(dcbor.NewText("host"))
	payload, _ := envelope.NewLeaf(dcbor.NewText("payload bytes"))
	withAttachment, err := subject.AddAttachment(payload, "com.example.app", "https://example.com/schema/v1")
	if err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}
	attachments := withAttachment.Attachments()
	if len(attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(attachments))
	}
	matched := withAttachment.AttachmentsWithVendor("com.example.app")
	if len(matched) != 1 {
		t.Fatalf("expected vendor filter to match, got %d", len(matched))
	}
	if len(withAttachment.AttachmentsWithVendor("com.other")) != 0 {
		t.Fatalf("expected vendor filter to reject a non-matching vendor")
	}
}
