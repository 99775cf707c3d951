package doubleratchet

import (
	"bytes"
	"testing"
)

func bootstrapSessions(t *testing.T) (*Session, *Session) {
	t.Helper()

	alice, err := GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("alice identity: %v", err)
	}
	bob, err := GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("bob identity: %v", err)
	}
	bobSignedPreKey, err := GenerateIdentityKeyPair() // reuse as a keypair generator
	if err != nil {
		t.Fatalf("bob signed prekey: %v", err)
	}

	bundle, err := PublishPreKeyBundle(bob, bobSignedPreKey.Priv, 1, 42, nil, 0)
	if err != nil {
		t.Fatalf("publish bundle: %v", err)
	}

	sk, ephemeral, err := ProcessPreKeyBundle(alice, bundle)
	if err != nil {
		t.Fatalf("alice process bundle: %v", err)
	}

	aliceSession, err := NewSessionAlice(alice, sk, ephemeral, bundle.SignedPreKey)
	if err != nil {
		t.Fatalf("new alice session: %v", err)
	}

	bobSK, err := ProcessInitialMessage(bob, bobSignedPreKey.Priv, nil, alice.Pub, aliceSession.dhPub)
	if err != nil {
		t.Fatalf("bob process initial message: %v", err)
	}
	if !bytes.Equal(sk[:], bobSK[:]) {
		t.Fatalf("alice and bob derived different shared secrets")
	}

	bobSession, err := NewSessionBob(bob, bobSK, bobSignedPreKey.Priv)
	if err != nil {
		t.Fatalf("new bob session: %v", err)
	}
	return aliceSession, bobSession
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	alice, bob := bootstrapSessions(t)

	plaintext := []byte("may the wind be at your back")
	msg, err := alice.Encrypt(plaintext, []byte("ad"), bob.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	got, err := bob.Decrypt(msg, []byte("ad"), alice.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("got %q, want %q", got, plaintext)
	}
	if bob.State() != StateEstablished {
		t.Fatalf("bob state = %v, want Established", bob.State())
	}
}

func TestDHRatchetStepOnDirectionChange(t *testing.T) {
	alice, bob := bootstrapSessions(t)

	msg1, err := alice.Encrypt([]byte("hello bob"), nil, bob.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("alice encrypt: %v", err)
	}
	if _, err := bob.Decrypt(msg1, nil, alice.selfIdentity.Pub); err != nil {
		t.Fatalf("bob decrypt: %v", err)
	}

	reply, err := bob.Encrypt([]byte("hello alice"), nil, alice.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("bob encrypt: %v", err)
	}
	got, err := alice.Decrypt(reply, nil, bob.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("alice decrypt reply: %v", err)
	}
	if string(got) != "hello alice" {
		t.Fatalf("got %q", got)
	}
	if alice.dhRemote == nil || *alice.dhRemote != bob.dhPub {
		t.Fatalf("alice did not ratchet to bob's new key")
	}
}

func TestOutOfOrderDeliveryUsesSkippedKeyCache(t *testing.T) {
	alice, bob := bootstrapSessions(t)

	msg1, err := alice.Encrypt([]byte("one"), nil, bob.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("encrypt 1: %v", err)
	}
	msg2, err := alice.Encrypt([]byte("two"), nil, bob.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("encrypt 2: %v", err)
	}
	msg3, err := alice.Encrypt([]byte("three"), nil, bob.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("encrypt 3: %v", err)
	}

	got3, err := bob.Decrypt(msg3, nil, alice.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("decrypt 3 out of order: %v", err)
	}
	if string(got3) != "three" {
		t.Fatalf("got %q", got3)
	}

	got1, err := bob.Decrypt(msg1, nil, alice.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("decrypt 1 from skipped cache: %v", err)
	}
	if string(got1) != "one" {
		t.Fatalf("got %q", got1)
	}

	got2, err := bob.Decrypt(msg2, nil, alice.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("decrypt 2 from skipped cache: %v", err)
	}
	if string(got2) != "two" {
		t.Fatalf("got %q", got2)
	}
}

func TestDuplicateMessageRejected(t *testing.T) {
	alice, bob := bootstrapSessions(t)

	msg, err := alice.Encrypt([]byte("once only"), nil, bob.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := bob.Decrypt(msg, nil, alice.selfIdentity.Pub); err != nil {
		t.Fatalf("first decrypt: %v", err)
	}
	if _, err := bob.Decrypt(msg, nil, alice.selfIdentity.Pub); err != ErrDuplicateMessage {
		t.Fatalf("replayed decrypt = %v, want ErrDuplicateMessage", err)
	}
}

func TestWrongMACRejected(t *testing.T) {
	alice, bob := bootstrapSessions(t)

	msg, err := alice.Encrypt([]byte("tamper me"), nil, bob.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	msg.MAC[0] ^= 0xFF

	if _, err := bob.Decrypt(msg, nil, alice.selfIdentity.Pub); err != ErrMACMismatch {
		t.Fatalf("got %v, want ErrMACMismatch", err)
	}
}

func TestSignalMessageWireRoundTrip(t *testing.T) {
	alice, bob := bootstrapSessions(t)

	msg, err := alice.Encrypt([]byte("wire format check"), []byte("ad"), bob.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	parsed, err := SignalMessageFromBytes(raw)
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}
	if parsed.Version != msg.Version || parsed.Header != msg.Header || parsed.MAC != msg.MAC {
		t.Fatalf("round trip mismatch: got %+v, want %+v", parsed, msg)
	}
	if !bytes.Equal(parsed.Ciphertext, msg.Ciphertext) {
		t.Fatalf("ciphertext mismatch")
	}

	got, err := bob.Decrypt(parsed, []byte("ad"), alice.selfIdentity.Pub)
	if err != nil {
		t.Fatalf("decrypt reparsed message: %v", err)
	}
	if string(got) != "wire format check" {
		t.Fatalf("got %q", got)
	}
}

func TestPreKeyBundleVerificationRejectsTamperedKey(t *testing.T) {
	bob, err := GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("bob identity: %v", err)
	}
	signedPreKey, err := GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("signed prekey: %v", err)
	}
	bundle, err := PublishPreKeyBundle(bob, signedPreKey.Priv, 1, 7, nil, 0)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	other, err := GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("other identity: %v", err)
	}
	bundle.SignedPreKey = other.Pub

	alice, err := GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("alice identity: %v", err)
	}
	if _, _, err := ProcessPreKeyBundle(alice, bundle); err != ErrInvalidPreKeyBundle {
		t.Fatalf("got %v, want ErrInvalidPreKeyBundle", err)
	}
}
