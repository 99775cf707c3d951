package tripleratchet

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/crypto/hkdf"
	"github.com/gordian-core/gordian/rand"
	"github.com/gordian-core/gordian/ratchet/doubleratchet"
	"github.com/gordian-core/gordian/ratchet/spqr"
)

type bootstrapped struct {
	alice, bob                 *Session
	aliceIdentity, bobIdentity doubleratchet.IdentityKeyPair
}

func bootstrap(t *testing.T) *bootstrapped {
	t.Helper()
	gen := rand.NewDeterministic(7)

	alice, err := doubleratchet.GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("alice identity: %v", err)
	}
	bob, err := doubleratchet.GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("bob identity: %v", err)
	}
	signedPreKey, err := doubleratchet.GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("signed prekey: %v", err)
	}
	kyberPriv, kyberPub, err := components.GenerateKEMKeyPair(gen, components.KEMMLKEM768)
	if err != nil {
		t.Fatalf("kyber keypair: %v", err)
	}

	bundle, err := PublishPreKeyBundle(bob, signedPreKey.Priv, 1, kyberPub, 1, 99, nil, 0)
	if err != nil {
		t.Fatalf("publish bundle: %v", err)
	}

	rootKey, chainKey, pqrAuthKey, ephemeral, kyberCt, err := ProcessPreKeyBundle(alice, bundle)
	if err != nil {
		t.Fatalf("alice process bundle: %v", err)
	}

	aliceSession, err := NewSessionAlice(alice, rootKey, chainKey, pqrAuthKey, ephemeral, bundle.SignedPreKey)
	if err != nil {
		t.Fatalf("new alice session: %v", err)
	}
	aliceEphPub := aliceSession.DHPublicKey()

	bobRootKey, bobChainKey, bobPqrAuthKey, err := ProcessInitialMessage(bob, signedPreKey.Priv, nil, kyberPriv, kyberCt, alice.Pub, aliceEphPub)
	if err != nil {
		t.Fatalf("bob process initial message: %v", err)
	}
	if rootKey != bobRootKey || chainKey != bobChainKey || pqrAuthKey != bobPqrAuthKey {
		t.Fatalf("alice and bob derived different PQXDH outputs")
	}

	bobSession, err := NewSessionBob(bob, bobRootKey, bobChainKey, bobPqrAuthKey, signedPreKey.Priv)
	if err != nil {
		t.Fatalf("new bob session: %v", err)
	}

	return &bootstrapped{alice: aliceSession, bob: bobSession, aliceIdentity: alice, bobIdentity: bob}
}

func TestFirstMessageRoundTripWithoutRatchet(t *testing.T) {
	b := bootstrap(t)

	msg, err := b.alice.Encrypt([]byte("quantum-safe hello"), nil, b.bobIdentity.Pub)
	if err != nil {
		t.Fatalf("alice encrypt: %v", err)
	}
	noSPQR := func() ([32]byte, error) { t.Fatal("spqr round should not run on the bootstrap message"); return [32]byte{}, nil }
	got, err := b.bob.Decrypt(msg, nil, b.aliceIdentity.Pub, noSPQR)
	if err != nil {
		t.Fatalf("bob decrypt: %v", err)
	}
	if string(got) != "quantum-safe hello" {
		t.Fatalf("got %q", got)
	}
}

// runSPQRRound drives a complete send_ek/send_ct exchange between ek and
// ct, returning the epoch secret both derived.
func runSPQRRound(t *testing.T, ek *spqr.SendEK, ct *spqr.SendCT, gen *rand.Deterministic) [32]byte {
	t.Helper()
	hdr, hdrMac, err := ek.SendHeader()
	if err != nil {
		t.Fatalf("send header: %v", err)
	}
	if err := ct.RecvHeader(ek.Epoch(), hdr, hdrMac); err != nil {
		t.Fatalf("recv header: %v", err)
	}
	ekPub, err := ek.SendEk(gen)
	if err != nil {
		t.Fatalf("send ek: %v", err)
	}
	if err := ct.RecvEk(ekPub); err != nil {
		t.Fatalf("recv ek: %v", err)
	}
	ct1, ct2, ctMac, _, _, ctSecret, err := ct.Encapsulate()
	if err != nil {
		t.Fatalf("encapsulate: %v", err)
	}
	if err := ek.RecvCt1(ct1); err != nil {
		t.Fatalf("recv ct1: %v", err)
	}
	_, _, ekSecret, err := ek.RecvCt2(ct2, ctMac)
	if err != nil {
		t.Fatalf("recv ct2: %v", err)
	}
	if ekSecret != ctSecret {
		t.Fatalf("epoch secret mismatch between ek and ct roles")
	}
	return ekSecret
}

func TestBraidedRatchetStepAfterFirstReply(t *testing.T) {
	b := bootstrap(t)
	gen := rand.NewDeterministic(11)

	msg1, err := b.alice.Encrypt([]byte("first"), nil, b.bobIdentity.Pub)
	if err != nil {
		t.Fatalf("alice encrypt: %v", err)
	}
	noSPQR := func() ([32]byte, error) { return [32]byte{}, nil }
	if _, err := b.bob.Decrypt(msg1, nil, b.aliceIdentity.Pub, noSPQR); err != nil {
		t.Fatalf("bob decrypt first: %v", err)
	}

	if b.bob.CanSend() {
		t.Fatalf("bob should not yet have a sending chain")
	}

	// Bob ratchets forward to start sending, braided with one SPQR
	// epoch where Bob plays send_ek and Alice plays send_ct.
	bobEK := spqr.NewSendEK(b.bob.Auth, components.KEMMLKEM768, spqr.DefaultParams())
	aliceCT := spqr.NewSendCT(b.alice.Auth, components.KEMMLKEM768, spqr.DefaultParams())
	epochSecret := runSPQRRound(t, bobEK, aliceCT, gen)

	if err := b.bob.RatchetForward(epochSecret); err != nil {
		t.Fatalf("bob ratchet forward: %v", err)
	}

	reply, err := b.bob.Encrypt([]byte("reply"), nil, b.aliceIdentity.Pub)
	if err != nil {
		t.Fatalf("bob encrypt reply: %v", err)
	}

	spqrForAlice := func() ([32]byte, error) { return epochSecret, nil }
	got, err := b.alice.Decrypt(reply, nil, b.bobIdentity.Pub, spqrForAlice)
	if err != nil {
		t.Fatalf("alice decrypt reply: %v", err)
	}
	if string(got) != "reply" {
		t.Fatalf("got %q", got)
	}
	if b.alice.dhRemote == nil || *b.alice.dhRemote != b.bob.DHPublicKey() {
		t.Fatalf("alice did not ratchet to bob's new key")
	}
}

func TestWrongMACRejected(t *testing.T) {
	b := bootstrap(t)

	msg, err := b.alice.Encrypt([]byte("tamper"), nil, b.bobIdentity.Pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	msg.MAC[0] ^= 0xFF
	noSPQR := func() ([32]byte, error) { return [32]byte{}, nil }
	if _, err := b.bob.Decrypt(msg, nil, b.aliceIdentity.Pub, noSPQR); err != ErrMACMismatch {
		t.Fatalf("got %v, want ErrMACMismatch", err)
	}
}

func TestKyberPreKeySignatureTamperRejected(t *testing.T) {
	gen := rand.NewDeterministic(13)

	bob, err := doubleratchet.GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("bob identity: %v", err)
	}
	signedPreKey, err := doubleratchet.GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("signed prekey: %v", err)
	}
	_, kyberPub, err := components.GenerateKEMKeyPair(gen, components.KEMMLKEM768)
	if err != nil {
		t.Fatalf("kyber keypair: %v", err)
	}
	bundle, err := PublishPreKeyBundle(bob, signedPreKey.Priv, 1, kyberPub, 1, 1, nil, 0)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	_, otherKyberPub, err := components.GenerateKEMKeyPair(gen, components.KEMMLKEM768)
	if err != nil {
		t.Fatalf("other kyber keypair: %v", err)
	}
	bundle.KyberPreKey = otherKyberPub

	alice, err := doubleratchet.GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("alice identity: %v", err)
	}
	if _, _, _, _, _, err := ProcessPreKeyBundle(alice, bundle); err != ErrInvalidKyberPreKey {
		t.Fatalf("got %v, want ErrInvalidKyberPreKey", err)
	}
}

func TestProtocolVersionStampedOnMessages(t *testing.T) {
	b := bootstrap(t)
	msg, err := b.alice.Encrypt([]byte("v"), nil, b.bobIdentity.Pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if msg.Version != doubleratchet.ProtocolVersion {
		t.Fatalf("version = %x, want %x", msg.Version, doubleratchet.ProtocolVersion)
	}
	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	if !bytes.Equal(raw[:1], []byte{doubleratchet.ProtocolVersion}) {
		t.Fatalf("wire form does not lead with the version byte")
	}
}

// TestHKDFMatchesRFC5869Vectors pins hkdf.KDF, the HKDF-SHA256 primitive
// kdfRootKey and messageCipherKeys both build the braided root/chain/message
// keys on, against RFC 5869's published SHA-256 test vectors. A regression
// here (e.g. swapped salt/info arguments, or extract/expand done in the
// wrong order) would silently re-derive every session's keys differently
// without any of the round-trip tests noticing, since Alice and Bob would
// still agree with each other — just not with any other implementation.
func TestHKDFMatchesRFC5869Vectors(t *testing.T) {
	tests := []struct {
		name string
		ikm  string
		salt string
		info string
		l    int
		okm  string
	}{
		{
			name: "RFC5869 Test Case 1 (basic)",
			ikm:  "0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b",
			salt: "000102030405060708090a0b0c",
			info: "f0f1f2f3f4f5f6f7f8f9",
			l:    42,
			okm:  "3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865",
		},
		{
			name: "RFC5869 Test Case 2 (long inputs)",
			ikm: "000102030405060708090a0b0c0d0e0f" +
				"101112131415161718191a1b1c1d1e1f" +
				"202122232425262728292a2b2c2d2e2f" +
				"303132333435363738393a3b3c3d3e3f" +
				"404142434445464748494a4b4c4d4e4f",
			salt: "606162636465666768696a6b6c6d6e6f" +
				"707172737475767778797a7b7c7d7e7f" +
				"808182838485868788898a8b8c8d8e8f" +
				"909192939495969798999a9b9c9d9e9f" +
				"a0a1a2a3a4a5a6a7a8a9aaabacadaeaf",
			info: "b0b1b2b3b4b5b6b7b8b9babbbcbdbebf" +
				"c0c1c2c3c4c5c6c7c8c9cacbcccdcecf" +
				"d0d1d2d3d4d5d6d7d8d9dadbdcdddedf" +
				"e0e1e2e3e4e5e6e7e8e9eaebecedeeef" +
				"f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff",
			l: 82,
			okm: "b11e398dc80327a1c8e7f78c596a4934" +
				"4f012eda2d4efad8a050cc4c19afa97c" +
				"59045a99cac7827271cb41c65e590e09" +
				"da3275600c2f09b8367793a9aca3db71" +
				"cc30c58179ec3e87c14c01d5c1f3434f" +
				"1d87",
		},
		{
			name: "RFC5869 Test Case 3 (zero-length salt and info)",
			ikm:  "0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b",
			salt: "",
			info: "",
			l:    42,
			okm:  "8da4e775a563c18f715f802a063c5a31b8a11f5c5ee1879ec3454e5f3c738d2d9d201395faa4b61a96c8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ikm, err := hex.DecodeString(tt.ikm)
			if err != nil {
				t.Fatalf("decode ikm: %v", err)
			}
			salt, err := hex.DecodeString(tt.salt)
			if err != nil {
				t.Fatalf("decode salt: %v", err)
			}
			info, err := hex.DecodeString(tt.info)
			if err != nil {
				t.Fatalf("decode info: %v", err)
			}
			want, err := hex.DecodeString(tt.okm)
			if err != nil {
				t.Fatalf("decode okm: %v", err)
			}

			got := make([]byte, tt.l)
			if _, err := hkdf.KDF(sha256.New, ikm, salt, info, got); err != nil {
				t.Fatalf("KDF: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("got % x, want % x", got, want)
			}
		})
	}
}

// TestDeriveTripleFixture pins deriveTriple's 96-byte HKDF-SHA256 expansion
// for a fixed secretInput against an independently computed expansion under
// the same (nil salt, pqxdhInfo) parameters. TestHKDFMatchesRFC5869Vectors
// already establishes that hkdf.KDF itself matches the published standard,
// so this test's job is narrower: catch any future change to deriveTriple's
// salt, info string, buffer size, or (rootKey, chainKey, pqrAuthKey) split
// boundaries that would silently re-derive different keys from the same
// PQXDH secretInput.
func TestDeriveTripleFixture(t *testing.T) {
	secretInput := make([]byte, 200)
	for i := range secretInput {
		secretInput[i] = byte(i)
	}

	wantBuf := make([]byte, 96)
	if _, err := hkdf.KDF(sha256.New, secretInput, nil, pqxdhInfo, wantBuf); err != nil {
		t.Fatalf("reference KDF: %v", err)
	}
	var wantRoot, wantChain, wantAuth [32]byte
	copy(wantRoot[:], wantBuf[:32])
	copy(wantChain[:], wantBuf[32:64])
	copy(wantAuth[:], wantBuf[64:96])

	rootKey, chainKey, pqrAuthKey, err := deriveTriple(secretInput)
	if err != nil {
		t.Fatalf("deriveTriple: %v", err)
	}
	if rootKey != wantRoot {
		t.Fatalf("rootKey = %x, want %x", rootKey, wantRoot)
	}
	if chainKey != wantChain {
		t.Fatalf("chainKey = %x, want %x", chainKey, wantChain)
	}
	if pqrAuthKey != wantAuth {
		t.Fatalf("pqrAuthKey = %x, want %x", pqrAuthKey, wantAuth)
	}
	if rootKey == chainKey || chainKey == pqrAuthKey || rootKey == pqrAuthKey {
		t.Fatalf("deriveTriple produced overlapping key material: root=%x chain=%x auth=%x", rootKey, chainKey, pqrAuthKey)
	}

	// Re-running with the same input must reproduce the same keys: deriveTriple
	// is a pure function of secretInput, not of any hidden mutable state.
	rootKey2, chainKey2, pqrAuthKey2, err := deriveTriple(secretInput)
	if err != nil {
		t.Fatalf("deriveTriple (second call): %v", err)
	}
	if rootKey2 != rootKey || chainKey2 != chainKey || pqrAuthKey2 != pqrAuthKey {
		t.Fatalf("deriveTriple is not deterministic across calls with the same input")
	}
}
