package x3dh

import (
	"testing"

	"github.com/gordian-core/gordian/crypto/ed25519group"
)

func bootstrapBundle(t *testing.T, withOneTimePreKey bool) (PreKeyBundle, IdentityKeyPair, ed25519group.PrivateKey, *ed25519group.PrivateKey) {
	t.Helper()
	bob, err := GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("bob identity: %v", err)
	}
	signedPreKey, err := ed25519group.New()
	if err != nil {
		t.Fatalf("signed prekey: %v", err)
	}

	var oneTimePub *ed25519group.PublicKey
	var oneTimePriv *ed25519group.PrivateKey
	if withOneTimePreKey {
		priv, err := ed25519group.New()
		if err != nil {
			t.Fatalf("one-time prekey: %v", err)
		}
		pub, err := priv.Public()
		if err != nil {
			t.Fatalf("one-time prekey public: %v", err)
		}
		oneTimePriv = priv
		oneTimePub = pub
	}

	bundle, err := PublishPreKeyBundle(bob, *signedPreKey, 1, 42, oneTimePub, 1)
	if err != nil {
		t.Fatalf("publish bundle: %v", err)
	}
	return bundle, bob, *signedPreKey, oneTimePriv
}

func TestKeyAgreementMatchesBothSides(t *testing.T) {
	for _, withOneTime := range []bool{false, true} {
		bundle, bob, signedPreKey, oneTimePriv := bootstrapBundle(t, withOneTime)

		alice, err := GenerateIdentityKeyPair()
		if err != nil {
			t.Fatalf("alice identity: %v", err)
		}

		aliceSK, ephemeral, err := ProcessPreKeyBundle(alice, bundle)
		if err != nil {
			t.Fatalf("alice process bundle: %v", err)
		}
		ephPub, err := ephemeral.Public()
		if err != nil {
			t.Fatalf("ephemeral public: %v", err)
		}

		bobSK, err := ProcessInitialMessage(bob, signedPreKey, oneTimePriv, alice.Pub, *ephPub)
		if err != nil {
			t.Fatalf("bob process initial message: %v", err)
		}

		if aliceSK != bobSK {
			t.Fatalf("withOneTime=%v: alice and bob derived different shared secrets", withOneTime)
		}
	}
}

func TestProcessPreKeyBundleRejectsTamperedSignature(t *testing.T) {
	bundle, _, _, _ := bootstrapBundle(t, false)
	bundle.SignedPreKeySig = append([]byte(nil), bundle.SignedPreKeySig...)
	bundle.SignedPreKeySig[0] ^= 0xFF

	alice, err := GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("alice identity: %v", err)
	}
	if _, _, err := ProcessPreKeyBundle(alice, bundle); err != ErrInvalidPreKeyBundle {
		t.Fatalf("got %v, want ErrInvalidPreKeyBundle", err)
	}
}

func TestWithoutOneTimePreKeyOmitsDH4(t *testing.T) {
	bundle, bob, signedPreKey, oneTimePriv := bootstrapBundle(t, false)
	if bundle.OneTimePreKey != nil || oneTimePriv != nil {
		t.Fatalf("expected no one-time prekey in this bundle")
	}

	alice, err := GenerateIdentityKeyPair()
	if err != nil {
		t.Fatalf("alice identity: %v", err)
	}
	aliceSK, ephemeral, err := ProcessPreKeyBundle(alice, bundle)
	if err != nil {
		t.Fatalf("alice process bundle: %v", err)
	}
	ephPub, err := ephemeral.Public()
	if err != nil {
		t.Fatalf("ephemeral public: %v", err)
	}
	bobSK, err := ProcessInitialMessage(bob, signedPreKey, nil, alice.Pub, *ephPub)
	if err != nil {
		t.Fatalf("bob process initial message: %v", err)
	}
	if aliceSK != bobSK {
		t.Fatalf("alice and bob derived different shared secrets without a one-time prekey")
	}
}
