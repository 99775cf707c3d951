package shamir_test

import (
	"bytes"
	"testing"

	"github.com/gordian-core/gordian/rand"
	"github.com/gordian-core/gordian/shamir"
)

func TestThresholdOneReturnsIdenticalCopies(t *testing.T) {
	secret := []byte("my secret belongs to me.")
	shares, err := shamir.Split(rand.Secure, 1, 3, secret)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for _, s := range shares {
		if !bytes.Equal(s.Data, secret) {
			t.Fatalf("threshold-1 share does not equal the secret")
		}
	}
}

func TestSplitRecoverRoundTrip(t *testing.T) {
	secret := []byte("my secret belongs to me.")
	if len(secret) != 24 {
		t.Fatalf("test fixture secret must be 24 bytes, got %d", len(secret))
	}
	shares, err := shamir.Split(rand.Secure, 2, 3, secret)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	recovered, err := shamir.Recover([]shamir.Share{shares[0], shares[2]})
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if !bytes.Equal(recovered, secret) {
		t.Fatalf("recovered secret does not match original")
	}
}

func TestRecoverDetectsTamperedShare(t *testing.T) {
	secret := []byte("my secret belongs to me.")
	shares, err := shamir.Split(rand.Secure, 2, 3, secret)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	tampered := shamir.Share{Index: shares[0].Index, Data: append([]byte(nil), shares[0].Data...)}
	tampered.Data[0] ^= 0x01
	_, err = shamir.Recover([]shamir.Share{tampered, shares[2]})
	if err != shamir.ErrChecksumFailure {
		t.Fatalf("expected ErrChecksumFailure, got %v", err)
	}
}

func TestSplitRejectsBadSecretLength(t *testing.T) {
	_, err := shamir.Split(rand.Secure, 2, 3, []byte("odd"))
	if err != shamir.ErrSecretLength {
		t.Fatalf("expected ErrSecretLength for odd length, got %v", err)
	}
	_, err = shamir.Split(rand.Secure, 2, 3, make([]byte, 8))
	if err != shamir.ErrSecretLength {
		t.Fatalf("expected ErrSecretLength for too-short secret, got %v", err)
	}
}

func TestHighThresholdRoundTrip(t *testing.T) {
	secret := make([]byte, 16)
	for i := range secret {
		secret[i] = byte(i)
	}
	shares, err := shamir.Split(rand.Secure, 5, 7, secret)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	recovered, err := shamir.Recover(shares[1:6])
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if !bytes.Equal(recovered, secret) {
		t.Fatalf("recovered secret does not match original")
	}
}
