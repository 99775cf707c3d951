package sskr_test

import (
	"bytes"
	"testing"

	"github.com/gordian-core/gordian/rand"
	"github.com/gordian-core/gordian/sskr"
)

func TestSingleGroupAnyTwoOfThreeRecovers(t *testing.T) {
	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i)
	}
	groups := []sskr.GroupSpec{{MemberThreshold: 2, MemberCount: 3}}
	msg, shares, err := sskr.Seal(rand.Secure, 1, groups, payload)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if len(shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(shares))
	}

	recovered, err := sskr.Open(msg, []sskr.Share{shares[0], shares[2]})
	if err != nil {
		t.Fatalf("Open with 2 shares: %v", err)
	}
	if !bytes.Equal(recovered, payload) {
		t.Fatalf("recovered payload does not match original")
	}

	if _, err := sskr.Open(msg, []sskr.Share{shares[0]}); err == nil {
		t.Fatalf("expected Open with 1 share to fail")
	}
}

func TestMultiGroupRequiresGroupThreshold(t *testing.T) {
	payload := []byte("multi-group secret payload!!!!!")
	groups := []sskr.GroupSpec{
		{MemberThreshold: 1, MemberCount: 1},
		{MemberThreshold: 1, MemberCount: 1},
		{MemberThreshold: 1, MemberCount: 1},
	}
	msg, shares, err := sskr.Seal(rand.Secure, 2, groups, payload)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if len(shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(shares))
	}

	// Two groups' worth of shares (any two) should recover.
	recovered, err := sskr.Open(msg, []sskr.Share{shares[0], shares[1]})
	if err != nil {
		t.Fatalf("Open with 2 groups: %v", err)
	}
	if !bytes.Equal(recovered, payload) {
		t.Fatalf("recovered payload does not match original")
	}

	if _, err := sskr.Open(msg, []sskr.Share{shares[0]}); err == nil {
		t.Fatalf("expected Open with 1 group to fail")
	}
}

func TestShareWireFormatRoundTrip(t *testing.T) {
	payload := make([]byte, 16)
	groups := []sskr.GroupSpec{{MemberThreshold: 2, MemberCount: 3}}
	_, shares, err := sskr.Seal(rand.Secure, 1, groups, payload)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	b := shares[0].Bytes()
	if len(b) != 5+len(shares[0].Data) {
		t.Fatalf("wire length = %d, want %d", len(b), 5+len(shares[0].Data))
	}
	back, err := sskr.ShareFromBytes(b)
	if err != nil {
		t.Fatalf("ShareFromBytes: %v", err)
	}
	if back.Identifier != shares[0].Identifier || back.GroupThreshold != shares[0].GroupThreshold ||
		back.MemberThreshold != shares[0].MemberThreshold || back.MemberIndex != shares[0].MemberIndex {
		t.Fatalf("round-tripped header fields do not match")
	}
	if !bytes.Equal(back.Data, shares[0].Data) {
		t.Fatalf("round-tripped data does not match")
	}
}
