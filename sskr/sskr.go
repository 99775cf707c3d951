// Package sskr implements SSKR (Sharded Secret Key Reconstruction), a
// two-level extension of shamir: a random master key encrypts the payload,
// and that master key is Shamir-split across groupThreshold-of-groupCount
// groups, each of whose group secret is itself Shamir-split among that
// group's memberThreshold-of-memberCount members. Recovery is unordered:
// any sufficient combination of member shares — enough members in enough
// groups — reconstructs the master key regardless of collection order.
package sskr

import (
	"errors"

	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/rand"
	"github.com/gordian-core/gordian/shamir"
)

const masterKeyLen = 32 // matches components.SymmetricKey

var (
	ErrInvalidGroupSpec = errors.New("sskr: group/member threshold and count must be in [1, 16] with threshold <= count")
	ErrTooFewGroups     = errors.New("sskr: fewer group secrets recovered than groupThreshold requires")
	ErrMixedIdentifier  = errors.New("sskr: shares carry different identifiers and do not belong to the same split")
	ErrInvalidHeader    = errors.New("sskr: malformed share header")
)

// GroupSpec describes one group's member-level Shamir parameters.
type GroupSpec struct {
	MemberThreshold int
	MemberCount     int
}

// Share is one SSKR output share: a 5-byte header (spec.md §3's
// `(identifier u16, groupThreshold u4, groupIndex u4, groupCount u4,
// memberThreshold u4, memberIndex u4)`, reserved bits zero) followed by
// secret-length data bytes.
type Share struct {
	Identifier      uint16
	GroupThreshold  int
	GroupCount      int
	GroupIndex      int
	MemberThreshold int
	MemberIndex     int
	Data            []byte
}

// Bytes packs s into its 5-byte-header wire form.
func (s Share) Bytes() []byte {
	out := make([]byte, 5+len(s.Data))
	out[0] = byte(s.Identifier >> 8)
	out[1] = byte(s.Identifier)
	out[2] = byte((s.GroupThreshold-1)<<4 | (s.GroupCount - 1))
	out[3] = byte(s.GroupIndex<<4 | (s.MemberThreshold - 1))
	out[4] = byte(s.MemberIndex << 4) // low nibble reserved, zero
	copy(out[5:], s.Data)
	return out
}

// ShareFromBytes unpacks a wire-form share previously produced by Bytes.
func ShareFromBytes(b []byte) (Share, error) {
	if len(b) <= 5 {
		return Share{}, ErrInvalidHeader
	}
	s := Share{
		Identifier:      uint16(b[0])<<8 | uint16(b[1]),
		GroupThreshold:  int(b[2]>>4) + 1,
		GroupCount:      int(b[2]&0x0F) + 1,
		GroupIndex:      int(b[3] >> 4),
		MemberThreshold: int(b[3]&0x0F) + 1,
		MemberIndex:     int(b[4] >> 4),
		Data:            append([]byte(nil), b[5:]...),
	}
	if b[4]&0x0F != 0 {
		return Share{}, ErrInvalidHeader
	}
	return s, nil
}

func validSpec(threshold, count int) bool {
	return threshold >= 1 && threshold <= 16 && count >= 1 && count <= 16 && threshold <= count
}

// GenerateShares splits masterKey across groupThreshold-of-len(groups)
// groups, each re-split among that group's members.
func GenerateShares(gen rand.Generator, groupThreshold int, groups []GroupSpec, masterKey [masterKeyLen]byte) ([]Share, error) {
	groupCount := len(groups)
	if !validSpec(groupThreshold, groupCount) {
		return nil, ErrInvalidGroupSpec
	}
	for _, g := range groups {
		if !validSpec(g.MemberThreshold, g.MemberCount) {
			return nil, ErrInvalidGroupSpec
		}
	}

	var idBuf [2]byte
	if _, err := gen.Bytes(idBuf[:]); err != nil {
		return nil, err
	}
	identifier := uint16(idBuf[0])<<8 | uint16(idBuf[1])

	groupShares, err := shamir.Split(gen, groupThreshold, groupCount, masterKey[:])
	if err != nil {
		return nil, err
	}

	var out []Share
	for i, g := range groups {
		memberShares, err := shamir.Split(gen, g.MemberThreshold, g.MemberCount, groupShares[i].Data)
		if err != nil {
			return nil, err
		}
		for _, ms := range memberShares {
			out = append(out, Share{
				Identifier:      identifier,
				GroupThreshold:  groupThreshold,
				GroupCount:      groupCount,
				GroupIndex:      int(groupShares[i].Index),
				MemberThreshold: g.MemberThreshold,
				MemberIndex:     int(ms.Index),
				Data:            ms.Data,
			})
		}
	}
	return out, nil
}

// RecoverMasterKey reverses GenerateShares given any sufficient quorum:
// at least groupThreshold distinct groups, each represented by at least
// that group's memberThreshold distinct member shares.
func RecoverMasterKey(shares []Share) ([masterKeyLen]byte, error) {
	var zero [masterKeyLen]byte
	if len(shares) == 0 {
		return zero, shamir.ErrTooFewShares
	}
	identifier := shares[0].Identifier
	byGroup := map[int][]shamir.Share{}
	thresholdByGroup := map[int]int{}
	for _, s := range shares {
		if s.Identifier != identifier {
			return zero, ErrMixedIdentifier
		}
		byGroup[s.GroupIndex] = append(byGroup[s.GroupIndex], shamir.Share{Index: byte(s.MemberIndex), Data: s.Data})
		thresholdByGroup[s.GroupIndex] = s.MemberThreshold
	}

	var groupSecrets []shamir.Share
	for groupIndex, members := range byGroup {
		threshold := thresholdByGroup[groupIndex]
		if len(members) < threshold {
			continue
		}
		secret, err := shamir.Recover(members[:threshold])
		if err != nil {
			return zero, err
		}
		groupSecrets = append(groupSecrets, shamir.Share{Index: byte(groupIndex), Data: secret})
	}

	groupThreshold := shares[0].GroupThreshold
	if len(groupSecrets) < groupThreshold {
		return zero, ErrTooFewGroups
	}
	master, err := shamir.Recover(groupSecrets[:groupThreshold])
	if err != nil {
		return zero, err
	}
	var key [masterKeyLen]byte
	copy(key[:], master)
	return key, nil
}

// Seal encrypts payload under a fresh random master key and splits that
// key into SSKR shares per GenerateShares.
func Seal(gen rand.Generator, groupThreshold int, groups []GroupSpec, payload []byte) (components.EncryptedMessage, []Share, error) {
	key, err := components.NewSymmetricKey(gen)
	if err != nil {
		return components.EncryptedMessage{}, nil, err
	}
	nonce, err := components.NewNonce(gen)
	if err != nil {
		return components.EncryptedMessage{}, nil, err
	}
	msg, err := components.Seal(components.AEADChaCha20Poly1305, key, nonce, payload, nil)
	if err != nil {
		return components.EncryptedMessage{}, nil, err
	}
	shares, err := GenerateShares(gen, groupThreshold, groups, [masterKeyLen]byte(key))
	if err != nil {
		return components.EncryptedMessage{}, nil, err
	}
	return msg, shares, nil
}

// Open reverses Seal given the encrypted payload and a sufficient quorum
// of shares.
func Open(msg components.EncryptedMessage, shares []Share) ([]byte, error) {
	key, err := RecoverMasterKey(shares)
	if err != nil {
		return nil, err
	}
	return components.Open(components.SymmetricKey(key), msg)
}
