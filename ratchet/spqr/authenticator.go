package spqr

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gordian-core/gordian/crypto"
	"github.com/gordian-core/gordian/crypto/hkdf"
	"github.com/gordian-core/gordian/crypto/hmac"
)

var (
	authUpdateInfo  = []byte("Signal_PQCKA_V1_MLKEM768:auth-update")
	ctMACInfo       = []byte("Signal_PQCKA_V1_MLKEM768:ct-mac")
	hdrMACInfo      = []byte("Signal_PQCKA_V1_MLKEM768:hdr-mac")
	epochSecretInfo = []byte("Signal_PQCKA_V1_MLKEM768:SCKA Key")
	authSeedInfo    = []byte("Signal_PQCKA_V1_MLKEM768:auth-seed")
)

// Authenticator is the per-direction (rootKey, macKey) pair that binds
// every SPQR header and ciphertext to the chain of epoch secrets that
// produced it.
type Authenticator struct {
	RootKey [32]byte
	MacKey  [32]byte
}

func beEpoch(epoch uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, epoch)
	return b
}

// Update derives the next authenticator state from the current rootKey
// and a fresh key (an epoch secret or a KEM shared secret), per spec.md
// §4.3.3's `update(epoch, key)`.
func (a Authenticator) Update(epoch uint64, key []byte) (Authenticator, error) {
	ikm := append(append([]byte(nil), a.RootKey[:]...), key...)
	salt := make([]byte, 32)
	info := append(append([]byte(nil), authUpdateInfo...), beEpoch(epoch)...)
	buf := make([]byte, 64)
	if _, err := hkdf.KDF(sha256.New, ikm, salt, info, buf); err != nil {
		return Authenticator{}, err
	}
	var next Authenticator
	copy(next.RootKey[:], buf[:32])
	copy(next.MacKey[:], buf[32:])
	return next, nil
}

// MacCt authenticates a ciphertext under the current macKey for epoch.
func (a Authenticator) MacCt(epoch uint64, ct []byte) ([]byte, error) {
	msg := append(append(append([]byte(nil), ctMACInfo...), beEpoch(epoch)...), ct...)
	return hmac.Hash(sha256.New, a.MacKey[:], msg)
}

// MacHdr authenticates a header under the current macKey for epoch.
func (a Authenticator) MacHdr(epoch uint64, hdr []byte) ([]byte, error) {
	msg := append(append(append([]byte(nil), hdrMACInfo...), beEpoch(epoch)...), hdr...)
	return hmac.Hash(sha256.New, a.MacKey[:], msg)
}

// VerifyCt checks mac against MacCt in constant time.
func (a Authenticator) VerifyCt(epoch uint64, ct, mac []byte) (bool, error) {
	expected, err := a.MacCt(epoch, ct)
	if err != nil {
		return false, err
	}
	return crypto.ConstantTimeCompare(expected, mac), nil
}

// VerifyHdr checks mac against MacHdr in constant time.
func (a Authenticator) VerifyHdr(epoch uint64, hdr, mac []byte) (bool, error) {
	expected, err := a.MacHdr(epoch, hdr)
	if err != nil {
		return false, err
	}
	return crypto.ConstantTimeCompare(expected, mac), nil
}

// SeedAuthenticator expands a triple ratchet's pqrAuthKey (spec.md
// §4.3.2 step 5) into an initial (rootKey, macKey) pair, since the SPQR
// Authenticator needs both from the single 32-byte secret PQXDH hands it.
func SeedAuthenticator(pqrAuthKey [32]byte) (Authenticator, error) {
	buf := make([]byte, 64)
	salt := make([]byte, 32)
	if _, err := hkdf.KDF(sha256.New, pqrAuthKey[:], salt, authSeedInfo, buf); err != nil {
		return Authenticator{}, err
	}
	var a Authenticator
	copy(a.RootKey[:], buf[:32])
	copy(a.MacKey[:], buf[32:])
	return a, nil
}

// DeriveEpochSecret computes the epoch secret from a freshly decapsulated
// (or encapsulated) KEM shared secret, per spec.md §4.3.3's epoch secret
// derivation.
func DeriveEpochSecret(epoch uint64, kemSharedSecret []byte) ([32]byte, error) {
	salt := make([]byte, 32)
	info := append(append([]byte(nil), epochSecretInfo...), beEpoch(epoch)...)
	var secret [32]byte
	if _, err := hkdf.KDF(sha256.New, kemSharedSecret, salt, info, secret[:]); err != nil {
		return [32]byte{}, err
	}
	return secret, nil
}
