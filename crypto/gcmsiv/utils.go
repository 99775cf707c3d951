// Package gcmsiv implements AEAD_AES_256_GCM_SIV (RFC 8452) in terms of
// the standard library's AES block cipher and this package's POLYVAL.
// GCM-SIV is nonce-misuse resistant, which is why components offer it
// alongside chacha20poly1305 for callers that cannot guarantee nonce
// uniqueness.
package gcmsiv

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
)

const (
	KeySize   = 32
	NonceSize = 12
	TagSize   = 16
)

var (
	ErrInvalidKeySize   = errors.New("gcmsiv: key must be 32 bytes")
	ErrInvalidNonceSize = errors.New("gcmsiv: nonce must be 12 bytes")
	ErrOpenFailed        = errors.New("gcmsiv: message authentication failed")
)

func pad16(b []byte) []byte {
	if len(b)%16 == 0 {
		return b
	}
	out := make([]byte, (len(b)/16+1)*16)
	copy(out, b)
	return out
}

func deriveKeys(key, nonce []byte) (authKey [16]byte, encKey [32]byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return authKey, encKey, err
	}
	var derived [6][8]byte
	for i := 0; i < 6; i++ {
		var in [16]byte
		binary.LittleEndian.PutUint32(in[0:4], uint32(i))
		copy(in[4:], nonce)
		var out [16]byte
		block.Encrypt(out[:], in[:])
		copy(derived[i][:], out[:8])
	}
	copy(authKey[0:8], derived[0][:])
	copy(authKey[8:16], derived[1][:])
	copy(encKey[0:8], derived[2][:])
	copy(encKey[8:16], derived[3][:])
	copy(encKey[16:24], derived[4][:])
	copy(encKey[24:32], derived[5][:])
	return authKey, encKey, nil
}

func computeS(authKey [16]byte, aad, plaintext []byte) block128 {
	blocks := make([][]byte, 0, 4)
	if len(aad) > 0 {
		padded := pad16(aad)
		for i := 0; i < len(padded); i += 16 {
			blocks = append(blocks, padded[i:i+16])
		}
	}
	if len(plaintext) > 0 {
		padded := pad16(plaintext)
		for i := 0; i < len(padded); i += 16 {
			blocks = append(blocks, padded[i:i+16])
		}
	}
	var lenBlock [16]byte
	binary.LittleEndian.PutUint64(lenBlock[0:8], uint64(len(aad))*8)
	binary.LittleEndian.PutUint64(lenBlock[8:16], uint64(len(plaintext))*8)
	blocks = append(blocks, lenBlock[:])
	h := blockFromBytes(authKey[:])
	var hFull block128
	// authKey is only 16 bytes, matching block128's width directly.
	hFull = h
	return polyval(hFull, blocks)
}

func computeTag(encKey [32]byte, s block128, nonce []byte) ([16]byte, error) {
	sBytes := s.bytes()
	for i := 0; i < 12; i++ {
		sBytes[i] ^= nonce[i]
	}
	sBytes[15] &= 0x7f
	block, err := aes.NewCipher(encKey[:])
	if err != nil {
		return [16]byte{}, err
	}
	var tag [16]byte
	block.Encrypt(tag[:], sBytes)
	return tag, nil
}

func ctr(encKey [32]byte, tag [16]byte, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(encKey[:])
	if err != nil {
		return nil, err
	}
	iv := tag
	iv[15] |= 0x80
	stream := cipher.NewCTR(block, iv[:])
	out := make([]byte, len(data))
	stream.XORKeyStream(out, data)
	return out, nil
}

// Seal encrypts plaintext under key/nonce, authenticating aad, and returns
// ciphertext || 16-byte tag.
func Seal(key, nonce, plaintext, aad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if len(nonce) != NonceSize {
		return nil, ErrInvalidNonceSize
	}
	authKey, encKey, err := deriveKeys(key, nonce)
	if err != nil {
		return nil, err
	}
	s := computeS(authKey, aad, plaintext)
	tag, err := computeTag(encKey, s, nonce)
	if err != nil {
		return nil, err
	}
	ciphertext, err := ctr(encKey, tag, plaintext)
	if err != nil {
		return nil, err
	}
	return append(ciphertext, tag[:]...), nil
}

// Open authenticates and decrypts a Seal output.
func Open(key, nonce, ciphertextAndTag, aad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if len(nonce) != NonceSize {
		return nil, ErrInvalidNonceSize
	}
	if len(ciphertextAndTag) < TagSize {
		return nil, ErrOpenFailed
	}
	ciphertext := ciphertextAndTag[:len(ciphertextAndTag)-TagSize]
	var tag [16]byte
	copy(tag[:], ciphertextAndTag[len(ciphertextAndTag)-TagSize:])

	authKey, encKey, err := deriveKeys(key, nonce)
	if err != nil {
		return nil, err
	}
	plaintext, err := ctr(encKey, tag, ciphertext)
	if err != nil {
		return nil, err
	}
	s := computeS(authKey, aad, plaintext)
	expected, err := computeTag(encKey, s, nonce)
	if err != nil {
		return nil, err
	}
	if !constantTimeEqual(expected[:], tag[:]) {
		for i := range plaintext {
			plaintext[i] = 0
		}
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
