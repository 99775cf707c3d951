// Package aescbc implements AES-256-CBC with PKCS#7 padding, the symmetric
// cipher the ratchet packages use for per-message encryption once the
// sending/receiving chain has produced a message key.
package aescbc

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

var (
	// ErrInvalidCiphertextLength is returned when a ciphertext isn't a
	// positive multiple of the AES block size, so it could not have come
	// from Encrypt.
	ErrInvalidCiphertextLength = errors.New("aescbc: ciphertext length invalid")
	// ErrInvalidPadding is returned when a decrypted block's trailing
	// PKCS#7 padding is absent or malformed. Callers authenticate the
	// ciphertext (via the ratchet MAC) before calling Decrypt, so this
	// should never fire in practice; it exists so a corrupted or
	// maliciously crafted block can't index plaintext out of bounds.
	ErrInvalidPadding = errors.New("aescbc: invalid PKCS#7 padding")
)

// Encrypt encrypts plaintext using AES-256 in CBC mode with PKCS#7 padding.
func Encrypt(plaintext []byte, key [32]byte, iv [16]byte) (ciphertext []byte, err error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	paddedPlaintext := pkcs7Pad(plaintext, block.BlockSize())
	ciphertext = make([]byte, len(paddedPlaintext))

	mode := cipher.NewCBCEncrypter(block, iv[:])
	mode.CryptBlocks(ciphertext, paddedPlaintext)
	return ciphertext, nil
}

// Decrypt decrypts ciphertext using AES-256 in CBC mode and strips its
// PKCS#7 padding.
func Decrypt(ciphertext []byte, key [32]byte, iv [16]byte) (plaintext []byte, err error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, ErrInvalidCiphertextLength
	}

	mode := cipher.NewCBCDecrypter(block, iv[:])
	plaintext = make([]byte, len(ciphertext))
	mode.CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext, block.BlockSize())
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padtext := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(data, padtext...)
}

// pkcs7Unpad validates and strips PKCS#7 padding: the last byte must be a
// count in [1, blockSize], and every byte it covers must equal that count.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	length := len(data)
	if length == 0 {
		return nil, ErrInvalidPadding
	}
	padding := int(data[length-1])
	if padding == 0 || padding > blockSize || padding > length {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[length-padding:] {
		if int(b) != padding {
			return nil, ErrInvalidPadding
		}
	}
	return data[:length-padding], nil
}
