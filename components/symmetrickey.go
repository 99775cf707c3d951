package components

import (
	"errors"

	"github.com/gordian-core/gordian/crypto/chacha20poly1305"
	"github.com/gordian-core/gordian/crypto/gcmsiv"
	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/rand"
)

var ErrAuthenticationFailed = errors.New("components: message authentication failed")

// AEADScheme selects which AEAD EncryptedMessage uses. ChaCha20-Poly1305
// is the default (matching the teacher's preference for a single
// straightforward AEAD); GCM-SIV is available when a caller cannot
// guarantee nonce uniqueness.
type AEADScheme int

const (
	AEADChaCha20Poly1305 AEADScheme = iota
	AEADAESGCMSIV
)

// SymmetricKey is a 32-byte AEAD key.
type SymmetricKey [32]byte

func NewSymmetricKey(gen rand.Generator) (SymmetricKey, error) {
	var k SymmetricKey
	if _, err := gen.Bytes(k[:]); err != nil {
		return SymmetricKey{}, err
	}
	return k, nil
}

func (k SymmetricKey) ToCBOR() dcbor.Value {
	return dcbor.NewTag(dcbor.TagSymmetricKey, dcbor.NewBytes(k[:]))
}

func SymmetricKeyFromCBOR(v dcbor.Value) (SymmetricKey, error) {
	var k SymmetricKey
	num, content, ok := v.AsTag()
	if !ok || num != dcbor.TagSymmetricKey {
		return k, ErrInvalidTag
	}
	b, ok := content.AsBytes()
	if !ok || len(b) != 32 {
		return k, ErrInvalidSize
	}
	copy(k[:], b)
	return k, nil
}

// EncryptedMessage is (nonce, ciphertext, auth tag, optional aad). The tag
// is carried appended to Ciphertext by both backing AEADs, so it is split
// out here only for the wire representation.
type EncryptedMessage struct {
	Scheme     AEADScheme
	Nonce      Nonce
	Ciphertext []byte
	Tag        [16]byte
	AAD        []byte
}

// Seal encrypts plaintext under key with the given scheme, binding aad
// (which, for envelope subject encryption, carries the pre-encryption
// subject digest).
func Seal(scheme AEADScheme, key SymmetricKey, nonce Nonce, plaintext, aad []byte) (EncryptedMessage, error) {
	var sealed []byte
	var err error
	switch scheme {
	case AEADChaCha20Poly1305:
		sealed, err = chacha20poly1305.Seal(key, [12]byte(nonce), plaintext, aad)
	case AEADAESGCMSIV:
		sealed, err = gcmsiv.Seal(key[:], nonce[:], plaintext, aad)
	default:
		return EncryptedMessage{}, ErrUnknownScheme
	}
	if err != nil {
		return EncryptedMessage{}, err
	}
	ct := sealed[:len(sealed)-16]
	var tag [16]byte
	copy(tag[:], sealed[len(sealed)-16:])
	aadCopy := append([]byte(nil), aad...)
	return EncryptedMessage{Scheme: scheme, Nonce: nonce, Ciphertext: ct, Tag: tag, AAD: aadCopy}, nil
}

// Open decrypts an EncryptedMessage, verifying the AEAD tag and aad.
func Open(key SymmetricKey, msg EncryptedMessage) ([]byte, error) {
	combined := append(append([]byte(nil), msg.Ciphertext...), msg.Tag[:]...)
	var plaintext []byte
	var err error
	switch msg.Scheme {
	case AEADChaCha20Poly1305:
		plaintext, err = chacha20poly1305.Open(key, [12]byte(msg.Nonce), combined, msg.AAD)
	case AEADAESGCMSIV:
		plaintext, err = gcmsiv.Open(key[:], msg.Nonce[:], combined, msg.AAD)
	default:
		return nil, ErrUnknownScheme
	}
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// ToCBOR renders the message as a 4-element array: [scheme, nonce-bytes,
// ciphertext||tag, aad].
func (m EncryptedMessage) ToCBOR() dcbor.Value {
	combined := append(append([]byte(nil), m.Ciphertext...), m.Tag[:]...)
	return dcbor.NewArray(
		dcbor.NewUint(uint64(m.Scheme)),
		dcbor.NewBytes(m.Nonce[:]),
		dcbor.NewBytes(combined),
		dcbor.NewBytes(m.AAD),
	)
}

func EncryptedMessageFromCBOR(v dcbor.Value) (EncryptedMessage, error) {
	items, ok := v.AsArray()
	if !ok || len(items) != 4 {
		return EncryptedMessage{}, ErrInvalidFormat
	}
	schemeN, ok := items[0].AsUint()
	if !ok {
		return EncryptedMessage{}, ErrInvalidFormat
	}
	nonceBytes, ok := items[1].AsBytes()
	if !ok || len(nonceBytes) != 12 {
		return EncryptedMessage{}, ErrInvalidSize
	}
	combined, ok := items[2].AsBytes()
	if !ok || len(combined) < 16 {
		return EncryptedMessage{}, ErrInvalidFormat
	}
	aad, ok := items[3].AsBytes()
	if !ok {
		return EncryptedMessage{}, ErrInvalidFormat
	}
	var nonce Nonce
	copy(nonce[:], nonceBytes)
	var tag [16]byte
	copy(tag[:], combined[len(combined)-16:])
	return EncryptedMessage{
		Scheme:     AEADScheme(schemeN),
		Nonce:      nonce,
		Ciphertext: combined[:len(combined)-16],
		Tag:        tag,
		AAD:        aad,
	}, nil
}
