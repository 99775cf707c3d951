package doubleratchet

import (
	"crypto/sha256"

	"github.com/gordian-core/gordian/crypto"
	"github.com/gordian-core/gordian/crypto/aescbc"
	"github.com/gordian-core/gordian/crypto/ed25519group"
	"github.com/gordian-core/gordian/crypto/hkdf"
	gordianhmac "github.com/gordian-core/gordian/crypto/hmac"
)

// MaxSkippedMessageKeys bounds how many skipped message keys a session
// caches across all chains before evicting the oldest (spec.md §4.3.1's
// MAX_MESSAGE_KEYS).
const MaxSkippedMessageKeys = 2000

var (
	rootKDFInfo = []byte("GordianDoubleRatchet_RootKey")
	msgKDFInfo  = []byte("GordianDoubleRatchet_MessageKey")
)

type skippedKey struct {
	ratchetKey ed25519group.PublicKey
	counter    uint32
}

// Session is one end of an established double-ratchet conversation.
// Encrypt and Decrypt update the Session's fields in place, so every
// holder of the same pointer sees the advanced state.
type Session struct {
	selfIdentity IdentityKeyPair

	dhSelf ed25519group.PrivateKey
	dhPub  ed25519group.PublicKey
	dhRemote *ed25519group.PublicKey

	rootKey [32]byte

	sendChainKey *[32]byte
	sendN        uint32

	recvChainKey *[32]byte
	recvN        uint32

	prevSendChainLen uint32

	state State

	skipped     map[skippedKey][32]byte
	skippedKeys []skippedKey // FIFO order, for MaxSkippedMessageKeys eviction
}

// NewSessionAlice starts a session from Alice's side after X3DH: she
// already holds the shared secret and the X3DH ephemeral key pair
// ProcessPreKeyBundle generated for her, which doubles as her first double
// ratchet sending key and is the BaseKey published in her
// PreKeySignalMessage, and initializes her sending chain against Bob's
// signed prekey as the first remote ratchet key (spec.md's `Fresh
// --processPreKeyBundle--> PendingPreKey`).
func NewSessionAlice(identity IdentityKeyPair, sk [32]byte, ephemeral ed25519group.PrivateKey, bobSignedPreKey ed25519group.PublicKey) (*Session, error) {
	dhPub, err := ephemeral.Public()
	if err != nil {
		return nil, err
	}
	s := &Session{
		selfIdentity: identity,
		dhSelf:       ephemeral,
		dhPub:        *dhPub,
		dhRemote:     &bobSignedPreKey,
		rootKey:      sk,
		state:        StatePendingPreKey,
		skipped:      map[skippedKey][32]byte{},
	}
	dhOut, err := dh(s.dhSelf, *s.dhRemote)
	if err != nil {
		return nil, err
	}
	rk, ck, err := kdfRootKey(s.rootKey, dhOut)
	if err != nil {
		return nil, err
	}
	s.rootKey = rk
	s.sendChainKey = &ck
	return s, nil
}

// NewSessionBob starts a session from Bob's side after X3DH: he holds the
// shared secret and his own signed prekey pair, and waits to learn
// Alice's first ratchet key from her first message (spec.md's `Fresh
// --decrypt(PreKeySignalMessage)--> Established`).
func NewSessionBob(identity IdentityKeyPair, sk [32]byte, signedPreKey ed25519group.PrivateKey) (*Session, error) {
	pub, err := signedPreKey.Public()
	if err != nil {
		return nil, err
	}
	return &Session{
		selfIdentity: identity,
		dhSelf:       signedPreKey,
		dhPub:        *pub,
		rootKey:      sk,
		state:        StateFresh,
		skipped:      map[skippedKey][32]byte{},
	}, nil
}

func kdfRootKey(rootKey [32]byte, dhOut []byte) (newRoot [32]byte, chainKey [32]byte, err error) {
	buf := make([]byte, 64)
	if _, err := hkdf.KDF(sha256.New, dhOut, rootKey[:], rootKDFInfo, buf); err != nil {
		return [32]byte{}, [32]byte{}, err
	}
	copy(newRoot[:], buf[:32])
	copy(chainKey[:], buf[32:])
	return newRoot, chainKey, nil
}

func kdfChainKey(ck [32]byte) (nextChainKey [32]byte, messageKey [32]byte) {
	// ck is a fixed 32-byte array, so ck[:] can never be the empty key
	// hmac.Hash rejects; the error is unreachable here.
	mk, _ := gordianhmac.Hash(sha256.New, ck[:], []byte{0x01})
	nck, _ := gordianhmac.Hash(sha256.New, ck[:], []byte{0x02})
	copy(messageKey[:], mk)
	copy(nextChainKey[:], nck)
	return nextChainKey, messageKey
}

// messageCipherKeys expands a 32-byte message key into the AES-256-CBC
// encryption key, HMAC-SHA256 authentication key, and IV the wire format
// uses (spec.md §4.3.1).
func messageCipherKeys(mk [32]byte) (encKey [32]byte, authKey [32]byte, iv [16]byte, err error) {
	buf := make([]byte, 80)
	if _, err := hkdf.KDF(sha256.New, mk[:], nil, msgKDFInfo, buf); err != nil {
		return [32]byte{}, [32]byte{}, [16]byte{}, err
	}
	copy(encKey[:], buf[:32])
	copy(authKey[:], buf[32:64])
	copy(iv[:], buf[64:80])
	return encKey, authKey, iv, nil
}

// Encrypt advances the sending chain and encrypts plaintext, binding
// receiverIdentity (and the session's own identity as sender) into the
// message MAC.
func (s *Session) Encrypt(plaintext, associatedData []byte, receiverIdentity ed25519group.PublicKey) (SignalMessage, error) {
	if s.sendChainKey == nil {
		return SignalMessage{}, ErrNoRemoteRatchetKey
	}
	nextCK, mk := kdfChainKey(*s.sendChainKey)
	s.sendChainKey = &nextCK

	header := Header{RatchetKey: s.dhPub, PN: s.prevSendChainLen, N: s.sendN}
	s.sendN++

	encKey, authKey, iv, err := messageCipherKeys(mk)
	if err != nil {
		return SignalMessage{}, err
	}
	ciphertext, err := aescbc.Encrypt(plaintext, encKey, iv)
	if err != nil {
		return SignalMessage{}, err
	}

	msg := SignalMessage{Version: protocolVersion, Header: header, Ciphertext: ciphertext}
	macInput, err := msg.macInput()
	if err != nil {
		return SignalMessage{}, err
	}
	macInput = append(macInput, s.selfIdentity.Pub[:]...)
	macInput = append(macInput, receiverIdentity[:]...)
	macInput = append(macInput, associatedData...)
	fullMAC, err := gordianhmac.Hash(sha256.New, authKey[:], macInput)
	if err != nil {
		return SignalMessage{}, err
	}
	copy(msg.MAC[:], fullMAC[:8])

	s.state = StateEstablished
	return msg, nil
}

// Decrypt authenticates and decrypts msg, performing a DH ratchet step if
// msg.Header.RatchetKey is new, and caching any message keys skipped along
// the way (spec.md §4.3.1's out-of-order handling).
func (s *Session) Decrypt(msg SignalMessage, associatedData []byte, senderIdentity ed25519group.PublicKey) ([]byte, error) {
	if s.dhRemote == nil || *s.dhRemote != msg.Header.RatchetKey {
		if err := s.trySkipMessageKeys(msg.Header.PN); err != nil {
			return nil, err
		}
		if err := s.dhRatchetStep(msg.Header.RatchetKey); err != nil {
			return nil, err
		}
	}

	key := skippedKey{ratchetKey: msg.Header.RatchetKey, counter: msg.Header.N}
	if mk, ok := s.skipped[key]; ok {
		plaintext, err := s.decryptWithKey(mk, msg, associatedData, senderIdentity)
		if err != nil {
			return nil, err
		}
		delete(s.skipped, key)
		return plaintext, nil
	}

	if msg.Header.N < s.recvN {
		return nil, ErrDuplicateMessage
	}
	if err := s.trySkipMessageKeys(msg.Header.N); err != nil {
		return nil, err
	}

	nextCK, mk := kdfChainKey(*s.recvChainKey)
	plaintext, err := s.decryptWithKey(mk, msg, associatedData, senderIdentity)
	if err != nil {
		return nil, err
	}
	s.recvChainKey = &nextCK
	s.recvN = msg.Header.N + 1
	s.state = StateEstablished
	return plaintext, nil
}

func (s *Session) decryptWithKey(mk [32]byte, msg SignalMessage, associatedData []byte, senderIdentity ed25519group.PublicKey) ([]byte, error) {
	encKey, authKey, iv, err := messageCipherKeys(mk)
	if err != nil {
		return nil, err
	}
	macInput, err := msg.macInput()
	if err != nil {
		return nil, err
	}
	macInput = append(macInput, senderIdentity[:]...)
	macInput = append(macInput, s.selfIdentity.Pub[:]...)
	macInput = append(macInput, associatedData...)
	expected, err := gordianhmac.Hash(sha256.New, authKey[:], macInput)
	if err != nil {
		return nil, err
	}
	if !crypto.ConstantTimeCompare(expected[:8], msg.MAC[:]) {
		return nil, ErrMACMismatch
	}
	return aescbc.Decrypt(msg.Ciphertext, encKey, iv)
}

// trySkipMessageKeys advances the current receiving chain up to (not
// including) upTo, caching each derived key so an out-of-order message can
// still be decrypted later.
func (s *Session) trySkipMessageKeys(upTo uint32) error {
	if s.recvChainKey == nil {
		return nil
	}
	if upTo < s.recvN {
		return nil
	}
	if upTo-s.recvN > uint32(MaxSkippedMessageKeys) {
		return ErrTooManySkipped
	}
	for s.recvN < upTo {
		nextCK, mk := kdfChainKey(*s.recvChainKey)
		key := skippedKey{ratchetKey: *s.dhRemote, counter: s.recvN}
		s.cacheSkippedKey(key, mk)
		s.recvChainKey = &nextCK
		s.recvN++
	}
	return nil
}

func (s *Session) cacheSkippedKey(key skippedKey, mk [32]byte) {
	if _, exists := s.skipped[key]; exists {
		return
	}
	if len(s.skippedKeys) >= MaxSkippedMessageKeys {
		oldest := s.skippedKeys[0]
		s.skippedKeys = s.skippedKeys[1:]
		delete(s.skipped, oldest)
	}
	s.skipped[key] = mk
	s.skippedKeys = append(s.skippedKeys, key)
}

// dhRatchetStep performs a full DH ratchet: skip remaining keys on the old
// receiving chain, generate a new self ratchet key pair, and derive fresh
// sending and receiving chains.
func (s *Session) dhRatchetStep(remote ed25519group.PublicKey) error {
	s.prevSendChainLen = s.sendN
	s.sendN = 0
	s.recvN = 0
	s.dhRemote = &remote

	dhOut, err := dh(s.dhSelf, *s.dhRemote)
	if err != nil {
		return err
	}
	rk, ck, err := kdfRootKey(s.rootKey, dhOut)
	if err != nil {
		return err
	}
	s.rootKey = rk
	s.recvChainKey = &ck

	newPriv, err := ed25519group.New()
	if err != nil {
		return err
	}
	newPub, err := newPriv.Public()
	if err != nil {
		return err
	}
	s.dhSelf = *newPriv
	s.dhPub = *newPub

	dhOut2, err := dh(s.dhSelf, *s.dhRemote)
	if err != nil {
		return err
	}
	rk2, ck2, err := kdfRootKey(s.rootKey, dhOut2)
	if err != nil {
		return err
	}
	s.rootKey = rk2
	s.sendChainKey = &ck2
	return nil
}

// State reports the session's current position in the state machine.
func (s *Session) State() State { return s.state }
