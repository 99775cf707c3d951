package tripleratchet

import (
	"crypto/sha256"

	"github.com/gordian-core/gordian/crypto"
	"github.com/gordian-core/gordian/crypto/aescbc"
	"github.com/gordian-core/gordian/crypto/ed25519group"
	"github.com/gordian-core/gordian/crypto/hkdf"
	gordianhmac "github.com/gordian-core/gordian/crypto/hmac"
	"github.com/gordian-core/gordian/ratchet/doubleratchet"
	"github.com/gordian-core/gordian/ratchet/spqr"
)

// MaxSkippedMessageKeys mirrors the classical double ratchet's cache
// bound (spec.md §4.3.1's MAX_MESSAGE_KEYS, shared by the braided chain).
const MaxSkippedMessageKeys = doubleratchet.MaxSkippedMessageKeys

var (
	rootKDFInfo = []byte("GordianTripleRatchet_RootKey")
	msgKDFInfo  = []byte("GordianTripleRatchet_MessageKey")
)

type skippedKey struct {
	ratchetKey ed25519group.PublicKey
	counter    uint32
}

// Session braids a classical X25519 double ratchet with an SPQR
// post-quantum sub-chain (spec.md §4.3.2). Every DH ratchet step is
// driven together with one completed SPQR epoch: advance DH, advance
// SPQR, derive the new root/chain keys from both outputs, only then
// resume message encryption — spec.md's "Ordering MUST be: advance DH,
// advance SPQR, derive message key, only then encrypt/decrypt."
//
// The wire-level choreography of the four SPQR sub-messages (header,
// encapsulation key, two ciphertext chunks) riding alongside classical
// ratchet messages is left unspecified by spec.md beyond this ordering
// rule, so DHRatchetStep takes an already-completed SPQR epoch secret as
// a parameter rather than this package inventing a specific multiplexed
// byte layout for it; callers drive a pair of spqr.SendEK/spqr.SendCT
// state machines (see ratchet/spqr) alongside the session and feed the
// resulting epoch secret in here.
type Session struct {
	selfIdentity doubleratchet.IdentityKeyPair

	dhSelf   ed25519group.PrivateKey
	dhPub    ed25519group.PublicKey
	dhRemote *ed25519group.PublicKey

	rootKey [32]byte
	Auth    spqr.Authenticator

	sendChainKey *[32]byte
	sendN        uint32

	recvChainKey *[32]byte
	recvN        uint32

	prevSendChainLen uint32

	skipped     map[skippedKey][32]byte
	skippedKeys []skippedKey
}

// NewSessionAlice starts Alice's session from her PQXDH outputs: the
// chain key PQXDH derived doubles directly as her first sending chain
// (spec.md §4.3.2 step 4 hands both a rootKey and a chainKey, unlike
// classical X3DH which hands only a root key and needs an extra DH
// ratchet step to seed the first chain).
func NewSessionAlice(identity doubleratchet.IdentityKeyPair, rootKey, chainKey, pqrAuthKey [32]byte, ephemeral ed25519group.PrivateKey, bobSignedPreKey ed25519group.PublicKey) (*Session, error) {
	dhPub, err := ephemeral.Public()
	if err != nil {
		return nil, err
	}
	auth, err := spqr.SeedAuthenticator(pqrAuthKey)
	if err != nil {
		return nil, err
	}
	return &Session{
		selfIdentity: identity,
		dhSelf:       ephemeral,
		dhPub:        *dhPub,
		dhRemote:     &bobSignedPreKey,
		rootKey:      rootKey,
		Auth:         auth,
		sendChainKey: &chainKey,
		skipped:      map[skippedKey][32]byte{},
	}, nil
}

// NewSessionBob starts Bob's session: the same chainKey Alice derived is
// his first receiving chain; his dhRemote stays nil until Alice's first
// message reveals her base key.
func NewSessionBob(identity doubleratchet.IdentityKeyPair, rootKey, chainKey, pqrAuthKey [32]byte, signedPreKey ed25519group.PrivateKey) (*Session, error) {
	pub, err := signedPreKey.Public()
	if err != nil {
		return nil, err
	}
	auth, err := spqr.SeedAuthenticator(pqrAuthKey)
	if err != nil {
		return nil, err
	}
	return &Session{
		selfIdentity: identity,
		dhSelf:       signedPreKey,
		dhPub:        *pub,
		rootKey:      rootKey,
		Auth:         auth,
		recvChainKey: &chainKey,
		skipped:      map[skippedKey][32]byte{},
	}, nil
}

func kdfRootKey(rootKey [32]byte, dhOut, spqrSecret []byte) (newRoot, chainKey [32]byte, err error) {
	ikm := append(append([]byte(nil), dhOut...), spqrSecret...)
	buf := make([]byte, 64)
	if _, err := hkdf.KDF(sha256.New, ikm, rootKey[:], rootKDFInfo, buf); err != nil {
		return [32]byte{}, [32]byte{}, err
	}
	copy(newRoot[:], buf[:32])
	copy(chainKey[:], buf[32:])
	return newRoot, chainKey, nil
}

func kdfChainKey(ck [32]byte) (nextChainKey, messageKey [32]byte) {
	// ck is a fixed 32-byte array, so ck[:] can never be the empty key
	// hmac.Hash rejects; the error is unreachable here.
	mk, _ := gordianhmac.Hash(sha256.New, ck[:], []byte{0x01})
	nck, _ := gordianhmac.Hash(sha256.New, ck[:], []byte{0x02})
	copy(messageKey[:], mk)
	copy(nextChainKey[:], nck)
	return nextChainKey, messageKey
}

func messageCipherKeys(mk [32]byte) (encKey, authKey [32]byte, iv [16]byte, err error) {
	buf := make([]byte, 80)
	if _, err := hkdf.KDF(sha256.New, mk[:], nil, msgKDFInfo, buf); err != nil {
		return [32]byte{}, [32]byte{}, [16]byte{}, err
	}
	copy(encKey[:], buf[:32])
	copy(authKey[:], buf[32:64])
	copy(iv[:], buf[64:80])
	return encKey, authKey, iv, nil
}

// DHRatchetStep performs a full braided ratchet step on receipt of a new
// remote key: it derives the receiving chain from the old self key, then
// ratchets forward to derive a fresh sending chain, each DH output
// combined with the just-completed SPQR epoch secret.
func (s *Session) DHRatchetStep(remote ed25519group.PublicKey, spqrEpochSecret [32]byte) error {
	s.recvN = 0
	s.dhRemote = &remote

	dhOut, err := doubleratchet.DH(s.dhSelf, *s.dhRemote)
	if err != nil {
		return err
	}
	rk, ck, err := kdfRootKey(s.rootKey, dhOut, spqrEpochSecret[:])
	if err != nil {
		return err
	}
	s.rootKey = rk
	s.recvChainKey = &ck

	return s.RatchetForward(spqrEpochSecret)
}

// RatchetForward generates a fresh self DH key pair and derives a new
// sending chain against the current remote key, combined with a
// just-completed SPQR epoch secret. Used both as the second half of
// DHRatchetStep and standalone the first time a session needs to start
// sending after a PQXDH-bootstrapped receiving chain (spec.md's
// bootstrap hands a receiving or sending chain directly; the other side
// still needs one braided step before it can send).
func (s *Session) RatchetForward(spqrEpochSecret [32]byte) error {
	if s.dhRemote == nil {
		return doubleratchet.ErrNoRemoteRatchetKey
	}
	s.prevSendChainLen = s.sendN
	s.sendN = 0

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

	dhOut, err := doubleratchet.DH(s.dhSelf, *s.dhRemote)
	if err != nil {
		return err
	}
	rk, ck, err := kdfRootKey(s.rootKey, dhOut, spqrEpochSecret[:])
	if err != nil {
		return err
	}
	s.rootKey = rk
	s.sendChainKey = &ck
	return nil
}

// Encrypt advances the sending chain and encrypts plaintext, exactly as
// the classical double ratchet does (spec.md §4.3.1's construction,
// reused unchanged for the braided session's message bodies).
func (s *Session) Encrypt(plaintext, associatedData []byte, receiverIdentity ed25519group.PublicKey) (doubleratchet.SignalMessage, error) {
	if s.sendChainKey == nil {
		return doubleratchet.SignalMessage{}, doubleratchet.ErrNoRemoteRatchetKey
	}
	nextCK, mk := kdfChainKey(*s.sendChainKey)
	s.sendChainKey = &nextCK

	header := doubleratchet.Header{RatchetKey: s.dhPub, PN: s.prevSendChainLen, N: s.sendN}
	s.sendN++

	encKey, authKey, iv, err := messageCipherKeys(mk)
	if err != nil {
		return doubleratchet.SignalMessage{}, err
	}
	ciphertext, err := aescbc.Encrypt(plaintext, encKey, iv)
	if err != nil {
		return doubleratchet.SignalMessage{}, err
	}

	msg := doubleratchet.SignalMessage{Version: doubleratchet.ProtocolVersion, Header: header, Ciphertext: ciphertext}
	mac, err := s.mac(msg, authKey, associatedData, s.selfIdentity.Pub, receiverIdentity)
	if err != nil {
		return doubleratchet.SignalMessage{}, err
	}
	copy(msg.MAC[:], mac)
	return msg, nil
}

func (s *Session) mac(msg doubleratchet.SignalMessage, authKey [32]byte, associatedData []byte, sender, receiver ed25519group.PublicKey) ([]byte, error) {
	body, err := msg.MacInput()
	if err != nil {
		return nil, err
	}
	body = append(body, sender[:]...)
	body = append(body, receiver[:]...)
	body = append(body, associatedData...)
	return gordianhmac.Hash(sha256.New, authKey[:], body)
}

// Decrypt authenticates and decrypts msg. If msg's ratchet key is new and
// the session has already learned a remote key (i.e. this is not the
// very first message on a PQXDH-bootstrapped chain), it performs a
// braided DH+SPQR ratchet step first via spqrEpochSecretFor, which the
// caller supplies having already driven its local SPQR role to a fresh
// epoch.
func (s *Session) Decrypt(msg doubleratchet.SignalMessage, associatedData []byte, senderIdentity ed25519group.PublicKey, spqrEpochSecretFor func() ([32]byte, error)) ([]byte, error) {
	if s.dhRemote == nil {
		s.dhRemote = &msg.Header.RatchetKey
	} else if *s.dhRemote != msg.Header.RatchetKey {
		if err := s.trySkipMessageKeys(msg.Header.PN); err != nil {
			return nil, err
		}
		epochSecret, err := spqrEpochSecretFor()
		if err != nil {
			return nil, err
		}
		if err := s.DHRatchetStep(msg.Header.RatchetKey, epochSecret); err != nil {
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
	return plaintext, nil
}

func (s *Session) decryptWithKey(mk [32]byte, msg doubleratchet.SignalMessage, associatedData []byte, senderIdentity ed25519group.PublicKey) ([]byte, error) {
	encKey, authKey, iv, err := messageCipherKeys(mk)
	if err != nil {
		return nil, err
	}
	expected, err := s.mac(msg, authKey, associatedData, senderIdentity, s.selfIdentity.Pub)
	if err != nil {
		return nil, err
	}
	if !crypto.ConstantTimeCompare(expected, msg.MAC[:]) {
		return nil, ErrMACMismatch
	}
	return aescbc.Decrypt(msg.Ciphertext, encKey, iv)
}

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

// DHPublicKey returns the session's current ratchet public key.
func (s *Session) DHPublicKey() ed25519group.PublicKey { return s.dhPub }

// CanSend reports whether the session currently holds a sending chain.
func (s *Session) CanSend() bool { return s.sendChainKey != nil }

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
