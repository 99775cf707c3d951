package spqr

import (
	"github.com/gordian-core/gordian/components"
	"github.com/gordian-core/gordian/rand"
)

type sendEKState int

const (
	stateKeysUnsampled sendEKState = iota
	stateHeaderSent
	stateEkSent
	stateEkSentCt1Received
)

// SendEK runs the send_ek role of one direction's SPQR sub-chain: it
// samples the KEM keypair for an epoch, publishes the public half, and
// completes the epoch once the peer's chunked ciphertext arrives (spec.md
// §4.3.3's send_ek transition table).
type SendEK struct {
	epoch  uint64
	auth   Authenticator
	params Params
	scheme components.KEMScheme
	state  sendEKState
	priv   components.KEMPrivateKey
	ct1    []byte
	ooo    *oooCache
}

func NewSendEK(auth Authenticator, scheme components.KEMScheme, params Params) *SendEK {
	return &SendEK{auth: auth, params: params, scheme: scheme, state: stateKeysUnsampled, ooo: newOOOCache(params.MaxOOOKeys)}
}

// SendHeader emits this epoch's header and its MAC (KeysUnsampled ->
// HeaderSent).
func (s *SendEK) SendHeader() (hdr, hdrMac []byte, err error) {
	if s.state != stateKeysUnsampled {
		return nil, nil, ErrWrongRole
	}
	hdr = beEpoch(s.epoch)
	hdrMac, err = s.auth.MacHdr(s.epoch, hdr)
	if err != nil {
		return nil, nil, err
	}
	s.state = stateHeaderSent
	return hdr, hdrMac, nil
}

// SendEk samples a fresh KEM keypair for this epoch and publishes the
// public half (HeaderSent -> EkSent).
func (s *SendEK) SendEk(gen rand.Generator) (components.KEMPublicKey, error) {
	if s.state != stateHeaderSent {
		return components.KEMPublicKey{}, ErrWrongRole
	}
	priv, pub, err := components.GenerateKEMKeyPair(gen, s.scheme)
	if err != nil {
		return components.KEMPublicKey{}, err
	}
	s.priv = priv
	s.state = stateEkSent
	return pub, nil
}

// RecvCt1 buffers the first chunk of the peer's ciphertext (EkSent ->
// EkSentCt1Received).
func (s *SendEK) RecvCt1(ct1 []byte) error {
	if s.state != stateEkSent {
		return ErrWrongRole
	}
	s.ct1 = append([]byte(nil), ct1...)
	s.state = stateEkSentCt1Received
	return nil
}

// RecvCt2 completes the epoch: it assembles the full ciphertext,
// decapsulates it, derives the epoch secret, updates the authenticator,
// and only then checks ctMac against the *updated* authenticator (spec.md
// §4.3.3: "Authenticator is then updated with the epoch secret before the
// ciphertext MAC is checked"). On success the role resets to
// KeysUnsampled for the next epoch.
func (s *SendEK) RecvCt2(ct2, ctMac []byte) (nextEpoch uint64, auth Authenticator, epochSecret [32]byte, err error) {
	if s.state != stateEkSentCt1Received {
		return 0, Authenticator{}, [32]byte{}, ErrWrongRole
	}
	ct := joinChunks(s.ct1, ct2)
	sharedSecret, err := components.Decapsulate(s.priv, components.KEMCiphertext{Scheme: s.scheme, Raw: ct})
	if err != nil {
		return 0, Authenticator{}, [32]byte{}, err
	}
	epochSecret, err = DeriveEpochSecret(s.epoch, sharedSecret)
	if err != nil {
		return 0, Authenticator{}, [32]byte{}, err
	}
	updated, err := s.auth.Update(s.epoch, epochSecret[:])
	if err != nil {
		return 0, Authenticator{}, [32]byte{}, ErrChainBroken
	}
	ok, err := updated.VerifyCt(s.epoch, ct, ctMac)
	if err != nil {
		return 0, Authenticator{}, [32]byte{}, err
	}
	if !ok {
		return 0, Authenticator{}, [32]byte{}, ErrInvalidMAC
	}
	if err := s.ooo.put(s.epoch, epochSecret); err != nil {
		return 0, Authenticator{}, [32]byte{}, err
	}

	s.auth = updated
	s.epoch++
	s.priv = components.KEMPrivateKey{}
	s.ct1 = nil
	s.state = stateKeysUnsampled
	return s.epoch, s.auth, epochSecret, nil
}

// Epoch reports the role's current epoch number.
func (s *SendEK) Epoch() uint64 { return s.epoch }

// EpochSecret returns a previously completed epoch's secret from the
// out-of-order cache, if still held.
func (s *SendEK) EpochSecret(epoch uint64) ([32]byte, bool) { return s.ooo.get(epoch) }
