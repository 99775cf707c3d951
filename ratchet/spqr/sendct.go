package spqr

import "github.com/gordian-core/gordian/components"

type sendCTState int

const (
	stateIdle sendCTState = iota
	stateHeaderReceived
	stateEkReceived
)

// SendCT runs the send_ct role: the mirror of SendEK. It validates the
// peer's header, waits for their encapsulation key, encapsulates a fresh
// shared secret against it, and emits the chunked ciphertext and its MAC
// (spec.md §4.3.3: "send_ct is the mirror").
type SendCT struct {
	epoch  uint64
	auth   Authenticator
	params Params
	scheme components.KEMScheme
	state  sendCTState
	ek     components.KEMPublicKey
	ooo    *oooCache
}

func NewSendCT(auth Authenticator, scheme components.KEMScheme, params Params) *SendCT {
	return &SendCT{auth: auth, params: params, scheme: scheme, state: stateIdle, ooo: newOOOCache(params.MaxOOOKeys)}
}

// RecvHeader validates the peer's header for epoch against the current
// authenticator (Idle -> HeaderReceived). epoch may run ahead of the
// role's own counter by up to params.MaxJump; anything further is
// ErrTooFar.
func (s *SendCT) RecvHeader(epoch uint64, hdr, hdrMac []byte) error {
	if s.state != stateIdle {
		return ErrWrongRole
	}
	if err := checkJump(s.epoch, epoch, s.params.MaxJump); err != nil {
		return err
	}
	ok, err := s.auth.VerifyHdr(epoch, hdr, hdrMac)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidMAC
	}
	s.epoch = epoch
	s.state = stateHeaderReceived
	return nil
}

// RecvEk records the peer's encapsulation public key (HeaderReceived ->
// EkReceived).
func (s *SendCT) RecvEk(ek components.KEMPublicKey) error {
	if s.state != stateHeaderReceived {
		return ErrWrongRole
	}
	s.ek = ek
	s.state = stateEkReceived
	return nil
}

// Encapsulate completes the epoch: it encapsulates against the peer's ek,
// derives the epoch secret, updates the authenticator, MACs the resulting
// ciphertext under the updated authenticator, and splits it into chunked
// wire form. On success the role resets to Idle for the next epoch.
func (s *SendCT) Encapsulate() (ct1, ct2, ctMac []byte, nextEpoch uint64, auth Authenticator, epochSecret [32]byte, err error) {
	if s.state != stateEkReceived {
		return nil, nil, nil, 0, Authenticator{}, [32]byte{}, ErrWrongRole
	}
	ct, sharedSecret, err := components.Encapsulate(s.ek)
	if err != nil {
		return nil, nil, nil, 0, Authenticator{}, [32]byte{}, err
	}
	epochSecret, err = DeriveEpochSecret(s.epoch, sharedSecret)
	if err != nil {
		return nil, nil, nil, 0, Authenticator{}, [32]byte{}, err
	}
	updated, err := s.auth.Update(s.epoch, epochSecret[:])
	if err != nil {
		return nil, nil, nil, 0, Authenticator{}, [32]byte{}, ErrChainBroken
	}
	ctMac, err = updated.MacCt(s.epoch, ct)
	if err != nil {
		return nil, nil, nil, 0, Authenticator{}, [32]byte{}, err
	}
	ct1, ct2 = splitChunks(ct)

	if err := s.ooo.put(s.epoch, epochSecret); err != nil {
		return nil, nil, nil, 0, Authenticator{}, [32]byte{}, err
	}

	s.auth = updated
	s.epoch++
	s.ek = components.KEMPublicKey{}
	s.state = stateIdle
	return ct1, ct2, ctMac, s.epoch, s.auth, epochSecret, nil
}

// Epoch reports the role's current epoch number.
func (s *SendCT) Epoch() uint64 { return s.epoch }

// EpochSecret returns a previously completed epoch's secret from the
// out-of-order cache, if still held.
func (s *SendCT) EpochSecret(epoch uint64) ([32]byte, bool) { return s.ooo.get(epoch) }
