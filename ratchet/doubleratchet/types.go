package doubleratchet

import (
	"github.com/gordian-core/gordian/crypto/ed25519group"
	"github.com/gordian-core/gordian/dcbor"
)

// State is a session's position in spec.md §4.3.1's state machine.
type State int

const (
	StateFresh State = iota
	StatePendingPreKey
	StateEstablished
)

// protocolVersion packs (version<<4)|version per spec.md §4.3.1; v3 is the
// only version this package speaks.
const protocolVersion byte = 0x33

// ProtocolVersion exports protocolVersion for sibling ratchet packages
// (ratchet/tripleratchet) that reuse SignalMessage as their own wire
// envelope.
const ProtocolVersion = protocolVersion

// Header is the per-message ratchet header: the sender's current DH
// ratchet public key, the length of the previous sending chain (so the
// receiver knows how many skipped keys to expect on the old chain), and
// this message's counter within the current sending chain.
type Header struct {
	RatchetKey ed25519group.PublicKey
	PN         uint32
	N          uint32
}

func (h Header) ToCBOR() dcbor.Value {
	return dcbor.NewArray(dcbor.NewBytes(h.RatchetKey[:]), dcbor.NewUint(uint64(h.PN)), dcbor.NewUint(uint64(h.N)))
}

func HeaderFromCBOR(v dcbor.Value) (Header, error) {
	items, ok := v.AsArray()
	if !ok || len(items) != 3 {
		return Header{}, ErrInvalidFormat
	}
	key, ok := items[0].AsBytes()
	if !ok || len(key) != 32 {
		return Header{}, ErrInvalidFormat
	}
	pn, ok := items[1].AsUint()
	if !ok {
		return Header{}, ErrInvalidFormat
	}
	n, ok := items[2].AsUint()
	if !ok {
		return Header{}, ErrInvalidFormat
	}
	var h Header
	copy(h.RatchetKey[:], key)
	h.PN = uint32(pn)
	h.N = uint32(n)
	return h, nil
}

// SignalMessage is an established-session ciphertext: a version byte, the
// ratchet header, the AES-256-CBC-encrypted body, and an 8-byte HMAC-SHA256
// truncation MAC binding the sender identity, receiver identity, and the
// preceding bytes (spec.md §4.3.1's wire format).
type SignalMessage struct {
	Version    byte
	Header     Header
	Ciphertext []byte
	MAC        [8]byte
}

func (m SignalMessage) bodyCBOR() dcbor.Value {
	return dcbor.NewArray(m.Header.ToCBOR(), dcbor.NewBytes(m.Ciphertext))
}

// macInput is every byte the MAC covers except the MAC itself.
func (m SignalMessage) macInput() ([]byte, error) {
	return m.MacInput()
}

// MacInput is every byte the MAC covers except the MAC itself, exported
// so ratchet/tripleratchet can compute the same braided-session MAC over
// a reused SignalMessage body without duplicating the CBOR encoding.
func (m SignalMessage) MacInput() ([]byte, error) {
	body, err := dcbor.Encode(m.bodyCBOR())
	if err != nil {
		return nil, err
	}
	return append([]byte{m.Version}, body...), nil
}

// Bytes renders the message's wire form: version || cbor([header,
// ciphertext]) || mac.
func (m SignalMessage) Bytes() ([]byte, error) {
	body, err := m.macInput()
	if err != nil {
		return nil, err
	}
	return append(body, m.MAC[:]...), nil
}

// SignalMessageFromBytes parses a wire-form message. It does not verify
// the MAC; callers authenticate via Session.Decrypt.
func SignalMessageFromBytes(b []byte) (SignalMessage, error) {
	if len(b) < 1+8 {
		return SignalMessage{}, ErrInvalidFormat
	}
	version := b[0]
	mac := b[len(b)-8:]
	bodyCBOR := b[1 : len(b)-8]

	v, err := dcbor.Decode(bodyCBOR)
	if err != nil {
		return SignalMessage{}, err
	}
	items, ok := v.AsArray()
	if !ok || len(items) != 2 {
		return SignalMessage{}, ErrInvalidFormat
	}
	header, err := HeaderFromCBOR(items[0])
	if err != nil {
		return SignalMessage{}, err
	}
	ciphertext, ok := items[1].AsBytes()
	if !ok {
		return SignalMessage{}, ErrInvalidFormat
	}
	var m SignalMessage
	m.Version = version
	m.Header = header
	m.Ciphertext = append([]byte(nil), ciphertext...)
	copy(m.MAC[:], mac)
	return m, nil
}

// PreKeySignalMessage is the first message of a new session, carrying
// enough of Alice's X3DH inputs for Bob to derive the same shared secret.
type PreKeySignalMessage struct {
	RegistrationID uint32
	PreKeyID       *uint32
	SignedPreKeyID uint32
	BaseKey        ed25519group.PublicKey // Alice's ephemeral key
	IdentityKey    ed25519group.PublicKey
	Message        SignalMessage
}

func (m PreKeySignalMessage) ToCBOR() dcbor.Value {
	preKeyID := dcbor.NewNull()
	if m.PreKeyID != nil {
		preKeyID = dcbor.NewUint(uint64(*m.PreKeyID))
	}
	msgBytes, _ := m.Message.Bytes()
	return dcbor.NewArray(
		dcbor.NewUint(uint64(m.RegistrationID)),
		preKeyID,
		dcbor.NewUint(uint64(m.SignedPreKeyID)),
		dcbor.NewBytes(m.BaseKey[:]),
		dcbor.NewBytes(m.IdentityKey[:]),
		dcbor.NewBytes(msgBytes),
	)
}

func PreKeySignalMessageFromCBOR(v dcbor.Value) (PreKeySignalMessage, error) {
	items, ok := v.AsArray()
	if !ok || len(items) != 6 {
		return PreKeySignalMessage{}, ErrInvalidFormat
	}
	regID, ok := items[0].AsUint()
	if !ok {
		return PreKeySignalMessage{}, ErrInvalidFormat
	}
	var preKeyID *uint32
	if n, ok := items[1].AsUint(); ok {
		v := uint32(n)
		preKeyID = &v
	}
	signedID, ok := items[2].AsUint()
	if !ok {
		return PreKeySignalMessage{}, ErrInvalidFormat
	}
	baseKey, ok := items[3].AsBytes()
	if !ok || len(baseKey) != 32 {
		return PreKeySignalMessage{}, ErrInvalidFormat
	}
	idKey, ok := items[4].AsBytes()
	if !ok || len(idKey) != 32 {
		return PreKeySignalMessage{}, ErrInvalidFormat
	}
	msgBytes, ok := items[5].AsBytes()
	if !ok {
		return PreKeySignalMessage{}, ErrInvalidFormat
	}
	msg, err := SignalMessageFromBytes(msgBytes)
	if err != nil {
		return PreKeySignalMessage{}, err
	}
	var m PreKeySignalMessage
	m.RegistrationID = uint32(regID)
	m.PreKeyID = preKeyID
	m.SignedPreKeyID = uint32(signedID)
	copy(m.BaseKey[:], baseKey)
	copy(m.IdentityKey[:], idKey)
	m.Message = msg
	return m, nil
}

// Bytes renders the prekey message to bytes: version byte followed by its
// CBOR encoding.
func (m PreKeySignalMessage) Bytes() ([]byte, error) {
	body, err := dcbor.Encode(m.ToCBOR())
	if err != nil {
		return nil, err
	}
	return append([]byte{protocolVersion}, body...), nil
}

func PreKeySignalMessageFromBytes(b []byte) (PreKeySignalMessage, error) {
	if len(b) < 1 {
		return PreKeySignalMessage{}, ErrInvalidFormat
	}
	v, err := dcbor.Decode(b[1:])
	if err != nil {
		return PreKeySignalMessage{}, err
	}
	return PreKeySignalMessageFromCBOR(v)
}
