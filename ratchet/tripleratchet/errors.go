package tripleratchet

import "errors"

var (
	ErrInvalidPreKeyBundle = errors.New("tripleratchet: prekey bundle signature did not verify")
	ErrInvalidKyberPreKey  = errors.New("tripleratchet: kyber prekey signature did not verify")
	ErrDuplicateMessage    = errors.New("tripleratchet: counter already consumed on this chain")
	ErrMACMismatch         = errors.New("tripleratchet: message authentication failed")
	ErrTooManySkipped      = errors.New("tripleratchet: too many skipped messages in one chain step")
	ErrUnsupportedLevel    = errors.New("tripleratchet: unsupported ML-KEM parameter level")
	ErrInvalidFormat       = errors.New("tripleratchet: malformed wire representation")
)
