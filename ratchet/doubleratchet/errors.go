package doubleratchet

import "errors"

var (
	ErrInvalidSecretLength = errors.New("doubleratchet: derived secret has the wrong length")
	ErrDuplicateMessage    = errors.New("doubleratchet: counter already consumed on this chain")
	ErrTooManySkipped      = errors.New("doubleratchet: too many skipped messages in one chain step")
	ErrMACMismatch         = errors.New("doubleratchet: message authentication failed")
	ErrNoRemoteRatchetKey  = errors.New("doubleratchet: session has not yet received a remote ratchet key")
	ErrInvalidPreKeyBundle = errors.New("doubleratchet: prekey bundle signature did not verify")
	ErrMissingOneTimePreKey = errors.New("doubleratchet: initial message references a one-time prekey this session does not hold")
	ErrInvalidFormat        = errors.New("doubleratchet: malformed wire representation")
)
