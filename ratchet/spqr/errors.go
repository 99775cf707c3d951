package spqr

import "errors"

var (
	ErrWrongRole       = errors.New("spqr: state machine call invalid for this role's current state")
	ErrInvalidMAC      = errors.New("spqr: header or ciphertext authenticator check failed")
	ErrChainBroken     = errors.New("spqr: authenticator update cannot proceed")
	ErrTooFar          = errors.New("spqr: epoch advance exceeds maxJump")
	ErrTooManyOOO      = errors.New("spqr: out-of-order key cache exceeds maxOooKeys")
	ErrUnexpectedEpoch = errors.New("spqr: received epoch does not match the expected sequence")
	ErrInvalidFormat   = errors.New("spqr: malformed wire representation")
)
