package envelope

import "errors"

var (
	ErrNotANode          = errors.New("envelope: operation requires a node or assertion-bearing envelope")
	ErrNotWrapped        = errors.New("envelope: unwrap requires a wrapped envelope")
	ErrNotEncrypted      = errors.New("envelope: decryptSubject requires an encrypted subject")
	ErrNotCompressed     = errors.New("envelope: decompress requires a compressed envelope")
	ErrDigestMismatch    = errors.New("envelope: decrypted/decompressed digest does not match carried digest")
	ErrNoSignatures      = errors.New("envelope: no 'signed' assertions present")
	ErrVerificationFailed = errors.New("envelope: signature verification failed")
	ErrDanglingElision   = errors.New("envelope: elision would leave a dangling reference")
	ErrInvalidFormat     = errors.New("envelope: malformed wire representation")
)
