package x3dh

import "errors"

var (
	ErrInvalidPreKeyBundle = errors.New("x3dh: prekey bundle signature did not verify")
	ErrInvalidSecretLength = errors.New("x3dh: DH output was not 32 bytes")
)
