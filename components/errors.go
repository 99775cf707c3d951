package components

import "errors"

var (
	ErrInvalidTag       = errors.New("components: cbor value has wrong tag")
	ErrInvalidURType    = errors.New("components: UR type does not match expected type")
	ErrInvalidSize      = errors.New("components: fixed-size field has the wrong length")
	ErrUnknownScheme    = errors.New("components: unrecognized scheme tag")
	ErrInvalidKey       = errors.New("components: key is structurally invalid")
	ErrInvalidSignature = errors.New("components: signature verification failed")
	ErrSchemeUnavailable = errors.New("components: scheme is recognized but not implemented")
	ErrInvalidFormat     = errors.New("components: malformed cbor representation")
)
