package dcbor

import "errors"

var (
	// ErrNonCanonical is returned by Encode when a Value cannot be
	// represented canonically (e.g. an infinite or negative-zero float, or
	// map entries that are not in canonical key order).
	ErrNonCanonical = errors.New("dcbor: value has no canonical encoding")

	// ErrNotCanonical is returned by Decode when input bytes decode to a
	// legal CBOR value that is not the canonical dCBOR encoding of it.
	ErrNotCanonical = errors.New("dcbor: input is not canonical dCBOR")

	ErrTrailingBytes  = errors.New("dcbor: trailing bytes after value")
	ErrTruncated      = errors.New("dcbor: truncated input")
	ErrUnsortedKeys   = errors.New("dcbor: map keys are not sorted")
	ErrDuplicateKeys  = errors.New("dcbor: map has duplicate keys")
	ErrInvalidUTF8    = errors.New("dcbor: text string is not valid UTF-8")
	ErrUnsupportedTag = errors.New("dcbor: tag not recognized by registry")

	// ErrTagConflict is returned by Register when a tag number is already
	// registered under a different name.
	ErrTagConflict = errors.New("dcbor: tag already registered with a different definition")

	// ErrTagSemanticError is returned when a tag's content validator
	// rejects the tagged value.
	ErrTagSemanticError = errors.New("dcbor: value failed tag content validation")
)
