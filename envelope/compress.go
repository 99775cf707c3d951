package envelope

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/gordian-core/gordian/components"
)

// Compress replaces the whole envelope e (subject and assertions) with a
// Compressed node carrying
// DEFLATE(e's wire bytes), prefixed with e's own digest so Decompress can
// verify it recovered exactly what was compressed without re-deriving the
// digest from a structure it hasn't decoded yet. No third-party library in
// the pack offers a DEFLATE codec; compress/flate is the standard
// library's own implementation of the format and is used directly.
func Compress(e *Envelope) (*Envelope, error) {
	raw, err := e.Bytes()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	payload := make([]byte, 0, 32+buf.Len())
	payload = append(payload, e.digest[:]...)
	payload = append(payload, buf.Bytes()...)
	return &Envelope{kind: KindCompressed, compressed: payload, digest: e.digest}, nil
}

// Decompress reverses Compress, verifying the recovered envelope's digest
// matches the one carried in the compressed payload's header.
func Decompress(e *Envelope) (*Envelope, error) {
	if e.kind != KindCompressed {
		return nil, ErrNotCompressed
	}
	if len(e.compressed) < 32 {
		return nil, ErrInvalidFormat
	}
	want, err := components.DigestFromBytes(e.compressed[:32])
	if err != nil {
		return nil, err
	}
	r := flate.NewReader(bytes.NewReader(e.compressed[32:]))
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	restored, err := FromBytes(raw)
	if err != nil {
		return nil, err
	}
	if restored.digest != want {
		return nil, ErrDigestMismatch
	}
	return restored, nil
}
