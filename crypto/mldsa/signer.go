// Package mldsa wraps github.com/cloudflare/circl's ML-DSA implementations
// behind the generic circl/sign.Scheme interface, backing the
// "ml-dsa-{44,65,87}" signing schemes in components.SigningPrivateKey.
package mldsa

import (
	"errors"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
)

type Level int

const (
	Level44 Level = iota
	Level65
	Level87
)

var ErrUnknownLevel = errors.New("mldsa: unknown parameter level")

func scheme(level Level) (sign.Scheme, error) {
	switch level {
	case Level44:
		return mldsa44.Scheme(), nil
	case Level65:
		return mldsa65.Scheme(), nil
	case Level87:
		return mldsa87.Scheme(), nil
	default:
		return nil, ErrUnknownLevel
	}
}

func GenerateKeyPair(level Level) (pub, priv []byte, err error) {
	s, err := scheme(level)
	if err != nil {
		return nil, nil, err
	}
	pk, sk, err := s.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	pub, err = pk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	priv, err = sk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return pub, priv, nil
}

func Sign(level Level, privBytes, msg []byte) ([]byte, error) {
	s, err := scheme(level)
	if err != nil {
		return nil, err
	}
	sk, err := s.UnmarshalBinaryPrivateKey(privBytes)
	if err != nil {
		return nil, err
	}
	return s.Sign(sk, msg, nil), nil
}

func Verify(level Level, pubBytes, msg, sig []byte) (bool, error) {
	s, err := scheme(level)
	if err != nil {
		return false, err
	}
	pk, err := s.UnmarshalBinaryPublicKey(pubBytes)
	if err != nil {
		return false, err
	}
	return s.Verify(pk, msg, sig, nil), nil
}
