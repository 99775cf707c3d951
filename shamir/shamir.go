package shamir

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"

	"github.com/gordian-core/gordian/rand"
)

const (
	// MinSecretLen and MaxSecretLen bound the secret sizes split/recover
	// accept — the same 16..32 byte range SSKR's reference scheme uses,
	// covering a 128..256-bit symmetric key.
	MinSecretLen = 16
	MaxSecretLen = 32

	digestLen = 4

	secretIndex = 255
	digestIndex = 254
)

var (
	ErrSecretLength     = errors.New("shamir: secret length must be even and within [MinSecretLen, MaxSecretLen]")
	ErrInvalidThreshold = errors.New("shamir: threshold must be >= 1 and <= count")
	ErrInvalidCount     = errors.New("shamir: count must be >= 1 and <= 253")
	ErrTooFewShares     = errors.New("shamir: not enough shares to meet the threshold")
	ErrShareLength      = errors.New("shamir: all shares must share the secret's length")
	ErrDuplicateIndex   = errors.New("shamir: duplicate share index")
	ErrChecksumFailure  = errors.New("shamir: recovered secret failed digest verification")
)

// Share is one output of Split: Index identifies which point on the
// secret's polynomial Data represents.
type Share struct {
	Index byte
	Data  []byte
}

func validSecretLen(n int) bool {
	return n%2 == 0 && n >= MinSecretLen && n <= MaxSecretLen
}

// Split divides secret into count shares, any threshold of which
// reconstruct it via Recover. threshold == 1 returns count identical
// copies of secret.
func Split(gen rand.Generator, threshold, count int, secret []byte) ([]Share, error) {
	if !validSecretLen(len(secret)) {
		return nil, ErrSecretLength
	}
	if count < 1 || count > 253 {
		return nil, ErrInvalidCount
	}
	if threshold < 1 || threshold > count {
		return nil, ErrInvalidThreshold
	}

	if threshold == 1 {
		shares := make([]Share, count)
		for i := 0; i < count; i++ {
			shares[i] = Share{Index: byte(i), Data: append([]byte(nil), secret...)}
		}
		return shares, nil
	}

	randomShareCount := threshold - 2
	base := make([]Share, 0, randomShareCount+2)
	for i := 0; i < randomShareCount; i++ {
		data := make([]byte, len(secret))
		if _, err := gen.Bytes(data); err != nil {
			return nil, err
		}
		base = append(base, Share{Index: byte(i), Data: data})
	}

	randomPart := make([]byte, len(secret)-digestLen)
	if _, err := gen.Bytes(randomPart); err != nil {
		return nil, err
	}
	digest := createDigest(randomPart, secret)
	digestShareData := append(append([]byte(nil), digest...), randomPart...)
	base = append(base, Share{Index: digestIndex, Data: digestShareData})
	base = append(base, Share{Index: secretIndex, Data: append([]byte(nil), secret...)})

	shares := make([]Share, 0, count)
	shares = append(shares, base[:randomShareCount]...)
	for i := randomShareCount; i < count; i++ {
		data := interpolateShare(base, byte(i), len(secret))
		shares = append(shares, Share{Index: byte(i), Data: data})
	}
	return shares, nil
}

// Recover reconstructs the original secret from any threshold-sized
// subset of Split's output shares, verifying the embedded digest.
// Mismatch returns ErrChecksumFailure.
func Recover(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, ErrTooFewShares
	}
	secretLen := len(shares[0].Data)
	if !validSecretLen(secretLen) {
		return nil, ErrSecretLength
	}
	seen := map[byte]bool{}
	for _, s := range shares {
		if len(s.Data) != secretLen {
			return nil, ErrShareLength
		}
		if seen[s.Index] {
			return nil, ErrDuplicateIndex
		}
		seen[s.Index] = true
	}

	if len(shares) == 1 {
		return append([]byte(nil), shares[0].Data...), nil
	}

	secret := interpolateShare(shares, secretIndex, secretLen)
	digestShareData := interpolateShare(shares, digestIndex, secretLen)
	digest := digestShareData[:digestLen]
	randomPart := digestShareData[digestLen:]
	if !hmac.Equal(digest, createDigest(randomPart, secret)) {
		return nil, ErrChecksumFailure
	}
	return secret, nil
}

func createDigest(randomPart, secret []byte) []byte {
	mac := hmac.New(sha256.New, randomPart)
	mac.Write(secret)
	return mac.Sum(nil)[:digestLen]
}

// interpolateShare evaluates, at x, the byte-wise polynomial implied by
// base's (index, data) points, producing a share of length secretLen.
func interpolateShare(base []Share, x byte, secretLen int) []byte {
	xs := make([]byte, len(base))
	for i, s := range base {
		xs[i] = s.Index
	}
	out := make([]byte, secretLen)
	ys := make([]byte, len(base))
	for byteIdx := 0; byteIdx < secretLen; byteIdx++ {
		for i, s := range base {
			ys[i] = s.Data[byteIdx]
		}
		out[byteIdx] = interpolateAt(xs, ys, x)
	}
	return out
}

// interpolateAt evaluates, at an arbitrary point x, the GF(256) Lagrange
// polynomial through the points (xs[i], ys[i]).
func interpolateAt(xs, ys []byte, x byte) byte {
	var result byte
	for i := range xs {
		if xs[i] == x {
			return ys[i]
		}
	}
	for i := range xs {
		term := ys[i]
		for j := range xs {
			if i == j {
				continue
			}
			num := gfAdd(x, xs[j])
			den := gfAdd(xs[i], xs[j])
			term = gfMul(term, gfDiv(num, den))
		}
		result = gfAdd(result, term)
	}
	return result
}
