package uniformresource

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidScheme   = errors.New("uniformresource: missing ur: scheme")
	ErrInvalidType     = errors.New("uniformresource: invalid UR type")
	ErrInvalidSequence = errors.New("uniformresource: invalid multipart sequence component")
)

var typePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// UR is a parsed Uniform Resource reference: a type tag plus its payload,
// independent of whether it arrived as one part or many. Callers in
// `components` construct these by type name without needing to know
// anything about Bytewords or fountain coding.
type UR struct {
	Type string
	CBOR []byte
}

func validateType(t string) error {
	if !typePattern.MatchString(t) {
		return ErrInvalidType
	}
	return nil
}

// Encode renders a UR as a single-part textual form: ur:<type>/<bytewords>.
func Encode(urType string, cbor []byte) (string, error) {
	if err := validateType(urType); err != nil {
		return "", err
	}
	return fmt.Sprintf("ur:%s/%s", urType, EncodeMinimal(cbor)), nil
}

// Decode parses a single-part UR produced by Encode.
func Decode(s string) (UR, error) {
	rest, ok := strings.CutPrefix(s, "ur:")
	if !ok {
		return UR{}, ErrInvalidScheme
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return UR{}, ErrInvalidType
	}
	if err := validateType(parts[0]); err != nil {
		return UR{}, err
	}
	data, err := DecodeMinimal(parts[1])
	if err != nil {
		return UR{}, err
	}
	return UR{Type: parts[0], CBOR: data}, nil
}

// EncodeMultipart renders cbor as partCount fountain-coded parts of the
// form ur:<type>/<seq>-<seqLen>/<bytewords>, suitable for animated QR
// cycling or chunked transfer of payloads larger than a practical single
// frame.
func EncodeMultipart(urType string, cbor []byte, fragLen, partCount int, seed uint64) ([]string, error) {
	if err := validateType(urType); err != nil {
		return nil, err
	}
	frags := Split(cbor, fragLen, partCount, seed)
	out := make([]string, len(frags))
	for i, f := range frags {
		out[i] = fmt.Sprintf("ur:%s/%d-%d/%s", urType, f.Seq, f.SeqLen, EncodeMinimal(f.Data))
	}
	return out, nil
}

// MultipartJoiner accumulates multipart UR strings of one type until the
// full payload can be reassembled.
type MultipartJoiner struct {
	urType string
	joiner *Joiner
}

func NewMultipartJoiner() *MultipartJoiner {
	return &MultipartJoiner{joiner: NewJoiner()}
}

// Add ingests one multipart UR string and reports whether the payload is
// now fully recovered.
func (m *MultipartJoiner) Add(s string) (bool, error) {
	rest, ok := strings.CutPrefix(s, "ur:")
	if !ok {
		return false, ErrInvalidScheme
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 {
		return false, ErrInvalidSequence
	}
	if m.urType == "" {
		if err := validateType(parts[0]); err != nil {
			return false, err
		}
		m.urType = parts[0]
	} else if parts[0] != m.urType {
		return false, ErrInvalidType
	}
	seqParts := strings.SplitN(parts[1], "-", 2)
	if len(seqParts) != 2 {
		return false, ErrInvalidSequence
	}
	seq, err := strconv.Atoi(seqParts[0])
	if err != nil {
		return false, ErrInvalidSequence
	}
	seqLen, err := strconv.Atoi(seqParts[1])
	if err != nil {
		return false, ErrInvalidSequence
	}
	data, err := DecodeMinimal(parts[2])
	if err != nil {
		return false, err
	}
	idxs := []int{seq - 1}
	if seq > seqLen {
		// mixed part beyond the pure-fragment range: indexes are unknown to
		// a pure single-producer decode, so treat it as unusable once the
		// pure fragments already cover the sequence.
		idxs = nil
	}
	m.joiner.Add(Fragment{Seq: seq, SeqLen: seqLen, Indexes: idxs, Data: data})
	return m.joiner.Complete(), nil
}

// Assemble returns the recovered UR once Add has reported completion.
func (m *MultipartJoiner) Assemble() UR {
	return UR{Type: m.urType, CBOR: m.joiner.Assemble()}
}
