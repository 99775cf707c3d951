package dcbor_test

import (
	"testing"

	"github.com/gordian-core/gordian/dcbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripScalars(t *testing.T) {
	cases := []dcbor.Value{
		dcbor.NewUint(0),
		dcbor.NewUint(23),
		dcbor.NewUint(24),
		dcbor.NewUint(255),
		dcbor.NewUint(256),
		dcbor.NewInt(-1),
		dcbor.NewInt(-1000),
		dcbor.NewText("hello"),
		dcbor.NewBytes([]byte{0x01, 0x02, 0x03}),
		dcbor.NewBool(true),
		dcbor.NewBool(false),
		dcbor.NewNull(),
		dcbor.NewFloat(1.5),
	}
	for _, v := range cases {
		encoded, err := dcbor.Encode(v)
		require.NoError(t, err)
		decoded, err := dcbor.Decode(encoded)
		require.NoError(t, err)
		assert.True(t, dcbor.Equal(v, decoded))
	}
}

func TestUint42TaggedEncoding(t *testing.T) {
	// E1: tag 200 around uint 42 is D8 C8 18 2A.
	v := dcbor.NewTag(dcbor.TagEnvelope, dcbor.NewUint(42))
	encoded, err := dcbor.Encode(v)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xd8, 0xc8, 0x18, 0x2a}, encoded)
}

func TestMapCanonicalSorting(t *testing.T) {
	// E3: {1:2,3:4} canonically encodes as a2 01 02 03 04.
	m, err := dcbor.NewMap(
		dcbor.MapEntry{Key: dcbor.NewUint(1), Value: dcbor.NewUint(2)},
		dcbor.MapEntry{Key: dcbor.NewUint(3), Value: dcbor.NewUint(4)},
	)
	require.NoError(t, err)
	encoded, err := dcbor.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa2, 0x01, 0x02, 0x03, 0x04}, encoded)
	assert.Equal(t, "{1: 2, 3: 4}", dcbor.Diagnostic(m, false))
}

func TestDecodeRejectsUnsortedKeys(t *testing.T) {
	// {3:4, 1:2} encoded naively (keys out of canonical order).
	raw := []byte{0xa2, 0x03, 0x04, 0x01, 0x02}
	_, err := dcbor.Decode(raw)
	assert.ErrorIs(t, err, dcbor.ErrUnsortedKeys)
}

func TestDecodeRejectsNonShortestLength(t *testing.T) {
	// uint 5 encoded with a 1-byte-follows head instead of being inlined.
	raw := []byte{0x18, 0x05}
	_, err := dcbor.Decode(raw)
	assert.ErrorIs(t, err, dcbor.ErrNotCanonical)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	raw := []byte{0x01, 0x02}
	_, err := dcbor.Decode(raw)
	assert.ErrorIs(t, err, dcbor.ErrTrailingBytes)
}

func TestDuplicateMapKeysRejected(t *testing.T) {
	_, err := dcbor.NewMap(
		dcbor.MapEntry{Key: dcbor.NewUint(1), Value: dcbor.NewUint(2)},
		dcbor.MapEntry{Key: dcbor.NewUint(1), Value: dcbor.NewUint(3)},
	)
	assert.ErrorIs(t, err, dcbor.ErrDuplicateKeys)
}

func TestTagRegistryConflict(t *testing.T) {
	err := dcbor.Register(dcbor.TagDef{Number: dcbor.TagDigest, Name: "something-else"})
	assert.ErrorIs(t, err, dcbor.ErrTagConflict)

	err = dcbor.Register(dcbor.TagDef{Number: dcbor.TagDigest, Name: "digest"})
	assert.NoError(t, err)
}
