package pattern_test

import (
	"testing"

	"github.com/gordian-core/gordian/dcbor"
	"github.com/gordian-core/gordian/dcbor/pattern"
	"github.com/stretchr/testify/assert"
)

func TestSearchCapture(t *testing.T) {
	// E4: [1, [2, 42], 3] with search(@found(42)) captures one path.
	v := dcbor.NewArray(
		dcbor.NewUint(1),
		dcbor.NewArray(dcbor.NewUint(2), dcbor.NewUint(42)),
		dcbor.NewUint(3),
	)
	p := pattern.Search{Inner: pattern.Capture{Name: "found", Inner: pattern.NumberEq(42)}}
	result := pattern.Match(p, v)

	assert.Len(t, result.Paths, 1)
	assert.Len(t, result.Paths[0], 3) // root array, inner array, 42
	assert.Len(t, result.Captures["found"], 1)
}

func TestArraySeqWithRepeat(t *testing.T) {
	v := dcbor.NewArray(dcbor.NewUint(1), dcbor.NewUint(2), dcbor.NewUint(3), dcbor.NewUint(9))
	p := pattern.ArraySeq{Elements: []pattern.Pattern{
		pattern.Repeat{Inner: pattern.NumberRange{}, Min: 1, Max: -1, Mode: pattern.Greedy},
		pattern.NumberEq(9),
	}}
	result := pattern.Match(p, v)
	assert.Len(t, result.Paths, 1)
}

func TestNotAndOr(t *testing.T) {
	v := dcbor.NewText("hello")
	p := pattern.And{Patterns: []pattern.Pattern{
		pattern.Or{Patterns: []pattern.Pattern{pattern.TextEq{Value: "hello"}, pattern.TextEq{Value: "world"}}},
		pattern.Not{Inner: pattern.TextEq{Value: "world"}},
	}}
	result := pattern.Match(p, v)
	assert.Len(t, result.Paths, 1)
}
