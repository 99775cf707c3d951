// Package pattern implements the dCBOR pattern-matching query algebra
// described in spec.md §4.1: leaf predicates, structural patterns, and the
// and/or/not/search/capture/repeat/wildcard combinators, compiled into a
// small tree the matcher walks depth-first in a deterministic order.
//
// spec.md describes compilation "to a bytecode for a backtracking VM". This
// implementation instead walks the Pattern tree directly with an explicit
// backtracking recursion (see match.go) — behaviorally equivalent (same
// matches, same deterministic path/capture ordering) without the added
// surface of a separate instruction set; see DESIGN.md.
package pattern

import (
	"regexp"

	"github.com/gordian-core/gordian/dcbor"
)

// RepeatMode controls how a Repeat pattern explores its match count when
// more than one count in [Min, Max] could succeed.
type RepeatMode int

const (
	// Greedy tries the largest count first.
	Greedy RepeatMode = iota
	// Lazy tries the smallest count first.
	Lazy
	// Possessive commits to the largest count and never backtracks off it.
	Possessive
)

// Pattern is a compiled query node. The concrete types below are the only
// implementations; matching switches on concrete type rather than an
// interface method so the matcher stays exhaustive and easy to extend.
type Pattern interface {
	isPattern()
}

type Any struct{}

func (Any) isPattern() {}

type BoolEq struct{ Value bool }

func (BoolEq) isPattern() {}

// NumberRange matches a numeric (uint/negint/float) value v such that
// Min <= v <= Max when the respective bound is non-nil.
type NumberRange struct {
	Min, Max *float64
}

func (NumberRange) isPattern() {}

func NumberEq(n float64) NumberRange { return NumberRange{Min: &n, Max: &n} }

type TextEq struct{ Value string }

func (TextEq) isPattern() {}

type TextRegex struct{ Regexp *regexp.Regexp }

func (TextRegex) isPattern() {}

type BytesEq struct{ Value []byte }

func (BytesEq) isPattern() {}

// BytesLenRange matches any byte string whose length is within [Min, Max]
// (Max < 0 means unbounded).
type BytesLenRange struct{ Min, Max int }

func (BytesLenRange) isPattern() {}

// ArraySeq matches a dcbor array value against a sequence of element
// patterns; Elements may include Repeat to match a variable-length run.
type ArraySeq struct{ Elements []Pattern }

func (ArraySeq) isPattern() {}

// Repeat matches Inner applied Min..Max times in an ArraySeq sequence.
type Repeat struct {
	Inner    Pattern
	Min, Max int // Max < 0 means unbounded
	Mode     RepeatMode
}

func (Repeat) isPattern() {}

// MapEntryPattern pairs a key predicate with a value pattern; MapHas
// matches a dcbor map containing at least one entry satisfying each
// MapEntryPattern (entries may overlap the same map pair).
type MapEntryPattern struct {
	Key   Pattern
	Value Pattern
}

type MapHas struct{ Entries []MapEntryPattern }

func (MapHas) isPattern() {}

type Tag struct {
	ID    uint64
	Inner Pattern
}

func (Tag) isPattern() {}

type And struct{ Patterns []Pattern }

func (And) isPattern() {}

type Or struct{ Patterns []Pattern }

func (Or) isPattern() {}

type Not struct{ Inner Pattern }

func (Not) isPattern() {}

// Search matches Inner against the current value or, recursively, against
// any descendant (array element, map key/value, or tag content), in
// deterministic pre-order.
type Search struct{ Inner Pattern }

func (Search) isPattern() {}

// Capture records every path where Inner matches under capture name Name.
type Capture struct {
	Name  string
	Inner Pattern
}

func (Capture) isPattern() {}

// Literal builds a leaf pattern matching dcbor value v exactly (used for
// literal integers, text, bytes, bool, null passed through the common
// case of "the pattern for this exact value").
func Literal(v dcbor.Value) Pattern {
	switch v.Kind() {
	case dcbor.KindBool:
		b, _ := v.AsBool()
		return BoolEq{Value: b}
	case dcbor.KindText:
		s, _ := v.AsText()
		return TextEq{Value: s}
	case dcbor.KindBytes:
		b, _ := v.AsBytes()
		return BytesEq{Value: b}
	case dcbor.KindUint, dcbor.KindNegInt:
		n, _ := v.AsInt()
		f := float64(n)
		return NumberEq(f)
	case dcbor.KindFloat:
		f, _ := v.AsFloat()
		return NumberEq(f)
	default:
		return exactValue{v: v}
	}
}

// exactValue matches only KindNull/KindUndefined/structural values for
// which no dedicated leaf pattern exists, by full canonical-encoding
// equality.
type exactValue struct{ v dcbor.Value }

func (exactValue) isPattern() {}
