package pattern

import (
	"github.com/gordian-core/gordian/dcbor"
)

// Path is the sequence of values visited from the matched value's
// container root down to (and including) the matched value itself.
type Path []dcbor.Value

func clonePath(p Path) Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Captures maps a capture name to every path it matched, in the
// deterministic order the matcher visited them.
type Captures map[string][]Path

// Result is the output of Match: every path at which the pattern matched,
// and the capture bindings collected along the way.
type Result struct {
	Paths    []Path
	Captures Captures
}

type ctx struct {
	found    []Path
	captures Captures
}

// Match evaluates p against root and returns every matching path plus any
// named captures, in a deterministic, platform-stable order (pre-order:
// array elements by index, map entries by canonical key order visiting
// key then value, tag content last).
func Match(p Pattern, root dcbor.Value) Result {
	c := &ctx{captures: Captures{}}
	path := Path{root}
	if _, isSearch := p.(Search); isSearch {
		matches(p, c, path, root)
	} else if matches(p, c, path, root) {
		c.found = append(c.found, clonePath(path))
	}
	return Result{Paths: c.found, Captures: c.captures}
}

func matches(p Pattern, c *ctx, path Path, v dcbor.Value) bool {
	switch pt := p.(type) {
	case Any:
		return true
	case BoolEq:
		b, ok := v.AsBool()
		return ok && b == pt.Value
	case NumberRange:
		n, ok := numericValue(v)
		if !ok {
			return false
		}
		if pt.Min != nil && n < *pt.Min {
			return false
		}
		if pt.Max != nil && n > *pt.Max {
			return false
		}
		return true
	case TextEq:
		s, ok := v.AsText()
		return ok && s == pt.Value
	case TextRegex:
		s, ok := v.AsText()
		return ok && pt.Regexp.MatchString(s)
	case BytesEq:
		b, ok := v.AsBytes()
		return ok && bytesEqual(b, pt.Value)
	case BytesLenRange:
		b, ok := v.AsBytes()
		if !ok {
			return false
		}
		if len(b) < pt.Min {
			return false
		}
		if pt.Max >= 0 && len(b) > pt.Max {
			return false
		}
		return true
	case exactValue:
		return dcbor.Equal(v, pt.v)
	case ArraySeq:
		items, ok := v.AsArray()
		if !ok {
			return false
		}
		return matchSeq(pt.Elements, 0, items, 0, path, c)
	case MapHas:
		entries, ok := v.AsMap()
		if !ok {
			return false
		}
		for _, ep := range pt.Entries {
			found := false
			for _, e := range entries {
				keyPath := append(clonePath(path), e.Key)
				valPath := append(clonePath(path), e.Value)
				if matches(ep.Key, c, keyPath, e.Key) && matches(ep.Value, c, valPath, e.Value) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case Tag:
		num, content, ok := v.AsTag()
		if !ok || num != pt.ID {
			return false
		}
		return matches(pt.Inner, c, append(clonePath(path), content), content)
	case And:
		for _, sub := range pt.Patterns {
			if !matches(sub, c, path, v) {
				return false
			}
		}
		return true
	case Or:
		ok := false
		for _, sub := range pt.Patterns {
			if matches(sub, c, path, v) {
				ok = true
			}
		}
		return ok
	case Not:
		return !matches(pt.Inner, c, path, v)
	case Capture:
		if matches(pt.Inner, c, path, v) {
			c.captures[pt.Name] = append(c.captures[pt.Name], clonePath(path))
			return true
		}
		return false
	case Search:
		before := len(c.found)
		searchWalk(pt.Inner, c, path, v)
		return len(c.found) > before
	default:
		return false
	}
}

// searchWalk tests inner at v, recording the path on success, then
// recurses into every structural child regardless of whether v itself
// matched (search looks everywhere, not just along one branch).
func searchWalk(inner Pattern, c *ctx, path Path, v dcbor.Value) {
	if matches(inner, c, path, v) {
		c.found = append(c.found, clonePath(path))
	}
	switch v.Kind() {
	case dcbor.KindArray:
		items, _ := v.AsArray()
		for _, item := range items {
			searchWalk(inner, c, append(clonePath(path), item), item)
		}
	case dcbor.KindMap:
		entries, _ := v.AsMap()
		for _, e := range entries {
			searchWalk(inner, c, append(clonePath(path), e.Key), e.Key)
			searchWalk(inner, c, append(clonePath(path), e.Value), e.Value)
		}
	case dcbor.KindTag:
		_, content, _ := v.AsTag()
		searchWalk(inner, c, append(clonePath(path), content), content)
	}
}

// matchSeq backtracks Repeat element counts to match elements[idx:]
// against items[j:] exactly (every item consumed, every element used).
func matchSeq(elements []Pattern, idx int, items []dcbor.Value, j int, path Path, c *ctx) bool {
	if idx == len(elements) {
		return j == len(items)
	}
	switch el := elements[idx].(type) {
	case Repeat:
		lo, hi := el.Min, el.Max
		remaining := len(items) - j
		if hi < 0 || hi > remaining {
			hi = remaining
		}
		order := func(n int) bool {
			for k := 0; k < n; k++ {
				p := append(clonePath(path), items[j+k])
				if !matches(el.Inner, c, p, items[j+k]) {
					return false
				}
			}
			return matchSeq(elements, idx+1, items, j+n, path, c)
		}
		switch el.Mode {
		case Lazy:
			for n := lo; n <= hi; n++ {
				if order(n) {
					return true
				}
			}
			return false
		case Possessive:
			return order(hi)
		default: // Greedy
			for n := hi; n >= lo; n-- {
				if order(n) {
					return true
				}
			}
			return false
		}
	default:
		if j >= len(items) {
			return false
		}
		p := append(clonePath(path), items[j])
		if !matches(elements[idx], c, p, items[j]) {
			return false
		}
		return matchSeq(elements, idx+1, items, j+1, path, c)
	}
}

func numericValue(v dcbor.Value) (float64, bool) {
	switch v.Kind() {
	case dcbor.KindUint, dcbor.KindNegInt:
		n, _ := v.AsInt()
		return float64(n), true
	case dcbor.KindFloat:
		return v.AsFloat()
	default:
		return 0, false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
