package dcbor

import (
	"fmt"
	"strconv"
	"strings"
)

// Diagnostic renders v in CBOR diagnostic notation. When annotate is true,
// every registered tag gets a trailing comment with its human-readable
// name, followed by its summary when the tag defines a Summarize hook.
func Diagnostic(v Value, annotate bool) string {
	var sb strings.Builder
	writeDiagnostic(&sb, v, annotate)
	return sb.String()
}

func writeDiagnostic(sb *strings.Builder, v Value, annotate bool) {
	switch v.kind {
	case KindUint:
		sb.WriteString(strconv.FormatUint(v.uintVal, 10))
	case KindNegInt:
		sb.WriteString("-")
		sb.WriteString(strconv.FormatUint(v.uintVal+1, 10))
	case KindBytes:
		sb.WriteString("h'")
		sb.WriteString(fmt.Sprintf("%x", v.bytesVal))
		sb.WriteString("'")
	case KindText:
		sb.WriteString(strconv.Quote(v.textVal))
	case KindArray:
		sb.WriteString("[")
		for i, item := range v.arrVal {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDiagnostic(sb, item, annotate)
		}
		sb.WriteString("]")
	case KindMap:
		sb.WriteString("{")
		for i, e := range v.mapVal {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDiagnostic(sb, e.Key, annotate)
			sb.WriteString(": ")
			writeDiagnostic(sb, e.Value, annotate)
		}
		sb.WriteString("}")
	case KindTag:
		sb.WriteString(strconv.FormatUint(v.tagNum, 10))
		sb.WriteString("(")
		writeDiagnostic(sb, *v.tagVal, annotate)
		sb.WriteString(")")
		if annotate {
			if def, ok := lookupTag(v.tagNum); ok {
				sb.WriteString("   ; ")
				sb.WriteString(def.Name)
				if def.Summarize != nil {
					sb.WriteString(": ")
					sb.WriteString(def.Summarize(*v.tagVal))
				}
			}
		}
	case KindBool:
		if v.boolVal {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNull:
		sb.WriteString("null")
	case KindUndefined:
		sb.WriteString("undefined")
	case KindFloat:
		sb.WriteString(formatDiagnosticFloat(v.floatVal))
	}
}

func formatDiagnosticFloat(f float64) string {
	if f != f { // NaN
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
