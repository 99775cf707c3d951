package envelope

// KnownValue is a compact 64-bit token from a registered namespace,
// standing in for a commonly used predicate or marker so it doesn't need
// to be spelled out as a text leaf every time (spec.md §3's `KnownValue`
// variant). The registry here only covers `isA` plus the names this
// package's own operations emit (`signed`, `hasRecipient`, `attachment`,
// `vendor`, `conformsTo`); callers that
// need additional known values define their own KnownValue constants in
// the same numeric space.
type KnownValue uint64

const (
	KnownIsA KnownValue = iota + 1
	KnownSigned
	KnownHasRecipient
	KnownAttachment
	KnownVendor
	KnownConformsTo
)

var knownValueNames = map[KnownValue]string{
	KnownIsA:          "isA",
	KnownSigned:       "signed",
	KnownHasRecipient: "hasRecipient",
	KnownAttachment:   "attachment",
	KnownVendor:       "vendor",
	KnownConformsTo:   "conformsTo",
}

// Name returns the known value's registered display name, or "" if it is
// not one of the names this package pre-registers.
func (v KnownValue) Name() string {
	return knownValueNames[v]
}
