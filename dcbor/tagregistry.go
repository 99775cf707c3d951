package dcbor

import "sync"

// TagDef is a process-wide tag registration: a human-readable Name, an
// optional content Validate hook run at decode time (TagSemanticError on
// rejection), and an optional Summarize hook used by annotated diagnostic
// notation.
type TagDef struct {
	Number    uint64
	Name      string
	Validate  func(content Value) error
	Summarize func(content Value) string
}

// Representative tag numbers published by spec.md §6. Peers interoperating
// with this codec MUST agree on these values.
const (
	TagEnvelope       = 200
	TagDigest         = 204
	TagSignature      = 205
	TagSymmetricKey   = 206
	TagNonce          = 208
	TagSalt           = 217
	TagARID           = 40012
	TagXID            = 40024
	TagJSON           = 262
	TagProvenanceMark = 0x5050
)

var registry = struct {
	mu   sync.RWMutex
	defs map[uint64]TagDef
}{defs: make(map[uint64]TagDef)}

// Register adds a tag definition to the process-wide registry. It is
// idempotent when called again with an identical name for the same
// number, and returns ErrTagConflict when the name disagrees with an
// existing registration. Writes are expected only at program start or
// behind the caller's own mutual exclusion (spec.md §5); reads
// (lookupTag, Diagnostic) always see a consistent snapshot via the
// registry's RWMutex.
func Register(def TagDef) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if existing, ok := registry.defs[def.Number]; ok {
		if existing.Name != def.Name {
			return ErrTagConflict
		}
		return nil
	}
	registry.defs[def.Number] = def
	return nil
}

func lookupTag(num uint64) (TagDef, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	d, ok := registry.defs[num]
	return d, ok
}

func init() {
	for _, def := range []TagDef{
		{Number: TagEnvelope, Name: "envelope"},
		{Number: TagDigest, Name: "digest"},
		{Number: TagSignature, Name: "signature"},
		{Number: TagSymmetricKey, Name: "symmetric-key"},
		{Number: TagNonce, Name: "nonce"},
		{Number: TagSalt, Name: "salt"},
		{Number: TagARID, Name: "arid"},
		{Number: TagXID, Name: "xid"},
		{Number: TagJSON, Name: "json"},
		{Number: TagProvenanceMark, Name: "provenance-mark"},
	} {
		_ = Register(def)
	}
}
