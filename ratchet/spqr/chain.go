package spqr

// Params bounds how far a chain may jump in one step and how many
// completed epoch secrets it caches for out-of-order delivery, per
// spec.md §4.3.3.
type Params struct {
	MaxJump    uint64
	MaxOOOKeys int
}

// DefaultParams is the two-party default: {25000, 2000}.
func DefaultParams() Params {
	return Params{MaxJump: 25000, MaxOOOKeys: 2000}
}

// SelfSessionParams relaxes MaxJump for a self-sent session (a device
// syncing with itself), where an attacker controlling delivery order
// between a user's own devices is a lesser concern: {2^32-1, 2000}.
func SelfSessionParams() Params {
	return Params{MaxJump: 1<<32 - 1, MaxOOOKeys: 2000}
}

// oooEpoch is a completed epoch's derived secret, cached so a message
// authenticated under an older epoch can still be processed after the
// chain has advanced past it.
type oooEpoch struct {
	epoch  uint64
	secret [32]byte
}

// oooCache bounds the out-of-order epoch-secret cache at MaxOOOKeys — the
// SPQR analogue of the double ratchet's skipped-message-key cache, except
// that nothing is evicted: put returns ErrTooManyOOO once the cache is full.
type oooCache struct {
	limit   int
	order   []uint64
	secrets map[uint64][32]byte
}

func newOOOCache(limit int) *oooCache {
	return &oooCache{limit: limit, secrets: map[uint64][32]byte{}}
}

func (c *oooCache) put(epoch uint64, secret [32]byte) error {
	if _, exists := c.secrets[epoch]; exists {
		return nil
	}
	if len(c.order) >= c.limit {
		return ErrTooManyOOO
	}
	c.secrets[epoch] = secret
	c.order = append(c.order, epoch)
	return nil
}

func (c *oooCache) get(epoch uint64) ([32]byte, bool) {
	s, ok := c.secrets[epoch]
	return s, ok
}

func (c *oooCache) take(epoch uint64) {
	delete(c.secrets, epoch)
	for i, e := range c.order {
		if e == epoch {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// chunkSize is the fixed tail length of a chunked ML-KEM-768 ciphertext
// (spec.md §4.3.3's ct2 = last 128 bytes).
const chunkSize = 128

// splitChunks divides a KEM ciphertext into its ct1/ct2 chunked-mode
// halves: ct1 is everything but the trailing chunkSize bytes, ct2 is the
// trailing chunkSize bytes. For a 1088-byte ML-KEM-768 ciphertext this is
// exactly the spec's {960, 128} split.
func splitChunks(ct []byte) (ct1, ct2 []byte) {
	if len(ct) <= chunkSize {
		return nil, append([]byte(nil), ct...)
	}
	split := len(ct) - chunkSize
	return append([]byte(nil), ct[:split]...), append([]byte(nil), ct[split:]...)
}

func joinChunks(ct1, ct2 []byte) []byte {
	return append(append([]byte(nil), ct1...), ct2...)
}

func checkJump(current, target uint64, maxJump uint64) error {
	var delta uint64
	if target >= current {
		delta = target - current
	} else {
		delta = current - target
	}
	if delta > maxJump {
		return ErrTooFar
	}
	return nil
}
