package uniformresource

import (
	"github.com/gordian-core/gordian/rand"
)

// Fragment is one multipart UR part: either a pure fragment (Indexes has a
// single entry) or an XOR-mixed combination of several fragments chosen by
// the degree distribution below, carrying their XOR in Data.
type Fragment struct {
	Seq     int
	SeqLen  int
	Indexes []int
	Data    []byte
}

// chooseDegree draws from a simplified robust-soliton-shaped degree
// distribution over fragment counts 1..n: weight 1/d places most mass on degree 1 (the
// "pure fragment" case that lets single-part URs decode without mixing)
// while still producing occasional higher-degree combinations for
// redundancy, mirroring the shape (heavy at low degree, long tail)
// spec.md §6 calls for without requiring the full Luby transform machinery.
func chooseDegree(gen *rand.Deterministic, n int) int {
	if n <= 1 {
		return 1
	}
	weights := make([]float64, n)
	total := 0.0
	for d := 1; d <= n; d++ {
		w := 1.0 / float64(d)
		weights[d-1] = w
		total += w
	}
	r := (float64(gen.Uint64()) / float64(^uint64(0))) * total
	acc := 0.0
	for d := 1; d <= n; d++ {
		acc += weights[d-1]
		if r <= acc {
			return d
		}
	}
	return n
}

// chooseIndexes picks degree distinct fragment indexes out of n using gen,
// via partial Fisher-Yates so the selection is reproducible from the seed.
func chooseIndexes(gen *rand.Deterministic, n, degree int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < degree; i++ {
		j := i + int(gen.Uint64()%uint64(n-i))
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := append([]int(nil), pool[:degree]...)
	return out
}

// Split breaks payload into seqLen pure fragments of fragLen bytes each
// (the last zero-padded), then emits partCount fountain parts: the first
// seqLen parts are the pure fragments in order, and any further parts are
// XOR-mixed combinations chosen deterministically from seed.
func Split(payload []byte, fragLen int, partCount int, seed uint64) []Fragment {
	seqLen := (len(payload) + fragLen - 1) / fragLen
	if seqLen == 0 {
		seqLen = 1
	}
	fragments := make([][]byte, seqLen)
	for i := 0; i < seqLen; i++ {
		start := i * fragLen
		end := start + fragLen
		if end > len(payload) {
			end = len(payload)
		}
		f := make([]byte, fragLen)
		copy(f, payload[start:end])
		fragments[i] = f
	}
	if partCount < seqLen {
		partCount = seqLen
	}
	gen := rand.NewDeterministic(seed)
	parts := make([]Fragment, 0, partCount)
	for i := 0; i < seqLen; i++ {
		parts = append(parts, Fragment{Seq: i + 1, SeqLen: seqLen, Indexes: []int{i}, Data: fragments[i]})
	}
	for i := seqLen; i < partCount; i++ {
		degree := chooseDegree(gen, seqLen)
		idxs := chooseIndexes(gen, seqLen, degree)
		mixed := make([]byte, fragLen)
		for _, idx := range idxs {
			xorInto(mixed, fragments[idx])
		}
		parts = append(parts, Fragment{Seq: i + 1, SeqLen: seqLen, Indexes: idxs, Data: mixed})
	}
	return parts
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// Joiner accumulates fountain parts and reduces mixed fragments against
// already-known pure fragments until the full sequence is recovered,
// mirroring the "peel one known fragment at a time" decode strategy of a
// standard LT-code receiver.
type Joiner struct {
	seqLen int
	known  map[int][]byte
}

func NewJoiner() *Joiner {
	return &Joiner{known: map[int][]byte{}}
}

// Add ingests one fountain part, reducing it against already-known
// fragments, and reports whether the part resolved a brand-new fragment.
func (j *Joiner) Add(f Fragment) bool {
	if j.seqLen == 0 {
		j.seqLen = f.SeqLen
	}
	remaining := []int{}
	data := append([]byte(nil), f.Data...)
	for _, idx := range f.Indexes {
		if known, ok := j.known[idx]; ok {
			xorInto(data, known)
		} else {
			remaining = append(remaining, idx)
		}
	}
	if len(remaining) == 1 {
		if _, ok := j.known[remaining[0]]; !ok {
			j.known[remaining[0]] = data
			return true
		}
	}
	return false
}

// Complete reports whether every fragment 0..seqLen-1 has been recovered.
func (j *Joiner) Complete() bool {
	if j.seqLen == 0 {
		return false
	}
	return len(j.known) >= j.seqLen
}

// Assemble concatenates the recovered fragments in order. The zero padding
// of the last fragment is not trimmed, and fragments not yet recovered are
// skipped, so the result is the full payload only once Complete reports true.
func (j *Joiner) Assemble() []byte {
	out := make([]byte, 0, j.seqLen*len(j.known[0]))
	for i := 0; i < j.seqLen; i++ {
		out = append(out, j.known[i]...)
	}
	return out
}
