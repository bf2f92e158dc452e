// Package hashcode combines independently computed 32-bit hash codes
// into one well dispersed 32-bit result.
//
// Plain XOR or addition of field hashes preserves the weaknesses of the
// inputs: codes that only vary in a few low bits combine into codes
// that only vary in a few low bits, and hash tables bucket them badly.
// This package instead runs every input word through the xxHash32
// mixing steps, so the combined code avalanches even when the inputs do
// not.
//
// The package-level entry points seed the mix with a random value drawn
// once per process, so combined codes are not predictable across runs
// and must not be persisted or sent between processes.
package hashcode

// Hash accumulates a stream of 32-bit hash codes into one combined
// result. The zero value is ready to use:
//
//	var h hashcode.Hash
//	h.AddUint32(nameCode)
//	h.AddUint32(ageCode)
//	code := h.Sum()
//
// A Hash is position-sensitive computation state, not a value. It
// cannot be compared with == or used as a map key, and it must not be
// copied once anything has been added; a copy would silently fork the
// state into two diverging accumulators. go vet's copylocks check
// reports such copies.
//
// A Hash is not safe for concurrent use. Callers serialize access or
// keep one Hash per goroutine.
type Hash struct {
	_      noCompare
	noCopy noCopy

	v1, v2, v3, v4 uint32
	q1, q2, q3     uint32
	count          uint32
	seed           uint32
	seeded         bool
}

// NewSeeded returns a Hash that mixes with the given seed instead of
// the per-process random one. Output is then reproducible across runs,
// which forfeits the flooding protection the random seed provides; it
// is intended for tests and for callers that persist nothing but still
// need two processes to agree.
func NewSeeded(seed uint32) *Hash {
	return &Hash{seed: seed, seeded: true}
}

func (h *Hash) seedValue() uint32 {
	if h.seeded {
		return h.seed
	}
	return processSeed()
}

// AddUint32 folds one already-reduced 32-bit code into the state.
func (h *Hash) AddUint32(code uint32) {
	// The first three words of every group of four wait in the queue;
	// the fourth folds the whole group into the lanes.
	switch h.count % 4 {
	case 0:
		h.q1 = code
	case 1:
		h.q2 = code
	case 2:
		h.q3 = code
	default:
		if h.count == 3 {
			seed := h.seedValue()
			h.v1 = seed + prime1 + prime2
			h.v2 = seed + prime2
			h.v3 = seed
			h.v4 = seed - prime1
		}
		h.v1 = round(h.v1, h.q1)
		h.v2 = round(h.v2, h.q2)
		h.v3 = round(h.v3, h.q3)
		h.v4 = round(h.v4, code)
	}
	h.count++
}

// Add folds v's own hash code into the state. A nil v counts as 0.
func (h *Hash) Add(v Hashable) {
	if v == nil {
		h.AddUint32(0)
		return
	}
	h.AddUint32(v.Hash32())
}

// Sum returns the combined code for everything added so far. It does
// not modify the state: more values can be added afterwards, and
// calling Sum again without an intervening Add currently returns the
// same value, though callers should not depend on that across
// releases.
func (h *Hash) Sum() int32 {
	return int32(h.sum32())
}

func (h *Hash) sum32() uint32 {
	var hash uint32
	if h.count < 4 {
		hash = mixEmptyState(h.seedValue())
	} else {
		hash = mixState(h.v1, h.v2, h.v3, h.v4)
	}
	// Length term, counted in bytes: each input word is four.
	hash += h.count * 4
	switch h.count % 4 {
	case 1:
		hash = queueRound(hash, h.q1)
	case 2:
		hash = queueRound(hash, h.q1)
		hash = queueRound(hash, h.q2)
	case 3:
		hash = queueRound(hash, h.q1)
		hash = queueRound(hash, h.q2)
		hash = queueRound(hash, h.q3)
	}
	return mixFinal(hash)
}

// Combine returns the combined code of a single 32-bit input,
// equivalent to one AddUint32 followed by Sum on a fresh Hash but
// without materializing one.
func Combine(code uint32) int32 {
	hash := mixEmptyState(processSeed()) + 4
	hash = queueRound(hash, code)
	return int32(mixFinal(hash))
}

// CombineUint32 combines any number of 32-bit inputs in order. It is
// exactly equivalent to feeding the codes to a fresh Hash one by one.
func CombineUint32(codes ...uint32) int32 {
	var h Hash
	for _, code := range codes {
		h.AddUint32(code)
	}
	return h.Sum()
}

// noCompare makes Hash unusable with == and as a map key. In-progress
// mixing state has no meaningful identity, so both are rejected at
// compile time.
type noCompare [0]func()

// noCopy trips go vet's copylocks check when a Hash is copied.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
