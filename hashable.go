package hashcode

// Hashable is the capability of producing a 32-bit hash code for
// oneself. Types implement it to participate in Add, CombineValues and
// hashgen-generated code.
type Hashable interface {
	Hash32() uint32
}

// Hasher32 produces 32-bit hash codes for values of type T on their
// behalf. It plays the role a caller-supplied equality comparer's hash
// function plays for hash tables: the value's own Hash32 is bypassed
// in favor of the hasher's notion of equivalence.
type Hasher32[T any] interface {
	Hash32(T) uint32
}

// Hasher32Func adapts a plain function to Hasher32.
type Hasher32Func[T any] func(T) uint32

func (f Hasher32Func[T]) Hash32(v T) uint32 { return f(v) }

// AddValue folds v into h using hasher. A nil hasher falls back to v's
// own Hash32, and a nil v with a nil hasher counts as 0.
func AddValue[T Hashable](h *Hash, v T, hasher Hasher32[T]) {
	if hasher != nil {
		h.AddUint32(hasher.Hash32(v))
		return
	}
	h.Add(v)
}

// CombineValues combines the hash codes of vs in order, equivalent to
// adding each to a fresh Hash and summing.
func CombineValues[T Hashable](vs ...T) int32 {
	var h Hash
	for _, v := range vs {
		h.Add(v)
	}
	return h.Sum()
}

// HashValue returns the one-shot combined code of a single value
// reduced through hasher, matching Combine of the same code.
func HashValue[T any](v T, hasher Hasher32[T]) int32 {
	return Combine(hasher.Hash32(v))
}
