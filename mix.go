package hashcode

import "math/bits"

// xxHash32 primes. The combiner applies the same mixing steps as the
// byte-oriented hash, but over whole 32-bit words.
const (
	prime1 uint32 = 0x9E3779B1
	prime2 uint32 = 0x85EBCA77
	prime3 uint32 = 0xC2B2AE3D
	prime4 uint32 = 0x27D4EB2F
	prime5 uint32 = 0x165667B1
)

// round folds one word into an accumulator lane.
func round(acc, input uint32) uint32 {
	return bits.RotateLeft32(acc+input*prime2, 13) * prime1
}

// queueRound folds a word that never joined a complete group of four.
func queueRound(acc, input uint32) uint32 {
	return bits.RotateLeft32(acc+input*prime3, 17) * prime4
}

// mixState collapses the four lanes into one word.
func mixState(v1, v2, v3, v4 uint32) uint32 {
	return bits.RotateLeft32(v1, 1) + bits.RotateLeft32(v2, 7) +
		bits.RotateLeft32(v3, 12) + bits.RotateLeft32(v4, 18)
}

// mixEmptyState is the starting word when fewer than four inputs were
// ever seen, so the lanes were never initialized.
func mixEmptyState(seed uint32) uint32 {
	return seed + prime5
}

// mixFinal is the avalanche step applied to every result.
func mixFinal(h uint32) uint32 {
	h ^= h >> 15
	h *= prime2
	h ^= h >> 13
	h *= prime3
	h ^= h >> 16
	return h
}
