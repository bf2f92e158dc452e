package hashcode

import (
	"encoding/binary"
	"math/bits"
)

// XXH32 computes the 32-bit xxHash of data with an explicit seed.
//
// The combiner in this package shares its mixing steps but operates on
// pre-reduced 32-bit words; XXH32 is the byte-oriented form, used here
// to reduce strings and scalar encodings down to input codes.
func XXH32(data []byte, seed uint32) uint32 {
	p, length := 0, len(data)

	var h32 uint32
	if length >= 16 {
		v1 := seed + prime1 + prime2
		v2 := seed + prime2
		v3 := seed
		v4 := seed - prime1
		for p <= length-16 {
			v1 = round(v1, binary.LittleEndian.Uint32(data[p:]))
			v2 = round(v2, binary.LittleEndian.Uint32(data[p+4:]))
			v3 = round(v3, binary.LittleEndian.Uint32(data[p+8:]))
			v4 = round(v4, binary.LittleEndian.Uint32(data[p+12:]))
			p += 16
		}
		h32 = mixState(v1, v2, v3, v4)
	} else {
		h32 = mixEmptyState(seed)
	}

	h32 += uint32(length)

	for ; p <= length-4; p += 4 {
		h32 = queueRound(h32, binary.LittleEndian.Uint32(data[p:]))
	}
	for ; p < length; p++ {
		h32 += uint32(data[p]) * prime5
		h32 = bits.RotateLeft32(h32, 11) * prime1
	}

	return mixFinal(h32)
}
