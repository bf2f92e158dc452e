package hashcode

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
)

// processSeed returns the per-process random seed. It is generated on
// first use and never changes for the remaining lifetime of the
// process, no matter how many goroutines race the first call.
//
// Randomizing the seed keeps combined codes unpredictable across runs,
// which blunts hash-flooding attacks against tables keyed by them. It
// also means results are not reproducible between two runs of the same
// program; callers that need reproducibility use NewSeeded.
var processSeed = sync.OnceValue(func() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// No sane fallback exists for a security-motivated seed.
		panic("hashcode: reading random seed: " + err.Error())
	}
	return binary.LittleEndian.Uint32(buf[:])
})
