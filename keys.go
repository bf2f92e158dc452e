package hashcode

import "math"

// Key helpers reduce scalar field values to 32-bit input codes under
// the process seed, tagged by domain so equal payloads of different
// kinds stay apart. hashgen-generated Hash32 methods are their main
// consumer; they are equally usable by hand-written ones.

// BoolKey reduces a bool to an input code.
func BoolKey(v bool) uint32 {
	return boolCode(v, processSeed())
}

// IntKey reduces a signed integer to an input code.
func IntKey(v int64) uint32 {
	return intCode(v, processSeed())
}

// UintKey reduces an unsigned integer to an input code. Values that
// fit in an int64 produce the same code as IntKey of that value.
func UintKey(v uint64) uint32 {
	if v > math.MaxInt64 {
		return floatCode(float64(v), processSeed())
	}
	return intCode(int64(v), processSeed())
}

// FloatKey reduces a float to an input code. Integral values produce
// the same code as IntKey of that value.
func FloatKey(v float64) uint32 {
	if v >= math.MinInt64 && v <= math.MaxInt64 && math.Trunc(v) == v {
		return intCode(int64(v), processSeed())
	}
	return floatCode(v, processSeed())
}

// BytesKey reduces a byte slice to an input code.
func BytesKey(v []byte) uint32 {
	return bytesCode(v, processSeed())
}
