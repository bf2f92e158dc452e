package hashcode

import (
	"fmt"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// StringKey reduces s to a 32-bit input code using the process seed.
// The string is NFC-normalized first, so composed and decomposed
// spellings of the same text produce the same code.
func StringKey(s string) uint32 {
	return stringKey(s, processSeed())
}

func stringKey(s string, seed uint32) uint32 {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return XXH32([]byte(s), seed)
}

// HostKey reduces a hostname to a 32-bit input code using the process
// seed. The name is mapped through IDNA lookup rules first, so a
// unicode host and its punycode form produce the same code.
func HostKey(host string) (uint32, error) {
	return hostKey(host, processSeed())
}

func hostKey(host string, seed uint32) (uint32, error) {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return 0, fmt.Errorf("invalid host %q: %w", host, err)
	}
	return XXH32([]byte(ascii), seed), nil
}
