// Package digest provides the seeded, non-cryptographic checksums the
// harness uses for round-trip validation. Values are order-sensitive and
// compared only for equality; width is the caller's choice (the chunked
// bench uses 32 bits, the core loop 64 bits).
package digest

import (
	"github.com/spaolacci/murmur3"
)

// Sum32 returns the seeded 32-bit digest of buf.
func Sum32(buf []byte, seed uint32) uint32 {
	return murmur3.Sum32WithSeed(buf, seed)
}

// Sum64 returns the seeded 64-bit digest of buf.
func Sum64(buf []byte, seed uint32) uint64 {
	return murmur3.Sum64WithSeed(buf, seed)
}

// FirstDivergence returns the offset of the first byte at which a and b
// differ, comparing up to the shorter length. If the compared prefixes are
// equal it returns the shorter length, so a truncated reconstruction is
// localized at its end.
func FirstDivergence(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
