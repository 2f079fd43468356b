package cache

import "unicode/utf16"

// MaxHash is one past the largest value Hash53 returns.
const MaxHash = uint64(1) << 53

// Hash53 is the cyrb53 hash of s. It mixes two 32-bit accumulators over the
// UTF-16 code units of s and folds them into a value below 2^53, so results
// match implementations that iterate strings as UTF-16.
func Hash53(s string, seed uint32) uint64 {
	h1 := uint32(0xdeadbeef) ^ seed
	h2 := uint32(0x41c6ce57) ^ seed

	for _, ch := range utf16.Encode([]rune(s)) {
		h1 = (h1 ^ uint32(ch)) * 2654435761
		h2 = (h2 ^ uint32(ch)) * 1597334677
	}

	h1 = (h1 ^ (h1 >> 16)) * 2246822507
	h1 ^= (h2 ^ (h2 >> 13)) * 3266489909
	h2 = (h2 ^ (h2 >> 16)) * 2246822507
	h2 ^= (h1 ^ (h1 >> 13)) * 3266489909

	return uint64(h2&0x1fffff)<<32 | uint64(h1)
}

// HashValue hashes the canonical JSON form of v.
func HashValue(v any, seed uint32) (uint64, error) {
	canonical, err := canonicalize(v)
	if err != nil {
		return 0, err
	}
	return Hash53(string(canonical), seed), nil
}
