// Package hash implements the fast modular hash used for n-gram feature buckets
package hash

// Hash mixes n with salt s and reduces the result into the range 0..max-1.
func Hash(n uint32, s uint32, max uint32) uint32 {
	// mixing stage, mix input with salt using subtraction
	var m = uint32(n) - uint32(s)

	// hashing stage, use xor shift with prime coefficients
	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19

	// mixing stage 2, mix input with salt using addition
	m += s

	// modular stage, Lemire's multiply shift instead of a modulo
	// https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
	return uint32((uint64(m) * uint64(max)) >> 32)
}

// Ngram hashes a tuple of token ids into the range 0..max-1. The order of the
// ids matters, so (1, 2) and (2, 1) land in different buckets.
func Ngram(ids []int, max uint32) uint32 {
	var h uint32 = uint32(len(ids))
	for i, id := range ids {
		h = Hash(h, uint32(id)+uint32(i), 0xFFFFFFFF)
	}
	return Hash(h, 0, max)
}
