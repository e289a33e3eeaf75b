package utils

import (
	"math/bits"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities - Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// Used by the case folder to hand out freshly built keys without a copy.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

///////////////////////////////////////////////////////////////////////////////
// Fast Loaders - Unaligned 64-Bit Reads
///////////////////////////////////////////////////////////////////////////////

// Load64 reads an unaligned 64-bit word from the first 8 bytes of s.
// ⚠️ len(s) must be ≥ 8.
//
//go:nosplit
//go:inline
func Load64(s string) uint64 {
	return *(*uint64)(unsafe.Pointer(unsafe.StringData(s)))
}

// loadTail packs the final n (<8) bytes of s little-endian into a word.
//
//go:nosplit
//go:inline
func loadTail(s string) uint64 {
	var v uint64
	for i := len(s) - 1; i >= 0; i-- {
		v = v<<8 | uint64(s[i])
	}
	return v
}

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers - For Open-Addressing Index Placement
///////////////////////////////////////////////////////////////////////////////

const (
	prime64_1 = 0x9E3779B185EBCA87
	prime64_2 = 0xC2B2AE3D27D4EB4F
)

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.
// Used to finalize string hashes before masking into a table.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// HashString is an xxHash-style mix over the bytes of s. Whole words are
// folded with rotate/multiply rounds; the tail is packed byte-wise so no
// read ever crosses the end of the string.
//
//go:nosplit
func HashString(s string) uint64 {
	h := uint64(len(s)) * prime64_1
	for len(s) >= 8 {
		v := Load64(s)
		s = s[8:]
		h ^= bits.RotateLeft64(v*prime64_2, 31)
		h = bits.RotateLeft64(h, 27) * prime64_1
	}
	if len(s) != 0 {
		h ^= bits.RotateLeft64(loadTail(s)*prime64_2, 11)
		h = bits.RotateLeft64(h, 7) * prime64_1
	}
	return Mix64(h)
}
