package cimap

import (
	"unicode/utf8"

	"cimapbench/utils"

	"golang.org/x/text/cases"
)

// Folding selects how keys are normalized before hashing and comparison.
type Folding uint8

const (
	// FoldUnicode applies Unicode case folding (locale independent).
	// Pure ASCII keys take an allocation-free fast path.
	FoldUnicode Folding = iota

	// FoldASCII folds only A-Z. Other bytes compare verbatim.
	FoldASCII
)

func (f Folding) String() string {
	switch f {
	case FoldUnicode:
		return "unicode"
	case FoldASCII:
		return "ascii"
	}
	return "unknown"
}

// scratchLen is the stack buffer size used to fold keys on lookups.
const scratchLen = 64

// unicodeFold is stateless and shared by every map.
var unicodeFold = cases.Fold()

// Fold returns the normalized form of key under mode. Two keys that differ
// only in letter case have equal folds. The result is safe to retain.
func Fold(key string, mode Folding) string {
	upper, wide := scan(key)
	switch {
	case wide && mode == FoldUnicode:
		return unicodeFold.String(key)
	case !upper:
		return key
	}
	return utils.B2s(lowerASCII(make([]byte, 0, len(key)), key))
}

// scan reports whether key contains ASCII upper case letters and whether it
// contains any non-ASCII byte.
//
//go:nosplit
//go:inline
func scan(key string) (upper, wide bool) {
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= utf8.RuneSelf {
			wide = true
		} else if 'A' <= c && c <= 'Z' {
			upper = true
		}
	}
	return upper, wide
}

// lookupFold normalizes key for a read. The result may alias buf, so it
// must never be retained; Fold builds keys that are stored.
func lookupFold(key string, mode Folding, buf []byte) string {
	upper, wide := scan(key)
	switch {
	case wide && mode == FoldUnicode:
		return unicodeFold.String(key)
	case !upper:
		return key
	}
	return utils.B2s(lowerASCII(buf[:0], key))
}

// lowerASCII appends key to dst with A-Z lowered.
//
//go:nosplit
//go:inline
func lowerASCII(dst []byte, key string) []byte {
	for i := 0; i < len(key); i++ {
		c := key[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		dst = append(dst, c)
	}
	return dst
}
