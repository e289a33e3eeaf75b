// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ ROBIN HOOD HASH TABLE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Case-Insensitive Map Benchmark Harness
// Component: String-Keyed Open-Addressing Index
//
// Description:
//   Robin Hood hash table keyed by string. Serves as the lookup index behind the
//   case-insensitive ordered map and, unwrapped, as a case-sensitive comparator.
//   Single-threaded: callers own the table exclusively.
//
// Design Principles:
//   - Power-of-2 sizing for mask-based modulo
//   - Robin Hood displacement bounds probe distances
//   - Parallel arrays for hashes, keys, and values keep the probe loop on one array
//   - Zero hash value is the empty-slot sentinel (stored hashes carry the top bit)
//   - Table doubles once the load factor would exceed 1/2
//   - Deletion uses backward shifting, so no tombstones are ever left behind
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package localidx

import "cimapbench/utils"

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// minSlots is the smallest table ever allocated.
const minSlots = 8

// occupied marks every stored hash so that 0 stays free as the empty sentinel.
// Index placement only uses the low bits, which this leaves untouched.
const occupied = uint64(1) << 63

// Hash implements a growable Robin Hood hash map for single-threaded use.
//
// MEMORY LAYOUT:
//
//	hashes, keys and vals are parallel arrays. Probing touches only hashes until
//	a full 64-bit hash match, so key comparisons are rare.
type Hash[V any] struct {
	hashes []uint64 // Hash array (0 = empty sentinel)
	keys   []string // Key array (parallel to hashes)
	vals   []V      // Value array (parallel to hashes)
	mask   uint64   // Size mask for fast modulo
	size   int      // Live entries
	growAt int      // Size at which the next insert doubles the table
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// UTILITY FUNCTIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// nextPow2 calculates the smallest power of 2 greater than or equal to n.
//
//go:nosplit
//go:inline
func nextPow2(n int) int {
	s := minSlots
	for s < n {
		s <<= 1
	}
	return s
}

// hashKey returns the tagged hash for key.
//
//go:nosplit
//go:inline
func hashKey(key string) uint64 {
	return utils.HashString(key) | occupied
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTOR
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New creates a table able to hold capacity entries before its first growth.
// Capacity is doubled for load factor headroom and rounded to a power of 2.
func New[V any](capacity int) *Hash[V] {
	h := &Hash[V]{}
	h.alloc(nextPow2(capacity * 2))
	return h
}

// alloc replaces the backing arrays with empty arrays of n slots.
func (h *Hash[V]) alloc(n int) {
	h.hashes = make([]uint64, n)
	h.keys = make([]string, n)
	h.vals = make([]V, n)
	h.mask = uint64(n - 1)
	h.growAt = n / 2
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CORE OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Len reports the number of live entries.
func (h *Hash[V]) Len() int { return h.size }

// Cap reports the number of slots in the table.
func (h *Hash[V]) Cap() int { return len(h.hashes) }

// Get retrieves a value by key with Robin Hood early termination.
//
// EARLY TERMINATION:
//
//	If we find an entry that is closer to its ideal position than our
//	current probe distance, the key cannot be further along the chain.
func (h *Hash[V]) Get(key string) (V, bool) {
	if i, ok := h.find(key, hashKey(key)); ok {
		return h.vals[i], true
	}
	var zero V
	return zero, false
}

// Put inserts key or overwrites its value.
//
// RETURN VALUE:
//   - For new insertions: the zero value and false
//   - For existing keys: the replaced value and true
func (h *Hash[V]) Put(key string, val V) (V, bool) {
	hv := hashKey(key)
	if i, ok := h.find(key, hv); ok {
		prev := h.vals[i]
		h.vals[i] = val
		return prev, true
	}
	if h.size >= h.growAt {
		h.grow()
	}
	h.insert(hv, key, val)
	h.size++
	var zero V
	return zero, false
}

// Delete removes key and returns its value.
//
// BACKWARD SHIFT:
//
//	Every following entry that is displaced from its ideal slot moves back
//	by one, which keeps the Robin Hood invariant without tombstones.
func (h *Hash[V]) Delete(key string) (V, bool) {
	var zero V
	i, ok := h.find(key, hashKey(key))
	if !ok {
		return zero, false
	}
	prev := h.vals[i]
	for {
		j := (i + 1) & h.mask
		k := h.hashes[j]
		if k == 0 || (j-k)&h.mask == 0 {
			break
		}
		h.hashes[i], h.keys[i], h.vals[i] = k, h.keys[j], h.vals[j]
		i = j
	}
	h.hashes[i], h.keys[i], h.vals[i] = 0, "", zero
	h.size--
	return prev, true
}

// Clear drops every entry and keeps the allocated table.
func (h *Hash[V]) Clear() {
	clear(h.hashes)
	clear(h.keys)
	clear(h.vals)
	h.size = 0
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// INTERNALS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// find returns the slot holding key.
func (h *Hash[V]) find(key string, hv uint64) (uint64, bool) {
	i := hv & h.mask
	dist := uint64(0)

	for {
		k := h.hashes[i]

		// Case 1: Empty slot - key not found
		if k == 0 {
			return 0, false
		}

		// Case 2: Full hash match - confirm on the key itself
		if k == hv && h.keys[i] == key {
			return i, true
		}

		// Case 3: Robin Hood early termination
		if (i-k)&h.mask < dist {
			return 0, false
		}

		i = (i + 1) & h.mask
		dist++
	}
}

// insert places an entry known to be absent, displacing richer occupants.
//
// ROBIN HOOD ALGORITHM:
//
//	When inserting, if we encounter an entry that is closer to its ideal position
//	than we are to ours, we take its place and continue inserting the displaced entry.
func (h *Hash[V]) insert(hv uint64, key string, val V) {
	i := hv & h.mask
	dist := uint64(0)

	for {
		k := h.hashes[i]

		if k == 0 {
			h.hashes[i], h.keys[i], h.vals[i] = hv, key, val
			return
		}

		if kDist := (i - k) & h.mask; kDist < dist {
			hv, h.hashes[i] = h.hashes[i], hv
			key, h.keys[i] = h.keys[i], key
			val, h.vals[i] = h.vals[i], val
			dist = kDist
		}

		i = (i + 1) & h.mask
		dist++
	}
}

// grow doubles the table and reinserts every live entry.
func (h *Hash[V]) grow() {
	hashes, keys, vals := h.hashes, h.keys, h.vals
	h.alloc(len(hashes) * 2)
	for i, k := range hashes {
		if k != 0 {
			h.insert(k, keys[i], vals[i])
		}
	}
}
