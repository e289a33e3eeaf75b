// Package cimap implements a case-insensitive, insertion-ordered map with
// string keys.
//
// Lookups fold the key, so Get("FOO") finds the value stored by Put("foo", v).
// The casing used on the first insertion of a logical key is kept as its
// display key and is what iteration yields. Updating an existing key with a
// different casing replaces the value only.
//
// A Map is not safe for concurrent mutation. Concurrent readers are fine as
// long as no goroutine writes.
package cimap

import (
	"iter"

	"cimapbench/localidx"
)

// nilIdx terminates the order links.
const nilIdx = -1

// entry is one logical key. Entries live in a slab and are chained in
// first-insertion order through prev/next slab indices.
type entry[V any] struct {
	key   string // display key, as first inserted
	norm  string // folded key, as indexed
	value V
	prev  int32
	next  int32
}

// Map is a case-insensitive ordered map. The zero value is not usable; call New.
type Map[V any] struct {
	index   *localidx.Hash[int32] // folded key → slab index
	slab    []entry[V]
	free    []int32 // recycled slab slots
	head    int32
	tail    int32
	folding Folding
}

type config struct {
	capacity int
	folding  Folding
}

// Option configures a Map.
type Option func(*config)

// WithCapacity pre-sizes the map for n logical keys.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithFolding selects the key normalization. The default is FoldUnicode.
func WithFolding(f Folding) Option {
	return func(c *config) { c.folding = f }
}

// New returns an empty map.
func New[V any](opts ...Option) *Map[V] {
	c := config{capacity: 8, folding: FoldUnicode}
	for _, opt := range opts {
		opt(&c)
	}
	return &Map[V]{
		index:   localidx.New[int32](c.capacity),
		slab:    make([]entry[V], 0, c.capacity),
		head:    nilIdx,
		tail:    nilIdx,
		folding: c.folding,
	}
}

// Folding reports the normalization in use.
func (m *Map[V]) Folding() Folding { return m.folding }

// Len returns the number of logical keys.
func (m *Map[V]) Len() int { return m.index.Len() }

// Put stores value under key. For a new logical key the display key is key
// itself and (zero, false) is returned. For an existing one the previous
// value is returned and the display key is left untouched.
func (m *Map[V]) Put(key string, value V) (V, bool) {
	if i, ok := m.lookup(key); ok {
		e := &m.slab[i]
		prev := e.value
		e.value = value
		return prev, true
	}

	norm := Fold(key, m.folding)
	i := m.alloc()
	m.slab[i] = entry[V]{key: key, norm: norm, value: value, prev: m.tail, next: nilIdx}
	if m.tail != nilIdx {
		m.slab[m.tail].next = i
	} else {
		m.head = i
	}
	m.tail = i
	m.index.Put(norm, i)

	var zero V
	return zero, false
}

// Get returns the value stored under any casing of key.
func (m *Map[V]) Get(key string) (V, bool) {
	if i, ok := m.lookup(key); ok {
		return m.slab[i].value, true
	}
	var zero V
	return zero, false
}

// ContainsKey reports whether any casing of key is present.
func (m *Map[V]) ContainsKey(key string) bool {
	_, ok := m.lookup(key)
	return ok
}

// DisplayKey returns the casing under which key was first inserted.
func (m *Map[V]) DisplayKey(key string) (string, bool) {
	if i, ok := m.lookup(key); ok {
		return m.slab[i].key, true
	}
	return "", false
}

// Remove deletes key (any casing) and returns its value. Removing an absent
// key returns (zero, false).
func (m *Map[V]) Remove(key string) (V, bool) {
	var zero V
	var buf [scratchLen]byte
	i, ok := m.index.Delete(lookupFold(key, m.folding, buf[:0]))
	if !ok {
		return zero, false
	}

	e := &m.slab[i]
	value := e.value
	if e.prev != nilIdx {
		m.slab[e.prev].next = e.next
	} else {
		m.head = e.next
	}
	if e.next != nilIdx {
		m.slab[e.next].prev = e.prev
	} else {
		m.tail = e.prev
	}
	*e = entry[V]{prev: nilIdx, next: nilIdx}
	m.free = append(m.free, i)
	return value, true
}

// Clear removes every entry.
func (m *Map[V]) Clear() {
	m.index.Clear()
	clear(m.slab)
	m.slab = m.slab[:0]
	m.free = m.free[:0]
	m.head, m.tail = nilIdx, nilIdx
}

// All yields (display key, value) pairs in first-insertion order. The
// sequence can be ranged over any number of times. Removing the entry being
// visited is allowed; other mutations during iteration are not.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for i := m.head; i != nilIdx; {
			e := &m.slab[i]
			next := e.next
			if !yield(e.key, e.value) {
				return
			}
			i = next
		}
	}
}

// Keys yields display keys in first-insertion order.
func (m *Map[V]) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields values in first-insertion order.
func (m *Map[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Clone returns an independent copy with the same order and display keys.
func (m *Map[V]) Clone() *Map[V] {
	c := New[V](WithCapacity(m.Len()), WithFolding(m.folding))
	for i := m.head; i != nilIdx; i = m.slab[i].next {
		e := &m.slab[i]
		c.Put(e.key, e.value)
	}
	return c
}

func (m *Map[V]) lookup(key string) (int32, bool) {
	var buf [scratchLen]byte
	return m.index.Get(lookupFold(key, m.folding, buf[:0]))
}

func (m *Map[V]) alloc() int32 {
	if n := len(m.free); n > 0 {
		i := m.free[n-1]
		m.free = m.free[:n-1]
		return i
	}
	m.slab = append(m.slab, entry[V]{})
	return int32(len(m.slab) - 1)
}
