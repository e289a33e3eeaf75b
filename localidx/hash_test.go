// Package localidx provides correctness tests for the string-keyed Robin Hood
// table. These tests validate overwrite semantics, growth, backward-shift
// deletion, and agreement with the Go map under randomized load.
package localidx

import (
	"strconv"
	"testing"
)

// -----------------------------------------------------------------------------
// ░░ Constructor and Allocation Semantics ░░
// -----------------------------------------------------------------------------

func TestNewHash(t *testing.T) {
	h := New[int](8)
	if h.mask == 0 {
		t.Fatal("mask should be non-zero")
	}
	if len(h.hashes) != 16 || len(h.keys) != 16 || len(h.vals) != 16 {
		t.Fatalf("expected 16-slot table, got hashes=%d keys=%d vals=%d", len(h.hashes), len(h.keys), len(h.vals))
	}
}

func TestNewHashMinimum(t *testing.T) {
	h := New[int](0)
	if h.Cap() != minSlots {
		t.Fatalf("Cap() = %d, want %d", h.Cap(), minSlots)
	}
}

// -----------------------------------------------------------------------------
// ░░ Basic Put / Get Semantics ░░
// -----------------------------------------------------------------------------

func TestPutAndGet(t *testing.T) {
	h := New[int](16)
	for i := 1; i <= 16; i++ {
		h.Put("k"+strconv.Itoa(i), i*10)
	}
	for i := 1; i <= 16; i++ {
		v, ok := h.Get("k" + strconv.Itoa(i))
		if !ok || v != i*10 {
			t.Fatalf("Get(k%d) = %d,%v ; want %d,true", i, v, ok, i*10)
		}
	}
	if h.Len() != 16 {
		t.Fatalf("Len() = %d, want 16", h.Len())
	}
}

func TestGetMiss(t *testing.T) {
	h := New[int](4)
	h.Put("one", 123)
	if _, ok := h.Get("two"); ok {
		t.Fatal("Get(two) should return false for missing key")
	}
}

func TestCaseSensitive(t *testing.T) {
	h := New[string](4)
	h.Put("foo", "lower")
	if _, ok := h.Get("FOO"); ok {
		t.Fatal("table must compare keys byte-for-byte")
	}
}

func TestEmptyKey(t *testing.T) {
	h := New[int](4)
	h.Put("", 7)
	if v, ok := h.Get(""); !ok || v != 7 {
		t.Fatalf("Get(\"\") = %d,%v ; want 7,true", v, ok)
	}
}

// -----------------------------------------------------------------------------
// ░░ Overwrite Behavior ░░
// -----------------------------------------------------------------------------

func TestPutOverwrite(t *testing.T) {
	h := New[int](8)
	if _, replaced := h.Put("answer", 100); replaced {
		t.Fatal("first Put reported a replacement")
	}
	prev, replaced := h.Put("answer", 200)
	if !replaced || prev != 100 {
		t.Fatalf("overwrite returned %d,%v ; want 100,true", prev, replaced)
	}
	if v, ok := h.Get("answer"); !ok || v != 200 {
		t.Fatalf("Get(answer) = %d,%v ; want 200,true", v, ok)
	}
	if h.Len() != 1 {
		t.Fatalf("Len() = %d after overwrite, want 1", h.Len())
	}
}

// -----------------------------------------------------------------------------
// ░░ Growth ░░
// -----------------------------------------------------------------------------

func TestGrowth(t *testing.T) {
	h := New[int](2)
	start := h.Cap()
	const n = 1000
	for i := 0; i < n; i++ {
		h.Put(strconv.Itoa(i), i)
	}
	if h.Cap() <= start {
		t.Fatalf("table did not grow: Cap() = %d", h.Cap())
	}
	if h.Len()*2 > h.Cap() {
		t.Fatalf("load factor above 1/2: %d/%d", h.Len(), h.Cap())
	}
	for i := 0; i < n; i++ {
		if v, ok := h.Get(strconv.Itoa(i)); !ok || v != i {
			t.Fatalf("Get(%d) = %d,%v after growth", i, v, ok)
		}
	}
}

// -----------------------------------------------------------------------------
// ░░ Deletion ░░
// -----------------------------------------------------------------------------

func TestDelete(t *testing.T) {
	h := New[int](8)
	h.Put("a", 1)
	h.Put("b", 2)

	v, ok := h.Delete("a")
	if !ok || v != 1 {
		t.Fatalf("Delete(a) = %d,%v ; want 1,true", v, ok)
	}
	if _, ok := h.Get("a"); ok {
		t.Fatal("a still present after Delete")
	}
	if _, ok := h.Delete("a"); ok {
		t.Fatal("second Delete(a) reported success")
	}
	if v, ok := h.Get("b"); !ok || v != 2 {
		t.Fatalf("Get(b) = %d,%v ; want 2,true", v, ok)
	}
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
}

func TestDeleteKeepsChainsReachable(t *testing.T) {
	// A small table forces long probe chains through wraparound.
	h := New[int](4)
	keys := make([]string, 0, 64)
	for i := 0; i < 64; i++ {
		k := "chain-" + strconv.Itoa(i)
		keys = append(keys, k)
		h.Put(k, i)
	}
	for i := 0; i < len(keys); i += 2 {
		if _, ok := h.Delete(keys[i]); !ok {
			t.Fatalf("Delete(%s) failed", keys[i])
		}
	}
	for i, k := range keys {
		_, ok := h.Get(k)
		if want := i%2 == 1; ok != want {
			t.Fatalf("Get(%s) presence = %v, want %v", k, ok, want)
		}
	}
}

func TestClear(t *testing.T) {
	h := New[int](8)
	h.Put("x", 1)
	h.Put("y", 2)
	c := h.Cap()
	h.Clear()
	if h.Len() != 0 || h.Cap() != c {
		t.Fatalf("after Clear Len=%d Cap=%d, want 0,%d", h.Len(), h.Cap(), c)
	}
	if _, ok := h.Get("x"); ok {
		t.Fatal("x survived Clear")
	}
}
