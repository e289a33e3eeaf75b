package cimap

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	Key   string
	Value string
}

func pairs(m *Map[string]) []pair {
	var out []pair
	for k, v := range m.All() {
		out = append(out, pair{k, v})
	}
	return out
}

// -----------------------------------------------------------------------------
// ░░ Case-insensitive lookup ░░
// -----------------------------------------------------------------------------

func TestCaseVariantsFindSameValue(t *testing.T) {
	variants := [][2]string{
		{"foo", "FOO"},
		{"foo", "Foo"},
		{"BAR", "bar"},
		{"Content-Type", "content-type"},
		{"MiXeD123", "mIxEd123"},
		{"", ""},
	}
	for _, mode := range []Folding{FoldUnicode, FoldASCII} {
		for _, v := range variants {
			m := New[string](WithFolding(mode))
			m.Put(v[0], "value")

			got, ok := m.Get(v[1])
			assert.True(t, ok, "%s: Get(%q) after Put(%q)", mode, v[1], v[0])
			assert.Equal(t, "value", got)
			assert.True(t, m.ContainsKey(v[1]))
		}
	}
}

func TestUnicodeFolding(t *testing.T) {
	m := New[int]()
	m.Put("αβδ", 1)
	m.Put("\u212aelvin", 2) // KELVIN SIGN folds to k

	v, ok := m.Get("ΑΒΔ")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = m.Get("KELVIN")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	dk, ok := m.DisplayKey("kelvin")
	require.True(t, ok)
	assert.Equal(t, "\u212aelvin", dk)
}

func TestASCIIFoldingLeavesUnicodeAlone(t *testing.T) {
	m := New[int](WithFolding(FoldASCII))
	m.Put("αβδ", 1)
	_, ok := m.Get("ΑΒΔ")
	assert.False(t, ok)
	assert.Equal(t, FoldASCII, m.Folding())
}

func TestReadYourWrite(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"a", "B", "long-key-exceeding-the-stack-scratch-buffer-ABCDEFGHIJKLMNOPQRSTUVWXYZ"} {
		m.Put(k, i)
		v, ok := m.Get(k)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestLongKeysFoldBeyondScratch(t *testing.T) {
	long := "PREFIX-" + string(slices.Repeat([]byte{'X'}, 200))
	m := New[int]()
	m.Put(long, 9)
	v, ok := m.Get(Fold(long, FoldUnicode))
	require.True(t, ok)
	assert.Equal(t, 9, v)
}

// -----------------------------------------------------------------------------
// ░░ Display key and order preservation ░░
// -----------------------------------------------------------------------------

func TestPutReturnsPrevious(t *testing.T) {
	m := New[string]()
	prev, replaced := m.Put("foo", "one")
	assert.False(t, replaced)
	assert.Equal(t, "", prev)

	prev, replaced = m.Put("FOO", "two")
	assert.True(t, replaced)
	assert.Equal(t, "one", prev)
	assert.Equal(t, 1, m.Len())
}

func TestDisplayKeyKeepsFirstCasing(t *testing.T) {
	m := New[string]()
	m.Put("foo", "one")
	m.Put("FOO", "two")
	m.Put("Foo", "three")

	assert.Equal(t, []pair{{"foo", "three"}}, pairs(m))
	dk, ok := m.DisplayKey("fOO")
	require.True(t, ok)
	assert.Equal(t, "foo", dk)
}

func TestInsertionOrderSurvivesLookupsAndUpdates(t *testing.T) {
	m := New[string]()
	m.Put("foo", "a")
	m.Put("BAR", "b")
	m.Get("FOO")
	m.Get("bar")
	m.Put("FOO", "c")
	m.Put("bar", "d")

	assert.Equal(t, []string{"foo", "BAR"}, slices.Collect(m.Keys()))
	assert.Equal(t, []string{"c", "d"}, slices.Collect(m.Values()))
}

func TestReinsertAfterRemoveMovesToEnd(t *testing.T) {
	m := New[string]()
	m.Put("a", "1")
	m.Put("b", "2")
	m.Put("c", "3")
	m.Remove("A")
	m.Put("A", "4")

	assert.Equal(t, []pair{{"b", "2"}, {"c", "3"}, {"A", "4"}}, pairs(m))
}

func TestIterationIsRestartable(t *testing.T) {
	m := New[string]()
	m.Put("x", "1")
	m.Put("y", "2")

	seq := m.All()
	first := maps.Collect(seq)
	second := maps.Collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestIterationEarlyStop(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"a", "b", "c"} {
		m.Put(k, i)
	}
	var seen []string
	for k := range m.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestRemoveCurrentDuringIteration(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"a", "b", "c", "d"} {
		m.Put(k, i)
	}
	for k, v := range m.All() {
		if v%2 == 0 {
			m.Remove(k)
		}
	}
	assert.Equal(t, []string{"b", "d"}, slices.Collect(m.Keys()))
}

// -----------------------------------------------------------------------------
// ░░ Removal ░░
// -----------------------------------------------------------------------------

func TestRemoveIsIdempotent(t *testing.T) {
	m := New[string]()
	m.Put("Key", "v")

	v, ok := m.Remove("KEY")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = m.Get("key")
	assert.False(t, ok)

	v, ok = m.Remove("key")
	assert.False(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, pairs(m))
}

func TestRemoveHeadMiddleTail(t *testing.T) {
	for _, victim := range []string{"a", "b", "c"} {
		m := New[string]()
		m.Put("a", "1")
		m.Put("b", "2")
		m.Put("c", "3")
		m.Remove(victim)

		var want []string
		for _, k := range []string{"a", "b", "c"} {
			if k != victim {
				want = append(want, k)
			}
		}
		assert.Equal(t, want, slices.Collect(m.Keys()), "removing %s", victim)
	}
}

func TestSlabSlotsAreRecycled(t *testing.T) {
	m := New[int]()
	for round := 0; round < 100; round++ {
		m.Put("k", round)
		m.Remove("K")
	}
	assert.LessOrEqual(t, len(m.slab), 1)
}

func TestClearAndClone(t *testing.T) {
	m := New[string]()
	m.Put("foo", "Hello World")
	m.Put("BAR", "Bye World")

	c := m.Clone()
	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, pairs(m))
	assert.False(t, m.ContainsKey("foo"))

	assert.Equal(t, []pair{{"foo", "Hello World"}, {"BAR", "Bye World"}}, pairs(c))
	m.Put("x", "y")
	assert.False(t, c.ContainsKey("x"))
}

// -----------------------------------------------------------------------------
// ░░ End-to-end operation script ░░
// -----------------------------------------------------------------------------

func TestOperationScriptScenario(t *testing.T) {
	m := New[string]()

	m.Put("foo", "Hello World")
	v, ok := m.Get("foo")
	require.True(t, ok)
	assert.Equal(t, "Hello World", v)
	v, ok = m.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, "Hello World", v)

	m.Put("BAR", "Bye World")
	v, ok = m.Get("bar")
	require.True(t, ok)
	assert.Equal(t, "Bye World", v)
	v, ok = m.Get("BAR")
	require.True(t, ok)
	assert.Equal(t, "Bye World", v)

	assert.Equal(t, []pair{{"foo", "Hello World"}, {"BAR", "Bye World"}}, pairs(m))
}

// -----------------------------------------------------------------------------
// ░░ Folding ░░
// -----------------------------------------------------------------------------

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		mode Folding
		want string
	}{
		{"foo", FoldUnicode, "foo"},
		{"FOO", FoldUnicode, "foo"},
		{"FOO", FoldASCII, "foo"},
		{"ΑΒΔ", FoldUnicode, "αβδ"},
		{"ΑΒΔ", FoldASCII, "ΑΒΔ"},
		{"Straight-ASCII_123", FoldASCII, "straight-ascii_123"},
		{"", FoldUnicode, ""},
	}
	for _, tt := range tests {
		if got := Fold(tt.in, tt.mode); got != tt.want {
			t.Errorf("Fold(%q, %s) = %q, want %q", tt.in, tt.mode, got, tt.want)
		}
	}
}

func TestFoldedLowercaseKeyIsNotCopied(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = Fold("already-lower", FoldUnicode)
	})
	assert.Zero(t, allocs)
}
