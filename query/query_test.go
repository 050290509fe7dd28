package query

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertDelete(t *testing.T) {
	q := New()
	g0 := q.Generation()

	q.InsertAt('a', 0)
	q.InsertAt('c', 1)
	q.InsertAt('b', 1)
	assert.Equal(t, "abc", q.String())

	g1 := q.Generation()
	assert.Greater(t, g1, g0, "every mutation must bump the generation")

	q.DeleteRange(1, 2)
	assert.Equal(t, "ac", q.String())
	assert.Greater(t, q.Generation(), g1)
}

func TestDeleteRangeBounds(t *testing.T) {
	q := New()
	q.Set("hello")
	g := q.Generation()

	q.DeleteRange(-1, 3)
	assert.Equal(t, "hello", q.String())
	assert.Equal(t, g, q.Generation(), "no-op deletes must not bump the generation")

	q.DeleteRange(3, 100)
	assert.Equal(t, "hel", q.String())
}

func TestWordBoundaries(t *testing.T) {
	q := New()
	q.Set("foo bar  baz")

	assert.Equal(t, 9, q.WordStart(12))
	assert.Equal(t, 4, q.WordStart(7))
	assert.Equal(t, 0, q.WordStart(3))
	assert.Equal(t, 3, q.WordEnd(0))
	assert.Equal(t, 7, q.WordEnd(4))
}

func TestCaret(t *testing.T) {
	var c Caret
	c.Move(-1)
	assert.Equal(t, 0, c.Pos())
	c.SetPos(5)
	c.Clamp(3)
	assert.Equal(t, 3, c.Pos())
}

func TestHistoryNavigation(t *testing.T) {
	h := NewHistory(10)
	h.Push("one")
	h.Push("two")
	h.Push("two") // consecutive duplicate dropped
	h.Push("three")
	assert.Equal(t, 3, h.Len())

	s, ok := h.Prev("wip")
	require.True(t, ok)
	assert.Equal(t, "three", s)

	s, _ = h.Prev("ignored")
	assert.Equal(t, "two", s)

	s, _ = h.Next()
	assert.Equal(t, "three", s)

	s, ok = h.Next()
	require.True(t, ok)
	assert.Equal(t, "wip", s, "walking past the end restores the stashed input")

	_, ok = h.Next()
	assert.False(t, ok)
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory(3)
	for _, s := range []string{"a", "b", "c", "d"} {
		h.Push(s)
	}
	assert.Equal(t, 3, h.Len())
	s, _ := h.Prev("")
	assert.Equal(t, "d", s)
}

func TestHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist", "default")

	h := NewHistory(0)
	h.Push("alpha")
	h.Push("beta")
	require.NoError(t, h.Save(path))

	h2, err := LoadHistory(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, h2.Len())
	s, _ := h2.Prev("")
	assert.Equal(t, "beta", s)
}

func TestLoadHistoryMissing(t *testing.T) {
	h, err := LoadHistory(filepath.Join(t.TempDir(), "nope"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
}
