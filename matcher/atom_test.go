package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryAtoms(t *testing.T) {
	atoms := ParseQuery("foo !bar ^baz qux$ ^exact$", false)
	require.Len(t, atoms, 5)

	assert.Equal(t, Atom{Text: "foo"}, atoms[0])
	assert.Equal(t, Atom{Text: "bar", Negate: true}, atoms[1])
	assert.Equal(t, Atom{Text: "baz", Prefix: true}, atoms[2])
	assert.Equal(t, Atom{Text: "qux", Suffix: true}, atoms[3])
	assert.Equal(t, Atom{Text: "exact", Prefix: true, Suffix: true}, atoms[4])
}

func TestParseQueryQuoting(t *testing.T) {
	atoms := ParseQuery(`"hello world" plain`, false)
	require.Len(t, atoms, 2)
	assert.Equal(t, "hello world", atoms[0].Text)
	assert.Equal(t, "plain", atoms[1].Text)

	// escaped space
	atoms = ParseQuery(`a\ b`, false)
	require.Len(t, atoms, 1)
	assert.Equal(t, "a b", atoms[0].Text)

	// dangling quote extends to end of string
	atoms = ParseQuery(`"to the end`, false)
	require.Len(t, atoms, 1)
	assert.Equal(t, "to the end", atoms[0].Text)
}

func TestParseQueryExactAtom(t *testing.T) {
	atoms := ParseQuery("'literal", false)
	require.Len(t, atoms, 1)
	assert.True(t, atoms[0].Exact)
	assert.Equal(t, "literal", atoms[0].Text)

	// exact mode marks every atom
	atoms = ParseQuery("a b", true)
	require.Len(t, atoms, 2)
	assert.True(t, atoms[0].Exact)
	assert.True(t, atoms[1].Exact)
}

func TestParseQueryEscapedDollar(t *testing.T) {
	atoms := ParseQuery(`price\$`, false)
	require.Len(t, atoms, 1)
	assert.False(t, atoms[0].Suffix)
	assert.Equal(t, "price$", atoms[0].Text)
}

func TestParseQueryEmptyAndBareOperators(t *testing.T) {
	assert.Empty(t, ParseQuery("", false))
	assert.Empty(t, ParseQuery("   ", false))
	assert.Empty(t, ParseQuery("!", false), "a bare operator carries no text")
	assert.Empty(t, ParseQuery("^", false))
}

func TestParseQuerySmartCaseFlag(t *testing.T) {
	atoms := ParseQuery("abc Abc", false)
	require.Len(t, atoms, 2)
	assert.False(t, atoms[0].caseSensitive)
	assert.True(t, atoms[1].caseSensitive)
}

func TestMatchExactSubstring(t *testing.T) {
	a := Atom{Text: "bc", Exact: true}
	score, ranges, ok := matchAtom(a, "abcd")
	require.True(t, ok)
	assert.Positive(t, score)
	assert.Equal(t, [][]int{{1, 3}}, ranges)

	// exact atoms do not match scattered
	_, _, ok = matchAtom(a, "b-c")
	assert.False(t, ok)
}

func TestFuzzyRangesMerge(t *testing.T) {
	a := Atom{Text: "abc"}
	_, ranges, ok := matchAtom(a, "abc")
	require.True(t, ok)
	assert.Equal(t, [][]int{{0, 3}}, ranges, "adjacent matches merge into one range")
}
