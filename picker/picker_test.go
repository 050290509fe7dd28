package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/television/television/entry"
	"github.com/television/television/matcher"
)

func snap(raws ...string) *matcher.Snapshot {
	idg := entry.NewIDGen()
	items := make([]matcher.Scored, len(raws))
	for i, r := range raws {
		items[i] = matcher.Scored{Entry: entry.New(idg.Next(), r, entry.Identity{}, entry.Identity{}, false)}
	}
	return &matcher.Snapshot{Items: items, TotalMatched: len(items), TotalPool: len(items), Complete: true}
}

func TestCursorMovement(t *testing.T) {
	p := New()
	s := snap("a", "b", "c")
	p.Sync(s)

	i, ok := p.Index()
	require.True(t, ok)
	assert.Equal(t, 0, i)

	p.Move(s, 1)
	assert.Equal(t, "b", p.Current(s).Raw())

	p.Move(s, 10)
	assert.Equal(t, "c", p.Current(s).Raw(), "movement clamps at the end")

	p.Move(s, -10)
	assert.Equal(t, "a", p.Current(s).Raw())

	p.Bottom(s)
	assert.Equal(t, "c", p.Current(s).Raw())
	p.Top(s)
	assert.Equal(t, "a", p.Current(s).Raw())
}

func TestCursorSurvivesRerank(t *testing.T) {
	p := New()
	idg := entry.NewIDGen()
	a := entry.New(idg.Next(), "a", entry.Identity{}, entry.Identity{}, false)
	b := entry.New(idg.Next(), "b", entry.Identity{}, entry.Identity{}, false)
	c := entry.New(idg.Next(), "c", entry.Identity{}, entry.Identity{}, false)

	s1 := &matcher.Snapshot{Items: []matcher.Scored{{Entry: a}, {Entry: b}, {Entry: c}}}
	p.Sync(s1)
	p.Move(s1, 1) // highlight b

	// re-rank: b moves to the top
	s2 := &matcher.Snapshot{Items: []matcher.Scored{{Entry: b}, {Entry: a}, {Entry: c}}}
	p.Sync(s2)
	assert.Equal(t, "b", p.Current(s2).Raw(), "cursor follows the entry id, not the index")
}

func TestCursorSnapsWhenEntryDrops(t *testing.T) {
	p := New()
	idg := entry.NewIDGen()
	a := entry.New(idg.Next(), "a", entry.Identity{}, entry.Identity{}, false)
	b := entry.New(idg.Next(), "b", entry.Identity{}, entry.Identity{}, false)
	c := entry.New(idg.Next(), "c", entry.Identity{}, entry.Identity{}, false)

	s1 := &matcher.Snapshot{Items: []matcher.Scored{{Entry: a}, {Entry: b}, {Entry: c}}}
	p.Sync(s1)
	p.Bottom(s1) // highlight c

	s2 := &matcher.Snapshot{Items: []matcher.Scored{{Entry: a}}}
	p.Sync(s2)
	assert.Equal(t, "a", p.Current(s2).Raw(), "cursor snaps to the nearest surviving rank")
}

func TestEmptyResults(t *testing.T) {
	p := New()
	s := snap()
	p.Sync(s)

	_, ok := p.Index()
	assert.False(t, ok, "empty results leave the cursor invalid")
	assert.Nil(t, p.Current(s))
	assert.Nil(t, p.Confirm(s))
}

func TestMultiSelectInsertionOrder(t *testing.T) {
	p := New()
	s := snap("a", "b", "c")
	p.Sync(s)

	p.Move(s, 2) // c
	p.ToggleMultiSelect(s)
	p.Move(s, -2) // a
	p.ToggleMultiSelect(s)

	assert.Equal(t, 2, p.SelectedCount())
	assert.Equal(t, []string{"c", "a"}, p.Confirm(s), "confirm emits in insertion order")
}

func TestMultiSelectToggleOff(t *testing.T) {
	p := New()
	s := snap("a", "b")
	p.Sync(s)

	p.ToggleMultiSelect(s)
	assert.Equal(t, 1, p.SelectedCount())
	p.ToggleMultiSelect(s)
	assert.Zero(t, p.SelectedCount())
}

func TestMultiSelectionSurvivesRerank(t *testing.T) {
	p := New()
	idg := entry.NewIDGen()
	a := entry.New(idg.Next(), "a", entry.Identity{}, entry.Identity{}, false)
	b := entry.New(idg.Next(), "b", entry.Identity{}, entry.Identity{}, false)

	s1 := &matcher.Snapshot{Items: []matcher.Scored{{Entry: a}, {Entry: b}}}
	p.Sync(s1)
	p.ToggleMultiSelect(s1) // select a

	// a drops out of the results entirely
	s2 := &matcher.Snapshot{Items: []matcher.Scored{{Entry: b}}}
	p.Sync(s2)

	assert.Equal(t, 1, p.SelectedCount(), "selections are ids, not indices; re-ranks never lose them")
	assert.Equal(t, []string{"a"}, p.Confirm(s2))
}

func TestConfirmFallsBackToHighlight(t *testing.T) {
	p := New()
	s := snap("apple", "apricot")
	p.Sync(s)
	assert.Equal(t, []string{"apple"}, p.Confirm(s))
}

func TestSelectAllVisible(t *testing.T) {
	p := New()
	s := snap("a", "b", "c", "d", "e")
	p.SetHeight(3)
	p.Sync(s)

	p.SelectAllVisible(s)
	assert.Equal(t, 3, p.SelectedCount(), "only the visible window is selected")
}

func TestWindowFollowsCursor(t *testing.T) {
	p := New()
	s := snap("a", "b", "c", "d", "e", "f")
	p.SetHeight(3)
	p.Sync(s)

	p.Move(s, 4) // index 4, beyond the 3-row window
	from, to := p.Visible(len(s.Items))
	assert.LessOrEqual(t, from, 4)
	assert.Greater(t, to, 4, "cursor must stay inside the visible window")

	p.Top(s)
	from, _ = p.Visible(len(s.Items))
	assert.Zero(t, from)
}

func TestPage(t *testing.T) {
	p := New()
	s := snap("a", "b", "c", "d", "e", "f", "g", "h")
	p.SetHeight(3)
	p.Sync(s)

	p.Page(s, 1)
	i, _ := p.Index()
	assert.Equal(t, 3, i)
	p.Page(s, -1)
	i, _ = p.Index()
	assert.Equal(t, 0, i)
}
