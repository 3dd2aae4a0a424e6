package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchmaker/internal/match"
	"matchmaker/internal/store"
)

func matchList(indices ...uint32) *match.MatchList {
	ms := make([]match.Match, len(indices))
	for i, idx := range indices {
		ms[i] = match.Match{ItemIndex: idx}
	}
	return &match.MatchList{Matches: ms}
}

func TestCursorClampsOnEmptyMatchList(t *testing.T) {
	s := New(10)
	s.Resync(0, false, matchList())
	assert.Equal(t, uint32(0), s.Cursor())
	s.MoveCursor(5)
	assert.Equal(t, uint32(0), s.Cursor())
}

func TestCursorClampsOnShrink(t *testing.T) {
	s := New(10)
	s.Resync(0, false, matchList(0, 1, 2))
	s.SetCursor(2)
	require.Equal(t, uint32(2), s.Cursor())

	s.Resync(2, true, matchList(0))
	assert.Equal(t, uint32(0), s.Cursor())
}

func TestCursorFollowsItemAcrossReorder(t *testing.T) {
	s := New(10)
	s.Resync(0, false, matchList(5, 2, 9))
	s.SetCursor(1) // item 2
	cur, ok := s.CurrentItem(matchList(5, 2, 9))
	require.True(t, ok)
	require.Equal(t, uint32(2), cur)

	s.Resync(cur, true, matchList(2, 5, 9))
	assert.Equal(t, uint32(0), s.Cursor())
}

func TestScrollDoesNotChaseGrowthUnlessAtTail(t *testing.T) {
	s := New(3)
	s.Resync(0, false, matchList(0, 1, 2))
	s.SetCursor(0)

	s.Resync(0, true, matchList(0, 1, 2, 3, 4))
	assert.Equal(t, uint32(0), s.Snapshot().ScrollTop)
}

func TestScrollChasesGrowthWhenAtTail(t *testing.T) {
	s := New(3)
	s.Resync(0, false, matchList(0, 1, 2))
	s.SetCursor(2)

	s.Resync(2, true, matchList(0, 1, 2, 3, 4))
	assert.Equal(t, uint32(4), s.Cursor())
	assert.Greater(t, s.Snapshot().ScrollTop, uint32(0))
}

func TestToggleSelectAndSelection(t *testing.T) {
	s := New(10)
	s.Resync(0, false, matchList(0, 1, 2))
	s.ToggleSelect(1)
	s.ToggleSelect(2)

	ml := matchList(0, 1, 2)
	sel := s.Selection(ml)
	assert.Equal(t, []uint32{1, 2}, sel)

	s.ToggleSelect(2)
	sel = s.Selection(ml)
	assert.Equal(t, []uint32{1}, sel)
}

func TestSelectionFallsBackToCursor(t *testing.T) {
	s := New(10)
	ml := matchList(7, 8, 9)
	s.Resync(0, false, ml)
	s.SetCursor(1)

	sel := s.Selection(ml)
	assert.Equal(t, []uint32{8}, sel)
}

func TestGenerationBumpsOnMutation(t *testing.T) {
	s := New(10)
	before := s.Snapshot().Generation
	s.SetQuery("abc")
	assert.Greater(t, s.Snapshot().Generation, before)

	before = s.Snapshot().Generation
	s.SetQuery("abc")
	assert.Equal(t, before, s.Snapshot().Generation, "no-op SetQuery must not bump generation")
}

func TestReloadPreservesSelectionByIdentity(t *testing.T) {
	old := store.New()
	_, _ = old.Push([]string{"alpha"}, nil)
	_, _ = old.Push([]string{"beta"}, nil)
	_, _ = old.Push([]string{"gamma"}, nil)

	s := New(10)
	s.ToggleSelect(0) // alpha
	s.ToggleSelect(2) // gamma

	identities := s.CaptureIdentities(old, 0, 0, false)

	fresh := store.New()
	_, _ = fresh.Push([]string{"gamma"}, nil)
	_, _ = fresh.Push([]string{"delta"}, nil)
	_, _ = fresh.Push([]string{"alpha"}, nil)

	s.RestoreByIdentity(fresh, 0, identities)

	ml := matchList(0, 1, 2)
	sel := s.Selection(ml)
	assert.Equal(t, []uint32{0, 2}, sel)
}

func TestReloadDropsMissingIdentities(t *testing.T) {
	old := store.New()
	_, _ = old.Push([]string{"alpha"}, nil)

	s := New(10)
	s.ToggleSelect(0)
	identities := s.CaptureIdentities(old, 0, 0, false)

	fresh := store.New()
	_, _ = fresh.Push([]string{"beta"}, nil)

	s.RestoreByIdentity(fresh, 0, identities)
	ml := matchList(0)
	assert.Empty(t, s.Selection(ml))
}
