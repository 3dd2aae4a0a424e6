// Package picker implements Picker State: the authoritative UI-facing
// state (query, cursor, scroll offset, multi-selection, mode) mutated
// exclusively by the Event Loop.
package picker

import (
	"sort"

	"matchmaker/internal/match"
)

// Mode is the picker's UI mode.
type Mode int

const (
	Normal Mode = iota
	Prompt
	Help
)

// State is the live Picker State. All mutator methods assume
// single-threaded (EL-exclusive) access and bump Generation.
type State struct {
	query       string
	cursor      uint32
	scrollTop   uint32
	multiSelect map[uint32]struct{} // item indices
	mode        Mode
	generation  uint64

	viewportHeight uint32
	matchLen       uint32
}

// New creates an empty Picker State with the given visible row count.
func New(viewportHeight uint32) *State {
	if viewportHeight == 0 {
		viewportHeight = 1
	}
	return &State{
		multiSelect:    make(map[uint32]struct{}),
		viewportHeight: viewportHeight,
	}
}

// Snapshot is an immutable value copy for the Renderer.
type Snapshot struct {
	Query       string
	Cursor      uint32
	ScrollTop   uint32
	MultiSelect []uint32 // sorted item indices
	Mode        Mode
	Generation  uint64
}

// Snapshot returns an immutable copy of the current state.
func (s *State) Snapshot() Snapshot {
	sel := make([]uint32, 0, len(s.multiSelect))
	for idx := range s.multiSelect {
		sel = append(sel, idx)
	}
	sort.Slice(sel, func(i, j int) bool { return sel[i] < sel[j] })
	return Snapshot{
		Query:       s.query,
		Cursor:      s.cursor,
		ScrollTop:   s.scrollTop,
		MultiSelect: sel,
		Mode:        s.mode,
		Generation:  s.generation,
	}
}

func (s *State) bump() {
	s.generation++
}

// SetQuery replaces the query text. Cursor/scroll are left untouched;
// callers resync via Resync once the Matcher Worker republishes a
// MatchList for the new query.
func (s *State) SetQuery(q string) {
	if s.query == q {
		return
	}
	s.query = q
	s.bump()
}

// SetViewportHeight updates the visible row count used to clamp
// scroll position, e.g. in response to a terminal resize.
func (s *State) SetViewportHeight(h uint32) {
	if h == 0 {
		h = 1
	}
	if h == s.viewportHeight {
		return
	}
	s.viewportHeight = h
	s.clampScroll()
}

func (s *State) Query() string { return s.query }
func (s *State) Cursor() uint32 { return s.cursor }
func (s *State) Mode() Mode     { return s.mode }

func (s *State) maxCursor() uint32 {
	if s.matchLen == 0 {
		return 0
	}
	return s.matchLen - 1
}

func (s *State) clampCursor() {
	if s.cursor > s.maxCursor() {
		s.cursor = s.maxCursor()
	}
	s.clampScroll()
}

func (s *State) clampScroll() {
	if s.cursor < s.scrollTop {
		s.scrollTop = s.cursor
	}
	if s.viewportHeight > 0 && s.cursor >= s.scrollTop+s.viewportHeight {
		s.scrollTop = s.cursor - s.viewportHeight + 1
	}
	maxScroll := uint32(0)
	if s.matchLen > s.viewportHeight {
		maxScroll = s.matchLen - s.viewportHeight
	}
	if s.scrollTop > maxScroll {
		s.scrollTop = maxScroll
	}
}

// MoveCursor shifts the cursor by delta rows, clamped to
// [0, max(1,len)-1].
func (s *State) MoveCursor(delta int32) {
	next := int64(s.cursor) + int64(delta)
	if next < 0 {
		next = 0
	}
	if max := int64(s.maxCursor()); next > max {
		next = max
	}
	if uint32(next) == s.cursor {
		return
	}
	s.cursor = uint32(next)
	s.clampScroll()
	s.bump()
}

// SetCursor moves the cursor to an absolute position, clamped.
func (s *State) SetCursor(i uint32) {
	if i > s.maxCursor() {
		i = s.maxCursor()
	}
	if i == s.cursor {
		return
	}
	s.cursor = i
	s.clampScroll()
	s.bump()
}

// ToggleSelect flips item index's membership in the multi-selection set.
func (s *State) ToggleSelect(index uint32) {
	if _, ok := s.multiSelect[index]; ok {
		delete(s.multiSelect, index)
	} else {
		s.multiSelect[index] = struct{}{}
	}
	s.bump()
}

// ClearSelect empties the multi-selection set.
func (s *State) ClearSelect() {
	if len(s.multiSelect) == 0 {
		return
	}
	s.multiSelect = make(map[uint32]struct{})
	s.bump()
}

// SelectAll adds every item index in the current MatchList to the
// multi-selection set.
func (s *State) SelectAll(ml *match.MatchList) {
	for _, m := range ml.Matches {
		s.multiSelect[m.ItemIndex] = struct{}{}
	}
	s.bump()
}

// SetMode switches the UI mode.
func (s *State) SetMode(m Mode) {
	if s.mode == m {
		return
	}
	s.mode = m
	s.bump()
}

// Resync reconciles cursor and scroll position against a freshly
// published MatchList, per the cursor policy in §4.3: if the item
// under the cursor is still present, the cursor follows it to its new
// ordinal position; otherwise the cursor snaps to the same ordinal
// index (clamped). Scroll does not chase growth unless the cursor was
// already at the tail before the resync.
func (s *State) Resync(prevItem uint32, hadItem bool, ml *match.MatchList) {
	oldLen := s.matchLen
	wasAtTail := oldLen > 0 && s.cursor == oldLen-1
	newLen := uint32(len(ml.Matches))
	grew := newLen > oldLen
	s.matchLen = newLen

	if grew && wasAtTail {
		s.cursor = newLen - 1
		s.clampScroll()
		return
	}

	if hadItem {
		if pos, ok := findItem(ml, prevItem); ok {
			s.cursor = pos
			s.clampCursor()
			return
		}
	}

	s.clampCursor()
}

// CurrentItem returns the item index under the cursor in ml, and
// whether the cursor currently points at a valid row.
func (s *State) CurrentItem(ml *match.MatchList) (uint32, bool) {
	if s.cursor >= uint32(len(ml.Matches)) {
		return 0, false
	}
	return ml.Matches[s.cursor].ItemIndex, true
}

func findItem(ml *match.MatchList, itemIndex uint32) (uint32, bool) {
	for pos, m := range ml.Matches {
		if m.ItemIndex == itemIndex {
			return uint32(pos), true
		}
	}
	return 0, false
}

// Selection returns the item indices to resolve at accept time: the
// multi-selection set if non-empty, otherwise the cursor's current
// item alone.
func (s *State) Selection(ml *match.MatchList) []uint32 {
	if len(s.multiSelect) > 0 {
		sel := make([]uint32, 0, len(s.multiSelect))
		for idx := range s.multiSelect {
			sel = append(sel, idx)
		}
		sort.Slice(sel, func(i, j int) bool { return sel[i] < sel[j] })
		return sel
	}
	if idx, ok := s.CurrentItem(ml); ok {
		return []uint32{idx}
	}
	return nil
}
