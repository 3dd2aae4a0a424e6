package picker

import "matchmaker/internal/store"

// CaptureIdentities snapshots the match-column text of every currently
// selected item (plus the cursor's item, if any), for use with
// RestoreByIdentity after a reload. See Open Question (a): reload
// preserves the multi-selection by item identity, not index, since a
// reload with PreserveSelection typically replaces the whole backing
// store and indices are not stable across it.
func (s *State) CaptureIdentities(st *store.CandidateStore, matchColumn int, cursorItem uint32, hadCursorItem bool) []string {
	indices := make(map[uint32]struct{}, len(s.multiSelect)+1)
	for idx := range s.multiSelect {
		indices[idx] = struct{}{}
	}
	if hadCursorItem {
		indices[cursorItem] = struct{}{}
	}

	identities := make([]string, 0, len(indices))
	for idx := range indices {
		if idx >= st.Count() {
			continue
		}
		item := st.Get(idx)
		if matchColumn >= 0 && matchColumn < len(item.Columns) {
			identities = append(identities, item.Columns[matchColumn])
		}
	}
	return identities
}

// RestoreByIdentity rebuilds the multi-selection set after a reload by
// re-resolving each captured identity string against the new store's
// current contents, dropping any identity no longer present.
func (s *State) RestoreByIdentity(st *store.CandidateStore, matchColumn int, identities []string) {
	s.multiSelect = make(map[uint32]struct{})
	if len(identities) == 0 {
		return
	}
	want := make(map[string]struct{}, len(identities))
	for _, id := range identities {
		want[id] = struct{}{}
	}

	count := st.Count()
	for i := uint32(0); i < count; i++ {
		item := st.Get(i)
		if matchColumn < 0 || matchColumn >= len(item.Columns) {
			continue
		}
		if _, ok := want[item.Columns[matchColumn]]; ok {
			s.multiSelect[i] = struct{}{}
		}
	}
	s.bump()
}
