package match

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"matchmaker/internal/logging"
	"matchmaker/internal/store"
)

// Match is one surviving item with its score and highlight positions.
type Match struct {
	ItemIndex uint32
	Score     int32
	Positions []uint32
}

// MatchList is an immutable, sorted snapshot published by the Worker.
// Tie-break is (-score, item_index): higher score first, then lower
// index first.
type MatchList struct {
	Matches    []Match
	Generation uint64
}

// yieldEvery bounds how many items the scoring loop processes between
// cooperative cancellation checks, so incremental pattern edits at
// typing speed never starve rendering (spec §4.2 performance contract).
const yieldEvery = 256

// Worker keeps a MatchList approximately synchronized with
// (CandidateStore, Pattern). Exactly one recomputation runs per wake,
// always against the latest coalesced state.
type Worker struct {
	store       *store.CandidateStore
	matchColumn int

	mu      sync.Mutex
	pattern Pattern

	wake chan struct{}

	snapshot atomic.Pointer[MatchList]
	genCtr   atomic.Uint64
}

// NewWorker creates a Worker scoring against columns[matchColumn] of
// every item in s. matchColumn defaults to 0 (the identity column) if
// negative.
func NewWorker(s *store.CandidateStore, matchColumn int) *Worker {
	if matchColumn < 0 {
		matchColumn = 0
	}
	w := &Worker{
		store:       s,
		matchColumn: matchColumn,
		wake:        make(chan struct{}, 1),
	}
	empty := &MatchList{}
	w.snapshot.Store(empty)
	return w
}

// SetPattern updates the current query and schedules a recomputation.
// Calling SetPattern twice in quick succession with the pattern
// unchanged still only schedules at most one pending recomputation
// (Testable Property #5).
func (w *Worker) SetPattern(p Pattern) {
	w.mu.Lock()
	unchanged := w.pattern.Raw == p.Raw
	w.pattern = p
	w.mu.Unlock()
	if !unchanged {
		w.notify()
	}
}

// NotifyItemsChanged signals that the store has grown.
func (w *Worker) NotifyItemsChanged() {
	w.notify()
}

func (w *Worker) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
		// A recomputation is already pending; it will see the latest
		// state when it runs, so this signal coalesces with it.
	}
}

// Snapshot returns the most recently published MatchList. Safe for
// concurrent use by any number of readers.
func (w *Worker) Snapshot() *MatchList {
	return w.snapshot.Load()
}

// Run blocks, recomputing the MatchList on every wake, until ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log := logging.Get(logging.CategoryMatch)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.wake:
			w.recompute(ctx, log)
		}
	}
}

func (w *Worker) recompute(ctx context.Context, log *logging.Logger) {
	w.mu.Lock()
	pattern := w.pattern
	w.mu.Unlock()

	count := w.store.Count()

	matches := make([]Match, 0, count)
	for i := uint32(0); i < count; i++ {
		if i%yieldEvery == 0 {
			select {
			case <-ctx.Done():
				log.Debug("recompute cancelled at item %d/%d", i, count)
				return
			default:
			}
		}

		item := w.store.Get(i)
		score, positions, include := scoreItem(item.Columns, w.matchColumn, pattern)
		if !include {
			continue
		}
		matches = append(matches, Match{ItemIndex: i, Score: score, Positions: positions})
	}

	select {
	case <-ctx.Done():
		return
	default:
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ItemIndex < matches[j].ItemIndex
	})

	gen := w.genCtr.Add(1)
	w.snapshot.Store(&MatchList{Matches: matches, Generation: gen})
	log.Debug("recomputed: %d items -> %d matches (gen %d)", count, len(matches), gen)
}
