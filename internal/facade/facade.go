// Package facade wires the Candidate Store, Matcher Worker, Picker
// State, Event Loop, Preview Worker, and ingester into one pick() call,
// the Go equivalent of matchmaker-lib's top-level entry point. It is
// the only package that constructs and joins every other component.
package facade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"regexp"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"matchmaker/internal/config"
	"matchmaker/internal/interrupt"
	"matchmaker/internal/logging"
	"matchmaker/internal/match"
	"matchmaker/internal/picker"
	"matchmaker/internal/preview"
	"matchmaker/internal/store"
	"matchmaker/internal/ui"
)

// Source is the out-of-core-scope input collaborator: whatever
// produces the byte stream (or in-memory rows) to ingest into the
// Candidate Store. Exactly one of Reader/Items is used.
type Source struct {
	Reader io.Reader
	Items  []string
}

// Worker is the caller-facing in-memory builder for non-interactive
// and library use: callers append rows directly rather than through a
// Source, mirroring the concrete API sketched in SPEC_FULL.md §6.1.
type Worker struct {
	store       *store.CandidateStore
	injector    store.Injector
	numColumns  int
}

// NewWorker returns a Worker ready to accept rows of the given column
// count.
func NewWorker(columns int) *Worker {
	s := store.New()
	return &Worker{store: s, injector: store.NewInjector(s), numColumns: columns}
}

// Append pushes every row from seq into the underlying store.
func (w *Worker) Append(seq iter.Seq[[]string]) {
	for columns := range seq {
		_, _ = w.injector.Push(columns, nil)
	}
}

// Errors raised outside the Event Loop's own AbortError/BecomeError
// (defined in internal/ui), matching SPEC_FULL.md §7.1's taxonomy.
type (
	// EventLoopClosedError means the tea.Program exited without ever
	// producing an accept/abort result (e.g. stdin closed unexpectedly).
	EventLoopClosedError struct{}

	// InjectorClosedError wraps store.ErrClosed at the facade boundary.
	InjectorClosedError struct{}

	// IOError wraps a failure reading the input Source.
	IOError struct{ Err error }

	// ChildError wraps a failure spawning or running a shell child for
	// execute/become/reload.
	ChildError struct {
		Cmd string
		Err error
	}
)

func (EventLoopClosedError) Error() string { return "matchmaker: event loop closed without a result" }
func (InjectorClosedError) Error() string  { return "matchmaker: injector closed" }
func (e *IOError) Error() string           { return fmt.Sprintf("matchmaker: io error: %v", e.Err) }
func (e *IOError) Unwrap() error           { return e.Err }
func (e *ChildError) Error() string        { return fmt.Sprintf("matchmaker: child %q: %v", e.Cmd, e.Err) }
func (e *ChildError) Unwrap() error        { return e.Err }

// ConfigError re-exports internal/config's structural validation
// error under the name SPEC_FULL.md §7.1 gives it, so callers checking
// errors.As(err, &cfgErr) with a *facade.ConfigError target don't need
// to import internal/config directly.
type ConfigError = config.StructuralError

// Pick runs one interactive selection: ingest, match, render, and
// return either the accepted selection or the error that ended the
// run. ctx cancellation tears down every task (ingester, MW, PW, EL)
// via errgroup, mirroring the teacher's fan-out-then-join use of
// errgroup for parallel task groups.
func Pick(ctx context.Context, cfg *config.Config, w *Worker, src Source) ([]string, error) {
	runID := uuid.NewString()
	log := logging.Get(logging.CategoryBoot)
	log.Info("pick run %s starting", runID)
	defer log.Info("pick run %s finished", runID)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := w.store
	inj := w.injector

	interrupt.SetGracePeriod(time.Duration(cfg.ChildKillGraceMs) * time.Millisecond)

	mw := match.NewWorker(s, cfg.MatchColumn)
	shell := interrupt.ResolveShell()

	previewDebounce := time.Duration(cfg.PreviewDebounceMs) * time.Millisecond
	pw := preview.NewWorker(shell, previewDebounce)

	bindings, err := config.ResolveBinds(cfg.Binds)
	if err != nil {
		return nil, err
	}

	ps := picker.New(20)

	layout := ui.Layout{
		Direction:    parseDirection(cfg.Layout.Direction),
		PreviewRatio: float64(cfg.Layout.PreviewRatio),
		ListRatio:    float64(cfg.Layout.ListRatio),
	}
	tickRate := time.Second / time.Duration(cfg.TickRateHz)

	g, gctx := errgroup.WithContext(runCtx)

	var (
		printedLines []string
		reloadMu     sync.Mutex
		reloadCancel context.CancelFunc
	)
	hooks := ui.Hooks{
		Print: func(text string) { printedLines = append(printedLines, text) },
		Reload: func(tmpl string) {
			var priorIdentities []string
			if cfg.PreserveSelection {
				cursorItem, hadCursor := ps.CurrentItem(mw.Snapshot())
				priorIdentities = ps.CaptureIdentities(s, cfg.MatchColumn, cursorItem, hadCursor)
			}

			reloadMu.Lock()
			if reloadCancel != nil {
				reloadCancel()
			}
			reloadCtx, cancel := context.WithCancel(gctx)
			reloadCancel = cancel
			reloadMu.Unlock()

			s.Reset()
			ps.ClearSelect()

			g.Go(func() error {
				runReload(reloadCtx, shell, tmpl, s, inj, cfg, w, mw)
				if cfg.PreserveSelection {
					ps.RestoreByIdentity(s, cfg.MatchColumn, priorIdentities)
				}
				mw.NotifyItemsChanged()
				return nil
			})
		},
	}

	model := ui.NewModel(ui.Deps{
		Store:           s,
		Worker:          mw,
		Picker:          ps,
		Preview:         pw,
		Bindings:        bindings,
		Shell:           shell,
		Theme:           ui.DetectTheme(),
		Layout:          layout,
		TickRate:        tickRate,
		OutputTemplate:  cfg.OutputTemplate,
		OutputSeparator: cfg.OutputSeparator,
		MatchColumn:     cfg.MatchColumn,
		PreviewCommand:  cfg.PreviewCommand,
		Hooks:           hooks,
		RootCtx:         runCtx,
	})

	g.Go(func() error {
		return mw.Run(gctx)
	})

	if src.Reader != nil {
		ingest := func() error {
			sep := separatorByte(cfg.InputSeparator)
			mode := store.FailFast
			if cfg.InvalidUTF8LossyOK {
				mode = store.Lossy
			}
			segInj := store.SegmentedInjector{Inner: inj, Split: splitterFor(cfg.ColumnsSplit), NumCols: numColumns(w)}
			if err := store.Ingest(gctx, src.Reader, sep, mode, &segInj, mw.NotifyItemsChanged); err != nil {
				return &IOError{Err: err}
			}
			s.Close()
			mw.NotifyItemsChanged()
			return nil
		}
		// cfg.Sync blocks here until the initial source has fully
		// drained before the Event Loop ever starts, mirroring the
		// original's `if sync { let _ = handle.await; }` wait on the
		// initial reader task. Without it, ingestion races the first
		// render, which is the default (streaming) behavior.
		if cfg.Sync {
			if err := ingest(); err != nil {
				return nil, err
			}
		} else {
			g.Go(ingest)
		}
	} else {
		for _, item := range src.Items {
			_, _ = inj.Push([]string{item}, nil)
		}
		s.Close()
		mw.NotifyItemsChanged()
	}

	program := tea.NewProgram(model, tea.WithContext(gctx), tea.WithAltScreen())
	var finalModel tea.Model
	g.Go(func() error {
		var runErr error
		finalModel, runErr = program.Run()
		cancel()
		return runErr
	})

	waitErr := g.Wait()

	for _, line := range printedLines {
		fmt.Fprintln(os.Stdout, line)
	}

	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return nil, waitErr
	}

	m, ok := finalModel.(*ui.Model)
	if !ok || m == nil {
		return nil, EventLoopClosedError{}
	}

	result := m.Result()
	if result.Err != nil {
		var becomeErr *ui.BecomeError
		if errors.As(result.Err, &becomeErr) {
			if err := interrupt.Become(shell, becomeErr.Command); err != nil {
				return nil, &ChildError{Cmd: becomeErr.Command, Err: err}
			}
			return nil, nil
		}
		return nil, result.Err
	}
	if result.Selection == nil {
		// Neither accept nor abort settled the run.
		return nil, EventLoopClosedError{}
	}

	return result.Selection, nil
}

// NonInteractiveGetMatches runs the Matcher Worker to completion
// against a fixed item slice and query, without ever starting the
// Event Loop — used for scripting/testing without a terminal.
func NonInteractiveGetMatches(ctx context.Context, items []string, query string, timeout time.Duration, sink func(match.Match) bool) ([]match.Match, error) {
	s := store.New()
	inj := store.NewInjector(s)
	for _, it := range items {
		if _, err := inj.Push([]string{it}, nil); err != nil {
			return nil, InjectorClosedError{}
		}
	}
	s.Close()

	mw := match.NewWorker(s, 0)
	mw.SetPattern(match.ParsePattern(query))
	mw.NotifyItemsChanged()

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	workerDone := make(chan error, 1)
	go func() { workerDone <- mw.Run(runCtx) }()

	deadline := time.Now().Add(timeout)
	for mw.Snapshot().Generation == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-workerDone

	ml := mw.Snapshot()
	out := make([]match.Match, 0, len(ml.Matches))
	for _, m := range ml.Matches {
		out = append(out, m)
		// sink returning true means "I've captured what I need, stop
		// here" (e.g. mm_get_match's single-result closure), not "keep
		// going" — matching the original noninteractive example, whose
		// sink unconditionally returns true to take exactly one match.
		if sink != nil && sink(m) {
			break
		}
	}
	return out, nil
}

// runReload spawns tmpl (already template-expanded by internal/ui) as
// the reload command and re-ingests its stdout through a fresh
// SegmentedInjector into s, notifying mw as each row lands so the
// matchlist updates incrementally rather than only once the reload
// command exits (spec §4.5). Per §7's propagation policy a failed
// reload is logged, not fatal to the run, so errors never reach the
// caller.
func runReload(ctx context.Context, shell interrupt.Shell, tmpl string, s *store.CandidateStore, inj store.Injector, cfg *config.Config, w *Worker, mw *match.Worker) {
	log := logging.Get(logging.CategoryExec)

	rs, err := interrupt.StartReload(ctx, shell, tmpl)
	if err != nil {
		log.Warn("reload %q failed to start: %v", tmpl, err)
		return
	}

	sep := separatorByte(cfg.InputSeparator)
	mode := store.FailFast
	if cfg.InvalidUTF8LossyOK {
		mode = store.Lossy
	}
	segInj := store.SegmentedInjector{Inner: inj, Split: splitterFor(cfg.ColumnsSplit), NumCols: numColumns(w)}

	if err := store.Ingest(ctx, rs.Stdout, sep, mode, &segInj, mw.NotifyItemsChanged); err != nil {
		log.Debug("reload %q ingest ended: %v", tmpl, err)
	}
	mw.NotifyItemsChanged()

	if err := rs.Wait(); err != nil && ctx.Err() == nil {
		log.Warn("reload %q exited with error: %v", tmpl, err)
	}
}

func parseDirection(d string) ui.Direction {
	switch d {
	case "horizontal":
		return ui.DirectionHorizontal
	case "vertical":
		return ui.DirectionVertical
	default:
		return ui.DirectionNone
	}
}

func separatorByte(s string) *byte {
	if s == "" {
		return nil
	}
	b := s[0]
	return &b
}

func splitterFor(columnsSplit string) store.Splitter {
	if columnsSplit == "" {
		return nil
	}
	if n := len(columnsSplit); n >= 2 && columnsSplit[0] == '/' && columnsSplit[n-1] == '/' {
		if re, err := regexp.Compile(columnsSplit[1 : n-1]); err == nil {
			return store.RegexSplitter(re)
		}
	}
	return store.FixedDelimiterSplitter(columnsSplit[0])
}

func numColumns(w *Worker) int {
	if w.numColumns < 1 {
		return 1
	}
	return w.numColumns
}
