// Package preview implements the Preview Worker: on cursor change, it
// cancels any in-flight preview, expands the preview template, spawns
// a shell command, and streams its stdout into a styled line buffer.
package preview

import (
	"bufio"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/x/ansi"

	"matchmaker/internal/interrupt"
	"matchmaker/internal/logging"
)

// Line is one rendered preview line: plain text plus the styled
// segments recovered from any SGR escape sequences in the child's
// output.
type Line struct {
	Segments []Segment
}

// Segment is a run of text sharing one SGR style.
type Segment struct {
	Text      string
	Bold      bool
	Underline bool
	Color     string // SGR 30-37 as a color name ("red"), 90-97 as that name plus "+"; empty if default
}

// Kind distinguishes a streamed preview from literal override text
// (e.g. an error message), replacing the Either<Lines, Text> the
// original expresses with a Rust enum.
type Kind int

const (
	LinesKind Kind = iota
	OverrideKind
)

// Content is the tagged union the Renderer reads.
type Content struct {
	Kind     Kind
	Lines    []Line
	Override string
}

// State is shared between the Worker (writer) and the Renderer
// (reader): an append-only line buffer plus a changed flag that
// Changed reports and clears. The Renderer reads Snapshot on every
// frame and does not consult the flag.
type State struct {
	mu      sync.Mutex
	lines   []Line
	changed atomic.Bool
}

func (s *State) reset() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
	s.changed.Store(true)
}

func (s *State) append(l Line) {
	s.mu.Lock()
	s.lines = append(s.lines, l)
	s.mu.Unlock()
	s.changed.Store(true)
}

// Snapshot returns the current lines as a Content value.
func (s *State) Snapshot() Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return Content{Kind: LinesKind, Lines: lines}
}

// Changed reports and clears the changed flag.
func (s *State) Changed() bool {
	return s.changed.Swap(false)
}

// Worker runs preview commands for the item under the cursor,
// debouncing rapid cursor movement and cancelling any in-flight
// command before starting the next.
type Worker struct {
	shell   interrupt.Shell
	debounce time.Duration

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	gen        uint64

	state State
}

func NewWorker(sh interrupt.Shell, debounce time.Duration) *Worker {
	return &Worker{shell: sh, debounce: debounce}
}

// State returns the shared preview state for the Renderer.
func (w *Worker) State() *State { return &w.state }

// Request schedules a preview for the expanded template, cancelling
// any prior in-flight run and debouncing per w.debounce. Request
// itself never blocks.
func (w *Worker) Request(parent context.Context, tmpl string, exp interrupt.Expansion) {
	w.mu.Lock()
	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.gen++
	myGen := w.gen
	ctx, cancel := context.WithCancel(parent)
	w.cancelFunc = cancel
	w.mu.Unlock()

	go w.run(ctx, myGen, tmpl, exp)
}

func (w *Worker) run(ctx context.Context, gen uint64, tmpl string, exp interrupt.Expansion) {
	log := logging.Get(logging.CategoryPreview)

	if w.debounce > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.debounce):
		}
	}

	w.mu.Lock()
	stale := gen != w.gen
	w.mu.Unlock()
	if stale {
		return
	}

	cmd := interrupt.Expand(tmpl, exp)
	w.state.reset()

	if err := w.stream(ctx, cmd); err != nil {
		log.Debug("preview command failed: %v", err)
	}
}

func (w *Worker) stream(ctx context.Context, cmd string) error {
	child := newChildCmd(w.shell, cmd)

	stdout, err := child.StdoutPipe()
	if err != nil {
		return err
	}
	if err := child.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			killGracefully(child)
			return ctx.Err()
		default:
		}
		w.state.append(parseLine(scanner.Text()))
	}

	if ctx.Err() != nil {
		killGracefully(child)
		return ctx.Err()
	}
	return child.Wait()
}

// killGracefully SIGTERMs child and escalates to SIGKILL if it has not
// exited within interrupt.GracePeriod, per spec §5's child-process
// cancellation contract.
func killGracefully(child *exec.Cmd) {
	done := make(chan struct{})
	go func() { child.Wait(); close(done) }()

	_ = child.Process.Signal(syscall.SIGTERM)
	select {
	case <-done:
		return
	case <-time.After(interrupt.GracePeriod):
		_ = child.Process.Kill()
		<-done
	}
}

// sgrPattern matches CSI SGR sequences ("\x1b[<params>m"); other CSI/OSC
// escape sequences (cursor movement, titles) are not styling and are
// stripped via ansi.Strip instead of tracked as segment state.
var sgrPattern = regexp.MustCompile("\x1b\\[([0-9;]*)m")

// parseLine recovers SGR color/intensity/underline runs from a raw
// terminal line, recognizing color + intensity + underline codes per
// the renderer's contract. Any remaining non-SGR escape sequence is
// removed with charmbracelet/x/ansi's Strip (the same width-safe
// stripping lipgloss itself uses) rather than a hand-rolled scanner.
func parseLine(raw string) Line {
	var (
		segs      []Segment
		bold      bool
		underline bool
		color     string
	)

	matches := sgrPattern.FindAllStringSubmatchIndex(raw, -1)
	pos := 0
	flush := func(end int) {
		text := ansi.Strip(raw[pos:end])
		if text == "" {
			return
		}
		segs = append(segs, Segment{Text: text, Bold: bold, Underline: underline, Color: color})
	}

	for _, m := range matches {
		start, end := m[0], m[1]
		paramStart, paramEnd := m[2], m[3]
		flush(start)
		bold, underline, color = applySGR(raw[paramStart:paramEnd], bold, underline, color)
		pos = end
	}
	flush(len(raw))

	return Line{Segments: segs}
}

func applySGR(params string, bold, underline bool, color string) (bool, bool, string) {
	if params == "" {
		return false, false, ""
	}
	for _, field := range strings.Split(params, ";") {
		p, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		switch {
		case p == 0:
			bold, underline, color = false, false, ""
		case p == 1:
			bold = true
		case p == 4:
			underline = true
		case p == 22:
			bold = false
		case p == 24:
			underline = false
		case p >= 30 && p <= 37:
			color = sgrColorNames[p-30]
		case p >= 90 && p <= 97:
			color = sgrColorNames[p-90] + "+"
		}
	}
	return bold, underline, color
}

var sgrColorNames = [8]string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}
