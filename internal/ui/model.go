package ui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"matchmaker/internal/interrupt"
	"matchmaker/internal/match"
	"matchmaker/internal/picker"
	"matchmaker/internal/preview"
	"matchmaker/internal/store"
)

// previewScrollStep is how many lines shift-up/shift-down move the
// preview pane's scroll offset per keypress.
const previewScrollStep = 3

// Result is what the Event Loop settles on when it terminates.
type Result struct {
	Selection []string // formatted per output_template, one per accepted item
	Err       error    // *AbortError, *BecomeError, or nil on a plain accept
}

// Hooks are the facade-provided side-effect handlers for interrupts
// that reach outside the Event Loop's own state. Execute is handled
// inline via tea.ExecProcess since it needs the Program's own
// terminal-suspend/resume machinery; Become and Reload hand off to the
// facade because they outlive (or replace) this Program run.
type Hooks struct {
	Print  func(text string)
	Reload func(tmpl string)
}

// Deps bundles the facade-owned collaborators a Model needs.
type Deps struct {
	Store           *store.CandidateStore
	Worker          *match.Worker
	Picker          *picker.State
	Preview         *preview.Worker
	Bindings        map[string]BoundAction
	Shell           interrupt.Shell
	Theme           Theme
	Layout          Layout
	TickRate        time.Duration
	OutputTemplate  string
	OutputSeparator string
	MatchColumn     int
	PreviewCommand  string
	Hooks           Hooks
	RootCtx         context.Context
}

// Model is the Event Loop (Update) and Renderer (View), riding
// bubbletea's own scheduler rather than reimplementing one. Generalizes
// the Init/Update/View + message-taxonomy shape of the teacher's chat
// model to Matchmaker's message set.
type Model struct {
	store    *store.CandidateStore
	worker   *match.Worker
	picker   *picker.State
	previewW *preview.Worker
	bindings map[string]BoundAction
	shell    interrupt.Shell
	styles   Styles
	layout   Layout
	tickRate time.Duration

	outputTemplate  string
	outputSeparator string
	matchColumn     int
	previewCommand  string

	query textinput.Model

	previewScroll int
	previewHidden bool

	lastMatchList *match.MatchList
	lastGen       uint64

	hooks Hooks

	quitting bool
	result   Result

	rootCtx context.Context
}

func NewModel(d Deps) *Model {
	bindings := d.Bindings
	if bindings == nil {
		bindings = DefaultBindings()
	}
	rootCtx := d.RootCtx
	if rootCtx == nil {
		rootCtx = context.Background()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	styles := NewStyles(d.Theme)
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.Query
	ti.Cursor.TextStyle = styles.Query

	return &Model{
		store:           d.Store,
		worker:          d.Worker,
		picker:          d.Picker,
		previewW:        d.Preview,
		bindings:        bindings,
		shell:           d.Shell,
		styles:          styles,
		layout:          d.Layout,
		tickRate:        d.TickRate,
		outputTemplate:  d.OutputTemplate,
		outputSeparator: d.OutputSeparator,
		matchColumn:     d.MatchColumn,
		previewCommand:  d.PreviewCommand,
		query:           ti,
		hooks:           d.Hooks,
		rootCtx:         rootCtx,
		lastMatchList:   &match.MatchList{},
	}
}

// Result returns the settled outcome once the program has exited.
func (m *Model) Result() Result { return m.result }

type tickMsg time.Time

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), textinput.Blink)
}

func (m *Model) tickCmd() tea.Cmd {
	rate := m.tickRate
	if rate <= 0 {
		rate = time.Second / 60
	}
	return tea.Tick(rate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Width, m.layout.Height = msg.Width, msg.Height
		m.picker.SetViewportHeight(uint32(m.listHeight()))
		if w := msg.Width - len("> "); w > 0 {
			m.query.Width = w
		}
		return m, nil

	case tickMsg:
		m.resync()
		return m, m.tickCmd()

	case execFinishedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case cursor.BlinkMsg:
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return m, cmd
	}
	return m, nil
}

// resync pulls the latest MatchList from the Matcher Worker, if its
// generation has advanced, and reconciles Picker State against it.
func (m *Model) resync() {
	ml := m.worker.Snapshot()
	if ml.Generation == m.lastGen {
		return
	}
	prevItem, hadItem := m.picker.CurrentItem(m.lastMatchList)
	m.picker.Resync(prevItem, hadItem, ml)
	m.lastMatchList = ml
	m.lastGen = ml.Generation
	m.requestPreview()
}

// handleKey dispatches bound keys through the Nav/Interrupt taxonomy;
// anything else (printable runes, left/right cursor movement, and the
// rest of bubbles/textinput's own edit bindings) is handed to the
// query's textinput.Model, the same component the teacher's chat model
// uses for its prompt line.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if action, ok := m.bindings[msg.String()]; ok {
		return m.dispatch(action)
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	m.syncQuery()
	m.requestPreview()
	return m, cmd
}

func (m *Model) dispatch(action BoundAction) (tea.Model, tea.Cmd) {
	if action.Interrupt != nil {
		return m.dispatchInterrupt(*action.Interrupt)
	}
	return m.dispatchNav(action.Nav)
}

func (m *Model) dispatchNav(nav NavAction) (tea.Model, tea.Cmd) {
	switch nav {
	case NavUp:
		m.picker.MoveCursor(-1)
		m.requestPreview()
	case NavDown:
		m.picker.MoveCursor(1)
		m.requestPreview()
	case NavPageUp:
		m.picker.MoveCursor(-int32(m.listHeight()))
		m.requestPreview()
	case NavPageDown:
		m.picker.MoveCursor(int32(m.listHeight()))
		m.requestPreview()
	case NavTop:
		m.picker.SetCursor(0)
		m.requestPreview()
	case NavBottom:
		m.picker.SetCursor(^uint32(0))
		m.requestPreview()
	case NavToggleSelect:
		if idx, ok := m.picker.CurrentItem(m.lastMatchList); ok {
			m.picker.ToggleSelect(idx)
		}
	case NavSelectAll:
		m.picker.SelectAll(m.lastMatchList)
	case NavDeselectAll:
		m.picker.ClearSelect()
	case NavAccept:
		return m.accept(false)
	case NavAcceptNonEmpty:
		return m.accept(true)
	case NavBackspace:
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		m.syncQuery()
		m.requestPreview()
		return m, cmd
	case NavClearQuery:
		m.query.SetValue("")
		m.syncQuery()
		m.requestPreview()
	case NavCursorStart:
		m.query.CursorStart()
	case NavCursorEnd:
		m.query.CursorEnd()
	case NavKillLine:
		pos := m.query.Position()
		runes := []rune(m.query.Value())
		if pos > len(runes) {
			pos = len(runes)
		}
		m.query.SetValue(string(runes[:pos]))
		m.query.SetCursor(pos)
		m.syncQuery()
		m.requestPreview()
	case NavPreviewUp:
		m.previewScroll -= previewScrollStep
		if m.previewScroll < 0 {
			m.previewScroll = 0
		}
	case NavPreviewDown:
		m.previewScroll += previewScrollStep
	case NavPreviewToggle:
		m.previewHidden = !m.previewHidden
	}
	return m, nil
}

// syncQuery propagates the textinput's current value to the Picker
// State and Matcher Worker, matching the teacher's pattern of treating
// a bubbles component's Value() as the single source of truth rather
// than shadowing it in model state.
func (m *Model) syncQuery() {
	m.picker.SetQuery(m.query.Value())
	m.worker.SetPattern(match.ParsePattern(m.query.Value()))
}

func (m *Model) dispatchInterrupt(it interrupt.Interrupt) (tea.Model, tea.Cmd) {
	switch it.Kind {
	case interrupt.Abort:
		m.quitting = true
		m.result = Result{Err: &AbortError{Code: it.ExitCode}}
		return m, tea.Quit

	case interrupt.Print:
		if m.hooks.Print != nil {
			m.hooks.Print(interrupt.ExpandRaw(it.Template, m.expansion()))
		}
		return m, nil

	case interrupt.Execute:
		return m, m.execProcess(it.Template)

	case interrupt.Become:
		m.quitting = true
		m.result = Result{Err: &BecomeError{Command: interrupt.Expand(it.Template, m.expansion())}}
		return m, tea.Quit

	case interrupt.Reload:
		if m.hooks.Reload != nil {
			m.hooks.Reload(interrupt.Expand(it.Template, m.expansion()))
		}
		return m, nil
	}
	return m, nil
}

type execFinishedMsg struct{ err error }

func (m *Model) execProcess(tmpl string) tea.Cmd {
	expanded := interrupt.Expand(tmpl, m.expansion())
	c := exec.Command(m.shell.Path, m.shell.Arg, expanded)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return execFinishedMsg{err: err}
	})
}

func (m *Model) accept(requireNonEmpty bool) (tea.Model, tea.Cmd) {
	sel := m.picker.Selection(m.lastMatchList)
	if requireNonEmpty && len(sel) == 0 {
		return m, nil
	}
	m.quitting = true
	m.result = Result{Selection: m.formatSelection(sel)}
	return m, tea.Quit
}

func (m *Model) formatSelection(itemIndices []uint32) []string {
	out := make([]string, 0, len(itemIndices))
	for _, idx := range itemIndices {
		item := m.store.Get(idx)
		exp := interrupt.Expansion{
			Identity: identityOf(item, m.matchColumn),
			Columns:  item.Columns,
			Query:    m.query.Value(),
		}
		out = append(out, interrupt.ExpandRaw(m.outputTemplate, exp))
	}
	return out
}

func identityOf(item store.Item, matchColumn int) string {
	if matchColumn >= 0 && matchColumn < len(item.Columns) {
		return item.Columns[matchColumn]
	}
	if len(item.Columns) > 0 {
		return item.Columns[0]
	}
	return ""
}

// expansion builds the {}/{1}..{N}/{+}/{q} context for whatever item is
// currently under the cursor, for print/execute/become/reload templates.
func (m *Model) expansion() interrupt.Expansion {
	exp := interrupt.Expansion{Query: m.query.Value()}
	if idx, ok := m.picker.CurrentItem(m.lastMatchList); ok {
		item := m.store.Get(idx)
		exp.Identity = identityOf(item, m.matchColumn)
		exp.Columns = item.Columns
	}

	sel := m.picker.Selection(m.lastMatchList)
	parts := make([]string, 0, len(sel))
	for _, idx := range sel {
		parts = append(parts, identityOf(m.store.Get(idx), m.matchColumn))
	}
	exp.Selection = strings.Join(parts, m.outputSeparator)
	return exp
}

func (m *Model) requestPreview() {
	if m.previewW == nil || m.previewCommand == "" {
		return
	}
	idx, ok := m.picker.CurrentItem(m.lastMatchList)
	if !ok {
		return
	}
	m.previewScroll = 0
	item := m.store.Get(idx)
	exp := interrupt.Expansion{
		Identity: identityOf(item, m.matchColumn),
		Columns:  item.Columns,
		Query:    m.query.Value(),
	}
	m.previewW.Request(m.rootCtx, m.previewCommand, exp)
}

func (m *Model) listHeight() int {
	_, h := m.layout.ListSize()
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	listW, listH := m.layout.ListSize()
	snap := m.picker.Snapshot()

	rows := BuildRows(m.lastMatchList, func(idx uint32) string {
		return identityOf(m.store.Get(idx), m.matchColumn)
	}, snap.Cursor, snap.ScrollTop, uint32(listH), selectedSet(snap.MultiSelect))

	list := RenderRows(rows, listW, m.styles)
	prompt := m.query.View()
	status := m.styles.StatusLine.Render(fmt.Sprintf("%d/%d", len(m.lastMatchList.Matches), m.store.Count()))

	body := prompt + "\n" + list + "\n" + status

	if m.layout.Direction == DirectionNone || m.previewW == nil || m.previewCommand == "" || m.previewHidden {
		return body
	}

	previewW, previewH := m.layout.PreviewSize()
	previewText := renderPreview(m.previewW.State().Snapshot(), previewW, previewH, m.previewScroll, m.styles)

	if m.layout.Direction == DirectionVertical {
		return lipgloss.JoinVertical(lipgloss.Left, body, previewText)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, body, previewText)
}

// renderPreview draws the preview pane, starting scroll lines into
// c.Lines rather than at the top — how shift-up/shift-down (NavPreviewUp/
// NavPreviewDown) let a user page through output taller than the pane.
func renderPreview(c preview.Content, width, height, scroll int, styles Styles) string {
	if c.Kind == preview.OverrideKind {
		return styles.Muted.Width(width).Render(c.Override)
	}
	lines := c.Lines
	if scroll > 0 {
		if scroll > len(lines) {
			scroll = len(lines)
		}
		lines = lines[scroll:]
	}
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, seg := range line.Segments {
			style := lipgloss.NewStyle().Bold(seg.Bold).Underline(seg.Underline)
			if seg.Color != "" {
				// Segment colors are SGR names ("red", "red+" for bright);
				// lipgloss takes them as ANSI palette indices 0-15.
				name := strings.TrimSuffix(seg.Color, "+")
				names := []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}
				for idx, n := range names {
					if n == name {
						if name != seg.Color {
							idx += 8
						}
						style = style.Foreground(lipgloss.Color(fmt.Sprint(idx)))
					}
				}
			}
			b.WriteString(style.Render(seg.Text))
		}
	}
	return styles.Border.Width(width).Height(height).Render(b.String())
}

func selectedSet(indices []uint32) map[uint32]bool {
	out := make(map[uint32]bool, len(indices))
	for _, i := range indices {
		out[i] = true
	}
	return out
}

// AbortError signals a user-initiated termination; its Code is
// propagated to the caller as the process exit code.
type AbortError struct{ Code int }

func (e *AbortError) Error() string { return "matchmaker: aborted" }

// BecomeError is not really an error: it's how the Event Loop tells
// the facade "replace this process with Command" once the terminal has
// been released by the Program.
type BecomeError struct{ Command string }

func (e *BecomeError) Error() string { return "matchmaker: become " + e.Command }
