package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchmaker/internal/interrupt"
	"matchmaker/internal/match"
	"matchmaker/internal/picker"
	"matchmaker/internal/preview"
	"matchmaker/internal/store"
)

func newTestModel(t *testing.T, items []string) (*Model, *store.CandidateStore, *match.Worker) {
	t.Helper()
	s := store.New()
	inj := store.NewInjector(s)
	for _, it := range items {
		_, err := inj.Push([]string{it}, nil)
		require.NoError(t, err)
	}
	s.Close()

	mw := match.NewWorker(s, 0)
	mw.SetPattern(match.ParsePattern(""))
	mw.NotifyItemsChanged()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = mw.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for mw.Snapshot().Generation == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	m := NewModel(Deps{
		Store:          s,
		Worker:         mw,
		Picker:         picker.New(10),
		Preview:        preview.NewWorker(interrupt.Shell{Path: "/bin/sh", Arg: "-c"}, 0),
		Bindings:       DefaultBindings(),
		Layout:         Layout{Width: 80, Height: 24, Direction: DirectionNone},
		TickRate:       time.Hour,
		OutputTemplate: "{}",
		RootCtx:        ctx,
	})
	m.resync()
	return m, s, mw
}

func TestModelInsertsRunesIntoQuery(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"alpha", "beta"})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("al")})
	mm := updated.(*Model)
	assert.Equal(t, "al", mm.query.Value())
	assert.Equal(t, 2, mm.query.Position())
}

func TestModelBackspaceRemovesLastRune(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"alpha"})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	mm := updated.(*Model)
	updated, _ = mm.dispatchNav(NavBackspace)
	mm = updated.(*Model)
	assert.Equal(t, "ab", mm.query.Value())
	assert.Equal(t, 2, mm.query.Position())
}

func TestModelCursorStartEndKillLine(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"alpha"})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	mm := updated.(*Model)

	updated, _ = mm.dispatchNav(NavCursorStart)
	mm = updated.(*Model)
	assert.Equal(t, 0, mm.query.Position())

	updated, _ = mm.dispatchNav(NavCursorEnd)
	mm = updated.(*Model)
	assert.Equal(t, 5, mm.query.Position())

	mm.query.SetCursor(2)
	updated, _ = mm.dispatchNav(NavKillLine)
	mm = updated.(*Model)
	assert.Equal(t, "he", mm.query.Value())
}

func TestModelAcceptReturnsFormattedSelection(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"alpha", "beta", "gamma"})
	updated, cmd := m.dispatchNav(NavAccept)
	mm := updated.(*Model)
	require.NotNil(t, cmd)
	assert.True(t, mm.quitting)
	require.Len(t, mm.result.Selection, 1)
	assert.Equal(t, "alpha", mm.result.Selection[0])
}

func TestModelAcceptNonEmptyNoSelectionDoesNotQuit(t *testing.T) {
	s := store.New()
	s.Close()
	mw := match.NewWorker(s, 0)
	mw.NotifyItemsChanged()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = mw.Run(ctx) }()

	m := NewModel(Deps{
		Store:    s,
		Worker:   mw,
		Picker:   picker.New(10),
		Bindings: DefaultBindings(),
		Layout:   Layout{Width: 80, Height: 24},
		RootCtx:  ctx,
	})

	updated, _ := m.dispatchNav(NavAcceptNonEmpty)
	mm := updated.(*Model)
	assert.False(t, mm.quitting)
}

func TestModelAbortInterruptSetsResultError(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"alpha"})
	updated, cmd := m.dispatchInterrupt(interrupt.Interrupt{Kind: interrupt.Abort, ExitCode: 130})
	mm := updated.(*Model)
	require.NotNil(t, cmd)
	require.Error(t, mm.result.Err)
	var abortErr *AbortError
	require.ErrorAs(t, mm.result.Err, &abortErr)
	assert.Equal(t, 130, abortErr.Code)
}

func TestModelPrintInterruptInvokesHook(t *testing.T) {
	var printed []string
	m, _, _ := newTestModel(t, []string{"alpha"})
	m.hooks.Print = func(text string) { printed = append(printed, text) }

	_, _ = m.dispatchInterrupt(interrupt.Interrupt{Kind: interrupt.Print, Template: "{}"})
	require.Len(t, printed, 1)
	assert.Equal(t, "alpha", printed[0])
}

func TestModelPreviewToggleHidesPane(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"alpha"})
	m.layout.Direction = DirectionHorizontal
	m.previewCommand = "cat {}"
	shown := m.View()

	updated, _ := m.dispatchNav(NavPreviewToggle)
	mm := updated.(*Model)
	assert.True(t, mm.previewHidden)
	assert.NotEqual(t, shown, mm.View())

	updated, _ = mm.dispatchNav(NavPreviewToggle)
	mm = updated.(*Model)
	assert.False(t, mm.previewHidden)
	assert.Equal(t, shown, mm.View())
}

func TestModelPreviewScrollClampsAtZero(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"alpha"})
	updated, _ := m.dispatchNav(NavPreviewUp)
	mm := updated.(*Model)
	assert.Equal(t, 0, mm.previewScroll)

	updated, _ = mm.dispatchNav(NavPreviewDown)
	mm = updated.(*Model)
	assert.Equal(t, previewScrollStep, mm.previewScroll)
}

func TestModelToggleSelectAndAcceptReturnsMultiSelection(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"alpha", "beta", "gamma"})
	m.dispatchNav(NavToggleSelect)
	m.dispatchNav(NavDown)
	m.dispatchNav(NavToggleSelect)

	updated, _ := m.dispatchNav(NavAccept)
	mm := updated.(*Model)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, mm.result.Selection)
}
