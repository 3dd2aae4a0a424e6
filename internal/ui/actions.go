package ui

import "matchmaker/internal/interrupt"

// NavAction is a plain navigation/selection/submit action, bound to a
// key with no template expansion involved.
type NavAction int

const (
	NavNone NavAction = iota
	NavUp
	NavDown
	NavPageUp
	NavPageDown
	NavTop
	NavBottom
	NavToggleSelect
	NavSelectAll
	NavDeselectAll
	NavAccept
	NavAcceptNonEmpty
	NavBackspace
	NavClearQuery
	NavCursorStart
	NavCursorEnd
	NavKillLine
	NavPreviewUp
	NavPreviewDown
	NavPreviewToggle
)

// BoundAction is what a key resolves to: either a plain navigation
// action, or a side-effecting Interrupt (print/execute/become/reload/
// abort) carrying its own template. internal/ui only does the
// (key) -> action lookup and dispatch; parsing key-binding descriptors
// out of config text happens in internal/config.
type BoundAction struct {
	Nav       NavAction
	Interrupt *interrupt.Interrupt
}

// DefaultBindings mirrors fzf/skim conventions: arrow/ctrl-n/ctrl-p
// navigation, ctrl-a..ctrl-u readline-ish query editing, tab toggles
// selection, enter accepts, ctrl-c aborts(1), esc aborts(130),
// shift-up/shift-down scroll the preview pane, and alt-p toggles its
// visibility.
func DefaultBindings() map[string]BoundAction {
	return map[string]BoundAction{
		"up":        {Nav: NavUp},
		"ctrl+p":    {Nav: NavUp},
		"down":      {Nav: NavDown},
		"ctrl+n":    {Nav: NavDown},
		"pgup":      {Nav: NavPageUp},
		"pgdown":    {Nav: NavPageDown},
		"home":      {Nav: NavTop},
		"end":       {Nav: NavBottom},
		"tab":       {Nav: NavToggleSelect},
		"ctrl+t":    {Nav: NavSelectAll},
		"ctrl+g":    {Nav: NavDeselectAll},
		"enter":     {Nav: NavAccept},
		"backspace": {Nav: NavBackspace},
		"ctrl+a":    {Nav: NavCursorStart},
		"ctrl+e":    {Nav: NavCursorEnd},
		"ctrl+u":    {Nav: NavKillLine},
		"ctrl+w":    {Nav: NavClearQuery},
		"shift+up":   {Nav: NavPreviewUp},
		"shift+down": {Nav: NavPreviewDown},
		"alt+p":       {Nav: NavPreviewToggle},
		"ctrl+c":    {Interrupt: &interrupt.Interrupt{Kind: interrupt.Abort, ExitCode: 1}},
		"esc":       {Interrupt: &interrupt.Interrupt{Kind: interrupt.Abort, ExitCode: 130}},
	}
}
