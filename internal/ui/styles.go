// Package ui implements the Event Loop and Renderer as a bubbletea
// tea.Model, with styled list/preview rendering.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a color palette, auto-detected from the terminal's
// background by DetectTheme; no config option overrides it.
type Theme struct {
	Foreground lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Selected   lipgloss.Color
	IsDark     bool
}

var (
	darkForeground  = lipgloss.Color("#f2f2f2")
	darkAccent      = lipgloss.Color("#8BC34A")
	darkMuted       = lipgloss.Color("#6b7385")
	darkBorder      = lipgloss.Color("#2a3850")
	darkSelected    = lipgloss.Color("#1e2a3d")
	lightForeground = lipgloss.Color("#101F38")
	lightAccent     = lipgloss.Color("#2e7d32")
	lightMuted      = lipgloss.Color("#6b7385")
	lightBorder     = lipgloss.Color("#dce0e5")
	lightSelected   = lipgloss.Color("#e1e4e8")
)

func DarkTheme() Theme {
	return Theme{Foreground: darkForeground, Accent: darkAccent, Muted: darkMuted, Border: darkBorder, Selected: darkSelected, IsDark: true}
}

func LightTheme() Theme {
	return Theme{Foreground: lightForeground, Accent: lightAccent, Muted: lightMuted, Border: lightBorder, Selected: lightSelected, IsDark: false}
}

// DetectTheme inspects $COLORFGBG the way the teacher's terminal
// background heuristic does, defaulting to dark (most terminal
// emulators picker tools run in default to a dark background).
func DetectTheme() Theme {
	colorTerm := os.Getenv("COLORFGBG")
	if colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if bgIdx >= 7 && bgIdx != 8 {
					return LightTheme()
				}
			}
		}
	}
	return DarkTheme()
}

// Styles holds the pre-built lipgloss styles used by the matchlist
// table and chrome, so View() never rebuilds them per frame.
type Styles struct {
	Theme Theme

	Prompt       lipgloss.Style
	Query        lipgloss.Style
	Cursor       lipgloss.Style
	Selected     lipgloss.Style
	Highlight    lipgloss.Style
	Muted        lipgloss.Style
	Border       lipgloss.Style
	FocusBorder  lipgloss.Style
	StatusLine   lipgloss.Style
	PreviewTitle lipgloss.Style
}

func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Prompt: lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		Query:  lipgloss.NewStyle().Foreground(theme.Foreground),

		Cursor: lipgloss.NewStyle().Reverse(true),

		Selected: lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),

		Highlight: lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),

		Muted: lipgloss.NewStyle().Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border),

		FocusBorder: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		StatusLine: lipgloss.NewStyle().Foreground(theme.Muted),

		PreviewTitle: lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
	}
}
