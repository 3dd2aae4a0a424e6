package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"matchmaker/internal/match"
)

// Row is one renderable matchlist line: the already-formatted display
// text, the item's highlight positions (rune offsets into that text),
// and whether it is the cursor row / in the multi-selection.
type Row struct {
	Text       string
	Positions  []uint32
	IsCursor   bool
	IsSelected bool
}

const (
	selectedGutter = "»"
	plainGutter    = " "
)

// RenderRows draws the matchlist, one row per line, truncated to
// width. Matched positions render bold+accent, the cursor row
// reverse-video, and selected rows carry a gutter marker glyph —
// adapted from the teacher's column-aligned row rendering, extended
// with match highlighting and selection state.
func RenderRows(rows []Row, width int, styles Styles) string {
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderRow(r, width, styles))
	}
	return b.String()
}

func renderRow(r Row, width int, styles Styles) string {
	gutter := plainGutter
	if r.IsSelected {
		gutter = selectedGutter
	}

	text := truncateToWidth(r.Text, width-2)
	rendered := applyHighlights(text, r.Positions, styles.Highlight)

	line := gutter + " " + rendered
	if r.IsCursor {
		return styles.Cursor.Width(width).Render(gutter + " " + text)
	}
	if r.IsSelected {
		return styles.Selected.Render(line)
	}
	return line
}

// applyHighlights wraps runes at the given offsets in the highlight
// style, leaving the rest of the text untouched.
func applyHighlights(text string, positions []uint32, style lipgloss.Style) string {
	if len(positions) == 0 {
		return text
	}
	marked := make(map[uint32]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}

	var b strings.Builder
	i := uint32(0)
	for _, r := range text {
		s := string(r)
		if marked[i] {
			b.WriteString(style.Render(s))
		} else {
			b.WriteString(s)
		}
		i++
	}
	return b.String()
}

func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

// BuildRows projects a MatchList + PickerState snapshot into
// renderable Rows for the visible window [scrollTop, scrollTop+height).
func BuildRows(ml *match.MatchList, identity func(itemIndex uint32) string, cursor uint32, scrollTop uint32, height uint32, selected map[uint32]bool) []Row {
	end := scrollTop + height
	if end > uint32(len(ml.Matches)) {
		end = uint32(len(ml.Matches))
	}
	if scrollTop > end {
		return nil
	}

	rows := make([]Row, 0, end-scrollTop)
	for pos := scrollTop; pos < end; pos++ {
		m := ml.Matches[pos]
		rows = append(rows, Row{
			Text:       identity(m.ItemIndex),
			Positions:  m.Positions,
			IsCursor:   pos == cursor,
			IsSelected: selected[m.ItemIndex],
		})
	}
	return rows
}
