package ui

// Direction is the preview pane's placement relative to the matchlist.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionHorizontal
	DirectionVertical
)

// Layout computes pane dimensions from the terminal size and the
// configured preview ratio, the same split-ratio arithmetic as the
// teacher's SplitPaneView sizing, generalized to both split axes.
type Layout struct {
	Width, Height int
	Direction     Direction
	PreviewRatio  float64 // fraction of space given to the preview pane
	ListRatio     float64 // optional explicit weight for the list pane; 0 means "1 - PreviewRatio"
}

// effectivePreviewRatio resolves the preview pane's share of the split
// axis. When ListRatio is left at its zero value, PreviewRatio alone
// decides the split (the list takes whatever remains). When ListRatio
// is set, both ratios are treated as relative weights and normalized
// against each other, so e.g. PreviewRatio 0.5 with ListRatio 1.5
// gives the preview a quarter of the space rather than half.
func (l Layout) effectivePreviewRatio() float64 {
	if l.ListRatio <= 0 {
		return l.PreviewRatio
	}
	total := l.PreviewRatio + l.ListRatio
	if total <= 0 {
		return 0
	}
	return l.PreviewRatio / total
}

// ListSize returns the matchlist pane's (width, height).
func (l Layout) ListSize() (int, int) {
	switch l.Direction {
	case DirectionHorizontal:
		return l.Width - l.previewWidth() - 1, l.Height
	case DirectionVertical:
		return l.Width, l.Height - l.previewHeight() - 1
	default:
		return l.Width, l.Height
	}
}

// PreviewSize returns the preview pane's (width, height).
func (l Layout) PreviewSize() (int, int) {
	switch l.Direction {
	case DirectionHorizontal:
		return l.previewWidth(), l.Height
	case DirectionVertical:
		return l.Width, l.previewHeight()
	default:
		return 0, 0
	}
}

func (l Layout) previewWidth() int {
	w := int(float64(l.Width) * l.effectivePreviewRatio())
	if w < 1 {
		w = 1
	}
	return w
}

func (l Layout) previewHeight() int {
	h := int(float64(l.Height) * l.effectivePreviewRatio())
	if h < 1 {
		h = 1
	}
	return h
}
