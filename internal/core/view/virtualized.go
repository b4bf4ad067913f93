package view

import (
	"slices"
	"strings"
)

// Virtualized presents a large document as an immutable slice of lines of
// which only a window around the viewport is ever materialized.
type Virtualized struct {
	lines    []string
	eol      string
	top      int
	height   int
	overscan int
}

// NewVirtualized splits content into lines once.
func NewVirtualized(content string, overscan int) *Virtualized {
	if overscan < 0 {
		overscan = DefaultOverscan
	}
	lines, eol := splitLines(content)
	return &Virtualized{
		lines:    lines,
		eol:      eol,
		height:   1,
		overscan: overscan,
	}
}

func (v *Virtualized) Mode() Mode { return ModeVirtualized }

func (v *Virtualized) Text() string { return strings.Join(v.lines, v.eol) }

func (v *Virtualized) LineCount() int { return len(v.lines) }

func (v *Virtualized) Line(i int) string {
	if i < 0 || i >= len(v.lines) {
		return ""
	}
	return v.lines[i]
}

// TotalHeight is the full scrollable extent in rows.
func (v *Virtualized) TotalHeight() int { return len(v.lines) * LineHeight }

// Top returns the index of the first visible line.
func (v *Virtualized) Top() int { return v.top }

// Height returns the viewport height in lines.
func (v *Virtualized) Height() int { return v.height }

// SetViewport sets the viewport height in rows.
func (v *Virtualized) SetViewport(rows int) {
	v.height = max(rows/LineHeight, 1)
	v.ScrollTo(v.top)
}

// ScrollTo moves the first visible line to top, clamped so the last page is
// always full when the document is longer than the viewport.
func (v *Virtualized) ScrollTo(top int) {
	v.top = min(max(top, 0), v.maxTop())
}

// ScrollBy scrolls by delta lines.
func (v *Virtualized) ScrollBy(delta int) { v.ScrollTo(v.top + delta) }

func (v *Virtualized) maxTop() int {
	return max(len(v.lines)-v.height, 0)
}

// Visible returns the half-open range of lines inside the viewport.
func (v *Virtualized) Visible() (start, end int) {
	return v.top, min(v.top+v.height, len(v.lines))
}

// Window returns the half-open range of lines to materialize: the visible
// range widened by the overscan on each side.
func (v *Virtualized) Window() (start, end int) {
	s, e := v.Visible()
	return max(s-v.overscan, 0), min(e+v.overscan, len(v.lines))
}

// SetText replaces the line array, as when a background transform completes.
// The scroll position and line ending are kept.
func (v *Virtualized) SetText(content string) {
	v.lines, _ = splitLines(content)
	v.ScrollTo(v.top)
}

// Promote converts the view into an Editable buffer. The Virtualized view
// should be discarded afterwards; there is no way back without reloading.
func (v *Virtualized) Promote() *Editable {
	e := newEditableLines(slices.Clone(v.lines), v.eol)
	e.SetCursor(Position{Line: v.top})
	return e
}
