// Package view implements the two presentation modes for the active document:
// a fully editable line buffer and a virtualized, read-mostly line viewport.
//
// Both variants satisfy View, so callers that only need the live text (save,
// recovery, transforms) never branch on the mode.
package view

import "strings"

// Mode identifies how the active document is presented.
type Mode int

const (
	ModeEditable Mode = iota
	ModeVirtualized
)

func (m Mode) String() string {
	switch m {
	case ModeEditable:
		return "editable"
	case ModeVirtualized:
		return "virtualized"
	default:
		return "unknown"
	}
}

const (
	// DefaultThreshold is the line count above which a document is virtualized.
	DefaultThreshold = 2000
	// DefaultOverscan is the number of extra lines materialized on each side
	// of the visible window.
	DefaultOverscan = 15
	// LineHeight is the fixed height of one line in rows. Wrapping and
	// variable-height lines are not supported.
	LineHeight = 1
)

// View is the presentation surface for the active document.
type View interface {
	Mode() Mode
	// Text flattens the live representation into a single string.
	Text() string
	LineCount() int
	Line(i int) string
}

// CountLines returns the number of lines in content. A string with no newline
// is one line; a trailing newline starts an empty final line.
func CountLines(content string) int {
	return strings.Count(content, "\n") + 1
}

// Decide picks the presentation mode for content. Only strictly more than
// threshold lines virtualizes.
func Decide(content string, threshold int) Mode {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if CountLines(content) > threshold {
		return ModeVirtualized
	}
	return ModeEditable
}

// Load builds the view for content according to Decide.
func Load(content string, threshold, overscan int) View {
	if Decide(content, threshold) == ModeVirtualized {
		return NewVirtualized(content, overscan)
	}
	return NewEditable(content)
}

const (
	lf   = "\n"
	crlf = "\r\n"
)

// splitLines splits content on LF or CRLF. Lines never keep a trailing
// carriage return. The returned line ending is CRLF when the first line
// break in content is CRLF and LF otherwise; mixed endings are rejoined with
// the first one.
func splitLines(content string) ([]string, string) {
	eol := lf
	if i := strings.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		eol = crlf
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, eol
}
