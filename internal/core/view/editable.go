package view

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Position is a zero-based line and rune column inside an Editable.
type Position struct {
	Line int
	Col  int
}

// Before reports whether p sorts before o.
func (p Position) Before(o Position) bool {
	return p.Line < o.Line || (p.Line == o.Line && p.Col < o.Col)
}

// Editable is a mutable line buffer with a cursor and an optional selection.
type Editable struct {
	lines     []string
	eol       string
	cursor    Position
	anchor    Position
	selecting bool
	goalCol   int // column kept across vertical moves; -1 when unset
	top       int
}

// NewEditable creates a buffer holding content.
func NewEditable(content string) *Editable {
	return newEditableLines(splitLines(content))
}

func newEditableLines(lines []string, eol string) *Editable {
	if len(lines) == 0 {
		lines = []string{""}
	}
	return &Editable{lines: lines, eol: eol, goalCol: -1}
}

func (e *Editable) Mode() Mode { return ModeEditable }

// Text joins the lines with the line ending the content was loaded with.
func (e *Editable) Text() string { return strings.Join(e.lines, e.eol) }

// CRLF reports whether Text joins lines with CRLF.
func (e *Editable) CRLF() bool { return e.eol == crlf }

func (e *Editable) LineCount() int { return len(e.lines) }

func (e *Editable) Line(i int) string {
	if i < 0 || i >= len(e.lines) {
		return ""
	}
	return e.lines[i]
}

// SetText replaces the whole buffer. The cursor is clamped into the new text
// and any selection is dropped. The buffer keeps its line ending, so a
// transform that joins with LF does not convert a CRLF file.
func (e *Editable) SetText(content string) {
	e.lines, _ = splitLines(content)
	e.selecting = false
	e.goalCol = -1
	e.cursor = e.clamp(e.cursor)
}

// Cursor returns the current cursor position.
func (e *Editable) Cursor() Position { return e.cursor }

// SetCursor moves the cursor, clamped to the buffer, and clears the selection.
func (e *Editable) SetCursor(p Position) {
	e.cursor = e.clamp(p)
	e.selecting = false
	e.goalCol = -1
}

// Offset returns the absolute character offset of the cursor, counting a
// newline as one character.
func (e *Editable) Offset() int {
	off := 0
	for i := 0; i < e.cursor.Line; i++ {
		off += utf8.RuneCountInString(e.lines[i]) + 1
	}
	return off + e.cursor.Col
}

// LineCol returns the 1-based line and column of the cursor.
func (e *Editable) LineCol() (line, col int) {
	return e.cursor.Line + 1, e.cursor.Col + 1
}

// CharCount returns the number of characters in the buffer.
func (e *Editable) CharCount() int {
	n := len(e.lines) - 1
	for _, l := range e.lines {
		n += utf8.RuneCountInString(l)
	}
	return n
}

// HasSelection reports whether a non-empty selection exists.
func (e *Editable) HasSelection() bool {
	return e.selecting && e.anchor != e.cursor
}

// Selection returns the ordered bounds of the selection.
func (e *Editable) Selection() (start, end Position, ok bool) {
	if !e.HasSelection() {
		return e.cursor, e.cursor, false
	}
	if e.anchor.Before(e.cursor) {
		return e.anchor, e.cursor, true
	}
	return e.cursor, e.anchor, true
}

// SelectionLen returns the number of selected characters.
func (e *Editable) SelectionLen() int {
	start, end, ok := e.Selection()
	if !ok {
		return 0
	}
	if start.Line == end.Line {
		return end.Col - start.Col
	}
	n := runeLen(e.lines[start.Line]) - start.Col + 1
	for i := start.Line + 1; i < end.Line; i++ {
		n += runeLen(e.lines[i]) + 1
	}
	return n + end.Col
}

// SelectedText returns the selected text, or "" without a selection.
func (e *Editable) SelectedText() string {
	start, end, ok := e.Selection()
	if !ok {
		return ""
	}
	if start.Line == end.Line {
		r := []rune(e.lines[start.Line])
		return string(r[start.Col:end.Col])
	}

	var sb strings.Builder
	sb.WriteString(string([]rune(e.lines[start.Line])[start.Col:]))
	for i := start.Line + 1; i < end.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(e.lines[i])
	}
	sb.WriteByte('\n')
	sb.WriteString(string([]rune(e.lines[end.Line])[:end.Col]))
	return sb.String()
}

// SelectAll selects the entire buffer and puts the cursor at the end.
func (e *Editable) SelectAll() {
	e.anchor = Position{}
	last := len(e.lines) - 1
	e.cursor = Position{Line: last, Col: runeLen(e.lines[last])}
	e.selecting = true
	e.goalCol = -1
}

// ClearSelection drops the selection without moving the cursor.
func (e *Editable) ClearSelection() { e.selecting = false }

// Insert types s at the cursor, replacing any selection. CRLF pairs are
// normalized to LF. It reports whether the buffer changed.
func (e *Editable) Insert(s string) bool {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	deleted := e.deleteSelection()
	if s == "" {
		return deleted
	}

	c := e.cursor
	line := []rune(e.lines[c.Line])
	before, after := string(line[:c.Col]), string(line[c.Col:])

	parts := strings.Split(s, "\n")
	if len(parts) == 1 {
		e.lines[c.Line] = before + s + after
		e.cursor.Col += utf8.RuneCountInString(s)
		e.goalCol = -1
		return true
	}

	last := len(parts) - 1
	repl := make([]string, len(parts))
	repl[0] = before + parts[0]
	copy(repl[1:last], parts[1:last])
	repl[last] = parts[last] + after

	e.lines = slices.Replace(e.lines, c.Line, c.Line+1, repl...)
	e.cursor = Position{Line: c.Line + last, Col: utf8.RuneCountInString(parts[last])}
	e.goalCol = -1
	return true
}

// Backspace deletes the selection or the character before the cursor.
func (e *Editable) Backspace() bool {
	if e.deleteSelection() {
		return true
	}
	e.goalCol = -1

	c := e.cursor
	switch {
	case c.Col > 0:
		line := []rune(e.lines[c.Line])
		e.lines[c.Line] = string(line[:c.Col-1]) + string(line[c.Col:])
		e.cursor.Col--
		return true
	case c.Line > 0:
		prevLen := runeLen(e.lines[c.Line-1])
		e.lines[c.Line-1] += e.lines[c.Line]
		e.lines = slices.Delete(e.lines, c.Line, c.Line+1)
		e.cursor = Position{Line: c.Line - 1, Col: prevLen}
		return true
	}
	return false
}

// Delete deletes the selection or the character under the cursor.
func (e *Editable) Delete() bool {
	if e.deleteSelection() {
		return true
	}
	e.goalCol = -1

	c := e.cursor
	line := []rune(e.lines[c.Line])
	switch {
	case c.Col < len(line):
		e.lines[c.Line] = string(line[:c.Col]) + string(line[c.Col+1:])
		return true
	case c.Line < len(e.lines)-1:
		e.lines[c.Line] += e.lines[c.Line+1]
		e.lines = slices.Delete(e.lines, c.Line+1, c.Line+2)
		return true
	}
	return false
}

func (e *Editable) deleteSelection() bool {
	start, end, ok := e.Selection()
	e.selecting = false
	if !ok {
		return false
	}

	head := string([]rune(e.lines[start.Line])[:start.Col])
	tail := string([]rune(e.lines[end.Line])[end.Col:])
	e.lines = slices.Replace(e.lines, start.Line, end.Line+1, head+tail)
	e.cursor = start
	e.goalCol = -1
	return true
}

// Motion identifies a cursor movement.
type Motion int

const (
	MoveLeft Motion = iota
	MoveRight
	MoveUp
	MoveDown
	MoveLineStart
	MoveLineEnd
	MovePageUp
	MovePageDown
	MoveDocStart
	MoveDocEnd
)

// Move applies a cursor motion. page is the number of lines a page motion
// covers. With extend set, the selection grows from the current anchor;
// otherwise any selection is dropped.
func (e *Editable) Move(m Motion, extend bool, page int) {
	if extend && !e.selecting {
		e.anchor = e.cursor
		e.selecting = true
	}
	if !extend {
		e.selecting = false
	}
	page = max(page, 1)

	c := &e.cursor
	switch m {
	case MoveLeft:
		e.goalCol = -1
		if c.Col > 0 {
			c.Col--
		} else if c.Line > 0 {
			c.Line--
			c.Col = runeLen(e.lines[c.Line])
		}
	case MoveRight:
		e.goalCol = -1
		if c.Col < runeLen(e.lines[c.Line]) {
			c.Col++
		} else if c.Line < len(e.lines)-1 {
			c.Line++
			c.Col = 0
		}
	case MoveUp:
		e.vertical(-1)
	case MoveDown:
		e.vertical(1)
	case MovePageUp:
		e.vertical(-page)
	case MovePageDown:
		e.vertical(page)
	case MoveLineStart:
		e.goalCol = -1
		c.Col = 0
	case MoveLineEnd:
		e.goalCol = -1
		c.Col = runeLen(e.lines[c.Line])
	case MoveDocStart:
		e.goalCol = -1
		*c = Position{}
	case MoveDocEnd:
		e.goalCol = -1
		last := len(e.lines) - 1
		*c = Position{Line: last, Col: runeLen(e.lines[last])}
	}
}

func (e *Editable) vertical(delta int) {
	if e.goalCol < 0 {
		e.goalCol = e.cursor.Col
	}
	line := min(max(e.cursor.Line+delta, 0), len(e.lines)-1)
	e.cursor = Position{Line: line, Col: min(e.goalCol, runeLen(e.lines[line]))}
}

// Window returns the half-open range of lines to draw in a viewport of
// height rows, scrolling just enough to keep the cursor visible.
func (e *Editable) Window(height int) (start, end int) {
	height = max(height, 1)
	if e.cursor.Line < e.top {
		e.top = e.cursor.Line
	}
	if e.cursor.Line >= e.top+height {
		e.top = e.cursor.Line - height + 1
	}
	e.top = min(max(e.top, 0), max(len(e.lines)-height, 0))
	return e.top, min(e.top+height, len(e.lines))
}

func (e *Editable) clamp(p Position) Position {
	p.Line = min(max(p.Line, 0), len(e.lines)-1)
	p.Col = min(max(p.Col, 0), runeLen(e.lines[p.Line]))
	return p
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
