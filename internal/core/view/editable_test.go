package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditable_TextRoundTrip(t *testing.T) {
	for _, s := range []string{"", "one", "a\nb", "trailing\n", "crlf\r\nkept"} {
		assert.Equal(t, s, NewEditable(s).Text())
	}
}

func TestEditable_CRLF(t *testing.T) {
	tests := []struct {
		name    string
		content string
		edit    func(e *Editable)
		want    string
		wantPos Position
	}{
		{
			name:    "type at end of line",
			content: "abc\r\ndef\r\n",
			edit: func(e *Editable) {
				e.Move(MoveLineEnd, false, 1)
				e.Insert("X")
			},
			want:    "abcX\r\ndef\r\n",
			wantPos: Position{Line: 0, Col: 4},
		},
		{
			name:    "split a line",
			content: "abcdef\r\n",
			edit: func(e *Editable) {
				e.SetCursor(Position{Col: 3})
				e.Insert("\n")
			},
			want:    "abc\r\ndef\r\n",
			wantPos: Position{Line: 1, Col: 0},
		},
		{
			name:    "backspace joins lines",
			content: "abc\r\ndef",
			edit: func(e *Editable) {
				e.SetCursor(Position{Line: 1})
				e.Backspace()
			},
			want:    "abcdef",
			wantPos: Position{Line: 0, Col: 3},
		},
		{
			name:    "mixed endings follow the first",
			content: "a\r\nb\nc",
			edit:    func(*Editable) {},
			want:    "a\r\nb\r\nc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditable(tt.content)
			tt.edit(e)
			assert.Equal(t, tt.want, e.Text())
			assert.Equal(t, tt.wantPos, e.Cursor())
		})
	}
}

func TestEditable_CRLFCountsIgnoreCarriageReturn(t *testing.T) {
	e := NewEditable("abc\r\ndef")
	assert.True(t, e.CRLF())
	assert.Equal(t, "abc", e.Line(0))
	assert.Equal(t, 7, e.CharCount(), "a line break counts once")

	e.Move(MoveLineEnd, false, 1)
	line, col := e.LineCol()
	assert.Equal(t, 1, line)
	assert.Equal(t, 4, col)

	e.Move(MoveDocEnd, true, 1)
	assert.Equal(t, 4, e.SelectionLen())
	assert.Equal(t, "\ndef", e.SelectedText())
}

func TestEditable_SetTextKeepsLineEnding(t *testing.T) {
	e := NewEditable("b\r\na")
	e.SetText("a\nb")
	assert.Equal(t, "a\r\nb", e.Text())
}

func TestEditable_InsertSingleLine(t *testing.T) {
	e := NewEditable("helo")
	e.SetCursor(Position{Line: 0, Col: 3})

	changed := e.Insert("l")

	assert.True(t, changed)
	assert.Equal(t, "hello", e.Text())
	assert.Equal(t, Position{Line: 0, Col: 4}, e.Cursor())
}

func TestEditable_InsertMultiLine(t *testing.T) {
	e := NewEditable("start end")
	e.SetCursor(Position{Line: 0, Col: 6})

	e.Insert("a\nb\r\nc ")

	assert.Equal(t, "start a\nb\nc end", e.Text())
	assert.Equal(t, Position{Line: 2, Col: 2}, e.Cursor())
	assert.Equal(t, 3, e.LineCount())
}

func TestEditable_InsertEmptyIsNoop(t *testing.T) {
	e := NewEditable("x")
	assert.False(t, e.Insert(""))
}

func TestEditable_InsertReplacesSelection(t *testing.T) {
	e := NewEditable("hello world")
	e.SetCursor(Position{Col: 6})
	e.Move(MoveLineEnd, true, 1)

	e.Insert("there")

	assert.Equal(t, "hello there", e.Text())
	assert.False(t, e.HasSelection())
}

func TestEditable_Backspace(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		cursor   Position
		want     string
		wantCur  Position
		wantFlag bool
	}{
		{"mid line", "abc", Position{0, 2}, "ac", Position{0, 1}, true},
		{"joins lines", "ab\ncd", Position{1, 0}, "abcd", Position{0, 2}, true},
		{"at start", "ab", Position{0, 0}, "ab", Position{0, 0}, false},
		{"multibyte", "añb", Position{0, 2}, "ab", Position{0, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditable(tt.text)
			e.SetCursor(tt.cursor)

			assert.Equal(t, tt.wantFlag, e.Backspace())
			assert.Equal(t, tt.want, e.Text())
			assert.Equal(t, tt.wantCur, e.Cursor())
		})
	}
}

func TestEditable_Delete(t *testing.T) {
	e := NewEditable("ab\ncd")
	e.SetCursor(Position{Line: 0, Col: 2})

	assert.True(t, e.Delete())
	assert.Equal(t, "abcd", e.Text())

	e.Move(MoveDocEnd, false, 1)
	assert.False(t, e.Delete())
}

func TestEditable_SelectionAcrossLines(t *testing.T) {
	e := NewEditable("abc\ndef\nghi")
	e.SetCursor(Position{Line: 0, Col: 1})
	e.Move(MoveDown, true, 1)
	e.Move(MoveDown, true, 1)

	assert.True(t, e.HasSelection())
	assert.Equal(t, "bc\ndef\ng", e.SelectedText())
	assert.Equal(t, 8, e.SelectionLen())

	e.Backspace()
	assert.Equal(t, "ahi", e.Text())
}

func TestEditable_SelectionBackwards(t *testing.T) {
	e := NewEditable("abcdef")
	e.SetCursor(Position{Col: 4})
	e.Move(MoveLeft, true, 1)
	e.Move(MoveLeft, true, 1)

	start, end, ok := e.Selection()
	assert.True(t, ok)
	assert.Equal(t, Position{Col: 2}, start)
	assert.Equal(t, Position{Col: 4}, end)
	assert.Equal(t, "cd", e.SelectedText())
}

func TestEditable_SelectAll(t *testing.T) {
	e := NewEditable("one\ntwo")

	e.SelectAll()

	assert.Equal(t, "one\ntwo", e.SelectedText())
	assert.Equal(t, e.CharCount(), e.SelectionLen())
}

func TestEditable_MoveWithoutExtendClearsSelection(t *testing.T) {
	e := NewEditable("abc")
	e.SelectAll()

	e.Move(MoveLeft, false, 1)

	assert.False(t, e.HasSelection())
	assert.Equal(t, 0, e.SelectionLen())
}

func TestEditable_VerticalKeepsGoalColumn(t *testing.T) {
	e := NewEditable("long line\nx\nanother long")
	e.SetCursor(Position{Line: 0, Col: 7})

	e.Move(MoveDown, false, 1)
	assert.Equal(t, Position{Line: 1, Col: 1}, e.Cursor())

	e.Move(MoveDown, false, 1)
	assert.Equal(t, Position{Line: 2, Col: 7}, e.Cursor())
}

func TestEditable_HorizontalWrapsLines(t *testing.T) {
	e := NewEditable("ab\ncd")
	e.SetCursor(Position{Line: 0, Col: 2})

	e.Move(MoveRight, false, 1)
	assert.Equal(t, Position{Line: 1, Col: 0}, e.Cursor())

	e.Move(MoveLeft, false, 1)
	assert.Equal(t, Position{Line: 0, Col: 2}, e.Cursor())
}

func TestEditable_OffsetAndLineCol(t *testing.T) {
	e := NewEditable("ab\ncde\nf")
	e.SetCursor(Position{Line: 1, Col: 2})

	assert.Equal(t, 5, e.Offset())
	line, col := e.LineCol()
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)
}

func TestEditable_CharCount(t *testing.T) {
	assert.Equal(t, 0, NewEditable("").CharCount())
	assert.Equal(t, 5, NewEditable("a\nbcd").CharCount())
	assert.Equal(t, 3, NewEditable("ñ\n\n").CharCount())
}

func TestEditable_SetTextClampsCursor(t *testing.T) {
	e := NewEditable("one\ntwo\nthree")
	e.SetCursor(Position{Line: 2, Col: 5})

	e.SetText("x")

	assert.Equal(t, Position{Line: 0, Col: 1}, e.Cursor())
}

func TestEditable_WindowFollowsCursor(t *testing.T) {
	e := NewEditable(linesOf(100))

	start, end := e.Window(10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)

	e.SetCursor(Position{Line: 50})
	start, end = e.Window(10)
	assert.Equal(t, 41, start)
	assert.Equal(t, 51, end)

	e.SetCursor(Position{Line: 45})
	start, _ = e.Window(10)
	assert.Equal(t, 41, start, "cursor still visible, no scroll")

	e.SetCursor(Position{Line: 2})
	start, _ = e.Window(10)
	assert.Equal(t, 2, start)
}
