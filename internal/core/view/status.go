package view

import "fmt"

// CursorText describes the cursor location, or the visible range for a
// virtualized view. It is cheap and may be recomputed on every event.
func CursorText(v View) string {
	switch v := v.(type) {
	case *Editable:
		line, col := v.LineCol()
		return fmt.Sprintf("Ln %d, Col %d", line, col)
	case *Virtualized:
		start, end := v.Visible()
		if end == 0 {
			return "Lines 0 of 0"
		}
		return fmt.Sprintf("Lines %d-%d of %d", start+1, end, v.LineCount())
	default:
		return ""
	}
}

// CountText describes the character and selection counts. It walks the whole
// buffer, so callers debounce it.
func CountText(v View) string {
	switch v := v.(type) {
	case *Editable:
		total := v.CharCount()
		if sel := v.SelectionLen(); sel > 0 {
			return fmt.Sprintf("%d of %d characters", sel, total)
		}
		return fmt.Sprintf("%d characters", total)
	case *Virtualized:
		return fmt.Sprintf("%d lines (read-only)", v.LineCount())
	default:
		return ""
	}
}
