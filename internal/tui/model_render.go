package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/colonyops/quill/internal/core/styles"
	"github.com/colonyops/quill/internal/core/view"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}

	if m.state == stateConfirming {
		return m.modal.View(m.width, m.height)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabBar(),
		m.renderBody(),
		m.renderStatusBar(),
		m.renderFooter(),
	)
}

func (m Model) renderTabBar() string {
	tabs := m.sess.Tabs()
	parts := make([]string, 0, len(tabs))
	for i, t := range tabs {
		label := t.Label
		if i < 9 {
			label = strconv.Itoa(i+1) + " " + label
		}
		if t.Dirty {
			label += " " + styles.IconDirty
		}
		style := styles.TabStyle
		if t.Active {
			style = styles.TabActiveStyle
		}
		parts = append(parts, style.Render(label))
	}
	bar := ansi.Truncate(strings.Join(parts, " "), m.width, "…")
	return styles.TabBarStyle.Width(m.width).Render(bar)
}

func (m Model) renderBody() string {
	rows := m.bodyRows()
	var lines []string
	switch v := m.sess.View().(type) {
	case *view.Editable:
		lines = m.renderEditable(v, rows)
	case *view.Virtualized:
		lines = m.renderVirtualized(v)
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func gutterWidth(lineCount int) int {
	return len(strconv.Itoa(lineCount))
}

func (m Model) renderEditable(e *view.Editable, rows int) []string {
	start, end := e.Window(rows)
	gw := gutterWidth(e.LineCount())
	textWidth := max(m.width-gw-1, 1)

	cursor := e.Cursor()
	selStart, selEnd, selecting := e.Selection()

	// Scroll horizontally just enough to keep the cursor column on screen.
	cursorCol := displayWidth([]rune(e.Line(cursor.Line))[:cursor.Col], m.tabWidth())
	left := max(cursorCol-textWidth+1, 0)

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		runes := []rune(e.Line(i))
		lo, hi := -1, -1
		if selecting && i >= selStart.Line && i <= selEnd.Line {
			lo, hi = 0, len(runes)+1 // +1 marks the selected line break
			if i == selStart.Line {
				lo = selStart.Col
			}
			if i == selEnd.Line {
				hi = selEnd.Col
			}
		}
		cur := -1
		if i == cursor.Line {
			cur = cursor.Col
		}

		gutter := styles.GutterStyle.Render(fmt.Sprintf("%*d", gw, i+1))
		out = append(out, gutter+m.renderLine(runes, left, textWidth, lo, hi, cur))
	}
	return out
}

// renderLine draws runes clipped to the columns [left, left+width). lo and hi
// bound the selected runes; cur is the cursor column or -1.
func (m Model) renderLine(runes []rune, left, width, lo, hi, cur int) string {
	var sb strings.Builder
	col := 0
	tw := m.tabWidth()

	emit := func(s string, idx int) {
		switch {
		case idx == cur:
			sb.WriteString(styles.CursorStyle.Render(s))
		case idx >= lo && idx < hi:
			sb.WriteString(styles.SelectionStyle.Render(s))
		default:
			sb.WriteString(styles.TextStyle.Render(s))
		}
	}

	for idx := 0; idx <= len(runes); idx++ {
		cell := " "
		w := 1
		if idx < len(runes) {
			cell, w = expand(runes[idx], tw)
		} else if idx != cur && !(idx >= lo && idx < hi) {
			break
		}
		if col+w <= left {
			col += w
			continue
		}
		if col-left+w > width {
			break
		}
		emit(cell, idx)
		col += w
	}
	return sb.String()
}

func (m Model) renderVirtualized(v *view.Virtualized) []string {
	// Only the window around the viewport is materialized.
	wStart, wEnd := v.Window()
	window := make([]string, 0, wEnd-wStart)
	for i := wStart; i < wEnd; i++ {
		window = append(window, v.Line(i))
	}

	start, end := v.Visible()
	gw := gutterWidth(v.LineCount())
	textWidth := max(m.width-gw-1, 1)
	tw := m.tabWidth()

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := printable(window[i-wStart], tw)
		line = runewidth.Truncate(line, textWidth, "…")
		gutter := styles.GutterStyle.Render(fmt.Sprintf("%*d", gw, i+1))
		out = append(out, gutter+styles.ReadOnlyStyle.Render(line))
	}
	return out
}

func (m Model) renderStatusBar() string {
	var left string
	if level, msg, ok := m.flash.Current(); ok {
		left = flashStyle(level).Render(flashIcon(level) + " " + msg)
	} else if doc := m.sess.Active(); doc != nil {
		name := doc.Label()
		if doc.Path != "" {
			name = doc.Path
		}
		left = styles.StatusMetaStyle.Render(name)
	}

	v := m.sess.View()
	right := []string{}
	if s := m.spinnerView(); s != "" {
		right = append(right, s)
	}
	right = append(right, view.CursorText(v), m.counts, m.sess.Mode().String())
	rightText := styles.StatusMetaStyle.Render(strings.Join(right, "  "))

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(rightText), 0)
	bar := left + styles.StatusBarStyle.Render(strings.Repeat(" ", gap)) + rightText
	return ansi.Truncate(bar, m.width, "")
}

func (m Model) renderFooter() string {
	switch {
	case m.state == statePrompting:
		return m.prompt.View()
	case m.loading != nil:
		return m.renderLoading()
	}
	return m.help.View(m.keys)
}

func (m Model) renderLoading() string {
	l := m.loading
	label := fmt.Sprintf("Opening %s ", shortPath(l.path, m.width/3))
	if !l.known {
		return label + humanize.IBytes(uint64(l.read)) + "  (esc to cancel)"
	}
	return label + m.progress.ViewAs(l.progress) +
		fmt.Sprintf(" %s / %s  (esc to cancel)", humanize.IBytes(uint64(l.read)), humanize.IBytes(uint64(l.total)))
}

func (m Model) tabWidth() int {
	if m.cfg.Editor.TabWidth > 0 {
		return m.cfg.Editor.TabWidth
	}
	return 4
}

func flashStyle(level FlashLevel) lipgloss.Style {
	switch level {
	case FlashError:
		return styles.FlashErrorStyle
	case FlashWarning:
		return styles.FlashWarningStyle
	default:
		return styles.FlashInfoStyle
	}
}

func flashIcon(level FlashLevel) string {
	switch level {
	case FlashError:
		return styles.IconError
	case FlashWarning:
		return styles.IconWarning
	default:
		return styles.IconInfo
	}
}

// expand returns the printable form of r and its width in cells.
func expand(r rune, tabWidth int) (string, int) {
	if r == '\t' {
		return strings.Repeat(" ", tabWidth), tabWidth
	}
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return "", 0
	}
	return string(r), w
}

// printable renders s one rune at a time through expand, the same filter
// the editable view uses. Control characters such as ESC have zero width
// and are dropped, so file content can never drive the terminal.
func printable(s string, tabWidth int) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		cell, _ := expand(r, tabWidth)
		sb.WriteString(cell)
	}
	return sb.String()
}

func displayWidth(runes []rune, tabWidth int) int {
	n := 0
	for _, r := range runes {
		_, w := expand(r, tabWidth)
		n += w
	}
	return n
}

func shortPath(path string, width int) string {
	if runewidth.StringWidth(path) <= width {
		return path
	}
	return runewidth.TruncateLeft(path, runewidth.StringWidth(path)-width+1, "…")
}
