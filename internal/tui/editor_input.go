package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/quill/internal/core/view"
)

type motion struct {
	m      view.Motion
	extend bool
}

var motions = map[string]motion{
	"left":            {view.MoveLeft, false},
	"right":           {view.MoveRight, false},
	"up":              {view.MoveUp, false},
	"down":            {view.MoveDown, false},
	"home":            {view.MoveLineStart, false},
	"end":             {view.MoveLineEnd, false},
	"pgup":            {view.MovePageUp, false},
	"pgdown":          {view.MovePageDown, false},
	"ctrl+home":       {view.MoveDocStart, false},
	"ctrl+end":        {view.MoveDocEnd, false},
	"shift+left":      {view.MoveLeft, true},
	"shift+right":     {view.MoveRight, true},
	"shift+up":        {view.MoveUp, true},
	"shift+down":      {view.MoveDown, true},
	"shift+home":      {view.MoveLineStart, true},
	"shift+end":       {view.MoveLineEnd, true},
	"ctrl+shift+home": {view.MoveDocStart, true},
	"ctrl+shift+end":  {view.MoveDocEnd, true},
}

// handleEditorKey applies navigation and typing to the active view.
func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v, ok := m.sess.Virtualized(); ok {
		return m.scrollVirtualized(v, msg)
	}

	if mv, ok := motions[msg.String()]; ok {
		if e, ok := m.sess.Editable(); ok {
			e.Move(mv.m, mv.extend, m.bodyRows())
			if mv.extend {
				return m, m.refreshCounts()
			}
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		return m.insert(string(msg.Runes))
	case tea.KeyEnter:
		return m.insert("\n")
	case tea.KeyTab:
		return m.insert("\t")
	case tea.KeyBackspace:
		return m.change(func(e *view.Editable) bool { return e.Backspace() })
	case tea.KeyDelete:
		return m.change(func(e *view.Editable) bool { return e.Delete() })
	case tea.KeyEsc:
		if e, ok := m.sess.Editable(); ok && e.HasSelection() {
			e.ClearSelection()
			return m, m.refreshCounts()
		}
	}
	return m, nil
}

func (m Model) scrollVirtualized(v *view.Virtualized, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		v.ScrollBy(-1)
	case "down":
		v.ScrollBy(1)
	case "pgup":
		v.ScrollBy(-v.Height())
	case "pgdown", " ":
		v.ScrollBy(v.Height())
	case "home", "ctrl+home":
		v.ScrollTo(0)
	case "end", "ctrl+end":
		v.ScrollTo(v.LineCount())
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeyEnter || msg.Type == tea.KeyBackspace {
			return m, m.notify(FlashInfo, "Read-only view: press ctrl+e to load into the editor")
		}
	}
	return m, nil
}

func (m Model) insert(text string) (tea.Model, tea.Cmd) {
	return m.change(func(e *view.Editable) bool { return e.Insert(text) })
}

func (m Model) change(fn func(e *view.Editable) bool) (tea.Model, tea.Cmd) {
	if _, ok := m.sess.Editable(); !ok {
		return m, m.notify(FlashInfo, "Read-only view: press ctrl+e to load into the editor")
	}
	if !m.sess.Edit(fn) {
		return m, nil
	}
	return m, m.edited()
}
