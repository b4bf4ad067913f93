package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/quill/internal/core/styles"
)

type promptPurpose int

const (
	promptOpen promptPurpose = iota
	promptSaveAs
)

// PathPrompt is the single-line path entry shown in the footer. It stands in
// for a native file picker: enter submits, esc cancels without error. Recent
// paths are offered as completions; tab accepts, up and down cycle.
type PathPrompt struct {
	purpose promptPurpose
	label   string
	input   textinput.Model
}

func newPathPrompt(purpose promptPurpose, label, initial string, width int, suggestions []string) PathPrompt {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "path or glob, e.g. ./notes/*.txt"
	if purpose == promptSaveAs {
		ti.Placeholder = "path"
	}
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.Width = max(width-len(label)-4, 10)
	if len(suggestions) > 0 {
		ti.ShowSuggestions = true
		ti.SetSuggestions(suggestions)
	}
	ti.Focus()

	return PathPrompt{purpose: purpose, label: label, input: ti}
}

// Update forwards msg to the text input.
func (p PathPrompt) Update(msg tea.Msg) (PathPrompt, tea.Cmd) {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// Value returns the entered text.
func (p PathPrompt) Value() string { return p.input.Value() }

// View renders the prompt line.
func (p PathPrompt) View() string {
	return styles.PromptLabelStyle.Render(p.label+": ") + p.input.View()
}
