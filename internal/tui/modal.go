package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/quill/internal/core/styles"
)

type answer int

const (
	answerPending answer = iota
	answerYes
	answerNo
)

// confirmDialog is a yes/no question drawn over the editor. Cancel starts
// selected so a stray enter never discards work.
type confirmDialog struct {
	title        string
	message      string
	confirmLabel string
	confirm      bool
}

func newConfirmDialog(title, message, confirmLabel string) confirmDialog {
	if confirmLabel == "" {
		confirmLabel = "Confirm"
	}
	return confirmDialog{title: title, message: message, confirmLabel: confirmLabel}
}

// HandleKey moves the selection or answers the question.
func (d *confirmDialog) HandleKey(msg tea.KeyMsg) answer {
	switch msg.String() {
	case "left", "right", "tab", "shift+tab", "h", "l":
		d.confirm = !d.confirm
	case "y":
		return answerYes
	case "n", "esc":
		return answerNo
	case "enter":
		if d.confirm {
			return answerYes
		}
		return answerNo
	}
	return answerPending
}

func (d confirmDialog) button(label string, selected bool) string {
	if selected {
		return styles.ModalButtonSelectedStyle.Render(label)
	}
	return styles.ModalButtonStyle.Render(label)
}

// View renders the dialog centred in a width x height area.
func (d confirmDialog) View(width, height int) string {
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		d.button(d.confirmLabel, d.confirm), "  ", d.button("Cancel", !d.confirm))

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(d.title),
		"",
		lipgloss.NewStyle().Width(min(max(width-10, 20), 60)).Render(d.message),
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  y/n  esc cancel"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.ModalStyle.Render(body))
}
