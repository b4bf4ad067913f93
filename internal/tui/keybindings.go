package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the editor commands. Cursor movement and typing are handled
// separately and are not rebindable.
type KeyMap struct {
	New       key.Binding
	Open      key.Binding
	Save      key.Binding
	SaveAs    key.Binding
	Close     key.Binding
	PrevTab   key.Binding
	NextTab   key.Binding
	GotoTab   key.Binding
	Promote   key.Binding
	Sort      key.Binding
	SelectAll key.Binding
	Copy      key.Binding
	Cut       key.Binding
	Paste     key.Binding
	Theme     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	gotoKeys := make([]string, 0, 9)
	for i := 1; i <= 9; i++ {
		gotoKeys = append(gotoKeys, "alt+"+strconv.Itoa(i))
	}

	return KeyMap{
		New:       key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("^n", "new")),
		Open:      key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^o", "open")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^s", "save")),
		SaveAs:    key.NewBinding(key.WithKeys("alt+s"), key.WithHelp("alt+s", "save as")),
		Close:     key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("^w", "close")),
		PrevTab:   key.NewBinding(key.WithKeys("alt+left", "alt+h"), key.WithHelp("alt+←", "prev tab")),
		NextTab:   key.NewBinding(key.WithKeys("alt+right", "alt+l"), key.WithHelp("alt+→", "next tab")),
		GotoTab:   key.NewBinding(key.WithKeys(gotoKeys...), key.WithHelp("alt+1-9", "go to tab")),
		Promote:   key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("^e", "load into editor")),
		Sort:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("^l", "sort lines")),
		SelectAll: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("^a", "select all")),
		Copy:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("^c", "copy")),
		Cut:       key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("^x", "cut")),
		Paste:     key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("^v", "paste")),
		Theme:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^t", "theme")),
		Help:      key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("^q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Open, k.New, k.Close, k.Sort, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Open, k.Save, k.SaveAs, k.Close},
		{k.PrevTab, k.NextTab, k.GotoTab, k.Promote, k.Sort},
		{k.SelectAll, k.Copy, k.Cut, k.Paste},
		{k.Theme, k.Help, k.Quit},
	}
}

// tabNumber returns the zero-based tab index for an alt+digit key.
func tabNumber(keyStr string) (int, bool) {
	digit, ok := strings.CutPrefix(keyStr, "alt+")
	if !ok || len(digit) != 1 || digit[0] < '1' || digit[0] > '9' {
		return 0, false
	}
	return int(digit[0] - '1'), true
}
