// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// Theme names understood by GetPalette.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	DefaultTheme = ThemeLight
)

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	ThemeLight: {
		Primary:    lipgloss.Color("#2e59a8"),
		Foreground: lipgloss.Color("#24292f"),
		Muted:      lipgloss.Color("#8c959f"),
		Background: lipgloss.Color("#ffffff"),
		Surface:    lipgloss.Color("#eaeef2"),
		Success:    lipgloss.Color("#1a7f37"),
		Warning:    lipgloss.Color("#9a6700"),
		Error:      lipgloss.Color("#cf222e"),
	},
	ThemeDark: {
		Primary:    lipgloss.Color("#7aa2f7"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// Toggle returns the other built-in theme.
func Toggle(name string) string {
	if name == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Current holds the active theme name and palette.
var (
	Current        = DefaultTheme
	CurrentPalette Palette
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	ErrorTextStyle     lipgloss.Style
	SuccessTextStyle   lipgloss.Style
	WarningTextStyle   lipgloss.Style

	// Editor chrome.
	TabStyle        lipgloss.Style
	TabActiveStyle  lipgloss.Style
	DirtyDotStyle   lipgloss.Style
	TabBarStyle     lipgloss.Style
	GutterStyle     lipgloss.Style
	TextStyle       lipgloss.Style
	SelectionStyle  lipgloss.Style
	CursorStyle     lipgloss.Style
	ReadOnlyStyle   lipgloss.Style
	StatusBarStyle  lipgloss.Style
	StatusMetaStyle lipgloss.Style

	// Flash messages in the status bar.
	FlashInfoStyle    lipgloss.Style
	FlashWarningStyle lipgloss.Style
	FlashErrorStyle   lipgloss.Style

	// Modals and prompts.
	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style
	PromptLabelStyle         lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles. Unknown
// names fall back to DefaultTheme.
func SetTheme(name string) {
	p, ok := themes[name]
	if !ok {
		name, p = DefaultTheme, themes[DefaultTheme]
	}
	Current = name
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	ErrorTextStyle = lipgloss.NewStyle().
		Foreground(p.Error)
	SuccessTextStyle = lipgloss.NewStyle().
		Foreground(p.Success)
	WarningTextStyle = lipgloss.NewStyle().
		Foreground(p.Warning)

	TabStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(p.Muted).
		Background(p.Surface)
	TabActiveStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true)
	DirtyDotStyle = lipgloss.NewStyle().
		Foreground(p.Warning)
	TabBarStyle = lipgloss.NewStyle().
		Background(p.Surface)
	GutterStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		PaddingRight(1)
	TextStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	SelectionStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary)
	CursorStyle = lipgloss.NewStyle().
		Reverse(true)
	ReadOnlyStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Faint(true)
	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Background(p.Surface)
	StatusMetaStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Background(p.Surface).
		Padding(0, 1)

	FlashInfoStyle = lipgloss.NewStyle().
		Foreground(p.Success).
		Background(p.Surface).
		Padding(0, 1)
	FlashWarningStyle = lipgloss.NewStyle().
		Foreground(p.Warning).
		Background(p.Surface).
		Padding(0, 1)
	FlashErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error).
		Background(p.Surface).
		Bold(true).
		Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Surface).
		Foreground(p.Muted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Primary).
		Foreground(p.Background).
		Bold(true)
	PromptLabelStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(DefaultTheme)
}
