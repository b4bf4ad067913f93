package doctor

import (
	"context"
	"os"

	"github.com/atotto/clipboard"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"
)

// Package-level variables to allow test overrides.
var (
	clipboardUnsupported = func() bool { return clipboard.Unsupported }
	isTerminal           = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	newWatcher           = func() (interface{ Close() error }, error) { return fsnotify.NewWatcher() }
)

// EnvironmentCheck verifies the optional integrations the editor relies on.
type EnvironmentCheck struct {
	watchEnabled bool
}

// NewEnvironmentCheck creates an environment check.
func NewEnvironmentCheck(watchEnabled bool) *EnvironmentCheck {
	return &EnvironmentCheck{watchEnabled: watchEnabled}
}

func (c *EnvironmentCheck) Name() string {
	return "Environment"
}

func (c *EnvironmentCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if isTerminal() {
		result.Items = append(result.Items, pass("terminal", "interactive"))
	} else {
		result.Items = append(result.Items, warn("terminal", "stdout is not a terminal; only headless commands will work"))
	}

	if clipboardUnsupported() {
		result.Items = append(result.Items, warn("clipboard", "no clipboard utility found"))
	} else {
		result.Items = append(result.Items, pass("clipboard", "available"))
	}

	switch {
	case !c.watchEnabled:
		result.Items = append(result.Items, pass("file watching", "disabled in config"))
	default:
		w, err := newWatcher()
		if err != nil {
			result.Items = append(result.Items, warn("file watching", err.Error()))
			break
		}
		_ = w.Close()
		result.Items = append(result.Items, pass("file watching", "available"))
	}

	return result
}
