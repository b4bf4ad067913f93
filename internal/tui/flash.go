package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	flashInfoTTL      = 2 * time.Second
	flashErrorTTL     = 4 * time.Second
	flashTickInterval = 100 * time.Millisecond
)

// FlashLevel is the severity of a status flash.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarning
	FlashError
)

type flash struct {
	level     FlashLevel
	message   string
	remaining time.Duration
}

// FlashController manages the short-lived message shown in the status bar.
// Only one flash is visible at a time; a new one replaces the current one.
type FlashController struct {
	current *flash
	ticking bool
}

func NewFlashController() *FlashController {
	return &FlashController{}
}

// Push shows message. Errors stay up longer than other levels.
func (c *FlashController) Push(level FlashLevel, message string) {
	ttl := flashInfoTTL
	if level == FlashError {
		ttl = flashErrorTTL
	}
	c.current = &flash{level: level, message: message, remaining: ttl}
}

// Tick decrements the remaining TTL by d and clears an expired flash.
func (c *FlashController) Tick(d time.Duration) {
	if c.current == nil {
		return
	}
	c.current.remaining -= d
	if c.current.remaining <= 0 {
		c.current = nil
	}
}

// Dismiss clears the current flash.
func (c *FlashController) Dismiss() {
	c.current = nil
}

// Current returns the visible flash.
func (c *FlashController) Current() (FlashLevel, string, bool) {
	if c.current == nil {
		return FlashInfo, "", false
	}
	return c.current.level, c.current.message, true
}

// Active reports whether a flash is visible.
func (c *FlashController) Active() bool {
	return c.current != nil
}

// Ticking returns whether the tick timer is currently running.
func (c *FlashController) Ticking() bool {
	return c.ticking
}

// SetTicking sets the tick timer state.
func (c *FlashController) SetTicking(v bool) {
	c.ticking = v
}

type flashTickMsg time.Time

func scheduleFlashTick() tea.Cmd {
	return tea.Tick(flashTickInterval, func(t time.Time) tea.Msg {
		return flashTickMsg(t)
	})
}
