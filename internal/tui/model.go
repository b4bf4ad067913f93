// Package tui implements the Bubble Tea editor for quill.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/colonyops/quill/internal/core/config"
	"github.com/colonyops/quill/internal/core/diskwatch"
	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/core/editor"
	"github.com/colonyops/quill/internal/core/history"
	"github.com/colonyops/quill/internal/core/kv"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/core/session"
	"github.com/colonyops/quill/internal/core/styles"
	"github.com/colonyops/quill/internal/core/view"
)

// UIState represents what has keyboard focus.
type UIState int

const (
	stateEditing UIState = iota
	stateConfirming
	statePrompting
)

// Chrome rows around the text body: tab bar, status bar, footer.
const chromeRows = 3

const prefThemeKey = "theme"

// Options configures the TUI.
type Options struct {
	Context   context.Context // carries the session ID for logging; nil is Background
	Config    *config.Config
	Service   *editor.Service
	Session   *session.Session
	Prefs     kv.KV              // UI preferences; nil keeps them in memory
	Recent    *history.Recent    // nil keeps recent paths in Prefs
	Watcher   *diskwatch.Watcher // nil disables external change notices
	Clipboard Clipboard          // nil uses the system clipboard
	Files     []string           // opened after startup
	Restored  int                // documents restored from the recovery slot
	Warnings  []string           // shown once the editor is up
	Logger    zerolog.Logger
}

type confirmKind int

const (
	confirmClose confirmKind = iota + 1
	confirmTruncatedSave
)

// pendingConfirm is the action waiting on the modal.
type pendingConfirm struct {
	kind confirmKind
	id   document.ID
	save editor.SaveRequest
}

// loadState tracks the read in flight.
type loadState struct {
	path     string
	progress float64
	read     int64
	total    int64
	known    bool
	cancel   context.CancelFunc
}

// Model is the main Bubble Tea model for the editor.
type Model struct {
	ctx     context.Context
	cfg     *config.Config
	svc     *editor.Service
	sess    *session.Session
	prefs   *kv.TypedKV[string]
	recent  *history.Recent
	watcher *diskwatch.Watcher
	clip    Clipboard
	log     zerolog.Logger

	keys     KeyMap
	help     help.Model
	progress progress.Model
	spinner  spinner.Model
	flash    *FlashController

	state   UIState
	modal   confirmDialog
	pending pendingConfirm
	prompt  PathPrompt

	loading   *loadState
	openQueue []string

	// transforms holds documents with a transform in flight.
	transforms map[document.ID]struct{}
	spinning   bool

	counts     string
	countSeq   uint64
	persistSeq uint64

	startup  startupMsg
	width    int
	height   int
	quitting bool
}

// New creates the editor model. The session must already hold at least one
// document.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	prefs := opts.Prefs
	if prefs == nil {
		prefs = kv.NewMemory()
	}
	themes := kv.Scoped[string](prefs, "ui")

	log := logging.For(opts.Logger, "tui")
	theme, err := themes.GetOr(ctx, prefThemeKey, opts.Config.TUI.Theme)
	if err != nil {
		log.Debug().Err(err).Msg("theme preference unreadable")
	}
	styles.SetTheme(theme)

	recent := opts.Recent
	if recent == nil {
		recent = history.New(prefs, 0)
	}

	clip := opts.Clipboard
	if clip == nil {
		clip = SystemClipboard()
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctx:        ctx,
		cfg:        opts.Config,
		svc:        opts.Service,
		sess:       opts.Session,
		prefs:      themes,
		recent:     recent,
		watcher:    opts.Watcher,
		clip:       clip,
		log:        log,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:    sp,
		flash:      NewFlashController(),
		transforms: make(map[document.ID]struct{}),
		startup:    startupMsg{restored: opts.Restored, files: opts.Files, warnings: opts.Warnings},
	}
	m.counts = m.countText()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	startup := m.startup
	cmds := []tea.Cmd{func() tea.Msg { return startup }}
	if m.watcher != nil {
		m.syncWatcher()
		cmds = append(cmds, listenDisk(m.watcher.Events()))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case startupMsg:
		return m.handleStartup(msg)
	case readProgressMsg:
		return m.handleReadProgress(msg)
	case readDoneMsg:
		return m.handleReadDone(msg)
	case saveDoneMsg:
		return m.handleSaveDone(msg)
	case transformDoneMsg:
		return m.handleTransformDone(msg)
	case countTickMsg:
		if msg.seq == m.countSeq {
			m.counts = m.countText()
		}
		return m, nil
	case persistTickMsg:
		return m.handlePersistTick(msg)
	case diskEventMsg:
		return m.handleDiskEvent(msg)
	case clipboardMsg:
		return m.handleClipboard(msg)
	case themeSavedMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Msg("theme preference not saved")
		}
		return m, nil
	case flashTickMsg:
		m.flash.Tick(flashTickInterval)
		if !m.flash.Active() {
			m.flash.SetTicking(false)
			return m, nil
		}
		return m, scheduleFlashTick()
	case spinner.TickMsg:
		if len(m.transforms) == 0 {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}

	if m.state == statePrompting {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool { return m.quitting }

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.progress.Width = max(msg.Width/3, 10)
	m.sess.SetViewport(m.bodyRows())
	return m, nil
}

func (m Model) bodyRows() int {
	return max(m.height-chromeRows, 1)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateConfirming:
		return m.handleConfirmKey(msg)
	case statePrompting:
		return m.handlePromptKey(msg)
	}

	if m.loading != nil && msg.Type == tea.KeyEsc {
		m.loading.cancel()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.New):
		return m.newTab()
	case key.Matches(msg, m.keys.Open):
		return m.openPrompt(promptOpen, "")
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.SaveAs):
		return m.openPrompt(promptSaveAs, m.activePath())
	case key.Matches(msg, m.keys.Close):
		return m.closeActive()
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTo(m.sess.ActiveIndex() - 1)
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTo(m.sess.ActiveIndex() + 1)
	case key.Matches(msg, m.keys.GotoTab):
		if idx, ok := tabNumber(msg.String()); ok {
			return m.switchTo(idx)
		}
		return m, nil
	case key.Matches(msg, m.keys.Promote):
		return m.promote()
	case key.Matches(msg, m.keys.Sort):
		return m.sortLines()
	case key.Matches(msg, m.keys.SelectAll):
		return m.selectAll()
	case key.Matches(msg, m.keys.Copy):
		return m.copySelection(false)
	case key.Matches(msg, m.keys.Cut):
		return m.copySelection(true)
	case key.Matches(msg, m.keys.Paste):
		return m, pasteText(m.clip)
	case key.Matches(msg, m.keys.Theme):
		return m.toggleTheme()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m.handleEditorKey(msg)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal.HandleKey(msg) {
	case answerYes:
		return m.resolveConfirm(true)
	case answerNo:
		return m.resolveConfirm(false)
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = stateEditing
		return m, nil
	case tea.KeyEnter:
		m.state = stateEditing
		return m.submitPrompt(m.prompt.purpose, m.prompt.Value())
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.state != stateEditing {
		return m, nil
	}
	delta := 0
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		delta = -3
	case tea.MouseButtonWheelDown:
		delta = 3
	default:
		return m, nil
	}
	if v, ok := m.sess.Virtualized(); ok {
		v.ScrollBy(delta)
		return m, nil
	}
	if e, ok := m.sess.Editable(); ok {
		if delta < 0 {
			e.Move(view.MovePageUp, false, -delta)
		} else {
			e.Move(view.MovePageDown, false, delta)
		}
	}
	return m, nil
}

// notify shows a flash and makes sure the expiry timer runs.
func (m *Model) notify(level FlashLevel, format string, args ...any) tea.Cmd {
	m.flash.Push(level, fmt.Sprintf(format, args...))
	if m.flash.Ticking() {
		return nil
	}
	m.flash.SetTicking(true)
	return scheduleFlashTick()
}
