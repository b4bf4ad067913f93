package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/colonyops/quill/internal/core/diskwatch"
	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/core/editor"
	"github.com/colonyops/quill/internal/core/session"
	"github.com/colonyops/quill/internal/core/styles"
	"github.com/colonyops/quill/internal/core/transform"
	"github.com/colonyops/quill/internal/core/validate"
	"github.com/colonyops/quill/internal/core/view"
)

// --- Startup ---

func (m Model) handleStartup(msg startupMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, w := range msg.warnings {
		cmds = append(cmds, m.notify(FlashWarning, "%s", w))
	}
	if msg.restored > 0 {
		cmds = append(cmds, m.notify(FlashInfo, "Restored %d unsaved %s", msg.restored, plural(msg.restored, "document", "documents")))
	}
	for _, f := range msg.files {
		paths, err := m.svc.Expand(f)
		if err != nil {
			cmds = append(cmds, m.notify(FlashError, "%v", err))
			continue
		}
		m.openQueue = append(m.openQueue, paths...)
	}
	next, cmd := m.nextOpen()
	return next, tea.Batch(append(cmds, cmd)...)
}

// --- Tabs ---

func (m Model) newTab() (tea.Model, tea.Cmd) {
	m.sess.NewTab("", "")
	return m, m.tabsChanged()
}

func (m Model) switchTo(index int) (tea.Model, tea.Cmd) {
	if !m.sess.SwitchTo(index) {
		return m, nil
	}
	return m, m.refreshCounts()
}

func (m Model) closeActive() (tea.Model, tea.Cmd) {
	res := m.sess.CloseTab(m.sess.ActiveIndex())
	if res.NeedsConfirm {
		m.state = stateConfirming
		m.modal = newConfirmDialog("Unsaved changes", res.Prompt, "Close")
		m.pending = pendingConfirm{kind: confirmClose, id: res.ID}
		return m, nil
	}
	if res.Closed {
		m.svc.CancelTransform(res.ID)
		return m, m.tabsChanged()
	}
	return m, nil
}

func (m Model) resolveConfirm(ok bool) (tea.Model, tea.Cmd) {
	pending := m.pending
	m.state = stateEditing
	m.modal = confirmDialog{}
	m.pending = pendingConfirm{}
	if !ok {
		return m, nil
	}

	switch pending.kind {
	case confirmClose:
		if m.sess.ConfirmClose(pending.id) {
			m.svc.CancelTransform(pending.id)
			return m, m.tabsChanged()
		}
	case confirmTruncatedSave:
		return m.startSave(pending.save)
	}
	return m, nil
}

func (m Model) promote() (tea.Model, tea.Cmd) {
	if !m.sess.Promote() {
		return m, m.notify(FlashInfo, "Already editable")
	}
	return m, tea.Batch(m.notify(FlashInfo, "Loaded into editor"), m.refreshCounts())
}

// --- Open ---

func (m Model) openPrompt(purpose promptPurpose, initial string) (tea.Model, tea.Cmd) {
	label := "Open"
	if purpose == promptSaveAs {
		label = "Save as"
	}
	var suggestions []string
	if purpose == promptOpen {
		suggestions = m.recent.Paths(m.ctx)
	}
	m.prompt = newPathPrompt(purpose, label, initial, m.width, suggestions)
	m.state = statePrompting
	return m, nil
}

func (m Model) submitPrompt(purpose promptPurpose, input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	if err := validate.Path(input); err != nil {
		return m, m.notify(FlashError, "%v", err)
	}

	if purpose == promptSaveAs {
		path, err := m.svc.Resolve(input)
		if err != nil {
			return m, m.notify(FlashError, "%v", err)
		}
		return m.saveTo(path)
	}

	paths, err := m.svc.Expand(input)
	if err != nil {
		return m, m.notify(FlashError, "%v", err)
	}
	if len(paths) == 0 {
		return m, m.notify(FlashWarning, "No files match %s", input)
	}
	m.openQueue = append(m.openQueue, paths...)
	return m.nextOpen()
}

// nextOpen starts the next queued read unless one is already running. Paths
// that are already open are focused without reading them again.
func (m Model) nextOpen() (tea.Model, tea.Cmd) {
	if m.loading != nil {
		return m, nil
	}
	var cmds []tea.Cmd
	for len(m.openQueue) > 0 {
		path := m.openQueue[0]
		m.openQueue = m.openQueue[1:]

		if res, ok := m.svc.Focus(m.sess, path); ok {
			cmds = append(cmds, m.notify(FlashInfo, "%s", res.Message()), m.refreshCounts())
			continue
		}

		ctx, cancel := context.WithCancel(m.ctx)
		m.loading = &loadState{path: path, cancel: cancel}
		cmds = append(cmds, readFile(ctx, m.svc, path))
		break
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleReadProgress(msg readProgressMsg) (tea.Model, tea.Cmd) {
	if m.loading != nil && m.loading.path == msg.path {
		m.loading.read = msg.progress.BytesRead
		m.loading.total = msg.progress.TotalBytes
		m.loading.known = msg.progress.Known
		m.loading.progress = msg.progress.Fraction()
	}
	return m, waitFor(msg.ch)
}

func (m Model) handleReadDone(msg readDoneMsg) (tea.Model, tea.Cmd) {
	if m.loading != nil {
		m.loading.cancel()
		m.loading = nil
	}

	var cmd tea.Cmd
	switch {
	case errors.Is(msg.err, context.Canceled):
		m.openQueue = nil
		cmd = m.notify(FlashInfo, "Open cancelled")
	case msg.err != nil:
		cmd = m.notify(FlashError, "%v", msg.err)
	default:
		res := m.svc.Opened(m.sess, msg.path, msg.result)
		level := FlashInfo
		if res.Truncated || res.InvalidUTF8 {
			level = FlashWarning
		}
		cmd = tea.Batch(
			m.notify(level, "%s", res.Message()),
			m.tabsChanged(),
			rememberPath(m.ctx, m.recent, msg.path, m.log),
		)
	}

	next, nextCmd := m.nextOpen()
	return next, tea.Batch(cmd, nextCmd)
}

// --- Save ---

func (m Model) save() (tea.Model, tea.Cmd) {
	if m.activePath() == "" {
		return m.openPrompt(promptSaveAs, "")
	}
	return m.saveTo("")
}

func (m Model) saveTo(path string) (tea.Model, tea.Cmd) {
	req, ok := m.svc.PrepareSave(m.sess, path)
	if !ok {
		return m, nil
	}
	if editor.TruncatedOverwrite(m.sess, req) {
		m.state = stateConfirming
		m.modal = newConfirmDialog(
			"Partially loaded file",
			fmt.Sprintf("%s was truncated at %s when it was opened. Saving replaces the whole file with the loaded part.",
				document.Label(req.Path), humanize.IBytes(uint64(m.cfg.Ingest.MaxBytes))),
			"Save anyway",
		)
		m.pending = pendingConfirm{kind: confirmTruncatedSave, id: req.DocID, save: req}
		return m, nil
	}
	return m.startSave(req)
}

func (m Model) startSave(req editor.SaveRequest) (tea.Model, tea.Cmd) {
	if m.watcher != nil {
		m.watcher.Expect(req.Path)
	}
	return m, writeFile(m.ctx, m.svc, req)
}

func (m Model) handleSaveDone(msg saveDoneMsg) (tea.Model, tea.Cmd) {
	label := document.Label(msg.req.Path)
	if msg.err != nil {
		return m, m.notify(FlashError, "Could not save %s: %v", label, msg.err)
	}

	var cmd tea.Cmd
	if m.svc.Saved(m.sess, msg.req) {
		cmd = m.notify(FlashInfo, "Saved %s", label)
	} else {
		cmd = m.notify(FlashWarning, "Saved %s; newer edits are unsaved", label)
	}
	return m, tea.Batch(cmd, m.tabsChanged(), rememberPath(m.ctx, m.recent, msg.req.Path, m.log))
}

// --- Transform ---

func (m Model) sortLines() (tea.Model, tea.Cmd) {
	job, err := m.svc.SortJob(m.sess)
	if err != nil {
		return m, m.notify(FlashInfo, "Nothing to sort")
	}
	m.transforms[job.DocID] = struct{}{}

	cmds := []tea.Cmd{runTransform(m.ctx, m.svc, job)}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleTransformDone(msg transformDoneMsg) (tea.Model, tea.Cmd) {
	out := msg.outcome
	if errors.Is(out.Err, transform.ErrSuperseded) {
		return m, nil
	}
	delete(m.transforms, out.DocID)

	var terr *transform.TransformError
	switch {
	case errors.Is(out.Err, context.Canceled):
		return m, nil
	case errors.As(out.Err, &terr):
		return m, m.notify(FlashError, "Sort failed: %s", terr.Message)
	case out.Err != nil:
		return m, m.notify(FlashError, "Sort failed: %v", out.Err)
	}

	if err := m.svc.Apply(m.sess, out); err != nil {
		if errors.Is(err, session.ErrStaleResult) {
			return m, m.notify(FlashWarning, "Sort discarded: the document changed")
		}
		return m, m.notify(FlashError, "%v", err)
	}
	return m, tea.Batch(
		m.notify(FlashInfo, "Sorted %d lines", view.CountLines(out.Result)),
		m.edited(),
	)
}

// --- Clipboard ---

func (m Model) selectAll() (tea.Model, tea.Cmd) {
	e, ok := m.sess.Editable()
	if !ok {
		return m, m.notify(FlashInfo, "Read-only view: press ctrl+e to load into the editor")
	}
	e.SelectAll()
	return m, m.refreshCounts()
}

func (m Model) copySelection(cut bool) (tea.Model, tea.Cmd) {
	e, ok := m.sess.Editable()
	if !ok || !e.HasSelection() {
		return m, m.notify(FlashInfo, "Nothing selected")
	}
	text, n := e.SelectedText(), e.SelectionLen()
	if !cut {
		return m, copyText(m.clip, text, fmt.Sprintf("Copied %d characters", n))
	}

	m.sess.Edit(func(e *view.Editable) bool { return e.Insert("") })
	return m, tea.Batch(copyText(m.clip, text, fmt.Sprintf("Cut %d characters", n)), m.edited())
}

func (m Model) handleClipboard(msg clipboardMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.notify(FlashError, "Clipboard unavailable: %v", msg.err)
	}
	if !msg.paste {
		return m, m.notify(FlashInfo, "%s", msg.note)
	}
	return m.insert(msg.text)
}

// --- Theme ---

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	name := styles.Toggle(styles.Current)
	styles.SetTheme(name)
	prefs := m.prefs
	ctx := m.ctx
	return m, func() tea.Msg {
		return themeSavedMsg{err: prefs.Set(ctx, prefThemeKey, name)}
	}
}

// --- Quit ---

// quit persists the recovery snapshot synchronously before exiting.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.loading != nil {
		m.loading.cancel()
	}
	m.svc.PersistNow(m.ctx, m.sess)
	return m, tea.Quit
}

// --- Recovery ---

func (m Model) handlePersistTick(msg persistTickMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.persistSeq {
		return m, nil
	}
	entries := m.sess.Snapshot()
	seq := m.svc.Recovery().Next()
	return m, persistRecovery(m.ctx, m.svc, seq, entries)
}

// --- Disk ---

func (m Model) handleDiskEvent(msg diskEventMsg) (tea.Model, tea.Cmd) {
	next := listenDisk(m.watcher.Events())
	idx := m.sess.FindByPath(msg.event.Path)
	if idx < 0 {
		return m, next
	}

	doc := m.sess.Document(idx)
	label := doc.Label()
	var cmd tea.Cmd
	switch {
	case msg.event.Op == diskwatch.OpRemoved:
		cmd = m.notify(FlashWarning, "%s was removed on disk", label)
	case doc.Dirty:
		cmd = m.notify(FlashWarning, "%s changed on disk; saving will overwrite it", label)
	default:
		cmd = m.notify(FlashInfo, "%s changed on disk", label)
	}
	m.log.Debug().Str("path", msg.event.Path).Stringer("op", msg.event.Op).Msg("external change")
	return m, tea.Batch(cmd, next)
}

// --- Helpers ---

// edited runs after any content change: counts and recovery are debounced.
func (m *Model) edited() tea.Cmd {
	m.persistSeq++
	return tea.Batch(m.refreshCounts(), schedulePersist(m.cfg.Recovery.Debounce, m.persistSeq))
}

// tabsChanged runs after documents were added, removed, or saved.
func (m *Model) tabsChanged() tea.Cmd {
	m.syncWatcher()
	return m.edited()
}

func (m *Model) refreshCounts() tea.Cmd {
	m.countSeq++
	return scheduleCount(m.cfg.Editor.StatusDebounce, m.countSeq)
}

func (m Model) countText() string {
	return view.CountText(m.sess.View())
}

func (m Model) syncWatcher() {
	if m.watcher == nil {
		return
	}
	tabs := m.sess.Tabs()
	paths := make([]string, 0, len(tabs))
	for _, t := range tabs {
		paths = append(paths, t.Path)
	}
	if err := m.watcher.Sync(paths); err != nil {
		m.log.Debug().Err(err).Msg("watch sync incomplete")
	}
}

func (m Model) activePath() string {
	if doc := m.sess.Active(); doc != nil {
		return doc.Path
	}
	return ""
}

func (m Model) spinnerView() string {
	if _, busy := m.transforms[m.activeID()]; !busy {
		return ""
	}
	return m.spinner.View() + " sorting"
}

func (m Model) activeID() document.ID {
	if doc := m.sess.Active(); doc != nil {
		return doc.ID
	}
	return 0
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
