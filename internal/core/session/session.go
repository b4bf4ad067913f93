// Package session manages the ordered set of open documents, the active
// document pointer, and the presentation view of the active document.
//
// A Session is owned by a single goroutine (the UI loop). It is not safe for
// concurrent use; background work hands results back by document ID and
// generation instead of touching the session directly.
package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/core/view"
)

// ErrStaleResult is returned when a background result no longer applies,
// because its document is not active anymore or was edited since.
var ErrStaleResult = errors.New("stale result")

// Options configures a Session.
type Options struct {
	Threshold int // line count above which documents are virtualized
	Overscan  int // extra lines materialized around the virtualized viewport
	Logger    zerolog.Logger
}

// Session is an ordered collection of documents plus the active pointer.
type Session struct {
	docs   []*document.Document
	active int
	view   view.View
	rows   int

	// viewRev counts changes made through the view; flushedRev is the value
	// at the last flush. Equal values mean the document content is current.
	viewRev    uint64
	flushedRev uint64

	opts Options
	log  zerolog.Logger
}

// New creates an empty session. Callers seed it with Restore or NewTab.
func New(opts Options) *Session {
	if opts.Threshold <= 0 {
		opts.Threshold = view.DefaultThreshold
	}
	if opts.Overscan < 0 {
		opts.Overscan = view.DefaultOverscan
	}
	return &Session{
		opts: opts,
		log:  logging.For(opts.Logger, "session"),
		rows: 1,
	}
}

// Tab is the shell-facing summary of one document.
type Tab struct {
	ID     document.ID
	Label  string
	Path   string
	Dirty  bool
	Active bool
}

// Tabs lists the documents in display order.
func (s *Session) Tabs() []Tab {
	tabs := make([]Tab, len(s.docs))
	for i, d := range s.docs {
		tabs[i] = Tab{
			ID:     d.ID,
			Label:  d.Label(),
			Path:   d.Path,
			Dirty:  d.Dirty,
			Active: i == s.active,
		}
	}
	return tabs
}

// Len returns the number of open documents.
func (s *Session) Len() int { return len(s.docs) }

// ActiveIndex returns the index of the active document.
func (s *Session) ActiveIndex() int { return s.active }

// Active returns the active document, or nil for an empty session.
func (s *Session) Active() *document.Document {
	if s.active < 0 || s.active >= len(s.docs) {
		return nil
	}
	return s.docs[s.active]
}

// Document returns the document at index, or nil.
func (s *Session) Document(index int) *document.Document {
	if index < 0 || index >= len(s.docs) {
		return nil
	}
	return s.docs[index]
}

// Index returns the position of the document with id, or -1.
func (s *Session) Index(id document.ID) int {
	return slices.IndexFunc(s.docs, func(d *document.Document) bool { return d.ID == id })
}

// View returns the presentation of the active document.
func (s *Session) View() view.View { return s.view }

// Mode returns the presentation mode of the active document.
func (s *Session) Mode() view.Mode {
	if s.view == nil {
		return view.ModeEditable
	}
	return s.view.Mode()
}

// Editable returns the active view when it is editable.
func (s *Session) Editable() (*view.Editable, bool) {
	e, ok := s.view.(*view.Editable)
	return e, ok
}

// Virtualized returns the active view when it is virtualized.
func (s *Session) Virtualized() (*view.Virtualized, bool) {
	v, ok := s.view.(*view.Virtualized)
	return v, ok
}

// SetViewport records the number of text rows available to the view.
func (s *Session) SetViewport(rows int) {
	s.rows = max(rows, 1)
	if v, ok := s.Virtualized(); ok {
		v.SetViewport(s.rows)
	}
}

// Flush copies the live view text back into the active document. It is a
// no-op when nothing changed through the view since the last flush.
func (s *Session) Flush() {
	doc := s.Active()
	if doc == nil || s.view == nil || s.viewRev == s.flushedRev {
		return
	}
	doc.SetContent(s.view.Text())
	s.flushedRev = s.viewRev
}

// CurrentContent returns the authoritative text of the active document.
func (s *Session) CurrentContent() string {
	s.Flush()
	if doc := s.Active(); doc != nil {
		return doc.Content
	}
	return ""
}

// NewTab appends a document and makes it active.
func (s *Session) NewTab(path, content string) *document.Document {
	s.Flush()
	doc := document.New(path, content)
	s.docs = append(s.docs, doc)
	s.active = len(s.docs) - 1
	s.load()

	s.log.Debug().
		Uint64("document_id", uint64(doc.ID)).
		Str("path", path).
		Str("mode", s.view.Mode().String()).
		Msg("tab created")
	return doc
}

// Open adds a document read from path. It starts clean even when the read was
// truncated.
func (s *Session) Open(path, content string, truncated bool) *document.Document {
	doc := s.NewTab(path, content)
	doc.Dirty = false
	doc.Truncated = truncated
	return doc
}

// FindByPath returns the index of the document bound to path, or -1. Paths
// are compared as exact strings without normalization.
func (s *Session) FindByPath(path string) int {
	if path == "" {
		return -1
	}
	return slices.IndexFunc(s.docs, func(d *document.Document) bool { return d.Path == path })
}

// SwitchTo activates the document at index. It is a no-op for the current
// index or an out-of-range index.
func (s *Session) SwitchTo(index int) bool {
	if index == s.active || index < 0 || index >= len(s.docs) {
		return false
	}
	s.Flush()
	s.active = index
	s.load()
	return true
}

// CloseResult describes the outcome of CloseTab.
type CloseResult struct {
	Closed       bool
	NeedsConfirm bool
	Prompt       string
	ID           document.ID
}

// CloseTab closes the document at index unless it holds unsaved, non-blank
// content, in which case it returns a confirmation request. The caller asks
// the user asynchronously and then calls ConfirmClose with the returned ID.
func (s *Session) CloseTab(index int) CloseResult {
	doc := s.Document(index)
	if doc == nil {
		return CloseResult{}
	}
	s.Flush()

	if doc.Dirty && !doc.IsBlank() {
		return CloseResult{
			NeedsConfirm: true,
			Prompt:       fmt.Sprintf("Close %q without saving?", doc.Label()),
			ID:           doc.ID,
		}
	}

	s.remove(index)
	return CloseResult{Closed: true, ID: doc.ID}
}

// ConfirmClose closes the document with id after the user agreed to discard
// its changes. It reports false if the document is already gone.
func (s *Session) ConfirmClose(id document.ID) bool {
	index := s.Index(id)
	if index < 0 {
		return false
	}
	s.Flush()
	s.remove(index)
	return true
}

func (s *Session) remove(index int) {
	id := s.docs[index].ID
	wasActive := index == s.active
	s.docs = slices.Delete(s.docs, index, index+1)

	s.log.Debug().Uint64("document_id", uint64(id)).Msg("tab closed")

	if len(s.docs) == 0 {
		s.active = 0
		s.view = nil
		s.NewTab("", "")
		return
	}

	switch {
	case index < s.active:
		s.active--
	case wasActive:
		s.active = min(s.active, len(s.docs)-1)
		s.load()
	}
}

// Edit applies fn to the editable view. fn reports whether it changed the
// buffer; if so the active document is marked dirty. Edit is a no-op while
// the active document is virtualized.
func (s *Session) Edit(fn func(e *view.Editable) bool) bool {
	e, ok := s.Editable()
	if !ok || !fn(e) {
		return false
	}
	s.viewRev++
	s.Active().MarkDirty()
	return true
}

// Promote converts a virtualized view into an editable one. The change is
// one-way until the document is reloaded.
func (s *Session) Promote() bool {
	v, ok := s.Virtualized()
	if !ok {
		return false
	}
	s.view = v.Promote()

	if doc := s.Active(); doc != nil {
		s.log.Debug().
			Uint64("document_id", uint64(doc.ID)).
			Int("lines", v.LineCount()).
			Msg("view promoted to editable")
	}
	return true
}

// MarkSaved records a completed write of content to path for document id.
// generation is the document generation when the write started. If the
// document changed since, the path is bound but it stays dirty. It reports
// whether the document is now clean.
func (s *Session) MarkSaved(id document.ID, generation uint64, path, content string) bool {
	index := s.Index(id)
	if index < 0 {
		return false
	}
	if index == s.active {
		s.Flush()
	}

	doc := s.docs[index]
	if doc.Generation != generation {
		doc.Path = path
		return false
	}
	doc.MarkSaved(path, content)
	return true
}

// ApplyTransform writes a background transform result into the active view.
// The result is discarded with ErrStaleResult unless document id is still
// active at the same generation.
func (s *Session) ApplyTransform(id document.ID, generation uint64, result string) error {
	doc := s.Active()
	if doc == nil || doc.ID != id {
		return ErrStaleResult
	}
	s.Flush()
	if doc.Generation != generation {
		return ErrStaleResult
	}

	switch v := s.view.(type) {
	case *view.Virtualized:
		v.SetText(result)
	case *view.Editable:
		v.SetText(result)
	}
	// The view rejoins with the document's own line ending.
	text := s.view.Text()
	changed := text != doc.Content
	doc.SetContent(text)
	s.flushedRev = s.viewRev
	if changed {
		doc.MarkDirty()
	}
	return nil
}

// Snapshot returns the recovery entries for every untitled or dirty document,
// in session order.
func (s *Session) Snapshot() []document.Entry {
	s.Flush()
	var out []document.Entry
	for _, d := range s.docs {
		if e, ok := d.SnapshotForRecovery(); ok {
			out = append(out, e)
		}
	}
	return out
}

// Restore recreates one dirty document per entry and returns how many were
// added. The last restored document is active.
func (s *Session) Restore(entries []document.Entry) int {
	for _, e := range entries {
		doc := s.NewTab(e.Path, e.Content)
		doc.MarkDirty()
	}
	return len(entries)
}

// load rebuilds the view for the active document. The mode is decided afresh
// every time a document becomes active.
func (s *Session) load() {
	doc := s.Active()
	if doc == nil {
		s.view = nil
		return
	}
	s.view = view.Load(doc.Content, s.opts.Threshold, s.opts.Overscan)
	if v, ok := s.view.(*view.Virtualized); ok {
		v.SetViewport(s.rows)
	}
	s.viewRev, s.flushedRev = 0, 0
}
