// Package document defines the in-memory model for a single open text buffer.
package document

import (
	"encoding/json"
	"strings"
	"sync/atomic"
)

// UntitledLabel is shown for documents that have never been bound to a path.
const UntitledLabel = "Untitled"

// ID identifies a document for the lifetime of the process. IDs are never
// reused and increase monotonically in creation order.
type ID uint64

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Document is one open file or untitled buffer.
//
// While a document is active, the authoritative text lives in the
// presentation surface. Content is only current after the owning session has
// flushed that surface back into it.
type Document struct {
	ID      ID
	Path    string // empty means untitled
	Content string
	Dirty   bool

	// Generation increases on every content change. Background results that
	// captured an older generation are stale.
	Generation uint64

	// Truncated is set when ingestion stopped at the size cap. Saving such a
	// document writes only the loaded prefix.
	Truncated bool
}

// Entry is a single {path, content} pair in a recovery snapshot. An
// untitled entry has an empty Path, stored as null.
type Entry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	var path *string
	if e.Path != "" {
		path = &e.Path
	}
	return json.Marshal(struct {
		Path    *string `json:"path"`
		Content string  `json:"content"`
	}{path, e.Content})
}

// New creates a document. Untitled documents always start dirty, even when
// empty, because they have never been persisted.
func New(path, content string) *Document {
	return &Document{
		ID:      nextID(),
		Path:    path,
		Content: content,
		Dirty:   path == "",
	}
}

// IsUntitled reports whether the document has no backing path.
func (d *Document) IsUntitled() bool {
	return d.Path == ""
}

// IsBlank reports whether the content is empty after trimming whitespace.
func (d *Document) IsBlank() bool {
	return strings.TrimSpace(d.Content) == ""
}

// SetContent replaces the content and bumps the generation when it changed.
// It does not touch the dirty flag.
func (d *Document) SetContent(content string) {
	if content == d.Content {
		return
	}
	d.Content = content
	d.Generation++
}

// MarkDirty flags the document as differing from its persisted version.
func (d *Document) MarkDirty() {
	d.Dirty = true
	d.Generation++
}

// MarkSaved records a successful write of content to path.
func (d *Document) MarkSaved(path, content string) {
	d.Path = path
	d.Content = content
	d.Dirty = false
	d.Truncated = false
}

// SnapshotForRecovery returns the recovery entry for the document and whether
// it belongs in a snapshot at all. Untitled documents are always included,
// regardless of content.
func (d *Document) SnapshotForRecovery() (Entry, bool) {
	if d.Path != "" && !d.Dirty {
		return Entry{}, false
	}
	return Entry{Path: d.Path, Content: d.Content}, true
}

// Label is the short display name used in the tab bar.
func (d *Document) Label() string {
	return Label(d.Path)
}

// Label returns the base name of path, or UntitledLabel when path is empty.
// Both slash styles are treated as separators.
func Label(path string) string {
	if path == "" {
		return UntitledLabel
	}
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}
