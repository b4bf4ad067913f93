// Package editor coordinates the session with the slow or fallible parts of
// the editor: file reads and writes, the recovery slot, and background
// transforms.
//
// Methods that take a *session.Session must run on the goroutine that owns
// the session. Read, Write, Persist and Transform do not touch the session and
// are meant to run in the background.
package editor

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/core/fsio"
	"github.com/colonyops/quill/internal/core/ingest"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/core/recovery"
	"github.com/colonyops/quill/internal/core/session"
	"github.com/colonyops/quill/internal/core/transform"
)

// Service wires the session to storage and workers.
type Service struct {
	fs       afero.Fs
	reader   *ingest.Reader
	recovery *recovery.Store
	runner   *transform.Runner
	log      zerolog.Logger
}

// New creates a Service.
func New(fsys afero.Fs, reader *ingest.Reader, rec *recovery.Store, runner *transform.Runner, logger zerolog.Logger) *Service {
	return &Service{
		fs:       fsys,
		reader:   reader,
		recovery: rec,
		runner:   runner,
		log:      logging.For(logger, "editor"),
	}
}

// Recovery returns the recovery store.
func (s *Service) Recovery() *recovery.Store { return s.recovery }

// Resolve turns user input into the path used to bind a document. Relative
// paths are made absolute so the same file opened twice is recognized.
func (s *Service) Resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return abs, nil
}

// Expand resolves input and, when it contains glob metacharacters, returns
// every matching regular file in lexical order. A plain path is returned as
// is whether or not it exists.
func (s *Service) Expand(input string) ([]string, error) {
	path, err := s.Resolve(input)
	if err != nil || path == "" {
		return nil, err
	}
	if !strings.ContainsAny(path, "*?[{") {
		return []string{path}, nil
	}

	base, pattern := doublestar.SplitPattern(filepath.ToSlash(path))
	root := afero.NewIOFS(afero.NewBasePathFs(s.fs, filepath.FromSlash(base)))

	var matches []string
	err = doublestar.GlobWalk(root, pattern, func(p string, d fs.DirEntry) error {
		if d.Type().IsRegular() {
			matches = append(matches, filepath.Join(filepath.FromSlash(base), filepath.FromSlash(p)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", input, err)
	}
	return matches, nil
}

// Read ingests path, reporting progress on ch.
func (s *Service) Read(ctx context.Context, path string, ch chan<- ingest.Progress) (ingest.Result, error) {
	res, err := s.reader.Read(ctx, path, ch)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Str("path", path).Msg("open failed")
		return ingest.Result{}, err
	}
	s.log.Info().Ctx(ctx).
		Str("path", path).
		Int64("bytes", res.BytesRead).
		Bool("truncated", res.Truncated).
		Bool("invalid_utf8", res.InvalidUTF8).
		Msg("file read")
	return res, nil
}

// OpenResult describes what Opened did.
type OpenResult struct {
	Index       int
	AlreadyOpen bool
	Truncated   bool
	InvalidUTF8 bool
	Path        string
	Bytes       int64
	MaxBytes    int64
}

// Message is the status line text for the result.
func (r OpenResult) Message() string {
	label := document.Label(r.Path)
	switch {
	case r.AlreadyOpen:
		return fmt.Sprintf("%s is already open", label)
	case r.Truncated:
		return fmt.Sprintf("Opened %s (truncated at %s)", label, humanize.IBytes(uint64(r.MaxBytes)))
	case r.InvalidUTF8:
		return fmt.Sprintf("Opened %s: not valid UTF-8, edited lines replace invalid bytes", label)
	default:
		return fmt.Sprintf("Opened %s (%s)", label, humanize.IBytes(uint64(r.Bytes)))
	}
}

// Focus switches to the document already bound to path. It is checked before
// a read starts so the same file is never loaded twice.
func (s *Service) Focus(sess *session.Session, path string) (OpenResult, bool) {
	idx := sess.FindByPath(path)
	if idx < 0 {
		return OpenResult{}, false
	}
	sess.SwitchTo(idx)
	return OpenResult{Index: idx, AlreadyOpen: true, Path: path}, true
}

// Opened adds a finished read to the session. If the path was opened by
// another read in the meantime the existing document is focused instead.
func (s *Service) Opened(sess *session.Session, path string, res ingest.Result) OpenResult {
	if r, ok := s.Focus(sess, path); ok {
		return r
	}
	sess.Open(path, res.Content, res.Truncated)
	return OpenResult{
		Index:       sess.ActiveIndex(),
		Truncated:   res.Truncated,
		InvalidUTF8: res.InvalidUTF8,
		Path:        path,
		Bytes:       res.BytesRead,
		MaxBytes:    s.reader.MaxBytes(),
	}
}

// SaveRequest captures what to write. Generation is compared on completion
// so edits made while the write was in flight keep the document dirty.
type SaveRequest struct {
	DocID      document.ID
	Generation uint64
	Path       string
	Content    string
}

// PrepareSave snapshots the active document for a write to path. An empty
// path means the document's own path.
func (s *Service) PrepareSave(sess *session.Session, path string) (SaveRequest, bool) {
	content := sess.CurrentContent()
	doc := sess.Active()
	if doc == nil {
		return SaveRequest{}, false
	}
	if path == "" {
		path = doc.Path
	}
	if path == "" {
		return SaveRequest{}, false
	}
	return SaveRequest{
		DocID:      doc.ID,
		Generation: doc.Generation,
		Path:       path,
		Content:    content,
	}, true
}

// TruncatedOverwrite reports whether req would replace the original file of a
// document that was only partially loaded.
func TruncatedOverwrite(sess *session.Session, req SaveRequest) bool {
	idx := sess.Index(req.DocID)
	if idx < 0 {
		return false
	}
	doc := sess.Document(idx)
	return doc.Truncated && doc.Path == req.Path
}

// Write performs the file write for req.
func (s *Service) Write(ctx context.Context, req SaveRequest) error {
	ctx = logging.WithDocumentID(ctx, uint64(req.DocID))
	if err := fsio.WriteFile(s.fs, req.Path, req.Content); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Str("path", req.Path).Msg("save failed")
		return err
	}
	s.log.Info().Ctx(ctx).
		Str("path", req.Path).
		Int("bytes", len(req.Content)).
		Msg("file saved")
	return nil
}

// Saved records a successful write. It reports whether the document is clean
// afterwards.
func (s *Service) Saved(sess *session.Session, req SaveRequest) bool {
	return sess.MarkSaved(req.DocID, req.Generation, req.Path, req.Content)
}

// Restore loads the recovery slot into sess and consumes it. It returns the
// number of documents restored; zero means the caller should start with a
// blank document.
func (s *Service) Restore(ctx context.Context, sess *session.Session) int {
	snap, ok := s.recovery.Load(ctx)
	if !ok {
		return 0
	}
	n := sess.Restore(snap.Entries)
	if err := s.recovery.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("recovery slot not cleared after restore")
	}
	s.log.Info().Ctx(ctx).Int("documents", n).Time("saved_at", snap.SavedAt).Msg("restored unsaved documents")
	return n
}

// Persist writes entries under sequence seq. See recovery.Store.Persist.
func (s *Service) Persist(ctx context.Context, seq uint64, entries []document.Entry) bool {
	return s.recovery.Persist(ctx, seq, entries)
}

// PersistNow snapshots sess and writes it synchronously.
func (s *Service) PersistNow(ctx context.Context, sess *session.Session) bool {
	return s.recovery.PersistNow(ctx, sess.Snapshot())
}

// SortJob builds a sort transform job for the active document.
func (s *Service) SortJob(sess *session.Session) (transform.Job, error) {
	text := sess.CurrentContent()
	doc := sess.Active()
	if doc == nil || strings.TrimSpace(text) == "" {
		return transform.Job{}, transform.ErrNothingToTransform
	}
	return transform.Job{
		DocID:      doc.ID,
		Generation: doc.Generation,
		Command:    transform.CommandSortLines,
		Text:       text,
	}, nil
}

// Transform runs job on a worker.
func (s *Service) Transform(ctx context.Context, job transform.Job) transform.Outcome {
	return s.runner.Run(ctx, job)
}

// CancelTransform stops the transform running for id.
func (s *Service) CancelTransform(id document.ID) {
	s.runner.Cancel(id)
}

// Apply writes a successful outcome into sess. Outcomes for documents that
// changed or are no longer active return session.ErrStaleResult.
func (s *Service) Apply(sess *session.Session, out transform.Outcome) error {
	if out.Err != nil {
		return out.Err
	}
	if err := sess.ApplyTransform(out.DocID, out.Generation, out.Result); err != nil {
		s.log.Debug().Uint64("document_id", uint64(out.DocID)).Msg("discarding stale transform result")
		return err
	}
	return nil
}
