// Package ingest reads document files in bounded chunks with a hard size cap
// and incremental progress reporting.
package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/colonyops/quill/internal/core/fsio"
)

const (
	// DefaultChunkSize balances per-chunk overhead against progress cadence.
	DefaultChunkSize = 2 << 20
	// DefaultMaxBytes caps the amount of a file loaded into memory.
	DefaultMaxBytes int64 = 200 << 20
)

// Progress is emitted after every chunk. Known is false when the total size
// could not be determined up front.
type Progress struct {
	BytesRead  int64
	TotalBytes int64
	Known      bool
}

// Fraction returns read progress in [0, 1], or 0 when the total is unknown.
func (p Progress) Fraction() float64 {
	if !p.Known || p.TotalBytes <= 0 {
		return 0
	}
	f := float64(p.BytesRead) / float64(p.TotalBytes)
	return min(f, 1)
}

// Result is the outcome of a completed read. Truncated reports that the size
// cap was reached before end of file; it is not an error. InvalidUTF8 reports
// bytes that are not UTF-8: they are kept as read, but any line the user
// edits has them replaced with U+FFFD.
type Result struct {
	Content     string
	BytesRead   int64
	Truncated   bool
	InvalidUTF8 bool
}

// Reader performs chunked reads against a filesystem.
type Reader struct {
	fs        afero.Fs
	chunkSize int
	maxBytes  int64
}

// NewReader creates a Reader. Non-positive sizes fall back to the defaults.
func NewReader(fs afero.Fs, chunkSize int, maxBytes int64) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Reader{fs: fs, chunkSize: chunkSize, maxBytes: maxBytes}
}

// MaxBytes returns the configured size cap.
func (r *Reader) MaxBytes() int64 { return r.maxBytes }

// Read loads the file at path. If progress is non-nil a Progress value is sent
// after each chunk; sends block until received or ctx is done, so callers
// should drain the channel or give it a buffer. The reader never closes the
// channel and does no throttling of its own.
//
// On any I/O error no partial content is returned.
func (r *Reader) Read(ctx context.Context, path string, progress chan<- Progress) (Result, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return Result{}, &fsio.IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	var (
		total int64
		known bool
	)
	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			return Result{}, &fsio.IOError{Op: "read", Path: path, Err: errors.New("is a directory")}
		}
		if info.Mode().IsRegular() {
			total, known = info.Size(), true
		}
	}

	var sb strings.Builder
	if known {
		sb.Grow(int(min(total, r.maxBytes)))
	}

	buf := make([]byte, r.chunkSize)
	var read int64
	truncated := false

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		want := int64(len(buf))
		if remaining := r.maxBytes - read; remaining < want {
			want = remaining
		}
		if want <= 0 {
			truncated = !atEOF(f)
			break
		}

		n, err := io.ReadFull(f, buf[:want])
		if n > 0 {
			sb.Write(buf[:n])
			read += int64(n)
			if err := send(ctx, progress, Progress{BytesRead: read, TotalBytes: total, Known: known}); err != nil {
				return Result{}, err
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return Result{}, &fsio.IOError{Op: "read", Path: path, Err: err}
		}
	}

	content := sb.String()
	if truncated {
		content = trimPartialRune(content)
	}

	return Result{
		Content:     content,
		BytesRead:   read,
		Truncated:   truncated,
		InvalidUTF8: !utf8.ValidString(content),
	}, nil
}

func send(ctx context.Context, ch chan<- Progress, p Progress) error {
	if ch == nil {
		return nil
	}
	select {
	case ch <- p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// atEOF probes for one more byte after the cap has been reached.
func atEOF(f io.Reader) bool {
	var b [1]byte
	n, _ := f.Read(b[:])
	return n == 0
}

// trimPartialRune drops an incomplete UTF-8 sequence cut off by the cap.
func trimPartialRune(s string) string {
	for i := 1; i < utf8.UTFMax && i <= len(s); i++ {
		r := s[len(s)-i]
		if !utf8.RuneStart(r) {
			continue
		}
		if !utf8.FullRuneInString(s[len(s)-i:]) {
			return s[:len(s)-i]
		}
		break
	}
	return s
}
