// Package fsio is the raw file I/O boundary used by the editor. All disk
// access goes through an afero.Fs so the editor can run against an in-memory
// filesystem in tests.
package fsio

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// IOError reports a failed read or write of a document file.
type IOError struct {
	Op   string // "open", "read", "write", "stat"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ReadFile reads the whole file at path. Used for small files and as a
// fallback when chunked ingestion is not needed.
func ReadFile(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}

// WriteFile writes text to path, creating or truncating the file. An existing
// file keeps its permission bits.
func WriteFile(fs afero.Fs, path, text string) error {
	perm := os.FileMode(0o644)
	if info, err := fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := afero.WriteFile(fs, path, []byte(text), perm); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
