package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/quill/internal/data/db"
)

// Fault is the broad class of a storage error.
type Fault uint8

const (
	FaultOther Fault = iota
	FaultNotFound
	FaultBusy
	FaultFull
	FaultCorrupt
)

func (f Fault) String() string {
	switch f {
	case FaultNotFound:
		return "not found"
	case FaultBusy:
		return "busy"
	case FaultFull:
		return "disk full"
	case FaultCorrupt:
		return "corrupt"
	default:
		return "other"
	}
}

// corruptMessages catch corruption reported before a result code is
// attached, for example while the driver validates the file header.
var corruptMessages = []string{
	"database disk image is malformed",
	"file is not a database",
	"database corruption",
}

// Classify maps err to a Fault using the SQLite result code when there is
// one. A nil error is FaultOther.
func Classify(err error) Fault {
	if err == nil {
		return FaultOther
	}
	if errors.Is(err, sql.ErrNoRows) {
		return FaultNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// Extended codes carry the primary code in the low byte.
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return FaultBusy
		case sqlite3.SQLITE_FULL:
			return FaultFull
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN:
			return FaultCorrupt
		}
		return FaultOther
	}

	msg := err.Error()
	for _, m := range corruptMessages {
		if strings.Contains(msg, m) {
			return FaultCorrupt
		}
	}
	return FaultOther
}

func IsCorruptionError(err error) bool { return Classify(err) == FaultCorrupt }

func IsNotFoundError(err error) bool { return Classify(err) == FaultNotFound }

// RecoverFromCorruption moves a corrupted database and its WAL and SHM files
// aside so the next Open starts from an empty database. The copies keep a
// ".corrupt.<timestamp>" suffix; doctor --autofix removes them.
func RecoverFromCorruption(dataDir string) error {
	base := filepath.Join(dataDir, db.FileName)
	stamp := ".corrupt." + time.Now().Format("20060102-150405")

	for _, suffix := range []string{"", "-wal", "-shm"} {
		src := base + suffix
		err := os.Rename(src, base+stamp+suffix)
		switch {
		case err == nil, errors.Is(err, fs.ErrNotExist):
		case suffix == "":
			return fmt.Errorf("move corrupted database aside: %w", err)
		default:
			// A leftover WAL must not be replayed into the fresh database.
			if rmErr := os.Remove(src); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				return fmt.Errorf("move or remove %s: %w", filepath.Base(src), err)
			}
		}
	}
	return nil
}
