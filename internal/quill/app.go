// Package quill assembles the editor services from configuration.
package quill

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/colonyops/quill/internal/core/config"
	"github.com/colonyops/quill/internal/core/editor"
	"github.com/colonyops/quill/internal/core/history"
	"github.com/colonyops/quill/internal/core/ingest"
	"github.com/colonyops/quill/internal/core/kv"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/core/recovery"
	"github.com/colonyops/quill/internal/core/session"
	"github.com/colonyops/quill/internal/core/transform"
	"github.com/colonyops/quill/internal/data/db"
	"github.com/colonyops/quill/internal/data/stores"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App is the central entry point for editor operations. Commands and the TUI
// consume App instead of cherry-picking raw dependencies.
type App struct {
	Config *config.Config
	Fs     afero.Fs
	DB     *db.DB // nil when storage fell back to memory
	KV     kv.KV
	Editor *editor.Service
	Recent *history.Recent
	Build  BuildInfo

	// Warnings are startup problems the editor should surface.
	Warnings []string

	log zerolog.Logger
}

// New constructs an App over an opened key-value store.
func New(cfg *config.Config, fsys afero.Fs, database *db.DB, store kv.KV, build BuildInfo, logger zerolog.Logger) *App {
	reader := ingest.NewReader(fsys, int(cfg.Ingest.ChunkSize), int64(cfg.Ingest.MaxBytes))
	rec := recovery.New(store, recovery.Options{
		Key:    cfg.Recovery.Key,
		MaxAge: cfg.Recovery.MaxAge,
		Logger: logger,
	})
	runner := transform.NewRunner(nil, logger)

	return &App{
		Config: cfg,
		Fs:     fsys,
		DB:     database,
		KV:     store,
		Editor: editor.New(fsys, reader, rec, runner, logger),
		Recent: history.New(store, 0),
		Build:  build,
		log:    logger,
	}
}

// Durable reports whether state survives the process.
func (a *App) Durable() bool { return a.DB != nil }

// NewSession returns an empty session configured from the editor settings.
func (a *App) NewSession() *session.Session {
	return session.New(session.Options{
		Threshold: a.Config.Editor.VirtualizeThreshold,
		Overscan:  a.Config.Editor.Overscan,
		Logger:    a.log,
	})
}

// Storage is the opened key-value backend.
type Storage struct {
	DB *db.DB
	KV kv.KV

	// Warning is set when the durable store could not be used and KV is
	// process-local.
	Warning error
}

// Sweeper returns the store whose expired entries should be swept.
func (s Storage) Sweeper() stores.Sweeper {
	if sw, ok := s.KV.(stores.Sweeper); ok {
		return sw
	}
	return nil
}

// Close releases the database, if one is open.
func (s Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// OpenStorage opens the database in dataDir. A corrupted database is moved
// aside and recreated. If the database still cannot be opened, an in-memory
// store is returned with Warning set, so editing keeps working without
// durable recovery.
func OpenStorage(ctx context.Context, dataDir string, opts db.OpenOptions, logger zerolog.Logger) Storage {
	log := logging.For(logger, "storage")
	opts.Logger = log

	var database *db.DB
	err := os.MkdirAll(dataDir, 0o755)
	if err == nil {
		database, err = db.Open(dataDir, opts)
	}
	if err != nil && stores.IsCorruptionError(err) {
		log.Warn().Err(err).Msg("database corrupted, moving it aside")
		if rerr := stores.RecoverFromCorruption(dataDir); rerr != nil {
			log.Error().Err(rerr).Msg("corrupted database could not be moved")
		} else {
			database, err = db.Open(dataDir, opts)
		}
	}
	if err != nil {
		log.Error().Err(err).Stringer("fault", stores.Classify(err)).Msg("falling back to in-memory storage")
		return Storage{
			KV:      kv.NewMemory(),
			Warning: fmt.Errorf("unsaved documents will not survive a restart: %w", err),
		}
	}

	store := stores.NewKVStore(database)
	if err := store.SweepExpired(ctx); err != nil {
		log.Debug().Err(err).Msg("startup sweep failed")
	}
	return Storage{DB: database, KV: store}
}
