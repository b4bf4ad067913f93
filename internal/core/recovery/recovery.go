// Package recovery keeps a best-effort snapshot of unsaved documents in a
// durable key-value slot so they can be restored after a crash or quit.
package recovery

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/core/kv"
	"github.com/colonyops/quill/internal/core/logging"
)

// DefaultKey is the slot name used when none is configured.
const DefaultKey = "editor-unsaved-tabs"

// Options configures a Store.
type Options struct {
	Key    string
	MaxAge time.Duration // zero keeps the slot until it is consumed
	Logger zerolog.Logger
}

// Snapshot is the decoded content of the recovery slot.
type Snapshot struct {
	Entries []document.Entry
	SavedAt time.Time
}

// Store reads and writes the recovery slot. Persist may be called from
// several goroutines; writes are ordered by sequence number.
type Store struct {
	kv     kv.KV
	key    string
	maxAge time.Duration
	log    zerolog.Logger

	seq     atomic.Uint64
	mu      sync.Mutex
	written uint64
}

// New returns a Store writing to opts.Key in store.
func New(store kv.KV, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	return &Store{
		kv:     store,
		key:    opts.Key,
		maxAge: opts.MaxAge,
		log:    logging.For(opts.Logger, "recovery"),
	}
}

// Key returns the slot name.
func (s *Store) Key() string { return s.key }

// Next allocates the sequence number for a persist that is about to be
// scheduled. Allocation happens on the caller's goroutine so the order of
// scheduling, not of execution, decides which write wins.
func (s *Store) Next() uint64 {
	return s.seq.Add(1)
}

// Persist writes entries to the slot, or deletes the slot when entries is
// empty. A write whose seq is older than one already applied is skipped.
// Failures are logged and reported as false; they never propagate.
func (s *Store) Persist(ctx context.Context, seq uint64, entries []document.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.written {
		s.log.Debug().Uint64("seq", seq).Uint64("written", s.written).Msg("skipping superseded snapshot")
		return false
	}

	var err error
	if len(entries) == 0 {
		err = s.kv.Delete(ctx, s.key)
	} else {
		err = s.kv.SetTTL(ctx, s.key, entries, s.maxAge)
	}
	if err != nil {
		s.log.Warn().Err(err).Int("documents", len(entries)).Msg("recovery snapshot not persisted")
		return false
	}

	s.written = seq
	s.log.Debug().Uint64("seq", seq).Int("documents", len(entries)).Msg("recovery snapshot persisted")
	return true
}

// PersistNow allocates a sequence number and persists synchronously. It is
// used on teardown.
func (s *Store) PersistNow(ctx context.Context, entries []document.Entry) bool {
	return s.Persist(ctx, s.Next(), entries)
}

// Load reads the slot. It reports false when the slot is absent, unreadable,
// not a list, or empty. Decode failures are logged and otherwise ignored.
func (s *Store) Load(ctx context.Context) (Snapshot, bool) {
	raw, err := s.kv.GetRaw(ctx, s.key)
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.Warn().Err(err).Msg("recovery slot unreadable")
		}
		return Snapshot{}, false
	}

	var entries []document.Entry
	if err := json.Unmarshal(raw.Value, &entries); err != nil {
		s.log.Debug().Err(err).Msg("recovery slot malformed, ignoring")
		return Snapshot{}, false
	}
	if len(entries) == 0 {
		return Snapshot{}, false
	}

	return Snapshot{Entries: entries, SavedAt: raw.UpdatedAt}, true
}

// Clear deletes the slot. A restore calls it once the documents are back in
// the session so the same snapshot is never replayed twice.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}
