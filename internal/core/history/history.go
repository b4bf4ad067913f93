// Package history remembers recently opened and saved paths.
package history

import (
	"context"
	"slices"
	"time"

	"github.com/colonyops/quill/internal/core/kv"
)

// DefaultLimit is the number of paths kept when none is configured.
const DefaultLimit = 50

const recentKey = "paths"

// Entry is a path and when it was last used.
type Entry struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Recent is a most-recently-used path list stored in a KV.
type Recent struct {
	store *kv.TypedKV[[]Entry]
	limit int
	now   func() time.Time
}

// New returns a Recent list keeping at most limit paths.
func New(store kv.KV, limit int) *Recent {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recent{
		store: kv.Scoped[[]Entry](store, "history"),
		limit: limit,
		now:   time.Now,
	}
}

// List returns entries newest first.
func (r *Recent) List(ctx context.Context) ([]Entry, error) {
	return r.store.GetOr(ctx, recentKey, nil)
}

// Paths returns the remembered paths newest first. Read failures yield an
// empty list.
func (r *Recent) Paths(ctx context.Context) []string {
	entries, _ := r.List(ctx)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

// Add moves path to the front of the list.
func (r *Recent) Add(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	entries, err := r.List(ctx)
	if err != nil {
		entries = nil
	}

	entries = slices.DeleteFunc(entries, func(e Entry) bool { return e.Path == path })
	entries = slices.Insert(entries, 0, Entry{Path: path, Timestamp: r.now()})
	if len(entries) > r.limit {
		entries = entries[:r.limit]
	}
	return r.store.Set(ctx, recentKey, entries)
}

// Clear forgets every path.
func (r *Recent) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, recentKey)
}
