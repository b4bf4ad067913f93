package stores

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/data/db"
)

const slot = "editor-unsaved-tabs"

// clock is a settable time source for expiry tests.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestKVStore(t *testing.T) (*KVStore, *clock) {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := NewKVStore(database)
	store.now = c.now
	return store, c
}

func TestKVStore_RoundTripsRecoveryEntries(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	want := []document.Entry{
		{Path: "/tmp/notes.md", Content: "draft\nline two"},
		{Path: "", Content: "untitled scratch"},
	}
	require.NoError(t, store.Set(ctx, slot, want))

	var got []document.Entry
	require.NoError(t, store.Get(ctx, slot, &got))
	assert.Equal(t, want, got)

	ok, err := store.Has(ctx, slot)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKVStore_MissingKeys(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	var dest []document.Entry
	err := store.Get(ctx, slot, &dest)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.True(t, IsNotFoundError(err))

	_, err = store.GetRaw(ctx, slot)
	require.ErrorIs(t, err, sql.ErrNoRows)

	ok, err := store.Has(ctx, slot)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Delete(ctx, slot), "deleting a missing key is not an error")
}

func TestKVStore_SetReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	store, c := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, slot, []document.Entry{{Content: "first"}}))
	first, err := store.GetRaw(ctx, slot)
	require.NoError(t, err)

	c.advance(time.Minute)
	require.NoError(t, store.Set(ctx, slot, []document.Entry{{Content: "second"}}))

	var got []document.Entry
	require.NoError(t, store.Get(ctx, slot, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Content)

	second, err := store.GetRaw(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "created_at survives an overwrite")
	assert.Equal(t, c.now().UnixNano(), second.UpdatedAt.UnixNano())
}

func TestKVStore_DeleteRemovesSlot(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, slot, []document.Entry{{Content: "x"}}))
	require.NoError(t, store.Delete(ctx, slot))

	ok, err := store.Has(ctx, slot)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVStore_ListKeysSorted(t *testing.T) {
	ctx := context.Background()
	store, c := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, "zeta", 1))
	require.NoError(t, store.Set(ctx, slot, []document.Entry{{Content: "x"}}))
	require.NoError(t, store.SetTTL(ctx, "alpha", 1, time.Second))
	require.NoError(t, store.SetTTL(ctx, "stale", 1, time.Millisecond))

	c.advance(10 * time.Millisecond)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", slot, "zeta"}, keys)
}

func TestKVStore_TTL(t *testing.T) {
	tests := []struct {
		name     string
		ttl      time.Duration
		elapsed  time.Duration
		wantLive bool
		wantExp  bool
	}{
		{name: "within ttl", ttl: time.Hour, elapsed: 59 * time.Minute, wantLive: true, wantExp: true},
		{name: "past ttl", ttl: time.Hour, elapsed: 61 * time.Minute, wantLive: false},
		{name: "zero ttl never expires", ttl: 0, elapsed: 24 * time.Hour, wantLive: true},
		{name: "negative ttl never expires", ttl: -time.Second, elapsed: 24 * time.Hour, wantLive: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, c := newTestKVStore(t)

			require.NoError(t, store.SetTTL(ctx, slot, []document.Entry{{Content: "draft"}}, tt.ttl))
			c.advance(tt.elapsed)

			raw, err := store.GetRaw(ctx, slot)
			if !tt.wantLive {
				require.ErrorIs(t, err, sql.ErrNoRows)
				ok, err := store.Has(ctx, slot)
				require.NoError(t, err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExp, raw.ExpiresAt != nil)

			var got []document.Entry
			require.NoError(t, store.Get(ctx, slot, &got))
			assert.Equal(t, "draft", got[0].Content)
		})
	}
}

func TestKVStore_SweepExpired(t *testing.T) {
	ctx := context.Background()
	store, c := newTestKVStore(t)

	require.NoError(t, store.SetTTL(ctx, "short", 1, time.Minute))
	require.NoError(t, store.SetTTL(ctx, "long", 1, time.Hour))
	require.NoError(t, store.Set(ctx, slot, []document.Entry{{Content: "keep"}}))

	c.advance(5 * time.Minute)
	require.NoError(t, store.SweepExpired(ctx))

	var count int
	err := store.db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_store").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "only the expired row is removed")

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{slot, "long"}, keys)
}
