package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/quill/internal/core/kv"
)

func TestRecent_AddOrdersAndDedupes(t *testing.T) {
	ctx := context.Background()
	r := New(kv.NewMemory(), 3)

	assert.Empty(t, r.Paths(ctx))

	for _, p := range []string{"/a", "/b", "/c", "/a", "", "/d"} {
		require.NoError(t, r.Add(ctx, p))
	}

	assert.Equal(t, []string{"/d", "/a", "/c"}, r.Paths(ctx))
}

func TestRecent_Clear(t *testing.T) {
	ctx := context.Background()
	r := New(kv.NewMemory(), 0)
	require.NoError(t, r.Add(ctx, "/a"))

	require.NoError(t, r.Clear(ctx))
	assert.Empty(t, r.Paths(ctx))
}

func TestRecent_SharesStoreWithoutCollisions(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, "paths", "unrelated"))

	r := New(store, 0)
	require.NoError(t, r.Add(ctx, "/a"))

	entries, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Timestamp.IsZero())
}
