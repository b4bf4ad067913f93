package diskwatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, w *Watcher, within time.Duration) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(within):
	}
}

func TestWatcher_ReportsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	writeFile(t, path, "one")

	w := newWatcher(t)
	require.NoError(t, w.Sync([]string{path}))

	writeFile(t, path, "two")

	ev := waitEvent(t, w)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, OpChanged, ev.Op)
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	writeFile(t, path, "x")

	w := newWatcher(t)
	require.NoError(t, w.Sync([]string{path}))

	require.NoError(t, os.Remove(path))

	ev := waitEvent(t, w)
	assert.Equal(t, OpRemoved, ev.Op)
}

func TestWatcher_IgnoresUntrackedSiblings(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "tracked.txt")
	writeFile(t, tracked, "x")

	w := newWatcher(t)
	require.NoError(t, w.Sync([]string{tracked}))

	writeFile(t, filepath.Join(dir, "other.txt"), "y")

	assertNoEvent(t, w, 300*time.Millisecond)
}

func TestWatcher_ExpectSuppressesOwnSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.txt")
	writeFile(t, path, "x")

	w := newWatcher(t)
	require.NoError(t, w.Sync([]string{path}))

	w.Expect(path)
	writeFile(t, path, "saved by editor")

	assertNoEvent(t, w, 300*time.Millisecond)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "burst.txt")
	writeFile(t, path, "x")

	w := newWatcher(t)
	require.NoError(t, w.Sync([]string{path}))

	for range 5 {
		writeFile(t, path, "again")
	}

	waitEvent(t, w)
	assertNoEvent(t, w, 200*time.Millisecond)
}

func TestWatcher_Sync(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")

	w := newWatcher(t)
	require.NoError(t, w.Sync([]string{a, b, ""}))
	assert.True(t, w.Tracked(a))
	assert.True(t, w.Tracked(b))

	require.NoError(t, w.Sync([]string{b}))
	assert.False(t, w.Tracked(a))
	assert.True(t, w.Tracked(b))
	assert.Equal(t, 1, w.dirs[dir])

	require.NoError(t, w.Sync(nil))
	assert.Empty(t, w.dirs)
}

func TestWatcher_SyncMissingDirectory(t *testing.T) {
	w := newWatcher(t)
	err := w.Sync([]string{filepath.Join(t.TempDir(), "no", "such", "file.txt")})
	assert.Error(t, err)
}

func TestWatcher_CloseClosesEvents(t *testing.T) {
	w, err := New(zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "changed", OpChanged.String())
	assert.Equal(t, "removed", OpRemoved.String())
	assert.Equal(t, "unknown", Op(0).String())
}
