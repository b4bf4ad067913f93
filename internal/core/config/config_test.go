package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "/data")
	require.NoError(t, err)

	want := DefaultConfig()
	want.DataDir = "/data"
	assert.Equal(t, want, *cfg)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("", "/data")
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Editor.VirtualizeThreshold)
	assert.Equal(t, "editor-unsaved-tabs", cfg.Recovery.Key)
	assert.True(t, cfg.Watch.Enabled)
}

func TestLoad_OverridesAndHumanSizes(t *testing.T) {
	path := writeConfig(t, `
editor:
  virtualize_threshold: 5000
  overscan: 0
  status_debounce: 100ms
ingest:
  chunk_size: 1MiB
  max_bytes: 50 MB
recovery:
  debounce: 5s
  max_age: 168h
watch:
  enabled: false
tui:
  theme: dark
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Editor.VirtualizeThreshold)
	assert.Equal(t, 0, cfg.Editor.Overscan, "explicit zero overscan is kept")
	assert.Equal(t, 100*time.Millisecond, cfg.Editor.StatusDebounce)
	assert.Equal(t, 4, cfg.Editor.TabWidth, "unset keys keep defaults")
	assert.Equal(t, ByteSize(1<<20), cfg.Ingest.ChunkSize)
	assert.Equal(t, ByteSize(50_000_000), cfg.Ingest.MaxBytes)
	assert.Equal(t, 5*time.Second, cfg.Recovery.Debounce)
	assert.Equal(t, 168*time.Hour, cfg.Recovery.MaxAge)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, ThemeDark, cfg.TUI.Theme)
}

func TestLoad_IntegerSizes(t *testing.T) {
	path := writeConfig(t, "ingest:\n  chunk_size: 65536\n")

	cfg, err := Load(path, "/data")
	require.NoError(t, err)
	assert.Equal(t, ByteSize(65536), cfg.Ingest.ChunkSize)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad yaml", "editor: [", "parse config file"},
		{"bad size", "ingest:\n  max_bytes: lots\n", "invalid size"},
		{"bad duration", "recovery:\n  debounce: soon\n", "parse config file"},
		{"bad theme", "tui:\n  theme: neon\n", "tui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), "/data")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRead_DoesNotValidate(t *testing.T) {
	path := writeConfig(t, "editor:\n  tab_width: 99\n")

	cfg, err := Read(path, "/data")
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Editor.TabWidth)

	_, err = Load(path, "/data")
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "editor.tab_width", fieldErrs[0].Field)
}

func TestByteSize_String(t *testing.T) {
	assert.Equal(t, "2.0 MiB", ByteSize(2<<20).String())
	assert.Equal(t, "200 MiB", ByteSize(200<<20).String())
	assert.Equal(t, "-1 B", ByteSize(-1).String())
}
