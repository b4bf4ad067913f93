package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	assert.Equal(t, filepath.Join("/xdg/config", "quill", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/xdg/data", "quill"), DefaultDataDir())
	assert.Equal(t, filepath.Join("/xdg/data", "quill", "quill.log"), DefaultLogFile(DefaultDataDir()))
}

func TestDefaultPaths_HomeFallback(t *testing.T) {
	t.Setenv("HOME", "/home/ada")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	assert.Equal(t, "/home/ada/.config/quill/config.yaml", DefaultConfigPath())
	assert.Equal(t, "/home/ada/.local/share/quill", DefaultDataDir())
}
