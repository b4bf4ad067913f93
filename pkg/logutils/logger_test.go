package logutils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quill.log")

	for _, msg := range []string{"first run", "second run"} {
		l, closer, err := New("info", path, nil)
		require.NoError(t, err)
		l.Info().Msg(msg)
		l.Debug().Msg("filtered")
		closer()
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run", "file is appended, not truncated")
	assert.Contains(t, string(data), "second run")
	assert.NotContains(t, string(data), "filtered")
}

func TestNew_Fallback(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := New("debug", "", &buf)
	require.NoError(t, err)
	defer closer()

	l.Debug().Msg("to fallback")
	assert.Contains(t, buf.String(), "to fallback")
}

func TestNew_BadLevel(t *testing.T) {
	_, closer, err := New("loud", "", nil)
	assert.Error(t, err)
	assert.NotNil(t, closer)
}
