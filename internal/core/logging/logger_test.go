package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	var buf bytes.Buffer
	l := For(zerolog.New(&buf), "recovery")

	l.Info().Msg("persisted")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "recovery", out["cmp"])
}

func TestComponent_UsesGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	t.Cleanup(func() { log.Logger = orig })
	log.Logger = zerolog.New(&buf)

	Component("tui").Info().Msg("started")

	assert.Contains(t, buf.String(), `"cmp":"tui"`)
}
