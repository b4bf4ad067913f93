package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger from the global logger with a component
// identifier.
func Component(name string) zerolog.Logger {
	return For(log.Logger, name)
}

// For derives a component logger from l. Uses the "cmp" key for consistency
// with zerolog conventions.
func For(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("cmp", name).Logger()
}
