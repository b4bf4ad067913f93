package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies session_id and document_id from the event context into
// the log event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if sessionID := GetSessionID(ctx); sessionID != "" {
		e.Str("session_id", sessionID)
	}

	if id, ok := GetDocumentID(ctx); ok {
		e.Uint64("document_id", id)
	}
}
