package logging

import "context"

type contextKey string

const (
	sessionIDKey  contextKey = "session_id"
	documentIDKey contextKey = "document_id"
)

// WithSessionID adds an editor session ID to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithDocumentID adds a document ID to the context.
func WithDocumentID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, documentIDKey, id)
}

// GetSessionID retrieves the session ID from the context.
// Returns empty string if not present.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetDocumentID retrieves the document ID from the context.
func GetDocumentID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(documentIDKey).(uint64)
	return id, ok
}
