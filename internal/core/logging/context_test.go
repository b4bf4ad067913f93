package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionID(t *testing.T) {
	ctx := WithSessionID(context.Background(), "3f1c")
	assert.Equal(t, "3f1c", GetSessionID(ctx))
	assert.Empty(t, GetSessionID(context.Background()))
}

func TestDocumentID(t *testing.T) {
	ctx := WithDocumentID(context.Background(), 42)

	id, ok := GetDocumentID(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	_, ok = GetDocumentID(context.Background())
	assert.False(t, ok)
}

func TestContext_BothValues(t *testing.T) {
	ctx := WithSessionID(context.Background(), "sess")
	ctx = WithDocumentID(ctx, 7)

	assert.Equal(t, "sess", GetSessionID(ctx))
	id, _ := GetDocumentID(ctx)
	assert.Equal(t, uint64(7), id)
}
