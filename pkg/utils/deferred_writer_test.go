package utils

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredWriter_HoldsUntilFlush(t *testing.T) {
	d := &DeferredWriter{}
	var out bytes.Buffer

	_, err := d.Write([]byte("profiler on :6060\n"))
	require.NoError(t, err)
	assert.Zero(t, out.Len(), "nothing reaches the destination before Flush")

	require.NoError(t, d.Flush(&out))
	assert.Equal(t, "profiler on :6060\n", out.String())
}

func TestDeferredWriter_WritesThroughAfterFlush(t *testing.T) {
	d := &DeferredWriter{}
	var out bytes.Buffer

	require.NoError(t, d.Flush(&out))
	assert.Zero(t, out.Len())

	n, err := d.Write([]byte("late"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "late", out.String())
}

func TestDeferredWriter_ConcurrentWrites(t *testing.T) {
	d := &DeferredWriter{}
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Write([]byte("x"))
		}()
	}
	wg.Wait()

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Len(t, out.String(), 100)
}
