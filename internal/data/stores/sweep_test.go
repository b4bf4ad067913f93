package stores

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepExpired(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestStartSweep(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "sweeps on every tick"},
		{name: "keeps going after a failure", err: errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &countingSweeper{err: tt.err}
			ctx, cancel := context.WithCancel(context.Background())

			done := make(chan struct{})
			go func() {
				StartSweep(ctx, s, 5*time.Millisecond, zerolog.Nop())
				close(done)
			}()

			assert.Eventually(t, func() bool { return s.calls.Load() >= 2 }, time.Second, time.Millisecond)
			cancel()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("sweep did not stop after cancel")
			}
		})
	}
}
