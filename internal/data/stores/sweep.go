package stores

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/quill/internal/core/logging"
)

// Sweeper deletes expired entries.
type Sweeper interface {
	SweepExpired(ctx context.Context) error
}

// StartSweep periodically sweeps expired entries from s. It blocks until the
// context is cancelled.
func StartSweep(ctx context.Context, s Sweeper, interval time.Duration, logger zerolog.Logger) {
	log := logging.For(logger, "sweep")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.SweepExpired(ctx)
			if err == nil || ctx.Err() != nil {
				continue
			}
			// Busy means another writer holds the lock; the next tick retries.
			evt := log.Warn()
			if Classify(err) == FaultBusy {
				evt = log.Debug()
			}
			evt.Err(err).Msg("kv sweep failed")
		}
	}
}
