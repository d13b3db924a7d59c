package sync

import (
	"context"
	"time"
)

// Run executes SyncAll on a fixed interval until ctx is cancelled. A
// sync already in flight when cancellation arrives runs to completion;
// only the loop stops. Failures are recorded by SyncAll and the next
// tick retries from scratch.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Info().Dur("interval", interval).Msg("Background sync started")
	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("Background sync stopped")
			return
		case <-ticker.C:
			e.SyncAll(ctx)
		}
	}
}
