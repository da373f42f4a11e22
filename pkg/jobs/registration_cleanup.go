package jobs

import (
	"context"
	"time"

	"proxedu/pkg/logger"
)

const cleanupTimeout = 10 * time.Second

// Cleaner removes pending registrations that expired without being claimed.
type Cleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

// StartRegistrationCleanupJob runs the cleaner on every tick until ctx is done.
// The returned channel is closed once the loop has exited.
func StartRegistrationCleanupJob(ctx context.Context, interval time.Duration, cleaner Cleaner, log logger.ILogger) <-chan struct{} {
	if interval <= 0 {
		interval = time.Minute
	}

	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, cleanupTimeout)
				removed, err := cleaner.Cleanup(tickCtx)
				cancel()
				if err != nil {
					log.Error("registration cleanup failed", logger.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("expired registrations removed", logger.Int("removed", removed))
				}
			}
		}
	}()
	return done
}
