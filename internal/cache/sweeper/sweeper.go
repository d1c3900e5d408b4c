// Package sweeper periodically purges expired entries from the response cache.
package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/davidbz/ideaforge/internal/observability"
)

// Cleaner removes expired entries and reports how many were removed.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// Sweeper runs a Cleaner on a fixed interval.
type Sweeper struct {
	cleaner  Cleaner
	interval time.Duration
}

// New creates a sweeper. A non-positive interval disables sweeping.
func New(cleaner Cleaner, interval time.Duration) *Sweeper {
	return &Sweeper{
		cleaner:  cleaner,
		interval: interval,
	}
}

// Run sweeps until ctx is cancelled. Individual sweep failures are logged and
// do not stop the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	logger := observability.FromContext(ctx)

	if s.interval <= 0 {
		logger.Info("cache sweeper disabled")
		<-ctx.Done()
		return nil
	}

	logger.Info("cache sweeper started", observability.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("cache sweeper stopped")
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	logger := observability.FromContext(ctx)

	removed, err := s.cleaner.CleanupExpired(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Warn("cache sweep failed", observability.Error(err))
		return
	}

	if removed > 0 {
		logger.Info("cache sweep removed expired entries", observability.Int("removed", removed))
	}
}
