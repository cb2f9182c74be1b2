package expiry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MatchExpirer is implemented by the match repository.
type MatchExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// Job retires matches past their TTL. The sweep is a single conditional
// UPDATE, so repeated or concurrent runs only mutate rows once.
type Job struct {
	store    MatchExpirer
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func New(store MatchExpirer, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Sweep expires every due match and returns the count affected.
func (j *Job) Sweep(ctx context.Context) (int64, error) {
	if j.store == nil {
		return 0, fmt.Errorf("match expirer is not configured")
	}

	expired, err := j.store.ExpireDue(ctx, j.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep expired matches: %w", err)
	}

	if expired > 0 {
		j.logger.Info("expired stale matches", zap.Int64("count", expired))
	}
	return expired, nil
}

// Run sweeps on a fixed interval until the context is cancelled. Errors are
// logged and the loop keeps going; the next tick retries.
func (j *Job) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Warn("match expiry sweep failed", zap.Error(err))
			}
		}
	}
}
