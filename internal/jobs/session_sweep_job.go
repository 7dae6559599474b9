package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finance-dashboard/internal/authsession"
)

// SessionSweepJob drops controllers of clients that have been idle for
// longer than their session could still be alive.
type SessionSweepJob struct {
	registry *authsession.Registry
	interval time.Duration
	idle     time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewSessionSweepJob(registry *authsession.Registry, interval, idle time.Duration, logger *slog.Logger) *SessionSweepJob {
	return &SessionSweepJob{
		registry: registry,
		interval: interval,
		idle:     idle,
		logger:   logger,
		now:      time.Now,
	}
}

func (j *SessionSweepJob) Name() string {
	return "session_sweep"
}

func (j *SessionSweepJob) Interval() time.Duration {
	return j.interval
}

func (j *SessionSweepJob) Run(ctx context.Context) error {
	if j.interval <= 0 || j.idle <= 0 {
		return fmt.Errorf("session sweep job interval and idle timeout must be positive")
	}

	runEvery(ctx, j.interval, j.logger, func(context.Context) error {
		if removed := j.registry.Sweep(j.idle, j.now()); removed > 0 {
			j.logger.Info("swept idle session controllers", "count", removed, "remaining", j.registry.Len())
		}
		return nil
	})
	return nil
}
