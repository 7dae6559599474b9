package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
	Interval() time.Duration
}

// JobManager runs the registered jobs in the background. Session controllers
// live in the memory of one instance, so every instance runs every job for
// its own controllers.
type JobManager struct {
	logger *slog.Logger

	mu      sync.Mutex
	jobs    []Job
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewJobManager(logger *slog.Logger) *JobManager {
	return &JobManager{
		logger:  logger,
		running: make(map[string]context.CancelFunc),
	}
}

func (jm *JobManager) Register(job Job) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	jm.jobs = append(jm.jobs, job)
}

// Start launches every registered job that is not already running. Jobs stop
// when ctx is cancelled or on Shutdown.
func (jm *JobManager) Start(ctx context.Context) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	for _, job := range jm.jobs {
		name := job.Name()
		if _, ok := jm.running[name]; ok {
			continue
		}

		jobCtx, cancel := context.WithCancel(ctx)
		jm.running[name] = cancel

		jm.wg.Go(func() {
			jm.run(jobCtx, job)
		})
	}
}

func (jm *JobManager) run(ctx context.Context, job Job) {
	logger := jm.logger.With("job", job.Name())
	logger.Info("job started", "interval", job.Interval())

	err := job.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Debug("job stopped")
	default:
		logger.Error("job exited", "error", err)
	}
}

// Shutdown cancels all jobs and waits for them until ctx expires.
func (jm *JobManager) Shutdown(ctx context.Context) {
	jm.mu.Lock()
	for name, cancel := range jm.running {
		cancel()
		delete(jm.running, name)
	}
	jm.mu.Unlock()

	done := make(chan struct{})
	go func() {
		jm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		jm.logger.Debug("all jobs stopped")
	case <-ctx.Done():
		jm.logger.Warn("jobs did not stop before the shutdown deadline")
	}
}

// runEvery calls fn once immediately and then on every tick until ctx is
// done. Errors are logged and the loop carries on.
func runEvery(ctx context.Context, interval time.Duration, logger *slog.Logger, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("job iteration failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
