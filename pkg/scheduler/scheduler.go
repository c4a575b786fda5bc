// Package scheduler runs a job on a fixed interval until its context ends.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

type Scheduler struct {
	Interval time.Duration
	Job      Job
	Logger   *slog.Logger
}

// Run waits one interval, runs the job, and repeats. A failing or panicking
// cycle is logged and the loop carries on. Run returns when ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %s", s.Interval)
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	logger.Info("Scheduler started", "interval", s.Interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			start := time.Now()
			if err := s.runOnce(ctx); err != nil {
				logger.Warn("Scheduled cycle failed", "error", err, "duration", time.Since(start))
				continue
			}
			logger.Info("Scheduled cycle finished", "duration", time.Since(start))
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Job(ctx)
}
