// Package retention periodically prunes old records from the generation archive.
package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultSchedule = "@hourly"

var (
	ErrScheduleRequired = errors.New("retention schedule is required")
	ErrInvalidMaxAge    = errors.New("retention max age must be positive")
)

// Pruner deletes records created before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int, error)
}

// Job runs Pruner.Prune on a cron schedule, keeping records younger than MaxAge.
type Job struct {
	Schedule string
	MaxAge   time.Duration

	pruner Pruner
	now    func() time.Time
	cron   *cron.Cron
	logger *slog.Logger
}

func New(pruner Pruner, schedule string, maxAge time.Duration, logger *slog.Logger) (*Job, error) {
	job := &Job{
		Schedule: schedule,
		MaxAge:   maxAge,
		pruner:   pruner,
		now:      time.Now,
		logger: logger.With(
			"module", "retention",
			"schedule", schedule,
			"max_age", maxAge,
		),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

func (j *Job) Validate() error {
	if j.Schedule == "" {
		return ErrScheduleRequired
	}

	if j.MaxAge <= 0 {
		return ErrInvalidMaxAge
	}

	if _, err := cron.ParseStandard(j.Schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	return nil
}

// Start schedules the job. Runs are skipped while a previous one is still pruning.
func (j *Job) Start(ctx context.Context) error {
	j.logger.InfoContext(ctx, "Starting retention job")

	j.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	id, err := j.cron.AddFunc(j.Schedule, func() {
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Retention run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add retention job: %w", err)
	}

	j.logger.DebugContext(ctx, "Added cron entry", "id", id)
	j.cron.Start()

	return nil
}

// RunOnce prunes everything older than MaxAge.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.MaxAge)

	removed, err := j.pruner.Prune(ctx, cutoff)
	if err != nil {
		return removed, err
	}

	j.logger.InfoContext(ctx, "Pruned archive", "removed", removed, "before", cutoff)

	return removed, nil
}

// Stop stops the scheduler and waits for a running prune to finish or ctx to end.
func (j *Job) Stop(ctx context.Context) error {
	j.logger.InfoContext(ctx, "Stopping retention job")

	if j.cron == nil {
		return nil
	}

	select {
	case <-j.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
