package schedule

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/workbasehq/workbase/internal/services"
	"github.com/workbasehq/workbase/pkg/logger"
)

const (
	defaultBatchSpec        = "@daily"
	defaultPruneSpec        = "@weekly"
	defaultLogRetentionDays = 90
)

// Runner drives the recurring background work: the date-based automation
// batch and automation log retention.
type Runner struct {
	scheduler *services.Scheduler
	logs      *services.LogService
	cron      *cron.Cron
	log       *zap.Logger
	retention int

	batchSchedule string
	pruneSchedule string
}

// Option customises the Runner.
type Option func(*Runner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(r *Runner) {
		if c != nil {
			r.cron = c
		}
	}
}

// WithBatchSchedule overrides the cron specification for the date-based batch.
func WithBatchSchedule(spec string) Option {
	return func(r *Runner) {
		if spec != "" {
			r.batchSchedule = spec
		}
	}
}

// WithPruneSchedule overrides the cron specification for log pruning.
func WithPruneSchedule(spec string) Option {
	return func(r *Runner) {
		if spec != "" {
			r.pruneSchedule = spec
		}
	}
}

// WithLogRetentionDays adjusts how long automation logs are retained.
// Non-positive values disable pruning.
func WithLogRetentionDays(days int) Option {
	return func(r *Runner) {
		r.retention = days
	}
}

// NewRunner constructs a Runner with sensible defaults. The log service may
// be nil, in which case the pruning job is skipped.
func NewRunner(scheduler *services.Scheduler, logs *services.LogService, opts ...Option) (*Runner, error) {
	if scheduler == nil {
		return nil, errors.New("schedule: scheduler is required")
	}

	r := &Runner{
		scheduler:     scheduler,
		logs:          logs,
		retention:     defaultLogRetentionDays,
		batchSchedule: defaultBatchSpec,
		pruneSchedule: defaultPruneSpec,
		log:           logger.WithModule("schedule"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cron == nil {
		r.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return r, nil
}

// Start registers the jobs with the cron scheduler and launches it.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc(r.batchSchedule, func() {
		ctx := context.Background()
		report, err := r.scheduler.RunDateBased(ctx)
		if err != nil {
			r.log.Warn("date-based batch failed", zap.Error(err))
			return
		}
		r.log.Info("date-based batch complete",
			zap.Int("total", report.Total),
			zap.Int("executed", report.Executed),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
	}); err != nil {
		return err
	}

	if r.logs != nil && r.retention > 0 {
		if _, err := r.cron.AddFunc(r.pruneSchedule, func() {
			ctx := context.Background()
			removed, err := r.logs.PruneOlderThan(ctx, r.retention)
			if err != nil {
				r.log.Warn("log pruning failed", zap.Error(err))
				return
			}
			if removed > 0 {
				r.log.Info("pruned automation logs", zap.Int64("removed", removed))
			}
		}); err != nil {
			return err
		}
	}

	r.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (r *Runner) Stop() context.Context {
	if r.cron == nil {
		return context.Background()
	}
	return r.cron.Stop()
}

// RunOnce executes every configured job sequentially. Used by the CLI's run
// command and during graceful shutdown.
func (r *Runner) RunOnce(ctx context.Context) (services.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	report, err := r.scheduler.RunDateBased(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	if r.logs != nil && r.retention > 0 {
		if _, err := r.logs.PruneOlderThan(ctx, r.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return report, errs
}
