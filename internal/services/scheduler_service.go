package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/models"
	apperrors "github.com/workbasehq/workbase/pkg/errors"
	"github.com/workbasehq/workbase/pkg/logger"
	"github.com/workbasehq/workbase/pkg/metrics"
)

// Report aggregates the outcome counters of one date-based batch.
type Report struct {
	Total    int `json:"total"`
	Executed int `json:"executed"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Scheduler drives time-based triggers in batch and dispatches record events
// to matching automations. Evaluation is sequential: each (automation,
// record) pair completes, including its log write, before the next starts.
type Scheduler struct {
	db        *gorm.DB
	evaluator *Evaluator
	records   *RecordService
	logs      *LogService
	now       func() time.Time
	log       *zap.Logger
}

// SchedulerOption customises the Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock overrides the clock used for target-date math and dedupe windows.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler constructs a Scheduler.
func NewScheduler(db *gorm.DB, evaluator *Evaluator, records *RecordService, logs *LogService, opts ...SchedulerOption) (*Scheduler, error) {
	if db == nil {
		return nil, errors.New("scheduler: db is required")
	}
	if evaluator == nil {
		return nil, errors.New("scheduler: evaluator is required")
	}
	if records == nil {
		return nil, errors.New("scheduler: record service is required")
	}
	if logs == nil {
		return nil, errors.New("scheduler: log service is required")
	}

	s := &Scheduler{
		db:        db,
		evaluator: evaluator,
		records:   records,
		logs:      logs,
		now:       time.Now,
		log:       logger.WithModule("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RunDateBased evaluates every active automation owning a date_reached
// trigger. One automation's failure increments the Failed counter and never
// aborts the batch. Running the batch more than once per day is safe: records
// already logged successful today are skipped.
func (s *Scheduler) RunDateBased(ctx context.Context) (Report, error) {
	ctx = ensureContext(ctx)
	started := time.Now()
	defer func() {
		metrics.SchedulerDuration.Observe(time.Since(started).Seconds())
	}()

	var report Report

	sub := s.db.Model(&models.AutomationTrigger{}).
		Select("automation_id").
		Where("kind = ?", models.TriggerDateReached)

	var automations []models.Automation
	if err := s.db.WithContext(ctx).
		Preload("Triggers").
		Preload("Conditions").
		Preload("Actions").
		Preload("Collection").
		Where("is_active = ?", true).
		Where("id IN (?)", sub).
		Find(&automations).Error; err != nil {
		return report, fmt.Errorf("scheduler: load date automations: %w", err)
	}

	for i := range automations {
		automation := &automations[i]
		report.Total++

		if err := s.processDateAutomation(ctx, automation, &report); err != nil {
			report.Failed++
			s.log.Error("failed to process automation",
				zap.String("automation_id", automation.ID),
				zap.Error(err))
		}
	}

	s.log.Info("date-based batch finished",
		zap.Int("total", report.Total),
		zap.Int("executed", report.Executed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))

	return report, nil
}

func (s *Scheduler) processDateAutomation(ctx context.Context, automation *models.Automation, report *Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduler: automation %s panicked: %v", automation.ID, r)
		}
	}()

	today := dayStart(s.now())

	for _, trigger := range automation.TriggersOfKind(models.TriggerDateReached) {
		if trigger.FieldName == "" {
			continue
		}

		targetDate := today.AddDate(0, 0, trigger.OffsetDays)

		records, err := s.records.ListWithField(ctx, automation.CollectionID, trigger.FieldName)
		if err != nil {
			return err
		}

		for i := range records {
			record := &records[i]

			value, ok := parseDate(record.Data[trigger.FieldName])
			if !ok || !sameDay(value, targetDate) {
				continue
			}

			executed, err := s.logs.ExecutedToday(ctx, automation.ID, record.ID, s.now())
			if err != nil {
				return err
			}
			if executed {
				report.Skipped++
				continue
			}

			if record.Collection == nil {
				record.Collection = automation.Collection
			}

			if s.evaluator.Evaluate(ctx, automation, record) {
				report.Executed++
			} else {
				report.Skipped++
			}
		}
	}

	return nil
}

// ProcessEvent dispatches a record mutation event to the collection's active
// automations. Callers are expected to invoke this at most once per actual
// event; no same-day dedupe applies here.
func (s *Scheduler) ProcessEvent(ctx context.Context, kind models.TriggerKind, record *models.Record, changed map[string]any) error {
	ctx = ensureContext(ctx)

	if record == nil {
		return apperrors.NewInvalidInput("record is required")
	}
	if !kind.Valid() || kind == models.TriggerDateReached {
		return apperrors.NewInvalidInput(fmt.Sprintf("unsupported event kind %q", kind))
	}

	sub := s.db.Model(&models.AutomationTrigger{}).
		Select("automation_id").
		Where("kind = ?", kind)

	var automations []models.Automation
	if err := s.db.WithContext(ctx).
		Preload("Triggers").
		Preload("Conditions").
		Preload("Actions").
		Preload("Collection").
		Where("is_active = ?", true).
		Where("collection_id = ?", record.CollectionID).
		Where("id IN (?)", sub).
		Find(&automations).Error; err != nil {
		return fmt.Errorf("scheduler: load event automations: %w", err)
	}

	for i := range automations {
		automation := &automations[i]

		matched := false
		for _, trigger := range automation.TriggersOfKind(kind) {
			if trigger.MatchesEvent(kind, changed) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		if record.Collection == nil {
			record.Collection = automation.Collection
		}
		s.evaluator.Evaluate(ctx, automation, record)
	}

	return nil
}
