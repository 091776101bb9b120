package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/models"
)

// LogService persists automation execution outcomes. The rows double as the
// scheduler's same-day dedupe source of truth, so writes happen synchronously
// before the evaluation loop advances.
type LogService struct {
	db  *gorm.DB
	now func() time.Time
}

// LogOption customises the LogService.
type LogOption func(*LogService)

// WithLogClock overrides the clock used for execution timestamps.
func WithLogClock(now func() time.Time) LogOption {
	return func(s *LogService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewLogService constructs a LogService.
func NewLogService(db *gorm.DB, opts ...LogOption) (*LogService, error) {
	if db == nil {
		return nil, errors.New("log service: db is required")
	}

	s := &LogService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Success records a successful automation run.
func (s *LogService) Success(ctx context.Context, automationID string, recordID *string, message string, context map[string]any) error {
	return s.write(ctx, models.RunSuccess, automationID, recordID, message, context)
}

// Skipped records an evaluation that did not run actions.
func (s *LogService) Skipped(ctx context.Context, automationID string, recordID *string, message string, context map[string]any) error {
	return s.write(ctx, models.RunSkipped, automationID, recordID, message, context)
}

// Failed records an evaluation aborted by an error.
func (s *LogService) Failed(ctx context.Context, automationID string, recordID *string, message string, context map[string]any) error {
	return s.write(ctx, models.RunFailed, automationID, recordID, message, context)
}

func (s *LogService) write(ctx context.Context, status models.RunStatus, automationID string, recordID *string, message string, context map[string]any) error {
	ctx = ensureContext(ctx)

	entry := models.AutomationLog{
		AutomationID: automationID,
		RecordID:     recordID,
		Status:       status,
		Message:      message,
		ExecutedAt:   s.now(),
	}
	if context != nil {
		entry.Context = datatypes.JSONMap(context)
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("log service: write %s log: %w", status, err)
	}
	return nil
}

// ExecutedToday reports whether a success log exists for the automation and
// record within the calendar day containing the given time.
func (s *LogService) ExecutedToday(ctx context.Context, automationID, recordID string, day time.Time) (bool, error) {
	ctx = ensureContext(ctx)

	start := dayStart(day)
	end := start.AddDate(0, 0, 1)

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.AutomationLog{}).
		Where("automation_id = ? AND record_id = ? AND status = ?", automationID, recordID, models.RunSuccess).
		Where("executed_at >= ? AND executed_at < ?", start, end).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("log service: executed today: %w", err)
	}

	return count > 0, nil
}

// PruneOlderThan deletes log rows executed more than the given number of days
// ago and reports how many were removed. Success rows inside the current day
// are never touched, so the scheduler's dedupe window stays intact.
func (s *LogService) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	ctx = ensureContext(ctx)

	if days <= 0 {
		return 0, errors.New("log service: retention days must be positive")
	}

	cutoff := dayStart(s.now()).AddDate(0, 0, -days)

	result := s.db.WithContext(ctx).
		Where("executed_at < ?", cutoff).
		Delete(&models.AutomationLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("log service: prune logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListLogsInput defines filters for querying automation logs.
type ListLogsInput struct {
	AutomationID string
	Status       models.RunStatus
	Limit        int
	Offset       int
}

// List returns automation logs ordered by execution time descending.
func (s *LogService) List(ctx context.Context, input ListLogsInput) ([]models.AutomationLog, error) {
	ctx = ensureContext(ctx)

	if input.AutomationID == "" {
		return nil, errors.New("log service: automation id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).
		Where("automation_id = ?", input.AutomationID).
		Order("executed_at DESC").
		Limit(limit).
		Offset(offset)

	if input.Status != "" {
		query = query.Where("status = ?", input.Status)
	}

	var rows []models.AutomationLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("log service: list logs: %w", err)
	}
	return rows, nil
}
