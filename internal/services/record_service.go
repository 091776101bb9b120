package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/models"
	apperrors "github.com/workbasehq/workbase/pkg/errors"
)

// RecordService is the engine's view of the record store: query records for
// date-trigger matching and merge single-field updates back in.
type RecordService struct {
	db *gorm.DB
}

// NewRecordService constructs a RecordService.
func NewRecordService(db *gorm.DB) (*RecordService, error) {
	if db == nil {
		return nil, errors.New("record service: db is required")
	}
	return &RecordService{db: db}, nil
}

// Get loads a record with its collection.
func (s *RecordService) Get(ctx context.Context, id string) (*models.Record, error) {
	ctx = ensureContext(ctx)

	var record models.Record
	if err := s.db.WithContext(ctx).
		Preload("Collection").
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("record service: load record: %w", err)
	}
	return &record, nil
}

// ListWithField returns the collection's records carrying a non-null value at
// the given data key.
func (s *RecordService) ListWithField(ctx context.Context, collectionID, field string) ([]models.Record, error) {
	ctx = ensureContext(ctx)

	field = strings.TrimSpace(field)
	if field == "" {
		return nil, errors.New("record service: field is required")
	}

	var records []models.Record
	if err := s.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Where(datatypes.JSONQuery("data").HasKey(field)).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("record service: list records with %q: %w", field, err)
	}

	// JSON null survives a has-key check on some drivers; drop those here.
	out := records[:0]
	for _, record := range records {
		if record.Data[field] == nil {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// MergeData sets a single key in the record's data payload and persists the
// whole payload, leaving every other key untouched.
func (s *RecordService) MergeData(ctx context.Context, record *models.Record, field string, value any) error {
	ctx = ensureContext(ctx)

	if record == nil {
		return errors.New("record service: record is required")
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return errors.New("record service: field is required")
	}

	data := record.Data
	if data == nil {
		data = datatypes.JSONMap{}
	}
	data[field] = value

	if err := s.db.WithContext(ctx).
		Model(&models.Record{}).
		Where("id = ?", record.ID).
		Update("data", data).Error; err != nil {
		return fmt.Errorf("record service: merge data: %w", err)
	}

	record.Data = data
	return nil
}
