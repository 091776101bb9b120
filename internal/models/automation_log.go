package models

import (
	"time"

	"gorm.io/datatypes"
)

// RunStatus is the outcome of one automation evaluation.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
	RunSkipped RunStatus = "skipped"
)

// AutomationLog is an append-only execution record. Besides serving as the
// audit trail it is the dedupe source of truth for the date-based scheduler
// ("already ran for this record today").
type AutomationLog struct {
	BaseModel

	AutomationID string            `gorm:"type:uuid;index;not null" json:"automation_id"`
	RecordID     *string           `gorm:"type:uuid;index" json:"record_id"`
	Status       RunStatus         `gorm:"type:varchar(16);index;not null" json:"status"`
	Message      string            `json:"message"`
	Context      datatypes.JSONMap `json:"context,omitempty"`
	ExecutedAt   time.Time         `gorm:"index;not null" json:"executed_at"`
}
