package models

import "gorm.io/datatypes"

// TriggerKind enumerates the events and schedules that can fire an automation.
type TriggerKind string

const (
	TriggerRecordCreated TriggerKind = "record_created"
	TriggerRecordUpdated TriggerKind = "record_updated"
	TriggerDateReached   TriggerKind = "date_reached"
	TriggerCommentAdded  TriggerKind = "comment_added"
	TriggerStatusChanged TriggerKind = "status_changed"
)

// TriggerKinds lists every supported trigger kind.
var TriggerKinds = []TriggerKind{
	TriggerRecordCreated,
	TriggerRecordUpdated,
	TriggerDateReached,
	TriggerCommentAdded,
	TriggerStatusChanged,
}

// Valid reports whether the kind is a member of the closed enumeration.
func (k TriggerKind) Valid() bool {
	for _, kind := range TriggerKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// AutomationTrigger makes an automation eligible for evaluation. FieldName is
// the watched field (required for date_reached, optional change filter for
// record_updated); OffsetDays shifts the target date for date_reached.
type AutomationTrigger struct {
	BaseModel

	AutomationID string         `gorm:"type:uuid;index;not null" json:"automation_id"`
	Kind         TriggerKind    `gorm:"type:varchar(32);index;not null" json:"kind"`
	FieldName    string         `json:"field_name"`
	OffsetDays   int            `json:"offset_days"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
}

// IsDateTrigger reports whether the trigger is schedule driven.
func (t *AutomationTrigger) IsDateTrigger() bool {
	return t.Kind == TriggerDateReached
}

// IsEventTrigger reports whether the trigger reacts to record events.
func (t *AutomationTrigger) IsEventTrigger() bool {
	switch t.Kind {
	case TriggerRecordCreated, TriggerRecordUpdated, TriggerCommentAdded, TriggerStatusChanged:
		return true
	}
	return false
}

// MatchesEvent reports whether an event of the given kind with the given
// changed fields satisfies this trigger. record_updated triggers with a
// FieldName only match when that field changed; status_changed requires a
// changed "status" entry.
func (t *AutomationTrigger) MatchesEvent(kind TriggerKind, changed map[string]any) bool {
	if t.Kind != kind || !t.IsEventTrigger() {
		return false
	}

	switch kind {
	case TriggerRecordUpdated:
		if t.FieldName == "" {
			return true
		}
		_, ok := changed[t.FieldName]
		return ok
	case TriggerStatusChanged:
		_, ok := changed["status"]
		return ok
	default:
		return true
	}
}
