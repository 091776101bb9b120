package models

import "gorm.io/datatypes"

// ActionKind enumerates the side effects an automation may execute.
type ActionKind string

const (
	ActionNotify       ActionKind = "notify"
	ActionEmail        ActionKind = "email"
	ActionUpdateField  ActionKind = "update_field"
	ActionCreateRecord ActionKind = "create_record"
)

// ActionKinds lists every supported action kind.
var ActionKinds = []ActionKind{
	ActionNotify,
	ActionEmail,
	ActionUpdateField,
	ActionCreateRecord,
}

// Valid reports whether the kind is a member of the closed enumeration.
func (k ActionKind) Valid() bool {
	for _, kind := range ActionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// AutomationAction is one side-effecting step of an automation. Target holds
// comma-separated target descriptors (field:<name>, role:<name>, a user id or
// "creator"); Config carries kind specific keys such as title, body, field
// and value. Channel is carried for display only.
type AutomationAction struct {
	BaseModel

	AutomationID string            `gorm:"type:uuid;index;not null" json:"automation_id"`
	Kind         ActionKind        `gorm:"type:varchar(32);not null" json:"kind"`
	Target       string            `json:"target"`
	Channel      string            `json:"channel"`
	Config       datatypes.JSONMap `json:"config"`
	Position     int               `gorm:"default:0;index" json:"position"`
}

// ConfigString reads a string value from the action config.
func (a *AutomationAction) ConfigString(key string) (string, bool) {
	if a.Config == nil {
		return "", false
	}
	value, ok := a.Config[key]
	if !ok || value == nil {
		return "", false
	}
	return Stringify(value), true
}
