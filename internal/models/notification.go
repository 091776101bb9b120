package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an in-app notification produced by a notify action. The
// metadata map carries a deep link to the originating record; a nil ReadAt
// means unread.
type Notification struct {
	BaseModel

	UserID       string  `gorm:"type:uuid;index;not null" json:"user_id"`
	WorkspaceID  string  `gorm:"type:uuid;index;not null" json:"workspace_id"`
	AutomationID *string `gorm:"type:uuid;index" json:"automation_id"`
	RecordID     *string `gorm:"type:uuid" json:"record_id"`

	Type     string            `gorm:"type:varchar(64);not null" json:"type"`
	Title    string            `gorm:"type:varchar(255);not null" json:"title"`
	Body     string            `gorm:"type:text" json:"body"`
	Metadata datatypes.JSONMap `json:"metadata,omitempty"`

	ReadAt *time.Time `json:"read_at"`
}

// IsUnread reports whether the notification has not been read yet.
func (n *Notification) IsUnread() bool {
	return n.ReadAt == nil
}
