package models

// Workspace is the tenant boundary: collections, automations and
// notifications all hang off one workspace.
type Workspace struct {
	BaseModel

	Name    string  `gorm:"not null" json:"name"`
	Slug    string  `gorm:"uniqueIndex;not null" json:"slug"`
	OwnerID *string `gorm:"type:uuid" json:"owner_id"`

	Members     []WorkspaceMember `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Collections []Collection      `gorm:"foreignKey:WorkspaceID" json:"-"`
}
