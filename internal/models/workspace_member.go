package models

// WorkspaceMember links a user to a workspace with a role.
type WorkspaceMember struct {
	BaseModel

	WorkspaceID string `gorm:"type:uuid;index:idx_workspace_user,unique;not null" json:"workspace_id"`
	UserID      string `gorm:"type:uuid;index:idx_workspace_user,unique;not null" json:"user_id"`
	RoleID      string `gorm:"type:uuid;index;not null" json:"role_id"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}
