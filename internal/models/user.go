package models

// User is a workspace member able to receive notifications and emails.
type User struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Memberships []WorkspaceMember `gorm:"foreignKey:UserID" json:"-"`
}
