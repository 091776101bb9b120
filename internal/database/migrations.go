package database

import (
	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Role{},
		&models.WorkspaceMember{},
		&models.Collection{},
		&models.Record{},
		&models.Automation{},
		&models.AutomationTrigger{},
		&models.AutomationCondition{},
		&models.AutomationAction{},
		&models.AutomationLog{},
		&models.Notification{},
	)
}

// SeedData populates the built-in workspace roles.
func SeedData(db *gorm.DB) error {
	roles := []models.Role{
		{
			BaseModel:   models.BaseModel{ID: "admin"},
			Name:        "admin",
			Description: "Full workspace access",
			IsSystem:    true,
		},
		{
			BaseModel:   models.BaseModel{ID: "manager"},
			Name:        "manager",
			Description: "Manage collections and automations",
			IsSystem:    true,
		},
		{
			BaseModel:   models.BaseModel{ID: "member"},
			Name:        "member",
			Description: "Standard workspace access",
			IsSystem:    true,
		},
	}

	for _, role := range roles {
		if err := db.Where(models.Role{BaseModel: models.BaseModel{ID: role.ID}}).
			Attrs(role).
			FirstOrCreate(&models.Role{}).Error; err != nil {
			return err
		}
	}

	return nil
}
