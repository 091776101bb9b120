package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/models"
	apperrors "github.com/workbasehq/workbase/pkg/errors"
)

// DirectoryService resolves users and workspace memberships for action
// targets.
type DirectoryService struct {
	db *gorm.DB
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(db *gorm.DB) (*DirectoryService, error) {
	if db == nil {
		return nil, errors.New("directory service: db is required")
	}
	return &DirectoryService{db: db}, nil
}

// UserByID loads a single user.
func (s *DirectoryService) UserByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.ErrNotFound
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("directory service: load user: %w", err)
	}
	return &user, nil
}

// MembersWithRole returns every workspace member holding the named role.
func (s *DirectoryService) MembersWithRole(ctx context.Context, workspaceID, roleName string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return nil, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Joins("JOIN workspace_members ON workspace_members.user_id = users.id").
		Joins("JOIN roles ON roles.id = workspace_members.role_id").
		Where("workspace_members.workspace_id = ? AND roles.name = ?", workspaceID, roleName).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("directory service: members with role %q: %w", roleName, err)
	}
	return users, nil
}

// Creator resolves the user that created the record, nil when unknown.
func (s *DirectoryService) Creator(ctx context.Context, record *models.Record) (*models.User, error) {
	if record == nil || record.CreatedBy == nil || *record.CreatedBy == "" {
		return nil, nil
	}

	user, err := s.UserByID(ctx, *record.CreatedBy)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
