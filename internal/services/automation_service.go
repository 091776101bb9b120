package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	govalidator "github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/models"
	apperrors "github.com/workbasehq/workbase/pkg/errors"
	"github.com/workbasehq/workbase/pkg/validator"
)

var automationRulesOnce sync.Once

func registerAutomationRules() {
	automationRulesOnce.Do(func() {
		_ = validator.RegisterValidation("trigger_kind", func(fl govalidator.FieldLevel) bool {
			return models.TriggerKind(fl.Field().String()).Valid()
		})
		_ = validator.RegisterValidation("condition_operator", func(fl govalidator.FieldLevel) bool {
			return models.Operator(fl.Field().String()).Valid()
		})
		_ = validator.RegisterValidation("action_kind", func(fl govalidator.FieldLevel) bool {
			return models.ActionKind(fl.Field().String()).Valid()
		})
	})
}

// TriggerInput describes one trigger of an automation definition.
type TriggerInput struct {
	Kind       string `json:"kind" validate:"required,trigger_kind"`
	FieldName  string `json:"field_name"`
	OffsetDays int    `json:"offset_days"`
}

// ConditionInput describes one condition of an automation definition.
type ConditionInput struct {
	Field    string `json:"field" validate:"required"`
	Operator string `json:"operator" validate:"required,condition_operator"`
	Value    string `json:"value"`
	Group    string `json:"condition_group"`
}

// ActionInput describes one action of an automation definition.
type ActionInput struct {
	Kind     string         `json:"kind" validate:"required,action_kind"`
	Target   string         `json:"target"`
	Channel  string         `json:"channel"`
	Config   map[string]any `json:"config"`
	Position int            `json:"position"`
}

// CreateAutomationInput defines a new automation with its rules.
type CreateAutomationInput struct {
	WorkspaceID  string `json:"workspace_id" validate:"required"`
	CollectionID string `json:"collection_id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	IsActive     *bool  `json:"is_active"`

	Triggers   []TriggerInput   `json:"triggers" validate:"dive"`
	Conditions []ConditionInput `json:"conditions" validate:"dive"`
	Actions    []ActionInput    `json:"actions" validate:"dive"`
}

// UpdateAutomationInput carries partial attribute updates.
type UpdateAutomationInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// ListAutomationsInput filters automation queries.
type ListAutomationsInput struct {
	WorkspaceID  string
	CollectionID string
	ActiveOnly   bool
}

// AutomationService manages automation definitions: the rules themselves, not
// their execution.
type AutomationService struct {
	db *gorm.DB
}

// NewAutomationService constructs an AutomationService.
func NewAutomationService(db *gorm.DB) (*AutomationService, error) {
	if db == nil {
		return nil, errors.New("automation service: db is required")
	}
	registerAutomationRules()
	return &AutomationService{db: db}, nil
}

// Create validates and persists a new automation with its triggers,
// conditions and actions.
func (s *AutomationService) Create(ctx context.Context, input CreateAutomationInput) (*models.Automation, error) {
	ctx = ensureContext(ctx)

	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewInvalidInput(err.Error())
	}
	if err := validateTriggerFields(input.Triggers); err != nil {
		return nil, err
	}

	var collection models.Collection
	if err := s.db.WithContext(ctx).First(&collection, "id = ?", input.CollectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("automation service: load collection: %w", err)
	}
	if collection.WorkspaceID != input.WorkspaceID {
		return nil, apperrors.NewInvalidInput("collection does not belong to the workspace")
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	automation := models.Automation{
		WorkspaceID:  input.WorkspaceID,
		CollectionID: input.CollectionID,
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		IsActive:     active,
		Triggers:     buildTriggers(input.Triggers),
		Conditions:   buildConditions(input.Conditions),
		Actions:      buildActions(input.Actions),
	}

	if err := s.db.WithContext(ctx).Create(&automation).Error; err != nil {
		return nil, fmt.Errorf("automation service: create automation: %w", err)
	}
	return &automation, nil
}

// Get loads an automation with its rules.
func (s *AutomationService) Get(ctx context.Context, id string) (*models.Automation, error) {
	ctx = ensureContext(ctx)

	var automation models.Automation
	if err := s.db.WithContext(ctx).
		Preload("Triggers").
		Preload("Conditions").
		Preload("Actions").
		First(&automation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("automation service: load automation: %w", err)
	}
	return &automation, nil
}

// List returns automations matching the filters, newest first.
func (s *AutomationService) List(ctx context.Context, input ListAutomationsInput) ([]models.Automation, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Triggers").
		Preload("Conditions").
		Preload("Actions").
		Order("created_at DESC")

	if input.WorkspaceID != "" {
		query = query.Where("workspace_id = ?", input.WorkspaceID)
	}
	if input.CollectionID != "" {
		query = query.Where("collection_id = ?", input.CollectionID)
	}
	if input.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var automations []models.Automation
	if err := query.Find(&automations).Error; err != nil {
		return nil, fmt.Errorf("automation service: list automations: %w", err)
	}
	return automations, nil
}

// Update applies partial attribute changes.
func (s *AutomationService) Update(ctx context.Context, id string, input UpdateAutomationInput) (*models.Automation, error) {
	ctx = ensureContext(ctx)

	automation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewInvalidInput("name must not be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return automation, nil
	}

	if err := s.db.WithContext(ctx).Model(automation).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("automation service: update automation: %w", err)
	}
	return s.Get(ctx, id)
}

// ReplaceRules swaps the automation's triggers, conditions and actions in one
// transaction.
func (s *AutomationService) ReplaceRules(ctx context.Context, id string, triggers []TriggerInput, conditions []ConditionInput, actions []ActionInput) (*models.Automation, error) {
	ctx = ensureContext(ctx)

	payload := struct {
		Triggers   []TriggerInput   `validate:"dive"`
		Conditions []ConditionInput `validate:"dive"`
		Actions    []ActionInput    `validate:"dive"`
	}{triggers, conditions, actions}
	if err := validator.ValidateStruct(payload); err != nil {
		return nil, apperrors.NewInvalidInput(err.Error())
	}
	if err := validateTriggerFields(triggers); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.AutomationTrigger{},
			&models.AutomationCondition{},
			&models.AutomationAction{},
		} {
			if err := tx.Where("automation_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		for _, trigger := range buildTriggers(triggers) {
			trigger.AutomationID = id
			if err := tx.Create(&trigger).Error; err != nil {
				return err
			}
		}
		for _, condition := range buildConditions(conditions) {
			condition.AutomationID = id
			if err := tx.Create(&condition).Error; err != nil {
				return err
			}
		}
		for _, action := range buildActions(actions) {
			action.AutomationID = id
			if err := tx.Create(&action).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("automation service: replace rules: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes an automation and everything it owns.
func (s *AutomationService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.AutomationTrigger{},
			&models.AutomationCondition{},
			&models.AutomationAction{},
			&models.AutomationLog{},
		} {
			if err := tx.Where("automation_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.Automation{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("automation service: delete automation: %w", err)
	}
	return nil
}

// validateTriggerFields enforces cross-field rules the tag validator cannot
// express: date_reached triggers need a watched field.
func validateTriggerFields(triggers []TriggerInput) error {
	for _, trigger := range triggers {
		if models.TriggerKind(trigger.Kind) == models.TriggerDateReached && strings.TrimSpace(trigger.FieldName) == "" {
			return apperrors.NewInvalidInput("date_reached triggers require a field name")
		}
	}
	return nil
}

func buildTriggers(inputs []TriggerInput) []models.AutomationTrigger {
	out := make([]models.AutomationTrigger, 0, len(inputs))
	for _, input := range inputs {
		out = append(out, models.AutomationTrigger{
			Kind:       models.TriggerKind(input.Kind),
			FieldName:  strings.TrimSpace(input.FieldName),
			OffsetDays: input.OffsetDays,
		})
	}
	return out
}

func buildConditions(inputs []ConditionInput) []models.AutomationCondition {
	out := make([]models.AutomationCondition, 0, len(inputs))
	for _, input := range inputs {
		out = append(out, models.AutomationCondition{
			Field:    strings.TrimSpace(input.Field),
			Operator: models.Operator(input.Operator),
			Value:    input.Value,
			Group:    defaultIfEmpty(input.Group, models.DefaultConditionGroup),
		})
	}
	return out
}

func buildActions(inputs []ActionInput) []models.AutomationAction {
	out := make([]models.AutomationAction, 0, len(inputs))
	for _, input := range inputs {
		action := models.AutomationAction{
			Kind:     models.ActionKind(input.Kind),
			Target:   strings.TrimSpace(input.Target),
			Channel:  strings.TrimSpace(input.Channel),
			Position: input.Position,
		}
		if input.Config != nil {
			action.Config = datatypes.JSONMap(input.Config)
		}
		out = append(out, action)
	}
	return out
}
