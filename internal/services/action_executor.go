package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/workbasehq/workbase/internal/models"
	"github.com/workbasehq/workbase/pkg/logger"
	"github.com/workbasehq/workbase/pkg/mail"
	"github.com/workbasehq/workbase/pkg/metrics"
)

// Target descriptor prefixes understood by resolveTargets.
const (
	targetFieldPrefix = "field:"
	targetRolePrefix  = "role:"
	targetCreator     = "creator"
)

// Date-typed template tokens render in a fixed human format ("Jan 17, 2026").
const templateDateFormat = "Jan 02, 2006"

var templateTokenRE = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ActionExecutor runs an automation's actions against one record. Every
// failure is contained at the narrowest boundary: a bad recipient does not
// stop the action, a bad action does not stop its siblings.
type ActionExecutor struct {
	directory     *DirectoryService
	records       *RecordService
	notifications *NotificationService
	dispatcher    mail.Dispatcher
	baseURL       string
	log           *zap.Logger
}

// ExecutorOption customises the ActionExecutor.
type ExecutorOption func(*ActionExecutor)

// WithBaseURL prefixes deep links written into notification metadata.
func WithBaseURL(baseURL string) ExecutorOption {
	return func(e *ActionExecutor) {
		e.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewActionExecutor constructs an ActionExecutor. The mail dispatcher may be
// nil, in which case email actions fail softly per recipient.
func NewActionExecutor(directory *DirectoryService, records *RecordService, notifications *NotificationService, dispatcher mail.Dispatcher, opts ...ExecutorOption) (*ActionExecutor, error) {
	if directory == nil {
		return nil, errors.New("action executor: directory service is required")
	}
	if records == nil {
		return nil, errors.New("action executor: record service is required")
	}
	if notifications == nil {
		return nil, errors.New("action executor: notification service is required")
	}

	e := &ActionExecutor{
		directory:     directory,
		records:       records,
		notifications: notifications,
		dispatcher:    dispatcher,
		log:           logger.WithModule("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ExecuteAll runs every action for the automation in execution order. Action
// failures are logged and counted but never propagated.
func (e *ActionExecutor) ExecuteAll(ctx context.Context, automation *models.Automation, record *models.Record) {
	ctx = ensureContext(ctx)

	actions := make([]models.AutomationAction, len(automation.Actions))
	copy(actions, automation.Actions)
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Position < actions[j].Position
	})

	for i := range actions {
		action := &actions[i]
		if err := e.execute(ctx, action, automation, record); err != nil {
			metrics.ActionExecutions.WithLabelValues(string(action.Kind), "error").Inc()
			e.log.Error("action execution failed",
				zap.String("automation_id", automation.ID),
				zap.String("action_id", action.ID),
				zap.String("action_kind", string(action.Kind)),
				zap.Error(err))
			continue
		}
		metrics.ActionExecutions.WithLabelValues(string(action.Kind), "ok").Inc()
	}
}

func (e *ActionExecutor) execute(ctx context.Context, action *models.AutomationAction, automation *models.Automation, record *models.Record) error {
	switch action.Kind {
	case models.ActionNotify:
		return e.executeNotify(ctx, action, automation, record)
	case models.ActionEmail:
		return e.executeEmail(ctx, action, automation, record)
	case models.ActionUpdateField:
		return e.executeUpdateField(ctx, action, record)
	case models.ActionCreateRecord:
		// Placeholder: record creation semantics are not defined yet.
		e.log.Info("create record action triggered",
			zap.String("automation_id", automation.ID),
			zap.String("record_id", record.ID))
		return nil
	default:
		e.log.Warn("unknown action kind", zap.String("kind", string(action.Kind)))
		return nil
	}
}

func (e *ActionExecutor) executeNotify(ctx context.Context, action *models.AutomationAction, automation *models.Automation, record *models.Record) error {
	users, err := e.resolveTargets(ctx, action.Target, automation, record)
	if err != nil {
		return err
	}

	title, body := e.renderTitleAndBody(action, automation, record)
	metadata := map[string]any{
		"record_id":     record.ID,
		"collection_id": record.CollectionID,
		"link":          e.deepLink(automation, record),
	}

	var errs []error
	for _, user := range users {
		_, err := e.notifications.Create(ctx, CreateNotificationInput{
			UserID:       user.ID,
			WorkspaceID:  automation.WorkspaceID,
			AutomationID: automation.ID,
			RecordID:     record.ID,
			Type:         "automation",
			Title:        title,
			Body:         body,
			Metadata:     metadata,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", user.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (e *ActionExecutor) executeEmail(ctx context.Context, action *models.AutomationAction, automation *models.Automation, record *models.Record) error {
	users, err := e.resolveTargets(ctx, action.Target, automation, record)
	if err != nil {
		return err
	}
	if e.dispatcher == nil {
		return errors.New("mail dispatcher not configured")
	}

	title, body := e.renderTitleAndBody(action, automation, record)

	// One recipient's enqueue failure must not abort the rest.
	var errs []error
	for _, user := range users {
		if strings.TrimSpace(user.Email) == "" {
			continue
		}
		err := e.dispatcher.Enqueue(ctx, mail.Message{
			To:      []string{user.Email},
			Subject: title,
			Body:    body,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("enqueue mail for %s: %w", user.Email, err))
			continue
		}
		metrics.EmailsEnqueued.Inc()
		e.log.Info("email enqueued",
			zap.String("automation_id", automation.ID),
			zap.String("record_id", record.ID),
			zap.String("recipient", user.Email))
	}
	return errors.Join(errs...)
}

// executeUpdateField merges config.field/config.value into the record data.
// The value is applied verbatim, without template substitution; this
// asymmetry with notify/email is intentional.
func (e *ActionExecutor) executeUpdateField(ctx context.Context, action *models.AutomationAction, record *models.Record) error {
	field, ok := action.ConfigString("field")
	if !ok || strings.TrimSpace(field) == "" {
		return nil
	}
	if action.Config == nil {
		return nil
	}
	value, ok := action.Config["value"]
	if !ok || value == nil {
		return nil
	}

	return e.records.MergeData(ctx, record, field, value)
}

// resolveTargets classifies each comma-separated target descriptor and
// resolves it to users. Unresolvable descriptors are skipped; the result is
// de-duplicated by user id preserving first-seen order.
func (e *ActionExecutor) resolveTargets(ctx context.Context, target string, automation *models.Automation, record *models.Record) ([]models.User, error) {
	seen := make(map[string]struct{})
	var users []models.User

	appendUser := func(user *models.User) {
		if user == nil {
			return
		}
		if _, ok := seen[user.ID]; ok {
			return
		}
		seen[user.ID] = struct{}{}
		users = append(users, *user)
	}

	for _, segment := range strings.Split(target, ",") {
		segment = strings.TrimSpace(segment)
		switch {
		case segment == "":
			continue

		case strings.HasPrefix(segment, targetFieldPrefix):
			fieldName := strings.TrimPrefix(segment, targetFieldPrefix)
			userID := models.Stringify(record.FieldValue(fieldName))
			if userID == "" {
				continue
			}
			user, err := e.directory.UserByID(ctx, userID)
			if err != nil {
				continue
			}
			appendUser(user)

		case strings.HasPrefix(segment, targetRolePrefix):
			roleName := strings.TrimPrefix(segment, targetRolePrefix)
			members, err := e.directory.MembersWithRole(ctx, automation.WorkspaceID, roleName)
			if err != nil {
				return nil, err
			}
			for i := range members {
				appendUser(&members[i])
			}

		case segment == targetCreator:
			creator, err := e.directory.Creator(ctx, record)
			if err != nil {
				return nil, err
			}
			appendUser(creator)

		case isNumeric(segment):
			user, err := e.directory.UserByID(ctx, segment)
			if err != nil {
				continue
			}
			appendUser(user)
		}
	}

	return users, nil
}

func (e *ActionExecutor) renderTitleAndBody(action *models.AutomationAction, automation *models.Automation, record *models.Record) (string, string) {
	title, ok := action.ConfigString("title")
	if !ok || title == "" {
		title = automation.Name
	}
	body, ok := action.ConfigString("body")
	if !ok || body == "" {
		body = defaultBody(automation, record)
	}

	return e.renderTemplate(title, record), e.renderTemplate(body, record)
}

// renderTemplate substitutes {{field_id}} tokens with record values. Tokens
// without a matching schema field stay verbatim; date fields render in the
// fixed human format.
func (e *ActionExecutor) renderTemplate(text string, record *models.Record) string {
	if record.Collection == nil {
		return text
	}

	return templateTokenRE.ReplaceAllStringFunc(text, func(token string) string {
		fieldID := templateTokenRE.FindStringSubmatch(token)[1]

		field, ok := record.Collection.Field(fieldID)
		if !ok {
			return token
		}

		value := record.FieldValue(fieldID)
		if field.Type == models.FieldTypeDate && value != nil {
			if parsed, ok := parseDate(value); ok {
				return parsed.Format(templateDateFormat)
			}
		}
		return models.Stringify(value)
	})
}

func (e *ActionExecutor) deepLink(automation *models.Automation, record *models.Record) string {
	return fmt.Sprintf("%s/workspaces/%s/collections/%s/records/%s",
		e.baseURL, automation.WorkspaceID, record.CollectionID, record.ID)
}

func defaultBody(automation *models.Automation, record *models.Record) string {
	collectionName := "Record"
	if record.Collection != nil && record.Collection.Name != "" {
		collectionName = record.Collection.Name
	}
	return fmt.Sprintf("Action required on %s: %s", collectionName, record.Title())
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
