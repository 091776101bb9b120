package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/database/testutil"
	"github.com/workbasehq/workbase/internal/models"
	"github.com/workbasehq/workbase/pkg/mail"
)

// Fixed clock shared by the service tests so date math is deterministic.
var testNow = time.Date(2026, time.January, 15, 10, 30, 0, 0, time.UTC)

// recordingDispatcher captures enqueued messages instead of sending them.
type recordingDispatcher struct {
	mu       sync.Mutex
	err      error
	messages []mail.Message
}

func (d *recordingDispatcher) Enqueue(_ context.Context, msg mail.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return d.err
	}
	d.messages = append(d.messages, msg)
	return nil
}

func (d *recordingDispatcher) sent() []mail.Message {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]mail.Message, len(d.messages))
	copy(out, d.messages)
	return out
}

type testEnv struct {
	db            *gorm.DB
	logs          *LogService
	records       *RecordService
	directory     *DirectoryService
	notifications *NotificationService
	dispatcher    *recordingDispatcher
	executor      *ActionExecutor
	evaluator     *Evaluator
	scheduler     *Scheduler
	automations   *AutomationService
}

// newTestEnv wires the full service graph against a seeded in-memory
// database, with every clock pinned to testNow.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	logs, err := NewLogService(db, WithLogClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	records, err := NewRecordService(db)
	require.NoError(t, err)

	directory, err := NewDirectoryService(db)
	require.NoError(t, err)

	notifications, err := NewNotificationService(db)
	require.NoError(t, err)

	dispatcher := &recordingDispatcher{}
	executor, err := NewActionExecutor(directory, records, notifications, dispatcher, WithBaseURL("https://app.workbase.test"))
	require.NoError(t, err)

	evaluator, err := NewEvaluator(logs, executor)
	require.NoError(t, err)

	scheduler, err := NewScheduler(db, evaluator, records, logs, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	automations, err := NewAutomationService(db)
	require.NoError(t, err)

	return &testEnv{
		db:            db,
		logs:          logs,
		records:       records,
		directory:     directory,
		notifications: notifications,
		dispatcher:    dispatcher,
		executor:      executor,
		evaluator:     evaluator,
		scheduler:     scheduler,
		automations:   automations,
	}
}

func (env *testEnv) createWorkspace(t *testing.T, name, slug string) *models.Workspace {
	t.Helper()

	workspace := &models.Workspace{Name: name, Slug: slug}
	require.NoError(t, env.db.Create(workspace).Error)
	return workspace
}

func (env *testEnv) createCollection(t *testing.T, workspaceID, name string, schema []models.SchemaField) *models.Collection {
	t.Helper()

	collection := &models.Collection{
		WorkspaceID: workspaceID,
		Name:        name,
		Slug:        name,
		Schema:      datatypes.NewJSONSlice(schema),
	}
	require.NoError(t, env.db.Create(collection).Error)
	return collection
}

func (env *testEnv) createUser(t *testing.T, name, email string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: email, IsActive: true}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

// addMember enrolls the user in the workspace under one of the seeded roles.
func (env *testEnv) addMember(t *testing.T, workspaceID, userID, roleName string) {
	t.Helper()

	var role models.Role
	require.NoError(t, env.db.First(&role, "name = ?", roleName).Error)

	member := &models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		RoleID:      role.ID,
	}
	require.NoError(t, env.db.Create(member).Error)
}

func (env *testEnv) createRecord(t *testing.T, collectionID string, data map[string]any, createdBy *string) *models.Record {
	t.Helper()

	record := &models.Record{
		CollectionID: collectionID,
		Data:         datatypes.JSONMap(data),
		CreatedBy:    createdBy,
	}
	require.NoError(t, env.db.Create(record).Error)
	return record
}

func (env *testEnv) createAutomation(t *testing.T, automation *models.Automation) *models.Automation {
	t.Helper()

	require.NoError(t, env.db.Create(automation).Error)
	return automation
}

// logsFor returns every log row written for the automation, oldest first.
func (env *testEnv) logsFor(t *testing.T, automationID string) []models.AutomationLog {
	t.Helper()

	var rows []models.AutomationLog
	require.NoError(t, env.db.
		Where("automation_id = ?", automationID).
		Order("created_at ASC").
		Find(&rows).Error)
	return rows
}

func strPtr(s string) *string { return &s }
