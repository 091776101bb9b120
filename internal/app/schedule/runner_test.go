package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/database/testutil"
	"github.com/workbasehq/workbase/internal/models"
	"github.com/workbasehq/workbase/internal/services"
)

func buildRunner(t *testing.T, db *gorm.DB, now time.Time, opts ...Option) (*Runner, *services.LogService) {
	t.Helper()

	clock := func() time.Time { return now }

	logs, err := services.NewLogService(db, services.WithLogClock(clock))
	require.NoError(t, err)

	records, err := services.NewRecordService(db)
	require.NoError(t, err)

	directory, err := services.NewDirectoryService(db)
	require.NoError(t, err)

	notifications, err := services.NewNotificationService(db)
	require.NoError(t, err)

	executor, err := services.NewActionExecutor(directory, records, notifications, nil)
	require.NoError(t, err)

	evaluator, err := services.NewEvaluator(logs, executor)
	require.NoError(t, err)

	scheduler, err := services.NewScheduler(db, evaluator, records, logs, services.WithClock(clock))
	require.NoError(t, err)

	opts = append(opts, WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))))
	runner, err := NewRunner(scheduler, logs, opts...)
	require.NoError(t, err)
	return runner, logs
}

func TestRunnerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	workspace := &models.Workspace{Name: "Acme", Slug: "acme"}
	require.NoError(t, db.Create(workspace).Error)

	collection := &models.Collection{WorkspaceID: workspace.ID, Name: "Tasks", Slug: "tasks"}
	require.NoError(t, db.Create(collection).Error)

	automation := &models.Automation{
		WorkspaceID:  workspace.ID,
		CollectionID: collection.ID,
		Name:         "Due reminder",
		IsActive:     true,
		Triggers: []models.AutomationTrigger{{
			Kind:      models.TriggerDateReached,
			FieldName: "due_date",
		}},
	}
	require.NoError(t, db.Create(automation).Error)

	record := &models.Record{
		CollectionID: collection.ID,
		Data:         datatypes.JSONMap{"due_date": "2026-03-10"},
	}
	require.NoError(t, db.Create(record).Error)

	// An ancient log row that retention should sweep out.
	stale := &models.AutomationLog{
		AutomationID: automation.ID,
		Status:       models.RunSkipped,
		Message:      "Conditions not met",
		ExecutedAt:   now.AddDate(0, 0, -120),
	}
	require.NoError(t, db.Create(stale).Error)

	runner, _ := buildRunner(t, db, now, WithLogRetentionDays(90))

	report, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, services.Report{Total: 1, Executed: 1}, report)

	var count int64
	require.NoError(t, db.Model(&models.AutomationLog{}).
		Where("id = ?", stale.ID).Count(&count).Error)
	require.Zero(t, count)

	// Today's success log survives the prune.
	require.NoError(t, db.Model(&models.AutomationLog{}).
		Where("automation_id = ? AND status = ?", automation.ID, models.RunSuccess).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRunnerStartStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	runner, _ := buildRunner(t, db, now, WithBatchSchedule("@every 1h"), WithPruneSchedule("@every 24h"))

	require.NoError(t, runner.Start())
	<-runner.Stop().Done()
}

func TestRunnerRequiresScheduler(t *testing.T) {
	_, err := NewRunner(nil, nil)
	require.Error(t, err)
}

func TestRunnerDisabledRetentionSkipsPrune(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	stale := &models.AutomationLog{
		AutomationID: "a-orphan",
		Status:       models.RunSkipped,
		ExecutedAt:   now.AddDate(0, 0, -365),
	}
	require.NoError(t, db.Create(stale).Error)

	runner, _ := buildRunner(t, db, now, WithLogRetentionDays(0))

	_, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.AutomationLog{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
