package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/workbasehq/workbase/pkg/errors"
)

func TestRecordServiceGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workspace := env.createWorkspace(t, "Acme", "acme")
	collection := env.createCollection(t, workspace.ID, "tasks", nil)
	record := env.createRecord(t, collection.ID, map[string]any{"name": "Ship it"}, nil)

	got, err := env.records.Get(ctx, record.ID)
	require.NoError(t, err)
	require.Equal(t, record.ID, got.ID)
	require.NotNil(t, got.Collection)
	require.Equal(t, collection.ID, got.Collection.ID)

	_, err = env.records.Get(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecordServiceListWithField(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workspace := env.createWorkspace(t, "Acme", "acme")
	collection := env.createCollection(t, workspace.ID, "tasks", nil)
	other := env.createCollection(t, workspace.ID, "notes", nil)

	withDate := env.createRecord(t, collection.ID, map[string]any{"due_date": "2026-01-17"}, nil)
	env.createRecord(t, collection.ID, map[string]any{"name": "no due date"}, nil)
	env.createRecord(t, collection.ID, map[string]any{"due_date": nil}, nil)
	env.createRecord(t, other.ID, map[string]any{"due_date": "2026-01-17"}, nil)

	records, err := env.records.ListWithField(ctx, collection.ID, "due_date")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, withDate.ID, records[0].ID)

	_, err = env.records.ListWithField(ctx, collection.ID, " ")
	require.Error(t, err)
}

func TestRecordServiceMergeData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workspace := env.createWorkspace(t, "Acme", "acme")
	collection := env.createCollection(t, workspace.ID, "tasks", nil)
	record := env.createRecord(t, collection.ID, map[string]any{"name": "Ship it", "status": "open"}, nil)

	require.NoError(t, env.records.MergeData(ctx, record, "status", "done"))

	// In-memory copy reflects the merge.
	require.Equal(t, "done", record.Data["status"])
	require.Equal(t, "Ship it", record.Data["name"])

	// Persisted copy does too, with unrelated keys intact.
	reloaded, err := env.records.Get(ctx, record.ID)
	require.NoError(t, err)
	require.Equal(t, "done", reloaded.Data["status"])
	require.Equal(t, "Ship it", reloaded.Data["name"])
}

func TestRecordServiceMergeDataStartsEmptyPayload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workspace := env.createWorkspace(t, "Acme", "acme")
	collection := env.createCollection(t, workspace.ID, "tasks", nil)
	record := env.createRecord(t, collection.ID, nil, nil)

	require.NoError(t, env.records.MergeData(ctx, record, "status", "done"))

	reloaded, err := env.records.Get(ctx, record.ID)
	require.NoError(t, err)
	require.Equal(t, "done", reloaded.Data["status"])

	require.Error(t, env.records.MergeData(ctx, nil, "status", "done"))
	require.Error(t, env.records.MergeData(ctx, record, "", "done"))
}
