package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRecordFieldValue(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	record := Record{
		BaseModel: BaseModel{ID: "rec-1", CreatedAt: createdAt},
		Data: datatypes.JSONMap{
			"status":   "open",
			"priority": float64(3),
		},
	}

	require.Equal(t, "open", record.FieldValue("status"))
	require.Equal(t, float64(3), record.FieldValue("priority"))
	require.Equal(t, "rec-1", record.FieldValue("id"))
	require.Equal(t, createdAt, record.FieldValue("created_at"))
	require.Nil(t, record.FieldValue("missing"))
}

func TestRecordFieldValueNilData(t *testing.T) {
	record := Record{BaseModel: BaseModel{ID: "rec-2"}}
	require.Nil(t, record.FieldValue("anything"))
	require.Equal(t, "rec-2", record.FieldValue("id"))
}

func TestRecordTitle(t *testing.T) {
	record := Record{
		BaseModel: BaseModel{ID: "rec-3"},
		Data:      datatypes.JSONMap{"title": "Quarterly review"},
	}
	require.Equal(t, "Quarterly review", record.Title())

	record.Data = datatypes.JSONMap{"other": "x"}
	require.Equal(t, "Record #rec-3", record.Title())
}

func TestTriggerMatchesEvent(t *testing.T) {
	updated := AutomationTrigger{Kind: TriggerRecordUpdated, FieldName: "status"}
	require.True(t, updated.MatchesEvent(TriggerRecordUpdated, map[string]any{"status": "done"}))
	require.False(t, updated.MatchesEvent(TriggerRecordUpdated, map[string]any{"priority": 2}))
	require.False(t, updated.MatchesEvent(TriggerRecordCreated, map[string]any{"status": "done"}))

	anyField := AutomationTrigger{Kind: TriggerRecordUpdated}
	require.True(t, anyField.MatchesEvent(TriggerRecordUpdated, nil))

	status := AutomationTrigger{Kind: TriggerStatusChanged}
	require.True(t, status.MatchesEvent(TriggerStatusChanged, map[string]any{"status": "done"}))
	require.False(t, status.MatchesEvent(TriggerStatusChanged, map[string]any{"due": "x"}))
	require.False(t, status.MatchesEvent(TriggerStatusChanged, nil))

	created := AutomationTrigger{Kind: TriggerRecordCreated}
	require.True(t, created.MatchesEvent(TriggerRecordCreated, nil))

	date := AutomationTrigger{Kind: TriggerDateReached, FieldName: "due"}
	require.False(t, date.MatchesEvent(TriggerDateReached, nil))
}

func TestStringify(t *testing.T) {
	require.Equal(t, "", Stringify(nil))
	require.Equal(t, "42", Stringify(float64(42)))
	require.Equal(t, "42.5", Stringify(float64(42.5)))
	require.Equal(t, "true", Stringify(true))
	require.Equal(t, "a, b", Stringify([]any{"a", "b"}))

	ts := time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-01-17T00:00:00Z", Stringify(ts))
}

func TestActionConfigString(t *testing.T) {
	action := AutomationAction{Config: datatypes.JSONMap{
		"field": "status",
		"value": float64(5),
		"empty": nil,
	}}

	field, ok := action.ConfigString("field")
	require.True(t, ok)
	require.Equal(t, "status", field)

	value, ok := action.ConfigString("value")
	require.True(t, ok)
	require.Equal(t, "5", value)

	_, ok = action.ConfigString("empty")
	require.False(t, ok)

	_, ok = action.ConfigString("missing")
	require.False(t, ok)
}

func TestTriggersOfKind(t *testing.T) {
	automation := Automation{Triggers: []AutomationTrigger{
		{Kind: TriggerDateReached, FieldName: "due", OffsetDays: -1},
		{Kind: TriggerDateReached, FieldName: "due", OffsetDays: 0},
		{Kind: TriggerRecordCreated},
	}}

	require.Len(t, automation.TriggersOfKind(TriggerDateReached), 2)
	require.Len(t, automation.TriggersOfKind(TriggerStatusChanged), 0)
}
