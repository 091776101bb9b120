package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/workbasehq/workbase/pkg/errors"
)

func TestNotificationServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workspace := env.createWorkspace(t, "Acme", "acme")
	user := env.createUser(t, "Ada", "ada@example.com")

	notification, err := env.notifications.Create(ctx, CreateNotificationInput{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		Title:       "Task due",
		Body:        "Ship it is due tomorrow",
		Metadata:    map[string]any{"link": "/records/1"},
	})
	require.NoError(t, err)
	require.Equal(t, "automation", notification.Type)
	require.True(t, notification.IsUnread())
	require.Nil(t, notification.AutomationID)
	require.Equal(t, "/records/1", notification.Metadata["link"])

	_, err = env.notifications.Create(ctx, CreateNotificationInput{WorkspaceID: workspace.ID})
	require.Error(t, err)

	_, err = env.notifications.Create(ctx, CreateNotificationInput{UserID: user.ID})
	require.Error(t, err)
}

func TestNotificationServiceReadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	workspace := env.createWorkspace(t, "Acme", "acme")
	user := env.createUser(t, "Ada", "ada@example.com")
	other := env.createUser(t, "Max", "max@example.com")

	for i := 0; i < 3; i++ {
		_, err := env.notifications.Create(ctx, CreateNotificationInput{
			UserID:      user.ID,
			WorkspaceID: workspace.ID,
			Title:       "Task due",
		})
		require.NoError(t, err)
	}
	_, err := env.notifications.Create(ctx, CreateNotificationInput{
		UserID:      other.ID,
		WorkspaceID: workspace.ID,
		Title:       "Someone else's",
	})
	require.NoError(t, err)

	count, err := env.notifications.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	unread, err := env.notifications.ListForUser(ctx, ListNotificationsInput{UserID: user.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 3)

	read, err := env.notifications.MarkRead(ctx, user.ID, unread[0].ID)
	require.NoError(t, err)
	require.False(t, read.IsUnread())

	count, err = env.notifications.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// Users cannot mark each other's notifications.
	_, err = env.notifications.MarkRead(ctx, other.ID, unread[1].ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, env.notifications.MarkAllRead(ctx, user.ID))

	count, err = env.notifications.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	// The other user's notification stays untouched.
	count, err = env.notifications.UnreadCount(ctx, other.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}
