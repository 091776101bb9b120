package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.App.LogLevel)
	require.Equal(t, "https://app.workbase.example", cfg.App.BaseURL)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Host)
	require.Equal(t, 5433, cfg.Database.Port)
	require.Equal(t, "workbase", cfg.Database.Name)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, "automations@workbase.example", cfg.Email.SMTP.From)
	require.False(t, cfg.Email.SMTP.UseTLS)
	require.Equal(t, 20*time.Second, cfg.Email.SMTP.Timeout)
	require.Equal(t, 32, cfg.Email.SMTP.QueueSize)

	require.False(t, cfg.Scheduler.Enabled)
	require.Equal(t, "0 6 * * *", cfg.Scheduler.Spec)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "info", cfg.App.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 587, cfg.Email.SMTP.Port)
	require.Equal(t, 10*time.Second, cfg.Email.SMTP.Timeout)
	require.True(t, cfg.Scheduler.Enabled)
	require.Equal(t, "@daily", cfg.Scheduler.Spec)
	require.Equal(t, 90, cfg.Scheduler.LogRetentionDays)
}
