// Package testutil opens throwaway SQLite databases for service tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/database"
)

type setupLevel int

const (
	setupNone setupLevel = iota
	setupMigrate
	setupSeed
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*setupLevel)

// WithAutoMigrate applies the schema after opening the test database.
func WithAutoMigrate() TestDBOption {
	return func(level *setupLevel) {
		if *level < setupMigrate {
			*level = setupMigrate
		}
	}
}

// WithSeedData applies the schema and inserts the default seed rows.
func WithSeedData() TestDBOption {
	return func(level *setupLevel) {
		*level = setupSeed
	}
}

// MustOpenTestDB opens an in-memory SQLite database scoped to the test and
// closed via t.Cleanup. Each call gets its own named database so parallel
// tests never share state, while connections from the same pool do.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	level := setupNone
	for _, opt := range opts {
		opt(&level)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	switch level {
	case setupSeed:
		require.NoError(t, database.AutoMigrateAndSeed(db))
	case setupMigrate:
		require.NoError(t, database.AutoMigrate(db))
	}

	return db
}
