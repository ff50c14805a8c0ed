// Package dbtest opens isolated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/PavaniTiago/workflow-insights-api/internal/config"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated, empty database that is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, migrations.Options{})
}

// Seeded returns a migrated database holding the embedded surveys.
func Seeded(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, migrations.Options{Seed: true})
}

func open(t testing.TB, opts migrations.Options) *gorm.DB {
	db, err := database.SetupDatabase(config.DatabaseConfig{
		Driver:   "sqlite",
		URL:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, migrations.Run(context.Background(), db, opts))
	return db
}
