package migrations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"gorm.io/gorm"
)

// Models lists every persisted table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&entities.User{},
		&entities.Survey{},
		&entities.Question{},
		&entities.Response{},
		&entities.Answer{},
		&entities.AnalyticsCache{},
		&entities.ActionItem{},
	}
}

// Migrate cria ou atualiza as tabelas de todos os modelos
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Options controls the startup migration step.
type Options struct {
	Seed          bool
	AdminEmail    string
	AdminPassword string
}

// Run applies schema migrations, indexes and (optionally) the seed data.
// Every step is idempotent, so it is safe to run on every boot.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	db = db.WithContext(ctx)

	if err := Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		if err := OptimizePerformanceIndexes(db); err != nil {
			return fmt.Errorf("failed to add optimized indexes: %w", err)
		}
	}

	if !opts.Seed {
		return nil
	}
	created, err := SeedSurveys(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to seed surveys: %w", err)
	}
	if created > 0 {
		slog.Info("Seeded surveys", "created", created)
	}
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		if err := SeedAdmin(ctx, db, opts.AdminEmail, opts.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	}
	return nil
}
