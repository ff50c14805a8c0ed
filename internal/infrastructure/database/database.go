package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDatabase opens the store selected by cfg.Driver and configures its pool.
// Migrations and seeding are a separate, explicit step (see migrations.Run).
func SetupDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		// Skip default transaction for better performance
		SkipDefaultTransaction: true,
		// Maps driver unique violations to gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
	}
	if cfg.Driver == "postgres" {
		gormConfig.PrepareStmt = true
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// one writer; shared in-memory databases vanish with their last connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := RegisterCallbacks(db, DefaultSlowQueryThreshold); err != nil {
		return nil, fmt.Errorf("failed to register callbacks: %w", err)
	}

	slog.Info("Connected to database", "driver", cfg.Driver)
	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not defined in the environment")
		}
		return postgres.Open(cfg.URL), nil
	case "sqlite":
		dsn := cfg.URL
		if dsn == "" {
			dsn = "file:workflow_insights.db"
		}
		if !strings.Contains(dsn, "_foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_foreign_keys=on"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Error
	}
}

// Ping checks that the underlying connection is alive.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
