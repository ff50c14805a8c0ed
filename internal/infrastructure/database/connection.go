package database

import (
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold é o tempo a partir do qual uma consulta é registrada como lenta
const DefaultSlowQueryThreshold = 500 * time.Millisecond

const startedAtKey = "workflow_insights:started_at"

func markStart(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

// logSlowQuery cria o callback que registra consultas acima do limite
func logSlowQuery(threshold time.Duration) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(started); elapsed >= threshold {
			slog.Warn("Slow query",
				"table", db.Statement.Table,
				"duration_ms", elapsed.Milliseconds(),
				"rows", db.Statement.RowsAffected,
			)
		}
	}
}

// RegisterCallbacks registra os callbacks de medição de tempo no GORM
func RegisterCallbacks(db *gorm.DB, threshold time.Duration) error {
	after := logSlowQuery(threshold)

	if err := db.Callback().Query().Before("gorm:query").Register("metrics:before_query", markStart); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("metrics:after_query", after); err != nil {
		return err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("metrics:before_create", markStart); err != nil {
		return err
	}
	return db.Callback().Create().After("gorm:create").Register("metrics:after_create", after)
}
