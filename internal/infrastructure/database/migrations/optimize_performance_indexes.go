package migrations

import (
	"log/slog"

	"gorm.io/gorm"
)

// OptimizePerformanceIndexes adiciona índices específicos do postgres
func OptimizePerformanceIndexes(db *gorm.DB) error {
	slog.Info("Adicionando índices de performance otimizados...")

	// Índice parcial: o cálculo de analytics só lê respostas completas
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_responses_complete_only ON responses (completed_at, id) WHERE is_complete = true`).Error; err != nil {
		return err
	}

	// Índice BRIN para consultas por período (dados sequenciais no tempo)
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_responses_started_at_brin ON responses USING BRIN (started_at)`).Error; err != nil {
		return err
	}

	// Índice parcial para respostas numéricas (escalas likert)
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_answers_numeric ON answers (question_id, answer_numeric) WHERE answer_numeric IS NOT NULL`).Error; err != nil {
		return err
	}

	// Itens de ação ainda em aberto
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_action_items_open ON action_items (recommendation_id) WHERE status <> 'done'`).Error; err != nil {
		return err
	}

	// Atualizar estatísticas para o planejador de consultas
	for _, table := range []string{"responses", "answers", "questions"} {
		if err := db.Exec("ANALYZE " + table).Error; err != nil {
			return err
		}
	}

	slog.Info("Índices de performance adicionados com sucesso")
	return nil
}
