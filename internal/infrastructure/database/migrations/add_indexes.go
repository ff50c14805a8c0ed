package migrations

import (
	"gorm.io/gorm"
)

// AddIndexes adds indexes to the database to improve query performance
func AddIndexes(db *gorm.DB) error {
	statements := []string{
		// Analytics reads every complete response ordered by completion time
		"CREATE INDEX IF NOT EXISTS idx_responses_completed_at ON responses (completed_at)",
		"CREATE INDEX IF NOT EXISTS idx_responses_complete_survey ON responses (is_complete, survey_id)",

		// Answers are always loaded per response and grouped per question
		"CREATE INDEX IF NOT EXISTS idx_answers_response_question ON answers (response_id, question_id)",

		"CREATE INDEX IF NOT EXISTS idx_surveys_active ON surveys (is_active)",
		"CREATE INDEX IF NOT EXISTS idx_action_items_status ON action_items (status)",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
