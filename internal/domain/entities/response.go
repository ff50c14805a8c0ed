package entities

import "time"

// Response representa uma sessão de resposta a uma pesquisa
type Response struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	SurveyID            uint       `json:"surveyId" gorm:"column:survey_id;not null;index;uniqueIndex:idx_responses_survey_session"`
	UserID              *uint      `json:"userId,omitempty" gorm:"column:user_id;index"`
	SessionID           string     `json:"sessionId" gorm:"column:session_id;type:varchar(64);not null;uniqueIndex:idx_responses_survey_session"`
	IsAnonymous         bool       `json:"isAnonymous" gorm:"column:is_anonymous;not null"`
	StartedAt           time.Time  `json:"startedAt" gorm:"column:started_at;not null"`
	CompletedAt         *time.Time `json:"completedAt,omitempty" gorm:"column:completed_at"`
	IsComplete          bool       `json:"isComplete" gorm:"column:is_complete;not null;default:false;index"`
	ResponseTimeSeconds int        `json:"responseTimeSeconds" gorm:"column:response_time_seconds"`

	// Relações
	Survey  Survey   `json:"survey,omitempty" gorm:"foreignKey:SurveyID"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:ResponseID"`
}

func (Response) TableName() string { return "responses" }

// Answer representa a resposta individual a uma pergunta
type Answer struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ResponseID      uint      `json:"responseId" gorm:"column:response_id;not null;index"`
	QuestionID      uint      `json:"questionId" gorm:"column:question_id;not null;index"`
	AnswerValue     string    `json:"answerValue" gorm:"column:answer_value;type:text"`
	AnswerNumeric   *float64  `json:"answerNumeric,omitempty" gorm:"column:answer_numeric"`
	ConfidenceScore *float64  `json:"confidenceScore,omitempty" gorm:"column:confidence_score"`
	CreatedAt       time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (Answer) TableName() string { return "answers" }
