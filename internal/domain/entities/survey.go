package entities

import (
	"strings"

	"gorm.io/datatypes"
)

// TargetRole é o público-alvo de uma pesquisa
type TargetRole string

const (
	TargetManager TargetRole = "manager"
	TargetSales   TargetRole = "sales"
)

// QuestionType define o domínio de valores de uma pergunta
type QuestionType string

const (
	QuestionLikert         QuestionType = "likert"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionText           QuestionType = "text"
	QuestionRanking        QuestionType = "ranking"
	QuestionPercentage     QuestionType = "percentage"
	QuestionCheckbox       QuestionType = "checkbox"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionLikert, QuestionMultipleChoice, QuestionText, QuestionRanking, QuestionPercentage, QuestionCheckbox:
		return true
	}
	return false
}

// ValidationRules são as regras dependentes do tipo da pergunta
type ValidationRules struct {
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	WordLimit int      `json:"wordLimit,omitempty" yaml:"wordLimit,omitempty"`
	SumTo100  bool     `json:"sumTo100,omitempty" yaml:"sumTo100,omitempty"`
}

// Likert scales default to 1..10 when the rules leave them open.
const (
	DefaultLikertMin = 1.0
	DefaultLikertMax = 10.0
)

// Bounds returns the numeric range for likert questions.
func (r ValidationRules) Bounds() (float64, float64) {
	lo, hi := DefaultLikertMin, DefaultLikertMax
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		hi = *r.Max
	}
	return lo, hi
}

// Survey representa uma pesquisa direcionada a um perfil (gerente ou vendas)
type Survey struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Name       string     `json:"name" gorm:"column:name;not null"`
	TargetRole TargetRole `json:"targetRole" gorm:"column:target_role;type:varchar(20);not null"`
	Version    string     `json:"version" gorm:"column:version"`
	IsActive   bool       `json:"isActive" gorm:"column:is_active;not null"`
	Timestamps

	// Relações
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:SurveyID"`
}

func (Survey) TableName() string { return "surveys" }

// Question representa uma pergunta de uma pesquisa; (survey_id, order) é único
type Question struct {
	ID              uint                                 `json:"id" gorm:"primaryKey"`
	SurveyID        uint                                 `json:"surveyId" gorm:"column:survey_id;not null;uniqueIndex:idx_questions_survey_order"`
	Section         string                               `json:"section" gorm:"column:section"`
	QuestionText    string                               `json:"questionText" gorm:"column:question_text;not null"`
	QuestionType    QuestionType                         `json:"questionType" gorm:"column:question_type;type:varchar(20);not null"`
	Order           int                                  `json:"order" gorm:"column:question_order;not null;uniqueIndex:idx_questions_survey_order"`
	Required        bool                                 `json:"required" gorm:"column:required;not null;default:false"`
	Options         datatypes.JSONSlice[string]          `json:"options" gorm:"column:options"`
	ValidationRules datatypes.JSONType[ValidationRules] `json:"validationRules" gorm:"column:validation_rules"`
	AnalysisTags    string                               `json:"analysisTags" gorm:"column:analysis_tags"`
}

func (Question) TableName() string { return "questions" }

// Tags splits the comma-separated analysis tags, trimming blanks.
func (q Question) Tags() []string {
	if strings.TrimSpace(q.AnalysisTags) == "" {
		return nil
	}
	parts := strings.Split(q.AnalysisTags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Rules returns the decoded validation rules.
func (q Question) Rules() ValidationRules {
	return q.ValidationRules.Data()
}

// HasOption reports whether opt is one of the question's options.
func (q Question) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}
