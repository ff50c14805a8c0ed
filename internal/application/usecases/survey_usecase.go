package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/repositories"
	"github.com/google/uuid"
)

// Códigos de erro de validação da submissão
const (
	CodeInvalidPayload         = "invalid_payload"
	CodeInvalidQuestionIDs     = "invalid_question_ids"
	CodeMissingRequiredAnswers = "missing_required_answers"
	CodeInvalidAnswer          = "invalid_answer"
	CodeDuplicateAnswer        = "duplicate_answer"
	CodeInactiveSurvey         = "inactive_survey"
)

// RecoveryClearCache tells the survey UI its cached question ids are stale.
const RecoveryClearCache = "clear_cache_and_reload"

const percentageTolerance = 0.5

var (
	ErrSurveyNotFound      = errors.New("survey not found")
	ErrDuplicateSubmission = errors.New("response already submitted for this session")
)

// ValidationError é um erro de entrada do cliente, mapeado para 400
type ValidationError struct {
	Code     string      `json:"code"`
	Message  string      `json:"error"`
	Details  interface{} `json:"details,omitempty"`
	Recovery string      `json:"recovery,omitempty"`
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(code, message string, details interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: message, Details: details}
}

// AnswerIssue identifica a pergunta rejeitada e o motivo
type AnswerIssue struct {
	QuestionID uint   `json:"questionId"`
	Reason     string `json:"reason"`
}

// SubmittedAnswer is one answer as posted by the client.
type SubmittedAnswer struct {
	QuestionID uint            `json:"questionId"`
	Value      json.RawMessage `json:"value"`
}

// SubmissionInput é o corpo de POST /api/surveys/submit
type SubmissionInput struct {
	SurveyID     uint              `json:"surveyId"`
	Answers      []SubmittedAnswer `json:"answers"`
	CompletedAt  *time.Time        `json:"completedAt"`
	ResponseTime int               `json:"responseTime"`
	SessionID    string            `json:"sessionId"`
	UserID       *uint             `json:"-"`
}

// SubmissionResult identifica a resposta gravada
type SubmissionResult struct {
	ResponseID  uint      `json:"responseId"`
	SessionID   string    `json:"sessionId"`
	AnswerCount int       `json:"answerCount"`
	CompletedAt time.Time `json:"completedAt"`
}

// SurveyUseCase implementa os casos de uso relacionados a pesquisas
type SurveyUseCase struct {
	surveys   repositories.SurveyRepository
	responses repositories.ResponseRepository
	now       func() time.Time
}

// NewSurveyUseCase cria uma nova instância de SurveyUseCase
func NewSurveyUseCase(surveys repositories.SurveyRepository, responses repositories.ResponseRepository) *SurveyUseCase {
	return &SurveyUseCase{
		surveys:   surveys,
		responses: responses,
		now:       time.Now,
	}
}

// ListActive retorna as pesquisas ativas (sem perguntas)
func (u *SurveyUseCase) ListActive(ctx context.Context) ([]entities.Survey, error) {
	return u.surveys.ListActive(ctx)
}

// GetSurvey retorna a pesquisa com as perguntas ordenadas
func (u *SurveyUseCase) GetSurvey(ctx context.Context, id uint) (*entities.Survey, error) {
	survey, err := u.surveys.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrSurveyNotFound, id)
	}
	return survey, err
}

// Submit validates every answer against its question and stores the response
// and answers in one transaction.
func (u *SurveyUseCase) Submit(ctx context.Context, in SubmissionInput) (*SubmissionResult, error) {
	if in.SurveyID == 0 {
		return nil, invalid(CodeInvalidPayload, "surveyId is required", nil)
	}
	if len(in.Answers) == 0 {
		return nil, invalid(CodeInvalidPayload, "answers must not be empty", nil)
	}
	if in.ResponseTime < 0 {
		return nil, invalid(CodeInvalidPayload, "responseTime must not be negative", nil)
	}

	survey, err := u.GetSurvey(ctx, in.SurveyID)
	if err != nil {
		return nil, err
	}
	if !survey.IsActive {
		return nil, invalid(CodeInactiveSurvey, "Survey is not active", nil)
	}

	answers, err := validateAnswers(survey, in.Answers)
	if err != nil {
		return nil, err
	}

	completed := u.now()
	if in.CompletedAt != nil && !in.CompletedAt.IsZero() {
		completed = *in.CompletedAt
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	response := &entities.Response{
		SurveyID:            survey.ID,
		UserID:              in.UserID,
		SessionID:           sessionID,
		IsAnonymous:         in.UserID == nil,
		StartedAt:           completed.Add(-time.Duration(in.ResponseTime) * time.Second),
		CompletedAt:         &completed,
		IsComplete:          true,
		ResponseTimeSeconds: in.ResponseTime,
	}
	if err := u.responses.Submit(ctx, response, answers); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateSubmission
		}
		return nil, err
	}

	return &SubmissionResult{
		ResponseID:  response.ID,
		SessionID:   sessionID,
		AnswerCount: len(answers),
		CompletedAt: completed,
	}, nil
}

func validateAnswers(survey *entities.Survey, submitted []SubmittedAnswer) ([]entities.Answer, error) {
	questions := make(map[uint]entities.Question, len(survey.Questions))
	for _, q := range survey.Questions {
		questions[q.ID] = q
	}

	var unknown []uint
	for _, a := range submitted {
		if _, ok := questions[a.QuestionID]; !ok {
			unknown = append(unknown, a.QuestionID)
		}
	}
	if len(unknown) > 0 {
		err := invalid(CodeInvalidQuestionIDs, "Invalid question IDs", unknown)
		err.Recovery = RecoveryClearCache
		return nil, err
	}

	seen := map[uint]bool{}
	answered := map[uint]bool{}
	var issues []AnswerIssue
	answers := make([]entities.Answer, 0, len(submitted))

	for _, a := range submitted {
		if seen[a.QuestionID] {
			return nil, invalid(CodeDuplicateAnswer, "Question answered more than once", []uint{a.QuestionID})
		}
		seen[a.QuestionID] = true

		q := questions[a.QuestionID]
		value, err := entities.DecodeSubmittedAnswer(q.QuestionType, a.Value)
		if err == nil {
			err = checkAnswer(q, value)
		}
		if err != nil {
			issues = append(issues, AnswerIssue{QuestionID: q.ID, Reason: err.Error()})
			continue
		}
		if isBlank(value) {
			continue
		}

		raw, numeric, err := value.Encode()
		if err != nil {
			issues = append(issues, AnswerIssue{QuestionID: q.ID, Reason: err.Error()})
			continue
		}
		answered[q.ID] = true
		answers = append(answers, entities.Answer{QuestionID: q.ID, AnswerValue: raw, AnswerNumeric: numeric})
	}
	if len(issues) > 0 {
		return nil, invalid(CodeInvalidAnswer, "Invalid answer values", issues)
	}

	var missing []uint
	for _, q := range survey.Questions {
		if q.Required && !answered[q.ID] {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, invalid(CodeMissingRequiredAnswers, "Missing required answers", missing)
	}
	if len(answers) == 0 {
		return nil, invalid(CodeInvalidPayload, "answers must not be empty", nil)
	}
	return answers, nil
}

// isBlank reports an empty optional answer, which is dropped rather than stored.
func isBlank(v entities.AnswerValue) bool {
	switch v.Type {
	case entities.QuestionText:
		return strings.TrimSpace(v.Text) == ""
	case entities.QuestionCheckbox:
		return len(v.Selections) == 0
	case entities.QuestionRanking:
		return len(v.Ranking) == 0
	case entities.QuestionPercentage:
		return len(v.Percentages) == 0
	}
	return false
}

// checkAnswer applies the question's validation rules and options.
func checkAnswer(q entities.Question, v entities.AnswerValue) error {
	rules := q.Rules()
	switch v.Type {
	case entities.QuestionLikert:
		lo, hi := rules.Bounds()
		if math.IsNaN(v.Number) || v.Number < lo || v.Number > hi {
			return fmt.Errorf("value %g outside %g-%g", v.Number, lo, hi)
		}
	case entities.QuestionMultipleChoice:
		if len(q.Options) > 0 && !q.HasOption(v.Choice) {
			return fmt.Errorf("%q is not an option", v.Choice)
		}
	case entities.QuestionCheckbox:
		for _, s := range v.Selections {
			if len(q.Options) > 0 && !q.HasOption(s) {
				return fmt.Errorf("%q is not an option", s)
			}
		}
	case entities.QuestionRanking:
		dup := map[string]bool{}
		for _, s := range v.Ranking {
			if dup[s] {
				return fmt.Errorf("%q ranked twice", s)
			}
			dup[s] = true
			if len(q.Options) > 0 && !q.HasOption(s) {
				return fmt.Errorf("%q is not an option", s)
			}
		}
	case entities.QuestionPercentage:
		// labels are free-form; funnel questions report counts, not shares
		if !rules.SumTo100 {
			return nil
		}
		sum := 0.0
		for label, pct := range v.Percentages {
			if pct > 100 {
				return fmt.Errorf("%q above 100%%", label)
			}
			sum += pct
		}
		if len(v.Percentages) > 0 && math.Abs(sum-100) > percentageTolerance {
			return fmt.Errorf("percentages add up to %g, expected 100", sum)
		}
	case entities.QuestionText:
		if rules.WordLimit > 0 && len(strings.Fields(v.Text)) > rules.WordLimit {
			return fmt.Errorf("more than %d words", rules.WordLimit)
		}
	}
	return nil
}
