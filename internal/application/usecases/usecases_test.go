package usecases_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/application/analytics"
	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/repositories"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/cache"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database/dbtest"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type env struct {
	db        *gorm.DB
	survey    *entities.Survey
	surveys   *usecases.SurveyUseCase
	analytics *usecases.AnalyticsUseCase
	items     *usecases.ActionItemUseCase
}

func ptr[T any](v T) *T { return &v }

// newEnv creates a small survey: likert (required), time allocation,
// tool count, checkbox and free text.
func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	surveyRepo := repositories.NewSurveyRepository(db)
	responseRepo := repositories.NewResponseRepository(db)

	survey := &entities.Survey{
		Name:       "Test",
		TargetRole: entities.TargetManager,
		Version:    "1",
		IsActive:   true,
		Questions: []entities.Question{
			{Section: "Flujo", QuestionText: "Efectividad", QuestionType: entities.QuestionLikert, Order: 1, Required: true,
				ValidationRules: datatypes.NewJSONType(entities.ValidationRules{Min: ptr(1.0), Max: ptr(10.0)}), AnalysisTags: "effectiveness"},
			{Section: "Tiempo", QuestionText: "Tiempo", QuestionType: entities.QuestionPercentage, Order: 2,
				ValidationRules: datatypes.NewJSONType(entities.ValidationRules{SumTo100: true}), AnalysisTags: "time_allocation"},
			{Section: "Sistemas", QuestionText: "Herramientas", QuestionType: entities.QuestionMultipleChoice, Order: 3,
				Options: datatypes.JSONSlice[string]{"1-2", "3-4", "5-6", "7-8", "9+"}, AnalysisTags: "tool_count"},
			{Section: "Obstáculos", QuestionText: "Obstáculos", QuestionType: entities.QuestionCheckbox, Order: 4,
				Options: datatypes.JSONSlice[string]{"A", "B"}, AnalysisTags: "bottleneck"},
			{Section: "Comentarios", QuestionText: "Comentarios", QuestionType: entities.QuestionText, Order: 5,
				ValidationRules: datatypes.NewJSONType(entities.ValidationRules{WordLimit: 5}), AnalysisTags: "feedback"},
		},
	}
	require.NoError(t, surveyRepo.Create(context.Background(), survey))

	catalog := cache.New[*analytics.Catalog]()
	t.Cleanup(catalog.Close)
	au := usecases.NewAnalyticsUseCase(surveyRepo, responseRepo, catalog, time.Minute, time.UTC)

	return &env{
		db:        db,
		survey:    survey,
		surveys:   usecases.NewSurveyUseCase(surveyRepo, responseRepo),
		analytics: au,
		items:     usecases.NewActionItemUseCase(repositories.NewActionItemRepository(db), au),
	}
}

func (e *env) q(order int) uint { return e.survey.Questions[order-1].ID }

func answer(qid uint, v string) usecases.SubmittedAnswer {
	return usecases.SubmittedAnswer{QuestionID: qid, Value: json.RawMessage(v)}
}

func (e *env) submit(t *testing.T, answers ...usecases.SubmittedAnswer) *usecases.SubmissionResult {
	t.Helper()
	res, err := e.surveys.Submit(context.Background(), usecases.SubmissionInput{SurveyID: e.survey.ID, Answers: answers, ResponseTime: 120})
	require.NoError(t, err)
	return res
}

func validationCode(t *testing.T, err error) *usecases.ValidationError {
	t.Helper()
	var ve *usecases.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve
}
