package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/repositories"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyRepository(t *testing.T) {
	db := dbtest.Seeded(t)
	repo := repositories.NewSurveyRepository(db)
	ctx := context.Background()

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Empty(t, active[0].Questions)

	survey, err := repo.FindByID(ctx, active[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, survey.Questions)
	for i := 1; i < len(survey.Questions); i++ {
		assert.Less(t, survey.Questions[i-1].Order, survey.Questions[i].Order)
	}

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NotEmpty(t, all[1].Questions)
}

func TestResponseRepositorySubmit(t *testing.T) {
	db := dbtest.Seeded(t)
	surveys := repositories.NewSurveyRepository(db)
	responses := repositories.NewResponseRepository(db)
	ctx := context.Background()

	active, err := surveys.ListActive(ctx)
	require.NoError(t, err)
	survey, err := surveys.FindByID(ctx, active[0].ID)
	require.NoError(t, err)

	completed := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	n := 7.0
	resp := &entities.Response{
		SurveyID:    survey.ID,
		SessionID:   "session-1",
		IsAnonymous: true,
		StartedAt:   completed.Add(-5 * time.Minute),
		CompletedAt: &completed,
		IsComplete:  true,
	}
	answers := []entities.Answer{
		{QuestionID: survey.Questions[0].ID, AnswerValue: "7", AnswerNumeric: &n},
		{QuestionID: survey.Questions[5].ID, AnswerValue: "3-4"},
	}
	require.NoError(t, responses.Submit(ctx, resp, answers))
	assert.NotZero(t, resp.ID)

	dup := &entities.Response{SurveyID: survey.ID, SessionID: "session-1", StartedAt: completed}
	err = responses.Submit(ctx, dup, nil)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	list, err := responses.ListComplete(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Answers, 2)
	assert.Equal(t, "7", list[0].Answers[0].AnswerValue)
	require.NotNil(t, list[0].Answers[0].AnswerNumeric)
	assert.Equal(t, 7.0, *list[0].Answers[0].AnswerNumeric)

	started, err := responses.CountStarted(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, started)
}

func TestResponseRepositorySubmitIsAtomic(t *testing.T) {
	db := dbtest.Seeded(t)
	responses := repositories.NewResponseRepository(db)
	ctx := context.Background()

	var survey entities.Survey
	require.NoError(t, db.First(&survey).Error)

	resp := &entities.Response{SurveyID: survey.ID, SessionID: "atomic", StartedAt: time.Now()}
	// Two answers with the same primary key fail the batch insert.
	answers := []entities.Answer{
		{ID: 42, QuestionID: 1, AnswerValue: "a"},
		{ID: 42, QuestionID: 2, AnswerValue: "b"},
	}
	require.Error(t, responses.Submit(ctx, resp, answers))

	started, err := responses.CountStarted(ctx)
	require.NoError(t, err)
	assert.Zero(t, started)
}

func TestUserRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()

	user := &entities.User{Email: " Coord@Example.com", Role: entities.RoleCoordinator, PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByEmail(ctx, "coord@example.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	err = repo.Create(ctx, &entities.User{Email: "coord@example.com", Role: entities.RoleAdmin, PasswordHash: "y"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	_, err = repo.FindByID(ctx, 404)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestActionItemRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := repositories.NewActionItemRepository(db)
	ctx := context.Background()

	first := &entities.ActionItem{RecommendationID: "automate-data-entry", Title: "Automatizar captura", Status: entities.ActionOpen}
	second := &entities.ActionItem{RecommendationID: "reduce-tool-sprawl", Title: "Consolidar herramientas", Status: entities.ActionOpen}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	first.Status = entities.ActionDone
	require.NoError(t, repo.Update(ctx, first))

	all, err := repo.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := repo.List(ctx, "", entities.ActionOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "reduce-tool-sprawl", open[0].RecommendationID)

	byRec, err := repo.List(ctx, "automate-data-entry", "")
	require.NoError(t, err)
	require.Len(t, byRec, 1)
	assert.Equal(t, entities.ActionDone, byRec[0].Status)
}
