package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/application/analytics"
	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/PavaniTiago/workflow-insights-api/internal/config"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/repositories"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/cache"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database/dbtest"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database/migrations"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/handlers"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/middleware"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	jwtSecret     = "test-secret"
	adminEmail    = "admin@example.com"
	adminPassword = "s3cret-pass"
)

type server struct {
	app    *fiber.App
	db     *gorm.DB
	survey *entities.Survey
}

func ptr[T any](v T) *T { return &v }

func newServer(t *testing.T, authRequired bool) *server {
	t.Helper()
	ctx := context.Background()
	db := dbtest.Open(t)
	require.NoError(t, migrations.SeedAdmin(ctx, db, adminEmail, adminPassword))

	survey := &entities.Survey{
		Name:       "Gerentes",
		TargetRole: entities.TargetManager,
		Version:    "1",
		IsActive:   true,
		Questions: []entities.Question{
			{Section: "Flujo", QuestionText: "Efectividad", QuestionType: entities.QuestionLikert, Order: 1, Required: true,
				ValidationRules: datatypes.NewJSONType(entities.ValidationRules{Min: ptr(1.0), Max: ptr(10.0)}), AnalysisTags: "effectiveness"},
			{Section: "Tiempo", QuestionText: "Distribución", QuestionType: entities.QuestionPercentage, Order: 2,
				ValidationRules: datatypes.NewJSONType(entities.ValidationRules{SumTo100: true}), AnalysisTags: "time_allocation"},
			{Section: "Sistemas", QuestionText: "Herramientas", QuestionType: entities.QuestionMultipleChoice, Order: 3,
				Options: datatypes.JSONSlice[string]{"1-2", "3-4", "5-6", "7-8", "9+"}, AnalysisTags: "tool_count"},
			{Section: "Comentarios", QuestionText: "Comentarios", QuestionType: entities.QuestionText, Order: 4,
				ValidationRules: datatypes.NewJSONType(entities.ValidationRules{WordLimit: 50}), AnalysisTags: "feedback"},
		},
	}
	require.NoError(t, repositories.NewSurveyRepository(db).Create(ctx, survey))

	cfg := &config.Config{
		Auth:     config.AuthConfig{Required: authRequired, JWTSecret: jwtSecret, TokenTTL: time.Hour},
		Catalog:  config.CatalogConfig{TTL: time.Minute},
		Timezone: "UTC",
	}
	catalog := cache.New[*analytics.Catalog]()
	t.Cleanup(catalog.Close)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	middleware.SetupMiddlewares(app, "*")
	routes.SetupRoutes(app, db, cfg, catalog)

	return &server{app: app, db: db, survey: survey}
}

func (s *server) q(order int) uint { return s.survey.Questions[order-1].ID }

func (s *server) request(t *testing.T, method, path string, body interface{}, headers ...string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func bearer(token string) []string {
	return []string{fiber.HeaderAuthorization, "Bearer " + token}
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type answerBody struct {
	QuestionID uint        `json:"questionId"`
	Value      interface{} `json:"value"`
}

func (s *server) submit(t *testing.T, answers ...answerBody) {
	t.Helper()
	resp := s.request(t, http.MethodPost, "/api/surveys/submit", fiber.Map{
		"surveyId":     s.survey.ID,
		"answers":      answers,
		"responseTime": 180,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// seedScenario submits likert [2,2,8,9,10] plus one time allocation and one tool count answer.
func (s *server) seedScenario(t *testing.T) {
	t.Helper()
	s.submit(t, answerBody{s.q(1), 2})
	s.submit(t, answerBody{s.q(1), 2})
	s.submit(t, answerBody{s.q(1), 8})
	s.submit(t, answerBody{s.q(1), 9}, answerBody{s.q(2), map[string]float64{"Data Entry": 80, "Venta": 20}})
	s.submit(t, answerBody{s.q(1), 10}, answerBody{s.q(3), "9+"})
}

func (s *server) login(t *testing.T) string {
	t.Helper()
	resp := s.request(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res usecases.LoginResult
	decode(t, resp, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func tokenFor(t *testing.T, role entities.ViewerRole) string {
	t.Helper()
	token, _, err := usecases.NewAuthUseCase(nil, jwtSecret, time.Hour).IssueToken(&entities.User{ID: 99, Role: role})
	require.NoError(t, err)
	return token
}

func insightIDs(insights []entities.Insight) []string {
	ids := make([]string, 0, len(insights))
	for _, in := range insights {
		ids = append(ids, in.ID)
	}
	return ids
}

func TestHealth(t *testing.T) {
	s := newServer(t, false)
	resp := s.request(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "up", body["database"])
}

func TestSurveyEndpoints(t *testing.T) {
	s := newServer(t, false)

	resp := s.request(t, http.MethodGet, "/api/surveys", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Data  []entities.Survey `json:"data"`
		Total int               `json:"total"`
	}
	decode(t, resp, &list)
	assert.Equal(t, 1, list.Total)

	resp = s.request(t, http.MethodGet, "/api/surveys/"+itoa(s.survey.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var survey entities.Survey
	decode(t, resp, &survey)
	assert.Len(t, survey.Questions, 4)

	resp = s.request(t, http.MethodGet, "/api/surveys/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.request(t, http.MethodGet, "/api/surveys/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitErrors(t *testing.T) {
	s := newServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/surveys/submit", bytes.NewBufferString("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var ve usecases.ValidationError
	decode(t, resp, &ve)
	assert.Equal(t, usecases.CodeInvalidPayload, ve.Code)

	resp = s.request(t, http.MethodPost, "/api/surveys/submit", fiber.Map{
		"surveyId": s.survey.ID,
		"answers":  []answerBody{{s.q(1), 5}, {123456, 5}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "Invalid question IDs", body["error"])
	assert.Equal(t, usecases.CodeInvalidQuestionIDs, body["code"])
	assert.Equal(t, usecases.RecoveryClearCache, body["recovery"])

	dup := fiber.Map{"surveyId": s.survey.ID, "sessionId": "s-1", "answers": []answerBody{{s.q(1), 5}}}
	require.Equal(t, http.StatusCreated, s.request(t, http.MethodPost, "/api/surveys/submit", dup).StatusCode)
	assert.Equal(t, http.StatusConflict, s.request(t, http.MethodPost, "/api/surveys/submit", dup).StatusCode)

	resp = s.request(t, http.MethodPost, "/api/surveys/submit", fiber.Map{"surveyId": 4242, "answers": []answerBody{{s.q(1), 5}}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitWithToken(t *testing.T) {
	s := newServer(t, false)
	token := s.login(t)

	resp := s.request(t, http.MethodPost, "/api/surveys/submit",
		fiber.Map{"surveyId": s.survey.ID, "answers": []answerBody{{s.q(1), 7}}}, bearer(token)...)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var stored entities.Response
	require.NoError(t, s.db.First(&stored).Error)
	require.NotNil(t, stored.UserID)
	assert.False(t, stored.IsAnonymous)

	resp = s.request(t, http.MethodPost, "/api/surveys/submit",
		fiber.Map{"surveyId": s.survey.ID, "answers": []answerBody{{s.q(1), 7}}}, bearer("garbage")...)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newServer(t, false)
	resp := s.request(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": adminEmail, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestScenarioEffectivenessInsights(t *testing.T) {
	s := newServer(t, false)
	s.seedScenario(t)

	resp := s.request(t, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload entities.AnalyticsPayload
	decode(t, resp, &payload)

	assert.Equal(t, entities.RoleAdmin, payload.Role)
	assert.Equal(t, 5, payload.Summary.TotalResponses)

	var effectiveness *entities.Metric
	for i := range payload.BusinessMetrics.Scales {
		if payload.BusinessMetrics.Scales[i].Name == analytics.MetricWorkflowEffectiveness {
			effectiveness = &payload.BusinessMetrics.Scales[i]
		}
	}
	require.NotNil(t, effectiveness)
	assert.InDelta(t, 6.2, effectiveness.Value, 0.001)

	ids := insightIDs(payload.Insights)
	assert.Contains(t, ids, "workflowEffectiveness-critical")
	assert.Contains(t, ids, "workflowEffectiveness-celebration")
	var effectivenessInsights int
	for _, in := range payload.Insights {
		if in.Metric == analytics.MetricWorkflowEffectiveness {
			effectivenessInsights++
		}
	}
	assert.Equal(t, 2, effectivenessInsights)
}

func TestScenarioTimeAllocationAndComplexity(t *testing.T) {
	s := newServer(t, false)
	s.seedScenario(t)

	resp := s.request(t, http.MethodGet, "/api/analytics/process", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view entities.ProcessView
	decode(t, resp, &view)

	assert.Equal(t, entities.RoleCoordinator, view.Role)
	assert.Equal(t, 2.0, view.EfficiencyMetrics.AdminTimeRatio.Value)
	assert.Equal(t, 1.0, view.EfficiencyMetrics.SystemComplexity.Value)
}

func TestScenarioAssessorRecommendations(t *testing.T) {
	s := newServer(t, false)
	s.seedScenario(t)

	resp := s.request(t, http.MethodGet, "/api/analytics/recommendations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var admin entities.RecommendationsView
	decode(t, resp, &admin)
	strategic := 0
	for _, rec := range admin.Recommendations {
		if rec.Impact.Area == "Strategic Planning" {
			strategic++
		}
	}
	require.NotZero(t, strategic, "three critical insights trigger the executive review")

	resp = s.request(t, http.MethodGet, "/api/analytics/recommendations?role=assessor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var assessor entities.RecommendationsView
	decode(t, resp, &assessor)
	assert.Equal(t, entities.RoleAssessor, assessor.Role)
	assert.Less(t, len(assessor.Recommendations), len(admin.Recommendations))
	for _, rec := range assessor.Recommendations {
		assert.NotEqual(t, "Strategic Planning", rec.Impact.Area)
		assert.True(t, rec.Effort.Level == entities.EffortQuickWin || rec.Priority >= 7, rec.ID)
	}
}

func TestRecommendationDetail(t *testing.T) {
	s := newServer(t, false)
	s.seedScenario(t)

	resp := s.request(t, http.MethodGet, "/api/analytics/recommendations?id=automate-data-entry", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail entities.RecommendationDetail
	decode(t, resp, &detail)
	assert.Equal(t, "automate-data-entry", detail.ID)
	assert.NotEmpty(t, detail.ActionSteps)

	resp = s.request(t, http.MethodGet, "/api/analytics/recommendations?id=does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalyticsETag(t *testing.T) {
	s := newServer(t, false)
	s.seedScenario(t)

	resp := s.request(t, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get(fiber.HeaderETag)
	require.NotEmpty(t, etag)

	resp = s.request(t, http.MethodGet, "/api/analytics", nil, fiber.HeaderIfNoneMatch, etag)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	s.submit(t, answerBody{s.q(1), 5})
	resp = s.request(t, http.MethodGet, "/api/analytics", nil, fiber.HeaderIfNoneMatch, etag)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDrillDownAndExport(t *testing.T) {
	s := newServer(t, false)
	s.seedScenario(t)

	resp := s.request(t, http.MethodGet, "/api/analytics/drilldown?metric=workflowEffectiveness", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var drill entities.DrillDown
	decode(t, resp, &drill)
	require.Len(t, drill.Questions, 1)
	assert.Equal(t, 5, drill.Questions[0].SampleSize)
	assert.Equal(t, 2, drill.Questions[0].Distribution["2"])

	assert.Equal(t, http.StatusBadRequest, s.request(t, http.MethodGet, "/api/analytics/drilldown?metric=bogus", nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, s.request(t, http.MethodGet, "/api/analytics/drilldown", nil).StatusCode)

	resp = s.request(t, http.MethodGet, "/api/analytics/export?format=csv&role=coordinator", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "analytics-coordinator-")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("section,id,name")))

	resp = s.request(t, http.MethodGet, "/api/analytics/export?format=json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "application/json")

	assert.Equal(t, http.StatusBadRequest, s.request(t, http.MethodGet, "/api/analytics/export?format=xml", nil).StatusCode)
}

func TestRoleResolution(t *testing.T) {
	s := newServer(t, true)
	s.seedScenario(t)

	assert.Equal(t, http.StatusUnauthorized, s.request(t, http.MethodGet, "/api/analytics/summary", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, s.request(t, http.MethodGet, "/api/action-items", nil).StatusCode)

	admin := s.login(t)
	resp := s.request(t, http.MethodGet, "/api/analytics/summary", nil, bearer(admin)...)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary entities.SummaryView
	decode(t, resp, &summary)
	assert.Equal(t, entities.RoleAdmin, summary.Role)

	assessor := tokenFor(t, entities.RoleAssessor)
	resp = s.request(t, http.MethodGet, "/api/analytics/summary", nil, bearer(assessor)...)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &summary)
	assert.Equal(t, entities.RoleAssessor, summary.Role, "default capped at the viewer role")

	resp = s.request(t, http.MethodGet, "/api/analytics/summary?role=admin", nil, bearer(assessor)...)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	coordinator := tokenFor(t, entities.RoleCoordinator)
	resp = s.request(t, http.MethodGet, "/api/analytics/team?role=assessor", nil, bearer(coordinator)...)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var team entities.TeamView
	decode(t, resp, &team)
	assert.Equal(t, entities.RoleAssessor, team.Role)

	resp = s.request(t, http.MethodGet, "/api/analytics/process?role=owner", nil, bearer(admin)...)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// submissions stay open without a token
	s.submit(t, answerBody{s.q(1), 6})
}

func TestActionItemEndpoints(t *testing.T) {
	s := newServer(t, false)
	s.seedScenario(t)

	resp := s.request(t, http.MethodPost, "/api/action-items", fiber.Map{"recommendationId": "automate-data-entry", "owner": "Ana"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item entities.ActionItem
	decode(t, resp, &item)
	assert.Equal(t, entities.ActionOpen, item.Status)

	resp = s.request(t, http.MethodPatch, "/api/action-items/"+itoa(item.ID), fiber.Map{"status": "done"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &item)
	assert.Equal(t, entities.ActionDone, item.Status)

	resp = s.request(t, http.MethodGet, "/api/action-items?status=done", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Total int `json:"total"`
	}
	decode(t, resp, &list)
	assert.Equal(t, 1, list.Total)

	assert.Equal(t, http.StatusNotFound, s.request(t, http.MethodPatch, "/api/action-items/999", fiber.Map{"status": "done"}).StatusCode)
	assert.Equal(t, http.StatusBadRequest, s.request(t, http.MethodPatch, "/api/action-items/"+itoa(item.ID), fiber.Map{"status": "finished"}).StatusCode)
	assert.Equal(t, http.StatusNotFound, s.request(t, http.MethodPost, "/api/action-items", fiber.Map{"recommendationId": "nope"}).StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	s := newServer(t, false)
	resp := s.request(t, http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.NotEmpty(t, body["error"])
}
