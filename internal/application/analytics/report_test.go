package analytics

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportEmpty(t *testing.T) {
	f := newFixture()
	f.question(managerSurveyID, entities.QuestionLikert, "Flujo", "effectiveness", "q")
	r := f.report(t)

	assert.Empty(t, r.Insights)
	assert.Empty(t, r.Recommendations)
	for _, m := range r.Findings.Metrics() {
		assert.Zero(t, m.Value, m.Name)
		assert.Equal(t, entities.ConfidenceLow, m.Confidence.Level, m.Name)
		assert.Equal(t, entities.MetricNoData, m.Status, m.Name)
	}

	p := r.Payload(entities.RoleAdmin)
	assert.Equal(t, entities.PayloadVersion, p.Version)
	assert.Zero(t, p.Summary.TotalResponses)
	assert.Zero(t, p.Summary.CompletionRate)
	assert.Nil(t, p.Summary.LastResponseAt)
	assert.Equal(t, "unknown", p.SystemHealth.Status)
	assert.Empty(t, p.PerformanceTrends.ResponsesByDay)
	assert.NotEmpty(t, p.ETag)
}

func scenarioFixture() *fixture {
	f := newFixture()
	eff := f.question(managerSurveyID, entities.QuestionLikert, "Flujo", "effectiveness", "q")
	for _, v := range []float64{2, 2, 8, 9, 10} {
		f.respond(managerSurveyID, likert(eff, v))
	}
	return f
}

func TestPayloadSummaryAndHealth(t *testing.T) {
	f := scenarioFixture()
	r := BuildReport(Input{
		Catalog:   f.catalog(),
		Responses: f.responses,
		Started:   10,
		Now:       baseTime.AddDate(0, 1, 0),
		Location:  time.UTC,
	})

	s := r.Summary()
	assert.Equal(t, 5, s.TotalResponses)
	assert.Equal(t, 10, s.StartedResponses)
	assert.Equal(t, 50.0, s.CompletionRate)
	assert.Equal(t, 240.0, s.AverageResponseTimeSeconds)
	assert.Equal(t, 5, s.ResponsesByRole[entities.TargetManager])
	assert.Zero(t, s.ResponsesByRole[entities.TargetSales])
	require.NotNil(t, s.LastResponseAt)
	assert.Equal(t, entities.ConfidenceLow, s.Confidence.Level)

	h := r.SystemHealth()
	assert.Equal(t, 6.2, h.Score)
	assert.Equal(t, "attention", h.Status)
	assert.Len(t, h.Components, len(Scales)+2)

	achievements := r.Achievements()
	require.Len(t, achievements, 1)
	assert.Equal(t, "workflowEffectiveness-celebration", achievements[0].InsightID)
	assert.Equal(t, 6.2, achievements[0].Value)

	actionable := r.ActionableInsights()
	require.Len(t, actionable, 1)
	assert.Equal(t, "workflowEffectiveness-critical", actionable[0].ID)
}

func TestSectionPerformance(t *testing.T) {
	f := newFixture()
	a := f.question(managerSurveyID, entities.QuestionLikert, "Flujo", "effectiveness", "a")
	b := f.question(managerSurveyID, entities.QuestionLikert, "Flujo", "process", "b")
	c := f.question(managerSurveyID, entities.QuestionLikert, "Equipo", "collaboration", "c")
	f.respond(managerSurveyID, likert(a, 6), likert(b, 8), likert(c, 4))
	f.respond(managerSurveyID, likert(a, 4))

	sections := f.report(t).SectionPerformance()
	require.Len(t, sections, 2)
	assert.Equal(t, "Flujo", sections[0].Section)
	assert.Equal(t, 6.0, sections[0].AverageScore)
	assert.Equal(t, 3, sections[0].AnswerCount)
	assert.Equal(t, 100.0, sections[0].ResponseRate)
	assert.Equal(t, []uint{a, b}, sections[0].QuestionIDs)
	assert.Equal(t, "Equipo", sections[1].Section)
	assert.Equal(t, 50.0, sections[1].ResponseRate)
}

func TestPerformanceTrendsZeroFilled(t *testing.T) {
	f := scenarioFixture()
	trends := f.report(t).PerformanceTrends()

	require.Len(t, trends.ResponsesByDay, 5)
	assert.Equal(t, "2025-03-11", trends.ResponsesByDay[0].Date)
	for _, d := range trends.ResponsesByDay {
		assert.Equal(t, 1, d.Count)
	}
	require.Len(t, trends.Metrics, 1)
	assert.Equal(t, MetricWorkflowEffectiveness, trends.Metrics[0].Metric)

	f.responses = f.responses[:1]
	extra := *f.responses[0].CompletedAt
	extra = extra.AddDate(0, 0, 3)
	f.respond(managerSurveyID, likert(1, 7))
	f.responses[1].CompletedAt = &extra
	days := f.report(t).PerformanceTrends().ResponsesByDay
	require.Len(t, days, 4)
	assert.Equal(t, 0, days[1].Count)
	assert.Equal(t, 1, days[3].Count)
}

func TestBusinessMetricsAdminHours(t *testing.T) {
	f := newFixture()
	q := f.question(salesSurveyID, entities.QuestionPercentage, "Tiempo", "time_allocation", "q")
	f.respond(salesSurveyID, raw(q, `{"Venta":50,"Captura de datos":25,"Otros":25}`))

	bm := f.report(t).BusinessMetrics()
	assert.Equal(t, 10.0, bm.AdminHoursPerWeek)
	assert.Len(t, bm.Scales, len(Scales))
	assert.NotNil(t, bm.PriorityRanking)
}

func TestETagIgnoresGeneratedAt(t *testing.T) {
	f := scenarioFixture()
	r1 := f.report(t)
	r2 := BuildReport(Input{Catalog: f.catalog(), Responses: f.responses, Started: 5, Now: time.Now(), Location: time.UTC})

	assert.Equal(t, r1.Payload(entities.RoleAdmin).ETag, r2.Payload(entities.RoleAdmin).ETag)
	assert.NotEqual(t, r1.Payload(entities.RoleAdmin).ETag, r1.Payload(entities.RoleCoordinator).ETag)
}

func TestRecommendationsView(t *testing.T) {
	r := scenarioFixture().report(t)

	admin := r.RecommendationsView(entities.RoleAdmin)
	assert.Equal(t, []string{"streamline-daily-workflow", "scale-best-practices"}, recIDs(admin.Recommendations))
	assert.Equal(t, 2, admin.Total)
	assert.Len(t, admin.Grouped, 4)

	assessor := r.RecommendationsView(entities.RoleAssessor)
	// streamline is high/medium (priority 8); scale-best-practices is Strategic Planning
	assert.Equal(t, []string{"streamline-daily-workflow"}, recIDs(assessor.Recommendations))

	_, ok := r.Recommendation("scale-best-practices", entities.RoleAssessor)
	assert.False(t, ok)
	got, ok := r.Recommendation("scale-best-practices", entities.RoleAdmin)
	assert.True(t, ok)
	assert.Equal(t, 2, got.Priority)
}

func TestViews(t *testing.T) {
	f := newFixture()
	mq := f.question(managerSurveyID, entities.QuestionLikert, "Equipo", "collaboration", "q")
	sq := f.question(salesSurveyID, entities.QuestionLikert, "Equipo", "collaboration", "q")
	pq := f.question(managerSurveyID, entities.QuestionLikert, "Proceso", "process", "q")
	f.respond(managerSurveyID, likert(mq, 9), likert(pq, 3))
	f.respond(salesSurveyID, likert(sq, 4))
	r := f.report(t)

	team := r.TeamView(entities.RoleCoordinator)
	assert.Equal(t, MetricCollaborationQuality, team.Collaboration.Name)
	assert.Equal(t, 6.5, team.Collaboration.Value)
	assert.Contains(t, insightIDs(team.Insights), "team-gap-collaborationQuality")

	process := r.ProcessView(entities.RoleCoordinator)
	assert.Equal(t, []string{"processClarity-warning"}, insightIDs(process.Insights))
	assert.NotNil(t, process.ProcessIssues)

	summary := r.SummaryView(entities.RoleAdmin)
	assert.LessOrEqual(t, len(summary.TopInsights), 5)
	assert.NotNil(t, summary.QuickWins)
}

func TestDrillDown(t *testing.T) {
	f := newFixture()
	q := f.question(managerSurveyID, entities.QuestionLikert, "Flujo", "effectiveness", "¿Qué tan efectivo?")
	tools := f.question(salesSurveyID, entities.QuestionMultipleChoice, "Herramientas", "tool_count", "q")
	f.respond(managerSurveyID, likert(q, 4))
	f.respond(managerSurveyID, likert(q, 8))
	f.respond(salesSurveyID, raw(tools, "3-4"))
	r := f.report(t)

	dd, err := r.DrillDown(MetricWorkflowEffectiveness)
	require.NoError(t, err)
	assert.Equal(t, 6.0, dd.Metric.Value)
	require.Len(t, dd.Questions, 1)
	dq := dd.Questions[0]
	assert.Equal(t, q, dq.QuestionID)
	assert.Equal(t, 2, dq.SampleSize)
	require.NotNil(t, dq.Mean)
	assert.Equal(t, 6.0, *dq.Mean)
	assert.Equal(t, map[string]int{"4": 1, "8": 1}, dq.Distribution)

	dd, err = r.DrillDown(MetricSystemComplexity)
	require.NoError(t, err)
	require.Len(t, dd.Questions, 1)
	assert.Nil(t, dd.Questions[0].Mean)
	assert.Equal(t, map[string]int{"3-4": 1}, dd.Questions[0].Distribution)

	_, err = r.DrillDown("nope")
	assert.ErrorIs(t, err, ErrUnknownMetric)

	for _, name := range MetricNames() {
		_, err := r.DrillDown(name)
		assert.NoError(t, err, name)
	}
}

func TestExportCSV(t *testing.T) {
	r := scenarioFixture().report(t)
	var buf bytes.Buffer
	require.NoError(t, r.Export(&buf, ExportCSV, entities.RoleAssessor))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	metrics := len(r.Findings.Metrics())
	require.Len(t, rows, 1+metrics+1)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"metric", MetricWorkflowEffectiveness}, rows[1][:2])
	assert.Equal(t, "6.20", rows[1][3])
	last := rows[len(rows)-1]
	assert.Equal(t, "recommendation", last[0])
	assert.Equal(t, "streamline-daily-workflow", last[1])
}

func TestExportJSON(t *testing.T) {
	r := scenarioFixture().report(t)
	var buf bytes.Buffer
	require.NoError(t, r.Export(&buf, ExportJSON, entities.RoleCoordinator))

	var doc struct {
		Payload struct {
			Role string `json:"role"`
		} `json:"payload"`
		Recommendations struct {
			Total int `json:"total"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "coordinator", doc.Payload.Role)
	assert.Equal(t, len(r.RecommendationsFor(entities.RoleCoordinator)), doc.Recommendations.Total)
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportCSV, f)
	f, err = ParseExportFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, ExportJSON, f)
	assert.Equal(t, "application/json", f.ContentType())
	_, err = ParseExportFormat("pdf")
	assert.Error(t, err)
}

func TestPayloadActionableInsightsFollowRole(t *testing.T) {
	f := newFixture()
	mgr := f.question(managerSurveyID, entities.QuestionLikert, "Liderazgo", "manager_effectiveness", "q")
	eff := f.question(managerSurveyID, entities.QuestionLikert, "Flujo", "effectiveness", "q")
	for i := 0; i < 4; i++ {
		f.respond(managerSurveyID, likert(mgr, 2), likert(eff, 2))
	}
	r := f.report(t)

	var coaching []string
	for _, rec := range r.Recommendations {
		if rec.ID == "manager-coaching-toolkit" {
			coaching = rec.SourceInsightIDs
		}
	}
	require.NotEmpty(t, coaching)

	admin := insightIDs(r.Payload(entities.RoleAdmin).ActionableInsights)
	assert.Equal(t, insightIDs(r.ActionableInsights()), admin)

	assessor := insightIDs(r.Payload(entities.RoleAssessor).ActionableInsights)
	assert.Less(t, len(assessor), len(admin))
	for _, id := range coaching {
		assert.Contains(t, admin, id)
		assert.NotContains(t, assessor, id)
	}
	assert.Equal(t, assessor, insightIDs(r.SummaryView(entities.RoleAssessor).TopInsights))
}
