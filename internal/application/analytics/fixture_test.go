package analytics

import (
	"strconv"
	"testing"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
)

const (
	managerSurveyID uint = 1
	salesSurveyID   uint = 2
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// fixture builds an in-memory catalog and a list of complete responses.
type fixture struct {
	surveys   []entities.Survey
	responses []entities.Response
	nextQ     uint
	nextResp  uint
	nextAns   uint
}

func newFixture() *fixture {
	return &fixture{
		surveys: []entities.Survey{
			{ID: managerSurveyID, Name: "Manager", TargetRole: entities.TargetManager, IsActive: true},
			{ID: salesSurveyID, Name: "Sales", TargetRole: entities.TargetSales, IsActive: true},
		},
	}
}

func (f *fixture) question(surveyID uint, t entities.QuestionType, section, tags, text string) uint {
	f.nextQ++
	for i := range f.surveys {
		if f.surveys[i].ID == surveyID {
			f.surveys[i].Questions = append(f.surveys[i].Questions, entities.Question{
				ID:           f.nextQ,
				SurveyID:     surveyID,
				Section:      section,
				QuestionText: text,
				QuestionType: t,
				Order:        len(f.surveys[i].Questions) + 1,
				AnalysisTags: tags,
			})
		}
	}
	return f.nextQ
}

// respond adds a complete response; responses are spaced one day apart.
func (f *fixture) respond(surveyID uint, answers ...entities.Answer) uint {
	f.nextResp++
	started := baseTime.AddDate(0, 0, int(f.nextResp))
	completed := started.Add(4 * time.Minute)
	for i := range answers {
		f.nextAns++
		answers[i].ID = f.nextAns
		answers[i].ResponseID = f.nextResp
	}
	f.responses = append(f.responses, entities.Response{
		ID:                  f.nextResp,
		SurveyID:            surveyID,
		SessionID:           "s-" + strconv.Itoa(int(f.nextResp)),
		StartedAt:           started,
		CompletedAt:         &completed,
		IsComplete:          true,
		ResponseTimeSeconds: 240,
		Answers:             answers,
	})
	return f.nextResp
}

func (f *fixture) catalog() *Catalog { return NewCatalog(f.surveys) }

func (f *fixture) set() *AnswerSet { return BuildAnswerSet(f.catalog(), f.responses) }

func (f *fixture) report(t *testing.T) *Report {
	t.Helper()
	return BuildReport(Input{
		Catalog:   f.catalog(),
		Responses: f.responses,
		Started:   len(f.responses),
		Now:       baseTime.AddDate(0, 1, 0),
		Location:  time.UTC,
	})
}

func likert(qid uint, v float64) entities.Answer {
	n := v
	return entities.Answer{QuestionID: qid, AnswerValue: strconv.FormatFloat(v, 'f', -1, 64), AnswerNumeric: &n}
}

func raw(qid uint, value string) entities.Answer {
	return entities.Answer{QuestionID: qid, AnswerValue: value}
}

func insightIDs(insights []entities.Insight) []string {
	ids := make([]string, 0, len(insights))
	for _, in := range insights {
		ids = append(ids, in.ID)
	}
	return ids
}

func recIDs(recs []entities.Recommendation) []string {
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}
