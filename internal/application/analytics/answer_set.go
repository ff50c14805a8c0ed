package analytics

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
)

// Catalog is the immutable question catalog plus its tag index.
type Catalog struct {
	Surveys []entities.Survey
	Index   *TagIndex

	surveys         map[uint]*entities.Survey
	questionSurveys map[uint]uint
}

// NewCatalog indexes the given surveys (with their questions preloaded).
func NewCatalog(surveys []entities.Survey) *Catalog {
	c := &Catalog{
		Surveys:         surveys,
		surveys:         make(map[uint]*entities.Survey, len(surveys)),
		questionSurveys: make(map[uint]uint),
	}
	var questions []entities.Question
	for i := range c.Surveys {
		s := &c.Surveys[i]
		c.surveys[s.ID] = s
		for _, q := range s.Questions {
			c.questionSurveys[q.ID] = s.ID
			questions = append(questions, q)
		}
	}
	c.Index = BuildTagIndex(questions)
	return c
}

// Survey returns the survey with the given id.
func (c *Catalog) Survey(id uint) (*entities.Survey, bool) {
	s, ok := c.surveys[id]
	return s, ok
}

// SurveyOf returns the survey that owns a question.
func (c *Catalog) SurveyOf(questionID uint) (*entities.Survey, bool) {
	sid, ok := c.questionSurveys[questionID]
	if !ok {
		return nil, false
	}
	return c.Survey(sid)
}

// ParsedAnswer is a stored answer decoded against its question's type.
type ParsedAnswer struct {
	ResponseID  uint
	QuestionID  uint
	Role        entities.TargetRole
	CompletedAt time.Time
	Value       entities.AnswerValue
	// HasNumeric is false for likert rows without answer_numeric (legacy rows);
	// those never feed averaged scales.
	HasNumeric bool
	Raw        string
}

// ResponseInfo is the per-response data the presenters need.
type ResponseInfo struct {
	ID                  uint
	SurveyID            uint
	Role                entities.TargetRole
	StartedAt           time.Time
	CompletedAt         time.Time
	ResponseTimeSeconds int
}

// AnswerSet is the validated view of every complete response.
type AnswerSet struct {
	Catalog   *Catalog
	Responses []ResponseInfo

	byQuestion            map[uint][]ParsedAnswer
	unparseableByQuestion map[uint]int
	Unparseable           int
	UnknownQuestions      int
}

// BuildAnswerSet decodes the answers of every complete response.
// Values that fail to decode are counted per question and left out; they are
// never turned into zeros.
func BuildAnswerSet(catalog *Catalog, responses []entities.Response) *AnswerSet {
	set := &AnswerSet{
		Catalog:               catalog,
		byQuestion:            make(map[uint][]ParsedAnswer),
		unparseableByQuestion: make(map[uint]int),
	}

	for _, r := range responses {
		if !r.IsComplete {
			continue
		}
		survey, ok := catalog.Survey(r.SurveyID)
		if !ok {
			continue
		}
		completed := r.StartedAt
		if r.CompletedAt != nil {
			completed = *r.CompletedAt
		}
		set.Responses = append(set.Responses, ResponseInfo{
			ID:                  r.ID,
			SurveyID:            r.SurveyID,
			Role:                survey.TargetRole,
			StartedAt:           r.StartedAt,
			CompletedAt:         completed,
			ResponseTimeSeconds: r.ResponseTimeSeconds,
		})

		for _, a := range r.Answers {
			q, ok := catalog.Index.Question(a.QuestionID)
			if !ok {
				set.UnknownQuestions++
				continue
			}
			value, err := entities.ParseStoredAnswer(q.QuestionType, a.AnswerValue, a.AnswerNumeric)
			if err != nil {
				if !errors.Is(err, entities.ErrUnparseableAnswer) {
					slog.Warn("Unexpected answer decode error", "answer_id", a.ID, "error", err)
				}
				set.Unparseable++
				set.unparseableByQuestion[a.QuestionID]++
				continue
			}
			set.byQuestion[a.QuestionID] = append(set.byQuestion[a.QuestionID], ParsedAnswer{
				ResponseID:  r.ID,
				QuestionID:  a.QuestionID,
				Role:        survey.TargetRole,
				CompletedAt: completed,
				Value:       value,
				HasNumeric:  a.AnswerNumeric != nil,
				Raw:         a.AnswerValue,
			})
		}
	}

	sort.SliceStable(set.Responses, func(i, j int) bool {
		if !set.Responses[i].CompletedAt.Equal(set.Responses[j].CompletedAt) {
			return set.Responses[i].CompletedAt.Before(set.Responses[j].CompletedAt)
		}
		return set.Responses[i].ID < set.Responses[j].ID
	})
	return set
}

// TotalComplete is the number of complete responses, the basis for confidence.
func (s *AnswerSet) TotalComplete() int { return len(s.Responses) }

// Answers returns the decoded answers for a question.
func (s *AnswerSet) Answers(questionID uint) []ParsedAnswer {
	return s.byQuestion[questionID]
}

// UnparseableFor returns how many stored answers of a question failed to decode.
func (s *AnswerSet) UnparseableFor(questionID uint) int {
	return s.unparseableByQuestion[questionID]
}

// Lookup gathers the answers for a (bucket, type) pair plus the number of
// undecodable rows among those questions.
func (s *AnswerSet) Lookup(b Bucket, t entities.QuestionType) ([]ParsedAnswer, []uint, int) {
	ids := s.Catalog.Index.Questions(b, t)
	var out []ParsedAnswer
	skipped := 0
	for _, id := range ids {
		out = append(out, s.byQuestion[id]...)
		skipped += s.unparseableByQuestion[id]
	}
	return out, ids, skipped
}

// ConfidenceFor classifies reliability by total complete responses.
func ConfidenceFor(total int) entities.Confidence {
	level := entities.ConfidenceLow
	switch {
	case total >= 20:
		level = entities.ConfidenceHigh
	case total >= 10:
		level = entities.ConfidenceMedium
	}
	return entities.Confidence{Level: level, TotalResponses: total}
}
