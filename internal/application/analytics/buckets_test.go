package analytics

import (
	"testing"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "admision", Fold("  Admisión "))
	assert.Equal(t, "inscripcion", Fold("INSCRIPCIÓN"))
	assert.Equal(t, "pesimo", Fold("Pésimo"))
}

func TestBucketsFor(t *testing.T) {
	tests := []struct {
		name string
		q    entities.Question
		want []Bucket
	}{
		{"single tag", entities.Question{AnalysisTags: "effectiveness"}, []Bucket{BucketWorkflowEffectiveness}},
		{"aliases collapse", entities.Question{AnalysisTags: "effectiveness, workflow"}, []Bucket{BucketWorkflowEffectiveness}},
		{"two buckets", entities.Question{AnalysisTags: "collaboration,team,manager"}, []Bucket{BucketCollaboration, BucketManagerEffectiveness}},
		{"accented tag", entities.Question{AnalysisTags: "Colaboración"}, []Bucket{BucketCollaboration}},
		{"spaced tag", entities.Question{AnalysisTags: "time allocation"}, []Bucket{BucketTimeAllocation}},
		{"text fallback", entities.Question{AnalysisTags: "unknown", QuestionText: "¿Cuántas herramientas usas al día?"}, []Bucket{BucketToolCount}},
		{"no match", entities.Question{QuestionText: "Nombre del campus"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketsFor(tt.q))
		})
	}
}

func TestTagIndex(t *testing.T) {
	idx := BuildTagIndex([]entities.Question{
		{ID: 7, QuestionType: entities.QuestionLikert, AnalysisTags: "effectiveness"},
		{ID: 3, QuestionType: entities.QuestionLikert, AnalysisTags: "workflow"},
		{ID: 5, QuestionType: entities.QuestionText, AnalysisTags: "effectiveness"},
	})

	assert.Equal(t, []uint{3, 7}, idx.Questions(BucketWorkflowEffectiveness, entities.QuestionLikert))
	assert.Equal(t, []uint{5}, idx.Questions(BucketWorkflowEffectiveness, entities.QuestionText))
	assert.Empty(t, idx.Questions(BucketFunnel, entities.QuestionPercentage))

	q, ok := idx.Question(5)
	assert.True(t, ok)
	assert.Equal(t, entities.QuestionText, q.QuestionType)
	assert.Equal(t, []Bucket{BucketWorkflowEffectiveness}, idx.BucketsOf(7))
}
