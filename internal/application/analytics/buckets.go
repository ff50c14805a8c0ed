// Package analytics turns stored survey answers into metrics, insights and
// prioritized recommendations. Everything here is pure: callers fetch rows,
// build an AnswerSet and ask for a Report.
package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"golang.org/x/text/unicode/norm"
)

// Bucket is the semantic group a question's answers are attributed to.
type Bucket string

const (
	BucketWorkflowEffectiveness Bucket = "workflow_effectiveness"
	BucketManagerEffectiveness  Bucket = "manager_effectiveness"
	BucketCollaboration         Bucket = "collaboration"
	BucketSystemSatisfaction    Bucket = "system_satisfaction"
	BucketProcessClarity        Bucket = "process_clarity"
	BucketTimeAllocation        Bucket = "time_allocation"
	BucketToolCount             Bucket = "tool_count"
	BucketFunnel                Bucket = "funnel"
	BucketBottleneck            Bucket = "bottleneck"
	BucketPriorities            Bucket = "priorities"
	BucketFeedback              Bucket = "feedback"
)

// AllBuckets in declaration order.
var AllBuckets = []Bucket{
	BucketWorkflowEffectiveness,
	BucketManagerEffectiveness,
	BucketCollaboration,
	BucketSystemSatisfaction,
	BucketProcessClarity,
	BucketTimeAllocation,
	BucketToolCount,
	BucketFunnel,
	BucketBottleneck,
	BucketPriorities,
	BucketFeedback,
}

// tagAliases maps folded analysis tags to buckets. Every tag used by the seed
// surveys (and by older survey versions) must be listed here.
var tagAliases = map[string]Bucket{
	"effectiveness":          BucketWorkflowEffectiveness,
	"workflow":               BucketWorkflowEffectiveness,
	"workflow_effectiveness": BucketWorkflowEffectiveness,
	"efectividad":            BucketWorkflowEffectiveness,
	"eficacia":               BucketWorkflowEffectiveness,
	"productivity":           BucketWorkflowEffectiveness,
	"productividad":          BucketWorkflowEffectiveness,

	"manager":               BucketManagerEffectiveness,
	"management":            BucketManagerEffectiveness,
	"manager_effectiveness": BucketManagerEffectiveness,
	"leadership":            BucketManagerEffectiveness,
	"liderazgo":             BucketManagerEffectiveness,
	"gerencia":              BucketManagerEffectiveness,

	"collaboration": BucketCollaboration,
	"teamwork":      BucketCollaboration,
	"team":          BucketCollaboration,
	"communication": BucketCollaboration,
	"handoff":       BucketCollaboration,
	"colaboracion":  BucketCollaboration,
	"comunicacion":  BucketCollaboration,

	"satisfaction":        BucketSystemSatisfaction,
	"system_satisfaction": BucketSystemSatisfaction,
	"tool_satisfaction":   BucketSystemSatisfaction,
	"usability":           BucketSystemSatisfaction,
	"satisfaccion":        BucketSystemSatisfaction,
	"usabilidad":          BucketSystemSatisfaction,

	"process":         BucketProcessClarity,
	"process_clarity": BucketProcessClarity,
	"clarity":         BucketProcessClarity,
	"proceso":         BucketProcessClarity,
	"claridad":        BucketProcessClarity,

	"time_allocation":     BucketTimeAllocation,
	"time":                BucketTimeAllocation,
	"tiempo":              BucketTimeAllocation,
	"distribucion_tiempo": BucketTimeAllocation,

	"tool_count":   BucketToolCount,
	"tools":        BucketToolCount,
	"herramientas": BucketToolCount,

	"funnel":     BucketFunnel,
	"pipeline":   BucketFunnel,
	"embudo":     BucketFunnel,
	"conversion": BucketFunnel,

	"bottleneck":     BucketBottleneck,
	"bottlenecks":    BucketBottleneck,
	"pain_points":    BucketBottleneck,
	"obstacles":      BucketBottleneck,
	"obstaculos":     BucketBottleneck,
	"cuello_botella": BucketBottleneck,

	"priorities":  BucketPriorities,
	"priority":    BucketPriorities,
	"prioridades": BucketPriorities,

	"feedback":    BucketFeedback,
	"comments":    BucketFeedback,
	"comentarios": BucketFeedback,
	"suggestions": BucketFeedback,
}

// textKeywords is the fallback for untagged questions, checked in order
// against the folded question text. First match wins.
var textKeywords = []struct {
	keyword string
	bucket  Bucket
}{
	{"cuantas herramientas", BucketToolCount},
	{"how many tools", BucketToolCount},
	{"distribu", BucketTimeAllocation},
	{"tu tiempo", BucketTimeAllocation},
	{"your time", BucketTimeAllocation},
	{"embudo", BucketFunnel},
	{"funnel", BucketFunnel},
	{"obstacul", BucketBottleneck},
	{"bottleneck", BucketBottleneck},
	{"prioridad", BucketPriorities},
	{"priorit", BucketPriorities},
	{"gerente", BucketManagerEffectiveness},
	{"manager", BucketManagerEffectiveness},
	{"colabora", BucketCollaboration},
	{"collaborat", BucketCollaboration},
	{"satisf", BucketSystemSatisfaction},
	{"claro", BucketProcessClarity},
	{"clear", BucketProcessClarity},
	{"efectiv", BucketWorkflowEffectiveness},
	{"effective", BucketWorkflowEffectiveness},
	{"comentario", BucketFeedback},
	{"comment", BucketFeedback},
}

// Fold lower-cases s and strips diacritics ("Admisión" -> "admision").
func Fold(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(s)))
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeTag(tag string) string {
	t := Fold(tag)
	t = strings.NewReplacer(" ", "_", "-", "_").Replace(t)
	return t
}

// BucketsFor resolves the buckets of a question: tags first, question text as fallback.
func BucketsFor(q entities.Question) []Bucket {
	seen := map[Bucket]bool{}
	var out []Bucket
	for _, tag := range q.Tags() {
		if b, ok := tagAliases[normalizeTag(tag)]; ok && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	if len(out) > 0 {
		return out
	}

	text := Fold(q.QuestionText)
	for _, kw := range textKeywords {
		if strings.Contains(text, kw.keyword) {
			return []Bucket{kw.bucket}
		}
	}
	return nil
}

type indexKey struct {
	bucket Bucket
	qtype  entities.QuestionType
}

// TagIndex is the precomputed (bucket, question type) -> question IDs mapping.
// Built once per catalog load; metric code only does lookups against it.
type TagIndex struct {
	byKey     map[indexKey][]uint
	buckets   map[uint][]Bucket
	questions map[uint]entities.Question
}

// BuildTagIndex indexes questions by bucket and type. IDs are kept ascending.
func BuildTagIndex(questions []entities.Question) *TagIndex {
	idx := &TagIndex{
		byKey:     make(map[indexKey][]uint),
		buckets:   make(map[uint][]Bucket),
		questions: make(map[uint]entities.Question, len(questions)),
	}
	for _, q := range questions {
		idx.questions[q.ID] = q
		bs := BucketsFor(q)
		idx.buckets[q.ID] = bs
		for _, b := range bs {
			k := indexKey{b, q.QuestionType}
			idx.byKey[k] = append(idx.byKey[k], q.ID)
		}
	}
	for k := range idx.byKey {
		ids := idx.byKey[k]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return idx
}

// Questions returns the IDs of questions of type t attributed to bucket b.
func (idx *TagIndex) Questions(b Bucket, t entities.QuestionType) []uint {
	return idx.byKey[indexKey{b, t}]
}

// Question looks up an indexed question.
func (idx *TagIndex) Question(id uint) (entities.Question, bool) {
	q, ok := idx.questions[id]
	return q, ok
}

// BucketsOf returns the buckets resolved for a question.
func (idx *TagIndex) BucketsOf(id uint) []Bucket {
	return idx.buckets[id]
}
