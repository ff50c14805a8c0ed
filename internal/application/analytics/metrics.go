package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
)

const (
	MetricWorkflowEffectiveness = "workflowEffectiveness"
	MetricManagerEffectiveness  = "managerEffectiveness"
	MetricCollaborationQuality  = "collaborationQuality"
	MetricSystemSatisfaction    = "systemSatisfaction"
	MetricProcessClarity        = "processClarity"
	MetricAdminTimeRatio        = "adminTimeRatio"
	MetricSystemComplexity      = "systemComplexity"
	MetricFunnelConversion      = "funnelConversion"
	MetricBottleneckSeverity    = "bottleneckSeverity"
)

// Answer-level thresholds for likert scales.
const (
	CriticalAnswerThreshold = 2.0
	WarningAnswerThreshold  = 3.0
	CelebrationAnswer       = 9.0
	SuccessMean             = 8.0
)

const (
	trendMinContributions = 4
	trendFlatBand         = 0.5
	neutralComplexity     = 5.0
)

// ScaleDef describes one averaged 1-10 likert scale.
type ScaleDef struct {
	Name   string
	Bucket Bucket
	// Low is the mean below which an opportunity insight is raised.
	Low float64
}

// Scales lists the likert metrics in presentation order.
var Scales = []ScaleDef{
	{Name: MetricWorkflowEffectiveness, Bucket: BucketWorkflowEffectiveness, Low: 5},
	{Name: MetricManagerEffectiveness, Bucket: BucketManagerEffectiveness, Low: 5},
	{Name: MetricCollaborationQuality, Bucket: BucketCollaboration, Low: 6},
	{Name: MetricSystemSatisfaction, Bucket: BucketSystemSatisfaction, Low: 5},
	{Name: MetricProcessClarity, Bucket: BucketProcessClarity, Low: 6},
}

// ScaleFor finds a scale definition by metric name.
func ScaleFor(name string) (ScaleDef, bool) {
	for _, s := range Scales {
		if s.Name == name {
			return s, true
		}
	}
	return ScaleDef{}, false
}

var salesLabels = []string{"venta", "ventas", "sales", "selling", "prospeccion", "prospecting", "seguimiento", "follow-up", "closing", "cierre"}

var adminLabels = []string{"data entry", "captura de datos", "administrative", "administrativo", "admin", "reporting", "reportes", "papeleo", "paperwork", "crm"}

// complexityScores maps tool-count options to a simplicity score.
var complexityScores = map[string]float64{
	"1-2": 9,
	"3-4": 7,
	"5-6": 5,
	"7-8": 3,
	"9+":  1,
}

// MetricResult is a computed metric plus the per-answer values behind it.
type MetricResult struct {
	Metric entities.Metric
	Bucket Bucket
	Values []float64
}

// Min returns the smallest contribution, or 0 when empty.
func (r MetricResult) Min() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	m := r.Values[0]
	for _, v := range r.Values[1:] {
		m = math.Min(m, v)
	}
	return m
}

// Max returns the largest contribution, or 0 when empty.
func (r MetricResult) Max() float64 {
	m := 0.0
	for i, v := range r.Values {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

type contribution struct {
	value      float64
	at         time.Time
	responseID uint
}

type accumulator struct {
	name     string
	unit     entities.MetricUnit
	bucket   Bucket
	contribs []contribution
	sources  map[uint]bool
	fallback int
	// skipped counts undecodable or out-of-domain answers, excluded counts
	// valid answers the metric cannot use (e.g. zero denominators).
	skipped  int
	excluded int
}

func newAccumulator(name string, unit entities.MetricUnit, b Bucket) *accumulator {
	return &accumulator{name: name, unit: unit, bucket: b, sources: map[uint]bool{}}
}

func (a *accumulator) add(p ParsedAnswer, v float64) {
	a.contribs = append(a.contribs, contribution{value: v, at: p.CompletedAt, responseID: p.ResponseID})
	a.sources[p.QuestionID] = true
}

func (a *accumulator) finish(total int) MetricResult {
	m := entities.Metric{
		Name:              a.name,
		Unit:              a.unit,
		SourceQuestionIDs: sortedIDs(a.sources),
		SampleSize:        len(a.contribs),
		FallbackCount:     a.fallback,
		SkippedCount:      a.skipped + a.excluded,
		Confidence:        ConfidenceFor(total),
	}

	if len(a.contribs) == 0 {
		// Nothing qualified: zero value and forced low confidence. "unparseable"
		// separates bad stored data from a legitimately empty bucket.
		m.Status = entities.MetricNoData
		if a.skipped > 0 {
			m.Status = entities.MetricUnparseable
		}
		m.Confidence.Level = entities.ConfidenceLow
		return MetricResult{Metric: m, Bucket: a.bucket}
	}

	values := make([]float64, len(a.contribs))
	responses := map[uint]bool{}
	for i, c := range a.contribs {
		values[i] = c.value
		responses[c.responseID] = true
	}
	m.Status = entities.MetricOK
	m.Value = round2(mean(values))
	m.ResponseCount = len(responses)
	m.Trend = trendOf(a.contribs)
	return MetricResult{Metric: m, Bucket: a.bucket, Values: values}
}

// trendOf splits contributions by completion time into halves and compares them.
func trendOf(contribs []contribution) *entities.Trend {
	if len(contribs) < trendMinContributions {
		return nil
	}
	ordered := append([]contribution(nil), contribs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].at.Equal(ordered[j].at) {
			return ordered[i].at.Before(ordered[j].at)
		}
		return ordered[i].responseID < ordered[j].responseID
	})

	half := len(ordered) / 2
	earlier := make([]float64, 0, half)
	later := make([]float64, 0, len(ordered)-half)
	for i, c := range ordered {
		if i < half {
			earlier = append(earlier, c.value)
		} else {
			later = append(later, c.value)
		}
	}

	t := &entities.Trend{Earlier: round2(mean(earlier)), Later: round2(mean(later))}
	t.Delta = round2(t.Later - t.Earlier)
	switch {
	case math.Abs(t.Delta) < trendFlatBand:
		t.Direction = entities.TrendFlat
	case t.Delta > 0:
		t.Direction = entities.TrendUp
	default:
		t.Direction = entities.TrendDown
	}
	return t
}

// ComputeScale averages likert answers in the scale's bucket. Only likert
// questions are consulted; answers without a stored numeric value or outside
// the question's bounds are skipped.
func ComputeScale(set *AnswerSet, def ScaleDef) MetricResult {
	acc := newAccumulator(def.Name, entities.UnitScore10, def.Bucket)
	answers, _, skipped := set.Lookup(def.Bucket, entities.QuestionLikert)
	acc.skipped = skipped
	for _, p := range answers {
		if !p.HasNumeric || p.Value.Type != entities.QuestionLikert {
			acc.skipped++
			continue
		}
		q, _ := set.Catalog.Index.Question(p.QuestionID)
		lo, hi := q.Rules().Bounds()
		if p.Value.Number < lo || p.Value.Number > hi {
			acc.skipped++
			continue
		}
		acc.add(p, p.Value.Number)
	}
	return acc.finish(set.TotalComplete())
}

// LabelKind classifies a time-allocation label.
type LabelKind string

const (
	LabelSales LabelKind = "sales"
	LabelAdmin LabelKind = "admin"
	LabelOther LabelKind = "other"
)

// ClassifyLabel matches a percentage label against the sales and admin tables.
// Exact matches win; otherwise admin substrings are checked before sales ones.
func ClassifyLabel(label string) LabelKind {
	l := Fold(label)
	for _, s := range adminLabels {
		if l == s {
			return LabelAdmin
		}
	}
	for _, s := range salesLabels {
		if l == s {
			return LabelSales
		}
	}
	for _, s := range adminLabels {
		if strings.Contains(l, s) {
			return LabelAdmin
		}
	}
	for _, s := range salesLabels {
		if strings.Contains(l, s) {
			return LabelSales
		}
	}
	return LabelOther
}

// TimeAllocation holds everything derived from time-allocation answers.
type TimeAllocation struct {
	AdminTimeRatio MetricResult
	Slices         []entities.TimeAllocationSlice
	// AdminShare is the mean fraction (0-1) of reported time spent on admin work.
	AdminShare float64
	ShareCount int
}

// ComputeTimeAllocation derives adminTimeRatio = sales/(sales+admin)*10 per
// answer. Answers with no sales and no admin time are skipped.
func ComputeTimeAllocation(set *AnswerSet) TimeAllocation {
	acc := newAccumulator(MetricAdminTimeRatio, entities.UnitScore10, BucketTimeAllocation)
	answers, _, skipped := set.Lookup(BucketTimeAllocation, entities.QuestionPercentage)
	acc.skipped = skipped

	type sliceAcc struct {
		label string
		kind  LabelKind
		sum   float64
		n     int
	}
	slices := map[string]*sliceAcc{}
	var shares []float64

	for _, p := range answers {
		var sales, admin, total float64
		for label, pct := range p.Value.Percentages {
			kind := ClassifyLabel(label)
			switch kind {
			case LabelSales:
				sales += pct
			case LabelAdmin:
				admin += pct
			}
			total += pct

			key := Fold(label)
			s, ok := slices[key]
			if !ok {
				s = &sliceAcc{label: strings.TrimSpace(label), kind: kind}
				slices[key] = s
			}
			s.sum += pct
			s.n++
		}
		if total > 0 {
			shares = append(shares, admin/total)
		}
		if sales+admin == 0 {
			acc.excluded++
			continue
		}
		acc.add(p, sales/(sales+admin)*10)
	}

	out := TimeAllocation{AdminTimeRatio: acc.finish(set.TotalComplete()), ShareCount: len(shares)}
	if len(shares) > 0 {
		out.AdminShare = mean(shares)
	}
	for _, s := range slices {
		out.Slices = append(out.Slices, entities.TimeAllocationSlice{
			Category:          s.label,
			Kind:              string(s.kind),
			AveragePercentage: round2(s.sum / float64(s.n)),
			Reports:           s.n,
		})
	}
	sort.Slice(out.Slices, func(i, j int) bool {
		if out.Slices[i].AveragePercentage != out.Slices[j].AveragePercentage {
			return out.Slices[i].AveragePercentage > out.Slices[j].AveragePercentage
		}
		return out.Slices[i].Category < out.Slices[j].Category
	})
	return out
}

func normalizeChoice(s string) string {
	s = strings.NewReplacer(" ", "", "–", "-", "—", "-").Replace(strings.TrimSpace(s))
	return strings.ToLower(s)
}

// ComplexityScore maps a tool-count choice to its simplicity score. Unknown
// choices get the neutral midpoint and ok=false.
func ComplexityScore(choice string) (float64, bool) {
	if v, ok := complexityScores[normalizeChoice(choice)]; ok {
		return v, true
	}
	return neutralComplexity, false
}

// ComputeSystemComplexity scores tool-count answers. Unmatched options fall
// back to 5 and are counted in FallbackCount: this masks unexpected options
// rather than rejecting them.
func ComputeSystemComplexity(set *AnswerSet) MetricResult {
	acc := newAccumulator(MetricSystemComplexity, entities.UnitScore10, BucketToolCount)
	answers, _, skipped := set.Lookup(BucketToolCount, entities.QuestionMultipleChoice)
	acc.skipped = skipped
	for _, p := range answers {
		score, ok := ComplexityScore(p.Value.Choice)
		if !ok {
			acc.fallback++
		}
		acc.add(p, score)
	}
	return acc.finish(set.TotalComplete())
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func sortedIDs(set map[uint]bool) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
