package analytics

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/utils"
)

// ErrUnknownMetric is returned by drill-down for names outside the metric catalog.
var ErrUnknownMetric = errors.New("unknown metric")

const (
	workWeekHours  = 40.0
	topInsightsMax = 5
)

// Summary reports participation totals.
func (r *Report) Summary() entities.Summary {
	s := entities.Summary{
		TotalResponses:     r.Set.TotalComplete(),
		StartedResponses:   r.Started,
		ResponsesByRole:    map[entities.TargetRole]int{entities.TargetManager: 0, entities.TargetSales: 0},
		UnparseableAnswers: r.Set.Unparseable,
		Confidence:         r.Confidence(),
	}
	if s.StartedResponses < s.TotalResponses {
		s.StartedResponses = s.TotalResponses
	}
	if s.StartedResponses > 0 {
		s.CompletionRate = round1(float64(s.TotalResponses) / float64(s.StartedResponses) * 100)
	}

	var times []float64
	for _, resp := range r.Set.Responses {
		s.ResponsesByRole[resp.Role]++
		if resp.ResponseTimeSeconds > 0 {
			times = append(times, float64(resp.ResponseTimeSeconds))
		}
		if s.LastResponseAt == nil || resp.CompletedAt.After(*s.LastResponseAt) {
			at := resp.CompletedAt.In(r.Location)
			s.LastResponseAt = &at
		}
	}
	s.AverageResponseTimeSeconds = round1(mean(times))
	return s
}

// SystemHealth averages every 0-10 metric that has data.
func (r *Report) SystemHealth() entities.SystemHealth {
	h := entities.SystemHealth{Components: []entities.HealthComponent{}, Confidence: r.Confidence()}
	var values []float64
	results := append([]MetricResult{}, r.Findings.Scales...)
	results = append(results, r.Findings.TimeAllocation.AdminTimeRatio, r.Findings.SystemComplexity)
	for _, res := range results {
		m := res.Metric
		h.Components = append(h.Components, entities.HealthComponent{Metric: m.Name, Value: m.Value, Status: m.Status})
		if m.HasData() {
			values = append(values, m.Value)
		}
	}

	if len(values) == 0 {
		h.Status = "unknown"
		h.Confidence.Level = entities.ConfidenceLow
		return h
	}
	h.Score = round2(mean(values))
	switch {
	case h.Score >= 7:
		h.Status = "healthy"
	case h.Score >= 5:
		h.Status = "attention"
	default:
		h.Status = "critical"
	}
	return h
}

// SectionPerformance averages likert answers per survey section.
func (r *Report) SectionPerformance() []entities.SectionPerformance {
	completeBySurvey := map[uint]int{}
	for _, resp := range r.Set.Responses {
		completeBySurvey[resp.SurveyID]++
	}

	out := []entities.SectionPerformance{}
	for _, survey := range r.Set.Catalog.Surveys {
		var order []string
		sections := map[string][]entities.Question{}
		for _, q := range survey.Questions {
			if q.QuestionType != entities.QuestionLikert {
				continue
			}
			if _, ok := sections[q.Section]; !ok {
				order = append(order, q.Section)
			}
			sections[q.Section] = append(sections[q.Section], q)
		}

		for _, name := range order {
			sp := entities.SectionPerformance{SurveyID: survey.ID, SurveyName: survey.Name, Section: name, QuestionIDs: []uint{}}
			var values []float64
			responders := map[uint]bool{}
			for _, q := range sections[name] {
				sp.QuestionIDs = append(sp.QuestionIDs, q.ID)
				for _, p := range r.Set.Answers(q.ID) {
					if !p.HasNumeric {
						continue
					}
					values = append(values, p.Value.Number)
					responders[p.ResponseID] = true
				}
			}
			sp.AnswerCount = len(values)
			sp.AverageScore = round2(mean(values))
			if total := completeBySurvey[survey.ID]; total > 0 {
				sp.ResponseRate = round1(float64(len(responders)) / float64(total) * 100)
			}
			out = append(out, sp)
		}
	}
	return out
}

// PerformanceTrends lists metric trends and zero-filled daily completions.
func (r *Report) PerformanceTrends() entities.PerformanceTrends {
	pt := entities.PerformanceTrends{Metrics: []entities.MetricTrend{}, ResponsesByDay: []entities.DailyCount{}}
	for _, m := range r.Findings.Metrics() {
		if m.Trend != nil {
			pt.Metrics = append(pt.Metrics, entities.MetricTrend{Metric: m.Name, Trend: *m.Trend})
		}
	}

	if len(r.Set.Responses) == 0 {
		return pt
	}
	counts := map[string]int{}
	first := r.Set.Responses[0].CompletedAt.In(r.Location)
	last := first
	for _, resp := range r.Set.Responses {
		at := resp.CompletedAt.In(r.Location)
		counts[at.Format("2006-01-02")]++
		if at.Before(first) {
			first = at
		}
		if at.After(last) {
			last = at
		}
	}
	for _, day := range utils.GenerateDateRange(first, last) {
		pt.ResponsesByDay = append(pt.ResponsesByDay, entities.DailyCount{Date: day, Count: counts[day]})
	}
	return pt
}

// Achievements are the positive insights.
func (r *Report) Achievements() []entities.Achievement {
	out := []entities.Achievement{}
	for _, in := range r.Insights {
		if !in.Category.Positive() {
			continue
		}
		a := entities.Achievement{Title: in.Title, Description: in.Description, Metric: in.Metric, InsightID: in.ID}
		if m, ok := r.Findings.Metric(in.Metric); ok {
			a.Value = m.Value
		}
		out = append(out, a)
	}
	return out
}

// ActionableInsights are the insights that require action.
func (r *Report) ActionableInsights() []entities.Insight {
	out := []entities.Insight{}
	for _, in := range r.Insights {
		if in.ActionRequired {
			out = append(out, in)
		}
	}
	return out
}

// ActionableInsightsFor drops actionable insights whose every recommendation
// is hidden from role. Insights no recommendation cites are kept.
func (r *Report) ActionableInsightsFor(role entities.ViewerRole) []entities.Insight {
	cited := map[string]bool{}
	visible := map[string]bool{}
	for _, rec := range r.Recommendations {
		show := VisibleTo(rec, role)
		for _, id := range rec.SourceInsightIDs {
			cited[id] = true
			if show {
				visible[id] = true
			}
		}
	}
	out := []entities.Insight{}
	for _, in := range r.ActionableInsights() {
		if !cited[in.ID] || visible[in.ID] {
			out = append(out, in)
		}
	}
	return out
}

// EfficiencyMetrics resume a distribuição de tempo e a complexidade de sistemas
func (r *Report) EfficiencyMetrics() entities.EfficiencyMetrics {
	slices := r.Findings.TimeAllocation.Slices
	if slices == nil {
		slices = []entities.TimeAllocationSlice{}
	}
	return entities.EfficiencyMetrics{
		AdminTimeRatio:   r.Findings.TimeAllocation.AdminTimeRatio.Metric,
		SystemComplexity: r.Findings.SystemComplexity.Metric,
		TimeAllocation:   slices,
	}
}

// BusinessMetrics traz funil, gargalo, conversão e horas administrativas estimadas.
func (r *Report) BusinessMetrics() entities.BusinessMetrics {
	bm := entities.BusinessMetrics{
		Scales:             []entities.Metric{},
		Funnel:             r.Findings.Funnel.Funnel,
		FunnelConversion:   r.Findings.Funnel.Conversion.Metric,
		BottleneckSeverity: r.Findings.Funnel.BottleneckSeverity.Metric,
		PriorityRanking:    r.Findings.Priorities,
	}
	for _, s := range r.Findings.Scales {
		bm.Scales = append(bm.Scales, s.Metric)
	}
	if ta := r.Findings.TimeAllocation; ta.ShareCount > 0 {
		bm.AdminHoursPerWeek = round1(ta.AdminShare * workWeekHours)
	}
	if bm.PriorityRanking == nil {
		bm.PriorityRanking = []entities.RankedPriority{}
	}
	return bm
}

// Payload assembles the full /api/analytics response.
func (r *Report) Payload(role entities.ViewerRole) *entities.AnalyticsPayload {
	issues := r.Findings.ProcessIssues
	if issues == nil {
		issues = []entities.ProcessIssue{}
	}
	p := &entities.AnalyticsPayload{
		Version:            entities.PayloadVersion,
		Role:               role,
		GeneratedAt:        r.GeneratedAt,
		Summary:            r.Summary(),
		SystemHealth:       r.SystemHealth(),
		SectionPerformance: r.SectionPerformance(),
		ProcessIssues:      issues,
		EfficiencyMetrics:  r.EfficiencyMetrics(),
		PerformanceTrends:  r.PerformanceTrends(),
		Achievements:       r.Achievements(),
		ActionableInsights: r.ActionableInsightsFor(role),
		BusinessMetrics:    r.BusinessMetrics(),
		Insights:           r.Insights,
	}
	p.CalculateETag()
	return p
}

// SummaryView é o resumo executivo: saúde, principais insights e quick wins
func (r *Report) SummaryView(role entities.ViewerRole) entities.SummaryView {
	top := r.ActionableInsightsFor(role)
	if len(top) > topInsightsMax {
		top = top[:topInsightsMax]
	}
	return entities.SummaryView{
		Version:      entities.PayloadVersion,
		Role:         role,
		GeneratedAt:  r.GeneratedAt,
		Summary:      r.Summary(),
		SystemHealth: r.SystemHealth(),
		TopInsights:  top,
		QuickWins:    QuickWins(r.RecommendationsFor(role)),
	}
}

func (r *Report) insightsWhere(keep func(entities.Insight) bool) []entities.Insight {
	out := []entities.Insight{}
	for _, in := range r.Insights {
		if keep(in) {
			out = append(out, in)
		}
	}
	return out
}

// ProcessView agrupa funil, problemas de processo e insights operacionais.
func (r *Report) ProcessView(role entities.ViewerRole) entities.ProcessView {
	issues := r.Findings.ProcessIssues
	if issues == nil {
		issues = []entities.ProcessIssue{}
	}
	return entities.ProcessView{
		Version:            entities.PayloadVersion,
		Role:               role,
		GeneratedAt:        r.GeneratedAt,
		ProcessIssues:      issues,
		Funnel:             r.Findings.Funnel.Funnel,
		EfficiencyMetrics:  r.EfficiencyMetrics(),
		SectionPerformance: r.SectionPerformance(),
		Insights: r.insightsWhere(func(in entities.Insight) bool {
			switch Bucket(in.Bucket) {
			case BucketProcessClarity, BucketWorkflowEffectiveness, BucketTimeAllocation, BucketToolCount, BucketFunnel, BucketBottleneck:
				return true
			}
			return false
		}),
	}
}

// TeamView compara as percepções de gerentes e vendedores.
func (r *Report) TeamView(role entities.ViewerRole) entities.TeamView {
	var collaboration entities.Metric
	for i, def := range Scales {
		if def.Bucket == BucketCollaboration {
			collaboration = r.Findings.Scales[i].Metric
		}
	}
	return entities.TeamView{
		Version:        entities.PayloadVersion,
		Role:           role,
		GeneratedAt:    r.GeneratedAt,
		TeamComparison: r.Findings.Team,
		Collaboration:  collaboration,
		Insights: r.insightsWhere(func(in entities.Insight) bool {
			return in.Kind == entities.InsightKindTeam ||
				Bucket(in.Bucket) == BucketCollaboration ||
				Bucket(in.Bucket) == BucketManagerEffectiveness
		}),
	}
}

// RecommendationsView filters, groups and summarizes recommendations for role.
func (r *Report) RecommendationsView(role entities.ViewerRole) entities.RecommendationsView {
	recs := r.RecommendationsFor(role)
	return entities.RecommendationsView{
		Version:         entities.PayloadVersion,
		Role:            role,
		Total:           len(recs),
		Recommendations: recs,
		Grouped:         GroupRecommendations(recs),
		QuickWins:       QuickWins(recs),
		Timeline:        EstimateTimeline(recs),
	}
}

type metricSource struct {
	bucket Bucket
	qtype  entities.QuestionType
}

func sourceOf(name string) (metricSource, bool) {
	if def, ok := ScaleFor(name); ok {
		return metricSource{def.Bucket, entities.QuestionLikert}, true
	}
	switch name {
	case MetricAdminTimeRatio:
		return metricSource{BucketTimeAllocation, entities.QuestionPercentage}, true
	case MetricSystemComplexity:
		return metricSource{BucketToolCount, entities.QuestionMultipleChoice}, true
	case MetricFunnelConversion, MetricBottleneckSeverity:
		return metricSource{BucketFunnel, entities.QuestionPercentage}, true
	}
	return metricSource{}, false
}

// DrillDown exposes the questions and raw value distribution behind a metric.
func (r *Report) DrillDown(name string) (entities.DrillDown, error) {
	src, ok := sourceOf(name)
	if !ok {
		return entities.DrillDown{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	metric, _ := r.Findings.Metric(name)
	dd := entities.DrillDown{Metric: metric, Questions: []entities.DrillDownQuestion{}}

	for _, id := range r.Set.Catalog.Index.Questions(src.bucket, src.qtype) {
		q, _ := r.Set.Catalog.Index.Question(id)
		answers := r.Set.Answers(id)
		dq := entities.DrillDownQuestion{
			QuestionID:   q.ID,
			SurveyID:     q.SurveyID,
			Section:      q.Section,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			SampleSize:   len(answers),
			Distribution: map[string]int{},
		}
		var numbers []float64
		for _, p := range answers {
			v := p.Value
			switch v.Type {
			case entities.QuestionLikert:
				numbers = append(numbers, v.Number)
				dq.Distribution[strconv.FormatFloat(v.Number, 'f', -1, 64)]++
			case entities.QuestionMultipleChoice:
				dq.Distribution[v.Choice]++
			case entities.QuestionCheckbox:
				for _, s := range v.Selections {
					dq.Distribution[s]++
				}
			case entities.QuestionRanking:
				if len(v.Ranking) > 0 {
					dq.Distribution[v.Ranking[0]]++
				}
			case entities.QuestionPercentage:
				for label := range v.Percentages {
					dq.Distribution[label]++
				}
			}
		}
		if len(numbers) > 0 {
			m := round2(mean(numbers))
			dq.Mean = &m
		}
		dd.Questions = append(dd.Questions, dq)
	}
	return dd, nil
}

// MetricNames lists every name DrillDown accepts.
func MetricNames() []string {
	names := make([]string, 0, len(Scales)+4)
	for _, s := range Scales {
		names = append(names, s.Name)
	}
	return append(names, MetricAdminTimeRatio, MetricSystemComplexity, MetricFunnelConversion, MetricBottleneckSeverity)
}
