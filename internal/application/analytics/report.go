package analytics

import (
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
)

// Findings are the computed metrics and aggregates of one answer set.
type Findings struct {
	// Scales is aligned with the package-level Scales slice.
	Scales           []MetricResult
	TimeAllocation   TimeAllocation
	SystemComplexity MetricResult
	Funnel           FunnelResult
	ProcessIssues    []entities.ProcessIssue
	Priorities       []entities.RankedPriority
	Team             entities.TeamComparison
}

// ComputeFindings runs every metric calculator over the set.
func ComputeFindings(set *AnswerSet) Findings {
	f := Findings{
		TimeAllocation:   ComputeTimeAllocation(set),
		SystemComplexity: ComputeSystemComplexity(set),
		Funnel:           ComputeFunnel(set),
		ProcessIssues:    ComputeProcessIssues(set),
		Priorities:       ComputePriorities(set),
		Team:             ComputeTeamComparison(set),
	}
	for _, def := range Scales {
		f.Scales = append(f.Scales, ComputeScale(set, def))
	}
	return f
}

// Metrics returns every metric, scales first.
func (f Findings) Metrics() []entities.Metric {
	out := make([]entities.Metric, 0, len(f.Scales)+4)
	for _, s := range f.Scales {
		out = append(out, s.Metric)
	}
	return append(out,
		f.TimeAllocation.AdminTimeRatio.Metric,
		f.SystemComplexity.Metric,
		f.Funnel.Conversion.Metric,
		f.Funnel.BottleneckSeverity.Metric,
	)
}

// Metric finds a metric by name.
func (f Findings) Metric(name string) (entities.Metric, bool) {
	for _, m := range f.Metrics() {
		if m.Name == name {
			return m, true
		}
	}
	return entities.Metric{}, false
}

// Report is the full request-scoped computation: answers, findings,
// insights and the unfiltered recommendation list.
type Report struct {
	Set             *AnswerSet
	Findings        Findings
	Insights        []entities.Insight
	Recommendations []entities.Recommendation
	Started         int
	GeneratedAt     time.Time
	Location        *time.Location
}

// Input is everything BuildReport needs from the store.
type Input struct {
	Catalog   *Catalog
	Responses []entities.Response
	// Started counts every response row, complete or not.
	Started  int
	Now      time.Time
	Location *time.Location
}

// BuildReport runs the pipeline: answers -> metrics -> insights -> recommendations.
// With no responses every stage yields empty or zero output.
func BuildReport(in Input) *Report {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	set := BuildAnswerSet(in.Catalog, in.Responses)
	findings := ComputeFindings(set)
	insights := GenerateInsights(set, findings)
	if insights == nil {
		insights = []entities.Insight{}
	}
	recs := BuildRecommendations(insights)
	if recs == nil {
		recs = []entities.Recommendation{}
	}
	return &Report{
		Set:             set,
		Findings:        findings,
		Insights:        insights,
		Recommendations: recs,
		Started:         in.Started,
		GeneratedAt:     in.Now.In(loc),
		Location:        loc,
	}
}

// Confidence is the report-wide confidence.
func (r *Report) Confidence() entities.Confidence {
	return ConfidenceFor(r.Set.TotalComplete())
}

// RecommendationsFor returns the recommendations visible to role.
func (r *Report) RecommendationsFor(role entities.ViewerRole) []entities.Recommendation {
	return FilterByRole(r.Recommendations, role)
}

// Recommendation looks a recommendation up by id among those visible to role.
func (r *Report) Recommendation(id string, role entities.ViewerRole) (entities.Recommendation, bool) {
	for _, rec := range r.RecommendationsFor(role) {
		if rec.ID == id {
			return rec, true
		}
	}
	return entities.Recommendation{}, false
}
