package analytics

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
)

// criticalKeywords are matched against folded free-text answers. This is a
// blunt substring heuristic: "nunca falla" is flagged too.
var criticalKeywords = []string{
	"imposible",
	"nunca",
	"terrible",
	"horrible",
	"pesimo",
	"frustrante",
	"no funciona",
	"perdemos tiempo",
	"caos",
	"inutil",
}

const minScannedTextLength = 10

// Thresholds for metrics that are not likert scales.
type Thresholds struct {
	Critical float64
	Low      float64
	Success  float64
}

var metricThresholds = map[string]Thresholds{
	MetricAdminTimeRatio:   {Critical: 3, Low: 5, Success: 8},
	MetricSystemComplexity: {Critical: 3, Low: 5, Success: 8},
	MetricFunnelConversion: {Critical: 10, Low: 25, Success: 50},
}

// Bottleneck severity (0-10) thresholds for funnel insights.
const (
	bottleneckCritical    = 6.0
	bottleneckOpportunity = 4.0
	topIssueWarningShare  = 50.0
)

var metricLabels = map[string]string{
	MetricWorkflowEffectiveness: "Workflow effectiveness",
	MetricManagerEffectiveness:  "Manager effectiveness",
	MetricCollaborationQuality:  "Collaboration quality",
	MetricSystemSatisfaction:    "System satisfaction",
	MetricProcessClarity:        "Process clarity",
	MetricAdminTimeRatio:        "Selling vs. admin time",
	MetricSystemComplexity:      "Tool simplicity",
	MetricFunnelConversion:      "Funnel conversion",
	MetricBottleneckSeverity:    "Bottleneck severity",
}

// MetricLabel returns a display name for a metric.
func MetricLabel(name string) string {
	if l, ok := metricLabels[name]; ok {
		return l
	}
	return name
}

func severityFor(c entities.InsightCategory) entities.Severity {
	switch c {
	case entities.InsightCritical:
		return entities.SeverityCritical
	case entities.InsightWarning:
		return entities.SeverityHigh
	case entities.InsightOpportunity:
		return entities.SeverityMedium
	default:
		return entities.SeverityLow
	}
}

func newInsight(kind entities.InsightKind, id string, c entities.InsightCategory, b Bucket) entities.Insight {
	return entities.Insight{
		ID:             id,
		Kind:           kind,
		Category:       c,
		Severity:       severityFor(c),
		Bucket:         string(b),
		ActionRequired: !c.Positive(),

		SourceQuestionIDs: []uint{},
	}
}

// GenerateInsights converts findings and free-text answers into insights,
// ordered by category rank then id.
func GenerateInsights(set *AnswerSet, f Findings) []entities.Insight {
	var out []entities.Insight

	out = append(out, scanText(set)...)
	for i, def := range Scales {
		out = append(out, scaleInsights(def, f.Scales[i])...)
	}
	out = append(out, thresholdInsights(f.TimeAllocation.AdminTimeRatio)...)
	out = append(out, thresholdInsights(f.SystemComplexity)...)
	out = append(out, thresholdInsights(f.Funnel.Conversion)...)
	out = append(out, funnelInsights(f.Funnel)...)
	out = append(out, processInsights(f.ProcessIssues)...)
	out = append(out, teamInsights(f.Team)...)

	SortInsights(out)
	return out
}

// SortInsights orders by category rank, then id.
func SortInsights(insights []entities.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		ri, rj := insights[i].Category.Rank(), insights[j].Category.Rank()
		if ri != rj {
			return ri < rj
		}
		return insights[i].ID < insights[j].ID
	})
}

// MatchCriticalKeyword returns the first critical keyword in text, if the
// text is long enough to be scanned.
func MatchCriticalKeyword(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= minScannedTextLength {
		return "", false
	}
	folded := Fold(text)
	for _, kw := range criticalKeywords {
		if strings.Contains(folded, kw) {
			return kw, true
		}
	}
	return "", false
}

// scanText raises one critical insight per matching text answer, whatever
// question it came from.
func scanText(set *AnswerSet) []entities.Insight {
	var out []entities.Insight
	for _, survey := range set.Catalog.Surveys {
		for _, q := range survey.Questions {
			if q.QuestionType != entities.QuestionText {
				continue
			}
			bucket := BucketFeedback
			if bs := set.Catalog.Index.BucketsOf(q.ID); len(bs) > 0 {
				bucket = bs[0]
			}
			for _, p := range set.Answers(q.ID) {
				kw, ok := MatchCriticalKeyword(p.Value.Text)
				if !ok {
					continue
				}
				in := newInsight(entities.InsightKindText,
					fmt.Sprintf("feedback-critical-r%d-q%d", p.ResponseID, p.QuestionID),
					entities.InsightCritical, bucket)
				in.Title = "Critical feedback from a respondent"
				in.Description = fmt.Sprintf("%q (matched %q)", excerpt(p.Value.Text, 160), kw)
				in.Impact = "Strong frustration reported in free text; keyword match only, review the full answer."
				in.SourceQuestionIDs = []uint{q.ID}
				in.EvidenceCount = 1
				out = append(out, in)
			}
		}
	}
	return out
}

func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

func countAtMost(values []float64, limit float64) int {
	n := 0
	for _, v := range values {
		if v <= limit {
			n++
		}
	}
	return n
}

func countAtLeast(values []float64, limit float64) int {
	n := 0
	for _, v := range values {
		if v >= limit {
			n++
		}
	}
	return n
}

// scaleInsights yields at most one negative and one positive insight per scale.
func scaleInsights(def ScaleDef, r MetricResult) []entities.Insight {
	if !r.Metric.HasData() {
		return nil
	}
	label := MetricLabel(def.Name)
	m := r.Metric
	var out []entities.Insight

	base := func(suffix string, c entities.InsightCategory) entities.Insight {
		in := newInsight(entities.InsightKindMetric, def.Name+"-"+suffix, c, def.Bucket)
		in.Metric = def.Name
		in.SourceQuestionIDs = m.SourceQuestionIDs
		return in
	}

	switch {
	case countAtMost(r.Values, CriticalAnswerThreshold) > 0:
		n := countAtMost(r.Values, CriticalAnswerThreshold)
		in := base("critical", entities.InsightCritical)
		in.Title = label + ": critical ratings"
		in.Description = fmt.Sprintf("%d of %d answers rated %s at %.0f or below (average %.1f).", n, m.SampleSize, strings.ToLower(label), CriticalAnswerThreshold, m.Value)
		in.Impact = "Respondents at this level are likely blocked in their daily work."
		in.EvidenceCount = n
		out = append(out, in)
	case countAtMost(r.Values, WarningAnswerThreshold) > 0:
		n := countAtMost(r.Values, WarningAnswerThreshold)
		in := base("warning", entities.InsightWarning)
		in.Title = label + ": low ratings"
		in.Description = fmt.Sprintf("%d of %d answers rated %s at %.0f or below (average %.1f).", n, m.SampleSize, strings.ToLower(label), WarningAnswerThreshold, m.Value)
		in.Impact = "A minority is struggling; the average hides it."
		in.EvidenceCount = n
		out = append(out, in)
	case m.Value < def.Low:
		in := base("opportunity", entities.InsightOpportunity)
		in.Title = label + " below target"
		in.Description = fmt.Sprintf("Average %s is %.1f, below the %.0f target.", strings.ToLower(label), m.Value, def.Low)
		in.Impact = "Room for improvement across the team."
		in.EvidenceCount = m.SampleSize
		out = append(out, in)
	}

	switch {
	case m.Value >= SuccessMean:
		in := base("success", entities.InsightSuccess)
		in.Title = label + " is strong"
		in.Description = fmt.Sprintf("Average %s is %.1f.", strings.ToLower(label), m.Value)
		in.Impact = "Keep what works and share it with other teams."
		in.EvidenceCount = m.SampleSize
		out = append(out, in)
	case countAtLeast(r.Values, CelebrationAnswer) > 0:
		n := countAtLeast(r.Values, CelebrationAnswer)
		in := base("celebration", entities.InsightCelebration)
		in.Title = label + ": standout ratings"
		in.Description = fmt.Sprintf("%d of %d answers rated %s at %.0f or above.", n, m.SampleSize, strings.ToLower(label), CelebrationAnswer)
		in.Impact = "Some respondents already get great results; learn from them."
		in.EvidenceCount = n
		out = append(out, in)
	}
	return out
}

// thresholdInsights applies per-metric constants to non-likert metrics.
func thresholdInsights(r MetricResult) []entities.Insight {
	th, ok := metricThresholds[r.Metric.Name]
	if !ok || !r.Metric.HasData() {
		return nil
	}
	m := r.Metric
	label := MetricLabel(m.Name)
	unit := ""
	if m.Unit == entities.UnitPercent {
		unit = "%"
	}

	var c entities.InsightCategory
	var suffix, title, impact string
	switch {
	case m.Value < th.Critical:
		c, suffix = entities.InsightCritical, "critical"
		title = label + " is critically low"
		impact = metricImpact(m.Name)
	case m.Value < th.Low:
		c, suffix = entities.InsightOpportunity, "opportunity"
		title = label + " below target"
		impact = metricImpact(m.Name)
	case m.Value >= th.Success:
		c, suffix = entities.InsightSuccess, "success"
		title = label + " is healthy"
		impact = "No action needed."
	default:
		return nil
	}

	in := newInsight(entities.InsightKindMetric, m.Name+"-"+suffix, c, r.Bucket)
	in.Metric = m.Name
	in.Title = title
	in.Description = fmt.Sprintf("%s is %.1f%s across %d answers.", label, m.Value, unit, m.SampleSize)
	in.Impact = impact
	in.SourceQuestionIDs = m.SourceQuestionIDs
	in.EvidenceCount = m.SampleSize
	return []entities.Insight{in}
}

func metricImpact(name string) string {
	switch name {
	case MetricAdminTimeRatio:
		return "Administrative work is eating into selling time."
	case MetricSystemComplexity:
		return "Switching between many tools slows the team down."
	case MetricFunnelConversion:
		return "Few inquiries make it to enrollment."
	}
	return ""
}

func funnelInsights(f FunnelResult) []entities.Insight {
	sev := f.BottleneckSeverity.Metric
	if !sev.HasData() || f.Funnel.Bottleneck == nil {
		return nil
	}
	var c entities.InsightCategory
	switch {
	case sev.Value >= bottleneckCritical:
		c = entities.InsightCritical
	case sev.Value >= bottleneckOpportunity:
		c = entities.InsightOpportunity
	default:
		return nil
	}
	b := f.Funnel.Bottleneck
	in := newInsight(entities.InsightKindFunnel, "funnel-bottleneck", c, BucketFunnel)
	in.Metric = MetricBottleneckSeverity
	in.Title = fmt.Sprintf("Pipeline bottleneck at %s", b.Stage)
	in.Description = fmt.Sprintf("%.1f%% of prospects are lost before the %s stage.", b.DropOff, b.Stage)
	in.Impact = "Fixing the worst stage has the largest effect on enrollments."
	in.SourceQuestionIDs = f.Funnel.SourceQuestionIDs
	in.EvidenceCount = sev.SampleSize
	return []entities.Insight{in}
}

func processInsights(issues []entities.ProcessIssue) []entities.Insight {
	if len(issues) == 0 || issues[0].Percentage < topIssueWarningShare {
		return nil
	}
	top := issues[0]
	in := newInsight(entities.InsightKindProcess, "process-top-issue", entities.InsightWarning, BucketBottleneck)
	in.Title = "Most reported obstacle: " + top.Issue
	in.Description = fmt.Sprintf("%.0f%% of respondents (%d) selected %q.", top.Percentage, top.Mentions, top.Issue)
	in.Impact = "A shared obstacle affects most of the team."
	in.SourceQuestionIDs = top.QuestionIDs
	in.EvidenceCount = top.Mentions
	return []entities.Insight{in}
}

func teamInsights(tc entities.TeamComparison) []entities.Insight {
	var out []entities.Insight
	for _, g := range tc.Gaps {
		if !g.Flagged {
			continue
		}
		def, _ := ScaleFor(g.Metric)
		in := newInsight(entities.InsightKindTeam, "team-gap-"+g.Metric, entities.InsightWarning, def.Bucket)
		in.Metric = g.Metric
		in.Title = MetricLabel(g.Metric) + ": managers and sales disagree"
		in.Description = fmt.Sprintf("Managers rate it %.1f, sales %.1f (gap %.1f).", g.Manager, g.Sales, g.Gap)
		in.Impact = "Perception gaps usually hide handoff or communication problems."
		in.EvidenceCount = g.ManagerSamples + g.SalesSamples
		out = append(out, in)
	}
	return out
}
