package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
)

// Recommendation groups, in display order.
const (
	GroupTimeAllocation     = "Time Allocation"
	GroupSystemEfficiency   = "System Efficiency"
	GroupTeamCollaboration  = "Team Collaboration"
	GroupProcessImprovement = "Process Improvement"
)

var Groups = []string{GroupTimeAllocation, GroupSystemEfficiency, GroupTeamCollaboration, GroupProcessImprovement}

const (
	quickWinLimit   = 3
	timelineWorkers = 3
	// executiveReviewThreshold critical insights trigger a strategic review.
	executiveReviewThreshold = 3
)

var effortWeeks = map[entities.EffortLevel]float64{
	entities.EffortQuickWin:    1.5,
	entities.EffortMedium:      4,
	entities.EffortSignificant: 8,
}

var effortEstimates = map[entities.EffortLevel]string{
	entities.EffortQuickWin:    "1-2 weeks",
	entities.EffortMedium:      "3-6 weeks",
	entities.EffortSignificant: "2-3 months",
}

// Priority returns the fixed 1-10 priority for a magnitude/effort pair.
func Priority(m entities.Magnitude, e entities.EffortLevel) int {
	table := map[entities.Magnitude]map[entities.EffortLevel]int{
		entities.MagnitudeHigh: {
			entities.EffortQuickWin:    10,
			entities.EffortMedium:      8,
			entities.EffortSignificant: 7,
		},
		entities.MagnitudeMedium: {
			entities.EffortQuickWin:    7,
			entities.EffortMedium:      5,
			entities.EffortSignificant: 4,
		},
		entities.MagnitudeLow: {
			entities.EffortQuickWin:    4,
			entities.EffortMedium:      2,
			entities.EffortSignificant: 1,
		},
	}
	if p, ok := table[m][e]; ok {
		return p
	}
	return 1
}

// Template is a recommendation blueprint with a stable slug id.
type Template struct {
	ID          string
	Title       string
	Description string
	Area        string
	Magnitude   entities.Magnitude
	Effort      entities.EffortLevel
	Steps       []string
	Resources   entities.ResourceRequirements
}

var templates = map[string]Template{
	"streamline-daily-workflow": {
		ID:          "streamline-daily-workflow",
		Title:       "Streamline the daily admissions workflow",
		Description: "Map the daily workflow with the team, remove duplicate steps and agree on one path per prospect.",
		Area:        "Process Efficiency",
		Magnitude:   entities.MagnitudeMedium,
		Effort:      entities.EffortMedium,
		Steps: []string{
			"Shadow two advisors for a full day and map every step",
			"Mark duplicate or manual steps",
			"Agree on the simplified workflow with managers",
			"Roll out and review after two weeks",
		},
		Resources: entities.ResourceRequirements{People: []string{"Operations lead", "Two senior advisors"}, Tools: []string{"Process map"}, Budget: "low"},
	},
	"manager-coaching-toolkit": {
		ID:          "manager-coaching-toolkit",
		Title:       "Give managers a coaching toolkit",
		Description: "Weekly one-on-ones backed by pipeline data, with a shared agenda template.",
		Area:        "Management Enablement",
		Magnitude:   entities.MagnitudeMedium,
		Effort:      entities.EffortSignificant,
		Steps: []string{
			"Define the one-on-one agenda and the metrics to review",
			"Build a per-advisor pipeline view",
			"Train managers on coaching conversations",
			"Collect feedback after the first month",
		},
		Resources: entities.ResourceRequirements{People: []string{"Sales managers", "HR partner"}, Tools: []string{"CRM dashboards"}, Budget: "medium"},
	},
	"team-handoff-protocol": {
		ID:          "team-handoff-protocol",
		Title:       "Agree on a team handoff protocol",
		Description: "Define who owns a prospect at each stage and what information must travel with it.",
		Area:        "Team Handoff",
		Magnitude:   entities.MagnitudeMedium,
		Effort:      entities.EffortQuickWin,
		Steps: []string{
			"List every handoff between roles",
			"Write a one-page checklist per handoff",
			"Review handoffs in the weekly team meeting",
		},
		Resources: entities.ResourceRequirements{People: []string{"Team leads"}, Tools: []string{"Shared checklist"}, Budget: "none"},
	},
	"crm-usability-fixes": {
		ID:          "crm-usability-fixes",
		Title:       "Fix the top CRM usability complaints",
		Description: "Collect the five most common CRM complaints and fix or work around each.",
		Area:        "System Usability",
		Magnitude:   entities.MagnitudeMedium,
		Effort:      entities.EffortMedium,
		Steps: []string{
			"Run a short complaint collection with advisors",
			"Prioritize fixes with the CRM administrator",
			"Ship fixes and announce them",
		},
		Resources: entities.ResourceRequirements{People: []string{"CRM administrator"}, Tools: []string{"CRM configuration"}, Budget: "low"},
	},
	"document-admission-process": {
		ID:          "document-admission-process",
		Title:       "Document the admission process",
		Description: "Publish a single, current description of the admission process and its exceptions.",
		Area:        "Process Documentation",
		Magnitude:   entities.MagnitudeMedium,
		Effort:      entities.EffortQuickWin,
		Steps: []string{
			"Write the current process in one page",
			"Validate it with one manager and one advisor",
			"Publish it where the team works",
		},
		Resources: entities.ResourceRequirements{People: []string{"Operations lead"}, Tools: []string{"Wiki"}, Budget: "none"},
	},
	"automate-data-entry": {
		ID:          "automate-data-entry",
		Title:       "Automate repetitive data entry",
		Description: "Prefill and sync prospect data so advisors stop typing the same data twice.",
		Area:        "Time Allocation",
		Magnitude:   entities.MagnitudeHigh,
		Effort:      entities.EffortMedium,
		Steps: []string{
			"Identify fields entered more than once",
			"Connect the inquiry form to the CRM",
			"Automate the weekly report",
			"Measure time saved per advisor",
		},
		Resources: entities.ResourceRequirements{People: []string{"CRM administrator", "Developer"}, Tools: []string{"CRM integrations"}, Budget: "medium"},
	},
	"consolidate-tools": {
		ID:          "consolidate-tools",
		Title:       "Consolidate the tool stack",
		Description: "Reduce the number of tools an advisor needs in a day.",
		Area:        "System Consolidation",
		Magnitude:   entities.MagnitudeHigh,
		Effort:      entities.EffortSignificant,
		Steps: []string{
			"Inventory every tool in daily use",
			"Pick the tools to retire",
			"Migrate data and workflows",
			"Switch off retired tools",
		},
		Resources: entities.ResourceRequirements{People: []string{"IT", "Operations lead"}, Tools: []string{"Migration scripts"}, Budget: "high"},
	},
	"pipeline-follow-up-cadence": {
		ID:          "pipeline-follow-up-cadence",
		Title:       "Set a follow-up cadence at the weakest pipeline stage",
		Description: "Define a follow-up rhythm and reminders for prospects at the stage with the largest drop-off.",
		Area:        "Pipeline Conversion",
		Magnitude:   entities.MagnitudeHigh,
		Effort:      entities.EffortQuickWin,
		Steps: []string{
			"Confirm the bottleneck stage with CRM data",
			"Define the follow-up rhythm for that stage",
			"Set reminders in the CRM",
		},
		Resources: entities.ResourceRequirements{People: []string{"Sales managers"}, Tools: []string{"CRM reminders"}, Budget: "none"},
	},
	"remove-top-bottleneck": {
		ID:          "remove-top-bottleneck",
		Title:       "Remove the most reported obstacle",
		Description: "Assign an owner to the obstacle most respondents selected and track it to resolution.",
		Area:        "Process Bottlenecks",
		Magnitude:   entities.MagnitudeHigh,
		Effort:      entities.EffortMedium,
		Steps: []string{
			"Assign an owner for the obstacle",
			"Find the root cause with the affected team",
			"Implement the fix",
			"Re-survey the team",
		},
		Resources: entities.ResourceRequirements{People: []string{"Operations lead"}, Tools: []string{}, Budget: "low"},
	},
	"align-manager-sales-perception": {
		ID:          "align-manager-sales-perception",
		Title:       "Align managers and sales on how work is going",
		Description: "Share the survey results with both groups and discuss where they disagree.",
		Area:        "Team Communication",
		Magnitude:   entities.MagnitudeMedium,
		Effort:      entities.EffortQuickWin,
		Steps: []string{
			"Share the side-by-side results",
			"Hold a joint session on the largest gap",
			"Agree on one change each side owns",
		},
		Resources: entities.ResourceRequirements{People: []string{"Managers", "Advisors"}, Tools: []string{"Survey results"}, Budget: "none"},
	},
	"review-critical-feedback": {
		ID:          "review-critical-feedback",
		Title:       "Review critical free-text feedback",
		Description: "Read every flagged comment and follow up with the teams involved.",
		Area:        "Team Feedback",
		Magnitude:   entities.MagnitudeHigh,
		Effort:      entities.EffortQuickWin,
		Steps: []string{
			"Read the flagged comments in full",
			"Group them by theme",
			"Follow up with the teams involved",
		},
		Resources: entities.ResourceRequirements{People: []string{"Managers"}, Tools: []string{}, Budget: "none"},
	},
	"scale-best-practices": {
		ID:          "scale-best-practices",
		Title:       "Document and scale what already works",
		Description: "Capture the practices of the highest rated teams and spread them.",
		Area:        "Strategic Planning",
		Magnitude:   entities.MagnitudeLow,
		Effort:      entities.EffortMedium,
		Steps: []string{
			"Interview the highest rated respondents",
			"Write down their practices",
			"Share them in the next all-hands",
		},
		Resources: entities.ResourceRequirements{People: []string{"Managers"}, Tools: []string{}, Budget: "none"},
	},
	"executive-workflow-review": {
		ID:          "executive-workflow-review",
		Title:       "Run an executive review of the admissions workflow",
		Description: "Several critical findings at once call for a leadership-level review.",
		Area:        "Strategic Planning",
		Magnitude:   entities.MagnitudeHigh,
		Effort:      entities.EffortMedium,
		Steps: []string{
			"Present the critical findings to leadership",
			"Decide owners and budget",
			"Review progress monthly",
		},
		Resources: entities.ResourceRequirements{People: []string{"Leadership team"}, Tools: []string{}, Budget: "to be decided"},
	},
}

var negativeTemplates = map[Bucket]string{
	BucketWorkflowEffectiveness: "streamline-daily-workflow",
	BucketManagerEffectiveness:  "manager-coaching-toolkit",
	BucketCollaboration:         "team-handoff-protocol",
	BucketSystemSatisfaction:    "crm-usability-fixes",
	BucketProcessClarity:        "document-admission-process",
	BucketTimeAllocation:        "automate-data-entry",
	BucketToolCount:             "consolidate-tools",
	BucketFunnel:                "pipeline-follow-up-cadence",
	BucketBottleneck:            "remove-top-bottleneck",
	BucketFeedback:              "review-critical-feedback",
}

// TemplateFor resolves the template an insight maps to.
func TemplateFor(in entities.Insight) (Template, bool) {
	var id string
	switch {
	case in.Kind == entities.InsightKindText:
		id = "review-critical-feedback"
	case in.Kind == entities.InsightKindTeam:
		id = "align-manager-sales-perception"
	case in.Kind == entities.InsightKindFunnel:
		id = "pipeline-follow-up-cadence"
	case in.Kind == entities.InsightKindProcess:
		id = "remove-top-bottleneck"
	case in.Category.Positive():
		id = "scale-best-practices"
	default:
		id = negativeTemplates[Bucket(in.Bucket)]
	}
	t, ok := templates[id]
	return t, ok
}

// LookupTemplate finds a template by id.
func LookupTemplate(id string) (Template, bool) {
	t, ok := templates[id]
	return t, ok
}

func raise(m entities.Magnitude) entities.Magnitude {
	switch m {
	case entities.MagnitudeLow:
		return entities.MagnitudeMedium
	default:
		return entities.MagnitudeHigh
	}
}

// BuildRecommendations merges insights into recommendations by template and
// sorts them. A critical source insight raises the template magnitude one level.
func BuildRecommendations(insights []entities.Insight) []entities.Recommendation {
	type merged struct {
		t        Template
		sources  []string
		critical bool
	}
	byID := map[string]*merged{}
	var order []string
	var criticalIDs []string

	add := func(t Template, in entities.Insight) {
		m, ok := byID[t.ID]
		if !ok {
			m = &merged{t: t}
			byID[t.ID] = m
			order = append(order, t.ID)
		}
		m.sources = append(m.sources, in.ID)
		if in.Category == entities.InsightCritical {
			m.critical = true
		}
	}

	for _, in := range insights {
		if in.Category == entities.InsightCritical {
			criticalIDs = append(criticalIDs, in.ID)
		}
		t, ok := TemplateFor(in)
		if !ok {
			continue
		}
		add(t, in)
	}

	var recs []entities.Recommendation
	for _, id := range order {
		m := byID[id]
		magnitude := m.t.Magnitude
		if m.critical {
			magnitude = raise(magnitude)
		}
		recs = append(recs, newRecommendation(m.t, magnitude, m.sources))
	}

	if len(criticalIDs) >= executiveReviewThreshold {
		t := templates["executive-workflow-review"]
		recs = append(recs, newRecommendation(t, t.Magnitude, criticalIDs))
	}

	SortRecommendations(recs)
	return recs
}

func newRecommendation(t Template, magnitude entities.Magnitude, sources []string) entities.Recommendation {
	sorted := append([]string(nil), sources...)
	sort.Strings(sorted)
	return entities.Recommendation{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Impact:           entities.Impact{Area: t.Area, Magnitude: magnitude},
		Effort:           entities.Effort{Level: t.Effort, TimeEstimate: effortEstimates[t.Effort]},
		Priority:         Priority(magnitude, t.Effort),
		Category:         GroupFor(t.Area),
		SourceInsightIDs: sorted,
	}
}

// SortRecommendations orders by priority desc, magnitude desc, id asc.
func SortRecommendations(recs []entities.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if ma, mb := a.Impact.Magnitude.Rank(), b.Impact.Magnitude.Rank(); ma != mb {
			return ma > mb
		}
		return a.ID < b.ID
	})
}

func containsFold(s string, words ...string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// VisibleTo reports whether a recommendation is shown to a viewer role.
func VisibleTo(rec entities.Recommendation, role entities.ViewerRole) bool {
	switch role {
	case entities.RoleAdmin:
		return true
	case entities.RoleCoordinator:
		return containsFold(rec.Impact.Area, "Team", "Communication", "Process", "Conversion", "Pipeline") ||
			rec.Impact.Magnitude == entities.MagnitudeHigh
	case entities.RoleAssessor:
		if containsFold(rec.Impact.Area, "Management", "Strategic") {
			return false
		}
		return rec.Effort.Level == entities.EffortQuickWin || rec.Priority >= 7
	}
	return false
}

// FilterByRole keeps the recommendations visible to role, preserving order.
func FilterByRole(recs []entities.Recommendation, role entities.ViewerRole) []entities.Recommendation {
	out := make([]entities.Recommendation, 0, len(recs))
	for _, r := range recs {
		if VisibleTo(r, role) {
			out = append(out, r)
		}
	}
	return out
}

// GroupFor buckets an impact area into a display group.
func GroupFor(area string) string {
	switch {
	case containsFold(area, "Time"):
		return GroupTimeAllocation
	case containsFold(area, "System", "Tool"):
		return GroupSystemEfficiency
	case containsFold(area, "Team", "Communication", "Collaboration"):
		return GroupTeamCollaboration
	default:
		return GroupProcessImprovement
	}
}

// GroupRecommendations returns the four groups in fixed order.
func GroupRecommendations(recs []entities.Recommendation) []entities.RecommendationGroup {
	groups := make([]entities.RecommendationGroup, len(Groups))
	index := map[string]int{}
	for i, g := range Groups {
		groups[i] = entities.RecommendationGroup{Category: g, Recommendations: []entities.Recommendation{}}
		index[g] = i
	}
	for _, r := range recs {
		i := index[GroupFor(r.Impact.Area)]
		groups[i].Recommendations = append(groups[i].Recommendations, r)
	}
	return groups
}

// QuickWins returns up to three high-impact quick-win recommendations by priority.
func QuickWins(recs []entities.Recommendation) []entities.Recommendation {
	var out []entities.Recommendation
	for _, r := range recs {
		if r.Impact.Magnitude == entities.MagnitudeHigh && r.Effort.Level == entities.EffortQuickWin {
			out = append(out, r)
		}
	}
	SortRecommendations(out)
	if len(out) > quickWinLimit {
		out = out[:quickWinLimit]
	}
	if out == nil {
		out = []entities.Recommendation{}
	}
	return out
}

// EstimateTimeline applies ceil((qw*1.5 + medium*4 + significant*8) / 3).
func EstimateTimeline(recs []entities.Recommendation) entities.ImplementationTimeline {
	t := entities.ImplementationTimeline{Parallelism: timelineWorkers}
	for _, r := range recs {
		switch r.Effort.Level {
		case entities.EffortQuickWin:
			t.QuickWinCount++
		case entities.EffortMedium:
			t.MediumCount++
		case entities.EffortSignificant:
			t.SignificantCount++
		}
		t.EffortWeeks += effortWeeks[r.Effort.Level]
	}
	t.TotalWeeks = int(math.Ceil(t.EffortWeeks / timelineWorkers))
	return t
}

// Expand builds the detail view for a recommendation. Steps are spread over
// the weeks its effort level implies.
func Expand(rec entities.Recommendation) entities.RecommendationDetail {
	detail := entities.RecommendationDetail{
		Recommendation:         rec,
		ActionSteps:            []string{},
		ImplementationTimeline: []entities.ActionStep{},
		ResourceRequirements:   entities.ResourceRequirements{People: []string{}, Tools: []string{}},
	}
	weeks := int(math.Ceil(effortWeeks[rec.Effort.Level]))
	detail.ImplementationWeeks = weeks

	t, ok := templates[rec.ID]
	if !ok {
		return detail
	}
	detail.ActionSteps = append(detail.ActionSteps, t.Steps...)
	detail.ResourceRequirements = t.Resources

	n := len(t.Steps)
	for i, step := range t.Steps {
		start := i*weeks/n + 1
		end := (i + 1) * weeks / n
		if end < start {
			end = start
		}
		detail.ImplementationTimeline = append(detail.ImplementationTimeline, entities.ActionStep{
			Order:       i + 1,
			Description: step,
			StartWeek:   start,
			EndWeek:     end,
		})
	}
	return detail
}
