package analytics

import (
	"math"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
)

// PerceptionGapThreshold is the manager/sales difference on a 1-10 scale that
// gets flagged.
const PerceptionGapThreshold = 2.0

// ComputeTeamComparison compares manager and sales means per likert scale.
// Gaps are only reported for scales both groups answered.
func ComputeTeamComparison(set *AnswerSet) entities.TeamComparison {
	tc := entities.TeamComparison{Gaps: []entities.TeamGap{}}
	for _, r := range set.Responses {
		switch r.Role {
		case entities.TargetManager:
			tc.ManagerResponses++
		case entities.TargetSales:
			tc.SalesResponses++
		}
	}

	for _, def := range Scales {
		answers, _, _ := set.Lookup(def.Bucket, entities.QuestionLikert)
		var manager, sales []float64
		for _, p := range answers {
			if !p.HasNumeric {
				continue
			}
			switch p.Role {
			case entities.TargetManager:
				manager = append(manager, p.Value.Number)
			case entities.TargetSales:
				sales = append(sales, p.Value.Number)
			}
		}
		if len(manager) == 0 || len(sales) == 0 {
			continue
		}
		m, s := round2(mean(manager)), round2(mean(sales))
		gap := round2(math.Abs(m - s))
		tc.Gaps = append(tc.Gaps, entities.TeamGap{
			Metric:         def.Name,
			Manager:        m,
			Sales:          s,
			ManagerSamples: len(manager),
			SalesSamples:   len(sales),
			Gap:            gap,
			Flagged:        gap >= PerceptionGapThreshold,
		})
	}
	return tc
}
