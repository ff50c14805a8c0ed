package analytics

import (
	"sort"
	"strings"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
)

// Stage is one step of the admissions pipeline.
type Stage string

const (
	StageInquiry     Stage = "inquiry"
	StageContact     Stage = "contact"
	StageApplication Stage = "application"
	StageAdmission   Stage = "admission"
	StageEnrollment  Stage = "enrollment"
)

// Stages in pipeline order.
var Stages = []Stage{StageInquiry, StageContact, StageApplication, StageAdmission, StageEnrollment}

var stageAliases = map[string]Stage{
	"inquiry":     StageInquiry,
	"inquiries":   StageInquiry,
	"lead":        StageInquiry,
	"leads":       StageInquiry,
	"consulta":    StageInquiry,
	"consultas":   StageInquiry,
	"prospecto":   StageInquiry,
	"prospectos":  StageInquiry,
	"contact":     StageContact,
	"contacted":   StageContact,
	"contacto":    StageContact,
	"contactado":  StageContact,
	"contactados": StageContact,
	"application": StageApplication,
	"applied":     StageApplication,
	"solicitud":   StageApplication,
	"solicitudes": StageApplication,
	"aplicacion":  StageApplication,
	"admission":   StageAdmission,
	"admitted":    StageAdmission,
	"admision":    StageAdmission,
	"admitido":    StageAdmission,
	"admitidos":   StageAdmission,
	"enrollment":  StageEnrollment,
	"enrolled":    StageEnrollment,
	"inscripcion": StageEnrollment,
	"inscrito":    StageEnrollment,
	"inscritos":   StageEnrollment,
	"matricula":   StageEnrollment,
}

// StageFor maps a percentage label to a funnel stage.
func StageFor(label string) (Stage, bool) {
	s, ok := stageAliases[Fold(label)]
	return s, ok
}

// BottleneckSeverityLabel classifies a drop-off percentage.
func BottleneckSeverityLabel(dropOff float64) entities.Severity {
	switch {
	case dropOff >= 60:
		return entities.SeverityCritical
	case dropOff >= 40:
		return entities.SeverityHigh
	case dropOff >= 20:
		return entities.SeverityMedium
	default:
		return entities.SeverityLow
	}
}

// FunnelResult bundles the funnel shape with its two metrics.
type FunnelResult struct {
	Funnel             entities.Funnel
	Conversion         MetricResult
	BottleneckSeverity MetricResult
}

// ComputeFunnel averages reported stage values and derives drop-off between
// consecutive reported stages.
func ComputeFunnel(set *AnswerSet) FunnelResult {
	answers, ids, skipped := set.Lookup(BucketFunnel, entities.QuestionPercentage)
	total := set.TotalComplete()

	conversion := newAccumulator(MetricFunnelConversion, entities.UnitPercent, BucketFunnel)
	conversion.skipped = skipped
	severity := newAccumulator(MetricBottleneckSeverity, entities.UnitScore10, BucketFunnel)
	severity.skipped = skipped

	sums := map[Stage]float64{}
	reports := map[Stage]int{}
	var staged []ParsedAnswer

	for _, p := range answers {
		perStage := map[Stage]float64{}
		for label, v := range p.Value.Percentages {
			stage, ok := StageFor(label)
			if !ok {
				continue
			}
			perStage[stage] += v
		}
		if len(perStage) == 0 {
			conversion.excluded++
			severity.excluded++
			continue
		}
		staged = append(staged, p)
		for stage, v := range perStage {
			sums[stage] += v
			reports[stage]++
		}

		first, last, n := firstAndLast(perStage)
		if n >= 2 && first > 0 {
			conversion.add(p, last/first*100)
		} else {
			conversion.excluded++
		}
	}

	funnel := entities.Funnel{SourceQuestionIDs: append([]uint{}, ids...), Stages: []entities.FunnelStage{}}
	for _, stage := range Stages {
		n := reports[stage]
		if n == 0 {
			continue
		}
		fs := entities.FunnelStage{Stage: string(stage), Value: round2(sums[stage] / float64(n)), Reports: n}
		if k := len(funnel.Stages); k > 0 {
			fs.DropOff = DropOff(funnel.Stages[k-1].Value, fs.Value)
		}
		funnel.Stages = append(funnel.Stages, fs)
	}

	maxDrop := 0.0
	for i := 1; i < len(funnel.Stages); i++ {
		if funnel.Stages[i].DropOff > maxDrop {
			maxDrop = funnel.Stages[i].DropOff
			bottleneck := funnel.Stages[i]
			funnel.Bottleneck = &bottleneck
		}
	}

	result := FunnelResult{Funnel: funnel, Conversion: conversion.finish(total)}
	if len(funnel.Stages) >= 2 {
		funnel.SeverityLabel = BottleneckSeverityLabel(maxDrop)
		result.Funnel = funnel
		// bottleneck severity is an aggregate over the averaged funnel, not a
		// per-answer mean; every answer with a known stage gets the same value.
		value := maxDrop / 10
		for _, p := range staged {
			severity.add(p, value)
		}
	}
	sev := severity.finish(total)
	sev.Metric.Trend = nil
	result.BottleneckSeverity = sev
	return result
}

// DropOff is the percentage lost from prev to cur, clamped at 0; 0 when prev is 0.
func DropOff(prev, cur float64) float64 {
	if prev <= 0 {
		return 0
	}
	drop := (prev - cur) / prev * 100
	if drop < 0 {
		return 0
	}
	return round2(drop)
}

func firstAndLast(perStage map[Stage]float64) (first, last float64, n int) {
	for _, stage := range Stages {
		v, ok := perStage[stage]
		if !ok {
			continue
		}
		if n == 0 {
			first = v
		}
		last = v
		n++
	}
	return first, last, n
}

// ComputeProcessIssues counts checkbox/choice selections in the bottleneck
// bucket, as a share of the responses that answered those questions.
func ComputeProcessIssues(set *AnswerSet) []entities.ProcessIssue {
	checkbox, _, _ := set.Lookup(BucketBottleneck, entities.QuestionCheckbox)
	choice, _, _ := set.Lookup(BucketBottleneck, entities.QuestionMultipleChoice)

	type issueAcc struct {
		label     string
		responses map[uint]bool
		questions map[uint]bool
	}
	issues := map[string]*issueAcc{}
	respondents := map[uint]bool{}

	record := func(p ParsedAnswer, label string) {
		label = strings.TrimSpace(label)
		if label == "" {
			return
		}
		key := Fold(label)
		acc, ok := issues[key]
		if !ok {
			acc = &issueAcc{label: label, responses: map[uint]bool{}, questions: map[uint]bool{}}
			issues[key] = acc
		}
		acc.responses[p.ResponseID] = true
		acc.questions[p.QuestionID] = true
	}

	for _, p := range checkbox {
		respondents[p.ResponseID] = true
		for _, sel := range p.Value.Selections {
			record(p, sel)
		}
	}
	for _, p := range choice {
		respondents[p.ResponseID] = true
		record(p, p.Value.Choice)
	}

	out := make([]entities.ProcessIssue, 0, len(issues))
	if len(respondents) == 0 {
		return out
	}
	for _, acc := range issues {
		mentions := len(acc.responses)
		pct := round1(float64(mentions) / float64(len(respondents)) * 100)
		severity := entities.SeverityLow
		switch {
		case pct >= 50:
			severity = entities.SeverityHigh
		case pct >= 25:
			severity = entities.SeverityMedium
		}
		out = append(out, entities.ProcessIssue{
			Issue:       acc.label,
			Mentions:    mentions,
			Percentage:  pct,
			Severity:    severity,
			QuestionIDs: sortedIDs(acc.questions),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mentions != out[j].Mentions {
			return out[i].Mentions > out[j].Mentions
		}
		return out[i].Issue < out[j].Issue
	})
	return out
}

// ComputePriorities averages each option's rank position (1 = top).
func ComputePriorities(set *AnswerSet) []entities.RankedPriority {
	answers, _, _ := set.Lookup(BucketPriorities, entities.QuestionRanking)

	type rankAcc struct {
		label string
		sum   float64
		n     int
	}
	ranks := map[string]*rankAcc{}
	for _, p := range answers {
		for i, option := range p.Value.Ranking {
			key := Fold(option)
			acc, ok := ranks[key]
			if !ok {
				acc = &rankAcc{label: option}
				ranks[key] = acc
			}
			acc.sum += float64(i + 1)
			acc.n++
		}
	}

	out := make([]entities.RankedPriority, 0, len(ranks))
	for _, acc := range ranks {
		out = append(out, entities.RankedPriority{
			Option:      acc.label,
			AverageRank: round2(acc.sum / float64(acc.n)),
			Mentions:    acc.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageRank != out[j].AverageRank {
			return out[i].AverageRank < out[j].AverageRank
		}
		return out[i].Option < out[j].Option
	})
	return out
}
