package entities

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"
)

// PayloadVersion é a versão ad hoc do formato das respostas de analytics
const PayloadVersion = "2.1.0"

// AnalyticsPayload representa a resposta consolidada de /api/analytics
type AnalyticsPayload struct {
	Version            string               `json:"version"`
	Role               ViewerRole           `json:"role"`
	GeneratedAt        time.Time            `json:"generatedAt"`
	Summary            Summary              `json:"summary"`
	SystemHealth       SystemHealth         `json:"systemHealth"`
	SectionPerformance []SectionPerformance `json:"sectionPerformance"`
	ProcessIssues      []ProcessIssue       `json:"processIssues"`
	EfficiencyMetrics  EfficiencyMetrics    `json:"efficiencyMetrics"`
	PerformanceTrends  PerformanceTrends    `json:"performanceTrends"`
	Achievements       []Achievement        `json:"achievements"`
	ActionableInsights []Insight            `json:"actionableInsights"`
	BusinessMetrics    BusinessMetrics      `json:"businessMetrics"`
	Insights           []Insight            `json:"insights"`
	ETag               string               `json:"-"` // Campo interno para geração de ETag
}

// Summary contém os totais de participação
type Summary struct {
	TotalResponses             int                `json:"totalResponses"`
	StartedResponses           int                `json:"startedResponses"`
	CompletionRate             float64            `json:"completionRate"`
	AverageResponseTimeSeconds float64            `json:"averageResponseTimeSeconds"`
	ResponsesByRole            map[TargetRole]int `json:"responsesByRole"`
	LastResponseAt             *time.Time         `json:"lastResponseAt,omitempty"`
	UnparseableAnswers         int                `json:"unparseableAnswers"`
	Confidence                 Confidence         `json:"confidence"`
}

// HealthComponent é uma métrica 0-10 que entra no score de saúde
type HealthComponent struct {
	Metric string       `json:"metric"`
	Value  float64      `json:"value"`
	Status MetricStatus `json:"status"`
}

// SystemHealth agrega as métricas 0-10 disponíveis
type SystemHealth struct {
	Score      float64           `json:"score"`
	Status     string            `json:"status"`
	Components []HealthComponent `json:"components"`
	Confidence Confidence        `json:"confidence"`
}

// SectionPerformance é a média likert por seção de uma pesquisa
type SectionPerformance struct {
	SurveyID     uint    `json:"surveyId"`
	SurveyName   string  `json:"surveyName"`
	Section      string  `json:"section"`
	AverageScore float64 `json:"averageScore"`
	AnswerCount  int     `json:"answerCount"`
	ResponseRate float64 `json:"responseRate"`
	QuestionIDs  []uint  `json:"questionIds"`
}

// ProcessIssue é um ponto de atrito citado pelos respondentes
type ProcessIssue struct {
	Issue       string   `json:"issue"`
	Mentions    int      `json:"mentions"`
	Percentage  float64  `json:"percentage"`
	Severity    Severity `json:"severity"`
	QuestionIDs []uint   `json:"questionIds"`
}

// TimeAllocationSlice é a média de tempo declarada para uma categoria
type TimeAllocationSlice struct {
	Category          string  `json:"category"`
	Kind              string  `json:"kind"`
	AveragePercentage float64 `json:"averagePercentage"`
	Reports           int     `json:"reports"`
}

// EfficiencyMetrics resume distribuição de tempo e complexidade
type EfficiencyMetrics struct {
	AdminTimeRatio   Metric                `json:"adminTimeRatio"`
	SystemComplexity Metric                `json:"systemComplexity"`
	TimeAllocation   []TimeAllocationSlice `json:"timeAllocation"`
}

type MetricTrend struct {
	Metric string `json:"metric"`
	Trend  Trend  `json:"trend"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type PerformanceTrends struct {
	Metrics        []MetricTrend `json:"metrics"`
	ResponsesByDay []DailyCount  `json:"responsesByDay"`
}

type Achievement struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Metric      string  `json:"metric"`
	Value       float64 `json:"value"`
	InsightID   string  `json:"insightId"`
}

// FunnelStage é uma etapa do pipeline de admissões
type FunnelStage struct {
	Stage   string  `json:"stage"`
	Value   float64 `json:"value"`
	DropOff float64 `json:"dropOff"`
	Reports int     `json:"reports"`
}

type Funnel struct {
	Stages            []FunnelStage `json:"stages"`
	Bottleneck        *FunnelStage  `json:"bottleneck,omitempty"`
	SeverityLabel     Severity      `json:"severityLabel,omitempty"`
	SourceQuestionIDs []uint        `json:"sourceQuestionIds"`
}

type RankedPriority struct {
	Option      string  `json:"option"`
	AverageRank float64 `json:"averageRank"`
	Mentions    int     `json:"mentions"`
}

// BusinessMetrics agrupa funil, conversão e prioridades
type BusinessMetrics struct {
	Scales             []Metric         `json:"scales"`
	Funnel             Funnel           `json:"funnel"`
	FunnelConversion   Metric           `json:"funnelConversion"`
	BottleneckSeverity Metric           `json:"bottleneckSeverity"`
	AdminHoursPerWeek  float64          `json:"adminHoursPerWeek"`
	PriorityRanking    []RankedPriority `json:"priorityRanking"`
}

// TeamGap compara a percepção de gerentes e vendedores em uma mesma escala
type TeamGap struct {
	Metric         string  `json:"metric"`
	Manager        float64 `json:"manager"`
	Sales          float64 `json:"sales"`
	ManagerSamples int     `json:"managerSamples"`
	SalesSamples   int     `json:"salesSamples"`
	Gap            float64 `json:"gap"`
	Flagged        bool    `json:"flagged"`
}

type TeamComparison struct {
	ManagerResponses int       `json:"managerResponses"`
	SalesResponses   int       `json:"salesResponses"`
	Gaps             []TeamGap `json:"gaps"`
}

// DrillDownQuestion detalha uma pergunta de origem de uma métrica
type DrillDownQuestion struct {
	QuestionID   uint           `json:"questionId"`
	SurveyID     uint           `json:"surveyId"`
	Section      string         `json:"section"`
	QuestionText string         `json:"questionText"`
	QuestionType QuestionType   `json:"questionType"`
	SampleSize   int            `json:"sampleSize"`
	Mean         *float64       `json:"mean,omitempty"`
	Distribution map[string]int `json:"distribution"`
}

// DrillDown é a resposta de /api/analytics/drilldown
type DrillDown struct {
	Metric    Metric              `json:"metric"`
	Questions []DrillDownQuestion `json:"questions"`
}

type RecommendationGroup struct {
	Category        string           `json:"category"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RecommendationsView é a resposta de /api/analytics/recommendations
type RecommendationsView struct {
	Version         string                 `json:"version"`
	Role            ViewerRole             `json:"role"`
	Total           int                    `json:"total"`
	Recommendations []Recommendation       `json:"recommendations"`
	Grouped         []RecommendationGroup  `json:"grouped"`
	QuickWins       []Recommendation       `json:"quickWins"`
	Timeline        ImplementationTimeline `json:"timeline"`
}

// SummaryView é a resposta de /api/analytics/summary
type SummaryView struct {
	Version      string           `json:"version"`
	Role         ViewerRole       `json:"role"`
	GeneratedAt  time.Time        `json:"generatedAt"`
	Summary      Summary          `json:"summary"`
	SystemHealth SystemHealth     `json:"systemHealth"`
	TopInsights  []Insight        `json:"topInsights"`
	QuickWins    []Recommendation `json:"quickWins"`
}

// ProcessView é a resposta de /api/analytics/process
type ProcessView struct {
	Version            string               `json:"version"`
	Role               ViewerRole           `json:"role"`
	GeneratedAt        time.Time            `json:"generatedAt"`
	ProcessIssues      []ProcessIssue       `json:"processIssues"`
	Funnel             Funnel               `json:"funnel"`
	EfficiencyMetrics  EfficiencyMetrics    `json:"efficiencyMetrics"`
	SectionPerformance []SectionPerformance `json:"sectionPerformance"`
	Insights           []Insight            `json:"insights"`
}

// TeamView é a resposta de /api/analytics/team
type TeamView struct {
	Version        string         `json:"version"`
	Role           ViewerRole     `json:"role"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	TeamComparison TeamComparison `json:"teamComparison"`
	Collaboration  Metric         `json:"collaboration"`
	Insights       []Insight      `json:"insights"`
}

// CalculateETag gera um hash único para identificar a versão dos dados
func (p *AnalyticsPayload) CalculateETag() string {
	snapshot := *p
	snapshot.GeneratedAt = time.Time{}
	data, _ := json.Marshal(snapshot)
	hash := md5.Sum(data)
	p.ETag = fmt.Sprintf("%x", hash)
	return p.ETag
}
