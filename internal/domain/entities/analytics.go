package entities

// ConfidenceLevel classifica a confiabilidade estatística de uma métrica
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Confidence é derivada apenas do total de respostas completas
type Confidence struct {
	Level          ConfidenceLevel `json:"level"`
	TotalResponses int             `json:"totalResponses"`
}

type MetricUnit string

const (
	UnitScore10 MetricUnit = "score10"
	UnitPercent MetricUnit = "percent"
)

// MetricStatus distinguishes a legitimate value from "nothing to compute" and
// "everything that qualified failed to parse".
type MetricStatus string

const (
	MetricOK          MetricStatus = "ok"
	MetricNoData      MetricStatus = "no_data"
	MetricUnparseable MetricStatus = "unparseable"
)

type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// Trend compara a metade mais recente das contribuições com a mais antiga
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Delta     float64        `json:"delta"`
	Earlier   float64        `json:"earlier"`
	Later     float64        `json:"later"`
}

// Metric é um valor derivado, sempre rastreável até as perguntas de origem
type Metric struct {
	Name              string       `json:"name"`
	Value             float64      `json:"value"`
	Unit              MetricUnit   `json:"unit"`
	Status            MetricStatus `json:"status"`
	SourceQuestionIDs []uint       `json:"sourceQuestionIds"`
	ResponseCount     int          `json:"responseCount"`
	SampleSize        int          `json:"sampleSize"`
	FallbackCount     int          `json:"fallbackCount"`
	SkippedCount      int          `json:"skippedCount"`
	Confidence        Confidence   `json:"confidence"`
	Trend             *Trend       `json:"trend,omitempty"`
}

// HasData reports whether at least one answer contributed.
func (m Metric) HasData() bool { return m.Status == MetricOK }

// InsightCategory ordena insights do mais grave ao mais positivo
type InsightCategory string

const (
	InsightCritical    InsightCategory = "critical"
	InsightWarning     InsightCategory = "warning"
	InsightOpportunity InsightCategory = "opportunity"
	InsightSuccess     InsightCategory = "success"
	InsightCelebration InsightCategory = "celebration"
)

// Rank orders categories for display: critical first, celebration last.
func (c InsightCategory) Rank() int {
	switch c {
	case InsightCritical:
		return 0
	case InsightWarning:
		return 1
	case InsightOpportunity:
		return 2
	case InsightSuccess:
		return 3
	default:
		return 4
	}
}

// Positive reports whether the category celebrates rather than flags.
func (c InsightCategory) Positive() bool {
	return c == InsightSuccess || c == InsightCelebration
}

// InsightKind records which generator produced an insight.
type InsightKind string

const (
	InsightKindMetric  InsightKind = "metric"
	InsightKindText    InsightKind = "text"
	InsightKindFunnel  InsightKind = "funnel"
	InsightKindProcess InsightKind = "process"
	InsightKindTeam    InsightKind = "team"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Insight é a tradução de métricas (ou texto livre) em um achado legível
type Insight struct {
	ID                string          `json:"id"`
	Kind              InsightKind     `json:"kind"`
	Category          InsightCategory `json:"category"`
	Severity          Severity        `json:"severity"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Impact            string          `json:"impact"`
	ActionRequired    bool            `json:"actionRequired"`
	Metric            string          `json:"metric,omitempty"`
	Bucket            string          `json:"bucket,omitempty"`
	SourceQuestionIDs []uint          `json:"sourceQuestionIds"`
	EvidenceCount     int             `json:"evidenceCount"`
}

// Magnitude is the expected impact of a recommendation.
type Magnitude string

const (
	MagnitudeLow    Magnitude = "low"
	MagnitudeMedium Magnitude = "medium"
	MagnitudeHigh   Magnitude = "high"
)

func (m Magnitude) Rank() int {
	switch m {
	case MagnitudeHigh:
		return 3
	case MagnitudeMedium:
		return 2
	case MagnitudeLow:
		return 1
	}
	return 0
}

// EffortLevel is the expected effort of a recommendation.
type EffortLevel string

const (
	EffortQuickWin    EffortLevel = "quick-win"
	EffortMedium      EffortLevel = "medium"
	EffortSignificant EffortLevel = "significant"
)

type Impact struct {
	Area      string    `json:"area"`
	Magnitude Magnitude `json:"magnitude"`
}

type Effort struct {
	Level        EffortLevel `json:"level"`
	TimeEstimate string      `json:"timeEstimate"`
}

// Recommendation é uma ação priorizada derivada de um ou mais insights
type Recommendation struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Impact           Impact   `json:"impact"`
	Effort           Effort   `json:"effort"`
	Priority         int      `json:"priority"`
	Category         string   `json:"category"`
	SourceInsightIDs []string `json:"sourceInsightIds"`
}

type ActionStep struct {
	Order       int    `json:"order"`
	Description string `json:"description"`
	StartWeek   int    `json:"startWeek"`
	EndWeek     int    `json:"endWeek"`
}

type ResourceRequirements struct {
	People []string `json:"people"`
	Tools  []string `json:"tools"`
	Budget string   `json:"budget"`
}

// RecommendationDetail é a visão expandida de ?id=
type RecommendationDetail struct {
	Recommendation
	ActionSteps            []string             `json:"actionSteps"`
	ImplementationTimeline []ActionStep         `json:"implementationTimeline"`
	ImplementationWeeks    int                  `json:"implementationWeeks"`
	ResourceRequirements   ResourceRequirements `json:"resourceRequirements"`
}

// ImplementationTimeline é a estimativa agregada de esforço em semanas
type ImplementationTimeline struct {
	TotalWeeks       int     `json:"totalWeeks"`
	EffortWeeks      float64 `json:"effortWeeks"`
	Parallelism      int     `json:"parallelism"`
	QuickWinCount    int     `json:"quickWinCount"`
	MediumCount      int     `json:"mediumCount"`
	SignificantCount int     `json:"significantCount"`
}
