package analytics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
)

// ExportFormat é o formato de arquivo aceito em /api/analytics/export
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ParseExportFormat defaults to csv when empty.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return ExportCSV, nil
	case "json":
		return ExportJSON, nil
	}
	return "", fmt.Errorf("invalid format %q: must be csv or json", s)
}

// ContentType returns the MIME type written with the export.
func (f ExportFormat) ContentType() string {
	if f == ExportJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

var csvHeader = []string{"section", "id", "name", "value", "unit", "status", "sample_size", "confidence", "priority", "effort", "area"}

// WriteCSV writes one row per metric followed by one row per recommendation visible to role.
func (r *Report) WriteCSV(w io.Writer, role entities.ViewerRole) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("erro ao escrever cabeçalho csv: %w", err)
	}

	for _, m := range r.Findings.Metrics() {
		row := []string{
			"metric", m.Name, MetricLabel(m.Name),
			strconv.FormatFloat(m.Value, 'f', 2, 64),
			string(m.Unit), string(m.Status),
			strconv.Itoa(m.SampleSize), string(m.Confidence.Level),
			"", "", "",
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("erro ao escrever métrica %s: %w", m.Name, err)
		}
	}

	for _, rec := range r.RecommendationsFor(role) {
		row := []string{
			"recommendation", rec.ID, rec.Title,
			"", "", "", "", "",
			strconv.Itoa(rec.Priority), string(rec.Effort.Level), rec.Impact.Area,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("erro ao escrever recomendação %s: %w", rec.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Export is the JSON export document.
type Export struct {
	Payload         *entities.AnalyticsPayload `json:"payload"`
	Recommendations entities.RecommendationsView `json:"recommendations"`
}

// WriteJSON writes the role-filtered payload plus its recommendations.
func (r *Report) WriteJSON(w io.Writer, role entities.ViewerRole) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	doc := Export{Payload: r.Payload(role), Recommendations: r.RecommendationsView(role)}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("erro ao serializar exportação: %w", err)
	}
	return nil
}

// Export writes the report in the given format.
func (r *Report) Export(w io.Writer, format ExportFormat, role entities.ViewerRole) error {
	if format == ExportJSON {
		return r.WriteJSON(w, role)
	}
	return r.WriteCSV(w, role)
}
