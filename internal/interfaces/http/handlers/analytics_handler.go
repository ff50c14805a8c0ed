package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PavaniTiago/workflow-insights-api/internal/application/analytics"
	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/middleware"
	"github.com/gofiber/fiber/v2"
)

// AnalyticsHandler serve o dashboard. Cada requisição recalcula o relatório.
type AnalyticsHandler struct {
	analyticsUseCase *usecases.AnalyticsUseCase
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsUseCase *usecases.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsUseCase: analyticsUseCase}
}

// load resolves the role view (defaulting to def) and builds the report.
func (h *AnalyticsHandler) load(c *fiber.Ctx, def entities.ViewerRole) (entities.ViewerRole, *analytics.Report, error) {
	role, err := usecases.ResolveRole(c.Query("role"), middleware.ViewerRole(c), def)
	if err != nil {
		return "", nil, err
	}
	report, err := h.analyticsUseCase.Report(c.UserContext())
	if err != nil {
		return "", nil, err
	}
	return role, report, nil
}

// GetAnalytics retorna o payload completo do dashboard
// @Summary Payload completo de analytics
// @Description Resumo, saúde do sistema, seções, problemas de processo, eficiência, tendências,
// @Description conquistas, insights acionáveis e métricas de negócio. Suporta If-None-Match.
// @Tags analytics
// @Produce json
// @Param role query string false "admin, coordinator ou assessor" default(admin)
// @Success 200 {object} entities.AnalyticsPayload
// @Success 304 "Não modificado"
// @Failure 400 {object} map[string]interface{} "Papel inválido"
// @Failure 403 {object} map[string]interface{} "Papel acima do permitido"
// @Failure 500 {object} map[string]interface{} "Erro interno do servidor"
// @Router /api/analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	role, report, err := h.load(c, entities.RoleAdmin)
	if err != nil {
		return respondError(c, err)
	}

	payload := report.Payload(role)
	etag := fmt.Sprintf(`W/"%s"`, payload.ETag)

	// Verificar se o cliente já tem a versão mais recente
	if c.Get(fiber.HeaderIfNoneMatch) == etag {
		return c.SendStatus(fiber.StatusNotModified)
	}
	c.Set(fiber.HeaderETag, etag)
	return c.JSON(payload)
}

// GetSummary retorna o resumo executivo
// @Summary Resumo de analytics
// @Tags analytics
// @Produce json
// @Param role query string false "admin, coordinator ou assessor" default(admin)
// @Success 200 {object} entities.SummaryView
// @Router /api/analytics/summary [get]
func (h *AnalyticsHandler) GetSummary(c *fiber.Ctx) error {
	role, report, err := h.load(c, entities.RoleAdmin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report.SummaryView(role))
}

// GetProcess retorna a visão de processo (funil, gargalos, eficiência)
// @Summary Visão de processo
// @Tags analytics
// @Produce json
// @Param role query string false "admin, coordinator ou assessor" default(coordinator)
// @Success 200 {object} entities.ProcessView
// @Router /api/analytics/process [get]
func (h *AnalyticsHandler) GetProcess(c *fiber.Ctx) error {
	role, report, err := h.load(c, entities.RoleCoordinator)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report.ProcessView(role))
}

// GetTeam retorna a comparação gerentes x asesores
// @Summary Visão de equipe
// @Tags analytics
// @Produce json
// @Param role query string false "admin, coordinator ou assessor" default(coordinator)
// @Success 200 {object} entities.TeamView
// @Router /api/analytics/team [get]
func (h *AnalyticsHandler) GetTeam(c *fiber.Ctx) error {
	role, report, err := h.load(c, entities.RoleCoordinator)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report.TeamView(role))
}

// GetRecommendations retorna as recomendações filtradas pelo papel.
// Com ?id= retorna uma recomendação expandida (passos, métricas, recursos).
// @Summary Recomendações
// @Tags analytics
// @Produce json
// @Param role query string false "admin, coordinator ou assessor" default(admin)
// @Param id query string false "ID da recomendação"
// @Success 200 {object} entities.RecommendationsView
// @Failure 404 {object} map[string]interface{} "Recomendação não encontrada"
// @Router /api/analytics/recommendations [get]
func (h *AnalyticsHandler) GetRecommendations(c *fiber.Ctx) error {
	role, report, err := h.load(c, entities.RoleAdmin)
	if err != nil {
		return respondError(c, err)
	}

	if id := strings.TrimSpace(c.Query("id")); id != "" {
		rec, ok := report.Recommendation(id, role)
		if !ok {
			return respondError(c, fmt.Errorf("%w: %s", usecases.ErrRecommendationNotFound, id))
		}
		return c.JSON(analytics.Expand(rec))
	}
	return c.JSON(report.RecommendationsView(role))
}

// GetDrillDown detalha as perguntas por trás de uma métrica
// @Summary Drill-down de métrica
// @Tags analytics
// @Produce json
// @Param metric query string true "Nome da métrica"
// @Success 200 {object} entities.DrillDown
// @Failure 400 {object} map[string]interface{} "Métrica desconhecida"
// @Router /api/analytics/drilldown [get]
func (h *AnalyticsHandler) GetDrillDown(c *fiber.Ctx) error {
	metric := strings.TrimSpace(c.Query("metric"))
	if metric == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "O parâmetro 'metric' é obrigatório",
			"metrics": analytics.MetricNames(),
		})
	}

	_, report, err := h.load(c, entities.RoleAdmin)
	if err != nil {
		return respondError(c, err)
	}

	drill, err := report.DrillDown(metric)
	if errors.Is(err, analytics.ErrUnknownMetric) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   err.Error(),
			"metrics": analytics.MetricNames(),
		})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(drill)
}

// Export baixa o payload filtrado pelo papel em CSV ou JSON
// @Summary Exporta analytics
// @Tags analytics
// @Produce text/csv
// @Produce json
// @Param format query string false "csv ou json" default(csv)
// @Param role query string false "admin, coordinator ou assessor" default(admin)
// @Success 200 {file} file
// @Failure 400 {object} map[string]interface{} "Formato inválido"
// @Router /api/analytics/export [get]
func (h *AnalyticsHandler) Export(c *fiber.Ctx) error {
	format, err := analytics.ParseExportFormat(c.Query("format"))
	if err != nil {
		return invalidPayload(c, err.Error())
	}

	role, report, err := h.load(c, entities.RoleAdmin)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := report.Export(&buf, format, role); err != nil {
		return respondError(c, fmt.Errorf("erro ao exportar analytics: %w", err))
	}

	filename := fmt.Sprintf("analytics-%s-%s.%s", role, report.GeneratedAt.Format("20060102-150405"), format)
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}
