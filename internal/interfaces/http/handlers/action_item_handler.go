package handlers

import (
	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/middleware"
	"github.com/gofiber/fiber/v2"
)

// ActionItemHandler expõe o acompanhamento das recomendações
type ActionItemHandler struct {
	actionItemUseCase *usecases.ActionItemUseCase
}

// NewActionItemHandler creates a new action item handler
func NewActionItemHandler(actionItemUseCase *usecases.ActionItemUseCase) *ActionItemHandler {
	return &ActionItemHandler{actionItemUseCase: actionItemUseCase}
}

// GetActionItems lista as ações
// @Summary Lista ações
// @Tags action-items
// @Produce json
// @Param recommendationId query string false "Filtrar por recomendação"
// @Param status query string false "open, in_progress ou done"
// @Success 200 {object} map[string]interface{}
// @Router /api/action-items [get]
func (h *ActionItemHandler) GetActionItems(c *fiber.Ctx) error {
	items, err := h.actionItemUseCase.List(c.UserContext(), c.Query("recommendationId"), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"data":  items,
		"total": len(items),
	})
}

// CreateActionItem abre uma ação para uma recomendação visível ao usuário
// @Summary Cria ação a partir de uma recomendação
// @Tags action-items
// @Accept json
// @Produce json
// @Param body body usecases.CreateActionItemInput true "Ação"
// @Success 201 {object} entities.ActionItem
// @Failure 400 {object} usecases.ValidationError
// @Failure 404 {object} map[string]interface{} "Recomendação não encontrada"
// @Router /api/action-items [post]
func (h *ActionItemHandler) CreateActionItem(c *fiber.Ctx) error {
	var in usecases.CreateActionItemInput
	if err := c.BodyParser(&in); err != nil {
		return invalidPayload(c, "Corpo da requisição inválido")
	}

	role, err := usecases.ResolveRole("", middleware.ViewerRole(c), entities.RoleAdmin)
	if err != nil {
		return respondError(c, err)
	}

	item, err := h.actionItemUseCase.Create(c.UserContext(), in, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateActionItem altera status, responsável, notas ou prazo
// @Summary Atualiza ação
// @Tags action-items
// @Accept json
// @Produce json
// @Param id path int true "ID da ação"
// @Param body body usecases.UpdateActionItemInput true "Campos alterados"
// @Success 200 {object} entities.ActionItem
// @Failure 404 {object} map[string]interface{} "Ação não encontrada"
// @Router /api/action-items/{id} [patch]
func (h *ActionItemHandler) UpdateActionItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return invalidPayload(c, "ID de ação inválido")
	}

	var in usecases.UpdateActionItemInput
	if err := c.BodyParser(&in); err != nil {
		return invalidPayload(c, "Corpo da requisição inválido")
	}

	item, err := h.actionItemUseCase.Update(c.UserContext(), uint(id), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}
