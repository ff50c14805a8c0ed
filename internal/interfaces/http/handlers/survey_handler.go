package handlers

import (
	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/middleware"
	"github.com/gofiber/fiber/v2"
)

// SurveyHandler lida com requisições relacionadas a pesquisas
type SurveyHandler struct {
	surveyUseCase *usecases.SurveyUseCase
}

// NewSurveyHandler cria uma nova instância de SurveyHandler
func NewSurveyHandler(surveyUseCase *usecases.SurveyUseCase) *SurveyHandler {
	return &SurveyHandler{
		surveyUseCase: surveyUseCase,
	}
}

// GetSurveys retorna as pesquisas ativas
// @Summary Retorna as pesquisas ativas
// @Tags surveys
// @Produce json
// @Success 200 {object} map[string]interface{} "Lista de pesquisas"
// @Failure 500 {object} map[string]interface{} "Erro interno do servidor"
// @Router /api/surveys [get]
func (h *SurveyHandler) GetSurveys(c *fiber.Ctx) error {
	surveys, err := h.surveyUseCase.ListActive(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"data":  surveys,
		"total": len(surveys),
	})
}

// GetSurvey retorna uma pesquisa com as perguntas ordenadas
// @Summary Retorna uma pesquisa
// @Tags surveys
// @Produce json
// @Param id path int true "ID da pesquisa"
// @Success 200 {object} entities.Survey
// @Failure 400 {object} map[string]interface{} "ID inválido"
// @Failure 404 {object} map[string]interface{} "Pesquisa não encontrada"
// @Router /api/surveys/{id} [get]
func (h *SurveyHandler) GetSurvey(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return invalidPayload(c, "ID de pesquisa inválido")
	}

	survey, err := h.surveyUseCase.GetSurvey(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(survey)
}

// SubmitResponse grava uma resposta completa
// @Summary Envia as respostas de uma pesquisa
// @Description Valida cada resposta contra sua pergunta e grava resposta e respostas numa transação.
// @Description Um bearer token opcional associa a resposta ao usuário; sem token ela é anônima.
// @Tags surveys
// @Accept json
// @Produce json
// @Param body body usecases.SubmissionInput true "Respostas"
// @Success 201 {object} usecases.SubmissionResult
// @Failure 400 {object} usecases.ValidationError "Erro de validação"
// @Failure 404 {object} map[string]interface{} "Pesquisa não encontrada"
// @Failure 409 {object} map[string]interface{} "Sessão já enviada"
// @Router /api/surveys/submit [post]
func (h *SurveyHandler) SubmitResponse(c *fiber.Ctx) error {
	var in usecases.SubmissionInput
	if err := c.BodyParser(&in); err != nil {
		return invalidPayload(c, "Corpo da requisição inválido")
	}

	if claims := middleware.ClaimsFrom(c); claims != nil {
		id, err := claims.UserID()
		if err != nil {
			return respondError(c, usecases.ErrInvalidToken)
		}
		in.UserID = &id
	}

	result, err := h.surveyUseCase.Submit(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
