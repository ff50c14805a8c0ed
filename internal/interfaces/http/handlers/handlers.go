package handlers

import (
	"errors"
	"log/slog"

	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/gofiber/fiber/v2"
)

// errorStatus maps usecase errors to HTTP status codes. Zero means unexpected.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, usecases.ErrSurveyNotFound),
		errors.Is(err, usecases.ErrRecommendationNotFound),
		errors.Is(err, usecases.ErrActionItemNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecases.ErrDuplicateSubmission):
		return fiber.StatusConflict
	case errors.Is(err, usecases.ErrInvalidRole):
		return fiber.StatusBadRequest
	case errors.Is(err, usecases.ErrRoleForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, usecases.ErrInvalidCredentials),
		errors.Is(err, usecases.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, usecases.ErrTokensDisabled):
		return fiber.StatusServiceUnavailable
	}
	return 0
}

// respondError escreve o corpo de erro padrão da API
func respondError(c *fiber.Ctx, err error) error {
	var ve *usecases.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(ve)
	}
	if status := errorStatus(err); status != 0 {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	slog.Error("Request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Erro interno do servidor",
	})
}

func invalidPayload(c *fiber.Ctx, msg string) error {
	return respondError(c, &usecases.ValidationError{Code: usecases.CodeInvalidPayload, Message: msg})
}

// ErrorHandler trata erros que escapam dos handlers (rota inexistente, corpo grande demais)
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err)
}
