package handlers

import (
	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler emite tokens para o dashboard
type AuthHandler struct {
	authUseCase *usecases.AuthUseCase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUseCase *usecases.AuthUseCase) *AuthHandler {
	return &AuthHandler{authUseCase: authUseCase}
}

// Login troca email e senha por um JWT
// @Summary Login do dashboard
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credenciais"
// @Success 200 {object} usecases.LoginResult
// @Failure 400 {object} map[string]interface{} "Corpo inválido"
// @Failure 401 {object} map[string]interface{} "Credenciais inválidas"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c, "Corpo da requisição inválido")
	}

	result, err := h.authUseCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
