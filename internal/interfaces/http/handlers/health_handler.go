package handlers

import (
	"log/slog"

	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const Version = "1.0.0"

// HealthHandler reporta o estado da API e do banco
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health check
// @Summary Estado da API e do banco
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if err := database.Ping(h.db); err != nil {
		slog.Error("Database ping failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"version":  Version,
			"database": "down",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"version":  Version,
		"database": "up",
	})
}
