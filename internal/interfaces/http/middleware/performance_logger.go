package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// slowRequestThreshold promove o log para Warn
const slowRequestThreshold = 2 * time.Second

// PerformanceLogger é um middleware que mede o tempo de resposta das rotas críticas
func PerformanceLogger() fiber.Handler {
	// Lista de rotas para monitorar performance
	monitoredRoutes := []string{
		AnalyticsPrefix,
		"/api/surveys/submit",
		"/api/action-items",
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()

		shouldMonitor := false
		for _, route := range monitoredRoutes {
			if strings.HasPrefix(path, route) {
				shouldMonitor = true
				break
			}
		}
		if !shouldMonitor {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		level := slog.LevelInfo
		if duration >= slowRequestThreshold {
			level = slog.LevelWarn
		}
		slog.Log(c.UserContext(), level, "Request completed",
			"method", c.Method(),
			"path", path,
			"status", c.Response().StatusCode(),
			"duration_ms", duration.Milliseconds(),
			"query", string(c.Request().URI().QueryString()),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		)
		return err
	}
}
