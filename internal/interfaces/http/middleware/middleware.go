package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// AnalyticsPrefix agrupa as rotas que calculam o próprio ETag a partir do payload
const AnalyticsPrefix = "/api/analytics"

// SetupMiddlewares instala os middlewares globais na ordem de execução
func SetupMiddlewares(app *fiber.App, allowedOrigins string) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			slog.Error("Panic recovered", "method", c.Method(), "path", c.Path(), "panic", e)
		},
	}))
	app.Use(requestid.New())

	// CORS configuration
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "ETag, Content-Disposition",
		AllowCredentials: allowedOrigins != "*",
		MaxAge:           300, // 5 minutes
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// ETag de corpo para o resto; analytics ignora generatedAt no hash
	app.Use(etag.New(etag.Config{
		Weak: true,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), AnalyticsPrefix)
		},
	}))

	app.Use(PerformanceLogger())
}

// RouteGroups define os grupos de rotas da API
type RouteGroups struct {
	Public      fiber.Router
	Auth        fiber.Router
	Surveys     fiber.Router
	Analytics   fiber.Router
	ActionItems fiber.Router
}

// SetupRouteGroups configura os grupos de rotas com seus respectivos middlewares.
// Dashboard groups (analytics, action items) need a token only when auth is required;
// a token sent anyway still caps the viewer role.
func SetupRouteGroups(app *fiber.App, parser TokenParser, authRequired bool) RouteGroups {
	dashboardAuth := OptionalAuth(parser)
	if authRequired {
		dashboardAuth = RequireAuth(parser)
	}

	surveys := app.Group("/api/surveys")
	surveys.Use(OptionalAuth(parser))

	analytics := app.Group(AnalyticsPrefix)
	analytics.Use(dashboardAuth)

	actionItems := app.Group("/api/action-items")
	actionItems.Use(dashboardAuth)

	return RouteGroups{
		Public:      app.Group("/"),
		Auth:        app.Group("/api/auth"),
		Surveys:     surveys,
		Analytics:   analytics,
		ActionItems: actionItems,
	}
}
