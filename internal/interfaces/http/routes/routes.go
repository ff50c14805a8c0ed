package routes

import (
	"github.com/PavaniTiago/workflow-insights-api/internal/application/analytics"
	"github.com/PavaniTiago/workflow-insights-api/internal/application/usecases"
	"github.com/PavaniTiago/workflow-insights-api/internal/config"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/repositories"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/cache"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/handlers"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/http/middleware"
	"github.com/PavaniTiago/workflow-insights-api/internal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes monta repositórios, casos de uso e handlers e registra as rotas.
// The catalog cache is owned by the caller, which closes it on shutdown.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, catalog *cache.Cache[*analytics.Catalog]) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	surveyRepo := repositories.NewSurveyRepository(db)
	responseRepo := repositories.NewResponseRepository(db)
	actionItemRepo := repositories.NewActionItemRepository(db)

	// Use Cases
	authUseCase := usecases.NewAuthUseCase(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	surveyUseCase := usecases.NewSurveyUseCase(surveyRepo, responseRepo)
	analyticsUseCase := usecases.NewAnalyticsUseCase(surveyRepo, responseRepo, catalog, cfg.Catalog.TTL, utils.LoadLocation(cfg.Timezone))
	actionItemUseCase := usecases.NewActionItemUseCase(actionItemRepo, analyticsUseCase)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authUseCase)
	surveyHandler := handlers.NewSurveyHandler(surveyUseCase)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsUseCase)
	actionItemHandler := handlers.NewActionItemHandler(actionItemUseCase)

	// Routes
	groups := middleware.SetupRouteGroups(app, authUseCase, cfg.Auth.Required)

	groups.Public.Get("/health", healthHandler.Health)

	groups.Auth.Post("/login", authHandler.Login)

	// Surveys routes
	groups.Surveys.Get("/", surveyHandler.GetSurveys)
	groups.Surveys.Post("/submit", surveyHandler.SubmitResponse)
	groups.Surveys.Get("/:id", surveyHandler.GetSurvey)

	// Analytics routes
	groups.Analytics.Get("/", analyticsHandler.GetAnalytics)
	groups.Analytics.Get("/summary", analyticsHandler.GetSummary)
	groups.Analytics.Get("/process", analyticsHandler.GetProcess)
	groups.Analytics.Get("/team", analyticsHandler.GetTeam)
	groups.Analytics.Get("/recommendations", analyticsHandler.GetRecommendations)
	groups.Analytics.Get("/drilldown", analyticsHandler.GetDrillDown)
	groups.Analytics.Get("/export", analyticsHandler.Export)

	// Action items routes
	groups.ActionItems.Get("/", actionItemHandler.GetActionItems)
	groups.ActionItems.Post("/", actionItemHandler.CreateActionItem)
	groups.ActionItems.Patch("/:id", actionItemHandler.UpdateActionItem)
}
