package insights

import (
	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InsightsApi struct {
	controller *InsightsController
	config     *config.Config
}

func NewInsightsApi(controller *InsightsController, config *config.Config) common_api.Route {
	return &InsightsApi{controller: controller, config: config}
}

func (h *InsightsApi) Setup(app *fiber.App) {
	skip := h.config.SkipAuth
	ai := app.Group("/api/ai", middleware.AuthMiddleware(skip))

	ai.Post("/generate-report-insights", middleware.RequirePermission(skip, "automations:ai"), h.controller.GenerateReportInsights)
	ai.Post("/suggest-workflow", middleware.RequirePermission(skip, "automations:ai"), h.controller.SuggestWorkflow)
}
