package report

import (
	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	ReportController *ReportController
	Config           *config.Config
}

func NewReportApi(reportController *ReportController, config *config.Config) common_api.Route {
	return &ReportApi{
		ReportController: reportController,
		Config:           config,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	skip := api.Config.SkipAuth
	group := app.Group("/api/reports", middleware.AuthMiddleware(skip))

	group.Get("/templates", middleware.RequirePermission(skip, "reports:view"), api.ReportController.ListTemplates)
	group.Post("/templates", middleware.RequirePermission(skip, "reports:create"), api.ReportController.SaveTemplate)

	group.Post("/run", middleware.RequirePermission(skip, "reports:run"), api.ReportController.Run)
	group.Get("/runs", middleware.RequirePermission(skip, "reports:view"), api.ReportController.ListRuns)
	group.Get("/run/:id", middleware.RequirePermission(skip, "reports:view"), api.ReportController.GetRun)
	group.Get("/run/:id/export", middleware.RequirePermission(skip, "reports:export"), api.ReportController.Export)
}
