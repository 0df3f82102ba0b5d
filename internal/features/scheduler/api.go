package scheduler

import (
	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SchedulerApi struct {
	controller *SchedulerController
	config     *config.Config
}

func NewSchedulerApi(controller *SchedulerController, config *config.Config) common_api.Route {
	return &SchedulerApi{controller: controller, config: config}
}

func (h *SchedulerApi) Setup(app *fiber.App) {
	skip := h.config.SkipAuth
	group := app.Group("/api/scheduler", middleware.AuthMiddleware(skip), middleware.RequirePermission(skip, "scheduler:manage"))

	group.Get("/scheduled-reports", h.controller.ListSchedules)
	group.Post("/scheduled-reports", h.controller.CreateSchedule)
	group.Get("/scheduled-reports/:id", h.controller.GetSchedule)
	group.Put("/scheduled-reports/:id", h.controller.UpdateSchedule)
	group.Delete("/scheduled-reports/:id", h.controller.DeleteSchedule)
	group.Get("/scheduled-reports/:id/executions", h.controller.ListExecutions)

	group.Post("/run", h.controller.RunNow)
}
