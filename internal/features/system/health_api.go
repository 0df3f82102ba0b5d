package system

import (
	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type HealthApi struct {
	Controller *HealthController
}

func NewHealthApi(controller *HealthController) common_api.Route {
	return &HealthApi{Controller: controller}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.Controller.Health)
}
