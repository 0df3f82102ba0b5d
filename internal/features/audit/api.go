package audit

import (
	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
}

func NewAuditApi(controller *AuditController, config *config.Config) common_api.Route {
	return &AuditApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", middleware.AuthMiddleware(h.config.SkipAuth))

	audit.Get("/", middleware.RequirePermission(h.config.SkipAuth, "admin:rbac"), h.controller.ListLogs)
}
