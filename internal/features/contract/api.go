package contract

import (
	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ContractApi struct {
	controller *ContractController
	config     *config.Config
}

func NewContractApi(controller *ContractController, config *config.Config) common_api.Route {
	return &ContractApi{controller: controller, config: config}
}

func (h *ContractApi) Setup(app *fiber.App) {
	skip := h.config.SkipAuth
	auth := middleware.AuthMiddleware(skip)

	contracts := app.Group("/api/contracts", auth)
	contracts.Get("/", middleware.RequirePermission(skip, "contracts:view"), h.controller.ListContracts)
	contracts.Get("/templates", middleware.RequirePermission(skip, "contracts:view"), h.controller.ListTemplates)
	contracts.Post("/templates", middleware.RequirePermission(skip, "contracts:create"), h.controller.SaveTemplate)
	contracts.Post("/generate", middleware.RequirePermission(skip, "contracts:generate"), h.controller.Generate)
	contracts.Get("/:id/export", middleware.RequirePermission(skip, "contracts:view"), h.controller.Export)

	app.Post("/api/ai/generate-contract", auth, middleware.RequirePermission(skip, "automations:ai"), h.controller.GenerateWithAI)
}
