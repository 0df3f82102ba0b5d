package system

import (
	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	Controller *WebSocketController
	config     *config.Config
}

func NewWebSocketApi(controller *WebSocketController, config *config.Config) common_api.Route {
	return &WebSocketApi{
		Controller: controller,
		config:     config,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	app.Get("/api/ws",
		middleware.AuthMiddleware(h.config.SkipAuth),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
		websocket.New(h.Controller.HandleWebSocket),
	)
}
