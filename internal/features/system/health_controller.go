package system

import (
	"context"
	"time"

	"github.com/adevbeo/hr-management-platform/internal/database"
	"github.com/adevbeo/hr-management-platform/internal/features/scheduler"

	"github.com/gofiber/fiber/v2"
)

type HealthController struct {
	Mongo     *database.MongodbDB
	Workforce *database.WorkforceSQL
	Registry  *scheduler.Registry
	Hub       *EventHub
}

func NewHealthController(mongo *database.MongodbDB, workforce *database.WorkforceSQL, registry *scheduler.Registry, hub *EventHub) *HealthController {
	return &HealthController{Mongo: mongo, Workforce: workforce, Registry: registry, Hub: hub}
}

// Health godoc
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Failure      503 {object} map[string]interface{}
// @Router       /health [get]
func (h *HealthController) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	checks := fiber.Map{}

	if err := h.Mongo.DB.Client().Ping(ctx, nil); err != nil {
		status = fiber.StatusServiceUnavailable
		checks["mongo"] = err.Error()
	} else {
		checks["mongo"] = "ok"
	}

	if h.Workforce != nil && h.Workforce.DB != nil {
		if err := h.Workforce.DB.PingContext(ctx); err != nil {
			status = fiber.StatusServiceUnavailable
			checks["workforce"] = err.Error()
		} else {
			checks["workforce"] = h.Workforce.Dialect
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"status":     map[bool]string{true: "ok", false: "degraded"}[status == fiber.StatusOK],
		"checks":     checks,
		"scheduler":  h.Registry.State().String(),
		"schedules":  h.Registry.Count(),
		"listeners":  h.Hub.Subscribers(),
		"checked_at": time.Now().UTC(),
	})
}
