package insights

import (
	"context"
	"errors"
	"time"

	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type InsightsController struct {
	Service InsightsService
}

func NewInsightsController(service InsightsService) *InsightsController {
	return &InsightsController{Service: service}
}

type ReportInsightsRequest struct {
	ReportRunID string `json:"reportRunId" validate:"required"`
}

type SuggestWorkflowRequest struct {
	Goal    string `json:"goal" validate:"required"`
	Context string `json:"context"`
}

func respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return common_api.Error(c, err)
}

// GenerateReportInsights godoc
// @Summary      Summarise a report run with the text model
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        request body ReportInsightsRequest true "Run"
// @Router       /api/ai/generate-report-insights [post]
func (ctrl *InsightsController) GenerateReportInsights(c *fiber.Ctx) error {
	var req ReportInsightsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&req); err != nil {
		return common_api.Error(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 60*time.Second)
	defer cancel()

	insights, err := ctrl.Service.GenerateReportInsights(ctx, req.ReportRunID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"output": insights.Summary, "insights": insights})
}

// SuggestWorkflow godoc
// @Summary      Suggest an automation workflow for a goal
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        request body SuggestWorkflowRequest true "Goal"
// @Router       /api/ai/suggest-workflow [post]
func (ctrl *InsightsController) SuggestWorkflow(c *fiber.Ctx) error {
	var req SuggestWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&req); err != nil {
		return common_api.Error(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 60*time.Second)
	defer cancel()

	output, err := ctrl.Service.SuggestWorkflow(ctx, req.Goal, req.Context)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"output": output})
}
