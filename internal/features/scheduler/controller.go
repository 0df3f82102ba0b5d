package scheduler

import (
	"context"
	"time"

	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type SchedulerController struct {
	Service SchedulerService
}

func NewSchedulerController(service SchedulerService) *SchedulerController {
	return &SchedulerController{Service: service}
}

type RunNowRequest struct {
	ScheduleID string `json:"scheduleId" validate:"required"`
}

// ListSchedules godoc
// @Summary List scheduled reports
// @Tags scheduler
// @Produce json
// @Param active query boolean false "Filter by active status"
// @Success 200 {array} ScheduledReport
// @Router /api/scheduler/scheduled-reports [get]
func (c *SchedulerController) ListSchedules(ctx *fiber.Ctx) error {
	filter := make(map[string]interface{})
	if active := ctx.Query("active"); active != "" {
		filter["active"] = active == "true"
	}

	schedules, err := c.Service.ListSchedules(ctx.UserContext(), filter)
	if err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.JSON(schedules)
}

// GetSchedule godoc
// @Summary Get scheduled report
// @Tags scheduler
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} ScheduledReport
// @Router /api/scheduler/scheduled-reports/{id} [get]
func (c *SchedulerController) GetSchedule(ctx *fiber.Ctx) error {
	schedule, err := c.Service.GetSchedule(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.JSON(schedule)
}

// CreateSchedule godoc
// @Summary Create scheduled report
// @Description Creates the schedule and arms its timer when active
// @Tags scheduler
// @Accept json
// @Produce json
// @Param schedule body ScheduledReport true "Schedule"
// @Success 201 {object} ScheduledReport
// @Failure 400 {object} map[string]interface{}
// @Router /api/scheduler/scheduled-reports [post]
func (c *SchedulerController) CreateSchedule(ctx *fiber.Ctx) error {
	var schedule ScheduledReport
	if err := ctx.BodyParser(&schedule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&schedule); err != nil {
		return common_api.Error(ctx, err)
	}
	if claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
		schedule.CreatedBy = claims.UserID
	}

	reqCtx, cancel := context.WithTimeout(ctx.UserContext(), 10*time.Second)
	defer cancel()

	if err := c.Service.CreateSchedule(reqCtx, &schedule); err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(schedule)
}

// UpdateSchedule godoc
// @Summary Update scheduled report
// @Description Replaces the schedule and re-arms or stops its timer
// @Tags scheduler
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param schedule body ScheduledReport true "Schedule"
// @Success 200 {object} ScheduledReport
// @Router /api/scheduler/scheduled-reports/{id} [put]
func (c *SchedulerController) UpdateSchedule(ctx *fiber.Ctx) error {
	var schedule ScheduledReport
	if err := ctx.BodyParser(&schedule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&schedule); err != nil {
		return common_api.Error(ctx, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx.UserContext(), 10*time.Second)
	defer cancel()

	if err := c.Service.UpdateSchedule(reqCtx, ctx.Params("id"), &schedule); err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.JSON(schedule)
}

// DeleteSchedule godoc
// @Summary Delete scheduled report
// @Tags scheduler
// @Param id path string true "Schedule ID"
// @Success 204 {object} nil
// @Router /api/scheduler/scheduled-reports/{id} [delete]
func (c *SchedulerController) DeleteSchedule(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteSchedule(ctx.UserContext(), ctx.Params("id")); err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// RunNow godoc
// @Summary Run a scheduled report now
// @Tags scheduler
// @Accept json
// @Produce json
// @Param request body RunNowRequest true "Schedule"
// @Success 200 {object} ExecutionResult
// @Router /api/scheduler/run [post]
func (c *SchedulerController) RunNow(ctx *fiber.Ctx) error {
	var req RunNowRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&req); err != nil {
		return common_api.Error(ctx, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Minute)
	defer cancel()

	result, err := c.Service.RunNow(reqCtx, req.ScheduleID)
	if err != nil {
		status := common_api.StatusFor(err)
		body := fiber.Map{"error": err.Error()}
		if result != nil {
			body["result"] = result
		}
		return ctx.Status(status).JSON(body)
	}
	return ctx.JSON(fiber.Map{"ok": true, "result": result})
}

// ListExecutions godoc
// @Summary Get execution history of a scheduled report
// @Tags scheduler
// @Produce json
// @Param id path string true "Schedule ID"
// @Param limit query int false "Max entries"
// @Success 200 {array} ScheduleExecution
// @Router /api/scheduler/scheduled-reports/{id}/executions [get]
func (c *SchedulerController) ListExecutions(ctx *fiber.Ctx) error {
	executions, err := c.Service.ListExecutions(ctx.UserContext(), ctx.Params("id"), ctx.QueryInt("limit", 50))
	if err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.JSON(executions)
}
