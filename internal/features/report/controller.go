package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	ReportService ReportService
}

func NewReportController(reportService ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

type RunReportRequest struct {
	TemplateID string                 `json:"templateId" validate:"required"`
	Params     map[string]interface{} `json:"params"`
}

// TemplateRequest also takes the jsonSchema, queryDefinition and outputLayout
// spellings; the short names win when both are sent.
type TemplateRequest struct {
	Name            string                 `json:"name" validate:"required"`
	Description     string                 `json:"description"`
	InputSchema     map[string]interface{} `json:"inputSchema"`
	JSONSchema      map[string]interface{} `json:"jsonSchema"`
	Query           *QueryDefinition       `json:"query"`
	QueryDefinition *QueryDefinition       `json:"queryDefinition"`
	Layout          *OutputLayout          `json:"layout"`
	OutputLayout    *OutputLayout          `json:"outputLayout"`
}

func (r *TemplateRequest) Template() *ReportTemplate {
	tpl := &ReportTemplate{
		Name:        r.Name,
		Description: r.Description,
		InputSchema: r.InputSchema,
	}
	if tpl.InputSchema == nil {
		tpl.InputSchema = r.JSONSchema
	}
	switch {
	case r.Query != nil:
		tpl.Query = *r.Query
	case r.QueryDefinition != nil:
		tpl.Query = *r.QueryDefinition
	}
	switch {
	case r.Layout != nil:
		tpl.Layout = *r.Layout
	case r.OutputLayout != nil:
		tpl.Layout = *r.OutputLayout
	}
	return tpl
}

// SaveTemplate godoc
// @Summary      Create or replace a report template (keyed by name)
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        template body TemplateRequest true "Template"
// @Success      200 {object} ReportTemplate
// @Router       /api/reports/templates [post]
func (c *ReportController) SaveTemplate(ctx *fiber.Ctx) error {
	var req TemplateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&req); err != nil {
		return common_api.Error(ctx, err)
	}
	tpl := req.Template()
	if claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
		tpl.CreatedBy = claims.UserID
	}

	reqCtx, cancel := context.WithTimeout(ctx.UserContext(), 10*time.Second)
	defer cancel()

	saved, err := c.ReportService.SaveTemplate(reqCtx, tpl)
	if err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.JSON(saved)
}

// ListTemplates godoc
// @Summary      List report templates
// @Tags         reports
// @Produce      json
// @Success      200 {array} ReportTemplate
// @Router       /api/reports/templates [get]
func (c *ReportController) ListTemplates(ctx *fiber.Ctx) error {
	templates, err := c.ReportService.ListTemplates(ctx.UserContext())
	if err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.JSON(templates)
}

// Run godoc
// @Summary      Run a report template
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body RunReportRequest true "Template and parameters"
// @Success      201 {object} RunResult
// @Router       /api/reports/run [post]
func (c *ReportController) Run(ctx *fiber.Ctx) error {
	var req RunReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&req); err != nil {
		return common_api.Error(ctx, err)
	}

	runBy := ""
	if claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
		runBy = claims.UserID
	}

	reqCtx, cancel := context.WithTimeout(ctx.UserContext(), 30*time.Second)
	defer cancel()

	result, err := c.ReportService.RunReport(reqCtx, req.TemplateID, req.Params, runBy)
	if err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(result)
}

// GetRun godoc
// @Summary      Get a stored report run
// @Tags         reports
// @Produce      json
// @Param        id path string true "Run ID"
// @Success      200 {object} ReportRun
// @Router       /api/reports/run/{id} [get]
func (c *ReportController) GetRun(ctx *fiber.Ctx) error {
	run, err := c.ReportService.GetRun(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.JSON(run)
}

// ListRuns godoc
// @Summary      List recent runs (rows omitted)
// @Tags         reports
// @Produce      json
// @Param        templateId query string false "Template ID"
// @Param        limit      query int    false "Max runs"
// @Success      200 {array} ReportRun
// @Router       /api/reports/runs [get]
func (c *ReportController) ListRuns(ctx *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(ctx.Query("limit", "50"), 10, 64)
	runs, err := c.ReportService.ListRuns(ctx.UserContext(), ctx.Query("templateId"), limit)
	if err != nil {
		return common_api.Error(ctx, err)
	}
	return ctx.JSON(runs)
}

// Export godoc
// @Summary      Export a stored run
// @Tags         reports
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id     path  string true  "Run ID"
// @Param        format query string false "pdf or excel"
// @Router       /api/reports/run/{id}/export [get]
func (c *ReportController) Export(ctx *fiber.Ctx) error {
	format, err := ParseFormat(ctx.Query("format"))
	if err != nil {
		return common_api.Error(ctx, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx.UserContext(), 30*time.Second)
	defer cancel()

	export, err := c.ReportService.ExportReport(reqCtx, ctx.Params("id"), format)
	if err != nil {
		return common_api.Error(ctx, err)
	}

	ctx.Set("Content-Type", export.ContentType)
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	return ctx.Send(export.Buffer)
}
