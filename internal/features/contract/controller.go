package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/internal/features/insights"
	"github.com/adevbeo/hr-management-platform/internal/features/render"
	"github.com/adevbeo/hr-management-platform/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type ContractController struct {
	Service ContractService
}

func NewContractController(service ContractService) *ContractController {
	return &ContractController{Service: service}
}

type GenerateContractRequest struct {
	EmployeeID  string                 `json:"employeeId" validate:"required"`
	TemplateID  string                 `json:"templateId" validate:"required"`
	ExtraParams map[string]interface{} `json:"extraParams"`
}

func userID(c *fiber.Ctx) string {
	if claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
		return claims.UserID
	}
	return ""
}

// ListTemplates godoc
// @Summary      List contract templates
// @Tags         contracts
// @Produce      json
// @Success      200 {array} ContractTemplate
// @Router       /api/contracts/templates [get]
func (ctrl *ContractController) ListTemplates(c *fiber.Ctx) error {
	templates, err := ctrl.Service.ListTemplates(c.UserContext())
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(templates)
}

// SaveTemplate godoc
// @Summary      Create or replace a contract template (keyed by name)
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        template body ContractTemplate true "Template"
// @Success      201 {object} ContractTemplate
// @Router       /api/contracts/templates [post]
func (ctrl *ContractController) SaveTemplate(c *fiber.Ctx) error {
	var tpl ContractTemplate
	if err := c.BodyParser(&tpl); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&tpl); err != nil {
		return common_api.Error(c, err)
	}
	tpl.CreatedBy = userID(c)

	saved, err := ctrl.Service.SaveTemplate(c.UserContext(), &tpl)
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// ListContracts godoc
// @Summary      List generated contracts
// @Tags         contracts
// @Produce      json
// @Param        employeeId query string false "Employee ID"
// @Success      200 {array} Contract
// @Router       /api/contracts [get]
func (ctrl *ContractController) ListContracts(c *fiber.Ctx) error {
	contracts, err := ctrl.Service.ListContracts(c.UserContext(), c.Query("employeeId"))
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(contracts)
}

// Generate godoc
// @Summary      Merge a contract template for an employee and store the draft
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request body GenerateContractRequest true "Employee and template"
// @Success      200 {object} Generated
// @Router       /api/contracts/generate [post]
func (ctrl *ContractController) Generate(c *fiber.Ctx) error {
	var req GenerateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&req); err != nil {
		return common_api.Error(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 15*time.Second)
	defer cancel()

	generated, err := ctrl.Service.Generate(ctx, req.EmployeeID, req.TemplateID, req.ExtraParams, userID(c))
	if err != nil {
		return common_api.Error(c, err)
	}
	return c.JSON(generated)
}

// GenerateWithAI godoc
// @Summary      Generate a finalized contract section with the text model
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        request body GenerateContractRequest true "Employee and template"
// @Router       /api/ai/generate-contract [post]
func (ctrl *ContractController) GenerateWithAI(c *fiber.Ctx) error {
	var req GenerateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(&req); err != nil {
		return common_api.Error(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 60*time.Second)
	defer cancel()

	output, err := ctrl.Service.GenerateWithAI(ctx, req.EmployeeID, req.TemplateID, req.ExtraParams)
	if err != nil {
		if errors.Is(err, insights.ErrNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		return common_api.Error(c, err)
	}
	return c.JSON(fiber.Map{"output": output})
}

// Export godoc
// @Summary      Export a generated contract as PDF
// @Tags         contracts
// @Produce      application/pdf
// @Param        id path string true "Contract ID"
// @Router       /api/contracts/{id}/export [get]
func (ctrl *ContractController) Export(c *fiber.Ctx) error {
	doc, err := ctrl.Service.ExportPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return common_api.Error(c, err)
	}
	c.Set("Content-Type", render.ContentTypePDF)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Send(doc.Buffer)
}
