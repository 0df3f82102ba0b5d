package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/features/audit"
	"github.com/adevbeo/hr-management-platform/internal/features/insights"
	"github.com/adevbeo/hr-management-platform/internal/features/render"
	"github.com/adevbeo/hr-management-platform/internal/features/workforce"

	"go.uber.org/zap"
)

const missingContent = "Contract content not available"

type ContractService interface {
	SaveTemplate(ctx context.Context, tpl *ContractTemplate) (*ContractTemplate, error)
	ListTemplates(ctx context.Context) ([]ContractTemplate, error)
	ListContracts(ctx context.Context, employeeID string) ([]Contract, error)

	GenerateContent(ctx context.Context, employeeID, templateID string, extra map[string]interface{}, createdBy string) (*Generated, error)
	Generate(ctx context.Context, employeeID, templateID string, extra map[string]interface{}, createdBy string) (*Generated, error)
	GenerateWithAI(ctx context.Context, employeeID, templateID string, extra map[string]interface{}) (string, error)
	ExportPDF(ctx context.Context, contractID string) (*Document, error)
}

type ContractServiceImpl struct {
	Repo         ContractRepository
	Workforce    workforce.Reader
	Generator    insights.TextGenerator
	AuditService audit.AuditService
	logger       *zap.Logger
	now          func() time.Time
}

func NewContractService(repo ContractRepository, reader workforce.Reader, generator insights.TextGenerator, auditService audit.AuditService, logger *zap.Logger) ContractService {
	return &ContractServiceImpl{
		Repo:         repo,
		Workforce:    reader,
		Generator:    generator,
		AuditService: auditService,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *ContractServiceImpl) SaveTemplate(ctx context.Context, tpl *ContractTemplate) (*ContractTemplate, error) {
	if strings.TrimSpace(tpl.Name) == "" {
		return nil, fmt.Errorf("%w: template name is required", common_models.ErrInvalidConfig)
	}
	saved, err := s.Repo.UpsertTemplate(ctx, tpl)
	if err != nil {
		return nil, fmt.Errorf("failed to save contract template: %w", err)
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionTemplate, "contract_templates", saved.ID.Hex(), map[string]common_models.Change{
		"name": {New: saved.Name},
	})
	return saved, nil
}

func (s *ContractServiceImpl) ListTemplates(ctx context.Context) ([]ContractTemplate, error) {
	return s.Repo.ListTemplates(ctx)
}

func (s *ContractServiceImpl) ListContracts(ctx context.Context, employeeID string) ([]Contract, error) {
	return s.Repo.ListContracts(ctx, employeeID)
}

type subject struct {
	template *ContractTemplate
	employee *workforce.EmployeeRecord
	costs    []workforce.CostRecord
}

func (s *ContractServiceImpl) load(ctx context.Context, employeeID, templateID string) (*subject, error) {
	tpl, err := s.Repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("contract template %s: %w", templateID, err)
	}
	employee, err := s.Workforce.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("employee %s: %w", employeeID, err)
	}
	costs, err := s.Workforce.ListCostsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return &subject{template: tpl, employee: employee, costs: costs}, nil
}

// GenerateContent merges the template for the employee and records the output.
func (s *ContractServiceImpl) GenerateContent(ctx context.Context, employeeID, templateID string, extra map[string]interface{}, createdBy string) (*Generated, error) {
	_, generated, err := s.merge(ctx, employeeID, templateID, extra, createdBy)
	return generated, err
}

func (s *ContractServiceImpl) merge(ctx context.Context, employeeID, templateID string, extra map[string]interface{}, createdBy string) (*subject, *Generated, error) {
	subj, err := s.load(ctx, employeeID, templateID)
	if err != nil {
		return nil, nil, err
	}

	data := MergeData(subj.employee, subj.costs, extra)
	content := Merge(subj.template.Content, data)

	if err := s.Repo.LogGeneration(ctx, &GenerationLog{
		TemplateID: subj.template.ID,
		EmployeeID: employeeID,
		CreatedBy:  createdBy,
		Params:     extra,
		Output:     content,
		CreatedAt:  s.now().UTC(),
	}); err != nil {
		s.logger.Warn("Failed to log contract generation", zap.String("employee_id", employeeID), zap.Error(err))
	}

	return subj, &Generated{Content: content, MergeData: data}, nil
}

// Generate merges the template and stores the result as a draft contract.
func (s *ContractServiceImpl) Generate(ctx context.Context, employeeID, templateID string, extra map[string]interface{}, createdBy string) (*Generated, error) {
	subj, generated, err := s.merge(ctx, employeeID, templateID, extra, createdBy)
	if err != nil {
		return nil, err
	}

	saved, err := s.Repo.SaveGenerated(ctx, &Contract{
		EmployeeID:       employeeID,
		TemplateID:       subj.template.ID,
		Status:           ContractDraft,
		Type:             ContractFullTime,
		StartDate:        s.now().UTC().Truncate(time.Millisecond),
		GeneratedContent: generated.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store contract: %w", err)
	}

	generated.ContractID = saved.ID.Hex()
	s.logger.Info("Contract generated",
		zap.String("contract_id", generated.ContractID),
		zap.String("employee_id", employeeID),
		zap.Int("version", saved.Version))
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionContract, "contracts", generated.ContractID, map[string]common_models.Change{
		"version": {New: saved.Version},
	})
	return generated, nil
}

// GenerateWithAI asks the text model for a finalized version of the template for the employee.
func (s *ContractServiceImpl) GenerateWithAI(ctx context.Context, employeeID, templateID string, extra map[string]interface{}) (string, error) {
	subj, err := s.load(ctx, employeeID, templateID)
	if err != nil {
		return "", err
	}

	costs := make([]string, 0, len(subj.costs))
	for _, c := range subj.costs {
		costs = append(costs, fmt.Sprintf("%s: %s %s", c.CostType, render.FormatValue(c.Amount), c.Currency))
	}
	if extra == nil {
		extra = map[string]interface{}{}
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("failed to encode extra params: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are an HR assistant. Using the template content below, generate a finalized contract section that is concise and normalized.\n")
	b.WriteString("Template content:\n")
	b.WriteString(subj.template.Content)
	b.WriteString("\n\nEmployee:\n")
	fmt.Fprintf(&b, "Name: %s\nDepartment: %s\nPosition: %s\n\n", subj.employee.Name(), subj.employee.DepartmentName, subj.employee.PositionTitle)
	fmt.Fprintf(&b, "Costs:\n%s\n\n", strings.Join(costs, ", "))
	fmt.Fprintf(&b, "Extra params: %s", extraJSON)

	output, model, err := s.Generator.Generate(ctx, b.String(), subj.template.AIPrompt)
	if err != nil {
		return "", err
	}

	if err := s.Repo.LogGeneration(ctx, &GenerationLog{
		TemplateID: subj.template.ID,
		EmployeeID: employeeID,
		Params:     extra,
		Output:     output,
		AIModel:    model,
		CreatedAt:  s.now().UTC(),
	}); err != nil {
		s.logger.Warn("Failed to log contract generation", zap.String("employee_id", employeeID), zap.Error(err))
	}
	return output, nil
}

func (s *ContractServiceImpl) ExportPDF(ctx context.Context, contractID string) (*Document, error) {
	c, err := s.Repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", contractID, err)
	}
	employee, err := s.Workforce.GetEmployee(ctx, c.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("employee %s: %w", c.EmployeeID, err)
	}

	html := c.GeneratedContent
	if strings.TrimSpace(html) == "" {
		html = missingContent
	}
	title := fmt.Sprintf("Contract for %s %s", employee.FirstName, employee.LastName)

	buf, err := render.BuildPDFFromHTML(title, html, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to render contract: %w", err)
	}
	return &Document{Buffer: buf, Filename: "contract-" + contractID + ".pdf"}, nil
}
