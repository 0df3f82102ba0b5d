package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/features/audit"
	"github.com/adevbeo/hr-management-platform/internal/features/render"
	"github.com/adevbeo/hr-management-platform/internal/features/workforce"
	"github.com/adevbeo/hr-management-platform/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RunResult is what an ad-hoc or scheduled run hands back to its caller.
type RunResult struct {
	Run      *ReportRun      `json:"run"`
	Rows     []Row           `json:"rows"`
	Template *ReportTemplate `json:"template"`
}

// Export is a rendered run.
type Export struct {
	Buffer      []byte
	ContentType string
	Filename    string
}

type ReportService interface {
	SaveTemplate(ctx context.Context, tpl *ReportTemplate) (*ReportTemplate, error)
	GetTemplate(ctx context.Context, id string) (*ReportTemplate, error)
	ListTemplates(ctx context.Context) ([]ReportTemplate, error)

	RunReport(ctx context.Context, templateID string, params map[string]interface{}, runBy string) (*RunResult, error)
	GetRun(ctx context.Context, id string) (*ReportRun, error)
	ListRuns(ctx context.Context, templateID string, limit int64) ([]ReportRun, error)
	ExportReport(ctx context.Context, runID string, format Format) (*Export, error)
	SetInsights(ctx context.Context, runID string, insights Insights) error
}

type ReportServiceImpl struct {
	Repo         ReportRepository
	Workforce    workforce.Reader
	AuditService audit.AuditService
	logger       *zap.Logger
	now          func() time.Time
}

func NewReportService(repo ReportRepository, reader workforce.Reader, auditService audit.AuditService, logger *zap.Logger) ReportService {
	return &ReportServiceImpl{
		Repo:         repo,
		Workforce:    reader,
		AuditService: auditService,
		logger:       logger,
		now:          time.Now,
	}
}

// ParseFormat accepts pdf, excel or xlsx in any case. Empty means PDF.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("%w: unsupported export format %q", common_models.ErrInvalidConfig, s)
}

// SaveTemplate compiles the query and layout before anything is stored.
func (s *ReportServiceImpl) SaveTemplate(ctx context.Context, tpl *ReportTemplate) (*ReportTemplate, error) {
	if strings.TrimSpace(tpl.Name) == "" {
		return nil, fmt.Errorf("%w: template name is required", common_models.ErrInvalidConfig)
	}
	if strings.TrimSpace(string(tpl.Query.Source)) == "" {
		return nil, fmt.Errorf("%w: query source is required", common_models.ErrInvalidConfig)
	}
	if _, err := Compile(tpl.Query); err != nil {
		return nil, err
	}
	if _, err := CompileLayout(tpl.Layout); err != nil {
		return nil, err
	}

	saved, err := s.Repo.UpsertTemplate(ctx, tpl)
	if err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionTemplate, "report_templates", saved.ID.Hex(), map[string]common_models.Change{
		"template": {New: saved},
	})
	return saved, nil
}

func (s *ReportServiceImpl) GetTemplate(ctx context.Context, id string) (*ReportTemplate, error) {
	return s.Repo.GetTemplate(ctx, id)
}

func (s *ReportServiceImpl) ListTemplates(ctx context.Context) ([]ReportTemplate, error) {
	return s.Repo.ListTemplates(ctx)
}

// RunReport evaluates the template against current data and persists the
// laid-out rows as a new run.
func (s *ReportServiceImpl) RunReport(ctx context.Context, templateID string, params map[string]interface{}, runBy string) (*RunResult, error) {
	tpl, err := s.Repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", templateID, err)
	}

	query, err := Compile(tpl.Query)
	if err != nil {
		return nil, err
	}
	layout, err := CompileLayout(tpl.Layout)
	if err != nil {
		return nil, err
	}

	if params == nil {
		params = map[string]interface{}{}
	}
	rows, err := query.WithInputs(InputKeys(tpl.InputSchema)).Evaluate(ctx, s.Workforce, params)
	if err != nil {
		return nil, err
	}
	rows, err = layout.Apply(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to apply layout: %w", err)
	}

	run := &ReportRun{
		ID:           primitive.NewObjectID(),
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		RunBy:        runBy,
		Params:       params,
		Columns:      layout.Columns(rows),
		Rows:         rows,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.Repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}

	s.logger.Info("Report run stored",
		zap.String("template", tpl.Name),
		zap.String("run_id", run.ID.Hex()),
		zap.Int("rows", len(rows)))

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionReport, "report_runs", run.ID.Hex(), map[string]common_models.Change{
		"template_id": {New: tpl.ID.Hex()},
		"rows":        {New: len(rows)},
	})

	return &RunResult{Run: run, Rows: rows, Template: tpl}, nil
}

func (s *ReportServiceImpl) GetRun(ctx context.Context, id string) (*ReportRun, error) {
	run, err := s.Repo.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return run, nil
}

func (s *ReportServiceImpl) ListRuns(ctx context.Context, templateID string, limit int64) ([]ReportRun, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.Repo.ListRuns(ctx, templateID, limit)
}

// ExportReport renders the stored rows of a run; the source data is never re-read.
func (s *ReportServiceImpl) ExportReport(ctx context.Context, runID string, format Format) (*Export, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return RenderRun(run, format)
}

// RenderRun turns a run into a document of the requested format.
func RenderRun(run *ReportRun, format Format) (*Export, error) {
	if format == "" {
		format = run.Format
	}
	base := utils.Slugify(run.TemplateName)
	if base == "" {
		base = "report"
	}

	switch format {
	case FormatExcel:
		buf, err := render.BuildExcel(run.TemplateName, run.Columns, run.Rows)
		if err != nil {
			return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
		}
		return &Export{Buffer: buf, ContentType: render.ContentTypeExcel, Filename: base + ".xlsx"}, nil
	case FormatPDF, "":
		buf, err := render.BuildPDFFromRows(run.TemplateName, run.Rows, run.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to render pdf: %w", err)
		}
		return &Export{Buffer: buf, ContentType: render.ContentTypePDF, Filename: base + ".pdf"}, nil
	}
	return nil, fmt.Errorf("%w: unsupported export format %q", common_models.ErrInvalidConfig, format)
}

func (s *ReportServiceImpl) SetInsights(ctx context.Context, runID string, insights Insights) error {
	if insights.GeneratedAt.IsZero() {
		insights.GeneratedAt = s.now().UTC()
	}
	if err := s.Repo.SetInsights(ctx, runID, &insights); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	return nil
}
