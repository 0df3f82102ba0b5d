package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adevbeo/hr-management-platform/internal/features/report"

	"go.uber.org/zap"
)

const maxPromptData = 8000

type InsightsService interface {
	GenerateReportInsights(ctx context.Context, runID string) (*report.Insights, error)
	SuggestWorkflow(ctx context.Context, goal, context string) (string, error)
}

type InsightsServiceImpl struct {
	Reports   report.ReportService
	Generator TextGenerator
	logger    *zap.Logger
}

func NewInsightsService(reports report.ReportService, generator TextGenerator, logger *zap.Logger) InsightsService {
	return &InsightsServiceImpl{
		Reports:   reports,
		Generator: generator,
		logger:    logger,
	}
}

// GenerateReportInsights summarises a stored run and attaches the summary to it.
func (s *InsightsServiceImpl) GenerateReportInsights(ctx context.Context, runID string) (*report.Insights, error) {
	run, err := s.Reports.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(run.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run rows: %w", err)
	}

	prompt := "You are an HR analyst. Summarize the key KPIs, trends, and risk alerts from this report data.\n" +
		"Return short bullet points.\n" +
		"Report: " + run.TemplateName + "\n" +
		"Data: " + truncate(string(data), maxPromptData)

	text, model, err := s.Generator.Generate(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	insights := report.Insights{Summary: text, Model: model}
	if err := s.Reports.SetInsights(ctx, runID, insights); err != nil {
		return nil, err
	}
	s.logger.Info("Report insights stored", zap.String("run_id", runID), zap.String("model", model))
	return &insights, nil
}

func (s *InsightsServiceImpl) SuggestWorkflow(ctx context.Context, goal, context string) (string, error) {
	if strings.TrimSpace(context) == "" {
		context = "N/A"
	}
	prompt := fmt.Sprintf("Build a JSON workflow with steps, conditions, and actions to achieve the goal: %q.\n"+
		"Context: %s\n"+
		"Provide 3-5 steps with clear action names.", goal, context)

	text, _, err := s.Generator.Generate(ctx, prompt, "")
	if err != nil {
		s.logger.Error("Failed to suggest workflow", zap.Error(err))
		return "", err
	}
	return text, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
