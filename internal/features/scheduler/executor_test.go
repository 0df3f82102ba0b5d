package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adevbeo/hr-management-platform/internal/features/render"
	"github.com/adevbeo/hr-management-platform/internal/features/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type executorFixture struct {
	executor *Executor
	repo     *MockScheduleRepo
	reports  *MockReportService
	mailer   *MockMailer
	events   *MockPublisher
}

func newExecutorFixture() *executorFixture {
	f := &executorFixture{
		repo:    newMockScheduleRepo(),
		reports: newMockReportService("Headcount"),
		mailer:  &MockMailer{},
		events:  &MockPublisher{},
	}
	f.executor = NewExecutor(f.repo, f.reports, f.mailer, f.events, zap.NewNop())
	f.executor.now = func() time.Time { return fixedNow }
	return f
}

func (f *executorFixture) schedule(recipients []string, format report.Format) *ScheduledReport {
	return f.repo.add(ScheduledReport{
		TemplateID:   f.reports.first().ID,
		ScheduleCron: "0 8 * * 1",
		Recipients:   recipients,
		Filters:      map[string]interface{}{"status": "ACTIVE"},
		Format:       format,
		Active:       true,
	})
}

func TestExecuteMissingScheduleIsNoop(t *testing.T) {
	f := newExecutorFixture()

	result, err := f.executor.Execute(context.Background(), primitive.NewObjectID().Hex())
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Empty(t, f.reports.runs)
	assert.Empty(t, f.repo.executions)
	assert.Empty(t, f.mailer.messages)
}

func TestExecuteMissingTemplateIsNoop(t *testing.T) {
	f := newExecutorFixture()
	s := f.repo.add(ScheduledReport{TemplateID: primitive.NewObjectID(), ScheduleCron: "@daily", Active: true})

	result, err := f.executor.Execute(context.Background(), s.ID.Hex())
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Empty(t, f.reports.runs)
	assert.Nil(t, f.repo.lastRun(s.ID.Hex()))
}

func TestExecuteWithoutRecipientsSkipsMail(t *testing.T) {
	f := newExecutorFixture()
	s := f.schedule(nil, report.FormatPDF)

	result, err := f.executor.Execute(context.Background(), s.ID.Hex())
	require.NoError(t, err)

	assert.Empty(t, f.mailer.messages)
	require.Len(t, f.reports.runs, 1)
	assert.Equal(t, f.reports.runs[0].ID.Hex(), result.RunID)
	require.NotNil(t, f.repo.lastRun(s.ID.Hex()))
	assert.Equal(t, fixedNow, *f.repo.lastRun(s.ID.Hex()))
}

func TestExecuteMailsExportToRecipients(t *testing.T) {
	tests := []struct {
		format      report.Format
		attachment  string
		contentType string
	}{
		{report.FormatPDF, "Headcount.pdf", render.ContentTypePDF},
		{report.FormatExcel, "Headcount.xlsx", render.ContentTypeExcel},
		{"", "Headcount.pdf", render.ContentTypePDF},
	}
	for _, tt := range tests {
		t.Run(tt.attachment, func(t *testing.T) {
			f := newExecutorFixture()
			s := f.schedule([]string{"hr@example.com", "cfo@example.com"}, tt.format)

			result, err := f.executor.Execute(context.Background(), s.ID.Hex())
			require.NoError(t, err)
			assert.Equal(t, 2, result.Delivered)

			require.Len(t, f.mailer.messages, 1)
			msg := f.mailer.messages[0]
			assert.Equal(t, []string{"hr@example.com", "cfo@example.com"}, msg.To)
			assert.Equal(t, "Scheduled report: Headcount", msg.Subject)
			assert.Equal(t, "Find the scheduled report attached.", msg.Text)
			require.Len(t, msg.Attachments, 1)
			assert.Equal(t, tt.attachment, msg.Attachments[0].Filename)
			assert.Equal(t, tt.contentType, msg.Attachments[0].ContentType)
			assert.NotEmpty(t, msg.Attachments[0].Content)
		})
	}
}

func TestExecutePassesFiltersAsParams(t *testing.T) {
	f := newExecutorFixture()
	s := f.schedule(nil, report.FormatPDF)

	_, err := f.executor.Execute(context.Background(), s.ID.Hex())
	require.NoError(t, err)

	require.Len(t, f.reports.params, 1)
	assert.Equal(t, map[string]interface{}{"status": "ACTIVE"}, f.reports.params[0])
	assert.Equal(t, "system", f.reports.runs[0].RunBy)
}

func TestExecuteRenderFailureKeepsLastRun(t *testing.T) {
	f := newExecutorFixture()
	previous := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	s := f.schedule([]string{"hr@example.com"}, report.FormatPDF)
	s.LastRunAt = &previous
	f.repo.add(*s)
	f.executor.render = func(*report.ReportRun, report.Format) (*report.Export, error) {
		return nil, errors.New("font missing")
	}

	_, err := f.executor.Execute(context.Background(), s.ID.Hex())
	require.Error(t, err)

	assert.Contains(t, err.Error(), "render failed")
	assert.Equal(t, previous, *f.repo.lastRun(s.ID.Hex()))
	assert.Empty(t, f.mailer.messages)
	require.Len(t, f.repo.executions, 1)
	assert.Equal(t, ExecutionFailed, f.repo.executions[0].Status)
	assert.Contains(t, f.events.topics, "schedule.failed")
}

func TestRunScheduledSwallowsDeliveryFailure(t *testing.T) {
	f := newExecutorFixture()
	s := f.schedule([]string{"hr@example.com"}, report.FormatPDF)
	f.mailer.err = errSMTPDown

	assert.NotPanics(t, func() { f.executor.RunScheduled(s.ID.Hex()) })

	assert.Nil(t, f.repo.lastRun(s.ID.Hex()))
	require.Len(t, f.repo.executions, 1)
	assert.Equal(t, ExecutionFailed, f.repo.executions[0].Status)
	assert.Contains(t, f.repo.executions[0].Error, "delivery failed")
	assert.NotEmpty(t, f.repo.executions[0].ExecutionID)
}

func TestRunScheduledSkipsInactiveSchedule(t *testing.T) {
	f := newExecutorFixture()
	s := f.schedule(nil, report.FormatPDF)
	s.Active = false
	f.repo.add(*s)

	f.executor.RunScheduled(s.ID.Hex())
	assert.Empty(t, f.reports.runs)

	// manual runs ignore the flag
	result, err := f.executor.Execute(context.Background(), s.ID.Hex())
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Len(t, f.reports.runs, 1)
}

func TestExecutePublishesLifecycleEvents(t *testing.T) {
	f := newExecutorFixture()
	s := f.schedule(nil, report.FormatPDF)

	_, err := f.executor.Execute(context.Background(), s.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, []string{"schedule.started", "schedule.success"}, f.events.topics)
}
