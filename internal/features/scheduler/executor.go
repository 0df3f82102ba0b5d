package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/features/mail"
	"github.com/adevbeo/hr-management-platform/internal/features/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	timerTimeout = 5 * time.Minute
	runBySystem  = "system"
)

// Publisher fans execution events out to live listeners.
type Publisher interface {
	Publish(topic string, payload interface{})
}

// ExecutionResult is reported back to the manual trigger.
type ExecutionResult struct {
	ExecutionID string `json:"executionId,omitempty"`
	RunID       string `json:"runId,omitempty"`
	Skipped     bool   `json:"skipped"`
	Reason      string `json:"reason,omitempty"`
	Delivered   int    `json:"delivered"`
}

type Executor struct {
	Schedules ScheduleRepository
	Reports   report.ReportService
	Mailer    mail.Mailer
	Events    Publisher
	logger    *zap.Logger
	render    func(run *report.ReportRun, format report.Format) (*report.Export, error)
	now       func() time.Time
}

func NewExecutor(schedules ScheduleRepository, reports report.ReportService, mailer mail.Mailer, events Publisher, logger *zap.Logger) *Executor {
	return &Executor{
		Schedules: schedules,
		Reports:   reports,
		Mailer:    mailer,
		Events:    events,
		logger:    logger,
		render:    report.RenderRun,
		now:       time.Now,
	}
}

// RunScheduled is the timer entry point. Errors are logged, never returned,
// so one failed firing does not affect the next.
func (e *Executor) RunScheduled(scheduleID string) {
	ctx, cancel := context.WithTimeout(context.Background(), timerTimeout)
	defer cancel()

	if _, err := e.execute(ctx, scheduleID, TriggerTimer); err != nil {
		e.logger.Error("Scheduled report failed", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
}

// Execute runs a schedule now and reports the outcome. A schedule or template
// that no longer exists is skipped without error.
func (e *Executor) Execute(ctx context.Context, scheduleID string) (*ExecutionResult, error) {
	return e.execute(ctx, scheduleID, TriggerManual)
}

func (e *Executor) execute(ctx context.Context, scheduleID string, trigger Trigger) (*ExecutionResult, error) {
	schedule, err := e.Schedules.GetByID(ctx, scheduleID)
	if errors.Is(err, common_models.ErrNotFound) {
		e.logger.Info("Schedule no longer exists, skipping", zap.String("schedule_id", scheduleID))
		return &ExecutionResult{Skipped: true, Reason: "schedule not found"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if trigger == TriggerTimer && !schedule.Active {
		return &ExecutionResult{Skipped: true, Reason: "schedule inactive"}, nil
	}

	tpl, err := e.Reports.GetTemplate(ctx, schedule.TemplateID.Hex())
	if errors.Is(err, common_models.ErrNotFound) {
		e.logger.Info("Template of schedule no longer exists, skipping",
			zap.String("schedule_id", scheduleID),
			zap.String("template_id", schedule.TemplateID.Hex()))
		return &ExecutionResult{Skipped: true, Reason: "template not found"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	execution := &ScheduleExecution{
		ScheduleID:  schedule.ID,
		ExecutionID: uuid.NewString(),
		Trigger:     trigger,
		Recipients:  len(schedule.Recipients),
		Status:      ExecutionRunning,
		StartedAt:   e.now().UTC(),
	}
	if err := e.Schedules.CreateExecution(ctx, execution); err != nil {
		e.logger.Warn("Failed to record execution start", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
	e.publish("schedule.started", execution)

	result := &ExecutionResult{ExecutionID: execution.ExecutionID}
	runErr := e.run(ctx, schedule, tpl, result)

	ended := e.now().UTC()
	execution.EndedAt = &ended
	execution.RunID = result.RunID
	if runErr != nil {
		execution.Status = ExecutionFailed
		execution.Error = runErr.Error()
	} else {
		execution.Status = ExecutionSuccess
	}
	if err := e.Schedules.UpdateExecution(ctx, execution); err != nil {
		e.logger.Warn("Failed to record execution end", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
	e.publish("schedule."+string(execution.Status), execution)

	if runErr != nil {
		return result, runErr
	}
	e.logger.Info("Scheduled report delivered",
		zap.String("schedule_id", scheduleID),
		zap.String("run_id", result.RunID),
		zap.Int("recipients", result.Delivered))
	return result, nil
}

// run is query, persist, render, send, then the timestamp. Any failure
// returns before the timestamp is written.
func (e *Executor) run(ctx context.Context, schedule *ScheduledReport, tpl *report.ReportTemplate, result *ExecutionResult) error {
	params := make(map[string]interface{}, len(schedule.Filters))
	for k, v := range schedule.Filters {
		params[k] = v
	}

	out, err := e.Reports.RunReport(ctx, tpl.ID.Hex(), params, runBySystem)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	result.RunID = out.Run.ID.Hex()

	format := schedule.Format
	if format == "" {
		format = report.FormatPDF
	}
	export, err := e.render(out.Run, format)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if len(schedule.Recipients) > 0 {
		err := e.Mailer.SendMail(ctx, mail.Message{
			To:      schedule.Recipients,
			Subject: "Scheduled report: " + tpl.Name,
			Text:    "Find the scheduled report attached.",
			Attachments: []mail.Attachment{{
				Filename:    tpl.Name + filepath.Ext(export.Filename),
				ContentType: export.ContentType,
				Content:     export.Buffer,
			}},
		})
		if err != nil {
			return fmt.Errorf("delivery failed: %w", err)
		}
		result.Delivered = len(schedule.Recipients)
	}

	if err := e.Schedules.UpdateLastRunAt(ctx, schedule.ID.Hex(), e.now().UTC()); err != nil {
		return fmt.Errorf("failed to record last run: %w", err)
	}
	return nil
}

func (e *Executor) publish(topic string, execution *ScheduleExecution) {
	if e.Events == nil {
		return
	}
	e.Events.Publish(topic, Event{
		Type:        topic,
		ScheduleID:  execution.ScheduleID.Hex(),
		ExecutionID: execution.ExecutionID,
		RunID:       execution.RunID,
		Status:      execution.Status,
		Error:       execution.Error,
		At:          e.now().UTC(),
	})
}
