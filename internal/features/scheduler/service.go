package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/features/audit"
	"github.com/adevbeo/hr-management-platform/internal/features/report"

	"go.uber.org/zap"
)

type SchedulerService interface {
	ListSchedules(ctx context.Context, filter map[string]interface{}) ([]ScheduledReport, error)
	GetSchedule(ctx context.Context, id string) (*ScheduledReport, error)
	CreateSchedule(ctx context.Context, schedule *ScheduledReport) error
	UpdateSchedule(ctx context.Context, id string, schedule *ScheduledReport) error
	DeleteSchedule(ctx context.Context, id string) error
	RunNow(ctx context.Context, id string) (*ExecutionResult, error)
	ListExecutions(ctx context.Context, id string, limit int) ([]ScheduleExecution, error)

	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type SchedulerServiceImpl struct {
	repo         ScheduleRepository
	reports      report.ReportService
	registry     *Registry
	executor     *Executor
	auditService audit.AuditService
	logger       *zap.Logger

	// locks holds one *sync.Mutex per schedule id.
	locks sync.Map
}

func NewSchedulerService(
	repo ScheduleRepository,
	reports report.ReportService,
	registry *Registry,
	executor *Executor,
	auditService audit.AuditService,
	logger *zap.Logger,
) SchedulerService {
	return &SchedulerServiceImpl{
		repo:         repo,
		reports:      reports,
		registry:     registry,
		executor:     executor,
		auditService: auditService,
		logger:       logger,
	}
}

// validate rejects anything the timer could not execute.
func (s *SchedulerServiceImpl) validate(ctx context.Context, schedule *ScheduledReport) error {
	if _, err := ParseCron(schedule.ScheduleCron); err != nil {
		return err
	}
	format, err := report.ParseFormat(string(schedule.Format))
	if err != nil {
		return err
	}
	schedule.Format = format

	if schedule.TemplateID.IsZero() {
		return fmt.Errorf("%w: templateId is required", common_models.ErrInvalidConfig)
	}
	if _, err := s.reports.GetTemplate(ctx, schedule.TemplateID.Hex()); err != nil {
		if errors.Is(err, common_models.ErrNotFound) {
			return fmt.Errorf("%w: template %s does not exist", common_models.ErrInvalidConfig, schedule.TemplateID.Hex())
		}
		return err
	}
	return nil
}

// lock serialises writes to one schedule so the stored record and its timer
// are changed in the same order.
func (s *SchedulerServiceImpl) lock(id string) func() {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// arm keeps the timer in line with the stored active flag.
func (s *SchedulerServiceImpl) arm(schedule *ScheduledReport) error {
	if !schedule.Active {
		s.registry.Stop(schedule.ID.Hex())
		return nil
	}
	return s.registry.Register(schedule)
}

func (s *SchedulerServiceImpl) withNextRun(schedule *ScheduledReport) {
	if next, ok := s.registry.NextRun(schedule.ID.Hex()); ok {
		schedule.NextRunAt = &next
	}
}

func (s *SchedulerServiceImpl) ListSchedules(ctx context.Context, filter map[string]interface{}) ([]ScheduledReport, error) {
	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range schedules {
		s.withNextRun(&schedules[i])
	}
	return schedules, nil
}

func (s *SchedulerServiceImpl) GetSchedule(ctx context.Context, id string) (*ScheduledReport, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", id, err)
	}
	s.withNextRun(schedule)
	return schedule, nil
}

func (s *SchedulerServiceImpl) CreateSchedule(ctx context.Context, schedule *ScheduledReport) error {
	if err := s.validate(ctx, schedule); err != nil {
		return err
	}
	schedule.LastRunAt = nil

	if err := s.repo.Create(ctx, schedule); err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionCron, "scheduled_reports", schedule.ID.Hex(), map[string]common_models.Change{
		"schedule": {New: schedule},
	})

	if err := s.arm(schedule); err != nil {
		return err
	}
	s.withNextRun(schedule)
	return nil
}

func (s *SchedulerServiceImpl) UpdateSchedule(ctx context.Context, id string, schedule *ScheduledReport) error {
	defer s.lock(id)()

	old, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", id, err)
	}
	if err := s.validate(ctx, schedule); err != nil {
		return err
	}

	schedule.ID = old.ID
	schedule.CreatedAt = old.CreatedAt
	schedule.CreatedBy = old.CreatedBy
	schedule.LastRunAt = old.LastRunAt

	if err := s.repo.Update(ctx, schedule); err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionCron, "scheduled_reports", id, map[string]common_models.Change{
		"schedule": {Old: old, New: schedule},
	})

	if err := s.arm(schedule); err != nil {
		return err
	}
	s.withNextRun(schedule)
	return nil
}

func (s *SchedulerServiceImpl) DeleteSchedule(ctx context.Context, id string) error {
	defer s.lock(id)()

	s.registry.Stop(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("schedule %s: %w", id, err)
	}
	_ = s.auditService.LogChange(ctx, common_models.AuditActionCron, "scheduled_reports", id, map[string]common_models.Change{
		"schedule": {New: "DELETED"},
	})
	return nil
}

// RunNow executes a schedule regardless of its active flag. Unlike the timer
// path, a missing schedule is reported to the caller.
func (s *SchedulerServiceImpl) RunNow(ctx context.Context, id string) (*ExecutionResult, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", id, err)
	}
	return s.executor.Execute(ctx, id)
}

func (s *SchedulerServiceImpl) ListExecutions(ctx context.Context, id string, limit int) ([]ScheduleExecution, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListExecutions(ctx, id, limit)
}

func (s *SchedulerServiceImpl) Start(ctx context.Context) error {
	return s.registry.Start(ctx)
}

func (s *SchedulerServiceImpl) Shutdown(ctx context.Context) error {
	return s.registry.Shutdown(ctx)
}
