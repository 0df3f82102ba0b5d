package scheduler

import (
	"context"
	"sync"
	"testing"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/features/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MockAuditService struct {
	mu      sync.Mutex
	actions []common_models.AuditAction
}

func (m *MockAuditService) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
	return nil
}

func (m *MockAuditService) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type serviceFixture struct {
	*executorFixture
	svc      SchedulerService
	registry *Registry
	audit    *MockAuditService
}

func newServiceFixture() *serviceFixture {
	f := newExecutorFixture()
	registry := newTestRegistry(true, f.repo, f.executor)
	audit := &MockAuditService{}
	svc := NewSchedulerService(f.repo, f.reports, registry, f.executor, audit, zap.NewNop())
	return &serviceFixture{executorFixture: f, svc: svc, registry: registry, audit: audit}
}

func (f *serviceFixture) newSchedule(active bool) *ScheduledReport {
	return &ScheduledReport{
		TemplateID:   f.reports.first().ID,
		ScheduleCron: "0 8 * * 1",
		Recipients:   []string{"hr@example.com"},
		Format:       "excel",
		Active:       active,
	}
}

func TestCreateScheduleArmsActiveSchedules(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	active := f.newSchedule(true)
	require.NoError(t, f.svc.CreateSchedule(ctx, active))
	inactive := f.newSchedule(false)
	require.NoError(t, f.svc.CreateSchedule(ctx, inactive))

	assert.True(t, f.registry.Armed(active.ID.Hex()))
	assert.False(t, f.registry.Armed(inactive.ID.Hex()))
	assert.Equal(t, report.FormatExcel, active.Format)
	assert.Len(t, f.audit.actions, 2)
}

func TestCreateScheduleRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *ScheduledReport)
	}{
		{"bad cron", func(s *ScheduledReport) { s.ScheduleCron = "every day" }},
		{"bad format", func(s *ScheduledReport) { s.Format = "csv" }},
		{"unknown template", func(s *ScheduledReport) { s.TemplateID = primitive.NewObjectID() }},
		{"no template", func(s *ScheduledReport) { s.TemplateID = primitive.NilObjectID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			s := f.newSchedule(true)
			tt.mutate(s)

			err := f.svc.CreateSchedule(context.Background(), s)
			assert.ErrorIs(t, err, common_models.ErrInvalidConfig)
			assert.Equal(t, 0, f.registry.Count())
			assert.Empty(t, f.repo.schedules)
		})
	}
}

func TestUpdateScheduleRearmsOrStops(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.newSchedule(true)
	require.NoError(t, f.svc.CreateSchedule(ctx, s))
	id := s.ID.Hex()

	edit := f.newSchedule(true)
	edit.ScheduleCron = "*/30 * * * *"
	require.NoError(t, f.svc.UpdateSchedule(ctx, id, edit))
	assert.True(t, f.registry.Armed(id))
	assert.Equal(t, 1, f.registry.Count())

	stored, err := f.svc.GetSchedule(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "*/30 * * * *", stored.ScheduleCron)

	pause := f.newSchedule(false)
	require.NoError(t, f.svc.UpdateSchedule(ctx, id, pause))
	assert.False(t, f.registry.Armed(id))
}

func TestConcurrentUpdatesLeaveTimerMatchingStoredFlag(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newServiceFixture()
		ctx := context.Background()
		s := f.newSchedule(true)
		require.NoError(t, f.svc.CreateSchedule(ctx, s))
		id := s.ID.Hex()

		edits := make([]*ScheduledReport, 8)
		for i := range edits {
			edits[i] = f.newSchedule(i%2 == 0)
		}

		var wg sync.WaitGroup
		for _, edit := range edits {
			wg.Add(1)
			go func(edit *ScheduledReport) {
				defer wg.Done()
				assert.NoError(t, f.svc.UpdateSchedule(ctx, id, edit))
			}(edit)
		}
		wg.Wait()

		stored, err := f.repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, stored.Active, f.registry.Armed(id), "round %d", round)
	}
}

func TestUpdateAfterDeleteLeavesNoTimer(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.newSchedule(true)
	require.NoError(t, f.svc.CreateSchedule(ctx, s))
	id := s.ID.Hex()
	edit := f.newSchedule(true)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = f.svc.UpdateSchedule(ctx, id, edit)
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, f.svc.DeleteSchedule(ctx, id))
	}()
	wg.Wait()

	_, err := f.repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, common_models.ErrNotFound)
	assert.False(t, f.registry.Armed(id))
}

func TestUpdateScheduleInvalidCronKeepsTimer(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.newSchedule(true)
	require.NoError(t, f.svc.CreateSchedule(ctx, s))

	edit := f.newSchedule(true)
	edit.ScheduleCron = "nope"
	err := f.svc.UpdateSchedule(ctx, s.ID.Hex(), edit)

	assert.ErrorIs(t, err, common_models.ErrInvalidConfig)
	assert.True(t, f.registry.Armed(s.ID.Hex()))
	stored, _ := f.repo.GetByID(ctx, s.ID.Hex())
	assert.Equal(t, "0 8 * * 1", stored.ScheduleCron)
}

func TestUpdateMissingSchedule(t *testing.T) {
	f := newServiceFixture()
	err := f.svc.UpdateSchedule(context.Background(), primitive.NewObjectID().Hex(), f.newSchedule(true))
	assert.ErrorIs(t, err, common_models.ErrNotFound)
}

func TestDeleteScheduleStopsTimer(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.newSchedule(true)
	require.NoError(t, f.svc.CreateSchedule(ctx, s))

	require.NoError(t, f.svc.DeleteSchedule(ctx, s.ID.Hex()))

	assert.False(t, f.registry.Armed(s.ID.Hex()))
	_, err := f.svc.GetSchedule(ctx, s.ID.Hex())
	assert.ErrorIs(t, err, common_models.ErrNotFound)
}

func TestRunNow(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	_, err := f.svc.RunNow(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, common_models.ErrNotFound)
	_, err = f.svc.RunNow(ctx, "not-an-id")
	assert.ErrorIs(t, err, common_models.ErrNotFound)

	s := f.newSchedule(false)
	require.NoError(t, f.svc.CreateSchedule(ctx, s))

	result, err := f.svc.RunNow(ctx, s.ID.Hex())
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, "Headcount.xlsx", f.mailer.messages[0].Attachments[0].Filename)

	executions, err := f.svc.ListExecutions(ctx, s.ID.Hex(), 0)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, ExecutionSuccess, executions[0].Status)
	assert.Equal(t, TriggerManual, executions[0].Trigger)
}
