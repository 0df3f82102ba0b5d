package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/features/mail"
	"github.com/adevbeo/hr-management-platform/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockScheduleRepo struct {
	mu         sync.Mutex
	schedules  map[string]*ScheduledReport
	executions []*ScheduleExecution
	activeErr  error
}

func newMockScheduleRepo() *MockScheduleRepo {
	return &MockScheduleRepo{schedules: map[string]*ScheduledReport{}}
}

func (m *MockScheduleRepo) add(s ScheduledReport) *ScheduledReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	m.schedules[s.ID.Hex()] = &s
	return &s
}

func (m *MockScheduleRepo) Create(ctx context.Context, s *ScheduledReport) error {
	s.ID = primitive.NewObjectID()
	m.add(*s)
	return nil
}

func (m *MockScheduleRepo) GetByID(ctx context.Context, id string) (*ScheduledReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.schedules[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, common_models.ErrNotFound
}

func (m *MockScheduleRepo) List(ctx context.Context, filter map[string]interface{}) ([]ScheduledReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ScheduledReport{}
	for _, s := range m.schedules {
		if active, ok := filter["active"].(bool); ok && s.Active != active {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *MockScheduleRepo) Update(ctx context.Context, s *ScheduledReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[s.ID.Hex()]; !ok {
		return common_models.ErrNotFound
	}
	copied := *s
	m.schedules[s.ID.Hex()] = &copied
	return nil
}

func (m *MockScheduleRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return common_models.ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *MockScheduleRepo) ListActive(ctx context.Context) ([]ScheduledReport, error) {
	if m.activeErr != nil {
		return nil, m.activeErr
	}
	return m.List(ctx, map[string]interface{}{"active": true})
}

func (m *MockScheduleRepo) UpdateLastRunAt(ctx context.Context, id string, lastRun time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return common_models.ErrNotFound
	}
	s.LastRunAt = &lastRun
	return nil
}

func (m *MockScheduleRepo) CreateExecution(ctx context.Context, e *ScheduleExecution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = primitive.NewObjectID()
	m.executions = append(m.executions, e)
	return nil
}

func (m *MockScheduleRepo) UpdateExecution(ctx context.Context, e *ScheduleExecution) error {
	return nil
}

func (m *MockScheduleRepo) ListExecutions(ctx context.Context, scheduleID string, limit int) ([]ScheduleExecution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ScheduleExecution{}
	for _, e := range m.executions {
		if e.ScheduleID.Hex() == scheduleID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *MockScheduleRepo) lastRun(id string) *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedules[id].LastRunAt
}

// MockReportService serves one template and records runs.
type MockReportService struct {
	report.ReportService
	templates map[string]*report.ReportTemplate
	runs      []*report.ReportRun
	params    []map[string]interface{}
}

func newMockReportService(names ...string) *MockReportService {
	m := &MockReportService{templates: map[string]*report.ReportTemplate{}}
	for _, name := range names {
		tpl := &report.ReportTemplate{ID: primitive.NewObjectID(), Name: name}
		m.templates[tpl.ID.Hex()] = tpl
	}
	return m
}

func (m *MockReportService) first() *report.ReportTemplate {
	for _, tpl := range m.templates {
		return tpl
	}
	return nil
}

func (m *MockReportService) GetTemplate(ctx context.Context, id string) (*report.ReportTemplate, error) {
	if tpl, ok := m.templates[id]; ok {
		return tpl, nil
	}
	return nil, common_models.ErrNotFound
}

func (m *MockReportService) RunReport(ctx context.Context, templateID string, params map[string]interface{}, runBy string) (*report.RunResult, error) {
	tpl, ok := m.templates[templateID]
	if !ok {
		return nil, common_models.ErrNotFound
	}
	run := &report.ReportRun{
		ID:           primitive.NewObjectID(),
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		RunBy:        runBy,
		Params:       params,
		Columns:      []string{"department", "headcount"},
		Rows: []report.Row{
			{{Key: "department", Value: "Engineering"}, {Key: "headcount", Value: 3}},
			{{Key: "department", Value: "Sales"}, {Key: "headcount", Value: 2}},
		},
		CreatedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	m.runs = append(m.runs, run)
	m.params = append(m.params, params)
	return &report.RunResult{Run: run, Rows: run.Rows, Template: tpl}, nil
}

type MockMailer struct {
	messages []mail.Message
	err      error
}

func (m *MockMailer) SendMail(ctx context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

type MockPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (m *MockPublisher) Publish(topic string, payload interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
}

var errSMTPDown = errors.New("421 service not available")
