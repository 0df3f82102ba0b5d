package scheduler

import (
	"time"

	"github.com/adevbeo/hr-management-platform/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduledReport runs a report template on a cron expression and mails the export.
type ScheduledReport struct {
	ID           primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	TemplateID   primitive.ObjectID     `json:"templateId" bson:"template_id"`
	ScheduleCron string                 `json:"scheduleCron" bson:"schedule_cron" validate:"required"`
	Recipients   []string               `json:"recipients" bson:"recipients" validate:"dive,email"`
	Filters      map[string]interface{} `json:"filters,omitempty" bson:"filters,omitempty"`
	Format       report.Format          `json:"format" bson:"format"`
	Active       bool                   `json:"active" bson:"active"`
	LastRunAt    *time.Time             `json:"lastRunAt,omitempty" bson:"last_run_at,omitempty"`
	NextRunAt    *time.Time             `json:"nextRunAt,omitempty" bson:"-"`
	CreatedBy    string                 `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt    time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time              `json:"updatedAt" bson:"updated_at"`
}

type ExecutionStatus string

const (
	ExecutionRunning ExecutionStatus = "running"
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
)

type Trigger string

const (
	TriggerTimer  Trigger = "timer"
	TriggerManual Trigger = "manual"
)

// ScheduleExecution is one firing of a schedule
type ScheduleExecution struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ScheduleID  primitive.ObjectID `json:"scheduleId" bson:"schedule_id"`
	ExecutionID string             `json:"executionId" bson:"execution_id"`
	Trigger     Trigger            `json:"trigger" bson:"trigger"`
	RunID       string             `json:"runId,omitempty" bson:"run_id,omitempty"`
	Recipients  int                `json:"recipients" bson:"recipients"`
	Status      ExecutionStatus    `json:"status" bson:"status"`
	Error       string             `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt   time.Time          `json:"startedAt" bson:"started_at"`
	EndedAt     *time.Time         `json:"endedAt,omitempty" bson:"ended_at,omitempty"`
}

// Event is pushed to live listeners for every execution state change.
type Event struct {
	Type        string          `json:"type"`
	ScheduleID  string          `json:"scheduleId"`
	ExecutionID string          `json:"executionId"`
	RunID       string          `json:"runId,omitempty"`
	Status      ExecutionStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
	At          time.Time       `json:"at"`
}
