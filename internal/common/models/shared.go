package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	TenantIDKey ContextKey = "tenant_id"
)

var (
	// ErrNotFound is returned by repositories when the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfig marks user-authored configuration that cannot be executed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

type AuditAction string

const (
	AuditActionCreate    AuditAction = "CREATE"
	AuditActionUpdate    AuditAction = "UPDATE"
	AuditActionDelete    AuditAction = "DELETE"
	AuditActionCron      AuditAction = "CRON"
	AuditActionTemplate  AuditAction = "TEMPLATE"
	AuditActionReport    AuditAction = "REPORT"
	AuditActionContract  AuditAction = "CONTRACT"
	AuditActionAutomated AuditAction = "AUTOMATION"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`                       // The collection the change applies to
	RecordID  string             `bson:"record_id" json:"record_id"`                 // The ID of the document being modified
	ActorID   string             `bson:"actor_id" json:"actor_id"`                   // User ID who performed the action, "system" for timers
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"` // field -> {old, new}
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Log is a persisted application log line written by the logger's DB sink.
type Log struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AppID        string             `bson:"app_id" json:"app_id"`
	Message      string             `bson:"message" json:"message"`
	Caller       string             `bson:"caller,omitempty" json:"caller,omitempty"`
	ScheduleID   string             `bson:"schedule_id,omitempty" json:"schedule_id,omitempty"`
	LogLevelId   int                `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time          `bson:"created_on_utc" json:"created_on_utc"`
}
