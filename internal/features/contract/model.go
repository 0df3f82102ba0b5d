package contract

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContractStatus string

const (
	ContractDraft      ContractStatus = "DRAFT"
	ContractActive     ContractStatus = "ACTIVE"
	ContractExpired    ContractStatus = "EXPIRED"
	ContractTerminated ContractStatus = "TERMINATED"
)

type ContractType string

const (
	ContractFullTime ContractType = "FULL_TIME"
	ContractPartTime ContractType = "PART_TIME"
	ContractFixed    ContractType = "FIXED_TERM"
	ContractIntern   ContractType = "INTERN"
)

// ContractTemplate holds the document body with {{ key }} placeholders.
type ContractTemplate struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Name        string                 `bson:"name" json:"name" validate:"required"`
	Type        string                 `bson:"type" json:"type"`
	Content     string                 `bson:"content" json:"content" validate:"required"`
	MergeFields map[string]interface{} `bson:"merge_fields,omitempty" json:"mergeFields,omitempty"`
	AIPrompt    string                 `bson:"ai_prompt,omitempty" json:"aiPrompt,omitempty"`
	CreatedBy   string                 `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time              `bson:"updated_at" json:"updatedAt"`
}

// Contract is the generated document for one employee and template.
type Contract struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID       string             `bson:"-" json:"employeeId"`
	TemplateID       primitive.ObjectID `bson:"template_id" json:"templateId"`
	Status           ContractStatus     `bson:"status" json:"status"`
	Type             ContractType       `bson:"type" json:"type"`
	StartDate        time.Time          `bson:"start_date" json:"startDate"`
	EndDate          *time.Time         `bson:"end_date,omitempty" json:"endDate,omitempty"`
	GeneratedContent string             `bson:"generated_content,omitempty" json:"generatedContent,omitempty"`
	Version          int                `bson:"version" json:"version"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}

type GenerationLog struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	TemplateID primitive.ObjectID     `bson:"template_id" json:"templateId"`
	EmployeeID string                 `bson:"employee_id" json:"employeeId"`
	CreatedBy  string                 `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	Params     map[string]interface{} `bson:"params,omitempty" json:"params,omitempty"`
	Output     string                 `bson:"output" json:"output"`
	AIModel    string                 `bson:"ai_model,omitempty" json:"aiModel,omitempty"`
	CreatedAt  time.Time              `bson:"created_at" json:"createdAt"`
}

// Generated is the outcome of merging a template for an employee.
type Generated struct {
	ContractID string            `json:"contractId,omitempty"`
	Content    string            `json:"content"`
	MergeData  map[string]string `json:"mergeData"`
}

type Document struct {
	Buffer   []byte
	Filename string
}
