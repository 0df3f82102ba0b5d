package report

import (
	"encoding/json"
	"time"

	"github.com/adevbeo/hr-management-platform/internal/features/render"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Source string

const (
	SourceEmployee     Source = "employee"
	SourceContractCost Source = "contractCost"
)

type FilterOp string

const (
	OpEq       FilterOp = "eq"
	OpNe       FilterOp = "ne"
	OpContains FilterOp = "contains"
	OpIn       FilterOp = "in"
	OpGt       FilterOp = "gt"
	OpGte      FilterOp = "gte"
	OpLt       FilterOp = "lt"
	OpLte      FilterOp = "lte"
)

type MetricOp string

const (
	MetricCount MetricOp = "count"
	MetricSum   MetricOp = "sum"
	MetricAvg   MetricOp = "avg"
	MetricMin   MetricOp = "min"
	MetricMax   MetricOp = "max"
)

type Format string

const (
	FormatPDF   Format = "PDF"
	FormatExcel Format = "EXCEL"
)

// Filter restricts the source records; an empty Op means eq.
type Filter struct {
	Field string      `json:"field" bson:"field" validate:"required"`
	Op    FilterOp    `json:"op,omitempty" bson:"op,omitempty"`
	Value interface{} `json:"value" bson:"value"`
}

type Metric struct {
	Field string   `json:"field" bson:"field"`
	Op    MetricOp `json:"op" bson:"op" validate:"required"`
	Alias string   `json:"alias,omitempty" bson:"alias,omitempty"`
}

// QueryDefinition is the declarative part of a template the engine evaluates.
type QueryDefinition struct {
	Source  Source   `json:"source" bson:"source" validate:"required"`
	Filters []Filter `json:"filters,omitempty" bson:"filters,omitempty" validate:"dive"`
	GroupBy []string `json:"groupBy,omitempty" bson:"group_by,omitempty"`
	Metrics []Metric `json:"metrics,omitempty" bson:"metrics,omitempty" validate:"dive"`
}

// LayoutColumn picks a row key, or computes a value with a tengo expression over `row`.
type LayoutColumn struct {
	Key   string `json:"key" bson:"key" validate:"required"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`
	Expr  string `json:"expr,omitempty" bson:"expr,omitempty"`
}

type layoutColumnFields LayoutColumn

// UnmarshalJSON accepts a bare string as shorthand for {"key": s}.
func (c *LayoutColumn) UnmarshalJSON(data []byte) error {
	var key string
	if err := json.Unmarshal(data, &key); err == nil {
		*c = LayoutColumn{Key: key}
		return nil
	}
	return json.Unmarshal(data, (*layoutColumnFields)(c))
}

func (c *LayoutColumn) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.String {
		var key string
		if err := bson.UnmarshalValue(t, data, &key); err != nil {
			return err
		}
		*c = LayoutColumn{Key: key}
		return nil
	}
	return bson.UnmarshalValue(t, data, (*layoutColumnFields)(c))
}

type OutputLayout struct {
	Columns []LayoutColumn `json:"columns,omitempty" bson:"columns,omitempty" validate:"dive"`
}

type ReportTemplate struct {
	ID          primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Name        string                 `json:"name" bson:"name" validate:"required"`
	Description string                 `json:"description,omitempty" bson:"description,omitempty"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty" bson:"input_schema,omitempty"`
	Query       QueryDefinition        `json:"query" bson:"query"`
	Layout      OutputLayout           `json:"layout" bson:"layout"`
	CreatedBy   string                 `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt   time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time              `json:"updatedAt" bson:"updated_at"`
}

type Insights struct {
	Summary     string    `json:"summary" bson:"summary"`
	Model       string    `json:"model,omitempty" bson:"model,omitempty"`
	GeneratedAt time.Time `json:"generatedAt" bson:"generated_at"`
}

// ReportRun is append-only apart from Insights.
type ReportRun struct {
	ID           primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	TemplateID   primitive.ObjectID     `json:"templateId" bson:"template_id"`
	TemplateName string                 `json:"templateName" bson:"template_name"`
	RunBy        string                 `json:"runBy,omitempty" bson:"run_by,omitempty"`
	Params       map[string]interface{} `json:"params,omitempty" bson:"params,omitempty"`
	Columns      []string               `json:"columns" bson:"columns"`
	Rows         []Row                  `json:"rows" bson:"rows"`
	Insights     *Insights              `json:"insights,omitempty" bson:"insights,omitempty"`
	Format       Format                 `json:"format,omitempty" bson:"format,omitempty"`
	CreatedAt    time.Time              `json:"createdAt" bson:"created_at"`
}

// Rows are ordered so column order survives storage and rendering.
type (
	Row  = render.Row
	Cell = render.Cell
)
