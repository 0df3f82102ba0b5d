package report

import (
	"encoding/json"
	"testing"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLayoutSelectsRenamesAndComputes(t *testing.T) {
	layout, err := CompileLayout(OutputLayout{Columns: []LayoutColumn{
		{Key: "headcount", Label: "Headcount"},
		{Key: "department", Label: "Department"},
		{Key: "double", Expr: "row.headcount * 2"},
		{Key: "upper", Expr: `import("text").to_upper(row.department)`},
	}})
	require.NoError(t, err)

	rows, err := layout.Apply([]Row{{{Key: "department", Value: "Sales"}, {Key: "headcount", Value: 2}}})
	require.NoError(t, err)

	assert.Equal(t, []Row{{
		{Key: "Headcount", Value: 2},
		{Key: "Department", Value: "Sales"},
		{Key: "double", Value: 4},
		{Key: "upper", Value: "SALES"},
	}}, rows)
	assert.Equal(t, []string{"Headcount", "Department", "double", "upper"}, layout.Columns(rows))
}

func TestEmptyLayoutKeepsRows(t *testing.T) {
	layout, err := CompileLayout(OutputLayout{})
	require.NoError(t, err)

	in := []Row{{{Key: "a", Value: 1}}}
	out, err := layout.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, []string{"a"}, layout.Columns(out))
	assert.Equal(t, []string{}, layout.Columns(nil))
}

func TestLayoutSyntaxErrorIsConfigurationError(t *testing.T) {
	_, err := CompileLayout(OutputLayout{Columns: []LayoutColumn{{Key: "x", Expr: "row.a +"}}})
	assert.ErrorIs(t, err, common_models.ErrInvalidConfig)
}

func TestLayoutColumnsAsKeys(t *testing.T) {
	want := OutputLayout{Columns: []LayoutColumn{
		{Key: "department"},
		{Key: "headcount", Label: "Headcount"},
	}}

	var fromJSON OutputLayout
	require.NoError(t, json.Unmarshal([]byte(`{"type":"table","columns":["department",{"key":"headcount","label":"Headcount"}]}`), &fromJSON))
	assert.Equal(t, want, fromJSON)

	raw, err := bson.Marshal(bson.M{"columns": bson.A{"department", bson.M{"key": "headcount", "label": "Headcount"}}})
	require.NoError(t, err)
	var fromBSON OutputLayout
	require.NoError(t, bson.Unmarshal(raw, &fromBSON))
	assert.Equal(t, want, fromBSON)

	var bad OutputLayout
	assert.Error(t, json.Unmarshal([]byte(`{"columns":[42]}`), &bad))

	layout, err := CompileLayout(fromJSON)
	require.NoError(t, err)
	rows, err := layout.Apply([]Row{{{Key: "headcount", Value: 3}, {Key: "department", Value: "Engineering"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"department", "Headcount"}, layout.Columns(rows))
}
