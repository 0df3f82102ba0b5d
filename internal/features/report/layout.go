package report

import (
	"fmt"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

const layoutResultVar = "__value__"

type compiledColumn struct {
	label    string
	key      string
	compiled *tengo.Compiled
}

// CompiledLayout projects engine rows onto the template's output columns.
type CompiledLayout struct {
	columns []compiledColumn
}

// CompileLayout compiles expression columns once so syntax errors surface when the template is saved.
func CompileLayout(layout OutputLayout) (*CompiledLayout, error) {
	cl := &CompiledLayout{}
	for _, col := range layout.Columns {
		cc := compiledColumn{label: col.Label, key: col.Key}
		if cc.label == "" {
			cc.label = col.Key
		}
		if col.Expr != "" {
			script := tengo.NewScript([]byte(layoutResultVar + " := " + col.Expr))
			script.SetImports(stdlib.GetModuleMap("math", "text", "times"))
			if err := script.Add("row", map[string]interface{}{}); err != nil {
				return nil, err
			}
			compiled, err := script.Compile()
			if err != nil {
				return nil, fmt.Errorf("%w: column %q: %v", common_models.ErrInvalidConfig, col.Key, err)
			}
			cc.compiled = compiled
		}
		cl.columns = append(cl.columns, cc)
	}
	return cl, nil
}

// Apply returns rows unchanged for an empty layout.
func (l *CompiledLayout) Apply(rows []Row) ([]Row, error) {
	if len(l.columns) == 0 {
		return rows, nil
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		projected := make(Row, 0, len(l.columns))
		for _, col := range l.columns {
			value, err := col.value(row)
			if err != nil {
				return nil, err
			}
			projected = append(projected, Cell{Key: col.label, Value: value})
		}
		out = append(out, projected)
	}
	return out, nil
}

// Columns is the header for the applied rows; falls back to the first row's keys.
func (l *CompiledLayout) Columns(rows []Row) []string {
	if len(l.columns) == 0 {
		if len(rows) == 0 {
			return []string{}
		}
		return rows[0].Keys()
	}
	labels := make([]string, len(l.columns))
	for i, col := range l.columns {
		labels[i] = col.label
	}
	return labels
}

func (c compiledColumn) value(row Row) (interface{}, error) {
	if c.compiled == nil {
		v, _ := row.Get(c.key)
		return v, nil
	}

	run := c.compiled.Clone()
	if err := run.Set("row", row.Map()); err != nil {
		return nil, fmt.Errorf("column %q: %w", c.key, err)
	}
	if err := run.Run(); err != nil {
		return nil, fmt.Errorf("column %q: %w", c.key, err)
	}
	return fromScript(run.Get(layoutResultVar).Value()), nil
}

// Scripts see ints as int64; rows carry int.
func fromScript(v interface{}) interface{} {
	if n, ok := v.(int64); ok {
		return int(n)
	}
	return v
}
