package report

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"
	"github.com/adevbeo/hr-management-platform/internal/features/workforce"
)

// UnassignedGroup labels records whose grouping field is empty.
const UnassignedGroup = "Unassigned"

// CompiledQuery is a QueryDefinition resolved against its source catalog.
type CompiledQuery struct {
	Source Source
	inputs map[string]bool
	param  func(name string) bool
	eval   func(ctx context.Context, reader workforce.Reader, params map[string]interface{}) ([]Row, error)
}

// Compile validates def against the field catalog of its source. Unknown
// sources compile to a query that always yields no rows.
func Compile(def QueryDefinition) (*CompiledQuery, error) {
	switch def.Source {
	case SourceEmployee:
		return compileFor(employeeCatalog, def)
	case SourceContractCost:
		return compileFor(costCatalog, def)
	default:
		return &CompiledQuery{
			Source: def.Source,
			eval: func(context.Context, workforce.Reader, map[string]interface{}) ([]Row, error) {
				return []Row{}, nil
			},
		}, nil
	}
}

// WithInputs declares the template's input parameters. A declared parameter
// that names no field of the source is left out of filtering.
func (q *CompiledQuery) WithInputs(keys []string) *CompiledQuery {
	inputs := make(map[string]bool, len(keys))
	for _, key := range keys {
		inputs[key] = true
	}
	return &CompiledQuery{Source: q.Source, inputs: inputs, param: q.param, eval: q.eval}
}

// Evaluate runs the query against the current data snapshot.
func (q *CompiledQuery) Evaluate(ctx context.Context, reader workforce.Reader, params map[string]interface{}) ([]Row, error) {
	if len(q.inputs) == 0 || q.param == nil {
		return q.eval(ctx, reader, params)
	}
	filtered := make(map[string]interface{}, len(params))
	for key, value := range params {
		field, _, _ := strings.Cut(key, "__")
		if q.inputs[key] && !q.param(field) {
			continue
		}
		filtered[key] = value
	}
	return q.eval(ctx, reader, filtered)
}

// InputKeys lists the parameters an input schema declares: the keys of its
// "properties" object, or its top-level keys when it has none.
func InputKeys(schema map[string]interface{}) []string {
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		schema = props
	}
	keys := make([]string, 0, len(schema))
	for key := range schema {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

type boundFilter[T any] struct {
	get   func(T) interface{}
	op    FilterOp
	value interface{}
}

type boundMetric[T any] struct {
	get   func(T) interface{}
	op    MetricOp
	alias string
}

func compileFor[T any](c catalog[T], def QueryDefinition) (*CompiledQuery, error) {
	filters, err := bindFilters(c.fields, def.Filters)
	if err != nil {
		return nil, err
	}

	groupBy := make([]func(T) interface{}, 0, len(def.GroupBy))
	for _, field := range def.GroupBy {
		get, ok := c.fields[field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown group field %q for source %s", common_models.ErrInvalidConfig, field, def.Source)
		}
		groupBy = append(groupBy, get)
	}

	metrics := make([]boundMetric[T], 0, len(def.Metrics))
	for _, m := range def.Metrics {
		bm, err := bindMetric(c, m)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, bm)
	}

	eval := func(ctx context.Context, reader workforce.Reader, params map[string]interface{}) ([]Row, error) {
		paramFilters, err := bindParams(c, params)
		if err != nil {
			return nil, err
		}
		all := append(append([]boundFilter[T]{}, filters...), paramFilters...)

		records, err := c.load(ctx, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s records: %w", def.Source, err)
		}

		matched := make([]T, 0, len(records))
		for _, rec := range records {
			if matchesAll(rec, all) {
				matched = append(matched, rec)
			}
		}

		if len(groupBy) == 0 {
			return project(c, matched), nil
		}
		return aggregate(matched, def.GroupBy, groupBy, metrics), nil
	}

	param := func(name string) bool {
		_, ok := c.paramField(name)
		return ok
	}
	return &CompiledQuery{Source: def.Source, param: param, eval: eval}, nil
}

func bindFilters[T any](fields map[string]func(T) interface{}, defs []Filter) ([]boundFilter[T], error) {
	out := make([]boundFilter[T], 0, len(defs))
	for _, f := range defs {
		get, ok := fields[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter field %q", common_models.ErrInvalidConfig, f.Field)
		}
		op := normalizeOp(f.Op)
		if !validFilterOp(op) {
			return nil, fmt.Errorf("%w: unknown filter operator %q", common_models.ErrInvalidConfig, f.Op)
		}
		out = append(out, boundFilter[T]{get: get, op: op, value: f.Value})
	}
	return out, nil
}

// bindParams turns run parameters into filters. "field__op" picks an operator;
// empty values are treated as not supplied. Parameter names resolve through
// the catalog's parameter overrides before its fields.
func bindParams[T any](c catalog[T], params map[string]interface{}) ([]boundFilter[T], error) {
	fields := make(map[string]func(T) interface{}, len(params))
	defs := make([]Filter, 0, len(params))
	for key, value := range params {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		field, op := key, OpEq
		if name, suffix, found := strings.Cut(key, "__"); found {
			field, op = name, FilterOp(suffix)
		}
		if get, ok := c.paramField(field); ok {
			fields[field] = get
		}
		defs = append(defs, Filter{Field: field, Op: op, Value: value})
	}
	// Map iteration order does not matter: filters are conjunctive.
	return bindFilters(fields, defs)
}

func bindMetric[T any](c catalog[T], m Metric) (boundMetric[T], error) {
	bm := boundMetric[T]{op: m.Op, alias: m.Alias}
	switch m.Op {
	case MetricCount:
		if m.Field != "" {
			if _, ok := c.fields[m.Field]; !ok {
				return bm, fmt.Errorf("%w: unknown metric field %q", common_models.ErrInvalidConfig, m.Field)
			}
		}
	case MetricSum, MetricAvg, MetricMin, MetricMax:
		get, ok := c.fields[m.Field]
		if !ok {
			return bm, fmt.Errorf("%w: unknown metric field %q", common_models.ErrInvalidConfig, m.Field)
		}
		if !c.numeric[m.Field] {
			return bm, fmt.Errorf("%w: metric %s needs a numeric field, %q is not", common_models.ErrInvalidConfig, m.Op, m.Field)
		}
		bm.get = get
	default:
		return bm, fmt.Errorf("%w: unknown metric operator %q", common_models.ErrInvalidConfig, m.Op)
	}
	if bm.alias == "" {
		bm.alias = string(m.Op)
		if m.Field != "" && m.Op != MetricCount {
			bm.alias += "_" + m.Field
		}
	}
	return bm, nil
}

// normalizeOp maps the symbolic spellings onto the named operators; empty means eq.
func normalizeOp(op FilterOp) FilterOp {
	switch op {
	case "", "=", "==":
		return OpEq
	case "!=", "<>":
		return OpNe
	case ">":
		return OpGt
	case ">=":
		return OpGte
	case "<":
		return OpLt
	case "<=":
		return OpLte
	}
	return op
}

func validFilterOp(op FilterOp) bool {
	switch op {
	case OpEq, OpNe, OpContains, OpIn, OpGt, OpGte, OpLt, OpLte:
		return true
	}
	return false
}

func matchesAll[T any](rec T, filters []boundFilter[T]) bool {
	for _, f := range filters {
		if !matchFilter(f.get(rec), f.op, f.value) {
			return false
		}
	}
	return true
}

func matchFilter(actual interface{}, op FilterOp, target interface{}) bool {
	switch op {
	case OpContains:
		return strings.Contains(strings.ToLower(fmt.Sprint(orEmpty(actual))), strings.ToLower(fmt.Sprint(target)))
	case OpIn:
		for _, candidate := range listOf(target) {
			if cmp, ok := compareValues(actual, candidate); ok && cmp == 0 {
				return true
			}
		}
		return false
	}

	cmp, ok := compareValues(actual, target)
	if !ok {
		return op == OpNe
	}
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

// compareValues compares a record value with a user-supplied one, coercing the
// user value to the record value's type. ok is false when coercion fails.
func compareValues(actual, target interface{}) (int, bool) {
	switch a := actual.(type) {
	case nil:
		if target == nil {
			return 0, true
		}
		return 0, false
	case time.Time:
		t, ok := toTime(target)
		if !ok {
			return 0, false
		}
		return a.Compare(t), true
	case float64, int:
		af, _ := toFloat(a)
		tf, ok := toFloat(target)
		if !ok {
			return 0, false
		}
		switch {
		case af < tf:
			return -1, true
		case af > tf:
			return 1, true
		}
		return 0, true
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(target)), true
	}
}

func listOf(v interface{}) []interface{} {
	switch val := v.(type) {
	case []interface{}:
		return val
	case []string:
		out := make([]interface{}, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case string:
		var out []interface{}
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return []interface{}{v}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func orEmpty(v interface{}) interface{} {
	if v == nil {
		return ""
	}
	return v
}

func project[T any](c catalog[T], records []T) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, 0, len(c.projection))
		for _, field := range c.projection {
			row = append(row, Cell{Key: field, Value: c.fields[field](rec)})
		}
		rows = append(rows, row)
	}
	return rows
}

type group[T any] struct {
	labels  []interface{}
	records []T
}

// aggregate emits one row per group in first-seen order of the grouping key.
func aggregate[T any](records []T, names []string, getters []func(T) interface{}, metrics []boundMetric[T]) []Row {
	var order []string
	groups := make(map[string]*group[T])

	for _, rec := range records {
		labels := make([]interface{}, len(getters))
		parts := make([]string, len(getters))
		for i, get := range getters {
			labels[i] = groupLabel(get(rec))
			parts[i] = fmt.Sprint(labels[i])
		}
		key := strings.Join(parts, "|")
		g, ok := groups[key]
		if !ok {
			g = &group[T]{labels: labels}
			groups[key] = g
			order = append(order, key)
		}
		g.records = append(g.records, rec)
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		g := groups[key]
		row := make(Row, 0, len(names)+len(metrics))
		for i, name := range names {
			row = append(row, Cell{Key: name, Value: g.labels[i]})
		}
		for _, m := range metrics {
			row = append(row, Cell{Key: m.alias, Value: computeMetric(g.records, m)})
		}
		rows = append(rows, row)
	}
	return rows
}

func groupLabel(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return UnassignedGroup
	case string:
		if val == "" {
			return UnassignedGroup
		}
	case time.Time:
		if val.IsZero() {
			return UnassignedGroup
		}
	}
	return v
}

func computeMetric[T any](records []T, m boundMetric[T]) interface{} {
	if m.op == MetricCount {
		return len(records)
	}

	var sum float64
	var minV, maxV float64
	n := 0
	for _, rec := range records {
		f, ok := toFloat(m.get(rec))
		if !ok {
			continue
		}
		if n == 0 || f < minV {
			minV = f
		}
		if n == 0 || f > maxV {
			maxV = f
		}
		sum += f
		n++
	}

	switch m.op {
	case MetricSum:
		return sum
	case MetricAvg:
		if n == 0 {
			return 0.0
		}
		return sum / float64(n)
	case MetricMin:
		if n == 0 {
			return nil
		}
		return minV
	case MetricMax:
		if n == 0 {
			return nil
		}
		return maxV
	}
	return nil
}
