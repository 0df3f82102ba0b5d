package report

import (
	"context"
	"slices"

	"github.com/adevbeo/hr-management-platform/internal/features/workforce"
)

// catalog describes one source: how to load its records, which fields are
// addressable, and what an ungrouped row looks like. params overrides fields
// for run parameters only.
type catalog[T any] struct {
	fields     map[string]func(T) interface{}
	params     map[string]func(T) interface{}
	numeric    map[string]bool
	projection []string
	load       func(ctx context.Context, reader workforce.Reader) ([]T, error)
}

func optionalTime(rec workforce.EmployeeRecord) interface{} {
	if rec.EndDate == nil {
		return nil
	}
	return *rec.EndDate
}

var employeeCatalog = catalog[workforce.EmployeeRecord]{
	fields: map[string]func(workforce.EmployeeRecord) interface{}{
		"id":             func(r workforce.EmployeeRecord) interface{} { return r.ID },
		"employeeCode":   func(r workforce.EmployeeRecord) interface{} { return r.EmployeeCode },
		"name":           func(r workforce.EmployeeRecord) interface{} { return r.Name() },
		"firstName":      func(r workforce.EmployeeRecord) interface{} { return r.FirstName },
		"lastName":       func(r workforce.EmployeeRecord) interface{} { return r.LastName },
		"email":          func(r workforce.EmployeeRecord) interface{} { return r.Email },
		"department":     func(r workforce.EmployeeRecord) interface{} { return r.DepartmentName },
		"departmentCode": func(r workforce.EmployeeRecord) interface{} { return r.DepartmentCode },
		"position":       func(r workforce.EmployeeRecord) interface{} { return r.PositionTitle },
		"status":         func(r workforce.EmployeeRecord) interface{} { return string(r.Status) },
		"startDate":      func(r workforce.EmployeeRecord) interface{} { return r.StartDate },
		"endDate":        optionalTime,
	},
	numeric:    map[string]bool{},
	projection: []string{"name", "department", "position", "status", "startDate"},
	load: func(ctx context.Context, reader workforce.Reader) ([]workforce.EmployeeRecord, error) {
		return reader.ListEmployees(ctx)
	},
}

var costCatalog = catalog[workforce.CostRecord]{
	fields: map[string]func(workforce.CostRecord) interface{}{
		"id":             func(r workforce.CostRecord) interface{} { return r.ID },
		"contractId":     func(r workforce.CostRecord) interface{} { return r.ContractID },
		"employee":       func(r workforce.CostRecord) interface{} { return r.EmployeeName },
		"employeeId":     func(r workforce.CostRecord) interface{} { return r.EmployeeID },
		"department":     func(r workforce.CostRecord) interface{} { return r.DepartmentName },
		"departmentCode": func(r workforce.CostRecord) interface{} { return r.DepartmentCode },
		"costType":       func(r workforce.CostRecord) interface{} { return string(r.CostType) },
		"amount":         func(r workforce.CostRecord) interface{} { return r.Amount },
		"currency":       func(r workforce.CostRecord) interface{} { return r.Currency },
		"effectiveDate":  func(r workforce.CostRecord) interface{} { return r.EffectiveDate },
	},
	params: map[string]func(workforce.CostRecord) interface{}{
		"department":     func(r workforce.CostRecord) interface{} { return r.DepartmentCode },
		"departmentName": func(r workforce.CostRecord) interface{} { return r.DepartmentName },
	},
	numeric:    map[string]bool{"amount": true},
	projection: []string{"employee", "department", "costType", "amount", "currency", "effectiveDate"},
	load: func(ctx context.Context, reader workforce.Reader) ([]workforce.CostRecord, error) {
		return reader.ListCosts(ctx)
	},
}

// Fields lists the addressable fields of a source, nil for unknown sources.
func Fields(source Source) []string {
	switch source {
	case SourceEmployee:
		return employeeCatalog.fieldNames()
	case SourceContractCost:
		return costCatalog.fieldNames()
	}
	return nil
}

func (c catalog[T]) paramField(name string) (func(T) interface{}, bool) {
	if get, ok := c.params[name]; ok {
		return get, true
	}
	get, ok := c.fields[name]
	return get, ok
}

func (c catalog[T]) fieldNames() []string {
	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
