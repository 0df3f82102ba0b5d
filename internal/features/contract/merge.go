package contract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/adevbeo/hr-management-platform/internal/features/render"
	"github.com/adevbeo/hr-management-platform/internal/features/workforce"
)

const dateLayout = "2006-01-02"

// Merge replaces every {{ key }} placeholder (whitespace inside the braces
// is optional). Placeholders without a value are left as they are.
func Merge(content string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := content
	for _, k := range keys {
		pattern := regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(k) + `\s*\}\}`)
		out = pattern.ReplaceAllLiteralString(out, data[k])
	}
	return out
}

// MergeData builds the placeholder values for an employee. Extra values win
// over the computed ones.
func MergeData(employee *workforce.EmployeeRecord, costs []workforce.CostRecord, extra map[string]interface{}) map[string]string {
	total := 0.0
	for _, c := range costs {
		total += c.Amount
	}
	currency := "USD"
	if len(costs) > 0 && costs[0].Currency != "" {
		currency = costs[0].Currency
	}
	endDate := ""
	if employee.EndDate != nil {
		endDate = employee.EndDate.Format(dateLayout)
	}

	data := map[string]string{
		"employee.name":       employee.Name(),
		"employee.department": employee.DepartmentName,
		"employee.position":   employee.PositionTitle,
		"contract.startDate":  employee.StartDate.Format(dateLayout),
		"contract.endDate":    endDate,
		"contract.type":       string(ContractFullTime),
		"cost.total":          strconv.FormatFloat(total, 'f', 2, 64),
		"cost.currency":       currency,
	}
	for k, v := range extra {
		data[strings.TrimSpace(k)] = render.FormatValue(v)
	}
	return data
}
