package report

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplateApp(svc ReportService) *fiber.App {
	app := fiber.New()
	ctrl := NewReportController(svc)
	app.Post("/api/reports/templates", ctrl.SaveTemplate)
	return app
}

func postTemplate(t *testing.T, app *fiber.App, body string) (int, ReportTemplate) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/reports/templates", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var tpl ReportTemplate
	if resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tpl))
	}
	return resp.StatusCode, tpl
}

func TestSaveTemplateAcceptsBothFieldSpellings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"long names", `{
			"name": "Headcount by Department",
			"jsonSchema": {"type": "object", "properties": {"from": {"type": "string"}}},
			"queryDefinition": {"source": "employee", "filters": [{"field": "status", "op": "=", "value": "ACTIVE"}],
				"groupBy": ["department"], "metrics": [{"field": "id", "op": "count", "alias": "headcount"}]},
			"outputLayout": {"type": "table", "columns": ["department", "headcount"]}
		}`},
		{"short names", `{
			"name": "Headcount by Department",
			"inputSchema": {"type": "object", "properties": {"from": {"type": "string"}}},
			"query": {"source": "employee", "filters": [{"field": "status", "op": "eq", "value": "ACTIVE"}],
				"groupBy": ["department"], "metrics": [{"field": "id", "op": "count", "alias": "headcount"}]},
			"layout": {"columns": [{"key": "department"}, {"key": "headcount"}]}
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(roster())
			status, saved := postTemplate(t, newTemplateApp(svc), tt.body)
			require.Equal(t, fiber.StatusOK, status)

			stored := repo.templates[saved.ID.Hex()]
			require.NotNil(t, stored)
			assert.Equal(t, SourceEmployee, stored.Query.Source)
			assert.Equal(t, []LayoutColumn{{Key: "department"}, {Key: "headcount"}}, stored.Layout.Columns)
			assert.Equal(t, []string{"from"}, InputKeys(stored.InputSchema))
		})
	}
}

func TestSaveTemplateWithoutQueryIsRejected(t *testing.T) {
	svc, repo, _ := newTestService(roster())

	status, _ := postTemplate(t, newTemplateApp(svc), `{"name": "Empty", "querydef": {"source": "employee"}}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, 0, repo.upserts)
}
