package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adevbeo/hr-management-platform/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(skipAuth bool) *fiber.App {
	app := fiber.New()
	app.Get("/reports", AuthMiddleware(skipAuth), RequirePermission(skipAuth, "reports:view"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestPermissionGate(t *testing.T) {
	utils.SetSecret("middleware-secret")
	allowed, err := utils.GenerateToken("u-1", nil, []string{"reports:view"}, time.Hour)
	require.NoError(t, err)
	denied, err := utils.GenerateToken("u-2", nil, []string{"contracts:view"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"bad scheme", "Token " + allowed, fiber.StatusUnauthorized},
		{"garbage token", "Bearer nope", fiber.StatusUnauthorized},
		{"missing permission", "Bearer " + denied, fiber.StatusForbidden},
		{"granted", "Bearer " + allowed, fiber.StatusOK},
	}

	app := newTestApp(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/reports", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSkipAuthBypassesGate(t *testing.T) {
	resp, err := newTestApp(true).Test(httptest.NewRequest("GET", "/reports", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestQueryTokenOnlyForUpgrade(t *testing.T) {
	utils.SetSecret("middleware-secret")
	token, err := utils.GenerateToken("u-1", nil, []string{"reports:view"}, time.Hour)
	require.NoError(t, err)
	app := newTestApp(false)

	plain := httptest.NewRequest("GET", "/reports?token="+token, nil)
	resp, err := app.Test(plain)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	upgrade := httptest.NewRequest("GET", "/reports?token="+token, nil)
	upgrade.Header.Set("Upgrade", "websocket")
	resp, err = app.Test(upgrade)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
