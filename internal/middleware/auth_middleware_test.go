package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/jwt"
)

func testApp() *fiber.App {
	app := fiber.New()

	app.Get("/protected", AuthMiddleware(), func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		return c.JSON(fiber.Map{"user_id": claims.UserID})
	})

	app.Get("/admin", AuthMiddleware(), AdminOnly(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	return app
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	app := testApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "token-without-bearer-prefix")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	app := testApp()

	token, err := jwt.GenerateToken(7, "sales@example.com", "sales")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminOnlyRejectsSalesRole(t *testing.T) {
	app := testApp()

	token, err := jwt.GenerateToken(7, "sales@example.com", "sales")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAdminOnlyAllowsAdmin(t *testing.T) {
	app := testApp()

	token, err := jwt.GenerateToken(1, "admin@example.com", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
