package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDailyReportsRejectsMalformedDates(t *testing.T) {
	app := newAuthedApp(1)
	app.Get("/reports/my/list", ListDailyReports)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reports/my/list?from=bad-date", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/reports/my/list?to=2026-99-99", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListDailyReportsRangeBounds(t *testing.T) {
	app := newAuthedApp(1)
	app.Get("/reports/my/list", ListDailyReports)

	// from after to
	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/reports/my/list?from=2026-08-10&to=2026-08-01", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// 32 days inclusive is over the 31-day cap
	resp, err = app.Test(httptest.NewRequest(http.MethodGet,
		"/reports/my/list?from=2026-07-01&to=2026-08-01", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
