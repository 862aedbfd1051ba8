package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/jwt"
)

// setupTestDB swaps the global DB for a per-test in-memory sqlite
// instance. TranslateError stays on so unique-index hits behave like
// they do against Postgres.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Lead{}, &model.Visit{}))

	database.DB = db
	t.Cleanup(func() { database.DB = nil })

	return db
}

func newAuthedApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Claims{UserID: userID, Email: "user@example.com", Role: "sales"})
		return c.Next()
	})
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func TestImportLeadsClassifiesRows(t *testing.T) {
	setupTestDB(t)
	app := newAuthedApp(1)
	app.Post("/leads/my/import", ImportLeads)

	payload := `{"items":[{"name":"X","phone":"111-222-3333"},{},{"name":"X","phone":"1112223333"}]}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/leads/my/import", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Added            int `json:"added"`
		SkippedDuplicate int `json:"skippedDuplicate"`
		SkippedInvalid   int `json:"skippedInvalid"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, 1, out.Added)
	assert.Equal(t, 1, out.SkippedDuplicate)
	assert.Equal(t, 1, out.SkippedInvalid)
}

func TestImportLeadsContactlessRowsNeverCollide(t *testing.T) {
	setupTestDB(t)
	app := newAuthedApp(1)
	app.Post("/leads/my/import", ImportLeads)

	payload := `{"items":[{"name":"A"},{"name":"B"}]}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/leads/my/import", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Added            int `json:"added"`
		SkippedDuplicate int `json:"skippedDuplicate"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, 2, out.Added)
	assert.Equal(t, 0, out.SkippedDuplicate)
}

func TestImportLeadsDuplicateCheckScopedToOwner(t *testing.T) {
	setupTestDB(t)

	payload := `{"items":[{"name":"X","phone":"9876543210"}]}`
	for _, userID := range []uint{1, 2} {
		app := newAuthedApp(userID)
		app.Post("/leads/my/import", ImportLeads)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/leads/my/import", payload))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out struct {
			Added int `json:"added"`
		}
		decodeBody(t, resp, &out)
		assert.Equal(t, 1, out.Added, "owner %d", userID)
	}
}

func TestUpdateLeadKeepingOwnContactIsNotADuplicate(t *testing.T) {
	db := setupTestDB(t)
	app := newAuthedApp(1)
	app.Put("/leads/my/:id", UpdateLead)

	lead := model.Lead{OwnerID: 1, Name: "X", Phone: "111-222-3333",
		NormalizedPhone: model.NullableContact("1112223333")}
	require.NoError(t, db.Create(&lead).Error)
	other := model.Lead{OwnerID: 1, Name: "Y", Phone: "999-888-7777",
		NormalizedPhone: model.NullableContact("9998887777")}
	require.NoError(t, db.Create(&other).Error)

	// editing a lead while keeping its own phone must not conflict
	resp, err := app.Test(jsonRequest(http.MethodPut,
		fmt.Sprintf("/leads/my/%d", lead.ID), `{"name":"X","phone":"111 222 3333"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// moving onto another lead's phone still conflicts
	resp, err = app.Test(jsonRequest(http.MethodPut,
		fmt.Sprintf("/leads/my/%d", other.ID), `{"name":"Y","phone":"1112223333"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
