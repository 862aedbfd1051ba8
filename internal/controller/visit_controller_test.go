package controller

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
)

func TestGeoPointFrom(t *testing.T) {
	lng, lat := 72.8777, 19.076

	point := geoPointFrom(&lng, &lat)
	require.NotNil(t, point)
	assert.Equal(t, "Point", point.Data().Type)
	assert.Equal(t, [2]float64{72.8777, 19.076}, point.Data().Coordinates)

	// missing either coordinate omits the field entirely
	assert.Nil(t, geoPointFrom(nil, &lat))
	assert.Nil(t, geoPointFrom(&lng, nil))
	assert.Nil(t, geoPointFrom(nil, nil))

	// non-finite values are rejected, never stored
	nan := math.NaN()
	inf := math.Inf(1)
	assert.Nil(t, geoPointFrom(&nan, &lat))
	assert.Nil(t, geoPointFrom(&lng, &inf))
}

func TestPromoteInputIndex(t *testing.T) {
	zero, one := 0, 1

	input := PromoteInput{Idx: &zero}
	idx, ok := input.index()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	input = PromoteInput{MetIndex: &one}
	idx, ok = input.index()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	// idx wins when both are given
	input = PromoteInput{Idx: &one, MetIndex: &zero}
	idx, ok = input.index()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	input = PromoteInput{}
	_, ok = input.index()
	assert.False(t, ok)
}

func TestMetPeopleFrom(t *testing.T) {
	people, err := metPeopleFrom([]MetPersonInput{
		{
			Name:              "Site engineer",
			LeadType:          model.LeadTypeContractor,
			Phone:             "98765 43210",
			ConversationNotes: "Needs 40 tons of TMT",
			FollowUpDate:      "2026-09-01",
		},
		{Name: "Owner"},
	})
	require.NoError(t, err)
	require.Len(t, people, 2)

	assert.Equal(t, "Site engineer", people[0].Name)
	assert.Equal(t, model.LeadTypeContractor, people[0].LeadType)
	require.NotNil(t, people[0].FollowUpDate)
	assert.Nil(t, people[0].LeadID)

	assert.Nil(t, people[1].FollowUpDate)

	_, err = metPeopleFrom([]MetPersonInput{{Name: "X", FollowUpDate: "bad-date"}})
	assert.Error(t, err)
}

func TestListMyVisitsRejectsMalformedDates(t *testing.T) {
	app := newAuthedApp(1)
	app.Get("/visits/my", ListMyVisits)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/visits/my?from=not-a-date", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/visits/my?to=2026-13-45", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPromoteMetPersonIdempotent(t *testing.T) {
	db := setupTestDB(t)
	app := newAuthedApp(1)
	app.Post("/visits/:visitId/create-lead", PromoteMetPerson)

	visit := model.Visit{
		UserID:    1,
		PlaceName: "Metro casting yard",
		City:      "Pune",
		Address:   "Plot 14, MIDC",
		VisitedAt: time.Now(),
		MetPeople: datatypes.NewJSONType([]model.MetPerson{{Name: "P", Phone: "5551234567"}}),
	}
	require.NoError(t, db.Create(&visit).Error)

	target := fmt.Sprintf("/visits/%d/create-lead", visit.ID)

	resp, err := app.Test(jsonRequest(http.MethodPost, target, `{"idx":0}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var first struct {
		Lead struct {
			ID     uint   `json:"ID"`
			Source string `json:"source"`
			City   string `json:"city"`
		} `json:"lead"`
		Message string `json:"message"`
	}
	decodeBody(t, resp, &first)
	assert.Equal(t, model.LeadSourceVisit, first.Lead.Source)
	assert.Equal(t, "Pune", first.Lead.City)
	assert.Equal(t, "Lead created from visit", first.Message)

	// promoting the same index again returns the same lead, no new write
	resp, err = app.Test(jsonRequest(http.MethodPost, target, `{"idx":0}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var second struct {
		Lead struct {
			ID uint `json:"ID"`
		} `json:"lead"`
		Message string `json:"message"`
	}
	decodeBody(t, resp, &second)
	assert.Equal(t, first.Lead.ID, second.Lead.ID)
	assert.Equal(t, "Already linked", second.Message)

	var total int64
	db.Model(&model.Lead{}).Count(&total)
	assert.Equal(t, int64(1), total)
}

func TestLineItemsFrom(t *testing.T) {
	items := lineItemsFrom([]LineItemInput{
		{Description: "Cement bags", Quantity: 100, UnitPrice: 420},
	})
	require.Len(t, items, 1)
	assert.Equal(t, 42000.0, model.TotalOf(items))
}
