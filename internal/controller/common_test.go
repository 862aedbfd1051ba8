package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 50, 1},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{100, 50, 2},
		{101, 50, 3},
		{7, 1, 7},
		{99, 100, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pageCount(tt.total, tt.limit), "pageCount(%d, %d)", tt.total, tt.limit)
	}
}

func TestParseTimeParam(t *testing.T) {
	got, err := parseTimeParam("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseTimeParam("2026-08-29")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local), *got)

	got, err = parseTimeParam("2026-08-29T10:00:00Z")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 10, got.UTC().Hour())

	_, err = parseTimeParam("29/08/2026")
	assert.Error(t, err)
}

func TestValidateInput(t *testing.T) {
	type sample struct {
		Name  string `validate:"required"`
		Email string `validate:"omitempty,email"`
	}

	assert.NoError(t, validateInput(&sample{Name: "A"}))
	assert.NoError(t, validateInput(&sample{Name: "A", Email: "a@b.co"}))

	err := validateInput(&sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")

	err = validateInput(&sample{Name: "A", Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email")
}
