package controller

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// validateInput runs the struct's validate tags and turns the first
// failure into a caller-friendly message.
func validateInput(input interface{}) error {
	if err := validate.Struct(input); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			field := errs[0]
			return fmt.Errorf("field '%s' failed validation (%s)", field.Field(), field.Tag())
		}
		return err
	}
	return nil
}

// parsePagination reads page/limit query params:
// page >= 1, 1 <= limit <= 100, limit defaults to 50.
func parsePagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	limit = c.QueryInt("limit", DefaultPageLimit)
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// pageCount is ceil(total/limit), never below 1.
func pageCount(total int64, limit int) int64 {
	pages := (total + int64(limit) - 1) / int64(limit)
	if pages < 1 {
		pages = 1
	}
	return pages
}

// parseTimeParam accepts RFC3339 or a plain date.
func parseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("malformed date %q", value)
	}
	return &t, nil
}
