package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/jwt"
)

type DailyReportInput struct {
	Date    string `json:"date"`
	Remarks string `json:"remarks" validate:"required"`
}

// activitySummaryFor computes one user's activity counts for the day
// containing at. Counts are derived at read time with the same day
// windows as the follow-up buckets; nothing is persisted.
func activitySummaryFor(userID uint, at time.Time) model.ActivitySummary {
	db := database.GetDB()
	start, end := model.DayWindow(at)

	summary := model.ActivitySummary{Date: start.Format("2006-01-02")}

	db.Model(&model.Visit{}).
		Where("user_id = ? AND visited_at >= ? AND visited_at <= ?", userID, start, end).
		Count(&summary.VisitsMade)

	db.Model(&model.Lead{}).
		Where("owner_id = ? AND created_at >= ? AND created_at <= ?", userID, start, end).
		Count(&summary.LeadsCreated)

	db.Model(&model.Lead{}).
		Where("owner_id = ? AND follow_up_date >= ? AND follow_up_date <= ?", userID, start, end).
		Count(&summary.FollowUpsDue)

	db.Model(&model.Quotation{}).
		Where("owner_id = ? AND created_at >= ? AND created_at <= ?", userID, start, end).
		Count(&summary.QuotationsMade)

	db.Model(&model.Invoice{}).
		Where("owner_id = ? AND created_at >= ? AND created_at <= ?", userID, start, end).
		Count(&summary.InvoicesRaised)

	return summary
}

// GetDailyReport returns the computed activity for one day plus any
// remarks the user submitted for it.
func GetDailyReport(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := parseTimeParam(dateStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		day = *parsed
	}

	summary := activitySummaryFor(claims.UserID, day)

	start, _ := model.DayWindow(day)
	var report model.DailyReport
	remarks := ""
	if err := database.GetDB().
		Where("user_id = ? AND report_date = ?", claims.UserID, start.Format("2006-01-02")).
		First(&report).Error; err == nil {
		remarks = report.Remarks
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"activity": summary,
		"remarks":  remarks,
	})
}

// SubmitDailyReport upserts the remarks for (user, date): a second
// submit on the same day updates the first.
func SubmitDailyReport(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(DailyReportInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid input",
		})
	}
	if err := validateInput(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	day := time.Now()
	if input.Date != "" {
		parsed, err := parseTimeParam(input.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		day = *parsed
	}
	start, _ := model.DayWindow(day)

	var report model.DailyReport
	err := database.GetDB().
		Where("user_id = ? AND report_date = ?", claims.UserID, start.Format("2006-01-02")).
		First(&report).Error

	if err == nil {
		if err := database.GetDB().Model(&report).Update("remarks", input.Remarks).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not update report",
			})
		}
		report.Remarks = input.Remarks
	} else {
		report = model.DailyReport{
			UserID:     claims.UserID,
			ReportDate: start,
			Remarks:    input.Remarks,
		}
		if err := database.GetDB().Create(&report).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not save report",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"report":  report,
	})
}

// ListDailyReports returns day-by-day summaries over a range, capped at
// 31 days, most recent first.
func ListDailyReports(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	to := time.Now()
	if parsed, err := parseTimeParam(c.Query("to")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	} else if parsed != nil {
		to = *parsed
	}
	from := to.AddDate(0, 0, -6)
	if parsed, err := parseTimeParam(c.Query("from")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	} else if parsed != nil {
		from = *parsed
	}

	fromStart, _ := model.DayWindow(from)
	toStart, _ := model.DayWindow(to)
	if toStart.Before(fromStart) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "from must not be after to",
		})
	}
	if toStart.Sub(fromStart) > 30*24*time.Hour {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Date range too large (max 31 days)",
		})
	}

	var items []fiber.Map
	for day := toStart; !day.Before(fromStart); day = day.AddDate(0, 0, -1) {
		summary := activitySummaryFor(claims.UserID, day)

		var report model.DailyReport
		remarks := ""
		if err := database.GetDB().
			Where("user_id = ? AND report_date = ?", claims.UserID, day.Format("2006-01-02")).
			First(&report).Error; err == nil {
			remarks = report.Remarks
		}

		items = append(items, fiber.Map{
			"activity": summary,
			"remarks":  remarks,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   items,
	})
}
