package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
)

// AdminOverview is the admin dashboard payload.
type AdminOverview struct {
	TotalUsers        int64          `json:"total_users"`
	TotalLeads        int64          `json:"total_leads"`
	TotalVisits       int64          `json:"total_visits"`
	PendingQuotations int64          `json:"pending_quotations"`
	PendingInvoices   int64          `json:"pending_invoices"`
	LeadTypeStats     []LeadTypeStat `json:"lead_type_stats"`
	DailyStats        []DailyStat    `json:"daily_stats"`
	UserActivity      []UserActivity `json:"user_activity"`
	FollowUpLoad      FollowUpLoad   `json:"follow_up_load"`
}

type LeadTypeStat struct {
	LeadType string `json:"lead_type"`
	Count    int64  `json:"count"`
}

type DailyStat struct {
	Date     string `json:"date"`
	NewLeads int64  `json:"new_leads"`
	Visits   int64  `json:"visits"`
}

type UserActivity struct {
	UserID         uint   `json:"user_id"`
	Name           string `json:"name"`
	LeadsToday     int64  `json:"leads_today"`
	VisitsToday    int64  `json:"visits_today"`
	LeadsThisWeek  int64  `json:"leads_this_week"`
	VisitsThisWeek int64  `json:"visits_this_week"`
}

type FollowUpLoad struct {
	Today   int64 `json:"today"`
	Overdue int64 `json:"overdue"`
}

// GetAdminOverview aggregates the whole org: totals, per-type lead
// split, last-7-days series, per-user today/this-week table and the
// org-wide follow-up load.
func GetAdminOverview(c *fiber.Ctx) error {
	db := database.GetDB()

	var overview AdminOverview

	db.Model(&model.User{}).Where("is_active = ?", true).Count(&overview.TotalUsers)
	db.Model(&model.Lead{}).Count(&overview.TotalLeads)
	db.Model(&model.Visit{}).Count(&overview.TotalVisits)
	db.Model(&model.Quotation{}).Where("status = ?", model.ApprovalSubmitted).Count(&overview.PendingQuotations)
	db.Model(&model.Invoice{}).Where("status = ?", model.ApprovalSubmitted).Count(&overview.PendingInvoices)

	// Lead counts per type
	var typeStats []LeadTypeStat
	db.Model(&model.Lead{}).
		Select("lead_type, COUNT(*) as count").
		Group("lead_type").
		Order("count DESC").
		Scan(&typeStats)
	overview.LeadTypeStats = typeStats

	// Last 7 days, oldest first
	for i := 6; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i)
		start, end := model.DayWindow(day)

		var stat DailyStat
		stat.Date = start.Format("2006-01-02")

		db.Model(&model.Lead{}).
			Where("created_at >= ? AND created_at <= ?", start, end).
			Count(&stat.NewLeads)

		db.Model(&model.Visit{}).
			Where("visited_at >= ? AND visited_at <= ?", start, end).
			Count(&stat.Visits)

		overview.DailyStats = append(overview.DailyStats, stat)
	}

	// Per-user today/this-week table
	todayStart, todayEnd := model.DayWindow(time.Now())
	weekStart := todayStart.AddDate(0, 0, -6)

	var users []model.User
	db.Where("is_active = ?", true).Order("name ASC").Find(&users)

	for _, user := range users {
		activity := UserActivity{UserID: user.ID, Name: user.Name}

		db.Model(&model.Lead{}).
			Where("owner_id = ? AND created_at >= ? AND created_at <= ?", user.ID, todayStart, todayEnd).
			Count(&activity.LeadsToday)
		db.Model(&model.Visit{}).
			Where("user_id = ? AND visited_at >= ? AND visited_at <= ?", user.ID, todayStart, todayEnd).
			Count(&activity.VisitsToday)
		db.Model(&model.Lead{}).
			Where("owner_id = ? AND created_at >= ? AND created_at <= ?", user.ID, weekStart, todayEnd).
			Count(&activity.LeadsThisWeek)
		db.Model(&model.Visit{}).
			Where("user_id = ? AND visited_at >= ? AND visited_at <= ?", user.ID, weekStart, todayEnd).
			Count(&activity.VisitsThisWeek)

		overview.UserActivity = append(overview.UserActivity, activity)
	}

	// Org-wide follow-up load
	db.Model(&model.Lead{}).
		Where("follow_up_date >= ? AND follow_up_date <= ?", todayStart, todayEnd).
		Count(&overview.FollowUpLoad.Today)
	db.Model(&model.Lead{}).
		Where("follow_up_date < ?", todayStart).
		Count(&overview.FollowUpLoad.Overdue)

	return c.JSON(fiber.Map{
		"success":  true,
		"overview": overview,
	})
}

// ListUsers lets an admin see the team roster.
func ListUsers(c *fiber.Ctx) error {
	var users []model.User
	if err := database.GetDB().Order("name ASC").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch users",
		})
	}

	items := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		items = append(items, users[i].GetPublicProfile())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   items,
	})
}
