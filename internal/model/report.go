package model

import (
	"time"

	"gorm.io/gorm"
)

// DailyReport carries a user's free-text remarks for one calendar day.
// The activity counts shown next to it (visits, leads, follow-ups,
// quotations) are computed at read time with the same day windows as the
// follow-up buckets, never persisted.
type DailyReport struct {
	gorm.Model
	UserID     uint      `json:"user_id" gorm:"uniqueIndex:idx_user_report_date;not null"`
	ReportDate time.Time `json:"report_date" gorm:"uniqueIndex:idx_user_report_date;type:date;not null"`
	Remarks    string    `json:"remarks" gorm:"type:text"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// ActivitySummary is the computed portion of a daily report.
type ActivitySummary struct {
	Date           string `json:"date"`
	VisitsMade     int64  `json:"visits_made"`
	LeadsCreated   int64  `json:"leads_created"`
	FollowUpsDue   int64  `json:"follow_ups_due"`
	QuotationsMade int64  `json:"quotations_made"`
	InvoicesRaised int64  `json:"invoices_raised"`
}
