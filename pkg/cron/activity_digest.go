package cron

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/email"
)

var (
	lastRunTime time.Time
	mutex       sync.Mutex
)

// InitActivityDigestCron emails every active user their day's numbers at
// 19:00. The lastRunTime guard keeps a restarted process from sending
// the digest twice on the same day.
func InitActivityDigestCron() {
	c := cron.New()

	_, err := c.AddFunc("0 19 * * *", func() {
		mutex.Lock()
		defer mutex.Unlock()

		if time.Since(lastRunTime) < 23*time.Hour {
			log.Printf("Activity digest already sent today, skipping...")
			return
		}

		sendDailyActivityDigest()
		lastRunTime = time.Now()
	})

	if err != nil {
		log.Printf("Could not initialize activity digest cron: %v", err)
		return
	}

	// 08:00 daily: remind owners of follow-ups due today.
	if _, err := c.AddFunc("0 8 * * *", sendFollowUpReminders); err != nil {
		log.Printf("Could not initialize follow-up reminder cron: %v", err)
		return
	}

	c.Start()
	log.Println("Activity digest cron initialized")
}

func sendFollowUpReminders() {
	if email.GlobalEmailService == nil {
		return
	}

	db := database.GetDB()
	now := time.Now()

	var users []model.User
	if err := db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		log.Printf("Could not fetch users for follow-up reminders: %v", err)
		return
	}

	for _, user := range users {
		var leads []model.Lead
		if err := db.Where("owner_id = ? AND follow_up_date IS NOT NULL", user.ID).
			Find(&leads).Error; err != nil {
			log.Printf("Could not fetch follow-ups for %s: %v", user.Email, err)
			continue
		}

		for _, lead := range leads {
			if !model.InBucket(*lead.FollowUpDate, model.BucketToday, now) {
				continue
			}

			err := email.GlobalEmailService.SendFollowUpReminder(user.Email, email.FollowUpReminderData{
				Name:         user.Name,
				LeadName:     lead.Name,
				LeadCompany:  lead.Company,
				FollowUpDate: *lead.FollowUpDate,
				Notes:        lead.FollowUpNotes,
			})
			if err != nil {
				log.Printf("Could not send follow-up reminder to %s: %v", user.Email, err)
			}
		}
	}
}

func sendDailyActivityDigest() {
	if email.GlobalEmailService == nil {
		log.Println("Email service not initialized, skipping activity digest")
		return
	}

	db := database.GetDB()
	now := time.Now()
	start, end := model.DayWindow(now)

	var users []model.User
	if err := db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		log.Printf("Could not fetch users for activity digest: %v", err)
		return
	}

	var org email.DailyDigestData

	for _, user := range users {
		data := email.DailyDigestData{
			Name: user.Name,
			Date: start.Format("2006-01-02"),
		}

		db.Model(&model.Visit{}).
			Where("user_id = ? AND visited_at >= ? AND visited_at <= ?", user.ID, start, end).
			Count(&data.VisitsMade)

		db.Model(&model.Lead{}).
			Where("owner_id = ? AND created_at >= ? AND created_at <= ?", user.ID, start, end).
			Count(&data.LeadsCreated)

		db.Model(&model.Lead{}).
			Where("owner_id = ? AND follow_up_date >= ? AND follow_up_date <= ?", user.ID, start, end).
			Count(&data.FollowUpsToday)

		db.Model(&model.Lead{}).
			Where("owner_id = ? AND follow_up_date < ?", user.ID, start).
			Count(&data.FollowUpsOverdue)

		db.Model(&model.Quotation{}).
			Where("owner_id = ? AND created_at >= ? AND created_at <= ?", user.ID, start, end).
			Count(&data.QuotationsMade)

		org.VisitsMade += data.VisitsMade
		org.LeadsCreated += data.LeadsCreated
		org.FollowUpsToday += data.FollowUpsToday
		org.FollowUpsOverdue += data.FollowUpsOverdue
		org.QuotationsMade += data.QuotationsMade

		// Nothing to report, nothing to send.
		if data.VisitsMade == 0 && data.LeadsCreated == 0 && data.FollowUpsToday == 0 &&
			data.FollowUpsOverdue == 0 && data.QuotationsMade == 0 {
			continue
		}

		if err := email.GlobalEmailService.SendDailyDigest(user.Email, data); err != nil {
			log.Printf("Could not send activity digest to %s: %v", user.Email, err)
		}
	}

	// Admins additionally get the org-wide rollup.
	org.Date = start.Format("2006-01-02")
	for _, user := range users {
		if user.Role != model.RoleAdmin {
			continue
		}
		org.Name = user.Name
		if err := email.GlobalEmailService.SendDailyDigest(user.Email, org); err != nil {
			log.Printf("Could not send org digest to %s: %v", user.Email, err)
		}
	}
}
