package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/jwt"
)

type LeadInput struct {
	Name          string         `json:"name" validate:"required"`
	Company       string         `json:"company"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email" validate:"omitempty,email"`
	LeadType      model.LeadType `json:"lead_type"`
	City          string         `json:"city"`
	Address       string         `json:"address"`
	Description   string         `json:"description"`
	Status        string         `json:"status"`
	Source        string         `json:"source"`
	FollowUpDate  string         `json:"follow_up_date"`
	FollowUpNotes string         `json:"follow_up_notes"`
}

type FollowUpInput struct {
	FollowUpDate  string `json:"follow_up_date"`
	FollowUpNotes string `json:"follow_up_notes"`
	Status        string `json:"status"`
}

type ImportInput struct {
	Items []LeadInput `json:"items" validate:"required"`
}

// ListMyLeads returns the caller's leads with status/type/search filters
// and pagination.
func ListMyLeads(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	page, limit := parsePagination(c)

	query := database.GetDB().Model(&model.Lead{}).Where("owner_id = ?", claims.UserID)

	if status := c.Query("status"); status != "" {
		if !model.IsValidLeadStatus(model.LeadStatus(status)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid status value",
			})
		}
		query = query.Where("status = ?", status)
	}

	if leadType := c.Query("lead_type"); leadType != "" {
		if !model.IsValidLeadType(model.LeadType(leadType)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid lead type",
			})
		}
		query = query.Where("lead_type = ?", leadType)
	}

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"name ILIKE ? OR company ILIKE ? OR phone ILIKE ? OR email ILIKE ? OR city ILIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch leads",
		})
	}

	var leads []model.Lead
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&leads).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch leads",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   leads,
		"page":    page,
		"pages":   pageCount(total, limit),
		"total":   total,
		"limit":   limit,
	})
}

// CreateLead normalizes contact fields, runs the duplicate pre-check and
// inserts. A concurrent create slipping past the pre-check still hits
// the unique indexes and comes back as 409.
func CreateLead(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(LeadInput)
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

	lead, status, err := buildLead(claims.UserID, input)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"message": err.Error()})
	}

	if err := database.GetDB().Create(lead).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "A lead with this phone or email already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create lead",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"lead":    lead,
	})
}

// buildLead validates enums, normalizes contacts and runs the duplicate
// pre-check. Returns the fiber status to answer with on failure.
func buildLead(ownerID uint, input *LeadInput) (*model.Lead, int, error) {
	leadType := input.LeadType
	if leadType == "" {
		leadType = model.LeadTypeBuyer
	}
	if !model.IsValidLeadType(leadType) {
		return nil, fiber.StatusBadRequest, fmt.Errorf("invalid lead type %q", input.LeadType)
	}

	status := model.LeadStatusNew
	if input.Status != "" {
		status = model.LeadStatus(input.Status)
		if !model.IsValidLeadStatus(status) {
			return nil, fiber.StatusBadRequest, fmt.Errorf("invalid status %q", input.Status)
		}
	}

	source := input.Source
	if source == "" {
		source = model.LeadSourceManual
	}

	normalizedPhone := model.NormalizePhone(input.Phone)
	normalizedEmail := model.NormalizeEmail(input.Email)

	existing, err := model.FindDuplicateLead(database.GetDB(), ownerID, normalizedPhone, normalizedEmail, 0)
	if err != nil {
		return nil, fiber.StatusInternalServerError, fmt.Errorf("could not check duplicates")
	}
	if existing != nil {
		return nil, fiber.StatusConflict, fmt.Errorf("a lead with this phone or email already exists")
	}

	var followUpDate *time.Time
	if input.FollowUpDate != "" {
		followUpDate, err = parseTimeParam(input.FollowUpDate)
		if err != nil {
			return nil, fiber.StatusBadRequest, err
		}
	}

	return &model.Lead{
		OwnerID:         ownerID,
		LeadType:        leadType,
		Name:            input.Name,
		Company:         input.Company,
		Phone:           input.Phone,
		NormalizedPhone: model.NullableContact(normalizedPhone),
		Email:           model.NullableContact(normalizedEmail),
		City:            input.City,
		Address:         input.Address,
		Description:     input.Description,
		Status:          status,
		Source:          source,
		FollowUpDate:    followUpDate,
		FollowUpNotes:   input.FollowUpNotes,
	}, 0, nil
}

func UpdateLead(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	leadID := c.Params("id")

	var lead model.Lead
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&lead, leadID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Lead not found",
		})
	}

	input := new(LeadInput)
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

	normalizedPhone := model.NormalizePhone(input.Phone)
	normalizedEmail := model.NormalizeEmail(input.Email)

	// Re-check duplicates only when the contact fields actually change,
	// excluding the lead itself so it never matches its own record.
	storedPhone := ""
	if lead.NormalizedPhone != nil {
		storedPhone = *lead.NormalizedPhone
	}
	storedEmail := ""
	if lead.Email != nil {
		storedEmail = *lead.Email
	}
	if normalizedPhone != storedPhone || normalizedEmail != storedEmail {
		existing, err := model.FindDuplicateLead(database.GetDB(), claims.UserID, normalizedPhone, normalizedEmail, lead.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not check duplicates",
			})
		}
		if existing != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "A lead with this phone or email already exists",
			})
		}
	}

	if input.LeadType != "" && !model.IsValidLeadType(input.LeadType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid lead type",
		})
	}
	if input.Status != "" && !model.IsValidLeadStatus(model.LeadStatus(input.Status)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid status value",
		})
	}

	lead.Name = input.Name
	lead.Company = input.Company
	lead.Phone = input.Phone
	lead.NormalizedPhone = model.NullableContact(normalizedPhone)
	lead.Email = model.NullableContact(normalizedEmail)
	lead.City = input.City
	lead.Address = input.Address
	lead.Description = input.Description
	if input.LeadType != "" {
		lead.LeadType = input.LeadType
	}
	if input.Status != "" {
		lead.Status = model.LeadStatus(input.Status)
	}

	if err := database.GetDB().Save(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "A lead with this phone or email already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update lead",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"lead":    lead,
	})
}

func DeleteLead(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	leadID := c.Params("id")

	var lead model.Lead
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&lead, leadID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Lead not found",
		})
	}

	if err := database.GetDB().Unscoped().Delete(&lead).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete lead",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ImportLeads processes rows sequentially so each row's duplicate check
// sees leads created earlier in the same batch. Rows are classified,
// never partially written; only an unexpected storage error aborts the
// remaining batch.
func ImportLeads(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(ImportInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid input",
		})
	}
	if input.Items == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "items array is required",
		})
	}

	var added, skippedDuplicate, skippedInvalid int

	for i := range input.Items {
		row := input.Items[i]
		if row.Name == "" {
			skippedInvalid++
			continue
		}

		normalizedPhone := model.NormalizePhone(row.Phone)
		normalizedEmail := model.NormalizeEmail(row.Email)

		existing, err := model.FindDuplicateLead(database.GetDB(), claims.UserID, normalizedPhone, normalizedEmail, 0)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Import failed on an unexpected storage error",
			})
		}
		if existing != nil {
			skippedDuplicate++
			continue
		}

		leadType := row.LeadType
		if !model.IsValidLeadType(leadType) {
			leadType = model.LeadTypeBuyer
		}

		lead := model.Lead{
			OwnerID:         claims.UserID,
			LeadType:        leadType,
			Name:            row.Name,
			Company:         row.Company,
			Phone:           row.Phone,
			NormalizedPhone: model.NullableContact(normalizedPhone),
			Email:           model.NullableContact(normalizedEmail),
			City:            row.City,
			Address:         row.Address,
			Description:     row.Description,
			Status:          model.LeadStatusNew,
			Source:          model.LeadSourceImport,
		}

		if err := database.GetDB().Create(&lead).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				skippedDuplicate++
				continue
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Import failed on an unexpected storage error",
			})
		}
		added++
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"added":            added,
		"skippedDuplicate": skippedDuplicate,
		"skippedInvalid":   skippedInvalid,
	})
}

// UpdateFollowUp sets the follow-up schedule on a lead. When a date is
// supplied and no explicit status, the lead moves to Follow-Up; after
// that, status and bucket are free to diverge (buckets are a view,
// status is pipeline state).
func UpdateFollowUp(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	leadID := c.Params("id")

	var lead model.Lead
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&lead, leadID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Lead not found",
		})
	}

	input := new(FollowUpInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid input",
		})
	}

	updates := map[string]interface{}{
		"follow_up_notes": input.FollowUpNotes,
	}

	if input.FollowUpDate != "" {
		followUpDate, err := parseTimeParam(input.FollowUpDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		updates["follow_up_date"] = followUpDate

		if input.Status == "" {
			updates["status"] = model.LeadStatusFollowUp
		}
	} else {
		updates["follow_up_date"] = nil
	}

	if input.Status != "" {
		if !model.IsValidLeadStatus(model.LeadStatus(input.Status)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid status value",
			})
		}
		updates["status"] = model.LeadStatus(input.Status)
	}

	if err := database.GetDB().Model(&lead).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update follow-up",
		})
	}

	database.GetDB().First(&lead, lead.ID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Follow-up updated",
		"lead":    lead,
	})
}

// ListFollowUps lists the caller's leads that have a follow-up date,
// bucketed against the current day. Explicit from/to bounds win over the
// bucket's implicit window on whichever side they are given.
func ListFollowUps(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	page, limit := parsePagination(c)

	bucket := model.FollowUpBucket(c.Query("bucket", string(model.BucketAll)))
	if !model.IsValidBucket(bucket) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid bucket value",
		})
	}

	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	bucketFrom, bucketTo := model.BucketWindow(bucket, time.Now())
	if from == nil {
		from = bucketFrom
	}
	if to == nil {
		to = bucketTo
	}

	query := database.GetDB().Model(&model.Lead{}).
		Where("owner_id = ?", claims.UserID).
		Where("follow_up_date IS NOT NULL")

	if from != nil {
		query = query.Where("follow_up_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("follow_up_date <= ?", *to)
	}

	if search := c.Query("q"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"name ILIKE ? OR company ILIKE ? OR phone ILIKE ? OR email ILIKE ? OR city ILIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch follow-ups",
		})
	}

	var leads []model.Lead
	if err := query.Order("follow_up_date ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&leads).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch follow-ups",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   leads,
		"page":    page,
		"pages":   pageCount(total, limit),
		"total":   total,
		"limit":   limit,
	})
}

// FollowUpSummary counts the caller's Follow-Up leads per bucket. Three
// independent point-in-time counts; they are not required to be
// transactionally consistent with each other.
func FollowUpSummary(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	db := database.GetDB()

	startOfDay, endOfDay := model.DayWindow(time.Now())

	base := func() *gorm.DB {
		return db.Model(&model.Lead{}).
			Where("owner_id = ? AND status = ?", claims.UserID, model.LeadStatusFollowUp).
			Where("follow_up_date IS NOT NULL")
	}

	var today, upcoming, overdue int64

	if err := base().Where("follow_up_date >= ? AND follow_up_date <= ?", startOfDay, endOfDay).
		Count(&today).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not compute summary",
		})
	}
	if err := base().Where("follow_up_date > ?", endOfDay).Count(&upcoming).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not compute summary",
		})
	}
	if err := base().Where("follow_up_date < ?", startOfDay).Count(&overdue).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not compute summary",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"today":    today,
		"upcoming": upcoming,
		"overdue":  overdue,
	})
}
