package controller

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/email"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/jwt"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/storage"
)

type LineItemInput struct {
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

type QuotationInput struct {
	LeadID     *uint           `json:"lead_id"`
	Items      []LineItemInput `json:"items" validate:"required,min=1,dive"`
	Notes      string          `json:"notes"`
	ValidUntil string          `json:"valid_until"`
}

type DecisionInput struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Note     string `json:"note"`
}

func lineItemsFrom(inputs []LineItemInput) []model.LineItem {
	items := make([]model.LineItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, model.LineItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		})
	}
	return items
}

// nextDocumentNumber builds a date-scoped running number like
// QT-20260829-0007. The unique index on number catches the rare
// same-instant race.
func nextDocumentNumber(prefix string, mdl interface{}) string {
	start, end := model.DayWindow(time.Now())

	var countToday int64
	database.GetDB().Model(mdl).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Count(&countToday)

	return fmt.Sprintf("%s-%s-%04d", prefix, time.Now().Format("20060102"), countToday+1)
}

// ownedLead verifies a lead reference points at a lead of the caller.
func ownedLead(ownerID uint, leadID *uint) error {
	if leadID == nil {
		return nil
	}
	var lead model.Lead
	if err := database.GetDB().Where("owner_id = ?", ownerID).First(&lead, *leadID).Error; err != nil {
		return fmt.Errorf("referenced lead not found")
	}
	return nil
}

func ListMyQuotations(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	page, limit := parsePagination(c)

	query := database.GetDB().Model(&model.Quotation{}).Where("owner_id = ?", claims.UserID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch quotations",
		})
	}

	var quotations []model.Quotation
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&quotations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch quotations",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   quotations,
		"page":    page,
		"pages":   pageCount(total, limit),
		"total":   total,
		"limit":   limit,
	})
}

func CreateQuotation(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(QuotationInput)
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

	if err := ownedLead(claims.UserID, input.LeadID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	var validUntil *time.Time
	if input.ValidUntil != "" {
		parsed, err := parseTimeParam(input.ValidUntil)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		validUntil = parsed
	}

	items := lineItemsFrom(input.Items)

	quotation := model.Quotation{
		OwnerID:    claims.UserID,
		LeadID:     input.LeadID,
		Number:     nextDocumentNumber("QT", &model.Quotation{}),
		Items:      items,
		Total:      model.TotalOf(items),
		Notes:      input.Notes,
		Status:     model.ApprovalDraft,
		ValidUntil: validUntil,
	}

	if err := database.GetDB().Create(&quotation).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create quotation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"quotation": quotation,
	})
}

func UpdateQuotation(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var quotation model.Quotation
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&quotation, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Quotation not found",
		})
	}

	if quotation.Status != model.ApprovalDraft && quotation.Status != model.ApprovalRejected {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only draft or rejected quotations can be edited",
		})
	}

	input := new(QuotationInput)
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

	if err := ownedLead(claims.UserID, input.LeadID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	items := lineItemsFrom(input.Items)
	quotation.LeadID = input.LeadID
	quotation.Items = items
	quotation.Total = model.TotalOf(items)
	quotation.Notes = input.Notes
	quotation.Status = model.ApprovalDraft
	quotation.ApprovalNote = ""
	quotation.ApprovedByID = nil
	quotation.DecidedAt = nil

	if input.ValidUntil != "" {
		parsed, err := parseTimeParam(input.ValidUntil)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		quotation.ValidUntil = parsed
	}

	if err := database.GetDB().Save(&quotation).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update quotation",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"quotation": quotation,
	})
}

// SubmitQuotation moves a draft into the approval queue.
func SubmitQuotation(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var quotation model.Quotation
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&quotation, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Quotation not found",
		})
	}

	if quotation.Status != model.ApprovalDraft {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only draft quotations can be submitted",
		})
	}

	if err := database.GetDB().Model(&quotation).Update("status", model.ApprovalSubmitted).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not submit quotation",
		})
	}
	quotation.Status = model.ApprovalSubmitted

	return c.JSON(fiber.Map{
		"success":   true,
		"quotation": quotation,
	})
}

func DeleteQuotation(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var quotation model.Quotation
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&quotation, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Quotation not found",
		})
	}

	if err := database.GetDB().Unscoped().Delete(&quotation).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete quotation",
		})
	}

	if quotation.AttachmentURL != "" {
		if err := storage.DeleteAttachment(quotation.AttachmentURL); err != nil {
			log.Printf("Could not delete quotation attachment: %v", err)
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

// ListPendingQuotations is the admin approval queue.
func ListPendingQuotations(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	query := database.GetDB().Model(&model.Quotation{}).Where("status = ?", model.ApprovalSubmitted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch quotations",
		})
	}

	var quotations []model.Quotation
	if err := query.Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&quotations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch quotations",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   quotations,
		"page":    page,
		"pages":   pageCount(total, limit),
		"total":   total,
		"limit":   limit,
	})
}

// DecideQuotation records an admin approve/reject. Valid only from
// Submitted.
func DecideQuotation(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var quotation model.Quotation
	if err := database.GetDB().First(&quotation, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Quotation not found",
		})
	}

	if quotation.Status != model.ApprovalSubmitted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Quotation is not awaiting a decision",
		})
	}

	input := new(DecisionInput)
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

	status := model.ApprovalApproved
	if input.Decision == "reject" {
		status = model.ApprovalRejected
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         status,
		"approval_note":  input.Note,
		"approved_by_id": claims.UserID,
		"decided_at":     now,
	}
	if err := database.GetDB().Model(&quotation).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not record decision",
		})
	}

	quotation.Status = status
	quotation.ApprovalNote = input.Note
	quotation.ApprovedByID = &claims.UserID
	quotation.DecidedAt = &now

	notifyDecision(quotation.OwnerID, "Quotation", quotation.Number, string(status), input.Note)

	return c.JSON(fiber.Map{
		"success":   true,
		"quotation": quotation,
	})
}

func notifyDecision(ownerID uint, kind, number, decision, note string) {
	if email.GlobalEmailService == nil {
		return
	}

	var owner model.User
	if err := database.GetDB().First(&owner, ownerID).Error; err != nil {
		return
	}

	err := email.GlobalEmailService.SendApprovalDecision(owner.Email, email.ApprovalDecisionData{
		Name:         owner.Name,
		DocumentKind: kind,
		Number:       number,
		Decision:     decision,
		Note:         note,
	})
	if err != nil {
		log.Printf("Could not send %s decision email: %v", kind, err)
	}
}
