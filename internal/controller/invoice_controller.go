package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/jwt"
)

type InvoiceInput struct {
	QuotationID *uint           `json:"quotation_id"`
	LeadID      *uint           `json:"lead_id"`
	Items       []LineItemInput `json:"items" validate:"omitempty,dive"`
	Notes       string          `json:"notes"`
	DueDate     string          `json:"due_date"`
}

func ListMyInvoices(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	page, limit := parsePagination(c)

	query := database.GetDB().Model(&model.Invoice{}).Where("owner_id = ?", claims.UserID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if payment := c.Query("payment_status"); payment != "" {
		query = query.Where("payment_status = ?", payment)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch invoices",
		})
	}

	var invoices []model.Invoice
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch invoices",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   invoices,
		"page":    page,
		"pages":   pageCount(total, limit),
		"total":   total,
		"limit":   limit,
	})
}

// CreateInvoice raises an invoice either from an approved quotation
// (items and lead are inherited) or standalone with its own items.
func CreateInvoice(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(InvoiceInput)
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

	invoice := model.Invoice{
		OwnerID: claims.UserID,
		Number:  nextDocumentNumber("INV", &model.Invoice{}),
		Notes:   input.Notes,
		Status:  model.ApprovalDraft,
	}

	if input.QuotationID != nil {
		var quotation model.Quotation
		if err := database.GetDB().Where("owner_id = ?", claims.UserID).
			First(&quotation, *input.QuotationID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Quotation not found",
			})
		}
		if quotation.Status != model.ApprovalApproved {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Only approved quotations can be invoiced",
			})
		}
		invoice.QuotationID = input.QuotationID
		invoice.LeadID = quotation.LeadID
		invoice.Items = quotation.Items
		invoice.Total = quotation.Total
	} else {
		if len(input.Items) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "items are required for a standalone invoice",
			})
		}
		if err := ownedLead(claims.UserID, input.LeadID); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		items := lineItemsFrom(input.Items)
		invoice.LeadID = input.LeadID
		invoice.Items = items
		invoice.Total = model.TotalOf(items)
	}

	if input.DueDate != "" {
		dueDate, err := parseTimeParam(input.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		invoice.DueDate = dueDate
	}

	if err := database.GetDB().Create(&invoice).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create invoice",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}

func SubmitInvoice(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var invoice model.Invoice
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&invoice, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Invoice not found",
		})
	}

	if invoice.Status != model.ApprovalDraft {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only draft invoices can be submitted",
		})
	}

	if err := database.GetDB().Model(&invoice).Update("status", model.ApprovalSubmitted).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not submit invoice",
		})
	}
	invoice.Status = model.ApprovalSubmitted

	return c.JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}

func ListPendingInvoices(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	query := database.GetDB().Model(&model.Invoice{}).Where("status = ?", model.ApprovalSubmitted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch invoices",
		})
	}

	var invoices []model.Invoice
	if err := query.Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch invoices",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   invoices,
		"page":    page,
		"pages":   pageCount(total, limit),
		"total":   total,
		"limit":   limit,
	})
}

func DecideInvoice(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var invoice model.Invoice
	if err := database.GetDB().First(&invoice, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Invoice not found",
		})
	}

	if invoice.Status != model.ApprovalSubmitted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invoice is not awaiting a decision",
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
	if err := database.GetDB().Model(&invoice).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not record decision",
		})
	}

	invoice.Status = status
	invoice.ApprovalNote = input.Note
	invoice.ApprovedByID = &claims.UserID
	invoice.DecidedAt = &now

	notifyDecision(invoice.OwnerID, "Invoice", invoice.Number, string(status), input.Note)

	return c.JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}

// MarkInvoicePaid settles an approved invoice.
func MarkInvoicePaid(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var invoice model.Invoice
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&invoice, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Invoice not found",
		})
	}

	if invoice.Status != model.ApprovalApproved {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only approved invoices can be marked paid",
		})
	}
	if invoice.PaymentStatus == model.PaymentPaid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invoice is already paid",
		})
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": model.PaymentPaid,
		"paid_at":        now,
	}
	if err := database.GetDB().Model(&invoice).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update invoice",
		})
	}

	invoice.PaymentStatus = model.PaymentPaid
	invoice.PaidAt = &now

	return c.JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}
