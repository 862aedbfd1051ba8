package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
	imageutil "github.com/og-construction/CRM-OGCS-sub001/pkg/utils/image"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/jwt"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/storage"
)

const MaxVisitPhotos = 8

// UploadVisitPhoto re-encodes a site photo and attaches its URL to the
// visit.
func UploadVisitPhoto(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var visit model.Visit
	if err := database.GetDB().Where("user_id = ?", claims.UserID).First(&visit, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Visit not found",
		})
	}

	if len(visit.PhotoURLs) >= MaxVisitPhotos {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Photo limit reached for this visit",
		})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "photo file is required",
		})
	}

	if file.Size > imageutil.MaxImageSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "File is too large",
		})
	}
	if !imageutil.AllowedImageTypes[file.Header.Get("Content-Type")] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only jpeg, png and webp photos are allowed",
		})
	}

	buf, contentType, err := imageutil.ProcessImage(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	url, err := storage.UploadAttachment(claims.UserID, "visits", file.Filename, contentType, buf.Bytes())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store photo",
		})
	}

	photos := append([]string(visit.PhotoURLs), url)
	if err := database.GetDB().Model(&visit).Update("photo_urls", datatypes.NewJSONSlice(photos)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not attach photo to visit",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}

// UploadQuotationAttachment stores a supporting file (site survey, BOQ,
// signed copy) against a quotation.
func UploadQuotationAttachment(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var quotation model.Quotation
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&quotation, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Quotation not found",
		})
	}

	return uploadDocumentAttachment(c, claims.UserID, "quotations", func(url string) error {
		return database.GetDB().Model(&quotation).Update("attachment_url", url).Error
	})
}

func UploadInvoiceAttachment(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var invoice model.Invoice
	if err := database.GetDB().Where("owner_id = ?", claims.UserID).First(&invoice, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Invoice not found",
		})
	}

	return uploadDocumentAttachment(c, claims.UserID, "invoices", func(url string) error {
		return database.GetDB().Model(&invoice).Update("attachment_url", url).Error
	})
}

func uploadDocumentAttachment(c *fiber.Ctx, userID uint, kind string, save func(url string) error) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "file is required",
		})
	}

	contentType := file.Header.Get("Content-Type")
	if !storage.IsAllowedType(contentType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only pdf, jpeg, png and webp files are allowed",
		})
	}

	body, err := storage.ReadMultipartFile(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	url, err := storage.UploadAttachment(userID, kind, file.Filename, contentType, body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store attachment",
		})
	}

	if err := save(url); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not record attachment",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}
