package controller

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/jwt"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/storage"
)

type MetPersonInput struct {
	Name              string         `json:"name" validate:"required"`
	LeadType          model.LeadType `json:"lead_type"`
	Company           string         `json:"company"`
	Phone             string         `json:"phone"`
	Email             string         `json:"email" validate:"omitempty,email"`
	ConversationNotes string         `json:"conversation_notes"`
	Outcome           string         `json:"outcome"`
	FollowUpDate      string         `json:"follow_up_date"`
}

type VisitInput struct {
	PlaceName string           `json:"place_name" validate:"required"`
	SiteType  string           `json:"site_type"`
	Address   string           `json:"address"`
	City      string           `json:"city"`
	Lat       *float64         `json:"lat"`
	Lng       *float64         `json:"lng"`
	VisitedAt string           `json:"visited_at"`
	MetPeople []MetPersonInput `json:"met_people"`
	Tags      []string         `json:"tags"`
}

type PromoteInput struct {
	Idx      *int `json:"idx"`
	MetIndex *int `json:"metIndex"`
}

func (p *PromoteInput) index() (int, bool) {
	if p.Idx != nil {
		return *p.Idx, true
	}
	if p.MetIndex != nil {
		return *p.MetIndex, true
	}
	return 0, false
}

// geoPointFrom builds the GeoJSON column value only when both
// coordinates are present and finite; everything else leaves the column
// NULL, never an empty object.
func geoPointFrom(lng, lat *float64) *datatypes.JSONType[model.GeoPoint] {
	if lng == nil || lat == nil {
		return nil
	}
	if math.IsNaN(*lng) || math.IsInf(*lng, 0) || math.IsNaN(*lat) || math.IsInf(*lat, 0) {
		return nil
	}
	point := datatypes.NewJSONType(model.NewGeoPoint(*lng, *lat))
	return &point
}

func metPeopleFrom(inputs []MetPersonInput) ([]model.MetPerson, error) {
	people := make([]model.MetPerson, 0, len(inputs))
	for _, in := range inputs {
		person := model.MetPerson{
			Name:              in.Name,
			LeadType:          in.LeadType,
			Company:           in.Company,
			Phone:             in.Phone,
			Email:             in.Email,
			ConversationNotes: in.ConversationNotes,
			Outcome:           in.Outcome,
		}
		if in.FollowUpDate != "" {
			followUp, err := parseTimeParam(in.FollowUpDate)
			if err != nil {
				return nil, err
			}
			person.FollowUpDate = followUp
		}
		people = append(people, person)
	}
	return people, nil
}

func ListMyVisits(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	page, limit := parsePagination(c)

	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	query := database.GetDB().Model(&model.Visit{}).Where("user_id = ?", claims.UserID)

	if city := c.Query("city"); city != "" {
		query = query.Where("city ILIKE ?", city)
	}
	if siteType := c.Query("site_type"); siteType != "" {
		query = query.Where("site_type = ?", siteType)
	}
	if from != nil {
		query = query.Where("visited_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("visited_at <= ?", *to)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("place_name ILIKE ? OR address ILIKE ? OR city ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch visits",
		})
	}

	var visits []model.Visit
	if err := query.Order("visited_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&visits).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch visits",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   visits,
		"page":    page,
		"pages":   pageCount(total, limit),
		"total":   total,
		"limit":   limit,
	})
}

func GetVisit(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var visit model.Visit
	if err := database.GetDB().Where("user_id = ?", claims.UserID).First(&visit, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Visit not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"visit":   visit,
	})
}

func CreateVisit(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(VisitInput)
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

	visitedAt := time.Now()
	if input.VisitedAt != "" {
		parsed, err := parseTimeParam(input.VisitedAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		visitedAt = *parsed
	}

	people, err := metPeopleFrom(input.MetPeople)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	visit := model.Visit{
		UserID:      claims.UserID,
		PlaceName:   input.PlaceName,
		SiteType:    input.SiteType,
		Address:     input.Address,
		City:        input.City,
		Geolocation: geoPointFrom(input.Lng, input.Lat),
		VisitedAt:   visitedAt,
		MetPeople:   datatypes.NewJSONType(people),
		Tags:        datatypes.NewJSONSlice(input.Tags),
	}

	if err := database.GetDB().Create(&visit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create visit",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"visit":   visit,
	})
}

func UpdateVisit(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var visit model.Visit
	if err := database.GetDB().Where("user_id = ?", claims.UserID).First(&visit, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Visit not found",
		})
	}

	input := new(VisitInput)
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

	// Met people keep their lead back-references across edits; an edit
	// replaces the descriptive fields but must not sever a promotion.
	existingPeople := visit.MetPeople.Data()
	people, err := metPeopleFrom(input.MetPeople)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	for i := range people {
		if i < len(existingPeople) {
			people[i].LeadID = existingPeople[i].LeadID
		}
	}

	visit.PlaceName = input.PlaceName
	visit.SiteType = input.SiteType
	visit.Address = input.Address
	visit.City = input.City
	visit.Geolocation = geoPointFrom(input.Lng, input.Lat)
	visit.MetPeople = datatypes.NewJSONType(people)
	visit.Tags = datatypes.NewJSONSlice(input.Tags)

	if input.VisitedAt != "" {
		parsed, err := parseTimeParam(input.VisitedAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		visit.VisitedAt = *parsed
	}

	if err := database.GetDB().Save(&visit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update visit",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"visit":   visit,
	})
}

func DeleteVisit(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var visit model.Visit
	if err := database.GetDB().Where("user_id = ?", claims.UserID).First(&visit, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Visit not found",
		})
	}

	if err := database.GetDB().Unscoped().Delete(&visit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete visit",
		})
	}

	// Best effort; an orphaned photo object is not worth failing the delete.
	for _, url := range visit.PhotoURLs {
		if err := storage.DeleteAttachment(url); err != nil {
			log.Printf("Could not delete visit photo %s: %v", url, err)
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

// CheckIn stamps the visit's check-in time; CheckOut its check-out.
func CheckIn(c *fiber.Ctx) error {
	return stampVisit(c, "check_in_at")
}

func CheckOut(c *fiber.Ctx) error {
	return stampVisit(c, "check_out_at")
}

func stampVisit(c *fiber.Ctx, column string) error {
	claims := c.Locals("user").(*jwt.Claims)

	var visit model.Visit
	if err := database.GetDB().Where("user_id = ?", claims.UserID).First(&visit, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Visit not found",
		})
	}

	now := time.Now()
	if err := database.GetDB().Model(&visit).Update(column, now).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update visit",
		})
	}

	database.GetDB().First(&visit, visit.ID)

	return c.JSON(fiber.Map{
		"success": true,
		"visit":   visit,
	})
}

// PromoteMetPerson converts one embedded met-person record into a
// standalone Lead, idempotently. A person already carrying a lead id
// short-circuits; a duplicate contact reuses the existing lead with its
// last_visit_id bumped to this visit. The lead write happens before the
// visit back-reference write; if the second write fails, re-running the
// promotion is the repair path (both branches converge on the same lead).
func PromoteMetPerson(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	db := database.GetDB()

	var visit model.Visit
	if err := db.Where("user_id = ?", claims.UserID).First(&visit, c.Params("visitId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Visit not found",
		})
	}

	input := new(PromoteInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid input",
		})
	}

	idx, ok := input.index()
	people := visit.MetPeople.Data()
	if !ok || idx < 0 || idx >= len(people) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid met person index",
		})
	}
	person := people[idx]

	// Already promoted: return the linked lead, no writes.
	if person.LeadID != nil {
		var lead model.Lead
		if err := db.Where("owner_id = ?", claims.UserID).First(&lead, *person.LeadID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Linked lead no longer exists",
			})
		}
		return c.JSON(fiber.Map{
			"lead":    lead,
			"message": "Already linked",
		})
	}

	normalizedPhone := model.NormalizePhone(person.Phone)
	normalizedEmail := model.NormalizeEmail(person.Email)

	existing, err := model.FindDuplicateLead(db, claims.UserID, normalizedPhone, normalizedEmail, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not check duplicates",
		})
	}

	var lead model.Lead
	var message string

	if existing != nil {
		// Reuse the duplicate; most-recent-visit-wins on the back-ref.
		if err := db.Model(existing).Update("last_visit_id", visit.ID).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not link lead",
			})
		}
		lead = *existing
		lead.LastVisitID = &visit.ID
		message = "Linked to existing lead"
	} else {
		leadType := person.LeadType
		if !model.IsValidLeadType(leadType) {
			leadType = model.LeadTypeBuyer
		}
		lead = model.Lead{
			OwnerID:         claims.UserID,
			LeadType:        leadType,
			Name:            person.Name,
			Company:         person.Company,
			Phone:           person.Phone,
			NormalizedPhone: model.NullableContact(normalizedPhone),
			Email:           model.NullableContact(normalizedEmail),
			City:            visit.City,
			Address:         visit.Address,
			Description:     person.ConversationNotes,
			Status:          model.LeadStatusNew,
			Source:          model.LeadSourceVisit,
			FollowUpDate:    person.FollowUpDate,
			LastVisitID:     &visit.ID,
		}
		if err := db.Create(&lead).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"message": "A lead with this phone or email already exists",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not create lead",
			})
		}
		message = "Lead created from visit"
	}

	people[idx].LeadID = &lead.ID
	if err := db.Model(&visit).Update("met_people", datatypes.NewJSONType(people)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Lead saved but could not link it back to the visit; retry the promotion",
		})
	}

	return c.JSON(fiber.Map{
		"lead":    lead,
		"message": message,
	})
}
