package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Lead Types
type LeadType string

const (
	LeadTypeBuyer        LeadType = "Buyer"
	LeadTypeContractor   LeadType = "Contractor"
	LeadTypeSeller       LeadType = "Seller"
	LeadTypeManufacturer LeadType = "Manufacturer"
)

// Lead Status
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusFollowUp  LeadStatus = "Follow-Up"
	LeadStatusClosed    LeadStatus = "Closed"
	LeadStatusConverted LeadStatus = "Converted"
)

// Lead Sources
const (
	LeadSourceManual = "Manual"
	LeadSourceVisit  = "Visit"
	LeadSourceImport = "Import"
)

type Lead struct {
	gorm.Model
	OwnerID  uint     `json:"owner_id" gorm:"index;uniqueIndex:idx_owner_lead_phone;uniqueIndex:idx_owner_lead_email"`
	LeadType LeadType `json:"lead_type" gorm:"default:'Buyer'"`

	Name    string `json:"name" gorm:"not null"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	// Nullable on purpose: the composite unique indexes must not fire
	// for contact-less leads (NULLs never collide in Postgres).
	NormalizedPhone *string `json:"normalized_phone" gorm:"uniqueIndex:idx_owner_lead_phone"`
	Email           *string `json:"email" gorm:"uniqueIndex:idx_owner_lead_email"`

	City        string `json:"city"`
	Address     string `json:"address"`
	Description string `json:"description" gorm:"type:text"`

	Status LeadStatus `json:"status" gorm:"default:'New'"`
	Source string     `json:"source" gorm:"default:'Manual'"`

	FollowUpDate  *time.Time `json:"follow_up_date" gorm:"index"`
	FollowUpNotes string     `json:"follow_up_notes" gorm:"type:text"`

	// Weak reference to the most recent visit that touched this lead.
	LastVisitID *uint `json:"last_visit_id"`

	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
}

// NormalizePhone strips every non-digit character and keeps at most the
// last 10 digits. Empty result means "no phone".
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// NormalizeEmail trims whitespace and lower-cases. Empty result means
// "no email".
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NullableContact converts a normalized contact value into its nullable
// column form: empty becomes NULL so the sparse unique indexes skip it.
func NullableContact(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func IsValidLeadType(t LeadType) bool {
	switch t {
	case LeadTypeBuyer, LeadTypeContractor, LeadTypeSeller, LeadTypeManufacturer:
		return true
	}
	return false
}

func IsValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusFollowUp, LeadStatusClosed, LeadStatusConverted:
		return true
	}
	return false
}

// FindDuplicateLead looks for an existing lead of the same owner whose
// normalized phone OR email matches. Empty values are skipped; when both
// are empty no query runs and no duplicate is reported. excludeID is set
// on updates so a lead does not collide with itself.
//
// This is only the pre-check for a friendly 409; the unique indexes on
// (owner_id, normalized_phone) and (owner_id, email) remain the backstop
// under concurrent creates.
func FindDuplicateLead(db *gorm.DB, ownerID uint, normalizedPhone, email string, excludeID uint) (*Lead, error) {
	if normalizedPhone == "" && email == "" {
		return nil, nil
	}

	query := db.Model(&Lead{}).Where("owner_id = ?", ownerID)

	switch {
	case normalizedPhone != "" && email != "":
		query = query.Where("normalized_phone = ? OR email = ?", normalizedPhone, email)
	case normalizedPhone != "":
		query = query.Where("normalized_phone = ?", normalizedPhone)
	default:
		query = query.Where("email = ?", email)
	}

	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var existing Lead
	if err := query.First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &existing, nil
}
