package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Approval states shared by quotations and invoices.
type ApprovalStatus string

const (
	ApprovalDraft     ApprovalStatus = "Draft"
	ApprovalSubmitted ApprovalStatus = "Submitted"
	ApprovalApproved  ApprovalStatus = "Approved"
	ApprovalRejected  ApprovalStatus = "Rejected"
)

// LineItem is one row of a quotation or invoice. Amounts are recomputed
// server-side; client-sent totals are ignored.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

func (i LineItem) Amount() float64 {
	return i.Quantity * i.UnitPrice
}

// TotalOf sums line item amounts.
func TotalOf(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Amount()
	}
	return total
}

type Quotation struct {
	gorm.Model
	OwnerID uint  `json:"owner_id" gorm:"index;not null"`
	LeadID  *uint `json:"lead_id"`

	Number string                        `json:"number" gorm:"uniqueIndex;not null"`
	Items  datatypes.JSONSlice[LineItem] `json:"items"`
	Total  float64                       `json:"total"`
	Notes  string                        `json:"notes" gorm:"type:text"`

	Status        ApprovalStatus `json:"status" gorm:"default:'Draft'"`
	ApprovalNote  string         `json:"approval_note" gorm:"type:text"`
	ApprovedByID  *uint          `json:"approved_by_id"`
	DecidedAt     *time.Time     `json:"decided_at"`
	AttachmentURL string         `json:"attachment_url"`

	ValidUntil *time.Time `json:"valid_until"`

	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
	Lead  Lead `json:"-" gorm:"foreignKey:LeadID"`
}
