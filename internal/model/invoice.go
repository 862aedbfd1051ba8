package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invoice payment states, independent of the approval flow.
type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "Unpaid"
	PaymentPaid      PaymentStatus = "Paid"
	PaymentCancelled PaymentStatus = "Cancelled"
)

type Invoice struct {
	gorm.Model
	OwnerID     uint  `json:"owner_id" gorm:"index;not null"`
	LeadID      *uint `json:"lead_id"`
	QuotationID *uint `json:"quotation_id"`

	Number string                        `json:"number" gorm:"uniqueIndex;not null"`
	Items  datatypes.JSONSlice[LineItem] `json:"items"`
	Total  float64                       `json:"total"`
	Notes  string                        `json:"notes" gorm:"type:text"`

	Status       ApprovalStatus `json:"status" gorm:"default:'Draft'"`
	ApprovalNote string         `json:"approval_note" gorm:"type:text"`
	ApprovedByID *uint          `json:"approved_by_id"`
	DecidedAt    *time.Time     `json:"decided_at"`

	PaymentStatus PaymentStatus `json:"payment_status" gorm:"default:'Unpaid'"`
	PaidAt        *time.Time    `json:"paid_at"`
	DueDate       *time.Time    `json:"due_date"`
	AttachmentURL string        `json:"attachment_url"`

	Owner     User      `json:"-" gorm:"foreignKey:OwnerID"`
	Quotation Quotation `json:"-" gorm:"foreignKey:QuotationID"`
}
