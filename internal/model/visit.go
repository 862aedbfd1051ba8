package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GeoPoint is a GeoJSON point. Stored only when both coordinates parsed
// as finite numbers; otherwise the column stays NULL.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lng, lat]
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// MetPerson is an embedded record of someone encountered during a site
// visit. LeadID is set once the person has been promoted to a Lead.
type MetPerson struct {
	Name              string     `json:"name"`
	LeadType          LeadType   `json:"lead_type"`
	Company           string     `json:"company"`
	Phone             string     `json:"phone"`
	Email             string     `json:"email"`
	ConversationNotes string     `json:"conversation_notes"`
	Outcome           string     `json:"outcome"`
	FollowUpDate      *time.Time `json:"follow_up_date"`
	LeadID            *uint      `json:"lead_id,omitempty"`
}

type Visit struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"index;not null"`

	PlaceName string `json:"place_name" gorm:"not null"`
	SiteType  string `json:"site_type"`
	Address   string `json:"address" gorm:"type:text"`
	City      string `json:"city"`

	Geolocation *datatypes.JSONType[GeoPoint] `json:"geolocation,omitempty"`

	VisitedAt  time.Time  `json:"visited_at"`
	CheckInAt  *time.Time `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at"`

	MetPeople datatypes.JSONType[[]MetPerson] `json:"met_people"`
	Tags      datatypes.JSONSlice[string]     `json:"tags"`
	PhotoURLs datatypes.JSONSlice[string]     `json:"photo_urls"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
