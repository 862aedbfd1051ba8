package model

import (
	"strings"

	"gorm.io/gorm"
)

// User roles
type UserRole string

const (
	RoleSales UserRole = "sales"
	RoleAdmin UserRole = "admin"
)

type User struct {
	gorm.Model
	Email    string   `gorm:"uniqueIndex;not null"`
	Password string   `json:"-" gorm:"not null"`
	Name     string   `json:"name" gorm:"not null"`
	Role     UserRole `json:"role" gorm:"default:'sales'"`

	// Optional profile fields, updatable from settings
	PhoneNumber string `json:"phone_number"`
	Designation string `json:"designation"`
	Region      string `json:"region"`
	Avatar      string `json:"avatar"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	Leads  []Lead  `json:"-" gorm:"foreignKey:OwnerID"`
	Visits []Visit `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"email":        u.Email,
		"name":         strings.TrimSpace(u.Name),
		"role":         u.Role,
		"phone_number": u.PhoneNumber,
		"designation":  u.Designation,
		"region":       u.Region,
		"avatar":       u.Avatar,
	}
}
