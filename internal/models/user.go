package models

import (
	"gorm.io/gorm"
)

// Staff roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleChef    = "chef"
)

// User is a staff account of the kitchen back office.
type User struct {
	Base
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"size:20;not null;default:'manager'" json:"role"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
}

// ValidRole reports whether r is a known staff role.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleChef:
		return true
	}
	return false
}
