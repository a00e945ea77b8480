package models

import (
	"gorm.io/gorm"
)

const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCancelled = "cancelled"
)

type Customer struct {
	Base
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Email        string         `gorm:"size:255;index" json:"email"`
	Phone        string         `gorm:"size:50;index" json:"phone"`
	Address      string         `gorm:"type:text" json:"address"`
	DeliveryArea string         `gorm:"size:100;index" json:"delivery_area"`
	Status       string         `gorm:"size:20;not null;default:'active'" json:"status"`
	Notes        string         `gorm:"type:text" json:"notes"`
}

// ValidStatus reports whether s is a customer or meal plan status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusPaused, StatusCancelled:
		return true
	}
	return false
}
