package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type Payment struct {
	Base
	Amount         float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method         string     `gorm:"size:50;not null" json:"method"`
	Status         string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaidAt         time.Time  `gorm:"not null;index" json:"paid_at"`
	Reference      string     `gorm:"size:100" json:"reference"`
	Notes          string     `gorm:"type:text" json:"notes"`
	CustomerID     *uuid.UUID `gorm:"type:varchar(36);index" json:"customer_id,omitempty"`
	MealPlanID     *uuid.UUID `gorm:"type:varchar(36);index" json:"meal_plan_id,omitempty"`
	PlanTemplateID *uuid.UUID `gorm:"type:varchar(36);index" json:"plan_template_id,omitempty"`
	Customer       *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// ValidPaymentStatus reports whether s is a payment status.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}
