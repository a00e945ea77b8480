package models

// PlanTemplate pre-fills the configuration of new meal plans. It is frozen
// once any plan references it.
type PlanTemplate struct {
	Base
	Name        string  `gorm:"size:255;not null" json:"name"`
	PlanType    string  `gorm:"size:20;not null" json:"plan_type"`
	Days        int     `gorm:"not null" json:"days"`
	MealsPerDay int     `gorm:"not null" json:"meals_per_day"`
	Price       float64 `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Description string  `gorm:"type:text" json:"description"`
}
