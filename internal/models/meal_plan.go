package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MealPlan struct {
	Base
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
	CustomerID      uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"customer_id"`
	Customer        *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	PlanTemplateID  *uuid.UUID       `gorm:"type:varchar(36);index" json:"plan_template_id,omitempty"`
	PlanType        string           `gorm:"size:20;not null" json:"plan_type"`
	Days            int              `gorm:"not null" json:"days"`
	MealsPerDay     int              `gorm:"not null" json:"meals_per_day"`
	TimeSlots       JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"time_slots"`
	StartDate       time.Time        `gorm:"type:date;not null;index" json:"start_date"`
	EndDate         time.Time        `gorm:"type:date;not null" json:"end_date"`
	Status          string           `gorm:"size:20;not null;default:'active';index" json:"status"`
	TotalMeals      int              `gorm:"not null" json:"total_meals"`
	RemainingMeals  int              `gorm:"not null" json:"remaining_meals"`
	DeliveryType    string           `gorm:"size:20" json:"delivery_type"`
	DeliveryAddress string           `gorm:"type:text" json:"delivery_address"`
	Price           float64          `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Discount        float64          `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	TotalAmount     float64          `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	WeekSkips       JSONBIntArray    `gorm:"type:jsonb;not null;default:'[]'" json:"week_skips"`
	SkippedDates    JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"skipped_dates"`
	Notes           string           `gorm:"type:text" json:"notes"`
	Items           []MealPlanItem   `gorm:"foreignKey:MealPlanID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// DeliveryNote holds per-meal delivery details that have no column of their own.
type DeliveryNote struct {
	DeliveryType     string `json:"delivery_type,omitempty"`
	DeliveryLocation string `json:"delivery_location,omitempty"`
	Instructions     string `json:"instructions,omitempty"`
}

// IsZero reports whether no field is set.
func (n DeliveryNote) IsZero() bool {
	return n == DeliveryNote{}
}

// Value implements the driver.Valuer interface
func (n DeliveryNote) Value() (driver.Value, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (n *DeliveryNote) Scan(value interface{}) error {
	if value == nil {
		*n = DeliveryNote{}
		return nil
	}
	b, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		*n = DeliveryNote{}
		return nil
	}
	return json.Unmarshal(b, n)
}

// MealPlanItem is one meal at one date and time slot of a plan. The dish
// columns are a copy taken when the dish was assigned.
type MealPlanItem struct {
	Base
	MealPlanID   uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_item_plan_date_slot,priority:1" json:"meal_plan_id"`
	Date         time.Time  `gorm:"type:date;not null;uniqueIndex:idx_item_plan_date_slot,priority:2;index" json:"date"`
	TimeSlot     string     `gorm:"size:5;not null;uniqueIndex:idx_item_plan_date_slot,priority:3" json:"time_slot"`
	DeliveryTime string     `gorm:"size:5" json:"delivery_time"`
	DishID       *uuid.UUID `gorm:"type:varchar(36);index" json:"dish_id,omitempty"`

	DishName        string           `gorm:"size:255" json:"dish_name"`
	DishDescription string           `gorm:"type:text" json:"dish_description"`
	DishCategory    string           `gorm:"size:50" json:"dish_category"`
	Ingredients     JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Allergens       JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergens"`
	Calories        float64          `gorm:"type:float" json:"calories"`
	Protein         float64          `gorm:"type:float" json:"protein"`
	Carbs           float64          `gorm:"type:float" json:"carbs"`
	Fats            float64          `gorm:"type:float" json:"fats"`
	Price           float64          `gorm:"type:decimal(10,2);not null;default:0" json:"price"`

	IsSkipped   bool         `gorm:"not null;default:false" json:"is_skipped"`
	IsDelivered bool         `gorm:"not null;default:false" json:"is_delivered"`
	DeliveredAt *time.Time   `json:"delivered_at,omitempty"`
	Note        DeliveryNote `gorm:"type:jsonb" json:"note"`
}

// ApplyDish copies the dish's current fields onto the item.
func (i *MealPlanItem) ApplyDish(d *Dish) {
	id := d.ID
	i.DishID = &id
	i.DishName = d.Name
	i.DishDescription = d.Description
	i.DishCategory = d.Category
	i.Ingredients = append(JSONBStringArray{}, d.Ingredients...)
	i.Allergens = append(JSONBStringArray{}, d.Allergens...)
	i.Calories = d.Calories
	i.Protein = d.Protein
	i.Carbs = d.Carbs
	i.Fats = d.Fats
	i.Price = d.Price
}
