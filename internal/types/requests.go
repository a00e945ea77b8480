package types

import (
	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/google/uuid"
)

// LoginRequest represents the request body for staff login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest represents the request body for creating a staff account
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin manager chef"`
}

type CustomerRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	DeliveryArea string `json:"delivery_area"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	DeliveryArea *string `json:"delivery_area"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

type DishRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" binding:"required"`
	Ingredients []string `json:"ingredients"`
	Allergens   []string `json:"allergens"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fats        float64  `json:"fats"`
	Price       float64  `json:"price"`
	IsActive    *bool    `json:"is_active"`
}

type UpdateDishRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Ingredients []string `json:"ingredients"`
	Allergens   []string `json:"allergens"`
	Calories    *float64 `json:"calories"`
	Protein     *float64 `json:"protein"`
	Carbs       *float64 `json:"carbs"`
	Fats        *float64 `json:"fats"`
	Price       *float64 `json:"price"`
	IsActive    *bool    `json:"is_active"`
}

type PlanTemplateRequest struct {
	Name        string  `json:"name" binding:"required"`
	PlanType    string  `json:"plan_type"`
	Days        int     `json:"days" binding:"required"`
	MealsPerDay int     `json:"meals_per_day" binding:"required"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type UpdatePlanTemplateRequest struct {
	Name        *string  `json:"name"`
	PlanType    *string  `json:"plan_type"`
	Days        *int     `json:"days"`
	MealsPerDay *int     `json:"meals_per_day"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
}

// MealPlanItemInput is one (date, slot) cell submitted by the planner UI.
type MealPlanItemInput struct {
	Date         string              `json:"date" binding:"required"`
	TimeSlot     string              `json:"time_slot" binding:"required"`
	DeliveryTime string              `json:"delivery_time"`
	DishID       *uuid.UUID          `json:"dish_id"`
	DishName     string              `json:"dish_name"`
	IsSkipped    bool                `json:"is_skipped"`
	Note         models.DeliveryNote `json:"note"`
}

type CreateMealPlanRequest struct {
	CustomerID      uuid.UUID           `json:"customer_id" binding:"required"`
	PlanTemplateID  *uuid.UUID          `json:"plan_template_id"`
	PlanType        string              `json:"plan_type"`
	Days            int                 `json:"days"`
	MealsPerDay     int                 `json:"meals_per_day"`
	StartDate       string              `json:"start_date" binding:"required"`
	TimeSlots       []string            `json:"time_slots"`
	DeliveryType    string              `json:"delivery_type"`
	DeliveryAddress string              `json:"delivery_address"`
	TotalMeals      *int                `json:"total_meals"`
	Price           *float64            `json:"price"`
	Discount        float64             `json:"discount"`
	Notes           string              `json:"notes"`
	Items           []MealPlanItemInput `json:"items"`
}

type UpdateMealPlanRequest struct {
	Status          *string  `json:"status"`
	Days            *int     `json:"days"`
	MealsPerDay     *int     `json:"meals_per_day"`
	TotalMeals      *int     `json:"total_meals"`
	TimeSlots       []string `json:"time_slots"`
	DeliveryType    *string  `json:"delivery_type"`
	DeliveryAddress *string  `json:"delivery_address"`
	Price           *float64 `json:"price"`
	Discount        *float64 `json:"discount"`
	Notes           *string  `json:"notes"`
}

type UpdateMealPlanItemRequest struct {
	DishID       *uuid.UUID           `json:"dish_id"`
	DishName     *string              `json:"dish_name"`
	DeliveryTime *string              `json:"delivery_time"`
	IsSkipped    *bool                `json:"is_skipped"`
	Note         *models.DeliveryNote `json:"note"`
}

type AddWeekRequest struct {
	VisibleWeeks []int `json:"visible_weeks"`
}

type SkipDayRequest struct {
	Date    string `json:"date" binding:"required"`
	Skipped *bool  `json:"skipped"`
}

type SkipWeekRequest struct {
	Week    int   `json:"week" binding:"required,min=1"`
	Skipped *bool `json:"skipped"`
}

type PaymentRequest struct {
	Amount         float64    `json:"amount" binding:"required"`
	Method         string     `json:"method" binding:"required"`
	Status         string     `json:"status"`
	PaidAt         string     `json:"paid_at"`
	Reference      string     `json:"reference"`
	Notes          string     `json:"notes"`
	CustomerID     *uuid.UUID `json:"customer_id"`
	MealPlanID     *uuid.UUID `json:"meal_plan_id"`
	PlanTemplateID *uuid.UUID `json:"plan_template_id"`
}

type UpdatePaymentRequest struct {
	Amount    *float64 `json:"amount"`
	Method    *string  `json:"method"`
	Status    *string  `json:"status"`
	PaidAt    *string  `json:"paid_at"`
	Reference *string  `json:"reference"`
	Notes     *string  `json:"notes"`
}
