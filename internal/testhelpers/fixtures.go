package testhelpers

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/freshkitchen/mealdesk/backend/internal/models"
)

// CreateUser stores an active staff account with the given password.
func CreateUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Name:         "Test " + role,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	mustCreate(t, db, user)
	return user
}

func CreateCustomer(t *testing.T, db *gorm.DB, name, area string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		Name:         name,
		Phone:        "+971500000000",
		Address:      name + " street 1",
		DeliveryArea: area,
		Status:       models.StatusActive,
	}
	mustCreate(t, db, customer)
	return customer
}

func CreateDish(t *testing.T, db *gorm.DB, name, category string) *models.Dish {
	t.Helper()
	dish := &models.Dish{
		Name:        name,
		Category:    category,
		Description: name + " with herbs",
		Ingredients: models.JSONBStringArray{"chicken", "rice"},
		Allergens:   models.JSONBStringArray{"sesame"},
		Calories:    520,
		Protein:     38,
		Carbs:       55,
		Fats:        14,
		Price:       32.5,
		IsActive:    true,
	}
	mustCreate(t, db, dish)
	return dish
}

func CreatePlanTemplate(t *testing.T, db *gorm.DB, name, planType string, days, mealsPerDay int) *models.PlanTemplate {
	t.Helper()
	tpl := &models.PlanTemplate{
		Name:        name,
		PlanType:    planType,
		Days:        days,
		MealsPerDay: mealsPerDay,
		Price:       float64(days*mealsPerDay) * 30,
	}
	mustCreate(t, db, tpl)
	return tpl
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to create %T: %v", value, err)
	}
}
