package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/testhelpers"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
)

var ctx = context.Background()

type fixture struct {
	db       *gorm.DB
	plans    *service.MealPlanService
	items    *service.MealPlanItemService
	customer *models.Customer
	dish     *models.Dish
	other    *models.Dish
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	return &fixture{
		db:       db,
		plans:    service.NewMealPlanService(db, mealplan.DefaultTypeRules, []string{"08:00", "13:00", "19:00"}),
		items:    service.NewMealPlanItemService(db),
		customer: testhelpers.CreateCustomer(t, db, "Amal Haddad", "Marina"),
		dish:     testhelpers.CreateDish(t, db, "Chicken Bowl", "lunch"),
		other:    testhelpers.CreateDish(t, db, "Salmon Salad", "dinner"),
	}
}

// weeklyPlan creates a 7-day plan starting 2025-01-06 with the given cells.
func (f *fixture) weeklyPlan(t *testing.T, mealsPerDay int, items ...types.MealPlanItemInput) *models.MealPlan {
	t.Helper()
	plan, err := f.plans.Create(ctx, &types.CreateMealPlanRequest{
		CustomerID:  f.customer.ID,
		Days:        7,
		MealsPerDay: mealsPerDay,
		StartDate:   "2025-01-06",
		Items:       items,
	})
	require.NoError(t, err)
	return plan
}

func cell(date, slot string, dishID *uuid.UUID) types.MealPlanItemInput {
	return types.MealPlanItemInput{Date: date, TimeSlot: slot, DishID: dishID}
}

func idOf(d *models.Dish) *uuid.UUID {
	id := d.ID
	return &id
}

func storedRemaining(t *testing.T, db *gorm.DB, planID uuid.UUID) int {
	t.Helper()
	var plan models.MealPlan
	require.NoError(t, db.Unscoped().First(&plan, "id = ?", planID).Error)
	return plan.RemainingMeals
}

func mealplanDate(s string) (time.Time, error) {
	return time.Parse(mealplan.DateLayout, s)
}
