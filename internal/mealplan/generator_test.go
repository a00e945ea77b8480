package mealplan_test

import (
	"errors"
	"testing"
	"time"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse(mealplan.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func twoWeekPlan() mealplan.Params {
	return mealplan.Params{
		Start:           date("2024-01-01"),
		Days:            14,
		MealsPerDay:     2,
		Slots:           []string{"08:00", "13:00"},
		DeliveryType:    "delivery",
		DeliveryAddress: "12 Harbour Rd",
	}
}

func TestGenerateFirstWeek(t *testing.T) {
	rows, err := mealplan.Generate(twoWeekPlan(), []int{1}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 14)

	assert.Equal(t, date("2024-01-01"), rows[0].Date)
	assert.Equal(t, "08:00", rows[0].TimeSlot)
	assert.Equal(t, "13:00", rows[1].TimeSlot)
	assert.Equal(t, date("2024-01-07"), rows[13].Date)

	for _, r := range rows {
		assert.Equal(t, 1, r.Week)
		assert.Equal(t, r.TimeSlot, r.DeliveryTime)
		assert.Equal(t, "delivery", r.DeliveryType)
		assert.Equal(t, "12 Harbour Rd", r.DeliveryAddress)
		assert.False(t, r.HasDish())
	}
}

func TestAddWeekUntilCapacity(t *testing.T) {
	p := twoWeekPlan()
	rows, err := mealplan.Generate(p, []int{1}, nil)
	require.NoError(t, err)

	rows, week, err := mealplan.AddWeek(p, rows, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 2, week)
	require.Len(t, rows, 28)
	assert.Equal(t, 28, p.TotalMeals())

	week2 := mealplan.WeekRows(rows, 2)
	require.Len(t, week2, 14)
	assert.Equal(t, date("2024-01-08"), week2[0].Date)
	assert.Equal(t, date("2024-01-14"), week2[13].Date)

	again, week, err := mealplan.AddWeek(p, rows, []int{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mealplan.ErrCapacity))
	assert.Nil(t, again)
	assert.Zero(t, week)

	var capErr *mealplan.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "weeks", capErr.Kind)
	assert.Equal(t, 2, capErr.Limit)
}

func TestAddWeekRejectsMealOverflow(t *testing.T) {
	p := twoWeekPlan()
	override := 20
	p.MealsOverride = &override

	rows, err := mealplan.Generate(p, []int{1}, nil)
	require.NoError(t, err)

	_, _, err = mealplan.AddWeek(p, rows, []int{1})
	require.Error(t, err)
	assert.EqualError(t, err, "would exceed the plan's limit of 20 meals")
}

func TestAddWeekPartialLastWeek(t *testing.T) {
	p := twoWeekPlan()
	p.Days = 10

	rows, week, err := mealplan.AddWeek(p, nil, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 2, week)
	assert.Len(t, rows, 6)
}

func TestGeneratePreservesAssignedRows(t *testing.T) {
	p := twoWeekPlan()
	dishID := uuid.New()

	rows, err := mealplan.Generate(p, []int{1}, nil)
	require.NoError(t, err)
	rows[3].DishID = &dishID
	rows[3].DishName = "Chicken Shawarma Bowl"
	rows[3].DeliveryAddress = "Office"

	regenerated, err := mealplan.Generate(p, []int{1}, rows)
	require.NoError(t, err)
	require.Len(t, regenerated, 14)

	assert.Equal(t, &dishID, regenerated[3].DishID)
	assert.Equal(t, "Chicken Shawarma Bowl", regenerated[3].DishName)
	assert.Equal(t, "Office", regenerated[3].DeliveryAddress)
}

func TestGenerateCarriesOtherWeeks(t *testing.T) {
	p := twoWeekPlan()

	rows, err := mealplan.Generate(p, []int{1, 2}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 28)

	onlySecond, err := mealplan.Generate(p, []int{2}, rows)
	require.NoError(t, err)
	assert.Len(t, onlySecond, 28)
	assert.Len(t, mealplan.WeekRows(onlySecond, 1), 14)
}

func TestGenerateKeepsSkipFlag(t *testing.T) {
	p := twoWeekPlan()
	rows, err := mealplan.Generate(p, []int{1}, nil)
	require.NoError(t, err)
	rows[0].IsSkipped = true

	again, err := mealplan.Generate(p, []int{1}, rows)
	require.NoError(t, err)
	assert.True(t, again[0].IsSkipped)
}

func TestGenerateNeverDuplicatesKeys(t *testing.T) {
	p := twoWeekPlan()
	p.Slots = []string{"8:00 AM", "1:00 pm", "19:00"}

	existing := []mealplan.Row{
		{Date: date("2024-01-02"), TimeSlot: "08:00", DishName: "Oats"},
		{Date: date("2024-01-02"), TimeSlot: "8:00 am"},
		{Date: date("2024-01-09"), TimeSlot: "13:00", DishName: "Salad"},
	}

	rows, err := mealplan.Generate(p, []int{1}, existing)
	require.NoError(t, err)

	rows, _, err = mealplan.AddWeek(p, rows, []int{1})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, r := range rows {
		assert.False(t, seen[r.Key()], "duplicate key %s", r.Key())
		seen[r.Key()] = true
		assert.GreaterOrEqual(t, r.Week, 1)
	}
	assert.Len(t, rows, 28)

	for _, r := range rows {
		if r.Key() == "2024-01-02|08:00" {
			assert.Equal(t, "Oats", r.DishName)
		}
	}
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*mealplan.Params)
		field string
	}{
		{"missing start", func(p *mealplan.Params) { p.Start = time.Time{} }, "start_date"},
		{"zero days", func(p *mealplan.Params) { p.Days = 0 }, "days"},
		{"too many meals", func(p *mealplan.Params) { p.MealsPerDay = 6 }, "meals_per_day"},
		{"too few slots", func(p *mealplan.Params) { p.MealsPerDay = 3 }, "time_slots"},
		{"bad slot", func(p *mealplan.Params) { p.Slots = []string{"25:00", "13:00"} }, "time_slot"},
		{"duplicate slot", func(p *mealplan.Params) { p.Slots = []string{"13:00", "1:00 PM"} }, "time_slots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := twoWeekPlan()
			tt.mod(&p)
			_, err := mealplan.Generate(p, []int{1}, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, mealplan.ErrInvalid))

			var fe *mealplan.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestCommittable(t *testing.T) {
	dishID := uuid.New()
	rows := []mealplan.Row{
		{TimeSlot: "08:00"},
		{TimeSlot: "13:00", DishID: &dishID},
		{TimeSlot: "19:00", DishName: "Lentil Soup"},
		{TimeSlot: "21:00", DishName: "   "},
	}

	kept := mealplan.Committable(rows)
	require.Len(t, kept, 2)
	assert.Equal(t, "13:00", kept[0].TimeSlot)
	assert.Equal(t, "19:00", kept[1].TimeSlot)
}

func TestWeekNumber(t *testing.T) {
	start := date("2024-01-01")

	assert.Equal(t, 1, mealplan.WeekNumber(start, date("2023-12-25")))
	assert.Equal(t, 1, mealplan.WeekNumber(start, start))
	assert.Equal(t, 1, mealplan.WeekNumber(start, date("2024-01-07")))
	assert.Equal(t, 2, mealplan.WeekNumber(start, date("2024-01-08")))
	assert.Equal(t, 5, mealplan.WeekNumber(start, date("2024-01-30")))
	assert.Equal(t, 1, mealplan.WeekNumber(start, start.Add(23*time.Hour)))
}

func TestTotals(t *testing.T) {
	assert.Equal(t, 2, mealplan.TotalWeeks(14))
	assert.Equal(t, 2, mealplan.TotalWeeks(10))
	assert.Equal(t, 5, mealplan.TotalWeeks(30))
	assert.Equal(t, 0, mealplan.TotalWeeks(0))

	assert.Equal(t, 28, mealplan.TotalMeals(14, 2, nil))
	override := 10
	assert.Equal(t, 10, mealplan.TotalMeals(14, 2, &override))

	assert.Equal(t, date("2024-01-15"), mealplan.EndDate(date("2024-01-01"), 14))
}

func TestInferPlanType(t *testing.T) {
	rules := mealplan.DefaultTypeRules
	assert.Equal(t, mealplan.TypeWeekly, mealplan.InferPlanType(5, rules))
	assert.Equal(t, mealplan.TypeWeekly, mealplan.InferPlanType(7, rules))
	assert.Equal(t, mealplan.TypeMonthly, mealplan.InferPlanType(20, rules))
	assert.Equal(t, mealplan.TypeMonthly, mealplan.InferPlanType(30, rules))
	assert.Equal(t, mealplan.TypeCustom, mealplan.InferPlanType(14, rules))
	assert.Equal(t, mealplan.TypeCustom, mealplan.InferPlanType(3, rules))

	custom := mealplan.TypeRules{WeeklyMin: 6, WeeklyMax: 6, MonthlyMin: 24, MonthlyMax: 26}
	assert.Equal(t, mealplan.TypeCustom, mealplan.InferPlanType(5, custom))
	assert.Equal(t, mealplan.TypeMonthly, mealplan.InferPlanType(24, custom))
}
