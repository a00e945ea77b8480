package mealplan_test

import (
	"testing"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/stretchr/testify/assert"
)

func TestRemainingIgnoresSkipped(t *testing.T) {
	items := make([]mealplan.ItemState, 0, 8)
	for i := 0; i < 6; i++ {
		items = append(items, mealplan.ItemState{IsDelivered: true})
	}
	items = append(items, mealplan.ItemState{IsDelivered: true, IsSkipped: true})
	items = append(items, mealplan.ItemState{})

	assert.Equal(t, 6, mealplan.Delivered(items))
	assert.Equal(t, 4, mealplan.Remaining(10, items))
}

func TestRemainingBounds(t *testing.T) {
	delivered := func(n int) []mealplan.ItemState {
		out := make([]mealplan.ItemState, n)
		for i := range out {
			out[i].IsDelivered = true
		}
		return out
	}

	for total := 0; total <= 12; total++ {
		for n := 0; n <= 15; n++ {
			r := mealplan.Remaining(total, delivered(n))
			assert.GreaterOrEqual(t, r, 0)
			assert.LessOrEqual(t, r, total)
		}
	}
	assert.Equal(t, 0, mealplan.Remaining(-3, nil))
	assert.Equal(t, 0, mealplan.Remaining(5, delivered(9)))
}

func TestRemainingDeliverRoundTrip(t *testing.T) {
	items := []mealplan.ItemState{{IsDelivered: true}, {}, {}}
	before := mealplan.Remaining(28, items)

	items[1].IsDelivered = true
	assert.Equal(t, before-1, mealplan.Remaining(28, items))

	items[1].IsDelivered = false
	assert.Equal(t, before, mealplan.Remaining(28, items))
}

func TestActiveAndSkippedDays(t *testing.T) {
	items := []mealplan.ItemState{
		{Date: date("2024-01-01")},
		{Date: date("2024-01-01"), IsSkipped: true},
		{Date: date("2024-01-02"), IsSkipped: true},
		{Date: date("2024-01-02"), IsSkipped: true},
		{Date: date("2024-01-03")},
	}

	assert.Equal(t, 2, mealplan.ActiveDays(items))
	assert.Equal(t, []string{"2024-01-02"}, mealplan.SkippedDates(items))
}
