// Package mealplan holds the calendar rules behind meal plans: which
// (date, time slot) rows a plan contains, how rows group into weeks, and how
// many contracted meals are left once deliveries are counted.
//
// Nothing here touches storage. The service layer loads rows, runs them
// through these functions and persists the result.
package mealplan

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and key format for plan dates.
const DateLayout = "2006-01-02"

// MaxMealsPerDay bounds the per-day slot count of any plan.
const MaxMealsPerDay = 5

const (
	TypeWeekly  = "weekly"
	TypeMonthly = "monthly"
	TypeCustom  = "custom"
)

// Row is one schedulable meal cell of a plan draft.
type Row struct {
	// ItemID is set for rows already persisted as meal plan items.
	ItemID          *uuid.UUID `json:"item_id,omitempty"`
	Date            time.Time  `json:"date"`
	TimeSlot        string     `json:"time_slot"`
	DeliveryTime    string     `json:"delivery_time"`
	Week            int        `json:"week"`
	DeliveryType    string     `json:"delivery_type,omitempty"`
	DeliveryAddress string     `json:"delivery_address,omitempty"`
	DishID          *uuid.UUID `json:"dish_id,omitempty"`
	DishName        string     `json:"dish_name,omitempty"`
	IsSkipped       bool       `json:"is_skipped"`
}

// HasDish reports whether a dish has been assigned to the row, either by
// catalog reference or by free-text name.
func (r Row) HasDish() bool {
	return r.DishID != nil || strings.TrimSpace(r.DishName) != ""
}

// Key is the dedupe key of the row within one plan.
func (r Row) Key() string {
	return Key(r.Date, r.TimeSlot)
}

// Key builds the (date, slot) dedupe key.
func Key(date time.Time, slot string) string {
	return Day(date).Format(DateLayout) + "|" + slot
}

// Params configures row generation for a single plan.
type Params struct {
	Start           time.Time
	Days            int
	MealsPerDay     int
	Slots           []string
	DeliveryType    string
	DeliveryAddress string
	// MealsOverride replaces Days*MealsPerDay as the contracted total when set.
	MealsOverride *int
}

// Validate checks the parameters and returns a *FieldError naming the first
// offending field.
func (p Params) Validate() error {
	if p.Start.IsZero() {
		return invalid("start_date", "is required")
	}
	if p.Days < 1 {
		return invalid("days", "must be at least 1")
	}
	if p.MealsPerDay < 1 || p.MealsPerDay > MaxMealsPerDay {
		return invalid("meals_per_day", "must be between 1 and %d", MaxMealsPerDay)
	}
	if len(p.Slots) < p.MealsPerDay {
		return invalid("time_slots", "need at least %d slots, got %d", p.MealsPerDay, len(p.Slots))
	}
	if p.MealsOverride != nil && *p.MealsOverride < 0 {
		return invalid("total_meals", "must not be negative")
	}
	return nil
}

// TotalMeals is the contracted meal count of the plan.
func (p Params) TotalMeals() int {
	return TotalMeals(p.Days, p.MealsPerDay, p.MealsOverride)
}

// ActiveSlots returns the normalized first MealsPerDay slots.
func (p Params) ActiveSlots() ([]string, error) {
	if p.MealsPerDay > len(p.Slots) {
		return nil, invalid("time_slots", "need at least %d slots, got %d", p.MealsPerDay, len(p.Slots))
	}
	seen := make(map[string]bool, p.MealsPerDay)
	slots := make([]string, 0, p.MealsPerDay)
	for _, raw := range p.Slots[:p.MealsPerDay] {
		slot, err := NormalizeTime(raw)
		if err != nil {
			return nil, err
		}
		if seen[slot] {
			return nil, invalid("time_slots", "duplicate slot %s", slot)
		}
		seen[slot] = true
		slots = append(slots, slot)
	}
	return slots, nil
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndDate is start + days.
func EndDate(start time.Time, days int) time.Time {
	return Day(start).AddDate(0, 0, days)
}

// DaysBetween counts whole calendar days from start to date.
func DaysBetween(start, date time.Time) int {
	return int(math.Floor(Day(date).Sub(Day(start)).Hours() / 24))
}

// WeekNumber returns the 1-based plan week containing date. Dates before the
// start still map to week 1.
func WeekNumber(start, date time.Time) int {
	days := DaysBetween(start, date)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}

// TotalWeeks is the number of (possibly partial) weeks a plan spans.
func TotalWeeks(days int) int {
	if days <= 0 {
		return 0
	}
	return (days + 6) / 7
}

// TotalMeals returns days*mealsPerDay unless override is set.
func TotalMeals(days, mealsPerDay int, override *int) int {
	if override != nil {
		return *override
	}
	if days <= 0 || mealsPerDay <= 0 {
		return 0
	}
	return days * mealsPerDay
}

// TypeRules maps a day count to a plan type. Ranges are inclusive.
type TypeRules struct {
	WeeklyMin  int
	WeeklyMax  int
	MonthlyMin int
	MonthlyMax int
}

// DefaultTypeRules is 5-7 days weekly, 20-30 days monthly.
var DefaultTypeRules = TypeRules{WeeklyMin: 5, WeeklyMax: 7, MonthlyMin: 20, MonthlyMax: 30}

// InferPlanType picks a plan type from the day count.
func InferPlanType(days int, rules TypeRules) string {
	switch {
	case days >= rules.MonthlyMin && days <= rules.MonthlyMax:
		return TypeMonthly
	case days >= rules.WeeklyMin && days <= rules.WeeklyMax:
		return TypeWeekly
	default:
		return TypeCustom
	}
}

// ValidPlanType reports whether t is a known plan type.
func ValidPlanType(t string) bool {
	switch t {
	case TypeWeekly, TypeMonthly, TypeCustom:
		return true
	}
	return false
}
