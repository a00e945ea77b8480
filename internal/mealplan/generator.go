package mealplan

import (
	"sort"
	"strings"
	"time"
)

// Generate builds the draft rows of a plan for the visible weeks.
//
// Existing rows are merged in by (date, slot). An existing row survives
// untouched when it carries a dish or belongs to a week outside visibleWeeks;
// an empty row inside a visible week is rebuilt from p but keeps its skip
// flag. Rows of other weeks are carried through, so regenerating never drops
// data. An empty visibleWeeks means week 1.
func Generate(p Params, visibleWeeks []int, existing []Row) ([]Row, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	slots, err := p.ActiveSlots()
	if err != nil {
		return nil, err
	}

	visible := weekSet(visibleWeeks)
	start := Day(p.Start)

	merged := make(map[string]Row, len(existing)+p.Days*len(slots))
	for _, row := range existing {
		row, err := normalizeRow(start, row)
		if err != nil {
			return nil, err
		}
		// first occurrence of a key wins unless a later duplicate carries a dish
		if prev, ok := merged[row.Key()]; ok && (prev.HasDish() || !row.HasDish()) {
			continue
		}
		merged[row.Key()] = row
	}

	for d := 0; d < p.Days; d++ {
		date := start.AddDate(0, 0, d)
		week := WeekNumber(start, date)
		if !visible[week] {
			continue
		}
		for _, slot := range slots {
			key := Key(date, slot)
			prev, ok := merged[key]
			if ok && (prev.HasDish() || !visible[prev.Week]) {
				continue
			}
			merged[key] = Row{
				Date:            date,
				TimeSlot:        slot,
				DeliveryTime:    slot,
				Week:            week,
				DeliveryType:    p.DeliveryType,
				DeliveryAddress: p.DeliveryAddress,
				IsSkipped:       ok && prev.IsSkipped,
			}
		}
	}

	return sortRows(merged), nil
}

// AddWeek appends the week after the highest visible week to the draft.
//
// It fails with a *CapacityError when that week lies past the plan's last
// week, or when the draft would then hold more rows than the plan's contracted
// meals. On error no rows are returned.
func AddWeek(p Params, existing []Row, visibleWeeks []int) ([]Row, int, error) {
	if err := p.Validate(); err != nil {
		return nil, 0, err
	}

	next := 1
	for _, w := range visibleWeeks {
		if w+1 > next {
			next = w + 1
		}
	}

	if limit := TotalWeeks(p.Days); next > limit {
		return nil, 0, &CapacityError{Kind: "weeks", Limit: limit}
	}

	rows, err := Generate(p, []int{next}, existing)
	if err != nil {
		return nil, 0, err
	}
	if limit := p.TotalMeals(); len(rows) > limit {
		return nil, 0, &CapacityError{Kind: "meals", Limit: limit}
	}
	return rows, next, nil
}

// Committable keeps the rows that have a dish assigned. Only these are ever
// persisted as meal plan items.
func Committable(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.HasDish() {
			out = append(out, r)
		}
	}
	return out
}

// WeekRows returns the rows of a single plan week.
func WeekRows(rows []Row, week int) []Row {
	var out []Row
	for _, r := range rows {
		if r.Week == week {
			out = append(out, r)
		}
	}
	return out
}

// Weeks lists the distinct week numbers present in rows, ascending.
func Weeks(rows []Row) []int {
	set := make(map[int]bool)
	for _, r := range rows {
		set[r.Week] = true
	}
	weeks := make([]int, 0, len(set))
	for w := range set {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

func normalizeRow(start time.Time, row Row) (Row, error) {
	slot, err := NormalizeTime(row.TimeSlot)
	if err != nil {
		return Row{}, err
	}
	row.TimeSlot = slot
	row.Date = Day(row.Date)
	if row.DeliveryTime == "" {
		row.DeliveryTime = slot
	} else if dt, err := NormalizeTime(row.DeliveryTime); err == nil {
		row.DeliveryTime = dt
	}
	if row.Week < 1 {
		row.Week = WeekNumber(start, row.Date)
	}
	return row, nil
}

func weekSet(weeks []int) map[int]bool {
	set := make(map[int]bool, len(weeks))
	for _, w := range weeks {
		if w >= 1 {
			set[w] = true
		}
	}
	if len(set) == 0 {
		set[1] = true
	}
	return set
}

func sortRows(m map[string]Row) []Row {
	rows := make([]Row, 0, len(m))
	for _, r := range m {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return strings.Compare(rows[i].TimeSlot, rows[j].TimeSlot) < 0
	})
	return rows
}
