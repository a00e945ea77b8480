package mealplan

import (
	"sort"
	"time"
)

// ItemState is the slice of a persisted item the counter needs.
type ItemState struct {
	Date        time.Time
	IsDelivered bool
	IsSkipped   bool
}

// Delivered counts items that are delivered and not skipped.
func Delivered(items []ItemState) int {
	n := 0
	for _, it := range items {
		if it.IsDelivered && !it.IsSkipped {
			n++
		}
	}
	return n
}

// Remaining is the number of contracted meals still owed:
// total minus delivered, never below 0 and never above total.
func Remaining(total int, items []ItemState) int {
	return RemainingAfter(total, Delivered(items))
}

// RemainingAfter is Remaining for an already counted delivered total.
func RemainingAfter(total, delivered int) int {
	if total <= 0 {
		return 0
	}
	left := total - delivered
	if left < 0 {
		return 0
	}
	if left > total {
		return total
	}
	return left
}

// ActiveDays counts distinct dates that have at least one non-skipped item.
func ActiveDays(items []ItemState) int {
	days := make(map[string]bool)
	for _, it := range items {
		if !it.IsSkipped {
			days[Day(it.Date).Format(DateLayout)] = true
		}
	}
	return len(days)
}

// SkippedDates returns dates on which every item is skipped, ascending.
func SkippedDates(items []ItemState) []string {
	skipped := make(map[string]bool)
	for _, it := range items {
		key := Day(it.Date).Format(DateLayout)
		if prev, ok := skipped[key]; ok {
			skipped[key] = prev && it.IsSkipped
			continue
		}
		skipped[key] = it.IsSkipped
	}
	var out []string
	for day, all := range skipped {
		if all {
			out = append(out, day)
		}
	}
	sort.Strings(out)
	return out
}
