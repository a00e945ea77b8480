package mealplan

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeTime converts a slot label to 24-hour "HH:MM".
//
// Accepted forms: "8:00", "08:00", "08:00:00", "8:00 am", "08:00PM".
func NormalizeTime(label string) (string, error) {
	s := strings.ToUpper(strings.Join(strings.Fields(label), ""))
	if s == "" {
		return "", invalid("time_slot", "is required")
	}

	meridiem := ""
	if strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM") {
		meridiem = s[len(s)-2:]
		s = s[:len(s)-2]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", invalid("time_slot", "%q is not a time of day", label)
	}
	if len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return "", invalid("time_slot", "%q is not a time of day", label)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", invalid("time_slot", "%q has a bad hour", label)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", invalid("time_slot", "%q has a bad minute", label)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || len(parts[2]) != 2 || sec < 0 || sec > 59 {
			return "", invalid("time_slot", "%q has a bad second", label)
		}
	}

	switch meridiem {
	case "":
		if hour < 0 || hour > 23 {
			return "", invalid("time_slot", "%q has a bad hour", label)
		}
	default:
		if hour < 1 || hour > 12 {
			return "", invalid("time_slot", "%q has a bad hour", label)
		}
		if meridiem == "AM" && hour == 12 {
			hour = 0
		} else if meridiem == "PM" && hour != 12 {
			hour += 12
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// DisplayTime renders a normalized "HH:MM" as "h:MM AM/PM". Labels that do
// not normalize are returned unchanged.
func DisplayTime(slot string) string {
	norm, err := NormalizeTime(slot)
	if err != nil {
		return slot
	}
	hour, _ := strconv.Atoi(norm[:2])
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%s %s", hour, norm[3:], suffix)
}
