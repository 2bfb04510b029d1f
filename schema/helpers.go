package schema

import (
	"fmt"
	"time"
)

// HourLabel formats an hour of day on a 12-hour clock (0 -> 12am, 13 -> 1pm).
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12am"
	case hour < 12:
		return fmt.Sprintf("%dam", hour)
	case hour == 12:
		return "12pm"
	default:
		return fmt.Sprintf("%dpm", hour-12)
	}
}

// DayName returns the display name of a weekday index, or an empty string when out of range.
func DayName(day int) string {
	if day < 0 || day >= DaysPerWeek {
		return ""
	}
	return DayNames[day]
}

// NewMeetingsPerDay returns a weekday map with every key present and zeroed.
func NewMeetingsPerDay() map[string]int {
	m := make(map[string]int, DaysPerWeek)
	for _, k := range WeekdayKeys {
		m[k] = 0
	}
	return m
}

// WeekWindow returns the analysis week containing now: Sunday 00:00 in loc through the following Sunday.
func WeekWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day()-int(local.Weekday()), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, DaysPerWeek)
}

// LookbackWindow returns the commit window ending at now.
func LookbackWindow(now time.Time, days int) (time.Time, time.Time) {
	return now.Add(-time.Duration(days) * 24 * time.Hour), now
}
