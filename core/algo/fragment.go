package algo

import (
	"math"
	"time"

	"github.com/huangsam/flowstate/schema"
)

// DayStats holds the fragmentation counters of one day.
type DayStats struct {
	Key          DayKey  `json:"-"`
	Date         string  `json:"date"`
	Meetings     int     `json:"meetings"`
	Isolated     int     `json:"isolated"`
	Broken       int     `json:"broken"`
	Contribution float64 `json:"contribution"`
	DebtMinutes  float64 `json:"debt_minutes"`
}

// RoundTo rounds v half away from zero to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// minutesBetween returns the signed gap in minutes from a to b.
func minutesBetween(a, b time.Time) float64 {
	return b.Sub(a).Minutes()
}

// gapsAround returns the free minutes before and after the i-th event.
// A missing neighbor counts as the open boundary.
func gapsAround(events []schema.Event, i int, openBoundary float64) (before, after float64) {
	before, after = openBoundary, openBoundary
	if i > 0 {
		before = minutesBetween(events[i-1].End, events[i].Start)
	}
	if i < len(events)-1 {
		after = minutesBetween(events[i].End, events[i+1].Start)
	}
	return before, after
}

// AnalyzeDay walks one day's sorted events and computes its counters.
// An event can be both isolated and broken; each counter is incremented independently.
func AnalyzeDay(key DayKey, events []schema.Event, p schema.FlowParams) DayStats {
	stats := DayStats{Key: key, Date: key.String(), Meetings: len(events)}

	for i := range events {
		before, after := gapsAround(events, i, p.OpenBoundaryMinutes)
		if before > p.IsolatedGapMinutes && after > p.IsolatedGapMinutes {
			stats.Isolated++
		}
		if before > p.BrokenGapMinutes && after > p.BrokenGapMinutes {
			stats.Broken++
		}

		// first and last events of a day never accrue debt
		if i > 0 && i < len(events)-1 && before+after > p.DebtGapMinutes {
			stats.DebtMinutes += p.RecoveryMinutes
		}
	}

	stats.Contribution = float64(stats.Isolated)*p.IsolatedWeight + float64(stats.Broken)*p.BrokenWeight
	return stats
}

// AnalyzeDays returns the counters of every bucketed day in chronological order.
func AnalyzeDays(b DayBuckets, p schema.FlowParams) []DayStats {
	out := make([]DayStats, 0, b.Len())
	for _, k := range b.keys {
		out = append(out, AnalyzeDay(k, b.days[k], p))
	}
	return out
}

// FragmentationScore averages the daily contributions over days with meetings,
// scales by the multiplier, and caps the result. Zero meeting days score 0.
func FragmentationScore(days []DayStats, p schema.FlowParams) int {
	if len(days) == 0 {
		return 0
	}
	total := 0.0
	for _, d := range days {
		total += d.Contribution
	}
	score := int(math.Round(total / float64(len(days)) * p.ScoreMultiplier))
	return max(0, min(p.MaxFragmentationScore, score))
}

// MeetingDebtHours converts the accrued recovery minutes of all days into hours at one decimal.
func MeetingDebtHours(days []DayStats) float64 {
	minutes := 0.0
	for _, d := range days {
		minutes += d.DebtMinutes
	}
	return RoundTo(minutes/60, 1)
}

// WeeklyMeetingHours sums event durations in hours at one decimal.
func WeeklyMeetingHours(b DayBuckets) float64 {
	minutes := 0.0
	for _, k := range b.keys {
		for _, e := range b.days[k] {
			minutes += e.Duration().Minutes()
		}
	}
	return RoundTo(minutes/60, 1)
}

// MeetingsPerDay counts events by the weekday of their start in loc.
func MeetingsPerDay(b DayBuckets, loc *time.Location) map[string]int {
	if loc == nil {
		loc = time.UTC
	}
	counts := schema.NewMeetingsPerDay()
	for _, evs := range b.days {
		for _, e := range evs {
			counts[schema.WeekdayKeys[e.Start.In(loc).Weekday()]]++
		}
	}
	return counts
}

// CalendarMetrics runs the whole calendar path over an already bucketed week.
func CalendarMetrics(b DayBuckets, loc *time.Location, p schema.FlowParams) schema.CalendarMetrics {
	days := AnalyzeDays(b, p)
	return schema.CalendarMetrics{
		WeeklyMeetingHours: WeeklyMeetingHours(b),
		FragmentationScore: FragmentationScore(days, p),
		MeetingDebtHours:   MeetingDebtHours(days),
		MeetingsPerDay:     MeetingsPerDay(b, loc),
		EventCount:         b.Total(),
	}
}
