package core

import (
	"maps"

	"github.com/huangsam/flowstate/schema"
)

var demoHeatmap = schema.Heatmap{
	{0, 0, 0, 0, 0, 0, 0, 0, 5, 10, 15, 8, 5, 3, 10, 12, 8, 5, 3, 2, 1, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 10, 45, 80, 95, 70, 30, 20, 65, 75, 85, 60, 40, 20, 10, 5, 2, 0},
	{0, 0, 0, 0, 0, 0, 0, 8, 40, 75, 90, 65, 25, 15, 70, 80, 75, 55, 35, 15, 8, 3, 1, 0},
	{0, 0, 0, 0, 0, 0, 0, 12, 50, 85, 100, 72, 35, 22, 68, 78, 88, 65, 42, 22, 12, 6, 2, 0},
	{0, 0, 0, 0, 0, 0, 0, 9, 42, 78, 92, 68, 28, 18, 72, 82, 78, 58, 38, 18, 9, 4, 1, 0},
	{0, 0, 0, 0, 0, 0, 0, 6, 30, 55, 70, 50, 20, 10, 45, 55, 60, 40, 25, 10, 5, 2, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 8, 15, 20, 12, 8, 5, 12, 15, 10, 8, 5, 3, 1, 0, 0, 0},
}

var demoMeetingsPerDay = map[string]int{"sun": 0, "mon": 4, "tue": 3, "wed": 5, "thu": 3, "fri": 2, "sat": 0}

var demoSuggestions = []string{
	"Your best coding window is 10am–12pm on Wednesdays. Block this as 'Deep Work — No Meetings'.",
	"You lost ~3.2 hours this week to context switching. Try consolidating standups to 9am.",
	"You have 5 meetings on Wednesdays. Moving 2 to Mondays would add ~4 hours of deep work.",
	"Your fragmentation score increased 15 points from last week. Tuesdays look best for deep blocks.",
}

var trendWeeks = []string{"4 wks ago", "3 wks ago", "2 wks ago", "Last week", "This week"}

// DemoData returns the fixed showcase payload. It needs no user, store or source.
func DemoData() schema.DemoData {
	peak := schema.PeakWindow{Day: 3, Hour: 10}
	return schema.DemoData{
		Report: schema.Report{
			UserID:               "demo",
			DeepWorkHours:        18.5,
			TargetWeeklyHours:    schema.DefaultTargetDeepHours * schema.WorkDaysWeek,
			MeetingHours:         11.0,
			FragmentationScore:   67,
			MeetingDebtHours:     3.2,
			MeetingsPerDay:       maps.Clone(demoMeetingsPerDay),
			HasCommits:           true,
			CommitHeatmap:        demoHeatmap,
			PeakHour:             peak.Hour,
			PeakDay:              peak.Day,
			PeakLabel:            PeakLabel(peak),
			TotalCommits:         847,
			RepositoriesAnalyzed: 23,
			Suggestions:          append([]string(nil), demoSuggestions...),
		},
		FragmentationTrend: trend(52, 61, 58, 73, 67),
		DeepWorkTrend:      trend(22, 19, 21, 16, 18.5),
	}
}

func trend(values ...float64) []schema.TrendPoint {
	points := make([]schema.TrendPoint, len(values))
	for i, v := range values {
		points[i] = schema.TrendPoint{Week: trendWeeks[i], Value: v}
	}
	return points
}
