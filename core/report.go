package core

import (
	"fmt"
	"maps"

	"github.com/huangsam/flowstate/core/algo"
	"github.com/huangsam/flowstate/schema"
)

// BuildReport derives the weekly report from a stored snapshot. A nil snapshot
// yields the zero report of a user who never synced.
func BuildReport(snap *schema.WeeklySnapshot, settings schema.UserSettings, p schema.FlowParams) schema.Report {
	if snap == nil {
		snap = &schema.WeeklySnapshot{UserID: settings.UserID}
	}

	target := settings.TargetDeepHours
	if target <= 0 {
		target = schema.DefaultTargetDeepHours
	}

	meetingsPerDay := schema.NewMeetingsPerDay()
	maps.Copy(meetingsPerDay, snap.MeetingsPerDay)

	peak := schema.PeakWindow{Hour: schema.DefaultPeakHour}
	if snap.HasCommits {
		peak = schema.PeakWindow{Day: snap.PeakDay, Hour: snap.PeakHour}
	}

	deepWork := algo.DeepWorkHours(snap.WeeklyMeetingHours, p)
	report := schema.Report{
		UserID:               snap.UserID,
		DeepWorkHours:        deepWork,
		TargetWeeklyHours:    algo.WeeklyTarget(target),
		MeetingHours:         snap.WeeklyMeetingHours,
		FragmentationScore:   snap.FragmentationScore,
		MeetingDebtHours:     snap.MeetingDebtHours,
		MeetingsPerDay:       meetingsPerDay,
		HasCommits:           snap.HasCommits,
		CommitHeatmap:        snap.CommitHeatmap,
		PeakHour:             peak.Hour,
		PeakDay:              peak.Day,
		PeakLabel:            PeakLabel(peak),
		TotalCommits:         snap.TotalCommits,
		RepositoriesAnalyzed: snap.RepositoriesAnalyzed,
		LastSyncedAt:         snap.LastSyncedAt,
	}
	report.Suggestions = algo.Suggest(algo.SuggestionInput{
		FragmentationScore: snap.FragmentationScore,
		MeetingDebtHours:   snap.MeetingDebtHours,
		HasPeak:            snap.HasCommits,
		Peak:               peak,
		DeepWorkHours:      deepWork,
		TargetDailyHours:   target,
	}, p)
	return report
}

// PeakLabel renders a peak window like "Wednesday 10am".
func PeakLabel(peak schema.PeakWindow) string {
	return fmt.Sprintf("%s %s", schema.DayName(peak.Day), schema.HourLabel(peak.Hour))
}
