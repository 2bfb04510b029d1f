package algo

import (
	"fmt"
	"strconv"

	"github.com/huangsam/flowstate/schema"
)

// SuggestionInput is everything the rules look at.
type SuggestionInput struct {
	FragmentationScore int
	MeetingDebtHours   float64
	HasPeak            bool
	Peak               schema.PeakWindow
	DeepWorkHours      float64
	TargetDailyHours   float64
}

// DeepWorkHours approximates weekly deep work as the nominal week minus meetings and fixed overhead.
func DeepWorkHours(meetingHours float64, p schema.FlowParams) float64 {
	return max(0, p.WorkWeekHours-meetingHours-p.OverheadHours)
}

// WeeklyTarget converts a daily deep work goal into a weekly one.
func WeeklyTarget(dailyHours float64) float64 {
	return dailyHours * schema.WorkDaysWeek
}

// Suggest evaluates the four rules in fixed order. Every satisfied rule contributes one line;
// no rule depends on another. An empty result is valid.
func Suggest(in SuggestionInput, p schema.FlowParams) []string {
	suggestions := []string{}

	if in.FragmentationScore > p.FragmentationAlert {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your fragmentation score is %d/100. Consolidate meetings to mornings to protect afternoon deep work.",
			in.FragmentationScore))
	}

	if in.MeetingDebtHours > p.DebtAlertHours {
		suggestions = append(suggestions, fmt.Sprintf(
			"You lost ~%sh this week to context switching. Consider async standups to reclaim 2–3h.",
			strconv.FormatFloat(in.MeetingDebtHours, 'f', -1, 64)))
	}

	if in.HasPeak {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your peak coding window is %s on %s. Block this as \"Deep Work — No Meetings\".",
			schema.HourLabel(in.Peak.Hour), schema.DayName(in.Peak.Day)))
	}

	target := WeeklyTarget(in.TargetDailyHours)
	if in.DeepWorkHours < target {
		suggestions = append(suggestions, fmt.Sprintf(
			"You got %.1fh of deep work vs your %.1fh goal. Reduce 1–2 recurring meetings.",
			in.DeepWorkHours, target))
	}

	return suggestions
}
