// Package schema has models, enums and defaults shared by all parts of flowstate.
package schema

import "time"

// Event is a single calendar meeting. End is never before Start once bucketed.
type Event struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the event, or zero when End precedes Start.
func (e Event) Duration() time.Duration {
	if e.End.Before(e.Start) {
		return 0
	}
	return e.End.Sub(e.Start)
}

// CommitPoint is the authoring instant of one commit.
type CommitPoint struct {
	Timestamp time.Time `json:"timestamp"`
}

// CommitBatch is what a commit source returns for one lookback window.
type CommitBatch struct {
	Points               []CommitPoint
	RepositoriesAnalyzed int
}

// Heatmap is a 7x24 grid of commit activity. Row 0 is Sunday, column is hour of day.
type Heatmap [DaysPerWeek][HoursPerDay]int

// PeakWindow identifies the heatmap cell with the most activity.
type PeakWindow struct {
	Day  int `json:"peak_day"`
	Hour int `json:"peak_hour"`
}

// CalendarMetrics is the result of the calendar path of a sync.
type CalendarMetrics struct {
	WeeklyMeetingHours float64        `json:"weekly_meeting_hours"`
	FragmentationScore int            `json:"fragmentation_score"`
	MeetingDebtHours   float64        `json:"meeting_debt_hours"`
	MeetingsPerDay     map[string]int `json:"meetings_per_day"`
	EventCount         int            `json:"event_count"`
}

// CommitMetrics is the result of the commit path of a sync.
type CommitMetrics struct {
	Heatmap              Heatmap    `json:"commit_heatmap"`
	Peak                 PeakWindow `json:"peak"`
	TotalCommits         int        `json:"total_commits"`
	RepositoriesAnalyzed int        `json:"repositories_analyzed"`
}

// WeeklySnapshot is the persisted aggregate for one user. It is overwritten on every sync.
type WeeklySnapshot struct {
	UserID               string         `json:"user_id"`
	HasCalendar          bool           `json:"has_calendar"`
	WeeklyMeetingHours   float64        `json:"weekly_meeting_hours"`
	FragmentationScore   int            `json:"fragmentation_score"`
	MeetingDebtHours     float64        `json:"meeting_debt_hours"`
	MeetingsPerDay       map[string]int `json:"meetings_per_day"`
	HasCommits           bool           `json:"has_commits"`
	CommitHeatmap        Heatmap        `json:"commit_heatmap"`
	PeakHour             int            `json:"peak_hour"`
	PeakDay              int            `json:"peak_day"`
	TotalCommits         int            `json:"total_commits"`
	RepositoriesAnalyzed int            `json:"repositories_analyzed"`
	CalendarSyncedAt     time.Time      `json:"calendar_synced_at,omitzero"`
	CommitsSyncedAt      time.Time      `json:"commits_synced_at,omitzero"`
	LastSyncedAt         time.Time      `json:"last_synced_at"`
}

// ApplyCalendar copies the calendar path results onto the snapshot.
func (s *WeeklySnapshot) ApplyCalendar(m CalendarMetrics, at time.Time) {
	s.HasCalendar = true
	s.WeeklyMeetingHours = m.WeeklyMeetingHours
	s.FragmentationScore = m.FragmentationScore
	s.MeetingDebtHours = m.MeetingDebtHours
	s.MeetingsPerDay = m.MeetingsPerDay
	s.CalendarSyncedAt = at
	s.LastSyncedAt = at
}

// ApplyCommits copies the commit path results onto the snapshot.
func (s *WeeklySnapshot) ApplyCommits(m CommitMetrics, at time.Time) {
	s.HasCommits = true
	s.CommitHeatmap = m.Heatmap
	s.PeakHour = m.Peak.Hour
	s.PeakDay = m.Peak.Day
	s.TotalCommits = m.TotalCommits
	s.RepositoriesAnalyzed = m.RepositoriesAnalyzed
	s.CommitsSyncedAt = at
	s.LastSyncedAt = at
}

// UserSettings holds per-user preferences.
type UserSettings struct {
	UserID          string    `json:"user_id" yaml:"user_id"`
	TargetDeepHours float64   `json:"target_deep_hours" yaml:"target_deep_hours"` // daily deep work goal
	Timezone        string    `json:"timezone" yaml:"timezone"`
	EmailReports    bool      `json:"email_reports" yaml:"email_reports"`
	UpdatedAt       time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// DefaultUserSettings returns the settings used when a user has not saved any.
func DefaultUserSettings(userID string) UserSettings {
	return UserSettings{
		UserID:          userID,
		TargetDeepHours: DefaultTargetDeepHours,
		Timezone:        DefaultTimezone,
		EmailReports:    DefaultEmailReports,
	}
}

// SettingsUpdate is a partial change of UserSettings. Nil fields are left unchanged.
type SettingsUpdate struct {
	TargetDeepHours *float64 `json:"target_deep_hours,omitempty"`
	Timezone        *string  `json:"timezone,omitempty"`
	EmailReports    *bool    `json:"email_reports,omitempty"`
}

// Apply returns s with the non-nil fields of u copied over.
func (u SettingsUpdate) Apply(s UserSettings) UserSettings {
	if u.TargetDeepHours != nil {
		s.TargetDeepHours = *u.TargetDeepHours
	}
	if u.Timezone != nil {
		s.Timezone = *u.Timezone
	}
	if u.EmailReports != nil {
		s.EmailReports = *u.EmailReports
	}
	return s
}

// Report is the weekly report payload. It is derived on demand and never persisted.
type Report struct {
	UserID               string         `json:"user_id" yaml:"user_id"`
	DeepWorkHours        float64        `json:"deep_work_hours" yaml:"deep_work_hours"`
	TargetWeeklyHours    float64        `json:"target_weekly_hours" yaml:"target_weekly_hours"`
	MeetingHours         float64        `json:"meeting_hours" yaml:"meeting_hours"`
	FragmentationScore   int            `json:"fragmentation_score" yaml:"fragmentation_score"`
	MeetingDebtHours     float64        `json:"meeting_debt_hours" yaml:"meeting_debt_hours"`
	MeetingsPerDay       map[string]int `json:"meetings_per_day" yaml:"meetings_per_day"`
	HasCommits           bool           `json:"has_commits" yaml:"has_commits"`
	CommitHeatmap        Heatmap        `json:"commit_heatmap" yaml:"commit_heatmap"`
	PeakHour             int            `json:"peak_hour" yaml:"peak_hour"`
	PeakDay              int            `json:"peak_day" yaml:"peak_day"`
	PeakLabel            string         `json:"peak_label" yaml:"peak_label"`
	TotalCommits         int            `json:"total_commits" yaml:"total_commits"`
	RepositoriesAnalyzed int            `json:"repositories_analyzed" yaml:"repositories_analyzed"`
	LastSyncedAt         time.Time      `json:"last_synced_at,omitzero" yaml:"last_synced_at,omitempty"`
	Suggestions          []string       `json:"suggestions" yaml:"suggestions"`
}

// TrendPoint is one week of a demo trend series.
type TrendPoint struct {
	Week  string  `json:"week"`
	Value float64 `json:"value"`
}

// DemoData is the fixed showcase payload served without any synced data.
type DemoData struct {
	Report             Report       `json:"report"`
	FragmentationTrend []TrendPoint `json:"fragmentation_trend"`
	DeepWorkTrend      []TrendPoint `json:"deep_work_trend"`
}
