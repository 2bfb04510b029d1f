package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string

	// SyncScope represents which collaborator paths a sync refreshes.
	SyncScope string

	// SyncStatus represents the final state of a sync run.
	SyncStatus string

	// LogFormat represents the structured log encoding used by long-running commands.
	LogFormat string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All sync scopes supported.
const (
	ScopeAll      SyncScope = "all" // default
	ScopeCalendar SyncScope = "calendar"
	ScopeCommits  SyncScope = "commits"
)

// All sync statuses recorded for a run.
const (
	SyncRunning   SyncStatus = "running"
	SyncSucceeded SyncStatus = "succeeded"
	SyncFailed    SyncStatus = "failed"
)

// All log formats supported.
const (
	ConsoleLog LogFormat = "console" // default
	JSONLog    LogFormat = "json"
)

// ValidOutputModes lists all valid output modes for reports.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
	YAMLOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSyncScopes lists all valid sync scopes.
var ValidSyncScopes = map[SyncScope]struct{}{
	ScopeAll:      {},
	ScopeCalendar: {},
	ScopeCommits:  {},
}

// ValidLogFormats lists all valid log formats.
var ValidLogFormats = map[LogFormat]struct{}{
	ConsoleLog: {},
	JSONLog:    {},
}

// Defaults for per-user settings.
const (
	DefaultTargetDeepHours = 4.0
	DefaultTimezone        = "America/Chicago"
	DefaultEmailReports    = true
)

// Defaults for the commit path.
const (
	DefaultLookbackDays      = 90
	DefaultMaxRepos          = 20
	DefaultMaxCommitsPerRepo = 100
)

// DefaultPeakHour is reported when no commit data has been synced yet.
const DefaultPeakHour = 10

// Grid dimensions of the commit heatmap.
const (
	DaysPerWeek  = 7
	HoursPerDay  = 24
	WorkDaysWeek = 5
)

// WeekdayKeys are the persisted keys of MeetingsPerDay, indexed by time.Weekday.
var WeekdayKeys = [DaysPerWeek]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// DayNames are the display names of weekdays, indexed by time.Weekday.
var DayNames = [DaysPerWeek]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// FlowParams holds the tuned heuristics of the flow analytics engine.
type FlowParams struct {
	IsolatedGapMinutes    float64 `json:"isolated_gap_minutes"`    // both gaps must exceed this to count as isolated
	BrokenGapMinutes      float64 `json:"broken_gap_minutes"`      // both gaps must exceed this to count as broken flow
	OpenBoundaryMinutes   float64 `json:"open_boundary_minutes"`   // gap assumed when there is no neighbor
	IsolatedWeight        float64 `json:"isolated_weight"`         // contribution of one isolated meeting
	BrokenWeight          float64 `json:"broken_weight"`           // contribution of one broken flow block
	ScoreMultiplier       float64 `json:"score_multiplier"`        // applied to the mean daily contribution
	DebtGapMinutes        float64 `json:"debt_gap_minutes"`        // gapBefore+gapAfter must exceed this
	RecoveryMinutes       float64 `json:"recovery_minutes"`        // cost of one interruption
	WorkWeekHours         float64 `json:"work_week_hours"`         // nominal week used for deep work
	OverheadHours         float64 `json:"overhead_hours"`          // unavoidable weekly overhead
	FragmentationAlert    int     `json:"fragmentation_alert"`     // rule 1 threshold
	DebtAlertHours        float64 `json:"debt_alert_hours"`        // rule 2 threshold
	MaxFragmentationScore int     `json:"max_fragmentation_score"` // score cap
}

// DefaultFlowParams returns the documented defaults of the engine heuristics.
func DefaultFlowParams() FlowParams {
	return FlowParams{
		IsolatedGapMinutes:    90,
		BrokenGapMinutes:      120,
		OpenBoundaryMinutes:   120,
		IsolatedWeight:        1.5,
		BrokenWeight:          2,
		ScoreMultiplier:       8,
		DebtGapMinutes:        120,
		RecoveryMinutes:       23,
		WorkWeekHours:         40,
		OverheadHours:         10,
		FragmentationAlert:    50,
		DebtAlertHours:        2,
		MaxFragmentationScore: 100,
	}
}
