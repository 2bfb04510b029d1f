package contract

import (
	"fmt"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/robfig/cron/v3"
)

// Default values for configuration.
const (
	DefaultSyncTimeout = 60 * time.Second
	DefaultPrecision   = 1
	DefaultListenAddr  = ":8080"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ThresholdsRawInput holds overrides of the engine heuristics from the YAML config file.
type ThresholdsRawInput struct {
	IsolatedGapMinutes    *float64 `mapstructure:"isolated_gap_minutes"`
	BrokenGapMinutes      *float64 `mapstructure:"broken_gap_minutes"`
	OpenBoundaryMinutes   *float64 `mapstructure:"open_boundary_minutes"`
	IsolatedWeight        *float64 `mapstructure:"isolated_weight"`
	BrokenWeight          *float64 `mapstructure:"broken_weight"`
	ScoreMultiplier       *float64 `mapstructure:"score_multiplier"`
	DebtGapMinutes        *float64 `mapstructure:"debt_gap_minutes"`
	RecoveryMinutes       *float64 `mapstructure:"recovery_minutes"`
	WorkWeekHours         *float64 `mapstructure:"work_week_hours"`
	OverheadHours         *float64 `mapstructure:"overhead_hours"`
	FragmentationAlert    *int     `mapstructure:"fragmentation_alert"`
	DebtAlertHours        *float64 `mapstructure:"debt_alert_hours"`
	MaxFragmentationScore *int     `mapstructure:"max_fragmentation_score"`
}

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	UserID          string
	Timezone        string
	Location        *time.Location
	TargetDeepHours float64

	CalendarICS  string // file path or http(s) URL
	Repos        []string
	RepoRoot     string
	Author       string
	LookbackDays int
	MaxRepos     int
	SyncTimeout  time.Duration
	Workers      int

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Listen    string
	APITokens map[string]string // bearer token -> user
	Schedule  string

	OTelEndpoint string
	OTelInsecure bool
	LogFormat    schema.LogFormat

	// Params are the engine heuristics after config overrides.
	Params schema.FlowParams
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	User            string  `mapstructure:"user"`
	Timezone        string  `mapstructure:"timezone"`
	TargetDeepHours float64 `mapstructure:"target-deep-hours"`

	CalendarICS  string `mapstructure:"calendar-ics"`
	Repos        string `mapstructure:"repos"`
	RepoRoot     string `mapstructure:"repo-root"`
	Author       string `mapstructure:"author"`
	LookbackDays int    `mapstructure:"lookback-days"`
	MaxRepos     int    `mapstructure:"max-repos"`
	SyncTimeout  string `mapstructure:"sync-timeout"`
	Workers      int    `mapstructure:"workers"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	Listen    string `mapstructure:"listen"`
	APITokens string `mapstructure:"api-tokens"`
	Schedule  string `mapstructure:"schedule"`

	OTelEndpoint string `mapstructure:"otel-endpoint"`
	OTelInsecure bool   `mapstructure:"otel-insecure"`
	LogFormat    string `mapstructure:"log-format"`

	// --- Heuristic overrides from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Repos = slices.Clone(c.Repos)
	clone.APITokens = maps.Clone(c.APITokens)
	return &clone
}

// DefaultSettings returns the settings used for a user who has not saved any,
// seeded from the configured timezone and target.
func (c *Config) DefaultSettings(userID string) schema.UserSettings {
	s := schema.DefaultUserSettings(userID)
	if c.Timezone != "" {
		s.Timezone = c.Timezone
	}
	if c.TargetDeepHours > 0 {
		s.TargetDeepHours = c.TargetDeepHours
	}
	return s
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSources(cfg, input); err != nil {
		return err
	}
	if err := processServeInputs(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateSettings checks user supplied settings before they are persisted.
func ValidateSettings(s schema.UserSettings) error {
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("settings require a user")
	}
	if s.TargetDeepHours <= 0 || s.TargetDeepHours > 24 {
		return fmt.Errorf("target deep hours must be greater than 0 and at most 24 (received %g)", s.TargetDeepHours)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return nil
}

// validateSimpleInputs processes and validates the identity, output, and store fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.UserID = strings.TrimSpace(input.User)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Timezone Validation ---
	cfg.Timezone = input.Timezone
	if cfg.Timezone == "" {
		cfg.Timezone = schema.DefaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", input.Timezone, err)
	}
	cfg.Location = loc

	// --- 2. Target Validation ---
	if input.TargetDeepHours <= 0 || input.TargetDeepHours > 24 {
		return fmt.Errorf("target-deep-hours must be greater than 0 and at most 24 (received %g)", input.TargetDeepHours)
	}
	cfg.TargetDeepHours = input.TargetDeepHours

	// --- 3. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml", input.Output)
	}

	// --- 5. Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- 6. Log Format Validation ---
	cfg.LogFormat = schema.LogFormat(strings.ToLower(input.LogFormat))
	if cfg.LogFormat == "" {
		cfg.LogFormat = schema.ConsoleLog
	}
	if _, ok := schema.ValidLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}

	return nil
}

// processSources handles the calendar and repository inputs of a sync.
func processSources(cfg *Config, input *ConfigRawInput) error {
	cfg.CalendarICS = strings.TrimSpace(input.CalendarICS)
	cfg.Author = strings.TrimSpace(input.Author)

	cfg.Repos = nil
	for r := range strings.SplitSeq(input.Repos, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			return fmt.Errorf("invalid repository path %q: %w", r, err)
		}
		cfg.Repos = append(cfg.Repos, abs)
	}

	cfg.RepoRoot = ""
	if root := strings.TrimSpace(input.RepoRoot); root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("invalid repo-root %q: %w", root, err)
		}
		cfg.RepoRoot = abs
	}

	if input.LookbackDays <= 0 {
		return fmt.Errorf("lookback-days must be greater than 0 (received %d)", input.LookbackDays)
	}
	cfg.LookbackDays = input.LookbackDays

	cfg.MaxRepos = input.MaxRepos
	if cfg.MaxRepos <= 0 {
		cfg.MaxRepos = schema.DefaultMaxRepos
	}

	cfg.SyncTimeout = DefaultSyncTimeout
	if input.SyncTimeout != "" {
		d, err := time.ParseDuration(input.SyncTimeout)
		if err != nil {
			return fmt.Errorf("invalid sync-timeout '%s': %w", input.SyncTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("sync-timeout must be positive (received %s)", d)
		}
		cfg.SyncTimeout = d
	}

	return nil
}

// processServeInputs handles the HTTP, scheduler, and telemetry inputs.
func processServeInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Listen = input.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListenAddr
	}

	tokens, err := ParseAPITokens(input.APITokens)
	if err != nil {
		return fmt.Errorf("invalid api-tokens: %w", err)
	}
	cfg.APITokens = tokens

	cfg.Schedule = strings.TrimSpace(input.Schedule)
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			return fmt.Errorf("invalid schedule '%s': %w", cfg.Schedule, err)
		}
	}

	cfg.OTelEndpoint = strings.TrimSpace(input.OTelEndpoint)
	cfg.OTelInsecure = input.OTelInsecure
	return nil
}

// processThresholds applies heuristic overrides from the config file onto the defaults.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	p := schema.DefaultFlowParams()
	t := input.Thresholds

	floats := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"isolated_gap_minutes", t.IsolatedGapMinutes, &p.IsolatedGapMinutes},
		{"broken_gap_minutes", t.BrokenGapMinutes, &p.BrokenGapMinutes},
		{"open_boundary_minutes", t.OpenBoundaryMinutes, &p.OpenBoundaryMinutes},
		{"isolated_weight", t.IsolatedWeight, &p.IsolatedWeight},
		{"broken_weight", t.BrokenWeight, &p.BrokenWeight},
		{"score_multiplier", t.ScoreMultiplier, &p.ScoreMultiplier},
		{"debt_gap_minutes", t.DebtGapMinutes, &p.DebtGapMinutes},
		{"recovery_minutes", t.RecoveryMinutes, &p.RecoveryMinutes},
		{"work_week_hours", t.WorkWeekHours, &p.WorkWeekHours},
		{"overhead_hours", t.OverheadHours, &p.OverheadHours},
		{"debt_alert_hours", t.DebtAlertHours, &p.DebtAlertHours},
	}
	for _, f := range floats {
		if f.src == nil {
			continue
		}
		if *f.src < 0 {
			return fmt.Errorf("threshold %s must not be negative (received %g)", f.name, *f.src)
		}
		*f.dst = *f.src
	}

	if t.FragmentationAlert != nil {
		p.FragmentationAlert = *t.FragmentationAlert
	}
	if t.MaxFragmentationScore != nil {
		p.MaxFragmentationScore = *t.MaxFragmentationScore
	}
	if p.MaxFragmentationScore <= 0 {
		return fmt.Errorf("threshold max_fragmentation_score must be positive (received %d)", p.MaxFragmentationScore)
	}
	if p.FragmentationAlert < 0 || p.FragmentationAlert > p.MaxFragmentationScore {
		return fmt.Errorf("threshold fragmentation_alert must be between 0 and %d (received %d)", p.MaxFragmentationScore, p.FragmentationAlert)
	}

	cfg.Params = p
	return nil
}

// ParseAPITokens parses a string like "tok1=alice,tok2=bob" into a token to user map.
func ParseAPITokens(s string) (map[string]string, error) {
	tokens := make(map[string]string)
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		token, user, ok := strings.Cut(part, "=")
		token, user = strings.TrimSpace(token), strings.TrimSpace(user)
		if !ok || token == "" || user == "" {
			return nil, fmt.Errorf("invalid token format '%s', expected 'token=user'", part)
		}
		tokens[token] = user
	}
	return tokens, nil
}
