package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input that passes validation; cases mutate a copy.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		User:            "alice",
		Timezone:        "America/Chicago",
		TargetDeepHours: 4,
		LookbackDays:    90,
		Workers:         4,
		Output:          "text",
		Precision:       1,
		Color:           "yes",
		StoreBackend:    "sqlite",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid timezone", mutate: func(in *ConfigRawInput) { in.Timezone = "Mars/Olympus" }, expectError: "invalid timezone"},
		{name: "zero target", mutate: func(in *ConfigRawInput) { in.TargetDeepHours = 0 }, expectError: "target-deep-hours"},
		{name: "target above a day", mutate: func(in *ConfigRawInput) { in.TargetDeepHours = 25 }, expectError: "target-deep-hours"},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: "workers"},
		{name: "invalid precision", mutate: func(in *ConfigRawInput) { in.Precision = 3 }, expectError: "precision"},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: "invalid output format"},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: "--color"},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.StoreBackend = "redis" }, expectError: "invalid store backend"},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.StoreBackend = "mysql" }, expectError: "store-db-connect is required"},
		{name: "invalid log format", mutate: func(in *ConfigRawInput) { in.LogFormat = "xml" }, expectError: "invalid log format"},
		{name: "zero lookback", mutate: func(in *ConfigRawInput) { in.LookbackDays = 0 }, expectError: "lookback-days"},
		{name: "invalid sync timeout", mutate: func(in *ConfigRawInput) { in.SyncTimeout = "soon" }, expectError: "sync-timeout"},
		{name: "negative sync timeout", mutate: func(in *ConfigRawInput) { in.SyncTimeout = "-5s" }, expectError: "sync-timeout"},
		{name: "invalid schedule", mutate: func(in *ConfigRawInput) { in.Schedule = "every tuesday" }, expectError: "invalid schedule"},
		{name: "invalid api tokens", mutate: func(in *ConfigRawInput) { in.APITokens = "abc" }, expectError: "api-tokens"},
		{
			name: "negative threshold",
			mutate: func(in *ConfigRawInput) {
				v := -1.0
				in.Thresholds.RecoveryMinutes = &v
			},
			expectError: "recovery_minutes",
		},
		{
			name: "alert above cap",
			mutate: func(in *ConfigRawInput) {
				v := 150
				in.Thresholds.FragmentationAlert = &v
			},
			expectError: "fragmentation_alert",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidate_Values(t *testing.T) {
	input := validInput()
	input.Repos = " ./a , ,b"
	input.RepoRoot = "src"
	input.SyncTimeout = "30s"
	input.APITokens = "t1=alice, t2=bob"
	input.Schedule = "0 8 * * 1"
	input.Output = "JSON"
	recovery := 30.0
	input.Thresholds.RecoveryMinutes = &recovery

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "alice", cfg.UserID)
	assert.Equal(t, "America/Chicago", cfg.Location.String())
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, schema.ConsoleLog, cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.SyncTimeout)
	assert.Equal(t, schema.DefaultMaxRepos, cfg.MaxRepos)
	assert.Equal(t, DefaultListenAddr, cfg.Listen)
	assert.Equal(t, map[string]string{"t1": "alice", "t2": "bob"}, cfg.APITokens)

	require.Len(t, cfg.Repos, 2)
	for _, r := range cfg.Repos {
		assert.True(t, filepath.IsAbs(r))
	}
	assert.Equal(t, "b", filepath.Base(cfg.Repos[1]))
	assert.True(t, filepath.IsAbs(cfg.RepoRoot))

	want := schema.DefaultFlowParams()
	want.RecoveryMinutes = 30
	assert.Equal(t, want, cfg.Params)
}

func TestProcessAndValidate_DefaultTimeout(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))
	assert.Equal(t, DefaultSyncTimeout, cfg.SyncTimeout)
	assert.Equal(t, schema.DefaultFlowParams(), cfg.Params)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/flowstate", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/flowstate", true},
		{"mysql missing db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=postgres dbname=flowstate", false},
		{"postgres missing host", schema.PostgreSQLBackend, "port=5432 dbname=flowstate", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSettings(t *testing.T) {
	ok := schema.DefaultUserSettings("alice")
	assert.NoError(t, ValidateSettings(ok))

	noUser := ok
	noUser.UserID = " "
	assert.Error(t, ValidateSettings(noUser))

	zero := ok
	zero.TargetDeepHours = 0
	assert.Error(t, ValidateSettings(zero))

	badTZ := ok
	badTZ.Timezone = "Nowhere/Town"
	assert.Error(t, ValidateSettings(badTZ))
}

func TestParseAPITokens(t *testing.T) {
	got, err := ParseAPITokens("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ParseAPITokens("a=alice,b=bob,")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "alice", "b": "bob"}, got)

	_, err = ParseAPITokens("a=")
	assert.Error(t, err)
	_, err = ParseAPITokens("=alice")
	assert.Error(t, err)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Repos: []string{"/a"}, APITokens: map[string]string{"t": "alice"}}
	clone := cfg.Clone()
	clone.Repos[0] = "/b"
	clone.APITokens["t"] = "bob"
	assert.Equal(t, "/a", cfg.Repos[0])
	assert.Equal(t, "alice", cfg.APITokens["t"])
}

func TestConfigDefaultSettings(t *testing.T) {
	cfg := &Config{Timezone: "UTC", TargetDeepHours: 5}
	s := cfg.DefaultSettings("alice")
	assert.Equal(t, "alice", s.UserID)
	assert.Equal(t, "UTC", s.Timezone)
	assert.Equal(t, 5.0, s.TargetDeepHours)
	assert.True(t, s.EmailReports)

	empty := (&Config{}).DefaultSettings("bob")
	assert.Equal(t, schema.DefaultUserSettings("bob"), empty)
}
