package persist

import (
	"strings"
	"testing"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "flowstate_snapshots", false},
		{"leading underscore", "_tmp", false},
		{"digits", "t123", false},
		{"empty", "", true},
		{"leading digit", "1table", true},
		{"injection", "x; DROP TABLE y", true},
		{"hyphen", "flow-state", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	pg := &database{backend: schema.PostgreSQLBackend}
	assert.Equal(t, "$2", pg.ph(2))
	assert.Equal(t, "$1, $2, $3", pg.phList(3))

	my := &database{backend: schema.MySQLBackend}
	assert.Equal(t, "?", my.ph(5))
	assert.Equal(t, "?, ?", my.phList(2))
}

func TestUpsertQuery(t *testing.T) {
	cols := []string{"user_id", "timezone"}

	lite := (&database{backend: schema.SQLiteBackend}).upsertQuery(settingsTable, "user_id", cols)
	assert.True(t, strings.HasPrefix(lite, "INSERT OR REPLACE INTO"))

	my := (&database{backend: schema.MySQLBackend}).upsertQuery(settingsTable, "user_id", cols)
	assert.Contains(t, my, "AS new")
	assert.Contains(t, my, "ON DUPLICATE KEY UPDATE timezone = new.timezone")
	assert.NotContains(t, my, "user_id = new.user_id")

	pg := (&database{backend: schema.PostgreSQLBackend}).upsertQuery(settingsTable, "user_id", cols)
	assert.Contains(t, pg, "VALUES ($1, $2)")
	assert.Contains(t, pg, "ON CONFLICT (user_id) DO UPDATE SET timezone = EXCLUDED.timezone")
}

func TestCreateTableQuery(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		for _, table := range allTables {
			q := createTableQuery(table, backend)
			assert.Contains(t, q, "CREATE TABLE IF NOT EXISTS")
			assert.Contains(t, q, quoteTableName(table, backend))
		}
	}
	assert.Contains(t, createTableQuery(snapshotsTable, schema.PostgreSQLBackend), "TIMESTAMPTZ")
	assert.Contains(t, createTableQuery(snapshotsTable, schema.MySQLBackend), "DATETIME(6)")
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2024, 6, 7, 13, 0, 0, 0, time.FixedZone("CDT", -5*3600))
	assert.Equal(t, "2024-06-07T18:00:00Z", formatTime(at, schema.SQLiteBackend))
	assert.Equal(t, at.UTC(), formatTime(at, schema.PostgreSQLBackend))
	assert.Nil(t, formatNullableTime(time.Time{}, schema.SQLiteBackend))
}

func TestTimeScanner(t *testing.T) {
	want := time.Date(2024, 6, 7, 18, 0, 0, 0, time.UTC)
	inputs := []any{want, "2024-06-07T18:00:00Z", []byte("2024-06-07 18:00:00"), "2024-06-07 18:00:00.000000"}
	for _, in := range inputs {
		var ts timeScanner
		require.NoError(t, ts.Scan(in))
		assert.True(t, ts.Valid)
		assert.True(t, want.Equal(ts.Time), "%v", in)
	}

	var ts timeScanner
	require.NoError(t, ts.Scan(nil))
	assert.False(t, ts.Valid)
	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}

func TestDatabaseDisabled(t *testing.T) {
	var d *database
	assert.True(t, d.disabled())
	assert.NoError(t, d.close())
	assert.True(t, (&database{backend: schema.NoneBackend}).disabled())
}
