package persist

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for the flowstate stores.
const (
	snapshotsTable = "flowstate_snapshots"
	settingsTable  = "flowstate_settings"
	syncRunsTable  = "flowstate_sync_runs"
)

// allTables lists every table owned by the stores, in creation order.
var allTables = []string{snapshotsTable, settingsTable, syncRunsTable}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// database is a connection shared by all stores of one backend.
// A nil db means persistence is disabled and every operation is a no-op.
type database struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

// driverName returns the database/sql driver registered for a backend.
func driverName(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// openSQL opens and pings a raw connection for the backend.
func openSQL(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	name, err := driverName(backend)
	if err != nil {
		return nil, err
	}

	dsn := connStr
	if backend == schema.SQLiteBackend && dsn == "" {
		dsn = contract.GetDBFilePath()
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		switch backend {
		case schema.MySQLBackend:
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname?parseTime=true", err)
		case schema.PostgreSQLBackend:
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		default:
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dsn, err)
		}
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the database server is running and accessible", backend, err)
	}
	return db, nil
}

// openDatabase connects to the backend and creates the store tables.
func openDatabase(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*database, error) {
	if backend == schema.NoneBackend {
		return &database{backend: backend}, nil
	}

	db, err := openSQL(ctx, backend, connStr)
	if err != nil {
		return nil, err
	}

	d := &database{db: db, backend: backend, connStr: connStr}
	if err := d.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create store tables: %w", err)
	}
	return d, nil
}

// disabled reports whether persistence is turned off.
func (d *database) disabled() bool {
	return d == nil || d.db == nil || d.backend == schema.NoneBackend
}

// close closes the underlying connection.
func (d *database) close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// createTables creates every store table if it does not exist.
func (d *database) createTables(ctx context.Context) error {
	for _, table := range allTables {
		if _, err := d.db.ExecContext(ctx, createTableQuery(table, d.backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// table returns the quoted name of a store table.
func (d *database) table(name string) string {
	return quoteTableName(name, d.backend)
}

// ph returns the n-th (1-based) parameter placeholder for the backend.
func (d *database) ph(n int) string {
	if d.backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// phList returns n comma separated placeholders.
func (d *database) phList(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.ph(i + 1)
	}
	return strings.Join(parts, ", ")
}

// upsertQuery builds a dialect specific insert-or-replace keyed on key.
func (d *database) upsertQuery(table, key string, columns []string) string {
	quoted := d.table(table)
	cols := strings.Join(columns, ", ")
	values := d.phList(len(columns))

	var updates []string
	for _, c := range columns {
		if c == key {
			continue
		}
		switch d.backend {
		case schema.MySQLBackend:
			updates = append(updates, fmt.Sprintf("%s = new.%s", c, c))
		default:
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}

	switch d.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE %s`, quoted, cols, values, strings.Join(updates, ", "))
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (%s) DO UPDATE SET %s`, quoted, cols, values, key, strings.Join(updates, ", "))
	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, quoted, cols, values)
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t.UTC()
	}
}

// formatNullableTime stores the zero time as NULL.
func formatNullableTime(t time.Time, backend schema.DatabaseBackend) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t, backend)
}

// timeScanner scans a time column regardless of how the backend stores it.
// SQLite keeps RFC3339 text, MySQL and PostgreSQL keep native timestamps.
type timeScanner struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (ts *timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time, ts.Valid = time.Time{}, false
		return nil
	case time.Time:
		ts.Time, ts.Valid = v, true
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into time", src)
	}
}

func (ts *timeScanner) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time, ts.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("failed to parse time %q", s)
}

// validateTableName validates that the table name is a safe SQL identifier.
// It ensures the name consists only of alphanumeric characters and underscores,
// starting with a letter or underscore, to prevent SQL injection.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// createTableQuery returns the CREATE TABLE query of a store table for the backend.
func createTableQuery(table string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(table, backend)

	// column types per dialect: text key, text blob, timestamp, float, bool
	var keyType, textType, timeType, floatType, boolType string
	switch backend {
	case schema.MySQLBackend:
		keyType, textType, timeType, floatType, boolType = "VARCHAR(255)", "TEXT", "DATETIME(6)", "DOUBLE", "BOOLEAN"
	case schema.PostgreSQLBackend:
		keyType, textType, timeType, floatType, boolType = "TEXT", "TEXT", "TIMESTAMPTZ", "DOUBLE PRECISION", "BOOLEAN"
	default:
		keyType, textType, timeType, floatType, boolType = "TEXT", "TEXT", "TEXT", "REAL", "INTEGER"
	}

	switch table {
	case snapshotsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id %s PRIMARY KEY,
				has_calendar %s NOT NULL,
				weekly_meeting_hours %s NOT NULL,
				fragmentation_score INTEGER NOT NULL,
				meeting_debt_hours %s NOT NULL,
				meetings_per_day %s NOT NULL,
				has_commits %s NOT NULL,
				commit_heatmap %s NOT NULL,
				peak_hour INTEGER NOT NULL,
				peak_day INTEGER NOT NULL,
				total_commits INTEGER NOT NULL,
				repositories_analyzed INTEGER NOT NULL,
				calendar_synced_at %s NULL,
				commits_synced_at %s NULL,
				last_synced_at %s NOT NULL
			);
		`, quoted, keyType, boolType, floatType, floatType, textType, boolType, textType, timeType, timeType, timeType)

	case settingsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id %s PRIMARY KEY,
				target_deep_hours %s NOT NULL,
				timezone %s NOT NULL,
				email_reports %s NOT NULL,
				updated_at %s NOT NULL
			);
		`, quoted, keyType, floatType, keyType, boolType, timeType)

	default: // syncRunsTable
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s PRIMARY KEY,
				user_id %s NOT NULL,
				scope %s NOT NULL,
				status %s NOT NULL,
				start_time %s NOT NULL,
				end_time %s NULL,
				run_duration_ms BIGINT NULL,
				event_count INTEGER NOT NULL,
				commit_count INTEGER NOT NULL,
				repos_scanned INTEGER NOT NULL,
				error_message %s NULL
			);
		`, quoted, keyType, keyType, keyType, keyType, timeType, timeType, textType)
	}
}
