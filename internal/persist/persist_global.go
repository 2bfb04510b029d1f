package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for the stores.
func GetDBFilePath() string {
	return contract.GetDBFilePath()
}

// InitStores initializes the global store manager.
func InitStores(ctx context.Context, backend schema.DatabaseBackend, connStr string, defaults func(string) schema.UserSettings) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		mgr, err := NewStoreManager(ctx, backend, connStr, defaults)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize stores: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.database = mgr.database
		Manager.snapshots = mgr.snapshots
		Manager.settings = mgr.settings
		Manager.runs = mgr.runs
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		_ = Manager.Close()
	})
}

// ClearStores removes all persisted data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the tables.
// For NoneBackend, it does nothing.
func ClearStores(ctx context.Context, backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range allTables {
			if err := clearSQLTable(ctx, backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(ctx context.Context, backend schema.DatabaseBackend, connStr, tableName string) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	name, err := driverName(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(name, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", name, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", name, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
