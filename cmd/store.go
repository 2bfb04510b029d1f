package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/persist"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for store operations.
// It avoids validating sources and output settings that store commands never use.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.UserID = viper.GetString("user")
	return nil
}

// storeSetupWrapper opens the stores after storeSetup.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := storeSetup(); err != nil {
		return err
	}
	defaults := func(userID string) schema.UserSettings { return schema.DefaultUserSettings(userID) }
	if err := persist.InitStores(rootCtx, cfg.StoreBackend, cfg.StoreDBConnect, defaults); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// storeMigrateSetupWrapper runs storeSetup without creating tables, so migrations
// can run on a fresh database.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := storeSetup(); err != nil {
		return err
	}
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.StoreDBConnect == "" {
		cfg.StoreDBConnect = contract.GetDBFilePath()
	}
	return nil
}

// storeCmd focused on persisted data management.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage stored snapshots, settings and sync history",
	Long: `Manage the data flowstate keeps between runs.

Flowstate stores one weekly snapshot per user, the user's settings and a
record of every sync run.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics and connection info
  export  - Export snapshots and sync runs to Parquet
  clear   - Remove all stored data
  delete  - Remove your own snapshot
  migrate - Run database schema migrations`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := persist.Manager.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		persist.PrintStoreStatus(os.Stdout, status)
	},
}

// storeClearCmd removes all stored data.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored snapshots, settings and sync runs",
	Long: `Delete everything flowstate has stored in the configured backend.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  flowstate store export --output-file backup
  flowstate store clear`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// SQLite connection strings are file paths
		if err := persist.ClearStores(rootCtx, cfg.StoreBackend, cfg.StoreDBConnect, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear stores", err)
		}
		fmt.Println("Stored data cleared successfully.")
	},
}

// storeDeleteCmd removes the snapshot of the configured user.
var storeDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove your own stored snapshot",
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.UserID == "" {
			contract.LogFatal("Failed to delete snapshot", contract.ErrUnauthenticated)
		}
		if err := persist.Manager.GetSnapshotStore().Delete(rootCtx, cfg.UserID); err != nil {
			contract.LogFatal("Failed to delete snapshot", err)
		}
		fmt.Printf("Snapshot of %s deleted.\n", cfg.UserID)
	},
}

// storeExportCmd exports stored data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshots and sync runs to Parquet",
	Long: `Export stored data to Parquet for DuckDB, pandas or any BI tool.

Writes two files next to --output-file:
  <output-file>.snapshots.parquet
  <output-file>.sync_runs.parquet

Examples:
  flowstate store export --output-file flowstate
  duckdb -c "SELECT * FROM read_parquet('flowstate.snapshots.parquet')"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := persist.ExecuteExport(rootCtx, persist.Manager, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export data", err)
		}
	},
}

// storeMigrateCmd runs database migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions of the store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  flowstate store migrate
  flowstate store migrate --target-version 2
  flowstate store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := persist.Migrate(rootCtx, cfg.StoreBackend, cfg.StoreDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
