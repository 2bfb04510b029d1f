// Package cmd defines the command-line interface for flowstate.
package cmd

import (
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the settings subcommands to the parent settings command
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("user", "", "User the command acts for (defaults to the OS user)")
	rootCmd.PersistentFlags().String("timezone", schema.DefaultTimezone, "Default IANA timezone for users without saved settings")
	rootCmd.PersistentFlags().Float64("target-deep-hours", schema.DefaultTargetDeepHours, "Default daily deep work goal for users without saved settings")
	rootCmd.PersistentFlags().String("calendar-ics", "", "Calendar feed as an .ics file path or http(s) URL")
	rootCmd.PersistentFlags().String("repos", "", "Comma-separated list of git repository paths")
	rootCmd.PersistentFlags().String("repo-root", "", "Directory whose child git repositories are scanned")
	rootCmd.PersistentFlags().String("author", "", "Only count commits whose author matches this pattern")
	rootCmd.PersistentFlags().Int("lookback-days", schema.DefaultLookbackDays, "Days of commit history behind the heatmap")
	rootCmd.PersistentFlags().Int("max-repos", schema.DefaultMaxRepos, "Most recently active repositories inspected per sync")
	rootCmd.PersistentFlags().String("sync-timeout", contract.DefaultSyncTimeout.String(), "Upper bound on one sync")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent git processes")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("otel-endpoint", "", "OTLP gRPC endpoint for sync metrics (empty disables export)")
	rootCmd.PersistentFlags().Bool("otel-insecure", false, "Connect to the OTLP endpoint without TLS")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of syncCmd to Viper
	syncCmd.Flags().String("scope", string(schema.ScopeAll), "Sources to refresh: all or calendar or commits")
	if err := viper.BindPFlags(syncCmd.Flags()); err != nil {
		contract.LogFatal("Error binding sync flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address the HTTP server listens on")
	serveCmd.Flags().String("api-tokens", "", "Bearer tokens mapped to users (format: 'token1=alice,token2=bob')")
	serveCmd.Flags().String("schedule", "", "Cron expression for background syncs (empty disables)")
	serveCmd.Flags().String("log-format", string(schema.ConsoleLog), "Log format: console or json")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
