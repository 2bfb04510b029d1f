package cmd

import (
	"context"
	"fmt"
	"os/user"
	"strings"

	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/persist"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "flowstate",
	Short: "Measure how meetings fragment your week and when you actually code.",
	Long: `Flowstate turns your calendar and your commit history into a weekly report:
deep work hours, a fragmentation score, meeting debt, a commit heatmap and a
short list of suggestions.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// defaultUser names the local identity when none is configured.
func defaultUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configureConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("FLOWSTATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("user", defaultUser())
	viper.SetDefault("timezone", schema.DefaultTimezone)
	viper.SetDefault("target-deep-hours", schema.DefaultTargetDeepHours)
	viper.SetDefault("lookback-days", schema.DefaultLookbackDays)
	viper.SetDefault("max-repos", schema.DefaultMaxRepos)
	viper.SetDefault("sync-timeout", contract.DefaultSyncTimeout.String())
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("listen", contract.DefaultListenAddr)
	viper.SetDefault("log-format", schema.ConsoleLog)
	viper.SetDefault("color", "yes")
}

// configureConfigFile points Viper at --config or the default search paths.
func configureConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".flowstate") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile reads the config file if one exists.
func loadConfigFile() error {
	configureConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// parseConfig merges defaults, file, env, and flags into cfg.
func parseConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return contract.ProcessAndValidate(cfg, input)
}

// sharedSetup parses config and opens the stores.
func sharedSetup(ctx context.Context) error {
	if err := parseConfig(); err != nil {
		return err
	}
	if err := persist.InitStores(ctx, cfg.StoreBackend, cfg.StoreDBConnect, cfg.DefaultSettings); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(_ *cobra.Command, _ []string) error {
	return sharedSetup(rootCtx)
}

// outputSetupWrapper parses config without touching the stores.
func outputSetupWrapper(_ *cobra.Command, _ []string) error {
	return parseConfig()
}

// userContext attaches the configured user to ctx.
func userContext(ctx context.Context) context.Context {
	return core.WithUser(ctx, cfg.UserID)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Shutdown releases global resources opened by commands.
func Shutdown() {
	persist.CloseStores()
}
