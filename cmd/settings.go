package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
)

// parseSettingsUpdate turns key/value pairs into a partial settings update.
func parseSettingsUpdate(args []string) (schema.SettingsUpdate, error) {
	var update schema.SettingsUpdate
	if len(args) == 0 || len(args)%2 != 0 {
		return update, fmt.Errorf("expected key value pairs, got %d arguments", len(args))
	}
	for i := 0; i < len(args); i += 2 {
		key, value := strings.ToLower(args[i]), args[i+1]
		switch key {
		case "target-deep-hours":
			hours, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return update, fmt.Errorf("invalid target-deep-hours %q: %w", value, err)
			}
			update.TargetDeepHours = &hours
		case "timezone":
			tz := value
			update.Timezone = &tz
		case "email-reports":
			email, err := contract.ParseBoolString(value)
			if err != nil {
				return update, fmt.Errorf("invalid email-reports %q: %w", value, err)
			}
			update.EmailReports = &email
		default:
			return update, fmt.Errorf("unknown setting '%s'. must be target-deep-hours, timezone, email-reports", key)
		}
	}
	return update, nil
}

// settingsCmd groups the per-user settings commands.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or change your saved settings",
	Long: `Manage the settings stored for your user.

Settings:
  target-deep-hours - Daily deep work goal in hours (default 4)
  timezone          - IANA timezone used to bucket days and hours
  email-reports     - Whether weekly reports are emailed

Subcommands:
  get - Show the current settings
  set - Change one or more settings`,
}

// settingsGetCmd shows the current settings.
var settingsGetCmd = &cobra.Command{
	Use:     "get",
	Short:   "Show the current settings",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		svc, metrics, err := newService(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to set up settings", err)
		}
		defer closeMetrics(rootCtx, metrics)

		settings, err := svc.Settings(userContext(rootCtx))
		if err != nil {
			contract.LogFatal("Failed to load settings", err)
		}
		if err := outwriter.NewOutWriter().WriteSettings(settings, cfg); err != nil {
			contract.LogFatal("Failed to write settings", err)
		}
	},
}

// settingsSetCmd changes settings.
var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value> [<key> <value>...]",
	Short: "Change one or more settings",
	Long: `Change settings by key. Unnamed settings keep their values.

Examples:
  flowstate settings set target-deep-hours 5
  flowstate settings set timezone Europe/Berlin email-reports no`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		update, err := parseSettingsUpdate(args)
		if err != nil {
			contract.LogFatal("Invalid settings", err)
		}

		svc, metrics, err := newService(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to set up settings", err)
		}
		defer closeMetrics(rootCtx, metrics)

		settings, err := svc.UpdateSettings(userContext(rootCtx), update)
		if err != nil {
			contract.LogFatal("Failed to save settings", err)
		}
		if err := outwriter.NewOutWriter().WriteSettings(settings, cfg); err != nil {
			contract.LogFatal("Failed to write settings", err)
		}
	},
}
