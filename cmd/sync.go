package cmd

import (
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// syncCmd refreshes the stored snapshot from the connected sources.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the weekly snapshot from your calendar and repositories",
	Long: `Read this week's calendar and the commit history of your repositories,
then store the resulting metrics for the report.

Scopes:
  all      - Every connected source (default)
  calendar - Only the calendar feed (--calendar-ics)
  commits  - Only the git repositories (--repos or --repo-root)

A scope that names an unconnected source fails. When any requested source
fails, nothing is stored and the previous snapshot stays intact.

Examples:
  # Sync everything that is configured
  flowstate sync --calendar-ics ~/work.ics --repo-root ~/src

  # Only refresh the commit heatmap
  flowstate sync --scope commits --repos .`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		svc, metrics, err := newService(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to set up sync", err)
		}
		defer closeMetrics(rootCtx, metrics)

		start := time.Now()
		snap, err := svc.Sync(userContext(rootCtx), schema.SyncScope(viper.GetString("scope")))
		if err != nil {
			contract.LogFatal("Sync failed", err)
		}
		if err := outwriter.NewOutWriter().WriteSync(*snap, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Failed to write sync result", err)
		}
	},
}
