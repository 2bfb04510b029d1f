package cmd

import (
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
)

// loadReport builds the report of the configured user from the stores.
func loadReport() schema.Report {
	svc, metrics, err := newService(rootCtx)
	if err != nil {
		contract.LogFatal("Failed to set up report", err)
	}
	defer closeMetrics(rootCtx, metrics)

	report, err := svc.Report(userContext(rootCtx))
	if err != nil {
		contract.LogFatal("Failed to build report", err)
	}
	return report
}

// reportCmd prints the weekly report.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the weekly flow report",
	Long: `Show the weekly report built from the last sync.

Includes:
- Deep work hours against your weekly goal
- Fragmentation score and meeting debt
- Meetings per weekday
- Suggestions for the coming week
- Commit heatmap with your peak coding window

Run 'flowstate sync' first; without synced data every metric is zero.

Examples:
  flowstate report
  flowstate report --output json --output-file week.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.NewOutWriter().WriteReport(loadReport(), cfg); err != nil {
			contract.LogFatal("Failed to write report", err)
		}
	},
}

// heatmapCmd prints only the commit heatmap.
var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Show the 7x24 commit heatmap",
	Long: `Show when you commit, by weekday and hour in your timezone.

Cells are scaled so the busiest hour is 100. Narrow terminals merge
neighbouring hours into one column.

Examples:
  flowstate heatmap
  flowstate heatmap --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.NewOutWriter().WriteHeatmap(loadReport(), cfg); err != nil {
			contract.LogFatal("Failed to write heatmap", err)
		}
	},
}
