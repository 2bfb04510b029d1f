package cmd

import (
	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/spf13/cobra"
)

// demoCmd prints the showcase report without any synced data.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show a sample report with five weeks of trends",
	Long: `Print a fixed sample report so you can see what flowstate produces
before connecting a calendar or repositories.`,
	PreRunE: outputSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.NewOutWriter().WriteDemo(core.DemoData(), cfg); err != nil {
			contract.LogFatal("Failed to write demo", err)
		}
	},
}
