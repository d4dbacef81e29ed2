package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cohortpulse/cohortpulse/core"
	"github.com/cohortpulse/cohortpulse/internal/contract"
)

// pollCmd runs the lightweight incremental fetch.
var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Fetch coarse activity counts since the last poll.",
	Long: `Fetch activity that happened since the last poll and write it as today's row.

Poll runs are cheap: they count commits, pull requests, issues, and comments
without per-commit line stats, so they can run every few minutes. The next
daily run replaces today's polled rows with full detail.

The last poll timestamp is tracked in the Config tab and advanced after
every successful run.

Examples:
  # Typical cron entry, every 15 minutes
  cohortpulse poll --store-backend sqlite --store-connect pulse.db`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePoll(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run poll", err)
		}
	},
}
