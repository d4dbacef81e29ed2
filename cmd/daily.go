package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cohortpulse/cohortpulse/core"
	"github.com/cohortpulse/cohortpulse/internal/contract"
)

// dailyCmd runs the full daily pipeline.
var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Deep-fetch one day of activity and rebuild all derived tabs.",
	Long: `Fetch a full day of per-learner activity from GitHub and refresh the store.

For every learner this collects commits with per-commit line stats, pull
requests, issues, and comments for the target day, then rebuilds the all-time
leaderboard, the weekly/monthly/custom period leaderboards, the daily view,
and the alerts tab.

Rows written by a previous poll run for the same day are replaced with the
deeper per-commit detail.

Examples:
  # Process today (UTC)
  cohortpulse daily

  # Reprocess a specific day
  cohortpulse daily --date 2026-03-02`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDaily(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run daily pipeline", err)
		}
	},
}
