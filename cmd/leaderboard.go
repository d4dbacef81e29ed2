package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cohortpulse/cohortpulse/core"
	"github.com/cohortpulse/cohortpulse/internal/contract"
)

// leaderboardCmd prints a leaderboard from stored data.
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print a leaderboard from the store.",
	Long: `Print a ranked leaderboard without calling the GitHub API.

Without a date range, prints the stored all-time leaderboard as written by
the last daily run. With --start and --end, aggregates the activity ledger
over the range and scores the period as if it were a standalone bootcamp.

Examples:
  # Current standings
  cohortpulse leaderboard

  # Standings for one sprint, as JSON
  cohortpulse leaderboard --start 2026-03-01 --end 2026-03-14 --output json

  # Top five only
  cohortpulse leaderboard --limit 5`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLeaderboard(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot print leaderboard", err)
		}
	},
}
