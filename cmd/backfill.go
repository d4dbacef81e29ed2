package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cohortpulse/cohortpulse/core"
	"github.com/cohortpulse/cohortpulse/internal/contract"
)

// backfillCmd replays the daily deep fetch over a date range.
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Deep-fetch a range of past days into the ledger.",
	Long: `Replay the daily metrics fetch for every day in an inclusive date range.

Use this to populate the ledger after onboarding an existing cohort, or to
repair days lost to an outage. Each day issues the same API calls as a daily
run, so a sleep is inserted between days to stay under rate limits.

Derived tabs are not rebuilt; run 'cohortpulse daily' afterwards to refresh
leaderboards and alerts.

Examples:
  # Backfill the first week of the bootcamp
  cohortpulse backfill --start 2026-02-01 --end 2026-02-07

  # Slow down for large cohorts
  cohortpulse backfill --start 2026-02-01 --end 2026-02-28 --sleep 10`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		if cfg.StartDate == "" {
			return fmt.Errorf("--start is required for backfill")
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBackfill(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run backfill", err)
		}
	},
}
