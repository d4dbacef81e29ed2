package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cohortpulse/cohortpulse/core"
	"github.com/cohortpulse/cohortpulse/internal/contract"
)

// alertsCmd re-evaluates and prints alerts.
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate and print learner alerts.",
	Long: `Evaluate inactivity, at-risk, and declining alerts from stored data.

Reads the stored leaderboard and the activity ledger, applies the alert
thresholds from the Config tab, rewrites the Alerts tab, and prints the
result. No GitHub API calls are made.

Alert categories:
  INACTIVE  - no activity for the configured number of days
  AT RISK   - total score below the at-risk threshold
  DECLINING - low score with few active days in the last week

Examples:
  # Console summary
  cohortpulse alerts

  # Feed alerts into another tool
  cohortpulse alerts --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAlerts(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot evaluate alerts", err)
		}
	},
}
