// Package cmd defines the command-line interface for cohortpulse.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("github-token", "", "GitHub API token used for all fetches")
	rootCmd.PersistentFlags().String("sheet-id", "", "Google Sheet ID for the sheets backend")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SheetsBackend), "Store backend: sheets or sqlite or mysql or postgresql or memory")
	rootCmd.PersistentFlags().String("store-connect", "", "Connection string for sqlite/mysql/postgresql backends")
	rootCmd.PersistentFlags().String("base-repos", "", "Comma-separated owner/name repos, overrides the Config tab")
	rootCmd.PersistentFlags().String("start", "", "Start date in YYYY-MM-DD form")
	rootCmd.PersistentFlags().String("end", "", "End date in YYYY-MM-DD form (default: today UTC)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of dailyCmd to Viper
	dailyCmd.Flags().String("date", "", "Target day in YYYY-MM-DD form (default: today UTC)")
	if err := viper.BindPFlags(dailyCmd.Flags()); err != nil {
		contract.LogFatal("Error binding daily flags", err)
	}

	// Bind all flags of backfillCmd to Viper
	backfillCmd.Flags().Int("sleep", contract.DefaultBackfillSleep, "Seconds to sleep between backfilled days")
	if err := viper.BindPFlags(backfillCmd.Flags()); err != nil {
		contract.LogFatal("Error binding backfill flags", err)
	}

	// Bind all flags of migrateCmd to Viper
	migrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(migrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}
}
