package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cohortpulse/cohortpulse/core"
	"github.com/cohortpulse/cohortpulse/internal/contract"
)

// exportCmd snapshots the store into Parquet files.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger and leaderboard to Parquet for analytics",
	Long: `Export stored data to Parquet format for use with analytics tools.

Exports two datasets:
- Activity ledger - one row per learner per day
- Leaderboard - the stored all-time standings with scores

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

The --output-file value is used as a path prefix; two files are written,
<prefix>_activity.parquet and <prefix>_leaderboard.parquet.

Examples:
  # Export everything
  cohortpulse export --output-file cohort-2026

  # Query with DuckDB
  duckdb -c "SELECT * FROM read_parquet('cohort-2026_activity.parquet') LIMIT 10"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot export data", err)
		}
	},
}
