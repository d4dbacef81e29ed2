package core

import (
	"context"
	"fmt"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/internal/ledger"
	"github.com/cohortpulse/cohortpulse/internal/parquet"
	"github.com/cohortpulse/cohortpulse/schema"
)

// ExecuteExport snapshots the store into Parquet files. The output file
// option is treated as a path prefix; two files are written, one for the
// activity ledger and one for the all-time leaderboard.
func ExecuteExport(ctx context.Context, cfg *contract.Config) error {
	env, err := prepareRun(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = env.store.Close() }()

	prefix := cfg.OutputFile
	if prefix == "" {
		prefix = "cohortpulse"
	}

	rows, err := ledger.ReadAllRows(ctx, env.store)
	if err != nil {
		return err
	}
	activityPath := prefix + "_activity.parquet"
	if err := parquet.WriteActivityParquet(parquet.FromDailyRows(rows), activityPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %d activity rows to %s\n", len(rows), activityPath)

	grid, err := env.store.ReadAll(ctx, schema.TabLeaderboard)
	if err != nil {
		return err
	}
	entries, err := ParseLeaderboard(grid)
	if err != nil {
		return err
	}
	boardPath := prefix + "_leaderboard.parquet"
	if err := parquet.WriteLeaderboardParquet(parquet.FromLeaderboard(entries), boardPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %d leaderboard rows to %s\n", len(entries), boardPath)
	return nil
}
