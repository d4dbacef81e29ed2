package tabstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

func openStores(t *testing.T) map[string]contract.TabularStore {
	t.Helper()
	sqlStore, err := Open(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlStore.Close() })
	return map[string]contract.TabularStore{
		"sqlite": sqlStore,
		"memory": NewMemory(),
	}
}

func TestEnsureTabIdempotent(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.EnsureTab(ctx, schema.TabAlerts, schema.AlertsHeaders))
			require.NoError(t, store.UpsertRows(ctx, schema.TabAlerts, []int{0, 1},
				[][]string{{"amy", "INACTIVE", "No activity", "2026-03-01", "12.0"}}))
			require.NoError(t, store.EnsureTab(ctx, schema.TabAlerts, schema.AlertsHeaders))

			grid, err := store.ReadAll(ctx, schema.TabAlerts)
			require.NoError(t, err)
			require.Len(t, grid, 2)
			assert.Equal(t, schema.AlertsHeaders, grid[0])
		})
	}
}

func TestUpsertReplacesAndAppends(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.EnsureTab(ctx, schema.TabRawMetrics, schema.DailyHeaders))

			first := []string{"amy", "2026-03-01", "3", "1", "0", "0", "2", "0", "40", "5", "0", "0", "2026-03-01 18:00:00"}
			require.NoError(t, store.UpsertRows(ctx, schema.TabRawMetrics, []int{0, 1}, [][]string{first}))

			// Same learner and date with different casing replaces in place;
			// a new date appends.
			updated := []string{"Amy", "2026-03-01", "5", "1", "1", "0", "2", "0", "60", "9", "4.5", "0", "2026-03-01 21:00:00"}
			nextDay := []string{"amy", "2026-03-02", "1", "0", "0", "0", "0", "0", "8", "2", "0", "0", "2026-03-02 18:00:00"}
			require.NoError(t, store.UpsertRows(ctx, schema.TabRawMetrics, []int{0, 1}, [][]string{updated, nextDay}))

			grid, err := store.ReadAll(ctx, schema.TabRawMetrics)
			require.NoError(t, err)
			require.Len(t, grid, 3)
			assert.Equal(t, updated, grid[1])
			assert.Equal(t, nextDay, grid[2])
		})
	}
}

func TestClearAndWriteReplacesTab(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.ClearAndWrite(ctx, schema.TabLeaderboard, schema.LeaderboardHeaders, [][]string{
				{"1", "amy"}, {"2", "ben"},
			}))
			require.NoError(t, store.ClearAndWrite(ctx, schema.TabLeaderboard, schema.LeaderboardHeaders, [][]string{
				{"1", "ben"},
			}))

			grid, err := store.ReadAll(ctx, schema.TabLeaderboard)
			require.NoError(t, err)
			require.Len(t, grid, 2)
			assert.Equal(t, "ben", grid[1][1])
		})
	}
}

func TestConfigRoundTrip(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.EnsureTab(ctx, schema.TabConfig, schema.ConfigHeaders))
			require.NoError(t, store.WriteConfigValue(ctx, "bootcamp_start_date", "2026-02-23"))
			require.NoError(t, store.WriteConfigValue(ctx, "last_poll_timestamp", "2026-03-01T12:00:00Z"))
			require.NoError(t, store.WriteConfigValue(ctx, "last_poll_timestamp", "2026-03-01T18:00:00Z"))

			config, err := store.ReadConfig(ctx)
			require.NoError(t, err)
			assert.Equal(t, "2026-02-23", config["bootcamp_start_date"])
			assert.Equal(t, "2026-03-01T18:00:00Z", config["last_poll_timestamp"])
		})
	}
}

func TestMissingTabReadsEmpty(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			grid, err := store.ReadAll(context.Background(), "Nonexistent")
			require.NoError(t, err)
			assert.Empty(t, grid)
		})
	}
}

func TestMergeRows(t *testing.T) {
	existing := [][]string{
		{"Username", "Date", "Commits"},
		{"amy", "2026-03-01", "3"},
		{"ben", "2026-03-01", "1"},
	}
	incoming := [][]string{
		{"AMY", "2026-03-01", "7"},
		{"cara", "2026-03-01", "2"},
	}
	merged := MergeRows(existing, []int{0, 1}, incoming)
	require.Len(t, merged, 4)
	assert.Equal(t, []string{"AMY", "2026-03-01", "7"}, merged[1])
	assert.Equal(t, []string{"ben", "2026-03-01", "1"}, merged[2])
	assert.Equal(t, []string{"cara", "2026-03-01", "2"}, merged[3])
}

func TestMergeRowsShortRowKeys(t *testing.T) {
	existing := [][]string{
		{"Setting", "Value"},
		{"bootcamp_start_date", "2026-02-23"},
	}
	merged := MergeRows(existing, []int{0}, [][]string{{"bootcamp_start_date", "2026-03-02"}})
	require.Len(t, merged, 2)
	assert.Equal(t, "2026-03-02", merged[1][1])
}
