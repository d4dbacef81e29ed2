package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortpulse/cohortpulse/schema"
)

func TestAggregatePeriodSumsAndRanks(t *testing.T) {
	cfg := schema.DefaultScoreConfig()

	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-01", Commits: 3, PRsOpened: 1, LinesAdded: 100},
		{Username: "amy", Date: "2026-03-02", Commits: 2, PRsMerged: 1, LinesAdded: 50, AvgMergeTime: 4},
		{Username: "ben", Date: "2026-03-01", Commits: 1},
		// Outside the window, must be ignored.
		{Username: "amy", Date: "2026-02-28", Commits: 9},
		{Username: "ben", Date: "2026-03-08", Commits: 9},
	}

	entries := AggregatePeriod(rows, cfg, "2026-03-01", "2026-03-07")
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "amy", entries[0].Username)
	assert.Equal(t, 5, entries[0].Metrics.TotalCommits)
	assert.Equal(t, 2, entries[0].Metrics.ActiveDays)
	assert.Equal(t, 150, entries[0].Metrics.LinesAdded)
	assert.Equal(t, "2026-03-02", entries[0].Metrics.LastActive)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "ben", entries[1].Username)
	assert.Equal(t, 1, entries[1].Metrics.TotalCommits)
}

func TestAggregatePeriodWeightedMergeTime(t *testing.T) {
	cfg := schema.DefaultScoreConfig()

	// Day one: two PRs merged averaging 2h. Day two: one PR at 8h.
	// The period mean weights by merged count: (2*2 + 8*1) / 3 = 4.
	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-01", PRsOpened: 2, PRsMerged: 2, AvgMergeTime: 2},
		{Username: "amy", Date: "2026-03-02", PRsOpened: 1, PRsMerged: 1, AvgMergeTime: 8},
	}

	entries := AggregatePeriod(rows, cfg, "2026-03-01", "2026-03-07")
	require.Len(t, entries, 1)
	assert.InDelta(t, 4, entries[0].Metrics.AvgMergeTime, 0.001)
	assert.InDelta(t, 0, entries[0].Metrics.RejectionRate, 0.001)
}

func TestAggregatePeriodRejectionRate(t *testing.T) {
	cfg := schema.DefaultScoreConfig()

	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-01", PRsOpened: 4, PRsMerged: 1},
	}

	entries := AggregatePeriod(rows, cfg, "2026-03-01", "2026-03-07")
	require.Len(t, entries, 1)
	assert.InDelta(t, 0.75, entries[0].Metrics.RejectionRate, 0.001)
}

func TestAggregatePeriodWeeklyCommitsWindow(t *testing.T) {
	cfg := schema.DefaultScoreConfig()

	// The trailing week is the last seven days ending at the period end,
	// inclusive: 2026-03-08 through 2026-03-14.
	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-07", Commits: 5},
		{Username: "amy", Date: "2026-03-08", Commits: 3},
		{Username: "amy", Date: "2026-03-14", Commits: 2},
	}

	entries := AggregatePeriod(rows, cfg, "2026-03-01", "2026-03-14")
	require.Len(t, entries, 1)
	assert.Equal(t, 10, entries[0].Metrics.TotalCommits)
	assert.Equal(t, 5, entries[0].Metrics.WeeklyCommits)
}

func TestAggregatePeriodCombinesCommentColumns(t *testing.T) {
	cfg := schema.DefaultScoreConfig()

	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-01", IssueComments: 2, ReviewCommentsGiven: 3},
	}

	entries := AggregatePeriod(rows, cfg, "2026-03-01", "2026-03-07")
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Metrics.CommentsGiven)
}

func TestAggregatePeriodMergesUsernameCasing(t *testing.T) {
	cfg := schema.DefaultScoreConfig()

	rows := []schema.DailyRow{
		{Username: "Amy", Date: "2026-03-01", Commits: 1},
		{Username: "amy", Date: "2026-03-02", Commits: 2},
	}

	entries := AggregatePeriod(rows, cfg, "2026-03-01", "2026-03-07")
	require.Len(t, entries, 1)
	// First-seen casing wins for display.
	assert.Equal(t, "Amy", entries[0].Username)
	assert.Equal(t, 3, entries[0].Metrics.TotalCommits)
}

func TestAggregatePeriodEmptyWindow(t *testing.T) {
	cfg := schema.DefaultScoreConfig()

	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-01-01", Commits: 1},
	}

	entries := AggregatePeriod(rows, cfg, "2026-03-01", "2026-03-07")
	assert.Empty(t, entries)
}

func TestAggregatePeriodSingleDayMatchesDayRow(t *testing.T) {
	cfg := schema.DefaultScoreConfig()

	row := schema.DailyRow{
		Username: "amy", Date: "2026-03-02",
		Commits: 4, PRsOpened: 2, PRsMerged: 1,
		LinesAdded: 120, LinesDeleted: 30, AvgMergeTime: 6,
	}

	entries := AggregatePeriod([]schema.DailyRow{row}, cfg, "2026-03-02", "2026-03-02")
	require.Len(t, entries, 1)

	m := entries[0].Metrics
	assert.Equal(t, 4, m.TotalCommits)
	assert.Equal(t, 1, m.ActiveDays)
	assert.InDelta(t, 6, m.AvgMergeTime, 0.001)
	assert.InDelta(t, 0.5, m.RejectionRate, 0.001)
	assert.Equal(t, "2026-03-02", m.LastActive)
}

func TestLastWeekStart(t *testing.T) {
	assert.Equal(t, "2026-03-08", lastWeekStart("2026-03-14"))
	assert.Equal(t, "2026-02-24", lastWeekStart("2026-03-02"))
}
