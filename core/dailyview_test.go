package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortpulse/cohortpulse/schema"
)

func TestBuildDailyViewCrossJoinIncludesZeroDays(t *testing.T) {
	now := mustDate(t, "2026-03-10")

	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-09", Commits: 2},
		{Username: "ben", Date: "2026-03-08", Commits: 1},
	}

	view := BuildDailyView(rows, now)
	// Two learners by two dates, including the empty cells.
	require.Len(t, view, 4)

	byKey := make(map[[2]string]DailyViewRow)
	for _, v := range view {
		byKey[[2]string{v.Username, v.Date}] = v
	}
	assert.Equal(t, 2, byKey[[2]string{"amy", "2026-03-09"}].Commits)
	assert.Equal(t, 0, byKey[[2]string{"ben", "2026-03-09"}].Commits)
	assert.Equal(t, 0, byKey[[2]string{"ben", "2026-03-09"}].ActivityScore)
	assert.Equal(t, 1, byKey[[2]string{"ben", "2026-03-08"}].Commits)
}

func TestBuildDailyViewOrdering(t *testing.T) {
	now := mustDate(t, "2026-03-10")

	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-08", Commits: 1},
		{Username: "ben", Date: "2026-03-08", Commits: 3},
		{Username: "amy", Date: "2026-03-09", Commits: 2},
	}

	view := BuildDailyView(rows, now)
	require.Len(t, view, 4)

	// Newest date first; within a day, higher activity score first.
	assert.Equal(t, "2026-03-09", view[0].Date)
	assert.Equal(t, "2026-03-09", view[1].Date)
	assert.Equal(t, "amy", view[0].Username)
	assert.Equal(t, "2026-03-08", view[2].Date)
	assert.Equal(t, "ben", view[2].Username)
	assert.Equal(t, "amy", view[3].Username)
}

func TestBuildDailyViewWindowCutoff(t *testing.T) {
	now := mustDate(t, "2026-03-20")

	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-19", Commits: 1},
		// Older than fourteen days, dropped entirely.
		{Username: "old", Date: "2026-03-01", Commits: 9},
	}

	view := BuildDailyView(rows, now)
	require.Len(t, view, 1)
	assert.Equal(t, "amy", view[0].Username)
}

func TestBuildDailyViewCombinesComments(t *testing.T) {
	now := mustDate(t, "2026-03-10")

	rows := []schema.DailyRow{
		{Username: "amy", Date: "2026-03-09", IssueComments: 2, ReviewCommentsGiven: 1},
	}

	view := BuildDailyView(rows, now)
	require.Len(t, view, 1)
	assert.Equal(t, 3, view[0].Comments)
}

func TestActivityScore(t *testing.T) {
	tests := []struct {
		name string
		row  schema.DailyRow
		want int
	}{
		{"empty day", schema.DailyRow{}, 0},
		{"one commit", schema.DailyRow{Commits: 1}, 1},
		{"commits capped at three", schema.DailyRow{Commits: 10}, 3},
		{"one pr opened", schema.DailyRow{PRsOpened: 1}, 2},
		{"prs opened capped at four", schema.DailyRow{PRsOpened: 5}, 4},
		{"merged capped at two", schema.DailyRow{PRsMerged: 4}, 2},
		{"lines give one point", schema.DailyRow{LinesAdded: 1}, 1},
		{"deleted lines count too", schema.DailyRow{LinesDeleted: 7}, 1},
		{
			"full day hits the ceiling",
			schema.DailyRow{Commits: 5, PRsOpened: 3, PRsMerged: 3, LinesAdded: 100},
			10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, activityScore(tt.row))
		})
	}
}
