package core

import (
	"sort"
	"strings"
	"time"

	"github.com/cohortpulse/cohortpulse/schema"
)

// AggregatePeriod reduces ledger rows in [startDate, endDate] inclusive into
// ranked leaderboard entries, without any live API calls. Scoring reuses the
// same engine as the all-time leaderboard with the period start standing in
// for the bootcamp start, so consistency is relative to the period length.
// An empty window yields an empty slice, never an error.
func AggregatePeriod(rows []schema.DailyRow, cfg schema.ScoreConfig, startDate, endDate string) []schema.LeaderboardEntry {
	type acc struct {
		display string
		metrics schema.AllTimeMetrics
		// weighted merge time accumulators
		mergeTimeSum float64
		mergeCount   int
		activeDates  map[string]bool
	}

	byUser := make(map[string]*acc)
	var order []string

	weekStart := lastWeekStart(endDate)

	for _, row := range rows {
		if row.Date < startDate || row.Date > endDate {
			continue
		}
		key := strings.ToLower(row.Username)
		a, ok := byUser[key]
		if !ok {
			a = &acc{display: row.Username, activeDates: make(map[string]bool)}
			byUser[key] = a
			order = append(order, key)
		}

		a.metrics.TotalCommits += row.Commits
		a.metrics.PRsOpened += row.PRsOpened
		a.metrics.PRsMerged += row.PRsMerged
		a.metrics.IssuesOpened += row.IssuesOpened
		a.metrics.CommentsGiven += row.IssueComments + row.ReviewCommentsGiven
		a.metrics.LinesAdded += row.LinesAdded
		a.metrics.LinesDeleted += row.LinesDeleted

		// Each day's merge time is an average over that day's merged PR
		// count, so the period mean must weight by count.
		a.mergeTimeSum += row.AvgMergeTime * float64(row.PRsMerged)
		a.mergeCount += row.PRsMerged

		if row.Date >= weekStart && row.Date <= endDate {
			a.metrics.WeeklyCommits += row.Commits
		}

		if row.HasActivity() {
			a.activeDates[row.Date] = true
			if row.Date > a.metrics.LastActive {
				a.metrics.LastActive = row.Date
			}
		}
	}

	periodCfg := cfg
	periodCfg.BootcampStartDate = startDate
	endTime, err := time.Parse(schema.DateFormat, endDate)
	if err != nil {
		endTime = time.Now().UTC()
	}

	entries := make([]schema.LeaderboardEntry, 0, len(order))
	for _, key := range order {
		a := byUser[key]
		a.metrics.ActiveDays = len(a.activeDates)
		if a.mergeCount > 0 {
			a.metrics.AvgMergeTime = round1(a.mergeTimeSum / float64(a.mergeCount))
		}
		if a.metrics.PRsOpened > 0 {
			a.metrics.RejectionRate = round2(1 - float64(a.metrics.PRsMerged)/float64(a.metrics.PRsOpened))
		}
		if a.metrics.LastActive == "" {
			a.metrics.LastActive = "N/A"
		}
		entries = append(entries, schema.LeaderboardEntry{
			Username: a.display,
			Metrics:  a.metrics,
			Scores:   ComputeScores(a.metrics, periodCfg, endTime),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Scores.TotalScore > entries[j].Scores.TotalScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// lastWeekStart returns the first day of the trailing 7-day window ending at
// endDate, inclusive on both sides.
func lastWeekStart(endDate string) string {
	end, err := time.Parse(schema.DateFormat, endDate)
	if err != nil {
		return endDate
	}
	return end.AddDate(0, 0, -6).Format(schema.DateFormat)
}
