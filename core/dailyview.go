package core

import (
	"sort"
	"strings"
	"time"

	"github.com/cohortpulse/cohortpulse/schema"
)

// DailyViewRow is one learner-day cell of the Daily View grid, including
// zero-activity days so gaps are visible at a glance.
type DailyViewRow struct {
	Date          string `json:"date"`
	Username      string `json:"username"`
	Commits       int    `json:"commits"`
	PRsOpened     int    `json:"prs_opened"`
	PRsMerged     int    `json:"prs_merged"`
	LinesAdded    int    `json:"lines_added"`
	LinesDeleted  int    `json:"lines_deleted"`
	Comments      int    `json:"comments"`
	ActivityScore int    `json:"activity_score"`
}

// dailyViewWindowDays is how far back the Daily View grid reaches.
const dailyViewWindowDays = 14

// BuildDailyView cross-joins every learner seen in the trailing two weeks of
// ledger rows with every date in that window, scoring each cell 0-10. Output
// is ordered by date descending, then activity score descending within a day.
func BuildDailyView(rows []schema.DailyRow, now time.Time) []DailyViewRow {
	cutoff := now.UTC().AddDate(0, 0, -dailyViewWindowDays).Format(schema.DateFormat)

	learners := make(map[string]bool)
	dates := make(map[string]bool)
	byKey := make(map[[2]string]schema.DailyRow)
	for _, row := range rows {
		if row.Date < cutoff {
			continue
		}
		learners[row.Username] = true
		dates[row.Date] = true
		byKey[[2]string{row.Username, row.Date}] = row
	}

	sortedDates := sortedKeysDesc(dates)
	sortedLearners := make([]string, 0, len(learners))
	for u := range learners {
		sortedLearners = append(sortedLearners, u)
	}
	sort.Slice(sortedLearners, func(i, j int) bool {
		return strings.ToLower(sortedLearners[i]) < strings.ToLower(sortedLearners[j])
	})

	var view []DailyViewRow
	for _, date := range sortedDates {
		for _, username := range sortedLearners {
			row := byKey[[2]string{username, date}]
			comments := row.IssueComments + row.ReviewCommentsGiven
			view = append(view, DailyViewRow{
				Date:          date,
				Username:      username,
				Commits:       row.Commits,
				PRsOpened:     row.PRsOpened,
				PRsMerged:     row.PRsMerged,
				LinesAdded:    row.LinesAdded,
				LinesDeleted:  row.LinesDeleted,
				Comments:      comments,
				ActivityScore: activityScore(row),
			})
		}
	}

	// Two stable passes: score descending first, then date descending, so
	// rows within each day stay ranked by score.
	sort.SliceStable(view, func(i, j int) bool {
		return view[i].ActivityScore > view[j].ActivityScore
	})
	sort.SliceStable(view, func(i, j int) bool {
		return view[i].Date > view[j].Date
	})
	return view
}

// activityScore condenses a day into a 0-10 at-a-glance number: up to 3 for
// commits, 4 for opened PRs, 2 for merged PRs, and 1 for touching any lines.
func activityScore(row schema.DailyRow) int {
	score := minInt(3, row.Commits) + minInt(4, row.PRsOpened*2) + minInt(2, row.PRsMerged)
	if row.LinesAdded+row.LinesDeleted > 0 {
		score++
	}
	return minInt(10, score)
}

func sortedKeysDesc(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
