// Package parquet exports activity ledgers and leaderboards to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/cohortpulse/cohortpulse/schema"
)

// ActivityRecord is the flat Parquet layout for one learner-day of activity.
type ActivityRecord struct {
	// Username is the GitHub login of the learner
	Username string `parquet:"username,snappy"`

	// Date is the activity day in YYYY-MM-DD form
	Date string `parquet:"date,snappy"`

	// Commits is the number of commits authored on the day
	Commits int32 `parquet:"commits,snappy"`

	// PRsOpened is the number of pull requests opened on the day
	PRsOpened int32 `parquet:"prs_opened,snappy"`

	// PRsMerged is the number of pull requests merged on the day
	PRsMerged int32 `parquet:"prs_merged,snappy"`

	// IssuesOpened is the number of issues opened on the day
	IssuesOpened int32 `parquet:"issues_opened,snappy"`

	// IssueComments is the number of issue comments written on the day
	IssueComments int32 `parquet:"issue_comments,snappy"`

	// ReviewCommentsGiven is the number of review comments written on the day
	ReviewCommentsGiven int32 `parquet:"review_comments_given,snappy"`

	// LinesAdded is the number of lines added across the day's commits
	LinesAdded int32 `parquet:"lines_added,snappy"`

	// LinesDeleted is the number of lines deleted across the day's commits
	LinesDeleted int32 `parquet:"lines_deleted,snappy"`

	// AvgMergeTime is the mean open-to-merge time in hours for PRs merged that day
	AvgMergeTime float64 `parquet:"avg_merge_time,snappy"`

	// RejectionRate is the fraction of closed PRs that were not merged (0-1)
	RejectionRate float64 `parquet:"rejection_rate,snappy"`

	// LastUpdated is the RFC3339 timestamp of the row's last refresh
	LastUpdated string `parquet:"last_updated,snappy"`
}

// LeaderboardRecord is the flat Parquet layout for one leaderboard entry.
type LeaderboardRecord struct {
	// Rank is the learner's position, 1 being highest
	Rank int32 `parquet:"rank,snappy"`

	// Username is the GitHub login of the learner
	Username string `parquet:"username,snappy"`

	// Classification is the tier label derived from the total score
	Classification string `parquet:"classification,snappy"`

	// TotalScore is the sum of the four sub-scores
	TotalScore float64 `parquet:"total_score,snappy"`

	// Consistency is the capped consistency sub-score
	Consistency float64 `parquet:"consistency,snappy"`

	// Collaboration is the capped collaboration sub-score
	Collaboration float64 `parquet:"collaboration,snappy"`

	// CodeVolume is the capped code volume sub-score
	CodeVolume float64 `parquet:"code_volume,snappy"`

	// Quality is the capped quality sub-score
	Quality float64 `parquet:"quality,snappy"`

	// ActiveDays is the count of distinct days with any activity
	ActiveDays int32 `parquet:"active_days,snappy"`

	// WeeklyCommits is the commit count over the trailing seven days
	WeeklyCommits int32 `parquet:"weekly_commits,snappy"`

	// TotalCommits is the cumulative commit count
	TotalCommits int32 `parquet:"total_commits,snappy"`

	// PRsOpened is the cumulative count of pull requests opened
	PRsOpened int32 `parquet:"prs_opened,snappy"`

	// PRsMerged is the cumulative count of pull requests merged
	PRsMerged int32 `parquet:"prs_merged,snappy"`

	// LinesAdded is the cumulative count of lines added
	LinesAdded int32 `parquet:"lines_added,snappy"`

	// LinesDeleted is the cumulative count of lines deleted
	LinesDeleted int32 `parquet:"lines_deleted,snappy"`

	// CommentsReceived is the count of comments received on the learner's PRs
	CommentsReceived int32 `parquet:"comments_received,snappy"`

	// CommentsGiven is the count of comments the learner wrote
	CommentsGiven int32 `parquet:"comments_given,snappy"`

	// IssuesOpened is the cumulative count of issues opened
	IssuesOpened int32 `parquet:"issues_opened,snappy"`

	// AvgMergeTime is the mean open-to-merge time in hours
	AvgMergeTime float64 `parquet:"avg_merge_time,snappy"`

	// RejectionRate is the fraction of closed PRs that were not merged (0-1)
	RejectionRate float64 `parquet:"rejection_rate,snappy"`

	// LastActive is the most recent active day, or N/A when there is none
	LastActive string `parquet:"last_active,snappy"`
}

// FromDailyRows converts ledger rows to their Parquet layout.
func FromDailyRows(rows []schema.DailyRow) []ActivityRecord {
	records := make([]ActivityRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, ActivityRecord{
			Username:            r.Username,
			Date:                r.Date,
			Commits:             int32(r.Commits),
			PRsOpened:           int32(r.PRsOpened),
			PRsMerged:           int32(r.PRsMerged),
			IssuesOpened:        int32(r.IssuesOpened),
			IssueComments:       int32(r.IssueComments),
			ReviewCommentsGiven: int32(r.ReviewCommentsGiven),
			LinesAdded:          int32(r.LinesAdded),
			LinesDeleted:        int32(r.LinesDeleted),
			AvgMergeTime:        r.AvgMergeTime,
			RejectionRate:       r.RejectionRate,
			LastUpdated:         r.LastUpdated,
		})
	}
	return records
}

// FromLeaderboard converts ranked entries to their Parquet layout.
func FromLeaderboard(entries []schema.LeaderboardEntry) []LeaderboardRecord {
	records := make([]LeaderboardRecord, 0, len(entries))
	for _, entry := range entries {
		m := entry.Metrics
		s := entry.Scores
		records = append(records, LeaderboardRecord{
			Rank:             int32(entry.Rank),
			Username:         entry.Username,
			Classification:   s.Classification,
			TotalScore:       s.TotalScore,
			Consistency:      s.Consistency,
			Collaboration:    s.Collaboration,
			CodeVolume:       s.CodeVolume,
			Quality:          s.Quality,
			ActiveDays:       int32(m.ActiveDays),
			WeeklyCommits:    int32(m.WeeklyCommits),
			TotalCommits:     int32(m.TotalCommits),
			PRsOpened:        int32(m.PRsOpened),
			PRsMerged:        int32(m.PRsMerged),
			LinesAdded:       int32(m.LinesAdded),
			LinesDeleted:     int32(m.LinesDeleted),
			CommentsReceived: int32(m.CommentsReceived),
			CommentsGiven:    int32(m.CommentsGiven),
			IssuesOpened:     int32(m.IssuesOpened),
			AvgMergeTime:     m.AvgMergeTime,
			RejectionRate:    m.RejectionRate,
			LastActive:       m.LastActive,
		})
	}
	return records
}

// WriteActivityParquet writes activity records to a Parquet file.
func WriteActivityParquet(data []ActivityRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteLeaderboardParquet writes leaderboard records to a Parquet file.
func WriteLeaderboardParquet(data []LeaderboardRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes any record slice using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
