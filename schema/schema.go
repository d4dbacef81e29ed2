// Package schema has configs, models and shared constants for all parts of cohortpulse.
package schema

// Learner identifies one tracked bootcamp participant. The username is the
// identity key and is compared case-insensitively everywhere, but the original
// casing is preserved for display.
type Learner struct {
	Username string `json:"username"`
	ForkRepo string `json:"fork_repo"` // "owner/name"
	BaseRepo string `json:"base_repo"` // "owner/name"
}

// DailyRow is one ledger row: all activity for a single learner on a single
// UTC day. At most one row exists per (lower(username), date) pair.
type DailyRow struct {
	Username            string  `json:"username"`
	Date                string  `json:"date"` // YYYY-MM-DD
	Commits             int     `json:"commits"`
	PRsOpened           int     `json:"prs_opened"`
	PRsMerged           int     `json:"prs_merged"`
	IssuesOpened        int     `json:"issues_opened"`
	IssueComments       int     `json:"issue_comments"`
	ReviewCommentsGiven int     `json:"review_comments_given"`
	LinesAdded          int     `json:"lines_added"`
	LinesDeleted        int     `json:"lines_deleted"`
	AvgMergeTime        float64 `json:"avg_merge_time"` // hours
	RejectionRate       float64 `json:"rejection_rate"` // 0-1
	LastUpdated         string  `json:"last_updated"`   // RFC3339 UTC
}

// HasActivity reports whether any of the eight activity columns is non-zero.
// Merge time and rejection rate are derived values, not activity.
func (r DailyRow) HasActivity() bool {
	return r.Commits > 0 || r.PRsOpened > 0 || r.PRsMerged > 0 ||
		r.IssuesOpened > 0 || r.IssueComments > 0 || r.ReviewCommentsGiven > 0 ||
		r.LinesAdded > 0 || r.LinesDeleted > 0
}

// AllTimeMetrics holds cumulative, bootcamp-filtered activity for one learner.
// It is recomputed fresh each run and never persisted as its own entity.
type AllTimeMetrics struct {
	TotalCommits     int     `json:"total_commits"`
	WeeklyCommits    int     `json:"weekly_commits"`
	ActiveDays       int     `json:"active_days"`
	LinesAdded       int     `json:"lines_added"`
	LinesDeleted     int     `json:"lines_deleted"`
	PRsOpened        int     `json:"prs_opened"`
	PRsMerged        int     `json:"prs_merged"`
	CommentsReceived int     `json:"comments_received"`
	CommentsGiven    int     `json:"comments_given"`
	IssuesOpened     int     `json:"issues_opened"`
	AvgMergeTime     float64 `json:"avg_merge_time"` // hours
	RejectionRate    float64 `json:"rejection_rate"` // 0-1
	LastActive       string  `json:"last_active"`    // YYYY-MM-DD or "N/A"
	LastComment      string  `json:"last_comment"`
}

// ScoreResult is the output of the scoring engine: four capped sub-scores,
// their sum, and a classification tier.
type ScoreResult struct {
	Consistency    float64 `json:"consistency"`
	Collaboration  float64 `json:"collaboration"`
	CodeVolume     float64 `json:"code_volume"`
	Quality        float64 `json:"quality"`
	TotalScore     float64 `json:"total_score"`
	Classification string  `json:"classification"`
}

// LeaderboardEntry joins a learner's metrics with its score, plus the rank
// assigned after sorting by total score descending.
type LeaderboardEntry struct {
	Rank     int            `json:"rank"`
	Username string         `json:"username"`
	Metrics  AllTimeMetrics `json:"metrics"`
	Scores   ScoreResult    `json:"scores"`
}

// Alert flags one learner for one alert category. A learner may have zero,
// one, or several alerts in the same evaluation.
type Alert struct {
	Username   string  `json:"username"`
	Type       string  `json:"alert_type"`
	Details    string  `json:"details"`
	LastActive string  `json:"last_active"`
	Score      float64 `json:"score"`
}
