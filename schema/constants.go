package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of console output.
	OutputMode string

	// StoreBackend represents the tabular store backend.
	StoreBackend string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All tabular store backends supported.
const (
	SheetsBackend     StoreBackend = "sheets" // default
	SQLiteBackend     StoreBackend = "sqlite"
	MySQLBackend      StoreBackend = "mysql"
	PostgreSQLBackend StoreBackend = "postgresql"
	MemoryBackend     StoreBackend = "memory"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidStoreBackends lists all valid store backends.
var ValidStoreBackends = map[StoreBackend]struct{}{
	SheetsBackend:     {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	MemoryBackend:     {},
}

// Classification tiers, ordered best to worst. Threshold checks run in this
// order with first match winning.
const (
	ClassExcellent        = "EXCELLENT"
	ClassGood             = "GOOD"
	ClassAverage          = "AVERAGE"
	ClassNeedsImprovement = "NEEDS IMPROVEMENT"
	ClassAtRisk           = "AT RISK"
)

// Alert categories.
const (
	AlertInactive  = "INACTIVE"
	AlertAtRisk    = "AT RISK"
	AlertDeclining = "DECLINING"
)

// Tab names in the backing tabular store.
const (
	TabRawMetrics  = "Daily Raw Metrics"
	TabLeaderboard = "Leaderboard"
	TabWeekly      = "Weekly Leaderboard"
	TabMonthly     = "Monthly Leaderboard"
	TabCustom      = "Custom Leaderboard"
	TabDailyView   = "Daily View"
	TabAlerts      = "Alerts"
	TabConfig      = "Config"
)

// DailyHeaders is the 13-column layout of the Daily Raw Metrics tab.
var DailyHeaders = []string{
	"Username", "Date", "Commits", "PRs Opened", "PRs Merged",
	"Issues Opened", "Issue Comments", "PR Review Comments Given",
	"Lines Added", "Lines Deleted", "PR Avg Merge Time (hrs)",
	"PR Rejection Rate", "Last Updated",
}

// LeaderboardHeaders is the 20-column layout of every leaderboard tab.
var LeaderboardHeaders = []string{
	"Rank", "Learner", "Classification", "Total Score", "Consistency",
	"Collaboration", "Code Volume", "Quality", "Active Days",
	"Total Commits", "PRs Opened", "PRs Merged", "Lines Added",
	"Lines Deleted", "Comments Received", "Comments Given",
	"Avg Merge Time", "Rejection Rate", "Last Active", "Last Comment",
}

// DailyViewHeaders is the layout of the Daily View tab.
var DailyViewHeaders = []string{
	"Date", "Learner", "Commits", "PRs Opened", "PRs Merged",
	"Lines Added", "Lines Deleted", "Comments", "Activity Score",
}

// AlertsHeaders is the layout of the Alerts tab.
var AlertsHeaders = []string{
	"Learner", "Alert Type", "Details", "Last Active", "Score",
}

// ConfigHeaders is the layout of the Config tab.
var ConfigHeaders = []string{"Setting", "Value"}

// TabOrder is the preferred ordering of tabs in the store, used when setting
// up structure on a fresh spreadsheet.
var TabOrder = []string{
	TabLeaderboard, TabWeekly, TabMonthly, TabCustom,
	TabDailyView, TabAlerts, TabRawMetrics, TabConfig,
}
