package core

import (
	"context"
	"fmt"
	"time"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/internal/github"
	"github.com/cohortpulse/cohortpulse/internal/ledger"
	"github.com/cohortpulse/cohortpulse/internal/outwriter"
	"github.com/cohortpulse/cohortpulse/internal/sheets"
	"github.com/cohortpulse/cohortpulse/internal/tabstore"
	"github.com/cohortpulse/cohortpulse/schema"
)

// ExecutorFunc is the signature shared by all command entry points.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// sleepBetweenDays is swapped out by backfill tests.
var sleepBetweenDays = time.Sleep

// runEnv bundles everything a pipeline run needs.
type runEnv struct {
	store    contract.TabularStore
	client   contract.ActivityClient
	score    schema.ScoreConfig
	learners []schema.Learner
}

// OpenStore connects to the configured tabular store backend.
func OpenStore(ctx context.Context, cfg *contract.Config) (contract.TabularStore, error) {
	if cfg.StoreBackend == schema.SheetsBackend {
		return sheets.Open(ctx, cfg.SheetID)
	}
	return tabstore.Open(cfg.StoreBackend, cfg.StoreConnect)
}

// SetupTabs makes sure every tab exists with its header row.
func SetupTabs(ctx context.Context, store contract.TabularStore) error {
	for _, tab := range schema.TabOrder {
		if err := store.EnsureTab(ctx, tab, headersForTab(tab)); err != nil {
			return fmt.Errorf("failed to set up tab %q: %w", tab, err)
		}
	}
	return nil
}

// EnsureConfigDefaults seeds missing Config tab keys with their defaults.
// Keys an admin already edited are left alone.
func EnsureConfigDefaults(ctx context.Context, store contract.TabularStore) error {
	existing, err := store.ReadConfig(ctx)
	if err != nil {
		return err
	}
	for _, kv := range schema.ConfigDefaults {
		if _, ok := existing[kv[0]]; ok {
			continue
		}
		if err := store.WriteConfigValue(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// prepareRun opens the store and client, sets up tab structure, loads the
// score config, and optionally discovers the learner roster.
func prepareRun(ctx context.Context, cfg *contract.Config, discover bool) (*runEnv, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := SetupTabs(ctx, store); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := EnsureConfigDefaults(ctx, store); err != nil {
		_ = store.Close()
		return nil, err
	}
	raw, err := store.ReadConfig(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	score := schema.ParseScoreConfig(raw)
	if len(cfg.BaseRepos) > 0 {
		score.BaseRepos = cfg.BaseRepos
	}

	env := &runEnv{
		store:  store,
		client: github.NewClient(cfg.GitHubToken),
		score:  score,
	}
	if discover {
		env.learners = DiscoverLearners(ctx, env.client, score)
		fmt.Printf("Tracking %d learners across %d repos\n", len(env.learners), len(score.BaseRepos))
	}
	return env, nil
}

// ExecuteDaily runs the full daily pipeline: deep-fetch today's metrics,
// rebuild the all-time and period leaderboards, the daily view, and alerts.
func ExecuteDaily(ctx context.Context, cfg *contract.Config) error {
	env, err := prepareRun(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = env.store.Close() }()

	date := cfg.Date
	if date == "" {
		date = time.Now().UTC().Format(schema.DateFormat)
	}
	if err := writeDailyMetrics(ctx, env, date); err != nil {
		return err
	}
	return refreshDerivedTabs(ctx, env, date)
}

// writeDailyMetrics deep-fetches one day of activity for every learner and
// upserts the rows into the ledger.
func writeDailyMetrics(ctx context.Context, env *runEnv, date string) error {
	baseData := FetchBaseRepoData(ctx, env.client, env.score.BaseRepos, date+"T00:00:00Z", false)

	rows := make([]schema.DailyRow, 0, len(env.learners))
	for _, learner := range env.learners {
		row := FetchLearnerDay(ctx, env.client, learner, baseData, date)
		rows = append(rows, row)
		if row.Commits > 0 || row.PRsOpened > 0 {
			fmt.Printf("  %s (%s): %d commits, +%d/-%d, %d PRs\n",
				learner.Username, date, row.Commits, row.LinesAdded, row.LinesDeleted, row.PRsOpened)
		}
	}
	return ledger.UpsertDayRows(ctx, env.store, rows)
}

// refreshDerivedTabs rebuilds everything computed from the ledger and the
// live all-time metrics: leaderboards, daily view and alerts.
func refreshDerivedTabs(ctx context.Context, env *runEnv, today string) error {
	now := time.Now().UTC()
	startISO := env.score.BootcampStart().Format(schema.DateFormat) + "T00:00:00Z"
	baseData := FetchBaseRepoData(ctx, env.client, env.score.BaseRepos, startISO, true)

	entries := BuildLeaderboard(ctx, env.client, env.learners, baseData, env.score, now)
	if err := env.store.ClearAndWrite(ctx, schema.TabLeaderboard, schema.LeaderboardHeaders, EntriesToCells(entries)); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(entries), schema.TabLeaderboard)

	rows, err := ledger.ReadAllRows(ctx, env.store)
	if err != nil {
		return err
	}

	weekStart := now.AddDate(0, 0, -7).Format(schema.DateFormat)
	if err := writePeriodLeaderboard(ctx, env, rows, schema.TabWeekly, weekStart, today); err != nil {
		return err
	}
	monthStart := now.AddDate(0, 0, -30).Format(schema.DateFormat)
	if err := writePeriodLeaderboard(ctx, env, rows, schema.TabMonthly, monthStart, today); err != nil {
		return err
	}
	if env.score.CustomLeaderboardStart != "" && env.score.CustomLeaderboardEnd != "" {
		if err := writePeriodLeaderboard(ctx, env, rows, schema.TabCustom,
			env.score.CustomLeaderboardStart, env.score.CustomLeaderboardEnd); err != nil {
			return err
		}
	}

	view := BuildDailyView(rows, now)
	if err := env.store.ClearAndWrite(ctx, schema.TabDailyView, schema.DailyViewHeaders, dailyViewCells(view)); err != nil {
		return err
	}

	alerts := EvaluateAlerts(entries, rows, env.score, now)
	return env.store.ClearAndWrite(ctx, schema.TabAlerts, schema.AlertsHeaders, alertCells(alerts))
}

// writePeriodLeaderboard aggregates one window of ledger rows into a period
// tab. An empty window writes nothing.
func writePeriodLeaderboard(ctx context.Context, env *runEnv, rows []schema.DailyRow, tab, start, end string) error {
	entries := AggregatePeriod(rows, env.score, start, end)
	if len(entries) == 0 {
		fmt.Printf("No ledger data in [%s, %s], skipping %s\n", start, end, tab)
		return nil
	}
	if err := env.store.ClearAndWrite(ctx, tab, schema.LeaderboardHeaders, EntriesToCells(entries)); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(entries), tab)
	return nil
}

// ExecutePoll runs the lightweight incremental fetch: coarse counts since
// the last poll timestamp, written as today's row. The next daily deep fetch
// replaces these rows with full detail.
func ExecutePoll(ctx context.Context, cfg *contract.Config) error {
	env, err := prepareRun(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = env.store.Close() }()

	now := time.Now().UTC()
	today := now.Format(schema.DateFormat)
	nowStamp := now.Format("2006-01-02T15:04:05Z")

	lastPoll := env.score.LastPollTimestamp
	if lastPoll == "" {
		lastPoll = today + "T00:00:00Z"
	}

	baseData := FetchBaseRepoData(ctx, env.client, env.score.BaseRepos, lastPoll, false)

	rows := make([]schema.DailyRow, 0, len(env.learners))
	for _, learner := range env.learners {
		row := pollLearner(ctx, env.client, learner, baseData, lastPoll, today, nowStamp)
		rows = append(rows, row)
		if row.Commits > 0 || row.PRsOpened > 0 {
			fmt.Printf("  %s: %d commits, %d PRs, %d issues\n",
				learner.Username, row.Commits, row.PRsOpened, row.IssuesOpened)
		}
	}
	if err := ledger.UpsertDayRows(ctx, env.store, rows); err != nil {
		return err
	}
	return env.store.WriteConfigValue(ctx, "last_poll_timestamp", nowStamp)
}

// pollLearner counts a learner's activity since the last poll. Line stats,
// merge times and review comments are skipped to keep the poll cheap.
func pollLearner(ctx context.Context, client contract.ActivityClient, learner schema.Learner, baseData map[string]BaseRepoData, lastPoll, today, nowStamp string) schema.DailyRow {
	forkOwner, forkRepo := contract.SplitRepo(learner.ForkRepo)

	commits, err := client.ListCommits(ctx, forkOwner, forkRepo, contract.CommitOptions{Since: lastPoll})
	if err != nil {
		commits = nil
	}
	var commitCount int
	for _, c := range commits {
		if c.AuthorLogin != "" && contract.EqualsFold(c.AuthorLogin, learner.Username) {
			commitCount++
		}
	}

	data := baseData[learner.BaseRepo]
	var prsOpened, prsMerged int
	for _, pr := range data.PRs {
		if !contract.EqualsFold(pr.UserLogin, learner.Username) {
			continue
		}
		if pr.CreatedAt >= lastPoll {
			prsOpened++
		}
		if pr.MergedAt != "" && pr.MergedAt >= lastPoll {
			prsMerged++
		}
	}

	var issuesOpened int
	for _, issue := range data.Issues {
		if contract.EqualsFold(issue.UserLogin, learner.Username) && issue.CreatedAt >= lastPoll {
			issuesOpened++
		}
	}

	var issueComments int
	for _, comment := range data.Comments {
		if contract.EqualsFold(comment.UserLogin, learner.Username) {
			issueComments++
		}
	}

	return schema.DailyRow{
		Username:      learner.Username,
		Date:          today,
		Commits:       commitCount,
		PRsOpened:     prsOpened,
		PRsMerged:     prsMerged,
		IssuesOpened:  issuesOpened,
		IssueComments: issueComments,
		LastUpdated:   nowStamp,
	}
}

// ExecuteBackfill replays the daily deep fetch for every day in the
// configured range, sleeping between days to stay under rate limits.
func ExecuteBackfill(ctx context.Context, cfg *contract.Config) error {
	env, err := prepareRun(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = env.store.Close() }()

	start, err := time.Parse(schema.DateFormat, cfg.StartDate)
	if err != nil {
		return fmt.Errorf("invalid backfill start date %q: %w", cfg.StartDate, err)
	}
	end, err := time.Parse(schema.DateFormat, cfg.EndDate)
	if err != nil {
		return fmt.Errorf("invalid backfill end date %q: %w", cfg.EndDate, err)
	}

	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		date := current.Format(schema.DateFormat)
		fmt.Printf("--- Backfilling %s ---\n", date)
		if err := writeDailyMetrics(ctx, env, date); err != nil {
			return err
		}
		if current.Before(end) {
			sleepBetweenDays(cfg.BackfillSleep)
		}
	}
	return nil
}

// ExecuteLeaderboard prints a leaderboard without touching the GitHub API.
// With a start and end date it aggregates a period board from the ledger;
// otherwise it prints the stored all-time board.
func ExecuteLeaderboard(ctx context.Context, cfg *contract.Config) error {
	env, err := prepareRun(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = env.store.Close() }()

	var entries []schema.LeaderboardEntry
	if cfg.StartDate != "" && cfg.EndDate != "" {
		rows, err := ledger.ReadRange(ctx, env.store, cfg.StartDate, cfg.EndDate)
		if err != nil {
			return err
		}
		entries = AggregatePeriod(rows, env.score, cfg.StartDate, cfg.EndDate)
	} else {
		grid, err := env.store.ReadAll(ctx, schema.TabLeaderboard)
		if err != nil {
			return err
		}
		entries, err = ParseLeaderboard(grid)
		if err != nil {
			return err
		}
	}
	return outwriter.PrintLeaderboard(entries, cfg)
}

// ExecuteAlerts re-evaluates alerts from the stored leaderboard and ledger,
// writes the Alerts tab, and prints the result.
func ExecuteAlerts(ctx context.Context, cfg *contract.Config) error {
	env, err := prepareRun(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = env.store.Close() }()

	grid, err := env.store.ReadAll(ctx, schema.TabLeaderboard)
	if err != nil {
		return err
	}
	entries, err := ParseLeaderboard(grid)
	if err != nil {
		return err
	}
	rows, err := ledger.ReadAllRows(ctx, env.store)
	if err != nil {
		return err
	}

	alerts := EvaluateAlerts(entries, rows, env.score, time.Now().UTC())
	if err := env.store.ClearAndWrite(ctx, schema.TabAlerts, schema.AlertsHeaders, alertCells(alerts)); err != nil {
		return err
	}
	return outwriter.PrintAlerts(alerts, cfg)
}

// dailyViewCells renders daily view rows in tab layout.
func dailyViewCells(view []DailyViewRow) [][]string {
	cells := make([][]string, len(view))
	for i, row := range view {
		cells[i] = []string{
			row.Date, row.Username,
			fmt.Sprint(row.Commits), fmt.Sprint(row.PRsOpened), fmt.Sprint(row.PRsMerged),
			fmt.Sprint(row.LinesAdded), fmt.Sprint(row.LinesDeleted),
			fmt.Sprint(row.Comments), fmt.Sprint(row.ActivityScore),
		}
	}
	return cells
}

// alertCells renders alerts in tab layout.
func alertCells(alerts []schema.Alert) [][]string {
	cells := make([][]string, len(alerts))
	for i, alert := range alerts {
		cells[i] = []string{
			alert.Username, alert.Type, alert.Details, alert.LastActive, formatScore(alert.Score),
		}
	}
	return cells
}

// headersForTab maps a tab name to its canonical header row.
func headersForTab(tab string) []string {
	switch tab {
	case schema.TabRawMetrics:
		return schema.DailyHeaders
	case schema.TabDailyView:
		return schema.DailyViewHeaders
	case schema.TabAlerts:
		return schema.AlertsHeaders
	case schema.TabConfig:
		return schema.ConfigHeaders
	default:
		return schema.LeaderboardHeaders
	}
}
