package schema

import (
	"strconv"
	"strings"
	"time"
)

// DateFormat is the canonical day representation used across tabs and keys.
const DateFormat = "2006-01-02"

// DefaultBootcampStart is used whenever bootcamp_start_date is missing or
// unparseable. Malformed config values never abort a run.
const DefaultBootcampStart = "2026-02-23"

// ScoreConfig is the typed view of the Config tab. Every field has a default;
// missing or malformed values fall back silently so a half-edited Config tab
// can never break a scheduled run.
type ScoreConfig struct {
	BootcampStartDate string

	InactiveThresholdDays   int
	AtRiskScoreThreshold    float64
	DecliningScoreThreshold float64
	DecliningActiveDaysMin  int

	ConsistencyMaxPoints        float64
	ConsistencyActiveDaysWeight float64
	ConsistencyCommitsWeight    float64

	CollaborationMaxPoints float64
	PRPointsEach           float64
	ReviewPointsEach       float64
	IssuePointsEach        float64
	CommentPointsEach      float64
	CollabPRCap            float64
	CollabReviewCap        float64
	CollabIssueCap         float64
	CollabCommentCap       float64

	CodeVolumeMaxPoints     float64
	LinesAddedMaxScale      float64
	LinesDeletedMaxScale    float64
	CodeVolumeAddedWeight   float64
	CodeVolumeDeletedWeight float64

	QualityMaxPoints   float64
	MergeRateMaxPoints float64
	FeedbackMaxPoints  float64
	FeedbackPointsEach float64

	ClassifyExcellent        float64
	ClassifyGood             float64
	ClassifyAverage          float64
	ClassifyNeedsImprovement float64

	CustomLeaderboardStart string
	CustomLeaderboardEnd   string
	LastPollTimestamp      string

	BaseRepos     []string
	ExcludedUsers []string
	ManualUsers   []Learner
}

// DefaultScoreConfig returns the full default parameter set.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		BootcampStartDate: DefaultBootcampStart,

		InactiveThresholdDays:   7,
		AtRiskScoreThreshold:    30,
		DecliningScoreThreshold: 50,
		DecliningActiveDaysMin:  2,

		ConsistencyMaxPoints:        30,
		ConsistencyActiveDaysWeight: 20,
		ConsistencyCommitsWeight:    10,

		CollaborationMaxPoints: 25,
		PRPointsEach:           2,
		ReviewPointsEach:       1.5,
		IssuePointsEach:        1,
		CommentPointsEach:      0.5,
		CollabPRCap:            8,
		CollabReviewCap:        7,
		CollabIssueCap:         5,
		CollabCommentCap:       5,

		CodeVolumeMaxPoints:     25,
		LinesAddedMaxScale:      500,
		LinesDeletedMaxScale:    200,
		CodeVolumeAddedWeight:   15,
		CodeVolumeDeletedWeight: 10,

		QualityMaxPoints:   20,
		MergeRateMaxPoints: 15,
		FeedbackMaxPoints:  5,
		FeedbackPointsEach: 1,

		ClassifyExcellent:        80,
		ClassifyGood:             60,
		ClassifyAverage:          40,
		ClassifyNeedsImprovement: 20,

		BaseRepos: []string{"ed-donner/llm_engineering"},
	}
}

// ConfigDefaults lists the Config tab keys and their default values, in the
// order they are seeded into a fresh Config tab.
var ConfigDefaults = [][2]string{
	{"bootcamp_start_date", DefaultBootcampStart},
	{"inactive_threshold_days", "7"},
	{"at_risk_score_threshold", "30"},
	{"declining_score_threshold", "50"},
	{"declining_active_days_min", "2"},
	{"consistency_max_points", "30"},
	{"consistency_active_days_weight", "20"},
	{"consistency_commits_weight", "10"},
	{"collaboration_max_points", "25"},
	{"pr_points_each", "2"},
	{"review_points_each", "1.5"},
	{"issue_points_each", "1"},
	{"comment_points_each", "0.5"},
	{"collab_pr_cap", "8"},
	{"collab_review_cap", "7"},
	{"collab_issue_cap", "5"},
	{"collab_comment_cap", "5"},
	{"code_volume_max_points", "25"},
	{"lines_added_max_scale", "500"},
	{"lines_deleted_max_scale", "200"},
	{"code_volume_added_weight", "15"},
	{"code_volume_deleted_weight", "10"},
	{"quality_max_points", "20"},
	{"merge_rate_max_points", "15"},
	{"feedback_max_points", "5"},
	{"feedback_points_each", "1"},
	{"classify_excellent", "80"},
	{"classify_good", "60"},
	{"classify_average", "40"},
	{"classify_needs_improvement", "20"},
	{"custom_leaderboard_start", ""},
	{"custom_leaderboard_end", ""},
	{"excluded_users", ""},
	{"manual_users", ""},
	{"base_repos", "ed-donner/llm_engineering"},
}

// ParseScoreConfig builds a ScoreConfig from the raw Config tab key-value
// pairs, falling back to defaults for anything missing or malformed.
func ParseScoreConfig(raw map[string]string) ScoreConfig {
	cfg := DefaultScoreConfig()

	cfg.BootcampStartDate = dateOr(raw["bootcamp_start_date"], cfg.BootcampStartDate)

	cfg.InactiveThresholdDays = intOr(raw["inactive_threshold_days"], cfg.InactiveThresholdDays)
	cfg.AtRiskScoreThreshold = floatOr(raw["at_risk_score_threshold"], cfg.AtRiskScoreThreshold)
	cfg.DecliningScoreThreshold = floatOr(raw["declining_score_threshold"], cfg.DecliningScoreThreshold)
	cfg.DecliningActiveDaysMin = intOr(raw["declining_active_days_min"], cfg.DecliningActiveDaysMin)

	cfg.ConsistencyMaxPoints = floatOr(raw["consistency_max_points"], cfg.ConsistencyMaxPoints)
	cfg.ConsistencyActiveDaysWeight = floatOr(raw["consistency_active_days_weight"], cfg.ConsistencyActiveDaysWeight)
	cfg.ConsistencyCommitsWeight = floatOr(raw["consistency_commits_weight"], cfg.ConsistencyCommitsWeight)

	cfg.CollaborationMaxPoints = floatOr(raw["collaboration_max_points"], cfg.CollaborationMaxPoints)
	cfg.PRPointsEach = floatOr(raw["pr_points_each"], cfg.PRPointsEach)
	cfg.ReviewPointsEach = floatOr(raw["review_points_each"], cfg.ReviewPointsEach)
	cfg.IssuePointsEach = floatOr(raw["issue_points_each"], cfg.IssuePointsEach)
	cfg.CommentPointsEach = floatOr(raw["comment_points_each"], cfg.CommentPointsEach)
	cfg.CollabPRCap = floatOr(raw["collab_pr_cap"], cfg.CollabPRCap)
	cfg.CollabReviewCap = floatOr(raw["collab_review_cap"], cfg.CollabReviewCap)
	cfg.CollabIssueCap = floatOr(raw["collab_issue_cap"], cfg.CollabIssueCap)
	cfg.CollabCommentCap = floatOr(raw["collab_comment_cap"], cfg.CollabCommentCap)

	cfg.CodeVolumeMaxPoints = floatOr(raw["code_volume_max_points"], cfg.CodeVolumeMaxPoints)
	cfg.LinesAddedMaxScale = floatOr(raw["lines_added_max_scale"], cfg.LinesAddedMaxScale)
	cfg.LinesDeletedMaxScale = floatOr(raw["lines_deleted_max_scale"], cfg.LinesDeletedMaxScale)
	cfg.CodeVolumeAddedWeight = floatOr(raw["code_volume_added_weight"], cfg.CodeVolumeAddedWeight)
	cfg.CodeVolumeDeletedWeight = floatOr(raw["code_volume_deleted_weight"], cfg.CodeVolumeDeletedWeight)

	cfg.QualityMaxPoints = floatOr(raw["quality_max_points"], cfg.QualityMaxPoints)
	cfg.MergeRateMaxPoints = floatOr(raw["merge_rate_max_points"], cfg.MergeRateMaxPoints)
	cfg.FeedbackMaxPoints = floatOr(raw["feedback_max_points"], cfg.FeedbackMaxPoints)
	cfg.FeedbackPointsEach = floatOr(raw["feedback_points_each"], cfg.FeedbackPointsEach)

	cfg.ClassifyExcellent = floatOr(raw["classify_excellent"], cfg.ClassifyExcellent)
	cfg.ClassifyGood = floatOr(raw["classify_good"], cfg.ClassifyGood)
	cfg.ClassifyAverage = floatOr(raw["classify_average"], cfg.ClassifyAverage)
	cfg.ClassifyNeedsImprovement = floatOr(raw["classify_needs_improvement"], cfg.ClassifyNeedsImprovement)

	cfg.CustomLeaderboardStart = strings.TrimSpace(raw["custom_leaderboard_start"])
	cfg.CustomLeaderboardEnd = strings.TrimSpace(raw["custom_leaderboard_end"])
	cfg.LastPollTimestamp = strings.TrimSpace(raw["last_poll_timestamp"])

	if repos := splitList(raw["base_repos"]); len(repos) > 0 {
		cfg.BaseRepos = repos
	}
	cfg.ExcludedUsers = splitList(raw["excluded_users"])
	cfg.ManualUsers = ParseManualUsers(raw["manual_users"], cfg.BaseRepos)

	return cfg
}

// BootcampStart returns the configured bootcamp start as a time, falling back
// to the hardcoded default when the value does not parse.
func (c ScoreConfig) BootcampStart() time.Time {
	t, err := time.Parse(DateFormat, c.BootcampStartDate)
	if err != nil {
		t, _ = time.Parse(DateFormat, DefaultBootcampStart)
	}
	return t
}

// ParseManualUsers parses the manual_users config value. Entries are
// comma-separated; each entry is "username", "username:owner/fork", or
// "username:owner/fork:owner/base". Missing parts default to a fork named
// after the first base repo and to the first base repo itself.
func ParseManualUsers(value string, baseRepos []string) []Learner {
	defaultBase := ""
	if len(baseRepos) > 0 {
		defaultBase = baseRepos[0]
	}

	var learners []Learner
	for _, entry := range splitList(value) {
		parts := strings.Split(entry, ":")
		username := strings.TrimSpace(parts[0])
		if username == "" {
			continue
		}
		l := Learner{Username: username, BaseRepo: defaultBase}
		if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
			l.ForkRepo = strings.TrimSpace(parts[1])
		} else if defaultBase != "" {
			repoName := defaultBase
			if idx := strings.Index(defaultBase, "/"); idx >= 0 {
				repoName = defaultBase[idx+1:]
			}
			l.ForkRepo = username + "/" + repoName
		}
		if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
			l.BaseRepo = strings.TrimSpace(parts[2])
		}
		learners = append(learners, l)
	}
	return learners
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intOr(value string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}

func floatOr(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return v
}

func dateOr(value string, fallback string) string {
	value = strings.TrimSpace(value)
	if _, err := time.Parse(DateFormat, value); err != nil {
		return fallback
	}
	return value
}
