// Package core implements the aggregation and scoring pipeline: roster
// discovery, metrics fetching, period aggregation, leaderboards and alerts.
package core

import (
	"math"
	"time"

	"github.com/cohortpulse/cohortpulse/schema"
)

// ComputeScores converts cumulative metrics into four capped sub-scores, a
// total, and a classification tier. It is a pure function of its inputs: the
// clock is passed in so period scoring can reframe "today" as a period end.
func ComputeScores(m schema.AllTimeMetrics, cfg schema.ScoreConfig, now time.Time) schema.ScoreResult {
	totalDays := daysSince(cfg.BootcampStart(), now)
	activeRatio := math.Min(1, float64(m.ActiveDays)/float64(totalDays))
	commitsPerDay := float64(m.TotalCommits) / float64(totalDays)
	consistency := math.Min(cfg.ConsistencyMaxPoints, round1(
		activeRatio*cfg.ConsistencyActiveDaysWeight+
			math.Min(cfg.ConsistencyCommitsWeight, commitsPerDay*cfg.ConsistencyCommitsWeight)))

	collabPRs := math.Min(cfg.CollabPRCap, float64(m.PRsOpened)*cfg.PRPointsEach)
	collabReviews := math.Min(cfg.CollabReviewCap, float64(m.CommentsGiven)*cfg.ReviewPointsEach)
	collabIssues := math.Min(cfg.CollabIssueCap, float64(m.IssuesOpened)*cfg.IssuePointsEach)
	collabComments := math.Min(cfg.CollabCommentCap, float64(m.CommentsGiven+m.CommentsReceived)*cfg.CommentPointsEach)
	collaboration := math.Min(cfg.CollaborationMaxPoints, round1(
		collabPRs+collabReviews+collabIssues+collabComments))

	addedScore := math.Min(cfg.CodeVolumeAddedWeight, float64(m.LinesAdded)/cfg.LinesAddedMaxScale*cfg.CodeVolumeAddedWeight)
	deletedScore := math.Min(cfg.CodeVolumeDeletedWeight, float64(m.LinesDeleted)/cfg.LinesDeletedMaxScale*cfg.CodeVolumeDeletedWeight)
	codeVolume := math.Min(cfg.CodeVolumeMaxPoints, round1(addedScore+deletedScore))

	var mergeRate float64
	if m.PRsOpened > 0 {
		mergeRate = float64(m.PRsMerged) / float64(m.PRsOpened)
	}
	qualityMerge := math.Min(cfg.MergeRateMaxPoints, mergeRate*cfg.MergeRateMaxPoints)
	qualityFeedback := math.Min(cfg.FeedbackMaxPoints, float64(m.CommentsReceived)*cfg.FeedbackPointsEach)
	quality := math.Min(cfg.QualityMaxPoints, round1(qualityMerge+qualityFeedback))

	total := round1(consistency + collaboration + codeVolume + quality)

	return schema.ScoreResult{
		Consistency:    consistency,
		Collaboration:  collaboration,
		CodeVolume:     codeVolume,
		Quality:        quality,
		TotalScore:     total,
		Classification: Classify(total, cfg),
	}
}

// Classify maps a total score to its tier. Thresholds are checked in
// descending order with first match winning, so every score lands somewhere.
func Classify(total float64, cfg schema.ScoreConfig) string {
	switch {
	case total >= cfg.ClassifyExcellent:
		return schema.ClassExcellent
	case total >= cfg.ClassifyGood:
		return schema.ClassGood
	case total >= cfg.ClassifyAverage:
		return schema.ClassAverage
	case total >= cfg.ClassifyNeedsImprovement:
		return schema.ClassNeedsImprovement
	default:
		return schema.ClassAtRisk
	}
}

// daysSince counts whole days from start to now, never less than one.
func daysSince(start, now time.Time) int {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(nowDay.Sub(startDay).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// round1 rounds to one decimal place, ties to even.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
