package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

// LastCommentLimit caps the stored length of the most recent comment body.
const LastCommentLimit = 200

// reviewCommentPRLimit bounds per-PR comment fetches in the daily path.
// Learners with more than this many same-day PRs are under-counted, which is
// an accepted cost tradeoff.
const reviewCommentPRLimit = 10

// BaseRepoData is one base repo's bulk-fetched activity, shared across all
// learners of that repo so the daily and all-time paths never re-fetch it.
type BaseRepoData struct {
	PRs            []contract.PullRequest
	Issues         []contract.Issue
	Comments       []contract.Comment
	ReviewComments []contract.ReviewComment
}

// FetchBaseRepoData bulk-fetches PRs, issues and comments for every base
// repo. Each sub-fetch that fails contributes an empty list with a warning;
// partial data beats total failure for a scheduled run.
func FetchBaseRepoData(ctx context.Context, client contract.ActivityClient, baseRepos []string, since string, includeReviewComments bool) map[string]BaseRepoData {
	result := make(map[string]BaseRepoData, len(baseRepos))
	for _, repoFull := range baseRepos {
		owner, repo := contract.SplitRepo(repoFull)
		if repo == "" {
			contract.LogWarn(fmt.Sprintf("skipping malformed base repo %q", repoFull), nil)
			continue
		}
		var data BaseRepoData
		var err error

		if data.PRs, err = client.ListPullRequests(ctx, owner, repo, "all"); err != nil {
			contract.LogWarn(fmt.Sprintf("failed to fetch PRs for %s", repoFull), err)
			data.PRs = nil
		}
		if data.Issues, err = client.ListIssues(ctx, owner, repo); err != nil {
			contract.LogWarn(fmt.Sprintf("failed to fetch issues for %s", repoFull), err)
			data.Issues = nil
		}
		if data.Comments, err = client.ListIssueComments(ctx, owner, repo, since); err != nil {
			contract.LogWarn(fmt.Sprintf("failed to fetch issue comments for %s", repoFull), err)
			data.Comments = nil
		}
		if includeReviewComments {
			if data.ReviewComments, err = client.ListReviewComments(ctx, owner, repo, since); err != nil {
				contract.LogWarn(fmt.Sprintf("failed to fetch review comments for %s", repoFull), err)
				data.ReviewComments = nil
			}
		}
		result[repoFull] = data
	}
	return result
}

// FetchLearnerDay collects one learner's activity for a single UTC day.
// Commits come live from the fork because the API cannot filter by both day
// and author at once; PR, issue and comment counts are filtered from the
// pre-fetched base repo data. Sub-fetch failures degrade to zero counts.
func FetchLearnerDay(ctx context.Context, client contract.ActivityClient, learner schema.Learner, baseData map[string]BaseRepoData, date string) schema.DailyRow {
	forkOwner, forkRepo := contract.SplitRepo(learner.ForkRepo)

	commits, err := client.ListCommits(ctx, forkOwner, forkRepo, contract.CommitOptions{
		Since: date + "T00:00:00Z",
		Until: date + "T23:59:59Z",
	})
	if err != nil {
		contract.LogWarn(fmt.Sprintf("failed to fetch commits for %s", learner.ForkRepo), err)
		commits = nil
	}
	var ownCommits []contract.Commit
	for _, c := range commits {
		if c.AuthorLogin != "" && contract.EqualsFold(c.AuthorLogin, learner.Username) {
			ownCommits = append(ownCommits, c)
		}
	}

	var linesAdded, linesDeleted int
	for _, c := range ownCommits {
		stats, err := client.CommitStats(ctx, forkOwner, forkRepo, c.SHA)
		if err != nil {
			continue
		}
		linesAdded += stats.Additions
		linesDeleted += stats.Deletions
	}

	data := baseData[learner.BaseRepo]
	userPRs := filterUserPRs(data.PRs, learner.Username, "")

	var prsOpened int
	var mergedToday []contract.PullRequest
	for _, pr := range userPRs {
		if contract.DayOf(pr.CreatedAt) == date {
			prsOpened++
		}
		if pr.MergedAt != "" && contract.DayOf(pr.MergedAt) == date {
			mergedToday = append(mergedToday, pr)
		}
	}
	avgMergeTime := meanMergeTime(mergedToday)

	var closedToday, rejectedToday int
	for _, pr := range userPRs {
		if pr.State == "closed" && contract.DayOf(pr.ClosedAt) == date {
			closedToday++
			if pr.MergedAt == "" {
				rejectedToday++
			}
		}
	}
	var rejectionRate float64
	if closedToday > 0 {
		rejectionRate = round2(float64(rejectedToday) / float64(closedToday))
	}

	var issuesOpened int
	for _, issue := range data.Issues {
		if contract.EqualsFold(issue.UserLogin, learner.Username) && contract.DayOf(issue.CreatedAt) == date {
			issuesOpened++
		}
	}

	var issueComments int
	for _, comment := range data.Comments {
		if contract.EqualsFold(comment.UserLogin, learner.Username) && contract.DayOf(comment.CreatedAt) == date {
			issueComments++
		}
	}

	baseOwner, baseRepo := contract.SplitRepo(learner.BaseRepo)
	var reviewCommentsGiven int
	for i, pr := range userPRs {
		if i >= reviewCommentPRLimit {
			break
		}
		comments, err := client.PullRequestReviewComments(ctx, baseOwner, baseRepo, pr.Number)
		if err != nil {
			continue
		}
		for _, comment := range comments {
			if contract.EqualsFold(comment.UserLogin, learner.Username) && contract.DayOf(comment.CreatedAt) == date {
				reviewCommentsGiven++
			}
		}
	}

	return schema.DailyRow{
		Username:            learner.Username,
		Date:                date,
		Commits:             len(ownCommits),
		PRsOpened:           prsOpened,
		PRsMerged:           len(mergedToday),
		IssuesOpened:        issuesOpened,
		IssueComments:       issueComments,
		ReviewCommentsGiven: reviewCommentsGiven,
		LinesAdded:          linesAdded,
		LinesDeleted:        linesDeleted,
		AvgMergeTime:        avgMergeTime,
		RejectionRate:       rejectionRate,
		LastUpdated:         time.Now().UTC().Format(time.RFC3339),
	}
}

// FetchLearnerAllTime collects one learner's cumulative metrics, filtered to
// activity on or after the bootcamp start date. Line counts come from per-PR
// detail, a coarser source than the daily per-commit stats, so cross-view
// totals are not expected to reconcile.
func FetchLearnerAllTime(ctx context.Context, client contract.ActivityClient, learner schema.Learner, baseData map[string]BaseRepoData, cfg schema.ScoreConfig, now time.Time) schema.AllTimeMetrics {
	forkOwner, forkRepo := contract.SplitRepo(learner.ForkRepo)
	startDate := cfg.BootcampStart().Format(schema.DateFormat)

	allCommits, err := client.ListCommits(ctx, forkOwner, forkRepo, contract.CommitOptions{
		Since:  startDate + "T00:00:00Z",
		Author: learner.Username,
	})
	if err != nil {
		contract.LogWarn(fmt.Sprintf("failed to fetch commits for %s", learner.ForkRepo), err)
		allCommits = nil
	}

	activeDates := make(map[string]bool)
	for _, c := range allCommits {
		if d := contract.DayOf(c.AuthorDate); d >= startDate {
			activeDates[d] = true
		}
	}

	weekAgo := now.UTC().AddDate(0, 0, -7).Format(schema.DateFormat) + "T00:00:00Z"
	weeklyCommits, err := client.ListCommits(ctx, forkOwner, forkRepo, contract.CommitOptions{
		Since:  weekAgo,
		Author: learner.Username,
	})
	if err != nil {
		weeklyCommits = nil
	}

	data := baseData[learner.BaseRepo]
	userPRs := filterUserPRs(data.PRs, learner.Username, startDate)

	var prsMerged int
	var mergedPRs []contract.PullRequest
	for _, pr := range userPRs {
		if pr.MergedAt != "" {
			prsMerged++
			mergedPRs = append(mergedPRs, pr)
		}
		if d := contract.DayOf(pr.CreatedAt); d >= startDate {
			activeDates[d] = true
		}
	}

	baseOwner, baseRepo := contract.SplitRepo(learner.BaseRepo)
	var linesAdded, linesDeleted int
	for _, pr := range userPRs {
		detail, err := client.PullRequestDetail(ctx, baseOwner, baseRepo, pr.Number)
		if err != nil {
			continue
		}
		linesAdded += detail.Additions
		linesDeleted += detail.Deletions
	}

	avgMergeTime := meanMergeTime(mergedPRs)

	var closed, rejected int
	for _, pr := range userPRs {
		if pr.State == "closed" {
			closed++
			if pr.MergedAt == "" {
				rejected++
			}
		}
	}
	var rejectionRate float64
	if closed > 0 {
		rejectionRate = round2(float64(rejected) / float64(closed))
	}

	// Comments received: issue-style comments on the learner's PRs plus
	// inline review comments on them, from anyone else. The latest comment
	// regardless of author is retained for display.
	var commentsReceived int
	var lastCommentText, lastCommentDate string
	for _, pr := range userPRs {
		comments, err := client.PullRequestComments(ctx, baseOwner, baseRepo, pr.Number)
		if err != nil {
			continue
		}
		for _, c := range comments {
			if contract.DayOf(c.CreatedAt) < startDate {
				continue
			}
			if !contract.EqualsFold(c.UserLogin, learner.Username) {
				commentsReceived++
			}
			if c.CreatedAt > lastCommentDate {
				lastCommentDate = c.CreatedAt
				lastCommentText = c.Body
			}
		}
	}

	userPRNumbers := make(map[int]bool, len(userPRs))
	for _, pr := range userPRs {
		userPRNumbers[pr.Number] = true
	}
	for _, c := range data.ReviewComments {
		if !userPRNumbers[c.PullRequestNumber] {
			continue
		}
		if contract.DayOf(c.CreatedAt) < startDate {
			continue
		}
		if !contract.EqualsFold(c.UserLogin, learner.Username) {
			commentsReceived++
		}
		if c.CreatedAt > lastCommentDate {
			lastCommentDate = c.CreatedAt
			lastCommentText = c.Body
		}
	}
	lastCommentText = contract.TruncateComment(lastCommentText, LastCommentLimit)

	var commentsGiven int
	for _, c := range data.Comments {
		if contract.EqualsFold(c.UserLogin, learner.Username) && contract.DayOf(c.CreatedAt) >= startDate {
			commentsGiven++
		}
	}
	for _, c := range data.ReviewComments {
		if contract.EqualsFold(c.UserLogin, learner.Username) && contract.DayOf(c.CreatedAt) >= startDate {
			commentsGiven++
		}
	}

	var issuesOpened int
	for _, issue := range data.Issues {
		if contract.EqualsFold(issue.UserLogin, learner.Username) && contract.DayOf(issue.CreatedAt) >= startDate {
			issuesOpened++
		}
	}

	lastActive := "N/A"
	if len(activeDates) > 0 {
		dates := make([]string, 0, len(activeDates))
		for d := range activeDates {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		lastActive = dates[len(dates)-1]
	}

	return schema.AllTimeMetrics{
		TotalCommits:     len(allCommits),
		WeeklyCommits:    len(weeklyCommits),
		ActiveDays:       len(activeDates),
		LinesAdded:       linesAdded,
		LinesDeleted:     linesDeleted,
		PRsOpened:        len(userPRs),
		PRsMerged:        prsMerged,
		CommentsReceived: commentsReceived,
		CommentsGiven:    commentsGiven,
		IssuesOpened:     issuesOpened,
		AvgMergeTime:     avgMergeTime,
		RejectionRate:    rejectionRate,
		LastActive:       lastActive,
		LastComment:      lastCommentText,
	}
}

// filterUserPRs keeps PRs authored by the learner, optionally filtered to
// creation on or after sinceDate. An empty sinceDate disables the filter.
func filterUserPRs(prs []contract.PullRequest, username, sinceDate string) []contract.PullRequest {
	var out []contract.PullRequest
	for _, pr := range prs {
		if !contract.EqualsFold(pr.UserLogin, username) {
			continue
		}
		if sinceDate != "" && contract.DayOf(pr.CreatedAt) < sinceDate {
			continue
		}
		out = append(out, pr)
	}
	return out
}

// meanMergeTime returns the mean open-to-merge duration in hours, rounded to
// one decimal, over PRs that have a merge timestamp. Zero when none do.
func meanMergeTime(prs []contract.PullRequest) float64 {
	var total float64
	var count int
	for _, pr := range prs {
		if pr.MergedAt == "" {
			continue
		}
		created, err1 := time.Parse(time.RFC3339, pr.CreatedAt)
		merged, err2 := time.Parse(time.RFC3339, pr.MergedAt)
		if err1 != nil || err2 != nil {
			continue
		}
		total += merged.Sub(created).Hours()
		count++
	}
	if count == 0 {
		return 0
	}
	return round1(total / float64(count))
}

// round2 rounds to two decimal places, ties to even.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
