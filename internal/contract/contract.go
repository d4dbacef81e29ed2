// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
)

// Fork is one fork of a base repository.
type Fork struct {
	OwnerLogin string
	FullName   string // "owner/name"
	CreatedAt  string // RFC3339
}

// Commit is one commit as reported by the activity source.
type Commit struct {
	SHA         string
	AuthorLogin string // API-reported author account, may be empty
	AuthorDate  string // RFC3339, from the commit metadata
}

// CommitStats holds per-commit line counts.
type CommitStats struct {
	Additions int
	Deletions int
}

// PullRequest is the list-level view of a pull request. MergedAt and ClosedAt
// are empty strings when the PR is still open or was never merged.
type PullRequest struct {
	Number    int
	UserLogin string
	CreatedAt string
	MergedAt  string
	ClosedAt  string
	State     string
}

// PRDetail holds the detail-level line counts of a pull request.
type PRDetail struct {
	Additions int
	Deletions int
}

// Issue is one issue; PR-shaped items are excluded by the client.
type Issue struct {
	UserLogin string
	CreatedAt string
}

// Comment is an issue-style comment.
type Comment struct {
	UserLogin string
	CreatedAt string
	Body      string
}

// ReviewComment is an inline review comment attached to a pull request.
type ReviewComment struct {
	UserLogin         string
	CreatedAt         string
	Body              string
	PullRequestNumber int
}

// CommitOptions narrows a commit listing. Zero values mean "no filter".
type CommitOptions struct {
	Since  string // RFC3339
	Until  string // RFC3339
	Author string // server-side author filter
}

// ActivityClient is the contract with the remote code-hosting API. All list
// operations paginate and retry transparently: callers always receive a
// complete materialized collection, never a partial page.
type ActivityClient interface {
	ListForks(ctx context.Context, owner, repo string) ([]Fork, error)
	ListCommits(ctx context.Context, owner, repo string, opts CommitOptions) ([]Commit, error)
	CommitStats(ctx context.Context, owner, repo, sha string) (CommitStats, error)
	ListPullRequests(ctx context.Context, owner, repo, state string) ([]PullRequest, error)
	PullRequestDetail(ctx context.Context, owner, repo string, number int) (PRDetail, error)
	ListIssues(ctx context.Context, owner, repo string) ([]Issue, error)
	ListIssueComments(ctx context.Context, owner, repo, since string) ([]Comment, error)
	ListReviewComments(ctx context.Context, owner, repo, since string) ([]ReviewComment, error)
	PullRequestComments(ctx context.Context, owner, repo string, number int) ([]Comment, error)
	PullRequestReviewComments(ctx context.Context, owner, repo string, number int) ([]ReviewComment, error)
}

// TabularStore is the contract with the spreadsheet-shaped backing store.
// Tabs are named grids of string cells with a header row.
type TabularStore interface {
	// ReadAll returns every row of a tab including the header row. A missing
	// tab reads as empty, not as an error.
	ReadAll(ctx context.Context, tab string) ([][]string, error)

	// UpsertRows writes rows keyed by the given column indexes: a row whose
	// key cells match an existing row (case-insensitively) overwrites it in
	// place, anything else appends. The implementation performs one full read
	// and one batched write per call regardless of row count.
	UpsertRows(ctx context.Context, tab string, keyColumns []int, rows [][]string) error

	// ClearAndWrite replaces the entire tab with the given header and rows.
	ClearAndWrite(ctx context.Context, tab string, headers []string, rows [][]string) error

	// EnsureTab creates the tab with the given header row if it does not
	// exist or has no recognizable header yet.
	EnsureTab(ctx context.Context, tab string, headers []string) error

	// ReadConfig returns the Config tab as a key-value map.
	ReadConfig(ctx context.Context) (map[string]string, error)

	// WriteConfigValue updates (or appends) a single Config tab entry.
	WriteConfigValue(ctx context.Context, key, value string) error

	Close() error
}
