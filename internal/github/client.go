// Package github implements the activity source contract against the GitHub
// REST API v3, with transparent pagination, bounded retry with exponential
// backoff on server errors, and rate-limit sleep until the reset window.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cohortpulse/cohortpulse/internal/contract"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = time.Second
	perPage               = "100"
	userAgent             = "cohortpulse/1.0"
)

// Client talks to the GitHub REST API. It satisfies contract.ActivityClient.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	backoff    time.Duration

	// sleep is swapped out by tests; production code blocks the calling
	// goroutine, which is the intended behavior for a batch run.
	sleep func(time.Duration)

	// now is injected for rate-limit wait computation in tests.
	now func() time.Time
}

var _ contract.ActivityClient = (*Client)(nil)

// NewClient returns a Client authenticated with the given personal access token.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		token:      token,
		maxRetries: defaultMaxRetries,
		backoff:    defaultInitialBackoff,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// ListForks lists all forks of a repository.
func (c *Client) ListForks(ctx context.Context, owner, repo string) ([]contract.Fork, error) {
	q := url.Values{"per_page": {perPage}, "sort": {"oldest"}}
	var forks []contract.Fork
	err := c.listPages(ctx, fmt.Sprintf("/repos/%s/%s/forks", owner, repo), q, func(body []byte) error {
		var page []forkWire
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for _, f := range page {
			forks = append(forks, contract.Fork{
				OwnerLogin: f.Owner.Login,
				FullName:   f.FullName,
				CreatedAt:  f.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forks, nil
}

// ListCommits fetches commits, optionally narrowed by date range and author.
func (c *Client) ListCommits(ctx context.Context, owner, repo string, opts contract.CommitOptions) ([]contract.Commit, error) {
	q := url.Values{"per_page": {perPage}}
	if opts.Since != "" {
		q.Set("since", opts.Since)
	}
	if opts.Until != "" {
		q.Set("until", opts.Until)
	}
	if opts.Author != "" {
		q.Set("author", opts.Author)
	}
	var commits []contract.Commit
	err := c.listPages(ctx, fmt.Sprintf("/repos/%s/%s/commits", owner, repo), q, func(body []byte) error {
		var page []commitWire
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for _, cw := range page {
			commit := contract.Commit{
				SHA:        cw.SHA,
				AuthorDate: cw.Commit.Author.Date,
			}
			if cw.Author != nil {
				commit.AuthorLogin = cw.Author.Login
			}
			commits = append(commits, commit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

// CommitStats fetches line addition/deletion totals for a single commit.
func (c *Client) CommitStats(ctx context.Context, owner, repo, sha string) (contract.CommitStats, error) {
	var detail struct {
		Stats struct {
			Additions int `json:"additions"`
			Deletions int `json:"deletions"`
		} `json:"stats"`
	}
	if err := c.getObject(ctx, fmt.Sprintf("/repos/%s/%s/commits/%s", owner, repo, sha), nil, &detail); err != nil {
		return contract.CommitStats{}, err
	}
	return contract.CommitStats{Additions: detail.Stats.Additions, Deletions: detail.Stats.Deletions}, nil
}

// ListPullRequests fetches pull requests in the given state ("open", "closed", "all").
func (c *Client) ListPullRequests(ctx context.Context, owner, repo, state string) ([]contract.PullRequest, error) {
	q := url.Values{"per_page": {perPage}, "state": {state}}
	var prs []contract.PullRequest
	err := c.listPages(ctx, fmt.Sprintf("/repos/%s/%s/pulls", owner, repo), q, func(body []byte) error {
		var page []prWire
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for _, p := range page {
			prs = append(prs, contract.PullRequest{
				Number:    p.Number,
				UserLogin: p.User.Login,
				CreatedAt: p.CreatedAt,
				MergedAt:  p.MergedAt,
				ClosedAt:  p.ClosedAt,
				State:     p.State,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prs, nil
}

// PullRequestDetail fetches line counts for a single pull request.
func (c *Client) PullRequestDetail(ctx context.Context, owner, repo string, number int) (contract.PRDetail, error) {
	var detail struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
	}
	if err := c.getObject(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number), nil, &detail); err != nil {
		return contract.PRDetail{}, err
	}
	return contract.PRDetail{Additions: detail.Additions, Deletions: detail.Deletions}, nil
}

// ListIssues fetches issues for a repository, excluding PR-shaped items.
func (c *Client) ListIssues(ctx context.Context, owner, repo string) ([]contract.Issue, error) {
	q := url.Values{"per_page": {perPage}, "state": {"all"}}
	var issues []contract.Issue
	err := c.listPages(ctx, fmt.Sprintf("/repos/%s/%s/issues", owner, repo), q, func(body []byte) error {
		var page []issueWire
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for _, i := range page {
			if i.PullRequest != nil {
				continue
			}
			issues = append(issues, contract.Issue{UserLogin: i.User.Login, CreatedAt: i.CreatedAt})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// ListIssueComments fetches all issue comments for a repository.
func (c *Client) ListIssueComments(ctx context.Context, owner, repo, since string) ([]contract.Comment, error) {
	q := url.Values{"per_page": {perPage}}
	if since != "" {
		q.Set("since", since)
	}
	return c.listComments(ctx, fmt.Sprintf("/repos/%s/%s/issues/comments", owner, repo), q)
}

// ListReviewComments fetches all inline review comments across all PRs in a
// repository. The owning PR number is derived from each comment's PR URL.
func (c *Client) ListReviewComments(ctx context.Context, owner, repo, since string) ([]contract.ReviewComment, error) {
	q := url.Values{"per_page": {perPage}, "sort": {"created"}, "direction": {"desc"}}
	if since != "" {
		q.Set("since", since)
	}
	return c.listReviewComments(ctx, fmt.Sprintf("/repos/%s/%s/pulls/comments", owner, repo), q)
}

// PullRequestComments fetches issue-style comments on a single pull request.
func (c *Client) PullRequestComments(ctx context.Context, owner, repo string, number int) ([]contract.Comment, error) {
	q := url.Values{"per_page": {perPage}}
	return c.listComments(ctx, fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number), q)
}

// PullRequestReviewComments fetches inline review comments on a single pull request.
func (c *Client) PullRequestReviewComments(ctx context.Context, owner, repo string, number int) ([]contract.ReviewComment, error) {
	q := url.Values{"per_page": {perPage}}
	comments, err := c.listReviewComments(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d/comments", owner, repo, number), q)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].PullRequestNumber = number
	}
	return comments, nil
}

func (c *Client) listComments(ctx context.Context, path string, q url.Values) ([]contract.Comment, error) {
	var comments []contract.Comment
	err := c.listPages(ctx, path, q, func(body []byte) error {
		var page []commentWire
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for _, cm := range page {
			comments = append(comments, contract.Comment{
				UserLogin: cm.User.Login,
				CreatedAt: cm.CreatedAt,
				Body:      cm.Body,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) listReviewComments(ctx context.Context, path string, q url.Values) ([]contract.ReviewComment, error) {
	var comments []contract.ReviewComment
	err := c.listPages(ctx, path, q, func(body []byte) error {
		var page []reviewCommentWire
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for _, cm := range page {
			comments = append(comments, contract.ReviewComment{
				UserLogin:         cm.User.Login,
				CreatedAt:         cm.CreatedAt,
				Body:              cm.Body,
				PullRequestNumber: prNumberFromURL(cm.PullRequestURL),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// listPages walks every page of a list endpoint, handing each raw page body
// to the decode callback. Pagination follows the Link: rel="next" header.
func (c *Client) listPages(ctx context.Context, path string, q url.Values, decode func(body []byte) error) error {
	next := c.baseURL + path
	if len(q) > 0 {
		next += "?" + q.Encode()
	}
	for next != "" {
		body, links, err := c.getWithRetry(ctx, next)
		if err != nil {
			return err
		}
		if err := decode(body); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		next = links
	}
	return nil
}

// getObject fetches a single JSON object endpoint.
func (c *Client) getObject(ctx context.Context, path string, q url.Values, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	body, _, err := c.getWithRetry(ctx, target)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// getWithRetry performs one GET with bounded retry. Rate limiting sleeps the
// calling goroutine until the provider's stated reset time without consuming
// a retry attempt; server errors back off exponentially.
func (c *Client) getWithRetry(ctx context.Context, target string) (body []byte, nextURL string, err error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, "", err
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		req.Header.Set("User-Agent", userAgent)
		if c.token != "" {
			req.Header.Set("Authorization", "token "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			attempt++
			c.sleep(backoff)
			backoff *= 2
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			attempt++
			c.sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode == http.StatusForbidden && strings.Contains(strings.ToLower(string(data)), "rate limit") {
			c.sleep(c.rateLimitWait(resp.Header.Get("X-RateLimit-Reset")))
			continue // does not count against the retry budget
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("github API server error: status %d", resp.StatusCode)
			attempt++
			c.sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, truncateBody(data))
		}

		return data, parseNextLink(resp.Header.Get("Link")), nil
	}

	return nil, "", fmt.Errorf("github API request failed after %d attempts: %w", c.maxRetries, lastErr)
}

// rateLimitWait computes how long to sleep until the rate-limit window resets.
func (c *Client) rateLimitWait(resetHeader string) time.Duration {
	reset, err := strconv.ParseInt(resetHeader, 10, 64)
	if err != nil {
		return time.Minute
	}
	wait := time.Unix(reset, 0).Sub(c.now())
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

// parseNextLink extracts the rel="next" URL from a Link header, or "".
func parseNextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if strings.TrimSpace(section[1]) == `rel="next"` {
			return strings.Trim(strings.TrimSpace(section[0]), "<>")
		}
	}
	return ""
}

// prNumberFromURL parses the trailing number of a pull request API URL.
// Returns 0 when the URL does not end in a number.
func prNumberFromURL(prURL string) int {
	idx := strings.LastIndex(prURL, "/")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(prURL[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

func truncateBody(data []byte) string {
	const limit = 200
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}

// Wire types mirror the subset of the GitHub API payloads we consume.
type forkWire struct {
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at"`
	Owner     struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type commitWire struct {
	SHA    string `json:"sha"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
	Commit struct {
		Author struct {
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type prWire struct {
	Number    int    `json:"number"`
	CreatedAt string `json:"created_at"`
	MergedAt  string `json:"merged_at"`
	ClosedAt  string `json:"closed_at"`
	State     string `json:"state"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

type issueWire struct {
	CreatedAt string `json:"created_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	PullRequest *json.RawMessage `json:"pull_request"`
}

type commentWire struct {
	CreatedAt string `json:"created_at"`
	Body      string `json:"body"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

type reviewCommentWire struct {
	CreatedAt      string `json:"created_at"`
	Body           string `json:"body"`
	PullRequestURL string `json:"pull_request_url"`
	User           struct {
		Login string `json:"login"`
	} `json:"user"`
}
