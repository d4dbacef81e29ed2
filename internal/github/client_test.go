package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortpulse/cohortpulse/internal/contract"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("test-token")
	c.baseURL = srv.URL
	c.httpClient = srv.Client()
	c.backoff = time.Millisecond
	c.sleep = func(time.Duration) {}
	return c
}

func TestListForksPagination(t *testing.T) {
	var pages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		assert.Equal(t, "token test-token", r.Header.Get("Authorization"))
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=2>; rel="next", <http://%s%s?page=2>; rel="last"`,
				r.Host, r.URL.Path, r.Host, r.URL.Path))
			fmt.Fprint(w, `[{"full_name":"amy/bootcamp","created_at":"2026-02-23T09:00:00Z","owner":{"login":"amy"}}]`)
		default:
			fmt.Fprint(w, `[{"full_name":"ben/bootcamp","created_at":"2026-02-24T09:00:00Z","owner":{"login":"ben"}}]`)
		}
	}))
	defer srv.Close()

	forks, err := newTestClient(srv).ListForks(context.Background(), "school", "bootcamp")
	require.NoError(t, err)
	require.Len(t, forks, 2)
	assert.Equal(t, 2, pages)
	assert.Equal(t, "amy", forks[0].OwnerLogin)
	assert.Equal(t, "ben/bootcamp", forks[1].FullName)
}

func TestListCommitsAuthorMayBeNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-03-01T00:00:00Z", r.URL.Query().Get("since"))
		fmt.Fprint(w, `[
			{"sha":"abc","author":{"login":"amy"},"commit":{"author":{"date":"2026-03-01T10:00:00Z"}}},
			{"sha":"def","author":null,"commit":{"author":{"date":"2026-03-01T11:00:00Z"}}}
		]`)
	}))
	defer srv.Close()

	commits, err := newTestClient(srv).ListCommits(context.Background(), "amy", "bootcamp", contract.CommitOptions{
		Since: "2026-03-01T00:00:00Z",
	})
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "amy", commits[0].AuthorLogin)
	assert.Empty(t, commits[1].AuthorLogin)
	assert.Equal(t, "2026-03-01T11:00:00Z", commits[1].AuthorDate)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"stats":{"additions":12,"deletions":3}}`)
	}))
	defer srv.Close()

	stats, err := newTestClient(srv).CommitStats(context.Background(), "amy", "bootcamp", "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 12, stats.Additions)
	assert.Equal(t, 3, stats.Deletions)
}

func TestRetryBudgetExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CommitStats(context.Background(), "amy", "bootcamp", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRateLimitSleepsUntilReset(t *testing.T) {
	reset := time.Now().Add(90 * time.Second).Unix()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("X-RateLimit-Reset", fmt.Sprint(reset))
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	var slept time.Duration
	c.sleep = func(d time.Duration) { slept += d }

	_, err := c.ListForks(context.Background(), "school", "bootcamp")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Greater(t, slept, 80*time.Second)
}

func TestClientErrorDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListForks(context.Background(), "school", "missing")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "status 404")
}

func TestListIssuesSkipsPullRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"user":{"login":"amy"},"created_at":"2026-03-01T10:00:00Z"},
			{"user":{"login":"ben"},"created_at":"2026-03-01T11:00:00Z","pull_request":{"url":"x"}}
		]`)
	}))
	defer srv.Close()

	issues, err := newTestClient(srv).ListIssues(context.Background(), "school", "bootcamp")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "amy", issues[0].UserLogin)
}

func TestReviewCommentPRNumberFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{
			"user":{"login":"mentor"},
			"created_at":"2026-03-02T09:00:00Z",
			"body":"nit: rename",
			"pull_request_url":"https://api.github.com/repos/amy/bootcamp/pulls/17"
		}]`)
	}))
	defer srv.Close()

	comments, err := newTestClient(srv).ListReviewComments(context.Background(), "amy", "bootcamp", "")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, 17, comments[0].PullRequestNumber)
	assert.Equal(t, "mentor", comments[0].UserLogin)
}

func TestParseNextLink(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"next and last", `<https://api.github.com/x?page=2>; rel="next", <https://api.github.com/x?page=9>; rel="last"`, "https://api.github.com/x?page=2"},
		{"last only", `<https://api.github.com/x?page=9>; rel="last"`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseNextLink(tc.header))
		})
	}
}
