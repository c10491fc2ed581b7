// Package github implements the BugTracker port for GitHub Issues using the
// go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.BugTracker = (*Tracker)(nil)

// Tracker resolves bug IDs as issue numbers of one GitHub repository. The
// go-github client is built lazily on the first lookup.
type Tracker struct {
	repoFullName string
	token        string
	timeout      time.Duration
	logger       *slog.Logger

	// Test hooks; zero values select the public API and the default transport stack.
	httpClient *http.Client
	baseURL    string

	mu     sync.Mutex
	client *gh.Client
	owner  string
	repo   string
}

// NewTracker creates a Tracker for repoFullName ("owner/repo"). token may be
// empty for anonymous access to public repositories.
func NewTracker(repoFullName, token string, timeout time.Duration, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Tracker{
		repoFullName: repoFullName,
		token:        token,
		timeout:      timeout,
		logger:       logger,
	}
}

// NewTrackerWithHTTPClient creates a Tracker that talks to baseURL through
// httpClient. This constructor is intended for testing, allowing injection of
// an httptest server.
func NewTrackerWithHTTPClient(httpClient *http.Client, baseURL, repoFullName string, logger *slog.Logger) *Tracker {
	t := NewTracker(repoFullName, "", 0, logger)
	t.httpClient = httpClient
	t.baseURL = baseURL
	return t
}

// BugInfo fetches the issue's title, body, and state. Any failure is logged
// and yields the zero BugInfo.
func (t *Tracker) BugInfo(ctx context.Context, bugID string) model.BugInfo {
	client, owner, repo, err := t.getClient()
	if err != nil {
		t.logger.Warn("unable to initialize GitHub client",
			"repo", t.repoFullName,
			"error", err,
		)
		return model.BugInfo{}
	}

	number, err := strconv.Atoi(strings.TrimPrefix(bugID, "#"))
	if err != nil || number <= 0 {
		t.logger.Warn("invalid GitHub issue number",
			"repo", t.repoFullName,
			"bug_id", bugID,
		)
		return model.BugInfo{}
	}

	issue, resp, err := client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		t.logger.Warn("unable to fetch GitHub data for issue",
			"repo", t.repoFullName,
			"bug_id", bugID,
			"error", err,
		)
		return model.BugInfo{}
	}

	logRateLimit(resp, t.repoFullName)

	return model.BugInfo{
		Summary:     issue.GetTitle(),
		Description: issue.GetBody(),
		Status:      issue.GetState(),
	}
}

// BugURL returns the issue's page on github.com.
func (t *Tracker) BugURL(bugID string) string {
	return "https://github.com/" + t.repoFullName + "/issues/" + strings.TrimPrefix(bugID, "#")
}

// getClient returns the cached client, creating it on first use with the
// following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, token auth when configured)
func (t *Tracker) getClient() (*gh.Client, string, string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, t.owner, t.repo, nil
	}

	owner, repo, err := splitRepo(t.repoFullName)
	if err != nil {
		return nil, "", "", err
	}

	httpClient := t.httpClient
	if httpClient == nil {
		httpClient = github_ratelimit.NewClient(httpcache.NewMemoryCacheTransport())
		httpClient.Timeout = t.timeout
	}

	client := gh.NewClient(httpClient)
	if t.token != "" {
		client = client.WithAuthToken(t.token)
	}

	if t.baseURL != "" {
		u, err := url.Parse(t.baseURL)
		if err != nil {
			return nil, "", "", fmt.Errorf("parsing base URL: %w", err)
		}
		client.BaseURL = u
	}

	t.client, t.owner, t.repo = client, owner, repo
	return client, owner, repo, nil
}

// ValidateRepoName reports whether fullName has the "owner/repo" form.
func ValidateRepoName(fullName string) error {
	_, _, err := splitRepo(fullName)
	return err
}

func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

func logRateLimit(resp *gh.Response, repoFullName string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"repo", repoFullName,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
