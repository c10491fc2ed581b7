// Package jira implements the BugTracker port for JIRA servers using the
// go-jira client library.
package jira

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.BugTracker = (*Tracker)(nil)

// Tracker resolves bug IDs against a single JIRA server. The underlying
// go-jira client is created on the first lookup, not at construction, so a
// misconfigured server URL only surfaces (as a logged warning) when a bug is
// actually requested.
type Tracker struct {
	serverURL  string
	httpClient *http.Client
	logger     *slog.Logger

	mu     sync.Mutex
	client *gojira.Client
}

// NewTracker creates a Tracker for the JIRA server at serverURL. httpClient
// may be nil, in which case an ETag-caching client is used. Requests are
// never retried.
func NewTracker(serverURL string, httpClient *http.Client, logger *slog.Logger) *Tracker {
	if httpClient == nil {
		httpClient = &http.Client{Transport: httpcache.NewMemoryCacheTransport()}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Tracker{
		serverURL:  serverURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// BugInfo fetches the issue's summary, description, and status. Any failure
// to build the client or fetch the issue is logged and yields the zero BugInfo.
func (t *Tracker) BugInfo(ctx context.Context, bugID string) model.BugInfo {
	client, err := t.getClient()
	if err != nil {
		t.logger.Warn("unable to initialize JIRA client",
			"server", t.serverURL,
			"error", err,
		)
		return model.BugInfo{}
	}

	issue, _, err := client.Issue.GetWithContext(ctx, url.PathEscape(bugID), nil)
	if err != nil {
		t.logger.Warn("unable to fetch JIRA data for issue",
			"server", t.serverURL,
			"bug_id", bugID,
			"error", err,
		)
		return model.BugInfo{}
	}

	if issue == nil || issue.Fields == nil {
		t.logger.Warn("JIRA returned an issue without fields",
			"server", t.serverURL,
			"bug_id", bugID,
		)
		return model.BugInfo{}
	}

	info := model.BugInfo{
		Summary:     issue.Fields.Summary,
		Description: issue.Fields.Description,
	}
	if issue.Fields.Status != nil {
		info.Status = issue.Fields.Status.Name
	}

	return info
}

// BugURL returns the browse URL of the issue on the JIRA server.
func (t *Tracker) BugURL(bugID string) string {
	return strings.TrimRight(t.serverURL, "/ ") + "/browse/" + bugID
}

// getClient returns the cached client, creating it on first use. A failed
// construction is not cached, so the next lookup tries again.
func (t *Tracker) getClient() (*gojira.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, nil
	}

	serverURL, err := NormalizeURL(t.serverURL)
	if err != nil {
		return nil, err
	}

	client, err := gojira.NewClient(t.httpClient, serverURL)
	if err != nil {
		return nil, fmt.Errorf("create JIRA client: %w", err)
	}

	t.client = client
	return client, nil
}

// NormalizeURL trims trailing slashes and spaces from a JIRA base URL and
// validates it. The URL must be absolute http or https and must not contain
// "%" characters, which would collide with bug URL templating.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/ ")
	if trimmed == "" {
		return "", errors.New("JIRA URL is empty")
	}

	if strings.Contains(trimmed, "%") {
		return "", fmt.Errorf("JIRA URL %q must not contain %% characters", trimmed)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse JIRA URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("JIRA URL %q must use http or https", trimmed)
	}
	if u.Host == "" {
		return "", fmt.Errorf("JIRA URL %q has no host", trimmed)
	}

	return trimmed, nil
}
