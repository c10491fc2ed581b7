// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr        string
	DBPath            string
	SiteURL           string
	GitHubToken       string
	BugCacheTTL       time.Duration
	BugTrackerTimeout time.Duration
}

// HasGitHubToken returns true when a token for the GitHub issues bug tracker
// is configured. Without one, lookups run unauthenticated and hit the lower
// anonymous rate limit.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: REVIEWHUB_LISTEN_ADDR (127.0.0.1:8080),
// REVIEWHUB_DB_PATH (reviewhub.db), REVIEWHUB_SITE_URL (http://localhost:8080),
// REVIEWHUB_BUG_CACHE_TTL (5m), REVIEWHUB_BUG_TRACKER_TIMEOUT (10s).
// REVIEWHUB_GITHUB_TOKEN has no default.
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("REVIEWHUB_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "reviewhub.db"
	if v, ok := os.LookupEnv("REVIEWHUB_DB_PATH"); ok {
		dbPath = v
	}

	siteURL := "http://localhost:8080"
	if v, ok := os.LookupEnv("REVIEWHUB_SITE_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("REVIEWHUB_SITE_URL must be an absolute URL, got %q", v)
		}
		siteURL = strings.TrimRight(v, "/")
	}

	bugCacheTTL, err := durationEnv("REVIEWHUB_BUG_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	bugTrackerTimeout, err := durationEnv("REVIEWHUB_BUG_TRACKER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	if bugTrackerTimeout <= 0 {
		return nil, fmt.Errorf("REVIEWHUB_BUG_TRACKER_TIMEOUT must be positive, got %s", bugTrackerTimeout)
	}

	return &Config{
		ListenAddr:        listenAddr,
		DBPath:            dbPath,
		SiteURL:           siteURL,
		GitHubToken:       os.Getenv("REVIEWHUB_GITHUB_TOKEN"),
		BugCacheTTL:       bugCacheTTL,
		BugTrackerTimeout: bugTrackerTimeout,
	}, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}
