package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	githubadapter "github.com/ericfisherdev/reviewhub/internal/adapter/driven/github"
	jiraadapter "github.com/ericfisherdev/reviewhub/internal/adapter/driven/jira"
	sqliteadapter "github.com/ericfisherdev/reviewhub/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/reviewhub/internal/adapter/driving/http"
	"github.com/ericfisherdev/reviewhub/internal/application"
	"github.com/ericfisherdev/reviewhub/internal/config"
	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
	"github.com/ericfisherdev/reviewhub/internal/metrics"
)

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	cfg := c.cfg
	c.logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"site_url", cfg.SiteURL,
		"bug_cache_ttl", cfg.BugCacheTTL,
		"github_token", cfg.HasGitHubToken(),
	)

	db, err := c.openDB(ctx)
	if err != nil {
		return err
	}
	defer c.closeDB(db)
	c.logger.Info("migrations complete")

	userStore := sqliteadapter.NewUserRepo(db)
	repoStore := sqliteadapter.NewRepoRepo(db)
	reviewRequestStore := sqliteadapter.NewReviewRequestRepo(db)
	reviewStore := sqliteadapter.NewReviewRepo(db)
	commentStore := sqliteadapter.NewCommentRepo(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.NewMetrics(registry)
	if err != nil {
		return err
	}

	authSvc := application.NewAuthService(userStore, c.logger)
	trackers := application.NewTrackerProvider(newTrackerFactory(cfg, c.logger))
	bugSvc := application.NewBugInfoService(repoStore, trackers, cfg.BugCacheTTL, m, c.logger)
	commentSvc := application.NewReplyCommentService(reviewRequestStore, reviewStore, commentStore, c.logger)

	h := httphandler.NewHandler(commentSvc, bugSvc, cfg.SiteURL, c.logger)
	handler := httphandler.NewServeMux(h, authSvc, m, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), c.logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		c.logger.Info("http server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		c.logger.Info("shutting down")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.logger.Error("http server shutdown error", "error", err)
	}

	c.logger.Info("shutdown complete")
	return nil
}

// newTrackerFactory builds the bug tracker for a repository from its type and
// URL. JIRA responses go through an ETag cache bounded by the configured
// timeout; GitHub trackers build an equivalent stack themselves.
func newTrackerFactory(cfg *config.Config, logger *slog.Logger) application.TrackerFactory {
	return func(repo model.Repository) (driven.BugTracker, error) {
		switch repo.BugTrackerType {
		case model.BugTrackerJIRA:
			client := &http.Client{
				Transport: httpcache.NewMemoryCacheTransport(),
				Timeout:   cfg.BugTrackerTimeout,
			}
			return jiraadapter.NewTracker(repo.BugTrackerURL, client, logger), nil
		case model.BugTrackerGitHub:
			return githubadapter.NewTracker(repo.BugTrackerURL, cfg.GitHubToken, cfg.BugTrackerTimeout, logger), nil
		default:
			return nil, fmt.Errorf("unsupported bug tracker type %q for repository %d", repo.BugTrackerType, repo.ID)
		}
	}
}
