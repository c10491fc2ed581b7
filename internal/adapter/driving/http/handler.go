// Package httphandler is the HTTP driving adapter serving the ReviewHub web API.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewhub/internal/application"
	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

// Authenticator resolves request credentials to a user.
type Authenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*model.User, error)
	AuthenticateBasic(ctx context.Context, username, password string) (*model.User, error)
}

// RequestObserver records served requests, typically as metrics.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	comments *application.ReplyCommentService
	bugs     *application.BugInfoService
	siteURL  string
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. siteURL is the
// absolute base URL used to build resource links.
func NewHandler(
	comments *application.ReplyCommentService,
	bugs *application.BugInfoService,
	siteURL string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		comments: comments,
		bugs:     bugs,
		siteURL:  strings.TrimRight(siteURL, "/"),
		logger:   logger,
	}
}

const (
	replyCommentsPath = "/api/review-requests/{review_request_id}/reviews/{review_id}/replies/{reply_id}/screenshot-comments/"
	replyCommentPath  = replyCommentsPath + "{comment_id}/"
	bugPath           = "/api/repositories/{repository_id}/bugs/{bug_id}/"
	localSitePrefix   = "/s/{local_site}"
)

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging, recovery, and authentication middleware. Reply comment routes
// are served both at the root and below /s/{local_site}/ for local sites.
// metrics may be nil to disable the /metrics endpoint.
func NewServeMux(
	h *Handler,
	auth Authenticator,
	observer RequestObserver,
	metrics http.Handler,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	for _, prefix := range []string{"", localSitePrefix} {
		mux.HandleFunc("GET "+prefix+replyCommentsPath+"{$}", h.ListReplyComments)
		mux.HandleFunc("POST "+prefix+replyCommentsPath+"{$}", h.CreateReplyComment)
		mux.HandleFunc("GET "+prefix+replyCommentPath+"{$}", h.GetReplyComment)
		mux.HandleFunc("PUT "+prefix+replyCommentPath+"{$}", h.UpdateReplyComment)
		mux.HandleFunc("DELETE "+prefix+replyCommentPath+"{$}", h.DeleteReplyComment)
	}

	// Repositories are global, so bug lookups have no local site form.
	mux.HandleFunc("GET "+bugPath+"{$}", h.GetBug)

	mux.HandleFunc("GET /api/health", h.Health)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	// Route recording innermost so the matched pattern is visible to logging.
	var wrapped http.Handler = routeRecorder(mux)
	wrapped = authMiddleware(auth, logger, wrapped)
	wrapped = recoveryMiddleware(logger, wrapped)
	wrapped = loggingMiddleware(logger, observer, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleServiceError maps application errors to API error responses.
// Unexpected errors are logged and answered with a 500.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	apiErr, fields, ok := mapServiceError(err)
	if !ok {
		h.logger.Error(msg,
			"error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)
		writeAPIError(w, errInternal, nil)
		return
	}
	writeAPIError(w, apiErr, fields)
}
