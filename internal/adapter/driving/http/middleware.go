package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/reviewhub/internal/application"
	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

type contextKey int

const (
	userKey contextKey = iota
	requestIDKey
)

const maxRequestIDLength = 128

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// RequestIDFromContext returns the ID assigned to the request by the logging
// middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusWriter wraps http.ResponseWriter to capture the response status code
// and the route pattern that served the request.
type statusWriter struct {
	http.ResponseWriter
	status      int
	route       string
	wroteHeader bool
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	if !sw.wroteHeader {
		sw.status = status
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(status)
}

// Write records the implicit 200 of a body written without WriteHeader.
func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}

// headerWritten reports whether a response has already been started on w.
// Writers other than statusWriter are assumed untouched.
func headerWritten(w http.ResponseWriter) bool {
	sw, ok := w.(*statusWriter)
	return ok && sw.wroteHeader
}

// loggingMiddleware assigns a request ID, then logs each HTTP request with
// method, path, status, and duration. observer may be nil.
func loggingMiddleware(logger *slog.Logger, observer RequestObserver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", duration.Round(time.Microsecond),
			"request_id", requestID,
		)
		if observer != nil {
			observer.ObserveRequest(r.Method, sw.route, sw.status, duration)
		}
	})
}

// routeRecorder stores the mux pattern that matched the request on the
// enclosing statusWriter.
func routeRecorder(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if sw, ok := w.(*statusWriter); ok {
			sw.route = r.Pattern
		}
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response unless the handler already started one.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
				)
				if headerWritten(w) {
					return
				}
				writeAPIError(w, errInternal, nil)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// authMiddleware authenticates requests carrying an Authorization header,
// either "token <api token>" or HTTP Basic. Requests without credentials
// continue anonymously. Rejected credentials end the request with
// LOGIN_FAILED.
func authMiddleware(auth Authenticator, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || auth == nil {
			next.ServeHTTP(w, r)
			return
		}

		scheme, credentials, _ := strings.Cut(header, " ")

		var (
			user *model.User
			err  error
		)
		switch strings.ToLower(scheme) {
		case "token":
			user, err = auth.AuthenticateToken(r.Context(), credentials)
		case "basic":
			username, password, ok := r.BasicAuth()
			if !ok {
				writeAPIError(w, errLoginFailed, nil)
				return
			}
			user, err = auth.AuthenticateBasic(r.Context(), username, password)
		default:
			next.ServeHTTP(w, r)
			return
		}

		if errors.Is(err, application.ErrLoginFailed) {
			logger.Info("authentication failed",
				"scheme", strings.ToLower(scheme),
				"request_id", RequestIDFromContext(r.Context()),
			)
			writeAPIError(w, errLoginFailed, nil)
			return
		}
		if err != nil {
			logger.Error("authentication error", "error", err, "request_id", RequestIDFromContext(r.Context()))
			writeAPIError(w, errInternal, nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}
