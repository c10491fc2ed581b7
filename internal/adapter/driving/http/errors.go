package httphandler

import (
	"errors"
	"net/http"

	"github.com/ericfisherdev/reviewhub/internal/application"
)

// apiError is an error the web API reports with a stable numeric code.
type apiError struct {
	Code   int
	Msg    string
	Status int
}

var (
	errInternal         = apiError{Code: 1, Msg: "An internal error occurred", Status: http.StatusInternalServerError}
	errDoesNotExist     = apiError{Code: 100, Msg: "Object does not exist", Status: http.StatusNotFound}
	errPermissionDenied = apiError{Code: 101, Msg: "You don't have permission for this", Status: http.StatusForbidden}
	errNotLoggedIn      = apiError{Code: 103, Msg: "You are not logged in", Status: http.StatusUnauthorized}
	errLoginFailed      = apiError{Code: 104, Msg: "The username or password was not correct", Status: http.StatusUnauthorized}
	errInvalidFormData  = apiError{Code: 105, Msg: "One or more fields had errors", Status: http.StatusBadRequest}
)

// mapServiceError translates an application error into the API error to
// report and, for form errors, the per-field messages. ok is false for
// errors that have no API equivalent.
func mapServiceError(err error) (apiErr apiError, fields map[string][]string, ok bool) {
	var formErr *application.FormError
	switch {
	case errors.As(err, &formErr):
		return errInvalidFormData, formErr.Fields, true
	case errors.Is(err, application.ErrNotFound), errors.Is(err, application.ErrNoBugTracker):
		return errDoesNotExist, nil, true
	case errors.Is(err, application.ErrPermissionDenied):
		return errPermissionDenied, nil, true
	case errors.Is(err, application.ErrNotLoggedIn):
		return errNotLoggedIn, nil, true
	case errors.Is(err, application.ErrLoginFailed):
		return errLoginFailed, nil, true
	}
	return apiError{}, nil, false
}
