package application

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors returned by application services. Driving adapters map
// them to transport-specific error responses.
var (
	// ErrNotFound indicates a requested object, or one of its parents, does
	// not exist or is not visible to the caller.
	ErrNotFound = errors.New("object does not exist")

	// ErrPermissionDenied indicates the caller may see the object but not
	// modify it.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotLoggedIn indicates the operation requires an authenticated user.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrLoginFailed indicates the supplied credentials were rejected.
	ErrLoginFailed = errors.New("login failed")

	// ErrNoBugTracker indicates the repository is not linked to a bug tracker.
	ErrNoBugTracker = errors.New("repository has no bug tracker")
)

// FormError reports invalid request fields, keyed by field name.
type FormError struct {
	Fields map[string][]string
}

// NewFormError creates a FormError holding a single field message.
func NewFormError(field, message string) *FormError {
	e := &FormError{Fields: map[string][]string{}}
	e.Add(field, message)
	return e
}

// Add records a message for field.
func (e *FormError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field message was recorded.
func (e *FormError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *FormError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid form data: " + strings.Join(names, ", ")
}
