// Package mangadex implements a typed client for the MangaDex REST API.
package mangadex

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrAuthenticationRequired is returned client-side, before any network call,
// when an operation that needs a logged-in user is attempted on an
// unauthenticated client.
var ErrAuthenticationRequired = errors.New("mangadex: this operation requires authentication")

// APIError is the generic error for any non-2xx response that does not map to
// a more specific kind. The raw response body is preserved for diagnostics.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mangadex: api responded with status %d: %s", e.Status, e.Body)
}

// BadRequestError maps HTTP 400 responses.
type BadRequestError struct {
	APIError
}

// UnauthorizedError maps HTTP 401 responses.
type UnauthorizedError struct {
	APIError
}

// ForbiddenError maps HTTP 403 responses.
type ForbiddenError struct {
	APIError
}

// NotFoundError maps HTTP 404 responses.
type NotFoundError struct {
	APIError
}

// LoginError reports a failed credential exchange against the auth endpoints.
type LoginError struct {
	APIError
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("mangadex: login failed with status %d: %s", e.Status, e.Body)
}

// RefreshError reports a failed token refresh. LastRefresh carries the
// timestamp of the previous successful mint for diagnostics.
type RefreshError struct {
	APIError
	LastRefresh time.Time
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("mangadex: token refresh failed with status %d (last refresh %s): %s",
		e.Status, e.LastRefresh.Format(time.RFC3339), e.Body)
}

// UploadInProgressError reports that the logged-in user already has an open
// upload session which must be committed or abandoned first.
type UploadInProgressError struct {
	SessionID string
}

func (e *UploadInProgressError) Error() string {
	return fmt.Sprintf("mangadex: an upload session already exists with ID %s", e.SessionID)
}

// statusError maps a non-2xx HTTP status to its error kind.
func statusError(status int, body string) error {
	base := APIError{Status: status, Body: body}
	switch status {
	case http.StatusBadRequest:
		return &BadRequestError{base}
	case http.StatusUnauthorized:
		return &UnauthorizedError{base}
	case http.StatusForbidden:
		return &ForbiddenError{base}
	case http.StatusNotFound:
		return &NotFoundError{base}
	default:
		return &base
	}
}
