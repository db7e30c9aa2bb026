package portalapi

import (
	"errors"
	"fmt"
)

// Default messages used when the API does not supply one.
const (
	DefaultAuthMessage      = "Authentication failed"
	DefaultTimelineMessage  = "Failed to fetch case timeline"
	DefaultDocumentsMessage = "Failed to fetch case documents"
	DefaultCaseMessage      = "Failed to fetch case details"
	DefaultUpdateMessage    = "Failed to update case status"
)

// Resource identifies what a FetchError was trying to read.
type Resource string

const (
	ResourceCase      Resource = "case"
	ResourceTimeline  Resource = "timeline"
	ResourceDocuments Resource = "documents"
)

func (r Resource) defaultMessage() string {
	switch r {
	case ResourceTimeline:
		return DefaultTimelineMessage
	case ResourceDocuments:
		return DefaultDocumentsMessage
	default:
		return DefaultCaseMessage
	}
}

// AuthenticationError is returned when the API rejects a case number and
// access code pair, or when the exchange could not be completed.
type AuthenticationError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *AuthenticationError) Error() string { return e.Message }
func (e *AuthenticationError) Unwrap() error { return e.Err }

// FetchError is returned when reading case data fails.
type FetchError struct {
	Resource   Resource
	Message    string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string { return e.Message }
func (e *FetchError) Unwrap() error { return e.Err }

// UpdateError is returned when a status update is rejected or fails.
type UpdateError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *UpdateError) Error() string { return e.Message }
func (e *UpdateError) Unwrap() error { return e.Err }

// UserMessage returns the text to show for err. API errors yield their
// server-supplied or default message; anything else its Error string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Message
	}
	var updateErr *UpdateError
	if errors.As(err, &updateErr) {
		return updateErr.Message
	}
	return err.Error()
}

// StatusCode returns the HTTP status carried by an API error, or 0.
func StatusCode(err error) int {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr.StatusCode
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	var updateErr *UpdateError
	if errors.As(err, &updateErr) {
		return updateErr.StatusCode
	}
	return 0
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

// transportError describes a request that never produced a usable response.
func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
