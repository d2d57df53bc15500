package api

import (
	"errors"
	"fmt"
)

// FallbackMessage is surfaced when the server fails without a readable
// JSON error body. Kept in the product locale, same as the backend's
// own messages.
const FallbackMessage = "Възникна грешка при заявката"

// APIError is a non-2xx response from the backend. Message is the
// server's "detail" field verbatim, or FallbackMessage when the body
// could not be parsed.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError means the request never produced a server response:
// DNS failure, timeout, refused connection, cancelled context. The
// original error is preserved for diagnostics.
type TransportError struct {
	Op  string // "GET /api/invoices"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsAPIError extracts an *APIError if err is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsTransport reports whether err is a transport-level failure, i.e. one
// a caller may reasonably retry.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// StatusCode returns the HTTP status of an application error, or 0 for
// transport and other failures.
func StatusCode(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}
