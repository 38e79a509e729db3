package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRequestFailed wraps transport level failures (DNS, refused connection, timeouts).
	ErrRequestFailed = errors.New("backend request failed")

	// ErrEmptyToken is returned when the backend answers a login without a session token.
	ErrEmptyToken = errors.New("backend returned an empty session token")
)

// StatusError is returned when the backend answers with an unexpected status code.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("backend %s %s returned %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsHardFailure reports whether err carries a 401 or 403 answer from the backend.
// Those are never retried: the server actively denies access.
func IsHardFailure(err error) bool {
	code, ok := StatusCode(err)
	return ok && (code == http.StatusUnauthorized || code == http.StatusForbidden)
}

// StatusCode extracts the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}
