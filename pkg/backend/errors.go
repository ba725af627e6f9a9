package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrMissingToken = errors.New("no bearer token in context")

// StatusError is a non-success answer from the backend.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}

	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether repeating the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

func IsNotFound(err error) bool {
	var statusErr *StatusError

	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	var statusErr *StatusError

	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}
