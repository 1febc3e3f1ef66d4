package fetch

import (
	"fmt"
	"time"
)

// Error represents a non-timeout fetch failure: bad URL, transport error,
// or a non-2xx response.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch error for %s: %s (%d)", e.URL, e.Message, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// TimeoutError indicates the fetch deadline elapsed before the response was
// read.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch timeout for %s after %s", e.URL, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}
