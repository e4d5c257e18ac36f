package dispatch

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lumodev/lumo/response"
)

var (
	// ErrNoRegistry means local dispatch was requested but no route
	// registry is configured. Never retried.
	ErrNoRegistry = errors.New("dispatch: no route registry configured")

	// ErrNotFound means no route matched in local dispatch. Never retried.
	ErrNotFound = errors.New("dispatch: no matching route")

	// ErrTimeout marks attempts that exceeded their deadline. Retried
	// like any transient failure.
	ErrTimeout = errors.New("dispatch: request timeout")

	// ErrUnsupportedTarget means the call target was neither a string,
	// a URL, nor an Endpoint.
	ErrUnsupportedTarget = errors.New("dispatch: unsupported target type")
)

// StatusError is the single structured failure shape for non-success
// outcomes. It carries enough detail (status, text, parsed body, URL) for
// callers to branch without string-matching, and unwraps to the matching
// sentinel so errors.Is can classify it.
type StatusError struct {
	Status     int
	StatusText string
	Body       any
	URL        string

	kind error
}

func (e *StatusError) Error() string {
	if e.StatusText != "" {
		return fmt.Sprintf("dispatch: %d %s (%s)", e.Status, e.StatusText, e.URL)
	}
	return fmt.Sprintf("dispatch: status %d (%s)", e.Status, e.URL)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

func notFoundError(url string) *StatusError {
	return &StatusError{
		Status:     http.StatusNotFound,
		StatusText: http.StatusText(http.StatusNotFound),
		URL:        url,
		kind:       ErrNotFound,
	}
}

func timeoutError(url string) *StatusError {
	return &StatusError{
		Status:     http.StatusRequestTimeout,
		StatusText: http.StatusText(http.StatusRequestTimeout),
		URL:        url,
		kind:       ErrTimeout,
	}
}

// upstreamError converts a non-success response into a structured failure,
// parsing the body when the content type declares JSON. A body that fails
// to parse degrades to an absent payload rather than a parse error.
func upstreamError(res *response.Response, url string) *StatusError {
	e := &StatusError{
		Status:     res.Status(),
		StatusText: res.StatusText(),
		URL:        url,
	}
	if res.IsJSON() {
		if data, err := res.Data(); err == nil {
			e.Body = data
		}
	}
	return e
}
