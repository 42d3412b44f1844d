package nope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/nope-net/nope-go/internal"
)

var (
	// ErrNoInput is returned by Evaluate and Screen when neither messages nor
	// text was provided. It is raised before any network I/O happens.
	ErrNoInput = errors.New("either messages or text must be provided")

	// ErrBothInputs is returned by Evaluate and Screen when both messages and
	// text were provided. It is raised before any network I/O happens.
	ErrBothInputs = errors.New("only one of messages or text may be provided")
)

// APIError is the common shape of all errors derived from a non-2xx HTTP
// response. It is embedded in the specific error types below, so the status
// code and server message are always available via errors.As:
//
//	var rateErr *nope.RateLimitError
//	if errors.As(err, &rateErr) {
//		log.Printf("rate limited (status %d)", rateErr.StatusCode)
//	}
type APIError struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
	// Message is the human-readable error message from the response body,
	// if the server provided one.
	Message string
}

// Error returns a string representation of the error.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("nope: API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("nope: %s (status %d)", e.Message, e.StatusCode)
}

// AuthError is returned on 401 and 403 responses. Retrying without changing
// credentials will not help.
type AuthError struct {
	APIError
}

// Unwrap exposes the embedded APIError to errors.As.
func (e *AuthError) Unwrap() error { return &e.APIError }

// ValidationError is returned when the server rejects the request payload
// (400 or 422). This is distinct from the client's own pre-flight checks,
// which surface as ErrNoInput or ErrBothInputs without any network call.
type ValidationError struct {
	APIError
}

// Unwrap exposes the embedded APIError to errors.As.
func (e *ValidationError) Unwrap() error { return &e.APIError }

// RateLimitError is returned on 429 responses. The request can be retried
// after RetryAfter seconds.
type RateLimitError struct {
	APIError
	// RetryAfter is the value of the Retry-After header in seconds. It is nil
	// when the server did not send the header; the caller chooses its own
	// backoff in that case.
	RetryAfter *float64
}

// Unwrap exposes the embedded APIError to errors.As.
func (e *RateLimitError) Unwrap() error { return &e.APIError }

// ServerError is returned on 5xx responses. Evaluate has no side effects on
// the caller's resources, so these requests are safe to retry.
type ServerError struct {
	APIError
}

// Unwrap exposes the embedded APIError to errors.As.
func (e *ServerError) Unwrap() error { return &e.APIError }

// ConnectionError is returned when the request never produced an HTTP
// response: DNS failure, connection reset, or timeout. It wraps the
// underlying transport error.
type ConnectionError struct {
	// Err is the underlying transport error.
	Err error
	// Timeout is true when the failure was a timeout, either from the
	// configured client timeout or a context deadline.
	Timeout bool
}

// Error returns a string representation of the error.
func (e *ConnectionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("nope: request timed out: %v", e.Err)
	}
	return fmt.Sprintf("nope: connection failed: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaError is returned when a 2xx response body cannot be parsed into the
// documented response shape. It indicates a contract mismatch between client
// and server and should be treated as non-retryable.
type SchemaError struct {
	// Field is the JSON field that failed validation, when known.
	Field string
	// Value is the offending value, when known.
	Value string
	// Err is the underlying cause: a decode error when the body was not
	// valid JSON, or a missing-required-field error.
	Err error
}

// Error returns a string representation of the error.
func (e *SchemaError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("nope: invalid response: field %q: %v", e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("nope: invalid response: field %q has unexpected value %q", e.Field, e.Value)
	}
	return fmt.Sprintf("nope: invalid response: %v", e.Err)
}

// Unwrap returns the underlying decode error, if any.
func (e *SchemaError) Unwrap() error { return e.Err }

// serverMessage extracts the error message from an error response body.
// The API uses {"error": "..."}; {"message": "..."} is accepted as a
// fallback. A body that is not JSON yields an empty message.
func serverMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

// errorFromResponse maps a non-2xx transport response onto the error
// taxonomy. The mapping is total: every non-2xx status produces a typed
// error, and anything outside the documented statuses falls back to a bare
// APIError.
func errorFromResponse(resp *internal.Response) error {
	api := APIError{
		StatusCode: resp.StatusCode,
		Message:    serverMessage(resp.Body),
	}

	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return &AuthError{APIError: api}
	case resp.StatusCode == 400 || resp.StatusCode == 422:
		return &ValidationError{APIError: api}
	case resp.StatusCode == 429:
		return &RateLimitError{APIError: api, RetryAfter: resp.RetryAfter}
	case resp.StatusCode >= 500:
		return &ServerError{APIError: api}
	}
	return &api
}

// connectionError wraps a transport-level failure, marking timeouts so
// callers can distinguish them from hard connection failures.
func connectionError(err error) error {
	var timeout bool
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		timeout = true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		timeout = true
	}
	return &ConnectionError{Err: err, Timeout: timeout}
}
