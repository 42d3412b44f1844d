// Package internal holds the raw HTTP transport for the NOPE SDK. It knows
// how to send a JSON payload and read back the pieces the SDK's error
// taxonomy and schema layer need; it performs no retries and no response
// interpretation beyond header parsing.
package internal

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.1.0"

const userAgent = "nope-go/" + Version

// Response is the raw result of a transport exchange, before the SDK maps
// statuses onto its error taxonomy and decodes the body.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Body is the full response body.
	Body []byte
	// RetryAfter is the parsed Retry-After header in seconds. It is only
	// set on 429 responses and is nil when the header is absent or
	// unparseable.
	RetryAfter *float64
}

// NormalizeBaseURL strips any trailing slashes from a configured base URL so
// endpoint concatenation never produces a double slash.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

// Post sends a JSON payload to endpoint and returns the raw response. The
// Authorization header is omitted when apiKey is empty, which the demo
// endpoints permit. Failures that never produced an HTTP response are
// returned as the underlying transport error for the caller to classify.
func Post(ctx context.Context, hc *http.Client, endpoint, apiKey string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		out.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return out, nil
}

func parseRetryAfter(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs < 0 {
		return nil
	}
	return &secs
}
