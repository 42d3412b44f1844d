package nope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nope-net/nope-go/internal"
)

const (
	defaultBaseURL = "https://api.nope.net"
	defaultTimeout = 30 * time.Second

	evaluatePath    = "/v1/evaluate"
	screenPath      = "/v1/screen"
	tryEvaluatePath = "/v1/try/evaluate"
	tryScreenPath   = "/v1/try/screen"
)

// Version is the SDK version.
const Version = internal.Version

// RetryConfig configures the opt-in retry behavior. The client performs no
// automatic retries unless a retry config with MaxRetries > 0 is supplied;
// retrying is a policy layered above the transport, never hidden inside it.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (0 means no retry)
	MaxRetries uint64
	// InitialInterval is the initial backoff interval
	InitialInterval time.Duration
	// MaxInterval is the maximum backoff interval between retries.
	MaxInterval time.Duration
	// Multiplier is the backoff multiplier (e.g., 2.0 for exponential backoff)
	Multiplier float64
	// RandomizationFactor adds jitter to prevent thundering herd
	RandomizationFactor float64
}

// DefaultRetryConfig returns our recommended retry configuration for callers
// who opt in via WithRetryConfig.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		// A high randomization factor is recommended to prevent thundering herd.
		RandomizationFactor: 0.65,
	}
}

// Option is a function that configures the client
type Option func(*cfg)

// WithAPIKey sets the API key for the client. Keys can be created in the
// NOPE dashboard. A client without a key can only call the demo endpoints;
// see WithDemo.
func WithAPIKey(apiKey string) Option {
	return func(c *cfg) {
		c.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL for the client. A trailing slash is
// stripped. Unless you are targeting a local or staging deployment, there is
// no need to set this.
func WithBaseURL(baseURL string) Option {
	return func(c *cfg) {
		c.baseURL = internal.NormalizeBaseURL(baseURL)
	}
}

// WithTimeout sets the default timeout for requests. If not set, the default
// timeout is 30 seconds. A request that exceeds the timeout fails with a
// ConnectionError whose Timeout field is true.
func WithTimeout(timeout time.Duration) Option {
	return func(c *cfg) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client. When set, the client's
// own Timeout applies and WithTimeout is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *cfg) {
		c.httpClient = hc
	}
}

// WithDemo switches the client to the unauthenticated /v1/try/* endpoints,
// which the service exposes for evaluation without credentials. Demo mode is
// rate limited and must not be used in production.
func WithDemo() Option {
	return func(c *cfg) {
		c.demo = true
	}
}

// WithRetryConfig opts in to automatic retries of rate-limit, server and
// connection errors with exponential backoff. Auth errors, server-side
// validation errors and the client's own pre-flight errors are never
// retried.
func WithRetryConfig(retryConfig RetryConfig) Option {
	return func(c *cfg) {
		c.retryConfig = retryConfig
	}
}

// WithDisableRetry disables automatic retries. This is the default; the
// option exists so a shared option list can override a WithRetryConfig that
// appears earlier in it.
func WithDisableRetry() Option {
	return func(c *cfg) {
		c.retryConfig.MaxRetries = 0
	}
}

// cfg holds configuration for the NOPE client
type cfg struct {
	// apiKey is the NOPE API key. Empty is permitted for demo endpoints.
	apiKey string
	// baseURL is the API base URL with any trailing slash stripped.
	baseURL string
	// timeout is the default timeout for requests
	timeout time.Duration
	// demo routes requests to the unauthenticated /v1/try/* endpoints
	demo bool
	// retryConfig configures the opt-in retry behavior
	retryConfig RetryConfig
	// httpClient overrides the default HTTP client when non-nil
	httpClient *http.Client
}

// Client is the main NOPE SDK client. It is safe for concurrent use; the
// single underlying HTTP client pools connections across in-flight calls.
type Client struct {
	config *cfg
	hc     *http.Client
}

// New creates a new NOPE client. Without options it targets the production
// API with a 30 second timeout and no retries.
func New(options ...Option) (*Client, error) {
	config := &cfg{
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
	}

	for _, option := range options {
		option(config)
	}

	if config.timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %v", config.timeout)
	}

	hc := config.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: config.timeout}
	}

	return &Client{
		config: config,
		hc:     hc,
	}, nil
}

// BaseURL returns the effective base URL with any trailing slash stripped.
func (c *Client) BaseURL() string {
	return c.config.baseURL
}

// Close releases the client's idle connections. You can do this with defer
// to ensure that the connection resource is always cleaned up.
func (c *Client) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

var (
	cleanupHandlers []func()
	cleanupMutex    sync.Mutex
	cleanupOnce     sync.Once
)

// setupCleanupHandler sets up a signal handler for cleanup functions
func setupCleanupHandler() {
	cleanupOnce.Do(func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-c
			cleanupMutex.Lock()
			defer cleanupMutex.Unlock()
			for _, handler := range cleanupHandlers {
				handler()
			}
			os.Exit(0)
		}()
	})
}

// addCleanupHandler adds a cleanup function to be called on exit
func addCleanupHandler(handler func()) {
	cleanupMutex.Lock()
	defer cleanupMutex.Unlock()
	cleanupHandlers = append(cleanupHandlers, handler)
	setupCleanupHandler()
}

// CloseOnExit registers the client for cleanup. This can be useful if you
// are using a long lived instance of the client and want to make sure it is
// always closed before exit.
func (c *Client) CloseOnExit() {
	addCleanupHandler(func() {
		c.Close()
	})
}

// path selects the authenticated or demo variant of an endpoint path.
func (c *Client) path(normal, try string) string {
	if c.config.demo {
		return try
	}
	return normal
}

// do serializes the payload, performs the exchange and maps failures onto
// the error taxonomy. It is the single shared path under both the blocking
// and the async variants, so validation and error semantics are identical.
func (c *Client) do(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	endpoint := c.config.baseURL + path

	attempt := func() ([]byte, error) {
		resp, err := internal.Post(ctx, c.hc, endpoint, c.config.apiKey, body)
		if err != nil {
			return nil, connectionError(err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp.Body, nil
		}
		return nil, errorFromResponse(resp)
	}

	if c.config.retryConfig.MaxRetries == 0 {
		return attempt()
	}

	var out []byte
	b := createBackoff(c.config.retryConfig)
	err = backoff.Retry(func() error {
		var err error
		out, err = attempt()
		if err != nil && !isRetriableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isRetriableError checks whether the error may succeed on retry: rate
// limits, server errors and connection failures.
func isRetriableError(err error) bool {
	if err == nil {
		return false
	}

	var (
		rateErr   *RateLimitError
		serverErr *ServerError
		connErr   *ConnectionError
	)
	return errors.As(err, &rateErr) ||
		errors.As(err, &serverErr) ||
		errors.As(err, &connErr)
}

// createBackoff creates a configured exponential backoff
func createBackoff(config RetryConfig) backoff.BackOff {
	if config.MaxRetries == 0 {
		return &backoff.StopBackOff{}
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = config.InitialInterval
	expBackoff.MaxInterval = config.MaxInterval
	expBackoff.Multiplier = config.Multiplier
	expBackoff.RandomizationFactor = config.RandomizationFactor
	expBackoff.MaxElapsedTime = 0 // We control retries with WithMaxRetries

	return backoff.WithMaxRetries(expBackoff, config.MaxRetries)
}

// Evaluate sends the conversation for a full risk assessment and returns the
// typed result. Exactly one of req.Messages and req.Text must be set; a
// violation fails with ErrNoInput or ErrBothInputs before any network call.
func (c *Client) Evaluate(ctx context.Context, req *EvaluateRequest) (*EvaluateResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, c.path(evaluatePath, tryEvaluatePath), req)
	if err != nil {
		return nil, err
	}
	return decodeEvaluateResponse(body)
}

// EvaluateMessages is sugar for evaluating a structured conversation without
// building an EvaluateRequest. Pass a nil config to use the server defaults.
func (c *Client) EvaluateMessages(ctx context.Context, messages []Message, config *EvaluateConfig) (*EvaluateResponse, error) {
	return c.Evaluate(ctx, &EvaluateRequest{Messages: messages, Config: config})
}

// EvaluateText is sugar for evaluating a plain-text input without building
// an EvaluateRequest. Pass a nil config to use the server defaults.
func (c *Client) EvaluateText(ctx context.Context, text string, config *EvaluateConfig) (*EvaluateResponse, error) {
	return c.Evaluate(ctx, &EvaluateRequest{Text: text, Config: config})
}

// EvaluateResult is the result of an async evaluation. If an error occurred,
// the Error field is set. Otherwise, the Response field is set.
type EvaluateResult struct {
	Response *EvaluateResponse
	Error    error
}

// EvaluateAsync is the non-blocking variant of Evaluate. It returns
// immediately with a channel that receives exactly one EvaluateResult and is
// then closed. Validation, status mapping and decoding go through the same
// shared path as Evaluate, so the two variants differ only in how the caller
// waits.
func (c *Client) EvaluateAsync(ctx context.Context, req *EvaluateRequest) <-chan EvaluateResult {
	ch := make(chan EvaluateResult, 1)
	go func() {
		defer close(ch)
		resp, err := c.Evaluate(ctx, req)
		ch <- EvaluateResult{Response: resp, Error: err}
	}()
	return ch
}

// Screen runs the lightweight boolean screen instead of a full assessment.
// It is cheaper and faster than Evaluate, at the cost of detail. The same
// messages/text exclusivity rule applies.
func (c *Client) Screen(ctx context.Context, req *ScreenRequest) (*ScreenResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, c.path(screenPath, tryScreenPath), req)
	if err != nil {
		return nil, err
	}
	return decodeScreenResponse(body)
}
