package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/robinmagnussen/go-devtools/logger"
	"github.com/robinmagnussen/go-devtools/trace"
	"github.com/robinmagnussen/go-devtools/validation"
)

const (
	// DefaultTimeout is the default per-attempt timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retries after the first
	// attempt.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the base delay between retries. The wait
	// before retry N is DefaultRetryBackoff * N (linear backoff).
	DefaultRetryBackoff = 1 * time.Second
)

// retryableStatuses are the response codes treated as transient.
var retryableStatuses = map[int]bool{
	nethttp.StatusTooManyRequests:     true,
	nethttp.StatusInternalServerError: true,
	nethttp.StatusBadGateway:          true,
	nethttp.StatusServiceUnavailable:  true,
	nethttp.StatusGatewayTimeout:      true,
}

// client implements the Client interface.
type client struct {
	httpClient *nethttp.Client
	logger     logger.Logger
	config     *Config
	auth       authScheme
	limiter    *rate.Limiter
	sleep      SleepFunc
	callCount  int64
}

// NewClient creates a client with default configuration: no base URL, 30s
// timeout, 3 retries with 1s linear backoff.
func NewClient(log logger.Logger) Client {
	return NewBuilder(log).Build()
}

// NewFromConfig creates a client from an explicit configuration, applying
// defaults for zero-valued fields and validating the result.
func NewFromConfig(cfg Config, log logger.Logger) (Client, error) {
	b := NewBuilder(log)
	if cfg.BaseURL != "" {
		b.WithBaseURL(cfg.BaseURL)
	}
	if cfg.Timeout > 0 {
		b.WithTimeout(cfg.Timeout)
	}
	if cfg.MaxRetries > 0 || cfg.RetryBackoff > 0 {
		backoff := cfg.RetryBackoff
		if backoff == 0 {
			backoff = DefaultRetryBackoff
		}
		b.WithRetries(cfg.MaxRetries, backoff)
	}
	for key, value := range cfg.DefaultHeaders {
		b.WithDefaultHeader(key, value)
	}
	if err := validation.Struct(b.config); err != nil {
		return nil, NewInvalidRequestError("invalid client config: "+err.Error(), "config")
	}
	return b.Build(), nil
}

// Builder provides a fluent interface for configuring the client.
type Builder struct {
	config     *Config
	logger     logger.Logger
	auth       authScheme
	limiter    *rate.Limiter
	sleep      SleepFunc
	httpClient *nethttp.Client
	transport  nethttp.RoundTripper
}

// NewBuilder creates a client builder seeded with defaults.
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: &Config{
			Timeout:        DefaultTimeout,
			MaxRetries:     DefaultMaxRetries,
			RetryBackoff:   DefaultRetryBackoff,
			DefaultHeaders: make(map[string]string),
		},
		logger: log,
	}
}

// WithBaseURL sets the base URL that relative request paths resolve against.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithTimeout sets the per-attempt timeout.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetries sets the retry count and linear backoff base delay.
func (b *Builder) WithRetries(maxRetries int, backoff time.Duration) *Builder {
	b.config.MaxRetries = maxRetries
	b.config.RetryBackoff = backoff
	return b
}

// WithDefaultHeader adds a header sent with every request.
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithBearerAuth configures bearer token authentication.
func (b *Builder) WithBearerAuth(token string) *Builder {
	b.auth = authScheme{kind: AuthBearer, creds: Credentials{Token: token}}
	return b
}

// WithAPIKeyAuth configures API key authentication. An empty headerName
// falls back to DefaultAPIKeyHeader.
func (b *Builder) WithAPIKeyAuth(headerName, key string) *Builder {
	if headerName == "" {
		headerName = DefaultAPIKeyHeader
	}
	b.auth = authScheme{kind: AuthAPIKey, creds: Credentials{HeaderName: headerName, Key: key}}
	return b
}

// WithBasicAuth configures basic authentication.
func (b *Builder) WithBasicAuth(username, password string) *Builder {
	b.auth = authScheme{kind: AuthBasic, creds: Credentials{Username: username, Password: password}}
	return b
}

// WithRateLimiter installs a client-side rate limiter honored before each
// attempt.
func (b *Builder) WithRateLimiter(limiter *rate.Limiter) *Builder {
	b.limiter = limiter
	return b
}

// WithSleepFunc replaces the delay function used between retries. Tests
// inject a recording fake here to run the retry loop without sleeping.
func (b *Builder) WithSleepFunc(sleep SleepFunc) *Builder {
	if sleep != nil {
		b.sleep = sleep
	}
	return b
}

// WithHTTPClient supplies a custom *http.Client. Its timeout, when zero,
// is replaced by the builder's timeout.
func (b *Builder) WithHTTPClient(hc *nethttp.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithTransport supplies a custom RoundTripper for the underlying client.
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// Build creates the client with the configured options.
func (b *Builder) Build() Client {
	hc := b.httpClient
	if hc == nil {
		hc = &nethttp.Client{Timeout: b.config.Timeout}
	}
	if hc.Timeout == 0 {
		hc.Timeout = b.config.Timeout
	}
	if b.transport != nil {
		hc.Transport = b.transport
	}

	sleep := b.sleep
	if sleep == nil {
		sleep = sleepWithContext
	}

	// Snapshot the configuration so clients built from the same builder
	// do not share mutable header state.
	cfg := *b.config
	cfg.DefaultHeaders = make(map[string]string, len(b.config.DefaultHeaders))
	for key, value := range b.config.DefaultHeaders {
		cfg.DefaultHeaders[key] = value
	}

	return &client{
		httpClient: hc,
		logger:     b.logger,
		config:     &cfg,
		auth:       b.auth,
		limiter:    b.limiter,
		sleep:      sleep,
	}
}

// sleepWithContext waits for d or until the context is done.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SetAuth replaces the active auth scheme. The previous scheme is discarded
// entirely; schemes do not stack. Headers are derived lazily at request
// time, so no network call happens here.
func (c *client) SetAuth(kind AuthKind, creds Credentials) error {
	scheme, err := newAuthScheme(kind, creds)
	if err != nil {
		return err
	}
	c.auth = scheme
	return nil
}

// SetHeaders merges the given entries into the default headers,
// overwriting on key collision.
func (c *client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.config.DefaultHeaders[key] = value
	}
}

// Get performs a GET request.
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request.
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request.
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Delete performs a DELETE request.
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do performs an HTTP request with the specified method, retrying
// transient failures with linear backoff. Transient means a transport
// connectivity/timeout error or a status in {429, 500, 502, 503, 504}.
// After MaxRetries+1 attempts the last observed outcome is returned as-is;
// Stats.Attempts lets callers detect exhaustion.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	body, err := c.validateRequest(req)
	if err != nil {
		return nil, err
	}

	fullURL, err := c.resolveURL(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	callCount := atomic.AddInt64(&c.callCount, 1)
	maxAttempts := c.config.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		c.logRequest(ctx, method, fullURL, attempt)

		httpReq, err := c.buildRequest(ctx, method, fullURL, req, body)
		if err != nil {
			return nil, err
		}

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if errors.Is(err, context.Canceled) || attempt >= maxAttempts {
				return nil, c.wrapTransportError(err)
			}
			if waitErr := c.sleep(ctx, c.backoffDelay(attempt)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		resp, err := c.buildResponse(start, callCount, attempt, httpResp)
		if err != nil {
			// A failure while reading the body is a transport failure
			// like any other and goes through the same retry path.
			if attempt >= maxAttempts {
				return nil, err
			}
			if waitErr := c.sleep(ctx, c.backoffDelay(attempt)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if IsSuccessStatus(resp.StatusCode) {
			c.logResponse(ctx, resp)
			return resp, nil
		}

		if retryableStatuses[resp.StatusCode] && attempt < maxAttempts {
			if waitErr := c.sleep(ctx, c.backoffDelay(attempt)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		// Non-retryable status, or retries exhausted: surface the final
		// response alongside a typed status error.
		c.logResponse(ctx, resp)
		return resp, NewHTTPError("request failed", resp.StatusCode, resp.Body)
	}
}

// backoffDelay returns the linear backoff delay before the retry that
// follows the given attempt: RetryBackoff * attempt.
func (c *client) backoffDelay(attempt int) time.Duration {
	return c.config.RetryBackoff * time.Duration(attempt)
}

// validateRequest checks the request shape and returns the encoded body.
// JSONBody and RawBody are mutually exclusive.
func (c *client) validateRequest(req *Request) ([]byte, error) {
	if req == nil {
		return nil, NewInvalidRequestError("request cannot be nil", "request")
	}
	if req.JSONBody != nil && req.RawBody != nil {
		return nil, NewInvalidRequestError("JSONBody and RawBody are mutually exclusive", "body")
	}
	if req.JSONBody != nil {
		encoded, err := json.Marshal(req.JSONBody)
		if err != nil {
			return nil, NewInvalidRequestError("cannot encode JSON body: "+err.Error(), "body")
		}
		return encoded, nil
	}
	return req.RawBody, nil
}

// buildRequest constructs an *http.Request with the merged header set:
// defaults, then auth-derived headers, then per-call headers, later layers
// winning on case-insensitive key collision.
func (c *client) buildRequest(ctx context.Context, method, fullURL string, req *Request, body []byte) (*nethttp.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, NewInvalidRequestError("cannot create HTTP request: "+err.Error(), "url")
	}

	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range c.auth.headers() {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if httpReq.Header.Get("Content-Type") == "" && req.JSONBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get(trace.HeaderXRequestID) == "" {
		httpReq.Header.Set(trace.HeaderXRequestID, trace.EnsureRequestID(ctx))
	}

	return httpReq, nil
}

// buildResponse reads the body and assembles a Response.
func (c *client) buildResponse(start time.Time, callCount int64, attempt int, httpResp *nethttp.Response) (*Response, error) {
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
		Stats: Stats{
			ElapsedTime: time.Since(start),
			CallCount:   callCount,
			Attempts:    attempt,
		},
	}, nil
}

// wrapTransportError maps a transport failure onto the error taxonomy.
func (c *client) wrapTransportError(err error) error {
	if c.isTimeout(err) {
		return NewTimeoutError("request timeout", c.config.Timeout)
	}
	return NewNetworkError("request execution failed", err)
}

func (c *client) isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// logRequest logs the outgoing request.
func (c *client) logRequest(ctx context.Context, method, fullURL string, attempt int) {
	if c.logger == nil {
		return
	}
	c.logger.WithContext(ctx).Debug().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", fullURL).
		Int("attempt", attempt).
		Msg("HTTP client request")
}

// logResponse logs the final response for a request.
func (c *client) logResponse(ctx context.Context, resp *Response) {
	if c.logger == nil {
		return
	}
	c.logger.WithContext(ctx).Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Int("attempts", resp.Stats.Attempts).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int64("call_count", resp.Stats.CallCount).
		Msg("HTTP client response")
}
