package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "imagegrid"
)

// Client wraps HTTP operations for fetching remote images.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - OpenTelemetry-instrumented transport
//   - Classification of every failure into the NetworkError taxonomy
//
// Example usage:
//
//	client := NewClient(WithTimeout(30 * time.Second))
//
//	data, err := client.Fetch(ctx, "https://loremflickr.com/200/200")
//	if errors.Is(err, ErrInvalidResponse) {
//	    // non-200 status
//	}
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall request timeout. A timeout surfaces as
// ErrUnableToComplete.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new HTTP client.
//
// Unless overridden by options the client is configured with:
//   - 60 second timeout
//   - "imagegrid" User-Agent header
//   - otelhttp transport over http.DefaultTransport
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs a GET request and returns the response body.
//
// Fetch issues exactly one request; it never retries or caches.
//
// Returns a *NetworkError if:
//   - rawURL is empty or unparsable (ErrInvalidURL)
//   - the request fails in transport (ErrUnableToComplete)
//   - the response status is not 200 OK (ErrInvalidResponse)
//   - the body is empty or cannot be read (ErrInvalidData)
//
// Example:
//
//	data, err := client.Fetch(ctx, "https://example.com/image.jpg")
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, newError(ErrInvalidURL, rawURL, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newError(ErrInvalidURL, rawURL, 0, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("fetch request", "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("fetch failed", "url", rawURL, "error", err)
		return nil, newError(ErrUnableToComplete, rawURL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, newError(ErrInvalidResponse, rawURL, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrInvalidData, rawURL, 0, err)
	}
	if len(body) == 0 {
		return nil, newError(ErrInvalidData, rawURL, 0, nil)
	}

	return body, nil
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return errEmptyURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errIncompleteURL
	}
	return nil
}
