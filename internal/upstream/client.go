package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// BaseURL is the stats provider's v1 API root.
	BaseURL = "https://api.balldontlie.io/v1"

	// DefaultRateLimitBackoff is how long to wait before the single
	// automatic retry after a 429.
	DefaultRateLimitBackoff = 12 * time.Second
)

// Client issues authenticated GET requests against the stats provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	clock   clockwork.Clock

	rateLimitBackoff time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (useful for tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithClock injects the clock used for backoff waits.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithRateLimitBackoff overrides the 429 backoff interval.
func WithRateLimitBackoff(d time.Duration) Option {
	return func(c *Client) { c.rateLimitBackoff = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a stats API client. The API key is required; requests
// from an unconfigured client fail with a ConfigError.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: BaseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		clock:            clockwork.NewRealClock(),
		rateLimitBackoff: DefaultRateLimitBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get fetches path with the given query parameters and returns the raw
// response body. On 429 it waits one backoff interval and retries exactly
// once; a second 429 surfaces as a RateLimitError.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, &ConfigError{Field: "API key"}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	body, status, err := c.do(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if status == http.StatusTooManyRequests {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(c.rateLimitBackoff):
		}

		body, status, err = c.do(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		if status == http.StatusTooManyRequests {
			return nil, &RateLimitError{URL: reqURL}
		}
	}

	switch {
	case status == http.StatusNotFound:
		return nil, &NotFoundError{URL: reqURL}
	case status < 200 || status >= 300:
		return nil, &UpstreamError{URL: reqURL, Status: status}
	}

	return body, nil
}

func (c *Client) do(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		// Cancellation is not a transport failure; let callers see the
		// context error unwrapped.
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &TransportError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{URL: reqURL, Err: err}
	}

	return body, resp.StatusCode, nil
}
