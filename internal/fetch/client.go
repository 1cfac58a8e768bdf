package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"modscout/internal/config"
)

// Outcome classifies what a fetch attempt produced.
type Outcome string

const (
	// OutcomeOK means the page returned content with a non-error status.
	OutcomeOK Outcome = "ok"
	// OutcomeBlocked means the server answered but refused the request
	// (anti-bot interstitial, login wall, rate limit).
	OutcomeBlocked Outcome = "blocked"
	// OutcomeUnreachable means no usable response arrived at all.
	OutcomeUnreachable Outcome = "unreachable"
)

// Result is the best-effort product of one fetch. Body may be non-empty even
// for blocked or error statuses; callers treat it as signal, not as a success
// guarantee.
type Result struct {
	URL        string
	Outcome    Outcome
	StatusCode int
	Body       []byte
}

// Client fetches pages with a bounded timeout and body size.
type Client struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a page fetcher from configuration.
func NewClient(cfg config.Fetch, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.maxBodyBytes <= 0 {
		client.maxBodyBytes = 512 * 1024
	}
	return client
}

// blockedStatuses are HTTP statuses that indicate the server is refusing
// automated readers rather than failing outright.
var blockedStatuses = map[int]struct{}{
	http.StatusUnauthorized:       {},
	http.StatusForbidden:          {},
	http.StatusTooManyRequests:    {},
	http.StatusServiceUnavailable: {},
}

// Fetch retrieves the page at rawURL. It never returns an error: transport
// failures degrade to OutcomeUnreachable and refusals to OutcomeBlocked, with
// any partial body passed through.
func (c *Client) Fetch(ctx context.Context, rawURL string) Result {
	result := Result{URL: rawURL, Outcome: OutcomeUnreachable}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return result
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	// Read what we can; a truncated body is still usable signal.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	result.Body = body

	if _, refused := blockedStatuses[resp.StatusCode]; refused {
		result.Outcome = OutcomeBlocked
		return result
	}
	result.Outcome = OutcomeOK
	return result
}
