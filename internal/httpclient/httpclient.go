// Package httpclient provides the rate-limited, retrying HTTP client shared
// by every GHOSTMAP stage that talks to a network target.
//
// This is hand-rolled rather than built on a third-party retry/backoff
// library: the only such libraries visible in the reference corpus
// (rohmanhakim/retrier, rohmanhakim/rate-limiter) are declared but never
// imported by their own owning repository, so there is no real API to
// ground an adoption on. The retry policy below follows the semantics of
// urllib3's Retry adapter as used by the original Python client instead.
package httpclient

import (
	"context"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/throttler"
)

var logger = log.New(log.Writer(), "ghostmap/httpclient: ", log.LstdFlags)

var retryableStatus = map[int]bool{
	429: true, 500: true, 502: true, 503: true, 504: true,
}

// Client is a throttled, retrying HTTP client. One Client should be shared
// across goroutines probing the same host so the throttler's backoff state
// is observed by all of them.
type Client struct {
	http       *http.Client
	throttler  *throttler.Throttler
	maxRetries int
	backoff    float64
	userAgents []string
	headers    map[string]string
	timeout    time.Duration
}

// New builds a Client from a Config, with its own dedicated Throttler.
func New(cfg *config.Config) *Client {
	return &Client{
		http:       &http.Client{Timeout: cfg.RequestTimeout},
		throttler:  throttler.New(cfg.RateLimit, 100*time.Millisecond),
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		userAgents: cfg.UserAgents,
		headers:    cfg.Headers,
		timeout:    cfg.RequestTimeout,
	}
}

// NewWithThrottler builds a Client that shares an existing Throttler, for
// callers (e.g. the prober) that coordinate many goroutines against one
// host-level backoff state.
func NewWithThrottler(cfg *config.Config, th *throttler.Throttler) *Client {
	c := New(cfg)
	c.throttler = th
	return c
}

// Throttler exposes the client's throttler for components that pace and
// report their own requests (e.g. the fuzzer).
func (c *Client) Throttler() *throttler.Throttler {
	return c.throttler
}

func (c *Client) randomUserAgent() string {
	if len(c.userAgents) == 0 {
		return "GhostMap/1.0 (Security Research Tool)"
	}
	return c.userAgents[rand.Intn(len(c.userAgents))]
}

func (c *Client) applyHeaders(req *http.Request, extra map[string]string) {
	req.Header.Set("User-Agent", c.randomUserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}
}

// Do sends method/url with retries on transient failures, honoring the
// throttler's pacing before each attempt and reporting every response
// status back to it. A nil response with status 0 is reported for
// transport-level failures (timeouts, connection refused).
func (c *Client) Do(ctx context.Context, method, rawURL string, headers map[string]string) (*http.Response, error) {
	var lastErr error
	attempts := c.maxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		c.throttler.Wait()

		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			return nil, err
		}
		c.applyHeaders(req, headers)

		resp, err := c.http.Do(req)
		if err != nil {
			c.throttler.Report(0)
			lastErr = err
			c.sleepBackoff(attempt)
			continue
		}

		c.throttler.Report(resp.StatusCode)

		if retryableStatus[resp.StatusCode] && attempt < attempts-1 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			logger.Printf("retryable status %d from %s, attempt %d/%d", resp.StatusCode, rawURL, attempt+1, attempts)
			c.sleepBackoff(attempt)
			continue
		}

		return resp, nil
	}
	return nil, lastErr
}

func (c *Client) sleepBackoff(attempt int) {
	if attempt < 0 {
		return
	}
	delay := time.Duration(c.backoff * float64(int64(1)<<uint(attempt)) * float64(time.Second))
	if delay > 0 {
		time.Sleep(delay)
	}
}

// Get is a convenience wrapper around Do for GET requests.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, rawURL, headers)
}

// Head is a convenience wrapper around Do for HEAD requests.
func (c *Client) Head(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	return c.Do(ctx, http.MethodHead, rawURL, headers)
}

// NoRedirectClient returns a *http.Client configured like this Client's
// transport but that does not follow redirects, for probes that need to
// observe a 3xx directly (prober, fuzzer baseline and fuzz requests).
func (c *Client) NoRedirectClient() *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
