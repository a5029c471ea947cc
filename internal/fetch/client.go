package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 6 * time.Second
	DefaultUserAgent = "PulseBoard/2.0 (Real-time intelligence dashboard)"

	maxBodyBytes = 4 << 20
)

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Client performs time-bounded GET requests against upstream feeds.
// Requests to the same host are spaced by a per-host limiter.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
	perHost   rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Options configures a Client.
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64 // 0 disables limiting
}

// NewClient creates a new upstream client.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	perHost := rate.Inf
	if opts.RequestsPerSecond > 0 {
		perHost = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		perHost:   perHost,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Get fetches rawURL and returns the response body. Each call is bounded by the
// client timeout regardless of the parent context's deadline.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", u.Host, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, URL: redact(u)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body from %s: %w", u.Host, err)
	}
	return body, nil
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[strings.ToLower(host)]
	if !ok {
		l = rate.NewLimiter(c.perHost, 1)
		c.limiters[strings.ToLower(host)] = l
	}
	return l
}

// redact drops the query string so topics and keys stay out of error messages.
func redact(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
