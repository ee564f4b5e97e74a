package unfurl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single page fetch
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies page fetches
	DefaultUserAgent = "SkywriteBot/1.0"

	// maxPageBytes caps how much of a page body is read
	maxPageBytes = 10 * 1024 * 1024
)

// Fetcher retrieves the raw HTML of a page.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// FetchPage calls f.
func (f FetcherFunc) FetchPage(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches pages over HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout and
// User-Agent. Zero values fall back to the defaults.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// FetchPage GETs url and returns its body. Non-200 responses are errors.
func (f *HTTPFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP request returned status %d", ErrFetchFailed, resp.StatusCode)
	}

	// Read one byte past the limit to detect oversized pages
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrFetchFailed, err)
	}
	if len(body) > maxPageBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrPageTooLarge, maxPageBytes)
	}

	return body, nil
}
