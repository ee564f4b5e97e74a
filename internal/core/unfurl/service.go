// Package unfurl builds link preview cards from a page's Open Graph metadata.
package unfurl

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service turns a URL into a link preview card
type Service interface {
	Unfurl(ctx context.Context, url string) (*Card, error)
	IsSupported(url string) bool
}

type service struct {
	fetcher   Fetcher
	userAgent string
	timeout   time.Duration
}

// NewService creates a new unfurl service. Without WithFetcher, pages are
// fetched over HTTP using the configured timeout and User-Agent.
func NewService(opts ...ServiceOption) Service {
	s := &service{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(s.timeout, s.userAgent)
	}

	return s
}

// ServiceOption configures the service
type ServiceOption func(*service)

// WithTimeout sets the HTTP timeout for page fetches
func WithTimeout(timeout time.Duration) ServiceOption {
	return func(s *service) {
		s.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header for page fetches
func WithUserAgent(userAgent string) ServiceOption {
	return func(s *service) {
		s.userAgent = userAgent
	}
}

// WithFetcher replaces the HTTP page fetcher
func WithFetcher(fetcher Fetcher) ServiceOption {
	return func(s *service) {
		s.fetcher = fetcher
	}
}

// IsSupported reports whether the URL can be unfurled
func (s *service) IsSupported(url string) bool {
	return isSupported(url)
}

// Unfurl fetches url and returns its card. The card URI is always the
// requested URL; og:url is ignored. og:image is resolved against the page URL.
func (s *service) Unfurl(ctx context.Context, url string) (*Card, error) {
	if !isSupported(url) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}

	body, err := s.fetcher.FetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	og := parseOpenGraph(string(body))

	card := &Card{
		URI:         url,
		Title:       og.Title,
		Description: og.Description,
		ImageURL:    resolveReference(url, og.Image),
		Domain:      extractDomain(url),
	}

	slog.Debug("[UNFURL] parsed page",
		"url", url,
		"has_title", card.Title != "",
		"has_image", card.HasImage(),
	)

	return card, nil
}
