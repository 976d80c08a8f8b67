// Package source fetches the bulk-import payload from the remote endpoint.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Response is the raw answer of the remote endpoint.
type Response struct {
	StatusCode int
	Body       []byte
}

// HTTPSource performs a GET against a fixed URL.
type HTTPSource struct {
	client *http.Client
	url    string
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSource) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// New creates a source for url.
func New(url string, opts ...Option) *HTTPSource {
	s := &HTTPSource{
		client: &http.Client{Timeout: defaultTimeout},
		url:    url,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the endpoint fetched by Fetch.
func (s *HTTPSource) URL() string { return s.url }

// Fetch performs the GET. Non-200 statuses are returned, not treated as errors.
func (s *HTTPSource) Fetch(ctx context.Context) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read body from %s: %w", s.url, err)
	}
	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}
