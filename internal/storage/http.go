package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// HTTPConfig holds configuration for HTTP fetches.
type HTTPConfig struct {
	// Timeout bounds connection setup and response headers. The body is
	// streamed without a deadline since datasets can be gigabytes.
	Timeout time.Duration
	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// DefaultHTTPConfig returns the default HTTP configuration.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:   30 * time.Second,
		UserAgent: "jpbench",
	}
}

// HTTPFetcher fetches plain unauthenticated HTTP(S) GETs.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher with its own transport.
func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Timeout > 0 {
		transport.ResponseHeaderTimeout = cfg.Timeout
		transport.TLSHandshakeTimeout = cfg.Timeout
	}
	return &HTTPFetcher{
		client:    &http.Client{Transport: transport},
		userAgent: cfg.UserAgent,
	}
}

// NewHTTPFetcherWithClient creates a fetcher around a pre-configured client.
func NewHTTPFetcherWithClient(client *http.Client, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// Fetch issues a GET for rawURL. Non-2xx responses are errors; 404 and 410 are
// reported as ErrObjectNotFound.
func (h *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, bencherrors.NewNetworkError(bencherrors.CodeDownloadFailed, "building request for "+rawURL, err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, bencherrors.NewNetworkError(bencherrors.CodeDownloadFailed, "error downloading a dataset from "+rawURL, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, bencherrors.NewNetworkError(bencherrors.CodeObjectNotFound,
			fmt.Sprintf("%s returned %s", rawURL, resp.Status), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, bencherrors.NewNetworkError(bencherrors.CodeDownloadFailed,
			fmt.Sprintf("%s returned %s", rawURL, resp.Status), nil)
	}

	return &Object{Body: resp.Body, Size: resp.ContentLength}, nil
}
