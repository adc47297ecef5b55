// Package storage provides remote source abstractions for fetching benchmark
// datasets over HTTP(S), from S3 and from the local filesystem.
package storage

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// Common errors for fetch operations.
var (
	ErrObjectNotFound = bencherrors.ErrObjectNotFound
	ErrDownloadFailed = bencherrors.ErrDownload
)

// Object is an open remote object. The caller must close Body.
type Object struct {
	Body io.ReadCloser
	// Size is the content length in bytes, or -1 when the source does not
	// announce it.
	Size int64
}

// Fetcher opens remote objects by URL. Responses are streamed, never
// buffered whole.
type Fetcher interface {
	// Fetch opens the object at rawURL for reading.
	// A missing object yields an error matching ErrObjectNotFound; any other
	// transport failure matches ErrDownloadFailed.
	Fetch(ctx context.Context, rawURL string) (*Object, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, rawURL string) (*Object, error)

// Fetch calls f(ctx, rawURL).
func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (*Object, error) {
	return f(ctx, rawURL)
}

// Mux dispatches fetches to a Fetcher by URL scheme. URLs without a scheme are
// treated as "file".
type Mux struct {
	fetchers map[string]Fetcher
}

// NewMux creates an empty scheme router.
func NewMux() *Mux {
	return &Mux{fetchers: make(map[string]Fetcher)}
}

// Handle registers f for scheme, replacing any previous registration.
func (m *Mux) Handle(scheme string, f Fetcher) {
	m.fetchers[strings.ToLower(scheme)] = f
}

// Fetch routes rawURL to the fetcher registered for its scheme.
func (m *Mux) Fetch(ctx context.Context, rawURL string) (*Object, error) {
	scheme := Scheme(rawURL)
	f, ok := m.fetchers[scheme]
	if !ok {
		return nil, bencherrors.New(bencherrors.ErrCategoryNetwork, bencherrors.CodeUnsupportedScheme,
			"no fetcher registered for scheme "+scheme+" ("+rawURL+")")
	}
	return f.Fetch(ctx, rawURL)
}

// Scheme returns the lower-case scheme of rawURL, or "file" when it has none.
func Scheme(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// A single letter is a Windows drive, not a scheme.
		return "file"
	}
	return strings.ToLower(u.Scheme)
}

// MirrorFetcher serves HTTP(S) URLs from an S3 mirror bucket. The object key
// is the mirror prefix joined with the URL's base name; other schemes pass
// through unchanged.
type MirrorFetcher struct {
	inner  Fetcher
	bucket string
	prefix string
}

// NewMirrorFetcher wraps inner so that http and https URLs are rewritten to
// s3://bucket/prefix/<basename>.
func NewMirrorFetcher(inner Fetcher, bucket, prefix string) *MirrorFetcher {
	return &MirrorFetcher{
		inner:  inner,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Fetch rewrites rawURL to the mirror location and fetches it.
func (m *MirrorFetcher) Fetch(ctx context.Context, rawURL string) (*Object, error) {
	return m.inner.Fetch(ctx, m.Rewrite(rawURL))
}

// Rewrite returns the URL that will actually be fetched for rawURL.
func (m *MirrorFetcher) Rewrite(rawURL string) string {
	switch Scheme(rawURL) {
	case "http", "https":
	default:
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	key := path.Base(u.Path)
	if m.prefix != "" {
		key = m.prefix + "/" + key
	}
	return "s3://" + m.bucket + "/" + key
}
