package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// LocalFetcher serves file:// URLs and bare paths from the local filesystem.
// This is primarily used for testing and for pre-seeded offline mirrors.
type LocalFetcher struct {
	basePath string
}

// NewLocalFetcher creates a local fetcher. Relative paths are resolved
// against basePath; an empty basePath means the working directory.
func NewLocalFetcher(basePath string) *LocalFetcher {
	return &LocalFetcher{basePath: basePath}
}

// Fetch opens the file named by rawURL.
func (l *LocalFetcher) Fetch(ctx context.Context, rawURL string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := l.fullPath(rawURL)

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, bencherrors.NewNetworkError(bencherrors.CodeObjectNotFound, "no such file "+p, err)
		}
		return nil, bencherrors.NewNetworkError(bencherrors.CodeDownloadFailed, "opening "+p, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, bencherrors.NewNetworkError(bencherrors.CodeDownloadFailed, "stat "+p, err)
	}

	return &Object{Body: f, Size: info.Size()}, nil
}

// fullPath returns the filesystem path for a file:// URL or bare path.
func (l *LocalFetcher) fullPath(rawURL string) string {
	p := rawURL
	if strings.HasPrefix(rawURL, "file://") {
		if u, err := url.Parse(rawURL); err == nil {
			p = u.Path
			if u.Host != "" {
				// file://relative/path puts the first segment in Host.
				p = u.Host + u.Path
			}
		}
	}
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) && l.basePath != "" {
		p = filepath.Join(l.basePath, p)
	}
	return p
}
