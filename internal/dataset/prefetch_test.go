package dataset

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jpbench/jpbench/internal/storage"
)

// lockedFetcher serializes access to a memFetcher for concurrent use.
type lockedFetcher struct {
	mu    sync.Mutex
	inner *memFetcher
}

func (l *lockedFetcher) Fetch(ctx context.Context, rawURL string) (*storage.Object, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Fetch(ctx, rawURL)
}

func TestPrefetch(t *testing.T) {
	files := map[string][]byte{
		"crossref/crossref0.json": []byte(`{"items":[1]}`),
		"crossref/crossref1.json": []byte(`{"items":[1,2]}`),
	}
	archive := tarGzBytes(t, files)
	mem := newMemFetcher()
	mem.objects["https://example.com/crossref.tar.gz"] = archive
	mem.objects["https://example.com/sample.json"] = []byte(sampleJSON)
	fetcher := &lockedFetcher{inner: mem}

	src := TarGzSource(Archive{URL: "https://example.com/crossref.tar.gz", Checksum: digestOf(archive)}, "")
	descriptors := []Descriptor{
		{Name: "crossref0", Path: "crossref/crossref0.json", Source: src, Checksum: digestOf(files["crossref/crossref0.json"])},
		{Name: "crossref1", Path: "crossref/crossref1.json", Source: src, Checksum: digestOf(files["crossref/crossref1.json"])},
		{Name: "sample", Path: "sample/sample.json", Source: JSONSource("https://example.com/sample.json"), Checksum: digestOf([]byte(sampleJSON))},
		{Name: "missing", Path: "missing/missing.json", Source: JSONSource("https://example.com/missing.json")},
	}
	r := NewResolver(t.TempDir(), fetcher, NewRegistry(descriptors...))
	ctx := context.Background()

	result := r.Prefetch(ctx, descriptors, 4)
	if !result.Failed() || len(result.Errors) != 1 || result.Errors["missing"] == nil {
		t.Fatalf("errors = %v", result.Errors)
	}
	if len(result.Files) != 3 {
		t.Fatalf("files = %d, want 3", len(result.Files))
	}
	// crossref1 is unpacked alongside crossref0 and found in the cache.
	if result.Downloads != 2 || result.CacheHits != 1 {
		t.Errorf("downloads=%d cache hits=%d", result.Downloads, result.CacheHits)
	}
	if n := mem.calls["https://example.com/crossref.tar.gz"]; n != 1 {
		t.Errorf("archive fetched %d times", n)
	}

	again := r.Prefetch(ctx, descriptors[:3], 2)
	if again.Failed() || again.CacheHits != 3 || again.Downloads != 0 {
		t.Errorf("second prefetch: %+v", again)
	}
}

func TestPrefetch_Cancelled(t *testing.T) {
	d := Descriptor{Name: "sample", Path: "sample/sample.json", Source: JSONSource("https://example.com/sample.json")}
	r := NewResolver(t.TempDir(), &lockedFetcher{inner: newMemFetcher()}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := r.Prefetch(ctx, []Descriptor{d}, 1)
	if result.Errors["sample"] == nil {
		t.Error("expected cancellation error")
	}
}

func TestPrefetch_RepairsCorruptCache(t *testing.T) {
	mem := newMemFetcher()
	mem.objects["https://example.com/sample.json"] = []byte(sampleJSON)
	d := Descriptor{Name: "sample", Path: "sample/sample.json", Source: JSONSource("https://example.com/sample.json"), Checksum: digestOf([]byte(sampleJSON))}
	r := NewResolver(t.TempDir(), &lockedFetcher{inner: mem}, nil)

	if err := os.MkdirAll(filepath.Dir(r.Path(d)), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(r.Path(d), []byte(`{"corrupt":true}`), 0644); err != nil {
		t.Fatal(err)
	}

	result := r.Prefetch(context.Background(), []Descriptor{d}, 1)
	if result.Failed() || result.Downloads != 1 || result.CacheHits != 0 {
		t.Fatalf("prefetch over corrupt cache: %+v", result)
	}
	if result.Files["sample"].Checksum != d.Checksum {
		t.Errorf("cached file not repaired")
	}
}

func TestResolve_ReportsCacheHit(t *testing.T) {
	mem := newMemFetcher()
	mem.objects["https://example.com/sample.json"] = []byte(sampleJSON)
	d := Descriptor{Name: "sample", Path: "sample/sample.json", Source: JSONSource("https://example.com/sample.json"), Checksum: digestOf([]byte(sampleJSON))}
	r := NewResolver(t.TempDir(), mem, nil)
	ctx := context.Background()

	if _, cached, err := r.resolve(ctx, d); err != nil || cached {
		t.Fatalf("first resolve: cached=%v err=%v", cached, err)
	}
	if _, cached, err := r.resolve(ctx, d); err != nil || !cached {
		t.Fatalf("second resolve: cached=%v err=%v", cached, err)
	}
	if mem.calls["https://example.com/sample.json"] != 1 {
		t.Errorf("fetched %d times", mem.calls["https://example.com/sample.json"])
	}
}
