package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFetcher_Fetch(t *testing.T) {
	baseDir := t.TempDir()
	content := []byte(`{"products":[]}`)
	if err := os.MkdirAll(filepath.Join(baseDir, "mirror"), 0755); err != nil {
		t.Fatalf("failed to create mirror dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "mirror", "openfood.json"), content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	fetcher := NewLocalFetcher(baseDir)
	ctx := context.Background()

	for _, rawURL := range []string{
		"mirror/openfood.json",
		"file://mirror/openfood.json",
		"file://" + filepath.ToSlash(filepath.Join(baseDir, "mirror", "openfood.json")),
	} {
		obj, err := fetcher.Fetch(ctx, rawURL)
		if err != nil {
			t.Fatalf("Fetch(%q) failed: %v", rawURL, err)
		}
		got, err := io.ReadAll(obj.Body)
		obj.Body.Close()
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("Fetch(%q): content mismatch: got %q, want %q", rawURL, got, content)
		}
		if obj.Size != int64(len(content)) {
			t.Errorf("Fetch(%q): size %d, want %d", rawURL, obj.Size, len(content))
		}
	}
}

func TestLocalFetcher_NotFound(t *testing.T) {
	fetcher := NewLocalFetcher(t.TempDir())

	_, err := fetcher.Fetch(context.Background(), "missing.json")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalFetcher_CancelledContext(t *testing.T) {
	fetcher := NewLocalFetcher(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fetcher.Fetch(ctx, "anything.json"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
