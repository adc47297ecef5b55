package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	body := `{"search_metadata":{"count":100}}`
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/twitter.json":
			io.WriteString(w, body)
		case "/gone.json":
			http.Error(w, "gone", http.StatusGone)
		case "/broken.json":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcherWithClient(srv.Client(), "jpbench-test")
	ctx := context.Background()

	obj, err := fetcher.Fetch(ctx, srv.URL+"/twitter.json")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	got, err := io.ReadAll(obj.Body)
	obj.Body.Close()
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if string(got) != body {
		t.Errorf("body mismatch: got %q, want %q", got, body)
	}
	if gotUA != "jpbench-test" {
		t.Errorf("User-Agent: got %q, want %q", gotUA, "jpbench-test")
	}

	tests := []struct {
		path string
		want error
	}{
		{"/missing.json", ErrObjectNotFound},
		{"/gone.json", ErrObjectNotFound},
		{"/broken.json", ErrDownloadFailed},
	}
	for _, tt := range tests {
		_, err := fetcher.Fetch(ctx, srv.URL+tt.path)
		if !errors.Is(err, tt.want) {
			t.Errorf("Fetch(%s): got %v, want %v", tt.path, err, tt.want)
		}
	}
}

func TestHTTPFetcher_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	fetcher := NewHTTPFetcher(DefaultHTTPConfig())
	_, err := fetcher.Fetch(context.Background(), addr+"/ast.json")
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("expected ErrDownloadFailed, got %v", err)
	}
}
