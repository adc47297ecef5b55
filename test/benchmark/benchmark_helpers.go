// Package benchmark runs the benchmark suites under go test -bench. Datasets
// are downloaded into JPBENCH_DATA_DIR (default ../../data) on first use.
package benchmark

import (
	"context"
	"os"
	"testing"

	"github.com/jpbench/jpbench/internal/config"
	"github.com/jpbench/jpbench/internal/dataset"
	"github.com/jpbench/jpbench/internal/storage"
	"github.com/jpbench/jpbench/internal/suites"
)

// benchmarkResolver returns a resolver over the built-in corpus.
// It respects JPBENCH_MIRROR_BUCKET from .env or environment: when set,
// dataset downloads are served from that S3 bucket instead of the origin.
func benchmarkResolver(b *testing.B) *dataset.Resolver {
	// Try loading .env from project root (../../.env relative to test/benchmark)
	if err := config.LoadDotEnv("../../.env"); err != nil {
		b.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.DataDir = "../../data"
	config.LoadFromEnv(cfg)
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		b.Fatal(err)
	}

	mux := storage.NewMux()
	httpFetcher := storage.NewHTTPFetcher(storage.HTTPConfig{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
	})
	mux.Handle("http", httpFetcher)
	mux.Handle("https", httpFetcher)

	var fetcher storage.Fetcher = mux
	if bucket := cfg.Storage.Mirror.Bucket; bucket != "" {
		s3Cfg := storage.DefaultS3Config()
		if cfg.Storage.S3.Region != "" {
			s3Cfg.Region = cfg.Storage.S3.Region
		}
		s3Cfg.Endpoint = cfg.Storage.S3.Endpoint
		s3Cfg.UsePathStyle = cfg.Storage.S3.UsePathStyle

		s3Fetcher, err := storage.NewS3Fetcher(context.Background(), s3Cfg)
		if err != nil {
			b.Fatalf("Failed to initialize S3 fetcher: %v", err)
		}
		mux.Handle("s3", s3Fetcher)
		fetcher = storage.NewMirrorFetcher(mux, bucket, cfg.Storage.Mirror.Prefix)
		b.Logf("Fetching datasets from S3 mirror: %s/%s", bucket, cfg.Storage.Mirror.Prefix)
	}

	return dataset.NewResolver(cfg.DataDir, fetcher, dataset.DefaultRegistry())
}

// runSuite configures each benchmark of the suite and runs it as a
// sub-benchmark. Configuration failures abort the whole suite.
func runSuite(b *testing.B, suite suites.Suite) {
	if testing.Short() {
		b.Skip("dataset benchmarks need the full corpus")
	}
	resolver := benchmarkResolver(b)
	ctx := context.Background()

	for _, bm := range suite.Benchmarks {
		cs, err := bm.Build(ctx, resolver)
		if err != nil {
			b.Fatalf("%s: %v", bm.ID(), err)
		}
		cs.RunB(b)
		if err := cs.Close(); err != nil {
			b.Errorf("%s: closing: %v", bm.ID(), err)
		}
	}
}
