// Package app wires configuration, dataset fetching, benchmark suites and the
// results store into the operations exposed by the jpbench CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/jpbench/jpbench/internal/bench"
	"github.com/jpbench/jpbench/internal/config"
	"github.com/jpbench/jpbench/internal/dataset"
	bencherrors "github.com/jpbench/jpbench/internal/errors"
	"github.com/jpbench/jpbench/internal/results"
	"github.com/jpbench/jpbench/internal/stats"
	"github.com/jpbench/jpbench/internal/storage"
	"github.com/jpbench/jpbench/internal/suites"
)

// App holds the shared resources of one CLI invocation.
type App struct {
	cfg *config.Config

	fetcher  storage.Fetcher
	registry *dataset.Registry
	resolver *dataset.Resolver
	store    *results.Store
	tracker  *stats.Tracker
	shutdown *ShutdownManager
}

// New creates an App with fetchers built from the configuration.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := prepare(cfg); err != nil {
		return nil, err
	}
	fetcher, err := buildFetcher(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fetchers: %w", err)
	}
	return newApp(cfg, fetcher)
}

// NewWithFetcher creates an App that downloads through fetcher and uses the
// given registry. A nil registry means the built-in corpus.
func NewWithFetcher(cfg *config.Config, fetcher storage.Fetcher, registry *dataset.Registry) (*App, error) {
	if err := prepare(cfg); err != nil {
		return nil, err
	}
	a, err := newApp(cfg, fetcher)
	if err != nil {
		return nil, err
	}
	if registry != nil {
		a.registry = registry
		a.resolver.Registry = registry
	}
	return a, nil
}

func prepare(cfg *config.Config) error {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	return nil
}

func newApp(cfg *config.Config, fetcher storage.Fetcher) (*App, error) {
	store, err := results.Open(cfg.Results.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open results store: %w", err)
	}
	log.Printf("Results store initialized: %s", cfg.Results.DBPath)

	registry := dataset.DefaultRegistry()
	a := &App{
		cfg:      cfg,
		fetcher:  fetcher,
		registry: registry,
		resolver: dataset.NewResolver(cfg.DataDir, fetcher, registry),
		store:    store,
		tracker:  stats.NewTracker(),
		shutdown: NewShutdownManager(0),
	}
	a.shutdown.RegisterCloser(store)
	return a, nil
}

// buildFetcher routes http(s), s3 and file URLs. When a mirror bucket is
// configured, http(s) downloads are served from it instead.
func buildFetcher(ctx context.Context, cfg *config.Config) (storage.Fetcher, error) {
	mux := storage.NewMux()

	httpFetcher := storage.NewHTTPFetcher(storage.HTTPConfig{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
	})
	mux.Handle("http", httpFetcher)
	mux.Handle("https", httpFetcher)
	mux.Handle("file", storage.NewLocalFetcher(""))

	s3Cfg := storage.DefaultS3Config()
	if cfg.Storage.S3.Region != "" {
		s3Cfg.Region = cfg.Storage.S3.Region
	}
	s3Cfg.Endpoint = cfg.Storage.S3.Endpoint
	s3Cfg.UsePathStyle = cfg.Storage.S3.UsePathStyle
	s3Fetcher, err := storage.NewS3Fetcher(ctx, s3Cfg)
	if err != nil {
		return nil, err
	}
	mux.Handle("s3", s3Fetcher)

	if bucket := cfg.Storage.Mirror.Bucket; bucket != "" {
		log.Printf("Dataset mirror enabled: s3://%s/%s", bucket, cfg.Storage.Mirror.Prefix)
		return storage.NewMirrorFetcher(mux, bucket, cfg.Storage.Mirror.Prefix), nil
	}
	return mux, nil
}

// Config returns the resolved configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Resolver returns the dataset resolver.
func (a *App) Resolver() *dataset.Resolver { return a.resolver }

// Store returns the results store.
func (a *App) Store() *results.Store { return a.store }

// Tracker returns the in-process statistics of this invocation.
func (a *App) Tracker() *stats.Tracker { return a.tracker }

// Shutdown returns the shutdown manager.
func (a *App) Shutdown() *ShutdownManager { return a.shutdown }

// Close waits for running benchmarks and releases all resources.
func (a *App) Close(ctx context.Context) error {
	return a.shutdown.Shutdown(ctx)
}

// DatasetStatus describes one registered dataset.
type DatasetStatus struct {
	ID     string
	Path   string
	Source string
	Cached bool
	Size   int64
	Err    error
}

// descriptors returns the descriptors for ids, or every registered dataset
// when ids is empty.
func (a *App) descriptors(ids []string) ([]dataset.Descriptor, error) {
	if len(ids) == 0 {
		ids = a.registry.IDs()
	}
	var out []dataset.Descriptor
	for _, id := range ids {
		d, err := a.registry.Lookup(id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Fetch downloads the named datasets, or all of them, with at most
// concurrency downloads in flight.
func (a *App) Fetch(ctx context.Context, ids []string, concurrency int) (*dataset.PrefetchResult, error) {
	descriptors, err := a.descriptors(ids)
	if err != nil {
		return nil, err
	}
	result := a.resolver.Prefetch(ctx, descriptors, concurrency)
	log.Printf("Fetched %d datasets: %d cached, %d downloaded, %d failed",
		len(descriptors), result.CacheHits, result.Downloads, len(result.Errors))
	if result.Failed() {
		return result, fmt.Errorf("%d of %d datasets failed", len(result.Errors), len(descriptors))
	}
	return result, nil
}

// Verify checks the cached copies of the named datasets, or all of them,
// without downloading.
func (a *App) Verify(ctx context.Context, ids []string) ([]DatasetStatus, error) {
	descriptors, err := a.descriptors(ids)
	if err != nil {
		return nil, err
	}
	statuses := make([]DatasetStatus, 0, len(descriptors))
	for _, d := range descriptors {
		status := DatasetStatus{
			ID:     d.Name,
			Path:   a.resolver.Path(d),
			Source: d.Source.URL(),
		}
		file, err := a.resolver.Verify(ctx, d)
		switch {
		case err == nil:
			status.Cached = true
			status.Size = file.Size
		case errors.Is(err, bencherrors.ErrNotCached):
		default:
			status.Err = err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Remove deletes the cached copies of the named datasets.
func (a *App) Remove(ids []string) error {
	descriptors, err := a.descriptors(ids)
	if err != nil {
		return err
	}
	for _, d := range descriptors {
		if err := a.resolver.Remove(d); err != nil {
			return err
		}
		log.Printf("Removed dataset %s", d.Name)
	}
	return nil
}

// RunRequest selects what Run measures.
type RunRequest struct {
	// Suites to run. Empty means the configured default suites.
	Suites []string
	// Filter keeps only benchmarks whose id contains it.
	Filter string
	// Options override the size-derived timing when non-zero.
	Options bench.Options
}

// RunResult summarizes a finished run.
type RunResult struct {
	RunID   string
	Reports []*bench.Report
}

// Run measures the requested suites and records every report under a new
// run id. The run is marked complete only after every benchmark succeeds.
// A failing benchmark stops the run and marks it failed, so none of its
// measurements are exported or ranked.
func (a *App) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if !a.shutdown.TrackRun() {
		return nil, fmt.Errorf("shutdown in progress")
	}
	defer a.shutdown.UntrackRun()

	benchmarks, err := a.selectBenchmarks(req)
	if err != nil {
		return nil, err
	}
	if len(benchmarks) == 0 {
		return nil, bencherrors.NewConfigError(fmt.Sprintf("no benchmarks match %q", req.Filter))
	}

	runID, err := a.store.BeginRun(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Run %s: %d benchmarks", runID, len(benchmarks))

	reports, err := a.measureAll(ctx, runID, benchmarks, req.Options)
	if err != nil {
		// ctx may already be cancelled; the status update must still land.
		if failErr := a.store.FailRun(context.Background(), runID); failErr != nil {
			log.Printf("Failed to mark run %s failed: %v", runID, failErr)
		}
		return nil, fmt.Errorf("run %s failed: %w", runID, err)
	}
	if err := a.store.CompleteRun(ctx, runID); err != nil {
		return nil, err
	}

	for _, report := range reports {
		for _, m := range report.Measurements {
			a.tracker.Record(report.BenchsetID, m.TargetID, string(m.Engine), m.Summary, report.DatasetBytes)
		}
	}
	return &RunResult{RunID: runID, Reports: reports}, nil
}

func (a *App) measureAll(ctx context.Context, runID string, benchmarks []suites.Benchmark, opts bench.Options) ([]*bench.Report, error) {
	override := opts.WithDefaults(bench.Options{
		WarmUp:      a.cfg.Bench.WarmUp,
		Measurement: a.cfg.Bench.Measurement,
		SampleSize:  a.cfg.Bench.SampleSize,
	})

	var reports []*bench.Report
	for _, b := range benchmarks {
		report, err := a.runBenchmark(ctx, b, override)
		if err != nil {
			return nil, err
		}
		if err := a.store.Record(ctx, runID, report); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (a *App) runBenchmark(ctx context.Context, b suites.Benchmark, override bench.Options) (*bench.Report, error) {
	cs, err := b.Build(ctx, a.resolver)
	if err != nil {
		return nil, err
	}
	defer cs.Close()

	opts := override.WithDefaults(cs.Options).WithDefaults(bench.DefaultOptions)
	log.Printf("Measuring %s (%d targets, %s)", cs.ID, len(cs.Targets), opts)
	return cs.MeasureWith(ctx, opts)
}

func (a *App) selectBenchmarks(req RunRequest) ([]suites.Benchmark, error) {
	names := req.Suites
	if len(names) == 0 {
		names = a.cfg.Bench.Suites
	}
	var selected []suites.Benchmark
	seen := make(map[string]bool)
	for _, name := range names {
		suite, err := suites.Lookup(name)
		if err != nil {
			return nil, err
		}
		for _, b := range suite.Benchmarks {
			if seen[b.ID()] || !strings.Contains(b.ID(), req.Filter) {
				continue
			}
			seen[b.ID()] = true
			selected = append(selected, b)
		}
	}
	return selected, nil
}

// Export writes the recorded results of runID, or the latest complete run,
// as JSON. Failed and unfinished runs are refused.
func (a *App) Export(ctx context.Context, runID string, w io.Writer) error {
	return a.store.Export(ctx, runID, w)
}

// SuiteInfo lists one suite for display.
type SuiteInfo struct {
	Name       string
	Datasets   []string
	Benchmarks []string
}

// Suites lists every suite with its benchmark ids.
func (a *App) Suites() []SuiteInfo {
	var infos []SuiteInfo
	for _, s := range suites.All() {
		info := SuiteInfo{Name: s.Name, Datasets: s.Datasets()}
		for _, b := range s.Benchmarks {
			info.Benchmarks = append(info.Benchmarks, b.ID())
		}
		sort.Strings(info.Benchmarks)
		infos = append(infos, info)
	}
	return infos
}
