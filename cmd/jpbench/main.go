// Package main implements the jpbench binary: dataset management and
// standalone benchmark runs with persisted results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jpbench/jpbench/internal/app"
	"github.com/jpbench/jpbench/internal/bench"
	"github.com/jpbench/jpbench/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		resultsDB   string
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Dataset cache directory")
	flag.StringVar(&resultsDB, "results-db", "", "Path to the results database")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "jpbench - JSONPath engine benchmarks\n\n")
		fmt.Fprintf(os.Stderr, "Usage: jpbench [options] <command> [command options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  list                 List suites and dataset cache status\n")
		fmt.Fprintf(os.Stderr, "  fetch [dataset...]   Download and verify datasets\n")
		fmt.Fprintf(os.Stderr, "  verify [dataset...]  Check cached datasets without downloading\n")
		fmt.Fprintf(os.Stderr, "  remove [dataset...]  Delete cached datasets\n")
		fmt.Fprintf(os.Stderr, "  run                  Measure suites and record the results\n")
		fmt.Fprintf(os.Stderr, "  export               Write recorded results as JSON\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (also read from ./.env):\n")
		fmt.Fprintf(os.Stderr, "  JPBENCH_DATA_DIR       Dataset cache directory\n")
		fmt.Fprintf(os.Stderr, "  JPBENCH_RESULTS_DB     Results database path\n")
		fmt.Fprintf(os.Stderr, "  JPBENCH_MIRROR_BUCKET  S3 bucket mirroring the dataset downloads\n")
		fmt.Fprintf(os.Stderr, "  JPBENCH_SUITES         Comma-separated default suites\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("jpbench version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(configFile, dataDir, resultsDB)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	go application.Shutdown().ListenForSignals(ctx, func(sig os.Signal) {
		log.Printf("Received signal: %v", sig)
		cancel()
	})

	err = dispatch(ctx, application, args[0], args[1:])

	if closeErr := application.Close(context.Background()); closeErr != nil {
		log.Printf("Shutdown error: %v", closeErr)
	}
	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func dispatch(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "list":
		return runList(ctx, a)
	case "fetch":
		return runFetch(ctx, a, args)
	case "verify":
		return runVerify(ctx, a, args)
	case "remove":
		return a.Remove(args)
	case "run":
		return runBench(ctx, a, args)
	case "export":
		return runExport(ctx, a, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// loadConfig loads configuration from .env, file, environment and command
// line flags, in increasing priority.
func loadConfig(configFile, dataDir, resultsDB string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if resultsDB != "" {
		cfg.Results.DBPath = resultsDB
	}

	return cfg, nil
}

func runList(ctx context.Context, a *app.App) error {
	for _, s := range a.Suites() {
		fmt.Printf("suite %s (datasets: %s)\n", s.Name, strings.Join(s.Datasets, ", "))
		for _, id := range s.Benchmarks {
			fmt.Printf("  %s\n", id)
		}
	}

	statuses, err := a.Verify(ctx, nil)
	if err != nil {
		return err
	}
	fmt.Println()
	for _, s := range statuses {
		state := "missing"
		switch {
		case s.Err != nil:
			state = "corrupt"
		case s.Cached:
			state = fmt.Sprintf("cached, %d bytes", s.Size)
		}
		fmt.Printf("%-18s %-10s %s\n", s.ID, state, s.Source)
	}
	return nil
}

func runFetch(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	concurrency := fs.Int("j", 1, "Maximum parallel downloads (1 = sequential)")
	fs.Parse(args)

	result, err := a.Fetch(ctx, fs.Args(), *concurrency)
	if result != nil {
		for id, ferr := range result.Errors {
			log.Printf("Dataset %s failed: %v", id, ferr)
		}
	}
	return err
}

func runVerify(ctx context.Context, a *app.App, args []string) error {
	statuses, err := a.Verify(ctx, args)
	if err != nil {
		return err
	}
	bad := 0
	for _, s := range statuses {
		switch {
		case s.Err != nil:
			bad++
			fmt.Printf("%s: %v\n", s.ID, s.Err)
		case !s.Cached:
			bad++
			fmt.Printf("%s: not cached\n", s.ID)
		default:
			fmt.Printf("%s: ok (%d bytes)\n", s.ID, s.Size)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d datasets are missing or corrupt", bad, len(statuses))
	}
	return nil
}

func runBench(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	suiteList := fs.String("suite", "", "Comma-separated suites to run (default from config)")
	filter := fs.String("filter", "", "Only run benchmarks whose id contains this string")
	warmUp := fs.Duration("warm-up", 0, "Warm-up time per target (default derived from dataset size)")
	measurement := fs.Duration("measurement", 0, "Measurement time per target (default derived from dataset size)")
	samples := fs.Int("samples", 0, "Samples per target (default derived from dataset size)")
	exportPath := fs.String("export", "", "Write the run's results as JSON to this file")
	fs.Parse(args)

	req := app.RunRequest{
		Filter: *filter,
		Options: bench.Options{
			WarmUp:      *warmUp,
			Measurement: *measurement,
			SampleSize:  *samples,
		},
	}
	if *suiteList != "" {
		req.Suites = strings.Split(*suiteList, ",")
	}

	start := time.Now()
	result, err := a.Run(ctx, req)
	if err != nil {
		return err
	}
	log.Printf("Run %s: %d benchsets measured in %s", result.RunID, len(result.Reports), time.Since(start).Round(time.Second))
	for _, report := range result.Reports {
		for i, t := range a.Tracker().Fastest(report.BenchsetID, len(report.Measurements)) {
			fmt.Printf("%-40s %2d. %-20s %10.2f MB/s\n", report.BenchsetID, i+1, t.Target, t.Throughput)
		}
	}

	if *exportPath != "" {
		f, err := os.Create(*exportPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return a.Export(ctx, result.RunID, f)
	}
	return nil
}

func runExport(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	runID := fs.String("run", "", "Run id to export (default: latest)")
	output := fs.String("o", "", "Output file (default: stdout)")
	fs.Parse(args)

	if *output == "" {
		return a.Export(ctx, *runID, os.Stdout)
	}
	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer f.Close()
	return a.Export(ctx, *runID, f)
}
