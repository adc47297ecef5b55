// Package config provides configuration for the jpbench CLI and benchmarks.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "JPBENCH_"

// Config holds the configuration for dataset caching, fetching and result
// storage.
type Config struct {
	// DataDir is the dataset cache root. Dataset paths are relative to it.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Results configuration
	Results ResultsConfig `json:"results" yaml:"results"`

	// HTTP fetch configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Bench configuration
	Bench BenchConfig `json:"bench" yaml:"bench"`
}

// ResultsConfig holds the results database configuration.
type ResultsConfig struct {
	// DBPath is the SQLite results database. Defaults to <data_dir>/results.db
	DBPath string `json:"db_path" yaml:"db_path"`
}

// HTTPConfig holds HTTP fetch configuration.
type HTTPConfig struct {
	// Timeout bounds connection setup and response headers
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is sent with every dataset request
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StorageConfig holds remote storage configuration.
type StorageConfig struct {
	// S3 configuration for s3:// sources
	S3 S3Config `json:"s3" yaml:"s3"`

	// Mirror redirects HTTP(S) dataset downloads to an S3 bucket when set
	Mirror MirrorConfig `json:"mirror" yaml:"mirror"`
}

// S3Config holds S3 client configuration.
type S3Config struct {
	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// MirrorConfig holds the S3 mirror configuration.
type MirrorConfig struct {
	// Bucket is the mirror bucket. Empty disables the mirror.
	Bucket string `json:"bucket" yaml:"bucket"`

	// Prefix is prepended to mirrored object keys
	Prefix string `json:"prefix" yaml:"prefix"`
}

// BenchConfig holds defaults for the run command.
type BenchConfig struct {
	// Suites lists the suites run when none is named on the command line
	Suites []string `json:"suites" yaml:"suites"`

	// WarmUp overrides the size-derived warm-up time when non-zero
	WarmUp time.Duration `json:"warm_up" yaml:"warm_up"`

	// Measurement overrides the size-derived measurement time when non-zero
	Measurement time.Duration `json:"measurement" yaml:"measurement"`

	// SampleSize overrides the size-derived sample count when non-zero
	SampleSize int `json:"sample_size" yaml:"sample_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "jpbench",
		},
		Storage: StorageConfig{
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Bench: BenchConfig{
			Suites: []string{"main"},
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Results.DBPath == "" {
		c.Results.DBPath = filepath.Join(c.DataDir, "results.db")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative, got %s", c.HTTP.Timeout)
	}

	if c.Storage.Mirror.Prefix != "" && c.Storage.Mirror.Bucket == "" {
		return fmt.Errorf("storage.mirror.bucket is required when a mirror prefix is set")
	}

	if c.Bench.WarmUp < 0 || c.Bench.Measurement < 0 || c.Bench.SampleSize < 0 {
		return fmt.Errorf("bench timings must not be negative")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadFromEnv applies JPBENCH_* environment overrides.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvPrefix + "RESULTS_DB"); v != "" {
		cfg.Results.DBPath = v
	}

	// HTTP configuration
	if v := os.Getenv(EnvPrefix + "HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Timeout = d
		}
	}
	if v := os.Getenv(EnvPrefix + "HTTP_USER_AGENT"); v != "" {
		cfg.HTTP.UserAgent = v
	}

	// Storage configuration
	if v := os.Getenv(EnvPrefix + "S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv(EnvPrefix + "S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv(EnvPrefix + "S3_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvPrefix + "MIRROR_BUCKET"); v != "" {
		cfg.Storage.Mirror.Bucket = v
	}
	if v := os.Getenv(EnvPrefix + "MIRROR_PREFIX"); v != "" {
		cfg.Storage.Mirror.Prefix = v
	}

	// Bench configuration
	if v := os.Getenv(EnvPrefix + "SUITES"); v != "" {
		cfg.Bench.Suites = splitList(v)
	}
	if v := os.Getenv(EnvPrefix + "WARM_UP"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Bench.WarmUp = d
		}
	}
	if v := os.Getenv(EnvPrefix + "MEASUREMENT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Bench.Measurement = d
		}
	}
	if v := os.Getenv(EnvPrefix + "SAMPLE_SIZE"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Bench.SampleSize)
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		filepath.Dir(c.Results.DBPath),
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
