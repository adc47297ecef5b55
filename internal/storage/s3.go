package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// S3Fetcher fetches s3://bucket/key URLs.
type S3Fetcher struct {
	client *s3.Client
}

// S3Config holds configuration for S3 sources.
type S3Config struct {
	// Region is the AWS region of the bucket.
	Region string
	// Endpoint is an optional custom endpoint (for MinIO, LocalStack, etc.).
	Endpoint string
	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool
}

// DefaultS3Config returns the default S3 configuration.
func DefaultS3Config() S3Config {
	return S3Config{
		Region: "us-east-1",
	}
}

// NewS3Fetcher creates an S3 fetcher using the default AWS credential chain.
func NewS3Fetcher(ctx context.Context, cfg S3Config) (*S3Fetcher, error) {
	var opts []func(*config.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Fetcher{client: s3.NewFromConfig(awsCfg, s3Opts...)}, nil
}

// NewS3FetcherWithClient creates an S3 fetcher with a pre-configured client.
func NewS3FetcherWithClient(client *s3.Client) *S3Fetcher {
	return &S3Fetcher{client: client}
}

// Fetch opens s3://bucket/key. Failures are not retried.
func (s *S3Fetcher) Fetch(ctx context.Context, rawURL string) (*Object, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, bencherrors.NewNetworkError(bencherrors.CodeObjectNotFound, "no such object "+rawURL, err)
		}
		return nil, bencherrors.NewNetworkError(bencherrors.CodeDownloadFailed, "error downloading a dataset from "+rawURL, err)
	}

	size := int64(-1)
	if resp.ContentLength != nil {
		size = *resp.ContentLength
	}
	return &Object{Body: resp.Body, Size: size}, nil
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "s3" {
		return "", "", bencherrors.New(bencherrors.ErrCategoryNetwork, bencherrors.CodeUnsupportedScheme,
			"not an s3 URL: "+rawURL)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", bencherrors.New(bencherrors.ErrCategoryNetwork, bencherrors.CodeUnsupportedScheme,
			"s3 URL needs a bucket and a key: "+rawURL)
	}
	return u.Host, key, nil
}
