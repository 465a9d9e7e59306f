// Package s3store implements the TraceStore port against an S3-compatible
// bucket (AWS S3, GCS interop, or MinIO).
package s3store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
	"github.com/ericfisherdev/fixtrace/internal/domain/port/driven"
)

// Well-known object keys, relative to the bucket root.
const (
	IndexKey          = "data/traces_index.json"
	LatestMetricsKey  = "data/bot_metrics_latest.json"
	MetricsHistoryKey = "data/bot_metrics_history.json"
)

// Compile-time interface satisfaction check.
var _ driven.TraceStore = (*Store)(nil)

// Options configures the bucket connection. Endpoint and static credentials
// are optional; when absent the default AWS credential chain applies.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // Non-AWS endpoints (MinIO, GCS interop).
	AccessKey string
	SecretKey string
}

// Store fetches trace documents from an S3-compatible bucket. GETs go to the
// origin on every call; there is no caching layer to bypass.
type Store struct {
	s3     *s3.Client
	bucket string
}

// New creates a Store for the given bucket. Configuration is passed in
// explicitly rather than read from process environment, so tests can point
// multiple stores at different origins in one process.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3store: bucket is required")
	}

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint, HostnameImmutable: true}, nil
			})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3store: load aws config: %w", err)
	}

	return &Store{s3: s3.NewFromConfig(cfg), bucket: opts.Bucket}, nil
}

// FetchIndex returns the trace index snapshot, or nil when none exists yet.
func (s *Store) FetchIndex(ctx context.Context) (*model.TraceIndex, error) {
	return fetchDocument[model.TraceIndex](ctx, s, IndexKey)
}

// FetchTrace returns the trace record at the given key, or nil.
func (s *Store) FetchTrace(ctx context.Context, path string) (*model.TraceRecord, error) {
	rec, err := fetchDocument[model.TraceRecord](ctx, s, path)
	if rec != nil {
		if verr := rec.Validate(); verr != nil {
			slog.Warn("trace record violates producer invariants", "path", path, "error", verr)
		}
	}
	return rec, err
}

// FetchLatestMetrics returns the precomputed metrics snapshot, or nil.
func (s *Store) FetchLatestMetrics(ctx context.Context) (*model.BotMetrics, error) {
	return fetchDocument[model.BotMetrics](ctx, s, LatestMetricsKey)
}

// FetchMetricsHistory returns the precomputed snapshot series, or nil.
func (s *Store) FetchMetricsHistory(ctx context.Context) (*model.MetricsHistory, error) {
	return fetchDocument[model.MetricsHistory](ctx, s, MetricsHistoryKey)
}

// fetchDocument retrieves and decodes one JSON object. A missing key is
// silent; other failures are logged and degrade to nil. Only context
// cancellation propagates.
func fetchDocument[T any](ctx context.Context, s *Store, key string) (*T, error) {
	key = strings.TrimLeft(key, "/")

	out, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		slog.Error("trace store fetch failed", "bucket", s.bucket, "key", key, "error", err)
		return nil, nil
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		slog.Error("trace store read failed", "bucket", s.bucket, "key", key, "error", err)
		return nil, nil
	}

	var doc T
	if err := json.Unmarshal(body, &doc); err != nil {
		slog.Error("trace store document malformed", "bucket", s.bucket, "key", key, "error", err)
		return nil, nil
	}

	return &doc, nil
}
