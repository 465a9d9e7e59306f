// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Trace store origin. Exactly one of BaseURL or S3Bucket must be set.
	BaseURL     string
	S3Bucket    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	ListenAddr       string
	DBPath           string
	SnapshotInterval time.Duration
	FetchTimeout     time.Duration
	FetchConcurrency int
}

// UsesS3 returns true when the trace store is addressed as an S3-compatible
// bucket rather than an HTTP origin.
func (c *Config) UsesS3() bool {
	return c.S3Bucket != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. One of FIXTRACE_BASE_URL or FIXTRACE_S3_BUCKET is required.
// Optional variables with defaults: FIXTRACE_LISTEN_ADDR (127.0.0.1:8080),
// FIXTRACE_DB_PATH (fixtrace.db), FIXTRACE_SNAPSHOT_INTERVAL (1h),
// FIXTRACE_FETCH_TIMEOUT (10s), FIXTRACE_FETCH_CONCURRENCY (16).
func Load() (*Config, error) {
	baseURL := os.Getenv("FIXTRACE_BASE_URL")
	s3Bucket := os.Getenv("FIXTRACE_S3_BUCKET")

	if baseURL == "" && s3Bucket == "" {
		return nil, fmt.Errorf("one of FIXTRACE_BASE_URL or FIXTRACE_S3_BUCKET must be set")
	}
	if baseURL != "" && s3Bucket != "" {
		return nil, fmt.Errorf("FIXTRACE_BASE_URL and FIXTRACE_S3_BUCKET are mutually exclusive")
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("FIXTRACE_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "fixtrace.db"
	if v, ok := os.LookupEnv("FIXTRACE_DB_PATH"); ok {
		dbPath = v
	}

	snapshotInterval := time.Hour
	if v, ok := os.LookupEnv("FIXTRACE_SNAPSHOT_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("FIXTRACE_SNAPSHOT_INTERVAL has invalid duration %q: %w", v, err)
		}
		snapshotInterval = parsed
	}

	fetchTimeout := 10 * time.Second
	if v, ok := os.LookupEnv("FIXTRACE_FETCH_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("FIXTRACE_FETCH_TIMEOUT has invalid duration %q: %w", v, err)
		}
		fetchTimeout = parsed
	}

	fetchConcurrency := 16
	if v, ok := os.LookupEnv("FIXTRACE_FETCH_CONCURRENCY"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("FIXTRACE_FETCH_CONCURRENCY must be a positive integer, got %q", v)
		}
		fetchConcurrency = parsed
	}

	return &Config{
		BaseURL:          baseURL,
		S3Bucket:         s3Bucket,
		S3Endpoint:       os.Getenv("FIXTRACE_S3_ENDPOINT"),
		S3Region:         os.Getenv("FIXTRACE_S3_REGION"),
		S3AccessKey:      os.Getenv("FIXTRACE_S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("FIXTRACE_S3_SECRET_KEY"),
		ListenAddr:       listenAddr,
		DBPath:           dbPath,
		SnapshotInterval: snapshotInterval,
		FetchTimeout:     fetchTimeout,
		FetchConcurrency: fetchConcurrency,
	}, nil
}
