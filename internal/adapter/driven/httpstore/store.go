// Package httpstore implements the TraceStore port against an HTTP origin
// (a public bucket website or a raw-content endpoint) serving JSON documents.
package httpstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
	"github.com/ericfisherdev/fixtrace/internal/domain/port/driven"
)

// Well-known document paths, relative to the configured base URL.
const (
	IndexPath          = "data/traces_index.json"
	LatestMetricsPath  = "data/bot_metrics_latest.json"
	MetricsHistoryPath = "data/bot_metrics_history.json"
)

// Compile-time interface satisfaction check.
var _ driven.TraceStore = (*Store)(nil)

// Store fetches trace documents over HTTP. Every request carries a
// cache-busting query parameter and a no-cache directive: intermediaries
// (CDN, browser-facing bucket caches) must not serve a stale index, because
// the producer rewrites documents in place between polls.
type Store struct {
	baseURL string
	client  *http.Client
}

// New creates a Store reading from the given base URL with the given per-fetch
// timeout. The base URL is the only piece of storage layout callers provide;
// document paths are resolved internally.
func New(baseURL string, timeout time.Duration) *Store {
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchIndex returns the trace index snapshot, or nil when none exists yet.
func (s *Store) FetchIndex(ctx context.Context) (*model.TraceIndex, error) {
	return fetchDocument[model.TraceIndex](ctx, s, IndexPath)
}

// FetchTrace returns the trace record at the given path, or nil.
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
	return fetchDocument[model.BotMetrics](ctx, s, LatestMetricsPath)
}

// FetchMetricsHistory returns the precomputed snapshot series, or nil.
func (s *Store) FetchMetricsHistory(ctx context.Context) (*model.MetricsHistory, error) {
	return fetchDocument[model.MetricsHistory](ctx, s, MetricsHistoryPath)
}

// fetchDocument retrieves and decodes one JSON document. Absence (404) is
// silent; any other failure is logged and degrades to nil so callers render
// an empty state instead of an error. Only context cancellation propagates.
func fetchDocument[T any](ctx context.Context, s *Store, path string) (*T, error) {
	body, err := s.get(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("trace store fetch failed", "path", path, "error", err)
		return nil, nil
	}
	if body == nil {
		return nil, nil
	}

	var doc T
	if err := json.Unmarshal(body, &doc); err != nil {
		slog.Error("trace store document malformed", "path", path, "error", err)
		return nil, nil
	}

	return &doc, nil
}

// get performs one cache-bypassing GET. A nil body with nil error means the
// document does not exist.
func (s *Store) get(ctx context.Context, path string) ([]byte, error) {
	u := fmt.Sprintf("%s/%s?t=%s", s.baseURL, strings.TrimLeft(path, "/"),
		url.QueryEscape(strconv.FormatInt(time.Now().UnixNano(), 10)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return body, nil
}
