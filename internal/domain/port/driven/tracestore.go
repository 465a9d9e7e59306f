package driven

import (
	"context"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
)

// TraceStore defines the driven port for reading trace documents from the
// object store. All methods are read-only and must bypass any caching layer
// between the adapter and the origin; the store can change between polls.
//
// A missing document is the nominal state before any data has been produced:
// implementations return (nil, nil) for it, without logging. Transport
// failures (network errors, non-2xx responses, bodies that do not parse) are
// logged by the adapter and also degrade to (nil, nil), so callers treat
// "no data" and "error" identically and render an empty state. The error
// return is reserved for context cancellation.
type TraceStore interface {
	// FetchIndex returns the trace index snapshot, or nil when none exists yet.
	FetchIndex(ctx context.Context) (*model.TraceIndex, error)
	// FetchTrace returns the trace record stored at the given path, or nil.
	FetchTrace(ctx context.Context, path string) (*model.TraceRecord, error)
	// FetchLatestMetrics returns the precomputed metrics snapshot, or nil.
	FetchLatestMetrics(ctx context.Context) (*model.BotMetrics, error)
	// FetchMetricsHistory returns the precomputed snapshot series, or nil.
	FetchMetricsHistory(ctx context.Context) (*model.MetricsHistory, error)
}
