package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
	"github.com/ericfisherdev/fixtrace/internal/domain/port/driven"
)

// MetricsService serves aggregate metrics from two derivation paths: the
// precomputed snapshot documents published alongside the traces, and a live
// fold over the current trace index. The precomputed path is authoritative
// for auto-merge counts (merge events never appear as trace records); the
// live path is authoritative for whatever the index holds right now.
type MetricsService struct {
	store     driven.TraceStore
	summaries *SummaryService
	snapshots driven.SnapshotStore // Optional; nil disables the local archive.
}

// NewMetricsService creates a MetricsService. snapshots may be nil when no
// local archive is configured.
func NewMetricsService(store driven.TraceStore, summaries *SummaryService, snapshots driven.SnapshotStore) *MetricsService {
	return &MetricsService{
		store:     store,
		summaries: summaries,
		snapshots: snapshots,
	}
}

// Live derives a fresh metrics snapshot from the current trace index. An
// empty or unavailable index yields a well-defined zero-valued snapshot.
func (s *MetricsService) Live(ctx context.Context) (model.BotMetrics, error) {
	rows, err := s.summaries.SummaryRows(ctx)
	if err != nil {
		return model.BotMetrics{}, err
	}
	return AggregateMetrics(rows), nil
}

// Latest returns the precomputed metrics document when one exists, falling
// back to a live derivation. The fallback is flagged by a zero
// prs_auto_merged; see AggregateMetrics.
func (s *MetricsService) Latest(ctx context.Context) (model.BotMetrics, error) {
	precomputed, err := s.store.FetchLatestMetrics(ctx)
	if err != nil {
		return model.BotMetrics{}, err
	}
	if precomputed != nil {
		return *precomputed, nil
	}

	slog.Debug("no precomputed metrics document, deriving live")
	return s.Live(ctx)
}

// History returns the snapshot series: the precomputed history document when
// one exists, otherwise whatever the local archive holds. Both empty is not
// an error; the caller gets an empty series.
func (s *MetricsService) History(ctx context.Context) (model.MetricsHistory, error) {
	precomputed, err := s.store.FetchMetricsHistory(ctx)
	if err != nil {
		return model.MetricsHistory{}, err
	}
	if precomputed != nil {
		return *precomputed, nil
	}

	history := model.MetricsHistory{Snapshots: []model.BotMetrics{}}
	if s.snapshots == nil {
		return history, nil
	}

	archived, err := s.snapshots.History(ctx, 0)
	if err != nil {
		slog.Error("snapshot archive read failed", "error", err)
		return history, nil
	}

	history.Snapshots = archived
	if n := len(archived); n > 0 {
		history.LastUpdated = archived[n-1].SnapshotDate
	}

	return history, nil
}
