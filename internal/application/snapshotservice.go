package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/fixtrace/internal/domain/port/driven"
)

// snapshotRequest represents a manual snapshot trigger.
type snapshotRequest struct {
	done chan error
}

// SnapshotService periodically derives a live metrics snapshot and archives
// it locally, building the trend history the precomputed documents may lack.
// Each run is stateless and idempotent with respect to the trace store; only
// the local archive accumulates.
type SnapshotService struct {
	metrics   *MetricsService
	snapshots driven.SnapshotStore
	interval  time.Duration
	requestCh chan snapshotRequest
}

// NewSnapshotService creates a SnapshotService with all required dependencies.
func NewSnapshotService(metrics *MetricsService, snapshots driven.SnapshotStore, interval time.Duration) *SnapshotService {
	return &SnapshotService{
		metrics:   metrics,
		snapshots: snapshots,
		interval:  interval,
		requestCh: make(chan snapshotRequest),
	}
}

// Start begins the snapshot loop. It takes an immediate snapshot, then runs
// on the configured interval, and also listens for manual triggers. Start
// blocks until the context is canceled.
func (s *SnapshotService) Start(ctx context.Context) {
	if err := s.snapshot(ctx); err != nil {
		slog.Error("initial snapshot failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("snapshot service stopped")
			return
		case <-ticker.C:
			if err := s.snapshot(ctx); err != nil {
				slog.Error("snapshot cycle failed", "error", err)
			}
		case req := <-s.requestCh:
			req.done <- s.snapshot(ctx)
		}
	}
}

// SnapshotNow triggers a snapshot outside the interval, blocking until it
// completes or the context is canceled.
func (s *SnapshotService) SnapshotNow(ctx context.Context) error {
	done := make(chan error, 1)

	select {
	case s.requestCh <- snapshotRequest{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot derives one live metrics snapshot and archives it. Exposed for
// one-shot CLI invocations that run without the loop.
func (s *SnapshotService) Snapshot(ctx context.Context) error {
	return s.snapshot(ctx)
}

func (s *SnapshotService) snapshot(ctx context.Context) error {
	start := time.Now()

	m, err := s.metrics.Live(ctx)
	if err != nil {
		return err
	}

	if err := s.snapshots.Archive(ctx, m); err != nil {
		return err
	}

	slog.Info("metrics snapshot archived",
		"total_prs", m.Stats.TotalPRsScanned,
		"success_rate", m.Stats.SuccessRate,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}
