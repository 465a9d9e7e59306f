package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
)

// fakeTraceStore is an in-memory TraceStore double. Absent documents return
// (nil, nil), matching the real adapters' degrade-to-empty contract.
type fakeTraceStore struct {
	mu      sync.Mutex
	index   *model.TraceIndex
	traces  map[string]*model.TraceRecord
	latest  *model.BotMetrics
	history *model.MetricsHistory

	indexFetches int
	traceFetches int
}

func (f *fakeTraceStore) FetchIndex(ctx context.Context) (*model.TraceIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexFetches++
	return f.index, nil
}

func (f *fakeTraceStore) FetchTrace(ctx context.Context, path string) (*model.TraceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.traceFetches++
	return f.traces[path], nil
}

func (f *fakeTraceStore) FetchLatestMetrics(ctx context.Context) (*model.BotMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, nil
}

func (f *fakeTraceStore) FetchMetricsHistory(ctx context.Context) (*model.MetricsHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history, nil
}

// fakeSnapshotStore is an in-memory SnapshotStore double.
type fakeSnapshotStore struct {
	mu        sync.Mutex
	snapshots []model.BotMetrics
}

func (f *fakeSnapshotStore) Archive(ctx context.Context, m model.BotMetrics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, m)
	return nil
}

func (f *fakeSnapshotStore) History(ctx context.Context, limit int) ([]model.BotMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.snapshots
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return append([]model.BotMetrics{}, out...), nil
}

func (f *fakeSnapshotStore) Latest(ctx context.Context) (*model.BotMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.snapshots) == 0 {
		return nil, nil
	}
	m := f.snapshots[len(f.snapshots)-1]
	return &m, nil
}
