package application

import (
	"context"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
	"github.com/ericfisherdev/fixtrace/internal/domain/port/driven"
)

// TraceService resolves individual trace records for the timeline view.
type TraceService struct {
	store driven.TraceStore
}

// NewTraceService creates a TraceService backed by the given store.
func NewTraceService(store driven.TraceStore) *TraceService {
	return &TraceService{store: store}
}

// FindLatestTrace returns the storage path of the most recent attempt for
// (repo, prNumber), or "" when no attempt is known or the index is
// unavailable.
func (s *TraceService) FindLatestTrace(ctx context.Context, repo string, prNumber int) (string, error) {
	index, err := s.store.FetchIndex(ctx)
	if err != nil {
		return "", err
	}
	return index.LatestTracePath(repo, prNumber), nil
}

// LatestTrace returns the full trace record of the most recent attempt for
// (repo, prNumber), or nil when none exists. Events come back in stored
// order; consumers must not re-sort them.
func (s *TraceService) LatestTrace(ctx context.Context, repo string, prNumber int) (*model.TraceRecord, error) {
	path, err := s.FindLatestTrace(ctx, repo, prNumber)
	if err != nil || path == "" {
		return nil, err
	}
	return s.store.FetchTrace(ctx, path)
}
