// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
	"github.com/ericfisherdev/fixtrace/internal/domain/port/driven"
)

// DefaultFetchConcurrency bounds the enrichment fan-out so a large index does
// not open one connection per row against the store.
const DefaultFetchConcurrency = 16

// SummaryService projects the trace index into dashboard summary rows and
// enriches them with fields from the full trace records.
type SummaryService struct {
	store        driven.TraceStore
	concurrency  int
	fetchTimeout time.Duration
}

// NewSummaryService creates a SummaryService. concurrency <= 0 falls back to
// DefaultFetchConcurrency; fetchTimeout <= 0 disables the per-fetch deadline.
func NewSummaryService(store driven.TraceStore, concurrency int, fetchTimeout time.Duration) *SummaryService {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &SummaryService{
		store:        store,
		concurrency:  concurrency,
		fetchTimeout: fetchTimeout,
	}
}

// BuildSummaries is a pure projection of index entries into stub summary
// rows: one output row per input entry, same order, no network access.
// A nil index yields an empty slice.
func BuildSummaries(index *model.TraceIndex) []model.PRSummary {
	if index == nil {
		return []model.PRSummary{}
	}

	summaries := make([]model.PRSummary, 0, len(index.Traces))
	for _, e := range index.Traces {
		summaries = append(summaries, model.NewPRSummary(e))
	}

	return summaries
}

// Enrich fetches each row's trace record concurrently and merges in title,
// author, failure category, status, and fix time. The output has exactly the
// input's length and order; results are assembled positionally, never in
// completion order. A row whose fetch fails keeps its index-derived fields
// and zero-valued enrichable fields -- a failed enrichment must not erase a
// known attempt from the listing.
func (s *SummaryService) Enrich(ctx context.Context, summaries []model.PRSummary) []model.PRSummary {
	out := make([]model.PRSummary, len(summaries))
	copy(out, summaries)

	var (
		wg     sync.WaitGroup
		sem    = make(chan struct{}, s.concurrency)
		mu     sync.Mutex
		missed int
	)

	for i := range out {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			rec := s.fetchTrace(ctx, out[i].TracePath)
			if rec == nil {
				mu.Lock()
				missed++
				mu.Unlock()
				return
			}
			out[i].MergeTrace(rec)
		}(i)
	}

	wg.Wait()

	if missed > 0 {
		slog.Warn("enrichment incomplete", "rows", len(out), "missing_traces", missed)
	}

	return out
}

// SummaryRows fetches a fresh index and returns fully enriched rows. An
// unavailable index yields an empty slice, never an error.
func (s *SummaryService) SummaryRows(ctx context.Context) ([]model.PRSummary, error) {
	index, err := s.store.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, BuildSummaries(index)), nil
}

// fetchTrace wraps the store call with the per-fetch deadline. A timeout is
// reported the same way as a missing document: nil.
func (s *SummaryService) fetchTrace(ctx context.Context, path string) *model.TraceRecord {
	if path == "" {
		return nil
	}

	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	rec, err := s.store.FetchTrace(ctx, path)
	if err != nil {
		return nil
	}
	return rec
}
