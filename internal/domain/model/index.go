package model

import "time"

// TraceIndexEntry is a pointer record into the trace store: enough to locate
// and identify a fix attempt without loading the full trace document.
type TraceIndexEntry struct {
	Repo          string    `json:"repo"` // "owner/name"
	PRNumber      int       `json:"pr_number"`
	TracePath     string    `json:"trace_path"` // Unique per record; opaque to consumers.
	WorkflowRunID string    `json:"workflow_run_id"`
	Timestamp     time.Time `json:"timestamp"`
	Status        FixStatus `json:"status,omitempty"`
}

// TraceIndex is an immutable snapshot of the trace pointer list, fetched fresh
// from the store on every query. (Repo, PRNumber) is not unique across entries;
// multiple attempts may exist for the same PR.
type TraceIndex struct {
	Traces      []TraceIndexEntry `json:"traces"`
	LastUpdated time.Time         `json:"last_updated"`
}

// LatestTracePath returns the trace path of the most recent attempt for the
// given PR, or "" when no entry matches. Entries are compared by timestamp;
// on equal timestamps the entry appearing later in index order wins, so the
// result is deterministic for a given index snapshot.
func (idx *TraceIndex) LatestTracePath(repo string, prNumber int) string {
	if idx == nil {
		return ""
	}

	var (
		best      string
		bestTime  time.Time
		foundBest bool
	)

	for _, e := range idx.Traces {
		if e.Repo != repo || e.PRNumber != prNumber {
			continue
		}
		if !foundBest || !e.Timestamp.Before(bestTime) {
			best = e.TracePath
			bestTime = e.Timestamp
			foundBest = true
		}
	}

	return best
}
