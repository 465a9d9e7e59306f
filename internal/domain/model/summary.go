package model

import (
	"fmt"
	"time"
)

// PRSummary is one row of the dashboard listing: a trace index entry paired
// with fields pulled from its resolved trace record. Summaries are derived
// fresh per query and never persisted.
type PRSummary struct {
	Repo         string          `json:"repo"`
	PRNumber     int             `json:"pr_number"`
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	FailureType  FailureCategory `json:"failure_type"`
	Status       FixStatus       `json:"status"`
	FixTimeHours *float64        `json:"fix_time_hours"`
	Timestamp    time.Time       `json:"timestamp"`
	TracePath    string          `json:"trace_path"`
	PRURL        string          `json:"pr_url"`
	RunURL       string          `json:"run_url"`
}

// NewPRSummary builds a stub summary from an index entry alone. Enrichable
// fields (title, author, failure type, fix time) stay at zero values until a
// trace fetch fills them in; if that fetch fails the stub is served as-is so
// a known attempt never disappears from the listing.
func NewPRSummary(e TraceIndexEntry) PRSummary {
	return PRSummary{
		Repo:      e.Repo,
		PRNumber:  e.PRNumber,
		Status:    e.Status,
		Timestamp: e.Timestamp,
		TracePath: e.TracePath,
		PRURL:     fmt.Sprintf("https://github.com/%s/pull/%d", e.Repo, e.PRNumber),
		RunURL:    fmt.Sprintf("https://github.com/%s/actions/runs/%s", e.Repo, e.WorkflowRunID),
	}
}

// MergeTrace copies the enrichable fields from a resolved trace record into
// the summary. Index-derived fields are left alone except status, where the
// trace's final result is fresher than the index pointer.
func (s *PRSummary) MergeTrace(t *TraceRecord) {
	if t == nil {
		return
	}

	s.Title = t.Metadata.PR.Title
	s.Author = t.Metadata.PR.Author
	if t.Metadata.Failure != nil {
		s.FailureType = t.Metadata.Failure.Type
	}
	if t.Result.Status != "" {
		s.Status = t.Result.Status
	}
	s.FixTimeHours = t.FixTimeHours()
	if t.Metadata.PR.URL != "" {
		s.PRURL = t.Metadata.PR.URL
	}
	if t.Metadata.GitHubRunURL != "" {
		s.RunURL = t.Metadata.GitHubRunURL
	}
}
