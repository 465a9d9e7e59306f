package model

import (
	"fmt"
	"math"
	"time"
)

// TraceRecord is the full execution record for one automated fix attempt,
// as uploaded by the fix pipeline to the object store.
type TraceRecord struct {
	Metadata  TraceMetadata `json:"metadata"`
	Execution ExecutionInfo `json:"execution"`
	Events    []AgentEvent  `json:"events"`
	Result    FixResult     `json:"result"`
}

// TraceMetadata carries the workflow and PR context captured at trace start.
type TraceMetadata struct {
	WorkflowRunID string       `json:"workflow_run_id"`
	GitHubRunURL  string       `json:"github_run_url"`
	Timestamp     time.Time    `json:"timestamp"`
	PR            PRInfo       `json:"pr"`
	Failure       *FailureInfo `json:"failure,omitempty"`
	MergeKind     MergeKind    `json:"merge_kind,omitempty"`
}

// PRInfo describes the pull request a fix attempt targeted.
type PRInfo struct {
	Repo   string `json:"repo"` // "owner/name"
	Number int    `json:"number"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

// FailureInfo describes the CI failure that triggered the attempt.
type FailureInfo struct {
	Type          FailureCategory `json:"type"`
	Checks        []string        `json:"checks"`
	LogsTruncated string          `json:"logs_truncated"`
}

// ExecutionInfo carries timing and agent configuration for one attempt.
// EndTime and DurationSeconds are nil while the attempt is still running
// (or when the pipeline died before finalizing the trace).
type ExecutionInfo struct {
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds *float64   `json:"duration_seconds"`
	Model           string     `json:"model,omitempty"`
	ToolsAllowed    []string   `json:"tools_allowed,omitempty"`
}

// AgentEvent is one step in an execution trace. Seq is strictly increasing in
// emission order and is the only ordering consumers may rely on; timestamps
// can skew across workflow runners and must never reorder the timeline.
type AgentEvent struct {
	Seq           int            `json:"seq"`
	Timestamp     time.Time      `json:"timestamp"`
	Type          EventType      `json:"type"`
	Content       string         `json:"content"`
	Tool          string         `json:"tool,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
	ResultSummary string         `json:"result_summary,omitempty"`
	ToolUseID     string         `json:"tool_use_id,omitempty"`
}

// FixResult is the final outcome block of a trace.
type FixResult struct {
	Status        FixStatus `json:"status"`
	ChangesMade   int       `json:"changes_made"`
	FilesModified []string  `json:"files_modified"`
	CommitSHA     string    `json:"commit_sha,omitempty"`
	CommitURL     string    `json:"commit_url,omitempty"`
	MergeMethod   MergeKind `json:"merge_method,omitempty"`
}

// FixTimeHours returns the attempt duration in hours, or nil when the trace
// has no recorded duration. Missing durations stay missing; they are never
// coerced to zero.
func (t *TraceRecord) FixTimeHours() *float64 {
	if t.Execution.DurationSeconds == nil {
		return nil
	}
	h := *t.Execution.DurationSeconds / 3600
	return &h
}

// durationTolerance allows for the producer truncating duration_seconds to
// whole seconds when finalizing a trace.
const durationTolerance = 1.5

// Validate checks producer-side invariants: event sequence numbers must be
// strictly increasing, and a recorded duration must be consistent with the
// start/end timestamps. Violations indicate a buggy producer; callers log
// them but still serve the record.
func (t *TraceRecord) Validate() error {
	for i := 1; i < len(t.Events); i++ {
		if t.Events[i].Seq <= t.Events[i-1].Seq {
			return fmt.Errorf("event %d: seq %d not greater than previous seq %d",
				i, t.Events[i].Seq, t.Events[i-1].Seq)
		}
	}

	if t.Execution.DurationSeconds != nil && t.Execution.EndTime != nil {
		elapsed := t.Execution.EndTime.Sub(t.Execution.StartTime).Seconds()
		if math.Abs(elapsed-*t.Execution.DurationSeconds) > durationTolerance {
			return fmt.Errorf("duration_seconds %.1f disagrees with start/end span %.1f",
				*t.Execution.DurationSeconds, elapsed)
		}
	}

	return nil
}
