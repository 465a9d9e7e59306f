package model

import (
	"encoding/json"
	"fmt"
)

// FixStatus represents the outcome of one automated fix attempt.
type FixStatus string

const (
	FixStatusSuccess    FixStatus = "SUCCESS"
	FixStatusFailed     FixStatus = "FAILED"
	FixStatusPartial    FixStatus = "PARTIAL"
	FixStatusInProgress FixStatus = "IN_PROGRESS"
)

// UnmarshalJSON rejects unrecognized status strings at the decode boundary so
// bad producer data surfaces immediately instead of falling into catch-all
// buckets during aggregation. An empty string is allowed (status is optional
// on index entries).
func (s *FixStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch FixStatus(raw) {
	case "", FixStatusSuccess, FixStatusFailed, FixStatusPartial, FixStatusInProgress:
		*s = FixStatus(raw)
		return nil
	}
	return fmt.Errorf("unrecognized fix status %q", raw)
}

// FailureCategory classifies what kind of CI failure triggered a fix attempt.
type FailureCategory string

const (
	FailureTest     FailureCategory = "test"
	FailureLint     FailureCategory = "lint"
	FailureSecurity FailureCategory = "security"
	FailureBuild    FailureCategory = "build"
	FailureUnknown  FailureCategory = "unknown"
)

// UnmarshalJSON rejects unrecognized failure categories. An empty string is
// allowed; aggregation maps it to FailureUnknown.
func (c *FailureCategory) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch FailureCategory(raw) {
	case "", FailureTest, FailureLint, FailureSecurity, FailureBuild, FailureUnknown:
		*c = FailureCategory(raw)
		return nil
	}
	return fmt.Errorf("unrecognized failure category %q", raw)
}

// OrUnknown returns the category, defaulting an empty value to FailureUnknown.
// Grouping keys must never be the empty string.
func (c FailureCategory) OrUnknown() FailureCategory {
	if c == "" {
		return FailureUnknown
	}
	return c
}

// EventType classifies a single step in an agent execution trace.
type EventType string

const (
	EventReasoning  EventType = "REASONING"
	EventToolCall   EventType = "TOOL_CALL"
	EventToolResult EventType = "TOOL_RESULT"
	EventAction     EventType = "ACTION"
	EventError      EventType = "ERROR"
	EventInfo       EventType = "INFO"
)

// UnmarshalJSON rejects unrecognized event types.
func (t *EventType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch EventType(raw) {
	case EventReasoning, EventToolCall, EventToolResult, EventAction, EventError, EventInfo:
		*t = EventType(raw)
		return nil
	}
	return fmt.Errorf("unrecognized event type %q", raw)
}

// MergeKind distinguishes how a fixed PR reached the default branch.
type MergeKind string

const (
	MergeAuto   MergeKind = "auto"   // Merged by the auto-merge queue without agent changes.
	MergeManual MergeKind = "manual" // Merged after the agent pushed fixes.
)
