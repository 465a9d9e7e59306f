package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
)

func TestTraceRecord_DecodesProducerJSON(t *testing.T) {
	// Shape matches what the fix pipeline's tracer uploads.
	raw := `{
		"metadata": {
			"workflow_run_id": "12345",
			"github_run_url": "https://github.com/vi/repo-a/actions/runs/12345",
			"timestamp": "2024-06-01T10:00:00+00:00",
			"pr": {"repo": "vi/repo-a", "number": 17, "title": "Bump dep", "author": "app/dependabot", "url": "https://github.com/vi/repo-a/pull/17"},
			"failure": {"type": "test", "checks": ["pytest"], "logs_truncated": "assert 1 == 2"}
		},
		"execution": {
			"start_time": "2024-06-01T10:00:00+00:00",
			"end_time": "2024-06-01T11:00:00+00:00",
			"duration_seconds": 3600,
			"model": "claude-sonnet-4.5",
			"tools_allowed": ["Read", "Edit", "Bash"]
		},
		"events": [
			{"seq": 1, "timestamp": "2024-06-01T10:00:01+00:00", "type": "REASONING", "content": "Analyzing failure"},
			{"seq": 2, "timestamp": "2024-06-01T10:00:05+00:00", "type": "TOOL_CALL", "content": "Reading tests", "tool": "Read", "parameters": {"target": "tests/test_app.py"}}
		],
		"result": {
			"status": "SUCCESS",
			"changes_made": 2,
			"files_modified": ["tests/test_app.py"],
			"commit_sha": "abc123",
			"commit_url": "https://github.com/vi/repo-a/commit/abc123"
		}
	}`

	var rec model.TraceRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, "vi/repo-a", rec.Metadata.PR.Repo)
	assert.Equal(t, 17, rec.Metadata.PR.Number)
	require.NotNil(t, rec.Metadata.Failure)
	assert.Equal(t, model.FailureTest, rec.Metadata.Failure.Type)
	assert.Equal(t, model.FixStatusSuccess, rec.Result.Status)
	require.Len(t, rec.Events, 2)
	assert.Equal(t, model.EventToolCall, rec.Events[1].Type)
	assert.Equal(t, "Read", rec.Events[1].Tool)
	require.NotNil(t, rec.Execution.DurationSeconds)
	assert.InDelta(t, 3600, *rec.Execution.DurationSeconds, 0.001)
	assert.NoError(t, rec.Validate())
}

func TestTraceRecord_RejectsUnknownEnums(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		var s model.FixStatus
		assert.Error(t, json.Unmarshal([]byte(`"DONE"`), &s))
	})

	t.Run("bad failure category", func(t *testing.T) {
		var c model.FailureCategory
		assert.Error(t, json.Unmarshal([]byte(`"flaky"`), &c))
	})

	t.Run("bad event type", func(t *testing.T) {
		var e model.EventType
		assert.Error(t, json.Unmarshal([]byte(`"THINKING"`), &e))
	})

	t.Run("empty status allowed for optional fields", func(t *testing.T) {
		var s model.FixStatus
		require.NoError(t, json.Unmarshal([]byte(`""`), &s))
		assert.Empty(t, s)
	})
}

func TestTraceRecord_FixTimeHours(t *testing.T) {
	t.Run("converts seconds to hours", func(t *testing.T) {
		d := 5400.0
		rec := model.TraceRecord{Execution: model.ExecutionInfo{DurationSeconds: &d}}

		got := rec.FixTimeHours()
		require.NotNil(t, got)
		assert.InDelta(t, 1.5, *got, 0.001)
	})

	t.Run("nil duration stays nil, never zero", func(t *testing.T) {
		rec := model.TraceRecord{}
		assert.Nil(t, rec.FixTimeHours())
	})
}

func TestTraceRecord_Validate(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("strictly increasing seq passes", func(t *testing.T) {
		rec := model.TraceRecord{Events: []model.AgentEvent{
			{Seq: 1, Type: model.EventInfo},
			{Seq: 2, Type: model.EventInfo},
			{Seq: 5, Type: model.EventInfo},
		}}
		assert.NoError(t, rec.Validate())
	})

	t.Run("duplicate seq fails", func(t *testing.T) {
		rec := model.TraceRecord{Events: []model.AgentEvent{
			{Seq: 1, Type: model.EventInfo},
			{Seq: 1, Type: model.EventInfo},
		}}
		assert.Error(t, rec.Validate())
	})

	t.Run("decreasing seq fails", func(t *testing.T) {
		rec := model.TraceRecord{Events: []model.AgentEvent{
			{Seq: 3, Type: model.EventInfo},
			{Seq: 2, Type: model.EventInfo},
		}}
		assert.Error(t, rec.Validate())
	})

	t.Run("duration consistent with start and end passes", func(t *testing.T) {
		end := base.Add(time.Hour)
		d := 3600.0
		rec := model.TraceRecord{Execution: model.ExecutionInfo{
			StartTime:       base,
			EndTime:         &end,
			DurationSeconds: &d,
		}}
		assert.NoError(t, rec.Validate())
	})

	t.Run("truncated whole-second duration tolerated", func(t *testing.T) {
		end := base.Add(time.Hour + 900*time.Millisecond)
		d := 3600.0
		rec := model.TraceRecord{Execution: model.ExecutionInfo{
			StartTime:       base,
			EndTime:         &end,
			DurationSeconds: &d,
		}}
		assert.NoError(t, rec.Validate())
	})

	t.Run("duration disagreeing with span fails", func(t *testing.T) {
		end := base.Add(time.Hour)
		d := 60.0
		rec := model.TraceRecord{Execution: model.ExecutionInfo{
			StartTime:       base,
			EndTime:         &end,
			DurationSeconds: &d,
		}}
		assert.Error(t, rec.Validate())
	})

	t.Run("missing end time skips the duration check", func(t *testing.T) {
		d := 60.0
		rec := model.TraceRecord{Execution: model.ExecutionInfo{
			StartTime:       base,
			DurationSeconds: &d,
		}}
		assert.NoError(t, rec.Validate())
	})
}

func TestSnapshotTime_AcceptsBothFormats(t *testing.T) {
	t.Run("RFC 3339", func(t *testing.T) {
		var st model.SnapshotTime
		require.NoError(t, json.Unmarshal([]byte(`"2024-06-01T10:00:00Z"`), &st))
		assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), st.Time())
	})

	t.Run("bare date from older collector runs", func(t *testing.T) {
		var st model.SnapshotTime
		require.NoError(t, json.Unmarshal([]byte(`"2024-06-01"`), &st))
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), st.Time())
	})

	t.Run("garbage rejected", func(t *testing.T) {
		var st model.SnapshotTime
		assert.Error(t, json.Unmarshal([]byte(`"June 1st"`), &st))
	})

	t.Run("marshals as RFC 3339", func(t *testing.T) {
		st := model.SnapshotTime(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
		data, err := json.Marshal(st)
		require.NoError(t, err)
		assert.JSONEq(t, `"2024-06-01T10:00:00Z"`, string(data))
	})
}
