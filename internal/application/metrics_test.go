package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fixtrace/internal/application"
	"github.com/ericfisherdev/fixtrace/internal/domain/model"
)

func hours(h float64) *float64 {
	return &h
}

func summaryRow(repo string, number int, status model.FixStatus, failure model.FailureCategory, fixTime *float64) model.PRSummary {
	return model.PRSummary{
		Repo:         repo,
		PRNumber:     number,
		Status:       status,
		FailureType:  failure,
		FixTimeHours: fixTime,
	}
}

func TestAggregateMetrics_EmptyInput(t *testing.T) {
	m := application.AggregateMetrics([]model.PRSummary{})

	assert.Equal(t, 0, m.Stats.TotalPRsScanned)
	assert.Zero(t, m.Stats.SuccessRate)
	assert.Zero(t, m.Stats.AvgFixTimeHours)
	require.NotNil(t, m.ByFailureType)
	require.NotNil(t, m.ByRepo)
	assert.Empty(t, m.ByFailureType)
	assert.Empty(t, m.ByRepo)
	assert.False(t, m.SnapshotDate.Time().IsZero())
}

func TestAggregateMetrics_SingleSuccessfulRow(t *testing.T) {
	rows := []model.PRSummary{
		summaryRow("vi/repo-a", 17, model.FixStatusSuccess, model.FailureTest, hours(1.0)),
	}

	m := application.AggregateMetrics(rows)

	assert.Equal(t, 1, m.Stats.TotalPRsScanned)
	assert.Equal(t, 1, m.Stats.PRsBotFixed)
	assert.Equal(t, 0, m.Stats.PRsFailed)
	assert.InDelta(t, 1.0, m.Stats.SuccessRate, 0.0001)
	assert.InDelta(t, 1.0, m.Stats.AvgFixTimeHours, 0.0001)

	require.Contains(t, m.ByFailureType, model.FailureTest)
	ft := m.ByFailureType[model.FailureTest]
	assert.Equal(t, model.FailureTypeStats{Count: 1, Fixed: 1, Failed: 0, SuccessRate: 1}, ft)

	require.Contains(t, m.ByRepo, "vi/repo-a")
	rs := m.ByRepo["vi/repo-a"]
	assert.Equal(t, 1, rs.TotalPRs)
	assert.Equal(t, 1, rs.BotFixed)
	assert.Equal(t, 0, rs.AutoMerged) // Merges are never observable from traces.
	assert.InDelta(t, 1.0, rs.SuccessRate, 0.0001)
}

func TestAggregateMetrics_StatusBuckets(t *testing.T) {
	rows := []model.PRSummary{
		summaryRow("vi/repo-a", 1, model.FixStatusSuccess, model.FailureTest, hours(2)),
		summaryRow("vi/repo-a", 2, model.FixStatusFailed, model.FailureTest, nil),
		summaryRow("vi/repo-b", 3, model.FixStatusInProgress, model.FailureLint, nil),
		summaryRow("vi/repo-b", 4, model.FixStatusPartial, model.FailureLint, hours(4)),
	}

	m := application.AggregateMetrics(rows)

	assert.Equal(t, 4, m.Stats.TotalPRsScanned)
	assert.Equal(t, 1, m.Stats.PRsBotFixed)
	assert.Equal(t, 1, m.Stats.PRsFailed)
	assert.Equal(t, 1, m.Stats.PRsOpen)

	// PARTIAL rows count toward totals only: 4 scanned, but the three
	// success/failed/open buckets hold one row each.
	assert.Equal(t, 3, m.Stats.PRsBotFixed+m.Stats.PRsFailed+m.Stats.PRsOpen)

	// PARTIAL contributes to group counts without landing in fixed or failed.
	lint := m.ByFailureType[model.FailureLint]
	assert.Equal(t, 2, lint.Count)
	assert.Equal(t, 0, lint.Fixed)
	assert.Equal(t, 0, lint.Failed)
	assert.Zero(t, lint.SuccessRate)

	// Rows without a fix time are excluded from the mean, not zeroed.
	assert.InDelta(t, 3.0, m.Stats.AvgFixTimeHours, 0.0001) // (2+4)/2
}

func TestAggregateMetrics_RatesStayWithinBounds(t *testing.T) {
	rows := []model.PRSummary{
		summaryRow("vi/repo-a", 1, model.FixStatusSuccess, model.FailureBuild, nil),
		summaryRow("vi/repo-a", 2, model.FixStatusSuccess, model.FailureBuild, nil),
		summaryRow("vi/repo-a", 3, model.FixStatusFailed, model.FailureSecurity, nil),
		summaryRow("vi/repo-b", 4, model.FixStatusPartial, "", nil),
	}

	m := application.AggregateMetrics(rows)

	assert.GreaterOrEqual(t, m.Stats.SuccessRate, 0.0)
	assert.LessOrEqual(t, m.Stats.SuccessRate, 1.0)
	for _, ft := range m.ByFailureType {
		assert.GreaterOrEqual(t, ft.SuccessRate, 0.0)
		assert.LessOrEqual(t, ft.SuccessRate, 1.0)
	}
	for _, rs := range m.ByRepo {
		assert.GreaterOrEqual(t, rs.SuccessRate, 0.0)
		assert.LessOrEqual(t, rs.SuccessRate, 1.0)
	}
}

func TestAggregateMetrics_EmptyCategoryGroupsAsUnknown(t *testing.T) {
	rows := []model.PRSummary{
		summaryRow("vi/repo-a", 1, model.FixStatusFailed, "", nil),
	}

	m := application.AggregateMetrics(rows)

	require.Contains(t, m.ByFailureType, model.FailureUnknown)
	assert.NotContains(t, m.ByFailureType, model.FailureCategory(""))
}

func TestAggregateMetrics_Deterministic(t *testing.T) {
	rows := []model.PRSummary{
		summaryRow("vi/repo-a", 1, model.FixStatusSuccess, model.FailureTest, hours(0.5)),
		summaryRow("vi/repo-b", 2, model.FixStatusFailed, model.FailureLint, nil),
		summaryRow("vi/repo-a", 3, model.FixStatusInProgress, "", nil),
	}

	first := application.AggregateMetrics(rows)
	second := application.AggregateMetrics(rows)

	// Only the snapshot timestamp may differ between runs.
	first.SnapshotDate = model.SnapshotTime(time.Time{})
	second.SnapshotDate = model.SnapshotTime(time.Time{})
	assert.Equal(t, first, second)
}
