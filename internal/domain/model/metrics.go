package model

import (
	"encoding/json"
	"time"
)

// SnapshotTime marshals as RFC 3339 but also accepts bare dates on decode,
// because early collector runs stamped snapshots with "2006-01-02" only.
type SnapshotTime time.Time

// MarshalJSON renders the timestamp in RFC 3339 UTC.
func (t SnapshotTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts RFC 3339 timestamps or bare "2006-01-02" dates.
func (t *SnapshotTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return err
		}
	}
	*t = SnapshotTime(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t SnapshotTime) Time() time.Time {
	return time.Time(t)
}

// GlobalStats is the top-level counter block of a metrics snapshot.
type GlobalStats struct {
	TotalPRsScanned int     `json:"total_prs_scanned"`
	PRsAutoMerged   int     `json:"prs_auto_merged"`
	PRsBotFixed     int     `json:"prs_bot_fixed"`
	PRsFailed       int     `json:"prs_failed"`
	PRsOpen         int     `json:"prs_open"`
	SuccessRate     float64 `json:"success_rate"`
	AvgFixTimeHours float64 `json:"avg_fix_time_hours"`
}

// FailureTypeStats is the per-failure-category breakdown.
type FailureTypeStats struct {
	Count       int     `json:"count"`
	Fixed       int     `json:"fixed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// RepoStats is the per-repository breakdown.
type RepoStats struct {
	TotalPRs    int     `json:"total_prs"`
	AutoMerged  int     `json:"auto_merged"`
	BotFixed    int     `json:"bot_fixed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// BotMetrics is one aggregate snapshot of bot activity. SnapshotDate is the
// time the aggregation ran, not a property of the input rows; everything else
// is a pure function of the summaries that produced it.
type BotMetrics struct {
	SnapshotDate  SnapshotTime                         `json:"snapshot_date"`
	Stats         GlobalStats                          `json:"stats"`
	ByFailureType map[FailureCategory]FailureTypeStats `json:"by_failure_type"`
	ByRepo        map[string]RepoStats                 `json:"by_repo"`
}

// MetricsHistory is the time-series document of past snapshots.
type MetricsHistory struct {
	Snapshots   []BotMetrics `json:"snapshots"`
	LastUpdated SnapshotTime `json:"last_updated"`
}
