package application

import (
	"time"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
)

// AggregateMetrics folds summary rows into one metrics snapshot. It is a
// deterministic, side-effect-free function of its input: two calls over the
// same rows produce identical stats, differing only in SnapshotDate (the
// wall-clock time of aggregation). An empty input produces zero counts, zero
// rates, and empty (non-nil) group maps.
//
// Accounting rules:
//   - SUCCESS counts as bot-fixed, FAILED as failed, IN_PROGRESS as open.
//     PARTIAL rows count toward the total only; partial fixes are neither
//     success nor failure and get no bucket of their own.
//   - success_rate is fixed/count with a zero-count guard, so rates are
//     always finite and within [0, 1].
//   - avg_fix_time_hours averages rows that carry a fix time; rows with an
//     unknown duration are excluded from the mean, not treated as zero.
//   - prs_auto_merged stays 0 here: merges are not observable from trace
//     records. The precomputed metrics documents are the authoritative
//     source for auto-merge counts.
func AggregateMetrics(summaries []model.PRSummary) model.BotMetrics {
	stats := model.GlobalStats{TotalPRsScanned: len(summaries)}
	byFailureType := make(map[model.FailureCategory]model.FailureTypeStats)
	byRepo := make(map[string]model.RepoStats)

	var fixTimeSum float64
	var fixTimeCount int

	for _, row := range summaries {
		switch row.Status {
		case model.FixStatusSuccess:
			stats.PRsBotFixed++
		case model.FixStatusFailed:
			stats.PRsFailed++
		case model.FixStatusInProgress:
			stats.PRsOpen++
		}

		if row.FixTimeHours != nil {
			fixTimeSum += *row.FixTimeHours
			fixTimeCount++
		}

		category := row.FailureType.OrUnknown()
		ft := byFailureType[category]
		ft.Count++
		switch row.Status {
		case model.FixStatusSuccess:
			ft.Fixed++
		case model.FixStatusFailed:
			ft.Failed++
		}
		byFailureType[category] = ft

		rs := byRepo[row.Repo]
		rs.TotalPRs++
		switch row.Status {
		case model.FixStatusSuccess:
			rs.BotFixed++
		case model.FixStatusFailed:
			rs.Failed++
		}
		byRepo[row.Repo] = rs
	}

	stats.SuccessRate = ratio(stats.PRsBotFixed, stats.TotalPRsScanned)
	if fixTimeCount > 0 {
		stats.AvgFixTimeHours = fixTimeSum / float64(fixTimeCount)
	}

	for category, ft := range byFailureType {
		ft.SuccessRate = ratio(ft.Fixed, ft.Count)
		byFailureType[category] = ft
	}
	for repo, rs := range byRepo {
		rs.SuccessRate = ratio(rs.BotFixed, rs.TotalPRs)
		byRepo[repo] = rs
	}

	return model.BotMetrics{
		SnapshotDate:  model.SnapshotTime(time.Now().UTC()),
		Stats:         stats,
		ByFailureType: byFailureType,
		ByRepo:        byRepo,
	}
}

// ratio guards against division by zero; rates are 0, never NaN.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
