package application

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
)

// SortField names a sortable summary column.
type SortField string

const (
	SortByTimestamp SortField = "timestamp"
	SortByRepo      SortField = "repo"
	SortByPRNumber  SortField = "pr_number"
	SortByFixTime   SortField = "fix_time"
)

// SummaryQuery is the presentation layer's input contract: exact-match
// filters, an optional fuzzy search term, and a sort order. The zero value
// passes every row through in index order.
type SummaryQuery struct {
	Repo        string
	Status      model.FixStatus
	FailureType model.FailureCategory
	Search      string
	SortBy      SortField
	Descending  bool
}

// Apply filters, searches, and sorts the given rows, returning a new slice;
// the input is never mutated. When Search is set the output is ranked by
// match quality and SortBy is ignored. Sorting is stable, so rows comparing
// equal keep their relative index order.
func (q SummaryQuery) Apply(rows []model.PRSummary) []model.PRSummary {
	out := make([]model.PRSummary, 0, len(rows))
	for _, row := range rows {
		if q.matches(row) {
			out = append(out, row)
		}
	}

	if q.Search != "" {
		return rankBySearch(q.Search, out)
	}

	if q.SortBy != "" {
		q.sortRows(out)
	}

	return out
}

func (q SummaryQuery) matches(row model.PRSummary) bool {
	if q.Repo != "" && row.Repo != q.Repo {
		return false
	}
	if q.Status != "" && row.Status != q.Status {
		return false
	}
	if q.FailureType != "" && row.FailureType.OrUnknown() != q.FailureType {
		return false
	}
	return true
}

func (q SummaryQuery) sortRows(rows []model.PRSummary) {
	less := func(a, b model.PRSummary) bool { return a.Timestamp.Before(b.Timestamp) }

	switch q.SortBy {
	case SortByRepo:
		less = func(a, b model.PRSummary) bool { return a.Repo < b.Repo }
	case SortByPRNumber:
		less = func(a, b model.PRSummary) bool { return a.PRNumber < b.PRNumber }
	case SortByFixTime:
		// Rows without a fix time sort last regardless of direction.
		less = func(a, b model.PRSummary) bool {
			switch {
			case a.FixTimeHours == nil:
				return false
			case b.FixTimeHours == nil:
				return true
			default:
				return *a.FixTimeHours < *b.FixTimeHours
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if q.Descending {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

// summarySource adapts summary rows to fuzzy.Source. The haystack for each
// row is its repo, title, and author joined together.
type summarySource []model.PRSummary

func (s summarySource) String(i int) string {
	return strings.Join([]string{s[i].Repo, s[i].Title, s[i].Author}, " ")
}

func (s summarySource) Len() int { return len(s) }

// rankBySearch returns the rows matching the search term, best match first.
func rankBySearch(term string, rows []model.PRSummary) []model.PRSummary {
	matches := fuzzy.FindFrom(term, summarySource(rows))

	ranked := make([]model.PRSummary, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, rows[m.Index])
	}

	return ranked
}
