// Package httphandler is the HTTP driving adapter that serves the REST API.
// The API hands consumers plain summary rows and metrics; nothing about the
// trace store's layout leaks through it.
package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/fixtrace/internal/application"
	"github.com/ericfisherdev/fixtrace/internal/domain/model"
)

// Handler serves the fixtrace REST API.
type Handler struct {
	summaries   *application.SummaryService
	metrics     *application.MetricsService
	traces      *application.TraceService
	snapshotSvc *application.SnapshotService // Nil when no archive is configured.
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. snapshotSvc
// may be nil; the snapshot trigger endpoint then returns 404.
func NewHandler(
	summaries *application.SummaryService,
	metrics *application.MetricsService,
	traces *application.TraceService,
	snapshotSvc *application.SnapshotService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		summaries:   summaries,
		metrics:     metrics,
		traces:      traces,
		snapshotSvc: snapshotSvc,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/summaries", h.ListSummaries)
	mux.HandleFunc("GET /api/v1/metrics", h.GetMetrics)
	mux.HandleFunc("GET /api/v1/metrics/live", h.GetLiveMetrics)
	mux.HandleFunc("GET /api/v1/metrics/history", h.GetMetricsHistory)
	mux.HandleFunc("GET /api/v1/traces/{owner}/{repo}/{number}", h.GetLatestTrace)
	mux.HandleFunc("POST /api/v1/snapshots", h.TriggerSnapshot)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListSummaries returns enriched summary rows, optionally filtered, searched,
// and sorted via query parameters. No data is not an error: the response is
// an empty array.
func (h *Handler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	query, ok := parseSummaryQuery(w, r)
	if !ok {
		return
	}

	rows, err := h.summaries.SummaryRows(r.Context())
	if err != nil {
		h.logger.Error("failed to build summaries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	rows = query.Apply(rows)

	resp := make([]SummaryResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toSummaryResponse(row))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetMetrics returns the current metrics snapshot, preferring the precomputed
// document over a live derivation.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.metrics.Latest(r.Context())
	if err != nil {
		h.logger.Error("failed to get metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// GetLiveMetrics returns metrics derived from the current trace index,
// bypassing any precomputed document. prs_auto_merged is always 0 on this
// path; merges are not observable from traces.
func (h *Handler) GetLiveMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.metrics.Live(r.Context())
	if err != nil {
		h.logger.Error("failed to derive live metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// GetMetricsHistory returns the snapshot time series.
func (h *Handler) GetMetricsHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.metrics.History(r.Context())
	if err != nil {
		h.logger.Error("failed to get metrics history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

// GetLatestTrace returns the full trace record of the most recent fix attempt
// for a PR. Events are served in stored sequence order.
func (h *Handler) GetLatestTrace(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")
	numberStr := r.PathValue("number")

	number, err := strconv.Atoi(numberStr)
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid PR number")
		return
	}

	repoFullName := owner + "/" + repo

	trace, err := h.traces.LatestTrace(r.Context(), repoFullName, number)
	if err != nil {
		h.logger.Error("failed to get trace", "repo", repoFullName, "number", number, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if trace == nil {
		writeError(w, http.StatusNotFound, "trace not found")
		return
	}

	writeJSON(w, http.StatusOK, trace)
}

// TriggerSnapshot archives a metrics snapshot outside the regular interval.
func (h *Handler) TriggerSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshotSvc == nil {
		writeError(w, http.StatusNotFound, "snapshot archive not configured")
		return
	}

	if err := h.snapshotSvc.SnapshotNow(r.Context()); err != nil {
		h.logger.Error("manual snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "archived"})
}

// Health returns a static health check response.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// parseSummaryQuery builds a SummaryQuery from request parameters, writing a
// 400 response and returning ok=false on invalid enum values.
func parseSummaryQuery(w http.ResponseWriter, r *http.Request) (application.SummaryQuery, bool) {
	q := application.SummaryQuery{
		Repo:   r.URL.Query().Get("repo"),
		Search: r.URL.Query().Get("q"),
	}

	if v := r.URL.Query().Get("status"); v != "" {
		switch s := model.FixStatus(v); s {
		case model.FixStatusSuccess, model.FixStatusFailed, model.FixStatusPartial, model.FixStatusInProgress:
			q.Status = s
		default:
			writeError(w, http.StatusBadRequest, "invalid status")
			return q, false
		}
	}

	if v := r.URL.Query().Get("failure_type"); v != "" {
		switch c := model.FailureCategory(v); c {
		case model.FailureTest, model.FailureLint, model.FailureSecurity, model.FailureBuild, model.FailureUnknown:
			q.FailureType = c
		default:
			writeError(w, http.StatusBadRequest, "invalid failure type")
			return q, false
		}
	}

	if v := r.URL.Query().Get("sort"); v != "" {
		switch s := application.SortField(v); s {
		case application.SortByTimestamp, application.SortByRepo, application.SortByPRNumber, application.SortByFixTime:
			q.SortBy = s
		default:
			writeError(w, http.StatusBadRequest, "invalid sort field")
			return q, false
		}
	}

	switch r.URL.Query().Get("order") {
	case "", "asc":
	case "desc":
		q.Descending = true
	default:
		writeError(w, http.StatusBadRequest, "invalid sort order")
		return q, false
	}

	return q, true
}
