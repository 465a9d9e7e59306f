package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SummaryResponse is the JSON representation of one dashboard row.
type SummaryResponse struct {
	Repo         string   `json:"repo"`
	PRNumber     int      `json:"pr_number"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	FailureType  string   `json:"failure_type"`
	Status       string   `json:"status"`
	FixTimeHours *float64 `json:"fix_time_hours"`
	Timestamp    string   `json:"timestamp"`
	TracePath    string   `json:"trace_path"`
	PRURL        string   `json:"pr_url"`
	RunURL       string   `json:"run_url"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toSummaryResponse converts a domain PRSummary to its JSON representation.
func toSummaryResponse(s model.PRSummary) SummaryResponse {
	return SummaryResponse{
		Repo:         s.Repo,
		PRNumber:     s.PRNumber,
		Title:        s.Title,
		Author:       s.Author,
		FailureType:  string(s.FailureType),
		Status:       string(s.Status),
		FixTimeHours: s.FixTimeHours,
		Timestamp:    s.Timestamp.UTC().Format(time.RFC3339),
		TracePath:    s.TracePath,
		PRURL:        s.PRURL,
		RunURL:       s.RunURL,
	}
}
