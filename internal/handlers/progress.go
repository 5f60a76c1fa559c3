package handlers

import (
	"net/http"

	"sharkey-archiver/internal/contextutil"
	"sharkey-archiver/internal/jobs"
)

// ProgressHandler reports the state of a background archive job.
type ProgressHandler struct {
	tracker *jobs.Tracker
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(tracker *jobs.Tracker) *ProgressHandler {
	return &ProgressHandler{tracker: tracker}
}

// ServeHTTP handles HTTP requests for archive job progress.
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Polling an unknown or forgotten job id is routine, not an error.
	status, ok := h.tracker.Get(r.URL.Query().Get("job"))
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": "unknown"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}
