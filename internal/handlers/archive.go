package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"sharkey-archiver/internal/archive"
	"sharkey-archiver/internal/contextutil"
	"sharkey-archiver/internal/jobs"
	"sharkey-archiver/internal/misskey"
	"sharkey-archiver/internal/resolve"
)

// Archiver runs archive operations against a remote instance.
type Archiver interface {
	ArchiveNote(ctx context.Context, instance, noteID string) (*archive.NoteResult, error)
	ArchiveUser(ctx context.Context, instance, username string, maxPosts int, progress archive.ProgressFunc) (*archive.UserResult, error)
}

// ArchiveHandler handles HTTP requests for starting archive runs. Single
// posts archive synchronously; user timelines run as background jobs polled
// via the progress endpoint.
type ArchiveHandler struct {
	archiver        Archiver
	tracker         *jobs.Tracker
	defaultMaxPosts int
}

// NewArchiveHandler creates a new ArchiveHandler. defaultMaxPosts caps user
// archive runs when the request does not set its own limit.
func NewArchiveHandler(archiver Archiver, tracker *jobs.Tracker, defaultMaxPosts int) *ArchiveHandler {
	return &ArchiveHandler{
		archiver:        archiver,
		tracker:         tracker,
		defaultMaxPosts: defaultMaxPosts,
	}
}

// ArchiveRequest represents the archive request payload. Input takes a post
// URL, a profile URL, a fediverse handle, or a bare username. Instance is only
// consulted when the input does not carry its own.
type ArchiveRequest struct {
	Input    string `json:"input"`
	Instance string `json:"instance"`
	MaxPosts int    `json:"max_posts"`
}

// ArchiveStartedResponse is returned when a user archive job was accepted.
type ArchiveStartedResponse struct {
	Status   string `json:"status"`
	JobID    string `json:"job_id"`
	User     string `json:"user"`
	Instance string `json:"instance"`
}

// ServeHTTP handles HTTP requests for starting archive runs.
func (h *ArchiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := strings.TrimSpace(req.Input)
	if input == "" {
		writeError(w, http.StatusBadRequest, "Input is required.")
		return
	}

	target, err := resolve.Resolve(input)
	if err != nil {
		var inputErr *resolve.InputError
		if errors.As(err, &inputErr) {
			logger.WarnContext(ctx, "unresolvable archive input", "input", input, "error", err)
			writeError(w, http.StatusBadRequest, inputErr.Error())
			return
		}
		logger.ErrorContext(ctx, "failed to resolve input", "input", input, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve input")
		return
	}

	// An instance detected in the input wins over the form field.
	instance := target.Instance
	if instance == "" {
		instance = strings.TrimSpace(req.Instance)
	}
	if instance == "" {
		writeError(w, http.StatusBadRequest, "Instance URL required — include it in the URL/handle, or fill in the Instance field.")
		return
	}
	if !strings.HasPrefix(instance, "http") {
		instance = "https://" + instance
	}

	maxPosts := req.MaxPosts
	if maxPosts <= 0 {
		maxPosts = h.defaultMaxPosts
	}

	switch target.Kind {
	case resolve.KindNote:
		h.archiveNote(w, r, instance, target.ID)
	case resolve.KindUser:
		h.archiveUser(w, r, instance, target.ID, maxPosts)
	default:
		writeError(w, http.StatusBadRequest, "Unrecognised input")
	}
}

// archiveNote archives a single post synchronously.
func (h *ArchiveHandler) archiveNote(w http.ResponseWriter, r *http.Request, instance, noteID string) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	logger.InfoContext(ctx, "archiving single post", "instance", instance, "note_id", noteID)

	result, err := h.archiver.ArchiveNote(ctx, instance, noteID)
	if err != nil {
		h.handleArchiveError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// archiveUser starts a background job archiving a whole timeline and returns
// immediately with the job id.
func (h *ArchiveHandler) archiveUser(w http.ResponseWriter, r *http.Request, instance, username string, maxPosts int) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	jobID := h.tracker.Start()
	logger.InfoContext(ctx, "archive job started",
		"job_id", jobID, "instance", instance, "user", username, "max_posts", maxPosts)

	// The job outlives the request, so it runs on a background context
	// carrying a job-scoped logger.
	jobLogger := logger.With("job_id", jobID)
	jobCtx := contextutil.WithLogger(context.Background(), jobLogger)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				jobLogger.ErrorContext(jobCtx, "archive job panicked", "panic", rec)
				h.tracker.Fail(jobID, fmt.Sprintf("internal error: %v", rec))
			}
		}()

		result, err := h.archiver.ArchiveUser(jobCtx, instance, username, maxPosts,
			func(processed, fetched int) {
				h.tracker.Update(jobID, processed, fetched)
			})
		if err != nil {
			jobLogger.ErrorContext(jobCtx, "archive job failed", "error", err)
			h.tracker.Fail(jobID, err.Error())
			return
		}

		jobLogger.InfoContext(jobCtx, "archive job finished",
			"archived", result.Archived, "skipped", result.Skipped, "total", result.Total)
		h.tracker.Complete(jobID, result)
	}()

	writeJSON(w, http.StatusOK, ArchiveStartedResponse{
		Status:   "started",
		JobID:    jobID,
		User:     username,
		Instance: instance,
	})
}

// handleArchiveError maps archive errors to appropriate HTTP status codes.
func (h *ArchiveHandler) handleArchiveError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "archive failed", "error", err)

	var inputErr *resolve.InputError
	if errors.As(err, &inputErr) {
		writeError(w, http.StatusBadRequest, inputErr.Error())
		return
	}

	var apiErr *misskey.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeError(w, http.StatusInternalServerError, err.Error())
}
