package handlers

import (
	"context"
	"fmt"
	"net/http"

	"sharkey-archiver/internal/contextutil"
	"sharkey-archiver/internal/jobs"
	"sharkey-archiver/internal/snapshot"
	"sharkey-archiver/internal/storage"
)

// SnapshotService captures card snapshots for archived posts.
type SnapshotService interface {
	Available() bool
	RetakeMissing(ctx context.Context, progress func(done, failed, total int)) (*snapshot.RetakeResult, error)
}

// RetakeScreenshotsHandler starts a background job that captures a snapshot
// for every archived post missing one.
type RetakeScreenshotsHandler struct {
	snapshots SnapshotService
	store     storage.PostStore
	tracker   *jobs.Tracker
}

// NewRetakeScreenshotsHandler creates a new RetakeScreenshotsHandler.
func NewRetakeScreenshotsHandler(snapshots SnapshotService, store storage.PostStore, tracker *jobs.Tracker) *RetakeScreenshotsHandler {
	return &RetakeScreenshotsHandler{
		snapshots: snapshots,
		store:     store,
		tracker:   tracker,
	}
}

// ServeHTTP handles HTTP requests for starting a screenshot retake job.
func (h *RetakeScreenshotsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	decision, total, err := h.tracker.StartScreenshot(func() (int, error) {
		return h.store.CountPostsMissingScreenshot(ctx)
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to count posts missing screenshots", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to count posts")
		return
	}

	switch decision {
	case jobs.ScreenshotAlreadyRunning:
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
		return
	case jobs.ScreenshotNothingToDo:
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "nothing_to_do",
			"message": "All posts already have screenshots.",
		})
		return
	}

	logger.InfoContext(ctx, "screenshot retake started", "total", total)

	jobLogger := logger.With("job", "retake_screenshots")
	jobCtx := contextutil.WithLogger(context.Background(), jobLogger)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				jobLogger.ErrorContext(jobCtx, "screenshot job panicked", "panic", rec)
				h.tracker.FailScreenshot(fmt.Sprintf("internal error: %v", rec))
			}
		}()

		result, err := h.snapshots.RetakeMissing(jobCtx, func(done, failed, n int) {
			h.tracker.UpdateScreenshot(done+failed, n)
		})
		if err != nil {
			jobLogger.ErrorContext(jobCtx, "screenshot retake failed", "error", err)
			h.tracker.FailScreenshot(err.Error())
			return
		}
		h.tracker.FinishScreenshot(result.Done, result.Failed, result.Total)
	}()

	writeJSON(w, http.StatusOK, map[string]any{"status": "started", "total": total})
}

// ScreenshotProgressHandler reports the state of the screenshot retake job.
type ScreenshotProgressHandler struct {
	tracker *jobs.Tracker
}

// NewScreenshotProgressHandler creates a new ScreenshotProgressHandler.
func NewScreenshotProgressHandler(tracker *jobs.Tracker) *ScreenshotProgressHandler {
	return &ScreenshotProgressHandler{tracker: tracker}
}

// ServeHTTP handles HTTP requests for screenshot job progress.
func (h *ScreenshotProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, h.tracker.ScreenshotStatus())
}

// RendererStatusHandler reports whether snapshot capturing is available, so
// the UI can disable its screenshot controls when no browser was found.
type RendererStatusHandler struct {
	snapshots SnapshotService
}

// NewRendererStatusHandler creates a new RendererStatusHandler.
func NewRendererStatusHandler(snapshots SnapshotService) *RendererStatusHandler {
	return &RendererStatusHandler{snapshots: snapshots}
}

// ServeHTTP handles HTTP requests for renderer availability.
func (h *RendererStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"available": h.snapshots.Available()})
}
