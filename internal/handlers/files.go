package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"sharkey-archiver/internal/contextutil"
	"sharkey-archiver/internal/storage"
)

// MediaHandler serves downloaded attachment files from the media directory.
type MediaHandler struct {
	mediaDir string
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaDir string) *MediaHandler {
	return &MediaHandler{mediaDir: mediaDir}
}

// ServeHTTP serves one stored media file.
func (h *MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	decoded, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, "invalid path encoding", http.StatusBadRequest)
		return
	}

	rel, err := cleanMediaPath(decoded)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	abs := filepath.Join(h.mediaDir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, abs)
}

// cleanMediaPath normalizes a requested media path and rejects traversal.
func cleanMediaPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("empty path")
	}

	cleaned := path.Clean("/" + trimmed)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", errors.New("invalid path")
	}

	for _, segment := range strings.Split(cleaned, "/") {
		if segment == ".." {
			return "", errors.New("path traversal detected")
		}
	}

	return cleaned, nil
}

// ScreenshotHandler serves the stored snapshot PNG for one post.
type ScreenshotHandler struct {
	store storage.PostStore
}

// NewScreenshotHandler creates a new ScreenshotHandler.
func NewScreenshotHandler(store storage.PostStore) *ScreenshotHandler {
	return &ScreenshotHandler{store: store}
}

// ServeHTTP serves the snapshot image for one archived post.
func (h *ScreenshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	postID, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "post not found", http.StatusNotFound)
			return
		}
		logger.ErrorContext(ctx, "failed to load post", "post_id", postID, "error", err)
		http.Error(w, "failed to load post", http.StatusInternalServerError)
		return
	}

	if !post.ScreenshotPath.Valid {
		http.Error(w, "no screenshot for this post", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(post.ScreenshotPath.String); err != nil {
		http.Error(w, "screenshot file missing", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, post.ScreenshotPath.String)
}
