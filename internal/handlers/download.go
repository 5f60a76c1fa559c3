package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"sharkey-archiver/internal/contextutil"
	"sharkey-archiver/internal/export"
	"sharkey-archiver/internal/media"
	"sharkey-archiver/internal/mirror"
	"sharkey-archiver/internal/storage"
)

// DownloadHandler serves one archived post as a self-contained ZIP bundle.
type DownloadHandler struct {
	store    storage.PostStore
	renderer *mirror.Renderer
}

// NewDownloadHandler creates a new DownloadHandler.
func NewDownloadHandler(store storage.PostStore, renderer *mirror.Renderer) *DownloadHandler {
	return &DownloadHandler{store: store, renderer: renderer}
}

// ServeHTTP builds and serves the ZIP bundle for one post.
func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	mediaRows, err := h.store.ListMedia(ctx, postID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load media", "post_id", postID, "error", err)
		http.Error(w, "failed to load post", http.StatusInternalServerError)
		return
	}

	// The bundled page inlines media so it works offline.
	page, err := h.renderer.RenderPost(post, mediaRows, true)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render post", "post_id", postID, "error", err)
		http.Error(w, "failed to build archive", http.StatusInternalServerError)
		return
	}

	data, err := export.BuildZip(post, mediaRows, page)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build zip", "post_id", postID, "error", err)
		http.Error(w, "failed to build archive", http.StatusInternalServerError)
		return
	}

	filename := "sharkey_archive_" + media.SanitizeBucket(post.ID) + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}
