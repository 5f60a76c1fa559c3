package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"sharkey-archiver/internal/contextutil"
	"sharkey-archiver/internal/mirror"
	"sharkey-archiver/internal/storage"
)

// PostPageHandler serves the standalone HTML card for one archived post.
type PostPageHandler struct {
	store    storage.PostStore
	renderer *mirror.Renderer
}

// NewPostPageHandler creates a new PostPageHandler.
func NewPostPageHandler(store storage.PostStore, renderer *mirror.Renderer) *PostPageHandler {
	return &PostPageHandler{store: store, renderer: renderer}
}

// ServeHTTP renders the archived post page. Post ids contain a slash, so the
// route matches a wildcard and the id is the full path tail.
func (h *PostPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("<h1>Post not found</h1>"))
			return
		}
		logger.ErrorContext(ctx, "failed to load post", "post_id", postID, "error", err)
		http.Error(w, "failed to load post", http.StatusInternalServerError)
		return
	}

	media, err := h.store.ListMedia(ctx, postID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load media", "post_id", postID, "error", err)
		http.Error(w, "failed to load post", http.StatusInternalServerError)
		return
	}

	page, err := h.renderer.RenderPost(post, media, false)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render post", "post_id", postID, "error", err)
		http.Error(w, "failed to render post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}
