package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sharkey-archiver/internal/snapshot"
)

// RenderHandler serves pending snapshot pages to the headless browser. Tokens
// exist only while a capture is in flight, so stale URLs just 404.
type RenderHandler struct {
	registry *snapshot.Registry
}

// NewRenderHandler creates a new RenderHandler.
func NewRenderHandler(registry *snapshot.Registry) *RenderHandler {
	return &RenderHandler{registry: registry}
}

// ServeHTTP serves the registered page for a snapshot token.
func (h *RenderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, ok := h.registry.Get(chi.URLParam(r, "token"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}
