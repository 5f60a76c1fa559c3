package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sharkey-archiver/internal/handlers"
	"sharkey-archiver/internal/jobs"
	"sharkey-archiver/internal/metrics"
	"sharkey-archiver/internal/mirror"
	"sharkey-archiver/internal/snapshot"
	"sharkey-archiver/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB        handlers.Pinger // Database handle, used by health checks
	Store     storage.PostStore
	Archiver  handlers.Archiver
	Tracker   *jobs.Tracker
	Snapshots handlers.SnapshotService
	Registry  *snapshot.Registry
	Mirror    *mirror.Renderer
	MediaDir  string
	MaxPosts  int    // Default cap for user archive runs
	IndexHTML string // Embedded HTML content
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Add CORS middleware
	r.Use(CORS)

	// Request-scoped loggers picked up by the handlers
	r.Use(LoggerMiddleware)

	archiveHandler := handlers.NewArchiveHandler(deps.Archiver, deps.Tracker, deps.MaxPosts)
	progressHandler := handlers.NewProgressHandler(deps.Tracker)
	postsHandler := handlers.NewPostsHandler(deps.Store)
	retakeHandler := handlers.NewRetakeScreenshotsHandler(deps.Snapshots, deps.Store, deps.Tracker)
	screenshotProgressHandler := handlers.NewScreenshotProgressHandler(deps.Tracker)
	rendererStatusHandler := handlers.NewRendererStatusHandler(deps.Snapshots)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Snapshots)

	pageHandler := handlers.NewPostPageHandler(deps.Store, deps.Mirror)
	downloadHandler := handlers.NewDownloadHandler(deps.Store, deps.Mirror)
	screenshotHandler := handlers.NewScreenshotHandler(deps.Store)
	mediaHandler := handlers.NewMediaHandler(deps.MediaDir)
	renderHandler := handlers.NewRenderHandler(deps.Registry)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/archive", archiveHandler)
		r.Method(http.MethodGet, "/progress", progressHandler)
		r.Method(http.MethodGet, "/posts", postsHandler)
		r.Method(http.MethodPost, "/retake-screenshots", retakeHandler)
		r.Method(http.MethodGet, "/screenshot-progress", screenshotProgressHandler)
		r.Method(http.MethodGet, "/renderer-status", rendererStatusHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	// Post ids contain a slash, so these routes match wildcards.
	r.Method(http.MethodGet, "/post/*", pageHandler)
	r.Method(http.MethodGet, "/download/*", downloadHandler)
	r.Method(http.MethodGet, "/screenshot/*", screenshotHandler)
	r.Method(http.MethodGet, "/media/*", mediaHandler)
	r.Method(http.MethodGet, "/render/{token}", renderHandler)

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Serve HTML page at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(deps.IndexHTML))
	})

	return r
}
