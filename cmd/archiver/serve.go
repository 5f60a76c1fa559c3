package main

import (
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/spf13/cobra"

	"sharkey-archiver/internal/archive"
	"sharkey-archiver/internal/config"
	"sharkey-archiver/internal/http"
	"sharkey-archiver/internal/jobs"
	"sharkey-archiver/internal/media"
	"sharkey-archiver/internal/mirror"
	"sharkey-archiver/internal/misskey"
	"sharkey-archiver/internal/snapshot"
	"sharkey-archiver/internal/storage"
	"sharkey-archiver/internal/storage/migrations"
	"sharkey-archiver/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the archive web UI and API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := migrations.MigrateUp(db); err != nil {
		return fmt.Errorf("failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	store := storage.NewPostRepo(db)

	// Remote API client and media fetcher
	client := misskey.NewClient()
	fetcher := media.NewFetcher(cfg.MediaDir)

	// Mirror pages back both the /post/ routes and snapshot captures
	mirrorRenderer := mirror.NewRenderer(cfg.MediaDir)
	registry := snapshot.NewRegistry()

	// The browser renderer is optional; archiving works without it
	var renderer snapshot.Renderer
	if cfg.SnapshotsOn {
		chrome, err := snapshot.NewChrome(cfg.ChromePath)
		if err != nil {
			slog.Warn("Screenshots disabled, no usable browser found", "error", err)
		} else {
			renderer = chrome
			slog.Info("Snapshot renderer ready", "browser", chrome.ExecPath())
		}
	}
	snapshots := snapshot.NewService(store, renderer, mirrorRenderer, registry, cfg.MediaDir, cfg.BaseURL())

	pipeline := archive.NewPipeline(client, store, fetcher, snapshots)
	tracker := jobs.NewTracker()
	slog.Info("Archive pipeline initialized", "media_dir", cfg.MediaDir)

	// Create router with dependencies
	deps := &http.Deps{
		DB:        db,
		Store:     store,
		Archiver:  pipeline,
		Tracker:   tracker,
		Snapshots: snapshots,
		Registry:  registry,
		Mirror:    mirrorRenderer,
		MediaDir:  cfg.MediaDir,
		MaxPosts:  cfg.DefaultMaxPosts,
		IndexHTML: web.IndexHTML,
	}
	router := http.NewRouter(deps)

	slog.Info("Starting archive server", "addr", cfg.ListenAddr, "url", cfg.BaseURL())
	if err := nethttp.ListenAndServe(cfg.ListenAddr, router); err != nil {
		return fmt.Errorf("server failed: %v", err)
	}
	return nil
}
