// Package snapshot captures PNG renderings of archived posts with a headless
// browser. The mirror page for a post is registered under a one-shot token
// and served to the browser through the local HTTP server, so media resolves
// through the same /media/ routes the UI uses.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sharkey-archiver/internal/contextutil"
	"sharkey-archiver/internal/media"
	"sharkey-archiver/internal/metrics"
	"sharkey-archiver/internal/mirror"
	"sharkey-archiver/internal/storage"
)

// ErrUnavailable is returned when no browser renderer is bound, either
// because snapshots are disabled or because no browser binary was found.
var ErrUnavailable = errors.New("snapshot renderer unavailable")

// Renderer loads a URL in a browser and returns a PNG of the page.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// RetakeResult tallies a backfill run over posts without snapshots.
type RetakeResult struct {
	Done   int `json:"done"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// Service renders and stores post snapshots.
type Service struct {
	store    storage.PostStore
	renderer Renderer // nil when capturing is unavailable
	mirror   *mirror.Renderer
	registry *Registry
	mediaDir string
	baseURL  string
}

// NewService creates a snapshot service. renderer may be nil, in which case
// every capture reports ErrUnavailable.
func NewService(store storage.PostStore, renderer Renderer, mirrorRenderer *mirror.Renderer, registry *Registry, mediaDir, baseURL string) *Service {
	return &Service{
		store:    store,
		renderer: renderer,
		mirror:   mirrorRenderer,
		registry: registry,
		mediaDir: mediaDir,
		baseURL:  baseURL,
	}
}

// Available reports whether captures can run.
func (s *Service) Available() bool {
	return s.renderer != nil
}

// Capture renders the post's mirror page in the browser and stores the PNG
// next to the post's media, recording its path on the post row.
func (s *Service) Capture(ctx context.Context, postID string) error {
	if s.renderer == nil {
		return ErrUnavailable
	}
	if err := s.capture(ctx, postID); err != nil {
		metrics.SnapshotCapturesTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.SnapshotCapturesTotal.WithLabelValues("ok").Inc()
	return nil
}

func (s *Service) capture(ctx context.Context, postID string) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to load post: %w", err)
	}
	attachments, err := s.store.ListMedia(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to load media: %w", err)
	}

	html, err := s.mirror.RenderPost(post, attachments, false)
	if err != nil {
		return err
	}
	token := s.registry.Put(html)
	defer s.registry.Remove(token)

	png, err := s.renderer.Render(ctx, s.baseURL+"/render/"+token)
	if err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}

	dest := filepath.Join(s.mediaDir, media.SanitizeBucket(postID), "screenshot.png")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	if err := os.WriteFile(dest, png, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := s.store.UpdateScreenshotPath(ctx, postID, dest); err != nil {
		return fmt.Errorf("failed to record snapshot path: %w", err)
	}
	return nil
}

// RetakeMissing captures snapshots for every post that has none. Individual
// failures are counted and logged without stopping the run. progress, when
// non-nil, receives the running tallies after each post.
func (s *Service) RetakeMissing(ctx context.Context, progress func(done, failed, total int)) (*RetakeResult, error) {
	if s.renderer == nil {
		return nil, ErrUnavailable
	}
	logger := contextutil.LoggerFromContext(ctx)

	ids, err := s.store.ListPostsMissingScreenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts without snapshots: %w", err)
	}

	result := &RetakeResult{Total: len(ids)}
	for _, id := range ids {
		if err := s.Capture(ctx, id); err != nil {
			result.Failed++
			logger.WarnContext(ctx, "snapshot retake failed", "post_id", id, "error", err)
		} else {
			result.Done++
		}
		if progress != nil {
			progress(result.Done, result.Failed, result.Total)
		}
	}

	logger.InfoContext(ctx, "snapshot retake finished",
		"done", result.Done,
		"failed", result.Failed,
		"total", result.Total,
	)
	return result, nil
}
