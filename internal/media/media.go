// Package media downloads note attachments into the local media directory.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"sharkey-archiver/internal/metrics"
)

const userAgent = "SharkeyArchiver/1.0"

var bucketPattern = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeBucket maps an archive post id to a directory name safe on every
// filesystem.
func SanitizeBucket(id string) string {
	return bucketPattern.ReplaceAllString(id, "_")
}

// Common attachment types get a fixed extension so stored filenames stay
// stable across platforms.
var extByType = map[string]string{
	"image/jpeg":               ".jpg",
	"image/png":                ".png",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/avif":               ".avif",
	"video/mp4":                ".mp4",
	"video/webm":               ".webm",
	"video/quicktime":          ".mov",
	"audio/mpeg":               ".mp3",
	"audio/ogg":                ".ogg",
	"audio/flac":               ".flac",
	"application/octet-stream": ".bin",
}

// Fetcher downloads remote media files into a directory tree rooted at
// mediaDir, one subdirectory per archived post.
type Fetcher struct {
	mediaDir string
	client   *http.Client
}

// NewFetcher creates a fetcher with a 30 second per-download timeout.
func NewFetcher(mediaDir string) *Fetcher {
	return &Fetcher{
		mediaDir: mediaDir,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads url into the bucket directory, naming the file after fileID
// with an extension derived from the response Content-Type. It returns the
// path of the stored file.
func (f *Fetcher) Fetch(ctx context.Context, url, bucket, fileID string) (string, error) {
	path, err := f.fetch(ctx, url, bucket, fileID)
	if err != nil {
		metrics.MediaDownloadsTotal.WithLabelValues("failed").Inc()
		return "", err
	}
	metrics.MediaDownloadsTotal.WithLabelValues("ok").Inc()
	return path, nil
}

func (f *Fetcher) fetch(ctx context.Context, url, bucket, fileID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download media: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("bad status %d downloading %s", resp.StatusCode, url)
	}

	dest := filepath.Join(f.mediaDir, bucket, fileID+extensionFor(resp.Header.Get("Content-Type")))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close media file: %w", err)
	}
	return dest, nil
}

// extensionFor picks a filename extension for a Content-Type header value.
// Unknown types fall back to ".bin".
func extensionFor(contentType string) string {
	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if ct == "" {
		ct = "application/octet-stream"
	}
	if ext, ok := extByType[ct]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(ct); err == nil && len(exts) > 0 {
		ext := exts[0]
		if ext == ".jpe" || ext == ".jpeg" {
			ext = ".jpg"
		}
		return ext
	}
	return ".bin"
}
