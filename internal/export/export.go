// Package export builds downloadable ZIP bundles of archived posts.
package export

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sharkey-archiver/internal/storage"
)

// postMeta mirrors the stored post row for the bundle's post.json, with the
// verbatim remote payload decoded inline instead of double-encoded.
type postMeta struct {
	ID             string          `json:"id"`
	Instance       string          `json:"instance"`
	NoteID         string          `json:"note_id"`
	URL            string          `json:"url"`
	ArchivedAt     string          `json:"archived_at"`
	UserName       string          `json:"user_name"`
	UserHandle     string          `json:"user_handle"`
	UserAvatar     string          `json:"user_avatar"`
	Content        string          `json:"content"`
	CW             *string         `json:"cw"`
	CreatedAt      string          `json:"created_at"`
	ReplyCount     int             `json:"reply_count"`
	RenoteCount    int             `json:"renote_count"`
	ReactionCount  int             `json:"reaction_count"`
	Visibility     string          `json:"visibility"`
	RawJSON        json.RawMessage `json:"raw_json"`
	ScreenshotPath *string         `json:"screenshot_path"`
}

// BuildZip bundles a post into a self-contained ZIP: post.json metadata,
// post.html with media inlined, every downloaded media file and the snapshot
// PNG when present. html must be the embedded mirror page.
func BuildZip(post *storage.Post, media []storage.Media, html string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	meta, err := json.MarshalIndent(buildMeta(post), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode post metadata: %w", err)
	}
	if err := writeEntry(zw, "post.json", meta); err != nil {
		return nil, err
	}
	if err := writeEntry(zw, "post.html", []byte(html)); err != nil {
		return nil, err
	}

	for _, m := range media {
		if !m.LocalPath.Valid || m.LocalPath.String == "" {
			continue
		}
		raw, err := os.ReadFile(m.LocalPath.String)
		if err != nil {
			continue
		}
		if err := writeEntry(zw, "media/"+filepath.Base(m.LocalPath.String), raw); err != nil {
			return nil, err
		}
	}

	if post.ScreenshotPath.Valid && post.ScreenshotPath.String != "" {
		if raw, err := os.ReadFile(post.ScreenshotPath.String); err == nil {
			if err := writeEntry(zw, "screenshot.png", raw); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

func buildMeta(post *storage.Post) postMeta {
	raw := json.RawMessage("{}")
	if post.RawJSON != "" && json.Valid([]byte(post.RawJSON)) {
		raw = json.RawMessage(post.RawJSON)
	}
	return postMeta{
		ID:             post.ID,
		Instance:       post.Instance,
		NoteID:         post.NoteID,
		URL:            post.URL,
		ArchivedAt:     post.ArchivedAt,
		UserName:       post.UserName,
		UserHandle:     post.UserHandle,
		UserAvatar:     post.UserAvatar,
		Content:        post.Content,
		CW:             nullable(post.CW),
		CreatedAt:      post.CreatedAt,
		ReplyCount:     post.ReplyCount,
		RenoteCount:    post.RenoteCount,
		ReactionCount:  post.ReactionCount,
		Visibility:     post.Visibility,
		RawJSON:        raw,
		ScreenshotPath: nullable(post.ScreenshotPath),
	}
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s to zip: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s to zip: %w", name, err)
	}
	return nil
}
