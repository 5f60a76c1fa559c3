package mirror

import (
	"database/sql"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sharkey-archiver/internal/storage"
)

func samplePost() *storage.Post {
	return &storage.Post{
		ID:            "example.social/note1",
		Instance:      "https://example.social",
		NoteID:        "note1",
		URL:           "https://example.social/notes/note1",
		UserName:      "Alice",
		UserHandle:    "@alice",
		UserAvatar:    "https://example.social/avatar.png",
		Content:       "Hello world",
		CreatedAt:     "2024-03-01T12:00:00.000Z",
		ReplyCount:    3,
		RenoteCount:   1,
		ReactionCount: 7,
		Visibility:    "public",
	}
}

func TestRenderPost_Basic(t *testing.T) {
	r := NewRenderer(t.TempDir())

	html, err := r.RenderPost(samplePost(), nil, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}

	for _, want := range []string{
		"<title>Archived post by @alice</title>",
		`<div class="name">Alice</div>`,
		`<div class="handle">@alice</div>`,
		"<p>Hello world</p>",
		`<span class="badge">public</span>`,
		"Posted: 2024-03-01",
		`href="https://example.social/notes/note1"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
	if strings.Contains(html, "cw-warning") {
		t.Error("rendered HTML has a content warning for a post without one")
	}
	if strings.Contains(html, `class="content hidden"`) {
		t.Error("content should not be hidden without a content warning")
	}
}

func TestRenderPost_NameFallsBackToHandle(t *testing.T) {
	r := NewRenderer(t.TempDir())
	post := samplePost()
	post.UserName = ""

	html, err := r.RenderPost(post, nil, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if !strings.Contains(html, `<div class="name">@alice</div>`) {
		t.Error("display name should fall back to the handle")
	}
}

func TestRenderPost_ContentWarning(t *testing.T) {
	r := NewRenderer(t.TempDir())
	post := samplePost()
	post.CW = sql.NullString{String: "spoilers", Valid: true}

	html, err := r.RenderPost(post, nil, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if !strings.Contains(html, "Content Warning:</strong> spoilers") {
		t.Error("content warning text not rendered")
	}
	if !strings.Contains(html, `class="content hidden"`) {
		t.Error("content should start hidden behind the warning")
	}
}

func TestRenderPost_MarkdownContent(t *testing.T) {
	r := NewRenderer(t.TempDir())
	post := samplePost()
	post.Content = "line one\nsee https://example.com\n**bold**"

	html, err := r.RenderPost(post, nil, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if !strings.Contains(html, "<br>") {
		t.Error("single newlines should render as line breaks")
	}
	if !strings.Contains(html, `<a href="https://example.com">`) {
		t.Error("bare URLs should be linkified")
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Error("markdown emphasis should render")
	}
}

func TestRenderPost_EscapesRawHTML(t *testing.T) {
	r := NewRenderer(t.TempDir())
	post := samplePost()
	post.Content = `<script>alert("x")</script>`

	html, err := r.RenderPost(post, nil, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("raw HTML in post content must be escaped")
	}
}

func TestRenderPost_LocalMedia(t *testing.T) {
	mediaDir := t.TempDir()
	bucket := filepath.Join(mediaDir, "example_social_note1")
	if err := os.MkdirAll(bucket, 0o755); err != nil {
		t.Fatal(err)
	}
	local := filepath.Join(bucket, "f1.jpg")
	if err := os.WriteFile(local, []byte("jpeg bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(mediaDir)
	media := []storage.Media{{
		ID:          "example.social/note1/f1",
		PostID:      "example.social/note1",
		Filename:    "cat.jpg",
		URL:         "https://files.example.social/f1.jpg",
		MimeType:    "image/jpeg",
		LocalPath:   sql.NullString{String: local, Valid: true},
		IsSensitive: true,
		AltText:     "a cat",
	}}

	html, err := r.RenderPost(samplePost(), media, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if !strings.Contains(html, `src="/media/example_social_note1/f1.jpg"`) {
		t.Error("local media should be served through /media/")
	}
	if !strings.Contains(html, "media-item sensitive") {
		t.Error("sensitive media should carry the sensitive class")
	}
	if !strings.Contains(html, "<figcaption>a cat</figcaption>") {
		t.Error("alt text should render as the caption")
	}
}

func TestRenderPost_EmbeddedMediaUsesDataURI(t *testing.T) {
	mediaDir := t.TempDir()
	local := filepath.Join(mediaDir, "b", "f1.jpg")
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		t.Fatal(err)
	}
	content := []byte("jpeg bytes")
	if err := os.WriteFile(local, content, 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(mediaDir)
	media := []storage.Media{{
		Filename:  "cat.jpg",
		URL:       "https://files.example.social/f1.jpg",
		MimeType:  "image/jpeg",
		LocalPath: sql.NullString{String: local, Valid: true},
	}}

	html, err := r.RenderPost(samplePost(), media, true)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	want := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(content)
	if !strings.Contains(html, want) {
		t.Error("embedded mode should inline local media as a data URI")
	}
}

func TestRenderPost_MissingLocalFileFallsBackToOrigin(t *testing.T) {
	r := NewRenderer(t.TempDir())
	media := []storage.Media{{
		Filename: "cat.jpg",
		URL:      "https://files.example.social/f1.jpg",
		MimeType: "image/jpeg",
	}}

	html, err := r.RenderPost(samplePost(), media, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if !strings.Contains(html, `src="https://files.example.social/f1.jpg"`) {
		t.Error("media without a local copy should point at the origin URL")
	}
}

func TestRenderPost_MediaKinds(t *testing.T) {
	r := NewRenderer(t.TempDir())
	media := []storage.Media{
		{Filename: "a.jpg", URL: "https://x/a.jpg", MimeType: "image/jpeg"},
		{Filename: "b.mp4", URL: "https://x/b.mp4", MimeType: "video/mp4"},
		{Filename: "c.mp3", URL: "https://x/c.mp3", MimeType: "audio/mpeg"},
		{Filename: "d.pdf", URL: "https://x/d.pdf", MimeType: "application/pdf"},
	}

	html, err := r.RenderPost(samplePost(), media, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if !strings.Contains(html, `<img src="https://x/a.jpg"`) {
		t.Error("image attachment missing")
	}
	if !strings.Contains(html, `<video src="https://x/b.mp4"`) {
		t.Error("video attachment missing")
	}
	if !strings.Contains(html, `<audio src="https://x/c.mp3"`) {
		t.Error("audio attachment missing")
	}
	if strings.Contains(html, "d.pdf") {
		t.Error("unsupported attachment types should be skipped")
	}
}

func TestRenderPost_Screenshot(t *testing.T) {
	mediaDir := t.TempDir()
	shot := filepath.Join(mediaDir, "b", "screenshot.png")
	if err := os.MkdirAll(filepath.Dir(shot), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(shot, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(mediaDir)
	post := samplePost()
	post.ScreenshotPath = sql.NullString{String: shot, Valid: true}

	html, err := r.RenderPost(post, nil, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if !strings.Contains(html, `src="/screenshot/example.social/note1"`) {
		t.Error("screenshot should be served through /screenshot/")
	}

	html, err = r.RenderPost(post, nil, true)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if !strings.Contains(html, `src="screenshot.png"`) {
		t.Error("embedded mode should reference the screenshot by its export name")
	}

	post.ScreenshotPath = sql.NullString{String: filepath.Join(mediaDir, "gone.png"), Valid: true}
	html, err = r.RenderPost(post, nil, false)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	if strings.Contains(html, "/screenshot/") {
		t.Error("a missing screenshot file should not be referenced")
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "https", raw: "https://example.com/x.jpg", want: "https://example.com/x.jpg"},
		{name: "relative", raw: "/media/b/x.jpg", want: "/media/b/x.jpg"},
		{name: "javascript", raw: "javascript:alert(1)", want: ""},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(safeURL(tt.raw)); got != tt.want {
				t.Errorf("safeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
