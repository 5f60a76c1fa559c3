// Package mirror renders archived posts as standalone HTML cards. The same
// card is shown on post pages, rendered for snapshots, and embedded in ZIP
// exports.
package mirror

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"sharkey-archiver/internal/storage"
)

// Renderer builds HTML mirrors of archived posts.
type Renderer struct {
	mediaDir string
	parser   goldmark.Markdown
	template *template.Template
}

// item is one attachment ready for the card template.
type item struct {
	Src       template.URL
	Kind      string
	Alt       string
	Sensitive bool
}

// cardData holds template data for the post card.
type cardData struct {
	Avatar        string
	Name          string
	Handle        string
	CW            string
	Content       template.HTML
	Media         []item
	Screenshot    template.URL
	ReplyCount    int
	RenoteCount   int
	ReactionCount int
	Visibility    string
	Posted        string
	URL           string
}

// NewRenderer creates a renderer. mediaDir is the root of the local media
// tree; attachments stored under it are referenced through /media/ URLs, or
// inlined as data URIs in embedded mode.
func NewRenderer(mediaDir string) *Renderer {
	tmpl := template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Archived post by {{.Handle}}</title>
<style>
  :root{--bg:#0f1117;--card:#1a1d2e;--border:#2d3154;--accent:#7c6ff7;--text:#e2e4ef;--muted:#8b8fa8;--cw:#f59e0b}
  *{box-sizing:border-box;margin:0;padding:0}
  body{background:var(--bg);color:var(--text);font-family:system-ui,sans-serif;padding:2rem 1rem}
  .card{max-width:640px;margin:0 auto;background:var(--card);border:1px solid var(--border);border-radius:16px;overflow:hidden}
  .card-header{padding:1.25rem 1.5rem;border-bottom:1px solid var(--border);display:flex;align-items:center;gap:1rem}
  .avatar{width:48px;height:48px;border-radius:50%;background:var(--border);object-fit:cover}
  .name{font-weight:700}.handle{color:var(--muted);font-size:.85rem}
  .card-body{padding:1.5rem}
  .cw-warning{background:rgba(245,158,11,.15);border:1px solid var(--cw);color:var(--cw);padding:.75rem 1rem;border-radius:8px;margin-bottom:1rem;cursor:pointer}
  .content{line-height:1.7}.hidden{display:none}
  .media-grid{display:grid;grid-template-columns:repeat(auto-fit,minmax(240px,1fr));gap:.75rem;margin-top:1.25rem}
  .media-item{border-radius:10px;overflow:hidden;background:#000}
  .media-item img,.media-item video{width:100%;display:block;max-height:480px;object-fit:cover}
  .media-item.sensitive img,.media-item.sensitive video{filter:blur(20px);cursor:pointer;transition:filter .3s}
  .media-item.sensitive:hover img,.media-item.sensitive:hover video{filter:none}
  figcaption{padding:.4rem .6rem;font-size:.75rem;color:var(--muted)}
  .card-footer{padding:1rem 1.5rem;border-top:1px solid var(--border);font-size:.85rem;color:var(--muted);display:flex;flex-wrap:wrap;gap:.75rem;align-items:center}
  .badge{background:var(--border);padding:.2rem .6rem;border-radius:99px;font-size:.75rem}
  a{color:var(--accent)}
</style>
</head>
<body>
<div class="card">
  <div class="card-header">
    {{if .Avatar}}<img class="avatar" src="{{.Avatar}}" alt="">{{else}}<div class="avatar"></div>{{end}}
    <div><div class="name">{{.Name}}</div><div class="handle">{{.Handle}}</div></div>
    <div style="margin-left:auto"><span class="badge" style="background:rgba(124,111,247,.15);color:#a78bfa;border:1px solid #7c6ff7">Archived</span></div>
  </div>
  <div class="card-body">
    {{if .CW}}<div class="cw-warning" onclick="document.getElementById('pc').classList.toggle('hidden')"><strong>&#9888; Content Warning:</strong> {{.CW}} <em>(click to reveal)</em></div>{{end}}
    <div class="content{{if .CW}} hidden{{end}}" id="pc">{{.Content}}</div>
    {{if .Media}}<div class="media-grid">
      {{range .Media}}<figure class="media-item{{if .Sensitive}} sensitive{{end}}">{{if eq .Kind "image"}}<img src="{{.Src}}" alt="{{.Alt}}" loading="lazy">{{else if eq .Kind "video"}}<video src="{{.Src}}" controls></video>{{else}}<audio src="{{.Src}}" controls></audio>{{end}}<figcaption>{{.Alt}}</figcaption></figure>
      {{end}}
    </div>{{end}}
  </div>
  {{if .Screenshot}}<div style="border-top:1px solid var(--border);padding:1rem 1.5rem"><img src="{{.Screenshot}}" style="width:100%;border-radius:8px" alt="screenshot"></div>{{end}}
  <div class="card-footer">
    <span>&#128172; {{.ReplyCount}}</span>
    <span>&#128257; {{.RenoteCount}}</span>
    <span>&#10024; {{.ReactionCount}}</span>
    <span class="badge">{{.Visibility}}</span>
    <span style="margin-left:auto">Posted: {{.Posted}}</span>
    <a href="{{.URL}}" target="_blank" rel="noopener">Original &#8599;</a>
  </div>
</div>
</body></html>`))

	return &Renderer{
		mediaDir: mediaDir,
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.Linkify,
				extension.Strikethrough,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithHardWraps(),
			),
		),
		template: tmpl,
	}
}

// RenderPost renders the card for a post. In embedded mode, locally stored
// media is inlined as data URIs and the snapshot is referenced by its ZIP
// name so the page works as a single extracted file. Otherwise local media is
// served through /media/ URLs, falling back to the origin URL for files that
// were never downloaded.
func (r *Renderer) RenderPost(post *storage.Post, media []storage.Media, embedded bool) (string, error) {
	data := cardData{
		Avatar:        post.UserAvatar,
		Name:          post.UserName,
		Handle:        post.UserHandle,
		ReplyCount:    post.ReplyCount,
		RenoteCount:   post.RenoteCount,
		ReactionCount: post.ReactionCount,
		Visibility:    post.Visibility,
		Posted:        postedDate(post.CreatedAt),
		URL:           post.URL,
	}
	if data.Name == "" {
		data.Name = post.UserHandle
	}
	if post.CW.Valid {
		data.CW = post.CW.String
	}

	content, err := r.renderContent(post.Content)
	if err != nil {
		return "", err
	}
	data.Content = content

	for _, m := range media {
		kind := mediaKind(m.MimeType)
		if kind == "" {
			continue
		}
		alt := m.AltText
		if alt == "" {
			alt = m.Filename
		}
		data.Media = append(data.Media, item{
			Src:       r.mediaSrc(m, embedded),
			Kind:      kind,
			Alt:       alt,
			Sensitive: m.IsSensitive,
		})
	}

	if post.ScreenshotPath.Valid && fileExists(post.ScreenshotPath.String) {
		if embedded {
			data.Screenshot = "screenshot.png"
		} else {
			data.Screenshot = template.URL("/screenshot/" + post.ID)
		}
	}

	var buf bytes.Buffer
	if err := r.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render card: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) renderContent(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.parser.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("failed to render content: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// mediaSrc picks the source URL for one attachment.
func (r *Renderer) mediaSrc(m storage.Media, embedded bool) template.URL {
	local := m.LocalPath.String
	if m.LocalPath.Valid && local != "" && fileExists(local) {
		if embedded {
			if raw, err := os.ReadFile(local); err == nil {
				return template.URL("data:" + m.MimeType + ";base64," + base64.StdEncoding.EncodeToString(raw))
			}
		} else if rel, err := filepath.Rel(r.mediaDir, local); err == nil && !strings.HasPrefix(rel, "..") {
			return template.URL("/media/" + filepath.ToSlash(rel))
		}
	}
	return safeURL(m.URL)
}

// safeURL passes through http(s) and relative URLs, dropping anything with an
// unexpected scheme.
func safeURL(raw string) template.URL {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme == "" || u.Scheme == "http" || u.Scheme == "https" {
		return template.URL(raw)
	}
	return ""
}

func mediaKind(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	}
	return ""
}

func postedDate(createdAt string) string {
	if len(createdAt) > 10 {
		return createdAt[:10]
	}
	return createdAt
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
