package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"sharkey-archiver/internal/storage/migrations"
)

// newTestRepo opens a fresh migrated database in a temp directory.
func newTestRepo(t *testing.T) *PostRepo {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := migrations.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	return NewPostRepo(db)
}

func samplePost(id string) *Post {
	return &Post{
		ID:            id,
		Instance:      "https://example.social",
		NoteID:        "n1",
		URL:           "https://example.social/notes/n1",
		ArchivedAt:    "2025-06-01T12:00:00Z",
		UserName:      "Alice",
		UserHandle:    "@alice",
		UserAvatar:    "https://cdn.example.social/a.png",
		Content:       "hello world",
		CreatedAt:     "2025-05-31T08:00:00.000Z",
		ReplyCount:    2,
		RenoteCount:   1,
		ReactionCount: 4,
		Visibility:    "public",
		RawJSON:       `{"id":"n1"}`,
	}
}

func TestNew_ForeignKeysOn(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Error("New() should enable foreign keys")
	}
}

func TestNewPostRepo(t *testing.T) {
	repo := newTestRepo(t)
	if repo == nil {
		t.Fatal("NewPostRepo() returned nil")
	}
}

func TestPostRepo_InsertPost_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inserted, err := repo.InsertPost(ctx, samplePost("example.social/n1"))
	if err != nil {
		t.Fatalf("InsertPost() error = %v", err)
	}
	if !inserted {
		t.Error("InsertPost() = false for new post, want true")
	}

	inserted, err = repo.InsertPost(ctx, samplePost("example.social/n1"))
	if err != nil {
		t.Fatalf("InsertPost() second call error = %v", err)
	}
	if inserted {
		t.Error("InsertPost() = true for duplicate post, want false")
	}

	posts, err := repo.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("ListPosts() count = %d after double insert, want 1", len(posts))
	}
}

func TestPostRepo_HasPost(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	exists, err := repo.HasPost(ctx, "example.social/n1")
	if err != nil {
		t.Fatalf("HasPost() error = %v", err)
	}
	if exists {
		t.Error("HasPost() = true for empty database, want false")
	}

	if _, err := repo.InsertPost(ctx, samplePost("example.social/n1")); err != nil {
		t.Fatalf("InsertPost() error = %v", err)
	}

	exists, err = repo.HasPost(ctx, "example.social/n1")
	if err != nil {
		t.Fatalf("HasPost() error = %v", err)
	}
	if !exists {
		t.Error("HasPost() = false for stored post, want true")
	}
}

func TestPostRepo_GetPost(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	post := samplePost("example.social/n1")
	post.CW = sql.NullString{String: "spoilers", Valid: true}
	if _, err := repo.InsertPost(ctx, post); err != nil {
		t.Fatalf("InsertPost() error = %v", err)
	}

	got, err := repo.GetPost(ctx, "example.social/n1")
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if got.UserName != "Alice" || got.Content != "hello world" || got.ReactionCount != 4 {
		t.Errorf("GetPost() = %+v, fields do not match inserted post", got)
	}
	if !got.CW.Valid || got.CW.String != "spoilers" {
		t.Errorf("GetPost() cw = %+v, want spoilers", got.CW)
	}
	if got.ScreenshotPath.Valid {
		t.Errorf("GetPost() screenshot = %+v, want NULL before capture", got.ScreenshotPath)
	}

	_, err = repo.GetPost(ctx, "example.social/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost() error = %v, want ErrNotFound", err)
	}
}

func TestPostRepo_InsertMedia(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertPost(ctx, samplePost("example.social/n1")); err != nil {
		t.Fatalf("InsertPost() error = %v", err)
	}

	m := &Media{
		ID:        "example.social/n1/f1",
		PostID:    "example.social/n1",
		Filename:  "cat.jpg",
		URL:       "https://cdn.example.social/f1.jpg",
		MimeType:  "image/jpeg",
		LocalPath: sql.NullString{String: "archive_data/media/example_social_n1/f1.jpg", Valid: true},
		Width:     sql.NullInt64{Int64: 800, Valid: true},
		Height:    sql.NullInt64{Int64: 600, Valid: true},
		AltText:   "a cat",
	}
	if err := repo.InsertMedia(ctx, m); err != nil {
		t.Fatalf("InsertMedia() error = %v", err)
	}
	// Same id again is a no-op, not an error.
	if err := repo.InsertMedia(ctx, m); err != nil {
		t.Fatalf("InsertMedia() duplicate error = %v", err)
	}

	items, err := repo.ListMedia(ctx, "example.social/n1")
	if err != nil {
		t.Fatalf("ListMedia() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ListMedia() count = %d, want 1", len(items))
	}
	if items[0].Filename != "cat.jpg" || !items[0].LocalPath.Valid {
		t.Errorf("ListMedia() item = %+v", items[0])
	}
}

func TestPostRepo_InsertMedia_FailedDownloadKeepsNullPath(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertPost(ctx, samplePost("example.social/n1")); err != nil {
		t.Fatalf("InsertPost() error = %v", err)
	}

	m := &Media{
		ID:       "example.social/n1/f1",
		PostID:   "example.social/n1",
		Filename: "gone.jpg",
		URL:      "https://cdn.example.social/gone.jpg",
		MimeType: "image/jpeg",
	}
	if err := repo.InsertMedia(ctx, m); err != nil {
		t.Fatalf("InsertMedia() error = %v", err)
	}

	items, err := repo.ListMedia(ctx, "example.social/n1")
	if err != nil {
		t.Fatalf("ListMedia() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ListMedia() count = %d, want 1", len(items))
	}
	if items[0].LocalPath.Valid {
		t.Errorf("ListMedia() local path = %+v, want NULL", items[0].LocalPath)
	}
	if items[0].Width.Valid || items[0].Height.Valid {
		t.Errorf("ListMedia() dimensions = %+v/%+v, want NULL", items[0].Width, items[0].Height)
	}
}

func TestPostRepo_UpdateScreenshotPath(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertPost(ctx, samplePost("example.social/n1")); err != nil {
		t.Fatalf("InsertPost() error = %v", err)
	}

	path := "archive_data/media/example_social_n1/screenshot.png"
	if err := repo.UpdateScreenshotPath(ctx, "example.social/n1", path); err != nil {
		t.Fatalf("UpdateScreenshotPath() error = %v", err)
	}

	got, err := repo.GetPost(ctx, "example.social/n1")
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if !got.ScreenshotPath.Valid || got.ScreenshotPath.String != path {
		t.Errorf("GetPost() screenshot = %+v, want %s", got.ScreenshotPath, path)
	}
}

func TestPostRepo_ListPosts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := samplePost("example.social/n1")
	older.ArchivedAt = "2025-06-01T12:00:00Z"
	newer := samplePost("example.social/n2")
	newer.NoteID = "n2"
	newer.ArchivedAt = "2025-06-02T12:00:00Z"

	for _, p := range []*Post{older, newer} {
		if _, err := repo.InsertPost(ctx, p); err != nil {
			t.Fatalf("InsertPost() error = %v", err)
		}
	}
	for i, id := range []string{"f1", "f2"} {
		m := &Media{
			ID:       "example.social/n1/" + id,
			PostID:   "example.social/n1",
			Filename: id,
			URL:      "https://cdn.example.social/" + id,
		}
		if err := repo.InsertMedia(ctx, m); err != nil {
			t.Fatalf("InsertMedia() %d error = %v", i, err)
		}
	}

	posts, err := repo.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("ListPosts() count = %d, want 2", len(posts))
	}
	if posts[0].ID != "example.social/n2" {
		t.Errorf("ListPosts() first = %s, want newest archive first", posts[0].ID)
	}
	if posts[1].MediaCount != 2 {
		t.Errorf("ListPosts() media count = %d, want 2", posts[1].MediaCount)
	}
	if posts[0].MediaCount != 0 {
		t.Errorf("ListPosts() media count = %d for post without media, want 0", posts[0].MediaCount)
	}
}

func TestPostRepo_MissingScreenshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ids := []string{"example.social/n1", "example.social/n2", "example.social/n3"}
	for i, id := range ids {
		p := samplePost(id)
		p.NoteID = id
		if _, err := repo.InsertPost(ctx, p); err != nil {
			t.Fatalf("InsertPost() %d error = %v", i, err)
		}
	}

	// n1 keeps NULL, n2 gets an empty string, n3 has a snapshot.
	if err := repo.UpdateScreenshotPath(ctx, ids[1], ""); err != nil {
		t.Fatalf("UpdateScreenshotPath() error = %v", err)
	}
	if err := repo.UpdateScreenshotPath(ctx, ids[2], "media/x/screenshot.png"); err != nil {
		t.Fatalf("UpdateScreenshotPath() error = %v", err)
	}

	missing, err := repo.ListPostsMissingScreenshot(ctx)
	if err != nil {
		t.Fatalf("ListPostsMissingScreenshot() error = %v", err)
	}
	if len(missing) != 2 {
		t.Errorf("ListPostsMissingScreenshot() count = %d, want 2", len(missing))
	}

	n, err := repo.CountPostsMissingScreenshot(ctx)
	if err != nil {
		t.Fatalf("CountPostsMissingScreenshot() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountPostsMissingScreenshot() = %d, want 2", n)
	}
}
