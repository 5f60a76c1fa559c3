package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_post_store.go -package=mocks sharkey-archiver/internal/storage PostStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// PostStore defines the interface for archived post storage operations.
type PostStore interface {
	// HasPost reports whether a post with the given archive id exists.
	HasPost(ctx context.Context, id string) (bool, error)
	// InsertPost stores a new post. It returns false if a post with the same
	// id already exists, in which case nothing is written.
	InsertPost(ctx context.Context, post *Post) (bool, error)
	// InsertMedia stores one attachment row. Duplicate ids are ignored.
	InsertMedia(ctx context.Context, media *Media) error
	// UpdateScreenshotPath records where a post's snapshot PNG was written.
	UpdateScreenshotPath(ctx context.Context, postID, path string) error
	// GetPost gets a post by archive id. Returns nil and ErrNotFound if not found.
	GetPost(ctx context.Context, id string) (*Post, error)
	// ListMedia returns the attachments of a post in insertion order.
	ListMedia(ctx context.Context, postID string) ([]Media, error)
	// ListPosts returns all archived posts, newest archive first.
	ListPosts(ctx context.Context) ([]PostSummary, error)
	// ListPostsMissingScreenshot returns ids of posts without a snapshot.
	ListPostsMissingScreenshot(ctx context.Context) ([]string, error)
	// CountPostsMissingScreenshot counts posts without a snapshot.
	CountPostsMissingScreenshot(ctx context.Context) (int, error)
}

// PostRepo provides methods for archived post operations.
// It implements the PostStore interface.
type PostRepo struct {
	db *sql.DB
}

// NewPostRepo creates a new PostRepo.
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

// HasPost reports whether a post with the given archive id exists.
func (r *PostRepo) HasPost(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM posts WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query post: %w", err)
	}
	return true, nil
}

// InsertPost stores a new post. It returns false if a post with the same id
// already exists, so concurrent jobs archiving the same note stay idempotent.
func (r *PostRepo) InsertPost(ctx context.Context, post *Post) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO posts
			(id, instance, note_id, url, archived_at, user_name, user_handle,
			 user_avatar, content, cw, created_at, reply_count, renote_count,
			 reaction_count, visibility, raw_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Instance, post.NoteID, post.URL, post.ArchivedAt,
		post.UserName, post.UserHandle, post.UserAvatar, post.Content, post.CW,
		post.CreatedAt, post.ReplyCount, post.RenoteCount, post.ReactionCount,
		post.Visibility, post.RawJSON,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// InsertMedia stores one attachment row. Duplicate ids are ignored.
func (r *PostRepo) InsertMedia(ctx context.Context, media *Media) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO media
			(id, post_id, filename, url, mime_type, local_path,
			 width, height, is_sensitive, alt_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		media.ID, media.PostID, media.Filename, media.URL, media.MimeType,
		media.LocalPath, media.Width, media.Height, media.IsSensitive, media.AltText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert media: %w", err)
	}
	return nil
}

// UpdateScreenshotPath records where a post's snapshot PNG was written.
func (r *PostRepo) UpdateScreenshotPath(ctx context.Context, postID, path string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE posts SET screenshot_path = ? WHERE id = ?", path, postID)
	if err != nil {
		return fmt.Errorf("failed to update screenshot path: %w", err)
	}
	return nil
}

// GetPost gets a post by archive id. Returns nil and ErrNotFound if not found.
func (r *PostRepo) GetPost(ctx context.Context, id string) (*Post, error) {
	var post Post
	err := r.db.QueryRowContext(ctx,
		`SELECT id, instance, note_id, url, archived_at, user_name, user_handle,
			user_avatar, content, cw, created_at, reply_count, renote_count,
			reaction_count, visibility, raw_json, screenshot_path
		 FROM posts WHERE id = ?`, id,
	).Scan(
		&post.ID, &post.Instance, &post.NoteID, &post.URL, &post.ArchivedAt,
		&post.UserName, &post.UserHandle, &post.UserAvatar, &post.Content,
		&post.CW, &post.CreatedAt, &post.ReplyCount, &post.RenoteCount,
		&post.ReactionCount, &post.Visibility, &post.RawJSON, &post.ScreenshotPath,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	return &post, nil
}

// ListMedia returns the attachments of a post in insertion order.
func (r *PostRepo) ListMedia(ctx context.Context, postID string) ([]Media, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, post_id, filename, url, mime_type, local_path,
			width, height, is_sensitive, alt_text
		 FROM media WHERE post_id = ? ORDER BY rowid`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []Media
	for rows.Next() {
		var m Media
		if err := rows.Scan(
			&m.ID, &m.PostID, &m.Filename, &m.URL, &m.MimeType, &m.LocalPath,
			&m.Width, &m.Height, &m.IsSensitive, &m.AltText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read media rows: %w", err)
	}
	return items, nil
}

// ListPosts returns all archived posts, newest archive first.
func (r *PostRepo) ListPosts(ctx context.Context) ([]PostSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.url, p.user_name, p.user_handle, p.user_avatar,
			p.content, p.cw, p.created_at, p.archived_at, p.reply_count,
			p.renote_count, p.reaction_count, p.visibility, p.screenshot_path,
			COUNT(m.id) AS media_count
		 FROM posts p
		 LEFT JOIN media m ON m.post_id = p.id
		 GROUP BY p.id
		 ORDER BY p.archived_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []PostSummary
	for rows.Next() {
		var p PostSummary
		if err := rows.Scan(
			&p.ID, &p.URL, &p.UserName, &p.UserHandle, &p.UserAvatar,
			&p.Content, &p.CW, &p.CreatedAt, &p.ArchivedAt, &p.ReplyCount,
			&p.RenoteCount, &p.ReactionCount, &p.Visibility, &p.ScreenshotPath,
			&p.MediaCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read post rows: %w", err)
	}
	return items, nil
}

// ListPostsMissingScreenshot returns ids of posts without a snapshot.
func (r *PostRepo) ListPostsMissingScreenshot(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM posts WHERE screenshot_path IS NULL OR screenshot_path = ''")
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read post rows: %w", err)
	}
	return ids, nil
}

// CountPostsMissingScreenshot counts posts without a snapshot.
func (r *PostRepo) CountPostsMissingScreenshot(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE screenshot_path IS NULL OR screenshot_path = ''").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}
