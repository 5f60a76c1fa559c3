// Package archive fetches posts from remote instances and stores them locally
// together with their media and a rendered snapshot.
package archive

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sharkey-archiver/internal/contextutil"
	"sharkey-archiver/internal/media"
	"sharkey-archiver/internal/metrics"
	"sharkey-archiver/internal/misskey"
	"sharkey-archiver/internal/snapshot"
	"sharkey-archiver/internal/storage"
)

// PageDelay is the pause between timeline pages, to be polite to the instance.
const PageDelay = time.Second

// RemoteAPI is the slice of the instance API the pipeline uses.
type RemoteAPI interface {
	LookupUser(ctx context.Context, instance, username string) (*misskey.User, error)
	FetchNote(ctx context.Context, instance, noteID string) (*misskey.Note, error)
	FetchUserNotes(ctx context.Context, instance, userID string, limit int, untilID string) ([]misskey.Note, error)
}

// MediaFetcher downloads one attachment and returns its stored path.
type MediaFetcher interface {
	Fetch(ctx context.Context, url, bucket, fileID string) (string, error)
}

// Snapshotter captures a rendered snapshot of a stored post.
type Snapshotter interface {
	Capture(ctx context.Context, postID string) error
}

// NoteResult is the outcome of archiving a single post.
type NoteResult struct {
	Status string `json:"status"`
	PostID string `json:"post_id"`
	URL    string `json:"url,omitempty"`
}

// UserResult summarizes a completed user archive run.
type UserResult struct {
	Status   string `json:"status"`
	User     string `json:"user"`
	Instance string `json:"instance"`
	Archived int    `json:"archived"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
}

// ProgressFunc receives running tallies after each page: processed is
// archived+skipped, fetched is the number of raw notes seen so far.
type ProgressFunc func(processed, fetched int)

// Pipeline orchestrates fetching, storing and snapshotting posts.
type Pipeline struct {
	client    RemoteAPI
	store     storage.PostStore
	media     MediaFetcher
	snapshots Snapshotter // nil when snapshots are disabled
	pageDelay time.Duration
}

// NewPipeline creates a new archive pipeline. snapshots may be nil.
func NewPipeline(client RemoteAPI, store storage.PostStore, fetcher MediaFetcher, snapshots Snapshotter) *Pipeline {
	return &Pipeline{
		client:    client,
		store:     store,
		media:     fetcher,
		snapshots: snapshots,
		pageDelay: PageDelay,
	}
}

// ArchiveNote fetches and stores one post. Archiving a post that is already
// stored reports already_archived and changes nothing.
func (p *Pipeline) ArchiveNote(ctx context.Context, instance, noteID string) (*NoteResult, error) {
	note, err := p.client.FetchNote(ctx, instance, noteID)
	if err != nil {
		return nil, err
	}

	storedID, stored, err := p.storeNote(ctx, instance, note)
	if err != nil {
		return nil, err
	}
	if !stored {
		return &NoteResult{Status: "already_archived", PostID: archiveID(instance, noteID)}, nil
	}
	return &NoteResult{
		Status: "archived",
		PostID: storedID,
		URL:    strings.TrimRight(instance, "/") + "/notes/" + noteID,
	}, nil
}

// ArchiveUser walks a user's timeline newest-first and stores every post not
// yet archived, up to maxPosts raw notes. Pagination uses the last note id of
// each page as the untilId cursor for the next one.
func (p *Pipeline) ArchiveUser(ctx context.Context, instance, username string, maxPosts int, progress ProgressFunc) (*UserResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	user, err := p.client.LookupUser(ctx, instance, username)
	if err != nil {
		return nil, err
	}

	var archived, skipped, fetched int
	untilID := ""

	for fetched < maxPosts {
		limit := misskey.PageSize
		if rest := maxPosts - fetched; rest < limit {
			limit = rest
		}

		batch, err := p.client.FetchUserNotes(ctx, instance, user.ID, limit, untilID)
		if err != nil {
			// Statement timeouts on busy instances deserve advice, not a raw 500.
			if misskey.IsOverloaded(err) {
				return nil, fmt.Errorf(
					"The instance returned a server error while fetching posts. "+
						"This usually means the server is under load. "+
						"Try again in a few minutes, or reduce Max Posts. (%s)",
					truncate(err.Error(), 120))
			}
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			_, stored, err := p.storeNote(ctx, instance, &batch[i])
			if err != nil {
				return nil, err
			}
			if stored {
				archived++
			} else {
				skipped++
			}
		}

		fetched += len(batch)
		untilID = batch[len(batch)-1].ID
		if progress != nil {
			progress(archived+skipped, fetched)
		}

		// A short page means the timeline is exhausted.
		if len(batch) < misskey.PageSize {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.pageDelay):
		}
	}

	logger.InfoContext(ctx, "user archive completed",
		"user", username, "instance", instance,
		"archived", archived, "skipped", skipped, "total", fetched)

	return &UserResult{
		Status:   "done",
		User:     username,
		Instance: instance,
		Archived: archived,
		Skipped:  skipped,
		Total:    fetched,
	}, nil
}

// storeNote stores one note with its attachments and captures a snapshot.
// It returns false without error when the note is already archived or carries
// no id. Media download failures leave a NULL local path but never fail the
// post.
func (p *Pipeline) storeNote(ctx context.Context, instance string, note *misskey.Note) (string, bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if note.ID == "" {
		metrics.PostsSkipped.Inc()
		return "", false, nil
	}

	postID := archiveID(instance, note.ID)

	exists, err := p.store.HasPost(ctx, postID)
	if err != nil {
		return "", false, err
	}
	if exists {
		metrics.PostsSkipped.Inc()
		return "", false, nil
	}

	inserted, err := p.store.InsertPost(ctx, buildPost(postID, instance, note))
	if err != nil {
		return "", false, err
	}
	if !inserted {
		// Another job stored it between the existence check and the insert.
		metrics.PostsSkipped.Inc()
		return "", false, nil
	}
	metrics.PostsArchived.Inc()

	bucket := media.SanitizeBucket(postID)
	for _, f := range note.Files {
		fid := f.ID
		if fid == "" {
			fid = assetID(f.URL)
		}

		var localPath sql.NullString
		if f.URL != "" {
			path, err := p.media.Fetch(ctx, f.URL, bucket, fid)
			if err != nil {
				logger.WarnContext(ctx, "media download failed", "url", f.URL, "error", err)
			} else {
				localPath = sql.NullString{String: path, Valid: true}
			}
		}

		name := f.Name
		if name == "" {
			name = fid
		}
		m := &storage.Media{
			ID:          postID + "/" + fid,
			PostID:      postID,
			Filename:    name,
			URL:         f.URL,
			MimeType:    f.Type,
			LocalPath:   localPath,
			Width:       nullInt(f.Properties.Width),
			Height:      nullInt(f.Properties.Height),
			IsSensitive: f.IsSensitive,
			AltText:     f.Comment,
		}
		if err := p.store.InsertMedia(ctx, m); err != nil {
			return "", false, err
		}
	}

	if p.snapshots != nil {
		if err := p.snapshots.Capture(ctx, postID); err != nil {
			if errors.Is(err, snapshot.ErrUnavailable) {
				logger.DebugContext(ctx, "snapshot renderer unavailable", "post_id", postID)
			} else {
				logger.WarnContext(ctx, "snapshot capture failed", "post_id", postID, "error", err)
			}
		}
	}

	return postID, true, nil
}

// archiveID builds the archive-wide post id "<instance host>/<note id>".
func archiveID(instance, noteID string) string {
	host := ""
	if u, err := url.Parse(instance); err == nil {
		host = u.Host
	}
	return host + "/" + noteID
}

// assetID derives a stable file id for attachments that carry none.
func assetID(fileURL string) string {
	sum := md5.Sum([]byte(fileURL))
	return hex.EncodeToString(sum[:])[:10]
}

func buildPost(postID, instance string, note *misskey.Note) *storage.Post {
	userName := note.User.Name
	if userName == "" {
		userName = note.User.Username
	}
	handle := "@" + note.User.Username
	if note.User.Host != "" {
		handle += "@" + note.User.Host
	}

	var cw sql.NullString
	if note.CW != nil {
		cw = sql.NullString{String: *note.CW, Valid: true}
	}

	visibility := note.Visibility
	if visibility == "" {
		visibility = "public"
	}

	raw := note.Raw
	if len(raw) == 0 {
		raw, _ = json.Marshal(note)
	}

	return &storage.Post{
		ID:            postID,
		Instance:      instance,
		NoteID:        note.ID,
		URL:           strings.TrimRight(instance, "/") + "/notes/" + note.ID,
		ArchivedAt:    time.Now().UTC().Format(time.RFC3339Nano),
		UserName:      userName,
		UserHandle:    handle,
		UserAvatar:    note.User.AvatarURL,
		Content:       note.Text,
		CW:            cw,
		CreatedAt:     note.CreatedAt,
		ReplyCount:    note.RepliesCount,
		RenoteCount:   note.RenoteCount,
		ReactionCount: note.ReactionCount(),
		Visibility:    visibility,
		RawJSON:       string(raw),
	}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
