package handlers

import (
	"database/sql"
	"net/http"

	"sharkey-archiver/internal/contextutil"
	"sharkey-archiver/internal/storage"
)

// PostsHandler lists archived posts as JSON for the gallery view.
type PostsHandler struct {
	store storage.PostStore
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(store storage.PostStore) *PostsHandler {
	return &PostsHandler{store: store}
}

// PostItem is one archived post in the list response.
type PostItem struct {
	ID             string  `json:"id"`
	URL            string  `json:"url"`
	UserName       string  `json:"user_name"`
	UserHandle     string  `json:"user_handle"`
	UserAvatar     string  `json:"user_avatar"`
	Content        string  `json:"content"`
	CW             *string `json:"cw"`
	CreatedAt      string  `json:"created_at"`
	ArchivedAt     string  `json:"archived_at"`
	ReplyCount     int     `json:"reply_count"`
	RenoteCount    int     `json:"renote_count"`
	ReactionCount  int     `json:"reaction_count"`
	Visibility     string  `json:"visibility"`
	ScreenshotPath *string `json:"screenshot_path"`
	MediaCount     int     `json:"media_count"`
}

// ServeHTTP handles HTTP requests for the archived post list.
func (h *PostsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	summaries, err := h.store.ListPosts(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list posts", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list posts")
		return
	}

	// Empty archives serialize as [] rather than null.
	items := make([]PostItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, PostItem{
			ID:             s.ID,
			URL:            s.URL,
			UserName:       s.UserName,
			UserHandle:     s.UserHandle,
			UserAvatar:     s.UserAvatar,
			Content:        s.Content,
			CW:             nullable(s.CW),
			CreatedAt:      s.CreatedAt,
			ArchivedAt:     s.ArchivedAt,
			ReplyCount:     s.ReplyCount,
			RenoteCount:    s.RenoteCount,
			ReactionCount:  s.ReactionCount,
			Visibility:     s.Visibility,
			ScreenshotPath: nullable(s.ScreenshotPath),
			MediaCount:     s.MediaCount,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
