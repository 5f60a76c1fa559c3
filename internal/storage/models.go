package storage

import "database/sql"

// Post represents an archived post in the database. Timestamps stay as the
// strings the remote instance sent; archived_at is RFC 3339 UTC.
type Post struct {
	ID             string // "<instance host>/<note id>"
	Instance       string // Base URL of the origin instance
	NoteID         string
	URL            string // Original post URL on the instance
	ArchivedAt     string
	UserName       string
	UserHandle     string // "@user" or "@user@host" for remote authors
	UserAvatar     string
	Content        string
	CW             sql.NullString // NULL when the post has no content warning
	CreatedAt      string
	ReplyCount     int
	RenoteCount    int
	ReactionCount  int
	Visibility     string
	RawJSON        string // Verbatim note JSON as fetched
	ScreenshotPath sql.NullString
}

// Media represents one attachment of an archived post.
type Media struct {
	ID          string // "<post id>/<file id>"
	PostID      string
	Filename    string
	URL         string // Remote URL the file was fetched from
	MimeType    string
	LocalPath   sql.NullString // NULL when the download failed
	Width       sql.NullInt64
	Height      sql.NullInt64
	IsSensitive bool
	AltText     string
}

// PostSummary is the list view of an archived post, with an attachment count
// instead of the full media rows.
type PostSummary struct {
	ID             string
	URL            string
	UserName       string
	UserHandle     string
	UserAvatar     string
	Content        string
	CW             sql.NullString
	CreatedAt      string
	ArchivedAt     string
	ReplyCount     int
	RenoteCount    int
	ReactionCount  int
	Visibility     string
	ScreenshotPath sql.NullString
	MediaCount     int
}
