package misskey

import "encoding/json"

// User represents the author of a note as returned by the remote instance.
// Host is empty for accounts local to that instance.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Host      string `json:"host"`
}

// FileProperties carries the optional pixel dimensions of an attachment.
type FileProperties struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

// File represents a media attachment on a note.
type File struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	URL         string         `json:"url"`
	IsSensitive bool           `json:"isSensitive"`
	Comment     string         `json:"comment"`
	Properties  FileProperties `json:"properties"`
}

// Note represents a post. CW is nil when the note has no content warning;
// an empty string means an explicitly blank warning. Raw preserves the note
// exactly as the instance sent it.
type Note struct {
	ID           string          `json:"id"`
	CreatedAt    string          `json:"createdAt"`
	Text         string          `json:"text"`
	CW           *string         `json:"cw"`
	Visibility   string          `json:"visibility"`
	RepliesCount int             `json:"repliesCount"`
	RenoteCount  int             `json:"renoteCount"`
	Reactions    json.RawMessage `json:"reactions"`
	User         User            `json:"user"`
	Files        []File          `json:"files"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes a note and keeps a verbatim copy of the source bytes
// in Raw.
func (n *Note) UnmarshalJSON(data []byte) error {
	type alias Note
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = Note(a)
	n.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// ReactionCount sums the per-emoji reaction tallies. Malformed or missing
// reaction data counts as zero.
func (n *Note) ReactionCount() int {
	if len(n.Reactions) == 0 {
		return 0
	}
	var counts map[string]int
	if err := json.Unmarshal(n.Reactions, &counts); err != nil {
		return 0
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
