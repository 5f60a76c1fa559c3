// Package resolve turns free-form user input into an archive target. It
// accepts note URLs, profile URLs, fediverse handles like user@host, and bare
// usernames, mirroring what people paste into the archive form.
package resolve

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Kind distinguishes what a resolved target points at.
type Kind string

const (
	// KindNote targets a single post.
	KindNote Kind = "note"
	// KindUser targets a whole account timeline.
	KindUser Kind = "user"
)

// Target is a resolved archive target. Instance is a base URL such as
// "https://example.social" and may be empty for bare usernames, in which case
// the caller must supply one.
type Target struct {
	Kind     Kind
	Instance string
	ID       string
}

// InputError reports input that could not be resolved into a target. Its
// message is safe to show to the user.
type InputError struct {
	Input   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Input)
}

var (
	noteIDPattern   = regexp.MustCompile(`/notes/([A-Za-z0-9]+)$`)
	statusIDPattern = regexp.MustCompile(`/(?:posts|statuses)/([A-Za-z0-9]+)$`)
	profilePattern  = regexp.MustCompile(`^/@([A-Za-z0-9_.-]+)$`)
	handlePattern   = regexp.MustCompile(`^@?([A-Za-z0-9_.-]+)@([A-Za-z0-9_.-]+\.[A-Za-z]{2,})$`)
	bareNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// Resolve parses raw input into a Target. URLs carry their own instance;
// handles derive it from the domain part; bare usernames resolve with an empty
// Instance. Unresolvable input returns an *InputError.
func Resolve(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)

	if parsed, err := url.Parse(raw); err == nil &&
		(parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != "" {
		instance := parsed.Scheme + "://" + parsed.Host
		path := strings.TrimRight(parsed.Path, "/")

		if m := noteIDPattern.FindStringSubmatch(path); m != nil {
			return Target{Kind: KindNote, Instance: instance, ID: m[1]}, nil
		}
		// Mastodon-style permalinks resolve to the same note lookup.
		if m := statusIDPattern.FindStringSubmatch(path); m != nil {
			return Target{Kind: KindNote, Instance: instance, ID: m[1]}, nil
		}
		if m := profilePattern.FindStringSubmatch(path); m != nil {
			return Target{Kind: KindUser, Instance: instance, ID: m[1]}, nil
		}
		return Target{}, &InputError{Input: raw, Message: "cannot extract note or user from URL"}
	}

	if m := handlePattern.FindStringSubmatch(raw); m != nil {
		return Target{Kind: KindUser, Instance: "https://" + m[2], ID: m[1]}, nil
	}

	if bareNamePattern.MatchString(raw) {
		return Target{Kind: KindUser, ID: raw}, nil
	}

	return Target{}, &InputError{Input: raw, Message: "unrecognised input"}
}
