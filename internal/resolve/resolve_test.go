package resolve

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Target
		wantErr bool
	}{
		{
			name:  "note URL",
			input: "https://example.social/notes/9abcDEF123",
			want:  Target{Kind: KindNote, Instance: "https://example.social", ID: "9abcDEF123"},
		},
		{
			name:  "note URL with trailing slash",
			input: "https://example.social/notes/9abcDEF123/",
			want:  Target{Kind: KindNote, Instance: "https://example.social", ID: "9abcDEF123"},
		},
		{
			name:  "note URL with query string",
			input: "https://example.social/notes/9abcDEF123?ref=timeline",
			want:  Target{Kind: KindNote, Instance: "https://example.social", ID: "9abcDEF123"},
		},
		{
			name:  "mastodon posts URL",
			input: "https://masto.example/posts/112233",
			want:  Target{Kind: KindNote, Instance: "https://masto.example", ID: "112233"},
		},
		{
			name:  "mastodon statuses URL",
			input: "https://masto.example/users/alice/statuses/112233",
			want:  Target{Kind: KindNote, Instance: "https://masto.example", ID: "112233"},
		},
		{
			name:  "profile URL",
			input: "https://example.social/@alice",
			want:  Target{Kind: KindUser, Instance: "https://example.social", ID: "alice"},
		},
		{
			name:  "http scheme preserved",
			input: "http://localhost:3000/notes/abc",
			want:  Target{Kind: KindNote, Instance: "http://localhost:3000", ID: "abc"},
		},
		{
			name:  "fediverse handle",
			input: "alice@example.social",
			want:  Target{Kind: KindUser, Instance: "https://example.social", ID: "alice"},
		},
		{
			name:  "fediverse handle with leading at",
			input: "@alice@example.social",
			want:  Target{Kind: KindUser, Instance: "https://example.social", ID: "alice"},
		},
		{
			name:  "bare username has no instance",
			input: "alice",
			want:  Target{Kind: KindUser, Instance: "", ID: "alice"},
		},
		{
			name:  "username with dots and dashes",
			input: "a.b-c_d",
			want:  Target{Kind: KindUser, Instance: "", ID: "a.b-c_d"},
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  alice@example.social\n",
			want:  Target{Kind: KindUser, Instance: "https://example.social", ID: "alice"},
		},
		{
			name:    "URL without note or user",
			input:   "https://example.social/about",
			wantErr: true,
		},
		{
			name:    "handle with single-label domain",
			input:   "alice@localhost",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "garbage input",
			input:   "not a target!!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) expected error, got %+v", tt.input, got)
				}
				var inputErr *InputError
				if !errors.As(err, &inputErr) {
					t.Errorf("Resolve(%q) error = %v, want *InputError", tt.input, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
