package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindBrowser_Override(t *testing.T) {
	fake := filepath.Join(t.TempDir(), "chromium")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := findBrowser(fake)
	if err != nil {
		t.Fatalf("findBrowser() error = %v", err)
	}
	if path != fake {
		t.Errorf("findBrowser() = %q, want override %q", path, fake)
	}
}

func TestFindBrowser_OverrideMissing(t *testing.T) {
	if _, err := findBrowser(filepath.Join(t.TempDir(), "no-such-browser")); err == nil || !strings.Contains(err.Error(), "not usable") {
		t.Errorf("findBrowser() error = %v, want unusable-path failure", err)
	}
}
