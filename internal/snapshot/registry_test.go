package snapshot

import "testing"

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	token := r.Put("<html>page</html>")
	if token == "" {
		t.Fatal("Put() returned an empty token")
	}

	html, ok := r.Get(token)
	if !ok {
		t.Fatal("Get() did not find the registered page")
	}
	if html != "<html>page</html>" {
		t.Errorf("Get() = %q, want the registered page", html)
	}

	r.Remove(token)
	if _, ok := r.Get(token); ok {
		t.Error("Get() found a removed page")
	}
}

func TestRegistry_UnknownToken(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("nope"); ok {
		t.Error("Get() reported an unregistered token as present")
	}
}

func TestRegistry_TokensAreUnique(t *testing.T) {
	r := NewRegistry()
	if r.Put("a") == r.Put("b") {
		t.Error("Put() returned the same token twice")
	}
}
