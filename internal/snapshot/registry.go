package snapshot

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds rendered mirror pages keyed by one-shot tokens so the
// headless browser can fetch them over loopback HTTP. Entries live only for
// the duration of a capture.
type Registry struct {
	mu    sync.Mutex
	pages map[string]string
}

func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]string)}
}

// Put registers a page and returns its token.
func (r *Registry) Put(html string) string {
	token := uuid.NewString()
	r.mu.Lock()
	r.pages[token] = html
	r.mu.Unlock()
	return token
}

// Get returns the page registered under token.
func (r *Registry) Get(token string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	html, ok := r.pages[token]
	return html, ok
}

// Remove drops the page registered under token.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	delete(r.pages, token)
	r.mu.Unlock()
}
