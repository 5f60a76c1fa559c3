package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"sharkey-archiver/internal/mirror"
	"sharkey-archiver/internal/storage"
	"sharkey-archiver/internal/storage/mocks"
)

func pagePost() *storage.Post {
	return &storage.Post{
		ID:         "example.social/n1",
		Instance:   "https://example.social",
		NoteID:     "n1",
		URL:        "https://example.social/notes/n1",
		ArchivedAt: "2024-03-05T12:00:00Z",
		UserName:   "Alice",
		UserHandle: "@alice",
		Content:    "hello from the archive",
		CreatedAt:  "2024-03-01T10:00:00.000Z",
		Visibility: "public",
		RawJSON:    `{"id":"n1"}`,
	}
}

// servePostPage routes through chi so the wildcard id param is populated.
func servePostPage(handler *PostPageHandler, path string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Get("/post/*", handler.ServeHTTP)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPostPageHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockPostStore(ctrl)
	mockStore.EXPECT().GetPost(gomock.Any(), "example.social/n1").Return(pagePost(), nil)
	mockStore.EXPECT().ListMedia(gomock.Any(), "example.social/n1").Return([]storage.Media{}, nil)

	handler := NewPostPageHandler(mockStore, mirror.NewRenderer(t.TempDir()))

	w := servePostPage(handler, "/post/example.social/n1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "hello from the archive") {
		t.Error("body does not contain post content")
	}
	if !strings.Contains(body, "Alice") {
		t.Error("body does not contain author name")
	}
}

func TestPostPageHandler_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockPostStore(ctrl)
	mockStore.EXPECT().GetPost(gomock.Any(), "example.social/missing").Return(nil, storage.ErrNotFound)

	handler := NewPostPageHandler(mockStore, mirror.NewRenderer(t.TempDir()))

	w := servePostPage(handler, "/post/example.social/missing")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusNotFound)
	}
	if !strings.Contains(w.Body.String(), "<h1>Post not found</h1>") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestPostPageHandler_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockPostStore(ctrl)
	mockStore.EXPECT().GetPost(gomock.Any(), "example.social/n1").Return(nil, errors.New("db locked"))

	handler := NewPostPageHandler(mockStore, mirror.NewRenderer(t.TempDir()))

	w := servePostPage(handler, "/post/example.social/n1")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %v, want %v", w.Code, http.StatusInternalServerError)
	}
}
