// Package misskey is a minimal client for the Misskey API that Sharkey
// instances expose. Every endpoint is an unauthenticated JSON POST.
package misskey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sharkey-archiver/internal/metrics"
)

const (
	userAgent    = "SharkeyArchiver/1.0"
	maxAttempts  = 3
	retryBackoff = 2 * time.Second

	// PageSize is the largest notes batch requested per page. Bigger batches
	// hit server-side statement timeouts on busy instances.
	PageSize = 20

	// maxErrorBody bounds how much of an error response is kept around.
	maxErrorBody = 300
)

// APIError is a non-2xx response from the remote instance.
type APIError struct {
	Status   int
	Instance string
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d from %s: %s", e.Status, e.Instance, e.Body)
}

// IsOverloaded reports whether err looks like the instance buckling under
// load: an HTTP 500 or a Misskey INTERNAL_ERROR payload.
func IsOverloaded(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusInternalServerError {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "INTERNAL_ERROR")
}

// Client issues API calls to Misskey-compatible instances.
type Client struct {
	client  *http.Client
	backoff time.Duration
}

// NewClient creates a client with a 30 second per-request timeout.
func NewClient() *Client {
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		backoff: retryBackoff,
	}
}

// Call POSTs payload to instance's API endpoint and returns the raw response
// body. Transport errors and HTTP 500s are retried twice, pausing 2s then 4s
// between attempts; any other error status fails immediately with an
// *APIError.
func (c *Client) Call(ctx context.Context, instance, endpoint string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/api/%s", strings.TrimRight(instance, "/"), endpoint)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			metrics.RemoteRetriesTotal.Inc()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * c.backoff):
			}
		}

		raw, err := c.post(ctx, url, instance, body)
		if err == nil {
			metrics.RemoteRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
			return raw, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status != http.StatusInternalServerError {
			metrics.RemoteRequestsTotal.WithLabelValues(endpoint, "error").Inc()
			return nil, err
		}
		lastErr = err
	}

	metrics.RemoteRequestsTotal.WithLabelValues(endpoint, "error").Inc()
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, url, instance string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Status: resp.StatusCode, Instance: instance, Body: string(raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return raw, nil
}

// LookupUser resolves a username on an instance to its account record.
func (c *Client) LookupUser(ctx context.Context, instance, username string) (*User, error) {
	raw, err := c.Call(ctx, instance, "users/show", map[string]string{"username": username})
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("users/show returned no id for %q on %s", username, instance)
	}
	return &user, nil
}

// FetchNote retrieves a single note by id.
func (c *Client) FetchNote(ctx context.Context, instance, noteID string) (*Note, error) {
	raw, err := c.Call(ctx, instance, "notes/show", map[string]string{"noteId": noteID})
	if err != nil {
		return nil, err
	}

	var note Note
	if err := json.Unmarshal(raw, &note); err != nil {
		return nil, fmt.Errorf("failed to decode note: %w", err)
	}
	return &note, nil
}

// FetchUserNotes retrieves one page of a user's notes, newest first, excluding
// replies and renotes. The page size is capped at PageSize regardless of
// limit. Pass the last note id of the previous page as untilID to continue
// backwards; empty untilID starts from the newest note.
func (c *Client) FetchUserNotes(ctx context.Context, instance, userID string, limit int, untilID string) ([]Note, error) {
	if limit > PageSize {
		limit = PageSize
	}
	payload := map[string]any{
		"userId":         userID,
		"limit":          limit,
		"includeReplies": false,
		"withRenotes":    false,
	}
	if untilID != "" {
		payload["untilId"] = untilID
	}

	raw, err := c.Call(ctx, instance, "users/notes", payload)
	if err != nil {
		return nil, err
	}

	var notes []Note
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}
