// Package jobs tracks the state of background work so HTTP polls can report
// progress. Archive runs are independent keyed jobs; screenshot retakes are a
// process-wide singleton.
package jobs

import (
	"sync"

	"github.com/google/uuid"

	"sharkey-archiver/internal/metrics"
)

// ScreenshotDecision is the outcome of trying to start a retake run.
type ScreenshotDecision int

const (
	ScreenshotAlreadyRunning ScreenshotDecision = iota
	ScreenshotNothingToDo
	ScreenshotStarted
)

type archiveJob struct {
	status string // running, done, error
	done   int
	total  int
	result any
	errMsg string
}

type screenshotJob struct {
	status string // idle, running, done, error
	done   int
	failed int
	total  int
	errMsg string
}

// Tracker holds job state behind a single mutex.
type Tracker struct {
	mu         sync.Mutex
	jobs       map[string]*archiveJob
	screenshot screenshotJob
}

func NewTracker() *Tracker {
	return &Tracker{
		jobs:       make(map[string]*archiveJob),
		screenshot: screenshotJob{status: "idle"},
	}
}

// Start registers a new running archive job and returns its id.
func (t *Tracker) Start() string {
	id := uuid.NewString()
	t.mu.Lock()
	t.jobs[id] = &archiveJob{status: "running"}
	t.mu.Unlock()
	metrics.ArchiveJobsRunning.Inc()
	return id
}

// Update records progress on a running job.
func (t *Tracker) Update(id string, done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[id]; ok && j.status == "running" {
		j.done = done
		j.total = total
	}
}

// Complete moves a job to its terminal state. result replaces the progress
// snapshot entirely and is what polls see from now on.
func (t *Tracker) Complete(id string, result any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[id]; ok && j.status == "running" {
		j.status = "done"
		j.result = result
		metrics.ArchiveJobsRunning.Dec()
	}
}

// Fail moves a job to a terminal error state.
func (t *Tracker) Fail(id, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[id]; ok && j.status == "running" {
		j.status = "error"
		j.errMsg = msg
		metrics.ArchiveJobsRunning.Dec()
	}
}

// Get returns the poll payload for a job.
func (t *Tracker) Get(id string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok {
		return nil, false
	}
	switch j.status {
	case "done":
		return j.result, true
	case "error":
		return map[string]any{"status": "error", "error": j.errMsg}, true
	default:
		return map[string]any{"status": "running", "done": j.done, "total": j.total}, true
	}
}

// StartScreenshot decides atomically whether a retake run may start. count is
// called under the lock so two concurrent requests cannot both start a run.
// The returned int is the number of posts the started run will process.
func (t *Tracker) StartScreenshot(count func() (int, error)) (ScreenshotDecision, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.screenshot.status == "running" {
		return ScreenshotAlreadyRunning, 0, nil
	}
	n, err := count()
	if err != nil {
		return ScreenshotNothingToDo, 0, err
	}
	if n == 0 {
		return ScreenshotNothingToDo, 0, nil
	}
	t.screenshot = screenshotJob{status: "running", total: n}
	return ScreenshotStarted, n, nil
}

// UpdateScreenshot records progress on the running retake. done counts
// processed posts, failures included.
func (t *Tracker) UpdateScreenshot(done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.screenshot.status == "running" {
		t.screenshot.done = done
		t.screenshot.total = total
	}
}

// FinishScreenshot moves the retake to its terminal state.
func (t *Tracker) FinishScreenshot(done, failed, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screenshot = screenshotJob{status: "done", done: done, failed: failed, total: total}
}

// FailScreenshot moves the retake to a terminal error state.
func (t *Tracker) FailScreenshot(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screenshot = screenshotJob{status: "error", errMsg: msg}
}

// ScreenshotStatus returns the poll payload for the retake singleton.
func (t *Tracker) ScreenshotStatus() map[string]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.screenshot.status {
	case "done":
		return map[string]any{
			"status": "done",
			"done":   t.screenshot.done,
			"failed": t.screenshot.failed,
			"total":  t.screenshot.total,
		}
	case "error":
		return map[string]any{"status": "error", "error": t.screenshot.errMsg}
	case "running":
		return map[string]any{
			"status": "running",
			"done":   t.screenshot.done,
			"failed": t.screenshot.failed,
			"total":  t.screenshot.total,
		}
	default:
		return map[string]any{"status": "idle", "done": 0, "failed": 0, "total": 0}
	}
}
