package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// The card renders at mobile-ish width, so a narrow viewport keeps the
	// screenshot tight around it.
	viewportWidth  = 700
	viewportHeight = 900

	cardSelector = ".card"

	navTimeout    = 15 * time.Second
	settleTimeout = 6 * time.Second
	shotTimeout   = 10 * time.Second
)

var browserNames = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
	"headless-shell",
}

var browserPaths = []string{
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/usr/bin/google-chrome",
	"/snap/bin/chromium",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

// Chrome renders pages with a headless Chromium-family browser. Each Render
// call launches a fresh browser so a wedged tab can never poison later
// captures.
type Chrome struct {
	execPath string
}

// NewChrome locates a usable browser binary. A non-empty execPath overrides
// discovery; otherwise $PATH and a handful of well-known install locations
// are checked.
func NewChrome(execPath string) (*Chrome, error) {
	path, err := findBrowser(execPath)
	if err != nil {
		return nil, err
	}
	return &Chrome{execPath: path}, nil
}

// ExecPath reports the browser binary captures will run.
func (c *Chrome) ExecPath() string {
	return c.execPath
}

func findBrowser(override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("configured browser path %q is not usable: %w", override, err)
		}
		return override, nil
	}
	for _, name := range browserNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	for _, path := range browserPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no chromium or chrome binary found")
}

// Render loads url and returns a PNG of the post card, falling back to the
// whole viewport when the card element cannot be captured.
func (c *Chrome) Render(ctx context.Context, url string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(c.execPath),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	navCtx, cancelNav := context.WithTimeout(browserCtx, navTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate(url),
	); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	// Give remote media a few seconds to finish loading, then shoot anyway.
	settleCtx, cancelSettle := context.WithTimeout(browserCtx, settleTimeout)
	_ = chromedp.Run(settleCtx, chromedp.Poll(
		`Array.from(document.images).every(i => i.complete)`,
		nil,
		chromedp.WithPollingTimeout(settleTimeout),
	))
	cancelSettle()

	var shot []byte
	elemCtx, cancelElem := context.WithTimeout(browserCtx, shotTimeout)
	err := chromedp.Run(elemCtx, chromedp.Screenshot(cardSelector, &shot, chromedp.ByQuery))
	cancelElem()
	if err != nil {
		pageCtx, cancelPage := context.WithTimeout(browserCtx, shotTimeout)
		defer cancelPage()
		if err := chromedp.Run(pageCtx, chromedp.CaptureScreenshot(&shot)); err != nil {
			return nil, fmt.Errorf("failed to capture screenshot: %w", err)
		}
	}
	return shot, nil
}
