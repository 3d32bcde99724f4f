package airbnb

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"airbnb-monitor/config"
	"airbnb-monitor/utils"
)

var (
	// ErrPageBlocked means the page served an anti-automation interstitial
	// instead of search results.
	ErrPageBlocked = errors.New("page blocked by anti-automation challenge")

	// ErrResultsNotReady means no readiness selector appeared within the
	// bounded wait.
	ErrResultsNotReady = errors.New("results did not become ready within timeout")
)

// readinessSelectors signal that listing content has rendered. Any single
// match is enough.
var readinessSelectors = []string{
	`[data-testid="card-container"]`,
	`a[href*="/rooms/"]`,
	`[data-testid="listing-card-title"]`,
	`div[itemprop="itemListElement"]`,
}

// Renderer is the boundary to the page-rendering capability: given a URL it
// returns the rendered document HTML or an error.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// ChromeRenderer drives headless Chrome through chromedp. One allocator is
// shared across the run; each Render gets a fresh tab.
type ChromeRenderer struct {
	cfg    *config.Config
	logger *utils.Logger

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

// NewChromeRenderer builds the shared browser allocator. Close must be called
// when the run finishes.
func NewChromeRenderer(cfg *config.Config, logger *utils.Logger) *ChromeRenderer {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	logger.Info("[renderer] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &ChromeRenderer{
		cfg:         cfg,
		logger:      logger,
		allocCtx:    silentCtx,
		cancelAlloc: cancelAlloc,
		cancelCtx:   cancelSilent,
	}
}

// Render navigates a fresh tab to pageURL, waits for a readiness selector
// within the bounded timeout, scrolls to force lazily-loaded cards, and
// returns the rendered document HTML.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.allocCtx)
	defer cancelTab()

	budget := r.cfg.PageLoadWait + r.cfg.ReadyTimeout + 30*time.Second
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, budget)
	defer cancelTimeout()

	// Propagate run-level cancellation into the tab.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(r.cfg.PageLoadWait),
	)
	if err != nil {
		return "", fmt.Errorf("render: navigate: %w", err)
	}

	var ready bool
	err = chromedp.Run(tabCtx,
		chromedp.Poll(readinessExpr(), &ready,
			chromedp.WithPollingInterval(time.Second),
			chromedp.WithPollingTimeout(r.cfg.ReadyTimeout)),
	)
	if err != nil {
		if blocked, berr := r.pageBlocked(tabCtx); berr == nil && blocked {
			return "", ErrPageBlocked
		}
		if errors.Is(err, chromedp.ErrPollingTimeout) {
			return "", ErrResultsNotReady
		}
		return "", fmt.Errorf("render: readiness wait: %w", err)
	}

	var html string
	err = chromedp.Run(tabCtx,
		// Scroll to trigger lazy-loaded cards and images.
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render: capture html: %w", err)
	}

	return html, nil
}

// Close tears down the shared browser allocator.
func (r *ChromeRenderer) Close() {
	r.cancelCtx()
	r.cancelAlloc()
}

func (r *ChromeRenderer) pageBlocked(tabCtx context.Context) (bool, error) {
	const expr = `document.title.indexOf('Just a moment') !== -1 ||
		(document.body && document.body.innerText.indexOf('Just a moment') !== -1)`

	var blocked bool
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(expr, &blocked)); err != nil {
		return false, err
	}
	return blocked, nil
}

// readinessExpr builds a JS expression that is truthy once any readiness
// selector matches.
func readinessExpr() string {
	quoted := make([]string, len(readinessSelectors))
	for i, sel := range readinessSelectors {
		quoted[i] = "'" + sel + "'"
	}
	return "[" + strings.Join(quoted, ",") + "].some(function(s){ return document.querySelector(s) !== null; })"
}

// findChromeBinary locates the Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := exec.LookPath(p); err == nil {
			return p
		}
	}

	return ""
}
