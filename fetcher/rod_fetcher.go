package fetcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"liquipedia-scraper/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodFetcher owns a headless browser. Pages are fetched through sessions,
// each one a browser tab that shows one page at a time.
type RodFetcher struct {
	browser *rod.Browser
	opts    Options
}

// NewRodFetcher launches a headless browser
func NewRodFetcher(opts Options) (*RodFetcher, error) {
	// Get user data directory from environment or use default
	userDataDir := os.Getenv("LPS_BROWSER_DATA_DIR")
	if userDataDir == "" {
		userDataDir = "/tmp/lps-browser"
	}
	if err := os.MkdirAll(userDataDir, 0o755); err != nil {
		logging.L().Warnf("Failed to create browser data directory %s: %v", userDataDir, err)
		userDataDir = ""
	}

	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false).
		UserDataDir(userDataDir).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("mute-audio")

	// Try to use system Chrome first, fallback to downloading Chromium
	if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &RodFetcher{
		browser: browser,
		opts:    opts,
	}, nil
}

// NewSession opens a new tab
func (rf *RodFetcher) NewSession() (*RodSession, error) {
	page, err := rf.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &RodSession{page: page, opts: rf.opts}, nil
}

// Close closes the browser
func (rf *RodFetcher) Close() error {
	if rf.browser != nil {
		return rf.browser.Close()
	}
	return nil
}

// RodSession implements the Fetcher interface on one browser tab
type RodSession struct {
	mu   sync.Mutex
	page *rod.Page
	opts Options
}

// Fetch navigates the tab to url and returns the rendered HTML
func (s *RodSession) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := s.opts.wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.page.Context(ctx).Timeout(s.opts.timeout())

	if err := page.Navigate(url); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to navigate: %w", err)}
	}
	if err := page.WaitLoad(); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to load: %w", err)}
	}

	// Wait for page to stabilize
	if err := page.WaitStable(500 * time.Millisecond); err != nil {
		logging.L().Warnf("Page %s did not stabilize, continuing anyway: %v", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to get HTML: %w", err)}
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	logging.L().Debugf("Rendered %s (%d bytes)", finalURL, len(html))
	return &Page{URL: finalURL, HTML: html}, nil
}

// Close closes the tab
func (s *RodSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.Close()
}
