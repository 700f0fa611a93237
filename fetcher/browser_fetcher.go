package fetcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"pricelens/models"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserFetcher renders pages in headless Chromium before returning their
// markup. Needed for storefronts that only show prices after JavaScript
// runs.
type BrowserFetcher struct {
	browser      *rod.Browser
	minBodyBytes int
	settleWait   time.Duration
}

// NewBrowserFetcher launches the browser. Uses system Chromium when present
// (Docker), auto-detects otherwise.
func NewBrowserFetcher(minBodyBytes int) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("Using system Chromium in Docker environment")
	} else {
		log.Printf("Using auto-detected Chromium (local environment)")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}

	if minBodyBytes <= 0 {
		minBodyBytes = defaultMinBodyBytes
	}

	return &BrowserFetcher{
		browser:      browser,
		minBodyBytes: minBodyBytes,
		settleWait:   2 * time.Second,
	}, nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() {
	if f.browser != nil {
		f.browser.MustClose()
	}
}

// Fetch renders the page and returns the post-JavaScript markup.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("failed to open page: %v", err)}
	}
	defer page.MustClose()

	page = page.Context(ctx)

	page.MustSetViewport(1920, 1080, 1.0, false)

	// Mask the headless fingerprint so bot detection serves normal markup.
	page.MustEvalOnNewDocument(`
		Object.defineProperty(navigator, 'webdriver', {
			get: () => undefined,
		});
		Object.defineProperty(navigator, 'plugins', {
			get: () => [1, 2, 3, 4, 5],
		});
		Object.defineProperty(navigator, 'languages', {
			get: () => ['en-US', 'en'],
		});
		window.chrome = {
			runtime: {},
		};
	`)

	if err := page.Navigate(url); err != nil {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("failed to navigate: %v", err)}
	}

	if err := page.WaitLoad(); err != nil {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("failed waiting for load: %v", err)}
	}

	// Give client-side price widgets a moment to hydrate.
	time.Sleep(f.settleWait)

	html, err := page.HTML()
	if err != nil {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("failed to read page HTML: %v", err)}
	}

	if len(html) < f.minBodyBytes {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("body too short (%d bytes), likely blocked", len(html))}
	}

	return html, nil
}
