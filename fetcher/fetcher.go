// Package fetcher retrieves raw page markup for the extraction pipeline.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"pricelens/models"
)

// Fetcher returns the raw markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// minBodyBytes: storefronts that block a request tend to answer with a tiny
// interstitial or empty shell, so very short bodies count as failures.
const defaultMinBodyBytes = 250

// HTTPFetcher fetches pages over plain HTTP with a realistic client
// identity.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	minBodyBytes int
}

func NewHTTPFetcher(timeout time.Duration, userAgent string, minBodyBytes int) *HTTPFetcher {
	if minBodyBytes <= 0 {
		minBodyBytes = defaultMinBodyBytes
	}
	return &HTTPFetcher{
		client:       &http.Client{Timeout: timeout},
		userAgent:    userAgent,
		minBodyBytes: minBodyBytes,
	}
}

// Fetch downloads the page and returns its markup. Network errors, bad
// statuses and suspiciously short bodies all come back as *models.FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &models.FetchError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &models.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("bad status: %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("failed to read body: %v", err)}
	}

	if len(body) < f.minBodyBytes {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("body too short (%d bytes), likely blocked", len(body))}
	}

	return string(body), nil
}
