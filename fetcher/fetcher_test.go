package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricelens/models"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>" + strings.Repeat("<p>content</p>", 20) + "</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "pricelens-test", 10)
	html, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, html, "<p>content</p>")
	assert.Equal(t, "pricelens-test", gotUA)
}

func TestHTTPFetcherRejectsShortBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("blocked"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "pricelens-test", 0)
	_, err := f.Fetch(context.Background(), srv.URL)

	var fe *models.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "too short")
}

func TestHTTPFetcherRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "pricelens-test", 10)
	_, err := f.Fetch(context.Background(), srv.URL)

	var fe *models.FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestHTTPFetcherNetworkError(t *testing.T) {
	f := NewHTTPFetcher(500*time.Millisecond, "pricelens-test", 10)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")

	var fe *models.FetchError
	assert.ErrorAs(t, err, &fe)
}
