package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
)

func TestExtractAPIURLsFiltersByIndicator(t *testing.T) {
	entries := []WaybackEntry{
		{URL: "https://example.com/api/users"},
		{URL: "https://example.com/about"},
		{URL: "https://example.com/graphql"},
	}
	got := ExtractAPIURLs(entries)
	assert.Len(t, got, 2)
}

func TestExtractJSURLsDedupsAndStripsQuery(t *testing.T) {
	entries := []WaybackEntry{
		{URL: "https://example.com/app.js?v=1"},
		{URL: "https://example.com/app.js?v=2"},
		{URL: "https://example.com/style.css"},
	}
	got := ExtractJSURLs(entries)
	assert.Equal(t, []string{"https://example.com/app.js"}, got)
}

func TestWaybackScraperFetchURLsStopsOnUndersizedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows := [][]string{
			{"original", "timestamp", "statuscode", "mimetype"},
			{"https://example.com/a", "20230101", "200", "text/html"},
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.RateLimit = 1000
	scraper := &WaybackScraper{client: httpclient.New(cfg), baseURL: srv.URL}

	entries, err := scraper.FetchURLs(context.Background(), "example.com", "domain", nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "https://example.com/a", entries[0].URL)
}
