package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
)

func TestCommonCrawlFetchURLsParsesNDJSON(t *testing.T) {
	var cdxServerURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/collinfo.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"cdx-api": "` + cdxServerURL + `/cdx"}]`))
	})
	mux.HandleFunc("/cdx", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url": "https://example.com/a", "timestamp": "20230101", "status": "200", "mime": "text/html"}` + "\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	cdxServerURL = srv.URL

	cfg := config.Default()
	cfg.RateLimit = 1000
	scraper := &CommonCrawlScraper{client: httpclient.New(cfg), maxIndexes: 3, indexListURL: srv.URL + "/collinfo.json"}

	results := scraper.FetchURLs(context.Background(), "example.com", nil)

	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/a", results[0].URL)
	assert.Equal(t, "200", results[0].StatusCode)
	assert.Equal(t, "text/html", results[0].MimeType)
}
