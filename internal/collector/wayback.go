// Package collector scrapes historical and crawled URL archives (Wayback
// Machine, CommonCrawl) and extracts endpoints from fetched JavaScript/HTML.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
)

var waybackLogger = log.New(log.Writer(), "ghostmap/collector/wayback: ", log.LstdFlags)

const waybackCDXURL = "https://web.archive.org/cdx/search/cdx"

// waybackPageThreshold is the CDX API's page-row threshold: a batch smaller
// than this means we've reached the end of the result set.
const waybackPageThreshold = 10000

// WaybackEntry is one row returned by the Wayback CDX API.
type WaybackEntry struct {
	URL        string
	Timestamp  string
	StatusCode string
	MimeType   string
}

// WaybackProgress is invoked after each CDX page is fetched.
type WaybackProgress func(batchSize, totalFetched int)

// WaybackScraper queries the Wayback Machine CDX API for historical URLs.
type WaybackScraper struct {
	client  *httpclient.Client
	baseURL string
}

// NewWaybackScraper builds a WaybackScraper using the given config.
func NewWaybackScraper(cfg *config.Config) *WaybackScraper {
	return &WaybackScraper{client: httpclient.New(cfg), baseURL: waybackCDXURL}
}

// FetchURLs queries the CDX API for a domain, paging until an undersized
// batch signals the end of results.
func (w *WaybackScraper) FetchURLs(ctx context.Context, domain string, matchType string, progress WaybackProgress) ([]WaybackEntry, error) {
	if matchType == "" {
		matchType = "domain"
	}

	var results []WaybackEntry
	page := 0
	totalFetched := 0

	for {
		q := url.Values{}
		if matchType == "domain" {
			q.Set("url", "*."+domain)
		} else {
			q.Set("url", domain)
		}
		q.Set("output", "json")
		q.Set("fl", "original,timestamp,statuscode,mimetype")
		q.Set("matchType", matchType)
		q.Set("collapse", "urlkey")
		q.Set("page", strconv.Itoa(page))

		reqURL := w.baseURL + "?" + q.Encode()

		resp, err := w.client.Get(ctx, reqURL, nil)
		if err != nil {
			waybackLogger.Printf("CDX request failed (page %d): %v", page, err)
			break
		}

		var rows [][]string
		decodeErr := json.NewDecoder(resp.Body).Decode(&rows)
		resp.Body.Close()
		if decodeErr != nil {
			waybackLogger.Printf("no more results at page %d", page)
			break
		}

		if len(rows) <= 1 {
			break
		}

		for _, row := range rows[1:] {
			if len(row) < 4 {
				continue
			}
			results = append(results, WaybackEntry{
				URL:        row[0],
				Timestamp:  row[1],
				StatusCode: row[2],
				MimeType:   row[3],
			})
		}

		batchSize := len(rows) - 1
		totalFetched += batchSize
		waybackLogger.Printf("page %d: fetched %d URLs (total %d)", page, batchSize, totalFetched)

		if progress != nil {
			progress(batchSize, totalFetched)
		}

		if batchSize < waybackPageThreshold {
			break
		}
		page++
	}

	waybackLogger.Printf("scraping complete: %d URLs found for %s", len(results), domain)
	return results, nil
}

var apiIndicators = []string{
	"/api/", "/api.", "/v1/", "/v2/", "/v3/", "/v4/",
	"/rest/", "/graphql", "/webhook", "/callback",
	"/oauth", "/auth/", "/login", "/signup",
	"/admin", "/debug", "/internal", "/health",
	".json", ".xml", ".yaml", ".yml",
	"/swagger", "/openapi", "/docs/",
}

// ExtractAPIURLs narrows a raw CDX batch to likely API endpoints.
func ExtractAPIURLs(entries []WaybackEntry) []WaybackEntry {
	out := make([]WaybackEntry, 0, len(entries))
	for _, e := range entries {
		lower := strings.ToLower(e.URL)
		for _, indicator := range apiIndicators {
			if strings.Contains(lower, indicator) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// ExtractJSURLs returns the sorted, unique, query-stripped .js/.mjs URLs
// found in a raw CDX batch, ready to hand to the JS analyzer.
func ExtractJSURLs(entries []WaybackEntry) []string {
	set := make(map[string]struct{})
	for _, e := range entries {
		u, err := url.Parse(e.URL)
		if err != nil {
			continue
		}
		pathLower := strings.ToLower(u.Path)
		if strings.HasSuffix(pathLower, ".js") || strings.HasSuffix(pathLower, ".mjs") {
			clean := fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path)
			set[clean] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
