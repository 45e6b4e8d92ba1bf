package collector

import (
	"bufio"
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strings"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
)

var ccLogger = log.New(log.Writer(), "ghostmap/collector/commoncrawl: ", log.LstdFlags)

const ccIndexListURL = "https://index.commoncrawl.org/collinfo.json"

// CommonCrawlEntry is one NDJSON record from a CommonCrawl CDX index.
type CommonCrawlEntry struct {
	URL        string
	Timestamp  string
	StatusCode string
	MimeType   string
}

// CommonCrawlProgress is invoked after each index is queried.
type CommonCrawlProgress func(indexName string, batchCount, totalFetched int)

// CommonCrawlScraper queries the CommonCrawl Index API for URLs.
type CommonCrawlScraper struct {
	client        *httpclient.Client
	maxIndexes    int
	indexListURL  string
}

// NewCommonCrawlScraper builds a scraper that queries the most recent
// maxIndexes CommonCrawl collections (default 3 if maxIndexes <= 0).
func NewCommonCrawlScraper(cfg *config.Config, maxIndexes int) *CommonCrawlScraper {
	if maxIndexes <= 0 {
		maxIndexes = 3
	}
	return &CommonCrawlScraper{client: httpclient.New(cfg), maxIndexes: maxIndexes, indexListURL: ccIndexListURL}
}

type ccCollectionInfo struct {
	CDXAPI string `json:"cdx-api"`
}

func (c *CommonCrawlScraper) indexURLs(ctx context.Context) []string {
	resp, err := c.client.Get(ctx, c.indexListURL, nil)
	if err != nil {
		ccLogger.Printf("failed to fetch CommonCrawl index list: %v", err)
		return nil
	}
	defer resp.Body.Close()

	var collections []ccCollectionInfo
	if err := json.NewDecoder(resp.Body).Decode(&collections); err != nil {
		ccLogger.Printf("failed to decode CommonCrawl index list: %v", err)
		return nil
	}

	urls := make([]string, 0, len(collections))
	for _, col := range collections {
		if col.CDXAPI != "" {
			urls = append(urls, col.CDXAPI)
		}
	}
	if len(urls) > c.maxIndexes {
		urls = urls[:c.maxIndexes]
	}
	return urls
}

// FetchURLs queries each of the most recent CommonCrawl indexes for records
// matching the domain and merges their NDJSON rows.
func (c *CommonCrawlScraper) FetchURLs(ctx context.Context, domain string, progress CommonCrawlProgress) []CommonCrawlEntry {
	indexes := c.indexURLs(ctx)
	if len(indexes) == 0 {
		ccLogger.Printf("no CommonCrawl indexes available")
		return nil
	}

	var results []CommonCrawlEntry
	totalFetched := 0

	for _, idxURL := range indexes {
		idxName := idxURL
		if parts := strings.Split(idxURL, "/"); len(parts) >= 2 {
			idxName = parts[len(parts)-2]
		}

		q := url.Values{}
		q.Set("url", "*."+domain)
		q.Set("output", "json")

		resp, err := c.client.Get(ctx, idxURL+"?"+q.Encode(), nil)
		if err != nil {
			ccLogger.Printf("index %s query failed: %v", idxName, err)
			continue
		}

		batchCount := 0
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var rec struct {
				URL       string `json:"url"`
				Timestamp string `json:"timestamp"`
				Status    string `json:"status"`
				Mime      string `json:"mime"`
			}
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				continue
			}
			if rec.URL == "" {
				continue
			}
			results = append(results, CommonCrawlEntry{
				URL:        rec.URL,
				Timestamp:  rec.Timestamp,
				StatusCode: rec.Status,
				MimeType:   rec.Mime,
			})
			batchCount++
		}
		resp.Body.Close()

		totalFetched += batchCount
		ccLogger.Printf("%s: fetched %d URLs (total %d)", idxName, batchCount, totalFetched)

		if progress != nil {
			progress(idxName, batchCount, totalFetched)
		}
	}

	ccLogger.Printf("scraping complete: %d URLs found for %s", len(results), domain)
	return results
}
