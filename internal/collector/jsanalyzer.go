package collector

import (
	"context"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/extractor"
	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
)

var jsLogger = log.New(log.Writer(), "ghostmap/collector/jsanalyzer: ", log.LstdFlags)

// JSEndpoint is one endpoint found while analyzing a downloaded JS file.
type JSEndpoint struct {
	Endpoint    string
	SourceFile  string
	PatternName string
}

// JSAnalysisStats summarizes a batch JS analysis run.
type JSAnalysisStats struct {
	FilesAnalyzed  int
	FilesFailed    int
	TotalEndpoints int
}

// JSAnalyzerProgress is invoked after each JS file is processed.
type JSAnalyzerProgress func(jsURL string, index, total, endpointsFound int)

// JSAnalyzer downloads JavaScript files and mines them for API endpoints,
// and extracts endpoints from inline HTML <script> content.
type JSAnalyzer struct {
	client        *httpclient.Client
	maxFileSize   int64
	concurrency   int
}

// NewJSAnalyzer builds a JSAnalyzer from config.
func NewJSAnalyzer(cfg *config.Config) *JSAnalyzer {
	concurrency := cfg.JSDownloadConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &JSAnalyzer{
		client:      httpclient.New(cfg),
		maxFileSize: cfg.MaxJSFileSize,
		concurrency: concurrency,
	}
}

// AnalyzeJSURLs downloads each URL (optionally in parallel, bounded by
// JSDownloadConcurrency) and extracts endpoints from its content.
func (j *JSAnalyzer) AnalyzeJSURLs(ctx context.Context, jsURLs []string, baseDomain string, progress JSAnalyzerProgress) ([]JSEndpoint, JSAnalysisStats) {
	type fileResult struct {
		endpoints []extractor.Match
		failed    bool
	}
	results := make([]fileResult, len(jsURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for i, jsURL := range jsURLs {
		i, jsURL := i, jsURL
		g.Go(func() error {
			content, err := j.downloadJS(gctx, jsURL)
			if err != nil {
				jsLogger.Printf("failed to download JS %s: %v", jsURL, err)
				results[i] = fileResult{failed: true}
				return nil
			}
			matches := extractor.Extract(content, baseDomain)
			results[i] = fileResult{endpoints: matches}
			if progress != nil {
				progress(jsURL, i+1, len(jsURLs), len(matches))
			}
			return nil
		})
	}
	_ = g.Wait()

	var all []JSEndpoint
	seen := make(map[string]struct{})
	stats := JSAnalysisStats{}

	for i, r := range results {
		if r.failed {
			stats.FilesFailed++
			continue
		}
		stats.FilesAnalyzed++
		for _, m := range r.endpoints {
			if _, ok := seen[m.Endpoint]; ok {
				continue
			}
			seen[m.Endpoint] = struct{}{}
			all = append(all, JSEndpoint{
				Endpoint:    m.Endpoint,
				SourceFile:  jsURLs[i],
				PatternName: m.PatternName,
			})
		}
	}
	stats.TotalEndpoints = len(all)

	jsLogger.Printf("JS analysis complete: %d analyzed, %d failed, %d unique endpoints",
		stats.FilesAnalyzed, stats.FilesFailed, stats.TotalEndpoints)
	return all, stats
}

func (j *JSAnalyzer) downloadJS(ctx context.Context, jsURL string) (string, error) {
	resp, err := j.client.Get(ctx, jsURL, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, j.maxFileSize+1))
	if err != nil {
		return "", err
	}
	if int64(len(body)) > j.maxFileSize {
		jsLogger.Printf("JS file too large, skipping: %s", jsURL)
		return "", errTooLarge
	}
	return string(body), nil
}

var errTooLarge = &jsTooLargeError{}

type jsTooLargeError struct{}

func (*jsTooLargeError) Error() string { return "js file exceeds size limit" }

// HTMLExtraction is the result of mining a page's inline scripts and
// <script src> references.
type HTMLExtraction struct {
	InlineEndpoints []extractor.Match
	JSURLs          []string
}

// ExtractFromHTML walks the HTML with goquery, extracting endpoints from
// inline <script> bodies and resolving <script src> references against
// pageURL.
func (j *JSAnalyzer) ExtractFromHTML(htmlContent, pageURL, baseDomain string) HTMLExtraction {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return HTMLExtraction{}
	}

	var inlineText strings.Builder
	var jsURLs []string

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
				jsURLs = append(jsURLs, src)
			} else if pageURL != "" {
				if resolved := resolveURL(pageURL, src); resolved != "" {
					jsURLs = append(jsURLs, resolved)
				}
			}
			return
		}
		inlineText.WriteString(s.Text())
		inlineText.WriteString("\n")
	})

	return HTMLExtraction{
		InlineEndpoints: extractor.Extract(inlineText.String(), baseDomain),
		JSURLs:          jsURLs,
	}
}

func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(refURL).String()
}
