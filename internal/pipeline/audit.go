package pipeline

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/gauravkdeore/ghostmap-go/internal/audit"
	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/docs"
	"github.com/gauravkdeore/ghostmap-go/internal/forms"
	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
	"github.com/gauravkdeore/ghostmap-go/internal/model"
	"github.com/gauravkdeore/ghostmap-go/internal/progress"
)

// AuditOptions configures which optional audit sub-stages run.
type AuditOptions struct {
	BaseURL    string
	SourceRoot string // if set, mine local source tree for documented routes
	SpecPath   string // if set, compare against this OpenAPI/Swagger file
	FuzzMode   string // "", "auto", or "all" — empty disables fuzzing
}

// AuditResult is the fully scored, classified output of the audit stage.
type AuditResult struct {
	Records      []*model.URLRecord
	Compare      docs.CompareResult
	Resources    map[string]audit.ResourceMapping
	Technologies []string
	WAF          audit.WAFDetection
	FilesScanned int
	RoutesMined  int
}

// Audit probes every candidate endpoint, fingerprints the target, maps
// CRUD resource families, compares against documented routes, optionally
// fuzzes for ghost endpoints, pulls forms off active HTML pages, and scores
// the final risk for every record.
func Audit(ctx context.Context, cfg *config.Config, records []*model.URLRecord, opts AuditOptions, hub *progress.Hub) AuditResult {
	client := httpclient.New(cfg)
	techDetector := audit.NewTechDetector(client)
	wafDetector := audit.NewWAFDetector(client)
	resourceMapper := audit.NewResourceMapper()
	formExtractor := forms.New()

	technologies := techDetector.Detect(ctx, opts.BaseURL)
	waf := wafDetector.Detect(ctx, opts.BaseURL)

	var documented *model.DocumentedSet
	if opts.SpecPath != "" {
		documented = docs.NewComparator().LoadSpec(opts.SpecPath)
	}

	filesScanned, routesMined := 0, 0
	if opts.SourceRoot != "" {
		if documented == nil {
			documented = model.NewDocumentedSet()
		}
		miner := docs.NewRouteMiner()
		mined := miner.Mine(opts.SourceRoot)
		for _, route := range mined.Slice() {
			documented.Add(route)
		}
		filesScanned, routesMined = miner.Stats()
	}

	fuzzer := audit.NewFuzzer(client, cfg.FuzzConcurrency)
	baseline, err := fuzzer.Baseline(ctx, opts.BaseURL)
	if err != nil {
		logger.Printf("fuzz baseline failed for %s: %v", opts.BaseURL, err)
	}

	prober := audit.NewProber(cfg)
	prober.ProbeAll(ctx, records, baseline, func(done, total int, url string, status int) {
		reportProgress(hub, "audit", done, total)
	})

	for _, rec := range records {
		if rec.Probe == nil {
			continue
		}
		rec.Probe.Technologies = technologies
		if waf.Detected {
			rec.Probe.WAF = waf.Name
		}

		if path := requestPath(rec.URL); path != "" {
			if resource, operation, ok := resourceMapper.MapRequest(firstMethod(rec.Method), path); ok {
				rec.ResourceFamily = resource
				rec.Operation = operation
			}
		}

		if rec.Probe.Outcome == "active" && strings.Contains(rec.Probe.ContentType, "html") {
			if body, ferr := fetchBody(ctx, client, rec.URL); ferr == nil {
				rec.Forms = formExtractor.ExtractForms(body)
			}
		}
	}

	if opts.FuzzMode != "" {
		payloads := fuzzer.Payloads(ctx, opts.BaseURL, opts.FuzzMode, techDetector)
		findings := fuzzer.Fuzz(ctx, opts.BaseURL, payloads, baseline)
		records = append(records, audit.ToURLRecords(findings)...)
	}

	compareResult := docs.Compare(records, documented)

	scorer := audit.NewScorer(cfg)
	scored := scorer.ScoreAll(records)

	return AuditResult{
		Records:      scored,
		Compare:      compareResult,
		Resources:    resourceMapper.Resources(),
		Technologies: technologies,
		WAF:          waf,
		FilesScanned: filesScanned,
		RoutesMined:  routesMined,
	}
}

func firstMethod(m string) string {
	if m == "" {
		return "GET"
	}
	return m
}

func requestPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return ""
	}
	return u.Path
}

func fetchBody(ctx context.Context, client *httpclient.Client, rawURL string) (string, error) {
	resp, err := client.Get(ctx, rawURL, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
