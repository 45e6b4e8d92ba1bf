// Package pipeline wires the collect, sanitize, and audit stages together
// into the end-to-end GHOSTMAP run, mirroring the three-phase flow a
// cmd/ghostmap subcommand drives.
package pipeline

import (
	"context"
	"log"

	"github.com/gauravkdeore/ghostmap-go/internal/collector"
	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/dedup"
	"github.com/gauravkdeore/ghostmap-go/internal/model"
	"github.com/gauravkdeore/ghostmap-go/internal/progress"
)

var logger = log.New(log.Writer(), "ghostmap/pipeline: ", log.LstdFlags)

// CollectOptions mirrors the collect subcommand's flags.
type CollectOptions struct {
	Limit           int // 0 means unlimited
	SkipJS          bool
	SkipCommonCrawl bool
}

// CollectResult is the output of the collect stage: deduplicated endpoint
// records plus the stats each contributing source produced.
type CollectResult struct {
	Records    []*model.URLRecord
	DedupStats dedup.Stats
	Patterns   []dedupPatternShape
}

type dedupPatternShape struct {
	Shape string
	Count int
}

// Collect runs the archive scrapers and JS analyzer against domain,
// merging everything into one deduplicated record set. Any single source
// failing is logged and contributes nothing, per §7's stage-isolation
// error policy; it never aborts the remaining sources.
func Collect(ctx context.Context, cfg *config.Config, domain string, opts CollectOptions, hub *progress.Hub) CollectResult {
	engine := dedup.New()
	tracker := dedup.NewPatternTracker()

	wayback := collector.NewWaybackScraper(cfg)
	waybackEntries, err := wayback.FetchURLs(ctx, domain, "domain", func(batch, total int) {
		reportProgress(hub, "collect", total, total)
	})
	if err != nil {
		logger.Printf("wayback collection failed for %s: %v", domain, err)
	}
	for _, e := range waybackEntries {
		engine.Add(dedup.Entry{URL: e.URL, Source: model.SourceWayback, StatusCode: e.StatusCode, MimeType: e.MimeType})
	}

	if !opts.SkipCommonCrawl {
		cc := collector.NewCommonCrawlScraper(cfg, 3)
		ccEntries := cc.FetchURLs(ctx, domain, func(idx string, batch, total int) {
			reportProgress(hub, "collect", total, total)
		})
		for _, e := range ccEntries {
			engine.Add(dedup.Entry{URL: e.URL, Source: model.SourceCommonCrawl, StatusCode: e.StatusCode, MimeType: e.MimeType})
		}
	}

	if !opts.SkipJS {
		jsURLs := collector.ExtractJSURLs(waybackEntries)
		if len(jsURLs) > 0 {
			analyzer := collector.NewJSAnalyzer(cfg)
			endpoints, stats := analyzer.AnalyzeJSURLs(ctx, jsURLs, domain, func(jsURL string, i, total, found int) {
				reportProgress(hub, "collect", i, total)
			})
			logger.Printf("js analysis: %d analyzed, %d failed", stats.FilesAnalyzed, stats.FilesFailed)
			for _, e := range endpoints {
				engine.Add(dedup.Entry{
					URL: e.Endpoint, Source: model.SourceJSAnalysis,
					PatternName: e.PatternName, SourceFile: e.SourceFile,
				})
			}
		}
	}

	records := engine.Results()
	for _, rec := range records {
		tracker.Observe(rec.NormalizedURL)
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	var shapes []dedupPatternShape
	for _, s := range tracker.Shapes() {
		shapes = append(shapes, dedupPatternShape{Shape: s.Shape, Count: s.Count})
	}

	return CollectResult{
		Records:    records,
		DedupStats: engine.Stats(),
		Patterns:   shapes,
	}
}

func reportProgress(hub *progress.Hub, stage string, processed, total int) {
	if hub == nil {
		return
	}
	hub.Broadcast(progress.Event{Stage: stage, Processed: processed, Total: total})
}
