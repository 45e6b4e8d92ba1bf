package pipeline

import (
	"context"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/progress"
	"github.com/gauravkdeore/ghostmap-go/internal/sanitizer"
)

// RunCollect executes the collect stage end-to-end and wraps the result in
// a persistable Document.
func RunCollect(ctx context.Context, cfg *config.Config, domain string, opts CollectOptions, hub *progress.Hub) Document {
	result := Collect(ctx, cfg, domain, opts, hub)
	return Document{
		Meta: Meta{
			Tool:      "ghostmap",
			Version:   ToolVersion,
			Timestamp: nowRFC3339(),
			Domain:    domain,
			Stats:     dedupStatsView(result),
		},
		Summary:   BuildSummary(result.Records),
		Endpoints: result.Records,
	}
}

// RunSanitize runs the sanitize stage over a previously collected document.
func RunSanitize(doc Document, strict bool) Document {
	result := Sanitize(doc.Endpoints, strict)
	doc.Meta.Stats = sanitizeStatsView(result)
	doc.Summary = BuildSummary(result.Records)
	doc.Endpoints = result.Records
	return doc
}

// RunAudit runs the audit stage over a previously collected/sanitized
// document.
func RunAudit(ctx context.Context, cfg *config.Config, doc Document, opts AuditOptions, hub *progress.Hub) Document {
	result := Audit(ctx, cfg, doc.Endpoints, opts, hub)

	doc.Meta.BaseURL = opts.BaseURL
	doc.Meta.SwaggerSpec = opts.SpecPath
	doc.Meta.GitRepo = opts.SourceRoot
	doc.Meta.ProbingEnabled = true
	doc.Meta.Stats = auditStatsView(result)
	doc.Summary = BuildSummary(result.Records)
	doc.Endpoints = result.Records
	return doc
}

type dedupStats struct {
	UniqueEndpoints  int      `json:"unique_endpoints"`
	TotalOccurrences int      `json:"total_occurrences"`
	DedupRatio       float64  `json:"dedup_ratio"`
	Sources          []string `json:"sources"`
	DistinctPatterns int      `json:"distinct_pattern_shapes"`
}

func dedupStatsView(result CollectResult) dedupStats {
	return dedupStats{
		UniqueEndpoints:  result.DedupStats.UniqueEndpoints,
		TotalOccurrences: result.DedupStats.TotalOccurrences,
		DedupRatio:       result.DedupStats.DedupRatio,
		Sources:          result.DedupStats.Sources,
		DistinctPatterns: len(result.Patterns),
	}
}

type sanitizeStats struct {
	Report  sanitizer.Report `json:"sanitize_report"`
	Total   int              `json:"noise_total"`
	Kept    int              `json:"noise_kept"`
	Dropped int              `json:"noise_dropped"`
}

func sanitizeStatsView(result SanitizeResult) sanitizeStats {
	return sanitizeStats{
		Report:  result.SanitizeStats,
		Total:   result.NoiseStats.Total,
		Kept:    result.NoiseStats.Kept,
		Dropped: result.NoiseStats.Filtered,
	}
}

type auditStats struct {
	Ghost        int      `json:"ghost"`
	Documented   int      `json:"documented_found"`
	SpecOnly     int      `json:"spec_only"`
	Technologies []string `json:"technologies"`
	WAFDetected  bool     `json:"waf_detected"`
	WAFName      string   `json:"waf_name,omitempty"`
	FilesScanned int      `json:"files_scanned"`
	RoutesMined  int      `json:"routes_mined"`
}

func auditStatsView(result AuditResult) auditStats {
	return auditStats{
		Ghost:        result.Compare.GhostCount,
		Documented:   result.Compare.DocumentedFound,
		SpecOnly:     result.Compare.SpecOnlyCount,
		Technologies: result.Technologies,
		WAFDetected:  result.WAF.Detected,
		WAFName:      result.WAF.Name,
		FilesScanned: result.FilesScanned,
		RoutesMined:  result.RoutesMined,
	}
}
