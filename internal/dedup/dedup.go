// Package dedup normalizes discovered URLs into canonical keys and merges
// repeat sightings into single URLRecord entries.
package dedup

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

// NormalizeURL canonicalizes a URL for deduplication:
//   - lowercases scheme and host
//   - removes the fragment
//   - sorts query parameters
//   - strips a trailing slash (except for the root path)
//   - removes default ports (80 for http, 443 for https)
//
// Relative paths (not starting with a scheme) are normalized the same way,
// keeping only path and sorted query.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}

	lower := strings.ToLower(raw)
	isRelative := !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") &&
		!strings.HasPrefix(lower, "ws://") && !strings.HasPrefix(lower, "wss://")

	var parseTarget string
	if isRelative {
		if strings.HasPrefix(raw, "/") {
			parseTarget = "http://dummy" + raw
		} else {
			parseTarget = "http://dummy/" + raw
		}
	} else {
		parseTarget = raw
	}

	u, err := url.Parse(parseTarget)
	if err != nil {
		return strings.TrimSpace(raw)
	}

	path := strings.TrimSuffix(u.Path, "/")
	if path == "" {
		path = "/"
	}

	sortedQuery := sortedQueryString(u.RawQuery)

	if isRelative {
		if sortedQuery != "" {
			return path + "?" + sortedQuery
		}
		return path
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	netloc := host
	if port != "" {
		netloc = host + ":" + port
	}

	result := scheme + "://" + netloc + path
	if sortedQuery != "" {
		result += "?" + sortedQuery
	}
	return result
}

func sortedQueryString(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(values))
	for _, k := range keys {
		vs := values[k]
		sort.Strings(vs)
		for _, v := range vs {
			pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(pairs, "&")
}

// Entry is a single observation fed to the Engine: one sighting of a URL
// from one source, with whatever metadata that source captured.
type Entry struct {
	URL         string
	Source      model.Source
	Timestamp   time.Time
	StatusCode  string
	MimeType    string
	PatternName string
	SourceFile  string
}

// Engine deduplicates a stream of Entry observations into URLRecords, each
// keyed by its normalized URL and carrying the union of every source and
// timestamp that contributed to it.
type Engine struct {
	seen map[string]*model.URLRecord
}

// New returns an empty deduplication Engine.
func New() *Engine {
	return &Engine{seen: make(map[string]*model.URLRecord)}
}

// Add ingests one observation. It returns true if this is a newly seen
// canonical URL, false if it was merged into an existing record.
func (e *Engine) Add(entry Entry) bool {
	if entry.URL == "" {
		return false
	}
	normalized := NormalizeURL(entry.URL)
	if normalized == "" {
		return false
	}

	if rec, ok := e.seen[normalized]; ok {
		mergeEntry(rec, entry)
		return false
	}

	rec := &model.URLRecord{
		URL:             entry.URL,
		NormalizedURL:   normalized,
		Sources:         []model.Source{entry.Source},
		OccurrenceCount: 1,
	}
	if !entry.Timestamp.IsZero() {
		rec.Timestamps = []time.Time{entry.Timestamp}
		rec.FirstSeen = entry.Timestamp
		rec.LastSeen = entry.Timestamp
	}
	if entry.StatusCode != "" {
		rec.ObservedStatusCodes = append(rec.ObservedStatusCodes, entry.StatusCode)
	}
	if entry.MimeType != "" {
		rec.ObservedMimeTypes = append(rec.ObservedMimeTypes, entry.MimeType)
	}
	if entry.PatternName != "" {
		rec.PatternNames = append(rec.PatternNames, entry.PatternName)
	}
	if entry.SourceFile != "" {
		rec.SourceFiles = append(rec.SourceFiles, entry.SourceFile)
	}
	e.seen[normalized] = rec
	return true
}

func mergeEntry(existing *model.URLRecord, entry Entry) {
	existing.OccurrenceCount++
	if !containsSource(existing.Sources, entry.Source) {
		existing.Sources = append(existing.Sources, entry.Source)
	}
	if !entry.Timestamp.IsZero() {
		if !containsTime(existing.Timestamps, entry.Timestamp) {
			existing.Timestamps = append(existing.Timestamps, entry.Timestamp)
		}
		if existing.FirstSeen.IsZero() || entry.Timestamp.Before(existing.FirstSeen) {
			existing.FirstSeen = entry.Timestamp
		}
		if existing.LastSeen.IsZero() || entry.Timestamp.After(existing.LastSeen) {
			existing.LastSeen = entry.Timestamp
		}
	}
	if entry.StatusCode != "" && !containsString(existing.ObservedStatusCodes, entry.StatusCode) {
		existing.ObservedStatusCodes = append(existing.ObservedStatusCodes, entry.StatusCode)
	}
	if entry.MimeType != "" && !containsString(existing.ObservedMimeTypes, entry.MimeType) {
		existing.ObservedMimeTypes = append(existing.ObservedMimeTypes, entry.MimeType)
	}
	if entry.PatternName != "" && !containsString(existing.PatternNames, entry.PatternName) {
		existing.PatternNames = append(existing.PatternNames, entry.PatternName)
	}
	if entry.SourceFile != "" && !containsString(existing.SourceFiles, entry.SourceFile) {
		existing.SourceFiles = append(existing.SourceFiles, entry.SourceFile)
	}
}

func containsString(list []string, s string) bool {
	for _, existing := range list {
		if existing == s {
			return true
		}
	}
	return false
}

func containsSource(sources []model.Source, s model.Source) bool {
	for _, existing := range sources {
		if existing == s {
			return true
		}
	}
	return false
}

func containsTime(times []time.Time, t time.Time) bool {
	for _, existing := range times {
		if existing.Equal(t) {
			return true
		}
	}
	return false
}

// AddMany ingests a batch of entries and returns new/merged counts.
func (e *Engine) AddMany(entries []Entry) (newCount, mergedCount int) {
	for _, entry := range entries {
		if e.Add(entry) {
			newCount++
		} else {
			mergedCount++
		}
	}
	return newCount, mergedCount
}

// Results returns all deduplicated records, sorted by normalized URL.
func (e *Engine) Results() []*model.URLRecord {
	results := make([]*model.URLRecord, 0, len(e.seen))
	for _, rec := range e.seen {
		results = append(results, rec)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].NormalizedURL < results[j].NormalizedURL
	})
	return results
}

// Stats summarizes the deduplication engine's current state.
type Stats struct {
	UniqueEndpoints  int
	TotalOccurrences int
	DedupRatio       float64
	Sources          []string
}

// Stats computes aggregate statistics across everything added so far.
func (e *Engine) Stats() Stats {
	results := e.Results()
	total := 0
	sourceSet := map[string]struct{}{}
	for _, r := range results {
		total += len(r.Sources)
		for _, s := range r.Sources {
			sourceSet[string(s)] = struct{}{}
		}
	}
	sources := make([]string, 0, len(sourceSet))
	for s := range sourceSet {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	ratio := 0.0
	if total > 0 {
		ratio = 1 - float64(len(results))/float64(total)
	}
	// round to 2 decimals, matching the Python implementation's rounding
	ratio = float64(int(ratio*100+0.5)) / 100

	return Stats{
		UniqueEndpoints:  len(results),
		TotalOccurrences: total,
		DedupRatio:       ratio,
		Sources:          sources,
	}
}

// Clear resets the engine to empty.
func (e *Engine) Clear() {
	e.seen = make(map[string]*model.URLRecord)
}
