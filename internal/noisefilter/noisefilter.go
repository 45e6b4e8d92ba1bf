// Package noisefilter drops collected URLs that are almost certainly public
// content or tracking artifacts rather than application endpoints.
package noisefilter

import (
	"log"
	"net/url"
	"strings"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

var logger = log.New(log.Writer(), "ghostmap/noisefilter: ", log.LstdFlags)

// publicContentPrefixes are path prefixes that are almost always public
// marketing/documentation content rather than application surface.
var publicContentPrefixes = []string{
	"/blog", "/news", "/press", "/media", "/events",
	"/faq", "/help", "/support", "/kb", "/knowledge",
	"/docs", "/documentation", "/guide", "/tutorial", "/how-to",
	"/about", "/careers", "/jobs", "/team", "/contact",
	"/terms", "/privacy", "/legal", "/cookie", "/disclaimer",
	"/pricing", "/plans", "/features", "/product",
	"/category", "/tag", "/archive", "/author",
	"/sitemap", "/rss", "/feed", "/atom",
	"/wp-content", "/wp-includes", "/wp-json/wp",
	"/cdn-cgi",
}

// staticExtensions are file extensions that are never interesting endpoints.
var staticExtensions = []string{
	".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
	".woff", ".woff2", ".ttf", ".eot", ".otf",
	".mp4", ".webm", ".mp3", ".wav",
	".pdf", ".zip", ".gz", ".tar",
	".map", ".min.js", ".min.css",
	".xml", ".txt", ".webp", ".avif",
}

// noiseQueryParams are marketing/tracking query keys; a URL whose entire
// query key set is a subset of this list carries no distinguishing payload.
var noiseQueryParams = map[string]bool{
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true,
	"fbclid": true, "gclid": true, "msclkid": true, "mc_cid": true, "mc_eid": true,
	"ref": true, "source": true, "share": true, "lang": true, "locale": true,
	"page": true, "p": true, "sort": true, "order": true, "limit": true, "offset": true,
}

// rescueKeywords override a public-content prefix drop decision: their
// presence anywhere in the path means the URL is kept regardless.
var rescueKeywords = []string{
	"admin", "login", "auth", "token", "secret", "key", "config",
	"debug", "internal", "api", "graphql", "actuator", "console",
	"upload", "export", "import", "backup", "database", "sql",
	"webhook", "callback", "oauth", "session", "password", "cred",
}

// Stats summarizes one FilterEndpoints call.
type Stats struct {
	Total    int
	Filtered int
	Kept     int
}

// Filter drops noise endpoints and strips tracking query params from the
// ones it keeps. Kept records with stripped params get OriginalURL set to
// the pre-strip URL.
type Filter struct {
	stats Stats
}

// New returns an empty Filter.
func New() *Filter {
	return &Filter{}
}

// Stats returns the counts from the most recent FilterEndpoints call.
func (f *Filter) Stats() Stats {
	return f.stats
}

// FilterEndpoints returns the subset of records that are not noise. It does
// not mutate the input slice's records in place; kept records are shallow
// copies with URL/OriginalURL adjusted.
func (f *Filter) FilterEndpoints(records []*model.URLRecord) []*model.URLRecord {
	f.stats = Stats{Total: len(records)}
	out := make([]*model.URLRecord, 0, len(records))

	for _, rec := range records {
		if isNoise(rec.URL) {
			f.stats.Filtered++
			continue
		}

		clean := stripNoiseParams(rec.URL)
		if clean != rec.URL {
			cloned := *rec
			cloned.OriginalURL = rec.URL
			cloned.URL = clean
			out = append(out, &cloned)
		} else {
			out = append(out, rec)
		}
	}

	f.stats.Kept = len(out)
	logger.Printf("noise filter: %d filtered, %d kept out of %d", f.stats.Filtered, f.stats.Kept, f.stats.Total)
	return out
}

func isNoise(rawURL string) bool {
	if rawURL == "" {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(strings.TrimSuffix(u.Path, "/"))

	for _, ext := range staticExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	if u.RawQuery != "" {
		values := u.Query()
		if len(values) > 0 && allKeysNoise(values) {
			return true
		}
	}

	for _, prefix := range publicContentPrefixes {
		if strings.HasPrefix(path, prefix) {
			if containsRescueKeyword(path) {
				return false
			}
			return true
		}
	}

	return false
}

func allKeysNoise(values url.Values) bool {
	for key := range values {
		if !noiseQueryParams[strings.ToLower(key)] {
			return false
		}
	}
	return true
}

func containsRescueKeyword(path string) bool {
	for _, kw := range rescueKeywords {
		if strings.Contains(path, kw) {
			return true
		}
	}
	return false
}

// stripNoiseParams removes tracking/marketing query params from a URL,
// returning it unchanged if there is nothing to strip.
func stripNoiseParams(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL
	}

	values := u.Query()
	changed := false
	for key := range values {
		if noiseQueryParams[strings.ToLower(key)] {
			values.Del(key)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = values.Encode()
	return u.String()
}
