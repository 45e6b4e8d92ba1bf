// Package extractor pulls candidate API endpoints out of arbitrary text
// (HTML, JavaScript) using a library of regular expressions.
package extractor

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// pattern pairs a compiled regexp with the name recorded against each match.
type pattern struct {
	name string
	re   *regexp.Regexp
}

// patterns is the library of endpoint-shaped regular expressions checked
// against every piece of text handed to Extract. Matches are deduplicated,
// and an endpoint found by several patterns is recorded under the name of
// the first pattern in this list that matched it.
var patterns = []pattern{
	{"rest_api_path", regexp.MustCompile(`(?i)['"` + "`" + `](/(?:api|rest|v\d+)/[a-zA-Z0-9/_\-{}:.]+)['"` + "`" + `]`)},
	{"absolute_url", regexp.MustCompile(`(?i)(https?://[a-zA-Z0-9.\-]+(?::\d+)?/[a-zA-Z0-9/_\-?&=%.#{}:@]+)`)},
	{"relative_path", regexp.MustCompile(`['"` + "`" + `](/[a-zA-Z0-9/_\-{}:.]+(?:\?[a-zA-Z0-9_=&]+)?)['"` + "`" + `]`)},
	{"fetch_call", regexp.MustCompile(`(?i)fetch\s*\(\s*['"` + "`" + `]([^'"` + "`" + `\s]+)['"` + "`" + `]`)},
	{"axios_call", regexp.MustCompile(`(?i)axios\.(?:get|post|put|patch|delete|head|options)\s*\(\s*['"` + "`" + `]([^'"` + "`" + `\s]+)['"` + "`" + `]`)},
	{"xhr_call", regexp.MustCompile(`(?i)\.open\s*\(\s*['"` + "`" + `](?:GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)['"` + "`" + `]\s*,\s*['"` + "`" + `]([^'"` + "`" + `\s]+)['"` + "`" + `]`)},
	{"jquery_ajax", regexp.MustCompile(`(?i)\$\.(?:ajax|get|post|getJSON)\s*\(\s*['"` + "`" + `]([^'"` + "`" + `\s]+)['"` + "`" + `]`)},
	{"route_definition", regexp.MustCompile(`(?i)(?:path|route|url|endpoint|uri)\s*[:=]\s*['"` + "`" + `](/[a-zA-Z0-9/_\-{}:.]+)['"` + "`" + `]`)},
	{"express_route", regexp.MustCompile(`(?i)(?:app|router)\.(?:get|post|put|patch|delete|all|use)\s*\(\s*['"` + "`" + `](/[^'"` + "`" + `\s]+)['"` + "`" + `]`)},
	{"graphql_endpoint", regexp.MustCompile(`(?i)['"` + "`" + `](/graphql[a-zA-Z0-9/_\-]*)['"` + "`" + `]`)},
	{"websocket_url", regexp.MustCompile(`(?i)(wss?://[a-zA-Z0-9.\-]+(?::\d+)?/[a-zA-Z0-9/_\-?&=%.]+)`)},
}

var excludedExtensions = []string{
	".css", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
	".woff", ".woff2", ".ttf", ".eot", ".otf",
	".map", ".mp3", ".mp4", ".webm", ".ogg",
	".pdf", ".zip", ".tar", ".gz",
}

var excludedPrefixes = []string{
	"/static/", "/assets/", "/images/", "/img/", "/css/",
	"/fonts/", "/media/", "/public/", "/#", "/node_modules/",
}

// Match is one endpoint found in a piece of text.
type Match struct {
	Endpoint    string
	PatternName string
	RawMatch    string
}

// Extract finds every endpoint-shaped string in text across the pattern
// library. When baseDomain is non-empty, absolute URLs are dropped unless
// their host matches (or is a subdomain of) baseDomain; relative paths
// always pass.
func Extract(text, baseDomain string) []Match {
	found := make([]Match, 0)
	seen := make(map[string]struct{})

	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			raw := m[0]
			if len(m) > 1 {
				raw = m[1]
			}
			endpoint := normalizeEndpoint(raw)
			if endpoint == "" {
				continue
			}
			if _, dup := seen[endpoint]; dup {
				continue
			}
			if shouldExclude(endpoint) {
				continue
			}
			if baseDomain != "" && !matchesDomain(endpoint, baseDomain) {
				continue
			}
			seen[endpoint] = struct{}{}
			found = append(found, Match{Endpoint: endpoint, PatternName: p.name, RawMatch: raw})
		}
	}
	return found
}

// ExtractEndpointsOnly returns just the sorted, unique endpoint strings.
func ExtractEndpointsOnly(text, baseDomain string) []string {
	matches := Extract(text, baseDomain)
	set := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		set[m.Endpoint] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

var (
	angleTypedParam = regexp.MustCompile(`<\w+:(\w+)>`)
	angleParam      = regexp.MustCompile(`<(\w+)>`)
	colonParam      = regexp.MustCompile(`:(\w+)`)
	regexGroup      = regexp.MustCompile(`\([^)]*\)`)
)

// normalizePlaceholders rewrites framework-specific path-parameter syntaxes
// (Flask's <int:id>/<id>, Express/Rails' :id) into the shared {id} form, and
// collapses any leftover regex capture group into {param}.
func normalizePlaceholders(endpoint string) string {
	endpoint = angleTypedParam.ReplaceAllString(endpoint, "{$1}")
	endpoint = angleParam.ReplaceAllString(endpoint, "{$1}")
	endpoint = colonParam.ReplaceAllString(endpoint, "{$1}")
	endpoint = regexGroup.ReplaceAllString(endpoint, "{param}")
	return endpoint
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	endpoint = strings.TrimRight(endpoint, ".,;:!?)'\"")
	endpoint = normalizePlaceholders(endpoint)
	if len(endpoint) < 2 {
		return ""
	}
	return endpoint
}

func shouldExclude(endpoint string) bool {
	lower := strings.ToLower(endpoint)
	for _, ext := range excludedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}

	path := endpoint
	if strings.Contains(endpoint, "://") {
		if u, err := url.Parse(endpoint); err == nil {
			path = u.Path
		}
	}
	pathLower := strings.ToLower(path)
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(pathLower, prefix) {
			return true
		}
	}
	return false
}

func matchesDomain(endpoint, baseDomain string) bool {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") &&
		!strings.HasPrefix(endpoint, "ws://") && !strings.HasPrefix(endpoint, "wss://") {
		return true
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == baseDomain || strings.HasSuffix(host, "."+baseDomain)
}
