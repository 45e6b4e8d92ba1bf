package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var skippedDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, "target": true,
	".venv": true, "__pycache__": true, ".idea": true, ".vscode": true,
}

// routeExtPatterns maps a source file extension to the regexes that pull a
// route template out of a framework's route-registration call.
var routeExtPatterns = map[string][]*regexp.Regexp{
	".go": {
		regexp.MustCompile(`(?:Get|Post|Put|Patch|Delete|Handle|HandleFunc|Any)\s*\(\s*"([^"]+)"`),
		regexp.MustCompile(`\.Group\s*\(\s*"([^"]+)"`),
	},
	".py": {
		regexp.MustCompile(`@\w+\.(?:route|get|post|put|patch|delete)\s*\(\s*['"]([^'"]+)['"]`),
		regexp.MustCompile(`path\s*\(\s*['"]([^'"]*)['"]`),
		regexp.MustCompile(`re_path\s*\(\s*r?['"]([^'"]*)['"]`),
	},
	".js": {
		regexp.MustCompile(`(?:router|app)\.(?:get|post|put|patch|delete|all)\s*\(\s*['"\x60]([^'"\x60]+)['"\x60]`),
	},
	".ts": {
		regexp.MustCompile(`(?:router|app)\.(?:get|post|put|patch|delete|all)\s*\(\s*['"\x60]([^'"\x60]+)['"\x60]`),
		regexp.MustCompile(`@(?:Get|Post|Put|Patch|Delete)\s*\(\s*['"]([^'"]*)['"]`),
	},
	".rb": {
		regexp.MustCompile(`(?:get|post|put|patch|delete)\s+['"]([^'"]+)['"]`),
	},
	".java": {
		regexp.MustCompile(`@(?:Get|Post|Put|Patch|Delete|Request)Mapping\s*\(\s*(?:value\s*=\s*)?['"]([^'"]+)['"]`),
	},
}

// The .jsx/.tsx/.mjs/.cjs extensions reuse the .js/.ts pattern slices; the
// map entries share the same underlying slices.
func init() {
	routeExtPatterns[".jsx"] = routeExtPatterns[".js"]
	routeExtPatterns[".tsx"] = routeExtPatterns[".ts"]
	routeExtPatterns[".mjs"] = routeExtPatterns[".js"]
	routeExtPatterns[".cjs"] = routeExtPatterns[".js"]
}

var (
	colonParamMiner = regexp.MustCompile(`:([a-zA-Z_]\w*)`)
	angleParamMiner = regexp.MustCompile(`<(?:\w+:)?(\w+)>`)
	bracketParam    = regexp.MustCompile(`\[(\w+)\]`)
	regexMetachars  = regexp.MustCompile(`[\\^$.|?*+()]`)
)

// RouteMiner walks a source tree and extracts route templates by matching
// per-extension framework call patterns line by line.
type RouteMiner struct {
	filesScanned int
	routesFound  int
}

// NewRouteMiner returns an empty RouteMiner.
func NewRouteMiner() *RouteMiner {
	return &RouteMiner{}
}

// Stats returns (filesScanned, routesFound) from the most recent Mine call.
func (m *RouteMiner) Stats() (int, int) {
	return m.filesScanned, m.routesFound
}

// Mine walks root and returns the normalized, deduplicated set of route
// templates it can extract. Unreadable files and directories are skipped,
// not fatal.
func (m *RouteMiner) Mine(root string) *routeSet {
	m.filesScanned = 0
	m.routesFound = 0
	set := newRouteSet()

	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if skippedDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		patterns, ok := routeExtPatterns[ext]
		if !ok {
			return nil
		}

		m.filesScanned++
		routes := extractRoutesFromFile(path, patterns)
		for _, r := range routes {
			if isRegexRoute(r) {
				continue
			}
			set.add(normalizeMinedRoute(r))
			m.routesFound++
		}

		if isNextJSAPIFile(path) {
			if route, ok := nextJSFileToRoute(path); ok {
				set.add(normalizeMinedRoute(route))
				m.routesFound++
			}
		}
		return nil
	})

	return set
}

type routeSet struct {
	items map[string]struct{}
}

func newRouteSet() *routeSet {
	return &routeSet{items: make(map[string]struct{})}
}

func (r *routeSet) add(route string) {
	if route == "" {
		return
	}
	r.items[route] = struct{}{}
}

func (r *routeSet) Len() int {
	return len(r.items)
}

func (r *routeSet) Slice() []string {
	out := make([]string, 0, len(r.items))
	for v := range r.items {
		out = append(out, v)
	}
	return out
}

func extractRoutesFromFile(path string, patterns []*regexp.Regexp) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var routes []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for _, p := range patterns {
			for _, match := range p.FindAllStringSubmatch(line, -1) {
				if len(match) > 1 && match[1] != "" {
					routes = append(routes, match[1])
				}
			}
		}
	}
	return routes
}

// isRegexRoute detects Django-style re_path patterns that carry raw regex
// metacharacters; these aren't meaningfully normalizable to a route template.
func isRegexRoute(route string) bool {
	stripped := colonParamMiner.ReplaceAllString(route, "")
	stripped = angleParamMiner.ReplaceAllString(stripped, "")
	return regexMetachars.MatchString(stripped)
}

// normalizeMinedRoute converts framework-specific param syntax to {param}
// and applies the same casing/slash rules as NormalizePath.
func normalizeMinedRoute(route string) string {
	route = angleParamMiner.ReplaceAllString(route, "{param}")
	route = colonParamMiner.ReplaceAllString(route, "{param}")
	route = bracketParam.ReplaceAllString(route, "{param}")
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return NormalizePath(route)
}

func isNextJSAPIFile(path string) bool {
	norm := filepath.ToSlash(path)
	return strings.Contains(norm, "/pages/api/") || strings.Contains(norm, "/app/api/")
}

// nextJSFileToRoute converts a Next.js pages/api file path to a route
// template, e.g. pages/api/users/[id].js -> /api/users/{param}.
func nextJSFileToRoute(path string) (string, bool) {
	norm := filepath.ToSlash(path)
	marker := "/pages/api/"
	idx := strings.Index(norm, marker)
	if idx < 0 {
		marker = "/app/api/"
		idx = strings.Index(norm, marker)
	}
	if idx < 0 {
		return "", false
	}
	rest := norm[idx+len(marker):]
	rest = strings.TrimSuffix(rest, filepath.Ext(rest))
	rest = strings.TrimSuffix(rest, "/route")
	rest = strings.TrimSuffix(rest, "/index")
	if rest == "" {
		return "/api", true
	}
	return "/api/" + rest, true
}
