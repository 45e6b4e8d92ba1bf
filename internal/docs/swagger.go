// Package docs builds the documented-endpoint set from an OpenAPI/Swagger
// specification and from mining route definitions out of a source tree.
package docs

import (
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

var logger = log.New(log.Writer(), "ghostmap/docs/swagger: ", log.LstdFlags)

// ErrSpecNotFound describes a missing spec file. LoadSpec does not return
// it: a missing file is logged and yields an empty documented set.
var ErrSpecNotFound = errors.New("swagger/openapi spec file not found")

type specDocument struct {
	Info struct {
		Title   string `yaml:"title" json:"title"`
		Version string `yaml:"version" json:"version"`
	} `yaml:"info" json:"info"`
	Paths    map[string]interface{} `yaml:"paths" json:"paths"`
	Servers  []struct {
		URL string `yaml:"url" json:"url"`
	} `yaml:"servers" json:"servers"`
	BasePath string `yaml:"basePath" json:"basePath"`
}

// SwaggerComparator loads an OpenAPI/Swagger spec and compares it against a
// collected endpoint set to classify ghost / documented / spec-only paths.
type SwaggerComparator struct {
	spec *specDocument
}

// NewComparator returns an empty SwaggerComparator; call LoadSpec before
// Compare to seed it with a documented path set.
func NewComparator() *SwaggerComparator {
	return &SwaggerComparator{}
}

// LoadSpec reads and parses a JSON or YAML OpenAPI/Swagger file, returning
// the normalized documented path set. A missing or malformed file is not
// fatal: it logs and returns an empty set, per spec.md §7 ("Spec parse
// failure ... audit proceeds without documentation axis").
func (c *SwaggerComparator) LoadSpec(path string) *model.DocumentedSet {
	set := model.NewDocumentedSet()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Printf("spec file not found or unreadable: %s: %v", path, err)
		return set
	}

	var doc specDocument
	var parseErr error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		parseErr = yaml.Unmarshal(data, &doc)
	} else {
		parseErr = json.Unmarshal(data, &doc)
	}
	if parseErr != nil {
		logger.Printf("failed to parse spec file %s: %v", path, parseErr)
		return set
	}

	c.spec = &doc
	basePath := ""
	if len(doc.Servers) > 0 && doc.Servers[0].URL != "" {
		if u, err := url.Parse(doc.Servers[0].URL); err == nil {
			basePath = strings.TrimSuffix(u.Path, "/")
		}
	}
	if doc.BasePath != "" {
		basePath = strings.TrimSuffix(doc.BasePath, "/")
	}

	for pathKey := range doc.Paths {
		full := basePath + pathKey
		set.Add(NormalizePath(full))
	}

	logger.Printf("loaded %d documented endpoints from %s", set.Len(), path)
	return set
}

// SpecDetails holds the loaded spec's title, version, and endpoint count.
type SpecDetails struct {
	Title         string
	Version       string
	EndpointCount int
}

// SpecDetails reports metadata about the most recently loaded spec.
func (c *SwaggerComparator) SpecDetails(documented *model.DocumentedSet) SpecDetails {
	if c.spec == nil {
		return SpecDetails{}
	}
	count := 0
	if documented != nil {
		count = documented.Len()
	}
	return SpecDetails{Title: c.spec.Info.Title, Version: c.spec.Info.Version, EndpointCount: count}
}

var (
	bracedParam  = regexp.MustCompile(`\{[^}]+\}`)
	colonParam   = regexp.MustCompile(`:([a-zA-Z_]\w*)`)
	numericParam = regexp.MustCompile(`/\d+(?:/|$)`)
)

// NormalizePath normalizes a path template for comparison: lowercase, strip
// trailing slash, and collapse any parameter placeholder style to {param}.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	path = strings.ToLower(strings.TrimRight(strings.TrimSpace(path), "/"))
	path = bracedParam.ReplaceAllString(path, "{param}")
	path = colonParam.ReplaceAllString(path, "{param}")
	path = numericParam.ReplaceAllStringFunc(path, func(m string) string {
		if strings.HasSuffix(m, "/") {
			return "/{param}/"
		}
		return "/{param}"
	})
	if path == "" {
		return "/"
	}
	return path
}

// CompareResult is the three-way split produced by Compare.
type CompareResult struct {
	Ghost         []*model.URLRecord
	Documented    []*model.URLRecord
	SpecOnlyPaths []string

	TotalCollected  int
	TotalDocumented int
	GhostCount      int
	DocumentedFound int
	SpecOnlyCount   int
}

// Compare classifies collected endpoints against a documented path set.
// Ghost = collected − documented; Documented = collected ∩ documented;
// SpecOnlyPaths = documented − collected. Also marks each collected record's
// Documented field in place.
func Compare(collected []*model.URLRecord, documented *model.DocumentedSet) CompareResult {
	if documented == nil {
		documented = model.NewDocumentedSet()
	}

	byPath := make(map[string]*model.URLRecord, len(collected))
	for _, rec := range collected {
		p := NormalizePath(extractPath(rec.URL))
		if p == "" {
			continue
		}
		if _, exists := byPath[p]; !exists {
			byPath[p] = rec
		}
	}

	result := CompareResult{TotalCollected: len(byPath), TotalDocumented: documented.Len()}

	for p, rec := range byPath {
		rec.Documented = documented.Contains(p)
		if rec.Documented {
			result.Documented = append(result.Documented, rec)
		} else {
			result.Ghost = append(result.Ghost, rec)
		}
	}

	for p := range documented.Paths {
		if _, ok := byPath[p]; !ok {
			result.SpecOnlyPaths = append(result.SpecOnlyPaths, p)
		}
	}

	result.GhostCount = len(result.Ghost)
	result.DocumentedFound = len(result.Documented)
	result.SpecOnlyCount = len(result.SpecOnlyPaths)

	logger.Printf("comparison: %d ghost, %d documented, %d spec-only",
		result.GhostCount, result.DocumentedFound, result.SpecOnlyCount)
	return result
}

func extractPath(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if u, err := url.Parse(raw); err == nil {
			return u.Path
		}
		return ""
	}
	if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
		return raw[:idx]
	}
	return raw
}
