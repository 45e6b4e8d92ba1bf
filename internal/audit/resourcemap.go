package audit

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var (
	hexIDPattern  = regexp.MustCompile(`^[0-9a-f]{8,}$`)
	uuidPattern   = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	apiVersionRgx = regexp.MustCompile(`^v\d+$`)
)

var staticResourceSegments = map[string]bool{
	"static": true, "assets": true, "public": true, "css": true,
	"js": true, "img": true, "images": true, "fonts": true, "media": true,
}

// ResourceMapping tracks the set of CRUD operations observed for one
// resource path, plus the specific request paths that contributed them.
type ResourceMapping struct {
	ResourcePath string
	Operations   map[string]string // method -> operation (create/read/update/delete/list)
	RelatedPaths []string
}

// ResourceMapper infers a CRUD resource family/operation from a method+path
// pair and accumulates a per-resource operation map across many requests.
type ResourceMapper struct {
	mu        sync.Mutex
	resources map[string]*ResourceMapping
}

// NewResourceMapper returns an empty ResourceMapper.
func NewResourceMapper() *ResourceMapper {
	return &ResourceMapper{resources: make(map[string]*ResourceMapping)}
}

// MapRequest classifies one method+path pair. It returns the resource
// family, operation, and whether a resource could be confidently detected.
func (m *ResourceMapper) MapRequest(method, rawPath string) (resource, operation string, detected bool) {
	path := extractResourcePath(rawPath)
	if path == "" {
		return "", "", false
	}

	resource, hasID := classifyResourcePath(path)
	if resource == "" {
		return "", "", false
	}

	operation = operationFor(method, hasID)
	m.update(resource, method, operation, path)
	return resource, operation, true
}

func (m *ResourceMapper) update(resource, method, operation, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, ok := m.resources[resource]
	if !ok {
		mapping = &ResourceMapping{ResourcePath: resource, Operations: make(map[string]string)}
		m.resources[resource] = mapping
	}
	mapping.Operations[strings.ToUpper(method)] = operation
	if !containsString(mapping.RelatedPaths, path) {
		mapping.RelatedPaths = append(mapping.RelatedPaths, path)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// HasFullCRUD reports whether resource has seen all of create/read/update/delete.
func (m *ResourceMapper) HasFullCRUD(resource string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, ok := m.resources[resource]
	if !ok {
		return false
	}
	seen := map[string]bool{}
	for _, op := range mapping.Operations {
		seen[op] = true
	}
	return seen["create"] && seen["read"] && seen["update"] && seen["delete"]
}

// Resources returns a snapshot of every resource mapping observed so far.
func (m *ResourceMapper) Resources() map[string]ResourceMapping {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]ResourceMapping, len(m.resources))
	for k, v := range m.resources {
		ops := make(map[string]string, len(v.Operations))
		for method, op := range v.Operations {
			ops[method] = op
		}
		out[k] = ResourceMapping{
			ResourcePath: v.ResourcePath,
			Operations:   ops,
			RelatedPaths: append([]string(nil), v.RelatedPaths...),
		}
	}
	return out
}

func extractResourcePath(raw string) string {
	path := raw
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if u, err := url.Parse(raw); err == nil {
			path = u.Path
		}
	} else if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
		path = raw[:idx]
	}
	return strings.TrimSuffix(path, "/")
}

// classifyResourcePath returns the normalized resource family (e.g.
// "/api/users" for "/api/v1/users/42") and whether the path includes a trailing identifier
// segment.
func classifyResourcePath(path string) (resource string, hasID bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", false
	}
	if staticResourceSegments[segments[0]] {
		return "", false
	}

	// Collapse an /api/vN/ prefix to a bare "api" marker so /api/v1/users
	// and /api/v2/users map to the same resource family regardless of
	// version.
	idx := 0
	prefix := ""
	if segments[0] == "api" {
		idx = 1
		prefix = "api"
		if idx < len(segments) && apiVersionRgx.MatchString(segments[idx]) {
			idx++
		}
	}
	rest := segments[idx:]
	if len(rest) == 0 {
		return "", false
	}

	last := rest[len(rest)-1]
	if looksLikeID(last) {
		hasID = true
		rest = rest[:len(rest)-1]
	}
	if len(rest) == 0 {
		return "", false
	}

	parts := rest
	if prefix != "" {
		parts = append([]string{prefix}, rest...)
	}
	resource = "/" + strings.Join(parts, "/")
	return resource, hasID
}

func looksLikeID(segment string) bool {
	if segment == "" {
		return false
	}
	if _, err := strconv.Atoi(segment); err == nil {
		return true
	}
	if uuidPattern.MatchString(strings.ToLower(segment)) {
		return true
	}
	if hexIDPattern.MatchString(strings.ToLower(segment)) {
		return true
	}
	return false
}

func operationFor(method string, hasID bool) string {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		if hasID {
			return "read"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "other"
	}
}
