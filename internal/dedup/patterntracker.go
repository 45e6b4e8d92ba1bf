package dedup

import (
	"regexp"
	"sort"
	"strings"
)

var (
	numericSegment = regexp.MustCompile(`^\d+$`)
	uuidSegment    = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	hexSegment     = regexp.MustCompile(`^[0-9a-f]{16,}$`)
)

// PatternShape is one generalized path shape, e.g. "/users/{param}/orders".
type PatternShape struct {
	Shape   string
	Count   int
	Example string
}

// PatternTracker observes normalized URLs and groups them by a generalized
// path shape (numeric/UUID/hex segments collapsed to {param}), purely for
// diagnostics: it never feeds back into the dedup canonical key, so it
// cannot change which records merge (§3's dedup invariant stays untouched).
type PatternTracker struct {
	shapes map[string]*PatternShape
}

// NewPatternTracker returns an empty PatternTracker.
func NewPatternTracker() *PatternTracker {
	return &PatternTracker{shapes: make(map[string]*PatternShape)}
}

// Observe records one normalized URL against its generalized shape.
func (p *PatternTracker) Observe(normalizedURL string) string {
	shape := generalizeShape(normalizedURL)

	entry, ok := p.shapes[shape]
	if !ok {
		entry = &PatternShape{Shape: shape, Example: normalizedURL}
		p.shapes[shape] = entry
	}
	entry.Count++
	return shape
}

// Shapes returns every observed shape, sorted by descending occurrence
// count then by shape string.
func (p *PatternTracker) Shapes() []PatternShape {
	out := make([]PatternShape, 0, len(p.shapes))
	for _, s := range p.shapes {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Shape < out[j].Shape
	})
	return out
}

// generalizeShape collapses numeric, UUID, and long-hex path segments to
// {param} so structurally identical endpoints (e.g. /users/1, /users/2)
// collapse onto one shape regardless of the specific identifier.
func generalizeShape(normalizedURL string) string {
	path := normalizedURL
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if idx := strings.Index(path, "://"); idx >= 0 {
		if slash := strings.Index(path[idx+3:], "/"); slash >= 0 {
			path = path[idx+3+slash:]
		} else {
			path = "/"
		}
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		lower := strings.ToLower(seg)
		if numericSegment.MatchString(lower) || uuidSegment.MatchString(lower) || hexSegment.MatchString(lower) {
			segments[i] = "{param}"
		}
	}
	return strings.Join(segments, "/")
}
