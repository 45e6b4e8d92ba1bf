package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRestAPIPath(t *testing.T) {
	text := `const url = "/api/v1/users/123";`
	matches := Extract(text, "")
	found := false
	for _, m := range matches {
		if m.Endpoint == "/api/v1/users/123" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExtractFetchCall(t *testing.T) {
	text := `fetch('/api/data').then(r => r.json())`
	matches := Extract(text, "")
	assert.Contains(t, endpoints(matches), "/api/data")
}

func TestExtractExcludesStaticAssets(t *testing.T) {
	text := `<img src="/static/logo.png">`
	matches := Extract(text, "")
	assert.Empty(t, matches)
}

func TestExtractExcludesExtension(t *testing.T) {
	text := `const p = "/some/path/file.css";`
	matches := Extract(text, "")
	assert.NotContains(t, endpoints(matches), "/some/path/file.css")
}

func TestExtractFiltersByBaseDomain(t *testing.T) {
	text := `const a = "https://evil.example/api/x"; const b = "https://good.com/api/y";`
	matches := Extract(text, "good.com")
	got := endpoints(matches)
	assert.Contains(t, got, "https://good.com/api/y")
	assert.NotContains(t, got, "https://evil.example/api/x")
}

func TestExtractEndpointsOnlyIsSortedAndUnique(t *testing.T) {
	text := `fetch('/api/b'); fetch('/api/a'); fetch('/api/a');`
	got := ExtractEndpointsOnly(text, "")
	assert.Equal(t, []string{"/api/a", "/api/b"}, got)
}

func TestNormalizePlaceholders(t *testing.T) {
	assert.Equal(t, "{id}", normalizePlaceholders("<int:id>"))
	assert.Equal(t, "{id}", normalizePlaceholders("<id>"))
	assert.Equal(t, "/users/{id}", normalizePlaceholders("/users/:id"))
	assert.Equal(t, "/users/{param}", normalizePlaceholders(`/users/(\d+)`))
}

func endpoints(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Endpoint)
	}
	return out
}
