package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

func TestNormalizeURLLowercasesSchemeAndHost(t *testing.T) {
	got := NormalizeURL("HTTPS://Example.COM/Api/Users")
	assert.Equal(t, "https://example.com/Api/Users", got)
}

func TestNormalizeURLDropsDefaultPort(t *testing.T) {
	assert.Equal(t, "https://example.com/x", NormalizeURL("https://example.com:443/x"))
	assert.Equal(t, "http://example.com/x", NormalizeURL("http://example.com:80/x"))
	assert.Equal(t, "http://example.com:8080/x", NormalizeURL("http://example.com:8080/x"))
}

func TestNormalizeURLStripsTrailingSlashExceptRoot(t *testing.T) {
	assert.Equal(t, "https://example.com/api", NormalizeURL("https://example.com/api/"))
	assert.Equal(t, "https://example.com/", NormalizeURL("https://example.com/"))
}

func TestNormalizeURLSortsQueryParams(t *testing.T) {
	got := NormalizeURL("https://example.com/x?b=2&a=1")
	assert.Equal(t, "https://example.com/x?a=1&b=2", got)
}

func TestNormalizeURLDropsFragment(t *testing.T) {
	got := NormalizeURL("https://example.com/x#section")
	assert.Equal(t, "https://example.com/x", got)
}

func TestNormalizeURLHandlesRelativePaths(t *testing.T) {
	assert.Equal(t, "/api/users", NormalizeURL("/api/users/"))
	assert.Equal(t, "/api/users?a=1", NormalizeURL("/api/users?a=1"))
}

func TestEngineAddMergesRepeatSightings(t *testing.T) {
	e := New()
	isNew := e.Add(Entry{URL: "https://example.com/api/users", Source: model.SourceWayback, Timestamp: time.Unix(1, 0)})
	assert.True(t, isNew)

	isNew = e.Add(Entry{URL: "https://example.com/api/users/", Source: model.SourceCommonCrawl, Timestamp: time.Unix(2, 0)})
	assert.False(t, isNew)

	results := e.Results()
	assert.Len(t, results, 1)
	assert.ElementsMatch(t, []model.Source{model.SourceWayback, model.SourceCommonCrawl}, results[0].Sources)
	assert.Len(t, results[0].Timestamps, 2)
}

func TestEngineResultsSortedByNormalizedURL(t *testing.T) {
	e := New()
	e.Add(Entry{URL: "https://example.com/zeta", Source: model.SourceWayback})
	e.Add(Entry{URL: "https://example.com/alpha", Source: model.SourceWayback})

	results := e.Results()
	assert.Equal(t, "https://example.com/alpha", results[0].NormalizedURL)
	assert.Equal(t, "https://example.com/zeta", results[1].NormalizedURL)
}

func TestEngineStats(t *testing.T) {
	e := New()
	e.Add(Entry{URL: "https://example.com/a", Source: model.SourceWayback})
	e.Add(Entry{URL: "https://example.com/a", Source: model.SourceCommonCrawl})
	e.Add(Entry{URL: "https://example.com/b", Source: model.SourceWayback})

	stats := e.Stats()
	assert.Equal(t, 2, stats.UniqueEndpoints)
	assert.Equal(t, 3, stats.TotalOccurrences)
	assert.ElementsMatch(t, []string{"wayback", "commoncrawl"}, stats.Sources)
}
