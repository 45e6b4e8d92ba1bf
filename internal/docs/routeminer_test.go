package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSrcFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestMineExtractsGoRoutes(t *testing.T) {
	dir := t.TempDir()
	writeSrcFile(t, dir, "server/routes.go", `
package server

func setup(r *Router) {
	r.Get("/users/:id", handler)
	r.Post("/users", handler)
}
`)

	miner := NewRouteMiner()
	routes := miner.Mine(dir)
	assert.Contains(t, routes.Slice(), "/users/{param}")
	assert.Contains(t, routes.Slice(), "/users")
}

func TestMineSkipsVendorAndNodeModules(t *testing.T) {
	dir := t.TempDir()
	writeSrcFile(t, dir, "vendor/pkg/routes.go", `r.Get("/should-not-appear", h)`)
	writeSrcFile(t, dir, "node_modules/foo/index.js", `router.get('/also-hidden', h)`)
	writeSrcFile(t, dir, "app/routes.go", `r.Get("/visible", h)`)

	miner := NewRouteMiner()
	routes := miner.Mine(dir)
	assert.Contains(t, routes.Slice(), "/visible")
	assert.NotContains(t, routes.Slice(), "/should-not-appear")
	assert.NotContains(t, routes.Slice(), "/also-hidden")
}

func TestMineHandlesDjangoPaths(t *testing.T) {
	dir := t.TempDir()
	writeSrcFile(t, dir, "urls.py", `
urlpatterns = [
    path('api/users/<int:id>/', views.user_detail),
    path('api/users/', views.user_list),
]
`)

	miner := NewRouteMiner()
	routes := miner.Mine(dir)
	assert.Contains(t, routes.Slice(), "/api/users/{param}")
	assert.Contains(t, routes.Slice(), "/api/users")
}

func TestMineSkipsRegexRoutes(t *testing.T) {
	dir := t.TempDir()
	writeSrcFile(t, dir, "urls.py", `
urlpatterns = [
    re_path(r'^api/(?P<id>\d+)/special$', views.special),
]
`)

	miner := NewRouteMiner()
	routes := miner.Mine(dir)
	assert.Empty(t, routes.Slice())
}

func TestMineExtractsNextJSAPIRoute(t *testing.T) {
	dir := t.TempDir()
	writeSrcFile(t, dir, "pages/api/users/[id].js", `export default function handler(req, res) {}`)

	miner := NewRouteMiner()
	routes := miner.Mine(dir)
	assert.Contains(t, routes.Slice(), "/api/users/{param}")
}

func TestMineReportsStats(t *testing.T) {
	dir := t.TempDir()
	writeSrcFile(t, dir, "app.go", `r.Get("/a", h)`)
	writeSrcFile(t, dir, "README.md", `not a route file`)

	miner := NewRouteMiner()
	miner.Mine(dir)
	scanned, found := miner.Stats()
	assert.Equal(t, 1, scanned)
	assert.Equal(t, 1, found)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
