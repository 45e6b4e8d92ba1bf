package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

func newTestProber() *Prober {
	cfg := config.Default()
	cfg.ProbeConcurrency = 4
	cfg.ProbeMethods = []string{"GET"}
	cfg.RateLimit = 1000
	return NewProber(cfg)
}

func TestProbeAllClassifiesActiveAndSoft404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/active":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("a real and distinctly long active endpoint response body here"))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("nf"))
		}
	}))
	defer srv.Close()

	p := newTestProber()
	baseline := model.BaselineRecord{StatusCode: http.StatusNotFound, BodyLength: 2}
	records := []*model.URLRecord{
		{URL: srv.URL + "/active"},
		{URL: srv.URL + "/gone"},
	}

	p.ProbeAll(context.Background(), records, baseline, nil)

	require := assert.New(t)
	require.Equal("active", records[0].Probe.Outcome)
	require.Equal("soft_404", records[1].Probe.Outcome)
}

func TestProbeAllDetectsAdminIndicator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Welcome to the Admin Panel control center"))
	}))
	defer srv.Close()

	p := newTestProber()
	baseline := model.BaselineRecord{StatusCode: http.StatusNotFound, BodyLength: 2}
	records := []*model.URLRecord{{URL: srv.URL + "/admin"}}

	p.ProbeAll(context.Background(), records, baseline, nil)
	assert.True(t, records[0].Probe.IsAdmin)
}

func TestProbeAllReportsAuthRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Www-Authenticate", `Basic realm="x"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := newTestProber()
	baseline := model.BaselineRecord{StatusCode: http.StatusNotFound, BodyLength: 2}
	records := []*model.URLRecord{{URL: srv.URL + "/secure"}}

	p.ProbeAll(context.Background(), records, baseline, nil)
	assert.Equal(t, "auth_required", records[0].Probe.Outcome)
	assert.True(t, records[0].Probe.HasAuth)
}

func TestExtractPathsDedupesAndResolvesRelative(t *testing.T) {
	paths := ExtractPaths([]string{
		"https://example.com/api/users",
		"/api/orders",
		"https://example.com/api/users?x=1",
	}, "https://example.com")
	assert.ElementsMatch(t, []string{"/api/users", "/api/orders"}, paths)
}

func TestProgressCallbackInvokedForEveryRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestProber()
	baseline := model.BaselineRecord{StatusCode: http.StatusNotFound, BodyLength: 2}
	records := []*model.URLRecord{{URL: srv.URL + "/a"}, {URL: srv.URL + "/b"}}

	calls := 0
	p.ProbeAll(context.Background(), records, baseline, func(done, total int, url string, status int) {
		calls++
	})
	assert.Equal(t, 2, calls)
}
