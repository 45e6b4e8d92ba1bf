package audit

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
	"github.com/gauravkdeore/ghostmap-go/internal/model"
	"github.com/gauravkdeore/ghostmap-go/internal/throttler"
)

var proberLogger = log.New(log.Writer(), "ghostmap/audit/prober: ", log.LstdFlags)

var debugIndicators = []string{
	"debug", "stack trace", "traceback", "exception",
	"phpinfo()", "server information", "environment variables", "django debug",
}

var adminIndicators = []string{
	"admin panel", "dashboard", "control panel", "management console", "admin login",
}

// ProgressFunc is called after each probe completes: (done, total, url, status).
type ProgressFunc func(done, total int, url string, status int)

// Prober actively requests every candidate endpoint to learn its real
// behavior: status, redirect target, content signals, and debug/admin
// indicators. Requests against a given host share one Throttler so the
// prober backs off coherently regardless of which goroutine hit the limit.
type Prober struct {
	cfg       *config.Config
	client    *httpclient.Client
	throttler *throttler.Throttler
	sem       chan struct{}
}

// NewProber builds a Prober with its own shared Throttler sized per cfg.
func NewProber(cfg *config.Config) *Prober {
	th := throttler.New(cfg.RateLimit, 100*time.Millisecond)
	client := httpclient.NewWithThrottler(cfg, th)
	return &Prober{
		cfg:       cfg,
		client:    client,
		throttler: th,
		sem:       make(chan struct{}, cfg.ProbeConcurrency),
	}
}

// ProbeAll probes every record's URL concurrently (bounded by
// cfg.ProbeConcurrency) against the shared baseline, attaching a ProbeResult
// to each. A plain sync.WaitGroup and channel fan-out is used, not
// errgroup.Group, so one record's failure never cancels the others still in
// flight.
func (p *Prober) ProbeAll(ctx context.Context, records []*model.URLRecord, baseline model.BaselineRecord, progress ProgressFunc) {
	var wg sync.WaitGroup
	var done int32
	var mu sync.Mutex

	for i, rec := range records {
		wg.Add(1)
		go func(i int, rec *model.URLRecord) {
			defer wg.Done()
			p.sem <- struct{}{}
			defer func() { <-p.sem }()

			result := p.probeOne(ctx, rec.URL, baseline)
			rec.Probe = &result

			mu.Lock()
			done++
			if progress != nil {
				progress(int(done), len(records), rec.URL, result.StatusCode)
			}
			mu.Unlock()
		}(i, rec)
	}
	wg.Wait()
}

func (p *Prober) probeOne(ctx context.Context, rawURL string, baseline model.BaselineRecord) model.ProbeResult {
	client := p.client.NoRedirectClient()

	var resp *http.Response
	var err error
	var method string

	for _, m := range p.cfg.ProbeMethods {
		p.throttler.Wait()
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, m, rawURL, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", "GhostMap/1.0 (Security Research Tool)")

		resp, err = client.Do(req)
		if err != nil {
			p.throttler.Report(0)
			continue
		}
		p.throttler.Report(resp.StatusCode)
		method = m
		if resp.StatusCode != http.StatusMethodNotAllowed {
			break
		}
		resp.Body.Close()
	}

	if resp == nil {
		return model.ProbeResult{Outcome: "error"}
	}
	defer resp.Body.Close()

	var body []byte
	if method == http.MethodGet && resp.StatusCode == http.StatusOK {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	} else {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512*1024))
	}
	bodyLower := strings.ToLower(string(body))
	if len(bodyLower) > 5000 {
		bodyLower = bodyLower[:5000]
	}

	result := model.ProbeResult{
		StatusCode:    resp.StatusCode,
		RedirectLoc:   resp.Header.Get("Location"),
		ContentLength: len(body),
		ContentType:   resp.Header.Get("Content-Type"),
		HasAuth:       resp.Header.Get("Www-Authenticate") != "" || resp.Header.Get("Authorization") != "",
		IsDebug:       containsAny(bodyLower, debugIndicators),
		IsAdmin:       containsAny(bodyLower, adminIndicators),
	}

	if soft404Match(baseline, resp.StatusCode, result.RedirectLoc, len(body)) {
		result.IsSoft404 = true
		result.Outcome = "soft_404"
		return result
	}

	result.Outcome = classifyOutcome(resp.StatusCode, result.HasAuth)
	return result
}

func classifyOutcome(statusCode int, hasAuth bool) string {
	switch {
	case statusCode == 0:
		return "error"
	case statusCode >= 200 && statusCode < 300:
		return "active"
	case statusCode >= 300 && statusCode < 400:
		return "redirect"
	case statusCode == 401 || statusCode == 403:
		return "auth_required"
	default:
		return "dead"
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// ExtractPaths returns the distinct request paths found in a set of
// endpoint URLs, resolving relative ones against baseURL.
func ExtractPaths(urls []string, baseURL string) []string {
	base, _ := url.Parse(baseURL)
	seen := map[string]bool{}
	var out []string

	for _, raw := range urls {
		var p string
		if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
			if u, err := url.Parse(raw); err == nil {
				p = u.Path
			}
		} else if base != nil {
			if u, err := base.Parse(raw); err == nil {
				p = u.Path
			}
		}
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
