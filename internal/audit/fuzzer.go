package audit

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gauravkdeore/ghostmap-go/internal/httpclient"
	"github.com/gauravkdeore/ghostmap-go/internal/model"
)

var fuzzLogger = log.New(log.Writer(), "ghostmap/audit/fuzzer: ", log.LstdFlags)

// Fuzzer brute-forces a fixed wordlist of candidate paths against a base
// URL and reports which ones resolve to something other than the host's
// soft-404 baseline.
type Fuzzer struct {
	client      *httpclient.Client
	concurrency int
}

// NewFuzzer builds a Fuzzer. client's no-redirect transport is used for
// both the baseline and the fuzz requests so redirect targets are visible.
func NewFuzzer(client *httpclient.Client, concurrency int) *Fuzzer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fuzzer{client: client, concurrency: concurrency}
}

// Baseline issues a GET to a random UUID path under baseURL with redirects
// disabled, fingerprinting the host's not-found response.
func (f *Fuzzer) Baseline(ctx context.Context, baseURL string) (model.BaselineRecord, error) {
	host := hostOf(baseURL)
	probePath := strings.TrimRight(baseURL, "/") + "/" + uuid.NewString()

	client := f.client.NoRedirectClient()
	f.client.Throttler().Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probePath, nil)
	if err != nil {
		return model.BaselineRecord{Host: host}, err
	}
	req.Header.Set("User-Agent", "GhostMap/1.0 (Security Research Tool)")

	resp, err := client.Do(req)
	if err != nil {
		f.client.Throttler().Report(0)
		return model.BaselineRecord{Host: host}, err
	}
	defer resp.Body.Close()
	f.client.Throttler().Report(resp.StatusCode)

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return model.BaselineRecord{
		Host:        host,
		StatusCode:  resp.StatusCode,
		RedirectLoc: resp.Header.Get("Location"),
		BodyLength:  len(body),
	}, nil
}

// Payloads selects the wordlist for mode ("auto" detects technology tags
// via detector and unions the matching wordlists; anything else unions
// every wordlist).
func (f *Fuzzer) Payloads(ctx context.Context, baseURL, mode string, detector *TechDetector) []string {
	if mode != "auto" {
		return AllPayloads()
	}
	tags := detector.Detect(ctx, baseURL)
	return PayloadsForTags(tags)
}

// Finding is one fuzzer hit: a candidate path that did not match the
// host's soft-404 baseline.
type Finding struct {
	Endpoint string
	Status   int
	Payload  string
	Length   int
}

// Fuzz issues one GET per payload concurrently (bounded by f.concurrency)
// and returns the findings that don't match baseline. A per-request failure
// is dropped, not fatal to the run.
func (f *Fuzzer) Fuzz(ctx context.Context, baseURL string, payloads []string, baseline model.BaselineRecord) []Finding {
	sem := make(chan struct{}, f.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var findings []Finding

	client := f.client.NoRedirectClient()

	for _, payload := range payloads {
		wg.Add(1)
		go func(payload string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			finding, ok := f.probeOne(ctx, client, baseURL, payload, baseline)
			if !ok {
				return
			}
			mu.Lock()
			findings = append(findings, finding)
			mu.Unlock()
		}(payload)
	}
	wg.Wait()

	fuzzLogger.Printf("fuzz complete: %d/%d payloads resolved against %s", len(findings), len(payloads), baseURL)
	return findings
}

func (f *Fuzzer) probeOne(ctx context.Context, client *http.Client, baseURL, payload string, baseline model.BaselineRecord) (Finding, bool) {
	full := strings.TrimRight(baseURL, "/") + payload

	f.client.Throttler().Wait()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return Finding{}, false
	}
	req.Header.Set("User-Agent", "GhostMap/1.0 (Security Research Tool)")

	resp, err := client.Do(req)
	if err != nil {
		f.client.Throttler().Report(0)
		return Finding{}, false
	}
	defer resp.Body.Close()
	f.client.Throttler().Report(resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return Finding{}, false
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if soft404Match(baseline, resp.StatusCode, resp.Header.Get("Location"), len(body)) {
		return Finding{}, false
	}

	return Finding{
		Endpoint: full,
		Status:   resp.StatusCode,
		Payload:  payload,
		Length:   len(body),
	}, true
}

// ToURLRecords converts fuzzer findings into URLRecords tagged with
// SourceFuzzer, ready to merge into the dedup engine.
func ToURLRecords(findings []Finding) []*model.URLRecord {
	out := make([]*model.URLRecord, 0, len(findings))
	for _, finding := range findings {
		out = append(out, &model.URLRecord{
			URL:     finding.Endpoint,
			Sources: []model.Source{model.SourceFuzzer},
			Method:  http.MethodGet,
			Payload: finding.Payload,
			ObservedStatusCodes: []string{fmt.Sprintf("%d", finding.Status)},
		})
	}
	return out
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
